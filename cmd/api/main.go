package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"rhymelab/internal/adapter/repo"
	"rhymelab/internal/gate"
	"rhymelab/internal/http/handlers"
	"rhymelab/internal/http/httpapi"
	"rhymelab/internal/infra"
	"rhymelab/internal/lifecycle"
	"rhymelab/internal/providers/avatar"
	"rhymelab/internal/providers/openai"
	"rhymelab/internal/providers/runware"
	"rhymelab/internal/sink"
	"rhymelab/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, "api")

	ctx := context.Background()
	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer pool.Close()

	users := repo.NewUserRepository(pool)
	children := repo.NewChildRepository(pool)
	rhymes := repo.NewRhymeRepository(pool)
	videos := repo.NewVideoRepository(pool)
	queue := repo.NewQueueRepository(pool)
	ledger := repo.NewLedgerRepository(pool)
	admissions := repo.NewAdmissionRepository(pool)
	bookkeeping := sink.New(repo.NewAnalyticsRepository(pool), repo.NewProgressRepository(pool), logger)

	httpClient := &http.Client{Timeout: 60 * time.Second}
	openaiClient := openai.NewClient(openai.Options{
		APIKey:      cfg.OpenAIAPIKey,
		BaseURL:     cfg.OpenAIBaseURL,
		VisionModel: cfg.VisionModel,
		ImageModel:  cfg.ImageModel,
		HTTPClient:  httpClient,
		Logger:      &logger,
	})
	if !openaiClient.HasCredentials() {
		logger.Warn().Msg("openai api key missing, avatar generation will be rejected")
	}
	runwareClient := runware.NewClient(runware.Options{
		APIKey:     cfg.RunwareAPIKey,
		BaseURL:    cfg.RunwareBaseURL,
		HTTPClient: httpClient,
		Logger:     &logger,
	})

	fileStore, err := storage.NewFileStore(cfg.StoragePath, cfg.StorageBaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure storage")
	}

	app := &handlers.App{
		Logger:   logger,
		Gate:     gate.New(users, children, rhymes, videos, ledger, openaiClient, logger),
		Avatars:  avatar.NewGenerator(openaiClient, openaiClient, fileStore, httpClient, logger),
		Manager:  lifecycle.NewManager(admissions, videos, children, queue, runwareClient, bookkeeping, logger),
		Users:    users,
		Children: children,
		Sink:     bookkeeping,
	}

	server := infra.NewHTTPServer(cfg, httpapi.NewRouter(app))

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
