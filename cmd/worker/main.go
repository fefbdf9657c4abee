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
	"rhymelab/internal/domain"
	"rhymelab/internal/infra"
	"rhymelab/internal/lifecycle"
	"rhymelab/internal/providers/runware"
	"rhymelab/internal/sink"
)

// The worker gives dispatch at-least-once semantics: it polls for queued
// videos that still lack a provider task handle and retries their dispatch.
// Dispatch itself is idempotent, so overlap with the API's immediate trigger
// is harmless.
type dispatchWorker struct {
	ctx          context.Context
	queue        domain.QueueStore
	manager      *lifecycle.Manager
	logger       infra.Logger
	pollInterval time.Duration
	batchSize    int
}

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, "worker")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: db connection failed")
	}
	defer pool.Close()

	videos := repo.NewVideoRepository(pool)
	children := repo.NewChildRepository(pool)
	queue := repo.NewQueueRepository(pool)
	admissions := repo.NewAdmissionRepository(pool)
	bookkeeping := sink.New(repo.NewAnalyticsRepository(pool), repo.NewProgressRepository(pool), logger)

	runwareClient := runware.NewClient(runware.Options{
		APIKey:     cfg.RunwareAPIKey,
		BaseURL:    cfg.RunwareBaseURL,
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
		Logger:     &logger,
	})
	if !runwareClient.HasCredentials() {
		logger.Warn().Msg("worker: runware api key missing, dispatches will fail")
	}

	worker := &dispatchWorker{
		ctx:          ctx,
		queue:        queue,
		manager:      lifecycle.NewManager(admissions, videos, children, queue, runwareClient, bookkeeping, logger),
		logger:       logger,
		pollInterval: cfg.WorkerPollInterval,
		batchSize:    cfg.WorkerBatchSize,
	}

	if err := worker.Run(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("worker: stopped with error")
	}
	logger.Info().Msg("worker: stopped")
}

func (w *dispatchWorker) Run() error {
	w.logger.Info().Msg("worker: started")
	for {
		select {
		case <-w.ctx.Done():
			return w.ctx.Err()
		default:
		}

		if err := w.sweep(); err != nil {
			w.logger.Error().Err(err).Msg("worker: sweep failed")
		}

		select {
		case <-w.ctx.Done():
			return w.ctx.Err()
		case <-time.After(w.pollInterval):
		}
	}
}

func (w *dispatchWorker) sweep() error {
	ids, err := w.queue.ListDispatchable(w.ctx, w.batchSize)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if _, err := w.manager.Dispatch(w.ctx, id, "", ""); err != nil {
			w.logger.Warn().Err(err).Str("video_id", id).Msg("worker: dispatch failed")
			continue
		}
		w.logger.Info().Str("video_id", id).Msg("worker: dispatched")
	}
	return nil
}
