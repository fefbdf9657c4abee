package runware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"rhymelab/internal/infra"
)

// ErrMissingAPIKey indicates that the client was configured without credentials.
var ErrMissingAPIKey = errors.New("runware: api key is required")

// Options configures the Runware task client.
type Options struct {
	APIKey         string
	BaseURL        string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client submits asynchronous render tasks to the Runware API. The heavy
// rendering work happens out-of-band on the provider's side; the client only
// receives an opaque task handle.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *infra.Logger
}

// TaskRequest captures the inputs for one render task.
type TaskRequest struct {
	Model     string
	AvatarURL string
	RhymeID   string
	Priority  string
}

type taskPayload struct {
	Model string    `json:"model"`
	Input taskInput `json:"input"`
}

type taskInput struct {
	AvatarURL string `json:"avatar_url,omitempty"`
	RhymeID   string `json:"rhyme_id"`
	Priority  string `json:"priority"`
}

type taskResponse struct {
	TaskUUID string `json:"task_uuid"`
	ID       string `json:"id"`
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.runware.ai/v1"
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool {
	return c.apiKey != ""
}

// CreateTask submits one render task and returns the provider's task handle.
func (c *Client) CreateTask(ctx context.Context, req TaskRequest) (string, error) {
	if !c.HasCredentials() {
		return "", ErrMissingAPIKey
	}
	priority := strings.TrimSpace(req.Priority)
	if priority == "" {
		priority = "normal"
	}
	body, err := json.Marshal(taskPayload{
		Model: req.Model,
		Input: taskInput{
			AvatarURL: req.AvatarURL,
			RhymeID:   req.RhymeID,
			Priority:  priority,
		},
	})
	if err != nil {
		return "", fmt.Errorf("runware: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/tasks", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("runware: build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("runware: submit task: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("runware: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn().Int("status", resp.StatusCode).Msg("runware task rejected")
		return "", fmt.Errorf("runware: task rejected: %s", strings.TrimSpace(string(raw)))
	}

	var out taskResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("runware: decode response: %w", err)
	}
	handle := out.TaskUUID
	if handle == "" {
		handle = out.ID
	}
	if handle == "" {
		return "", errors.New("runware: response missing task handle")
	}
	return handle, nil
}
