package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"rhymelab/internal/domain"
	"rhymelab/internal/infra"
)

// ErrMissingAPIKey indicates that the client was configured without credentials.
var ErrMissingAPIKey = errors.New("openai: api key is required")

// Options configures the OpenAI client.
type Options struct {
	APIKey         string
	BaseURL        string
	VisionModel    string
	ImageModel     string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client performs HTTP calls to the OpenAI moderation, vision and image APIs.
type Client struct {
	apiKey      string
	baseURL     string
	visionModel string
	imageModel  string
	httpClient  *http.Client
	logger      *infra.Logger
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	visionModel := strings.TrimSpace(opts.VisionModel)
	if visionModel == "" {
		visionModel = "gpt-4o"
	}
	imageModel := strings.TrimSpace(opts.ImageModel)
	if imageModel == "" {
		imageModel = "dall-e-3"
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
		apiKey:      strings.TrimSpace(opts.APIKey),
		baseURL:     baseURL,
		visionModel: visionModel,
		imageModel:  imageModel,
		httpClient:  httpClient,
		logger:      logger,
	}
}

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool {
	return c.apiKey != ""
}

type moderationRequest struct {
	Input string `json:"input"`
	Model string `json:"model"`
}

type moderationResponse struct {
	Results []struct {
		Flagged    bool            `json:"flagged"`
		Categories map[string]bool `json:"categories"`
	} `json:"results"`
}

// Moderate submits the base64 image payload to the moderation endpoint and
// reports whether it was flagged, along with the flagged categories.
func (c *Client) Moderate(ctx context.Context, imageBase64 string) (bool, string, error) {
	if !c.HasCredentials() {
		return false, "", ErrMissingAPIKey
	}
	var out moderationResponse
	if err := c.post(ctx, "/moderations", moderationRequest{
		Input: imageBase64,
		Model: "text-moderation-latest",
	}, &out); err != nil {
		return false, "", err
	}
	if len(out.Results) == 0 {
		return false, "", errors.New("openai: empty moderation response")
	}
	result := out.Results[0]
	if !result.Flagged {
		return false, "", nil
	}
	var flagged []string
	for category, hit := range result.Categories {
		if hit {
			flagged = append(flagged, category)
		}
	}
	sort.Strings(flagged)
	return true, "content flagged for: " + strings.Join(flagged, ", "), nil
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string     `json:"role"`
	Content []chatPart `json:"content"`
}

type chatPart struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *chatImageURL `json:"image_url,omitempty"`
}

type chatImageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

const describeInstruction = `Analyze this child's photo and create a detailed description for generating a Cocomelon-style 3D cartoon avatar. Focus on:
- Hair color, style, and length
- Eye color and shape
- Skin tone
- Facial features and expressions
- Any distinctive characteristics
- Gender presentation

Create a DALL-E prompt that will generate a cute, family-friendly 3D cartoon avatar in Cocomelon animation style based on this child's features.`

// DescribeChild runs the vision model over the photo and returns a feature
// description suitable for prompting the image model.
func (c *Client) DescribeChild(ctx context.Context, imageBase64 string) (string, error) {
	if !c.HasCredentials() {
		return "", ErrMissingAPIKey
	}
	req := chatRequest{
		Model: c.visionModel,
		Messages: []chatMessage{{
			Role: "user",
			Content: []chatPart{
				{Type: "text", Text: describeInstruction},
				{Type: "image_url", ImageURL: &chatImageURL{URL: "data:image/jpeg;base64," + imageBase64}},
			},
		}},
		MaxTokens: 300,
	}
	var out chatResponse
	if err := c.post(ctx, "/chat/completions", req, &out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", errors.New("openai: empty vision response")
	}
	return out.Choices[0].Message.Content, nil
}

type imageRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size"`
	ResponseFormat string `json:"response_format"`
	Quality        string `json:"quality"`
	Style          string `json:"style"`
}

type imageResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
}

// GenerateImage synthesizes one square high-quality image and returns its URL.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (string, error) {
	if !c.HasCredentials() {
		return "", ErrMissingAPIKey
	}
	req := imageRequest{
		Model:          c.imageModel,
		Prompt:         prompt,
		N:              1,
		Size:           "1024x1024",
		ResponseFormat: "url",
		Quality:        "hd",
		Style:          "vivid",
	}
	var out imageResponse
	if err := c.post(ctx, "/images/generations", req, &out); err != nil {
		return "", err
	}
	if len(out.Data) == 0 {
		return "", errors.New("openai: empty image response")
	}
	return out.Data[0].URL, nil
}

type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("openai: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("openai: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("openai: %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("openai: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var envelope errorEnvelope
		message := strings.TrimSpace(string(raw))
		if json.Unmarshal(raw, &envelope) == nil && envelope.Error.Message != "" {
			message = envelope.Error.Message
		}
		c.logger.Warn().Int("status", resp.StatusCode).Str("path", path).Msg("openai request rejected")
		return fmt.Errorf("%w: openai: %s: %s", domain.ErrProviderFailure, path, message)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("openai: decode response: %w", err)
	}
	return nil
}
