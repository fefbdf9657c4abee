package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"rhymelab/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Options{APIKey: "test-key", BaseURL: srv.URL})
}

func TestModerateClean(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/moderations" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization = %q", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{{"flagged": false}},
		})
	})

	flagged, reason, err := client.Moderate(context.Background(), "cGhvdG8=")
	if err != nil {
		t.Fatalf("Moderate: %v", err)
	}
	if flagged || reason != "" {
		t.Fatalf("flagged = %v, reason = %q", flagged, reason)
	}
}

func TestModerateFlaggedCategoriesSorted(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{{
				"flagged": true,
				"categories": map[string]bool{
					"violence":      true,
					"harassment":    true,
					"self-harm":     false,
					"sexual/minors": true,
				},
			}},
		})
	})

	flagged, reason, err := client.Moderate(context.Background(), "cGhvdG8=")
	if err != nil {
		t.Fatalf("Moderate: %v", err)
	}
	if !flagged {
		t.Fatal("expected flagged result")
	}
	if reason != "content flagged for: harassment, sexual/minors, violence" {
		t.Fatalf("reason = %q", reason)
	}
}

func TestModerateErrorEnvelope(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "rate limit exceeded"},
		})
	})

	_, _, err := client.Moderate(context.Background(), "cGhvdG8=")
	if err == nil || !strings.Contains(err.Error(), "rate limit exceeded") {
		t.Fatalf("err = %v, want envelope message", err)
	}
	if !errors.Is(err, domain.ErrProviderFailure) {
		t.Fatalf("err = %v, want ErrProviderFailure", err)
	}
}

func TestModerateMissingKey(t *testing.T) {
	client := NewClient(Options{})
	_, _, err := client.Moderate(context.Background(), "cGhvdG8=")
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("err = %v, want ErrMissingAPIKey", err)
	}
}

func TestDescribeChild(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Content []struct {
					Type     string `json:"type"`
					ImageURL *struct {
						URL string `json:"url"`
					} `json:"image_url"`
				} `json:"content"`
			} `json:"messages"`
			MaxTokens int `json:"max_tokens"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "gpt-4o" {
			t.Errorf("model = %s", req.Model)
		}
		if req.MaxTokens != 300 {
			t.Errorf("max_tokens = %d", req.MaxTokens)
		}
		image := req.Messages[0].Content[1]
		if image.Type != "image_url" || !strings.HasPrefix(image.ImageURL.URL, "data:image/jpeg;base64,") {
			t.Errorf("image part = %+v", image)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "curly brown hair, green eyes"}},
			},
		})
	})

	description, err := client.DescribeChild(context.Background(), "cGhvdG8=")
	if err != nil {
		t.Fatalf("DescribeChild: %v", err)
	}
	if description != "curly brown hair, green eyes" {
		t.Fatalf("description = %q", description)
	}
}

func TestGenerateImage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/images/generations" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var req struct {
			Model          string `json:"model"`
			N              int    `json:"n"`
			Size           string `json:"size"`
			ResponseFormat string `json:"response_format"`
			Quality        string `json:"quality"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "dall-e-3" || req.N != 1 || req.Size != "1024x1024" || req.Quality != "hd" {
			t.Errorf("request = %+v", req)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"url": "https://images.example.com/out.png"}},
		})
	})

	url, err := client.GenerateImage(context.Background(), "a cartoon avatar")
	if err != nil {
		t.Fatalf("GenerateImage: %v", err)
	}
	if url != "https://images.example.com/out.png" {
		t.Fatalf("url = %q", url)
	}
}

func TestGenerateImageEmptyData(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"data": []any{}})
	})
	if _, err := client.GenerateImage(context.Background(), "prompt"); err == nil {
		t.Fatal("expected error for empty image response")
	}
}
