package runware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Options{APIKey: "test-key", BaseURL: srv.URL})
}

func TestCreateTask(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tasks" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization = %q", got)
		}
		var payload struct {
			Model string `json:"model"`
			Input struct {
				AvatarURL string `json:"avatar_url"`
				RhymeID   string `json:"rhyme_id"`
				Priority  string `json:"priority"`
			} `json:"input"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		if payload.Model != "seedance:1.0" || payload.Input.RhymeID != "rhyme-1" || payload.Input.Priority != "high" {
			t.Errorf("payload = %+v", payload)
		}
		json.NewEncoder(w).Encode(map[string]string{"task_uuid": "task-abc"})
	})

	handle, err := client.CreateTask(context.Background(), TaskRequest{
		Model:     "seedance:1.0",
		AvatarURL: "https://cdn.example.com/a.png",
		RhymeID:   "rhyme-1",
		Priority:  "high",
	})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if handle != "task-abc" {
		t.Fatalf("handle = %q", handle)
	}
}

func TestCreateTaskDefaultsPriority(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Input struct {
				Priority string `json:"priority"`
			} `json:"input"`
		}
		json.NewDecoder(r.Body).Decode(&payload)
		if payload.Input.Priority != "normal" {
			t.Errorf("priority = %q, want normal", payload.Input.Priority)
		}
		json.NewEncoder(w).Encode(map[string]string{"task_uuid": "task-abc"})
	})

	if _, err := client.CreateTask(context.Background(), TaskRequest{Model: "seedance:1.0"}); err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
}

func TestCreateTaskIDFallback(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"id": "legacy-handle"})
	})

	handle, err := client.CreateTask(context.Background(), TaskRequest{Model: "seedance:1.0"})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if handle != "legacy-handle" {
		t.Fatalf("handle = %q", handle)
	}
}

func TestCreateTaskRejected(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exhausted", http.StatusPaymentRequired)
	})

	_, err := client.CreateTask(context.Background(), TaskRequest{Model: "seedance:1.0"})
	if err == nil || !strings.Contains(err.Error(), "quota exhausted") {
		t.Fatalf("err = %v, want rejection with body", err)
	}
}

func TestCreateTaskMissingHandle(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{})
	})

	if _, err := client.CreateTask(context.Background(), TaskRequest{Model: "seedance:1.0"}); err == nil {
		t.Fatal("expected error for response without task handle")
	}
}

func TestCreateTaskMissingKey(t *testing.T) {
	client := NewClient(Options{})
	_, err := client.CreateTask(context.Background(), TaskRequest{Model: "seedance:1.0"})
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("err = %v, want ErrMissingAPIKey", err)
	}
}
