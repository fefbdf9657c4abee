package infra

import (
	"net/http"
	"testing"
	"time"
)

func TestNewHTTPServerUsesConfig(t *testing.T) {
	cfg := &Config{
		Port:             "9191",
		HTTPReadTimeout:  7 * time.Second,
		HTTPWriteTimeout: 13 * time.Second,
		HTTPIdleTimeout:  21 * time.Second,
	}
	server := NewHTTPServer(cfg, http.NewServeMux())

	if got := server.Addr(); got != ":9191" {
		t.Fatalf("Addr = %q, want :9191", got)
	}
	if server.srv.ReadTimeout != cfg.HTTPReadTimeout {
		t.Fatalf("ReadTimeout = %v", server.srv.ReadTimeout)
	}
	if server.srv.WriteTimeout != cfg.HTTPWriteTimeout {
		t.Fatalf("WriteTimeout = %v", server.srv.WriteTimeout)
	}
	if server.srv.IdleTimeout != cfg.HTTPIdleTimeout {
		t.Fatalf("IdleTimeout = %v", server.srv.IdleTimeout)
	}
}
