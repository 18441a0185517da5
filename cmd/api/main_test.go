package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"eventmis/internal/auth"
	"eventmis/internal/config"
	"eventmis/internal/metrics"
	"eventmis/internal/store/storetest"

	"github.com/gin-gonic/gin"
)

func testConfig() config.Config {
	return config.Config{
		App: config.AppConfig{Env: "local", Port: 8080},
		Auth: config.AuthConfig{
			JWTSecret:        "test-secret",
			AccessTokenTTL:   15 * time.Minute,
			RefreshTokenTTL:  time.Hour,
			LoginMaxAttempts: 3,
			LoginWindow:      time.Minute,
		},
		Admin: config.AdminConfig{Email: "owner@eventmis.test", Password: "owner-pass", SystemActor: "system@eventmis.test"},
		HTTP:  config.HTTPConfig{PublicRatePerMinute: 10},
	}
}

func newTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := testConfig()
	db := storetest.Open(t, models()...)
	tokens, err := auth.NewManager(cfg.Auth)
	if err != nil {
		t.Fatalf("tokens: %v", err)
	}
	m := metrics.New()
	h, err := buildHandlers(context.Background(), cfg, db, nil, tokens, m, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("build handlers: %v", err)
	}
	if _, ok := h.Revoker.(*auth.MemoryRevoker); !ok {
		t.Fatalf("expected memory revoker without redis, got %T", h.Revoker)
	}

	r := gin.New()
	r.Use(m.Middleware())
	registerRoutes(r, db, h, m)
	return r
}

func TestProbes(t *testing.T) {
	r := newTestServer(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("%s status = %d", path, w.Code)
		}
	}
}

func TestSeededAdminCanLogIn(t *testing.T) {
	r := newTestServer(t)

	body, _ := json.Marshal(map[string]string{"email": "owner@eventmis.test", "password": "owner-pass"})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d body=%s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(w.Body.String(), `eventmis_http_requests_total{method="POST",route="/api/auth/login",status="200"} 1`) {
		t.Fatalf("login request not counted:\n%s", w.Body.String())
	}
}
