package http

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven/mocks"
	"github.com/custodia-labs/folio/internal/core/services"
)

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		expected string
	}{
		{"valid bearer token", "Bearer abc123", "abc123"},
		{"bearer with extra spaces", "Bearer   token-with-spaces   ", "token-with-spaces"},
		{"lowercase bearer", "bearer token123", "token123"},
		{"empty header", "", ""},
		{"no bearer prefix", "token123", ""},
		{"basic auth", "Basic dXNlcjpwYXNz", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			result := extractBearerToken(req)
			if result != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func TestPushAuthMiddleware_StoresClaims(t *testing.T) {
	tokens := mocks.NewMockPushTokenAdapter()
	push := services.NewPushService(services.PushServiceConfig{Tokens: tokens})
	token, _ := tokens.GenerateToken(&domain.PushClaims{Subject: "dashboard", Scope: domain.PushScope})

	var got *domain.PushClaims
	handler := NewPushAuthMiddleware(push).Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetPushClaims(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest("POST", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if got == nil || got.Subject != "dashboard" {
		t.Errorf("expected claims in context, got %+v", got)
	}
}

func TestPushAuthMiddleware_ExpiredToken(t *testing.T) {
	push := &expiringPushService{}
	handler := NewPushAuthMiddleware(push).Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run")
	}))

	req := httptest.NewRequest("POST", "/", nil)
	req.Header.Set("Authorization", "Bearer old")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized || !strings.Contains(rec.Body.String(), "token expired") {
		t.Errorf("expected 401 token expired, got %d %s", rec.Code, rec.Body.String())
	}
}

type expiringPushService struct{}

func (expiringPushService) PushContent(ctx context.Context, c domain.Content) error { return nil }
func (expiringPushService) PushSettings(ctx context.Context, p *domain.SettingsPatch) error {
	return nil
}
func (expiringPushService) ValidateToken(ctx context.Context, token string) (*domain.PushClaims, error) {
	return nil, domain.ErrTokenExpired
}
func (expiringPushService) Relay(ctx context.Context) error { return nil }

func TestGetPushClaims_EmptyContext(t *testing.T) {
	if GetPushClaims(context.Background()) != nil {
		t.Error("expected nil claims")
	}
}

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	handler := NewLoggingMiddleware(logger).Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/site", nil))

	if rec.Code != http.StatusTeapot {
		t.Errorf("expected 418, got %d", rec.Code)
	}
	line := buf.String()
	for _, want := range []string{"method=GET", "path=/api/v1/site", "status=418"} {
		if !strings.Contains(line, want) {
			t.Errorf("expected log to contain %q, got %q", want, line)
		}
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	var buf bytes.Buffer
	handler := NewRecoveryMiddleware(slog.New(slog.NewTextHandler(&buf, nil))).Handler(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(buf.String(), "boom") {
		t.Error("expected panic to be logged")
	}
}

func TestCORSMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name      string
		allowed   []string
		origin    string
		method    string
		status    int
		allowHead string
	}{
		{"allowed origin", []string{"https://dash.example.com"}, "https://dash.example.com", "GET", http.StatusOK, "https://dash.example.com"},
		{"wildcard", []string{"*"}, "https://any.example.com", "GET", http.StatusOK, "https://any.example.com"},
		{"disallowed origin", []string{"https://dash.example.com"}, "https://evil.example.com", "GET", http.StatusOK, ""},
		{"preflight", []string{"*"}, "https://any.example.com", "OPTIONS", http.StatusNoContent, "https://any.example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/v1/site", nil)
			req.Header.Set("Origin", tt.origin)
			rec := httptest.NewRecorder()

			NewCORSMiddleware(tt.allowed).Handler(next).ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Errorf("expected %d, got %d", tt.status, rec.Code)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.allowHead {
				t.Errorf("expected allow-origin %q, got %q", tt.allowHead, got)
			}
		})
	}
}

func TestResponseWriter(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rec, statusCode: http.StatusOK}

	rw.WriteHeader(http.StatusNotFound)

	if rw.statusCode != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rw.statusCode)
	}
	if rw.Unwrap() != rec {
		t.Error("expected Unwrap to return the underlying writer")
	}
	if _, _, err := rw.Hijack(); err == nil {
		t.Error("expected hijack to fail on a recorder")
	}
}
