package obs

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for raw, want := range cases {
		if got := ParseLevel(raw); got != want {
			t.Fatalf("%q: expected %v, got %v", raw, want, got)
		}
	}
}

func TestNewLoggerJSONOutsideDev(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, "prod", slog.LevelInfo).Info("quote priced", "property_id", "villa-1")
	if !strings.HasPrefix(buf.String(), "{") || !strings.Contains(buf.String(), `"property_id":"villa-1"`) {
		t.Fatalf("expected JSON output, got %q", buf.String())
	}
}

func TestRequestIDAndReadiness(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware{}.RequestID())
	health := HealthHandlers{Checks: map[string]Check{
		"mongo": func(ctx context.Context) error { return errors.New("no primary") },
		"redis": func(ctx context.Context) error { return nil },
	}}
	r.GET("/livez", health.Livez)
	r.GET("/readyz", health.Readyz)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/livez", nil)
	req.Header.Set(RequestIDHeader, "req-7")
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Header().Get(RequestIDHeader) != "req-7" {
		t.Fatalf("unexpected livez response %d %v", rec.Code, rec.Header())
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable || !strings.Contains(rec.Body.String(), "no primary") {
		t.Fatalf("unexpected readyz response %d %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Fatalf("a request id must be generated when absent")
	}
}

func TestLoggerAddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "prod", slog.LevelInfo).With("component", "quote")
	logger.InfoContext(WithRequestID(context.Background(), "req-42"), "quote priced")
	if !strings.Contains(buf.String(), `"request_id":"req-42"`) || !strings.Contains(buf.String(), `"component":"quote"`) {
		t.Fatalf("expected request id on the record, got %q", buf.String())
	}

	buf.Reset()
	logger.Info("startup")
	if strings.Contains(buf.String(), "request_id") {
		t.Fatalf("records without a request context must not carry an id, got %q", buf.String())
	}
}
