package app

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/keyxmakerx/worldatlas/internal/apperror"
	"github.com/keyxmakerx/worldatlas/internal/config"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	cfg := &config.Config{
		Env:   "development",
		Admin: config.AdminConfig{Token: "abc123"},
		Upload: config.UploadConfig{
			MaxSize:       2 * 1024 * 1024,
			MediaPath:     t.TempDir(),
			PublicBaseURL: "http://localhost:8080",
		},
	}
	a := New(cfg, nil)
	if err := a.RegisterRoutes(); err != nil {
		t.Fatalf("RegisterRoutes: %v", err)
	}
	return a
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("expected JSON error body, got %q", rec.Body.String())
	}
	return body
}

func TestAdminRoutesRequireToken(t *testing.T) {
	a := newTestApp(t)

	for _, path := range []string{"/api/admin/locations", "/api/admin/characters", "/api/admin/timeline"} {
		rec := httptest.NewRecorder()
		a.Echo.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", path, rec.Code)
		}
		if body := decodeError(t, rec); body["error"] != "unauthorized" {
			t.Errorf("%s: unexpected error body %v", path, body)
		}
	}
}

func TestChatUnconfigured(t *testing.T) {
	a := newTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"hi"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
}

func TestUnknownRoute(t *testing.T) {
	a := newTestApp(t)

	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/nowhere", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
	decodeError(t, rec)
}

func TestHealthzWithoutDB(t *testing.T) {
	a := newTestApp(t)

	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestErrorHandler_HidesInternalCause(t *testing.T) {
	a := newTestApp(t)

	rec := httptest.NewRecorder()
	c := a.Echo.NewContext(httptest.NewRequest(http.MethodGet, "/api/locations", nil), rec)
	a.errorHandler(apperror.NewInternal(errors.New("dial tcp 10.0.0.5:3306: refused")), c)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "10.0.0.5") {
		t.Errorf("internal cause leaked: %s", rec.Body.String())
	}
}
