package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func TestCSRF_RejectsMissingToken(t *testing.T) {
	e := echo.New()
	e.Use(CSRF())
	e.POST("/admin/save", okHandler)

	req := httptest.NewRequest(http.MethodPost, "/admin/save", strings.NewReader("name=x"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: "abc"})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", rec.Code)
	}
}

func TestCSRF_AcceptsMatchingFormField(t *testing.T) {
	e := echo.New()
	e.Use(CSRF())
	e.POST("/admin/save", okHandler)

	form := url.Values{CSRFFormField: {"abc"}}
	req := httptest.NewRequest(http.MethodPost, "/admin/save", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: "abc"})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestCSRF_SkipsAPI(t *testing.T) {
	e := echo.New()
	e.Use(CSRF())
	e.POST("/api/admin/locations", okHandler)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/locations", strings.NewReader("{}"))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected API path to bypass CSRF, got %d", rec.Code)
	}
}

func TestCSRF_SetsCookieOnFirstVisit(t *testing.T) {
	e := echo.New()
	e.Use(CSRF())
	e.GET("/admin", func(c echo.Context) error {
		if GetCSRFToken(c) == "" {
			t.Error("expected token in context")
		}
		return okHandler(c)
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin", nil))

	if !strings.Contains(rec.Header().Get("Set-Cookie"), csrfCookieName) {
		t.Errorf("expected CSRF cookie, got %q", rec.Header().Get("Set-Cookie"))
	}
}

func TestRateLimit(t *testing.T) {
	e := echo.New()
	e.GET("/login", okHandler, RateLimit(2, time.Minute))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/login", nil)
		req.RemoteAddr = "203.0.113.5:4000"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("unexpected status sequence %v", codes)
	}
}

func TestRateLimit_WindowSlides(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := base
	l := newSlidingLog(2, time.Minute)
	l.now = func() time.Time { return clock }

	e := echo.New()
	e.GET("/login", okHandler, rateLimitWith(l))
	hit := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/login", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	hit("203.0.113.5:4000")
	clock = base.Add(40 * time.Second)
	hit("203.0.113.5:4000")

	rec := hit("203.0.113.5:4000")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("third hit: expected 429, got %d", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "20" {
		t.Errorf("Retry-After = %q, want 20", got)
	}
	if rec := hit("198.51.100.7:4000"); rec.Code != http.StatusOK {
		t.Errorf("other client: expected 200, got %d", rec.Code)
	}

	// The first hit has left the window; the second has not.
	clock = base.Add(61 * time.Second)
	if rec := hit("203.0.113.5:4000"); rec.Code != http.StatusOK {
		t.Errorf("after slide: expected 200, got %d", rec.Code)
	}
	if rec := hit("203.0.113.5:4000"); rec.Code != http.StatusTooManyRequests {
		t.Errorf("window full again: expected 429, got %d", rec.Code)
	}
}

func TestBodyLimit(t *testing.T) {
	e := echo.New()
	e.POST("/upload", okHandler, BodyLimit(8))

	req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("0123456789"))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", rec.Code)
	}
}

func TestTrustedProxies(t *testing.T) {
	extract := buildIPExtractor([]string{"10.0.0.0/8"})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.1.2.3:5555"
	req.Header.Set("X-Forwarded-For", "198.51.100.7, 10.1.2.3")
	if got := extract(req); got != "198.51.100.7" {
		t.Errorf("expected forwarded client IP, got %q", got)
	}

	req.RemoteAddr = "198.51.100.9:5555"
	if got := extract(req); got != "198.51.100.9" {
		t.Errorf("untrusted peer must not be able to spoof, got %q", got)
	}
}
