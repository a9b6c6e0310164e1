package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/keyxmakerx/worldatlas/internal/apperror"
)

// assertAppError checks that an error is an AppError with the expected code.
func assertAppError(t *testing.T, err error, expectedCode int) {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %T: %v", err, err)
	}
	if appErr.Code != expectedCode {
		t.Errorf("expected status code %d, got %d (message: %s)", expectedCode, appErr.Code, appErr.Message)
	}
}

func TestNewTokenVerifier_Plaintext(t *testing.T) {
	v, err := NewTokenVerifier("  abc123  ", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := v.Verify("abc123"); err != nil {
		t.Errorf("expected token to verify, got %v", err)
	}
	// Cached path must still reject other tokens.
	assertAppError(t, v.Verify("abc124"), 401)
	assertAppError(t, v.Verify(""), 401)
}

func TestNewTokenVerifier_Hash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	v, err := NewTokenVerifier("ignored", string(hash))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := v.Verify("secret"); err != nil {
		t.Errorf("expected hashed token to verify, got %v", err)
	}
	assertAppError(t, v.Verify("ignored"), 401)
}

func TestNewTokenVerifier_Errors(t *testing.T) {
	if _, err := NewTokenVerifier("", ""); err == nil {
		t.Error("expected error for empty configuration")
	}
	if _, err := NewTokenVerifier("", "not-a-hash"); err == nil {
		t.Error("expected error for malformed hash")
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header, want string
	}{
		{"Bearer abc", "abc"},
		{"bearer  abc ", "abc"},
		{"Basic abc", ""},
		{"abc", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := bearerToken(tt.header); got != tt.want {
			t.Errorf("bearerToken(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}

type stubVerifier struct {
	want string
}

func (s stubVerifier) Verify(token string) error {
	if token != s.want {
		return apperror.NewUnauthorized("invalid edit token")
	}
	return nil
}

func TestRequireEditToken(t *testing.T) {
	e := echo.New()

	tests := []struct {
		name   string
		header string
		code   int
	}{
		{"valid", "Bearer abc123", http.StatusNoContent},
		{"wrong token", "Bearer nope", http.StatusUnauthorized},
		{"missing", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/admin/locations", nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			handler := RequireEditToken(stubVerifier{want: "abc123"})(func(c echo.Context) error {
				if !IsAdmin(c) {
					t.Error("expected admin flag in context")
				}
				return c.NoContent(http.StatusNoContent)
			})
			err := handler(c)
			if tt.code == http.StatusNoContent {
				if err != nil || rec.Code != http.StatusNoContent {
					t.Errorf("expected 204, got %d (err %v)", rec.Code, err)
				}
				return
			}
			assertAppError(t, err, tt.code)
		})
	}
}
