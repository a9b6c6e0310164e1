package client

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/keyxmakerx/worldatlas/internal/world"
)

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type staticToken string

func (s staticToken) Token() string { return string(s) }

func newTestClient(t *testing.T, h http.HandlerFunc) *DataServiceClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewDataServiceClient(srv.URL+"/", 5*time.Second, quietLogger)
}

func TestCreate_AdoptsStringAndNumericIDs(t *testing.T) {
	tests := []struct {
		name, body, want string
	}{
		{"string", `{"id":"loc-1","name":"Whisper Grove"}`, "loc-1"},
		{"number", `{"id":42}`, "42"},
		{"absent", `{"name":"x"}`, ""},
		{"null", `{"id":null}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusCreated)
				io.WriteString(w, tt.body)
			})
			id, err := LocationBackend{c}.Create(context.Background(), world.LocationRow{Name: "x"})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if id != tt.want {
				t.Errorf("expected %q, got %q", tt.want, id)
			}
		})
	}
}

func TestAdminCallsSendBearerToken(t *testing.T) {
	var gotAuth, gotPath, gotMethod string
	var gotRow world.TimelineRow
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		gotMethod = r.Method
		_ = json.NewDecoder(r.Body).Decode(&gotRow)
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, `{}`)
	}).WithTokens(staticToken("abc123"))

	row := world.TimelineRow{Title: "星陨之夜", Status: world.ChroniclePending}
	if err := (TimelineBackend{c}).Update(context.Background(), "ev 1", row); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "Bearer abc123" {
		t.Errorf("unexpected Authorization %q", gotAuth)
	}
	if gotMethod != http.MethodPut || gotPath != "/api/admin/timeline/ev 1" {
		t.Errorf("unexpected request %s %s", gotMethod, gotPath)
	}
	if gotRow != row {
		t.Errorf("row not sent intact: %+v", gotRow)
	}
}

func TestPublicCallsSendNoToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Error("public list must not carry a token")
		}
		io.WriteString(w, `[{"id":"loc-1","name":"Whisper Grove","x":12.5,"y":80}]`)
	}).WithTokens(staticToken("abc123"))

	locs, err := c.PublicLocations(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(locs) != 1 || locs[0].X != 12.5 {
		t.Errorf("unexpected locations %+v", locs)
	}
}

func TestErrorsCarryServerMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		io.WriteString(w, `{"error":"validation_error","message":"location name is required"}`)
	})

	_, err := LocationBackend{c}.Create(context.Background(), world.LocationRow{})
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "location name is required" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestProbe_Unauthorized(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			io.WriteString(w, `{"error":"unauthorized","message":"invalid edit token"}`)
			return
		}
		io.WriteString(w, `[]`)
	})

	if err := c.Probe(context.Background(), "good"); err != nil {
		t.Errorf("expected probe to pass, got %v", err)
	}
	err := c.Probe(context.Background(), "abc123")
	if !IsUnauthorized(err) {
		t.Errorf("expected unauthorized, got %v", err)
	}
}

func TestDelete_NoContent(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = r.Method == http.MethodDelete && r.URL.Path == "/api/admin/characters/ch-1"
		w.WriteHeader(http.StatusNoContent)
	})
	if err := (CharacterBackend{c}).Delete(context.Background(), "ch-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Error("expected DELETE /api/admin/characters/ch-1")
	}
}

func TestUploadImage(t *testing.T) {
	var got world.ImageUpload
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"url":"http://localhost:8080/media/m-1"}`)
	})

	url, err := c.UploadImage(context.Background(), world.ImageUpload{
		Entity: world.KindCharacter, ID: "ch-1", Filename: "a.png", ContentType: "image/png", Base64: "AAAA",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if url != "http://localhost:8080/media/m-1" {
		t.Errorf("unexpected url %q", url)
	}
	if got.Entity != world.KindCharacter || got.ID != "ch-1" || got.Base64 != "AAAA" {
		t.Errorf("unexpected upload body %+v", got)
	}
}

func TestErrorMessage_IgnoresHTML(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, `<html><body>502 Bad Gateway</body></html>`)
	})
	_, err := c.ListLocations(context.Background())
	if err == nil || err.Error() != "HTTP 502" {
		t.Errorf("expected generic HTTP 502 error, got %v", err)
	}
}

// --- Chat ---

func TestChat_ReturnsText(t *testing.T) {
	var got world.ChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		io.WriteString(w, `{"text":"低语林位于北境。"}`)
	}))
	defer srv.Close()

	c := NewChatClient(srv.URL, time.Second, quietLogger)
	text := c.Ask(context.Background(), "低语林在哪里？", "守林人", []world.ChatTurn{{Role: world.ChatRoleUser, Content: "你好"}})
	if text != "低语林位于北境。" {
		t.Errorf("unexpected text %q", text)
	}
	if got.Message != "低语林在哪里？" || got.Context != "守林人" || len(got.History) != 1 {
		t.Errorf("unexpected request %+v", got)
	}
}

func TestChat_FallbackOnFailure(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"http 500", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			io.WriteString(w, `{"text":"boom"}`)
		}},
		{"undecodable", func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `not json`)
		}},
		{"empty text", func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"text":""}`)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()
			c := NewChatClient(srv.URL, time.Second, quietLogger)
			if got := c.Ask(context.Background(), "hi", "", nil); got != "档案馆暂时无法回应，请稍后再试。" {
				t.Errorf("expected fallback, got %q", got)
			}
		})
	}
}

func TestChat_FallbackOnTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewChatClient(url, time.Second, quietLogger)
	if got := c.Ask(context.Background(), "hi", "", nil); got != world.ChatFallback {
		t.Errorf("expected fallback, got %q", got)
	}
}
