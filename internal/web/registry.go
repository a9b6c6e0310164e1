package web

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/keyxmakerx/worldatlas/internal/client"
	"github.com/keyxmakerx/worldatlas/internal/session"
	"github.com/keyxmakerx/worldatlas/internal/workflow"
)

const (
	consoleCookieName = "atlas_console"

	// consoleIdleTTL is how long an untouched console stays in memory. The
	// credential in Redis lives as long, so a returning browser logs back in
	// silently within that window.
	consoleIdleTTL = 12 * time.Hour
)

// consoleEntry is one browser's console. mu serializes that browser's
// console actions.
type consoleEntry struct {
	mu       sync.Mutex
	console  *workflow.Console
	lastUsed time.Time
}

// ConsoleRegistry keeps one admin console per browser, keyed by a random id
// in a cookie.
type ConsoleRegistry struct {
	data *client.DataServiceClient
	rdb  *redis.Client

	mu      sync.Mutex
	entries map[string]*consoleEntry
	now     func() time.Time
}

// NewConsoleRegistry creates a registry. With a nil Redis client the
// credentials are kept in memory only.
func NewConsoleRegistry(data *client.DataServiceClient, rdb *redis.Client) *ConsoleRegistry {
	return &ConsoleRegistry{
		data:    data,
		rdb:     rdb,
		entries: make(map[string]*consoleEntry),
		now:     time.Now,
	}
}

// Get returns the console of the requesting browser, creating it (and the
// cookie) on first use. A new console verifies any credential stored for
// the browser before it is returned.
func (r *ConsoleRegistry) Get(c echo.Context) *consoleEntry {
	id := ""
	if cookie, err := c.Cookie(consoleCookieName); err == nil {
		if _, perr := uuid.Parse(cookie.Value); perr == nil {
			id = cookie.Value
		}
	}
	if id == "" {
		id = uuid.NewString()
		req := c.Request()
		c.SetCookie(&http.Cookie{
			Name:     consoleCookieName,
			Value:    id,
			Path:     "/",
			MaxAge:   int(consoleIdleTTL / time.Second),
			HttpOnly: true,
			Secure:   req.TLS != nil || req.Header.Get("X-Forwarded-Proto") == "https",
			SameSite: http.SameSiteLaxMode,
		})
	}

	r.mu.Lock()
	now := r.now()
	r.sweep(now)
	entry, ok := r.entries[id]
	if !ok {
		entry = &consoleEntry{console: r.build(id)}
		r.entries[id] = entry
	}
	entry.lastUsed = now
	r.mu.Unlock()

	if !ok {
		entry.mu.Lock()
		if err := entry.console.Init(c.Request().Context()); err != nil {
			slog.Warn("restoring console credential failed", slog.Any("error", err))
		}
		entry.mu.Unlock()
	}
	return entry
}

// build wires a console for browser id. The client reads the bearer token
// from the console's own guard.
func (r *ConsoleRegistry) build(id string) *workflow.Console {
	var store session.CredentialStore = &session.MemoryStore{}
	if r.rdb != nil {
		store = session.NewRedisStore(r.rdb, id, consoleIdleTTL)
	}
	guard := session.NewGuard(store, r.data)
	authed := r.data.WithTokens(guard)
	return workflow.NewConsole(guard, authed, authed, workflow.Backends{
		Locations:  client.LocationBackend{C: authed},
		Characters: client.CharacterBackend{C: authed},
		Timeline:   client.TimelineBackend{C: authed},
	})
}

// sweep drops idle consoles. Requires r.mu.
func (r *ConsoleRegistry) sweep(now time.Time) {
	for id, e := range r.entries {
		if now.Sub(e.lastUsed) > consoleIdleTTL {
			delete(r.entries, id)
		}
	}
}

// Len returns the number of live consoles.
func (r *ConsoleRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
