package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// mockProber accepts a single token and counts calls.
type mockProber struct {
	good  string
	calls []string
}

func (m *mockProber) Probe(_ context.Context, token string) error {
	m.calls = append(m.calls, token)
	if token != m.good {
		return errors.New("invalid edit token")
	}
	return nil
}

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewRedisStore(rdb, "browser-1", 0), mr
}

func TestInit_RejectedCredentialIsCleared(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()
	if err := store.Set(ctx, "abc123"); err != nil {
		t.Fatal(err)
	}

	loads := 0
	g := NewGuard(store, &mockProber{good: "other"})
	g.OnVerified(func(context.Context) { loads++ })

	if err := g.Init(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.Verified() {
		t.Error("expected unverified session")
	}
	if g.AuthError() != "管理员口令无效" {
		t.Errorf("unexpected auth error %q", g.AuthError())
	}
	if g.Token() != "" {
		t.Error("expected in-memory credential to be cleared")
	}
	if mr.Exists("console:browser-1:adminEditToken") {
		t.Error("expected stored credential to be deleted")
	}
	if loads != 0 {
		t.Errorf("expected no collection loads, got %d", loads)
	}
}

func TestInit_NoStoredCredential(t *testing.T) {
	prober := &mockProber{good: "abc123"}
	g := NewGuard(&MemoryStore{}, prober)
	if err := g.Init(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prober.calls) != 0 {
		t.Errorf("expected no probe, got %v", prober.calls)
	}
}

func TestLogin_VerifiesAndPersists(t *testing.T) {
	store, mr := newRedisStore(t)
	loads := 0
	g := NewGuard(store, &mockProber{good: "abc123"})
	g.OnVerified(func(context.Context) { loads++ })

	if err := g.Login(context.Background(), "  abc123  "); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !g.Verified() || g.Token() != "abc123" {
		t.Errorf("expected verified session with trimmed token, got %v %q", g.Verified(), g.Token())
	}
	if got, _ := mr.Get("console:browser-1:adminEditToken"); got != "abc123" {
		t.Errorf("expected token in redis, got %q", got)
	}
	if loads != 1 {
		t.Errorf("expected one initial reload, got %d", loads)
	}
}

func TestLogin_BlankIsNoop(t *testing.T) {
	prober := &mockProber{good: "abc123"}
	store := &MemoryStore{}
	g := NewGuard(store, prober)

	if err := g.Login(context.Background(), "   "); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prober.calls) != 0 {
		t.Error("blank login must not probe")
	}
	if tok, _ := store.Get(context.Background()); tok != "" {
		t.Error("blank login must not persist")
	}
}

func TestLogin_ClearsPreviousAuthError(t *testing.T) {
	g := NewGuard(&MemoryStore{}, &mockProber{good: "abc123"})
	ctx := context.Background()

	_ = g.Login(ctx, "wrong")
	if g.AuthError() == "" {
		t.Fatal("expected auth error after bad login")
	}
	_ = g.Login(ctx, "abc123")
	if g.AuthError() != "" || !g.Verified() {
		t.Errorf("expected clean verified state, got %q %v", g.AuthError(), g.Verified())
	}
}

func TestLogout(t *testing.T) {
	store, mr := newRedisStore(t)
	g := NewGuard(store, &mockProber{good: "abc123"})
	ctx := context.Background()
	_ = g.Login(ctx, "abc123")

	if err := g.Logout(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.Verified() || g.Token() != "" || g.AuthError() != "" {
		t.Error("expected unauthenticated state")
	}
	if mr.Exists("console:browser-1:adminEditToken") {
		t.Error("expected stored credential to be deleted")
	}
}

func TestRedisStore_TTL(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	store := NewRedisStore(rdb, "b", time.Hour)
	ctx := context.Background()
	if err := store.Set(ctx, "tok"); err != nil {
		t.Fatal(err)
	}
	if ttl := mr.TTL("console:b:adminEditToken"); ttl != time.Hour {
		t.Errorf("expected 1h TTL, got %v", ttl)
	}
	mr.FastForward(2 * time.Hour)
	if got, err := store.Get(ctx); err != nil || got != "" {
		t.Errorf("expected expired credential, got %q %v", got, err)
	}
}
