// Package session holds the admin credential of one console and decides
// whether it is good. The credential is verified once per value with a
// harmless authenticated read against the data service; there is no
// retry and no expiry timer.
package session

import (
	"context"
	"log/slog"
	"strings"
	"sync"
)

// AuthErrorMessage is shown when the data service rejects the credential.
const AuthErrorMessage = "管理员口令无效"

// Prober checks a credential against the data service.
type Prober interface {
	Probe(ctx context.Context, token string) error
}

// Guard gates admin operations behind one shared credential.
type Guard struct {
	store  CredentialStore
	prober Prober

	mu         sync.RWMutex
	token      string
	verified   bool
	authError  string
	onVerified func(ctx context.Context)
}

// NewGuard creates a Guard. Call Init to pick up a stored credential.
func NewGuard(store CredentialStore, prober Prober) *Guard {
	return &Guard{store: store, prober: prober}
}

// OnVerified registers fn to run after every successful verification. The
// console uses it for the initial full reload.
func (g *Guard) OnVerified(fn func(ctx context.Context)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onVerified = fn
}

// Init verifies the stored credential, if there is one.
func (g *Guard) Init(ctx context.Context) error {
	token, err := g.store.Get(ctx)
	if err != nil {
		return err
	}
	if token == "" {
		return nil
	}
	g.mu.Lock()
	g.token = token
	g.mu.Unlock()
	g.Verify(ctx)
	return nil
}

// Verify probes the current credential. On failure the credential is
// dropped from memory and store and the auth error is set.
func (g *Guard) Verify(ctx context.Context) {
	g.mu.RLock()
	token := g.token
	g.mu.RUnlock()
	if token == "" {
		return
	}

	if err := g.prober.Probe(ctx, token); err != nil {
		slog.Info("admin credential rejected", slog.Any("error", err))
		if delErr := g.store.Delete(ctx); delErr != nil {
			slog.Warn("clearing stored credential failed", slog.Any("error", delErr))
		}
		g.mu.Lock()
		g.token = ""
		g.verified = false
		g.authError = AuthErrorMessage
		g.mu.Unlock()
		return
	}

	g.mu.Lock()
	g.verified = true
	g.authError = ""
	hook := g.onVerified
	g.mu.Unlock()

	if hook != nil {
		hook(ctx)
	}
}

// Login stores a new credential and verifies it. Blank input is ignored.
func (g *Guard) Login(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	if err := g.store.Set(ctx, token); err != nil {
		return err
	}
	g.mu.Lock()
	g.token = token
	g.verified = false
	g.mu.Unlock()
	g.Verify(ctx)
	return nil
}

// Logout forgets the credential everywhere.
func (g *Guard) Logout(ctx context.Context) error {
	g.mu.Lock()
	g.token = ""
	g.verified = false
	g.authError = ""
	g.mu.Unlock()
	return g.store.Delete(ctx)
}

// Token returns the current credential, or "".
func (g *Guard) Token() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.token
}

// Verified reports whether the current credential passed its probe.
func (g *Guard) Verified() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.verified
}

// AuthError returns the message of the last failed verification.
func (g *Guard) AuthError() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.authError
}
