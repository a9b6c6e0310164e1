// Package auth guards the admin half of the data service with one shared
// edit token. There are no user accounts: every editor holds the same
// credential and presents it as a bearer token.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
	"strings"
	"sync/atomic"

	"golang.org/x/crypto/bcrypt"

	"github.com/keyxmakerx/worldatlas/internal/apperror"
)

// TokenVerifier checks presented edit tokens.
type TokenVerifier interface {
	Verify(token string) error
}

// bcryptVerifier compares tokens against a bcrypt hash. The SHA-256 digest
// of the last accepted token is remembered so the hot path of a reload
// (three list calls) doesn't pay three bcrypt comparisons.
type bcryptVerifier struct {
	hash     []byte
	accepted atomic.Pointer[[sha256.Size]byte]
}

// NewTokenVerifier builds a verifier from either a bcrypt hash or a
// plaintext token. The hash wins when both are set. A plaintext token is
// hashed once here and never kept.
func NewTokenVerifier(plaintext, hash string) (TokenVerifier, error) {
	if hash != "" {
		if _, err := bcrypt.Cost([]byte(hash)); err != nil {
			return nil, fmt.Errorf("parsing admin token hash: %w", err)
		}
		return &bcryptVerifier{hash: []byte(hash)}, nil
	}

	plaintext = strings.TrimSpace(plaintext)
	if plaintext == "" {
		return nil, fmt.Errorf("admin token is empty")
	}
	h, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing admin token: %w", err)
	}
	return &bcryptVerifier{hash: h}, nil
}

// Verify returns an unauthorized AppError unless token matches.
func (v *bcryptVerifier) Verify(token string) error {
	if token == "" {
		return apperror.NewUnauthorized("edit token required")
	}

	digest := sha256.Sum256([]byte(token))
	if last := v.accepted.Load(); last != nil && subtle.ConstantTimeCompare(last[:], digest[:]) == 1 {
		return nil
	}

	if err := bcrypt.CompareHashAndPassword(v.hash, []byte(token)); err != nil {
		return apperror.NewUnauthorized("invalid edit token")
	}
	v.accepted.Store(&digest)
	return nil
}
