// internal/app/system/token/token.go
// Package token issues and validates the opaque bearer tokens the API
// and the WebSocket handshake authenticate with.
//
// A token is 32 bytes from crypto/rand, base64url-encoded. Validation
// is an exact digest lookup: appending or altering even one character
// produces a different digest, so a mutated token is simply unknown.
package token

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"time"

	"github.com/inkwell-live/inkwell/internal/app/store/tokens"
)

// ErrInvalid is returned for absent, malformed, unknown, or expired
// tokens. Callers treat every flavor the same: 401.
var ErrInvalid = errors.New("invalid token")

// DefaultTTL applies when the service is built with a zero ttl.
const DefaultTTL = 30 * 24 * time.Hour

const rawLen = 32

// Service issues and validates bearer tokens against the token store.
type Service struct {
	store *tokens.Store
	ttl   time.Duration
}

// NewService builds a token service. ttl <= 0 selects DefaultTTL.
func NewService(store *tokens.Store, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{store: store, ttl: ttl}
}

// Issue mints a token bound to userID and persists its digest.
func (s *Service) Issue(ctx context.Context, userID string) (string, error) {
	raw := make([]byte, rawLen)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	tok := base64.RawURLEncoding.EncodeToString(raw)

	now := time.Now().UTC()
	rec := tokens.Record{
		Digest:    digest(tok),
		UserID:    userID,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.store.Insert(ctx, rec); err != nil {
		return "", err
	}
	return tok, nil
}

// Validate resolves a presented token to the userID it was issued for.
func (s *Service) Validate(ctx context.Context, tok string) (string, error) {
	if tok == "" {
		return "", ErrInvalid
	}
	rec, err := s.store.Lookup(ctx, digest(tok))
	if err != nil {
		if errors.Is(err, tokens.ErrNotFound) {
			return "", ErrInvalid
		}
		return "", err
	}
	// The TTL index sweeps on its own schedule, so expiry is also
	// checked here.
	if !rec.ExpiresAt.After(time.Now().UTC()) {
		return "", ErrInvalid
	}
	return rec.UserID, nil
}

// Revoke invalidates a token immediately.
func (s *Service) Revoke(ctx context.Context, tok string) error {
	return s.store.Delete(ctx, digest(tok))
}

func digest(tok string) string {
	sum := sha256.Sum256([]byte(tok))
	return hex.EncodeToString(sum[:])
}
