// Package session provides the authenticated-session registry for the
// daemon API.
//
// The Store interface is injected into the daemon so the volatile in-memory
// registry can be swapped for the SQLite-backed implementation (or any other
// persistent backend) without touching the core. The memory backend is
// process-scoped: created empty at startup and lost on restart, which forces
// re-authentication.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Session is one authenticated actor identity held by the registry.
type Session struct {
	Token     string    `json:"token"`
	Email     string    `json:"email"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its expiry at the given time.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// ErrNotFound is returned when no live session matches a token.
var ErrNotFound = errors.New("session not found")

// Store is the injectable session registry contract.
type Store interface {
	// Create registers a new session for the actor and returns it.
	Create(ctx context.Context, email string, roles []string) (*Session, error)
	// Lookup resolves a token to a live session, or ErrNotFound.
	Lookup(ctx context.Context, token string) (*Session, error)
	// Delete removes a session. Deleting an unknown token is a no-op.
	Delete(ctx context.Context, token string) error
	// Purge removes expired sessions and reports how many were dropped.
	Purge(ctx context.Context, now time.Time) (int, error)
	// Close releases backend resources.
	Close() error
}

// newToken mints an opaque session token.
func newToken() string {
	return uuid.NewString()
}
