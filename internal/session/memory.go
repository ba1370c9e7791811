package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore holds sessions in process memory guarded by a mutex. Contents
// are lost on restart.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
}

// NewMemoryStore returns an empty in-memory registry. Sessions expire after
// ttl; a non-positive ttl disables expiry.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
	}
}

// Create registers a new session for the actor.
func (m *MemoryStore) Create(ctx context.Context, email string, roles []string) (*Session, error) {
	now := time.Now().UTC()
	session := &Session{
		Token:     newToken(),
		Email:     email,
		Roles:     append([]string(nil), roles...),
		CreatedAt: now,
	}
	if m.ttl > 0 {
		session.ExpiresAt = now.Add(m.ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.Token] = session
	return session, nil
}

// Lookup resolves a token to a live session.
func (m *MemoryStore) Lookup(ctx context.Context, token string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[token]
	if !ok {
		return nil, ErrNotFound
	}
	if session.Expired(time.Now().UTC()) {
		delete(m.sessions, token)
		return nil, ErrNotFound
	}
	cp := *session
	cp.Roles = append([]string(nil), session.Roles...)
	return &cp, nil
}

// Delete removes a session; unknown tokens are a no-op.
func (m *MemoryStore) Delete(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}

// Purge removes expired sessions.
func (m *MemoryStore) Purge(ctx context.Context, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	purged := 0
	for token, session := range m.sessions {
		if session.Expired(now) {
			delete(m.sessions, token)
			purged++
		}
	}
	return purged, nil
}

// Close clears the registry.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = make(map[string]*Session)
	return nil
}
