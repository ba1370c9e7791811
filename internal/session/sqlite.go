package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists sessions in SQLite so they survive daemon restarts.
type SQLiteStore struct {
	db  *sql.DB
	ttl time.Duration
}

const sessionSchema = `
CREATE TABLE IF NOT EXISTS sessions (
    token      TEXT PRIMARY KEY,
    email      TEXT NOT NULL,
    roles      TEXT NOT NULL,
    created_at TEXT NOT NULL,
    expires_at TEXT
);
`

// OpenSQLite initializes or connects to the session database at path.
func OpenSQLite(path string, ttl time.Duration) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure session db dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	if _, err := db.Exec(sessionSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init session schema: %w", err)
	}
	return &SQLiteStore{db: db, ttl: ttl}, nil
}

// Create registers a new session for the actor.
func (s *SQLiteStore) Create(ctx context.Context, email string, roles []string) (*Session, error) {
	now := time.Now().UTC()
	session := &Session{
		Token:     newToken(),
		Email:     email,
		Roles:     append([]string(nil), roles...),
		CreatedAt: now,
	}
	var expires any
	if s.ttl > 0 {
		session.ExpiresAt = now.Add(s.ttl)
		expires = session.ExpiresAt.Format(time.RFC3339Nano)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (token, email, roles, created_at, expires_at) VALUES (?, ?, ?, ?, ?)`,
		session.Token, session.Email, strings.Join(session.Roles, ","),
		now.Format(time.RFC3339Nano), expires)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	return session, nil
}

// Lookup resolves a token to a live session.
func (s *SQLiteStore) Lookup(ctx context.Context, token string) (*Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT token, email, roles, created_at, expires_at FROM sessions WHERE token = ?`, token)

	var (
		session Session
		roles   string
		created string
		expires sql.NullString
	)
	if err := row.Scan(&session.Token, &session.Email, &roles, &created, &expires); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query session: %w", err)
	}
	if roles != "" {
		session.Roles = strings.Split(roles, ",")
	} else {
		session.Roles = []string{}
	}
	if parsed, err := time.Parse(time.RFC3339Nano, created); err == nil {
		session.CreatedAt = parsed
	}
	if expires.Valid {
		if parsed, err := time.Parse(time.RFC3339Nano, expires.String); err == nil {
			session.ExpiresAt = parsed
		}
	}
	if session.Expired(time.Now().UTC()) {
		_ = s.Delete(ctx, token)
		return nil, ErrNotFound
	}
	return &session, nil
}

// Delete removes a session; unknown tokens are a no-op.
func (s *SQLiteStore) Delete(ctx context.Context, token string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Purge removes expired sessions.
func (s *SQLiteStore) Purge(ctx context.Context, now time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at IS NOT NULL AND expires_at < ?`,
		now.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return int(affected), nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
