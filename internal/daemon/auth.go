package daemon

import (
	"context"
	"net/http"
	"strings"

	"kosha/internal/session"
)

// sessionLookup is the slice of the session store the auth layer needs.
type sessionLookup interface {
	Lookup(ctx context.Context, token string) (*session.Session, error)
}

// authMiddleware validates bearer tokens against the static API token or the
// session registry. If neither a token nor a session store is configured,
// all requests pass through.
func authMiddleware(token string, sessions sessionLookup, next http.HandlerFunc) http.HandlerFunc {
	token = strings.TrimSpace(token)
	if token == "" && sessions == nil {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
			return
		}
		presented := strings.TrimPrefix(auth, "Bearer ")
		if token != "" && presented == token {
			next(w, r)
			return
		}
		if sessions != nil {
			if _, err := sessions.Lookup(r.Context(), presented); err == nil {
				next(w, r)
				return
			}
		}
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
	}
}
