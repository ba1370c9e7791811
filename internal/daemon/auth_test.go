package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"kosha/internal/library"
	"kosha/internal/session"
)

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func doRequest(t *testing.T, handler http.HandlerFunc, authorization string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec.Code
}

func TestAuthMiddlewarePassthroughWhenUnconfigured(t *testing.T) {
	handler := authMiddleware("", nil, okHandler)
	if code := doRequest(t, handler, ""); code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
}

func TestAuthMiddlewareStaticToken(t *testing.T) {
	handler := authMiddleware("secret", nil, okHandler)

	if code := doRequest(t, handler, "Bearer secret"); code != http.StatusOK {
		t.Fatalf("valid token: status = %d, want 200", code)
	}
	if code := doRequest(t, handler, "Bearer wrong"); code != http.StatusUnauthorized {
		t.Fatalf("wrong token: status = %d, want 401", code)
	}
	if code := doRequest(t, handler, ""); code != http.StatusUnauthorized {
		t.Fatalf("missing header: status = %d, want 401", code)
	}
	if code := doRequest(t, handler, "Basic secret"); code != http.StatusUnauthorized {
		t.Fatalf("non-bearer scheme: status = %d, want 401", code)
	}
}

func TestAuthMiddlewareSessionToken(t *testing.T) {
	sessions := session.NewMemoryStore(time.Hour)
	defer sessions.Close()
	created, err := sessions.Create(context.Background(), "reviewer@example.org", nil)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	handler := authMiddleware("", sessions, okHandler)
	if code := doRequest(t, handler, "Bearer "+created.Token); code != http.StatusOK {
		t.Fatalf("session token: status = %d, want 200", code)
	}
	if code := doRequest(t, handler, "Bearer stale-token"); code != http.StatusUnauthorized {
		t.Fatalf("unknown session: status = %d, want 401", code)
	}
}

func TestAuthMiddlewareStaticTokenOrSession(t *testing.T) {
	sessions := session.NewMemoryStore(time.Hour)
	defer sessions.Close()
	created, err := sessions.Create(context.Background(), "typist@example.org", nil)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	handler := authMiddleware("secret", sessions, okHandler)
	if code := doRequest(t, handler, "Bearer secret"); code != http.StatusOK {
		t.Fatalf("static token: status = %d, want 200", code)
	}
	if code := doRequest(t, handler, "Bearer "+created.Token); code != http.StatusOK {
		t.Fatalf("session token: status = %d, want 200", code)
	}
}

func TestStatusForError(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{library.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("verse V0001: %w", library.ErrNotFound), http.StatusNotFound},
		{library.ErrConflict, http.StatusConflict},
		{library.ErrValidation, http.StatusUnprocessableEntity},
		{library.ErrBadRequest, http.StatusBadRequest},
		{errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := statusForError(tc.err); got != tc.want {
			t.Errorf("statusForError(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}
