package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"kosha/internal/api"
	"kosha/internal/config"
	"kosha/internal/library"
	"kosha/internal/logging"
)

type apiServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon
	svc    *api.Service

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	if cfg == nil || d == nil {
		return nil, nil
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, nil
	}

	srv := &apiServer{
		bind:   bind,
		logger: logger,
		daemon: d,
		svc:    d.service,
	}

	auth := func(h http.HandlerFunc) http.HandlerFunc {
		return authMiddleware(cfg.Paths.APIToken, d.sessions, h)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/login", srv.handleLogin)
	mux.HandleFunc("POST /api/logout", auth(srv.handleLogout))
	mux.HandleFunc("GET /api/status", auth(srv.handleStatus))

	mux.HandleFunc("GET /api/works", auth(srv.handleListWorks))
	mux.HandleFunc("POST /api/works", auth(srv.handleCreateWork))
	mux.HandleFunc("GET /api/works/{work}", auth(srv.handleGetWork))
	mux.HandleFunc("PUT /api/works/{work}", auth(srv.handleUpdateWork))
	mux.HandleFunc("DELETE /api/works/{work}", auth(srv.handleDeleteWork))

	mux.HandleFunc("GET /api/works/{work}/verses", auth(srv.handleListVerses))
	mux.HandleFunc("POST /api/works/{work}/verses", auth(srv.handleCreateVerse))
	mux.HandleFunc("GET /api/works/{work}/verses/{verse}", auth(srv.handleGetVerse))
	mux.HandleFunc("PUT /api/works/{work}/verses/{verse}", auth(srv.handleReplaceVerse))
	mux.HandleFunc("PATCH /api/works/{work}/verses/{verse}", auth(srv.handlePatchVerse))
	mux.HandleFunc("DELETE /api/works/{work}/verses/{verse}", auth(srv.handleDeleteVerse))

	mux.HandleFunc("GET /api/works/{work}/commentary", auth(srv.handleListCommentary))
	mux.HandleFunc("POST /api/works/{work}/commentary", auth(srv.handleCreateCommentary))
	mux.HandleFunc("GET /api/works/{work}/commentary/{id}", auth(srv.handleGetCommentary))
	mux.HandleFunc("PUT /api/works/{work}/commentary/{id}", auth(srv.handleReplaceCommentary))
	mux.HandleFunc("PATCH /api/works/{work}/commentary/{id}", auth(srv.handlePatchCommentary))
	mux.HandleFunc("DELETE /api/works/{work}/commentary/{id}", auth(srv.handleDeleteCommentary))

	mux.HandleFunc("POST /api/works/{work}/review", auth(srv.handleTransition))
	mux.HandleFunc("POST /api/works/{work}/review/bulk", auth(srv.handleBulkTransition))

	mux.HandleFunc("GET /api/works/{work}/export/merged", auth(srv.handleExportMerged))
	mux.HandleFunc("GET /api/works/{work}/export/clean", auth(srv.handleExportClean))
	mux.HandleFunc("GET /api/works/{work}/export/training", auth(srv.handleExportTraining))
	mux.HandleFunc("GET /api/export/clean", auth(srv.handleExportCleanAll))

	mux.HandleFunc("GET /api/trash", auth(srv.handleTrash))

	srv.server = &http.Server{
		Handler:           srv.withRequestID(mux),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

func (s *apiServer) start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", slog.String("error", err.Error()))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", slog.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

// withRequestID tags every request with a correlation id so daemon log
// lines can be tied back to a specific API call. Clients may supply
// their own via X-Request-ID; otherwise one is generated.
func (s *apiServer) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get("X-Request-ID"))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		ctx := logging.WithRequestID(r.Context(), id)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r.WithContext(ctx))
		logging.WithContext(ctx, s.log()).Debug("api request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.Duration("duration", time.Since(start)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Addr reports the bound listen address, or "" before start.
func (s *apiServer) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		s.writeError(w, http.StatusBadRequest, "email is required")
		return
	}
	sess, err := s.daemon.sessions.Create(r.Context(), req.Email, req.Roles)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := api.LoginResponse{
		Token: sess.Token,
		Email: sess.Email,
		Roles: sess.Roles,
	}
	if !sess.ExpiresAt.IsZero() {
		resp.ExpiresAt = sess.ExpiresAt.UTC().Format(time.RFC3339)
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *apiServer) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if err := s.daemon.sessions.Delete(r.Context(), token); err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := s.daemon.Status()
	summary, err := s.svc.Summary(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.DaemonStatus{
		Running:      status.Running,
		PID:          status.PID,
		LibraryDir:   status.LibraryDir,
		LockFilePath: status.LockFilePath,
		Library:      *summary,
	})
}

func (s *apiServer) handleListWorks(w http.ResponseWriter, r *http.Request) {
	works, err := s.svc.ListWorks(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, works)
}

func (s *apiServer) handleCreateWork(w http.ResponseWriter, r *http.Request) {
	var work library.Work
	if err := decodeBody(r, &work); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := s.svc.CreateWork(r.Context(), &work)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, created)
}

func (s *apiServer) handleGetWork(w http.ResponseWriter, r *http.Request) {
	work, err := s.svc.GetWork(r.Context(), r.PathValue("work"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, work)
}

func (s *apiServer) handleUpdateWork(w http.ResponseWriter, r *http.Request) {
	var work library.Work
	if err := decodeBody(r, &work); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	updated, err := s.svc.UpdateWork(r.Context(), r.PathValue("work"), &work)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, updated)
}

func (s *apiServer) handleDeleteWork(w http.ResponseWriter, r *http.Request) {
	tomb, err := s.svc.DeleteWork(r.Context(), r.PathValue("work"), s.actor(r))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, tomb)
}

func (s *apiServer) handleListVerses(w http.ResponseWriter, r *http.Request) {
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	list, err := s.svc.ListVerses(r.Context(), r.PathValue("work"), offset, limit)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, list)
}

func (s *apiServer) handleCreateVerse(w http.ResponseWriter, r *http.Request) {
	var verse library.Verse
	if err := decodeBody(r, &verse); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	after := strings.TrimSpace(r.URL.Query().Get("after"))
	created, err := s.svc.CreateVerse(r.Context(), r.PathValue("work"), &verse, after)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, created)
}

func (s *apiServer) handleGetVerse(w http.ResponseWriter, r *http.Request) {
	verse, err := s.svc.GetVerse(r.Context(), r.PathValue("work"), r.PathValue("verse"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, verse)
}

func (s *apiServer) handleReplaceVerse(w http.ResponseWriter, r *http.Request) {
	var verse library.Verse
	if err := decodeBody(r, &verse); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	updated, err := s.svc.ReplaceVerse(r.Context(), r.PathValue("work"), r.PathValue("verse"), &verse)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, updated)
}

func (s *apiServer) handlePatchVerse(w http.ResponseWriter, r *http.Request) {
	patch, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	updated, err := s.svc.PatchVerse(r.Context(), r.PathValue("work"), r.PathValue("verse"), patch)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, updated)
}

func (s *apiServer) handleDeleteVerse(w http.ResponseWriter, r *http.Request) {
	tomb, err := s.svc.DeleteVerse(r.Context(), r.PathValue("work"), r.PathValue("verse"), s.actor(r))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, tomb)
}

func (s *apiServer) handleListCommentary(w http.ResponseWriter, r *http.Request) {
	scope := strings.TrimSpace(r.URL.Query().Get("scope"))
	items, err := s.svc.ListCommentary(r.Context(), r.PathValue("work"), scope)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, items)
}

func (s *apiServer) handleCreateCommentary(w http.ResponseWriter, r *http.Request) {
	var commentary library.Commentary
	if err := decodeBody(r, &commentary); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := s.svc.CreateCommentary(r.Context(), r.PathValue("work"), &commentary)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, created)
}

func (s *apiServer) handleGetCommentary(w http.ResponseWriter, r *http.Request) {
	item, err := s.svc.GetCommentary(r.Context(), r.PathValue("work"), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, item)
}

func (s *apiServer) handleReplaceCommentary(w http.ResponseWriter, r *http.Request) {
	var commentary library.Commentary
	if err := decodeBody(r, &commentary); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	updated, err := s.svc.ReplaceCommentary(r.Context(), r.PathValue("work"), r.PathValue("id"), &commentary)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, updated)
}

func (s *apiServer) handlePatchCommentary(w http.ResponseWriter, r *http.Request) {
	patch, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	updated, err := s.svc.PatchCommentary(r.Context(), r.PathValue("work"), r.PathValue("id"), patch)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, updated)
}

func (s *apiServer) handleDeleteCommentary(w http.ResponseWriter, r *http.Request) {
	tomb, err := s.svc.DeleteCommentary(r.Context(), r.PathValue("work"), r.PathValue("id"), s.actor(r))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, tomb)
}

func (s *apiServer) handleTransition(w http.ResponseWriter, r *http.Request) {
	var req api.TransitionRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := s.svc.Transition(r.Context(), r.PathValue("work"), req)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *apiServer) handleBulkTransition(w http.ResponseWriter, r *http.Request) {
	var req api.BulkTransitionRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := s.svc.BulkTransition(r.Context(), r.PathValue("work"), req)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *apiServer) handleExportMerged(w http.ResponseWriter, r *http.Request) {
	merged, err := s.svc.ExportMerged(r.Context(), r.PathValue("work"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, merged)
}

func (s *apiServer) handleExportClean(w http.ResponseWriter, r *http.Request) {
	clean, err := s.svc.ExportClean(r.Context(), r.PathValue("work"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, clean)
}

func (s *apiServer) handleExportCleanAll(w http.ResponseWriter, r *http.Request) {
	clean, err := s.svc.ExportCleanAll(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, clean)
}

func (s *apiServer) handleExportTraining(w http.ResponseWriter, r *http.Request) {
	lines, err := s.svc.ExportTraining(r.Context(), r.PathValue("work"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, lines)
}

func (s *apiServer) handleTrash(w http.ResponseWriter, r *http.Request) {
	tombs, err := s.svc.ListTombstones(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, tombs)
}

// actor resolves the acting identity for mutating requests. An explicit
// query parameter wins; otherwise the session tied to the bearer token.
func (s *apiServer) actor(r *http.Request) string {
	if actor := strings.TrimSpace(r.URL.Query().Get("actor")); actor != "" {
		return actor
	}
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if token != "" && s.daemon.sessions != nil {
		if sess, err := s.daemon.sessions.Lookup(r.Context(), token); err == nil {
			return sess.Email
		}
	}
	return ""
}

func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

func (s *apiServer) writeServiceError(w http.ResponseWriter, err error) {
	s.writeError(w, statusForError(err), err.Error())
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, library.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, library.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, library.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, library.ErrBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", slog.String("error", err.Error()))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return s.logger.With(slog.String(logging.FieldComponent, "api-server"))
	}
	return logging.NewNop()
}
