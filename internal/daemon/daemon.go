package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"kosha/internal/api"
	"kosha/internal/config"
	"kosha/internal/logging"
	"kosha/internal/session"
)

// Daemon coordinates the HTTP API and enforces single-instance execution.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	service  *api.Service
	sessions session.Store

	lockPath string
	lock     *flock.Flock
	api      *apiServer

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	LibraryDir   string
	LockFilePath string
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, svc *api.Service, sessions session.Store, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || svc == nil || sessions == nil || logger == nil {
		return nil, errors.New("daemon requires config, service, sessions, and logger")
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "koshad.lock")
	d := &Daemon{
		cfg:      cfg,
		logger:   logger,
		service:  svc,
		sessions: sessions,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	srv, err := newAPIServer(cfg, d, logger)
	if err != nil {
		return nil, err
	}
	d.api = srv
	return d, nil
}

// Start acquires the daemon lock and brings up the API listener.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another koshad instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	if d.api != nil {
		if err := d.api.start(d.ctx); err != nil {
			_ = d.lock.Unlock()
			d.cancel()
			d.ctx = nil
			d.cancel = nil
			return err
		}
	}
	go d.purgeSessions(d.ctx)

	d.running.Store(true)
	d.logger.Info("koshad started",
		slog.String("lock", d.lockPath),
		slog.String(logging.FieldComponent, "daemon"),
	)
	return nil
}

// Stop shuts down the API listener and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if d.api != nil {
		d.api.stop()
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", slog.String("error", err.Error()))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("koshad stopped", slog.String(logging.FieldComponent, "daemon"))
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.sessions != nil {
		return d.sessions.Close()
	}
	return nil
}

// Service exposes the library operations backing the API.
func (d *Daemon) Service() *api.Service {
	return d.service
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	return Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		LibraryDir:   d.cfg.Paths.LibraryDir,
		LockFilePath: d.lockPath,
	}
}

// purgeSessions drops expired sessions on a slow cadence until ctx ends.
func (d *Daemon) purgeSessions(ctx context.Context) {
	ticker := time.NewTicker(15 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			dropped, err := d.sessions.Purge(ctx, now)
			if err != nil {
				d.logger.Warn("session purge failed", slog.String("error", err.Error()))
				continue
			}
			if dropped > 0 {
				d.logger.Debug("purged expired sessions", slog.Int("count", dropped))
			}
		}
	}
}
