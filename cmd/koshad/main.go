package main

import (
	"context"
	"log"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"kosha/internal/api"
	"kosha/internal/config"
	"kosha/internal/daemon"
	"kosha/internal/export"
	"kosha/internal/library"
	"kosha/internal/logging"
	"kosha/internal/review"
	"kosha/internal/session"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("prepare directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	store, err := library.Open(cfg, logger)
	if err != nil {
		logger.Error("open library store", slog.String("error", err.Error()))
		return
	}

	audit := review.NewAuditLogger(cfg.ReviewLogDir())
	engine := review.NewEngine(store, audit, logger,
		review.WithRequireRejectIssues(cfg.Review.RequireRejectIssues))
	exporter := export.New(store, logger)
	svc := api.NewService(store, engine, exporter)

	sessions, err := openSessions(cfg)
	if err != nil {
		logger.Error("open session store", slog.String("error", err.Error()))
		return
	}

	d, err := daemon.New(cfg, svc, sessions, logger)
	if err != nil {
		logger.Error("create daemon", slog.String("error", err.Error()))
		return
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", slog.String("error", err.Error()))
		return
	}

	<-ctx.Done()
	logger.Info("koshad shutting down")
}

func openSessions(cfg *config.Config) (session.Store, error) {
	ttl := time.Duration(cfg.Sessions.TTLHours) * time.Hour
	if cfg.Sessions.Backend == "sqlite" {
		return session.OpenSQLite(cfg.Sessions.Path, ttl)
	}
	return session.NewMemoryStore(ttl), nil
}
