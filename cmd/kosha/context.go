package main

import (
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"kosha/internal/api"
	"kosha/internal/config"
	"kosha/internal/export"
	"kosha/internal/library"
	"kosha/internal/logging"
	"kosha/internal/review"
)

type commandContext struct {
	configFlag *string

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error

	serviceOnce sync.Once
	service     *api.Service
	serviceErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.configPath = resolved
		c.configExists = exists
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// ensureService wires the store, review engine, and exporter behind a shared
// service facade. The CLI logs nothing by default; failures surface as
// command errors instead.
func (c *commandContext) ensureService() (*api.Service, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	c.serviceOnce.Do(func() {
		logger := logging.NewNop()
		store, err := library.Open(cfg, logger)
		if err != nil {
			c.serviceErr = err
			return
		}
		audit := review.NewAuditLogger(cfg.ReviewLogDir())
		engine := review.NewEngine(store, audit, logger,
			review.WithRequireRejectIssues(cfg.Review.RequireRejectIssues))
		c.service = api.NewService(store, engine, export.New(store, logger))
	})
	return c.service, c.serviceErr
}

func (c *commandContext) withService(fn func(*api.Service) error) error {
	svc, err := c.ensureService()
	if err != nil {
		return err
	}
	return fn(svc)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
