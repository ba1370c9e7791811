package testsupport

import (
	"path/filepath"
	"testing"

	"kosha/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.LibraryDir = filepath.Join(base, "library")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.APIBind = "127.0.0.1:0"
	cfgVal.Sessions.Path = filepath.Join(base, "sessions.db")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}

	return builder.cfg
}

// WithRequiredLanguages overrides the store-wide required language codes.
func WithRequiredLanguages(codes ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Languages.Required = codes
	}
}

// WithRequireRejectIssues toggles the reject-needs-issues policy.
func WithRequireRejectIssues(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Review.RequireRejectIssues = enabled
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.LibraryDir)
}
