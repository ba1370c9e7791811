package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"kosha/internal/config"
)

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing file")
	}
	if resolved != path {
		t.Fatalf("resolved path = %q, want %q", resolved, path)
	}
	if cfg.Paths.APIBind != "127.0.0.1:7842" {
		t.Fatalf("api_bind = %q, want default", cfg.Paths.APIBind)
	}
	if cfg.Sessions.Backend != "memory" || cfg.Sessions.TTLHours != 12 {
		t.Fatalf("unexpected session defaults: %#v", cfg.Sessions)
	}
	if len(cfg.Languages.Required) == 0 {
		t.Fatal("expected default required languages")
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	contents := `
[paths]
library_dir = "` + filepath.Join(dir, "library") + `"
log_dir = "` + filepath.Join(dir, "logs") + `"
api_bind = " 127.0.0.1:9000 "

[languages]
required = ["eng", "hin", "eng"]

[review]
require_reject_issues = true

[logging]
format = "JSON"
level = "Debug"
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists {
		t.Fatal("expected exists=true")
	}
	if cfg.Paths.APIBind != "127.0.0.1:9000" {
		t.Fatalf("api_bind = %q, want trimmed value", cfg.Paths.APIBind)
	}
	if len(cfg.Languages.Required) != 2 || cfg.Languages.Required[0] != "en" || cfg.Languages.Required[1] != "hi" {
		t.Fatalf("required = %v, want canonicalized [en hi]", cfg.Languages.Required)
	}
	if !cfg.Review.RequireRejectIssues {
		t.Fatal("expected require_reject_issues to be set")
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("logging = %#v, want lowercased", cfg.Logging)
	}
	if cfg.ReviewLogDir() != filepath.Join(cfg.Paths.LogDir, "review") {
		t.Fatalf("unexpected review log dir: %s", cfg.ReviewLogDir())
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name     string
		contents string
	}{
		{"bad session backend", "[sessions]\nbackend = \"redis\"\n"},
		{"bad log format", "[logging]\nformat = \"yaml\"\n"},
		{"bad log level", "[logging]\nlevel = \"trace\"\n"},
		{"bad language code", "[languages]\nrequired = [\"zz-not-a-lang!\"]\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tc.contents), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			if _, _, _, err := config.Load(path); err == nil {
				t.Fatal("expected load error")
			}
		})
	}
}

func TestAPITokenEnvOverride(t *testing.T) {
	t.Setenv("KOSHA_API_TOKEN", "env-secret")
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[paths]\napi_token = \"file-secret\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Paths.APIToken != "env-secret" {
		t.Fatalf("api_token = %q, want environment override", cfg.Paths.APIToken)
	}
}

func TestWriteSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample", "config.toml")
	if err := config.WriteSample(path); err != nil {
		t.Fatalf("WriteSample failed: %v", err)
	}
	if err := config.WriteSample(path); err == nil {
		t.Fatal("expected refusal to overwrite existing file")
	}
	if _, _, exists, err := config.Load(path); err != nil || !exists {
		t.Fatalf("sample config did not load: exists=%v err=%v", exists, err)
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.LibraryDir = filepath.Join(base, "library")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.LibraryDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s: %v", dir, err)
		}
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home dir in environment")
	}
	expanded, err := config.ExpandPath("~/kosha-test")
	if err != nil {
		t.Fatalf("ExpandPath failed: %v", err)
	}
	if !strings.HasPrefix(expanded, home) {
		t.Fatalf("expanded = %q, want prefix %q", expanded, home)
	}
	if got, _ := config.ExpandPath(""); got != "" {
		t.Fatalf("ExpandPath(\"\") = %q, want empty", got)
	}
}
