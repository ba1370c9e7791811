package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	configPath := filepath.Join(base, "config.toml")
	contents := fmt.Sprintf(`[paths]
library_dir = %q
log_dir = %q

[languages]
required = ["en"]
`, filepath.Join(base, "library"), filepath.Join(base, "logs"))
	if err := os.WriteFile(configPath, []byte(contents), 0o644); err != nil {
		t.Fatalf("write test config: %v", err)
	}

	return &cliTestEnv{baseDir: base, configPath: configPath}
}

func runCLI(t *testing.T, env *cliTestEnv, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", env.configPath}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeDocument(t *testing.T, env *cliTestEnv, name, contents string) string {
	t.Helper()
	path := filepath.Join(env.baseDir, name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write document: %v", err)
	}
	return path
}

func requireContains(t *testing.T, out, want string) {
	t.Helper()
	if !strings.Contains(out, want) {
		t.Fatalf("output %q does not contain %q", out, want)
	}
}
