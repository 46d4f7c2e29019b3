// Package testsupport builds isolated configs, stores, and files for tests.
package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"slidecast/internal/config"
)

// ConfigOption customizes the config returned by NewConfig.
type ConfigOption func(t testing.TB, base string, cfg *config.Config)

// NewConfig returns the default config rooted in a fresh temp directory:
//
//	<base>/state            state_dir
//	<base>/state/workspace  workspace_dir
//	<base>/state/logs       log_dir
//	<base>/out              output_dir
//	<base>/inbox            watch.dir
//
// The OpenAI key is a placeholder and the base URL is unroutable so tests
// that forget WithOpenAI fail fast.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StateDir = filepath.Join(base, "state")
	cfg.Paths.WorkspaceDir = filepath.Join(cfg.Paths.StateDir, "workspace")
	cfg.Paths.LogDir = filepath.Join(cfg.Paths.StateDir, "logs")
	cfg.Paths.OutputDir = filepath.Join(base, "out")
	cfg.Watch.Dir = filepath.Join(base, "inbox")
	cfg.OpenAI.APIKey = "test"
	cfg.OpenAI.BaseURL = "http://127.0.0.1:0/v1"

	for _, opt := range opts {
		opt(t, base, &cfg)
	}
	return &cfg
}

// WithOpenAI points the cloud clients at a test server.
func WithOpenAI(baseURL, key string) ConfigOption {
	return func(_ testing.TB, _ string, cfg *config.Config) {
		cfg.OpenAI.BaseURL = baseURL
		cfg.OpenAI.APIKey = key
	}
}

// WithStubbedBinaries installs exit-0 shell stubs under <base>/bin and puts
// that directory first on PATH for the rest of the test. With no names it
// stubs ffmpeg, ffprobe, mutool, and espeak-ng.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(t testing.TB, base string, _ *config.Config) {
		if len(names) == 0 {
			names = []string{"ffmpeg", "ffprobe", "mutool", "espeak-ng"}
		}
		binDir := filepath.Join(base, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			t.Fatalf("mkdir bin dir: %v", err)
		}
		for _, name := range names {
			if err := os.WriteFile(filepath.Join(binDir, name), []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
				t.Fatalf("write stub %s: %v", name, err)
			}
		}
		t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
	}
}

// BaseDir returns the temp directory NewConfig rooted cfg in.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
