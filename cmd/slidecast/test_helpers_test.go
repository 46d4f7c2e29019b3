package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"slidecast/internal/config"
	"slidecast/internal/pipeline"
	"slidecast/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
	tools      *fakeTools
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, opts...)
	cfg.Encoding.VerifyOutput = false
	cfg.OpenAI.APIKey = ""
	base := testsupport.BaseDir(cfg)

	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("OPENAI_API_KEY", "")

	configPath := filepath.Join(homeDir, ".config", "slidecast", "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		baseDir:    base,
		tools:      &fakeTools{pages: 3},
	}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	testsupport.WriteFile(t, path, string(data))
}

func (e *cliTestEnv) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	return runCLI(t, args, e.configPath, pipeline.WithRunner(e.tools.run))
}

func runCLI(t *testing.T, args []string, configPath string, opts ...pipeline.Option) (string, string, error) {
	t.Helper()
	cmd := newRootCommand(opts...)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// fakeTools creates the files mutool, espeak-ng and ffmpeg would write.
type fakeTools struct {
	mu    sync.Mutex
	pages int
	calls []string
}

func (f *fakeTools) run(_ context.Context, name string, args ...string) error {
	tool := filepath.Base(name)
	f.mu.Lock()
	f.calls = append(f.calls, tool+" "+strings.Join(args, " "))
	f.mu.Unlock()

	switch tool {
	case "mutool":
		for i := 1; i <= f.pages; i++ {
			page := strings.Replace(args[2], "%d", strconv.Itoa(i), 1)
			if err := os.WriteFile(page, []byte("png"), 0o644); err != nil {
				return err
			}
		}
		return nil
	case "espeak-ng":
		for i, arg := range args {
			if arg == "-w" && i+1 < len(args) {
				return os.WriteFile(args[i+1], []byte("wav"), 0o644)
			}
		}
		return errors.New("espeak-ng: no -w")
	case "ffmpeg":
		out := args[len(args)-1]
		if out == "-y" {
			out = args[len(args)-2]
		}
		return os.WriteFile(out, []byte("media"), 0o644)
	}
	return errors.New("unexpected tool " + tool)
}

func (f *fakeTools) joined() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return strings.Join(f.calls, "\n")
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
