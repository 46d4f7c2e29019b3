package logging_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"slidecast/internal/config"
	"slidecast/internal/logging"
	"slidecast/internal/services"
)

func TestNewFromConfigWritesConsoleAndJSONFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(t.TempDir(), "logs")
	var console bytes.Buffer

	logger, err := logging.NewFromConfig(&cfg, &console)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("hello", logging.String("voice", "alloy"))
	if err := logger.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if !strings.Contains(console.String(), "INFO - hello") {
		t.Fatalf("unexpected console output %q", console.String())
	}
	data, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, logging.LogFileName))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"hello"`) || !strings.Contains(string(data), `"voice":"alloy"`) {
		t.Fatalf("unexpected json log %q", data)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestConsoleLoggerSourceOnlyAtDebug(t *testing.T) {
	var info, debug bytes.Buffer
	infoLogger, err := logging.New(logging.Options{Level: "info", Console: &info})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	debugLogger, err := logging.New(logging.Options{Level: "debug", Console: &debug})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	infoLogger.Info("message")
	debugLogger.Info("message")

	if strings.Contains(info.String(), ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", info.String())
	}
	if !strings.Contains(debug.String(), "logger_test.go:") {
		t.Fatalf("expected caller information in debug logs, got %q", debug.String())
	}
}

func TestWithContextAddsRunFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "debug", Format: "json", Console: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := services.WithRunID(context.Background(), 7)
	ctx = services.WithStage(ctx, "clips")
	ctx = services.WithSlideIndex(ctx, 1)
	ctx = services.WithRequestID(ctx, "corr-1")

	logging.WithContext(ctx, logger.Logger).Info("clip assembled")

	out := buf.String()
	for _, want := range []string{`"run_id":7`, `"stage":"clips"`, `"slide_index":1`, `"correlation_id":"corr-1"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in %q", want, out)
		}
	}
}

func TestWarnWithContextFillsDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Console: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logging.WarnWithContext(logger.Logger, "cleanup failed", "workspace_cleanup_failed", logging.String(logging.FieldImpact, "stale files remain"))

	out := buf.String()
	for _, want := range []string{`"event_type":"workspace_cleanup_failed"`, `"error_hint":"check logs for details"`, `"impact":"stale files remain"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in %q", want, out)
		}
	}
}
