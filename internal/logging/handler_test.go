package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func newTestPretty(buf *bytes.Buffer, level slog.Level) slog.Handler {
	lvl := new(slog.LevelVar)
	lvl.Set(level)
	return newPrettyHandler(buf, lvl, false)
}

func TestPrettyHandlerHeaderComposesStageAndSlide(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newTestPretty(&buf, slog.LevelInfo)).With(String(FieldComponent, "narration"))

	logger.Info("narration synthesized", String(FieldStage, "narrate"), Int(FieldSlideIndex, 2), String("voice", "nova"))

	out := buf.String()
	if !strings.Contains(out, "INFO [narration] narrate · slide 3 - narration synthesized") {
		t.Fatalf("unexpected header: %q", out)
	}
	if !strings.Contains(out, "    - Voice: nova") {
		t.Fatalf("expected voice field, got %q", out)
	}
	if strings.Contains(out, "Slide Index") {
		t.Fatalf("slide index should only appear in header, got %q", out)
	}
}

func TestPrettyHandlerHidesDebugOnlyFieldsAtInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newTestPretty(&buf, slog.LevelInfo))

	logger.Info("run started", String(FieldCorrelationID, "abc"), String(FieldEventType, "run_start"))

	out := buf.String()
	if strings.Contains(out, "abc") {
		t.Fatalf("correlation id should be hidden at info, got %q", out)
	}
	if !strings.Contains(out, "    - Event: run_start") || !strings.Contains(out, "+ 1 more field hidden") {
		t.Fatalf("unexpected info body: %q", out)
	}
}

func TestPrettyHandlerDebugListsEverything(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newTestPretty(&buf, slog.LevelDebug))

	logger.Debug("ffmpeg invocation", String(FieldCorrelationID, "abc"), String("args", "-y -i in.png"))

	out := buf.String()
	if !strings.Contains(out, "DEBUG") || !strings.Contains(out, "correlation_id: abc") {
		t.Fatalf("expected debug output with all attrs, got %q", out)
	}
	if !strings.Contains(out, `args: -y -i in.png`) {
		t.Fatalf("expected raw args, got %q", out)
	}
}

func TestPrettyHandlerFormatsValues(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newTestPretty(&buf, slog.LevelInfo))

	logger.Warn("delivery slow",
		Duration("stage_duration", 1500*time.Millisecond),
		Int("output_bytes", 2048),
		Bool("verified", true),
		Error(errors.New("boom")),
	)

	out := buf.String()
	for _, want := range []string{"Duration: 1.5s", "Output Bytes: 2.0 KiB", "Verified: yes", "Error: boom"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
	if strings.Index(out, "Error: boom") > strings.Index(out, "Duration") {
		t.Fatalf("expected error to be highlighted before duration: %q", out)
	}
}

func TestPrettyHandlerGroupsAndDedupe(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newTestPretty(&buf, slog.LevelInfo)).With(String("voice", "alloy"))

	logger.WithGroup("tts").Info("configured", String("model", "tts-1"), String("voice", "echo"))

	out := buf.String()
	if !strings.Contains(out, "Tts Model: tts-1") {
		t.Fatalf("expected grouped key, got %q", out)
	}
	if !strings.Contains(out, "Voice: alloy") || !strings.Contains(out, "Tts Voice: echo") {
		t.Fatalf("expected both voice attrs, got %q", out)
	}
}

func TestComposeSubject(t *testing.T) {
	tests := []struct {
		stage, slide, want string
	}{
		{"", "", ""},
		{"clips", "", "clips"},
		{"", "0", "slide 1"},
		{"clips", "4", "clips · slide 5"},
	}
	for _, tt := range tests {
		if got := composeSubject(tt.stage, tt.slide); got != tt.want {
			t.Fatalf("composeSubject(%q, %q) = %q, want %q", tt.stage, tt.slide, got, tt.want)
		}
	}
}

func TestTeeHandlerCollapses(t *testing.T) {
	if _, ok := TeeHandler(nil, nil).(NoopHandler); !ok {
		t.Fatal("expected NoopHandler for all nil handlers")
	}
	var buf bytes.Buffer
	inner := slog.NewJSONHandler(&buf, nil)
	if h := TeeHandler(nil, inner); h != inner {
		t.Fatal("expected single handler to be returned unwrapped")
	}
}

func TestTeeHandlerRespectsEachLevel(t *testing.T) {
	var console, file bytes.Buffer
	h := TeeHandler(
		slog.NewTextHandler(&console, &slog.HandlerOptions{Level: slog.LevelWarn}),
		NewJSONHandler(&file, slog.LevelDebug),
	)
	logger := slog.New(h).With(String(FieldComponent, "pipeline"))

	logger.Debug("detail")
	logger.Warn("careful")

	if strings.Contains(console.String(), "detail") {
		t.Fatalf("console should not receive debug records: %q", console.String())
	}
	if !strings.Contains(console.String(), "careful") {
		t.Fatalf("console missing warning: %q", console.String())
	}
	lines := strings.Split(strings.TrimSpace(file.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 json records, got %d: %q", len(lines), file.String())
	}
	if !strings.Contains(lines[0], `"component":"pipeline"`) || !strings.Contains(lines[0], `"level":"debug"`) {
		t.Fatalf("unexpected json record %q", lines[0])
	}
}

func TestTeeHandlerHandlesContext(t *testing.T) {
	var a, b bytes.Buffer
	h := TeeHandler(NewJSONHandler(&a, slog.LevelInfo), NewJSONHandler(&b, slog.LevelInfo))
	if err := h.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelInfo, "hello", 0)); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !strings.Contains(a.String(), "hello") || !strings.Contains(b.String(), "hello") {
		t.Fatalf("expected both sinks to receive record: %q %q", a.String(), b.String())
	}
}
