package main

import (
	"encoding/json"
	"strings"
	"testing"

	"slidecast/internal/testsupport"
)

func TestStatusJSONWithStubbedBinaries(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithStubbedBinaries())

	out, _, err := runCLI(t, []string{"status", "--json", "--strict"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	var view statusView
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("decode status: %v\n%s", err, out)
	}
	if !view.Ready || len(view.Dependencies) != 4 {
		t.Fatalf("unexpected status %+v", view)
	}
	var keyCheck *statusCheckView
	for i := range view.Checks {
		if view.Checks[i].Name == "OpenAI API key" {
			keyCheck = &view.Checks[i]
		}
	}
	if keyCheck == nil || keyCheck.Passed {
		t.Fatalf("expected failing key check, got %+v", view.Checks)
	}
}

func TestStatusStrictFailsOnMissingTool(t *testing.T) {
	env := setupCLITestEnv(t)
	env.cfg.Tools.Mutool = "/nonexistent/mutool"
	writeTestConfig(t, env.configPath, env.cfg)

	out, _, err := runCLI(t, []string{"status", "--strict"}, env.configPath)
	if err == nil {
		t.Fatal("expected strict status to fail")
	}
	requireContains(t, out, "Ready to render: no")
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("buffered output must not be colorized: %q", out)
	}
}

func TestRenderStatusLine(t *testing.T) {
	plain := renderStatusLine("FFmpeg", statusOK, "/usr/bin/ffmpeg", false)
	if plain != "  FFmpeg:                [OK] /usr/bin/ffmpeg" {
		t.Fatalf("unexpected line %q", plain)
	}
	colored := renderStatusLine("mutool", statusError, "missing", true)
	if !strings.HasPrefix(colored, ansiRed) || !strings.HasSuffix(colored, ansiReset) {
		t.Fatalf("expected red line, got %q", colored)
	}
}

func TestVoicesListsProductionVoices(t *testing.T) {
	out, _, err := runCLI(t, []string{"voices"}, "")
	if err != nil {
		t.Fatalf("voices: %v", err)
	}
	lines := strings.Fields(out)
	if len(lines) != 6 || lines[0] != "alloy" || lines[5] != "shimmer" {
		t.Fatalf("unexpected voices %q", out)
	}
}
