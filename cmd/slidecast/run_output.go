package main

import (
	"fmt"
	"io"
	"time"

	"slidecast/internal/pipeline"
	"slidecast/internal/stageexec"
)

type runResultView struct {
	RunID         string   `json:"run_id"`
	HistoryID     int64    `json:"history_id,omitempty"`
	OutputPath    string   `json:"output_path"`
	SubtitlePath  string   `json:"subtitle_path,omitempty"`
	SlideCount    int      `json:"slide_count"`
	CueCount      int      `json:"cue_count,omitempty"`
	Stage         string   `json:"stage"`
	DurationMS    int64    `json:"duration_ms"`
	PublishedURIs []string `json:"published_uris,omitempty"`
	CleanupError  string   `json:"cleanup_error,omitempty"`
	PublishError  string   `json:"publish_error,omitempty"`
}

func runResultJSON(result pipeline.Result) runResultView {
	view := runResultView{
		RunID:         result.RunID,
		HistoryID:     result.HistoryID,
		OutputPath:    result.OutputPath,
		SubtitlePath:  result.SubtitlePath,
		SlideCount:    result.SlideCount,
		CueCount:      result.CueCount,
		Stage:         result.Stage,
		DurationMS:    result.Duration.Milliseconds(),
		PublishedURIs: result.PublishedURIs,
	}
	if result.CleanupErr != nil {
		view.CleanupError = result.CleanupErr.Error()
	}
	if result.PublishErr != nil {
		view.PublishError = result.PublishErr.Error()
	}
	return view
}

func printRunResult(out io.Writer, result pipeline.Result) {
	fmt.Fprintf(out, "%s: %s\n", stageexec.Label(result.Stage), result.OutputPath)
	if result.SubtitlePath != "" {
		fmt.Fprintf(out, "Subtitles: %s (%d cues)\n", result.SubtitlePath, result.CueCount)
	}
	fmt.Fprintf(out, "Slides: %d in %s\n", result.SlideCount, result.Duration.Round(time.Millisecond))
	for _, uri := range result.PublishedURIs {
		fmt.Fprintf(out, "Published: %s\n", uri)
	}
	if result.PublishErr != nil {
		fmt.Fprintf(out, "Publish failed: %v\n", result.PublishErr)
	}
	if result.CleanupErr != nil {
		fmt.Fprintf(out, "Workspace cleanup failed: %v\n", result.CleanupErr)
	}
}
