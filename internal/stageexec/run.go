package stageexec

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"slidecast/internal/logging"
	"slidecast/internal/services"
)

// Options describes one pipeline stage.
type Options struct {
	Logger *slog.Logger
	Stage  string
	Fn     func(ctx context.Context) error
}

// Run executes opts.Fn under the stage's context and logs its boundaries.
func Run(ctx context.Context, opts Options) error {
	if opts.Fn == nil {
		return fmt.Errorf("stage function unavailable: %s", opts.Stage)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	stageCtx := services.WithStage(ctx, opts.Stage)
	stageLogger := logging.WithContext(stageCtx, opts.Logger)

	stageLogger.Info(
		"stage started",
		logging.String(logging.FieldEventType, "stage_start"),
		logging.String("stage_label", Label(opts.Stage)),
	)

	started := time.Now()
	err := opts.Fn(stageCtx)
	elapsed := time.Since(started)
	if err != nil {
		attrs := []logging.Attr{
			logging.String(logging.FieldErrorHint, services.Hint(err)),
			logging.String("resolved_status", string(services.FailureStatus(err))),
			logging.Duration("stage_duration", elapsed),
			logging.Error(err),
		}
		if errors.Is(err, context.Canceled) {
			attrs = append(attrs, logging.Bool("cancelled", true))
		}
		logging.ErrorWithContext(stageLogger, "stage failed", "stage_failure", attrs...)
		return err
	}

	stageLogger.Info(
		"stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Duration("stage_duration", elapsed),
	)
	return nil
}

var titler = cases.Title(language.English)

// Label renders a stage identifier such as "timeline_ready" as "Timeline Ready".
func Label(stage string) string {
	stage = strings.TrimSpace(stage)
	if stage == "" {
		return ""
	}
	return titler.String(strings.Join(strings.Fields(strings.ReplaceAll(stage, "_", " ")), " "))
}
