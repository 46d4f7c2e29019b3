package media

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"slidecast/internal/logging"
	"slidecast/internal/services"
)

// Tool executes ffmpeg invocations.
type Tool struct {
	Binary string
	Runner services.CommandRunner
	Logger *slog.Logger
}

// NewTool returns a Tool running binary through runner. Empty values select
// "ffmpeg" and services.RunCommand.
func NewTool(binary string, runner services.CommandRunner, logger *slog.Logger) *Tool {
	if strings.TrimSpace(binary) == "" {
		binary = "ffmpeg"
	}
	if runner == nil {
		runner = services.RunCommand
	}
	return &Tool{Binary: binary, Runner: runner, Logger: logging.NewComponentLogger(logger, "media")}
}

// run executes the compiled stream and checks that output exists afterwards.
func (t *Tool) run(ctx context.Context, operation string, stream *ffmpeg.Stream, output string) error {
	args := stream.GetArgs()
	logging.WithContext(ctx, t.Logger).Debug("ffmpeg invocation",
		logging.String("operation", operation),
		logging.String("args", strings.Join(args, " ")),
	)
	if err := t.Runner(ctx, t.Binary, args...); err != nil {
		return services.Wrap(services.ErrExternalTool, "media", operation, "ffmpeg failed", err)
	}
	if output == "" {
		return nil
	}
	if _, err := os.Stat(output); err != nil {
		return services.Wrap(services.ErrExternalTool, "media", operation, fmt.Sprintf("ffmpeg produced no output at %s", output), err)
	}
	return nil
}
