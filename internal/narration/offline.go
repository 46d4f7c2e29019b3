package narration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"slidecast/internal/logging"
	"slidecast/internal/services"
)

// Engine renders a UTF-8 text file to a WAV file.
type Engine interface {
	Render(ctx context.Context, textPath, wavPath string) error
}

// Espeak drives the espeak-ng command line.
type Espeak struct {
	Binary         string
	WordsPerMinute int
	Runner         services.CommandRunner
}

// Render runs espeak-ng -f <text> -w <wav>.
func (e *Espeak) Render(ctx context.Context, textPath, wavPath string) error {
	binary := e.Binary
	if binary == "" {
		binary = "espeak-ng"
	}
	runner := e.Runner
	if runner == nil {
		runner = services.RunCommand
	}
	args := []string{"-f", textPath, "-w", wavPath}
	if e.WordsPerMinute > 0 {
		args = append(args, "-s", strconv.Itoa(e.WordsPerMinute))
	}
	return runner(ctx, binary, args...)
}

// Offline narrates with a single local engine. Engine calls are serialized
// even when several goroutines share the synthesizer.
type Offline struct {
	mu     sync.Mutex
	engine Engine
	logger *slog.Logger
}

// NewOffline wraps engine as a Synthesizer.
func NewOffline(engine Engine, logger *slog.Logger) *Offline {
	return &Offline{engine: engine, logger: logging.NewComponentLogger(logger, "narration")}
}

// Synthesize renders each text to dir/audio_<i>.wav through the shared engine.
func (o *Offline) Synthesize(ctx context.Context, texts []string, dir string) ([]Asset, error) {
	assets := make([]Asset, 0, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		textPath := filepath.Join(dir, fmt.Sprintf("text_%d.txt", i))
		if err := os.WriteFile(textPath, []byte(text), 0o644); err != nil {
			return nil, services.Wrap(services.ErrExternalTool, "narration", "offline", "write text input", err)
		}
		path := AudioPath(dir, i, ".wav")
		if err := o.render(ctx, textPath, path); err != nil {
			return nil, services.Wrap(services.ErrExternalTool, "narration", "offline", fmt.Sprintf("slide %d", i), err)
		}
		logging.WithContext(services.WithSlideIndex(ctx, i), o.logger).Debug("offline narration rendered", logging.String("audio", path))
		assets = append(assets, Asset{Index: i, Path: path})
	}
	return assets, nil
}

func (o *Offline) render(ctx context.Context, textPath, wavPath string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.engine == nil {
		return errors.New("offline engine not configured")
	}
	return o.engine.Render(ctx, textPath, wavPath)
}
