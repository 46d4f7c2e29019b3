package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"

	"slidecast/internal/config"
	"slidecast/internal/logging"
	"slidecast/internal/pipeline"
	"slidecast/internal/services"
)

const (
	DoneSuffix   = ".done"
	FailedSuffix = ".failed"
	LogSuffix    = ".log"
)

// Runner executes one pipeline request.
type Runner interface {
	Run(ctx context.Context, req pipeline.Request) (pipeline.Result, error)
}

// RunnerFactory builds a Runner that logs through logger. It is called once
// per job so each job's records reach its own log file.
type RunnerFactory func(logger *slog.Logger) Runner

// Outcome reports one processed manifest.
type Outcome struct {
	Manifest string
	Renamed  string
	Result   pipeline.Result
	Err      error
}

// Watcher feeds manifests from a directory to a single consumer.
type Watcher struct {
	cfg     *config.Config
	dir     string
	settle  time.Duration
	factory RunnerFactory
	logger  *slog.Logger

	// OnOutcome, when set, observes every processed manifest.
	OnOutcome func(Outcome)
}

// New returns a Watcher for cfg.Watch.
func New(cfg *config.Config, factory RunnerFactory, logger *slog.Logger) *Watcher {
	return &Watcher{
		cfg:     cfg,
		dir:     cfg.Watch.Dir,
		settle:  cfg.WatchSettle(),
		factory: factory,
		logger:  logging.NewComponentLogger(logger, "watch"),
	}
}

// Dir returns the watched directory.
func (w *Watcher) Dir() string { return w.dir }

// Run watches until ctx is cancelled. Manifests already present when Run
// starts are queued first. The in-flight job finishes before Run returns.
func (w *Watcher) Run(ctx context.Context) error {
	if w.factory == nil {
		return services.Wrap(services.ErrConfiguration, "watch", "run", "runner factory not configured", nil)
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "watch", "run", "create watch directory", err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()
	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("add watch path: %w", err)
	}

	w.logger.Info("watching for job manifests",
		logging.String(logging.FieldEventType, "watch_start"),
		logging.String("watch_dir", w.dir),
		logging.Duration("settle", w.settle),
	)

	jobs := make(chan string)
	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		for path := range jobs {
			w.process(context.WithoutCancel(ctx), path)
		}
	}()

	existing, err := w.scan()
	if err != nil {
		close(jobs)
		<-consumerDone
		return err
	}

	var queue []string
	pending := make(map[string]time.Time)
	for _, path := range existing {
		pending[path] = time.Now()
	}
	tick := w.settle / 4
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		var send chan string
		var next string
		if len(queue) > 0 {
			send, next = jobs, queue[0]
		}

		select {
		case <-ctx.Done():
			close(jobs)
			<-consumerDone
			w.logger.Info("watch stopped",
				logging.String(logging.FieldEventType, "watch_stop"),
				logging.Int("dropped_jobs", len(queue)+len(pending)),
			)
			return nil

		case send <- next:
			queue = queue[1:]

		case event, ok := <-fsw.Events:
			if !ok {
				close(jobs)
				<-consumerDone
				return errors.New("watcher events channel closed")
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 || !IsManifest(event.Name) {
				continue
			}
			if slices.Contains(queue, event.Name) {
				continue
			}
			pending[event.Name] = time.Now().Add(w.settle)

		case err, ok := <-fsw.Errors:
			if !ok {
				close(jobs)
				<-consumerDone
				return errors.New("watcher errors channel closed")
			}
			logging.WarnWithContext(w.logger, "watcher error", "watch_error",
				logging.String(logging.FieldImpact, "some manifests may be missed until re-dropped"),
				logging.Error(err),
			)

		case now := <-ticker.C:
			queue = append(queue, settled(pending, now)...)
		}
	}
}

// settled removes and returns the pending paths whose deadline passed, in
// name order.
func settled(pending map[string]time.Time, now time.Time) []string {
	var ready []string
	for path, deadline := range pending {
		if !now.Before(deadline) {
			ready = append(ready, path)
			delete(pending, path)
		}
	}
	slices.Sort(ready)
	return ready
}

func (w *Watcher) scan() ([]string, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return nil, fmt.Errorf("scan watch dir: %w", err)
	}
	var out []string
	for _, entry := range entries {
		path := filepath.Join(w.dir, entry.Name())
		if entry.Type().IsRegular() && IsManifest(path) {
			out = append(out, path)
		}
	}
	return out, nil
}

// process runs one manifest and renames it according to the outcome.
func (w *Watcher) process(ctx context.Context, path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	outcome := Outcome{Manifest: path}

	logFile, err := os.OpenFile(path+LogSuffix, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	jobLogger := w.logger
	if err != nil {
		w.logger.Debug("job log unavailable", logging.String("manifest", path), logging.Error(err))
	} else {
		defer logFile.Close()
		jobLogger = slog.New(logging.TeeHandler(w.logger.Handler(), logging.NewJSONHandler(logFile, slog.LevelDebug)))
	}
	jobLogger = jobLogger.With(logging.String("manifest", filepath.Base(path)))

	jobLogger.Info("job started", logging.String(logging.FieldEventType, "job_start"))
	manifest, err := LoadManifest(path)
	if err == nil {
		outcome.Result, err = w.factory(jobLogger).Run(ctx, manifest.Request(w.cfg, path))
	}
	outcome.Err = err

	suffix := DoneSuffix
	if err != nil {
		suffix = FailedSuffix
		logging.ErrorWithContext(jobLogger, "job failed", "job_failure",
			logging.String(logging.FieldErrorHint, services.Hint(err)),
			logging.Error(err),
		)
	} else {
		jobLogger.Info("job completed",
			logging.String(logging.FieldEventType, "job_complete"),
			logging.String("output_path", outcome.Result.OutputPath),
		)
	}

	outcome.Renamed = path + suffix
	if renameErr := os.Rename(path, outcome.Renamed); renameErr != nil {
		outcome.Renamed = ""
		logging.WarnWithContext(jobLogger, "manifest rename failed", "manifest_rename_failed",
			logging.String(logging.FieldImpact, "the manifest may be processed again on restart"),
			logging.Error(renameErr),
		)
	}
	if w.OnOutcome != nil {
		w.OnOutcome(outcome)
	}
}
