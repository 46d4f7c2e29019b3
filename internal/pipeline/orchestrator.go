package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"slidecast/internal/config"
	"slidecast/internal/history"
	"slidecast/internal/logging"
	"slidecast/internal/media"
	"slidecast/internal/narration"
	"slidecast/internal/services"
	"slidecast/internal/slides"
	"slidecast/internal/subtitles"
	"slidecast/internal/workspace"
)

// Stage names, in pipeline order.
const (
	StageSlidesReady    = "slides_ready"
	StageNarrationReady = "narration_ready"
	StageClipsReady     = "clips_ready"
	StageTimelineReady  = "timeline_ready"
	StageSubtitlesReady = "subtitles_ready"
	StageDelivered      = "delivered"
)

// TimelineName is the intermediate concatenation used when subtitles are burned in.
const TimelineName = "timeline.mp4"

// Result describes a finished run. CleanupErr and PublishErr never turn a
// delivered run into a failure.
type Result struct {
	RunID         string
	HistoryID     int64
	OutputPath    string
	SubtitlePath  string
	SlideCount    int
	CueCount      int
	PublishedURIs []string
	Stage         string
	Duration      time.Duration
	CleanupErr    error
	PublishErr    error
}

// Orchestrator runs pipeline requests against one configuration.
type Orchestrator struct {
	cfg    *config.Config
	store  *history.Store
	logger *slog.Logger

	runner     services.CommandRunner
	httpClient *http.Client
	openai     OpenAIClient
	uploader   Uploader
	verifier   Verifier

	rasterizer *slides.Rasterizer
	media      *media.Tool
	clips      *media.ClipAssembler
	offline    narration.Synthesizer
	subtitles  *subtitles.Engine
}

// New constructs an Orchestrator. store may be nil to skip run history.
func New(cfg *config.Config, store *history.Store, logger *slog.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cfg:    cfg,
		store:  store,
		logger: logging.NewComponentLogger(logger, "pipeline"),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.wire()
	return o
}

// run carries the mutable state of one Run call.
type run struct {
	req    Request
	ws     *workspace.Workspace
	record *history.Run
	result Result

	texts  []string
	images []string
	assets []narration.Asset
	clips  []media.Clip

	partial    string
	srtPartial string
	timeline   string
	srt        string
}

// Run executes req and returns where the deliverables landed.
func (o *Orchestrator) Run(ctx context.Context, req Request) (Result, error) {
	started := time.Now()
	state := &run{req: req}
	state.result.RunID = uuid.NewString()
	ctx = services.WithRequestID(ctx, state.result.RunID)
	logger := logging.WithContext(ctx, o.logger)

	o.beginHistory(ctx, state)
	if state.record != nil {
		ctx = services.WithRunID(ctx, state.record.ID)
		logger = logging.WithContext(ctx, o.logger)
	}

	logger.Info("run started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.String("mode", string(req.Mode)),
		logging.String("text_source", string(req.TextSource)),
		logging.String("voice", req.VoiceLabel()),
		logging.Bool("subtitles", req.Subtitles),
	)

	err := o.execute(ctx, state)
	state.result.Duration = time.Since(started)
	o.finishHistory(ctx, state, err)

	if err != nil {
		logging.ErrorWithContext(logger, "run failed", "run_failure",
			logging.String(logging.FieldErrorHint, services.Hint(err)),
			logging.String("last_stage", state.result.Stage),
			logging.Error(err),
		)
		return state.result, err
	}

	logger.Info("run delivered",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.Int("slide_count", state.result.SlideCount),
		logging.String("output_path", state.result.OutputPath),
		logging.String("subtitle_path", state.result.SubtitlePath),
		logging.Duration("stage_duration", state.result.Duration),
	)
	return state.result, nil
}

func (o *Orchestrator) execute(ctx context.Context, state *run) error {
	if err := state.req.Validate(); err != nil {
		return err
	}
	if err := o.checkCredentials(state.req); err != nil {
		return err
	}
	texts, err := o.loadTexts(state.req)
	if err != nil {
		return err
	}
	state.texts = texts

	state.ws = workspace.New(o.cfg.Paths.WorkspaceDir)
	if err := state.ws.Acquire(); err != nil {
		return err
	}
	defer o.releaseWorkspace(ctx, state)

	if state.req.Mode == ModeAudio {
		err = o.runAudio(ctx, state)
	} else {
		err = o.runVideo(ctx, state)
	}
	if err != nil {
		o.discardPartial(ctx, state)
		return err
	}

	o.publish(ctx, state)
	return nil
}

func (o *Orchestrator) checkCredentials(req Request) error {
	needsKey := req.Voice == VoiceProduction || req.Subtitles
	if needsKey && strings.TrimSpace(o.cfg.OpenAI.APIKey) == "" {
		return services.Wrap(services.ErrConfiguration, "request", "credentials", "openai.api_key is required for the production voice and subtitles", nil)
	}
	return nil
}

func (o *Orchestrator) releaseWorkspace(ctx context.Context, state *run) {
	logger := logging.WithContext(ctx, o.logger)
	if err := state.ws.Reset(); err != nil {
		state.result.CleanupErr = err
		logging.WarnWithContext(logger, "workspace cleanup failed", "workspace_cleanup_failed",
			logging.String("workspace", state.ws.Dir()),
			logging.String(logging.FieldErrorHint, "remove the workspace directory manually"),
			logging.String(logging.FieldImpact, "scratch files from this run remain on disk"),
			logging.Error(err),
		)
	}
	if err := state.ws.Release(); err != nil {
		logger.Debug("workspace lock release failed", logging.Error(err))
	}
}

func (o *Orchestrator) publish(ctx context.Context, state *run) {
	if o.uploader == nil {
		return
	}
	uris, err := o.uploader.Upload(ctx, state.result.OutputPath, state.result.SubtitlePath)
	state.result.PublishedURIs = uris
	if err != nil {
		state.result.PublishErr = err
		logging.WarnWithContext(logging.WithContext(ctx, o.logger), "publish failed", "publish_failed",
			logging.String(logging.FieldErrorHint, services.Hint(err)),
			logging.String(logging.FieldImpact, "deliverables are available locally only"),
			logging.Error(err),
		)
	}
}

func (o *Orchestrator) beginHistory(ctx context.Context, state *run) {
	if o.store == nil {
		return
	}
	req := state.req
	mode := string(req.Mode)
	if mode == "" {
		mode = "unknown"
	}
	record, err := o.store.Begin(ctx, history.Run{
		RunID:        state.result.RunID,
		Mode:         mode,
		TextSource:   string(req.TextSource),
		Voice:        req.VoiceLabel(),
		Subtitles:    req.Subtitles,
		OutputPath:   req.OutputPath,
		SubtitlePath: req.SubtitlePath,
	})
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, o.logger), "history record failed", "history_failed",
			logging.String(logging.FieldImpact, "run will not appear in slidecast history"),
			logging.Error(err),
		)
		return
	}
	state.record = record
	state.result.HistoryID = record.ID
}

func (o *Orchestrator) finishHistory(ctx context.Context, state *run, runErr error) {
	if o.store == nil || state.record == nil {
		return
	}
	record := state.record
	record.SlideCount = state.result.SlideCount
	record.Stage = state.result.Stage
	if runErr != nil {
		record.Status = services.FailureStatus(runErr)
		record.ErrorMessage = runErr.Error()
	} else {
		record.Status = history.StatusDelivered
		record.OutputPath = state.result.OutputPath
		record.SubtitlePath = state.result.SubtitlePath
	}
	// The run context may already be cancelled; the terminal status still lands.
	if err := o.store.Update(context.WithoutCancel(ctx), record); err != nil && !errors.Is(err, context.Canceled) {
		logging.WarnWithContext(logging.WithContext(ctx, o.logger), "history update failed", "history_failed",
			logging.String(logging.FieldImpact, "run history shows a stale status"),
			logging.Error(err),
		)
	}
}
