package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"slidecast/internal/fileutil"
	"slidecast/internal/logging"
	"slidecast/internal/media"
	"slidecast/internal/narration"
	"slidecast/internal/script"
	"slidecast/internal/services"
	"slidecast/internal/slides"
	"slidecast/internal/stageexec"
)

func (o *Orchestrator) stage(ctx context.Context, state *run, name string, fn func(context.Context) error) error {
	if err := stageexec.Run(ctx, stageexec.Options{Logger: o.logger, Stage: name, Fn: fn}); err != nil {
		return err
	}
	state.result.Stage = name
	return nil
}

func (o *Orchestrator) runVideo(ctx context.Context, state *run) error {
	req := state.req
	dir := state.ws.Dir()

	if err := o.stage(ctx, state, StageSlidesReady, func(ctx context.Context) error {
		images, err := o.rasterizer.Rasterize(ctx, req.PDFPath, dir)
		if err != nil {
			return err
		}
		if len(images) != len(state.texts) {
			return mismatch(StageSlidesReady, "image count vs text count", len(images), len(state.texts))
		}
		state.images = images
		state.result.SlideCount = len(images)
		logging.WithContext(ctx, o.logger).Info("slides ready",
			logging.Int("slide_count", len(images)),
			logging.String("text_source", string(req.TextSource)),
		)
		return nil
	}); err != nil {
		return err
	}

	if err := o.narrate(ctx, state); err != nil {
		return err
	}

	if err := o.stage(ctx, state, StageClipsReady, func(ctx context.Context) error {
		jobs := make([]media.ClipJob, len(state.images))
		for i, image := range state.images {
			jobs[i] = media.ClipJob{Index: i, Image: image, Audio: state.assets[i].Path}
		}
		clips, err := o.clips.Assemble(ctx, jobs, dir)
		if err != nil {
			return err
		}
		if len(clips) != len(state.images) {
			return mismatch(StageClipsReady, "slide count vs clip count", len(state.images), len(clips))
		}
		state.clips = clips
		logging.WithContext(ctx, o.logger).Info("clips assembled", logging.Int("clip_count", len(clips)))
		return nil
	}); err != nil {
		return err
	}

	state.partial = fileutil.PartialPath(req.OutputPath)
	if err := os.MkdirAll(filepath.Dir(req.OutputPath), 0o755); err != nil {
		return services.Wrap(services.ErrValidation, StageTimelineReady, "destination", "create output directory", err)
	}

	if err := o.stage(ctx, state, StageTimelineReady, func(ctx context.Context) error {
		target := state.partial
		if req.Subtitles {
			state.timeline = state.ws.Path(TimelineName)
			target = state.timeline
		}
		return o.media.Concatenate(ctx, state.clips, dir, target)
	}); err != nil {
		return err
	}

	if req.Subtitles {
		if err := o.stage(ctx, state, StageSubtitlesReady, func(ctx context.Context) error {
			res, err := o.subtitles.Generate(ctx, state.timeline, dir)
			if err != nil {
				return err
			}
			state.srt = res.SRTPath
			state.result.CueCount = res.CueCount
			return o.media.BurnSubtitles(ctx, state.timeline, res.SRTPath, state.partial)
		}); err != nil {
			return err
		}
	}

	return o.stage(ctx, state, StageDelivered, func(ctx context.Context) error {
		return o.deliver(ctx, state, true)
	})
}

func (o *Orchestrator) runAudio(ctx context.Context, state *run) error {
	req := state.req

	if err := o.stage(ctx, state, StageSlidesReady, func(context.Context) error {
		state.result.SlideCount = len(state.texts)
		return nil
	}); err != nil {
		return err
	}

	if err := o.narrate(ctx, state); err != nil {
		return err
	}

	state.partial = fileutil.PartialPath(req.OutputPath)
	if err := os.MkdirAll(filepath.Dir(req.OutputPath), 0o755); err != nil {
		return services.Wrap(services.ErrValidation, StageTimelineReady, "destination", "create output directory", err)
	}

	if err := o.stage(ctx, state, StageTimelineReady, func(ctx context.Context) error {
		paths := make([]string, len(state.assets))
		for i, asset := range state.assets {
			paths[i] = asset.Path
		}
		return o.media.ConcatAudio(ctx, paths, state.ws.Dir(), state.partial)
	}); err != nil {
		return err
	}

	return o.stage(ctx, state, StageDelivered, func(ctx context.Context) error {
		return o.deliver(ctx, state, false)
	})
}

func (o *Orchestrator) narrate(ctx context.Context, state *run) error {
	return o.stage(ctx, state, StageNarrationReady, func(ctx context.Context) error {
		synth := o.synthesizer(state.req)
		assets, err := synth.Synthesize(ctx, state.texts, state.ws.Dir())
		if err != nil {
			return err
		}
		if len(assets) != state.result.SlideCount {
			return mismatch(StageNarrationReady, "slide count vs narration count", state.result.SlideCount, len(assets))
		}
		state.assets = assets
		logging.WithContext(ctx, o.logger).Info("narration ready",
			logging.String("voice", state.req.VoiceLabel()),
			logging.Int("slide_count", len(assets)),
		)
		return nil
	})
}

func (o *Orchestrator) synthesizer(req Request) narration.Synthesizer {
	if req.Voice == VoiceOffline {
		return o.offline
	}
	return narration.NewCloud(o.openai, narration.Voice(req.VoiceName), o.logger)
}

func (o *Orchestrator) loadTexts(req Request) ([]string, error) {
	if req.TextSource == TextSourceNotes {
		return slides.Notes(req.NotesPath)
	}
	marker := req.Marker
	if marker == "" {
		marker = o.cfg.Script.Marker
	}
	return script.Load(req.ScriptPath, marker)
}

// deliver verifies the partial output and stages the SRT beside its
// secondary destination, then renames the video and the SRT into place.
func (o *Orchestrator) deliver(ctx context.Context, state *run, wantVideo bool) error {
	req := state.req
	if o.verifier != nil {
		if err := o.verifier(ctx, state.partial, wantVideo); err != nil {
			return err
		}
	}
	if req.Subtitles {
		if err := os.MkdirAll(filepath.Dir(req.SubtitlePath), 0o755); err != nil {
			return services.Wrap(services.ErrValidation, StageDelivered, "destination", "create subtitle directory", err)
		}
		state.srtPartial = fileutil.PartialPath(req.SubtitlePath)
		if err := fileutil.CopyFileVerified(state.srt, state.srtPartial); err != nil {
			return services.Wrap(services.ErrExternalTool, StageDelivered, "copy subtitles", req.SubtitlePath, err)
		}
	}
	if err := fileutil.Promote(state.partial, req.OutputPath); err != nil {
		return services.Wrap(services.ErrExternalTool, StageDelivered, "promote output", req.OutputPath, err)
	}
	state.partial = ""
	state.result.OutputPath = req.OutputPath
	if state.srtPartial != "" {
		if err := fileutil.Promote(state.srtPartial, req.SubtitlePath); err != nil {
			return services.Wrap(services.ErrExternalTool, StageDelivered, "promote subtitles", req.SubtitlePath, err)
		}
		state.srtPartial = ""
		state.result.SubtitlePath = req.SubtitlePath
	}

	attrs := []logging.Attr{
		logging.String(logging.FieldEventType, "delivered"),
		logging.String("output_path", req.OutputPath),
	}
	if state.result.SubtitlePath != "" {
		attrs = append(attrs,
			logging.String("subtitle_path", state.result.SubtitlePath),
			logging.Int("cue_count", state.result.CueCount),
		)
	}
	logging.WithContext(ctx, o.logger).Info("deliverables written", logging.Args(attrs...)...)
	return nil
}

func (o *Orchestrator) discardPartial(ctx context.Context, state *run) {
	for _, partial := range []string{state.partial, state.srtPartial} {
		if partial == "" {
			continue
		}
		if err := fileutil.Discard(partial); err != nil {
			logging.WithContext(ctx, o.logger).Debug("partial output removal failed",
				logging.String("partial_path", partial),
				logging.Error(err),
			)
		}
	}
}

func mismatch(stage, check string, want, got int) error {
	return services.Wrap(services.ErrCountMismatch, stage, "count check", fmt.Sprintf("%s: %d vs %d", check, want, got), nil)
}
