package pipeline

import (
	"context"
	"net/http"

	"slidecast/internal/media"
	"slidecast/internal/media/ffprobe"
	"slidecast/internal/narration"
	"slidecast/internal/services"
	"slidecast/internal/services/openai"
	"slidecast/internal/slides"
	"slidecast/internal/subtitles"
)

// OpenAIClient is the remote speech and transcription surface.
type OpenAIClient interface {
	narration.SpeechClient
	subtitles.Transcriber
}

// Uploader publishes delivered files.
type Uploader interface {
	Upload(ctx context.Context, paths ...string) ([]string, error)
}

// Verifier inspects a finished deliverable before it is renamed into place.
type Verifier func(ctx context.Context, path string, wantVideo bool) error

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithRunner routes every external tool invocation through runner.
func WithRunner(runner services.CommandRunner) Option {
	return func(o *Orchestrator) { o.runner = runner }
}

// WithOpenAIClient replaces the client built from config.
func WithOpenAIClient(client OpenAIClient) Option {
	return func(o *Orchestrator) { o.openai = client }
}

// WithHTTPClient sets the transport for the client built from config.
func WithHTTPClient(client *http.Client) Option {
	return func(o *Orchestrator) { o.httpClient = client }
}

// WithUploader publishes deliverables after each successful run.
func WithUploader(uploader Uploader) Option {
	return func(o *Orchestrator) { o.uploader = uploader }
}

// WithVerifier replaces the ffprobe output check.
func WithVerifier(verifier Verifier) Option {
	return func(o *Orchestrator) { o.verifier = verifier }
}

func (o *Orchestrator) wire() {
	cfg := o.cfg
	if o.runner == nil {
		o.runner = services.RunCommand
	}
	if o.openai == nil {
		var clientOpts []openai.Option
		if o.httpClient != nil {
			clientOpts = append(clientOpts, openai.WithHTTPClient(o.httpClient))
		}
		o.openai = openai.NewClient(openai.Config{
			APIKey:             cfg.OpenAI.APIKey,
			BaseURL:            cfg.OpenAI.BaseURL,
			SpeechModel:        cfg.OpenAI.SpeechModel,
			TranscriptionModel: cfg.OpenAI.TranscriptionModel,
			TimeoutSeconds:     cfg.OpenAI.TimeoutSeconds,
		}, clientOpts...)
	}
	if o.verifier == nil && cfg.Encoding.VerifyOutput {
		o.verifier = probeVerifier(cfg.Tools.FFprobe)
	}

	o.rasterizer = slides.NewRasterizer(cfg.Tools.Mutool, o.runner)
	o.media = media.NewTool(cfg.Tools.FFmpeg, o.runner, o.logger)
	o.clips = &media.ClipAssembler{Tool: o.media, MaxParallel: cfg.Encoding.MaxParallelClips}
	o.offline = narration.NewOffline(&narration.Espeak{
		Binary:         cfg.OfflineVoice.Command,
		WordsPerMinute: cfg.OfflineVoice.WordsPerMinute,
		Runner:         o.runner,
	}, o.logger)
	o.subtitles = subtitles.NewEngine(o.media, o.openai, o.logger)
}

func probeVerifier(binary string) Verifier {
	return func(ctx context.Context, path string, wantVideo bool) error {
		result, err := ffprobe.Inspect(ctx, binary, path)
		if err != nil {
			return services.Wrap(services.ErrExternalTool, "verify", "ffprobe", path, err)
		}
		if err := result.Check(wantVideo); err != nil {
			return services.Wrap(services.ErrExternalTool, "verify", "ffprobe", path, err)
		}
		return nil
	}
}
