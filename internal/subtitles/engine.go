package subtitles

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"slidecast/internal/logging"
	"slidecast/internal/services"
	"slidecast/internal/services/openai"
)

// State reports how far a subtitle run progressed.
type State int

const (
	StatePending State = iota
	StateAudioExtracted
	StateTranscribed
	StateSRTWritten
)

func (s State) String() string {
	switch s {
	case StateAudioExtracted:
		return "audio_extracted"
	case StateTranscribed:
		return "transcribed"
	case StateSRTWritten:
		return "srt_written"
	default:
		return "pending"
	}
}

const (
	AudioFileName = "audio.mp3"
	SRTFileName   = "subtitles.srt"
)

// AudioExtractor pulls the audio track out of a rendered video.
type AudioExtractor interface {
	ExtractAudio(ctx context.Context, video, output string) error
}

// Transcriber returns timed segments for an audio file.
type Transcriber interface {
	Transcribe(ctx context.Context, path string) (openai.Transcription, error)
}

// Result describes a subtitle run. State is the last state reached, also on
// failure.
type Result struct {
	State     State
	AudioPath string
	SRTPath   string
	Segments  []Segment
	CueCount  int
}

// Engine generates SRT subtitles for a narrated video.
type Engine struct {
	extractor   AudioExtractor
	transcriber Transcriber
	logger      *slog.Logger
}

// NewEngine wires an extractor and a transcriber into an Engine.
func NewEngine(extractor AudioExtractor, transcriber Transcriber, logger *slog.Logger) *Engine {
	return &Engine{extractor: extractor, transcriber: transcriber, logger: logging.NewComponentLogger(logger, "subtitles")}
}

// Generate extracts audio from video into dir, transcribes it and writes
// dir/subtitles.srt.
func (e *Engine) Generate(ctx context.Context, video, dir string) (Result, error) {
	res := Result{State: StatePending}
	if e.extractor == nil || e.transcriber == nil {
		return res, services.Wrap(services.ErrConfiguration, "subtitles", "generate", "engine not configured", nil)
	}
	logger := logging.WithContext(ctx, e.logger)

	res.AudioPath = filepath.Join(dir, AudioFileName)
	if err := e.extractor.ExtractAudio(ctx, video, res.AudioPath); err != nil {
		return res, services.Wrap(services.ErrExternalTool, "subtitles", "extract audio", "", err)
	}
	res.State = StateAudioExtracted
	logger.Debug("subtitle audio extracted", logging.String("audio_path", res.AudioPath))

	transcript, err := e.transcriber.Transcribe(ctx, res.AudioPath)
	if err != nil {
		marker := services.ErrExternalTool
		if errors.Is(err, openai.ErrMissingAPIKey) {
			marker = services.ErrConfiguration
		}
		return res, services.Wrap(marker, "subtitles", "transcribe", "", err)
	}
	res.Segments = segmentsFrom(transcript)
	res.State = StateTranscribed
	logger.Debug("subtitle audio transcribed",
		logging.Int("segment_count", len(res.Segments)),
		logging.String("language", transcript.Language),
	)

	res.SRTPath = filepath.Join(dir, SRTFileName)
	if err := WriteSRT(res.SRTPath, res.Segments); err != nil {
		return res, services.Wrap(services.ErrExternalTool, "subtitles", "write srt", "", err)
	}
	cues, err := CountCues(res.SRTPath)
	if err != nil {
		return res, services.Wrap(services.ErrExternalTool, "subtitles", "count cues", "", err)
	}
	if cues != len(res.Segments) {
		return res, services.Wrap(services.ErrCountMismatch, "subtitles", "count cues",
			fmt.Sprintf("segment count vs cue count: %d vs %d", len(res.Segments), cues), nil)
	}
	res.CueCount = cues
	res.State = StateSRTWritten
	logger.Info("subtitles written",
		logging.String(logging.FieldEventType, "subtitles_written"),
		logging.Int("cue_count", res.CueCount),
		logging.String("subtitle_path", res.SRTPath),
	)
	return res, nil
}

func segmentsFrom(t openai.Transcription) []Segment {
	out := make([]Segment, 0, len(t.Segments))
	for _, seg := range t.Segments {
		out = append(out, Segment{Start: seg.Start, End: seg.End, Text: seg.Text})
	}
	return out
}
