package narration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"slidecast/internal/logging"
	"slidecast/internal/services"
	"slidecast/internal/services/openai"
)

// SpeechClient is the subset of the OpenAI client used for narration.
type SpeechClient interface {
	Speech(ctx context.Context, voice, input string) ([]byte, error)
}

// Cloud narrates through a remote speech endpoint, one request per slide.
type Cloud struct {
	client SpeechClient
	voice  Voice
	logger *slog.Logger
}

// NewCloud returns a Cloud synthesizer speaking with voice.
func NewCloud(client SpeechClient, voice Voice, logger *slog.Logger) *Cloud {
	return &Cloud{client: client, voice: voice, logger: logging.NewComponentLogger(logger, "narration")}
}

// Synthesize requests speech for each text in order. The first failure
// aborts the batch.
func (c *Cloud) Synthesize(ctx context.Context, texts []string, dir string) ([]Asset, error) {
	voice, err := ParseVoice(string(c.voice))
	if err != nil {
		return nil, err
	}
	if c.client == nil {
		return nil, services.Wrap(services.ErrConfiguration, "narration", "cloud", "speech client not configured", nil)
	}
	assets := make([]Asset, 0, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		audio, err := c.client.Speech(ctx, string(voice), text)
		if err != nil {
			marker := services.ErrExternalTool
			if errors.Is(err, openai.ErrMissingAPIKey) {
				marker = services.ErrConfiguration
			}
			return nil, services.Wrap(marker, "narration", "speech", fmt.Sprintf("slide %d", i), err)
		}
		path := AudioPath(dir, i, ".mp3")
		if err := os.WriteFile(path, audio, 0o644); err != nil {
			return nil, services.Wrap(services.ErrExternalTool, "narration", "speech", "write audio", err)
		}
		logging.WithContext(services.WithSlideIndex(ctx, i), c.logger).Debug("narration synthesized",
			logging.String("voice", string(voice)),
			logging.Int("audio_bytes", len(audio)),
		)
		assets = append(assets, Asset{Index: i, Path: path})
	}
	return assets, nil
}
