package narration

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"slidecast/internal/services"
)

// Asset is the narration audio for one slide.
type Asset struct {
	Index int
	Path  string
}

// Synthesizer maps N ordered texts to N audio assets written into dir.
type Synthesizer interface {
	Synthesize(ctx context.Context, texts []string, dir string) ([]Asset, error)
}

// Voice names a production speech voice.
type Voice string

const (
	VoiceAlloy   Voice = "alloy"
	VoiceEcho    Voice = "echo"
	VoiceFable   Voice = "fable"
	VoiceOnyx    Voice = "onyx"
	VoiceNova    Voice = "nova"
	VoiceShimmer Voice = "shimmer"
)

// Voices lists the supported production voices in display order.
func Voices() []Voice {
	return []Voice{VoiceAlloy, VoiceEcho, VoiceFable, VoiceOnyx, VoiceNova, VoiceShimmer}
}

// ParseVoice validates a voice name case-insensitively.
func ParseVoice(name string) (Voice, error) {
	candidate := Voice(strings.ToLower(strings.TrimSpace(name)))
	for _, v := range Voices() {
		if v == candidate {
			return v, nil
		}
	}
	return "", services.Wrap(services.ErrValidation, "narration", "parse voice", fmt.Sprintf("unknown voice %q", name), nil)
}

// AudioPath returns the conventional asset path for slide index i.
func AudioPath(dir string, i int, ext string) string {
	return filepath.Join(dir, fmt.Sprintf("audio_%d%s", i, ext))
}
