package pipeline

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"slidecast/internal/config"
	"slidecast/internal/narration"
	"slidecast/internal/services"
	"slidecast/internal/textutil"
)

// Mode selects the deliverable.
type Mode string

const (
	ModeVideo Mode = "video"
	ModeAudio Mode = "audio"
)

// TextSource selects where per-slide narration text comes from.
type TextSource string

const (
	TextSourceScript TextSource = "script"
	TextSourceNotes  TextSource = "notes"
)

// VoiceKind selects the narration engine.
type VoiceKind string

const (
	VoiceProduction VoiceKind = "production"
	VoiceOffline    VoiceKind = "offline"
)

// Request is fixed at run start.
type Request struct {
	Mode       Mode
	PDFPath    string
	TextSource TextSource
	ScriptPath string
	NotesPath  string
	Marker     string

	Voice     VoiceKind
	VoiceName string

	Subtitles    bool
	OutputPath   string
	SubtitlePath string
}

// DefaultOutputs fills empty destinations from a deliverable name: the main
// output goes to the output directory and the SRT to the subtitle directory.
func (r *Request) DefaultOutputs(cfg *config.Config, name string) {
	name = textutil.SanitizeFileName(name)
	if name == "" {
		name = "slidecast"
	}
	if strings.TrimSpace(r.OutputPath) == "" {
		ext := ".mp4"
		if r.Mode == ModeAudio {
			ext = ".mp3"
		}
		r.OutputPath = filepath.Join(cfg.Paths.OutputDir, name+ext)
	}
	if r.Subtitles && strings.TrimSpace(r.SubtitlePath) == "" {
		r.SubtitlePath = filepath.Join(cfg.SubtitleOutputDir(), name+"_subtitles.srt")
	}
}

// TextPath returns the path of the selected text source.
func (r Request) TextPath() string {
	if r.TextSource == TextSourceNotes {
		return r.NotesPath
	}
	return r.ScriptPath
}

// VoiceLabel is the voice recorded in history.
func (r Request) VoiceLabel() string {
	if r.Voice == VoiceOffline {
		return string(VoiceOffline)
	}
	return r.VoiceName
}

// Validate checks the request without touching the workspace. Every failure
// is a services.ErrValidation.
func (r Request) Validate() error {
	switch r.Mode {
	case ModeVideo, ModeAudio:
	default:
		return invalid("mode", fmt.Sprintf("unknown mode %q", r.Mode), nil)
	}

	if r.Mode == ModeVideo {
		if err := requireFile("pdf", r.PDFPath); err != nil {
			return err
		}
	}

	script := strings.TrimSpace(r.ScriptPath) != ""
	notes := strings.TrimSpace(r.NotesPath) != ""
	if script && notes {
		return invalid("text source", "script and deck notes are mutually exclusive", nil)
	}
	switch r.TextSource {
	case TextSourceScript:
		if err := requireFile("script", r.ScriptPath); err != nil {
			return err
		}
	case TextSourceNotes:
		if err := requireFile("deck", r.NotesPath); err != nil {
			return err
		}
	default:
		return invalid("text source", fmt.Sprintf("unknown text source %q", r.TextSource), nil)
	}

	switch r.Voice {
	case VoiceProduction:
		if _, err := narration.ParseVoice(r.VoiceName); err != nil {
			return err
		}
	case VoiceOffline:
	default:
		return invalid("voice", fmt.Sprintf("unknown voice engine %q", r.Voice), nil)
	}

	if r.Subtitles && r.Mode != ModeVideo {
		return invalid("subtitles", "subtitles require video mode", nil)
	}
	if strings.TrimSpace(r.OutputPath) == "" {
		return invalid("destination", "output path is required", nil)
	}
	if r.Subtitles && strings.TrimSpace(r.SubtitlePath) == "" {
		return invalid("destination", "subtitle output path is required", nil)
	}
	if r.Subtitles && filepath.Clean(r.SubtitlePath) == filepath.Clean(r.OutputPath) {
		return invalid("destination", "subtitle and video outputs must differ", nil)
	}
	return nil
}

func requireFile(kind, path string) error {
	if strings.TrimSpace(path) == "" {
		return invalid(kind, kind+" path is required", nil)
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return invalid(kind, fmt.Sprintf("%s %q does not exist", kind, path), err)
		}
		return invalid(kind, fmt.Sprintf("%s %q is unreadable", kind, path), err)
	}
	if info.IsDir() {
		return invalid(kind, fmt.Sprintf("%s %q is a directory", kind, path), nil)
	}
	return nil
}

func invalid(operation, message string, err error) error {
	return services.Wrap(services.ErrValidation, "request", operation, message, err)
}
