package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	WorkspaceDir string `toml:"workspace_dir"`
	StateDir     string `toml:"state_dir"`
	LogDir       string `toml:"log_dir"`
	OutputDir    string `toml:"output_dir"`
	SubtitleDir  string `toml:"subtitle_dir"`
}

// OpenAI contains credentials and model selection for the speech and
// transcription endpoints.
type OpenAI struct {
	APIKey             string `toml:"api_key"`
	BaseURL            string `toml:"base_url"`
	SpeechModel        string `toml:"speech_model"`
	Voice              string `toml:"voice"`
	TranscriptionModel string `toml:"transcription_model"`
	TimeoutSeconds     int    `toml:"timeout_seconds"`
}

// OfflineVoice configures the local speech engine used for demo renders.
type OfflineVoice struct {
	Command        string `toml:"command"`
	WordsPerMinute int    `toml:"words_per_minute"`
}

// Tools names the external media binaries.
type Tools struct {
	FFmpeg  string `toml:"ffmpeg"`
	FFprobe string `toml:"ffprobe"`
	Mutool  string `toml:"mutool"`
}

// Encoding contains clip assembly settings.
type Encoding struct {
	// MaxParallelClips caps concurrent clip encodes. Zero launches every clip at once.
	MaxParallelClips int  `toml:"max_parallel_clips"`
	VerifyOutput     bool `toml:"verify_output"`
}

// Script contains script-file parsing settings.
type Script struct {
	Marker string `toml:"marker"`
}

// Publish contains optional S3 upload settings for delivered files.
type Publish struct {
	Enabled      bool   `toml:"enabled"`
	Bucket       string `toml:"bucket"`
	Prefix       string `toml:"prefix"`
	Region       string `toml:"region"`
	Profile      string `toml:"profile"`
	UsePathStyle bool   `toml:"use_path_style"`
}

// Watch contains hot-folder settings.
type Watch struct {
	Dir          string `toml:"dir"`
	SettleMillis int    `toml:"settle_millis"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for slidecast.
//
// Configuration sections by subsystem:
//   - Paths: workspace, state, log, and default delivery directories
//   - OpenAI: production voice and transcription credentials
//   - OfflineVoice: local demo voice engine
//   - Tools: ffmpeg, ffprobe, and mutool binaries
//   - Encoding: clip fan-out ceiling and output verification
//   - Script: slide boundary marker
//   - Publish: optional S3 upload of deliverables
//   - Watch: hot-folder job intake
//   - Logging: log format and level
type Config struct {
	Paths        Paths        `toml:"paths"`
	OpenAI       OpenAI       `toml:"openai"`
	OfflineVoice OfflineVoice `toml:"offline_voice"`
	Tools        Tools        `toml:"tools"`
	Encoding     Encoding     `toml:"encoding"`
	Script       Script       `toml:"script"`
	Publish      Publish      `toml:"publish"`
	Watch        Watch        `toml:"watch"`
	Logging      Logging      `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/slidecast/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := loadDotEnv(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("slidecast.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories a run writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkspaceDir, c.Paths.StateDir, c.Paths.LogDir, c.Paths.OutputDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// SubtitleOutputDir returns the directory subtitle files are delivered to by default.
func (c *Config) SubtitleOutputDir() string {
	if strings.TrimSpace(c.Paths.SubtitleDir) != "" {
		return c.Paths.SubtitleDir
	}
	return c.Paths.OutputDir
}

// OpenAITimeout returns the per-request HTTP timeout, or zero for none.
func (c *Config) OpenAITimeout() time.Duration {
	if c.OpenAI.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.OpenAI.TimeoutSeconds) * time.Second
}

// WatchSettle returns how long the watcher waits before reading a new job file.
func (c *Config) WatchSettle() time.Duration {
	return time.Duration(c.Watch.SettleMillis) * time.Millisecond
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
