package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeOpenAI()
	c.normalizeTools()
	c.normalizeScript()
	c.normalizePublish()
	if err := c.normalizeWatch(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.WorkspaceDir) == "" {
		c.Paths.WorkspaceDir = defaultWorkspaceDir
	}
	if c.Paths.WorkspaceDir, err = expandPath(c.Paths.WorkspaceDir); err != nil {
		return fmt.Errorf("paths.workspace_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.SubtitleDir, err = expandPath(strings.TrimSpace(c.Paths.SubtitleDir)); err != nil {
		return fmt.Errorf("paths.subtitle_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeOpenAI() {
	c.OpenAI.APIKey = strings.TrimSpace(c.OpenAI.APIKey)
	if c.OpenAI.APIKey == "" {
		if value, ok := os.LookupEnv("OPENAI_API_KEY"); ok {
			c.OpenAI.APIKey = strings.TrimSpace(value)
		} else if value, ok := os.LookupEnv("APIKEY"); ok {
			c.OpenAI.APIKey = strings.TrimSpace(value)
		}
	}
	c.OpenAI.BaseURL = strings.TrimRight(strings.TrimSpace(c.OpenAI.BaseURL), "/")
	if c.OpenAI.BaseURL == "" {
		c.OpenAI.BaseURL = defaultOpenAIBaseURL
	}
	c.OpenAI.SpeechModel = strings.TrimSpace(c.OpenAI.SpeechModel)
	if c.OpenAI.SpeechModel == "" {
		c.OpenAI.SpeechModel = defaultSpeechModel
	}
	c.OpenAI.Voice = strings.ToLower(strings.TrimSpace(c.OpenAI.Voice))
	if c.OpenAI.Voice == "" {
		c.OpenAI.Voice = defaultVoice
	}
	c.OpenAI.TranscriptionModel = strings.TrimSpace(c.OpenAI.TranscriptionModel)
	if c.OpenAI.TranscriptionModel == "" {
		c.OpenAI.TranscriptionModel = defaultTranscriptionModel
	}
	if c.OpenAI.TimeoutSeconds < 0 {
		c.OpenAI.TimeoutSeconds = 0
	}
}

func (c *Config) normalizeTools() {
	c.Tools.FFmpeg = defaultString(c.Tools.FFmpeg, defaultFFmpeg)
	c.Tools.FFprobe = defaultString(c.Tools.FFprobe, defaultFFprobe)
	c.Tools.Mutool = defaultString(c.Tools.Mutool, defaultMutool)
	c.OfflineVoice.Command = defaultString(c.OfflineVoice.Command, defaultOfflineCommand)
	if c.OfflineVoice.WordsPerMinute < 0 {
		c.OfflineVoice.WordsPerMinute = 0
	}
	if c.Encoding.MaxParallelClips < 0 {
		c.Encoding.MaxParallelClips = 0
	}
}

func (c *Config) normalizeScript() {
	c.Script.Marker = defaultString(c.Script.Marker, defaultScriptMarker)
}

func (c *Config) normalizePublish() {
	c.Publish.Bucket = strings.TrimSpace(c.Publish.Bucket)
	c.Publish.Prefix = strings.Trim(strings.TrimSpace(c.Publish.Prefix), "/")
	c.Publish.Profile = strings.TrimSpace(c.Publish.Profile)
	c.Publish.Region = strings.TrimSpace(c.Publish.Region)
	if c.Publish.Region == "" {
		if value, ok := os.LookupEnv("AWS_REGION"); ok {
			c.Publish.Region = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeWatch() error {
	var err error
	if strings.TrimSpace(c.Watch.Dir) == "" {
		c.Watch.Dir = defaultWatchDir
	}
	if c.Watch.Dir, err = expandPath(c.Watch.Dir); err != nil {
		return fmt.Errorf("watch.dir: %w", err)
	}
	if c.Watch.SettleMillis < 0 {
		c.Watch.SettleMillis = 0
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func defaultString(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	return value
}
