package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable. Credentials are only checked
// where a setting requires them; a missing OpenAI key is reported by the run
// that needs it so offline renders keep working.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateOpenAI(); err != nil {
		return err
	}
	if err := c.validateScript(); err != nil {
		return err
	}
	if err := c.validatePublish(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.WorkspaceDir) == "" {
		return errors.New("paths.workspace_dir must be set")
	}
	for _, other := range []struct {
		key   string
		value string
	}{
		{"paths.output_dir", c.Paths.OutputDir},
		{"paths.subtitle_dir", c.Paths.SubtitleDir},
		{"paths.state_dir", c.Paths.StateDir},
	} {
		if other.value != "" && other.value == c.Paths.WorkspaceDir {
			return fmt.Errorf("%s must differ from paths.workspace_dir (the workspace is emptied after every run)", other.key)
		}
	}
	return nil
}

func (c *Config) validateOpenAI() error {
	parsed, err := url.Parse(c.OpenAI.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("openai.base_url must be an absolute URL, got %q", c.OpenAI.BaseURL)
	}
	return nil
}

func (c *Config) validateScript() error {
	if strings.ContainsAny(c.Script.Marker, "\r\n") {
		return errors.New("script.marker must be a single line")
	}
	return nil
}

func (c *Config) validatePublish() error {
	if c.Publish.Enabled && c.Publish.Bucket == "" {
		return errors.New("publish.bucket must be set when publish.enabled is true")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
}
