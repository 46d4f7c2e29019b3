package watch

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"slidecast/internal/config"
	"slidecast/internal/pipeline"
	"slidecast/internal/services"
)

// Manifest is one job file. Relative paths resolve against the manifest's
// directory.
type Manifest struct {
	Mode           string `toml:"mode" yaml:"mode"`
	PDF            string `toml:"pdf" yaml:"pdf"`
	Script         string `toml:"script" yaml:"script"`
	Notes          string `toml:"notes" yaml:"notes"`
	Marker         string `toml:"marker" yaml:"marker"`
	Offline        bool   `toml:"offline" yaml:"offline"`
	Voice          string `toml:"voice" yaml:"voice"`
	Subtitles      bool   `toml:"subtitles" yaml:"subtitles"`
	Name           string `toml:"name" yaml:"name"`
	Output         string `toml:"output" yaml:"output"`
	SubtitleOutput string `toml:"subtitle_output" yaml:"subtitle_output"`
}

// IsManifest reports whether the file name has a manifest extension.
func IsManifest(path string) bool {
	if strings.HasPrefix(filepath.Base(path), ".") {
		return false
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml", ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// LoadManifest decodes a TOML or YAML manifest. Unknown keys are rejected.
func LoadManifest(path string) (Manifest, error) {
	var m Manifest
	data, err := os.ReadFile(path)
	if err != nil {
		return m, services.Wrap(services.ErrValidation, "watch", "read manifest", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&m)
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err = dec.Decode(&m); errors.Is(err, io.EOF) {
			err = nil
		}
	default:
		err = fmt.Errorf("unsupported manifest extension %q", filepath.Ext(path))
	}
	if err != nil {
		return m, services.Wrap(services.ErrValidation, "watch", "decode manifest", path, err)
	}
	return m, nil
}

// Request builds the pipeline request for a manifest stored at path.
func (m Manifest) Request(cfg *config.Config, path string) pipeline.Request {
	base := filepath.Dir(path)
	resolve := func(p string) string {
		p = strings.TrimSpace(p)
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}

	req := pipeline.Request{
		Mode:         pipeline.Mode(strings.ToLower(strings.TrimSpace(m.Mode))),
		PDFPath:      resolve(m.PDF),
		ScriptPath:   resolve(m.Script),
		NotesPath:    resolve(m.Notes),
		Marker:       m.Marker,
		Subtitles:    m.Subtitles,
		OutputPath:   resolve(m.Output),
		SubtitlePath: resolve(m.SubtitleOutput),
	}
	if req.Mode == "" {
		req.Mode = pipeline.ModeVideo
	}
	req.TextSource = pipeline.TextSourceScript
	if req.NotesPath != "" && req.ScriptPath == "" {
		req.TextSource = pipeline.TextSourceNotes
	}
	if m.Offline {
		req.Voice = pipeline.VoiceOffline
	} else {
		req.Voice = pipeline.VoiceProduction
		req.VoiceName = strings.TrimSpace(m.Voice)
		if req.VoiceName == "" {
			req.VoiceName = cfg.OpenAI.Voice
		}
	}

	name := m.Name
	if strings.TrimSpace(name) == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	req.DefaultOutputs(cfg, name)
	return req
}
