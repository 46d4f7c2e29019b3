package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	defaultBaseURL            = "https://api.openai.com/v1"
	defaultSpeechModel        = "tts-1"
	defaultTranscriptionModel = "whisper-1"
	maxErrorBody              = 4096
)

// ErrMissingAPIKey is returned before any request when no key is configured.
var ErrMissingAPIKey = errors.New("openai: api key required")

// Config captures the runtime settings required to talk to OpenAI.
type Config struct {
	APIKey             string
	BaseURL            string
	SpeechModel        string
	TranscriptionModel string
	// TimeoutSeconds bounds each request; 0 disables the client timeout.
	TimeoutSeconds int
}

// Client issues speech and transcription requests.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs a client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	var timeout time.Duration
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			APIKey:             strings.TrimSpace(cfg.APIKey),
			BaseURL:            strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
			SpeechModel:        strings.TrimSpace(cfg.SpeechModel),
			TranscriptionModel: strings.TrimSpace(cfg.TranscriptionModel),
			TimeoutSeconds:     cfg.TimeoutSeconds,
		},
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cfg.BaseURL == "" {
		client.cfg.BaseURL = defaultBaseURL
	}
	if client.cfg.SpeechModel == "" {
		client.cfg.SpeechModel = defaultSpeechModel
	}
	if client.cfg.TranscriptionModel == "" {
		client.cfg.TranscriptionModel = defaultTranscriptionModel
	}
	return client
}

// StatusError reports a non-2xx response.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("openai %s: http %d: %s", e.Endpoint, e.StatusCode, strings.TrimSpace(e.Body))
}

type speechRequest struct {
	Model string `json:"model"`
	Voice string `json:"voice"`
	Input string `json:"input"`
}

// Speech synthesizes input with voice and returns the encoded mp3 audio.
func (c *Client) Speech(ctx context.Context, voice, input string) ([]byte, error) {
	if c.cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	encoded, err := json.Marshal(speechRequest{Model: c.cfg.SpeechModel, Voice: voice, Input: input})
	if err != nil {
		return nil, fmt.Errorf("openai speech: encode body: %w", err)
	}
	return c.post(ctx, "audio/speech", "application/json", bytes.NewReader(encoded))
}

// Segment is one timed span of a transcription, in seconds.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Transcription is the verbose_json transcription payload.
type Transcription struct {
	Text     string    `json:"text"`
	Language string    `json:"language"`
	Duration float64   `json:"duration"`
	Segments []Segment `json:"segments"`
}

// Transcribe uploads the audio file at path and returns its segments.
func (c *Client) Transcribe(ctx context.Context, path string) (Transcription, error) {
	var out Transcription
	if c.cfg.APIKey == "" {
		return out, ErrMissingAPIKey
	}
	file, err := os.Open(path)
	if err != nil {
		return out, fmt.Errorf("openai transcription: open audio: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fields := [][2]string{
		{"model", c.cfg.TranscriptionModel},
		{"response_format", "verbose_json"},
		{"timestamp_granularities[]", "segment"},
	}
	for _, field := range fields {
		if err := mw.WriteField(field[0], field[1]); err != nil {
			return out, fmt.Errorf("openai transcription: write field: %w", err)
		}
	}
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return out, fmt.Errorf("openai transcription: create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return out, fmt.Errorf("openai transcription: copy audio: %w", err)
	}
	if err := mw.Close(); err != nil {
		return out, fmt.Errorf("openai transcription: close form: %w", err)
	}

	payload, err := c.post(ctx, "audio/transcriptions", mw.FormDataContentType(), &body)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(payload, &out); err != nil {
		return out, fmt.Errorf("openai transcription: decode response: %w", err)
	}
	return out, nil
}

func (c *Client) post(ctx context.Context, endpoint, contentType string, body io.Reader) ([]byte, error) {
	target, err := url.JoinPath(c.cfg.BaseURL, endpoint)
	if err != nil {
		return nil, fmt.Errorf("openai %s: build url: %w", endpoint, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, body)
	if err != nil {
		return nil, fmt.Errorf("openai %s: new request: %w", endpoint, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai %s: http error (timeout=%s): %w", endpoint, c.httpClient.Timeout, err)
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("openai %s: read body: %w", endpoint, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := string(payload)
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		return nil, &StatusError{Endpoint: endpoint, StatusCode: resp.StatusCode, Body: snippet}
	}
	return payload, nil
}
