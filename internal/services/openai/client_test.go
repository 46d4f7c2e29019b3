package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestSpeechPostsModelVoiceInput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/audio/speech" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("unexpected auth header %q", got)
		}
		var req speechRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != "tts-1" || req.Voice != "nova" || req.Input != "hello there" {
			t.Errorf("unexpected request %#v", req)
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("ID3mp3"))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "secret", BaseURL: server.URL + "/v1/"})
	audio, err := client.Speech(context.Background(), "nova", "hello there")
	if err != nil {
		t.Fatalf("Speech returned error: %v", err)
	}
	if string(audio) != "ID3mp3" {
		t.Fatalf("unexpected audio %q", audio)
	}
}

func TestSpeechStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":{"message":"bad key"}}`)
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "bad", BaseURL: server.URL})
	_, err := client.Speech(context.Background(), "alloy", "x")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusUnauthorized || statusErr.Endpoint != "audio/speech" {
		t.Fatalf("unexpected status error %#v", statusErr)
	}
}

func TestMissingAPIKeyFailsBeforeRequest(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://127.0.0.1:1"})
	if _, err := client.Speech(context.Background(), "alloy", "x"); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
	if _, err := client.Transcribe(context.Background(), "audio.mp3"); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}

func TestTranscribeSendsMultipartAndParsesSegments(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/transcriptions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
			return
		}
		if r.FormValue("model") != "whisper-1" || r.FormValue("response_format") != "verbose_json" {
			t.Errorf("unexpected form %v", r.MultipartForm.Value)
		}
		if r.FormValue("timestamp_granularities[]") != "segment" {
			t.Errorf("missing segment granularity: %v", r.MultipartForm.Value)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		if header.Filename != "audio.mp3" || string(data) != "mp3-bytes" {
			t.Errorf("unexpected upload %s %q", header.Filename, data)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"text": "hello world",
			"segments": []map[string]any{
				{"id": 0, "start": 0.0, "end": 1.5, "text": " hello"},
				{"id": 1, "start": 1.5, "end": 3.25, "text": " world"},
			},
		})
	}))
	defer server.Close()

	path := filepath.Join(t.TempDir(), "audio.mp3")
	if err := os.WriteFile(path, []byte("mp3-bytes"), 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}
	client := NewClient(Config{APIKey: "k", BaseURL: server.URL, TimeoutSeconds: 5})
	got, err := client.Transcribe(context.Background(), path)
	if err != nil {
		t.Fatalf("Transcribe returned error: %v", err)
	}
	if len(got.Segments) != 2 || got.Segments[1].Start != 1.5 || got.Segments[1].End != 3.25 || got.Segments[0].Text != " hello" {
		t.Fatalf("unexpected segments %#v", got.Segments)
	}
}

func TestNewClientDefaults(t *testing.T) {
	client := NewClient(Config{})
	if client.cfg.BaseURL != defaultBaseURL || client.cfg.SpeechModel != "tts-1" || client.cfg.TranscriptionModel != "whisper-1" {
		t.Fatalf("unexpected defaults %#v", client.cfg)
	}
	if client.httpClient.Timeout != 0 {
		t.Fatalf("expected no timeout, got %s", client.httpClient.Timeout)
	}
}
