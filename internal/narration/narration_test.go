package narration_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"slidecast/internal/narration"
	"slidecast/internal/services"
	"slidecast/internal/services/openai"
)

type fakeSpeech struct {
	calls  []string
	failAt int
	err    error
}

func (f *fakeSpeech) Speech(_ context.Context, voice, input string) ([]byte, error) {
	f.calls = append(f.calls, voice+":"+input)
	if f.err != nil && len(f.calls)-1 == f.failAt {
		return nil, f.err
	}
	return []byte("mp3:" + input), nil
}

func TestParseVoice(t *testing.T) {
	for _, v := range narration.Voices() {
		got, err := narration.ParseVoice(strings.ToUpper(string(v)))
		if err != nil || got != v {
			t.Fatalf("ParseVoice(%q) = %q, %v", v, got, err)
		}
	}
	if _, err := narration.ParseVoice("robot"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCloudSynthesizeIndexAligned(t *testing.T) {
	dir := t.TempDir()
	client := &fakeSpeech{}
	texts := []string{"one", "two", "three"}

	assets, err := narration.NewCloud(client, narration.VoiceNova, nil).Synthesize(context.Background(), texts, dir)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if len(assets) != len(texts) {
		t.Fatalf("expected %d assets, got %d", len(texts), len(assets))
	}
	for i, asset := range assets {
		if asset.Index != i || asset.Path != narration.AudioPath(dir, i, ".mp3") {
			t.Fatalf("asset %d misaligned: %#v", i, asset)
		}
		data, err := os.ReadFile(asset.Path)
		if err != nil || string(data) != "mp3:"+texts[i] {
			t.Fatalf("asset %d content %q err %v", i, data, err)
		}
	}
	if strings.Join(client.calls, ",") != "nova:one,nova:two,nova:three" {
		t.Fatalf("expected sequential calls, got %v", client.calls)
	}
}

func TestCloudSynthesizeAbortsOnFirstFailure(t *testing.T) {
	client := &fakeSpeech{failAt: 1, err: &openai.StatusError{Endpoint: "audio/speech", StatusCode: 500, Body: "boom"}}
	_, err := narration.NewCloud(client, narration.VoiceAlloy, nil).Synthesize(context.Background(), []string{"a", "b", "c"}, t.TempDir())
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	var statusErr *openai.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError cause, got %v", err)
	}
	if len(client.calls) != 2 {
		t.Fatalf("expected batch to stop after failure, got %d calls", len(client.calls))
	}
}

func TestCloudSynthesizeRejectsUnknownVoiceBeforeCalls(t *testing.T) {
	client := &fakeSpeech{}
	_, err := narration.NewCloud(client, narration.Voice("robot"), nil).Synthesize(context.Background(), []string{"a"}, t.TempDir())
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(client.calls) != 0 {
		t.Fatalf("expected no calls, got %d", len(client.calls))
	}
}

func TestCloudMissingKeyIsConfiguration(t *testing.T) {
	client := &fakeSpeech{failAt: 0, err: openai.ErrMissingAPIKey}
	_, err := narration.NewCloud(client, narration.VoiceAlloy, nil).Synthesize(context.Background(), []string{"a"}, t.TempDir())
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

type recordingEngine struct {
	active  atomic.Int32
	overlap atomic.Bool
	mu      sync.Mutex
	inputs  []string
}

func (e *recordingEngine) Render(_ context.Context, textPath, wavPath string) error {
	if e.active.Add(1) > 1 {
		e.overlap.Store(true)
	}
	defer e.active.Add(-1)
	time.Sleep(2 * time.Millisecond)
	data, err := os.ReadFile(textPath)
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.inputs = append(e.inputs, string(data))
	e.mu.Unlock()
	return os.WriteFile(wavPath, []byte("RIFF"), 0o644)
}

func TestOfflineSynthesizeEmptyAndSingle(t *testing.T) {
	engine := &recordingEngine{}
	syn := narration.NewOffline(engine, nil)

	assets, err := syn.Synthesize(context.Background(), nil, t.TempDir())
	if err != nil || len(assets) != 0 {
		t.Fatalf("expected empty result for N=0, got %v %v", assets, err)
	}

	dir := t.TempDir()
	assets, err = syn.Synthesize(context.Background(), []string{"only slide"}, dir)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if len(assets) != 1 || assets[0].Index != 0 || assets[0].Path != filepath.Join(dir, "audio_0.wav") {
		t.Fatalf("unexpected assets %#v", assets)
	}
	if _, err := os.Stat(assets[0].Path); err != nil {
		t.Fatalf("expected wav written: %v", err)
	}
	if len(engine.inputs) != 1 || engine.inputs[0] != "only slide" {
		t.Fatalf("unexpected engine inputs %v", engine.inputs)
	}
}

func TestOfflineSerializesSharedEngine(t *testing.T) {
	engine := &recordingEngine{}
	syn := narration.NewOffline(engine, nil)

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		dir := t.TempDir()
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := syn.Synthesize(context.Background(), []string{"a", "b", "c"}, dir); err != nil {
				t.Errorf("Synthesize: %v", err)
			}
		}()
	}
	wg.Wait()
	if engine.overlap.Load() {
		t.Fatal("engine calls overlapped")
	}
	if len(engine.inputs) != 12 {
		t.Fatalf("expected 12 renders, got %d", len(engine.inputs))
	}
}

func TestEspeakRenderArgs(t *testing.T) {
	var got []string
	e := &narration.Espeak{WordsPerMinute: 150, Runner: func(_ context.Context, name string, args ...string) error {
		got = append([]string{name}, args...)
		return nil
	}}
	if err := e.Render(context.Background(), "text_0.txt", "audio_0.wav"); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Join(got, " ") != "espeak-ng -f text_0.txt -w audio_0.wav -s 150" {
		t.Fatalf("unexpected command %v", got)
	}
}

func TestOfflineWrapsEngineFailure(t *testing.T) {
	e := &narration.Espeak{Runner: func(context.Context, string, ...string) error { return errors.New("exit status 1") }}
	_, err := narration.NewOffline(e, nil).Synthesize(context.Background(), []string{"x"}, t.TempDir())
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}
