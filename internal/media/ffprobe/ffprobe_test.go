package ffprobe

import (
	"math"
	"strings"
	"testing"
)

const sampleJSON = `{
  "streams": [
    {"index": 0, "codec_name": "h264", "codec_type": "video", "width": 1280, "height": 720},
    {"index": 1, "codec_name": "aac", "codec_type": "audio", "channels": 1}
  ],
  "format": {"filename": "talk.mp4", "nb_streams": 2, "duration": "12.480000", "size": "48213", "format_name": "mov,mp4,m4a,3gp,3g2,mj2"}
}`

func TestDecodeAndHelpers(t *testing.T) {
	result, err := Decode([]byte(sampleJSON))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if result.VideoStreamCount() != 1 || result.AudioStreamCount() != 1 {
		t.Fatalf("unexpected stream counts %d/%d", result.VideoStreamCount(), result.AudioStreamCount())
	}
	if result.DurationSeconds() != 12.48 {
		t.Fatalf("unexpected duration: %v", result.DurationSeconds())
	}
	if result.SizeBytes() != 48213 {
		t.Fatalf("unexpected size: %d", result.SizeBytes())
	}
	if err := result.Check(true); err != nil {
		t.Fatalf("expected deliverable to pass, got %v", err)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := Decode([]byte("not json")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name      string
		result    Result
		wantVideo bool
		wantErr   string
	}{
		{"audio only ok", Result{Streams: []Stream{{CodecType: "audio"}}, Format: Format{Duration: "3.0"}}, false, ""},
		{"missing video", Result{Streams: []Stream{{CodecType: "audio"}}, Format: Format{Duration: "3.0"}}, true, "no video stream"},
		{"missing audio", Result{Streams: []Stream{{CodecType: "video"}}, Format: Format{Duration: "3.0"}}, true, "no audio stream"},
		{"zero duration", Result{Streams: []Stream{{CodecType: "video"}, {CodecType: "audio"}}, Format: Format{Duration: "0"}}, true, "invalid duration"},
		{"bad duration", Result{Streams: []Stream{{CodecType: "audio"}}, Format: Format{Duration: "N/A"}}, false, "invalid duration"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.result.Check(tt.wantVideo)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestResultHelpersHandleInvalidNumbers(t *testing.T) {
	result := Result{Format: Format{Duration: "bad", Size: "-1"}}
	if !math.IsNaN(result.DurationSeconds()) {
		t.Fatalf("expected duration NaN, got %v", result.DurationSeconds())
	}
	if result.SizeBytes() != 0 {
		t.Fatalf("expected size 0, got %d", result.SizeBytes())
	}
}
