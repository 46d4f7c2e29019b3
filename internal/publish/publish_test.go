package publish

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"slidecast/internal/services"
)

type putCall struct {
	bucket      string
	key         string
	contentType string
	body        string
}

type fakePutter struct {
	calls []putCall
	err   error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, _ := io.ReadAll(in.Body)
	f.calls = append(f.calls, putCall{
		bucket:      aws.ToString(in.Bucket),
		key:         aws.ToString(in.Key),
		contentType: aws.ToString(in.ContentType),
		body:        string(body),
	})
	return &s3.PutObjectOutput{}, nil
}

func TestUploadSetsKeysAndContentTypes(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "talk.mp4")
	srt := filepath.Join(dir, "talk_subtitles.srt")
	for _, p := range []string{video, srt} {
		if err := os.WriteFile(p, []byte(filepath.Base(p)), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	fake := &fakePutter{}
	pub := NewWithClient(fake, "media", "/talks/2026/", nil)
	uris, err := pub.Upload(context.Background(), video, "", srt)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	want := []string{"s3://media/talks/2026/talk.mp4", "s3://media/talks/2026/talk_subtitles.srt"}
	if len(uris) != 2 || uris[0] != want[0] || uris[1] != want[1] {
		t.Fatalf("unexpected uris %v", uris)
	}
	if fake.calls[0].contentType != "video/mp4" || fake.calls[1].contentType != "application/x-subrip" {
		t.Fatalf("unexpected content types %+v", fake.calls)
	}
	if fake.calls[0].bucket != "media" || fake.calls[0].body != "talk.mp4" {
		t.Fatalf("unexpected call %+v", fake.calls[0])
	}
}

func TestUploadFailureIsExternal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "talk.mp3")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	pub := NewWithClient(&fakePutter{err: errors.New("denied")}, "media", "", nil)
	_, err := pub.Upload(context.Background(), path)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	if pub.Key(path) != "talk.mp3" {
		t.Fatalf("unexpected key %q", pub.Key(path))
	}
}

func TestContentType(t *testing.T) {
	tests := map[string]string{
		"a.MP4": "video/mp4",
		"b.mp3": "audio/mpeg",
		"c.srt": "application/x-subrip",
		"d.txt": "",
	}
	for in, want := range tests {
		if got := ContentType(in); got != want {
			t.Fatalf("ContentType(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestKeyNormalizesPrefixSegments(t *testing.T) {
	pub := NewWithClient(&fakePutter{}, "media", " Team Talks//Q3 Review/", nil)
	if got := pub.Key("/out/talk.mp4"); got != "team_talks/q3_review/talk.mp4" {
		t.Fatalf("unexpected key %q", got)
	}
}
