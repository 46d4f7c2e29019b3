package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"slidecast/internal/services"
)

// ManifestName is the concat demuxer input written into the work directory.
const ManifestName = "input_files.txt"

// Concatenate stream-copies the clips, in the given order, into output. The
// manifest is removed whether or not ffmpeg succeeds.
func (t *Tool) Concatenate(ctx context.Context, clips []Clip, workDir, output string) error {
	paths := make([]string, len(clips))
	for i, clip := range clips {
		paths[i] = clip.Path
	}
	manifest, err := writeManifest(workDir, paths)
	if err != nil {
		return err
	}
	defer os.Remove(manifest)
	return t.run(ctx, "concatenate", concatStream(manifest, output), output)
}

// ConcatAudio joins narration assets into a single mp3. Assets already in
// mp3 are stream-copied; anything else is re-encoded with libmp3lame.
func (t *Tool) ConcatAudio(ctx context.Context, paths []string, workDir, output string) error {
	if len(paths) == 0 {
		return services.Wrap(services.ErrValidation, "media", "concat audio", "no audio inputs", nil)
	}
	reencode := false
	for _, p := range paths {
		if !strings.EqualFold(filepath.Ext(p), filepath.Ext(output)) {
			reencode = true
			break
		}
	}
	manifest, err := writeManifest(workDir, paths)
	if err != nil {
		return err
	}
	defer os.Remove(manifest)
	return t.run(ctx, "concat audio", concatAudioStream(manifest, output, reencode), output)
}

func writeManifest(dir string, paths []string) (string, error) {
	var b strings.Builder
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return "", services.Wrap(services.ErrExternalTool, "media", "concat manifest", fmt.Sprintf("resolve %s", p), err)
		}
		b.WriteString(manifestLine(abs))
	}
	manifest := filepath.Join(dir, ManifestName)
	if err := os.WriteFile(manifest, []byte(b.String()), 0o644); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "media", "concat manifest", "write manifest", err)
	}
	return manifest, nil
}
