package media

import "context"

// ExtractAudio writes the audio track of video to output as mp3.
func (t *Tool) ExtractAudio(ctx context.Context, video, output string) error {
	return t.run(ctx, "extract audio", extractAudioStream(video, output), output)
}

// BurnSubtitles re-encodes video with the SRT rendered into the picture and
// the audio stream copied.
func (t *Tool) BurnSubtitles(ctx context.Context, video, srt, output string) error {
	return t.run(ctx, "burn subtitles", burnStream(video, srt, output), output)
}
