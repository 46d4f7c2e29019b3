package media

import (
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// clipStream loops a still image over the narration audio, ending with the
// audio. Dimensions are rounded down to even values for yuv420p.
func clipStream(image, audio, output string) *ffmpeg.Stream {
	still := ffmpeg.Input(image, ffmpeg.KwArgs{"loop": "1"}).Video()
	narration := ffmpeg.Input(audio).Audio()
	return ffmpeg.Output([]*ffmpeg.Stream{still, narration}, output, ffmpeg.KwArgs{
		"c:v":       "libx264",
		"vf":        "scale=trunc(iw/2)*2:trunc(ih/2)*2",
		"profile:v": "high",
		"level":     "4.0",
		"preset":    "fast",
		"crf":       "23",
		"pix_fmt":   "yuv420p",
		"c:a":       "aac",
		"strict":    "experimental",
		"shortest":  "",
	}).OverWriteOutput()
}

// concatStream joins the files listed in manifest without re-encoding.
func concatStream(manifest, output string) *ffmpeg.Stream {
	return ffmpeg.Input(manifest, ffmpeg.KwArgs{"f": "concat", "safe": "0"}).
		Output(output, ffmpeg.KwArgs{"c": "copy"}).
		OverWriteOutput()
}

// concatAudioStream joins audio files, re-encoding to mp3 when the inputs
// are not already mp3.
func concatAudioStream(manifest, output string, reencode bool) *ffmpeg.Stream {
	out := ffmpeg.KwArgs{"c": "copy"}
	if reencode {
		out = ffmpeg.KwArgs{"acodec": "libmp3lame"}
	}
	return ffmpeg.Input(manifest, ffmpeg.KwArgs{"f": "concat", "safe": "0"}).
		Output(output, out).
		OverWriteOutput()
}

func extractAudioStream(video, output string) *ffmpeg.Stream {
	return ffmpeg.Input(video).
		Output(output, ffmpeg.KwArgs{"vn": "", "acodec": "libmp3lame"}).
		OverWriteOutput()
}

func burnStream(video, srt, output string) *ffmpeg.Stream {
	return ffmpeg.Input(video).
		Output(output, ffmpeg.KwArgs{
			"vf":     "subtitles=" + EscapeFilterPath(srt),
			"c:a":    "copy",
			"c:v":    "libx264",
			"crf":    "20",
			"preset": "medium",
		}).
		OverWriteOutput()
}

var (
	filterOptionEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`, `:`, `\:`)
	filterGraphEscaper  = strings.NewReplacer(`\`, `\\`, `'`, `\'`, `[`, `\[`, `]`, `\]`, `,`, `\,`, `;`, `\;`)
)

// EscapeFilterPath escapes path for use as a filter option value inside a
// -vf filtergraph.
func EscapeFilterPath(path string) string {
	return filterGraphEscaper.Replace(filterOptionEscaper.Replace(path))
}

// manifestLine renders one concat demuxer entry.
func manifestLine(path string) string {
	return "file '" + strings.ReplaceAll(path, "'", `'\''`) + "'\n"
}
