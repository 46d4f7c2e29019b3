// Package subtitles turns a narrated timeline into a SubRip file.
//
// The Engine walks one transcription through three states: the audio track
// is extracted, sent for segment-level transcription, and the segments are
// written as numbered SRT cues. The SRT file only appears once it is
// complete.
package subtitles
