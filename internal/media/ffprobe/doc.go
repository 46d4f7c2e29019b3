// Package ffprobe inspects rendered deliverables with ffprobe's JSON output.
//
// Inspect runs the probe; Decode parses a captured payload; Check rejects
// files that are unusable as a delivered video or audio track.
package ffprobe
