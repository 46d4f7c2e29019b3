// Package media drives ffmpeg for every audio/video transformation in a run:
// per-slide clip assembly, timeline concatenation, audio extraction, and
// subtitle burn-in.
//
// Argument lists are built with ffmpeg-go and executed through an injected
// services.CommandRunner so tests can observe the exact invocation and fake
// the output files.
package media
