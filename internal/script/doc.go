// Package script splits narration scripts into per-slide text blocks.
//
// A script is plain UTF-8 text where a line consisting only of the marker
// (#NEXT by default) separates one slide's narration from the next. Lines
// inside a block are trimmed and joined with single spaces.
package script
