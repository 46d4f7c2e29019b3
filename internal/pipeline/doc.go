// Package pipeline orchestrates one slidecast run from inputs to delivered
// files.
//
// A video run moves through slides_ready, narration_ready, clips_ready and
// timeline_ready, then subtitles_ready when subtitles are requested, and
// ends at delivered. An audio run skips the rasterizer and clips and
// concatenates narration directly. Count checks between stages fail fast
// with services.ErrCountMismatch.
//
// Deliverables are written as hidden partial files beside their destination
// and renamed into place only after every stage succeeded, so an aborted run
// leaves the destination untouched. The workspace is reset after every run.
package pipeline
