package media

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"slidecast/internal/logging"
	"slidecast/internal/services"
)

// ClipJob pairs one slide image with its narration audio.
type ClipJob struct {
	Index int
	Image string
	Audio string
}

// Clip is an assembled per-slide video in the workspace.
type Clip struct {
	Index int
	Path  string
}

// ClipError aggregates every failed clip job of one assembly.
type ClipError struct {
	Failures map[int]error
}

func (e *ClipError) Error() string {
	indexes := e.Indexes()
	parts := make([]string, 0, len(indexes))
	for _, idx := range indexes {
		parts = append(parts, fmt.Sprintf("slide %d: %v", idx, e.Failures[idx]))
	}
	return fmt.Sprintf("%d clip jobs failed: %s", len(indexes), strings.Join(parts, "; "))
}

// Indexes returns the failed slide indexes in ascending order.
func (e *ClipError) Indexes() []int {
	out := make([]int, 0, len(e.Failures))
	for idx := range e.Failures {
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}

// Unwrap exposes the per-job errors to errors.Is and errors.As.
func (e *ClipError) Unwrap() []error {
	out := make([]error, 0, len(e.Failures))
	for _, idx := range e.Indexes() {
		out = append(out, e.Failures[idx])
	}
	return out
}

// ClipAssembler fans clip jobs out to concurrent ffmpeg processes.
type ClipAssembler struct {
	Tool *Tool
	// MaxParallel caps concurrent jobs; 0 runs every job at once.
	MaxParallel int
}

// Assemble renders video_<i>.mp4 into dir for every job and waits for all of
// them. A failing job does not cancel its siblings; all failures are reported
// together in a *ClipError wrapped as an external tool error.
func (a *ClipAssembler) Assemble(ctx context.Context, jobs []ClipJob, dir string) ([]Clip, error) {
	if len(jobs) == 0 {
		return []Clip{}, nil
	}
	tool := a.Tool
	if tool == nil {
		tool = NewTool("", nil, nil)
	}

	var g errgroup.Group
	if a.MaxParallel > 0 {
		g.SetLimit(a.MaxParallel)
	}
	clips := make([]Clip, len(jobs))
	errs := make([]error, len(jobs))
	started := time.Now()
	for pos, job := range jobs {
		output := filepath.Join(dir, "video_"+strconv.Itoa(job.Index)+".mp4")
		clips[pos] = Clip{Index: job.Index, Path: output}
		g.Go(func() error {
			jobCtx := services.WithSlideIndex(ctx, job.Index)
			errs[pos] = tool.run(jobCtx, "assemble clip", clipStream(job.Image, job.Audio, output), output)
			return nil
		})
	}
	_ = g.Wait()

	failures := make(map[int]error)
	for pos, err := range errs {
		if err != nil {
			failures[jobs[pos].Index] = err
		}
	}
	if len(failures) > 0 {
		clipErr := &ClipError{Failures: failures}
		logging.ErrorWithContext(logging.WithContext(ctx, tool.Logger), "clip assembly failed", "clip_failure",
			logging.Int("failed_count", len(failures)),
			logging.Int("clip_count", len(jobs)),
			logging.String(logging.FieldErrorHint, "inspect the failing slide image and narration audio"),
		)
		return nil, services.Wrap(services.ErrExternalTool, "media", "assemble clips", "", clipErr)
	}

	sort.Slice(clips, func(i, j int) bool { return clips[i].Index < clips[j].Index })
	logging.WithContext(ctx, tool.Logger).Debug("clips assembled",
		logging.Int("clip_count", len(clips)),
		logging.Duration("stage_duration", time.Since(started)),
	)
	return clips, nil
}
