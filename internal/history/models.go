package history

import "time"

// Status represents the lifecycle state of a recorded run.
type Status string

const (
	StatusRunning      Status = "running"
	StatusDelivered    Status = "delivered"
	StatusFailed       Status = "failed"
	StatusRejected     Status = "rejected"
	StatusInconsistent Status = "inconsistent"
)

// IsTerminal reports whether the status marks a finished run.
func (s Status) IsTerminal() bool {
	return s != StatusRunning && s != ""
}

// Run is a persisted pipeline run.
type Run struct {
	ID           int64
	RunID        string
	Mode         string
	TextSource   string
	Voice        string
	Subtitles    bool
	SlideCount   int
	OutputPath   string
	SubtitlePath string
	Status       Status
	Stage        string
	ErrorMessage string
	CreatedAt    time.Time
	FinishedAt   *time.Time
}

// Duration returns the wall time of a finished run, or zero while running.
func (r *Run) Duration() time.Duration {
	if r == nil || r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.CreatedAt)
}
