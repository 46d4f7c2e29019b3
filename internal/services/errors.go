package services

import (
	"errors"
	"fmt"
	"strings"

	"slidecast/internal/history"
)

var (
	ErrExternalTool  = errors.New("external tool error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrTimeout       = errors.New("timeout")
	ErrTransient     = errors.New("transient failure")
	ErrCountMismatch = errors.New("count mismatch")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later status classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// FailureStatus maps a run error to the history status recorded for it.
func FailureStatus(err error) history.Status {
	switch {
	case errors.Is(err, ErrCountMismatch):
		return history.StatusInconsistent
	case errors.Is(err, ErrValidation), errors.Is(err, ErrConfiguration), errors.Is(err, ErrNotFound):
		return history.StatusRejected
	default:
		return history.StatusFailed
	}
}

// Hint returns a short remediation hint suitable for the error_hint log field.
func Hint(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrCountMismatch):
		return "make the script or deck notes produce one block per PDF page"
	case errors.Is(err, ErrConfiguration):
		return "run 'slidecast config validate' and check credentials"
	case errors.Is(err, ErrValidation), errors.Is(err, ErrNotFound):
		return "check the input paths and flags"
	case errors.Is(err, ErrExternalTool):
		return "run 'slidecast status' to verify external tools"
	case errors.Is(err, ErrTimeout):
		return "retry once the remote service responds"
	default:
		return "check logs for details"
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
