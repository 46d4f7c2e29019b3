package services

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// CommandRunner executes an external binary. Implementations return an error
// carrying the tool's combined output when the process exits non-zero.
type CommandRunner func(ctx context.Context, name string, args ...string) error

// RunCommand is the default CommandRunner backed by os/exec.
func RunCommand(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}
