package deps

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// Resolve returns the executable a command name or path refers to. Names
// without a path separator are looked up on PATH.
func Resolve(command string) (string, error) {
	command = strings.TrimSpace(command)
	if command == "" {
		return "", fmt.Errorf("command not configured")
	}
	if !strings.ContainsRune(command, filepath.Separator) {
		path, err := exec.LookPath(command)
		if err != nil {
			return "", fmt.Errorf("binary %q not found", command)
		}
		return path, nil
	}
	info, err := os.Stat(command)
	if err != nil {
		return "", fmt.Errorf("binary %q not found", command)
	}
	if !isExecutable(info) {
		return "", fmt.Errorf("binary %q is not executable", command)
	}
	return command, nil
}

func isExecutable(info os.FileInfo) bool {
	if info == nil {
		return false
	}
	if info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
