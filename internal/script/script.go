package script

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"slidecast/internal/services"
)

// DefaultMarker separates slide blocks when no marker is configured.
const DefaultMarker = "#NEXT"

// Parse splits text into slide blocks. K marker lines yield K+1 blocks; the
// final block is emitted even when empty, so Parse("") returns one empty block.
func Parse(text, marker string) []string {
	marker = strings.TrimSpace(marker)
	if marker == "" {
		marker = DefaultMarker
	}

	var (
		slides  []string
		current strings.Builder
	)
	for line := range strings.Lines(text) {
		line = strings.TrimSpace(line)
		if line == marker {
			slides = append(slides, strings.TrimSpace(current.String()))
			current.Reset()
			continue
		}
		current.WriteString(line)
		current.WriteByte(' ')
	}
	return append(slides, strings.TrimSpace(current.String()))
}

// Load reads and parses the script at path. A missing file or one with no
// narration text at all is rejected as a validation error.
func Load(path, marker string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		msg := "read script"
		if errors.Is(err, fs.ErrNotExist) {
			msg = fmt.Sprintf("script %q does not exist", path)
		}
		return nil, services.Wrap(services.ErrValidation, "script", "load", msg, err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil, services.Wrap(services.ErrValidation, "script", "load", fmt.Sprintf("script %q is empty", path), nil)
	}
	return Parse(string(data), marker), nil
}
