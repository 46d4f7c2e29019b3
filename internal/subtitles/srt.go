package subtitles

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Segment is one transcribed span. Its 1-based position is its cue number.
type Segment struct {
	Start float64
	End   float64
	Text  string
}

var arrowReplacer = strings.NewReplacer("-->", "->")

// CueText folds text onto one line and defuses any timing arrow inside it.
func CueText(text string) string {
	return arrowReplacer.Replace(strings.Join(strings.Fields(text), " "))
}

// Render writes segments as SRT cues to w.
func Render(w io.Writer, segments []Segment) error {
	bw := bufio.NewWriter(w)
	for i, seg := range segments {
		if _, err := fmt.Fprintf(bw, "%d\n%s --> %s\n%s\n\n",
			i+1,
			FormatTimestamp(seg.Start, true),
			FormatTimestamp(seg.End, true),
			CueText(seg.Text),
		); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteSRT renders segments to path through a temporary sibling file, so a
// failed write never leaves a partial SRT at path.
func WriteSRT(path string, segments []Segment) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure srt dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp srt: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()
	if err := Render(tmp, segments); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write srt: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close srt: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("finalize srt: %w", err)
	}
	return nil
}

// CountCues returns the number of cue blocks in the SRT file at path.
func CountCues(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read srt: %w", err)
	}
	content := strings.TrimSpace(strings.ReplaceAll(string(data), "\r\n", "\n"))
	if content == "" {
		return 0, nil
	}
	count := 0
	for _, block := range strings.Split(content, "\n\n") {
		if strings.TrimSpace(block) != "" {
			count++
		}
	}
	return count, nil
}
