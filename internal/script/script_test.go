package script_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"slidecast/internal/script"
	"slidecast/internal/services"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		marker string
		want   []string
	}{
		{"empty input yields one empty slide", "", "", []string{""}},
		{"no marker", "hello\nworld\n", "", []string{"hello world"}},
		{"two markers three slides", "one\n#NEXT\ntwo\n  #NEXT  \nthree", "", []string{"one", "two", "three"}},
		{"lines trimmed and joined", "  first line  \n\tsecond\n", "#NEXT", []string{"first line second"}},
		{"crlf input", "a\r\n#NEXT\r\nb\r\n", "", []string{"a", "b"}},
		{"leading and trailing markers", "#NEXT\nmiddle\n#NEXT\n", "", []string{"", "middle", ""}},
		{"marker must be whole line", "say #NEXT now\n", "", []string{"say #NEXT now"}},
		{"custom marker", "a\n---\nb", "---", []string{"a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := script.Parse(tt.text, tt.marker)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Parse(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestParseMarkerCountYieldsKPlusOne(t *testing.T) {
	for k := 0; k < 6; k++ {
		text := strings.Repeat("text\n#NEXT\n", k) + "tail"
		if got := script.Parse(text, ""); len(got) != k+1 {
			t.Fatalf("k=%d: expected %d slides, got %d", k, k+1, len(got))
		}
	}
}

func TestParseIsIdempotentUnderRejoin(t *testing.T) {
	inputs := []string{
		"Welcome everyone.\nToday we cover Go.\n#NEXT\n\n#NEXT\nThanks  for coming\n",
		"",
		"#NEXT\n#NEXT",
	}
	for _, in := range inputs {
		first := script.Parse(in, "")
		rejoined := strings.Join(first, "\n"+script.DefaultMarker+"\n")
		second := script.Parse(rejoined, "")
		if !reflect.DeepEqual(first, second) {
			t.Fatalf("re-parse changed result: %q vs %q", first, second)
		}
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "script.txt")
	if err := os.WriteFile(path, []byte("intro\n#NEXT\nbody\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := script.Load(path, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"intro", "body"}) {
		t.Fatalf("unexpected slides %q", got)
	}
}

func TestLoadRejectsMissingAndBlank(t *testing.T) {
	dir := t.TempDir()
	blank := filepath.Join(dir, "blank.txt")
	if err := os.WriteFile(blank, []byte("  \n\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	for _, path := range []string{filepath.Join(dir, "missing.txt"), blank} {
		_, err := script.Load(path, "")
		if !errors.Is(err, services.ErrValidation) {
			t.Fatalf("Load(%s): expected validation error, got %v", path, err)
		}
	}
}
