package slides

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"slidecast/internal/services"
)

const pagePattern = "page_%d.png"

var pageName = regexp.MustCompile(`^page_(\d+)\.png$`)

// Rasterizer renders PDF pages to PNG images with mutool.
type Rasterizer struct {
	Binary string
	Runner services.CommandRunner
}

// NewRasterizer returns a Rasterizer for the given mutool binary.
func NewRasterizer(binary string, runner services.CommandRunner) *Rasterizer {
	if binary == "" {
		binary = "mutool"
	}
	if runner == nil {
		runner = services.RunCommand
	}
	return &Rasterizer{Binary: binary, Runner: runner}
}

// Rasterize writes one page_<n>.png per PDF page into dir and returns the
// image paths ordered by page number.
func (r *Rasterizer) Rasterize(ctx context.Context, pdfPath, dir string) ([]string, error) {
	info, err := os.Stat(pdfPath)
	if err != nil {
		msg := "stat pdf"
		if errors.Is(err, fs.ErrNotExist) {
			msg = fmt.Sprintf("pdf %q does not exist", pdfPath)
		}
		return nil, services.Wrap(services.ErrValidation, "slides", "rasterize", msg, err)
	}
	if info.IsDir() {
		return nil, services.Wrap(services.ErrValidation, "slides", "rasterize", fmt.Sprintf("pdf %q is a directory", pdfPath), nil)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "slides", "rasterize", "create output directory", err)
	}

	args := []string{"draw", "-o", filepath.Join(dir, pagePattern), pdfPath}
	if err := r.Runner(ctx, r.Binary, args...); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "slides", "mutool draw", "rasterize pdf", err)
	}

	pages, err := ListPages(dir)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "slides", "rasterize", "list rendered pages", err)
	}
	if len(pages) == 0 {
		return nil, services.Wrap(services.ErrExternalTool, "slides", "rasterize", "mutool produced no pages", nil)
	}
	return pages, nil
}

// ListPages returns the page_<n>.png files in dir sorted by n.
func ListPages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	type page struct {
		n    int
		path string
	}
	var pages []page
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m := pageName.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		pages = append(pages, page{n: n, path: filepath.Join(dir, entry.Name())})
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].n < pages[j].n })
	out := make([]string, len(pages))
	for i, p := range pages {
		out[i] = p.path
	}
	return out, nil
}
