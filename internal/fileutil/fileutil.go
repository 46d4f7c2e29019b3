package fileutil

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const partialSuffix = ".partial"

// PartialPath returns the hidden sibling of dst used while dst is being
// produced. It keeps dst's directory and extension.
func PartialPath(dst string) string {
	base := filepath.Base(dst)
	ext := filepath.Ext(base)
	return filepath.Join(filepath.Dir(dst), "."+strings.TrimSuffix(base, ext)+partialSuffix+ext)
}

// Promote renames a finished partial file onto dst. The partial is removed
// if the rename fails.
func Promote(partial, dst string) error {
	if err := os.Rename(partial, dst); err != nil {
		_ = os.Remove(partial)
		return fmt.Errorf("promote %s: %w", filepath.Base(dst), err)
	}
	return nil
}

// Discard removes a partial file, ignoring a missing one.
func Discard(partial string) error {
	if err := os.Remove(partial); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// CopyFileVerified streams src to dst with SHA256 + size integrity verification.
// Removes dst on mismatch.
func CopyFileVerified(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	srcSize := srcInfo.Size()

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() {
		_ = out.Close()
	}()

	srcHasher := sha256.New()
	dstHasher := sha256.New()
	tee := io.TeeReader(in, srcHasher)
	multi := io.MultiWriter(out, dstHasher)

	written, err := io.Copy(multi, tee)
	if err != nil {
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	if written != srcSize {
		_ = os.Remove(dst)
		return fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", srcSize, written)
	}

	if !bytes.Equal(srcHasher.Sum(nil), dstHasher.Sum(nil)) {
		_ = os.Remove(dst)
		return fmt.Errorf("copy hash mismatch: file corrupted during copy")
	}

	return nil
}
