package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gofrs/flock"

	"slidecast/internal/services"
)

// LockFileName is created in the workspace's parent directory.
const LockFileName = ".slidecast.lock"

// ErrBusy reports that another process holds the workspace lock.
var ErrBusy = errors.New("workspace is in use by another slidecast process")

// Workspace is a scratch directory guarded by a lock file.
type Workspace struct {
	dir  string
	lock *flock.Flock
}

// New returns a Workspace rooted at dir. Nothing is created until Acquire.
func New(dir string) *Workspace {
	dir = filepath.Clean(strings.TrimSpace(dir))
	return &Workspace{
		dir:  dir,
		lock: flock.New(filepath.Join(filepath.Dir(dir), LockFileName)),
	}
}

// Dir returns the scratch directory.
func (w *Workspace) Dir() string { return w.dir }

// LockPath returns the lock file location.
func (w *Workspace) LockPath() string { return w.lock.Path() }

// Path joins name onto the scratch directory.
func (w *Workspace) Path(name string) string { return filepath.Join(w.dir, name) }

// Acquire takes the exclusive lock and leaves the directory empty.
func (w *Workspace) Acquire() error {
	if err := os.MkdirAll(filepath.Dir(w.dir), 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "workspace", "acquire", "create parent directory", err)
	}
	ok, err := w.lock.TryLock()
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "workspace", "acquire", "lock "+w.lock.Path(), err)
	}
	if !ok {
		return services.Wrap(services.ErrTransient, "workspace", "acquire", w.lock.Path(), ErrBusy)
	}
	if err := w.Reset(); err != nil {
		_ = w.lock.Unlock()
		return services.Wrap(services.ErrConfiguration, "workspace", "acquire", "prepare directory", err)
	}
	return nil
}

// Reset removes the directory and recreates it empty.
func (w *Workspace) Reset() error {
	if err := os.RemoveAll(w.dir); err != nil {
		return fmt.Errorf("remove workspace: %w", err)
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("recreate workspace: %w", err)
	}
	return nil
}

// Release drops the lock. It is safe to call when the lock is not held.
func (w *Workspace) Release() error {
	if !w.lock.Locked() {
		return nil
	}
	return w.lock.Unlock()
}

// Entries lists the names currently in the scratch directory, sorted.
func (w *Workspace) Entries() ([]string, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	slices.Sort(names)
	return names, nil
}
