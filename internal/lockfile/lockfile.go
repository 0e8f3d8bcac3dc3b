// Package lockfile provides cross-process exclusive locking and
// atomic-rename writes, the same primitives BeadsLog's daemon registry
// (internal/daemon/registry.go) uses to serialize read-modify-write access
// to a shared JSON file.
package lockfile

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// WithLock runs fn while holding an exclusive advisory lock on path.
// The lock file is created alongside path with a ".lock" suffix so the
// protected file itself is never opened in a lock-incompatible mode.
func WithLock(path string, fn func() error) error {
	lockPath := path + ".lock"
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return fmt.Errorf("lockfile: create dir: %w", err)
	}

	fl := flock.New(lockPath)
	if err := fl.Lock(); err != nil {
		return fmt.Errorf("lockfile: acquire %s: %w", lockPath, err)
	}
	defer func() { _ = fl.Unlock() }()

	return fn()
}

// WriteAtomic writes data to path by writing to a temp file in the same
// directory, fsyncing it, then renaming it into place — the same
// write-then-rename sequence the daemon registry uses to avoid torn
// writes being observed by concurrent readers.
func WriteAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("lockfile: create dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("lockfile: create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("lockfile: write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("lockfile: sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("lockfile: close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("lockfile: chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("lockfile: rename into place: %w", err)
	}
	return nil
}
