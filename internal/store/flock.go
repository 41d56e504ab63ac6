package store

import (
	"os"
	"path/filepath"
	"syscall"

	"github.com/dotcommander/arkham/internal/models"
)

// Lock is an exclusive advisory lock on a workspace lock file. Every mutation
// of a project root (publish, log append) and every history migration runs
// while holding one.
type Lock struct {
	path string
	f    *os.File
}

// AcquireLock blocks until path is exclusively locked. The file and its
// directory are created when missing.
func AcquireLock(path string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, models.NewIOError("create lock directory", filepath.Dir(path), err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644) //nolint:gosec // G304: path derived from the workspace root
	if err != nil {
		return nil, models.NewIOError("open lock", path, err)
	}
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX); err != nil {
		_ = f.Close()
		return nil, models.NewIOError("lock", path, err)
	}
	return &Lock{path: path, f: f}, nil
}

// Path returns the lock file path.
func (l *Lock) Path() string { return l.path }

// Release drops the lock. Safe on a nil Lock and when called twice.
func (l *Lock) Release() {
	if l == nil || l.f == nil {
		return
	}
	_ = syscall.Flock(int(l.f.Fd()), syscall.LOCK_UN)
	_ = l.f.Close()
	l.f = nil
}
