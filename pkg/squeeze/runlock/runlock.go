// Package runlock guards against concurrent squeeze runs. Two
// processes rewriting the same files race on the temp-then-rename
// replacement, so only one instance may run at a time.
package runlock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrHeld is returned when another squeeze process holds the lock.
var ErrHeld = errors.New("another squeeze instance is running")

// Lock is a process-wide exclusive lock backed by a lock file.
type Lock struct {
	flock *flock.Flock
	path  string
}

// New creates a lock at the given path. The lock file's parent
// directory is created if needed; the lock is not acquired.
func New(path string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating lock directory: %w", err)
	}
	return &Lock{
		flock: flock.New(path),
		path:  path,
	}, nil
}

// Acquire attempts to take the lock without blocking.
// Returns ErrHeld if another process has it.
func (l *Lock) Acquire() error {
	acquired, err := l.flock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to try lock on %s: %w", l.path, err)
	}
	if !acquired {
		return ErrHeld
	}
	return nil
}

// Release releases the lock.
func (l *Lock) Release() error {
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock on %s: %w", l.path, err)
	}
	return nil
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.path
}
