// Package lock serializes installer runs with a file-based advisory lock.
// Acquisition is acquire-or-fail; callers defer Release so the lock is
// dropped on every exit path, including fatal unwinds.
package lock

import (
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/dotlink-dev/dotlink/pkg/errors"
	"github.com/dotlink-dev/dotlink/pkg/logging"
)

// Lock is a held advisory lock.
type Lock struct {
	fl   *flock.Flock
	path string
}

// Acquire takes the advisory lock at path without blocking. If another
// instance holds it, a fatal LockHeld error is returned telling the user
// which file to remove if they are certain no other run is active.
func Acquire(path string) (*Lock, error) {
	logger := logging.GetLogger("lock")

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrDirCreate,
			"failed to create lock directory for %s", path)
	}

	fl := flock.New(path)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess,
			"failed to acquire lock %s", path)
	}
	if !locked {
		return nil, errors.Newf(errors.ErrLockHeld,
			"another dotlink instance is running; if you are certain it is not, remove %s", path)
	}

	logger.Debug().Str("path", path).Msg("acquired advisory lock")
	return &Lock{fl: fl, path: path}, nil
}

// Release drops the lock. Safe to call on every exit path.
func (l *Lock) Release() error {
	if l == nil || l.fl == nil {
		return nil
	}
	logger := logging.GetLogger("lock")
	if err := l.fl.Unlock(); err != nil {
		logger.Warn().Err(err).Str("path", l.path).Msg("failed to release lock")
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to release lock %s", l.path)
	}
	logger.Debug().Str("path", l.path).Msg("released advisory lock")
	return nil
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	return l.path
}
