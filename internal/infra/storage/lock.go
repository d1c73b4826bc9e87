package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/flock"
)

// ErrLocked means another process holds the database.
var ErrLocked = errors.New("database locked by another process")

// Lock is an exclusive advisory lock next to the database file.
type Lock struct {
	fl *flock.Flock
}

// AcquireLock takes the writer lock for dbPath, retrying until timeout.
// Only one server or simulation may write a match database at a time.
func AcquireLock(dbPath string, timeout time.Duration) (*Lock, error) {
	fl := flock.New(dbPath + ".lock")
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	locked, err := fl.TryLockContext(ctx, 50*time.Millisecond)
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return nil, fmt.Errorf("lock %s: %w", fl.Path(), err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrLocked, fl.Path())
	}
	return &Lock{fl: fl}, nil
}

// Release drops the lock.
func (l *Lock) Release() error {
	if l == nil || l.fl == nil {
		return nil
	}
	return l.fl.Unlock()
}
