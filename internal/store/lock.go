package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	lockFileName   = "store.lock"
	writeLockTimeout = 500 * time.Millisecond
	initialBackoff   = 5 * time.Millisecond
	maxBackoff       = 50 * time.Millisecond
)

// writeLocker serializes writes to the embedded sqlite database across
// processes using an OS file lock, composed with (not replacing) the SQL
// transaction itself. It is not used by the mysql driver, which relies on
// the database's own row/table locking.
type writeLocker struct {
	lockPath string
	lockFile *os.File
}

func newWriteLocker(dbPath string) *writeLocker {
	return &writeLocker{
		lockPath: filepath.Join(filepath.Dir(dbPath), lockFileName),
	}
}

func (l *writeLocker) acquire(timeout time.Duration) error {
	f, err := os.OpenFile(l.lockPath, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}
	l.lockFile = f

	deadline := time.Now().Add(timeout)
	backoff := initialBackoff

	for {
		if err := l.tryLock(); err == nil {
			return nil
		}

		if time.Now().After(deadline) {
			l.lockFile.Close()
			l.lockFile = nil
			return fmt.Errorf("write lock timeout after %v", timeout)
		}

		time.Sleep(backoff)
		if backoff < maxBackoff {
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
		}
	}
}

func (l *writeLocker) release() {
	if l.lockFile == nil {
		return
	}
	l.unlock()
	l.lockFile.Close()
	l.lockFile = nil
}
