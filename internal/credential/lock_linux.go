//go:build linux

package credential

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Never returned on Linux; declared for parity with the other platforms.
var errLockUnavailable = errors.New("advisory locks not available on this platform")

// Exclusive flock held on a lock file. The kernel drops it when the
// descriptor closes, including when the process dies.
type fileLock struct {
	file *os.File
}

// Blocks until the exclusive lock guarding target is held.
func acquireLock(dir, target string) (*fileLock, error) {
	path := lockPath(dir, target)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open lock file %s: %w", path, err)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		f.Close()
		return nil, fmt.Errorf("flock %s: %w", path, err)
	}

	return &fileLock{file: f}, nil
}

// Releases the lock. Safe on a nil lock and safe to call more than once.
func (l *fileLock) Release() {
	if l == nil || l.file == nil {
		return
	}
	unix.Flock(int(l.file.Fd()), unix.LOCK_UN)
	l.file.Close()
	l.file = nil
}
