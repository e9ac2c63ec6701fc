//go:build !linux

package credential

import "errors"

// Returned by acquireLock where flock is not wired up. Callers proceed
// unlocked, accepting last-writer-wins between processes.
var errLockUnavailable = errors.New("advisory locks not available on this platform")

type fileLock struct{}

func acquireLock(dir, target string) (*fileLock, error) {
	return nil, errLockUnavailable
}

func (l *fileLock) Release() {}
