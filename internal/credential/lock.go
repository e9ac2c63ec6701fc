package credential

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
)

// Returns the directory for lock files: $XDG_RUNTIME_DIR (per-user tmpfs),
// or the system temp directory when it is unset.
func defaultLockDir() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return dir
	}
	return os.TempDir()
}

// Returns the lock file guarding target. The name is derived from the
// absolute target path so every process agrees on it without writing next to
// the secret itself.
func lockPath(dir, target string) string {
	abs, err := filepath.Abs(target)
	if err != nil {
		abs = target
	}
	sum := sha256.Sum256([]byte(abs))
	return filepath.Join(dir, "podsmith-"+hex.EncodeToString(sum[:8])+".lock")
}
