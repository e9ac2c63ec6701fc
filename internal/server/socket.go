package server

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/user"
	"path/filepath"
	"strconv"

	"github.com/cruciblehq/podsmith/internal/paths"
)

const (

	// Members of this group may talk to the daemon without running as its owner.
	socketGroup = "podsmith"

	// Connecting to a Unix socket needs write permission, so owner and group
	// get rw and everyone else nothing.
	socketMode = 0660
)

// Binds the daemon socket at path.
//
// A leftover socket file from an earlier daemon is removed first. The parent
// directory is created private to the owner.
func bindSocket(path string) (net.Listener, error) {
	if err := os.MkdirAll(filepath.Dir(path), paths.PrivateDirMode); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrServer, err)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: remove stale socket %s: %w", ErrServer, path, err)
	}

	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("%w: listen on %s: %w", ErrServer, path, err)
	}

	if err := restrictSocket(path); err != nil {
		ln.Close()
		return nil, err
	}
	return ln, nil
}

// Applies [socketMode] and hands the socket to [socketGroup] when that group
// exists on the host. A missing group leaves the socket owner-only.
func restrictSocket(path string) error {
	if err := os.Chmod(path, socketMode); err != nil {
		return fmt.Errorf("%w: chmod %s: %w", ErrServer, path, err)
	}

	gid, ok := lookupGID(socketGroup)
	if !ok {
		slog.Debug("no socket group on host", "group", socketGroup)
		return nil
	}
	if err := os.Chown(path, -1, gid); err != nil {
		slog.Warn("could not change socket group", "group", socketGroup, "error", err)
	}
	return nil
}

func lookupGID(name string) (int, bool) {
	g, err := user.LookupGroup(name)
	if err != nil {
		return 0, false
	}
	gid, err := strconv.Atoi(g.Gid)
	if err != nil {
		return 0, false
	}
	return gid, true
}
