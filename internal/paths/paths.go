package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

const (

	// Subdirectory name under each XDG base directory.
	appName = "podsmith"

	// Permission mode for directories holding secrets.
	PrivateDirMode os.FileMode = 0700

	// Permission mode for secret files.
	PrivateFileMode os.FileMode = 0600

	// Permission mode for runtime directories (socket, PID file).
	DefaultDirMode os.FileMode = 0755

	// Permission mode for non-secret files.
	DefaultFileMode os.FileMode = 0644
)

// Path to the YAML settings file.
//
//	Linux:   $XDG_CONFIG_HOME/podsmith/config.yaml
//	macOS:   ~/Library/Application Support/podsmith/config.yaml
func ConfigFile() string {
	return filepath.Join(xdg.ConfigHome, appName, "config.yaml")
}

// Directory for persistent state (the encryption key).
//
//	Linux:   $XDG_DATA_HOME/podsmith
//	macOS:   ~/Library/Application Support/podsmith
func DataDir() string {
	return filepath.Join(xdg.DataHome, appName)
}

// Default path to the symmetric encryption key.
func KeyFile() string {
	return filepath.Join(DataDir(), "secret.key")
}

// Default path to the SSH private key handed to provisioned containers.
func SSHKey() string {
	return filepath.Join(xdg.Home, ".ssh", "id_rsa")
}

// Directory for runtime files (socket, PID).
//
//	Linux:   $XDG_RUNTIME_DIR/podsmith or /run/user/<uid>/podsmith
//	macOS:   ~/Library/Caches/podsmith/run
func Runtime() string {
	if xdg.RuntimeDir != "" {
		return filepath.Join(xdg.RuntimeDir, appName)
	}
	return filepath.Join(xdg.CacheHome, appName, "run")
}

// Default path to the daemon's Unix domain socket.
func Socket() string {
	return filepath.Join(Runtime(), appName+".sock")
}

// Default path to the daemon's PID file.
func PIDFile() string {
	return filepath.Join(Runtime(), appName+".pid")
}

// Expands a leading "~" or "~/" to the user's home directory.
//
// Other forms ("~user/...") are returned unchanged.
func Expand(path string) string {
	if path == "~" {
		return xdg.Home
	}
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		return filepath.Join(xdg.Home, rest)
	}
	return path
}
