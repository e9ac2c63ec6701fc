package settings

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/cruciblehq/podsmith/internal/paths"
	"github.com/moby/sys/atomicwriter"
	"gopkg.in/yaml.v3"
)

const (

	// Shells out to a runtime CLI such as podman or docker.
	BackendCLI = "cli"

	// Talks to containerd over its API.
	BackendContainerd = "containerd"

	// Default containerd socket address.
	DefaultContainerdAddress = "/run/containerd/containerd.sock"

	// Default containerd namespace for images and containers.
	DefaultContainerdNamespace = "podsmith"

	// Default containerd snapshotter.
	DefaultContainerdSnapshotter = "overlayfs"

	// Default runtime CLI.
	DefaultBinary = "podman"

	// Default bound on a single runtime invocation.
	DefaultTimeout = 5 * time.Minute
)

var ErrInvalidSettings = errors.New("invalid settings")

// Connection settings for the containerd backend.
type Containerd struct {
	Address     string `yaml:"address"`
	Namespace   string `yaml:"namespace"`
	Snapshotter string `yaml:"snapshotter"`
}

// Effective podsmith settings.
type Settings struct {
	Runtime    string        `yaml:"runtime"`          // BackendCLI or BackendContainerd.
	Binary     string        `yaml:"binary"`           // Runtime CLI for BackendCLI.
	Timeout    time.Duration `yaml:"timeout"`          // Per-invocation bound; zero disables it.
	KeyFile    string        `yaml:"key_file"`         // Encryption key location.
	SSHKey     string        `yaml:"ssh_key"`          // Shared SSH private key location.
	Socket     string        `yaml:"socket,omitempty"` // Daemon socket; when set, commands go through the daemon.
	Containerd Containerd    `yaml:"containerd"`
}

// Returns the built-in settings.
func Defaults() *Settings {
	return &Settings{
		Runtime: BackendCLI,
		Binary:  DefaultBinary,
		Timeout: DefaultTimeout,
		KeyFile: paths.KeyFile(),
		SSHKey:  paths.SSHKey(),
		Containerd: Containerd{
			Address:     DefaultContainerdAddress,
			Namespace:   DefaultContainerdNamespace,
			Snapshotter: DefaultContainerdSnapshotter,
		},
	}
}

// Reads the settings file at path over [Defaults]. An empty path selects
// [paths.ConfigFile]. A missing file is not an error.
func Load(path string) (*Settings, error) {
	if path == "" {
		path = paths.ConfigFile()
	}

	s := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read settings: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(s); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: parse %s: %w", ErrInvalidSettings, path, err)
	}

	s.KeyFile = paths.Expand(s.KeyFile)
	s.SSHKey = paths.Expand(s.SSHKey)
	s.Socket = paths.Expand(s.Socket)

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Checks that every field holds a usable value.
func (s *Settings) Validate() error {
	switch s.Runtime {
	case BackendCLI:
		if s.Binary == "" {
			return fmt.Errorf("%w: binary is required for the %s runtime", ErrInvalidSettings, BackendCLI)
		}
	case BackendContainerd:
		if s.Containerd.Address == "" || s.Containerd.Namespace == "" {
			return fmt.Errorf("%w: containerd address and namespace are required", ErrInvalidSettings)
		}
	default:
		return fmt.Errorf("%w: unknown runtime %q (want %s or %s)", ErrInvalidSettings, s.Runtime, BackendCLI, BackendContainerd)
	}

	if s.Timeout < 0 {
		return fmt.Errorf("%w: timeout must not be negative", ErrInvalidSettings)
	}
	if s.KeyFile == "" {
		return fmt.Errorf("%w: key_file is required", ErrInvalidSettings)
	}
	if s.SSHKey == "" {
		return fmt.Errorf("%w: ssh_key is required", ErrInvalidSettings)
	}
	return nil
}

// Writes the settings to path as YAML, creating directories as needed.
func (s *Settings) Save(path string) error {
	if path == "" {
		path = paths.ConfigFile()
	}

	if err := os.MkdirAll(filepath.Dir(path), paths.DefaultDirMode); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}

	data, err := s.Marshal()
	if err != nil {
		return err
	}
	if err := atomicwriter.WriteFile(path, data, paths.DefaultFileMode); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

// Renders the settings as YAML.
func (s *Settings) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal settings: %w", err)
	}
	return data, nil
}
