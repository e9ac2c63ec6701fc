package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/cruciblehq/podsmith/internal/command"
	"github.com/cruciblehq/podsmith/internal/credential"
	"github.com/cruciblehq/podsmith/internal/orchestrate"
	"github.com/cruciblehq/podsmith/internal/paths"
	"github.com/cruciblehq/podsmith/internal/protocol"
	"github.com/cruciblehq/podsmith/internal/provision"
	"github.com/cruciblehq/podsmith/internal/registry"
	"github.com/cruciblehq/podsmith/internal/runtime"
	"github.com/cruciblehq/podsmith/internal/server"
	"github.com/cruciblehq/podsmith/internal/settings"
)

// Operations available both locally and through the daemon.
type Backend interface {
	Pull(ctx context.Context, image string) (string, error)
	Provision(ctx context.Context, image, name string) (orchestrate.Provisioned, error)
	SetupAccess(ctx context.Context, containerID string) (orchestrate.Access, error)
	Search(ctx context.Context, term string, limit int) ([]registry.SearchResult, error)
	Images(ctx context.Context) ([]registry.Image, error)
	Containers(ctx context.Context) ([]provision.ContainerRecord, error)
}

// Encrypts and decrypts with the local key.
type Cipher interface {
	Encrypt(plaintext string) ([]byte, error)
	Decrypt(ciphertext []byte) (string, error)
}

// Daemon control operations.
type Daemon interface {
	Status(ctx context.Context) (*protocol.StatusResult, error)
	Shutdown(ctx context.Context) error
}

// What commands run against. Bound into every Run method so tests can
// substitute fakes and buffers.
type Env struct {
	Stdout     io.Writer
	Stdin      io.Reader
	ConfigPath func() string
	Settings   func() (*settings.Settings, error)
	Backend    func(ctx context.Context) (Backend, func() error, error)
	Local      func(ctx context.Context) (*orchestrate.Service, func() error, error)
	Cipher     func() (Cipher, error)
	Daemon     func() (Daemon, error)
}

// Builds the production environment for a parsed command line. Nothing is
// opened until a command asks for it.
func newEnv(root *Root) *Env {
	var (
		once sync.Once
		cfg  *settings.Settings
		err  error
	)
	load := func() (*settings.Settings, error) {
		once.Do(func() {
			cfg, err = resolveSettings(root)
		})
		return cfg, err
	}

	env := &Env{
		Stdout:   os.Stdout,
		Stdin:    os.Stdin,
		Settings: load,
	}

	env.ConfigPath = func() string {
		if root.Config != "" {
			return root.Config
		}
		return paths.ConfigFile()
	}

	env.Local = func(ctx context.Context) (*orchestrate.Service, func() error, error) {
		s, err := load()
		if err != nil {
			return nil, nil, err
		}
		return localService(s)
	}

	env.Backend = func(ctx context.Context) (Backend, func() error, error) {
		s, err := load()
		if err != nil {
			return nil, nil, err
		}
		if s.Socket != "" {
			slog.Debug("using daemon", "socket", s.Socket)
			return server.NewClient(s.Socket), noClose, nil
		}
		svc, closeFn, err := env.Local(ctx)
		if err != nil {
			return nil, nil, err
		}
		return svc, closeFn, nil
	}

	env.Cipher = func() (Cipher, error) {
		s, err := load()
		if err != nil {
			return nil, err
		}
		return openManager(s)
	}

	env.Daemon = func() (Daemon, error) {
		s, err := load()
		if err != nil {
			return nil, err
		}
		return server.NewClient(daemonSocket(s)), nil
	}

	return env
}

// Loads the settings file and applies flag overrides.
func resolveSettings(root *Root) (*settings.Settings, error) {
	s, err := settings.Load(root.Config)
	if err != nil {
		return nil, err
	}

	if root.Runtime != "" {
		s.Runtime = root.Runtime
	}
	if root.Binary != "" {
		s.Binary = root.Binary
	}
	if root.Socket != "" {
		s.Socket = paths.Expand(root.Socket)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Returns the socket of the daemon to control.
func daemonSocket(s *settings.Settings) string {
	if s.Socket != "" {
		return s.Socket
	}
	return paths.Socket()
}

// Assembles the orchestration service for the configured backend.
func localService(s *settings.Settings) (*orchestrate.Service, func() error, error) {
	runner := command.New(command.WithTimeout(s.Timeout))
	creds := &lazyCredentials{open: func() (*credential.Manager, error) {
		return openManager(s)
	}}

	switch s.Runtime {
	case settings.BackendContainerd:
		slog.Debug("using containerd", "address", s.Containerd.Address, "namespace", s.Containerd.Namespace)
		rt, err := runtime.New(s.Containerd.Address, s.Containerd.Namespace, s.Containerd.Snapshotter)
		if err != nil {
			return nil, nil, err
		}
		return orchestrate.New(rt, rt, creds, s.SSHKey), rt.Close, nil
	default:
		slog.Debug("using runtime cli", "binary", s.Binary, "timeout", s.Timeout)
		reg := registry.New(runner, s.Binary)
		prov := provision.New(runner, s.Binary)
		return orchestrate.New(reg, prov, creds, s.SSHKey), noClose, nil
	}
}

// Opens the credential manager, generating the key on first use.
func openManager(s *settings.Settings) (*credential.Manager, error) {
	runner := command.New(command.WithTimeout(s.Timeout))
	m, err := credential.NewManager(s.KeyFile, credential.WithRunner(runner))
	if err != nil {
		return nil, err
	}
	if m.Generated() {
		slog.Info("generated encryption key", "path", m.Path())
	}
	return m, nil
}

func noClose() error { return nil }

// Defers opening the credential manager until a credential operation runs,
// so commands that never touch the key do not create it.
type lazyCredentials struct {
	open func() (*credential.Manager, error)
	once sync.Once
	m    *credential.Manager
	err  error
}

func (l *lazyCredentials) get() (*credential.Manager, error) {
	l.once.Do(func() {
		l.m, l.err = l.open()
	})
	return l.m, l.err
}

func (l *lazyCredentials) EnsureSSHKeyPair(ctx context.Context, path string) (credential.SSHKeyPair, error) {
	m, err := l.get()
	if err != nil {
		return credential.SSHKeyPair{}, err
	}
	return m.EnsureSSHKeyPair(ctx, path)
}

func (l *lazyCredentials) Encrypt(plaintext string) ([]byte, error) {
	m, err := l.get()
	if err != nil {
		return nil, err
	}
	return m.Encrypt(plaintext)
}

func (l *lazyCredentials) Decrypt(ciphertext []byte) (string, error) {
	m, err := l.get()
	if err != nil {
		return "", err
	}
	return m.Decrypt(ciphertext)
}
