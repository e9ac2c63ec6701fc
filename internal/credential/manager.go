package credential

import (
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cruciblehq/podsmith/internal/command"
	"github.com/moby/sys/atomicwriter"
	"golang.org/x/crypto/chacha20poly1305"
)

const (

	// Length of the symmetric key in bytes.
	KeySize = chacha20poly1305.KeySize

	// Directory mode for key directories that do not exist yet.
	keyDirMode os.FileMode = 0700

	// File mode for the persisted key.
	keyFileMode os.FileMode = 0600

	// Default ssh-keygen program.
	defaultKeygen = "ssh-keygen"
)

// Configures a [Manager].
type Option func(*Manager)

// Sets the runner used for ssh-keygen. Defaults to [command.New].
func WithRunner(r command.Runner) Option {
	return func(m *Manager) {
		m.runner = r
	}
}

// Sets the ssh-keygen program name or path.
func WithKeygen(program string) Option {
	return func(m *Manager) {
		m.keygen = program
	}
}

// Sets the directory that holds advisory lock files. Defaults to
// $XDG_RUNTIME_DIR, falling back to the system temp directory.
func WithLockDir(dir string) Option {
	return func(m *Manager) {
		m.lockDir = dir
	}
}

// Owns an encryption key and generates SSH key pairs.
//
// The key is fixed at construction. A Manager is safe for concurrent use.
type Manager struct {
	path      string         // Key file location.
	aead      cipher.AEAD    // XChaCha20-Poly1305 bound to the loaded key.
	generated bool           // Whether construction created the key file.
	runner    command.Runner // Runs ssh-keygen.
	keygen    string         // ssh-keygen program.
	lockDir   string         // Directory for advisory lock files.
}

// Loads the key at path, generating and persisting one if the file does not
// exist.
//
// An existing file must hold exactly [KeySize] bytes; anything else returns
// [ErrInvalidKey] rather than being overwritten.
func NewManager(path string, opts ...Option) (*Manager, error) {
	m := &Manager{
		path:    path,
		keygen:  defaultKeygen,
		lockDir: defaultLockDir(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.runner == nil {
		m.runner = command.New()
	}

	key, generated, err := m.loadOrGenerate()
	if err != nil {
		return nil, err
	}

	aead, err := chacha20poly1305.NewX(key)
	clear(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}

	m.aead = aead
	m.generated = generated
	return m, nil
}

// Returns the key file location.
func (m *Manager) Path() string {
	return m.path
}

// Reports whether this Manager created the key file rather than loading an
// existing one.
func (m *Manager) Generated() bool {
	return m.generated
}

// Returns the key bytes and whether they were freshly generated.
//
// The fast path reads an existing file without locking. Otherwise the lock is
// taken and existence is checked again, since another process may have
// generated the key while this one waited.
func (m *Manager) loadOrGenerate() ([]byte, bool, error) {
	key, err := readKey(m.path)
	if err == nil {
		return key, false, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, false, err
	}

	if err := os.MkdirAll(filepath.Dir(m.path), keyDirMode); err != nil {
		return nil, false, fmt.Errorf("create key directory: %w", err)
	}

	lock, err := acquireLock(m.lockDir, m.path)
	if err != nil && !errors.Is(err, errLockUnavailable) {
		return nil, false, err
	}
	defer lock.Release()

	key, err = readKey(m.path)
	if err == nil {
		return key, false, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, false, err
	}

	key = make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, false, fmt.Errorf("generate key: %w", err)
	}

	if err := atomicwriter.WriteFile(m.path, key, keyFileMode); err != nil {
		clear(key)
		return nil, false, fmt.Errorf("persist key %s: %w", m.path, err)
	}

	return key, true, nil
}

// Reads a key file and checks its length.
func readKey(path string) ([]byte, error) {
	key, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(key) != KeySize {
		n := len(key)
		clear(key)
		return nil, fmt.Errorf("%w: %s holds %d bytes, want %d", ErrInvalidKey, path, n, KeySize)
	}
	return key, nil
}
