package credential

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cruciblehq/podsmith/internal/paths"
	"golang.org/x/crypto/ssh"
)

const (

	// Key type passed to ssh-keygen.
	sshKeyType = "rsa"

	// Key size passed to ssh-keygen.
	sshKeyBits = "4096"

	// Mode for a ~/.ssh directory created by podsmith.
	sshDirMode os.FileMode = 0700
)

// SSH key pair on disk.
type SSHKeyPair struct {
	PrivatePath string `json:"private_path"`
	PublicPath  string `json:"public_path"`
	Fingerprint string `json:"fingerprint,omitempty"` // SHA256 fingerprint; set only when Created.
	Created     bool   `json:"created"`               // False when a key already existed.
}

// Generates an SSH key pair at path unless a file already exists there.
//
// A leading "~" expands to the home directory. An existing file is reported
// with Created == false and is not inspected. Otherwise ssh-keygen writes a
// 4096-bit RSA key with an empty passphrase into a private temporary
// directory beside path, and the public then the private key are renamed into
// place, so path only ever appears complete. Failures return a
// [*KeyGenerationError] and leave nothing at path.
func (m *Manager) EnsureSSHKeyPair(ctx context.Context, path string) (SSHKeyPair, error) {
	path = paths.Expand(path)
	pair := SSHKeyPair{PrivatePath: path, PublicPath: path + ".pub"}

	exists, err := fileExists(path)
	if err != nil {
		return pair, &KeyGenerationError{Path: path, Cause: err}
	}
	if exists {
		return pair, nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, sshDirMode); err != nil {
		return pair, &KeyGenerationError{Path: path, Cause: err}
	}

	lock, err := acquireLock(m.lockDir, path)
	if err != nil && !errors.Is(err, errLockUnavailable) {
		return pair, &KeyGenerationError{Path: path, Cause: err}
	}
	defer lock.Release()

	if exists, err := fileExists(path); err != nil || exists {
		if err != nil {
			return pair, &KeyGenerationError{Path: path, Cause: err}
		}
		return pair, nil
	}

	if err := m.generateSSHKey(ctx, path); err != nil {
		return pair, &KeyGenerationError{Path: path, Cause: err}
	}

	pair.Created = true
	pair.Fingerprint = fingerprint(pair.PublicPath)
	return pair, nil
}

// Runs ssh-keygen into a temporary directory and moves the result to path.
func (m *Manager) generateSSHKey(ctx context.Context, path string) error {
	tmp, err := os.MkdirTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmp)

	staged := filepath.Join(tmp, filepath.Base(path))

	_, err = m.runner.Run(ctx, m.keygen,
		"-t", sshKeyType,
		"-b", sshKeyBits,
		"-N", "",
		"-q",
		"-f", staged,
	)
	if err != nil {
		return err
	}

	if err := os.Rename(staged+".pub", path+".pub"); err != nil {
		return fmt.Errorf("install public key: %w", err)
	}
	if err := os.Rename(staged, path); err != nil {
		return fmt.Errorf("install private key: %w", err)
	}
	return nil
}

// Returns the SHA256 fingerprint of the public key at path, or "" if it
// cannot be read.
func fingerprint(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	pub, _, _, _, err := ssh.ParseAuthorizedKey(data)
	if err != nil {
		return ""
	}
	return ssh.FingerprintSHA256(pub)
}

// Reports whether anything exists at path.
func fileExists(path string) (bool, error) {
	_, err := os.Lstat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}
