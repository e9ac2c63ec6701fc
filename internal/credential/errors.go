package credential

import (
	"errors"
	"fmt"
)

var (
	ErrKeyGeneration  = errors.New("key generation failed")
	ErrAuthentication = errors.New("message authentication failed")
	ErrInvalidKey     = errors.New("invalid encryption key")
)

// Returned when ssh-keygen fails or its output cannot be moved into place.
type KeyGenerationError struct {
	Path  string // Target private key path.
	Cause error  // Underlying failure.
}

func (e *KeyGenerationError) Error() string {
	return fmt.Sprintf("generate ssh key pair at %s: %v", e.Path, e.Cause)
}

func (e *KeyGenerationError) Unwrap() []error {
	return []error{ErrKeyGeneration, e.Cause}
}

// Returned by [Manager.Decrypt] for ciphertext that was not sealed under the
// manager's key or was modified afterwards.
type AuthenticationError struct {
	Reason string // What failed; never contains key or plaintext bytes.
}

func (e *AuthenticationError) Error() string {
	return "decrypt: " + e.Reason
}

func (e *AuthenticationError) Unwrap() error { return ErrAuthentication }
