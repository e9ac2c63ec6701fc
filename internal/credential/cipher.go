package credential

import (
	"crypto/rand"
	"fmt"
	"unicode/utf8"
)

// Seals plaintext under the manager's key.
//
// The result is nonce || ciphertext || tag, with a fresh random nonce per
// call.
func (m *Manager) Encrypt(plaintext string) ([]byte, error) {
	nonceSize := m.aead.NonceSize()

	out := make([]byte, nonceSize, nonceSize+len(plaintext)+m.aead.Overhead())
	if _, err := rand.Read(out); err != nil {
		return nil, fmt.Errorf("encrypt: generate nonce: %w", err)
	}

	return m.aead.Seal(out, out[:nonceSize], []byte(plaintext), nil), nil
}

// Opens ciphertext produced by [Manager.Encrypt] under the same key.
//
// Returns an [*AuthenticationError] and no plaintext if the input is
// truncated, was sealed under another key, or was modified.
func (m *Manager) Decrypt(ciphertext []byte) (string, error) {
	nonceSize := m.aead.NonceSize()
	if len(ciphertext) < nonceSize+m.aead.Overhead() {
		return "", &AuthenticationError{Reason: "ciphertext too short"}
	}

	nonce, sealed := ciphertext[:nonceSize], ciphertext[nonceSize:]

	plaintext, err := m.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", &AuthenticationError{Reason: "ciphertext failed authentication"}
	}
	if !utf8.Valid(plaintext) {
		clear(plaintext)
		return "", &AuthenticationError{Reason: "plaintext is not valid text"}
	}

	return string(plaintext), nil
}
