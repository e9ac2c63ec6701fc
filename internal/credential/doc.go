// Package credential manages podsmith's long-lived secrets.
//
// A [Manager] owns one symmetric encryption key, bound to a file path at
// construction. If the file exists its bytes are loaded; otherwise a fresh
// key is generated from crypto/rand and persisted with write-to-temp-then-
// rename. Generation happens under an advisory file lock and re-checks for
// the file once the lock is held, so processes racing on an absent key
// converge on a single key. The key is cached for the lifetime of the
// Manager and never leaves it: it is not logged, printed, or included in an
// error.
//
// [Manager.Encrypt] seals with XChaCha20-Poly1305 under a fresh random nonce,
// so identical plaintexts never produce identical ciphertexts.
// [Manager.Decrypt] fails closed with an [AuthenticationError] on any
// tampering or key mismatch.
//
// SSH key pairs have their own, independent lifecycle:
// [Manager.EnsureSSHKeyPair] runs ssh-keygen only when no file exists at the
// target path. A file that is already there is trusted as-is.
//
// Example usage:
//
//	m, err := credential.NewManager(paths.KeyFile())
//	if err != nil {
//	    return err
//	}
//
//	token, err := m.Encrypt("hunter2")
//	if err != nil {
//	    return err
//	}
//
//	pair, err := m.EnsureSSHKeyPair(ctx, "~/.ssh/id_rsa")
package credential
