// Package crypto holds the key-management primitives of locknote.
//
// Key derivation uses Argon2id. Notes are sealed with AES-256-GCM (default) or
// ChaCha20-Poly1305, each call drawing a fresh 96-bit nonce from crypto/rand.
// Decryption fails closed: any failure is reported as ErrAuthFailed and no
// plaintext is returned.
//
// Key material lives in *MasterKey values which callers wipe on every exit path:
//
//	key, err := crypto.DeriveKey(password, salt, crypto.DefaultParams())
//	if err != nil {
//		return err
//	}
//	defer key.Wipe()
package crypto
