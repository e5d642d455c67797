package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/locknote/pkg/crypto"
)

// session holds the unlocked key material for one command. It is created right
// before the first decryption and closed (wiped) with defer.
type session struct {
	store    *Store
	password []byte
	key      *crypto.MasterKey
	cipher   crypto.Cipher
	// verified is true when the password matched the store's verifier.
	verified bool
}

// open prompts for the master password and derives the store key.
func (s *Service) open(ctx context.Context, store *Store) (*session, error) {
	if s.prompter == nil {
		return nil, errors.New("no input provider configured")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	password, err := s.prompter.ReadPassword("Enter master password: ")
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}

	verified := false
	if store.Verifier != "" {
		ok, err := crypto.VerifyPassword(password, store.Verifier)
		if err != nil {
			crypto.Wipe(password)
			return nil, &SerializationError{Path: s.cfg.Path, Field: "verifier", Err: err}
		}
		if !ok {
			crypto.Wipe(password)
			return nil, &AuthenticationError{Err: ErrWrongPassword}
		}
		verified = true
	}

	start := time.Now()
	key, err := crypto.DeriveKey(password, store.Salt, store.KDF)
	if err != nil {
		crypto.Wipe(password)
		return nil, &KeyDerivationError{Err: err}
	}
	s.logger.Debug("master key derived", "duration", time.Since(start), "cipher", store.Cipher)

	c, err := crypto.NewCipher(store.Cipher, key)
	if err != nil {
		key.Wipe()
		crypto.Wipe(password)
		return nil, err
	}
	return &session{
		store:    store,
		password: password,
		key:      key,
		cipher:   c,
		verified: verified,
	}, nil
}

func (ss *session) close() {
	ss.key.Wipe()
	crypto.Wipe(ss.password)
}

// decrypt opens a record. The caller wipes the returned plaintext.
func (ss *session) decrypt(r NoteRecord) ([]byte, error) {
	plaintext, err := ss.cipher.Open(r.Nonce, r.Ciphertext, nil)
	if err != nil {
		if ss.verified {
			return nil, &AuthenticationError{ID: r.ID, Err: fmt.Errorf("%w: %w", ErrNoteCorrupted, err)}
		}
		return nil, &AuthenticationError{ID: r.ID, Err: err}
	}
	return plaintext, nil
}

// confirm makes sure the password belongs to the store before it is mutated.
// Stores without a verifier are checked by decrypting the note named by id,
// or any note when id is empty. An empty store accepts any password.
func (ss *session) confirm(id string) error {
	if ss.verified || len(ss.store.Notes) == 0 {
		return nil
	}
	if id != "" {
		if r, ok := ss.store.Find(id); ok {
			plaintext, err := ss.decrypt(r)
			if err != nil {
				return err
			}
			crypto.Wipe(plaintext)
			return nil
		}
	}
	for _, r := range ss.store.Notes {
		plaintext, err := ss.cipher.Open(r.Nonce, r.Ciphertext, nil)
		if err == nil {
			crypto.Wipe(plaintext)
			return nil
		}
	}
	return &AuthenticationError{Err: ErrWrongPassword}
}
