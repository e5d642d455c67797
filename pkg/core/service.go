package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/locknote/pkg/crypto"
)

// ErrNoteCorrupted marks an AEAD failure after the password was verified,
// i.e. the record itself was damaged or tampered with.
var ErrNoteCorrupted = errors.New("note corrupted or tampered")

// ServiceConfig holds the settings threaded through every operation.
type ServiceConfig struct {
	// Path locates the store. It is passed to the Gateway verbatim.
	Path string
	// Cipher and KDF apply to stores created by Init or re-keyed by ChangePassword.
	// Existing stores keep the values recorded in their document.
	Cipher crypto.Suite
	KDF    crypto.Params
	// SearchPolicy decides how Search treats records that fail to decrypt.
	SearchPolicy SearchPolicy
	Logger       *slog.Logger
}

// Service handles the business logic of a single store.
type Service struct {
	gateway  Gateway
	prompter Prompter
	cfg      ServiceConfig
	logger   *slog.Logger

	mu       sync.RWMutex
	lastOp   string
	lastTime time.Time
}

// NewService creates a new Service. Zero config values fall back to defaults.
func NewService(gateway Gateway, prompter Prompter, cfg ServiceConfig) *Service {
	if cfg.Cipher == "" {
		cfg.Cipher = crypto.AES256GCM
	}
	if cfg.KDF.IsZero() {
		cfg.KDF = crypto.DefaultParams()
	}
	if cfg.SearchPolicy == "" {
		cfg.SearchPolicy = SkipFailures
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		gateway:  gateway,
		prompter: prompter,
		cfg:      cfg,
		logger:   logger,
	}
}

// Path returns the store location this service operates on.
func (s *Service) Path() string {
	return s.cfg.Path
}

// Init creates an empty store with a fresh salt, protected by a new password.
func (s *Service) Init(ctx context.Context) (*Store, error) {
	var created *Store
	err := s.withLock(ctx, func() error {
		exists, err := s.gateway.Exists(ctx, s.cfg.Path)
		if err != nil {
			return err
		}
		if exists {
			return &ConfigurationError{Path: s.cfg.Path, Err: ErrStoreExists}
		}
		if err := s.cfg.KDF.Validate(); err != nil {
			return &KeyDerivationError{Err: err}
		}

		password, err := s.readNewPassword("Set master password: ")
		if err != nil {
			return err
		}
		defer crypto.Wipe(password)

		salt, err := crypto.NewSalt()
		if err != nil {
			return err
		}
		store := NewStore(salt)
		store.Cipher = s.cfg.Cipher
		store.KDF = s.cfg.KDF
		store.Verifier, err = crypto.HashPasswordWithParams(password, s.cfg.KDF)
		if err != nil {
			return &KeyDerivationError{Err: err}
		}

		if err := s.save(ctx, store, "initialize store"); err != nil {
			return err
		}
		created = store
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.record("init")
	s.logger.Info("store initialized", "path", s.cfg.Path, "cipher", created.Cipher)
	return created, nil
}

// Add encrypts title and body as one note and persists the store. It returns
// the new note id.
func (s *Service) Add(ctx context.Context, title, body string) (string, error) {
	var id string
	err := s.withLock(ctx, func() error {
		store, err := s.gateway.Load(ctx, s.cfg.Path)
		if err != nil {
			return err
		}
		sess, err := s.open(ctx, store)
		if err != nil {
			return err
		}
		defer sess.close()

		if err := sess.confirm(""); err != nil {
			return err
		}

		id = newNoteID(store)
		plaintext := []byte(JoinNote(title, body))
		defer crypto.Wipe(plaintext)

		nonce, ciphertext, err := sess.cipher.Seal(plaintext, nil)
		if err != nil {
			return err
		}
		store.Add(NoteRecord{ID: id, Nonce: nonce, Ciphertext: ciphertext})

		if store.Verifier == "" {
			// Legacy stores learn their verifier from the first confirmed write.
			if store.Verifier, err = crypto.HashPasswordWithParams(sess.password, store.KDF); err != nil {
				return &KeyDerivationError{Err: err}
			}
		}
		return s.save(ctx, store, "add note "+id)
	})
	if err != nil {
		return "", err
	}
	s.record("add")
	s.logger.Info("note added", "id", id, "path", s.cfg.Path)
	return id, nil
}

// List returns note ids in insertion order. A non-empty pattern filters them
// with a glob. No password is needed.
func (s *Service) List(ctx context.Context, pattern string) ([]string, error) {
	store, err := s.gateway.Load(ctx, s.cfg.Path)
	if err != nil {
		return nil, err
	}
	s.record("list")
	if pattern == "" {
		return store.List(), nil
	}
	return store.Match(pattern)
}

// View decrypts a single note. An unknown id is a *NotFoundError and does not
// prompt for the password.
func (s *Service) View(ctx context.Context, id string) (Note, error) {
	store, err := s.gateway.Load(ctx, s.cfg.Path)
	if err != nil {
		return Note{}, err
	}
	record, ok := store.Find(id)
	if !ok {
		return Note{}, &NotFoundError{ID: id}
	}

	sess, err := s.open(ctx, store)
	if err != nil {
		return Note{}, err
	}
	defer sess.close()

	plaintext, err := sess.decrypt(record)
	if err != nil {
		return Note{}, err
	}
	defer crypto.Wipe(plaintext)

	title, body := SplitNote(string(plaintext))
	s.record("view")
	return Note{ID: id, Title: title, Body: body}, nil
}

// Delete removes a note after the password has been confirmed.
func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.withLock(ctx, func() error {
		store, err := s.gateway.Load(ctx, s.cfg.Path)
		if err != nil {
			return err
		}
		if _, ok := store.Find(id); !ok {
			return &NotFoundError{ID: id}
		}

		sess, err := s.open(ctx, store)
		if err != nil {
			return err
		}
		defer sess.close()

		if err := sess.confirm(id); err != nil {
			return err
		}

		if !store.Remove(id) {
			return &NotFoundError{ID: id}
		}
		return s.save(ctx, store, "delete note "+id)
	})
	if err != nil {
		return err
	}
	s.record("delete")
	s.logger.Info("note deleted", "id", id, "path", s.cfg.Path)
	return nil
}

// Search returns the ids of notes whose plaintext contains keyword.
// Records that fail to decrypt are handled according to the SearchPolicy.
func (s *Service) Search(ctx context.Context, keyword string) (SearchResult, error) {
	store, err := s.gateway.Load(ctx, s.cfg.Path)
	if err != nil {
		return SearchResult{}, err
	}
	sess, err := s.open(ctx, store)
	if err != nil {
		return SearchResult{}, err
	}
	defer sess.close()

	res, err := store.Search(keyword, sess.decrypt, s.cfg.SearchPolicy)
	if err != nil {
		return SearchResult{}, err
	}
	for _, sk := range res.Skipped {
		s.logger.Warn("note skipped during search", "id", sk.ID, "error", sk.Err)
	}
	s.record("search")
	s.logger.Debug("search finished", "matches", len(res.Matches), "skipped", len(res.Skipped))
	return res, nil
}

// ChangePassword re-encrypts every note under a new password and a new salt.
// All notes must decrypt under the current password; the store is written once.
func (s *Service) ChangePassword(ctx context.Context) error {
	err := s.withLock(ctx, func() error {
		store, err := s.gateway.Load(ctx, s.cfg.Path)
		if err != nil {
			return err
		}
		sess, err := s.open(ctx, store)
		if err != nil {
			return err
		}
		defer sess.close()

		plaintexts := make([][]byte, len(store.Notes))
		defer func() {
			for _, p := range plaintexts {
				crypto.Wipe(p)
			}
		}()
		for i, r := range store.Notes {
			if plaintexts[i], err = sess.decrypt(r); err != nil {
				return err
			}
		}

		password, err := s.readNewPassword("New master password: ")
		if err != nil {
			return err
		}
		defer crypto.Wipe(password)

		if err := s.cfg.KDF.Validate(); err != nil {
			return &KeyDerivationError{Err: err}
		}
		salt, err := crypto.NewSalt()
		if err != nil {
			return err
		}
		key, err := crypto.DeriveKey(password, salt, s.cfg.KDF)
		if err != nil {
			return &KeyDerivationError{Err: err}
		}
		defer key.Wipe()
		c, err := crypto.NewCipher(s.cfg.Cipher, key)
		if err != nil {
			return err
		}

		notes := make([]NoteRecord, 0, len(store.Notes))
		for i, r := range store.Notes {
			nonce, ciphertext, err := c.Seal(plaintexts[i], nil)
			if err != nil {
				return err
			}
			notes = append(notes, NoteRecord{ID: r.ID, Nonce: nonce, Ciphertext: ciphertext})
		}
		verifier, err := crypto.HashPasswordWithParams(password, s.cfg.KDF)
		if err != nil {
			return &KeyDerivationError{Err: err}
		}

		store.Salt = salt
		store.KDF = s.cfg.KDF
		store.Cipher = c.Suite()
		store.Verifier = verifier
		store.Notes = notes
		return s.save(ctx, store, "change master password")
	})
	if err != nil {
		return err
	}
	s.record("passwd")
	s.logger.Info("master password changed", "path", s.cfg.Path)
	return nil
}

// StoreInfo describes a store without decrypting anything.
type StoreInfo struct {
	Path        string        `json:"path"`
	Version     int           `json:"version"`
	Cipher      crypto.Suite  `json:"cipher"`
	KDF         crypto.Params `json:"kdf"`
	Notes       int           `json:"notes"`
	HasVerifier bool          `json:"has_verifier"`
}

// Info loads the store and reports its public metadata.
func (s *Service) Info(ctx context.Context) (StoreInfo, error) {
	store, err := s.gateway.Load(ctx, s.cfg.Path)
	if err != nil {
		return StoreInfo{}, err
	}
	s.record("info")
	return StoreInfo{
		Path:        s.cfg.Path,
		Version:     store.Version,
		Cipher:      store.Cipher,
		KDF:         store.KDF,
		Notes:       len(store.Notes),
		HasVerifier: store.Verifier != "",
	}, nil
}

// Watch observes changes to the store if the gateway supports it.
func (s *Service) Watch(ctx context.Context) (<-chan Event, error) {
	w, ok := s.gateway.(Watchable)
	if !ok {
		return nil, errors.New("gateway does not support watching")
	}
	return w.Watch(ctx, s.cfg.Path)
}

func (s *Service) withLock(ctx context.Context, fn func() error) error {
	l, ok := s.gateway.(Locker)
	if !ok {
		return fn()
	}
	unlock, err := l.Lock(ctx, s.cfg.Path)
	if err != nil {
		return err
	}
	defer unlock()
	return fn()
}

func (s *Service) save(ctx context.Context, store *Store, reason string) error {
	ctx = context.WithValue(ctx, ChangeReasonKey, reason)
	return s.gateway.Save(ctx, s.cfg.Path, store)
}

func (s *Service) readNewPassword(prompt string) ([]byte, error) {
	if s.prompter == nil {
		return nil, errors.New("no input provider configured")
	}
	password, err := s.prompter.ReadPassword(prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	if len(password) == 0 {
		return nil, &KeyDerivationError{Err: crypto.ErrEmptyPassword}
	}
	confirm, err := s.prompter.ReadPassword("Confirm master password: ")
	if err != nil {
		crypto.Wipe(password)
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	defer crypto.Wipe(confirm)
	if !bytes.Equal(password, confirm) {
		crypto.Wipe(password)
		return nil, ErrPasswordMismatch
	}
	return password, nil
}

func (s *Service) record(op string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastOp = op
	s.lastTime = time.Now()
}

// newNoteID draws random UUIDs until one is unused in store.
func newNoteID(store *Store) string {
	for {
		id := uuid.NewString()
		if _, taken := store.Find(id); !taken {
			return id
		}
	}
}
