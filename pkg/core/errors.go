package core

import (
	"errors"
	"fmt"
)

// Sentinel errors. Typed errors below wrap them so both errors.Is and
// errors.As work.
var (
	ErrStoreExists       = errors.New("store already exists")
	ErrStoreNotFound     = errors.New("store not found")
	ErrNoteNotFound      = errors.New("note not found")
	ErrWrongPassword     = errors.New("wrong password")
	ErrMalformedDocument = errors.New("malformed store document")
	ErrPasswordMismatch  = errors.New("passwords do not match")
	ErrLocked            = errors.New("store is locked by another process")
)

// ConfigurationError reports a store that exists when it must not, or is
// missing when it must exist. The command aborts without state change.
type ConfigurationError struct {
	Path string
	Err  error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %v", e.Path, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// KeyDerivationError reports a malformed salt or KDF failure. It is always
// fatal to the running command.
type KeyDerivationError struct {
	Err error
}

func (e *KeyDerivationError) Error() string {
	return fmt.Sprintf("key derivation error: %v", e.Err)
}

func (e *KeyDerivationError) Unwrap() error {
	return e.Err
}

// AuthenticationError reports a wrong password or tampered/corrupted ciphertext.
// ID is set when a specific note failed to decrypt.
type AuthenticationError struct {
	ID  string
	Err error
}

func (e *AuthenticationError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("authentication error: note %s: %v", e.ID, e.Err)
	}
	return fmt.Sprintf("authentication error: %v", e.Err)
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// SerializationError reports a persisted document that cannot be parsed.
// It is distinct from ErrStoreNotFound.
type SerializationError struct {
	Path  string
	Field string // JSON field at fault, if known
	Err   error
}

func (e *SerializationError) Error() string {
	msg := "serialization error"
	if e.Path != "" {
		msg += ": " + e.Path
	}
	if e.Field != "" {
		msg += ": field " + e.Field
	}
	return fmt.Sprintf("%s: %v", msg, e.Err)
}

func (e *SerializationError) Unwrap() []error {
	return []error{ErrMalformedDocument, e.Err}
}

// NotFoundError reports an unknown note id. It is a normal outcome, not a failure
// of the store.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("note %s not found", e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNoteNotFound
}

// IOError reports a file system failure in the persistence gateway.
type IOError struct {
	Op   string // "read", "write", "lock", ...
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("io error: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// IsConfigurationError checks if an error is a configuration error.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// IsKeyDerivationError checks if an error is a key derivation error.
func IsKeyDerivationError(err error) bool {
	var ke *KeyDerivationError
	return errors.As(err, &ke)
}

// IsAuthenticationError checks if an error is an authentication failure.
func IsAuthenticationError(err error) bool {
	var ae *AuthenticationError
	return errors.As(err, &ae)
}

// IsSerializationError checks if an error is a serialization error.
func IsSerializationError(err error) bool {
	var se *SerializationError
	return errors.As(err, &se)
}

// IsNotFoundError checks if an error is an unknown note id.
func IsNotFoundError(err error) bool {
	var ne *NotFoundError
	return errors.As(err, &ne)
}

// IsIOError checks if an error is an I/O error.
func IsIOError(err error) bool {
	var ie *IOError
	return errors.As(err, &ie)
}
