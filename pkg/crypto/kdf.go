package crypto

import (
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
)

const (
	// KeySize is the length of a MasterKey (AES-256 / ChaCha20).
	KeySize = 32
	// SaltSize is the length of a freshly generated MasterSalt.
	SaltSize = 16
	// MinSaltSize is the shortest salt Argon2 accepts.
	MinSaltSize = 8

	// KDFAlgorithm names the only supported key derivation function.
	KDFAlgorithm = "argon2id"
)

var (
	// ErrKeyDerivation is wrapped by every key derivation failure.
	ErrKeyDerivation = errors.New("key derivation failed")
	// ErrEmptyPassword is returned when a password has no bytes.
	ErrEmptyPassword = errors.New("password cannot be empty")
)

// Params contains Argon2id cost parameters.
type Params struct {
	Time    uint32 `json:"time" yaml:"time"`       // iterations
	Memory  uint32 `json:"memory" yaml:"memory"`   // KiB
	Threads uint8  `json:"threads" yaml:"threads"` // parallelism
}

// DefaultParams returns the cost used for new stores (64 MiB, 3 passes, 4 lanes).
func DefaultParams() Params {
	return Params{Time: 3, Memory: 64 * 1024, Threads: 4}
}

// MinimumParams is the floor below which derivation is refused.
// It matches the Argon2 reference defaults (19 MiB, 2 passes, 1 lane).
func MinimumParams() Params {
	return Params{Time: 2, Memory: 19 * 1024, Threads: 1}
}

// MaximumParams is the ceiling above which derivation is refused
// (4 GiB, 64 passes, 255 lanes). Costs read from a store file are untrusted.
// Threads is bounded by its type.
func MaximumParams() Params {
	return Params{Time: 64, Memory: 4 * 1024 * 1024, Threads: 255}
}

// Validate rejects parameters weaker than MinimumParams or costlier than
// MaximumParams.
func (p Params) Validate() error {
	floor, ceiling := MinimumParams(), MaximumParams()
	if p.Threads < floor.Threads {
		return fmt.Errorf("%w: threads must be at least %d", ErrKeyDerivation, floor.Threads)
	}
	if p.Time < floor.Time {
		return fmt.Errorf("%w: time cost must be at least %d", ErrKeyDerivation, floor.Time)
	}
	if p.Memory < floor.Memory {
		return fmt.Errorf("%w: memory cost must be at least %d KiB", ErrKeyDerivation, floor.Memory)
	}
	if p.Time > ceiling.Time {
		return fmt.Errorf("%w: time cost must be at most %d", ErrKeyDerivation, ceiling.Time)
	}
	if p.Memory > ceiling.Memory {
		return fmt.Errorf("%w: memory cost must be at most %d KiB", ErrKeyDerivation, ceiling.Memory)
	}
	if p.Memory < 8*uint32(p.Threads) {
		return fmt.Errorf("%w: memory cost must be at least 8 KiB per thread", ErrKeyDerivation)
	}
	return nil
}

// IsZero reports whether no parameter has been set.
func (p Params) IsZero() bool {
	return p == Params{}
}

// DeriveKey derives the 32-byte MasterKey from password and salt using Argon2id.
// The same inputs always produce the same key. On failure no key is returned.
func DeriveKey(password, salt []byte, p Params) (*MasterKey, error) {
	if len(password) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrKeyDerivation, ErrEmptyPassword)
	}
	if len(salt) < MinSaltSize {
		return nil, fmt.Errorf("%w: salt must be at least %d bytes, got %d", ErrKeyDerivation, MinSaltSize, len(salt))
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	key := argon2.IDKey(password, salt, p.Time, p.Memory, p.Threads, KeySize)
	return &MasterKey{b: key}, nil
}

// NewSalt generates a random MasterSalt.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}
