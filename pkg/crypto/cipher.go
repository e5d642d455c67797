package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// NonceSize is the nonce length of both supported suites (96 bits).
const NonceSize = 12

var (
	// ErrAuthFailed is returned by every decryption failure. Wrong key, tampered
	// ciphertext, tampered nonce and truncated input are deliberately indistinguishable.
	ErrAuthFailed = errors.New("authentication failed - wrong key or data corrupted or tampered")
	// ErrUnsupportedCipher is returned for an unknown Suite.
	ErrUnsupportedCipher = errors.New("unsupported cipher suite")
)

// Suite names an AEAD construction.
type Suite string

const (
	// AES256GCM is AES-256 in Galois/Counter Mode. It is the default.
	AES256GCM Suite = "aes-256-gcm"
	// ChaCha20Poly1305 is the IETF ChaCha20-Poly1305 construction.
	ChaCha20Poly1305 Suite = "chacha20-poly1305"
)

// ParseSuite resolves a suite name. The empty string means AES256GCM.
func ParseSuite(name string) (Suite, error) {
	switch Suite(name) {
	case "", AES256GCM:
		return AES256GCM, nil
	case ChaCha20Poly1305:
		return ChaCha20Poly1305, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedCipher, name)
	}
}

// Cipher seals and opens single notes under one MasterKey.
type Cipher interface {
	// Seal encrypts plaintext under a fresh random nonce.
	Seal(plaintext, additionalData []byte) (nonce, ciphertext []byte, err error)

	// Open authenticates and decrypts. Any failure yields ErrAuthFailed and no plaintext.
	Open(nonce, ciphertext, additionalData []byte) ([]byte, error)

	// Suite reports the construction in use.
	Suite() Suite

	// Overhead returns the authentication tag size.
	Overhead() int
}

type aeadCipher struct {
	aead  cipher.AEAD
	suite Suite
}

// NewCipher builds a Cipher for suite over key. The cipher keeps its own expanded
// key schedule; wiping key afterwards does not affect it.
func NewCipher(suite Suite, key *MasterKey) (Cipher, error) {
	if key.Wiped() {
		return nil, errors.New("master key has been wiped")
	}
	if len(key.Bytes()) != KeySize {
		return nil, fmt.Errorf("%s requires a %d-byte key, got %d bytes", suite, KeySize, len(key.Bytes()))
	}

	var (
		aead cipher.AEAD
		err  error
	)
	switch suite {
	case AES256GCM, "":
		suite = AES256GCM
		var block cipher.Block
		block, err = aes.NewCipher(key.Bytes())
		if err != nil {
			return nil, fmt.Errorf("failed to create AES cipher: %w", err)
		}
		aead, err = cipher.NewGCM(block)
		if err != nil {
			return nil, fmt.Errorf("failed to create GCM: %w", err)
		}
	case ChaCha20Poly1305:
		aead, err = chacha20poly1305.New(key.Bytes())
		if err != nil {
			return nil, fmt.Errorf("failed to create ChaCha20-Poly1305 cipher: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedCipher, suite)
	}

	return &aeadCipher{aead: aead, suite: suite}, nil
}

func (c *aeadCipher) Seal(plaintext, additionalData []byte) ([]byte, []byte, error) {
	nonce, err := GenerateNonce()
	if err != nil {
		return nil, nil, err
	}
	ciphertext := c.aead.Seal(nil, nonce, plaintext, additionalData)
	return nonce, ciphertext, nil
}

func (c *aeadCipher) Open(nonce, ciphertext, additionalData []byte) ([]byte, error) {
	if len(nonce) != c.aead.NonceSize() || len(ciphertext) < c.aead.Overhead() {
		return nil, ErrAuthFailed
	}
	plaintext, err := c.aead.Open(nil, nonce, ciphertext, additionalData)
	if err != nil {
		return nil, ErrAuthFailed
	}
	return plaintext, nil
}

func (c *aeadCipher) Suite() Suite {
	return c.suite
}

func (c *aeadCipher) Overhead() int {
	return c.aead.Overhead()
}

// GenerateNonce draws a nonce from crypto/rand. Nonces are never derived from
// content or a counter.
func GenerateNonce() ([]byte, error) {
	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return nonce, nil
}

// Encrypt seals plaintext with AES-256-GCM under key and a fresh nonce.
func Encrypt(plaintext []byte, key *MasterKey) (nonce, ciphertext []byte, err error) {
	c, err := NewCipher(AES256GCM, key)
	if err != nil {
		return nil, nil, err
	}
	return c.Seal(plaintext, nil)
}

// Decrypt opens an AES-256-GCM ciphertext produced by Encrypt.
func Decrypt(ciphertext, nonce []byte, key *MasterKey) ([]byte, error) {
	c, err := NewCipher(AES256GCM, key)
	if err != nil {
		return nil, err
	}
	return c.Open(nonce, ciphertext, nil)
}
