package crypto

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// ErrMalformedHash is returned by VerifyPassword for strings it cannot parse.
var ErrMalformedHash = errors.New("malformed password hash")

const hashSize = 32

// phc is the unpadded encoding used inside PHC strings.
var phc = base64.RawStdEncoding

// HashPassword returns a self-describing Argon2id hash of password:
//
//	$argon2id$v=19$m=65536,t=3,p=4$<salt>$<hash>
//
// It generates its own salt and is unrelated to the MasterKey.
func HashPassword(password []byte) (string, error) {
	return HashPasswordWithParams(password, DefaultParams())
}

// HashPasswordWithParams is HashPassword with explicit costs.
func HashPasswordWithParams(password []byte, p Params) (string, error) {
	if len(password) == 0 {
		return "", ErrEmptyPassword
	}
	if err := p.Validate(); err != nil {
		return "", err
	}
	salt, err := NewSalt()
	if err != nil {
		return "", err
	}
	sum := argon2.IDKey(password, salt, p.Time, p.Memory, p.Threads, hashSize)
	defer Wipe(sum)

	return fmt.Sprintf("$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		KDFAlgorithm, argon2.Version, p.Memory, p.Time, p.Threads,
		phc.EncodeToString(salt), phc.EncodeToString(sum)), nil
}

// VerifyPassword reports whether password matches an encoded hash produced by
// HashPassword. The comparison is constant time.
func VerifyPassword(password []byte, encoded string) (bool, error) {
	p, salt, want, err := parseHash(encoded)
	if err != nil {
		return false, err
	}
	got := argon2.IDKey(password, salt, p.Time, p.Memory, p.Threads, uint32(len(want)))
	defer Wipe(got)

	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

func parseHash(encoded string) (Params, []byte, []byte, error) {
	// "", "argon2id", "v=19", "m=..,t=..,p=..", salt, hash
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return Params{}, nil, nil, ErrMalformedHash
	}
	if parts[1] != KDFAlgorithm {
		return Params{}, nil, nil, fmt.Errorf("%w: unsupported algorithm %q", ErrMalformedHash, parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return Params{}, nil, nil, fmt.Errorf("%w: %v", ErrMalformedHash, err)
	}
	if version != argon2.Version {
		return Params{}, nil, nil, fmt.Errorf("%w: unsupported version %d", ErrMalformedHash, version)
	}

	var p Params
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Time, &p.Threads); err != nil {
		return Params{}, nil, nil, fmt.Errorf("%w: %v", ErrMalformedHash, err)
	}
	if err := p.Validate(); err != nil {
		return Params{}, nil, nil, fmt.Errorf("%w: %w", ErrMalformedHash, err)
	}

	salt, err := phc.DecodeString(parts[4])
	if err != nil || len(salt) < MinSaltSize {
		return Params{}, nil, nil, fmt.Errorf("%w: bad salt", ErrMalformedHash)
	}
	sum, err := phc.DecodeString(parts[5])
	if err != nil || len(sum) == 0 {
		return Params{}, nil, nil, fmt.Errorf("%w: bad hash", ErrMalformedHash)
	}
	return p, salt, sum, nil
}
