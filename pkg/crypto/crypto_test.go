package crypto

import (
	"bytes"
	"crypto/rand"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// testParams keeps the suite fast while staying above the floor.
var testParams = MinimumParams()

func randomKey(t require.TestingT) *MasterKey {
	raw := make([]byte, KeySize)
	_, err := rand.Read(raw)
	require.NoError(t, err)
	key, err := NewMasterKey(raw)
	require.NoError(t, err)
	return key
}

func TestDeriveKey(t *testing.T) {
	salt := []byte("0123456789abcdef")

	t.Run("Deterministic", func(t *testing.T) {
		k1, err := DeriveKey([]byte("correcthorse"), salt, testParams)
		require.NoError(t, err)
		defer k1.Wipe()
		k2, err := DeriveKey([]byte("correcthorse"), salt, testParams)
		require.NoError(t, err)
		defer k2.Wipe()

		assert.Len(t, k1.Bytes(), KeySize)
		assert.Equal(t, k1.Bytes(), k2.Bytes())
	})

	t.Run("Salt And Password Matter", func(t *testing.T) {
		base, err := DeriveKey([]byte("correcthorse"), salt, testParams)
		require.NoError(t, err)
		otherSalt, err := DeriveKey([]byte("correcthorse"), []byte("fedcba9876543210"), testParams)
		require.NoError(t, err)
		otherPass, err := DeriveKey([]byte("batterystaple"), salt, testParams)
		require.NoError(t, err)

		assert.NotEqual(t, base.Bytes(), otherSalt.Bytes())
		assert.NotEqual(t, base.Bytes(), otherPass.Bytes())
	})

	t.Run("Rejects Short Salt", func(t *testing.T) {
		key, err := DeriveKey([]byte("pw"), []byte("short"), testParams)
		assert.Nil(t, key)
		assert.ErrorIs(t, err, ErrKeyDerivation)
	})

	t.Run("Rejects Empty Password", func(t *testing.T) {
		key, err := DeriveKey(nil, salt, testParams)
		assert.Nil(t, key)
		assert.ErrorIs(t, err, ErrKeyDerivation)
		assert.ErrorIs(t, err, ErrEmptyPassword)
	})

	t.Run("Rejects Weak Params", func(t *testing.T) {
		key, err := DeriveKey([]byte("pw"), salt, Params{Time: 1, Memory: 1024, Threads: 1})
		assert.Nil(t, key)
		assert.ErrorIs(t, err, ErrKeyDerivation)
	})

	t.Run("Rejects Excessive Params", func(t *testing.T) {
		for _, p := range []Params{
			{Time: math.MaxUint32, Memory: 19456, Threads: 1},
			{Time: 2, Memory: math.MaxUint32, Threads: 1},
		} {
			key, err := DeriveKey([]byte("pw"), salt, p)
			assert.Nil(t, key)
			assert.ErrorIs(t, err, ErrKeyDerivation)
		}
	})
}

func TestMasterKeyWipe(t *testing.T) {
	key := randomKey(t)
	raw := key.Bytes()
	key.Wipe()

	assert.True(t, key.Wiped())
	assert.Nil(t, key.Bytes())
	assert.Equal(t, make([]byte, KeySize), raw, "backing array must be zeroed")
	assert.NotPanics(t, key.Wipe)
	assert.Equal(t, "MasterKey(redacted)", key.String())

	_, err := NewCipher(AES256GCM, key)
	assert.Error(t, err)
}

func TestCipherRoundTrip(t *testing.T) {
	for _, suite := range []Suite{AES256GCM, ChaCha20Poly1305} {
		t.Run(string(suite), func(t *testing.T) {
			rapid.Check(t, func(rt *rapid.T) {
				key := randomKey(rt)
				defer key.Wipe()
				c, err := NewCipher(suite, key)
				require.NoError(rt, err)

				plaintext := rapid.SliceOf(rapid.Byte()).Draw(rt, "plaintext")
				nonce, ciphertext, err := c.Seal(plaintext, nil)
				require.NoError(rt, err)
				require.Len(rt, nonce, NonceSize)
				require.Len(rt, ciphertext, len(plaintext)+c.Overhead())

				got, err := c.Open(nonce, ciphertext, nil)
				require.NoError(rt, err)
				require.True(rt, bytes.Equal(plaintext, got))
			})
		})
	}
}

func TestEncryptDecryptWithDerivedKey(t *testing.T) {
	salt, err := NewSalt()
	require.NoError(t, err)
	key, err := DeriveKey([]byte("correcthorse"), salt, testParams)
	require.NoError(t, err)
	defer key.Wipe()

	nonce, ciphertext, err := Encrypt([]byte("Groceries\nmilk, eggs"), key)
	require.NoError(t, err)

	again, err := DeriveKey([]byte("correcthorse"), salt, testParams)
	require.NoError(t, err)
	defer again.Wipe()

	plaintext, err := Decrypt(ciphertext, nonce, again)
	require.NoError(t, err)
	assert.Equal(t, "Groceries\nmilk, eggs", string(plaintext))
}

func TestNonceUniqueness(t *testing.T) {
	key := randomKey(t)
	defer key.Wipe()

	n1, c1, err := Encrypt([]byte("same text"), key)
	require.NoError(t, err)
	n2, c2, err := Encrypt([]byte("same text"), key)
	require.NoError(t, err)

	assert.NotEqual(t, n1, n2)
	assert.NotEqual(t, c1, c2)

	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		n, err := GenerateNonce()
		require.NoError(t, err)
		_, dup := seen[string(n)]
		require.False(t, dup, "nonce repeated after %d draws", i)
		seen[string(n)] = struct{}{}
	}
}

func TestWrongKeyRejected(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		key := randomKey(rt)
		other := randomKey(rt)
		plaintext := rapid.SliceOfN(rapid.Byte(), 1, 256).Draw(rt, "plaintext")

		nonce, ciphertext, err := Encrypt(plaintext, key)
		require.NoError(rt, err)

		got, err := Decrypt(ciphertext, nonce, other)
		require.ErrorIs(rt, err, ErrAuthFailed)
		require.Nil(rt, got)
	})
}

func TestTamperDetection(t *testing.T) {
	key := randomKey(t)
	defer key.Wipe()
	nonce, ciphertext, err := Encrypt([]byte("hello world"), key)
	require.NoError(t, err)

	t.Run("Ciphertext Bit Flip", func(t *testing.T) {
		for i := range ciphertext {
			tampered := bytes.Clone(ciphertext)
			tampered[i] ^= 0x01
			got, err := Decrypt(tampered, nonce, key)
			require.ErrorIs(t, err, ErrAuthFailed, "byte %d", i)
			require.Nil(t, got)
		}
	})

	t.Run("Nonce Bit Flip", func(t *testing.T) {
		for i := range nonce {
			tampered := bytes.Clone(nonce)
			tampered[i] ^= 0x80
			got, err := Decrypt(ciphertext, tampered, key)
			require.ErrorIs(t, err, ErrAuthFailed, "byte %d", i)
			require.Nil(t, got)
		}
	})

	t.Run("Truncated Input", func(t *testing.T) {
		for _, n := range []int{0, 1, 15, len(ciphertext) - 1} {
			got, err := Decrypt(ciphertext[:n], nonce, key)
			require.ErrorIs(t, err, ErrAuthFailed, "length %d", n)
			require.Nil(t, got)
		}
		got, err := Decrypt(ciphertext, nonce[:8], key)
		assert.ErrorIs(t, err, ErrAuthFailed)
		assert.Nil(t, got)
	})

	t.Run("Suite Mismatch", func(t *testing.T) {
		c, err := NewCipher(ChaCha20Poly1305, key)
		require.NoError(t, err)
		_, err = c.Open(nonce, ciphertext, nil)
		assert.ErrorIs(t, err, ErrAuthFailed)
	})

	t.Run("Associated Data Mismatch", func(t *testing.T) {
		c, err := NewCipher(AES256GCM, key)
		require.NoError(t, err)
		n, ct, err := c.Seal([]byte("bound"), []byte("note-1"))
		require.NoError(t, err)
		_, err = c.Open(n, ct, []byte("note-2"))
		assert.ErrorIs(t, err, ErrAuthFailed)
		pt, err := c.Open(n, ct, []byte("note-1"))
		require.NoError(t, err)
		assert.Equal(t, "bound", string(pt))
	})
}

func TestParamsValidate(t *testing.T) {
	assert.NoError(t, MinimumParams().Validate())
	assert.NoError(t, DefaultParams().Validate())
	assert.NoError(t, MaximumParams().Validate())

	ceiling := MaximumParams()
	for name, p := range map[string]Params{
		"Time Above Ceiling":   {Time: ceiling.Time + 1, Memory: 19456, Threads: 1},
		"Memory Above Ceiling": {Time: 2, Memory: ceiling.Memory + 1, Threads: 1},
		"Zero":                 {},
	} {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, p.Validate(), ErrKeyDerivation)
		})
	}
}

func TestParseSuite(t *testing.T) {
	s, err := ParseSuite("")
	require.NoError(t, err)
	assert.Equal(t, AES256GCM, s)

	s, err = ParseSuite("chacha20-poly1305")
	require.NoError(t, err)
	assert.Equal(t, ChaCha20Poly1305, s)

	_, err = ParseSuite("rot13")
	assert.ErrorIs(t, err, ErrUnsupportedCipher)
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPasswordWithParams([]byte("correcthorse"), testParams)
	require.NoError(t, err)
	assert.Regexp(t, `^\$argon2id\$v=19\$m=19456,t=2,p=1\$[A-Za-z0-9+/]+\$[A-Za-z0-9+/]+$`, hash)

	ok, err := VerifyPassword([]byte("correcthorse"), hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword([]byte("wrong"), hash)
	require.NoError(t, err)
	assert.False(t, ok)

	again, err := HashPasswordWithParams([]byte("correcthorse"), testParams)
	require.NoError(t, err)
	assert.NotEqual(t, hash, again, "each hash carries its own salt")

	_, err = HashPassword(nil)
	assert.ErrorIs(t, err, ErrEmptyPassword)
}

func TestVerifyPasswordMalformed(t *testing.T) {
	cases := []string{
		"",
		"plain",
		"$argon2i$v=19$m=19456,t=2,p=1$c2FsdHNhbHQ$aGFzaA",
		"$argon2id$v=16$m=19456,t=2,p=1$c2FsdHNhbHQ$aGFzaA",
		"$argon2id$v=19$m=x,t=2,p=1$c2FsdHNhbHQ$aGFzaA",
		"$argon2id$v=19$m=19456,t=0,p=1$c2FsdHNhbHQ$aGFzaA",
		"$argon2id$v=19$m=1024,t=2,p=1$c2FsdHNhbHQ$aGFzaA",
		"$argon2id$v=19$m=4294967295,t=1,p=1$c2FsdHNhbHQ$aGFzaA",
		"$argon2id$v=19$m=19456,t=4294967295,p=1$c2FsdHNhbHQ$aGFzaA",
		"$argon2id$v=19$m=19456,t=2,p=1$!!$aGFzaA",
		"$argon2id$v=19$m=19456,t=2,p=1$c2FsdHNhbHQ$",
	}
	for _, c := range cases {
		ok, err := VerifyPassword([]byte("pw"), c)
		assert.False(t, ok, c)
		assert.ErrorIs(t, err, ErrMalformedHash, c)
	}
}
