package core_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/locknote/pkg/core"
	"github.com/aretw0/locknote/pkg/crypto"
)

// plainDecrypt treats the ciphertext as plaintext. Records whose ciphertext
// starts with "bad" fail.
func plainDecrypt(r core.NoteRecord) ([]byte, error) {
	if strings.HasPrefix(string(r.Ciphertext), "bad") {
		return nil, crypto.ErrAuthFailed
	}
	return append([]byte(nil), r.Ciphertext...), nil
}

func record(id, text string) core.NoteRecord {
	return core.NoteRecord{ID: id, Nonce: make([]byte, crypto.NonceSize), Ciphertext: []byte(text)}
}

func TestNewStore(t *testing.T) {
	s := core.NewStore([]byte("0123456789abcdef"))
	assert.Equal(t, core.CurrentVersion, s.Version)
	assert.Equal(t, crypto.AES256GCM, s.Cipher)
	assert.Equal(t, crypto.DefaultParams(), s.KDF)
	assert.Empty(t, s.Notes)
	assert.NotNil(t, s.Notes)
}

func TestStoreOperations(t *testing.T) {
	s := core.NewStore([]byte("0123456789abcdef"))
	s.Add(record("a", "first"))
	s.Add(record("b", "second"))
	s.Add(record("c", "third"))

	t.Run("List Keeps Insertion Order", func(t *testing.T) {
		assert.Equal(t, []string{"a", "b", "c"}, s.List())
	})

	t.Run("Find", func(t *testing.T) {
		r, ok := s.Find("b")
		require.True(t, ok)
		assert.Equal(t, "second", string(r.Ciphertext))

		_, ok = s.Find("zzz")
		assert.False(t, ok)
	})

	t.Run("Remove Unknown Id", func(t *testing.T) {
		assert.False(t, s.Remove("zzz"))
		assert.Len(t, s.Notes, 3)
	})

	t.Run("Remove Known Id", func(t *testing.T) {
		assert.True(t, s.Remove("b"))
		assert.Equal(t, []string{"a", "c"}, s.List())
		_, ok := s.Find("b")
		assert.False(t, ok)
		assert.False(t, s.Remove("b"), "second removal must not shrink the store")
	})
}

func TestStoreMatch(t *testing.T) {
	s := core.NewStore([]byte("0123456789abcdef"))
	s.Add(record("work-1", "x"))
	s.Add(record("home-1", "x"))
	s.Add(record("work-2", "x"))

	ids, err := s.Match("work-*")
	require.NoError(t, err)
	assert.Equal(t, []string{"work-1", "work-2"}, ids)

	ids, err = s.Match("nothing*")
	require.NoError(t, err)
	assert.Empty(t, ids)

	_, err = s.Match("[")
	assert.Error(t, err)
}

func TestStoreSearch(t *testing.T) {
	s := core.NewStore([]byte("0123456789abcdef"))
	s.Add(record("1", "hello world"))
	s.Add(record("2", "goodbye"))

	t.Run("Substring", func(t *testing.T) {
		res, err := s.Search("hello", plainDecrypt, core.SkipFailures)
		require.NoError(t, err)
		assert.Equal(t, []string{"1"}, res.Matches)
		assert.Empty(t, res.Skipped)
	})

	t.Run("Shared Substring Keeps Order", func(t *testing.T) {
		res, err := s.Search("o", plainDecrypt, core.SkipFailures)
		require.NoError(t, err)
		assert.Equal(t, []string{"1", "2"}, res.Matches)
	})

	t.Run("No Match", func(t *testing.T) {
		res, err := s.Search("xyz", plainDecrypt, core.SkipFailures)
		require.NoError(t, err)
		assert.Empty(t, res.Matches)
	})

	t.Run("Case Sensitive", func(t *testing.T) {
		res, err := s.Search("Hello", plainDecrypt, core.SkipFailures)
		require.NoError(t, err)
		assert.Empty(t, res.Matches)
	})

	t.Run("Empty Keyword Matches All", func(t *testing.T) {
		res, err := s.Search("", plainDecrypt, core.SkipFailures)
		require.NoError(t, err)
		assert.Equal(t, []string{"1", "2"}, res.Matches)
	})
}

func TestStoreSearchPolicy(t *testing.T) {
	s := core.NewStore([]byte("0123456789abcdef"))
	s.Add(record("1", "hello world"))
	s.Add(record("2", "bad hello"))
	s.Add(record("3", "hello again"))

	t.Run("Skip Failures", func(t *testing.T) {
		res, err := s.Search("hello", plainDecrypt, core.SkipFailures)
		require.NoError(t, err)
		assert.Equal(t, []string{"1", "3"}, res.Matches)
		require.Len(t, res.Skipped, 1)
		assert.Equal(t, "2", res.Skipped[0].ID)
		assert.True(t, errors.Is(res.Skipped[0].Err, crypto.ErrAuthFailed))
	})

	t.Run("Fail Fast", func(t *testing.T) {
		_, err := s.Search("hello", plainDecrypt, core.FailFast)
		assert.ErrorIs(t, err, crypto.ErrAuthFailed)
	})
}

func TestParseSearchPolicy(t *testing.T) {
	p, err := core.ParseSearchPolicy("")
	require.NoError(t, err)
	assert.Equal(t, core.SkipFailures, p)

	p, err = core.ParseSearchPolicy("fail-fast")
	require.NoError(t, err)
	assert.Equal(t, core.FailFast, p)

	_, err = core.ParseSearchPolicy("maybe")
	assert.Error(t, err)
}

func TestSplitNote(t *testing.T) {
	cases := []struct {
		plaintext, title, body string
	}{
		{"Groceries\nmilk, eggs", "Groceries", "milk, eggs"},
		{"only title", "only title", ""},
		{"t\nline1\nline2", "t", "line1\nline2"},
		{"\nbody", "", "body"},
	}
	for _, c := range cases {
		title, body := core.SplitNote(c.plaintext)
		assert.Equal(t, c.title, title, c.plaintext)
		assert.Equal(t, c.body, body, c.plaintext)
	}

	n := core.Note{Title: "Groceries", Body: "milk, eggs"}
	assert.Equal(t, "Groceries\nmilk, eggs", n.Text())
}

func TestParseEventType(t *testing.T) {
	for in, want := range map[string]core.EventType{
		"create":  core.EventCreate,
		"DELETE":  core.EventDelete,
		" Rekey ": core.EventRekey,
	} {
		got, err := core.ParseEventType(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	for _, bad := range []string{"", "crete", "update"} {
		_, err := core.ParseEventType(bad)
		assert.Error(t, err, bad)
	}
}
