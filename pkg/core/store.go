package core

import (
	"bytes"
	"fmt"
	"slices"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/locknote/pkg/crypto"
)

// NewStore creates an empty store around salt with the default cipher and
// KDF parameters.
func NewStore(salt []byte) *Store {
	return &Store{
		Version: CurrentVersion,
		Cipher:  crypto.AES256GCM,
		KDF:     crypto.DefaultParams(),
		Salt:    salt,
		Notes:   []NoteRecord{},
	}
}

// Add appends a record. Id uniqueness is the caller's responsibility
// (see Service.Add).
func (s *Store) Add(r NoteRecord) {
	s.Notes = append(s.Notes, r)
}

// Remove deletes every record whose id matches and reports whether the store shrank.
func (s *Store) Remove(id string) bool {
	before := len(s.Notes)
	s.Notes = slices.DeleteFunc(s.Notes, func(r NoteRecord) bool {
		return r.ID == id
	})
	return len(s.Notes) < before
}

// Find returns the first record with the given id.
func (s *Store) Find(id string) (NoteRecord, bool) {
	for _, r := range s.Notes {
		if r.ID == id {
			return r, true
		}
	}
	return NoteRecord{}, false
}

// List returns the note ids in insertion order.
func (s *Store) List() []string {
	ids := make([]string, 0, len(s.Notes))
	for _, r := range s.Notes {
		ids = append(ids, r.ID)
	}
	return ids
}

// Match returns the ids matching a doublestar glob, in insertion order.
func (s *Store) Match(pattern string) ([]string, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, doublestar.ErrBadPattern)
	}
	ids := []string{}
	for _, r := range s.Notes {
		ok, err := doublestar.Match(pattern, r.ID)
		if err != nil {
			return nil, err
		}
		if ok {
			ids = append(ids, r.ID)
		}
	}
	return ids, nil
}

// SearchPolicy decides what happens when a record fails to decrypt during search.
type SearchPolicy string

const (
	// SkipFailures records the failing id in SearchResult.Skipped and continues.
	SkipFailures SearchPolicy = "skip"
	// FailFast aborts the whole search on the first failure.
	FailFast SearchPolicy = "fail-fast"
)

// ParseSearchPolicy resolves a policy name. The empty string means SkipFailures.
func ParseSearchPolicy(name string) (SearchPolicy, error) {
	switch SearchPolicy(name) {
	case "", SkipFailures:
		return SkipFailures, nil
	case FailFast:
		return FailFast, nil
	default:
		return "", fmt.Errorf("unknown search policy %q", name)
	}
}

// DecryptFunc recovers the plaintext of a record. It usually closes over the MasterKey.
type DecryptFunc func(r NoteRecord) ([]byte, error)

// SkippedNote is a record that could not be decrypted during search.
type SkippedNote struct {
	ID  string
	Err error
}

// SearchResult holds the matching ids in insertion order.
type SearchResult struct {
	Matches []string
	Skipped []SkippedNote
}

// Search returns the ids of the notes whose plaintext contains keyword as a
// literal, case-sensitive substring. Plaintexts are wiped after inspection.
func (s *Store) Search(keyword string, decrypt DecryptFunc, policy SearchPolicy) (SearchResult, error) {
	res := SearchResult{Matches: []string{}}
	needle := []byte(keyword)

	for _, r := range s.Notes {
		plaintext, err := decrypt(r)
		if err != nil {
			if policy == FailFast {
				return SearchResult{}, err
			}
			res.Skipped = append(res.Skipped, SkippedNote{ID: r.ID, Err: err})
			continue
		}
		if bytes.Contains(plaintext, needle) {
			res.Matches = append(res.Matches, r.ID)
		}
		crypto.Wipe(plaintext)
	}
	return res, nil
}
