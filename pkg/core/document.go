package core

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aretw0/locknote/pkg/crypto"
)

// encoding is the single byte-to-text scheme for salt, nonce and ciphertext.
// Every read and write path goes through encodeBytes/decodeBytes.
var encoding = base64.StdEncoding

func encodeBytes(b []byte) string {
	return encoding.EncodeToString(b)
}

func decodeBytes(s string) ([]byte, error) {
	return encoding.DecodeString(s)
}

// kdfDocument records the KDF costs used for the store's salt.
type kdfDocument struct {
	Algorithm string `json:"algorithm"`
	Time      uint32 `json:"time"`
	Memory    uint32 `json:"memory"`
	Threads   uint8  `json:"threads"`
}

type noteDocument struct {
	ID         string `json:"id"`
	Nonce      string `json:"nonce"`
	Ciphertext string `json:"ciphertext"`
}

// document is the on-disk JSON shape. salt and notes are mandatory; the other
// fields are optional and default to a version 1 store.
type document struct {
	Version  int             `json:"version,omitempty"`
	Cipher   string          `json:"cipher,omitempty"`
	KDF      *kdfDocument    `json:"kdf,omitempty"`
	Verifier string          `json:"verifier,omitempty"`
	Salt     *string         `json:"salt"`
	Notes    *[]noteDocument `json:"notes"`
}

// MarshalStore encodes a store as indented JSON.
func MarshalStore(s *Store) ([]byte, error) {
	if s == nil {
		return nil, errors.New("store is nil")
	}
	version := s.Version
	if version == 0 {
		version = CurrentVersion
	}
	suite := s.Cipher
	if suite == "" {
		suite = crypto.AES256GCM
	}
	params := s.KDF
	if params.IsZero() {
		params = crypto.DefaultParams()
	}
	salt := encodeBytes(s.Salt)
	notes := make([]noteDocument, 0, len(s.Notes))
	for _, r := range s.Notes {
		notes = append(notes, noteDocument{
			ID:         r.ID,
			Nonce:      encodeBytes(r.Nonce),
			Ciphertext: encodeBytes(r.Ciphertext),
		})
	}

	doc := document{
		Version: version,
		Cipher:  string(suite),
		KDF: &kdfDocument{
			Algorithm: crypto.KDFAlgorithm,
			Time:      params.Time,
			Memory:    params.Memory,
			Threads:   params.Threads,
		},
		Verifier: s.Verifier,
		Salt:     &salt,
		Notes:    &notes,
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode store: %w", err)
	}
	return append(data, '\n'), nil
}

// UnmarshalStore decodes a document produced by MarshalStore. Every failure is
// a *SerializationError.
func UnmarshalStore(data []byte) (*Store, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &SerializationError{Err: err}
	}

	if doc.Version > CurrentVersion {
		return nil, &SerializationError{Field: "version", Err: fmt.Errorf("unsupported version %d", doc.Version)}
	}
	suite, err := crypto.ParseSuite(doc.Cipher)
	if err != nil {
		return nil, &SerializationError{Field: "cipher", Err: err}
	}
	params := crypto.DefaultParams()
	if doc.KDF != nil {
		if doc.KDF.Algorithm != "" && doc.KDF.Algorithm != crypto.KDFAlgorithm {
			return nil, &SerializationError{Field: "kdf", Err: fmt.Errorf("unsupported KDF %q", doc.KDF.Algorithm)}
		}
		params = crypto.Params{Time: doc.KDF.Time, Memory: doc.KDF.Memory, Threads: doc.KDF.Threads}
		if err := params.Validate(); err != nil {
			return nil, &SerializationError{Field: "kdf", Err: err}
		}
	}

	if doc.Salt == nil || *doc.Salt == "" {
		return nil, &SerializationError{Field: "salt", Err: errors.New("missing salt")}
	}
	salt, err := decodeBytes(*doc.Salt)
	if err != nil {
		return nil, &SerializationError{Field: "salt", Err: err}
	}

	if doc.Notes == nil {
		return nil, &SerializationError{Field: "notes", Err: errors.New("missing notes")}
	}
	notes := *doc.Notes

	s := &Store{
		Version:  doc.Version,
		Cipher:   suite,
		KDF:      params,
		Salt:     salt,
		Verifier: doc.Verifier,
		Notes:    make([]NoteRecord, 0, len(notes)),
	}
	if s.Version == 0 {
		s.Version = CurrentVersion
	}

	seen := make(map[string]struct{}, len(notes))
	for i, n := range notes {
		if n.ID == "" {
			return nil, &SerializationError{Field: fmt.Sprintf("notes[%d].id", i), Err: errors.New("empty id")}
		}
		if _, dup := seen[n.ID]; dup {
			return nil, &SerializationError{Field: fmt.Sprintf("notes[%d].id", i), Err: fmt.Errorf("duplicate id %s", n.ID)}
		}
		seen[n.ID] = struct{}{}

		nonce, err := decodeBytes(n.Nonce)
		if err != nil {
			return nil, &SerializationError{Field: fmt.Sprintf("notes[%d].nonce", i), Err: err}
		}
		ciphertext, err := decodeBytes(n.Ciphertext)
		if err != nil {
			return nil, &SerializationError{Field: fmt.Sprintf("notes[%d].ciphertext", i), Err: err}
		}
		s.Notes = append(s.Notes, NoteRecord{ID: n.ID, Nonce: nonce, Ciphertext: ciphertext})
	}
	return s, nil
}
