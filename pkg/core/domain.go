// Store is the central entity of the domain.
package core

import (
	"fmt"
	"strings"

	"github.com/aretw0/locknote/pkg/crypto"
)

// CurrentVersion is the document format written by this package.
// It must be incremented for every change that breaks compatibility with
// existing stores.
const CurrentVersion = 1

// NoteRecord is one encrypted note as persisted.
// Ciphertext is the AEAD output (sealed title + "\n" + body, tag appended).
type NoteRecord struct {
	ID         string
	Nonce      []byte
	Ciphertext []byte
}

// Store is the in-memory container of one password-protected notebook.
// One store maps to one file and one master password.
type Store struct {
	Version  int
	Cipher   crypto.Suite
	KDF      crypto.Params
	Salt     []byte
	Verifier string // optional crypto.HashPassword string; empty on legacy stores
	Notes    []NoteRecord
}

// Note is a decrypted note.
type Note struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// JoinNote builds the plaintext that gets encrypted for a note.
func JoinNote(title, body string) string {
	return title + "\n" + body
}

// SplitNote recovers title and body by splitting on the first newline.
// A plaintext without newline is all title.
func SplitNote(plaintext string) (title, body string) {
	title, body, _ = strings.Cut(plaintext, "\n")
	return title, body
}

// Text returns the plaintext form of the note.
func (n Note) Text() string {
	return JoinNote(n.Title, n.Body)
}

// EventType represents the type of change observed in a store.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventDelete EventType = "DELETE"
	EventRekey  EventType = "REKEY"
)

// ParseEventType resolves a case-insensitive event name such as "create".
func ParseEventType(name string) (EventType, error) {
	t := EventType(strings.ToUpper(strings.TrimSpace(name)))
	switch t {
	case EventCreate, EventDelete, EventRekey:
		return t, nil
	default:
		return "", fmt.Errorf("unknown event type %q (want create, delete or rekey)", name)
	}
}

// Event represents a change in the store.
type Event struct {
	Type      EventType
	ID        string
	Timestamp int64 // Unix timestamp
}

// String implements fmt.Stringer.
func (e Event) String() string {
	if e.ID == "" {
		return string(e.Type)
	}
	return string(e.Type) + " " + e.ID
}
