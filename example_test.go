package locknote_test

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/aretw0/locknote"
	"github.com/aretw0/locknote/pkg/crypto"
)

// staticPrompter answers every password prompt with the same password.
type staticPrompter string

func (p staticPrompter) ReadPassword(string) ([]byte, error) { return []byte(p), nil }
func (p staticPrompter) ReadLine(string) (string, error)     { return "", io.EOF }
func (p staticPrompter) ReadText(string) (string, error)     { return "", io.EOF }

// Example_basic creates a store, adds a note and reads it back.
func Example_basic() {
	tmpDir, err := os.MkdirTemp("", "locknote-example-*")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	svc, err := locknote.New(filepath.Join(tmpDir, locknote.DefaultStoreFile),
		locknote.WithPrompter(staticPrompter("correcthorse")),
		locknote.WithKDFParams(crypto.MinimumParams()),
	)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	if _, err := svc.Init(ctx); err != nil {
		log.Fatal(err)
	}

	id, err := svc.Add(ctx, "Groceries", "milk, eggs")
	if err != nil {
		log.Fatal(err)
	}

	note, err := svc.View(ctx, id)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("%s: %s\n", note.Title, note.Body)
	// Output:
	// Groceries: milk, eggs
}

// ExampleService_Search finds notes by a literal substring of their plaintext.
func ExampleService_Search() {
	tmpDir, err := os.MkdirTemp("", "locknote-search-*")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	svc, err := locknote.New(filepath.Join(tmpDir, "notes.json"),
		locknote.WithPrompter(staticPrompter("pw")),
		locknote.WithKDFParams(crypto.MinimumParams()),
	)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	if _, err := svc.Init(ctx); err != nil {
		log.Fatal(err)
	}
	hello, _ := svc.Add(ctx, "hello world", "")
	_, _ = svc.Add(ctx, "goodbye", "")

	res, err := svc.Search(ctx, "hello")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(len(res.Matches), res.Matches[0] == hello)
	// Output:
	// 1 true
}
