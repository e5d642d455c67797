// Package locknote is the Composition Root for the locknote application.
//
// It connects the encrypted-note domain (pkg/core, pkg/crypto) with the
// infrastructure adapters (filesystem, terminal, git) using the Hexagonal
// Architecture pattern.
//
// A store is a single JSON file holding a random salt and a list of notes,
// each sealed with AES-256-GCM (or ChaCha20-Poly1305) under a key derived
// from the master password with Argon2id. The key exists only for the
// duration of one operation and is wiped afterwards.
//
// Usage:
//
//	svc, err := locknote.New("locknote.json",
//		locknote.WithLogger(logger),
//		locknote.WithSearchPolicy(locknote.FailFast),
//	)
//
//	if _, err := svc.Init(ctx); err != nil { ... }   // prompts for a new password
//	id, err := svc.Add(ctx, "Groceries", "milk, eggs") // prompts for the password
//	note, err := svc.View(ctx, id)
package locknote
