package core

import "context"

// Gateway defines the contract for loading and saving whole stores.
// Adhering to this interface keeps the core independent of the underlying
// storage mechanism.
type Gateway interface {
	// Exists reports whether a store is present at path.
	Exists(ctx context.Context, path string) (bool, error)

	// Load reads the store at path. A missing store is a *ConfigurationError
	// wrapping ErrStoreNotFound; an unparsable one is a *SerializationError.
	Load(ctx context.Context, path string) (*Store, error)

	// Save replaces the store at path. Implementations must never leave a
	// corrupt-but-loadable file behind on a crash mid-write.
	Save(ctx context.Context, path string, s *Store) error
}

// Locker is implemented by gateways that can keep other processes away from a
// store during a read-modify-write cycle.
type Locker interface {
	// Lock acquires an exclusive advisory lock and returns the release function.
	Lock(ctx context.Context, path string) (func(), error)
}

// Watchable is implemented by gateways that can observe external changes.
type Watchable interface {
	// Watch emits an Event per note added or removed from the store at path.
	// The channel is closed when ctx is cancelled.
	Watch(ctx context.Context, path string) (<-chan Event, error)
}

// Prompter supplies user input. The terminal implementation never echoes passwords.
type Prompter interface {
	// ReadPassword reads a secret. The caller wipes the returned bytes.
	ReadPassword(prompt string) ([]byte, error)

	// ReadLine reads a single line without its line terminator.
	ReadLine(prompt string) (string, error)

	// ReadText reads everything until end of input.
	ReadText(prompt string) (string, error)
}

type contextKey string

// ChangeReasonKey is the context key carrying the change reason (commit message)
// of a Save, for gateways that version the store.
const ChangeReasonKey contextKey = "change_reason"
