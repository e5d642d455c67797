package locknote

import (
	"log/slog"
	"time"

	"github.com/aretw0/locknote/internal/platform"
	"github.com/aretw0/locknote/pkg/core"
	"github.com/aretw0/locknote/pkg/crypto"
)

// --- Types ---

// Service is the notebook service returned by New.
type Service = core.Service

// Note is a decrypted note.
type Note = core.Note

// SearchPolicy decides how search treats notes that fail to decrypt.
type SearchPolicy = core.SearchPolicy

const (
	SkipFailures = core.SkipFailures
	FailFast     = core.FailFast
)

// Config is the content of a .locknote.yaml file.
type Config = platform.Config

// DefaultStoreFile is used when no store path is given.
const DefaultStoreFile = platform.DefaultStoreFile

// --- Configuration ---

// Option defines a functional option for configuring locknote.
type Option = platform.Option

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithGateway injects a custom storage adapter.
func WithGateway(gw core.Gateway) Option {
	return platform.WithGateway(gw)
}

// WithPrompter replaces the terminal as the source of passwords and note text.
func WithPrompter(p core.Prompter) Option {
	return platform.WithPrompter(p)
}

// WithCipher selects the AEAD suite for new stores.
func WithCipher(suite crypto.Suite) Option {
	return platform.WithCipher(suite)
}

// WithKDFParams sets the Argon2id cost for new stores.
func WithKDFParams(p crypto.Params) Option {
	return platform.WithKDFParams(p)
}

// WithSearchPolicy decides how search treats notes that fail to decrypt.
func WithSearchPolicy(p SearchPolicy) Option {
	return platform.WithSearchPolicy(p)
}

// WithVersioning commits the store file to git after every change.
func WithVersioning(enabled bool) Option {
	return platform.WithVersioning(enabled)
}

// WithLockTimeout bounds how long a command waits for the store lock.
func WithLockTimeout(d time.Duration) Option {
	return platform.WithLockTimeout(d)
}

// WithErrorHandler registers a callback for non-fatal runtime errors.
func WithErrorHandler(fn func(error)) Option {
	return platform.WithErrorHandler(fn)
}

// --- Factory ---

// New creates a service for the store at path.
func New(path string, opts ...Option) (*Service, error) {
	return platform.New(path, opts...)
}

// DiscoverConfig loads the nearest .locknote.yaml above dir, or returns nil.
func DiscoverConfig(dir string) (*Config, error) {
	return platform.DiscoverConfig(dir)
}
