package platform

import (
	"log/slog"
	"time"

	"github.com/aretw0/locknote/pkg/core"
	"github.com/aretw0/locknote/pkg/crypto"
)

// options holds the internal configuration for a locknote service.
type options struct {
	gateway      core.Gateway
	prompter     core.Prompter
	logger       *slog.Logger
	cipher       crypto.Suite
	kdf          crypto.Params
	searchPolicy core.SearchPolicy
	versioning   bool
	lockTimeout  time.Duration
	errorHandler func(error)
}

// Option defines a functional option for configuring locknote.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		cipher:       crypto.AES256GCM,
		kdf:          crypto.DefaultParams(),
		searchPolicy: core.SkipFailures,
	}
}

// WithLogger sets the logger for the service and the default gateway.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithGateway injects a custom storage adapter (e.g. in-memory for tests).
// The filesystem gateway options are then ignored.
func WithGateway(gw core.Gateway) Option {
	return func(o *options) {
		o.gateway = gw
	}
}

// WithPrompter replaces the terminal as the source of passwords and note text.
func WithPrompter(p core.Prompter) Option {
	return func(o *options) {
		o.prompter = p
	}
}

// WithCipher selects the AEAD suite for new stores and re-keyed ones.
func WithCipher(suite crypto.Suite) Option {
	return func(o *options) {
		o.cipher = suite
	}
}

// WithKDFParams sets the Argon2id cost for new stores and re-keyed ones.
func WithKDFParams(p crypto.Params) Option {
	return func(o *options) {
		o.kdf = p
	}
}

// WithSearchPolicy decides how search treats notes that fail to decrypt.
func WithSearchPolicy(p core.SearchPolicy) Option {
	return func(o *options) {
		o.searchPolicy = p
	}
}

// WithVersioning commits the store file to git after every change.
// Disabled by default.
func WithVersioning(enabled bool) Option {
	return func(o *options) {
		o.versioning = enabled
	}
}

// WithLockTimeout bounds how long a command waits for the store lock.
func WithLockTimeout(d time.Duration) Option {
	return func(o *options) {
		o.lockTimeout = d
	}
}

// WithErrorHandler registers a callback for non-fatal runtime errors
// (watcher failures, failed commits) which are otherwise only logged.
func WithErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.errorHandler = fn
	}
}
