package platform

import (
	"fmt"
	"path/filepath"

	"github.com/aretw0/locknote/pkg/adapters/fs"
	"github.com/aretw0/locknote/pkg/adapters/terminal"
	"github.com/aretw0/locknote/pkg/core"
	"github.com/aretw0/locknote/pkg/crypto"
)

// DefaultStoreFile is used when no store path is given.
const DefaultStoreFile = "locknote.json"

// New wires a service for the store at path.
//
//	svc, err := locknote.New("notes.json", locknote.WithCipher(crypto.ChaCha20Poly1305))
//
// An empty path means DefaultStoreFile in the working directory.
func New(path string, opts ...Option) (*core.Service, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	if path == "" {
		path = DefaultStoreFile
	}
	path = filepath.Clean(path)

	suite, err := crypto.ParseSuite(string(o.cipher))
	if err != nil {
		return nil, &core.ConfigurationError{Path: path, Err: err}
	}
	if err := o.kdf.Validate(); err != nil {
		return nil, &core.KeyDerivationError{Err: err}
	}
	policy, err := core.ParseSearchPolicy(string(o.searchPolicy))
	if err != nil {
		return nil, &core.ConfigurationError{Path: path, Err: err}
	}
	if o.lockTimeout < 0 {
		return nil, &core.ConfigurationError{Path: path, Err: fmt.Errorf("negative lock timeout %s", o.lockTimeout)}
	}

	gw := o.gateway
	if gw == nil {
		gw = fs.NewGateway(fs.Config{
			Logger:       o.logger,
			Versioning:   o.versioning,
			LockTimeout:  o.lockTimeout,
			ErrorHandler: o.errorHandler,
		})
	}
	prompter := o.prompter
	if prompter == nil {
		prompter = terminal.NewPrompter()
	}

	return core.NewService(gw, prompter, core.ServiceConfig{
		Path:         path,
		Cipher:       suite,
		KDF:          o.kdf,
		SearchPolicy: policy,
		Logger:       o.logger,
	}), nil
}
