package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/locknote/pkg/core"
	"github.com/aretw0/locknote/pkg/crypto"
)

// Config is the content of a .locknote.yaml file. Every field is optional.
//
//	store: notes/locknote.json
//	cipher: chacha20-poly1305
//	kdf: {time: 3, memory: 65536, threads: 4}
//	search_policy: fail-fast
//	versioning: true
//	lock_timeout: 10s
type Config struct {
	Store        string         `yaml:"store"`
	Cipher       string         `yaml:"cipher"`
	KDF          *crypto.Params `yaml:"kdf"`
	SearchPolicy string         `yaml:"search_policy"`
	Versioning   *bool          `yaml:"versioning"`
	LockTimeout  string         `yaml:"lock_timeout"`

	// dir is where the file was found; relative store paths resolve against it.
	dir string
}

// LoadConfig reads and validates a configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &core.ConfigurationError{Path: path, Err: err}
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &core.ConfigurationError{Path: path, Err: fmt.Errorf("invalid yaml: %w", err)}
	}
	cfg.dir = filepath.Dir(path)

	if _, err := cfg.Options(); err != nil {
		return nil, &core.ConfigurationError{Path: path, Err: err}
	}
	return &cfg, nil
}

// DiscoverConfig loads the nearest configuration file above startDir.
// It returns nil without error when there is none.
func DiscoverConfig(startDir string) (*Config, error) {
	path, err := FindConfig(startDir)
	if errors.Is(err, ErrConfigNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return LoadConfig(path)
}

// StorePath returns the configured store path, resolved against the directory
// of the configuration file. Empty when unset.
func (c *Config) StorePath() string {
	if c == nil || c.Store == "" {
		return ""
	}
	if filepath.IsAbs(c.Store) || c.dir == "" {
		return c.Store
	}
	return filepath.Join(c.dir, c.Store)
}

// Options translates the file into functional options. They are meant to be
// applied before command-line overrides.
func (c *Config) Options() ([]Option, error) {
	if c == nil {
		return nil, nil
	}
	var opts []Option

	if c.Cipher != "" {
		suite, err := crypto.ParseSuite(c.Cipher)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithCipher(suite))
	}
	if c.KDF != nil {
		if err := c.KDF.Validate(); err != nil {
			return nil, err
		}
		opts = append(opts, WithKDFParams(*c.KDF))
	}
	if c.SearchPolicy != "" {
		policy, err := core.ParseSearchPolicy(c.SearchPolicy)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithSearchPolicy(policy))
	}
	if c.Versioning != nil {
		opts = append(opts, WithVersioning(*c.Versioning))
	}
	if c.LockTimeout != "" {
		d, err := time.ParseDuration(c.LockTimeout)
		if err != nil {
			return nil, fmt.Errorf("invalid lock_timeout: %w", err)
		}
		opts = append(opts, WithLockTimeout(d))
	}
	return opts, nil
}
