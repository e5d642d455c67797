package fs

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aretw0/locknote/pkg/core"
	"github.com/aretw0/locknote/pkg/git"
)

// StorePerm is the mode of a store file. Only the owner may read it.
const StorePerm os.FileMode = 0600

// DefaultLockTimeout bounds how long Lock waits for another process.
const DefaultLockTimeout = 5 * time.Second

// Config holds the configuration for the filesystem gateway.
type Config struct {
	Logger *slog.Logger
	// Versioning commits the store file to git after every save.
	// The store's directory becomes a git repository on first save.
	Versioning bool
	// LockTimeout bounds Lock. Zero means DefaultLockTimeout.
	LockTimeout time.Duration
	// ErrorHandler receives non-fatal errors (watcher, versioning).
	ErrorHandler func(error)
}

// Gateway implements core.Gateway on top of a single JSON file per store.
type Gateway struct {
	config Config

	mu            sync.RWMutex
	loads         int
	saves         int
	lastSave      *time.Time
	watcherActive bool
	locksHeld     map[string]struct{}
}

// NewGateway creates a new filesystem-backed gateway.
func NewGateway(config Config) *Gateway {
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	if config.LockTimeout <= 0 {
		config.LockTimeout = DefaultLockTimeout
	}
	return &Gateway{
		config:    config,
		locksHeld: make(map[string]struct{}),
	}
}

// Exists reports whether a regular file is present at path.
func (g *Gateway) Exists(_ context.Context, path string) (bool, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, &core.IOError{Op: "stat", Path: path, Err: err}
	}
	if info.IsDir() {
		return false, &core.ConfigurationError{Path: path, Err: errors.New("path is a directory")}
	}
	return true, nil
}

// Load reads and decodes the store at path.
func (g *Gateway) Load(ctx context.Context, path string) (*core.Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &core.ConfigurationError{Path: path, Err: core.ErrStoreNotFound}
	}
	if err != nil {
		return nil, &core.IOError{Op: "read", Path: path, Err: err}
	}

	s, err := core.UnmarshalStore(data)
	if err != nil {
		var se *core.SerializationError
		if errors.As(err, &se) {
			se.Path = path
		}
		return nil, err
	}

	g.mu.Lock()
	g.loads++
	g.mu.Unlock()
	g.config.Logger.Debug("store loaded", "path", path, "notes", len(s.Notes))
	return s, nil
}

// Save encodes s and atomically replaces the file at path.
// The change reason carried by ctx (core.ChangeReasonKey) becomes the commit
// message when versioning is enabled.
func (g *Gateway) Save(ctx context.Context, path string, s *core.Store) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := core.MarshalStore(s)
	if err != nil {
		return &core.SerializationError{Path: path, Err: err}
	}
	if err := replaceStore(path, data); err != nil {
		return err
	}

	now := time.Now()
	g.mu.Lock()
	g.saves++
	g.lastSave = &now
	g.mu.Unlock()
	g.config.Logger.Debug("store saved", "path", path, "notes", len(s.Notes), "bytes", len(data))

	if g.config.Versioning {
		reason, _ := ctx.Value(core.ChangeReasonKey).(string)
		if err := g.commit(ctx, path, reason); err != nil {
			// The store is already on disk; a failed commit is only reported.
			g.config.Logger.Warn("versioning failed", "path", path, "error", err)
			if g.config.ErrorHandler != nil {
				g.config.ErrorHandler(err)
			}
		}
	}
	return nil
}

func (g *Gateway) commit(ctx context.Context, path, reason string) error {
	if !git.IsInstalled() {
		return errors.New("git is not installed")
	}
	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	client := git.NewClient(dir, g.config.Logger)
	if !client.InWorkTree(ctx) {
		if err := client.Init(ctx); err != nil {
			return err
		}
	}
	if reason == "" {
		reason = "update store"
	}
	if err := client.Add(ctx, name); err != nil {
		return err
	}
	msg := git.FormatCommitMessage(git.CommitTypeFor(reason), "store", reason, "")
	return client.Commit(ctx, msg, name)
}

var (
	_ core.Gateway   = (*Gateway)(nil)
	_ core.Locker    = (*Gateway)(nil)
	_ core.Watchable = (*Gateway)(nil)
)
