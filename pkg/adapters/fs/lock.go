package fs

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/aretw0/locknote/pkg/core"
)

// LockSuffix is appended to the store path to name its lock file.
const LockSuffix = ".lock"

const lockPollInterval = 10 * time.Millisecond

// Lock acquires an advisory lock on the store at path by creating
// <path>.lock exclusively. It polls until the lock is free, ctx is done or
// the configured timeout expires.
func (g *Gateway) Lock(ctx context.Context, path string) (func(), error) {
	lockPath := path + LockSuffix

	ctx, cancel := context.WithTimeout(ctx, g.config.LockTimeout)
	defer cancel()

	ticker := time.NewTicker(lockPollInterval)
	defer ticker.Stop()

	for {
		f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
		if err == nil {
			_, _ = f.WriteString(strconv.Itoa(os.Getpid()))
			f.Close()
			g.setLockHeld(lockPath, true)
			g.config.Logger.Debug("lock acquired", "path", lockPath)
			return func() {
				os.Remove(lockPath)
				g.setLockHeld(lockPath, false)
				g.config.Logger.Debug("lock released", "path", lockPath)
			}, nil
		}

		if !os.IsExist(err) {
			return nil, &core.IOError{Op: "lock", Path: lockPath, Err: err}
		}

		select {
		case <-ctx.Done():
			return nil, &core.IOError{
				Op:   "lock",
				Path: lockPath,
				Err:  fmt.Errorf("%w (remove %s if no other locknote is running)", core.ErrLocked, lockPath),
			}
		case <-ticker.C:
		}
	}
}

func (g *Gateway) setLockHeld(lockPath string, held bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if held {
		g.locksHeld[lockPath] = struct{}{}
	} else {
		delete(g.locksHeld, lockPath)
	}
}
