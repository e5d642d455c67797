package fs

import (
	"slices"
	"time"

	"github.com/aretw0/introspection"
)

// GatewayState exposes internal state for observability.
type GatewayState struct {
	Versioning    bool       `json:"versioning"`
	LockTimeout   string     `json:"lock_timeout"`
	Loads         int        `json:"loads"`
	Saves         int        `json:"saves"`
	LastSave      *time.Time `json:"last_save,omitempty"`
	WatcherActive bool       `json:"watcher_active"`
	LocksHeld     []string   `json:"locks_held,omitempty"`
}

// State implements introspection.Introspectable.
func (g *Gateway) State() any {
	g.mu.RLock()
	defer g.mu.RUnlock()

	locks := make([]string, 0, len(g.locksHeld))
	for p := range g.locksHeld {
		locks = append(locks, p)
	}
	slices.Sort(locks)

	return GatewayState{
		Versioning:    g.config.Versioning,
		LockTimeout:   g.config.LockTimeout.String(),
		Loads:         g.loads,
		Saves:         g.saves,
		LastSave:      g.lastSave,
		WatcherActive: g.watcherActive,
		LocksHeld:     locks,
	}
}

// ComponentType implements introspection.Component.
func (g *Gateway) ComponentType() string {
	return "fs-gateway"
}

var _ introspection.Introspectable = (*Gateway)(nil)
var _ introspection.Component = (*Gateway)(nil)

func (g *Gateway) setWatcherActive(active bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.watcherActive = active
}
