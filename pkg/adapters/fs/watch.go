package fs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime/debug"
	"slices"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/locknote/pkg/core"
)

// watchDebounce coalesces the burst of events an atomic save produces.
const watchDebounce = 50 * time.Millisecond

// snapshot is the part of a store the watcher compares between changes.
type snapshot struct {
	ids  []string
	salt []byte
}

type watchWorker struct {
	gateway *Gateway
	path    string
	watcher *fsnotify.Watcher
	events  chan core.Event
	last    snapshot
	// primed is false until a snapshot of the store has been read. The first
	// readable state becomes the baseline and emits nothing.
	primed bool
}

// Watch emits one event per note added to or removed from the store at path,
// plus EventRekey when the salt changes. The directory is watched rather than
// the file because atomic saves replace the inode.
func (g *Gateway) Watch(ctx context.Context, path string) (<-chan core.Event, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, &core.IOError{Op: "watch", Path: path, Err: err}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		_ = watcher.Close()
		return nil, &core.IOError{Op: "watch", Path: filepath.Dir(abs), Err: err}
	}

	w := &watchWorker{
		gateway: g,
		path:    abs,
		watcher: watcher,
		events:  make(chan core.Event),
	}
	w.prime(ctx)

	g.setWatcherActive(true)
	lifecycle.Go(ctx, w.run, lifecycle.WithErrorHandler(func(err error) {
		g.config.Logger.Error("watcher failed", "error", err)
		if g.config.ErrorHandler != nil {
			g.config.ErrorHandler(err)
		}
	}))
	return w.events, nil
}

// run is the main event loop. It closes the events channel on exit.
func (w *watchWorker) run(ctx context.Context) (err error) {
	logger := w.gateway.config.Logger
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("watcher panic: %v", recovered)
			if logger.Enabled(ctx, slog.LevelDebug) {
				logger.Error("watcher panic", "error", err, "stack", string(debug.Stack()))
			} else {
				logger.Error("watcher panic", "error", err)
			}
		}
	}()
	defer close(w.events)
	defer w.gateway.setWatcherActive(false)
	defer w.watcher.Close()

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return errors.New("watcher events channel closed")
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			logger.Debug("event received", "name", event.Name, "op", event.Op.String())
			pending = time.After(watchDebounce)

		case <-pending:
			pending = nil
			w.reconcile(ctx)

		case wErr, ok := <-w.watcher.Errors:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return errors.New("watcher errors channel closed")
			}
			logger.Error("fsnotify error", "error", wErr)
			if w.gateway.config.ErrorHandler != nil {
				w.gateway.config.ErrorHandler(wErr)
			}
		}
	}
}

// load reads the current snapshot. A missing store is an empty snapshot.
func (w *watchWorker) load(ctx context.Context) (snapshot, error) {
	s, err := w.gateway.Load(ctx, w.path)
	if errors.Is(err, core.ErrStoreNotFound) {
		return snapshot{}, nil
	}
	if err != nil {
		return snapshot{}, err
	}
	return snapshot{ids: s.List(), salt: s.Salt}, nil
}

// prime reads the baseline snapshot. An unreadable store is reported and
// leaves the worker unprimed.
func (w *watchWorker) prime(ctx context.Context) {
	last, err := w.load(ctx)
	if err != nil {
		w.report(err)
		return
	}
	w.last = last
	w.primed = true
}

// reconcile diffs the store against the last snapshot and emits the changes.
// Unreadable intermediate states are reported and skipped.
func (w *watchWorker) reconcile(ctx context.Context) {
	next, err := w.load(ctx)
	if err != nil {
		w.report(err)
		return
	}
	if !w.primed {
		w.last = next
		w.primed = true
		return
	}

	for _, e := range diffSnapshots(w.last, next, time.Now().Unix()) {
		select {
		case w.events <- e:
		case <-ctx.Done():
			return
		}
	}
	w.last = next
}

func diffSnapshots(prev, next snapshot, ts int64) []core.Event {
	var events []core.Event
	if len(prev.salt) > 0 && len(next.salt) > 0 && !bytes.Equal(prev.salt, next.salt) {
		events = append(events, core.Event{Type: core.EventRekey, Timestamp: ts})
	}
	for _, id := range next.ids {
		if !slices.Contains(prev.ids, id) {
			events = append(events, core.Event{Type: core.EventCreate, ID: id, Timestamp: ts})
		}
	}
	for _, id := range prev.ids {
		if !slices.Contains(next.ids, id) {
			events = append(events, core.Event{Type: core.EventDelete, ID: id, Timestamp: ts})
		}
	}
	return events
}

func (w *watchWorker) report(err error) {
	w.gateway.config.Logger.Warn("store unreadable while watching", "path", w.path, "error", err)
	if w.gateway.config.ErrorHandler != nil {
		w.gateway.config.ErrorHandler(err)
	}
}
