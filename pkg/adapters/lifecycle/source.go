// Package lifecycle bridges store events to github.com/aretw0/lifecycle.
package lifecycle

import (
	"context"
	"slices"
	"time"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/locknote/pkg/core"
)

// NoteEvent is the lifecycle.Event emitted for a store change.
type NoteEvent struct {
	core.Event
}

// String renders the event as "15:04:05 CREATE <id>" using the time the
// change was observed.
func (e NoteEvent) String() string {
	return time.Unix(e.Timestamp, 0).Format(time.TimeOnly) + " " + e.Event.String()
}

// NoteSource re-emits store events as lifecycle events.
type NoteSource struct {
	events <-chan core.Event
	types  []core.EventType
	out    chan lifecycle.Event
}

// NewSource creates a source over events. When types is non-empty only
// those event types are forwarded.
func NewSource(events <-chan core.Event, types ...core.EventType) *NoteSource {
	return &NoteSource{
		events: events,
		types:  types,
		out:    make(chan lifecycle.Event),
	}
}

// Events implements lifecycle.Source.
func (s *NoteSource) Events() <-chan lifecycle.Event {
	return s.out
}

// Start forwards events until ctx is done or the input channel closes,
// then closes Events.
func (s *NoteSource) Start(ctx context.Context) error {
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-s.events:
				if !ok {
					return nil
				}
				if !s.accepts(e.Type) {
					continue
				}
				select {
				case s.out <- NoteEvent{Event: e}:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	return nil
}

func (s *NoteSource) accepts(t core.EventType) bool {
	return len(s.types) == 0 || slices.Contains(s.types, t)
}

var _ lifecycle.Source = (*NoteSource)(nil)
