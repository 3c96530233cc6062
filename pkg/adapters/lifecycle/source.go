// Package lifecycle exposes the custody timeline as a lifecycle.Source so it
// can be consumed by the same supervision tooling as any other event stream.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/custody/pkg/core"
)

// Watcher is satisfied by *core.Service.
type Watcher interface {
	Watch(ctx context.Context) (<-chan core.TimelineEvent, error)
}

// ErrAlreadyStarted is returned by a second Start on the same source.
var ErrAlreadyStarted = errors.New("timeline source already started")

type timelineSource struct {
	watcher Watcher
	out     chan lifecycle.Event

	mu      sync.Mutex
	started bool
}

// NewSource returns a lifecycle.Source emitting timeline events.
// The subscription is opened on Start and released when its context ends.
func NewSource(w Watcher) lifecycle.Source {
	return &timelineSource{
		watcher: w,
		out:     make(chan lifecycle.Event),
	}
}

func (s *timelineSource) Events() <-chan lifecycle.Event {
	return s.out
}

// Start subscribes once; Events is closed when the subscription ends.
func (s *timelineSource) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return ErrAlreadyStarted
	}
	s.started = true

	events, err := s.watcher.Watch(ctx)
	if err != nil {
		close(s.out)
		return fmt.Errorf("subscribe timeline: %w", err)
	}

	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-events:
				if !ok {
					return nil
				}
				// core.TimelineEvent has String(), which is all lifecycle.Event asks.
				select {
				case s.out <- e:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	return nil
}
