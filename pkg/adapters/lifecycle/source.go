// Package lifecycle exposes post change events as a lifecycle.Source.
package lifecycle

import (
	"context"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/quill/pkg/core"
)

type postSource struct {
	events <-chan core.Event
	out    chan lifecycle.Event
}

// NewSource wraps a post event stream. The returned source forwards every
// core.Event until the input closes or the context passed to Start is done.
func NewSource(events <-chan core.Event) lifecycle.Source {
	return &postSource{
		events: events,
		out:    make(chan lifecycle.Event),
	}
}

func (s *postSource) Events() <-chan lifecycle.Event {
	return s.out
}

func (s *postSource) Start(ctx context.Context) error {
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
