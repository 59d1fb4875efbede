package events

import (
	"context"

	"go.uber.org/multierr"
)

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// Multi fans an event out to several publishers and reports every failure.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, event Event) error {
	var err error
	for _, p := range m {
		if p == nil {
			continue
		}
		err = multierr.Append(err, p.Publish(ctx, event))
	}
	return err
}

func (m Multi) Close() error {
	var err error
	for _, p := range m {
		if c, ok := p.(Closer); ok {
			err = multierr.Append(err, c.Close())
		}
	}
	return err
}
