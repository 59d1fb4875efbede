package realtime

import (
	"context"
	"encoding/json"
	"sync"
)

// Envelope is one room-scoped delivery. Except names a connection that must
// not receive it.
type Envelope struct {
	Room    string          `json:"room"`
	Except  string          `json:"except,omitempty"`
	Payload json.RawMessage `json:"payload"`
}

// Broker fans envelopes out to every gateway instance, the local one
// included.
type Broker interface {
	// Subscribe registers the delivery handler. It must be called once,
	// before the first Publish.
	Subscribe(ctx context.Context, handler func(Envelope)) error
	Publish(ctx context.Context, env Envelope) error
	Close() error
}

// LocalBroker delivers in-process. It is enough for a single instance.
type LocalBroker struct {
	mu      sync.RWMutex
	handler func(Envelope)
}

func NewLocalBroker() *LocalBroker {
	return &LocalBroker{}
}

func (b *LocalBroker) Subscribe(_ context.Context, handler func(Envelope)) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handler = handler
	return nil
}

func (b *LocalBroker) Publish(_ context.Context, env Envelope) error {
	b.mu.RLock()
	handler := b.handler
	b.mu.RUnlock()

	if handler != nil {
		handler(env)
	}
	return nil
}

func (b *LocalBroker) Close() error {
	return nil
}
