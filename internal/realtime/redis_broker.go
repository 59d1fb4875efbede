package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"pet-adoption-marketplace/internal/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// RedisBroker shares rooms between instances over a Redis pub/sub channel.
type RedisBroker struct {
	client  *redis.Client
	channel string

	mu     sync.Mutex
	pubsub *redis.PubSub
	done   chan struct{}
}

// NewRedisBroker connects to redisURL, e.g. "redis://localhost:6379/0".
func NewRedisBroker(ctx context.Context, redisURL, channel string) (*RedisBroker, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewRedisBrokerWithClient(client, channel), nil
}

// NewRedisBrokerWithClient creates a broker from an existing Redis client
func NewRedisBrokerWithClient(client *redis.Client, channel string) *RedisBroker {
	return &RedisBroker{
		client:  client,
		channel: channel,
		done:    make(chan struct{}),
	}
}

// Subscribe waits for the subscription to be confirmed so that nothing
// published afterwards is missed.
func (b *RedisBroker) Subscribe(ctx context.Context, handler func(Envelope)) error {
	pubsub := b.client.Subscribe(ctx, b.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return fmt.Errorf("subscribe to %s: %w", b.channel, err)
	}

	b.mu.Lock()
	b.pubsub = pubsub
	b.mu.Unlock()

	log := logger.Named("realtime.redis")
	go func() {
		defer close(b.done)
		for msg := range pubsub.Channel() {
			var env Envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				log.Warn("Dropping malformed envelope", zap.Error(err))
				continue
			}
			handler(env)
		}
	}()
	return nil
}

func (b *RedisBroker) Publish(ctx context.Context, env Envelope) error {
	payload, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, b.channel, payload).Err()
}

func (b *RedisBroker) Close() error {
	b.mu.Lock()
	pubsub := b.pubsub
	b.pubsub = nil
	b.mu.Unlock()

	var err error
	if pubsub != nil {
		err = multierr.Append(err, pubsub.Close())
		<-b.done
	}
	return multierr.Append(err, b.client.Close())
}
