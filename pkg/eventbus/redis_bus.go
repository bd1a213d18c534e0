package eventbus

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBus is a Redis Pub/Sub-backed event transport for multi-process
// deployments where observers run outside the agent process.
type RedisBus struct {
	client        redis.UniversalClient
	channelPrefix string
	bufferSize    int

	mu          sync.RWMutex
	subscribers map[string]*redisSubscription
	closed      bool
}

type redisSubscription struct {
	pubsub *redis.PubSub
	ch     chan Message
	cancel context.CancelFunc
}

// NewRedisBus creates a new Redis-backed event transport.
func NewRedisBus(client redis.UniversalClient, channelPrefix string, bufferSize int) *RedisBus {
	if channelPrefix == "" {
		channelPrefix = "anima:events:"
	}
	if bufferSize <= 0 {
		bufferSize = 16
	}
	return &RedisBus{
		client:        client,
		channelPrefix: channelPrefix,
		bufferSize:    bufferSize,
		subscribers:   make(map[string]*redisSubscription),
	}
}

// Publish sends an event payload via Redis Pub/Sub.
func (b *RedisBus) Publish(ctx context.Context, subject string, payload []byte) error {
	if subject == "" {
		return fmt.Errorf("eventbus: subject cannot be empty")
	}

	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return fmt.Errorf("eventbus: bus is closed")
	}
	b.mu.RUnlock()

	channel := b.channelPrefix + subject
	if err := b.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("eventbus: redis publish: %w", err)
	}
	return nil
}

// Subscribe creates a channel that receives events matching the given
// subject pattern via Redis Pub/Sub pattern subscriptions.
func (b *RedisBus) Subscribe(ctx context.Context, pattern string, buffer int) (<-chan Message, error) {
	if pattern == "" {
		return nil, fmt.Errorf("eventbus: subscription pattern cannot be empty")
	}
	if buffer <= 0 {
		buffer = b.bufferSize
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, fmt.Errorf("eventbus: bus is closed")
	}
	if _, exists := b.subscribers[pattern]; exists {
		return nil, fmt.Errorf("eventbus: pattern %s already subscribed", pattern)
	}

	pubsub := b.client.PSubscribe(ctx, b.channelPrefix+redisPattern(pattern))

	ch := make(chan Message, buffer)
	subCtx, cancel := context.WithCancel(ctx)

	sub := &redisSubscription{
		pubsub: pubsub,
		ch:     ch,
		cancel: cancel,
	}
	b.subscribers[pattern] = sub

	// Background goroutine to forward Redis messages to the channel.
	go b.forwardMessages(subCtx, pubsub, ch)

	return ch, nil
}

func (b *RedisBus) forwardMessages(ctx context.Context, pubsub *redis.PubSub, ch chan Message) {
	defer func() {
		_ = pubsub.Close()
	}()

	redisCh := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-redisCh:
			if !ok {
				return
			}
			delivered := Message{
				Subject:   strings.TrimPrefix(msg.Channel, b.channelPrefix),
				Payload:   []byte(msg.Payload),
				Timestamp: time.Now().UTC(),
			}
			select {
			case ch <- delivered:
			default:
				// Buffer full: drop the oldest message and retry once.
				select {
				case <-ch:
				default:
				}
				select {
				case ch <- delivered:
				default:
				}
			}
		}
	}
}

// Unsubscribe removes the Redis subscription for the given pattern.
func (b *RedisBus) Unsubscribe(pattern string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub, ok := b.subscribers[pattern]
	if !ok {
		return nil
	}

	sub.cancel()
	close(sub.ch)
	delete(b.subscribers, pattern)
	return nil
}

// Close shuts down all subscriptions and the bus.
func (b *RedisBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}

	b.closed = true
	for pattern, sub := range b.subscribers {
		sub.cancel()
		close(sub.ch)
		delete(b.subscribers, pattern)
	}
	return nil
}

// Healthy checks if the Redis connection is alive.
func (b *RedisBus) Healthy() bool {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return false
	}
	b.mu.RUnlock()

	return b.client.Ping(context.Background()).Err() == nil
}

// redisPattern converts a subject pattern to a Redis glob pattern.
// The ".>" suffix and "*" segments both map onto Redis globs.
func redisPattern(pattern string) string {
	if strings.HasSuffix(pattern, ".>") {
		return strings.TrimSuffix(pattern, ".>") + ".*"
	}
	return pattern
}
