// Package inproc implements [messaging.Broker] for a single process: all
// instances share one [Broker] value and deliveries are handed off
// in-memory, with no serialization. It is grounded on the teacher's
// `log/publisher.go` fan-out design (buffered channel per subscriber,
// ring-buffer-drop-oldest on a full channel, mutex-guarded subscriber
// bookkeeping), generalized from a single []byte stream to routed
// [messaging.Delivery] values across three exchanges.
package inproc

import (
	"context"
	"strings"
	"sync"

	"go.karabo.dev/control/messaging"
)

const defaultBufferSize = 256

// Broker is an in-memory [messaging.Broker]. Since there is no real broker
// topology to bind to, subscriptions are matched client-side against each
// publish's routing key using AMQP-style topic matching restricted to the
// "#" wildcard (the only wildcard this fabric's routing keys ever need).
type Broker struct {
	mu          sync.Mutex
	closed      bool
	bufSize     int
	subscribers map[messaging.Exchange][]*subscription
}

type subscription struct {
	bindingKey string
	ch         chan messaging.Delivery
	closed     bool
}

// Option configures a [Broker].
type Option func(*Broker)

// WithBufferSize sets the per-subscription channel buffer size. Values
// less than 1 are clamped to 1.
func WithBufferSize(n int) Option {
	return func(b *Broker) {
		if n < 1 {
			n = 1
		}

		b.bufSize = n
	}
}

// New returns an empty, ready-to-use Broker.
func New(opts ...Option) *Broker {
	b := &Broker{
		bufSize:     defaultBufferSize,
		subscribers: map[messaging.Exchange][]*subscription{},
	}
	for _, opt := range opts {
		opt(b)
	}

	return b
}

// topicMatch reports whether routingKey satisfies bindingKey, supporting
// an exact match, a bare "#" matching everything, and a "<prefix>.#"
// binding matching any routing key sharing that dot-separated prefix.
func topicMatch(bindingKey, routingKey string) bool {
	if bindingKey == messaging.WildcardKey {
		return true
	}
	if bindingKey == routingKey {
		return true
	}
	if prefix, ok := strings.CutSuffix(bindingKey, "."+messaging.WildcardKey); ok {
		return routingKey == prefix || strings.HasPrefix(routingKey, prefix+".")
	}

	return false
}

// Publish delivers env to every subscription on exchange whose binding key
// matches routingKey, dropping the oldest buffered delivery for any
// subscriber whose channel is full rather than blocking the publisher.
func (b *Broker) Publish(ctx context.Context, exchange messaging.Exchange, routingKey string, env messaging.Envelope) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return messaging.ErrClosed
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	d := messaging.Delivery{RoutingKey: routingKey, Envelope: env}

	alive := b.subscribers[exchange][:0]
	for _, sub := range b.subscribers[exchange] {
		if sub.closed {
			continue
		}

		if topicMatch(sub.bindingKey, routingKey) {
			select {
			case sub.ch <- d:
			default:
				<-sub.ch
				sub.ch <- d
			}
		}

		alive = append(alive, sub)
	}

	b.subscribers[exchange] = alive

	return nil
}

// Subscribe registers a binding on exchange and returns the delivery
// channel and an unsubscribe function. The channel is closed once
// unsubscribe is called or Close runs.
func (b *Broker) Subscribe(ctx context.Context, exchange messaging.Exchange, bindingKey string) (<-chan messaging.Delivery, func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, nil, messaging.ErrClosed
	}

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	sub := &subscription{
		bindingKey: bindingKey,
		ch:         make(chan messaging.Delivery, b.bufSize),
	}
	b.subscribers[exchange] = append(b.subscribers[exchange], sub)

	unsub := func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		if !sub.closed {
			sub.closed = true
			close(sub.ch)
		}
	}

	return sub.ch, unsub, nil
}

// Close marks the Broker closed and closes every subscription channel.
// Idempotent.
func (b *Broker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}

	b.closed = true

	for _, subs := range b.subscribers {
		for _, sub := range subs {
			if !sub.closed {
				close(sub.ch)
				sub.closed = true
			}
		}
	}

	b.subscribers = nil

	return nil
}
