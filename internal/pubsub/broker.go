package pubsub

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

const defaultBufferSize = 128

type subscription[T any] struct {
	ch     chan Event[T]
	topics []Topic
	stop   func() bool
}

func (s *subscription[T]) wants(t Topic) bool {
	return len(s.topics) == 0 || slices.Contains(s.topics, t)
}

// Broker fans published events out to subscriber channels. Publish never
// blocks: an event for a full channel is dropped and counted.
type Broker[T any] struct {
	mu      sync.Mutex
	subs    []*subscription[T]
	closed  bool
	buffer  int
	dropped atomic.Uint64
}

var _ Subscriber[string] = (*Broker[string])(nil)
var _ Publisher[string] = (*Broker[string])(nil)

func NewBroker[T any]() *Broker[T] {
	return NewBrokerWithBuffer[T](defaultBufferSize)
}

// NewBrokerWithBuffer creates a broker whose subscriber channels hold size
// events. Sizes below one are raised to one.
func NewBrokerWithBuffer[T any](size int) *Broker[T] {
	return &Broker[T]{buffer: max(size, 1)}
}

// Subscribe returns a channel receiving events on topics, or on every topic
// when none are given. The channel is closed when ctx ends or the broker
// closes; subscribing to a closed broker yields a closed channel.
func (b *Broker[T]) Subscribe(ctx context.Context, topics ...Topic) <-chan Event[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		ch := make(chan Event[T])
		close(ch)
		return ch
	}
	s := &subscription[T]{ch: make(chan Event[T], b.buffer), topics: slices.Clone(topics)}
	s.stop = context.AfterFunc(ctx, func() { b.unsubscribe(s) })
	b.subs = append(b.subs, s)
	return s.ch
}

func (b *Broker[T]) unsubscribe(s *subscription[T]) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i := slices.Index(b.subs, s); i >= 0 {
		b.subs = slices.Delete(b.subs, i, i+1)
		close(s.ch)
	}
}

func (b *Broker[T]) Publish(topic Topic, payload T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}

	event := Event[T]{Topic: topic, Payload: payload, Timestamp: time.Now()}
	for _, s := range b.subs {
		if !s.wants(topic) {
			continue
		}
		select {
		case s.ch <- event:
		default:
			b.dropped.Add(1)
		}
	}
}

// Close closes every subscriber channel. Later calls do nothing.
func (b *Broker[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, s := range b.subs {
		s.stop()
		close(s.ch)
	}
	b.subs = nil
}

func (b *Broker[T]) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Dropped counts deliveries skipped because a subscriber's channel was full.
func (b *Broker[T]) Dropped() uint64 {
	return b.dropped.Load()
}
