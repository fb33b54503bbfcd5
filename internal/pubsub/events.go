// Package pubsub provides an asynchronous, channel based fan-out used to feed
// background consumers (the playground activity pane) without blocking the
// synchronous diagram event bus.
package pubsub

import (
	"context"
	"time"
)

// Topic names the stream an event was published on. The log publishes each
// entry under its category.
type Topic string

// Event is a published item with a typed payload.
type Event[T any] struct {
	Topic     Topic
	Payload   T
	Timestamp time.Time
}

// Subscriber hands out channels of events. With no topics a subscription
// receives everything.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context, topics ...Topic) <-chan Event[T]
}

// Publisher allows publishing events with a typed payload.
type Publisher[T any] interface {
	Publish(topic Topic, payload T)
}
