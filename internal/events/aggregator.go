package events

import (
	"reflect"

	"github.com/zjrosen/diagramkit/internal/log"
)

// stream is the type-erased view of a Typed stream the aggregator keeps.
type stream interface {
	Len() int
}

// Aggregator routes events to one Typed stream per Go event type.
type Aggregator struct {
	streams map[reflect.Type]stream
}

// NewAggregator creates an empty bus.
func NewAggregator() *Aggregator {
	return &Aggregator{streams: make(map[reflect.Type]stream)}
}

func streamFor[E any](a *Aggregator, create bool) *Typed[E] {
	key := reflect.TypeFor[E]()
	if s, ok := a.streams[key]; ok {
		return s.(*Typed[E])
	}
	if !create {
		return nil
	}
	t := NewTyped[E]()
	a.streams[key] = t
	return t
}

// SubscribeTo subscribes fn to events of type E, creating the stream if needed.
func SubscribeTo[E any](a *Aggregator, fn func(E)) *Subscription {
	return streamFor[E](a, true).Subscribe(fn)
}

// SubscribeWhere subscribes fn but only invokes it for events matching pred.
// The guard and handler share one subscription.
func SubscribeWhere[E any](a *Aggregator, pred func(E) bool, fn func(E)) *Subscription {
	return SubscribeTo(a, func(e E) {
		if pred(e) {
			fn(e)
		}
	})
}

// Publish delivers e to the subscribers of its type. Publishing a type nobody
// subscribed to is a no-op. A nil aggregator drops the event, which is what
// detached entities rely on.
func Publish[E any](a *Aggregator, e E) {
	if a == nil {
		return
	}
	t := streamFor[E](a, false)
	if t == nil || t.Len() == 0 {
		return
	}
	log.Debug(log.CatBus, "publish", "event", reflect.TypeFor[E]().String(), "subscribers", t.Len())
	t.Publish(e)
}

// SubscriberCount returns how many handlers listen for E.
func SubscriberCount[E any](a *Aggregator) int {
	t := streamFor[E](a, false)
	if t == nil {
		return 0
	}
	return t.Len()
}

// Streams returns the number of event types that have ever been subscribed to.
func (a *Aggregator) Streams() int {
	return len(a.streams)
}
