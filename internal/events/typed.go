package events

// Subscription is the handle returned by every Subscribe call.
type Subscription struct {
	release func()
	done    bool
}

// Unsubscribe removes the handler. Calls after the first are no-ops.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.done {
		return
	}
	s.done = true
	if s.release != nil {
		s.release()
	}
}

// Active reports whether Unsubscribe has not been called yet.
func (s *Subscription) Active() bool {
	return s != nil && !s.done
}

type handler[E any] struct {
	id int
	fn func(E)
}

// Typed is a single synchronous event stream carrying values of type E.
type Typed[E any] struct {
	handlers []handler[E]
	nextID   int
}

// NewTyped creates an empty stream.
func NewTyped[E any]() *Typed[E] {
	return &Typed[E]{}
}

// Subscribe registers fn and returns its subscription.
func (t *Typed[E]) Subscribe(fn func(E)) *Subscription {
	t.nextID++
	id := t.nextID
	t.handlers = append(t.handlers, handler[E]{id: id, fn: fn})
	return &Subscription{release: func() { t.remove(id) }}
}

func (t *Typed[E]) remove(id int) {
	for i, h := range t.handlers {
		if h.id == id {
			// Copy instead of shifting in place so a snapshot held by an
			// in-flight Publish is never mutated.
			next := make([]handler[E], 0, len(t.handlers)-1)
			next = append(next, t.handlers[:i]...)
			next = append(next, t.handlers[i+1:]...)
			t.handlers = next
			return
		}
	}
}

// Publish invokes every handler subscribed at the moment of the call.
func (t *Typed[E]) Publish(e E) {
	snapshot := t.handlers
	for _, h := range snapshot {
		h.fn(e)
	}
}

// Len returns the number of live subscribers.
func (t *Typed[E]) Len() int {
	return len(t.handlers)
}
