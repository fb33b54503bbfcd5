package behaviour

import (
	"fmt"

	"github.com/zjrosen/diagramkit/internal/events"
	"github.com/zjrosen/diagramkit/internal/log"
)

// Behaviour is anything the Container can own.
type Behaviour interface {
	Dispose()
}

// Base tracks a behaviour's bus subscriptions and toggles them with the
// enabled flag of its options.
type Base struct {
	host       Host
	options    Options
	attach     func()
	reset      func()
	subs       []*events.Subscription
	optionsSub *events.Subscription
	attached   bool
	disposed   bool
	name       string
}

// Init binds the behaviour to host and opts. attach registers the handlers
// and runs immediately when opts is enabled.
func (b *Base) Init(host Host, opts Options, attach func()) {
	b.host = host
	b.options = opts
	b.attach = attach
	b.name = fmt.Sprintf("%T", opts)
	b.optionsSub = opts.EnabledChanged().Subscribe(func(enabled bool) {
		if enabled {
			b.Attach()
		} else {
			b.Detach()
		}
	})
	if opts.Enabled() {
		b.Attach()
	}
}

// OnDetach sets fn to run every time the behaviour detaches. Behaviours clear
// gesture state there.
func (b *Base) OnDetach(fn func()) { b.reset = fn }

// Host returns the host the behaviour mutates through.
func (b *Base) Host() Host { return b.host }

// Attached reports whether the handlers are currently subscribed.
func (b *Base) Attached() bool { return b.attached }

// Subscriptions returns the number of live bus subscriptions.
func (b *Base) Subscriptions() int { return len(b.subs) }

// Attach subscribes the handlers. Calling it while attached does nothing.
func (b *Base) Attach() {
	if b.attached || b.disposed || b.attach == nil {
		return
	}
	b.attached = true
	b.attach()
	log.Debug(log.CatBehaviour, "behaviour attached", "options", b.name, "subscriptions", len(b.subs))
}

// Detach releases every bus subscription.
func (b *Base) Detach() {
	if !b.attached {
		return
	}
	for _, s := range b.subs {
		s.Unsubscribe()
	}
	b.subs = nil
	b.attached = false
	if b.reset != nil {
		b.reset()
	}
	log.Debug(log.CatBehaviour, "behaviour detached", "options", b.name)
}

// Dispose detaches and stops following the options.
func (b *Base) Dispose() {
	if b.disposed {
		return
	}
	b.Detach()
	b.optionsSub.Unsubscribe()
	b.disposed = true
}

// On subscribes fn to events of type E for as long as b stays attached.
func On[E any](b *Base, fn func(E)) {
	b.subs = append(b.subs, events.SubscribeTo(b.host.Bus(), fn))
}

// OnWhere is On with a predicate guard.
func OnWhere[E any](b *Base, pred func(E) bool, fn func(E)) {
	b.subs = append(b.subs, events.SubscribeWhere(b.host.Bus(), pred, fn))
}
