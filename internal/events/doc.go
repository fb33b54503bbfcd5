// Package events implements the synchronous, typed publish/subscribe substrate
// every diagram mutation flows through.
//
// Typed[E] is a single event stream: Publish invokes the current subscribers in
// subscription order on the caller's stack. The subscriber list is snapshotted
// before dispatch, so handlers may subscribe or unsubscribe while a publish is
// in progress without affecting that publish.
//
// Aggregator is the per-diagram bus. It keys one Typed stream per Go event type
// and is passed explicitly to every entity and behaviour that needs it; there is
// no process-wide instance.
//
//	agg := events.NewAggregator()
//	sub := events.SubscribeTo(agg, func(e model.ZoomChanged) { ... })
//	defer sub.Unsubscribe()
//	events.Publish(agg, model.ZoomChanged{...})
//
// Nothing here is safe for concurrent use; hosts that drive a diagram from more
// than one goroutine must serialize access themselves.
package events
