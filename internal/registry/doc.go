// Package registry maps model types to the view component types that render
// them.
//
// The table is built explicitly at startup, usually through Builder. Lookup
// follows one rule: a mapping registered for the exact model type wins;
// otherwise the embedded (anonymous) struct fields of the model type are
// searched breadth first, so the nearest embedded ancestor with a mapping is
// used. A type that embeds model.Node therefore renders like a node until it
// gets a component of its own.
//
// Models that carry an extension (see model.Node.Extension) are resolved by
// the extension's type first, falling back to the model's own type.
//
// # Errors
//
// ErrNoComponent and ErrNotComponent are configuration errors: they surface
// while wiring a diagram, never during steady-state editing.
package registry
