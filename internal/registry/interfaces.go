package registry

import "reflect"

// Provider is the read side of Registry that renderers depend on.
type Provider interface {
	// ComponentType resolves the component type for a model type.
	// Returns ErrNoComponent if neither the type nor an embedded ancestor is mapped.
	ComponentType(modelType reflect.Type) (reflect.Type, error)

	// ComponentFor resolves the component type for a model value.
	ComponentFor(m any) (reflect.Type, error)

	// Instantiate creates and binds a component for m.
	Instantiate(m any) (Component, error)

	// Mappings lists the direct mappings.
	Mappings() []Mapping
}

// Compile-time check that Registry implements Provider.
var _ Provider = (*Registry)(nil)
