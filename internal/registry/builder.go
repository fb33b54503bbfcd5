package registry

import (
	"errors"
	"reflect"
)

// Builder collects mappings and validates them all at Build time.
type Builder struct {
	mappings []Mapping
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Map adds a model -> component mapping.
func (b *Builder) Map(modelType, component reflect.Type) *Builder {
	b.mappings = append(b.mappings, Mapping{Model: modelType, Component: component})
	return b
}

// Build registers every mapping in order and joins all failures.
func (b *Builder) Build() (*Registry, error) {
	r := NewRegistry()
	var errs []error
	for _, m := range b.mappings {
		if err := r.Register(m.Model, m.Component); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return r, nil
}

// MapType is the generic form of Map.
func MapType[M any, C Component](b *Builder) *Builder {
	return b.Map(reflect.TypeFor[M](), reflect.TypeFor[C]())
}
