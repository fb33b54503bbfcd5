package registry

import (
	"errors"
	"fmt"
	"reflect"
	"sort"

	"github.com/zjrosen/diagramkit/internal/log"
)

// Registry errors
var (
	ErrNoComponent  = errors.New("no component registered for model type")
	ErrNotComponent = errors.New("type does not implement registry.Component")
	ErrNilType      = errors.New("type cannot be nil")
)

// Component is the view contract every registered component type satisfies.
type Component interface {
	// Bind attaches the component to the model it renders.
	Bind(model any) error
	// Render draws the bound model into a width x height cell area.
	Render(width, height int) string
}

var componentType = reflect.TypeFor[Component]()

// extender is implemented by models that carry a wrapper value.
type extender interface {
	Extension() any
}

// Mapping is one model -> component entry.
type Mapping struct {
	Model     reflect.Type
	Component reflect.Type
}

// Registry holds the model -> component table.
type Registry struct {
	components map[reflect.Type]reflect.Type
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{components: make(map[reflect.Type]reflect.Type)}
}

// Register maps modelType to componentType. A later registration for the same
// model type replaces the earlier one.
func (r *Registry) Register(modelType, component reflect.Type) error {
	if modelType == nil || component == nil {
		return ErrNilType
	}
	ct, ok := asComponent(component)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotComponent, component)
	}
	key := normalize(modelType)
	r.components[key] = ct
	log.Debug(log.CatRegistry, "component registered", "model", key.String(), "component", ct.String())
	return nil
}

// asComponent returns the form of t (t itself or *t) that implements Component.
func asComponent(t reflect.Type) (reflect.Type, bool) {
	if t.Implements(componentType) {
		return t, true
	}
	if t.Kind() != reflect.Pointer && reflect.PointerTo(t).Implements(componentType) {
		return reflect.PointerTo(t), true
	}
	return nil, false
}

func normalize(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

// ComponentType resolves the component for modelType: a direct mapping
// first, then the nearest embedded ancestor.
func (r *Registry) ComponentType(modelType reflect.Type) (reflect.Type, error) {
	if modelType == nil {
		return nil, ErrNilType
	}
	start := normalize(modelType)
	queue := []reflect.Type{start}
	seen := map[reflect.Type]bool{start: true}
	for len(queue) > 0 {
		t := queue[0]
		queue = queue[1:]
		if ct, ok := r.components[t]; ok {
			return ct, nil
		}
		if t.Kind() != reflect.Struct {
			continue
		}
		for i := range t.NumField() {
			f := t.Field(i)
			if !f.Anonymous {
				continue
			}
			ft := normalize(f.Type)
			if !seen[ft] {
				seen[ft] = true
				queue = append(queue, ft)
			}
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNoComponent, start)
}

// ComponentFor resolves the component for a model value, preferring its
// extension when it has one that resolves.
func (r *Registry) ComponentFor(m any) (reflect.Type, error) {
	if m == nil {
		return nil, ErrNilType
	}
	if ext, ok := m.(extender); ok {
		if v := ext.Extension(); v != nil {
			if ct, err := r.ComponentType(reflect.TypeOf(v)); err == nil {
				return ct, nil
			}
		}
	}
	return r.ComponentType(reflect.TypeOf(m))
}

// Instantiate creates a component for m and binds it. The bound value is the
// extension when the component was resolved through it.
func (r *Registry) Instantiate(m any) (Component, error) {
	ct, err := r.ComponentFor(m)
	if err != nil {
		return nil, err
	}
	var c Component
	if ct.Kind() == reflect.Pointer {
		c = reflect.New(ct.Elem()).Interface().(Component)
	} else {
		c = reflect.Zero(ct).Interface().(Component)
	}
	target := m
	if ext, ok := m.(extender); ok && ext.Extension() != nil {
		if et, err := r.ComponentType(reflect.TypeOf(ext.Extension())); err == nil && et == ct {
			target = ext.Extension()
		}
	}
	if err := c.Bind(target); err != nil {
		return nil, fmt.Errorf("binding %s: %w", ct, err)
	}
	return c, nil
}

// Mappings returns the direct mappings sorted by model type name.
func (r *Registry) Mappings() []Mapping {
	out := make([]Mapping, 0, len(r.components))
	for m, c := range r.components {
		out = append(out, Mapping{Model: m, Component: c})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Model.String() < out[j].Model.String()
	})
	return out
}

// Len returns the number of direct mappings.
func (r *Registry) Len() int {
	return len(r.components)
}
