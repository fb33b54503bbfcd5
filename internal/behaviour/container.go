package behaviour

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/zjrosen/diagramkit/internal/log"
)

// Container errors
var (
	ErrNilBehaviour       = errors.New("behaviour cannot be nil")
	ErrNilOptions         = errors.New("behaviour options cannot be nil")
	ErrDuplicateBehaviour = errors.New("behaviour of this type is already registered")
	ErrDuplicateOptions   = errors.New("options of this type are already registered")
	ErrOptionsNotFound    = errors.New("no options of this type are registered")
)

// Container owns a diagram's behaviours and their options.
type Container struct {
	behaviours []Behaviour
	options    []Options
}

// NewContainer creates an empty container.
func NewContainer() *Container {
	return &Container{}
}

// Register adds b. Only one behaviour per concrete type is allowed.
func (c *Container) Register(b Behaviour) error {
	if b == nil {
		return ErrNilBehaviour
	}
	t := reflect.TypeOf(b)
	for _, existing := range c.behaviours {
		if reflect.TypeOf(existing) == t {
			return fmt.Errorf("%w: %s", ErrDuplicateBehaviour, t)
		}
	}
	c.behaviours = append(c.behaviours, b)
	log.Debug(log.CatBehaviour, "behaviour registered", "type", t.String())
	return nil
}

// RegisterOptions adds o. Only one options value per concrete type is allowed.
func (c *Container) RegisterOptions(o Options) error {
	if o == nil {
		return ErrNilOptions
	}
	t := reflect.TypeOf(o)
	for _, existing := range c.options {
		if reflect.TypeOf(existing) == t {
			return fmt.Errorf("%w: %s", ErrDuplicateOptions, t)
		}
	}
	c.options = append(c.options, o)
	return nil
}

// Unregister disposes and removes b.
func (c *Container) Unregister(b Behaviour) bool {
	for i, existing := range c.behaviours {
		if existing == b {
			c.behaviours = append(c.behaviours[:i], c.behaviours[i+1:]...)
			b.Dispose()
			return true
		}
	}
	return false
}

// Behaviours returns the registered behaviours in registration order.
func (c *Container) Behaviours() []Behaviour {
	return append([]Behaviour(nil), c.behaviours...)
}

// Options returns the registered options in registration order.
func (c *Container) Options() []Options {
	return append([]Options(nil), c.options...)
}

// Dispose disposes every behaviour and empties the container.
func (c *Container) Dispose() {
	for _, b := range c.behaviours {
		b.Dispose()
	}
	c.behaviours = nil
	c.options = nil
}

// GetOptions returns the registered options of type T.
func GetOptions[T Options](c *Container) (T, error) {
	for _, o := range c.options {
		if v, ok := o.(T); ok {
			return v, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("%w: %s", ErrOptionsNotFound, reflect.TypeFor[T]())
}

// Get returns the registered behaviour of type T.
func Get[T Behaviour](c *Container) (T, bool) {
	for _, b := range c.behaviours {
		if v, ok := b.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}
