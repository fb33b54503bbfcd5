// Package model holds the diagram entity graph: diagrams own layers, layers own
// nodes and groups, groups nest further nodes and groups, every container owns
// ports, and links connect ports.
//
// Every observable property follows one protocol: the setter compares against
// the current value, returns silently when nothing changed, and otherwise
// updates the field first and then publishes exactly one typed event on the
// entity's bus. Internal setters update state without publishing.
//
// Entities are not safe for concurrent use.
package model

import (
	"errors"

	"github.com/google/uuid"

	"github.com/zjrosen/diagramkit/internal/collection"
	"github.com/zjrosen/diagramkit/internal/events"
)

var (
	ErrNilSourcePort = errors.New("link source port cannot be nil")
	ErrLinkDisposed  = errors.New("link is disposed")
	ErrLinkAttached  = errors.New("link already has a source port")
	ErrInvalidZoom   = errors.New("zoom must be a positive finite number")
)

// NewID returns a fresh entity identifier.
func NewID() string {
	return uuid.NewString()
}

// Entity is anything with a stable identity.
type Entity interface {
	ID() string
}

// Selectable entities carry a selected flag.
type Selectable interface {
	Entity
	Selected() bool
	SetSelected(bool)
}

// PortContainer is implemented by Node and Group.
type PortContainer interface {
	Selectable
	Position() Point
	SetPosition(Point)
	SetPositionInternal(Point)
	Size() Size
	SetSize(Size)
	SetSizeInternal(Size)
	Bounds() Rect
	Title() string
	Visible() bool
	Ports() *collection.Collection[*Port]
	AddPort(*Port) bool
	RemovePort(*Port) bool
	ParentGroup() *Group
	Layer() *Layer
	Dispose()
}

// Option customizes entity construction.
type Option func(*options)

type options struct {
	id       string
	title    string
	position Point
	size     Size
	hidden   bool
}

// WithID restores an entity under a known identifier.
func WithID(id string) Option { return func(o *options) { o.id = id } }

// WithTitle sets the initial title of a node or group, or the name of a layer.
func WithTitle(title string) Option { return func(o *options) { o.title = title } }

// WithPosition sets the initial position.
func WithPosition(p Point) Option { return func(o *options) { o.position = p } }

// WithSize sets the initial size.
func WithSize(s Size) Option { return func(o *options) { o.size = s } }

// Hidden creates the entity with its visible flag off.
func Hidden() Option { return func(o *options) { o.hidden = true } }

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.id == "" {
		o.id = NewID()
	}
	return o
}

// flags holds the selected/visible pair shared by every selectable entity.
type flags struct {
	selected bool
	visible  bool
}

func (f *flags) setSelected(bus *events.Aggregator, e Selectable, v bool) {
	if f.selected == v {
		return
	}
	f.selected = v
	events.Publish(bus, SelectionChanged{Entity: e, Selected: v})
}

func (f *flags) setVisible(bus *events.Aggregator, e Entity, v bool) {
	if f.visible == v {
		return
	}
	f.visible = v
	events.Publish(bus, VisibilityChanged{Entity: e, Visible: v})
}
