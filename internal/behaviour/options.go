package behaviour

import "github.com/zjrosen/diagramkit/internal/events"

// Options is the configuration record every behaviour reads.
type Options interface {
	Enabled() bool
	SetEnabled(bool)
	// EnabledChanged fires with the new value after the flag changes.
	EnabledChanged() *events.Typed[bool]
}

// BaseOptions implements Options. Embed it in concrete option types.
type BaseOptions struct {
	enabled bool
	changed *events.Typed[bool]
}

// NewBaseOptions creates options with the given initial flag.
func NewBaseOptions(enabled bool) BaseOptions {
	return BaseOptions{enabled: enabled, changed: events.NewTyped[bool]()}
}

func (o *BaseOptions) Enabled() bool { return o.enabled }

func (o *BaseOptions) SetEnabled(v bool) {
	if o.enabled == v {
		return
	}
	o.enabled = v
	o.EnabledChanged().Publish(v)
}

func (o *BaseOptions) EnabledChanged() *events.Typed[bool] {
	if o.changed == nil {
		o.changed = events.NewTyped[bool]()
	}
	return o.changed
}
