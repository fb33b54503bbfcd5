// Package flags gates optional diagramkit features. Flags come from the
// "flags" section of the config and are read-only once loaded.
package flags

import (
	"maps"
	"slices"

	"github.com/zjrosen/diagramkit/internal/log"
)

const (
	// FlagCalcEngine registers the calculation engine behaviour.
	FlagCalcEngine = "calc-engine"

	// FlagGroupAutoSize registers the behaviour that refits groups around
	// their children.
	FlagGroupAutoSize = "group-autosize"
)

// Known lists every flag diagramkit reads, with a short description.
var Known = map[string]string{
	FlagCalcEngine:    "recalculate operator nodes when their inputs change",
	FlagGroupAutoSize: "resize groups to fit their children",
}

// Registry holds feature flag state.
type Registry struct {
	flags map[string]bool
}

// New creates a Registry from the config map. A nil map disables everything.
func New(flags map[string]bool) *Registry {
	r := &Registry{flags: maps.Clone(flags)}
	if r.flags == nil {
		r.flags = make(map[string]bool)
	}
	if unknown := r.Unknown(); len(unknown) > 0 {
		log.Warn(log.CatConfig, "Unknown feature flags configured", "flags", unknown)
	}
	log.Debug(log.CatConfig, "Feature flags initialized", "count", len(r.flags))
	return r
}

// Enabled reports whether name is set to true. Unknown flags and a nil
// registry report false.
func (r *Registry) Enabled(name string) bool {
	return r.EnabledOr(name, false)
}

// EnabledOr is Enabled with an explicit fallback for flags absent from the config.
func (r *Registry) EnabledOr(name string, fallback bool) bool {
	if r == nil {
		return fallback
	}
	v, ok := r.flags[name]
	if !ok {
		return fallback
	}
	return v
}

// Unknown returns configured flag names diagramkit does not read, sorted.
func (r *Registry) Unknown() []string {
	if r == nil {
		return nil
	}
	var out []string
	for name := range r.flags {
		if _, ok := Known[name]; !ok {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out
}

// All returns a copy of the configured flags.
func (r *Registry) All() map[string]bool {
	if r == nil {
		return make(map[string]bool)
	}
	return maps.Clone(r.flags)
}
