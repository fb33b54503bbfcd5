package service

import (
	"fmt"

	"github.com/zjrosen/diagramkit/internal/behaviour"
	"github.com/zjrosen/diagramkit/internal/calc"
	"github.com/zjrosen/diagramkit/internal/config"
	"github.com/zjrosen/diagramkit/internal/flags"
	"github.com/zjrosen/diagramkit/internal/log"
)

// BehaviourNames lists the config keys under "behaviours" in registration order.
var BehaviourNames = []string{
	"selection", "drag", "pan", "zoom", "delete", "draw_link", "group_autosize", "calc",
}

// RegisterDefaults registers the built-in behaviours with their options,
// taking the initial enabled state from cfg. Optional behaviours are
// skipped when their feature flag is explicitly turned off.
func (s *DiagramService) RegisterDefaults(cfg config.BehavioursConfig, ff *flags.Registry) error {
	type entry struct {
		name    string
		options behaviour.Options
		build   func(behaviour.Options) behaviour.Behaviour
	}

	entries := []entry{
		{"selection", behaviour.NewSelectionOptions(cfg.Selection.Enabled), func(o behaviour.Options) behaviour.Behaviour {
			return behaviour.NewSelection(s, o.(*behaviour.SelectionOptions))
		}},
		{"drag", behaviour.NewDragOptions(cfg.Drag.Enabled, cfg.Drag.GridSize), func(o behaviour.Options) behaviour.Behaviour {
			return behaviour.NewDrag(s, o.(*behaviour.DragOptions))
		}},
		{"pan", behaviour.NewPanOptions(cfg.Pan.Enabled), func(o behaviour.Options) behaviour.Behaviour {
			return behaviour.NewPan(s, o.(*behaviour.PanOptions))
		}},
		{"zoom", behaviour.NewZoomOptions(cfg.Zoom.Enabled, cfg.Zoom.Min, cfg.Zoom.Max, cfg.Zoom.Step), func(o behaviour.Options) behaviour.Behaviour {
			return behaviour.NewZoom(s, o.(*behaviour.ZoomOptions))
		}},
		{"delete", behaviour.NewDeleteOptions(cfg.Delete.Enabled, cfg.Delete.Keys...), func(o behaviour.Options) behaviour.Behaviour {
			return behaviour.NewDelete(s, o.(*behaviour.DeleteOptions))
		}},
		{"draw_link", behaviour.NewDrawLinkOptions(cfg.DrawLink.Enabled), func(o behaviour.Options) behaviour.Behaviour {
			return behaviour.NewDrawLink(s, o.(*behaviour.DrawLinkOptions))
		}},
	}
	if ff.EnabledOr(flags.FlagGroupAutoSize, true) {
		entries = append(entries, entry{"group_autosize", behaviour.NewGroupAutoSizeOptions(cfg.GroupAutoSize.Enabled), func(o behaviour.Options) behaviour.Behaviour {
			return behaviour.NewGroupAutoSize(s, o.(*behaviour.GroupAutoSizeOptions))
		}})
	}
	if ff.EnabledOr(flags.FlagCalcEngine, true) {
		entries = append(entries, entry{"calc", calc.NewEngineOptions(cfg.Calc.Enabled), func(o behaviour.Options) behaviour.Behaviour {
			return calc.NewEngine(s, o.(*calc.EngineOptions))
		}})
	}

	for _, e := range entries {
		if err := s.behaviours.RegisterOptions(e.options); err != nil {
			return fmt.Errorf("register %s options: %w", e.name, err)
		}
		if err := s.behaviours.Register(e.build(e.options)); err != nil {
			return fmt.Errorf("register %s: %w", e.name, err)
		}
		s.named[e.name] = e.options
		log.Debug(log.CatBehaviour, "behaviour registered", "name", e.name, "enabled", e.options.Enabled())
	}
	return nil
}

// BehaviourOptions returns the options registered under a config key.
func (s *DiagramService) BehaviourOptions(name string) (behaviour.Options, bool) {
	o, ok := s.named[name]
	return o, ok
}

// SetBehaviourEnabled toggles a registered behaviour by its config key.
func (s *DiagramService) SetBehaviourEnabled(name string, enabled bool) error {
	o, ok := s.named[name]
	if !ok {
		return fmt.Errorf("%w: %s", behaviour.ErrOptionsNotFound, name)
	}
	o.SetEnabled(enabled)
	return nil
}
