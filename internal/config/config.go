// Package config provides configuration types, defaults and validation for diagramkit.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/zjrosen/diagramkit/internal/log"
)

// Config holds all configuration options for diagramkit.
type Config struct {
	Store      StoreConfig      `mapstructure:"store"`
	Log        LogConfig        `mapstructure:"log"`
	Tracing    TracingConfig    `mapstructure:"tracing"`
	Behaviours BehavioursConfig `mapstructure:"behaviours"`
	Playground PlaygroundConfig `mapstructure:"playground"`
	Flags      map[string]bool  `mapstructure:"flags"`
}

// StoreConfig configures the sqlite snapshot store.
type StoreConfig struct {
	// Path is the sqlite database file. Empty uses paths.ResolveStorePath.
	Path string `mapstructure:"path"`

	// CacheTTL is how long loaded diagrams stay in the read-through cache.
	CacheTTL time.Duration `mapstructure:"cache_ttl" validate:"gte=0"`
}

// LogConfig configures the debug log.
type LogConfig struct {
	Path  string `mapstructure:"path"`
	Level string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
}

// TracingConfig holds distributed tracing configuration for store operations.
type TracingConfig struct {
	// Enabled controls whether tracing is active.
	// Default: false
	Enabled bool `mapstructure:"enabled"`

	// Exporter selects the trace export backend.
	// Options: "none", "file", "stdout", "otlp"
	// Default: "file"
	Exporter string `mapstructure:"exporter" validate:"omitempty,oneof=none file stdout otlp"`

	// FilePath is the output file for "file" exporter.
	// Default: ~/.config/diagramkit/traces/traces.jsonl
	FilePath string `mapstructure:"file_path"`

	// OTLPEndpoint is the collector endpoint for "otlp" exporter.
	// Default: "localhost:4317"
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`

	// SampleRate controls trace sampling (0.0 to 1.0).
	SampleRate float64 `mapstructure:"sample_rate" validate:"gte=0,lte=1"`
}

// ToggleConfig is the configuration of a behaviour with no knobs.
type ToggleConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// DragConfig configures dragging. GridSize 0 disables snapping.
type DragConfig struct {
	Enabled  bool    `mapstructure:"enabled"`
	GridSize float64 `mapstructure:"grid_size" validate:"gte=0"`
}

// ZoomConfig configures wheel zoom.
type ZoomConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	Min     float64 `mapstructure:"min" validate:"gt=0"`
	Max     float64 `mapstructure:"max" validate:"gtfield=Min"`
	Step    float64 `mapstructure:"step" validate:"gt=1"`
}

// DeleteConfig configures deletion of the selection.
type DeleteConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Keys    []string `mapstructure:"keys" validate:"dive,required"`
}

// BehavioursConfig holds the per-behaviour settings.
type BehavioursConfig struct {
	Selection     ToggleConfig `mapstructure:"selection"`
	Drag          DragConfig   `mapstructure:"drag"`
	Pan           ToggleConfig `mapstructure:"pan"`
	Zoom          ZoomConfig   `mapstructure:"zoom"`
	Delete        DeleteConfig `mapstructure:"delete"`
	DrawLink      ToggleConfig `mapstructure:"draw_link"`
	GroupAutoSize ToggleConfig `mapstructure:"group_autosize"`
	Calc          ToggleConfig `mapstructure:"calc"`
}

// PlaygroundConfig configures the terminal playground.
type PlaygroundConfig struct {
	// Watch reloads the open diagram when its file changes on disk.
	Watch bool `mapstructure:"watch"`

	// Debounce is the quiet period before a file change triggers a reload.
	Debounce time.Duration `mapstructure:"debounce" validate:"gte=0"`

	// CellWidth is how many model units one terminal column covers.
	CellWidth float64 `mapstructure:"cell_width" validate:"gt=0"`

	// CellHeight is how many model units one terminal row covers.
	CellHeight float64 `mapstructure:"cell_height" validate:"gt=0"`

	// ShowActivity shows the live log pane.
	ShowActivity bool `mapstructure:"show_activity"`
}

// DefaultTracesFilePath returns ~/.config/diagramkit/traces/traces.jsonl or
// the empty string if the home dir is unavailable.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "diagramkit", "traces", "traces.jsonl")
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Store: StoreConfig{
			CacheTTL: 5 * time.Minute,
		},
		Log: LogConfig{
			Level: "info",
		},
		Tracing: TracingConfig{
			Enabled:      false,
			Exporter:     "file",
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
		Behaviours: BehavioursConfig{
			Selection:     ToggleConfig{Enabled: true},
			Drag:          DragConfig{Enabled: true},
			Pan:           ToggleConfig{Enabled: true},
			Zoom:          ZoomConfig{Enabled: true, Min: 0.1, Max: 4, Step: 1.1},
			Delete:        DeleteConfig{Enabled: true, Keys: []string{"delete", "backspace"}},
			DrawLink:      ToggleConfig{Enabled: true},
			GroupAutoSize: ToggleConfig{Enabled: true},
			Calc:          ToggleConfig{Enabled: true},
		},
		Playground: PlaygroundConfig{
			Watch:        true,
			Debounce:     100 * time.Millisecond,
			CellWidth:    10,
			CellHeight:   20,
			ShowActivity: true,
		},
		Flags: map[string]bool{
			"calc-engine":    true,
			"group-autosize": true,
		},
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their config key rather than their Go name.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the whole configuration. Struct tags cover ranges and
// enumerations; the remaining checks depend on more than one field.
func Validate(cfg Config) error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, describe(fe))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return ValidateTracing(cfg.Tracing)
}

// describe renders one validation failure with its dotted config key.
func describe(fe validator.FieldError) string {
	key := fe.Namespace()
	if i := strings.IndexByte(key, '.'); i >= 0 {
		key = key[i+1:]
	}
	if fe.Param() != "" {
		return fmt.Sprintf("%s must satisfy %s=%s, got %v", key, fe.Tag(), fe.Param(), fe.Value())
	}
	return fmt.Sprintf("%s must satisfy %s, got %v", key, fe.Tag(), fe.Value())
}

// ValidateTracing checks the exporter-specific requirements.
func ValidateTracing(tracing TracingConfig) error {
	if !tracing.Enabled {
		return nil
	}
	if tracing.Exporter == "file" && tracing.FilePath == "" {
		return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
	}
	if tracing.Exporter == "otlp" && tracing.OTLPEndpoint == "" {
		return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
	}
	return nil
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# diagramkit configuration

# Snapshot store
store:
  # path: ~/.config/diagramkit/diagrams.db   # sqlite file (default shown)
  cache_ttl: 5m                              # how long loaded diagrams stay cached

# Debug log (enable with --debug or DIAGRAMKIT_DEBUG=1)
log:
  # path: debug.log
  level: info          # debug, info, warn, error

# Interactive behaviours
behaviours:
  selection:
    enabled: true
  drag:
    enabled: true
    grid_size: 0       # snap positions to this grid, 0 disables snapping
  pan:
    enabled: true
  zoom:
    enabled: true
    min: 0.1
    max: 4
    step: 1.1          # zoom factor per wheel notch
  delete:
    enabled: true
    keys: [delete, backspace]
  draw_link:
    enabled: true
  group_autosize:
    enabled: true
  calc:
    enabled: true

# Terminal playground
playground:
  watch: true          # reload the diagram when its file changes
  debounce: 100ms
  cell_width: 10       # model units per terminal column
  cell_height: 20      # model units per terminal row
  show_activity: true

# Feature flags
flags:
  calc-engine: true
  group-autosize: true

# Tracing of store operations
# tracing:
#   enabled: false                 # Enable/disable tracing (default: false)
#   exporter: file                 # Export backend: none, file, stdout, otlp (default: file)
#   file_path: ~/.config/diagramkit/traces/traces.jsonl
#   otlp_endpoint: localhost:4317  # OTLP collector endpoint (for otlp exporter)
#   sample_rate: 1.0               # Trace sampling rate 0.0-1.0 (default: 1.0)
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
