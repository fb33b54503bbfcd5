package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestDefaults_AreValid(t *testing.T) {
	require.NoError(t, Validate(Defaults()))
}

func TestValidate_ReportsConfigKeys(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{
			name:   "zoom max below min",
			mutate: func(c *Config) { c.Behaviours.Zoom.Max = 0.05 },
			want:   "behaviours.zoom.max",
		},
		{
			name:   "zoom step must grow",
			mutate: func(c *Config) { c.Behaviours.Zoom.Step = 1 },
			want:   "behaviours.zoom.step",
		},
		{
			name:   "negative grid",
			mutate: func(c *Config) { c.Behaviours.Drag.GridSize = -1 },
			want:   "behaviours.drag.grid_size",
		},
		{
			name:   "empty delete key",
			mutate: func(c *Config) { c.Behaviours.Delete.Keys = []string{"delete", ""} },
			want:   "behaviours.delete.keys[1]",
		},
		{
			name:   "unknown exporter",
			mutate: func(c *Config) { c.Tracing.Exporter = "zipkin" },
			want:   "tracing.exporter",
		},
		{
			name:   "sample rate above one",
			mutate: func(c *Config) { c.Tracing.SampleRate = 1.5 },
			want:   "tracing.sample_rate",
		},
		{
			name:   "bad log level",
			mutate: func(c *Config) { c.Log.Level = "verbose" },
			want:   "log.level",
		},
		{
			name:   "zero cell width",
			mutate: func(c *Config) { c.Playground.CellWidth = 0 },
			want:   "playground.cell_width",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := Validate(cfg)
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidateTracing_ExporterRequirements(t *testing.T) {
	require.NoError(t, ValidateTracing(TracingConfig{Exporter: "file"}), "disabled tracing is not checked")

	err := ValidateTracing(TracingConfig{Enabled: true, Exporter: "file"})
	require.ErrorContains(t, err, "file_path is required")

	err = ValidateTracing(TracingConfig{Enabled: true, Exporter: "otlp"})
	require.ErrorContains(t, err, "otlp_endpoint is required")

	require.NoError(t, ValidateTracing(TracingConfig{Enabled: true, Exporter: "stdout"}))
}

func TestDefaultConfigTemplate_MatchesDefaults(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(DefaultConfigTemplate())))

	cfg := Defaults()
	require.NoError(t, v.Unmarshal(&cfg))

	want := Defaults()
	require.Equal(t, want.Behaviours, cfg.Behaviours)
	require.Equal(t, want.Playground, cfg.Playground)
	require.Equal(t, want.Store.CacheTTL, cfg.Store.CacheTTL)
	require.Equal(t, want.Flags, cfg.Flags)
	require.NoError(t, Validate(cfg))
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	require.NoError(t, WriteDefaultConfig(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, DefaultConfigTemplate(), string(data))
}
