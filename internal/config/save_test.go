package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func loadBehaviours(t *testing.T, path string) BehavioursConfig {
	t.Helper()
	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())
	cfg := Defaults()
	require.NoError(t, v.Unmarshal(&cfg))
	return cfg.Behaviours
}

func TestSaveBehaviourEnabled_CreatesNewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	require.NoError(t, SaveBehaviourEnabled(path, "pan", false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "behaviours:")
	require.Contains(t, string(data), "enabled: false")
	require.False(t, loadBehaviours(t, path).Pan.Enabled)
}

func TestSaveBehaviourEnabled_PreservesComments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, WriteDefaultConfig(path))

	require.NoError(t, SaveBehaviourEnabled(path, "drag", false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "# Interactive behaviours")
	require.Contains(t, string(data), "grid_size: 0")

	b := loadBehaviours(t, path)
	require.False(t, b.Drag.Enabled)
	require.True(t, b.Pan.Enabled)
	require.Equal(t, 1.1, b.Zoom.Step)
}

func TestSaveBehaviourEnabled_AddsMissingBehaviour(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store:\n  cache_ttl: 1m\n"), 0o600))

	require.NoError(t, SaveBehaviourEnabled(path, "calc", true))
	require.NoError(t, SaveBehaviourEnabled(path, "calc", false))

	require.False(t, loadBehaviours(t, path).Calc.Enabled)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "cache_ttl: 1m")
}

func TestSaveBehaviourEnabled_RejectsNonMapping(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- a\n- b\n"), 0o600))

	require.Error(t, SaveBehaviourEnabled(path, "pan", true))
}
