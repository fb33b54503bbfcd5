// Package paths resolves diagramkit's default file locations.
package paths

import (
	"os"
	"path/filepath"
)

const (
	// EnvHome overrides the directory diagramkit keeps its files in.
	EnvHome = "DIAGRAMKIT_HOME"

	// ProjectDir is the per-project config directory name.
	ProjectDir = ".diagramkit"

	// ConfigFile is the config file name inside a config directory.
	ConfigFile = "config.yaml"

	// StoreFile is the default sqlite snapshot store name.
	StoreFile = "diagrams.db"
)

// ConfigDir returns $DIAGRAMKIT_HOME, or ~/.config/diagramkit. It returns the
// empty string when neither can be determined.
func ConfigDir() string {
	if dir := os.Getenv(EnvHome); dir != "" {
		return filepath.Clean(dir)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "diagramkit")
}

// UserConfigPath is the user-level config file.
func UserConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, ConfigFile)
}

// ProjectConfigPath is the config file for the project rooted at dir.
func ProjectConfigPath(dir string) string {
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, ProjectDir, ConfigFile)
}

// ResolveStorePath returns configured when set, otherwise the default store
// file in ConfigDir. A leading "~/" is expanded.
func ResolveStorePath(configured string) string {
	if configured != "" {
		return ExpandHome(configured)
	}
	dir := ConfigDir()
	if dir == "" {
		return StoreFile
	}
	return filepath.Join(dir, StoreFile)
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) string {
	if len(path) < 2 || path[:2] != "~/" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
