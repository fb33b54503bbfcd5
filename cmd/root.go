package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/diagramkit/internal/config"
	"github.com/zjrosen/diagramkit/internal/flags"
	"github.com/zjrosen/diagramkit/internal/log"
	"github.com/zjrosen/diagramkit/internal/paths"
)

func init() {
	// Query the terminal background before any Bubble Tea program starts so
	// the OSC 11 reply does not race with the input loop.
	_ = lipgloss.HasDarkBackground()
}

var (
	version  = "dev"
	cfgFile  string
	debug    bool
	cfg      = config.Defaults()
	logClose func()
)

var rootCmd = &cobra.Command{
	Use:   "diagramkit",
	Short: "Build, convert and explore node diagrams",
	Long: `diagramkit models node diagrams (layers, nodes, groups, ports and links),
stores them as JSON, YAML or msgpack documents and lets you explore them in an
interactive terminal playground.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(*cobra.Command, []string) {
		if logClose != nil {
			logClose()
			logClose = nil
		}
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: .diagramkit/config.yaml, then ~/.config/diagramkit/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false,
		"write a debug log (also DIAGRAMKIT_DEBUG=1)")
}

func initConfig() {
	cfg = config.Defaults()
	viper.Reset()
	viper.SetEnvPrefix("DIAGRAMKIT")
	viper.AutomaticEnv()

	defaults := config.Defaults()
	viper.SetDefault("store.cache_ttl", defaults.Store.CacheTTL)
	viper.SetDefault("log.level", defaults.Log.Level)
	viper.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	viper.SetDefault("tracing.otlp_endpoint", defaults.Tracing.OTLPEndpoint)
	viper.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)
	viper.SetDefault("playground.watch", defaults.Playground.Watch)
	viper.SetDefault("playground.debounce", defaults.Playground.Debounce)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .diagramkit/config.yaml (current directory)
		// 2. ~/.config/diagramkit/config.yaml (user config)
		project := paths.ProjectConfigPath(".")
		if _, err := os.Stat(project); err == nil {
			viper.SetConfigFile(project)
		} else if dir := paths.ConfigDir(); dir != "" {
			viper.AddConfigPath(dir)
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound) && cfgFile == "":
			// No config anywhere: create the project default.
			defaultPath := paths.ProjectConfigPath(".")
			if writeErr := config.WriteDefaultConfig(defaultPath); writeErr == nil {
				viper.SetConfigFile(defaultPath)
				_ = viper.ReadInConfig()
			}
		case errors.Is(err, fs.ErrNotExist):
			// An explicit --config that does not exist yet runs on defaults.
		default:
			fmt.Fprintf(os.Stderr, "warning: reading config: %v\n", err)
		}
	}

	_ = viper.Unmarshal(&cfg)
}

// configPath is the file behaviour toggles are written back to.
func configPath() string {
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	if cfgFile != "" {
		return cfgFile
	}
	return paths.ProjectConfigPath(".")
}

// setup validates the loaded config and starts logging before any command
// runs.
func setup(cmd *cobra.Command, _ []string) error {
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if debug || os.Getenv("DIAGRAMKIT_DEBUG") != "" {
		path := cfg.Log.Path
		if path == "" {
			path = "debug.log"
		}
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return fmt.Errorf("creating log directory: %w", err)
			}
		}
		closeFn, err := log.Init(path)
		if err != nil {
			return fmt.Errorf("opening debug log: %w", err)
		}
		log.SetMinLevel(log.LevelDebug)
		logClose = closeFn
		log.Info(log.CatConfig, "configuration loaded", "file", viper.ConfigFileUsed(), "command", cmd.Name())
	}
	return nil
}

// featureFlags builds the flag registry from the flags config section.
func featureFlags() *flags.Registry {
	return flags.New(cfg.Flags)
}

// quietLogging installs a logger that only feeds in-process listeners, so
// the playground's activity pane has entries without a debug log file.
func quietLogging() {
	if logClose != nil {
		return
	}
	log.InitWriter(io.Discard, log.ParseLevel(cfg.Log.Level))
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
