package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/zjrosen/diagramkit/internal/playground"
)

var playCmd = &cobra.Command{
	Use:   "play [file]",
	Short: "Explore a diagram in the terminal playground",
	Long: `Open a diagram in an interactive terminal playground.

Without a file the built-in sample diagram is shown and saving is disabled.
A file that does not exist yet starts from the sample and is created on the
first save (w). The format follows the file extension.

Examples:
  diagramkit play
  diagramkit play calc.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	quietLogging()

	opts := playground.Options{
		ConfigPath: configPath(),
		Config:     cfg,
		Flags:      featureFlags(),
	}
	if len(args) == 1 {
		opts.Path = args[0]
	}

	model, err := playground.New(opts)
	if err != nil {
		return err
	}
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	final, err := p.Run()

	// Clean up watcher resources
	if m, ok := final.(playground.Model); ok {
		if closeErr := m.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}

	if err != nil {
		return fmt.Errorf("running playground: %w", err)
	}
	return nil
}
