package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zjrosen/diagramkit/internal/service"
)

var newForce bool

var newCmd = &cobra.Command{
	Use:   "new <file>",
	Short: "Write the sample calculator diagram to a file",
	Long: `Create a new diagram file holding the sample calculator graph: two
numbers feeding a multiplication inside a group, wired to a note.

Example:
  diagramkit new calc.yaml && diagramkit play calc.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		if _, err := os.Stat(path); err == nil && !newForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}

		svc := service.New(nil, nil)
		defer svc.Dispose()
		if err := svc.RegisterDefaults(cfg.Behaviours, featureFlags()); err != nil {
			return err
		}
		if err := svc.PopulateSample(); err != nil {
			return err
		}
		if err := writeDiagram(path, "", svc.Diagram()); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
		return nil
	},
}

func init() {
	newCmd.Flags().BoolVarP(&newForce, "force", "f", false, "overwrite an existing file")
	rootCmd.AddCommand(newCmd)
}
