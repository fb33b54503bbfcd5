package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/zjrosen/diagramkit/internal/playground"
)

var (
	modelColor     = color.New(color.FgYellow, color.Bold)
	componentColor = color.New(color.FgBlue)
)

var componentsCmd = &cobra.Command{
	Use:   "components",
	Short: "List the registered model to component mappings",
	Long: `List which view component renders each model type in the playground.

Types without a direct mapping fall back to the nearest embedded type, so a
type embedding model.Node renders as a node.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := playground.DefaultComponents()
		if err != nil {
			return fmt.Errorf("building component registry: %w", err)
		}
		out := cmd.OutOrStdout()
		for _, m := range r.Mappings() {
			_, _ = modelColor.Fprint(out, m.Model.String())
			_, _ = fmt.Fprint(out, " -> ")
			_, _ = componentColor.Fprintln(out, m.Component.String())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(componentsCmd)
}
