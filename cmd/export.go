package cmd

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/diagramkit/internal/codec"
)

var drawioNoGrid bool

var exportDrawioCmd = &cobra.Command{
	Use:   "export-drawio <in> <out>",
	Short: "Export a diagram as a draw.io file",
	Long: `Write a diagram as an uncompressed draw.io (mxGraph) document.

Layers become draw.io layers, groups become swimlanes and links between
nodes become edges. Ports are not exported.

Example:
  diagramkit export-drawio calc.yaml calc.drawio`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := readDiagram(args[0], "")
		if err != nil {
			return err
		}
		defer d.Dispose()

		exporter := codec.NewDrawioExporter()
		exporter.Grid = !drawioNoGrid
		var buf bytes.Buffer
		if err := exporter.Export(d, &buf); err != nil {
			return fmt.Errorf("exporting draw.io: %w", err)
		}
		if err := writeFile(args[1], buf.Bytes()); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", args[1])
		return nil
	},
}

func init() {
	exportDrawioCmd.Flags().BoolVar(&drawioNoGrid, "no-grid", false, "hide the editor grid")
	rootCmd.AddCommand(exportDrawioCmd)
}
