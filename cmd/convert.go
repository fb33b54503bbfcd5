package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	convertFrom string
	convertTo   string
)

var convertCmd = &cobra.Command{
	Use:   "convert <in> <out>",
	Short: "Convert a diagram between JSON, YAML and msgpack",
	Long: `Convert a diagram document from one format to another.

Formats are taken from the file extensions (.json, .yaml/.yml, .msgpack)
unless --from or --to is given.

Examples:
  diagramkit convert calc.json calc.yaml
  diagramkit convert --to msgpack calc.json calc.bin`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := readDiagram(args[0], convertFrom)
		if err != nil {
			return err
		}
		defer d.Dispose()
		if err := writeDiagram(args[1], convertTo, d); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", args[1])
		return nil
	},
}

func init() {
	convertCmd.Flags().StringVar(&convertFrom, "from", "", "input format (json, yaml, msgpack)")
	convertCmd.Flags().StringVar(&convertTo, "to", "", "output format (json, yaml, msgpack)")
	rootCmd.AddCommand(convertCmd)
}
