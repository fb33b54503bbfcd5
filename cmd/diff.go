package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/zjrosen/diagramkit/internal/codec"
)

// errDiffers is returned with --exit-code when the diagrams differ.
var errDiffers = errors.New("diagrams differ")

var (
	diffContext  int
	diffExitCode bool

	insertColor = color.New(color.FgGreen)
	deleteColor = color.New(color.FgRed)
	hunkColor   = color.New(color.FgCyan)
)

var diffCmd = &cobra.Command{
	Use:   "diff <a> <b>",
	Short: "Show the differences between two diagrams",
	Long: `Compare two diagram files line by line.

Both files are decoded and re-encoded as YAML first, so diagrams stored in
different formats can be compared.

Examples:
  diagramkit diff before.json after.json
  diagramkit diff --context 0 calc.yaml calc.msgpack`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := readDiagram(args[0], "")
		if err != nil {
			return err
		}
		defer a.Dispose()
		b, err := readDiagram(args[1], "")
		if err != nil {
			return err
		}
		defer b.Dispose()

		lines, err := codec.DiffDiagrams(codec.NewYAMLCodec(), a, b)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if !codec.Changed(lines) {
			_, _ = fmt.Fprintln(out, "no differences")
			return nil
		}
		printDiff(out, lines, diffContext)
		if diffExitCode {
			return errDiffers
		}
		return nil
	},
}

func init() {
	diffCmd.Flags().IntVarP(&diffContext, "context", "U", 3, "unchanged lines shown around each change")
	diffCmd.Flags().BoolVar(&diffExitCode, "exit-code", false, "exit non-zero when the diagrams differ")
	rootCmd.AddCommand(diffCmd)
}

// printDiff writes changed lines with up to context unchanged lines around
// them. Skipped stretches are marked with "@@".
func printDiff(w io.Writer, lines []codec.DiffLine, context int) {
	show := make([]bool, len(lines))
	for i, l := range lines {
		if l.Op == codec.LineEqual {
			continue
		}
		for j := max(i-context, 0); j <= min(i+context, len(lines)-1); j++ {
			show[j] = true
		}
	}

	skipped := false
	for i, l := range lines {
		if !show[i] {
			skipped = true
			continue
		}
		if skipped {
			_, _ = hunkColor.Fprintln(w, "@@")
			skipped = false
		}
		switch l.Op {
		case codec.LineInsert:
			_, _ = insertColor.Fprintln(w, "+ "+l.Text)
		case codec.LineDelete:
			_, _ = deleteColor.Fprintln(w, "- "+l.Text)
		default:
			_, _ = fmt.Fprintln(w, "  "+l.Text)
		}
	}
}
