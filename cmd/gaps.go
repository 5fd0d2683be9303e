package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	m "avitrace.dev/pkg/avitrace/internal/model"

	"avitrace.dev/pkg/avitrace/internal/domain"
)

// gapsCmd represents the gaps command.
var gapsCmd = newGapsCmd()

func newGapsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gaps [project-root]",
		Short: "Find untested requirements and untraceable functions",
		Long: `Report requirements that have implementation links but no test links, and
function definitions with no requirement annotation within the preceding
lines. The function scan is a textual heuristic, not a parser.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			root := projectRoot()
			if len(args) == 1 {
				root = m.Path(args[0])
			}

			matrix, err := traceBuilder.GenerateMatrix(root, excludeGlobs())
			if err != nil {
				return fmt.Errorf("generate traceability matrix: %w", err)
			}

			if err := ui.DisplayUntestedRequirements(domain.FindUntestedRequirements(matrix)); err != nil {
				return err
			}

			functions, err := traceBuilder.FindUntraceableFunctions(root, excludeGlobs())
			if err != nil {
				return fmt.Errorf("scan for untraceable functions: %w", err)
			}

			return ui.DisplayUntraceableFunctions(functions)
		},
	}
}

func init() {
	rootCmd.AddCommand(gapsCmd)
}
