package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"avitrace.dev/pkg/avitrace/internal/controller"
	"avitrace.dev/pkg/avitrace/internal/domain"
	m "avitrace.dev/pkg/avitrace/internal/model"
)

// traceCmd represents the trace command.
var traceCmd = newTraceCmd()

var traceExportPath string
var traceExportFormat string
var traceRequirementID string
var traceFilePath string

func newTraceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trace [project-root]",
		Short: "Build the requirement-traceability matrix",
		Long: `Scan the project for requirement annotations (REQ-...) and test annotations
(TEST: REQ-...), build the bidirectional traceability matrix, and display a
summary. The matrix is rebuilt from scratch on every run so the output is
deterministic.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := projectRoot()
			if len(args) == 1 {
				root = m.Path(args[0])
			}

			matrix, err := traceBuilder.GenerateMatrix(root, excludeGlobs())
			if err != nil {
				return fmt.Errorf("generate traceability matrix: %w", err)
			}

			if traceExportPath != "" {
				if err := exportMatrix(matrix, traceExportFormat, m.Path(traceExportPath)); err != nil {
					return err
				}

				cmd.Printf("Matrix exported to %s\n", traceExportPath)
			}

			if traceRequirementID != "" {
				links := matrix.LinksForRequirement(traceRequirementID)
				if len(links) == 0 {
					return &domain.RequirementNotFoundError{ID: traceRequirementID}
				}

				return ui.DisplayTraceabilityLinks(links)
			}

			if traceFilePath != "" {
				return ui.DisplayTraceabilityLinks(matrix.LinksInFile(m.Path(traceFilePath)))
			}

			return ui.DisplayMatrixSummary(controller.MatrixSummary{
				Requirements: matrix.AllRequirements(),
				Files:        matrix.AllFiles(),
				Links:        matrix.Links(),
			})
		},
	}

	cmd.Flags().StringVarP(&traceExportPath, "export", "e", "", "write the matrix to the given file")
	cmd.Flags().StringVarP(&traceExportFormat, "format", "f", "csv", "export format (csv)")
	cmd.Flags().StringVarP(&traceRequirementID, "requirement", "r", "", "show only the links recorded for a requirement ID")
	cmd.Flags().StringVar(&traceFilePath, "file", "", "show only the links recorded in a source file")

	return cmd
}

func init() {
	rootCmd.AddCommand(traceCmd)
}

// exportMatrix validates the requested format before touching the filesystem.
func exportMatrix(matrix *domain.Matrix, format string, path m.Path) error {
	if strings.ToLower(format) != "csv" {
		return &domain.UnsupportedExportFormatError{Format: format}
	}

	if err := os.MkdirAll(filepath.Dir(string(path)), 0o750); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}

	f, err := os.Create(string(path))
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}

	defer func() {
		_ = f.Close()
	}()

	return domain.ExportMatrix(matrix, format, f)
}
