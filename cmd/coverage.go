package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"avitrace.dev/pkg/avitrace/internal/adapter"
	"avitrace.dev/pkg/avitrace/internal/domain"
	m "avitrace.dev/pkg/avitrace/internal/model"
)

// coverageCmd represents the coverage command.
var coverageCmd = newCoverageCmd()

var coverageFlagsOnly bool

func newCoverageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "coverage [reports-dir]",
		Short: "Analyze structural coverage from execution reports",
		Long: `Parse instrumented-execution report files and compute statement and branch
coverage per file plus project totals. Totals are aggregated from raw line
counts, not averaged per-file percentages.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if coverageFlagsOnly {
				for _, flag := range domain.InstrumentationFlags() {
					cmd.Println(flag)
				}

				return nil
			}

			reportsDir := projectRoot()
			if len(args) == 1 {
				reportsDir = m.Path(args[0])
			}

			reports, err := collectCoverageReports(reportsDir)
			if err != nil {
				return err
			}

			return ui.DisplayCoverageReport(domain.GenerateCoverageReport(reports))
		},
	}

	cmd.Flags().BoolVar(&coverageFlagsOnly, "instrumentation-flags", false, "print the compiler flags for coverage-instrumented builds and exit")

	return cmd
}

func init() {
	rootCmd.AddCommand(coverageCmd)
}

// collectCoverageReports gathers raw report text for every coverage file
// under dir.
func collectCoverageReports(dir m.Path) (map[m.Path]string, error) {
	if _, err := fsAdapter.FileInfo(dir); err != nil {
		if os.IsNotExist(err) {
			return nil, &domain.CoverageDataNotFoundError{Path: dir}
		}

		return nil, err
	}

	extension := viper.GetString(coverageExtKey)
	reports := map[m.Path]string{}

	err := fsAdapter.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if path != string(dir) && adapter.IsSkippedDir(info.Name()) {
				return adapter.SkipDir
			}

			return nil
		}

		if filepath.Ext(path) != extension {
			return nil
		}

		if adapter.MatchesAnyGlob(excludeGlobs(), m.Path(path)) {
			return nil
		}

		content, err := fsAdapter.ReadFile(m.Path(path))
		if err != nil {
			return &domain.InvalidCoverageDataError{File: m.Path(path), Message: err.Error()}
		}

		reports[m.Path(path)] = string(content)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return reports, nil
}
