package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	m "avitrace.dev/pkg/avitrace/internal/model"

	"avitrace.dev/pkg/avitrace/internal/adapter"
	"avitrace.dev/pkg/avitrace/internal/domain"
)

// auditCmd represents the audit command group.
var auditCmd = newAuditCmd()

var (
	auditTool        string
	auditToolVersion string
	auditArguments   []string
	auditInputs      []string
	auditOutputs     []string
	auditExitCode    int
	auditDiagnostics []string
)

func newAuditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Inspect or extend the qualified-tool usage log",
		Long: `The tool-usage audit log is an append-only, checksummed record of every
qualified tool invocation, kept for DO-330 qualification review. Records are
never rewritten or reordered.`,
	}

	cmd.AddCommand(newAuditListCmd())
	cmd.AddCommand(newAuditRecordCmd())
	cmd.AddCommand(newAuditVerifyCmd())

	return cmd
}

func newAuditListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Replay the tool-usage log in invocation order",
		Args:  cobra.ExactArgs(0),
		RunE: func(_ *cobra.Command, _ []string) error {
			records, err := auditLogger().AllRecords()
			if err != nil {
				return err
			}

			return ui.DisplayAuditRecords(records)
		},
	}
}

func newAuditRecordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Append a qualified-tool invocation record",
		Long: `Build a tool-usage record from the given tool metadata, checksum every input
and output artifact with SHA-256, and append the record to the audit log.`,
		Args: cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			record := m.NewToolUsageRecord(auditTool, auditToolVersion, auditArguments, auditExitCode)

			for _, input := range auditInputs {
				checksum, err := adapter.ComputeSHA256(m.Path(input))
				if err != nil {
					return err
				}

				record.AddInputChecksum(m.Path(input), checksum)
			}

			for _, output := range auditOutputs {
				checksum, err := adapter.ComputeSHA256(m.Path(output))
				if err != nil {
					return err
				}

				record.AddOutputChecksum(m.Path(output), checksum)
			}

			for _, diagnostic := range auditDiagnostics {
				record.AddDiagnostic(diagnostic)
			}

			logger := auditLogger()
			if err := logger.Log(record); err != nil {
				return err
			}

			cmd.Printf("Recorded %s %s in %s\n", record.Tool, record.Version, logger.LogPath())

			return nil
		},
	}

	cmd.Flags().StringVar(&auditTool, "tool", "", "qualified tool name")
	cmd.Flags().StringVar(&auditToolVersion, "tool-version", "", "qualified tool version")
	cmd.Flags().StringArrayVar(&auditArguments, "arg", nil, "tool argument (can be repeated, in order)")
	cmd.Flags().StringArrayVar(&auditInputs, "input", nil, "input artifact to checksum (can be repeated)")
	cmd.Flags().StringArrayVar(&auditOutputs, "output", nil, "output artifact to checksum (can be repeated)")
	cmd.Flags().IntVar(&auditExitCode, "exit-code", 0, "tool exit code")
	cmd.Flags().StringArrayVar(&auditDiagnostics, "diagnostic", nil, "diagnostic message (can be repeated)")

	if err := cmd.MarkFlagRequired("tool"); err != nil {
		cobra.CheckErr(fmt.Errorf("mark tool flag required: %w", err))
	}

	if err := cmd.MarkFlagRequired("tool-version"); err != nil {
		cobra.CheckErr(fmt.Errorf("mark tool-version flag required: %w", err))
	}

	return cmd
}

func newAuditVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Recompute artifact checksums against the log",
		Long: `Recompute the SHA-256 checksum of every input and output artifact named in
the audit log and compare it against the recorded value. Artifacts that have
changed or disappeared since they were logged are reported.`,
		Args: cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			records, err := auditLogger().AllRecords()
			if err != nil {
				return err
			}

			verified := 0
			failed := 0

			for _, record := range records {
				for _, artifacts := range []map[m.Path]string{record.InputChecksums, record.OutputChecksums} {
					for _, path := range sortedArtifactPaths(artifacts) {
						if verifyArtifact(cmd, path, artifacts[path]) {
							verified++
						} else {
							failed++
						}
					}
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d artifact(s) failed checksum verification", failed)
			}

			cmd.Printf("Verified %d artifact checksum(s)\n", verified)

			return nil
		},
	}
}

// verifyArtifact reports whether the artifact still matches its logged
// checksum, printing the failure detail when it does not.
func verifyArtifact(cmd *cobra.Command, path m.Path, expected string) bool {
	found, err := adapter.ComputeSHA256(path)
	if err != nil {
		cmd.Println(err.Error())
		return false
	}

	if found != expected {
		mismatch := &domain.ChecksumMismatchError{File: path, Expected: expected, Found: found}
		cmd.Println(mismatch.Error())

		return false
	}

	return true
}

func sortedArtifactPaths(artifacts map[m.Path]string) []m.Path {
	paths := make([]m.Path, 0, len(artifacts))
	for path := range artifacts {
		paths = append(paths, path)
	}

	sort.Slice(paths, func(i, j int) bool { return paths[i] < paths[j] })

	return paths
}

func init() {
	rootCmd.AddCommand(auditCmd)
}
