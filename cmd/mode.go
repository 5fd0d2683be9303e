package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"avitrace.dev/pkg/avitrace/internal/domain"
	m "avitrace.dev/pkg/avitrace/internal/model"
)

// modeCmd represents the mode command group.
var modeCmd = newModeCmd()

func newModeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mode",
		Short: "Manage compliance-mode lifecycle",
		Long: `Enable or disable certification standards. Disabling a mode captures an
immutable snapshot of the project (file checksums plus traced requirement and
file sets); re-enabling consumes the snapshot. Use "mode check" while a mode
is disabled to diff its snapshot against the live project.`,
	}

	cmd.AddCommand(newModeEnableCmd())
	cmd.AddCommand(newModeDisableCmd())
	cmd.AddCommand(newModeStatusCmd())
	cmd.AddCommand(newModeCheckCmd())

	return cmd
}

// parseComplianceMode maps a CLI argument to a compliance mode.
func parseComplianceMode(arg string) (m.ComplianceMode, error) {
	switch strings.ToLower(strings.ReplaceAll(arg, "-", "")) {
	case "do178c":
		return m.ModeDo178c, nil
	case "do330":
		return m.ModeDo330, nil
	case "arp4754a":
		return m.ModeArp4754a, nil
	}

	return "", fmt.Errorf("unknown compliance mode %q (expected do178c, do330, or arp4754a)", arg)
}

// loadComplianceSystem rebuilds the system from the persisted state file.
func loadComplianceSystem() (*domain.ComplianceSystem, error) {
	state, err := stateStore().LoadState()
	if err != nil {
		return nil, err
	}

	return domain.NewComplianceSystemFromState(state), nil
}

// saveComplianceSystem persists the system for the next invocation.
func saveComplianceSystem(system *domain.ComplianceSystem) error {
	return stateStore().SaveState(system.State())
}

func newModeEnableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "enable <mode>",
		Short: "Enable a compliance mode",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := parseComplianceMode(args[0])
			if err != nil {
				return err
			}

			system, err := loadComplianceSystem()
			if err != nil {
				return err
			}

			report := system.EnableMode(mode)

			if err := saveComplianceSystem(system); err != nil {
				return err
			}

			if report == nil {
				cmd.Printf("%s enabled\n", mode)
				return nil
			}

			cmd.Printf(
				"%s re-enabled; enforcement was suspended since %s\n",
				mode,
				report.DisabledAt.Format("2006-01-02 15:04:05 MST"),
			)

			return nil
		},
	}
}

func newModeDisableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disable <mode>",
		Short: "Disable a compliance mode, snapshotting the project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := parseComplianceMode(args[0])
			if err != nil {
				return err
			}

			system, err := loadComplianceSystem()
			if err != nil {
				return err
			}

			if !system.IsModeEnabled(mode) {
				return &domain.ModeNotEnabledError{Mode: mode}
			}

			snapshot, err := snapshotBuilder.BuildSnapshot(projectRoot(), excludeGlobs())
			if err != nil {
				return fmt.Errorf("snapshot project: %w", err)
			}

			system.DisableMode(mode, &snapshot)

			if err := saveComplianceSystem(system); err != nil {
				return err
			}

			cmd.Printf(
				"%s disabled; snapshot of %d file(s) and %d requirement(s) stored\n",
				mode,
				len(snapshot.FileChecksums),
				len(snapshot.TracedRequirements),
			)

			return nil
		},
	}
}

func newModeStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show mode lifecycle and active requirements",
		Args:  cobra.ExactArgs(0),
		RunE: func(_ *cobra.Command, _ []string) error {
			system, err := loadComplianceSystem()
			if err != nil {
				return err
			}

			snapshots := map[m.ComplianceMode]m.ComplianceSnapshot{}

			for _, mode := range m.AllComplianceModes() {
				if snapshot, ok := system.GetSnapshot(mode); ok {
					snapshots[mode] = snapshot
				}
			}

			return ui.DisplayModeStatus(system.EnabledModes(), snapshots, system.ActiveRequirements())
		},
	}
}

func newModeCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <mode>",
		Short: "Diff a disabled mode's snapshot against the live project",
		Long: `Compare the snapshot stored when the mode was disabled against the current
project state. Deviations are reported as data for review; they are an
expected, auditable outcome of normal development, not a failure.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := parseComplianceMode(args[0])
			if err != nil {
				return err
			}

			system, err := loadComplianceSystem()
			if err != nil {
				return err
			}

			if _, ok := system.GetSnapshot(mode); !ok {
				cmd.Printf("No snapshot stored for %s; nothing to compare.\n", mode)
				return nil
			}

			current, err := snapshotBuilder.CaptureState(projectRoot(), excludeGlobs())
			if err != nil {
				return fmt.Errorf("capture project state: %w", err)
			}

			report := system.GenerateDeviationReport(
				mode,
				current.FileChecksums,
				current.TracedRequirements,
				current.TracedFiles,
			)

			return ui.DisplayDeviationReport(report)
		},
	}
}

func init() {
	rootCmd.AddCommand(modeCmd)
}
