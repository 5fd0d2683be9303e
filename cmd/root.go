// Package cmd provides the root command and CLI setup for avitrace.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"avitrace.dev/pkg/avitrace/internal/adapter"
	"avitrace.dev/pkg/avitrace/internal/controller"
	"avitrace.dev/pkg/avitrace/internal/domain"
	m "avitrace.dev/pkg/avitrace/internal/model"
)

var fsAdapter adapter.SourceFSAdapter
var traceBuilder *domain.TraceabilityBuilder
var snapshotBuilder *domain.SnapshotBuilder
var ui controller.UI

// projectFlag is a root-level flag selecting the certification project root.
var projectFlag string

// excludePatterns is a root-level flag that filters files for applicable commands.
var excludePatterns []string

// verboseFlag raises the log level to debug.
var verboseFlag bool

func init() {
	configureRootFlags(rootCmd)

	// Initialize shared dependencies.
	ui = controller.NewSimpleUI(rootCmd)
	fsAdapter = adapter.NewLocalSourceFSAdapter()
	traceBuilder = domain.NewTraceabilityBuilder(fsAdapter)
	snapshotBuilder = domain.NewSnapshotBuilder(fsAdapter)
}

const rootLongDescription = `Avitrace is a certification-evidence engine for safety-critical embedded
software. It keeps three audit questions answerable as code evolves: what
requirement does this code satisfy, is it tested, and has anything changed
since compliance was last checked.

It analyzes structural coverage from instrumented-execution reports, builds a
bidirectional requirement-traceability matrix from source annotations, keeps
an append-only checksummed log of qualified tool invocations, and tracks the
lifecycle of DO-178C, DO-330, and ARP4754A compliance modes.`

// rootCmd represents the base command when called without any subcommands.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "avitrace",
		Short: "Certification-evidence engine for safety-critical software",
		Long:  rootLongDescription,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger(viper.GetString(logFilenameKey), viper.GetBool(logVerboseKey))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVarP(
			&projectFlag, projectFlagName, "C",
			viper.GetString(projectConfigKey),
			"certification project root",
		)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(projectFlagName), projectConfigKey)

	cmd.PersistentFlags().StringArrayVarP(&excludePatterns, excludeFlagName, "x", viper.GetStringSlice(excludeConfigKey), "exclude files matching glob (can be repeated)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(excludeFlagName), excludeConfigKey)

	cmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", viper.GetBool(logVerboseKey), "enable debug logging")
	bindFlagToConfig(cmd.PersistentFlags().Lookup("verbose"), logVerboseKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// projectRoot resolves the project root from flag/config.
func projectRoot() m.Path {
	return m.Path(viper.GetString(projectConfigKey))
}

// excludeGlobs resolves the exclusion globs from flag/config.
func excludeGlobs() []string {
	return viper.GetStringSlice(excludeConfigKey)
}

// auditLogger builds the append-only audit logger from configuration.
func auditLogger() adapter.AuditLogger {
	return adapter.NewJSONLAuditLogger(m.Path(viper.GetString(auditLogConfigKey)))
}

// stateStore builds the persisted compliance state store from configuration.
func stateStore() adapter.StateStore {
	return adapter.NewYAMLStateStore(m.Path(viper.GetString(stateFileConfigKey)))
}
