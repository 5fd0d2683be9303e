package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"avitrace.dev/pkg/avitrace/internal/domain"
	m "avitrace.dev/pkg/avitrace/internal/model"
)

func TestParseComplianceMode(t *testing.T) {
	tests := []struct {
		name    string
		arg     string
		want    m.ComplianceMode
		wantErr bool
	}{
		{"lower case", "do178c", m.ModeDo178c, false},
		{"canonical", "DO-178C", m.ModeDo178c, false},
		{"hyphenated lower", "do-330", m.ModeDo330, false},
		{"upper no hyphen", "DO330", m.ModeDo330, false},
		{"arp lower", "arp4754a", m.ModeArp4754a, false},
		{"arp canonical", "ARP4754A", m.ModeArp4754a, false},
		{"unknown standard", "iso26262", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseComplianceMode(tt.arg)
			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// executeRoot runs the fully wired root command and captures its output.
func executeRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()

	out := &bytes.Buffer{}
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()

	return out.String(), err
}

func useTempProject(t *testing.T) string {
	t.Helper()

	// The project root must live on a neutral path: the traceability walker
	// classifies files by their full path, and t.TempDir embeds the running
	// test's name, which would mark every fixture as a test file.
	project, err := os.MkdirTemp("", "proj")
	require.NoError(t, err)

	statePath := filepath.Join(t.TempDir(), "state.yaml")

	viper.Set(projectConfigKey, project)
	viper.Set(stateFileConfigKey, statePath)
	t.Cleanup(func() {
		_ = os.RemoveAll(project)
		viper.Set(projectConfigKey, defaultProjectRoot)
		viper.Set(stateFileConfigKey, defaultStateFile)
	})

	return project
}

func TestModeCmd_Lifecycle(t *testing.T) {
	project := useTempProject(t)

	source := filepath.Join(project, "nav.c")
	require.NoError(t, os.WriteFile(source, []byte("// REQ-NAV-001\nint f(void) { return 0; }\n"), 0o640))

	output, err := executeRoot(t, "mode", "enable", "do178c")
	require.NoError(t, err)
	assert.Contains(t, output, "DO-178C enabled")

	output, err = executeRoot(t, "mode", "status")
	require.NoError(t, err)
	assert.Contains(t, output, "enabled")
	assert.Contains(t, output, "traceability")

	output, err = executeRoot(t, "mode", "disable", "do178c")
	require.NoError(t, err)
	assert.Contains(t, output, "DO-178C disabled")
	assert.Contains(t, output, "1 file(s)")
	assert.Contains(t, output, "1 requirement(s)")

	// Nothing changed since the snapshot.
	output, err = executeRoot(t, "mode", "check", "do178c")
	require.NoError(t, err)
	assert.Contains(t, output, "No deviations detected.")

	require.NoError(t, os.WriteFile(source, []byte("// REQ-NAV-001\nint f(void) { return 1; }\n"), 0o640))

	output, err = executeRoot(t, "mode", "check", "do178c")
	require.NoError(t, err)
	assert.Contains(t, output, "modified-file")

	output, err = executeRoot(t, "mode", "enable", "do178c")
	require.NoError(t, err)
	assert.Contains(t, output, "re-enabled")
}

func TestModeCmd_DisableNotEnabled(t *testing.T) {
	useTempProject(t)

	_, err := executeRoot(t, "mode", "disable", "do330")
	require.Error(t, err)

	var notEnabled *domain.ModeNotEnabledError
	require.ErrorAs(t, err, &notEnabled)
	assert.Equal(t, m.ModeDo330, notEnabled.Mode)
}

func TestModeCmd_CheckWithoutSnapshot(t *testing.T) {
	useTempProject(t)

	output, err := executeRoot(t, "mode", "check", "arp4754a")
	require.NoError(t, err)
	assert.Contains(t, output, "No snapshot stored for ARP4754A")
}

func TestModeCmd_UnknownMode(t *testing.T) {
	useTempProject(t)

	_, err := executeRoot(t, "mode", "enable", "iso26262")
	require.Error(t, err)
}

func TestModeCmd_StatePersistsAcrossInvocations(t *testing.T) {
	useTempProject(t)

	_, err := executeRoot(t, "mode", "enable", "do330")
	require.NoError(t, err)

	state, err := stateStore().LoadState()
	require.NoError(t, err)
	assert.Equal(t, []m.ComplianceMode{m.ModeDo330}, state.EnabledModes)
}
