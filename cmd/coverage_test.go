package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"avitrace.dev/pkg/avitrace/internal/domain"
)

func TestCoverageCmd_DisplaysReport(t *testing.T) {
	useTempProject(t)

	reportsDir := t.TempDir()
	report := `        -:    0:Source:nav.c
        5:    1:int f(void) {
    #####:    2:  return 0;
        -:    3:}`
	require.NoError(t, os.WriteFile(filepath.Join(reportsDir, "nav.c.gcov"), []byte(report), 0o640))

	output, err := executeRoot(t, "coverage", reportsDir)
	require.NoError(t, err)

	assert.Contains(t, output, "nav.c.gcov")
	assert.Contains(t, output, "50.00%")
	assert.Contains(t, output, "TOTAL FILES 1")
}

func TestCoverageCmd_IgnoresOtherExtensions(t *testing.T) {
	useTempProject(t)

	reportsDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(reportsDir, "notes.txt"), []byte("        1:    1:x;"), 0o640))

	output, err := executeRoot(t, "coverage", reportsDir)
	require.NoError(t, err)
	assert.Contains(t, output, "TOTAL FILES 0")
}

func TestCoverageCmd_MissingReportsDir(t *testing.T) {
	useTempProject(t)

	_, err := executeRoot(t, "coverage", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)

	var notFound *domain.CoverageDataNotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestCoverageCmd_InstrumentationFlags(t *testing.T) {
	useTempProject(t)

	output, err := executeRoot(t, "coverage", "--instrumentation-flags")
	require.NoError(t, err)

	assert.Contains(t, output, "--coverage")
	assert.Contains(t, output, "-fprofile-arcs")
	assert.Contains(t, output, "-ftest-coverage")

	// Flag state must not leak into later runs.
	coverageFlagsOnly = false
}
