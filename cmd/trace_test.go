package cmd

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"avitrace.dev/pkg/avitrace/internal/domain"
)

func writeProjectFile(t *testing.T, project, name, content string) {
	t.Helper()

	path := filepath.Join(project, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o640))
}

func TestTraceCmd_DisplaysSummary(t *testing.T) {
	project := useTempProject(t)

	writeProjectFile(t, project, "src/nav.c", "// REQ-NAV-001\nint f(void) { return 0; }\n")
	writeProjectFile(t, project, "tests/nav_test.c", "// TEST: REQ-NAV-001\n")
	writeProjectFile(t, project, "src/alt.c", "// REQ-ALT-002\n")

	output, err := executeRoot(t, "trace")
	require.NoError(t, err)

	assert.Contains(t, output, "REQ-NAV-001")
	assert.Contains(t, output, "REQ-ALT-002")
	assert.Contains(t, output, "traced")
	assert.Contains(t, output, "untested")
	assert.Contains(t, output, "REQUIREMENTS 2")
}

func TestTraceCmd_ExportsCSV(t *testing.T) {
	project := useTempProject(t)

	writeProjectFile(t, project, "src/nav.c", "// REQ-NAV-001\n")

	exportPath := filepath.Join(t.TempDir(), "export", "matrix.csv")

	output, err := executeRoot(t, "trace", "--export", exportPath)
	require.NoError(t, err)
	assert.Contains(t, output, "Matrix exported to")

	f, err := os.Open(exportPath)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "REQ-NAV-001", rows[1][0])

	traceExportPath = ""
}

func TestTraceCmd_UnsupportedExportFormat(t *testing.T) {
	useTempProject(t)

	_, err := executeRoot(t, "trace", "--export", filepath.Join(t.TempDir(), "m.xlsx"), "--format", "xlsx")
	require.Error(t, err)

	var formatErr *domain.UnsupportedExportFormatError
	require.ErrorAs(t, err, &formatErr)

	traceExportPath = ""
	traceExportFormat = "csv"
}

func TestTraceCmd_QueryByRequirement(t *testing.T) {
	project := useTempProject(t)

	writeProjectFile(t, project, "src/nav.c", "// REQ-NAV-001\n")
	writeProjectFile(t, project, "tests/nav_test.c", "// TEST: REQ-NAV-001\n")

	output, err := executeRoot(t, "trace", "--requirement", "REQ-NAV-001")
	require.NoError(t, err)

	assert.Contains(t, output, "REQ-NAV-001")
	assert.Contains(t, output, "Implementation")
	assert.Contains(t, output, "Test")
	assert.Contains(t, output, "LINKS 2")

	traceRequirementID = ""
}

func TestTraceCmd_QueryUnknownRequirement(t *testing.T) {
	useTempProject(t)

	_, err := executeRoot(t, "trace", "--requirement", "REQ-MISSING-001")
	require.Error(t, err)

	var notFound *domain.RequirementNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "REQ-MISSING-001", notFound.ID)

	traceRequirementID = ""
}

func TestTraceCmd_QueryByFile(t *testing.T) {
	project := useTempProject(t)

	writeProjectFile(t, project, "src/nav.c", "// REQ-NAV-001\n// REQ-ALT-002\n")

	output, err := executeRoot(t, "trace", "--file", filepath.Join(project, "src", "nav.c"))
	require.NoError(t, err)

	assert.Contains(t, output, "REQ-NAV-001")
	assert.Contains(t, output, "REQ-ALT-002")
	assert.Contains(t, output, "LINKS 2")

	traceFilePath = ""
}

func TestGapsCmd_ReportsUntestedAndUntraceable(t *testing.T) {
	project := useTempProject(t)

	writeProjectFile(t, project, "src/nav.c", "// REQ-NAV-001\nint annotated(void) { return 0; }\n")
	writeProjectFile(t, project, "src/alt.c", "int unannotated(int x) {\n  return x;\n}\n")

	output, err := executeRoot(t, "gaps")
	require.NoError(t, err)

	assert.Contains(t, output, "REQ-NAV-001")
	assert.Contains(t, output, "unannotated")
	assert.Contains(t, output, "UNTRACEABLE 1")
}

func TestGapsCmd_CleanProject(t *testing.T) {
	project := useTempProject(t)

	writeProjectFile(t, project, "src/nav.c", "// REQ-NAV-001\nint f(void) { return 0; }\n")
	writeProjectFile(t, project, "tests/nav_test.c", "// TEST: REQ-NAV-001\n")

	output, err := executeRoot(t, "gaps")
	require.NoError(t, err)

	assert.Contains(t, output, "All implemented requirements have test links.")
	assert.Contains(t, output, "No untraceable functions found.")
}
