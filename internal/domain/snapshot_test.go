package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"avitrace.dev/pkg/avitrace/internal/adapter"
	m "avitrace.dev/pkg/avitrace/internal/model"
)

func TestCaptureState_ChecksumsAndTracedSets(t *testing.T) {
	dir := newProjectDir(t)

	nav := writeSource(t, dir, "src/nav.c", "// REQ-NAV-001\nint f(void) { return 0; }\n")
	writeSource(t, dir, "tests/nav_test.c", "// TEST: REQ-NAV-001\n")
	writeSource(t, dir, "docs/notes.txt", "not a source file\n")

	builder := NewSnapshotBuilder(adapter.NewLocalSourceFSAdapter())

	state, err := builder.CaptureState(m.Path(dir), nil)
	require.NoError(t, err)

	// Checksums cover every regular file, traced sets only annotated sources.
	require.Len(t, state.FileChecksums, 3)
	require.Contains(t, state.FileChecksums, m.Path(nav))
	require.Len(t, state.FileChecksums[m.Path(nav)], 64)

	require.Equal(t, map[string]bool{"REQ-NAV-001": true}, state.TracedRequirements)
	require.True(t, state.TracedFiles[m.Path(nav)])
	require.Len(t, state.TracedFiles, 2)
}

func TestBuildSnapshot_StampsCurrentTime(t *testing.T) {
	dir := newProjectDir(t)
	writeSource(t, dir, "src/nav.c", "// REQ-NAV-001\n")

	builder := NewSnapshotBuilder(adapter.NewLocalSourceFSAdapter())

	before := time.Now().UTC()
	snapshot, err := builder.BuildSnapshot(m.Path(dir), nil)
	require.NoError(t, err)
	after := time.Now().UTC()

	require.False(t, snapshot.Timestamp.Before(before))
	require.False(t, snapshot.Timestamp.After(after))
	require.Len(t, snapshot.FileChecksums, 1)
	require.True(t, snapshot.TracedRequirements["REQ-NAV-001"])
}

func TestCaptureState_SnapshotDiffDetectsEdit(t *testing.T) {
	dir := newProjectDir(t)
	path := writeSource(t, dir, "src/nav.c", "// REQ-NAV-001\nint f(void) { return 0; }\n")

	builder := NewSnapshotBuilder(adapter.NewLocalSourceFSAdapter())

	snapshot, err := builder.BuildSnapshot(m.Path(dir), nil)
	require.NoError(t, err)

	writeSource(t, dir, "src/nav.c", "// REQ-NAV-001\nint f(void) { return 1; }\n")

	state, err := builder.CaptureState(m.Path(dir), nil)
	require.NoError(t, err)

	deviations := DetectDeviations(snapshot, state.FileChecksums, state.TracedRequirements, state.TracedFiles)

	require.Len(t, deviations, 1)
	require.Equal(t, m.DeviationModifiedFile, deviations[0].Kind)
	require.Equal(t, m.Path(path), deviations[0].Path)
}
