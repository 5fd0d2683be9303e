package adapter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	m "avitrace.dev/pkg/avitrace/internal/model"
)

func writeTreeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o640))

	return path
}

func TestChecksumTree_HashesEveryRegularFile(t *testing.T) {
	dir := t.TempDir()

	nav := writeTreeFile(t, dir, "src/nav.c", "int f;\n")
	alt := writeTreeFile(t, dir, "src/alt.c", "int g;\n")

	checksums, err := NewTreeChecksummer(NewLocalSourceFSAdapter()).ChecksumTree(m.Path(dir), nil)
	require.NoError(t, err)

	require.Len(t, checksums, 2)
	require.Len(t, checksums[m.Path(nav)], 64)
	require.Len(t, checksums[m.Path(alt)], 64)
	require.NotEqual(t, checksums[m.Path(nav)], checksums[m.Path(alt)])
}

func TestChecksumTree_SkipsBuildTargetAndDotDirs(t *testing.T) {
	dir := t.TempDir()

	kept := writeTreeFile(t, dir, "src/nav.c", "int f;\n")
	writeTreeFile(t, dir, "build/nav.o", "object\n")
	writeTreeFile(t, dir, "target/debug/bin", "binary\n")
	writeTreeFile(t, dir, ".git/config", "gitconfig\n")

	checksums, err := NewTreeChecksummer(NewLocalSourceFSAdapter()).ChecksumTree(m.Path(dir), nil)
	require.NoError(t, err)

	require.Len(t, checksums, 1)
	require.Contains(t, checksums, m.Path(kept))
}

func TestChecksumTree_HonorsExcludeGlobs(t *testing.T) {
	dir := t.TempDir()

	kept := writeTreeFile(t, dir, "src/nav.c", "int f;\n")
	writeTreeFile(t, dir, "src/gen/lookup.c", "int table;\n")

	checksums, err := NewTreeChecksummer(NewLocalSourceFSAdapter()).ChecksumTree(m.Path(dir), []string{"**/gen/**"})
	require.NoError(t, err)

	require.Len(t, checksums, 1)
	require.Contains(t, checksums, m.Path(kept))
}

func TestChecksumTree_SameContentSameChecksum(t *testing.T) {
	dir := t.TempDir()

	a := writeTreeFile(t, dir, "a.c", "identical\n")
	b := writeTreeFile(t, dir, "b.c", "identical\n")

	checksums, err := NewTreeChecksummer(NewLocalSourceFSAdapter()).ChecksumTree(m.Path(dir), nil)
	require.NoError(t, err)

	require.Equal(t, checksums[m.Path(a)], checksums[m.Path(b)])
}

func TestIsSkippedDir(t *testing.T) {
	require.True(t, IsSkippedDir("build"))
	require.True(t, IsSkippedDir("target"))
	require.True(t, IsSkippedDir(".git"))
	require.True(t, IsSkippedDir(".cache"))
	require.False(t, IsSkippedDir("src"))
	require.False(t, IsSkippedDir("builds"))
}

func TestMatchesAnyGlob(t *testing.T) {
	require.True(t, MatchesAnyGlob([]string{"**/*.gcov"}, "reports/nav.c.gcov"))
	require.True(t, MatchesAnyGlob([]string{"*.log", "**/vendor/**"}, "src/vendor/lib.c"))
	require.False(t, MatchesAnyGlob([]string{"**/*.gcov"}, "src/nav.c"))
	require.False(t, MatchesAnyGlob(nil, "src/nav.c"))
}

func TestMatchesAnyGlob_InvalidPatternNeverMatches(t *testing.T) {
	require.False(t, MatchesAnyGlob([]string{"[unclosed"}, "anything"))
}
