package adapter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	m "avitrace.dev/pkg/avitrace/internal/model"
)

func TestLocalSourceFSAdapter_ReadWriteRoundTrip(t *testing.T) {
	fs := NewLocalSourceFSAdapter()
	path := m.Path(filepath.Join(t.TempDir(), "artifact.txt"))

	require.NoError(t, fs.WriteFile(path, []byte("evidence"), 0o640))

	content, err := fs.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, []byte("evidence"), content)

	info, err := fs.FileInfo(path)
	require.NoError(t, err)
	require.False(t, info.IsDir())
	require.Equal(t, int64(len("evidence")), info.Size())
}

func TestLocalSourceFSAdapter_HashFileMatchesComputeSHA256(t *testing.T) {
	fs := NewLocalSourceFSAdapter()
	path := m.Path(filepath.Join(t.TempDir(), "artifact.bin"))

	require.NoError(t, fs.WriteFile(path, []byte("same bytes"), 0o640))

	streamed, err := fs.HashFile(path)
	require.NoError(t, err)

	buffered, err := ComputeSHA256(path)
	require.NoError(t, err)

	require.Equal(t, buffered, streamed)
}

func TestLocalSourceFSAdapter_WalkVisitsAllEntries(t *testing.T) {
	fs := NewLocalSourceFSAdapter()
	dir := t.TempDir()

	writeTreeFile(t, dir, "a.c", "a")
	writeTreeFile(t, dir, "sub/b.c", "b")

	var files []string

	err := fs.Walk(m.Path(dir), func(path string, info os.FileInfo, err error) error {
		require.NoError(t, err)

		if !info.IsDir() {
			files = append(files, filepath.Base(path))
		}

		return nil
	})
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"a.c", "b.c"}, files)
}

func TestLocalSourceFSAdapter_WalkSkipDir(t *testing.T) {
	fs := NewLocalSourceFSAdapter()
	dir := t.TempDir()

	writeTreeFile(t, dir, "keep/a.c", "a")
	writeTreeFile(t, dir, "skip/b.c", "b")

	var files []string

	err := fs.Walk(m.Path(dir), func(path string, info os.FileInfo, err error) error {
		require.NoError(t, err)

		if info.IsDir() && info.Name() == "skip" {
			return SkipDir
		}

		if !info.IsDir() {
			files = append(files, filepath.Base(path))
		}

		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{"a.c"}, files)
}
