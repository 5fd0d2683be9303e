package adapter

import (
	"os"
	"runtime"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	m "avitrace.dev/pkg/avitrace/internal/model"
)

// TreeChecksummer computes per-file SHA-256 checksums for an entire project
// tree. Hashing is the expensive part, so files are hashed in parallel; the
// result map is keyed by path and therefore order-independent.
type TreeChecksummer struct {
	fs SourceFSAdapter
}

// NewTreeChecksummer builds a checksummer on top of the provided adapter.
func NewTreeChecksummer(fs SourceFSAdapter) *TreeChecksummer {
	return &TreeChecksummer{fs: fs}
}

// IsSkippedDir reports whether a directory is excluded from evidence
// scanning: build output, target output, and dot-directories.
func IsSkippedDir(name string) bool {
	return name == "build" || name == "target" || strings.HasPrefix(name, ".")
}

// ChecksumTree walks root and returns a checksum for every regular file,
// skipping build, target, and dot directories plus any exclude globs.
func (c *TreeChecksummer) ChecksumTree(root m.Path, exclude []string) (map[m.Path]string, error) {
	var files []m.Path

	err := c.fs.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if path != string(root) && IsSkippedDir(info.Name()) {
				return SkipDir
			}

			return nil
		}

		if MatchesAnyGlob(exclude, m.Path(path)) {
			return nil
		}

		files = append(files, m.Path(path))

		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool { return files[i] < files[j] })

	checksums := make(map[m.Path]string, len(files))

	var mu sync.Mutex

	var group errgroup.Group
	group.SetLimit(runtime.NumCPU())

	for _, file := range files {
		file := file
		group.Go(func() error {
			sum, err := c.fs.HashFile(file)
			if err != nil {
				return &ChecksumError{Path: file, Err: err}
			}

			mu.Lock()
			checksums[file] = sum
			mu.Unlock()

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return checksums, nil
}
