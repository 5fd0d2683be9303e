package domain

import (
	"time"

	"avitrace.dev/pkg/avitrace/internal/adapter"
	m "avitrace.dev/pkg/avitrace/internal/model"
)

// ProjectState is the live view of a project used for deviation detection:
// file checksums plus the traced-requirement and traced-file sets derived by
// re-running the traceability builder over the current tree.
type ProjectState struct {
	FileChecksums      map[m.Path]string
	TracedRequirements map[string]bool
	TracedFiles        map[m.Path]bool
}

// SnapshotBuilder assembles compliance snapshots and live project state from
// the filesystem.
type SnapshotBuilder struct {
	checksummer *adapter.TreeChecksummer
	builder     *TraceabilityBuilder
}

// NewSnapshotBuilder constructs a builder on top of the provided adapter.
func NewSnapshotBuilder(fs adapter.SourceFSAdapter) *SnapshotBuilder {
	return &SnapshotBuilder{
		checksummer: adapter.NewTreeChecksummer(fs),
		builder:     NewTraceabilityBuilder(fs),
	}
}

// CaptureState checksums the project tree and rebuilds the traceability
// matrix to derive the traced sets.
func (b *SnapshotBuilder) CaptureState(root m.Path, exclude []string) (ProjectState, error) {
	checksums, err := b.checksummer.ChecksumTree(root, exclude)
	if err != nil {
		return ProjectState{}, err
	}

	matrix, err := b.builder.GenerateMatrix(root, exclude)
	if err != nil {
		return ProjectState{}, err
	}

	state := ProjectState{
		FileChecksums:      checksums,
		TracedRequirements: map[string]bool{},
		TracedFiles:        map[m.Path]bool{},
	}

	for _, id := range matrix.AllRequirements() {
		state.TracedRequirements[id] = true
	}

	for _, file := range matrix.AllFiles() {
		state.TracedFiles[file] = true
	}

	return state, nil
}

// BuildSnapshot captures the project state as an immutable snapshot stamped
// with the current time, for storage at mode-disable time.
func (b *SnapshotBuilder) BuildSnapshot(root m.Path, exclude []string) (m.ComplianceSnapshot, error) {
	state, err := b.CaptureState(root, exclude)
	if err != nil {
		return m.ComplianceSnapshot{}, err
	}

	return m.ComplianceSnapshot{
		Timestamp:          time.Now().UTC(),
		FileChecksums:      state.FileChecksums,
		TracedRequirements: state.TracedRequirements,
		TracedFiles:        state.TracedFiles,
	}, nil
}
