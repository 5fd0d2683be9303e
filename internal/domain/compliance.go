package domain

import (
	"sort"

	m "avitrace.dev/pkg/avitrace/internal/model"
)

// modeRecord holds the lifecycle of a single compliance mode. A mode is
// either enabled or carries at most one snapshot from its last disable; the
// per-mode record makes that invariant hold by construction.
type modeRecord struct {
	enabled  bool
	snapshot *m.ComplianceSnapshot
}

// ComplianceSystem manages which certification standards are enforced and the
// snapshots captured while their enforcement is suspended.
//
// The system is an explicit owned value; no method is internally
// synchronized, so callers sharing one across goroutines must serialize
// access externally.
type ComplianceSystem struct {
	modes map[m.ComplianceMode]*modeRecord
}

// NewComplianceSystem returns a system with no modes enabled.
func NewComplianceSystem() *ComplianceSystem {
	return &ComplianceSystem{modes: map[m.ComplianceMode]*modeRecord{}}
}

// NewComplianceSystemFromState rebuilds a system from its persisted state.
func NewComplianceSystemFromState(state m.ComplianceState) *ComplianceSystem {
	system := NewComplianceSystem()

	for _, mode := range state.EnabledModes {
		system.record(mode).enabled = true
	}

	for mode, snapshot := range state.DisabledSnapshots {
		record := system.record(mode)
		if record.enabled {
			// Enabled wins over a stale snapshot; a mode is never in both.
			continue
		}

		record.snapshot = &snapshot
	}

	return system
}

func (s *ComplianceSystem) record(mode m.ComplianceMode) *modeRecord {
	if s.modes[mode] == nil {
		s.modes[mode] = &modeRecord{}
	}

	return s.modes[mode]
}

// State captures the system in its persistable shape.
func (s *ComplianceSystem) State() m.ComplianceState {
	state := m.ComplianceState{
		DisabledSnapshots: map[m.ComplianceMode]m.ComplianceSnapshot{},
	}

	state.EnabledModes = s.EnabledModes()

	for mode, record := range s.modes {
		if record.snapshot != nil {
			state.DisabledSnapshots[mode] = *record.snapshot
		}
	}

	return state
}

// EnableMode enables a mode. If a snapshot from a previous disable exists it
// is consumed, and a DeviationReport stub carrying the original disable time
// is returned; the full deviation content comes from the explicit comparison
// call, which keeps reactivation cheap. Enabling an already-enabled mode is a
// no-op returning nil.
func (s *ComplianceSystem) EnableMode(mode m.ComplianceMode) *m.DeviationReport {
	record := s.record(mode)

	if record.enabled {
		return nil
	}

	record.enabled = true

	if record.snapshot == nil {
		return nil
	}

	disabledAt := record.snapshot.Timestamp
	record.snapshot = nil

	return m.NewDeviationReport(mode, disabledAt)
}

// DisableMode suspends enforcement of an enabled mode, storing the supplied
// snapshot (or a freshly empty one) keyed by mode. Disabling a mode that is
// not enabled is a no-op; the return value reports whether the transition
// happened. Snapshots are independent per mode.
func (s *ComplianceSystem) DisableMode(mode m.ComplianceMode, snapshot *m.ComplianceSnapshot) bool {
	record := s.record(mode)

	if !record.enabled {
		return false
	}

	record.enabled = false

	if snapshot == nil {
		empty := m.NewComplianceSnapshot()
		record.snapshot = &empty
	} else {
		record.snapshot = snapshot
	}

	return true
}

// GetSnapshot returns the snapshot stored for a disabled mode, if any.
func (s *ComplianceSystem) GetSnapshot(mode m.ComplianceMode) (m.ComplianceSnapshot, bool) {
	record, ok := s.modes[mode]
	if !ok || record.snapshot == nil {
		return m.ComplianceSnapshot{}, false
	}

	return *record.snapshot, true
}

// IsModeEnabled reports whether a mode is currently enforced.
func (s *ComplianceSystem) IsModeEnabled(mode m.ComplianceMode) bool {
	record, ok := s.modes[mode]

	return ok && record.enabled
}

// EnabledModes returns the enabled modes in the fixed declaration order.
func (s *ComplianceSystem) EnabledModes() []m.ComplianceMode {
	var enabled []m.ComplianceMode

	for _, mode := range m.AllComplianceModes() {
		if s.IsModeEnabled(mode) {
			enabled = append(enabled, mode)
		}
	}

	return enabled
}

// HasAnyModeEnabled reports whether any standard is currently enforced.
func (s *ComplianceSystem) HasAnyModeEnabled() bool {
	return len(s.EnabledModes()) > 0
}

// ActiveRequirements derives the evidence obligations from the enabled modes.
// Each mode contributes its flags and the result is the union: no mode can
// suppress a flag another mode requires.
func (s *ComplianceSystem) ActiveRequirements() m.ComplianceRequirements {
	var requirements m.ComplianceRequirements

	for _, mode := range s.EnabledModes() {
		switch mode {
		case m.ModeDo178c:
			requirements.Traceability = true
			requirements.Coverage = true
			requirements.StructuralCoverage = true
		case m.ModeDo330:
			requirements.ToolQualification = true
			requirements.ToolUsageLogging = true
		case m.ModeArp4754a:
			requirements.SystemTraceability = true
			requirements.SafetyAssessment = true
		}
	}

	return requirements
}

// GenerateDeviationReport compares the snapshot stored for a still-disabled
// mode against the supplied current project state. It returns nil when the
// mode holds no snapshot. The report is produced, never stored.
func (s *ComplianceSystem) GenerateDeviationReport(
	mode m.ComplianceMode,
	currentFiles map[m.Path]string,
	currentTracedRequirements map[string]bool,
	currentTracedFiles map[m.Path]bool,
) *m.DeviationReport {
	snapshot, ok := s.GetSnapshot(mode)
	if !ok {
		return nil
	}

	report := m.NewDeviationReport(mode, snapshot.Timestamp)

	for _, deviation := range DetectDeviations(snapshot, currentFiles, currentTracedRequirements, currentTracedFiles) {
		report.AddDeviation(deviation)
	}

	return report
}

// DetectDeviations diffs a snapshot against current project state in three
// passes: new untraced files, then modified/deleted files, then broken
// traceability links. Within a pass, paths and requirement IDs are visited in
// sorted order so reports render identically across runs.
func DetectDeviations(
	snapshot m.ComplianceSnapshot,
	currentFiles map[m.Path]string,
	currentTracedRequirements map[string]bool,
	currentTracedFiles map[m.Path]bool,
) []m.Deviation {
	var deviations []m.Deviation

	for _, path := range sortedPaths(currentFiles) {
		if _, known := snapshot.FileChecksums[path]; known {
			continue
		}

		if !currentTracedFiles[path] {
			deviations = append(deviations, m.Deviation{
				Kind: m.DeviationNewUntracedFile,
				Path: path,
			})
		}
	}

	for _, path := range sortedPaths(snapshot.FileChecksums) {
		oldChecksum := snapshot.FileChecksums[path]

		newChecksum, present := currentFiles[path]
		if !present {
			deviations = append(deviations, m.Deviation{
				Kind: m.DeviationDeletedFile,
				Path: path,
			})

			continue
		}

		if newChecksum != oldChecksum {
			deviations = append(deviations, m.Deviation{
				Kind:        m.DeviationModifiedFile,
				Path:        path,
				OldChecksum: oldChecksum,
				NewChecksum: newChecksum,
			})
		}
	}

	requirements := make([]string, 0, len(snapshot.TracedRequirements))
	for id := range snapshot.TracedRequirements {
		requirements = append(requirements, id)
	}

	sort.Strings(requirements)

	for _, id := range requirements {
		if !currentTracedRequirements[id] {
			deviations = append(deviations, m.Deviation{
				Kind:          m.DeviationBrokenTraceabilityLink,
				RequirementID: id,
			})
		}
	}

	return deviations
}

func sortedPaths(paths map[m.Path]string) []m.Path {
	sorted := make([]m.Path, 0, len(paths))
	for path := range paths {
		sorted = append(sorted, path)
	}

	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	return sorted
}
