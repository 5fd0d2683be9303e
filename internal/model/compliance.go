package model

import "time"

// ComplianceMode identifies a certification standard that can be enforced.
// Multiple modes may be enabled concurrently.
type ComplianceMode string

const (
	// ModeDo178c is software airworthiness (DO-178C).
	ModeDo178c ComplianceMode = "DO-178C"
	// ModeDo330 is tool qualification (DO-330).
	ModeDo330 ComplianceMode = "DO-330"
	// ModeArp4754a is system-level safety integration (ARP4754A).
	ModeArp4754a ComplianceMode = "ARP4754A"
)

// AllComplianceModes lists the supported modes in a fixed order.
func AllComplianceModes() []ComplianceMode {
	return []ComplianceMode{ModeDo178c, ModeDo330, ModeArp4754a}
}

// ComplianceSnapshot is an immutable capture of project state, taken exactly
// once when a mode transitions from enabled to disabled.
type ComplianceSnapshot struct {
	Timestamp          time.Time       `yaml:"timestamp"`
	FileChecksums      map[Path]string `yaml:"file_checksums"`
	TracedRequirements map[string]bool `yaml:"traced_requirements"`
	TracedFiles        map[Path]bool   `yaml:"traced_files"`
}

// NewComplianceSnapshot returns an empty snapshot stamped with the current time.
func NewComplianceSnapshot() ComplianceSnapshot {
	return ComplianceSnapshot{
		Timestamp:          time.Now().UTC(),
		FileChecksums:      map[Path]string{},
		TracedRequirements: map[string]bool{},
		TracedFiles:        map[Path]bool{},
	}
}

// ComplianceState is the persisted shape of the compliance lifecycle. A mode
// appears either in EnabledModes or as a DisabledSnapshots key, never both.
type ComplianceState struct {
	EnabledModes      []ComplianceMode                       `yaml:"enabled_modes"`
	DisabledSnapshots map[ComplianceMode]ComplianceSnapshot `yaml:"disabled_snapshots"`
}

// DeviationKind discriminates the variants of a Deviation.
type DeviationKind string

const (
	// DeviationNewUntracedFile flags a file added with no traceability.
	DeviationNewUntracedFile DeviationKind = "new-untraced-file"
	// DeviationModifiedFile flags a checksum change since the snapshot.
	DeviationModifiedFile DeviationKind = "modified-file"
	// DeviationDeletedFile flags a file present in the snapshot but gone now.
	DeviationDeletedFile DeviationKind = "deleted-file"
	// DeviationBrokenTraceabilityLink flags a requirement that lost its trace.
	DeviationBrokenTraceabilityLink DeviationKind = "broken-traceability-link"
	// DeviationNewCodeWithoutTraceability flags new lines lacking annotations.
	DeviationNewCodeWithoutTraceability DeviationKind = "new-code-without-traceability"
	// DeviationCoverageGap flags a drop in structural coverage.
	DeviationCoverageGap DeviationKind = "coverage-gap"
)

// Deviation is one detected divergence between a snapshot and current project
// state. Only the fields relevant to Kind are populated.
type Deviation struct {
	Kind          DeviationKind
	Path          Path
	OldChecksum   string
	NewChecksum   string
	RequirementID string
	Lines         []int
	Description   string
}

// DeviationReport is produced, never stored, each time a comparison between a
// snapshot and the live project is requested.
type DeviationReport struct {
	Mode        ComplianceMode
	DisabledAt  time.Time
	ReEnabledAt time.Time
	Deviations  []Deviation
}

// NewDeviationReport builds a report for mode whose enforcement was suspended
// at disabledAt.
func NewDeviationReport(mode ComplianceMode, disabledAt time.Time) *DeviationReport {
	return &DeviationReport{
		Mode:        mode,
		DisabledAt:  disabledAt,
		ReEnabledAt: time.Now().UTC(),
	}
}

// AddDeviation appends a deviation to the report.
func (r *DeviationReport) AddDeviation(d Deviation) {
	r.Deviations = append(r.Deviations, d)
}

// HasDeviations reports whether any deviation was detected.
func (r *DeviationReport) HasDeviations() bool {
	return len(r.Deviations) > 0
}

// ComplianceRequirements is the evidence demanded by the currently enabled
// modes. It is derived purely from the enabled set and carries no state.
type ComplianceRequirements struct {
	Traceability       bool
	Coverage           bool
	StructuralCoverage bool
	ToolQualification  bool
	ToolUsageLogging   bool
	SystemTraceability bool
	SafetyAssessment   bool
}

// Any reports whether at least one requirement flag is set.
func (c ComplianceRequirements) Any() bool {
	return c.Traceability ||
		c.Coverage ||
		c.StructuralCoverage ||
		c.ToolQualification ||
		c.ToolUsageLogging ||
		c.SystemTraceability ||
		c.SafetyAssessment
}
