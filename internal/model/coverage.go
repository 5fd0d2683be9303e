// Package model defines the data structures for certification evidence.
package model

// LineRecord is a single line from an instrumented-execution report.
// ExecutionCount is nil for non-executable lines (comments, blanks),
// zero for executable lines that never ran.
type LineRecord struct {
	LineNumber     int
	ExecutionCount *int
}

// Executable reports whether the line counts toward statement coverage.
func (l LineRecord) Executable() bool {
	return l.ExecutionCount != nil
}

// Executed reports whether the line ran at least once.
func (l LineRecord) Executed() bool {
	return l.ExecutionCount != nil && *l.ExecutionCount > 0
}

// BranchRecord marks one branch outcome at a source line.
type BranchRecord struct {
	LineNumber int
	Taken      bool
}

// FileCoverage holds computed coverage for a single source file.
// Values are derived from report data and never hand-edited.
type FileCoverage struct {
	File              Path
	StatementCoverage float64
	BranchCoverage    float64
	UncoveredLines    []int
}

// CoverageReport aggregates coverage across a project.
//
// Totals are computed by summing raw executed/executable counts across all
// files before dividing. Averaging per-file percentages would weight a
// 10-line file the same as a 10,000-line file and distort the metric.
type CoverageReport struct {
	Files          []FileCoverage
	TotalStatement float64
	TotalBranch    float64
}
