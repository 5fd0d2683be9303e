// Package domain implements the certification-evidence logic: structural
// coverage analysis, requirement traceability, and compliance lifecycle.
package domain

import (
	"sort"
	"strconv"
	"strings"

	m "avitrace.dev/pkg/avitrace/internal/model"
)

// InstrumentationFlags returns the compiler flags the toolchain collaborator
// needs for coverage-instrumented builds.
func InstrumentationFlags() []string {
	return []string{"--coverage", "-fprofile-arcs", "-ftest-coverage"}
}

// ParseExecutionReport parses raw per-line execution-report text in the
// gcov convention "<count-or-marker>:<line-number>:<source-text>".
//
// The count field is "-" for non-executable lines, "#####" for executable
// lines that never ran, or an execution count. Blank lines and lines whose
// line-number field is non-numeric (report headers) are skipped. The report
// is machine-generated, so a malformed line is dropped rather than failing
// the whole parse.
func ParseExecutionReport(report string) ([]m.LineRecord, []m.BranchRecord) {
	var (
		lines    []m.LineRecord
		branches []m.BranchRecord
	)

	for _, raw := range strings.Split(report, "\n") {
		if strings.TrimSpace(raw) == "" {
			continue
		}

		parts := strings.SplitN(raw, ":", 3)
		if len(parts) < 3 {
			continue
		}

		countField := strings.TrimSpace(parts[0])

		lineNumber, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			continue
		}

		var executionCount *int

		switch countField {
		case "-":
			// Non-executable line.
		case "#####":
			zero := 0
			executionCount = &zero
		default:
			count, err := strconv.Atoi(countField)
			if err != nil {
				continue
			}

			// Counts are unsigned in the report format; anything negative
			// is treated as non-executable.
			if count >= 0 {
				executionCount = &count
			}
		}

		lines = append(lines, m.LineRecord{
			LineNumber:     lineNumber,
			ExecutionCount: executionCount,
		})

		if strings.Contains(parts[2], "branch") {
			branches = append(branches, m.BranchRecord{
				LineNumber: lineNumber,
				Taken:      !strings.Contains(parts[2], "never executed"),
			})
		}
	}

	return lines, branches
}

// StatementCoverage computes the percentage of executable lines executed at
// least once. An empty executable set yields 0.0, not NaN.
func StatementCoverage(lines []m.LineRecord) float64 {
	executable := 0
	executed := 0

	for _, line := range lines {
		if !line.Executable() {
			continue
		}

		executable++

		if line.Executed() {
			executed++
		}
	}

	if executable == 0 {
		return 0.0
	}

	return float64(executed) / float64(executable) * 100.0
}

// BranchCoverage computes the percentage of branch outcomes taken. An empty
// branch set yields 0.0.
func BranchCoverage(branches []m.BranchRecord) float64 {
	if len(branches) == 0 {
		return 0.0
	}

	taken := 0

	for _, branch := range branches {
		if branch.Taken {
			taken++
		}
	}

	return float64(taken) / float64(len(branches)) * 100.0
}

// GenerateCoverageReport parses each file's report text independently and
// aggregates project totals.
//
// Totals are computed by summing raw executed/executable and taken/total
// counts across all files before dividing. Averaging the per-file
// percentages would weight files of very different sizes equally and
// distort the certification metric.
func GenerateCoverageReport(reports map[m.Path]string) m.CoverageReport {
	paths := make([]m.Path, 0, len(reports))
	for path := range reports {
		paths = append(paths, path)
	}

	// Certification documents must render identically across runs.
	sort.Slice(paths, func(i, j int) bool { return paths[i] < paths[j] })

	var (
		files           []m.FileCoverage
		totalExecutable int
		totalExecuted   int
		totalBranches   int
		totalTaken      int
	)

	for _, path := range paths {
		lines, branches := ParseExecutionReport(reports[path])

		var uncovered []int

		for _, line := range lines {
			if line.Executable() {
				totalExecutable++

				if line.Executed() {
					totalExecuted++
				} else {
					uncovered = append(uncovered, line.LineNumber)
				}
			}
		}

		for _, branch := range branches {
			totalBranches++

			if branch.Taken {
				totalTaken++
			}
		}

		files = append(files, m.FileCoverage{
			File:              path,
			StatementCoverage: StatementCoverage(lines),
			BranchCoverage:    BranchCoverage(branches),
			UncoveredLines:    uncovered,
		})
	}

	report := m.CoverageReport{Files: files}

	if totalExecutable > 0 {
		report.TotalStatement = float64(totalExecuted) / float64(totalExecutable) * 100.0
	}

	if totalBranches > 0 {
		report.TotalBranch = float64(totalTaken) / float64(totalBranches) * 100.0
	}

	return report
}
