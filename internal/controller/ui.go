// Package controller provides output adapters for rendering certification
// evidence.
package controller

import (
	m "avitrace.dev/pkg/avitrace/internal/model"
)

// MatrixSummary is the display shape of a traceability matrix.
type MatrixSummary struct {
	Requirements []string
	Files        []m.Path
	Links        []m.TraceabilityLink
}

// UI defines the interface for displaying certification evidence.
// Implementations can use different output methods.
type UI interface {
	DisplayCoverageReport(report m.CoverageReport) error
	DisplayMatrixSummary(summary MatrixSummary) error
	DisplayTraceabilityLinks(links []m.TraceabilityLink) error
	DisplayUntestedRequirements(requirements []string) error
	DisplayUntraceableFunctions(functions []m.UntraceableFunction) error
	DisplayAuditRecords(records []m.ToolUsageRecord) error
	DisplayModeStatus(enabled []m.ComplianceMode, snapshots map[m.ComplianceMode]m.ComplianceSnapshot, requirements m.ComplianceRequirements) error
	DisplayDeviationReport(report *m.DeviationReport) error
}
