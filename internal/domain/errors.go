package domain

import (
	"fmt"

	m "avitrace.dev/pkg/avitrace/internal/model"
)

// CoverageDataNotFoundError reports a missing coverage report input.
type CoverageDataNotFoundError struct {
	Path m.Path
}

func (e *CoverageDataNotFoundError) Error() string {
	return fmt.Sprintf("coverage data not found: %s", e.Path)
}

// InvalidCoverageDataError reports report input that could not be used at all.
type InvalidCoverageDataError struct {
	File    m.Path
	Message string
}

func (e *InvalidCoverageDataError) Error() string {
	return fmt.Sprintf("invalid coverage data in %s: %s", e.File, e.Message)
}

// RequirementNotFoundError reports a lookup for an unknown requirement ID.
type RequirementNotFoundError struct {
	ID string
}

func (e *RequirementNotFoundError) Error() string {
	return fmt.Sprintf("requirement not found: %s", e.ID)
}

// ChecksumMismatchError reports an artifact whose content no longer matches
// its recorded checksum.
type ChecksumMismatchError struct {
	File     m.Path
	Expected string
	Found    string
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("checksum mismatch for %s: expected %s, found %s", e.File, e.Expected, e.Found)
}

// ModeNotEnabledError reports an operation requiring an enabled mode.
type ModeNotEnabledError struct {
	Mode m.ComplianceMode
}

func (e *ModeNotEnabledError) Error() string {
	return fmt.Sprintf("compliance mode not enabled: %s", e.Mode)
}

// UnsupportedExportFormatError reports an export format the matrix exporter
// does not understand.
type UnsupportedExportFormatError struct {
	Format string
}

func (e *UnsupportedExportFormatError) Error() string {
	return fmt.Sprintf("unsupported export format: %s", e.Format)
}
