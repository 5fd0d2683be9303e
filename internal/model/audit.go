package model

import "time"

// ToolUsageRecord captures one invocation of a qualified tool. Records are
// immutable once logged; the JSON field names are part of the on-disk audit
// log format and must not change.
type ToolUsageRecord struct {
	Tool            string          `json:"tool"`
	Version         string          `json:"version"`
	Arguments       []string        `json:"arguments"`
	InputChecksums  map[Path]string `json:"input_checksums"`
	OutputChecksums map[Path]string `json:"output_checksums"`
	Timestamp       time.Time       `json:"timestamp"`
	ExitCode        int             `json:"exit_code"`
	Diagnostics     []string        `json:"diagnostics"`
}

// NewToolUsageRecord builds a record stamped with the current time. Checksums
// and diagnostics are added by the caller before logging.
func NewToolUsageRecord(tool, version string, arguments []string, exitCode int) ToolUsageRecord {
	return ToolUsageRecord{
		Tool:            tool,
		Version:         version,
		Arguments:       arguments,
		InputChecksums:  map[Path]string{},
		OutputChecksums: map[Path]string{},
		Timestamp:       time.Now().UTC(),
		ExitCode:        exitCode,
	}
}

// AddInputChecksum records the checksum of an input artifact.
func (r *ToolUsageRecord) AddInputChecksum(path Path, checksum string) {
	r.InputChecksums[path] = checksum
}

// AddOutputChecksum records the checksum of an output artifact.
func (r *ToolUsageRecord) AddOutputChecksum(path Path, checksum string) {
	r.OutputChecksums[path] = checksum
}

// AddDiagnostic appends a free-text diagnostic message.
func (r *ToolUsageRecord) AddDiagnostic(message string) {
	r.Diagnostics = append(r.Diagnostics, message)
}
