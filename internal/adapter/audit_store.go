package adapter

import (
	"bufio"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	m "avitrace.dev/pkg/avitrace/internal/model"
)

// AuditLogger is the append-only, replayable record of qualified tool
// invocations. Implementations must never rewrite, reorder, or truncate
// previously written records.
type AuditLogger interface {
	// Log serializes the record to a single line and appends it to the log.
	Log(record m.ToolUsageRecord) error

	// AllRecords returns every logged record in invocation order. A log that
	// was never written yields an empty slice, not an error.
	AllRecords() ([]m.ToolUsageRecord, error)

	// LogPath returns the location of the underlying log file.
	LogPath() m.Path
}

// ChecksumError reports a failure to compute an artifact checksum. It is
// distinct from a checksum mismatch, which is detected during comparison.
type ChecksumError struct {
	Path m.Path
	Err  error
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("failed to compute checksum for %s: %v", e.Path, e.Err)
}

func (e *ChecksumError) Unwrap() error {
	return e.Err
}

// ComputeSHA256 reads the full file contents and returns the lower-case
// 64-character hex digest.
func ComputeSHA256(path m.Path) (string, error) {
	contents, err := os.ReadFile(string(path))
	if err != nil {
		return "", &ChecksumError{Path: path, Err: err}
	}

	return fmt.Sprintf("%x", sha256.Sum256(contents)), nil
}

// JSONLAuditLogger stores one JSON record per line in a plain text file.
//
// The file handle is opened in append mode per call and never cached, so a
// process crash cannot truncate prior records. There is deliberately no API
// that rewrites or deletes lines.
type JSONLAuditLogger struct {
	path m.Path
}

// NewJSONLAuditLogger constructs a logger writing to path. The file is
// created lazily on the first Log call.
func NewJSONLAuditLogger(path m.Path) *JSONLAuditLogger {
	return &JSONLAuditLogger{path: path}
}

// Log appends the record as a single JSON line, creating the file if absent.
func (l *JSONLAuditLogger) Log(record m.ToolUsageRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("serialize tool usage record: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(string(l.path)), 0o750); err != nil {
		return fmt.Errorf("create audit log directory: %w", err)
	}

	f, err := os.OpenFile(string(l.path), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}

	defer func() {
		_ = f.Close()
	}()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("append to audit log: %w", err)
	}

	return nil
}

// AllRecords reads the log line by line, skipping blank lines, and returns
// records in file order, which is invocation order.
func (l *JSONLAuditLogger) AllRecords() ([]m.ToolUsageRecord, error) {
	f, err := os.Open(string(l.path))
	if err != nil {
		if os.IsNotExist(err) {
			// A project that never invoked a qualified tool is a valid,
			// compliant state.
			return []m.ToolUsageRecord{}, nil
		}

		return nil, fmt.Errorf("open audit log: %w", err)
	}

	defer func() {
		_ = f.Close()
	}()

	var records []m.ToolUsageRecord

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var record m.ToolUsageRecord
		if err := json.Unmarshal(line, &record); err != nil {
			return nil, fmt.Errorf("decode audit log record: %w", err)
		}

		records = append(records, record)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read audit log: %w", err)
	}

	if records == nil {
		records = []m.ToolUsageRecord{}
	}

	return records, nil
}

// LogPath returns the location of the underlying log file.
func (l *JSONLAuditLogger) LogPath() m.Path {
	return l.path
}
