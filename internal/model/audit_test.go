package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewToolUsageRecord(t *testing.T) {
	before := time.Now().UTC()
	record := NewToolUsageRecord("gcov", "12.2.0", []string{"-b", "nav.c"}, 2)
	after := time.Now().UTC()

	require.Equal(t, "gcov", record.Tool)
	require.Equal(t, "12.2.0", record.Version)
	require.Equal(t, []string{"-b", "nav.c"}, record.Arguments)
	require.Equal(t, 2, record.ExitCode)
	require.NotNil(t, record.InputChecksums)
	require.NotNil(t, record.OutputChecksums)
	require.False(t, record.Timestamp.Before(before))
	require.False(t, record.Timestamp.After(after))
}

func TestToolUsageRecord_Adders(t *testing.T) {
	record := NewToolUsageRecord("gcov", "12.2.0", nil, 0)

	record.AddInputChecksum("src/nav.c", "aaa")
	record.AddOutputChecksum("nav.c.gcov", "bbb")
	record.AddDiagnostic("warning: stale graph file")
	record.AddDiagnostic("note: 2 functions instrumented")

	require.Equal(t, "aaa", record.InputChecksums["src/nav.c"])
	require.Equal(t, "bbb", record.OutputChecksums["nav.c.gcov"])
	require.Equal(t, []string{"warning: stale graph file", "note: 2 functions instrumented"}, record.Diagnostics)
}

func TestToolUsageRecord_LogFieldNames(t *testing.T) {
	// The JSON keys are the on-disk audit log format; renaming them would
	// orphan existing logs.
	data, err := json.Marshal(NewToolUsageRecord("gcov", "12.2.0", nil, 0))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	for _, key := range []string{
		"tool", "version", "arguments", "input_checksums",
		"output_checksums", "timestamp", "exit_code", "diagnostics",
	} {
		require.Contains(t, decoded, key)
	}
}
