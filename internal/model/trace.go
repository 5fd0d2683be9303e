package model

import "time"

// Path represents a file system path.
type Path string

// LinkType defines the relationship between a requirement and an artifact.
type LinkType string

const (
	// LinkImplementation links a requirement to source code implementing it.
	LinkImplementation LinkType = "Implementation"
	// LinkTest links a requirement to a test case verifying it.
	LinkTest LinkType = "Test"
	// LinkDerived links a derived requirement to its parent.
	LinkDerived LinkType = "Derived"
)

// TraceabilityLink is a recorded association between a requirement ID and a
// specific source or test location.
type TraceabilityLink struct {
	RequirementID string
	SourceFile    Path
	LineNumber    int
	LinkType      LinkType
	CreatedAt     time.Time
}

// NewTraceabilityLink builds a link stamped with the current time.
func NewTraceabilityLink(requirementID string, sourceFile Path, lineNumber int, linkType LinkType) TraceabilityLink {
	return TraceabilityLink{
		RequirementID: requirementID,
		SourceFile:    sourceFile,
		LineNumber:    lineNumber,
		LinkType:      linkType,
		CreatedAt:     time.Now().UTC(),
	}
}

// UntraceableFunction is a derived finding: a function definition with no
// requirement annotation nearby. It is recomputed on demand, not persisted.
type UntraceableFunction struct {
	Name       string
	File       Path
	LineNumber int
}
