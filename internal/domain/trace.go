package domain

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"avitrace.dev/pkg/avitrace/internal/adapter"
	m "avitrace.dev/pkg/avitrace/internal/model"
)

// requirementIDPattern matches REQ-XXX, REQ-XXX-YYY, REQ-XXX.1 and so on.
var requirementIDPattern = regexp.MustCompile(`REQ-[A-Z0-9]+(?:-[A-Z0-9]+)*(?:\.[0-9]+)?`)

// testAnnotationPattern matches a TEST: annotation and captures its trailing text.
var testAnnotationPattern = regexp.MustCompile(`TEST:\s*(.+)`)

// sourceExtensions are the file extensions routed to the annotation scanners.
var sourceExtensions = map[string]bool{
	".c":   true,
	".h":   true,
	".cpp": true,
	".hpp": true,
}

// TraceabilityBuilder extracts requirement and test annotations from a
// project tree and assembles the traceability matrix. The matrix is rebuilt
// from scratch on every invocation to guarantee determinism.
type TraceabilityBuilder struct {
	fs adapter.SourceFSAdapter
}

// NewTraceabilityBuilder constructs a builder on top of the provided adapter.
func NewTraceabilityBuilder(fs adapter.SourceFSAdapter) *TraceabilityBuilder {
	return &TraceabilityBuilder{fs: fs}
}

// ScanImplementationAnnotations records an Implementation link for every
// requirement-ID match anywhere in the content, at its 1-based line number.
func ScanImplementationAnnotations(file m.Path, content string) []m.TraceabilityLink {
	var links []m.TraceabilityLink

	for i, line := range strings.Split(content, "\n") {
		for _, id := range requirementIDPattern.FindAllString(line, -1) {
			links = append(links, m.NewTraceabilityLink(id, file, i+1, m.LinkImplementation))
		}
	}

	return links
}

// ScanTestAnnotations records a Test link for every requirement ID named in
// the trailing text of a TEST: annotation, in left-to-right order. A single
// annotation naming several IDs produces several links at the same line.
func ScanTestAnnotations(file m.Path, content string) []m.TraceabilityLink {
	var links []m.TraceabilityLink

	for i, line := range strings.Split(content, "\n") {
		match := testAnnotationPattern.FindStringSubmatch(line)
		if match == nil {
			continue
		}

		for _, id := range requirementIDPattern.FindAllString(match[1], -1) {
			links = append(links, m.NewTraceabilityLink(id, file, i+1, m.LinkTest))
		}
	}

	return links
}

// isTestFile classifies a path as a test artifact when the full path contains
// "test", case-insensitively.
func isTestFile(path string) bool {
	return strings.Contains(strings.ToLower(path), "test")
}

// GenerateMatrix walks the project root, routing test files to the test
// scanner and everything else to the implementation scanner. Directories
// named build or target and dot-directories are skipped, as are files
// matching the exclude globs.
func (b *TraceabilityBuilder) GenerateMatrix(root m.Path, exclude []string) (*Matrix, error) {
	matrix := NewMatrix()

	err := b.walkSources(root, exclude, func(path m.Path, content string) {
		var links []m.TraceabilityLink
		if isTestFile(string(path)) {
			links = ScanTestAnnotations(path, content)
		} else {
			links = ScanImplementationAnnotations(path, content)
		}

		for _, link := range links {
			matrix.AddLink(link)
		}
	})
	if err != nil {
		return nil, err
	}

	return matrix, nil
}

// walkSources visits every certification source file under root.
func (b *TraceabilityBuilder) walkSources(root m.Path, exclude []string, visit func(path m.Path, content string)) error {
	return b.fs.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if path != string(root) && adapter.IsSkippedDir(info.Name()) {
				return adapter.SkipDir
			}

			return nil
		}

		if !sourceExtensions[filepath.Ext(path)] {
			return nil
		}

		if adapter.MatchesAnyGlob(exclude, m.Path(path)) {
			return nil
		}

		content, err := b.fs.ReadFile(m.Path(path))
		if err != nil {
			return fmt.Errorf("read source %s: %w", path, err)
		}

		visit(m.Path(path), string(content))

		return nil
	})
}
