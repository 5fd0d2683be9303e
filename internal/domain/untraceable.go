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

// functionDefinitionPattern matches an identifier immediately preceding a
// parenthesized parameter list.
var functionDefinitionPattern = regexp.MustCompile(`\b([a-zA-Z_]\w*)\s*\([^)]*\)`)

// controlFlowKeywords are identifiers that precede a parenthesis without
// being function names.
var controlFlowKeywords = map[string]bool{
	"if":     true,
	"while":  true,
	"for":    true,
	"switch": true,
	"return": true,
	"sizeof": true,
}

// annotationLookback is how many preceding lines are searched for a
// requirement annotation before a definition counts as untraceable.
const annotationLookback = 10

// FindUntraceableFunctions scans every non-test .c/.cpp file under root for
// function definitions with no requirement annotation within the preceding
// lines.
//
// This is a textual heuristic, not a parser: a candidate definition is a
// non-blank line that is not a preprocessor directive or comment, contains a
// parenthesized list, and does not end with a semicolon. Multi-line
// signatures and macro-generated definitions are known failure modes,
// accepted in exchange for independence from a compiler front end.
func (b *TraceabilityBuilder) FindUntraceableFunctions(root m.Path, exclude []string) ([]m.UntraceableFunction, error) {
	var untraceable []m.UntraceableFunction

	err := b.fs.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if path != string(root) && adapter.IsSkippedDir(info.Name()) {
				return adapter.SkipDir
			}

			return nil
		}

		ext := filepath.Ext(path)
		if ext != ".c" && ext != ".cpp" {
			return nil
		}

		if isTestFile(path) || adapter.MatchesAnyGlob(exclude, m.Path(path)) {
			return nil
		}

		content, err := b.fs.ReadFile(m.Path(path))
		if err != nil {
			return fmt.Errorf("read source %s: %w", path, err)
		}

		untraceable = append(untraceable, scanUntraceableFunctions(m.Path(path), string(content))...)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return untraceable, nil
}

// scanUntraceableFunctions applies the definition heuristic to one file.
func scanUntraceableFunctions(file m.Path, content string) []m.UntraceableFunction {
	var untraceable []m.UntraceableFunction

	lines := strings.Split(content, "\n")

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)

		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		if strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "/*") || strings.HasPrefix(trimmed, "*") {
			continue
		}

		if !strings.Contains(trimmed, "(") || !strings.Contains(trimmed, ")") {
			continue
		}

		// Declarations and calls end with a semicolon.
		if strings.HasSuffix(trimmed, ";") {
			continue
		}

		match := functionDefinitionPattern.FindStringSubmatch(trimmed)
		if match == nil {
			continue
		}

		name := match[1]
		if controlFlowKeywords[name] {
			continue
		}

		if hasNearbyAnnotation(lines, i) {
			continue
		}

		untraceable = append(untraceable, m.UntraceableFunction{
			Name:       name,
			File:       file,
			LineNumber: i + 1,
		})
	}

	return untraceable
}

// hasNearbyAnnotation checks the definition line and up to annotationLookback
// preceding lines for a requirement ID.
func hasNearbyAnnotation(lines []string, definitionLine int) bool {
	start := definitionLine - annotationLookback
	if start < 0 {
		start = 0
	}

	for _, line := range lines[start : definitionLine+1] {
		if requirementIDPattern.MatchString(line) {
			return true
		}
	}

	return false
}
