package domain

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	m "avitrace.dev/pkg/avitrace/internal/model"
)

// Matrix is the bidirectional requirement-traceability matrix: an append-only
// sequence of links plus two derived indices mapping requirement IDs and
// source files to link positions.
//
// AddLink is the only mutator and updates both indices in the same step.
// There is no remove or update primitive, matching the append-only
// evidentiary intent; the indices therefore can never desync from the links.
type Matrix struct {
	links            []m.TraceabilityLink
	requirementIndex map[string][]int
	fileIndex        map[m.Path][]int
	generatedAt      time.Time
}

// NewMatrix returns an empty matrix stamped with the current time.
func NewMatrix() *Matrix {
	return &Matrix{
		requirementIndex: map[string][]int{},
		fileIndex:        map[m.Path][]int{},
		generatedAt:      time.Now().UTC(),
	}
}

// AddLink appends a link and indexes it by requirement ID and source file.
func (x *Matrix) AddLink(link m.TraceabilityLink) {
	position := len(x.links)

	x.requirementIndex[link.RequirementID] = append(x.requirementIndex[link.RequirementID], position)
	x.fileIndex[link.SourceFile] = append(x.fileIndex[link.SourceFile], position)
	x.links = append(x.links, link)
}

// Links returns every link in insertion order.
func (x *Matrix) Links() []m.TraceabilityLink {
	return x.links
}

// GeneratedAt returns the matrix creation time.
func (x *Matrix) GeneratedAt() time.Time {
	return x.generatedAt
}

// LinksForRequirement returns all links recorded for a requirement ID.
func (x *Matrix) LinksForRequirement(requirementID string) []m.TraceabilityLink {
	return x.linksAt(x.requirementIndex[requirementID])
}

// LinksInFile returns all links recorded in a source file.
func (x *Matrix) LinksInFile(file m.Path) []m.TraceabilityLink {
	return x.linksAt(x.fileIndex[file])
}

func (x *Matrix) linksAt(positions []int) []m.TraceabilityLink {
	links := make([]m.TraceabilityLink, 0, len(positions))
	for _, position := range positions {
		links = append(links, x.links[position])
	}

	return links
}

// AllRequirements returns the distinct requirement IDs, sorted. These feed
// certification documents that must render identically across runs.
func (x *Matrix) AllRequirements() []string {
	requirements := make([]string, 0, len(x.requirementIndex))
	for id := range x.requirementIndex {
		requirements = append(requirements, id)
	}

	sort.Strings(requirements)

	return requirements
}

// AllFiles returns the distinct source files, sorted.
func (x *Matrix) AllFiles() []m.Path {
	files := make([]m.Path, 0, len(x.fileIndex))
	for file := range x.fileIndex {
		files = append(files, file)
	}

	sort.Slice(files, func(i, j int) bool { return files[i] < files[j] })

	return files
}

// FindUntestedRequirements returns, sorted, every requirement that has at
// least one Implementation link but no Test link.
func FindUntestedRequirements(matrix *Matrix) []string {
	var untested []string

	for _, id := range matrix.AllRequirements() {
		hasImplementation := false
		hasTest := false

		for _, link := range matrix.LinksForRequirement(id) {
			switch link.LinkType {
			case m.LinkImplementation:
				hasImplementation = true
			case m.LinkTest:
				hasTest = true
			case m.LinkDerived:
			}
		}

		if hasImplementation && !hasTest {
			untested = append(untested, id)
		}
	}

	sort.Strings(untested)

	return untested
}

// matrixCSVHeader is part of the export format consumed by audit tooling.
var matrixCSVHeader = []string{"Requirement ID", "Source File", "Line Number", "Link Type", "Created At"}

// ExportMatrix writes the matrix in the requested format. Only "csv" is
// supported; anything else yields an UnsupportedExportFormatError.
func ExportMatrix(matrix *Matrix, format string, w io.Writer) error {
	if strings.ToLower(format) != "csv" {
		return &UnsupportedExportFormatError{Format: format}
	}

	return exportMatrixCSV(matrix, w)
}

// exportMatrixCSV writes one row per link in insertion order, timestamps
// rendered as RFC3339.
func exportMatrixCSV(matrix *Matrix, w io.Writer) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(matrixCSVHeader); err != nil {
		return err
	}

	for _, link := range matrix.Links() {
		row := []string{
			link.RequirementID,
			string(link.SourceFile),
			strconv.Itoa(link.LineNumber),
			string(link.LinkType),
			link.CreatedAt.Format(time.RFC3339),
		}

		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()

	return writer.Error()
}
