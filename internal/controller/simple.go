package controller

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	m "avitrace.dev/pkg/avitrace/internal/model"
)

var (
	passStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	headerStyle  = lipgloss.NewStyle().Bold(true)
	subduedStyle = lipgloss.NewStyle().Faint(true)
)

// SimpleUI implements UI using cobra Command's Println.
type SimpleUI struct {
	cmd *cobra.Command
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

func (s *SimpleUI) printf(format string, args ...any) {
	s.cmd.Printf(format, args...)
}

func renderTable(header []string, rows [][]string, footer []string) string {
	var buffer bytes.Buffer

	table := tablewriter.NewWriter(&buffer)
	table.SetHeader(header)
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)

	for _, row := range rows {
		table.Append(row)
	}

	if footer != nil {
		table.SetFooter(footer)
	}

	table.Render()

	return buffer.String()
}

func formatPercent(value float64) string {
	return fmt.Sprintf("%.2f%%", value)
}

// DisplayCoverageReport renders per-file and total coverage.
func (s *SimpleUI) DisplayCoverageReport(report m.CoverageReport) error {
	rows := make([][]string, 0, len(report.Files))

	for _, file := range report.Files {
		rows = append(rows, []string{
			string(file.File),
			formatPercent(file.StatementCoverage),
			formatPercent(file.BranchCoverage),
			strconv.Itoa(len(file.UncoveredLines)),
		})
	}

	footer := []string{
		fmt.Sprintf("Total Files %d", len(report.Files)),
		formatPercent(report.TotalStatement),
		formatPercent(report.TotalBranch),
		"",
	}

	s.printf("\n%s", renderTable(
		[]string{"File", "Statement", "Branch", "Uncovered Lines"},
		rows,
		footer,
	))

	return nil
}

// DisplayMatrixSummary renders link counts per requirement.
func (s *SimpleUI) DisplayMatrixSummary(summary MatrixSummary) error {
	type linkCounts struct {
		implementation int
		test           int
		derived        int
	}

	counts := map[string]*linkCounts{}

	for _, link := range summary.Links {
		if counts[link.RequirementID] == nil {
			counts[link.RequirementID] = &linkCounts{}
		}

		switch link.LinkType {
		case m.LinkImplementation:
			counts[link.RequirementID].implementation++
		case m.LinkTest:
			counts[link.RequirementID].test++
		case m.LinkDerived:
			counts[link.RequirementID].derived++
		}
	}

	rows := make([][]string, 0, len(summary.Requirements))

	for _, id := range summary.Requirements {
		count := counts[id]
		if count == nil {
			count = &linkCounts{}
		}

		status := passStyle.Render("traced")
		if count.test == 0 {
			status = failStyle.Render("untested")
		}

		rows = append(rows, []string{
			id,
			strconv.Itoa(count.implementation),
			strconv.Itoa(count.test),
			strconv.Itoa(count.derived),
			status,
		})
	}

	footer := []string{
		fmt.Sprintf("Requirements %d", len(summary.Requirements)),
		"",
		"",
		fmt.Sprintf("Files %d", len(summary.Files)),
		fmt.Sprintf("Links %d", len(summary.Links)),
	}

	s.printf("\n%s", renderTable(
		[]string{"Requirement", "Impl", "Test", "Derived", "Status"},
		rows,
		footer,
	))

	return nil
}

// DisplayTraceabilityLinks renders the links returned by an index query.
func (s *SimpleUI) DisplayTraceabilityLinks(links []m.TraceabilityLink) error {
	if len(links) == 0 {
		s.printf("%s\n", subduedStyle.Render("No links recorded."))
		return nil
	}

	rows := make([][]string, 0, len(links))
	for _, link := range links {
		rows = append(rows, []string{
			link.RequirementID,
			string(link.SourceFile),
			strconv.Itoa(link.LineNumber),
			string(link.LinkType),
		})
	}

	s.printf("\n%s", renderTable(
		[]string{"Requirement", "File", "Line", "Type"},
		rows,
		[]string{fmt.Sprintf("Links %d", len(links)), "", "", ""},
	))

	return nil
}

// DisplayUntestedRequirements renders requirements implemented but not tested.
func (s *SimpleUI) DisplayUntestedRequirements(requirements []string) error {
	if len(requirements) == 0 {
		s.printf("%s\n", passStyle.Render("All implemented requirements have test links."))
		return nil
	}

	s.printf("%s\n", failStyle.Render(fmt.Sprintf("%d requirement(s) without test links:", len(requirements))))

	for _, id := range requirements {
		s.printf("  %s\n", id)
	}

	return nil
}

// DisplayUntraceableFunctions renders function definitions lacking annotations.
func (s *SimpleUI) DisplayUntraceableFunctions(functions []m.UntraceableFunction) error {
	if len(functions) == 0 {
		s.printf("%s\n", passStyle.Render("No untraceable functions found."))
		return nil
	}

	rows := make([][]string, 0, len(functions))
	for _, function := range functions {
		rows = append(rows, []string{
			function.Name,
			string(function.File),
			strconv.Itoa(function.LineNumber),
		})
	}

	s.printf("\n%s", renderTable(
		[]string{"Function", "File", "Line"},
		rows,
		[]string{fmt.Sprintf("Untraceable %d", len(functions)), "", ""},
	))

	return nil
}

// DisplayAuditRecords renders the tool-usage log in invocation order.
func (s *SimpleUI) DisplayAuditRecords(records []m.ToolUsageRecord) error {
	if len(records) == 0 {
		s.printf("%s\n", subduedStyle.Render("Audit log is empty."))
		return nil
	}

	rows := make([][]string, 0, len(records))

	for _, record := range records {
		exitStatus := passStyle.Render(strconv.Itoa(record.ExitCode))
		if record.ExitCode != 0 {
			exitStatus = failStyle.Render(strconv.Itoa(record.ExitCode))
		}

		rows = append(rows, []string{
			record.Timestamp.Format(time.RFC3339),
			record.Tool,
			record.Version,
			strings.Join(record.Arguments, " "),
			exitStatus,
			fmt.Sprintf("%d in / %d out", len(record.InputChecksums), len(record.OutputChecksums)),
		})
	}

	s.printf("\n%s", renderTable(
		[]string{"Timestamp", "Tool", "Version", "Arguments", "Exit", "Artifacts"},
		rows,
		nil,
	))

	return nil
}

// DisplayModeStatus renders the compliance lifecycle and active obligations.
func (s *SimpleUI) DisplayModeStatus(
	enabled []m.ComplianceMode,
	snapshots map[m.ComplianceMode]m.ComplianceSnapshot,
	requirements m.ComplianceRequirements,
) error {
	enabledSet := map[m.ComplianceMode]bool{}
	for _, mode := range enabled {
		enabledSet[mode] = true
	}

	rows := make([][]string, 0, len(m.AllComplianceModes()))

	for _, mode := range m.AllComplianceModes() {
		status := subduedStyle.Render("disabled")
		detail := ""

		switch {
		case enabledSet[mode]:
			status = passStyle.Render("enabled")
		default:
			if snapshot, ok := snapshots[mode]; ok {
				detail = fmt.Sprintf("snapshot from %s", snapshot.Timestamp.Format(time.RFC3339))
			}
		}

		rows = append(rows, []string{string(mode), status, detail})
	}

	s.printf("\n%s", renderTable([]string{"Mode", "Status", "Detail"}, rows, nil))

	s.printf("\n%s\n", headerStyle.Render("Active requirements:"))

	for _, flag := range []struct {
		name string
		set  bool
	}{
		{"traceability", requirements.Traceability},
		{"coverage", requirements.Coverage},
		{"structural coverage", requirements.StructuralCoverage},
		{"tool qualification", requirements.ToolQualification},
		{"tool-usage logging", requirements.ToolUsageLogging},
		{"system traceability", requirements.SystemTraceability},
		{"safety assessment", requirements.SafetyAssessment},
	} {
		marker := subduedStyle.Render("-")
		if flag.set {
			marker = passStyle.Render("x")
		}

		s.printf("  [%s] %s\n", marker, flag.name)
	}

	return nil
}

// DisplayDeviationReport renders deviations detected since a mode was disabled.
func (s *SimpleUI) DisplayDeviationReport(report *m.DeviationReport) error {
	s.printf(
		"\n%s\n",
		headerStyle.Render(fmt.Sprintf(
			"Deviation report for %s (disabled %s, compared %s)",
			report.Mode,
			report.DisabledAt.Format(time.RFC3339),
			report.ReEnabledAt.Format(time.RFC3339),
		)),
	)

	if !report.HasDeviations() {
		s.printf("%s\n", passStyle.Render("No deviations detected."))
		return nil
	}

	rows := make([][]string, 0, len(report.Deviations))

	for _, deviation := range report.Deviations {
		rows = append(rows, []string{string(deviation.Kind), describeDeviation(deviation)})
	}

	s.printf("%s", renderTable(
		[]string{"Kind", "Detail"},
		rows,
		[]string{"Deviations", strconv.Itoa(len(report.Deviations))},
	))

	return nil
}

func describeDeviation(deviation m.Deviation) string {
	switch deviation.Kind {
	case m.DeviationNewUntracedFile, m.DeviationDeletedFile:
		return string(deviation.Path)
	case m.DeviationModifiedFile:
		return fmt.Sprintf("%s: %s -> %s", deviation.Path, shortChecksum(deviation.OldChecksum), shortChecksum(deviation.NewChecksum))
	case m.DeviationBrokenTraceabilityLink:
		return deviation.RequirementID
	case m.DeviationNewCodeWithoutTraceability:
		return fmt.Sprintf("%s: %d line(s)", deviation.Path, len(deviation.Lines))
	case m.DeviationCoverageGap:
		return fmt.Sprintf("%s: %s", deviation.Path, deviation.Description)
	}

	return string(deviation.Path)
}

func shortChecksum(checksum string) string {
	if len(checksum) > 12 {
		return checksum[:12]
	}

	return checksum
}
