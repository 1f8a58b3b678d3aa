// Package render turns validation results into the two output formats
// "jvl check" supports: colored, human-readable text on stderr, and
// structured JSON on stdout for scripts and editors.
package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/sargunv/jvl/internal/diagnostic"
)

// Summary holds the aggregate counters printed after a batch run.
type Summary struct {
	CheckedFiles  int
	ValidFiles    int
	InvalidFiles  int
	SkippedFiles  int
	TotalErrors   int
	TotalWarnings int
	Duration      time.Duration
	Jobs          int
	HasToolError  bool
}

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	dimStyle     = lipgloss.NewStyle().Faint(true)
	labelStyle   = lipgloss.NewStyle().Bold(true)
)

func plural(n int, singular, pluralForm string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	return fmt.Sprintf("%d %s", n, pluralForm)
}

func formatDuration(d time.Duration) string {
	ms := d.Milliseconds()
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	secs := d.Seconds()
	if secs < 10.0 {
		return fmt.Sprintf("%.1fs", secs)
	}
	return fmt.Sprintf("%ds", int64(secs+0.5))
}

// Human renders results and warnings in human-readable form to w
// (typically stderr, so stdout stays clean for pipelines even when
// --format human is the default).
func Human(w io.Writer, results []diagnostic.FileResult, warnings []diagnostic.Warning, summary Summary) {
	for _, warning := range warnings {
		fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("warning: %s: %s", warning.Code, warning.Message)))
	}

	for _, result := range results {
		if result.Skipped || len(result.Errors) == 0 {
			continue
		}
		for _, d := range result.Errors {
			fmt.Fprintln(w, renderDiagnostic(result.Path, d))
		}
	}

	fmt.Fprintln(w)
	duration := formatDuration(summary.Duration)
	if summary.InvalidFiles == 0 {
		var msg string
		if summary.CheckedFiles == 0 {
			msg = fmt.Sprintf("✓ No files checked (%s)", duration)
		} else {
			msg = fmt.Sprintf("✓ All %s valid (%s)", plural(summary.CheckedFiles, "file", "files"), duration)
		}
		fmt.Fprintln(w, successStyle.Render(msg))
		if summary.SkippedFiles > 0 {
			fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("  Skipped %s (no schema)", plural(summary.SkippedFiles, "file", "files"))))
		}
		return
	}

	primary := fmt.Sprintf("✗ Found %s in %s", plural(summary.TotalErrors, "error", "errors"), plural(summary.InvalidFiles, "file", "files"))
	fmt.Fprintln(w, errorStyle.Render(primary))

	meta := fmt.Sprintf("  Checked %s", plural(summary.CheckedFiles, "file", "files"))
	if summary.SkippedFiles > 0 {
		meta += fmt.Sprintf(", skipped %s", plural(summary.SkippedFiles, "file", "files"))
	}
	meta += fmt.Sprintf(" (%s)", duration)
	fmt.Fprintln(w, dimStyle.Render(meta))
}

// renderDiagnostic formats one diagnostic as a miette-style single block:
// a location line, a bold one-line label, the message, and an optional
// help line.
func renderDiagnostic(path string, d diagnostic.FileDiagnostic) string {
	var b strings.Builder

	style := errorStyle
	if d.Severity == diagnostic.SeverityWarning {
		style = warnStyle
	}

	loc := path
	if d.Location != nil {
		loc = fmt.Sprintf("%s:%d:%d", path, d.Location.Line+1, d.Location.Column+1)
	}
	fmt.Fprintf(&b, "%s %s\n", style.Render(fmt.Sprintf("%s [%s]", strings.ToUpper(d.Severity.String()), d.Code)), loc)

	if d.Label != "" {
		fmt.Fprintf(&b, "  %s %s\n", labelStyle.Render("→"), d.Label)
	}
	fmt.Fprintf(&b, "  %s\n", d.Message)
	if d.Help != "" {
		fmt.Fprintln(&b, dimStyle.Render(fmt.Sprintf("  help: %s", d.Help)))
	}
	return strings.TrimRight(b.String(), "\n")
}
