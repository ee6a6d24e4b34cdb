package linting

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/temirov/lintrun/internal/checkers"
)

const (
	successBannerConstant     = "All checks passed!"
	failureBannerConstant     = "***ERROR: Some checks failed"
	diagnosticLineEndConstant = "\n"
	reportWriteErrorTemplate  = "unable to write report: %w"
)

// PhaseSummary counts the files a checker inspected and how many of them failed.
type PhaseSummary struct {
	Checker      checkers.CheckerName
	CheckedFiles int
	FailedFiles  int
}

// Report aggregates a lint run. Diagnostics holds only non-empty results, ordered by phase and then by submission.
type Report struct {
	Phases      []PhaseSummary
	Diagnostics []checkers.Diagnostic
}

// Succeeded reports whether every check produced an empty diagnostic.
func (report Report) Succeeded() bool {
	return len(report.Diagnostics) == 0
}

// CheckedFiles sums the files inspected across phases.
func (report Report) CheckedFiles() int {
	total := 0
	for _, phase := range report.Phases {
		total += phase.CheckedFiles
	}
	return total
}

// ReportPrinter renders the final banner followed by every diagnostic.
type ReportPrinter struct {
	writer       io.Writer
	successColor *color.Color
	failureColor *color.Color
}

// NewReportPrinter constructs a ReportPrinter. Colors follow fatih/color terminal detection unless disabled.
func NewReportPrinter(writer io.Writer, disableColor bool) *ReportPrinter {
	if writer == nil {
		writer = io.Discard
	}
	successColor := color.New(color.FgGreen, color.Bold)
	failureColor := color.New(color.FgRed, color.Bold)
	if disableColor {
		successColor.DisableColor()
		failureColor.DisableColor()
	}
	return &ReportPrinter{writer: writer, successColor: successColor, failureColor: failureColor}
}

// Print writes the report.
func (printer *ReportPrinter) Print(report Report) error {
	if _, writeError := fmt.Fprintln(printer.writer); writeError != nil {
		return fmt.Errorf(reportWriteErrorTemplate, writeError)
	}

	if report.Succeeded() {
		if _, writeError := printer.successColor.Fprintln(printer.writer, successBannerConstant); writeError != nil {
			return fmt.Errorf(reportWriteErrorTemplate, writeError)
		}
		return nil
	}

	if _, writeError := printer.failureColor.Fprintln(printer.writer, failureBannerConstant); writeError != nil {
		return fmt.Errorf(reportWriteErrorTemplate, writeError)
	}
	for _, diagnostic := range report.Diagnostics {
		text := diagnostic.Text
		if !strings.HasSuffix(text, diagnosticLineEndConstant) {
			text += diagnosticLineEndConstant
		}
		if _, writeError := io.WriteString(printer.writer, text); writeError != nil {
			return fmt.Errorf(reportWriteErrorTemplate, writeError)
		}
	}
	return nil
}
