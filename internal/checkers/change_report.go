package checkers

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/sourcegraph/go-diff/diff"
)

const (
	originalFilePrefixConstant       = "a/"
	modifiedFilePrefixConstant       = "b/"
	diffRenderErrorTemplateConstant  = "unable to render diff for %s: %w"
	diffParseErrorTemplateConstant   = "unable to parse diff for %s: %w"
	modificationWarningTemplate      = "%s: warning: code was clang-formatted:\n"
	unexpectedModificationTemplate   = "%s: warning: %s modified the file outside fix mode; original content restored:\n"
	formattingPreviewWarningTemplate = "%s: warning: clang-format would apply these changes:\n"
	lineTerminatorConstant           = "\n"
	missingFinalNewlineConstant      = "\\ No newline at end of file\n"
)

// ChangeReport describes the line-level difference between two versions of a file.
type ChangeReport struct {
	Diff         string
	LinesAdded   int
	LinesRemoved int
}

// Empty reports whether the compared contents were identical.
func (report ChangeReport) Empty() bool {
	return len(report.Diff) == 0
}

// BuildChangeReport renders a unified diff of before and after and counts the touched lines.
func BuildChangeReport(relativePath string, before []byte, after []byte, contextLines int) (ChangeReport, error) {
	if bytes.Equal(before, after) {
		return ChangeReport{}, nil
	}
	if contextLines < 0 {
		contextLines = 0
	}

	slashPath := filepath.ToSlash(relativePath)
	unifiedDiff := difflib.UnifiedDiff{
		A:        splitDiffLines(before),
		B:        splitDiffLines(after),
		FromFile: originalFilePrefixConstant + slashPath,
		ToFile:   modifiedFilePrefixConstant + slashPath,
		Context:  contextLines,
	}
	renderedDiff, renderError := difflib.GetUnifiedDiffString(unifiedDiff)
	if renderError != nil {
		return ChangeReport{}, fmt.Errorf(diffRenderErrorTemplateConstant, slashPath, renderError)
	}
	if len(renderedDiff) == 0 {
		return ChangeReport{}, nil
	}

	parsedDiff, parseError := diff.ParseFileDiff([]byte(renderedDiff))
	if parseError != nil {
		return ChangeReport{Diff: renderedDiff}, fmt.Errorf(diffParseErrorTemplateConstant, slashPath, parseError)
	}
	statistics := parsedDiff.Stat()

	return ChangeReport{
		Diff:         renderedDiff,
		LinesAdded:   int(statistics.Added + statistics.Changed),
		LinesRemoved: int(statistics.Deleted + statistics.Changed),
	}, nil
}

// splitDiffLines keeps each line's terminator. An unterminated last line carries
// the unified diff marker so that it never compares equal to a terminated one.
func splitDiffLines(content []byte) []string {
	lines := strings.SplitAfter(string(content), lineTerminatorConstant)
	if len(lines[len(lines)-1]) == 0 {
		return lines[:len(lines)-1]
	}
	lines[len(lines)-1] += lineTerminatorConstant + missingFinalNewlineConstant
	return lines
}
