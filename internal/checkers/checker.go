package checkers

import (
	"context"
	"fmt"
	"strings"

	"github.com/temirov/lintrun/internal/execshell"
	"github.com/temirov/lintrun/internal/sources"
)

const (
	staticAnalysisCheckerNameConstant      = "clang-tidy"
	styleCheckerNameConstant               = "clang-format"
	readFailureTemplateConstant            = "%s: error: unable to read file: %v"
	executionFailureTemplateConstant       = "%s: error: unable to run %s: %v"
	restoreFailureTemplateConstant         = "%s: error: %v"
	diagnosticSeparatorConstant            = "\n"
	logFieldFileConstant                   = "file"
	logFieldCheckerConstant                = "checker"
	logFieldFixConstant                    = "fix"
	logFieldLinesAddedConstant             = "lines_added"
	logFieldLinesRemovedConstant           = "lines_removed"
	logFieldExitCodeConstant               = "exit_code"
	checkCompletedMessageConstant          = "check completed"
	fixAppliedMessageConstant              = "fix applied"
	unexpectedModificationMessageConstant  = "checker modified file outside fix mode; content restored"
	executorNotConfiguredMessageConstant   = "command executor not configured"
	fileSystemNotConfiguredMessageConstant = "file system not configured"
)

// CheckerName identifies a checker in progress lines and reports.
type CheckerName string

// Supported checkers.
const (
	StaticAnalysisCheckerName CheckerName = CheckerName(staticAnalysisCheckerNameConstant)
	StyleCheckerName          CheckerName = CheckerName(styleCheckerNameConstant)
)

// CommandExecutor runs a single external process.
type CommandExecutor interface {
	Execute(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error)
}

// CheckRequest carries the per-file inputs of a check.
// Tools run with SourceRoot as their working directory when it is set.
type CheckRequest struct {
	File       sources.SourceFile
	SourceRoot string
	BuildPath  string
	Fix        bool
}

// Diagnostic is the free-form outcome of one checker on one file. Empty text means no problem was found.
type Diagnostic struct {
	Checker CheckerName
	File    sources.SourceFile
	Text    string
}

// HasFindings reports whether the diagnostic carries any non-whitespace text.
func (diagnostic Diagnostic) HasFindings() bool {
	return len(strings.TrimSpace(diagnostic.Text)) > 0
}

// Checker inspects one file at a time.
type Checker interface {
	Name() CheckerName
	Check(executionContext context.Context, request CheckRequest) Diagnostic
}

func appendDiagnosticText(existing string, addition string) string {
	if len(addition) == 0 {
		return existing
	}
	if len(existing) == 0 {
		return addition
	}
	if strings.HasSuffix(existing, diagnosticSeparatorConstant) {
		return existing + addition
	}
	return existing + diagnosticSeparatorConstant + addition
}

func describeReadFailure(path string, failure error) string {
	return fmt.Sprintf(readFailureTemplateConstant, path, failure)
}

func describeExecutionFailure(path string, command execshell.CommandName, failure error) string {
	return fmt.Sprintf(executionFailureTemplateConstant, path, command, failure)
}
