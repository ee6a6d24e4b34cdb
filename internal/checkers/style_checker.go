package checkers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/lintrun/internal/execshell"
	"github.com/temirov/lintrun/internal/filesystem"
)

const (
	clangFormatWarningsAsErrorsFlagConstant = "-Werror"
	clangFormatDryRunFlagConstant           = "--dry-run"
	clangFormatInPlaceFlagConstant          = "-i"
	clangFormatAssumeFilenameFlagConstant   = "--assume-filename="
	previewFailedMessageConstant            = "unable to render formatting preview"
)

// StyleCheckerConfiguration customizes clang-format invocations.
type StyleCheckerConfiguration struct {
	Executable     string
	ExtraArguments []string
	Timeout        time.Duration
	DiffContext    int
	// PreviewDiff renders the pending formatting changes when a dry run reports findings.
	PreviewDiff bool
}

// StyleChecker runs clang-format in dry-run or in-place mode.
type StyleChecker struct {
	logger        *zap.Logger
	executor      CommandExecutor
	fileSystem    filesystem.FileSystem
	configuration StyleCheckerConfiguration
}

// NewStyleChecker validates dependencies and constructs a StyleChecker.
func NewStyleChecker(logger *zap.Logger, executor CommandExecutor, fileSystem filesystem.FileSystem, configuration StyleCheckerConfiguration) (*StyleChecker, error) {
	if executor == nil {
		return nil, errors.New(executorNotConfiguredMessageConstant)
	}
	if fileSystem == nil {
		return nil, errors.New(fileSystemNotConfiguredMessageConstant)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(strings.TrimSpace(configuration.Executable)) == 0 {
		configuration.Executable = string(execshell.CommandClangFormat)
	}
	return &StyleChecker{logger: logger, executor: executor, fileSystem: fileSystem, configuration: configuration}, nil
}

// Name identifies the checker.
func (checker *StyleChecker) Name() CheckerName {
	return StyleCheckerName
}

// Check runs clang-format on a single file and compares its content before and after.
//
// In dry-run mode a modified file is restored and reported with a unified diff.
// In fix mode the applied change is logged and only clang-format's own error
// output becomes diagnostic text.
func (checker *StyleChecker) Check(executionContext context.Context, request CheckRequest) Diagnostic {
	diagnostic := Diagnostic{Checker: checker.Name(), File: request.File}
	filePath := request.File.Path

	before, readError := checker.fileSystem.ReadFile(filePath)
	if readError != nil {
		diagnostic.Text = describeReadFailure(filePath, readError)
		return diagnostic
	}

	modeFlag := clangFormatDryRunFlagConstant
	if request.Fix {
		modeFlag = clangFormatInPlaceFlagConstant
	}
	arguments := []string{clangFormatWarningsAsErrorsFlagConstant, modeFlag}
	arguments = append(arguments, checker.configuration.ExtraArguments...)
	command := checker.buildCommand(request, append(arguments, filePath), nil)

	result, executionError := checker.executor.Execute(executionContext, command)
	if executionError != nil {
		diagnostic.Text = describeExecutionFailure(filePath, command.Name, executionError)
	} else {
		diagnostic.Text = result.StandardError
	}

	after, rereadError := checker.fileSystem.ReadFile(filePath)
	if rereadError != nil {
		diagnostic.Text = appendDiagnosticText(diagnostic.Text, describeReadFailure(filePath, rereadError))
		return diagnostic
	}

	if !bytes.Equal(before, after) {
		diagnostic.Text = appendDiagnosticText(diagnostic.Text, checker.handleModification(request, before, after))
	} else if !request.Fix && executionError == nil && (result.ExitCode != 0 || diagnostic.HasFindings()) && checker.configuration.PreviewDiff {
		diagnostic.Text = appendDiagnosticText(diagnostic.Text, checker.renderPreview(executionContext, request, before))
	}

	checker.logger.Debug(
		checkCompletedMessageConstant,
		zap.String(logFieldCheckerConstant, string(checker.Name())),
		zap.String(logFieldFileConstant, request.File.RelativePath),
		zap.Bool(logFieldFixConstant, request.Fix),
		zap.Int(logFieldExitCodeConstant, result.ExitCode),
	)

	return diagnostic
}

func (checker *StyleChecker) buildCommand(request CheckRequest, arguments []string, standardInput []byte) execshell.ShellCommand {
	return execshell.ShellCommand{
		Name: execshell.CommandName(checker.configuration.Executable),
		Details: execshell.CommandDetails{
			Arguments:        arguments,
			WorkingDirectory: request.SourceRoot,
			StandardInput:    standardInput,
			Timeout:          checker.configuration.Timeout,
		},
	}
}

func (checker *StyleChecker) handleModification(request CheckRequest, before []byte, after []byte) string {
	filePath := request.File.Path
	changeReport, reportError := BuildChangeReport(request.File.RelativePath, before, after, checker.configuration.DiffContext)

	if request.Fix {
		checker.logger.Info(
			fixAppliedMessageConstant,
			zap.String(logFieldCheckerConstant, string(checker.Name())),
			zap.String(logFieldFileConstant, request.File.RelativePath),
			zap.Int(logFieldLinesAddedConstant, changeReport.LinesAdded),
			zap.Int(logFieldLinesRemovedConstant, changeReport.LinesRemoved),
			zap.NamedError("diff_error", reportError),
		)
		return ""
	}

	if restoreError := filesystem.Restore(checker.fileSystem, filePath, before); restoreError != nil {
		return fmt.Sprintf(restoreFailureTemplateConstant, filePath, restoreError)
	}
	checker.logger.Warn(
		unexpectedModificationMessageConstant,
		zap.String(logFieldCheckerConstant, string(checker.Name())),
		zap.String(logFieldFileConstant, request.File.RelativePath),
		zap.Int(logFieldLinesAddedConstant, changeReport.LinesAdded),
		zap.Int(logFieldLinesRemovedConstant, changeReport.LinesRemoved),
	)
	return fmt.Sprintf(modificationWarningTemplate, filePath) + changeReport.Diff
}

// renderPreview feeds the checked content to clang-format on stdin. The assumed
// file name keeps style lookup and language detection tied to the real path.
func (checker *StyleChecker) renderPreview(executionContext context.Context, request CheckRequest, before []byte) string {
	arguments := append([]string{}, checker.configuration.ExtraArguments...)
	arguments = append(arguments, clangFormatAssumeFilenameFlagConstant+request.File.Path)

	result, executionError := checker.executor.Execute(executionContext, checker.buildCommand(request, arguments, before))
	if executionError != nil || result.ExitCode != 0 || len(result.StandardOutput) == 0 {
		checker.logger.Debug(
			previewFailedMessageConstant,
			zap.String(logFieldFileConstant, request.File.RelativePath),
			zap.Int(logFieldExitCodeConstant, result.ExitCode),
			zap.Error(executionError),
		)
		return ""
	}

	changeReport, reportError := BuildChangeReport(request.File.RelativePath, before, []byte(result.StandardOutput), checker.configuration.DiffContext)
	if reportError != nil {
		checker.logger.Debug(
			previewFailedMessageConstant,
			zap.String(logFieldFileConstant, request.File.RelativePath),
			zap.NamedError("diff_error", reportError),
		)
	}
	if changeReport.Empty() {
		return ""
	}
	return fmt.Sprintf(formattingPreviewWarningTemplate, request.File.Path) + changeReport.Diff
}
