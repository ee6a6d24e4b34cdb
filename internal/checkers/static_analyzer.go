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
	clangTidyBuildPathFlagConstant = "-p"
	clangTidyFixFlagConstant       = "--fix"
)

// StaticAnalyzerConfiguration customizes clang-tidy invocations.
type StaticAnalyzerConfiguration struct {
	Executable     string
	ExtraArguments []string
	Timeout        time.Duration
	DiffContext    int
}

// StaticAnalyzer runs clang-tidy against a compilation database.
type StaticAnalyzer struct {
	logger        *zap.Logger
	executor      CommandExecutor
	fileSystem    filesystem.FileSystem
	configuration StaticAnalyzerConfiguration
}

// NewStaticAnalyzer validates dependencies and constructs a StaticAnalyzer.
func NewStaticAnalyzer(logger *zap.Logger, executor CommandExecutor, fileSystem filesystem.FileSystem, configuration StaticAnalyzerConfiguration) (*StaticAnalyzer, error) {
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
		configuration.Executable = string(execshell.CommandClangTidy)
	}
	return &StaticAnalyzer{logger: logger, executor: executor, fileSystem: fileSystem, configuration: configuration}, nil
}

// Name identifies the checker.
func (analyzer *StaticAnalyzer) Name() CheckerName {
	return StaticAnalysisCheckerName
}

// Check runs clang-tidy on a single file. The diagnostic is the tool's standard output.
// Outside fix mode the file is snapshotted and restored if the tool touched it.
func (analyzer *StaticAnalyzer) Check(executionContext context.Context, request CheckRequest) Diagnostic {
	diagnostic := Diagnostic{Checker: analyzer.Name(), File: request.File}
	filePath := request.File.Path

	var snapshot []byte
	if !request.Fix {
		content, readError := analyzer.fileSystem.ReadFile(filePath)
		if readError != nil {
			diagnostic.Text = describeReadFailure(filePath, readError)
			return diagnostic
		}
		snapshot = content
	}

	command := execshell.ShellCommand{
		Name: execshell.CommandName(analyzer.configuration.Executable),
		Details: execshell.CommandDetails{
			Arguments:        analyzer.buildArguments(request),
			WorkingDirectory: request.SourceRoot,
			Timeout:          analyzer.configuration.Timeout,
		},
	}

	result, executionError := analyzer.executor.Execute(executionContext, command)
	if executionError != nil {
		diagnostic.Text = describeExecutionFailure(filePath, command.Name, executionError)
	} else {
		diagnostic.Text = result.StandardOutput
	}

	if !request.Fix {
		diagnostic.Text = appendDiagnosticText(diagnostic.Text, analyzer.restoreIfModified(request, snapshot))
	}

	analyzer.logger.Debug(
		checkCompletedMessageConstant,
		zap.String(logFieldCheckerConstant, string(analyzer.Name())),
		zap.String(logFieldFileConstant, request.File.RelativePath),
		zap.Bool(logFieldFixConstant, request.Fix),
		zap.Int(logFieldExitCodeConstant, result.ExitCode),
	)

	return diagnostic
}

func (analyzer *StaticAnalyzer) buildArguments(request CheckRequest) []string {
	arguments := []string{clangTidyBuildPathFlagConstant, request.BuildPath}
	arguments = append(arguments, analyzer.configuration.ExtraArguments...)
	if request.Fix {
		arguments = append(arguments, clangTidyFixFlagConstant)
	}
	return append(arguments, request.File.Path)
}

// restoreIfModified returns diagnostic text when the file no longer matches snapshot.
func (analyzer *StaticAnalyzer) restoreIfModified(request CheckRequest, snapshot []byte) string {
	filePath := request.File.Path
	current, readError := analyzer.fileSystem.ReadFile(filePath)
	if readError != nil {
		return describeReadFailure(filePath, readError)
	}
	if bytes.Equal(current, snapshot) {
		return ""
	}

	changeReport, reportError := BuildChangeReport(request.File.RelativePath, snapshot, current, analyzer.configuration.DiffContext)
	if restoreError := filesystem.Restore(analyzer.fileSystem, filePath, snapshot); restoreError != nil {
		return fmt.Sprintf(restoreFailureTemplateConstant, filePath, restoreError)
	}

	analyzer.logger.Warn(
		unexpectedModificationMessageConstant,
		zap.String(logFieldCheckerConstant, string(analyzer.Name())),
		zap.String(logFieldFileConstant, request.File.RelativePath),
		zap.Int(logFieldLinesAddedConstant, changeReport.LinesAdded),
		zap.Int(logFieldLinesRemovedConstant, changeReport.LinesRemoved),
		zap.NamedError("diff_error", reportError),
	)

	return fmt.Sprintf(unexpectedModificationTemplate, filePath, analyzer.configuration.Executable) + changeReport.Diff
}
