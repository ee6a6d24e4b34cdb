package execshell

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	commandClangTidyNameConstant              = "clang-tidy"
	commandClangFormatNameConstant            = "clang-format"
	loggerNotConfiguredMessageConstant        = "logger not configured"
	commandRunnerNotConfiguredMessageConstant = "command runner not configured"
	commandExecutionErrorTemplateConstant     = "%s execution failed: %v"
	logFieldCommandNameConstant               = "command_name"
	logFieldCommandArgumentsConstant          = "command_arguments"
	logFieldWorkingDirectoryConstant          = "working_directory"
	logFieldExitCodeConstant                  = "exit_code"
	logFieldElapsedConstant                   = "elapsed"
)

// CommandName identifies an executable invoked by the executor.
type CommandName string

// Default executables driven by lintrun.
const (
	CommandClangTidy   CommandName = CommandName(commandClangTidyNameConstant)
	CommandClangFormat CommandName = CommandName(commandClangFormatNameConstant)
)

// CommandDetails describes a single invocation.
// A nil StandardInput leaves the process reading from the null device.
type CommandDetails struct {
	Arguments        []string
	WorkingDirectory string
	StandardInput    []byte
	Timeout          time.Duration
}

// ShellCommand pairs an executable with its invocation details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// ExecutionResult captures the observable outcome of a finished process.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CommandRunner starts processes.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

// ErrLoggerNotConfigured indicates the executor was built without a logger.
var ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)

// ErrCommandRunnerNotConfigured indicates the executor was built without a runner.
var ErrCommandRunnerNotConfigured = errors.New(commandRunnerNotConfiguredMessageConstant)

// CommandExecutionError reports a process that could not be started or waited for.
// Non-zero exit codes are not execution errors; linters use them to signal findings.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

// Error describes the failure.
func (executionError CommandExecutionError) Error() string {
	return fmt.Sprintf(commandExecutionErrorTemplateConstant, executionError.Command.Name, executionError.Cause)
}

// Unwrap exposes the underlying cause.
func (executionError CommandExecutionError) Unwrap() error {
	return executionError.Cause
}

// ShellExecutorOption customizes a ShellExecutor.
type ShellExecutorOption func(*ShellExecutor)

// WithCommandEventObserver registers an observer notified about every command lifecycle event.
func WithCommandEventObserver(observer CommandEventObserver) ShellExecutorOption {
	return func(executor *ShellExecutor) {
		if observer != nil {
			executor.observer = observer
		}
	}
}

// ShellExecutor runs commands through a CommandRunner and logs their lifecycle.
type ShellExecutor struct {
	logger    *zap.Logger
	runner    CommandRunner
	observer  CommandEventObserver
	formatter CommandMessageFormatter
}

// NewShellExecutor validates dependencies and constructs a ShellExecutor.
func NewShellExecutor(logger *zap.Logger, runner CommandRunner, options ...ShellExecutorOption) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if runner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}

	executor := &ShellExecutor{
		logger:    logger,
		runner:    runner,
		observer:  noopCommandEventObserver{},
		formatter: CommandMessageFormatter{},
	}
	for _, option := range options {
		if option != nil {
			option(executor)
		}
	}

	return executor, nil
}

// Execute runs the command, honoring CommandDetails.Timeout when set.
func (executor *ShellExecutor) Execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	if executionContext == nil {
		executionContext = context.Background()
	}
	if command.Details.Timeout > 0 {
		var cancel context.CancelFunc
		executionContext, cancel = context.WithTimeout(executionContext, command.Details.Timeout)
		defer cancel()
	}

	commandFields := []zap.Field{
		zap.String(logFieldCommandNameConstant, string(command.Name)),
		zap.String(logFieldCommandArgumentsConstant, strings.Join(command.Details.Arguments, " ")),
	}
	if len(command.Details.WorkingDirectory) > 0 {
		commandFields = append(commandFields, zap.String(logFieldWorkingDirectoryConstant, command.Details.WorkingDirectory))
	}

	executor.observer.CommandStarted(command)
	executor.logger.Debug(executor.formatter.BuildStartedMessage(command), commandFields...)

	startTime := time.Now()
	result, runError := executor.runner.Run(executionContext, command)
	elapsed := time.Since(startTime)

	if runError != nil {
		executor.observer.CommandExecutionFailed(command, runError)
		executor.logger.Error(
			executor.formatter.BuildExecutionFailureMessage(command, runError),
			append(commandFields, zap.Duration(logFieldElapsedConstant, elapsed), zap.Error(runError))...,
		)
		return ExecutionResult{}, CommandExecutionError{Command: command, Cause: runError}
	}

	executor.observer.CommandCompleted(command, result)
	completionFields := append(commandFields, zap.Int(logFieldExitCodeConstant, result.ExitCode), zap.Duration(logFieldElapsedConstant, elapsed))
	if result.ExitCode == 0 {
		executor.logger.Debug(executor.formatter.BuildSuccessMessage(command), completionFields...)
	} else {
		executor.logger.Debug(executor.formatter.BuildFailureMessage(command, result), completionFields...)
	}

	return result, nil
}
