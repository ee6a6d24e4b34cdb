package execshell

import (
	"fmt"
	"path/filepath"
	"strings"
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s exited with code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	clangTidyStartTemplateConstant          = "Analyzing %s with %s"
	clangTidySuccessTemplateConstant        = "%s reported no findings for %s"
	clangTidyFailureTemplateConstant        = "%s reported findings for %s (exit code %d)"
	clangFormatCheckStartTemplateConstant   = "Checking formatting of %s"
	clangFormatFixStartTemplateConstant     = "Formatting %s in place"
	clangFormatSuccessTemplateConstant      = "%s finished for %s"
	clangFormatFailureTemplateConstant      = "%s flagged %s (exit code %d%s)"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	standardErrorSuffixTemplateConstant     = ": %s"
	commandArgumentsJoinSeparatorConstant   = " "
	clangFormatInPlaceFlagConstant          = "-i"
	unknownFailureMessageConstant           = "unknown error"
	unknownTargetLabelConstant              = "unknown file"
	standardErrorPreviewLimitConstant       = 200
)

// CommandMessageFormatter renders human-readable lifecycle messages for clang tool invocations.
type CommandMessageFormatter struct{}

// BuildStartedMessage describes a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	switch formatter.toolKind(command) {
	case CommandClangTidy:
		return fmt.Sprintf(clangTidyStartTemplateConstant, formatter.targetLabel(command), command.Name)
	case CommandClangFormat:
		if formatter.containsArgument(command, clangFormatInPlaceFlagConstant) {
			return fmt.Sprintf(clangFormatFixStartTemplateConstant, formatter.targetLabel(command))
		}
		return fmt.Sprintf(clangFormatCheckStartTemplateConstant, formatter.targetLabel(command))
	default:
		return fmt.Sprintf(genericStartTemplateConstant, formatter.commandLabel(command))
	}
}

// BuildSuccessMessage describes a command that exited with status zero.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	switch formatter.toolKind(command) {
	case CommandClangTidy:
		return fmt.Sprintf(clangTidySuccessTemplateConstant, command.Name, formatter.targetLabel(command))
	case CommandClangFormat:
		return fmt.Sprintf(clangFormatSuccessTemplateConstant, command.Name, formatter.targetLabel(command))
	default:
		return fmt.Sprintf(genericSuccessTemplateConstant, formatter.commandLabel(command))
	}
}

// BuildFailureMessage describes a command that exited with a non-zero status.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	switch formatter.toolKind(command) {
	case CommandClangTidy:
		return fmt.Sprintf(clangTidyFailureTemplateConstant, command.Name, formatter.targetLabel(command), result.ExitCode)
	case CommandClangFormat:
		return fmt.Sprintf(clangFormatFailureTemplateConstant, command.Name, formatter.targetLabel(command), result.ExitCode, formatter.standardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(genericFailureTemplateConstant, formatter.commandLabel(command), result.ExitCode, formatter.standardErrorSuffix(result.StandardError))
	}
}

// BuildExecutionFailureMessage describes a command that could not be run at all.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	failureMessage := unknownFailureMessageConstant
	if failure != nil {
		failureMessage = failure.Error()
	}
	return fmt.Sprintf(genericExecutionFailureTemplateConstant, formatter.commandLabel(command), failureMessage)
}

// toolKind maps configured executables such as /usr/bin/clang-tidy-18 back to a known tool.
func (formatter CommandMessageFormatter) toolKind(command ShellCommand) CommandName {
	baseName := filepath.Base(string(command.Name))
	switch {
	case strings.HasPrefix(baseName, string(CommandClangTidy)):
		return CommandClangTidy
	case strings.HasPrefix(baseName, string(CommandClangFormat)):
		return CommandClangFormat
	default:
		return CommandName(baseName)
	}
}

// targetLabel returns the last positional argument, which is the source file for both clang tools.
func (formatter CommandMessageFormatter) targetLabel(command ShellCommand) string {
	arguments := command.Details.Arguments
	if len(arguments) == 0 {
		return unknownTargetLabelConstant
	}
	lastArgument := arguments[len(arguments)-1]
	if strings.HasPrefix(lastArgument, "-") {
		return unknownTargetLabelConstant
	}
	return lastArgument
}

func (formatter CommandMessageFormatter) containsArgument(command ShellCommand, argument string) bool {
	for _, candidate := range command.Details.Arguments {
		if candidate == argument {
			return true
		}
	}
	return false
}

func (formatter CommandMessageFormatter) commandLabel(command ShellCommand) string {
	commandParts := []string{string(command.Name)}
	if len(command.Details.Arguments) > 0 {
		commandParts = append(commandParts, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	commandLabel := strings.Join(commandParts, commandArgumentsJoinSeparatorConstant)
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return commandLabel
	}
	return commandLabel + fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) standardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return ""
	}
	if firstLineEnd := strings.IndexByte(trimmedStandardError, '\n'); firstLineEnd >= 0 {
		trimmedStandardError = trimmedStandardError[:firstLineEnd]
	}
	if len(trimmedStandardError) > standardErrorPreviewLimitConstant {
		trimmedStandardError = trimmedStandardError[:standardErrorPreviewLimitConstant]
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}
