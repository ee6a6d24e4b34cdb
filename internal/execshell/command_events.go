package execshell

// CommandEventObserver receives lifecycle notifications for every clang tool invocation.
type CommandEventObserver interface {
	// CommandStarted notifies observers that the process is about to start.
	CommandStarted(command ShellCommand)
	// CommandCompleted supplies the result of a process that ran to completion, whatever its exit code.
	CommandCompleted(command ShellCommand, result ExecutionResult)
	// CommandExecutionFailed reports processes that could not be started or were interrupted.
	CommandExecutionFailed(command ShellCommand, failure error)
}

type noopCommandEventObserver struct{}

func (noopCommandEventObserver) CommandStarted(ShellCommand) {}

func (noopCommandEventObserver) CommandCompleted(ShellCommand, ExecutionResult) {}

func (noopCommandEventObserver) CommandExecutionFailed(ShellCommand, error) {}
