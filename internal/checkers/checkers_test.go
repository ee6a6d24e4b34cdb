package checkers_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/lintrun/internal/execshell"
	"github.com/temirov/lintrun/internal/sources"
)

const (
	testSourceFileNameConstant        = "main.cpp"
	testBuildPathConstant             = "/work/build"
	testUnformattedContentConstant    = "int  main(){return 0;}\n"
	testFormattedContentConstant      = "int main() { return 0; }\n"
	testSourceFilePermissionsConstant = 0o640
	testInPlaceFlagConstant           = "-i"
	testDryRunFlagConstant            = "--dry-run"
	testClangTidyFixFlagConstant      = "--fix"
)

type commandResponse struct {
	result   execshell.ExecutionResult
	err      error
	rewrites map[string]string
}

// scriptedCommandExecutor returns canned responses chosen by a selector and applies file rewrites to disk.
type scriptedCommandExecutor struct {
	mutex            sync.Mutex
	selectResponse   func(command execshell.ShellCommand) commandResponse
	recordedCommands []execshell.ShellCommand
}

func (executor *scriptedCommandExecutor) Execute(_ context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	executor.mutex.Lock()
	executor.recordedCommands = append(executor.recordedCommands, command)
	executor.mutex.Unlock()

	if executor.selectResponse == nil {
		return execshell.ExecutionResult{}, nil
	}
	response := executor.selectResponse(command)
	for path, content := range response.rewrites {
		if writeError := os.WriteFile(path, []byte(content), testSourceFilePermissionsConstant); writeError != nil {
			return execshell.ExecutionResult{}, writeError
		}
	}
	return response.result, response.err
}

func (executor *scriptedCommandExecutor) commands() []execshell.ShellCommand {
	executor.mutex.Lock()
	defer executor.mutex.Unlock()
	return append([]execshell.ShellCommand{}, executor.recordedCommands...)
}

func hasArgument(command execshell.ShellCommand, argument string) bool {
	return slices.Contains(command.Details.Arguments, argument)
}

func writeTestSource(testInstance *testing.T, content string) sources.SourceFile {
	testInstance.Helper()
	rootDirectory := testInstance.TempDir()
	sourcePath := filepath.Join(rootDirectory, testSourceFileNameConstant)
	require.NoError(testInstance, os.WriteFile(sourcePath, []byte(content), testSourceFilePermissionsConstant))
	return sources.SourceFile{Path: sourcePath, RelativePath: testSourceFileNameConstant}
}

func readTestSource(testInstance *testing.T, sourceFile sources.SourceFile) string {
	testInstance.Helper()
	content, readError := os.ReadFile(sourceFile.Path)
	require.NoError(testInstance, readError)
	return string(content)
}

var errExecutableMissing = errors.New("executable file not found in $PATH")
