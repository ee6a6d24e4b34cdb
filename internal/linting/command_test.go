package linting_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/lintrun/internal/execshell"
	"github.com/temirov/lintrun/internal/linting"
)

const (
	testUnformattedContentConstant = "int  main(){return 0;}\n"
	testFormattedContentConstant   = "int main() { return 0; }\n"
	testStyleViolationConstant     = "error: code should be clang-formatted [-Wclang-format-violations]\n"
	testSourcePermissionsConstant  = 0o644
	testDirectoryPermissions       = 0o755
)

func writeSourceFiles(testInstance *testing.T, rootDirectory string, files map[string]string) {
	testInstance.Helper()
	for relativePath, content := range files {
		absolutePath := filepath.Join(rootDirectory, filepath.FromSlash(relativePath))
		require.NoError(testInstance, os.MkdirAll(filepath.Dir(absolutePath), testDirectoryPermissions))
		require.NoError(testInstance, os.WriteFile(absolutePath, []byte(content), testSourcePermissionsConstant))
	}
}

// fakeClangExecutor imitates clang-format by treating testUnformattedContentConstant as the only violation.
type fakeClangExecutor struct {
	mutex    sync.Mutex
	commands []execshell.ShellCommand
}

func (executor *fakeClangExecutor) Execute(_ context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	executor.mutex.Lock()
	executor.commands = append(executor.commands, command)
	executor.mutex.Unlock()

	arguments := command.Details.Arguments
	filePath := arguments[len(arguments)-1]
	if command.Name == execshell.CommandClangTidy {
		return execshell.ExecutionResult{}, nil
	}

	content, readError := os.ReadFile(filePath)
	if readError != nil {
		return execshell.ExecutionResult{}, readError
	}
	formatted := strings.ReplaceAll(string(content), testUnformattedContentConstant, testFormattedContentConstant)

	switch {
	case containsArgument(arguments, "-i"):
		return execshell.ExecutionResult{}, os.WriteFile(filePath, []byte(formatted), testSourcePermissionsConstant)
	case containsArgument(arguments, "--dry-run"):
		if formatted != string(content) {
			return execshell.ExecutionResult{StandardError: filePath + ":1:4: " + testStyleViolationConstant, ExitCode: 1}, nil
		}
		return execshell.ExecutionResult{}, nil
	default:
		return execshell.ExecutionResult{StandardOutput: formatted}, nil
	}
}

func (executor *fakeClangExecutor) commandNames() []execshell.CommandName {
	executor.mutex.Lock()
	defer executor.mutex.Unlock()
	names := make([]execshell.CommandName, 0, len(executor.commands))
	for _, command := range executor.commands {
		names = append(names, command.Name)
	}
	return names
}

func containsArgument(arguments []string, expected string) bool {
	for _, argument := range arguments {
		if argument == expected {
			return true
		}
	}
	return false
}

func executeLintCommand(testInstance *testing.T, executor *fakeClangExecutor, configuration linting.CommandConfiguration, arguments ...string) (string, error) {
	testInstance.Helper()
	builder := linting.CommandBuilder{
		LoggerProvider:        func() *zap.Logger { return zap.NewNop() },
		ConfigurationProvider: func() linting.CommandConfiguration { return configuration },
		Executor:              executor,
	}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	var output bytes.Buffer
	command.SetOut(&output)
	command.SetErr(io.Discard)
	command.SilenceUsage = true
	command.SilenceErrors = true
	command.SetContext(context.Background())
	command.SetArgs(arguments)

	executionError := command.Execute()
	return output.String(), executionError
}

func testConfiguration(sourceRoot string) linting.CommandConfiguration {
	configuration := linting.DefaultCommandConfiguration()
	configuration.SourceRoot = sourceRoot
	return configuration
}

func TestLintCommandScenarios(testInstance *testing.T) {
	testCases := []struct {
		name             string
		files            map[string]string
		arguments        []string
		expectChecksFail bool
		expectedOutput   []string
		expectedContent  map[string]string
	}{
		{
			name:            "all_clean",
			files:           map[string]string{"a.cpp": testFormattedContentConstant, "a.hpp": testFormattedContentConstant},
			arguments:       []string{"-p", "build"},
			expectedOutput:  []string{"clang-tidy: a.cpp", "clang-format: a.cpp", "clang-format: a.hpp", "All checks passed!"},
			expectedContent: map[string]string{"a.cpp": testFormattedContentConstant},
		},
		{
			name:            "excluded_directory_is_ignored",
			files:           map[string]string{"a.cpp": testFormattedContentConstant, "third_party/b.cpp": testUnformattedContentConstant},
			arguments:       []string{"--build-path", "build"},
			expectedOutput:  []string{"All checks passed!"},
			expectedContent: map[string]string{"third_party/b.cpp": testUnformattedContentConstant},
		},
		{
			name:             "dry_run_reports_violation_with_diff",
			files:            map[string]string{"a.cpp": testUnformattedContentConstant},
			arguments:        []string{"-p", "build"},
			expectChecksFail: true,
			expectedOutput: []string{
				"***ERROR: Some checks failed",
				testStyleViolationConstant,
				"--- a/a.cpp",
				"+++ b/a.cpp",
				"-int  main(){return 0;}",
				"+int main() { return 0; }",
			},
			expectedContent: map[string]string{"a.cpp": testUnformattedContentConstant},
		},
		{
			name:            "fix_mode_corrects_file",
			files:           map[string]string{"a.cpp": testUnformattedContentConstant},
			arguments:       []string{"-p", "build", "--fix"},
			expectedOutput:  []string{"All checks passed!"},
			expectedContent: map[string]string{"a.cpp": testFormattedContentConstant},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			sourceRoot := testInstance.TempDir()
			writeSourceFiles(testInstance, sourceRoot, testCase.files)

			output, executionError := executeLintCommand(testInstance, &fakeClangExecutor{}, testConfiguration(sourceRoot), testCase.arguments...)
			if testCase.expectChecksFail {
				require.ErrorIs(testInstance, executionError, linting.ErrChecksFailed)
			} else {
				require.NoError(testInstance, executionError)
			}

			for _, expectedFragment := range testCase.expectedOutput {
				require.Contains(testInstance, output, expectedFragment)
			}
			for relativePath, expectedContent := range testCase.expectedContent {
				content, readError := os.ReadFile(filepath.Join(sourceRoot, filepath.FromSlash(relativePath)))
				require.NoError(testInstance, readError)
				require.Equal(testInstance, expectedContent, string(content))
			}
		})
	}
}

func TestLintCommandRequiresBuildPath(testInstance *testing.T) {
	executor := &fakeClangExecutor{}
	_, executionError := executeLintCommand(testInstance, executor, testConfiguration(testInstance.TempDir()))
	require.ErrorIs(testInstance, executionError, linting.ErrBuildPathRequired)
	require.Empty(testInstance, executor.commandNames())
}

func TestLintCommandUsesConfiguredBuildPath(testInstance *testing.T) {
	sourceRoot := testInstance.TempDir()
	writeSourceFiles(testInstance, sourceRoot, map[string]string{"a.cpp": testFormattedContentConstant})

	configuration := testConfiguration(sourceRoot)
	configuration.BuildPath = "build"
	executor := &fakeClangExecutor{}

	_, executionError := executeLintCommand(testInstance, executor, configuration)
	require.NoError(testInstance, executionError)
	require.Equal(testInstance, []execshell.CommandName{execshell.CommandClangTidy, execshell.CommandClangFormat}, executor.commandNames())
}

func TestLintCommandRestrictsCheckers(testInstance *testing.T) {
	sourceRoot := testInstance.TempDir()
	writeSourceFiles(testInstance, sourceRoot, map[string]string{"a.cpp": testUnformattedContentConstant, "a.hpp": testFormattedContentConstant})

	executor := &fakeClangExecutor{}
	output, executionError := executeLintCommand(testInstance, executor, testConfiguration(sourceRoot), "-p", "build", "--checkers", "clang-tidy")
	require.NoError(testInstance, executionError)
	require.Equal(testInstance, []execshell.CommandName{execshell.CommandClangTidy}, executor.commandNames())
	require.NotContains(testInstance, output, "clang-format:")
}

func TestLintCommandRejectsUnknownChecker(testInstance *testing.T) {
	_, executionError := executeLintCommand(testInstance, &fakeClangExecutor{}, testConfiguration(testInstance.TempDir()), "-p", "build", "--checkers", "cppcheck")
	require.Error(testInstance, executionError)
	require.Contains(testInstance, executionError.Error(), "cppcheck")
}

func TestLintCommandRejectsPositionalArguments(testInstance *testing.T) {
	_, executionError := executeLintCommand(testInstance, &fakeClangExecutor{}, testConfiguration(testInstance.TempDir()), "-p", "build", "extra")
	require.Error(testInstance, executionError)
}

func TestFilesCommandListsSourcesPerChecker(testInstance *testing.T) {
	sourceRoot := testInstance.TempDir()
	writeSourceFiles(testInstance, sourceRoot, map[string]string{
		"main.cpp":          testFormattedContentConstant,
		"sys/sys_utils.hpp": testFormattedContentConstant,
		"vendor/zstd.cpp":   testFormattedContentConstant,
		"third_party/x.cpp": testFormattedContentConstant,
	})

	builder := linting.FilesCommandBuilder{
		ConfigurationProvider: func() linting.CommandConfiguration { return testConfiguration(sourceRoot) },
	}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	var output bytes.Buffer
	command.SetOut(&output)
	command.SetArgs([]string{"--exclude", "third_party,vendor"})
	require.NoError(testInstance, command.Execute())

	require.Equal(testInstance, "clang-tidy: main.cpp\nclang-format: main.cpp\nclang-format: sys/sys_utils.hpp\n", output.String())
}
