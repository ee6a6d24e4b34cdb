package cli_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/temirov/lintrun/cmd/cli"
	"github.com/temirov/lintrun/internal/execshell"
	"github.com/temirov/lintrun/internal/linting"
)

const (
	testUnformattedContentConstant    = "int  main(){return 0;}\n"
	testFormattedContentConstant      = "int main() { return 0; }\n"
	testStyleViolationConstant        = ":1:4: error: code should be clang-formatted [-Wclang-format-violations]\n"
	testConfigurationFileNameConstant = "config.yaml"
	testFilePermissionsConstant       = 0o644
	testDirectoryPermissionsConstant  = 0o755
	testPassedBannerConstant          = "All checks passed!"
	testFailedBannerConstant          = "***ERROR: Some checks failed"
	testBuildPathEnvironmentConstant  = "LINTRUN_LINT_BUILD_PATH"
)

// recordingClangExecutor treats testUnformattedContentConstant as the only style violation.
type recordingClangExecutor struct {
	mutex    sync.Mutex
	commands []execshell.ShellCommand
}

func (executor *recordingClangExecutor) Execute(_ context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	executor.mutex.Lock()
	executor.commands = append(executor.commands, command)
	executor.mutex.Unlock()

	arguments := command.Details.Arguments
	filePath := arguments[len(arguments)-1]
	if command.Name == execshell.CommandClangTidy {
		return execshell.ExecutionResult{}, nil
	}
	if command.Details.StandardInput != nil {
		formatted := strings.ReplaceAll(string(command.Details.StandardInput), testUnformattedContentConstant, testFormattedContentConstant)
		return execshell.ExecutionResult{StandardOutput: formatted}, nil
	}

	content, readError := os.ReadFile(filePath)
	if readError != nil {
		return execshell.ExecutionResult{}, readError
	}
	formatted := strings.ReplaceAll(string(content), testUnformattedContentConstant, testFormattedContentConstant)
	for _, argument := range arguments {
		switch argument {
		case "-i":
			return execshell.ExecutionResult{}, os.WriteFile(filePath, []byte(formatted), testFilePermissionsConstant)
		case "--dry-run":
			if formatted != string(content) {
				return execshell.ExecutionResult{StandardError: filePath + testStyleViolationConstant, ExitCode: 1}, nil
			}
			return execshell.ExecutionResult{}, nil
		}
	}
	return execshell.ExecutionResult{StandardOutput: formatted}, nil
}

func (executor *recordingClangExecutor) tidyBuildPaths() []string {
	executor.mutex.Lock()
	defer executor.mutex.Unlock()
	var buildPaths []string
	for _, command := range executor.commands {
		if command.Name == execshell.CommandClangTidy {
			buildPaths = append(buildPaths, command.Details.Arguments[1])
		}
	}
	return buildPaths
}

type applicationRun struct {
	output    string
	logs      string
	execution error
}

func writeSourceTree(testInstance *testing.T, files map[string]string) string {
	testInstance.Helper()
	sourceRoot := testInstance.TempDir()
	for relativePath, content := range files {
		absolutePath := filepath.Join(sourceRoot, filepath.FromSlash(relativePath))
		require.NoError(testInstance, os.MkdirAll(filepath.Dir(absolutePath), testDirectoryPermissionsConstant))
		require.NoError(testInstance, os.WriteFile(absolutePath, []byte(content), testFilePermissionsConstant))
	}
	return sourceRoot
}

func runApplication(testInstance *testing.T, executor *recordingClangExecutor, arguments ...string) applicationRun {
	testInstance.Helper()
	var output bytes.Buffer
	var logs bytes.Buffer
	application, creationError := cli.NewApplication(
		cli.WithCommandExecutor(executor),
		cli.WithOutputs(&output, &logs),
		cli.WithConfigurationSearchPaths(testInstance.TempDir()),
	)
	require.NoError(testInstance, creationError)

	executionError := application.ExecuteWithArguments(arguments)
	return applicationRun{output: output.String(), logs: logs.String(), execution: executionError}
}

func TestApplicationRunsLintCommand(testInstance *testing.T) {
	testCases := []struct {
		name             string
		files            map[string]string
		extraArguments   []string
		expectChecksFail bool
		expectedOutput   []string
		expectedContent  string
	}{
		{
			name:           "clean_tree",
			files:          map[string]string{"main.cpp": testFormattedContentConstant, "third_party/zstd.cpp": testUnformattedContentConstant},
			expectedOutput: []string{"clang-tidy: main.cpp", "clang-format: main.cpp", testPassedBannerConstant},
		},
		{
			name:             "style_violation",
			files:            map[string]string{"main.cpp": testUnformattedContentConstant},
			expectChecksFail: true,
			expectedOutput:   []string{testFailedBannerConstant, "code should be clang-formatted", "+" + testFormattedContentConstant},
			expectedContent:  testUnformattedContentConstant,
		},
		{
			name:            "fix_mode_separate_value",
			files:           map[string]string{"main.cpp": testUnformattedContentConstant},
			extraArguments:  []string{"--fix", "yes"},
			expectedOutput:  []string{testPassedBannerConstant},
			expectedContent: testFormattedContentConstant,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			sourceRoot := writeSourceTree(testInstance, testCase.files)
			arguments := append([]string{"--source-root", sourceRoot, "-p", "build", "--no-color", "--log-level", "error"}, testCase.extraArguments...)

			run := runApplication(testInstance, &recordingClangExecutor{}, arguments...)
			if testCase.expectChecksFail {
				require.ErrorIs(testInstance, run.execution, linting.ErrChecksFailed)
			} else {
				require.NoError(testInstance, run.execution)
			}
			for _, expected := range testCase.expectedOutput {
				require.Contains(testInstance, run.output, expected)
			}
			require.NotContains(testInstance, run.output, "third_party")

			if len(testCase.expectedContent) > 0 {
				content, readError := os.ReadFile(filepath.Join(sourceRoot, "main.cpp"))
				require.NoError(testInstance, readError)
				require.Equal(testInstance, testCase.expectedContent, string(content))
			}
		})
	}
}

func TestApplicationRequiresBuildPath(testInstance *testing.T) {
	sourceRoot := writeSourceTree(testInstance, map[string]string{"main.cpp": testFormattedContentConstant})
	executor := &recordingClangExecutor{}

	run := runApplication(testInstance, executor, "--source-root", sourceRoot)
	require.ErrorIs(testInstance, run.execution, linting.ErrBuildPathRequired)
	require.Empty(testInstance, executor.tidyBuildPaths())
}

func TestApplicationReadsConfigurationFile(testInstance *testing.T) {
	sourceRoot := writeSourceTree(testInstance, map[string]string{"main.cpp": testFormattedContentConstant})
	buildPath := testInstance.TempDir()
	configurationPath := filepath.Join(testInstance.TempDir(), testConfigurationFileNameConstant)
	configurationContent := "common:\n  log_level: error\nlint:\n  source_root: " + sourceRoot + "\n  build_path: " + buildPath + "\n  checkers:\n    - clang-tidy\n"
	require.NoError(testInstance, os.WriteFile(configurationPath, []byte(configurationContent), testFilePermissionsConstant))

	executor := &recordingClangExecutor{}
	run := runApplication(testInstance, executor, "--config", configurationPath, "--no-color")
	require.NoError(testInstance, run.execution)
	require.Equal(testInstance, []string{buildPath}, executor.tidyBuildPaths())
	require.NotContains(testInstance, run.output, "clang-format:")
}

func TestApplicationReadsEnvironmentOverrides(testInstance *testing.T) {
	sourceRoot := writeSourceTree(testInstance, map[string]string{"main.cpp": testFormattedContentConstant})
	buildPath := testInstance.TempDir()
	testInstance.Setenv(testBuildPathEnvironmentConstant, buildPath)

	executor := &recordingClangExecutor{}
	run := runApplication(testInstance, executor, "--source-root", sourceRoot, "--no-color", "--log-level", "error")
	require.NoError(testInstance, run.execution)
	require.Equal(testInstance, []string{buildPath}, executor.tidyBuildPaths())
}

func TestApplicationRejectsUnknownLogLevel(testInstance *testing.T) {
	sourceRoot := writeSourceTree(testInstance, map[string]string{"main.cpp": testFormattedContentConstant})
	run := runApplication(testInstance, &recordingClangExecutor{}, "--source-root", sourceRoot, "-p", "build", "--log-level", "verbose")
	require.Error(testInstance, run.execution)
	require.Contains(testInstance, run.execution.Error(), "unsupported log level")
}

func TestApplicationWritesStructuredLogs(testInstance *testing.T) {
	sourceRoot := writeSourceTree(testInstance, map[string]string{"main.cpp": testFormattedContentConstant})
	run := runApplication(testInstance, &recordingClangExecutor{}, "--source-root", sourceRoot, "-p", "build", "--no-color", "--log-format", "structured")
	require.NoError(testInstance, run.execution)
	require.Contains(testInstance, run.logs, "\"msg\":\"lint run started\"")
}

func TestApplicationFilesSubcommand(testInstance *testing.T) {
	sourceRoot := writeSourceTree(testInstance, map[string]string{
		"main.cpp":            testFormattedContentConstant,
		"main.hpp":            testFormattedContentConstant,
		"third_party/lua.hpp": testFormattedContentConstant,
	})
	executor := &recordingClangExecutor{}

	run := runApplication(testInstance, executor, "files", "--source-root", sourceRoot, "--log-level", "error")
	require.NoError(testInstance, run.execution)
	require.Equal(testInstance, "clang-tidy: main.cpp\nclang-format: main.cpp\nclang-format: main.hpp\n", run.output)
	require.Empty(testInstance, executor.commands)
}

func TestApplicationVersionFlag(testInstance *testing.T) {
	run := runApplication(testInstance, &recordingClangExecutor{}, "--version")
	require.NoError(testInstance, run.execution)
	require.Equal(testInstance, "lintrun version "+cli.Version+"\n", run.output)
}

func TestEmbeddedDefaultConfigurationMatchesCommandDefaults(testInstance *testing.T) {
	content, configurationType := cli.EmbeddedDefaultConfiguration()
	require.Equal(testInstance, "yaml", configurationType)

	var document map[string]any
	require.NoError(testInstance, yaml.Unmarshal(content, &document))

	var configuration cli.ApplicationConfiguration
	decoder, decoderError := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		Result: &configuration,
	})
	require.NoError(testInstance, decoderError)
	require.NoError(testInstance, decoder.Decode(document))

	assertions := require.New(testInstance)
	assertions.Equal("info", configuration.Common.LogLevel)
	assertions.Equal("console", configuration.Common.LogFormat)

	defaults := linting.DefaultCommandConfiguration()
	assertions.Equal(defaults.SourceRoot, configuration.Lint.SourceRoot)
	assertions.Empty(configuration.Lint.BuildPath)
	assertions.Equal(defaults.Exclude, configuration.Lint.Exclude)
	assertions.Equal(defaults.Checkers, configuration.Lint.Checkers)
	assertions.Equal(defaults.Jobs, configuration.Lint.Jobs)
	assertions.Equal(defaults.Timeout, configuration.Lint.Timeout)
	assertions.Equal(defaults.DiffContext, configuration.Lint.DiffContext)
	assertions.Equal(defaults.PreviewDiff, configuration.Lint.PreviewDiff)
	assertions.Equal(defaults.ClangTidy.Executable, configuration.Lint.ClangTidy.Executable)
	assertions.Equal(defaults.ClangTidy.Extensions, configuration.Lint.ClangTidy.Extensions)
	assertions.Equal(defaults.ClangFormat.Executable, configuration.Lint.ClangFormat.Executable)
	assertions.Equal(defaults.ClangFormat.Extensions, configuration.Lint.ClangFormat.Extensions)
}

func TestApplicationStopsOnCancelledContext(testInstance *testing.T) {
	sourceRoot := writeSourceTree(testInstance, map[string]string{"main.cpp": testFormattedContentConstant})
	executor := &recordingClangExecutor{}
	application, creationError := cli.NewApplication(
		cli.WithCommandExecutor(executor),
		cli.WithOutputs(&bytes.Buffer{}, &bytes.Buffer{}),
		cli.WithConfigurationSearchPaths(testInstance.TempDir()),
	)
	require.NoError(testInstance, creationError)

	cancelledContext, cancel := context.WithCancel(context.Background())
	cancel()

	executionError := application.ExecuteContext(cancelledContext, []string{"--source-root", sourceRoot, "-p", "build", "--log-level", "error"})
	require.ErrorIs(testInstance, executionError, context.Canceled)
	require.Empty(testInstance, executor.commands)
}
