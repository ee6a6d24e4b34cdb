package linting

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/lintrun/internal/checkers"
	"github.com/temirov/lintrun/internal/execshell"
	"github.com/temirov/lintrun/internal/filesystem"
	"github.com/temirov/lintrun/internal/sources"
	"github.com/temirov/lintrun/internal/ui"
	"github.com/temirov/lintrun/internal/utils"
	flagutils "github.com/temirov/lintrun/internal/utils/flags"
)

const (
	commandUseConstant                    = "lintrun"
	commandShortDescriptionConstant       = "Run clang-tidy and clang-format across a source tree"
	commandLongDescriptionConstant        = "lintrun discovers C++ sources, runs clang-tidy and clang-format on each file in parallel, and fails when any check reports a problem."
	commandExecutionErrorTemplateConstant = "lint run failed: %w"
	unexpectedArgumentsMessageConstant    = "lintrun does not accept positional arguments"
	unsupportedCheckerTemplateConstant    = "unsupported checker %q (expected clang-tidy or clang-format)"
	checkerCreationErrorTemplateConstant  = "unable to configure %s: %w"
	flagBuildPathNameConstant             = "build-path"
	flagBuildPathShorthandConstant        = "p"
	flagBuildPathDescriptionConstant      = "Directory containing compile_commands.json, passed to clang-tidy"
	flagFixNameConstant                   = "fix"
	flagFixDescriptionConstant            = "Apply fixes in place instead of reporting them"
	flagSourceRootNameConstant            = "source-root"
	flagSourceRootDescriptionConstant     = "Directory scanned for sources"
	flagExcludeNameConstant               = "exclude"
	flagExcludeDescriptionConstant        = "Top-level directory names skipped during discovery (repeatable)"
	flagCheckersNameConstant              = "checkers"
	flagCheckersDescriptionConstant       = "Checkers to run (clang-tidy, clang-format)"
	flagJobsNameConstant                  = "jobs"
	flagJobsShorthandConstant             = "j"
	flagJobsDescriptionConstant           = "Maximum concurrent checker processes (0 uses every CPU)"
	flagTimeoutNameConstant               = "timeout"
	flagTimeoutDescriptionConstant        = "Per-invocation time limit (0 disables the limit)"
	flagDiffContextNameConstant           = "diff-context"
	flagDiffContextDescriptionConstant    = "Context lines around changes in reported diffs"
	flagPreviewDiffNameConstant           = "preview-diff"
	flagPreviewDiffDescriptionConstant    = "Show the formatting clang-format would apply when a dry run fails"
	flagNoColorNameConstant               = "no-color"
	flagNoColorDescriptionConstant        = "Disable colored banners"
	runStartedMessageConstant             = "lint run started"
	logFieldSourceRootConstant            = "source_root"
	logFieldBuildPathConstant             = "build_path"
	logFieldCheckersConstant              = "checkers"
)

var errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies the persisted lint configuration.
type ConfigurationProvider func() CommandConfiguration

// HumanReadableLoggingProvider reports whether console logging is active.
type HumanReadableLoggingProvider func() bool

// CommandBuilder assembles the lint cobra command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	ConfigurationProvider        ConfigurationProvider
	HumanReadableLoggingProvider HumanReadableLoggingProvider
	Executor                     checkers.CommandExecutor
	FileSystem                   filesystem.FileSystem
}

// Build constructs the lint command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	defaults := DefaultCommandConfiguration()
	command.Flags().StringP(flagBuildPathNameConstant, flagBuildPathShorthandConstant, "", flagBuildPathDescriptionConstant)
	flagutils.AddToggleFlag(command.Flags(), nil, flagFixNameConstant, "", defaults.Fix, flagFixDescriptionConstant)
	bindDiscoveryFlags(command, defaults)
	command.Flags().IntP(flagJobsNameConstant, flagJobsShorthandConstant, defaults.Jobs, flagJobsDescriptionConstant)
	command.Flags().Duration(flagTimeoutNameConstant, defaults.Timeout, flagTimeoutDescriptionConstant)
	command.Flags().Int(flagDiffContextNameConstant, defaults.DiffContext, flagDiffContextDescriptionConstant)
	flagutils.AddToggleFlag(command.Flags(), nil, flagPreviewDiffNameConstant, "", defaults.PreviewDiff, flagPreviewDiffDescriptionConstant)
	command.Flags().Bool(flagNoColorNameConstant, false, flagNoColorDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	configuration := builder.resolveConfiguration(command)
	if len(configuration.BuildPath) == 0 {
		return ErrBuildPathRequired
	}

	logger := resolveLogger(builder.LoggerProvider)
	executor, executorError := builder.resolveExecutor(logger)
	if executorError != nil {
		return executorError
	}
	fileSystem := builder.resolveFileSystem()

	phases, phasesError := buildPhases(logger, executor, fileSystem, configuration)
	if phasesError != nil {
		return phasesError
	}

	outputWriter := utils.NewFlushingWriter(command.OutOrStdout())
	runner, runnerError := NewRunner(logger, sources.NewSourceDiscovererWithFileSystem(fileSystem), ui.NewProgressPrinter(outputWriter), phases...)
	if runnerError != nil {
		return runnerError
	}

	logger.Info(
		runStartedMessageConstant,
		zap.String(logFieldSourceRootConstant, configuration.SourceRoot),
		zap.String(logFieldBuildPathConstant, configuration.BuildPath),
		zap.Strings(logFieldCheckersConstant, configuration.Checkers),
		zap.Bool(logFieldFixConstant, configuration.Fix),
	)

	report, runError := runner.Run(command.Context(), RunOptions{
		SourceRoot:          configuration.SourceRoot,
		BuildPath:           configuration.BuildPath,
		Fix:                 configuration.Fix,
		ExcludedDirectories: configuration.Exclude,
		Jobs:                configuration.Jobs,
	})
	if runError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, runError)
	}

	disableColor, _ := command.Flags().GetBool(flagNoColorNameConstant)
	if printError := NewReportPrinter(outputWriter, disableColor).Print(report); printError != nil {
		return printError
	}
	if !report.Succeeded() {
		return ErrChecksFailed
	}
	return nil
}

func (builder *CommandBuilder) resolveConfiguration(command *cobra.Command) CommandConfiguration {
	configuration := DefaultCommandConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}

	flagSet := command.Flags()
	if flagSet.Changed(flagBuildPathNameConstant) {
		configuration.BuildPath, _ = flagSet.GetString(flagBuildPathNameConstant)
	}
	if flagSet.Changed(flagFixNameConstant) {
		configuration.Fix, _ = flagSet.GetBool(flagFixNameConstant)
	}
	if flagSet.Changed(flagJobsNameConstant) {
		configuration.Jobs, _ = flagSet.GetInt(flagJobsNameConstant)
	}
	if flagSet.Changed(flagTimeoutNameConstant) {
		configuration.Timeout, _ = flagSet.GetDuration(flagTimeoutNameConstant)
	}
	if flagSet.Changed(flagDiffContextNameConstant) {
		configuration.DiffContext, _ = flagSet.GetInt(flagDiffContextNameConstant)
	}
	if flagSet.Changed(flagPreviewDiffNameConstant) {
		configuration.PreviewDiff, _ = flagSet.GetBool(flagPreviewDiffNameConstant)
	}
	configuration = applyDiscoveryFlags(command, configuration)

	return configuration.sanitize()
}

func (builder *CommandBuilder) resolveExecutor(logger *zap.Logger) (checkers.CommandExecutor, error) {
	if builder.Executor != nil {
		return builder.Executor, nil
	}

	var options []execshell.ShellExecutorOption
	if builder.HumanReadableLoggingProvider != nil && builder.HumanReadableLoggingProvider() {
		options = append(options, execshell.WithCommandEventObserver(ui.NewConsoleCommandEventLogger(logger)))
	}

	shellExecutor, creationError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner(), options...)
	if creationError != nil {
		return nil, creationError
	}
	return shellExecutor, nil
}

func (builder *CommandBuilder) resolveFileSystem() filesystem.FileSystem {
	if builder.FileSystem != nil {
		return builder.FileSystem
	}
	return filesystem.OSFileSystem{}
}

// buildPhases orders the enabled checkers: clang-tidy first, then clang-format.
func buildPhases(logger *zap.Logger, executor checkers.CommandExecutor, fileSystem filesystem.FileSystem, configuration CommandConfiguration) ([]Phase, error) {
	enabled, enabledError := enabledCheckers(configuration.Checkers)
	if enabledError != nil {
		return nil, enabledError
	}

	phases := make([]Phase, 0, len(enabled))
	if slices.Contains(enabled, checkers.StaticAnalysisCheckerName) {
		analyzer, creationError := checkers.NewStaticAnalyzer(logger, executor, fileSystem, checkers.StaticAnalyzerConfiguration{
			Executable:     configuration.ClangTidy.Executable,
			ExtraArguments: configuration.ClangTidy.ExtraArguments,
			Timeout:        configuration.Timeout,
			DiffContext:    configuration.DiffContext,
		})
		if creationError != nil {
			return nil, fmt.Errorf(checkerCreationErrorTemplateConstant, checkers.StaticAnalysisCheckerName, creationError)
		}
		phases = append(phases, Phase{Checker: analyzer, Extensions: configuration.ClangTidy.Extensions})
	}
	if slices.Contains(enabled, checkers.StyleCheckerName) {
		styleChecker, creationError := checkers.NewStyleChecker(logger, executor, fileSystem, checkers.StyleCheckerConfiguration{
			Executable:     configuration.ClangFormat.Executable,
			ExtraArguments: configuration.ClangFormat.ExtraArguments,
			Timeout:        configuration.Timeout,
			DiffContext:    configuration.DiffContext,
			PreviewDiff:    configuration.PreviewDiff,
		})
		if creationError != nil {
			return nil, fmt.Errorf(checkerCreationErrorTemplateConstant, checkers.StyleCheckerName, creationError)
		}
		phases = append(phases, Phase{Checker: styleChecker, Extensions: configuration.ClangFormat.Extensions})
	}

	return phases, nil
}

func enabledCheckers(rawNames []string) ([]checkers.CheckerName, error) {
	enabled := make([]checkers.CheckerName, 0, len(rawNames))
	for _, rawName := range rawNames {
		for _, namePart := range strings.Split(rawName, ",") {
			normalizedName := checkers.CheckerName(strings.ToLower(strings.TrimSpace(namePart)))
			switch normalizedName {
			case "":
				continue
			case checkers.StaticAnalysisCheckerName, checkers.StyleCheckerName:
				if !slices.Contains(enabled, normalizedName) {
					enabled = append(enabled, normalizedName)
				}
			default:
				return nil, fmt.Errorf(unsupportedCheckerTemplateConstant, strings.TrimSpace(namePart))
			}
		}
	}
	return enabled, nil
}

func bindDiscoveryFlags(command *cobra.Command, defaults CommandConfiguration) {
	command.Flags().String(flagSourceRootNameConstant, defaults.SourceRoot, flagSourceRootDescriptionConstant)
	command.Flags().StringSlice(flagExcludeNameConstant, defaults.Exclude, flagExcludeDescriptionConstant)
	command.Flags().StringSlice(flagCheckersNameConstant, defaults.Checkers, flagCheckersDescriptionConstant)
}

func applyDiscoveryFlags(command *cobra.Command, configuration CommandConfiguration) CommandConfiguration {
	flagSet := command.Flags()
	if flagSet.Changed(flagSourceRootNameConstant) {
		configuration.SourceRoot, _ = flagSet.GetString(flagSourceRootNameConstant)
	}
	if flagSet.Changed(flagExcludeNameConstant) {
		configuration.Exclude, _ = flagSet.GetStringSlice(flagExcludeNameConstant)
	}
	if flagSet.Changed(flagCheckersNameConstant) {
		configuration.Checkers, _ = flagSet.GetStringSlice(flagCheckersNameConstant)
	}
	return configuration
}

func resolveLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
