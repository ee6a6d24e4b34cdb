package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/lintrun/internal/checkers"
	"github.com/temirov/lintrun/internal/filesystem"
	"github.com/temirov/lintrun/internal/linting"
	"github.com/temirov/lintrun/internal/utils"
	flagutils "github.com/temirov/lintrun/internal/utils/flags"
)

const (
	applicationNameConstant                 = "lintrun"
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured log level."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Override the configured log format."
	commonConfigurationKeyConstant          = "common"
	commonLogLevelConfigKeyConstant         = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant        = commonConfigurationKeyConstant + ".log_format"
	lintConfigurationKeyConstant            = "lint"
	environmentPrefixConstant               = "LINTRUN"
	configurationNameConstant               = "config"
	configurationTypeConstant               = "yaml"
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	commandBuildErrorTemplateConstant       = "unable to build %s command: %w"
	filesCommandNameConstant                = "files"
)

// Version is reported by --version and overridden at link time.
var Version = "dev"

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common ApplicationCommonConfiguration `mapstructure:"common"`
	Lint   linting.CommandConfiguration   `mapstructure:"lint"`
}

// ApplicationCommonConfiguration stores logging configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// ApplicationOption customizes an Application.
type ApplicationOption func(*Application)

// WithCommandExecutor replaces the process-backed executor used by the lint command.
func WithCommandExecutor(executor checkers.CommandExecutor) ApplicationOption {
	return func(application *Application) {
		application.executor = executor
	}
}

// WithFileSystem replaces the operating system file access used by every command.
func WithFileSystem(fileSystem filesystem.FileSystem) ApplicationOption {
	return func(application *Application) {
		application.fileSystem = fileSystem
	}
}

// WithOutputs redirects command output and diagnostic logs.
func WithOutputs(standardOutput io.Writer, logOutput io.Writer) ApplicationOption {
	return func(application *Application) {
		application.standardOutput = standardOutput
		if logOutput != nil {
			application.loggerFactory = utils.NewLoggerFactoryWithOutput(logOutput)
		}
	}
}

// WithConfigurationSearchPaths replaces the directories searched for config.yaml.
func WithConfigurationSearchPaths(searchPaths ...string) ApplicationOption {
	return func(application *Application) {
		application.searchPaths = searchPaths
	}
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand           *cobra.Command
	configurationLoader   *utils.ConfigurationLoader
	loggerFactory         *utils.LoggerFactory
	logger                *zap.Logger
	configuration         ApplicationConfiguration
	configurationMetadata utils.LoadedConfiguration
	configurationFilePath string
	logLevelFlagValue     string
	logFormatFlagValue    string
	searchPaths           []string
	executor              checkers.CommandExecutor
	fileSystem            filesystem.FileSystem
	standardOutput        io.Writer
}

// NewApplication assembles a fully wired CLI application instance.
// The lint command is the root; listing sources lives under the files subcommand.
func NewApplication(options ...ApplicationOption) (*Application, error) {
	application := &Application{
		loggerFactory: utils.NewLoggerFactory(),
		logger:        zap.NewNop(),
		searchPaths:   utils.DefaultConfigurationSearchPaths(applicationNameConstant),
	}
	for _, option := range options {
		if option != nil {
			option(application)
		}
	}

	application.configurationLoader = utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		application.searchPaths,
	)
	application.configurationLoader.SetEmbeddedConfiguration(EmbeddedDefaultConfiguration())

	lintBuilder := linting.CommandBuilder{
		LoggerProvider:               application.currentLogger,
		ConfigurationProvider:        application.lintConfiguration,
		HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
		Executor:                     application.executor,
		FileSystem:                   application.fileSystem,
	}
	rootCommand, lintBuildError := lintBuilder.Build()
	if lintBuildError != nil {
		return nil, fmt.Errorf(commandBuildErrorTemplateConstant, applicationNameConstant, lintBuildError)
	}

	filesBuilder := linting.FilesCommandBuilder{
		LoggerProvider:        application.currentLogger,
		ConfigurationProvider: application.lintConfiguration,
		FileSystem:            application.fileSystem,
	}
	filesCommand, filesBuildError := filesBuilder.Build()
	if filesBuildError != nil {
		return nil, fmt.Errorf(commandBuildErrorTemplateConstant, filesCommandNameConstant, filesBuildError)
	}
	rootCommand.AddCommand(filesCommand)

	rootCommand.Version = Version
	rootCommand.SilenceUsage = true
	rootCommand.SilenceErrors = true
	rootCommand.PersistentPreRunE = func(command *cobra.Command, arguments []string) error {
		return application.initializeConfiguration(command)
	}
	if application.standardOutput != nil {
		rootCommand.SetOut(application.standardOutput)
	}

	logLevelUsage := flagutils.FormatChoiceUsage(
		string(utils.LogLevelInfo),
		[]string{string(utils.LogLevelDebug), string(utils.LogLevelInfo), string(utils.LogLevelWarn), string(utils.LogLevelError)},
		logLevelFlagUsageConstant,
	)
	logFormatUsage := flagutils.FormatChoiceUsage(
		string(utils.LogFormatConsole),
		[]string{string(utils.LogFormatStructured), string(utils.LogFormatConsole)},
		logFormatFlagUsageConstant,
	)
	rootCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	rootCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelUsage)
	rootCommand.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatUsage)

	application.rootCommand = rootCommand
	return application, nil
}

// Execute runs the command hierarchy with the process arguments until SIGINT or SIGTERM arrives.
func (application *Application) Execute() error {
	signalContext, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return application.ExecuteContext(signalContext, os.Args[1:])
}

// ExecuteWithArguments runs the command hierarchy with arguments and flushes the logger.
func (application *Application) ExecuteWithArguments(arguments []string) error {
	return application.ExecuteContext(context.Background(), arguments)
}

// ExecuteContext is ExecuteWithArguments bound to executionContext.
// Once the context is done no further checks are started.
func (application *Application) ExecuteContext(executionContext context.Context, arguments []string) error {
	normalizedArguments := flagutils.NormalizeToggleArguments(arguments)
	if normalizedArguments == nil {
		normalizedArguments = []string{}
	}
	application.rootCommand.SetArgs(normalizedArguments)

	executionError := application.rootCommand.ExecuteContext(executionContext)
	if syncError := application.flushLogger(); syncError != nil && executionError == nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes it with the process arguments.
func Execute() error {
	application, creationError := NewApplication()
	if creationError != nil {
		return creationError
	}
	return application.Execute()
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:  string(utils.LogLevelInfo),
		commonLogFormatConfigKeyConstant: string(utils.LogFormatConsole),
	}
	for configurationKey, configurationValue := range linting.DefaultConfigurationValues(lintConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}
	application.configurationMetadata = loadedConfiguration

	if persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}
	if persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	logger, loggerCreationError := application.loggerFactory.CreateLogger(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}
	application.logger = logger

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)
	return nil
}

func (application *Application) currentLogger() *zap.Logger {
	return application.logger
}

func (application *Application) lintConfiguration() linting.CommandConfiguration {
	return application.configuration.Lint
}

func (application *Application) humanReadableLoggingEnabled() bool {
	logFormatValue := strings.TrimSpace(application.configuration.Common.LogFormat)
	return strings.EqualFold(logFormatValue, string(utils.LogFormatConsole))
}

func (application *Application) flushLogger() error {
	if application.logger == nil {
		return nil
	}

	syncError := application.logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	default:
		return syncError
	}
}

func persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{command.PersistentFlags(), command.InheritedFlags()}
	if rootCommand := command.Root(); rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet != nil && flagSet.Changed(flagName) {
			return true
		}
	}
	return false
}
