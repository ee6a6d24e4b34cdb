package linting

import (
	"fmt"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/lintrun/internal/checkers"
	"github.com/temirov/lintrun/internal/filesystem"
	"github.com/temirov/lintrun/internal/sources"
	"github.com/temirov/lintrun/internal/utils"
)

const (
	filesCommandUseConstant              = "files"
	filesCommandShortDescriptionConstant = "List the sources each checker would inspect"
	filesCommandLongDescriptionConstant  = "files runs source discovery with the configured root, exclusions, and extensions and prints one line per checker and file without invoking any tool."
	filesLineTemplateConstant            = "%s: %s\n"
	filesListedMessageConstant           = "sources listed"
)

// FilesCommandBuilder assembles the files cobra command.
type FilesCommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	FileSystem            filesystem.FileSystem
}

// Build constructs the files command.
func (builder *FilesCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   filesCommandUseConstant,
		Short: filesCommandShortDescriptionConstant,
		Long:  filesCommandLongDescriptionConstant,
		RunE:  builder.run,
	}
	bindDiscoveryFlags(command, DefaultCommandConfiguration())
	return command, nil
}

func (builder *FilesCommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	configuration := DefaultCommandConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}
	configuration = applyDiscoveryFlags(command, configuration).sanitize()

	enabled, enabledError := enabledCheckers(configuration.Checkers)
	if enabledError != nil {
		return enabledError
	}

	fileSystem := builder.FileSystem
	if fileSystem == nil {
		fileSystem = filesystem.OSFileSystem{}
	}
	discoverer := sources.NewSourceDiscovererWithFileSystem(fileSystem)
	outputWriter := utils.NewFlushingWriter(command.OutOrStdout())
	logger := resolveLogger(builder.LoggerProvider)

	extensionsByChecker := map[checkers.CheckerName][]string{
		checkers.StaticAnalysisCheckerName: configuration.ClangTidy.Extensions,
		checkers.StyleCheckerName:          configuration.ClangFormat.Extensions,
	}
	for _, checkerName := range []checkers.CheckerName{checkers.StaticAnalysisCheckerName, checkers.StyleCheckerName} {
		if !slices.Contains(enabled, checkerName) {
			continue
		}
		sourceFiles, discoveryError := discoverer.DiscoverSources(sources.DiscoveryRequest{
			SourceRoot:          configuration.SourceRoot,
			Extensions:          extensionsByChecker[checkerName],
			ExcludedDirectories: configuration.Exclude,
		})
		if discoveryError != nil {
			return fmt.Errorf(discoveryErrorTemplateConstant, checkerName, discoveryError)
		}
		for _, sourceFile := range sourceFiles {
			if _, writeError := fmt.Fprintf(outputWriter, filesLineTemplateConstant, checkerName, filepath.ToSlash(sourceFile.RelativePath)); writeError != nil {
				return writeError
			}
		}
		logger.Debug(filesListedMessageConstant, zap.String(logFieldCheckerConstant, string(checkerName)), zap.Int(logFieldFileCountConstant, len(sourceFiles)))
	}
	return nil
}
