package linting

import (
	"strings"
	"time"

	"github.com/temirov/lintrun/internal/checkers"
	pathutils "github.com/temirov/lintrun/internal/utils/path"
)

const (
	defaultSourceRootConstant              = "src"
	defaultExcludedDirectoryConstant       = "third_party"
	defaultDiffContextConstant             = 0
	defaultPreviewDiffConstant             = true
	cppExtensionConstant                   = ".cpp"
	hppExtensionConstant                   = ".hpp"
	configurationKeySeparatorConstant      = "."
	sourceRootConfigurationKeyConstant     = "source_root"
	buildPathConfigurationKeyConstant      = "build_path"
	fixConfigurationKeyConstant            = "fix"
	excludeConfigurationKeyConstant        = "exclude"
	checkersConfigurationKeyConstant       = "checkers"
	jobsConfigurationKeyConstant           = "jobs"
	timeoutConfigurationKeyConstant        = "timeout"
	diffContextConfigurationKeyConstant    = "diff_context"
	previewDiffConfigurationKeyConstant    = "preview_diff"
	clangTidyConfigurationKeyConstant      = "clang_tidy"
	clangFormatConfigurationKeyConstant    = "clang_format"
	executableConfigurationKeyConstant     = "executable"
	extensionsConfigurationKeyConstant     = "extensions"
	extraArgumentsConfigurationKeyConstant = "extra_arguments"
)

var configurationPathExpander = pathutils.NewHomeExpander()

// CheckerConfiguration describes how a single external checker is invoked.
type CheckerConfiguration struct {
	Executable     string   `mapstructure:"executable"`
	Extensions     []string `mapstructure:"extensions"`
	ExtraArguments []string `mapstructure:"extra_arguments"`
}

// CommandConfiguration captures persistent settings for a lint run.
type CommandConfiguration struct {
	SourceRoot  string               `mapstructure:"source_root"`
	BuildPath   string               `mapstructure:"build_path"`
	Fix         bool                 `mapstructure:"fix"`
	Exclude     []string             `mapstructure:"exclude"`
	Checkers    []string             `mapstructure:"checkers"`
	Jobs        int                  `mapstructure:"jobs"`
	Timeout     time.Duration        `mapstructure:"timeout"`
	DiffContext int                  `mapstructure:"diff_context"`
	PreviewDiff bool                 `mapstructure:"preview_diff"`
	ClangTidy   CheckerConfiguration `mapstructure:"clang_tidy"`
	ClangFormat CheckerConfiguration `mapstructure:"clang_format"`
}

// DefaultCommandConfiguration returns baseline configuration values for a lint run.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		SourceRoot:  defaultSourceRootConstant,
		Exclude:     []string{defaultExcludedDirectoryConstant},
		Checkers:    []string{string(checkers.StaticAnalysisCheckerName), string(checkers.StyleCheckerName)},
		DiffContext: defaultDiffContextConstant,
		PreviewDiff: defaultPreviewDiffConstant,
		ClangTidy: CheckerConfiguration{
			Executable: string(checkers.StaticAnalysisCheckerName),
			Extensions: []string{cppExtensionConstant},
		},
		ClangFormat: CheckerConfiguration{
			Executable: string(checkers.StyleCheckerName),
			Extensions: []string{cppExtensionConstant, hppExtensionConstant},
		},
	}
}

// DefaultConfigurationValues flattens DefaultCommandConfiguration into viper keys rooted at prefix.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	key := func(parts ...string) string {
		trimmedPrefix := strings.TrimSpace(prefix)
		if len(trimmedPrefix) == 0 {
			return strings.Join(parts, configurationKeySeparatorConstant)
		}
		return trimmedPrefix + configurationKeySeparatorConstant + strings.Join(parts, configurationKeySeparatorConstant)
	}

	values := make(map[string]any)
	values[key(sourceRootConfigurationKeyConstant)] = defaults.SourceRoot
	values[key(buildPathConfigurationKeyConstant)] = defaults.BuildPath
	values[key(fixConfigurationKeyConstant)] = defaults.Fix
	values[key(excludeConfigurationKeyConstant)] = defaults.Exclude
	values[key(checkersConfigurationKeyConstant)] = defaults.Checkers
	values[key(jobsConfigurationKeyConstant)] = defaults.Jobs
	values[key(timeoutConfigurationKeyConstant)] = defaults.Timeout
	values[key(diffContextConfigurationKeyConstant)] = defaults.DiffContext
	values[key(previewDiffConfigurationKeyConstant)] = defaults.PreviewDiff
	values[key(clangTidyConfigurationKeyConstant, executableConfigurationKeyConstant)] = defaults.ClangTidy.Executable
	values[key(clangTidyConfigurationKeyConstant, extensionsConfigurationKeyConstant)] = defaults.ClangTidy.Extensions
	values[key(clangTidyConfigurationKeyConstant, extraArgumentsConfigurationKeyConstant)] = defaults.ClangTidy.ExtraArguments
	values[key(clangFormatConfigurationKeyConstant, executableConfigurationKeyConstant)] = defaults.ClangFormat.Executable
	values[key(clangFormatConfigurationKeyConstant, extensionsConfigurationKeyConstant)] = defaults.ClangFormat.Extensions
	values[key(clangFormatConfigurationKeyConstant, extraArgumentsConfigurationKeyConstant)] = defaults.ClangFormat.ExtraArguments
	return values
}

// sanitize trims whitespace, expands home directories, and fills unset values from the defaults.
func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	defaults := DefaultCommandConfiguration()
	sanitized := configuration

	sanitized.SourceRoot = configurationPathExpander.Expand(strings.TrimSpace(configuration.SourceRoot))
	if len(sanitized.SourceRoot) == 0 {
		sanitized.SourceRoot = defaults.SourceRoot
	}
	sanitized.BuildPath = configurationPathExpander.Expand(strings.TrimSpace(configuration.BuildPath))
	sanitized.Exclude = sanitizeValues(configuration.Exclude)
	sanitized.Checkers = sanitizeValues(configuration.Checkers)
	if len(sanitized.Checkers) == 0 {
		sanitized.Checkers = defaults.Checkers
	}
	if sanitized.Jobs < 0 {
		sanitized.Jobs = 0
	}
	if sanitized.Timeout < 0 {
		sanitized.Timeout = 0
	}
	if sanitized.DiffContext < 0 {
		sanitized.DiffContext = defaults.DiffContext
	}
	sanitized.ClangTidy = configuration.ClangTidy.sanitize(defaults.ClangTidy)
	sanitized.ClangFormat = configuration.ClangFormat.sanitize(defaults.ClangFormat)

	return sanitized
}

func (configuration CheckerConfiguration) sanitize(defaults CheckerConfiguration) CheckerConfiguration {
	sanitized := CheckerConfiguration{
		Executable:     strings.TrimSpace(configuration.Executable),
		Extensions:     sanitizeValues(configuration.Extensions),
		ExtraArguments: sanitizeValues(configuration.ExtraArguments),
	}
	if len(sanitized.Executable) == 0 {
		sanitized.Executable = defaults.Executable
	}
	if len(sanitized.Extensions) == 0 {
		sanitized.Extensions = append([]string{}, defaults.Extensions...)
	}
	return sanitized
}

func sanitizeValues(raw []string) []string {
	sanitized := make([]string, 0, len(raw))
	for index := range raw {
		trimmed := strings.TrimSpace(raw[index])
		if len(trimmed) == 0 {
			continue
		}
		sanitized = append(sanitized, trimmed)
	}
	return sanitized
}
