package flags_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/lintrun/internal/utils/flags"
)

func TestFormatChoiceUsage(testInstance *testing.T) {
	testCases := []struct {
		name           string
		defaultChoice  string
		choices        []string
		description    string
		expectedOutput string
	}{
		{
			name:           "default_first",
			defaultChoice:  "console",
			choices:        []string{"console", "structured"},
			description:    "Log format.",
			expectedOutput: "`<CONSOLE|structured>` Log format.",
		},
		{
			name:           "default_in_middle",
			defaultChoice:  "info",
			choices:        []string{"debug", "info", "warn", "error"},
			description:    "Log level.",
			expectedOutput: "`<debug|INFO|warn|error>` Log level.",
		},
		{
			name:           "empty_description",
			defaultChoice:  "yes",
			choices:        []string{"yes", "no"},
			expectedOutput: "`<YES|no>`",
		},
		{
			name:           "duplicates_and_blanks_dropped",
			defaultChoice:  "clang-tidy",
			choices:        []string{"clang-tidy", " ", "CLANG-TIDY", "clang-format"},
			description:    "  Checkers to run. ",
			expectedOutput: "`<CLANG-TIDY|clang-format>` Checkers to run.",
		},
		{
			name:           "unknown_default",
			defaultChoice:  "verbose",
			choices:        []string{" debug ", "info"},
			description:    "Log level.",
			expectedOutput: "`<debug|info>` Log level.",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedOutput, flags.FormatChoiceUsage(testCase.defaultChoice, testCase.choices, testCase.description))
		})
	}
}
