package linting_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/lintrun/internal/checkers"
	"github.com/temirov/lintrun/internal/linting"
)

func TestReportPrinterRendersBanners(testInstance *testing.T) {
	testCases := []struct {
		name           string
		report         linting.Report
		expectedOutput string
	}{
		{
			name:           "success",
			report:         linting.Report{Phases: []linting.PhaseSummary{{Checker: checkers.StyleCheckerName, CheckedFiles: 3}}},
			expectedOutput: "\nAll checks passed!\n",
		},
		{
			name: "failure_lists_every_diagnostic",
			report: linting.Report{Diagnostics: []checkers.Diagnostic{
				{Checker: checkers.StaticAnalysisCheckerName, Text: "a.cpp:1:1: warning: first"},
				{Checker: checkers.StyleCheckerName, Text: "b.cpp:2:2: error: second\n"},
			}},
			expectedOutput: "\n***ERROR: Some checks failed\na.cpp:1:1: warning: first\nb.cpp:2:2: error: second\n",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			var output bytes.Buffer
			require.NoError(testInstance, linting.NewReportPrinter(&output, true).Print(testCase.report))
			require.Equal(testInstance, testCase.expectedOutput, output.String())
		})
	}
}

func TestReportCountsCheckedFiles(testInstance *testing.T) {
	report := linting.Report{Phases: []linting.PhaseSummary{
		{Checker: checkers.StaticAnalysisCheckerName, CheckedFiles: 2},
		{Checker: checkers.StyleCheckerName, CheckedFiles: 5, FailedFiles: 1},
	}}
	require.Equal(testInstance, 7, report.CheckedFiles())
	require.True(testInstance, report.Succeeded())
}
