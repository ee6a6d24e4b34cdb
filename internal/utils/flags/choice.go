package flags

import (
	"fmt"
	"strings"
)

const (
	choicePlaceholderTemplate = "<%s>"
	choiceSeparatorLiteral    = "|"
	choiceUsageTemplate       = "`%s` %s"
	choiceUsageBareTemplate   = "`%s`"
)

// FormatChoiceUsage renders "`<a|B|c>` description" with the default choice upper-cased.
// Blank and case-insensitively repeated choices are dropped.
func FormatChoiceUsage(defaultChoice string, choices []string, description string) string {
	placeholder := fmt.Sprintf(choicePlaceholderTemplate, strings.Join(displayChoices(defaultChoice, choices), choiceSeparatorLiteral))
	trimmedDescription := strings.TrimSpace(description)
	if len(trimmedDescription) == 0 {
		return fmt.Sprintf(choiceUsageBareTemplate, placeholder)
	}
	return fmt.Sprintf(choiceUsageTemplate, placeholder, trimmedDescription)
}

func displayChoices(defaultChoice string, choices []string) []string {
	normalizedDefault := strings.ToLower(strings.TrimSpace(defaultChoice))
	displayed := make([]string, 0, len(choices))
	seen := make(map[string]bool, len(choices))
	for _, choice := range choices {
		trimmed := strings.TrimSpace(choice)
		normalized := strings.ToLower(trimmed)
		if len(normalized) == 0 || seen[normalized] {
			continue
		}
		seen[normalized] = true
		if normalized == normalizedDefault {
			trimmed = strings.ToUpper(trimmed)
		}
		displayed = append(displayed, trimmed)
	}
	return displayed
}
