package flags

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

const (
	choicePlaceholderTemplate = "<%s>"
	choiceSeparatorConstant   = "|"
	choiceUsageBareTemplate   = "`%s`"
	choiceUsageTemplate       = "`%s` %s"
)

// FormatChoiceUsage renders "`<a|B|c>` description" with the default choice upper-cased.
// Blank and duplicate choices are dropped.
func FormatChoiceUsage(defaultChoice string, choices []string, description string) string {
	normalizedDefault := strings.ToLower(strings.TrimSpace(defaultChoice))
	trimmedChoices := lo.Compact(lo.Map(choices, func(choice string, _ int) string {
		return strings.TrimSpace(choice)
	}))
	distinctChoices := lo.UniqBy(trimmedChoices, strings.ToLower)
	displayedChoices := lo.Map(distinctChoices, func(choice string, _ int) string {
		if strings.ToLower(choice) == normalizedDefault {
			return strings.ToUpper(choice)
		}
		return choice
	})

	placeholder := fmt.Sprintf(choicePlaceholderTemplate, strings.Join(displayedChoices, choiceSeparatorConstant))
	if len(strings.TrimSpace(description)) == 0 {
		return fmt.Sprintf(choiceUsageBareTemplate, placeholder)
	}
	return fmt.Sprintf(choiceUsageTemplate, placeholder, description)
}
