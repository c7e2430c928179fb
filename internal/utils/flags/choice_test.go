package flags_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xcelera-dev/cli/internal/utils/flags"
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
			defaultChoice:  "git",
			choices:        []string{"git", "library"},
			description:    "How to read the local git repository.",
			expectedOutput: "`<GIT|library>` How to read the local git repository.",
		},
		{
			name:           "default_second",
			defaultChoice:  "console",
			choices:        []string{"structured", "console"},
			description:    "Log format.",
			expectedOutput: "`<structured|CONSOLE>` Log format.",
		},
		{
			name:           "empty_description",
			defaultChoice:  "production",
			choices:        []string{"production", "development"},
			expectedOutput: "`<PRODUCTION|development>`",
		},
		{
			name:           "duplicates_and_blanks_dropped",
			defaultChoice:  "library",
			choices:        []string{" library ", "Library", "", "git"},
			description:    "Backend.",
			expectedOutput: "`<LIBRARY|git>` Backend.",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedOutput, flags.FormatChoiceUsage(testCase.defaultChoice, testCase.choices, testCase.description))
		})
	}
}
