package execshell

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCommandMessageFormatterDescribesSourceQueries(testInstance *testing.T) {
	formatter := CommandMessageFormatter{}
	testCases := []struct {
		name            string
		arguments       []string
		result          ExecutionResult
		failure         error
		stage           messageStage
		expectedMessage string
	}{
		{
			name:            "remote_lookup_success",
			arguments:       []string{"remote", "get-url", "origin"},
			result:          ExecutionResult{StandardOutput: "git@github.com:acme/site.git\n"},
			stage:           messageStageSuccess,
			expectedMessage: "origin remote in /workspace/site points to git@github.com:acme/site.git",
		},
		{
			name:            "remote_lookup_failure",
			arguments:       []string{"remote", "get-url", "origin"},
			result:          ExecutionResult{StandardError: "error: No such remote 'origin'\n", ExitCode: 2},
			stage:           messageStageFailure,
			expectedMessage: "Failed to read origin remote URL in /workspace/site (exit code 2: error: No such remote 'origin')",
		},
		{
			name:            "branch_detached",
			arguments:       []string{"rev-parse", "--abbrev-ref", "HEAD"},
			result:          ExecutionResult{StandardOutput: "HEAD\n"},
			stage:           messageStageSuccess,
			expectedMessage: "/workspace/site is in a detached HEAD state",
		},
		{
			name:            "branch_named",
			arguments:       []string{"rev-parse", "--abbrev-ref", "HEAD"},
			result:          ExecutionResult{StandardOutput: "main\n"},
			stage:           messageStageSuccess,
			expectedMessage: "Current branch in /workspace/site is main",
		},
		{
			name:            "commit_start",
			arguments:       []string{"show", "HEAD", "--no-patch"},
			stage:           messageStageStart,
			expectedMessage: "Reading commit HEAD in /workspace/site",
		},
		{
			name:            "commit_execution_failure",
			arguments:       []string{"show", "HEAD", "--no-patch"},
			failure:         errors.New("signal: killed"),
			stage:           messageStageExecutionFailure,
			expectedMessage: "Unable to read commit HEAD in /workspace/site: signal: killed",
		},
		{
			name:            "generic_fallback",
			arguments:       []string{"status", "--porcelain"},
			stage:           messageStageStart,
			expectedMessage: "Running git status --porcelain (in /workspace/site)",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			command := ShellCommand{
				Name:    CommandGit,
				Details: CommandDetails{Arguments: testCase.arguments, WorkingDirectory: "/workspace/site"},
			}
			message := formatter.buildMessage(command, testCase.result, testCase.failure, testCase.stage)
			require.Equal(testInstance, testCase.expectedMessage, message)
		})
	}
}

func TestCommandMessageFormatterDefaultsWorkingDirectoryLabel(testInstance *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{Name: CommandGit, Details: CommandDetails{Arguments: []string{"rev-parse", "--is-inside-work-tree"}}}
	require.Equal(testInstance, "Checking for a git working tree in current directory", formatter.BuildStartedMessage(command))
}
