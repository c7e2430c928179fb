package gitrepo_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xcelera-dev/cli/internal/execshell"
	"github.com/xcelera-dev/cli/internal/failure"
	"github.com/xcelera-dev/cli/internal/gitrepo"
)

const (
	testCommitHashConstant   = "0123456789abcdef0123456789abcdef01234567"
	testOriginRemoteConstant = "git@github.com:acme/site.git"
)

type scriptedResponse struct {
	result execshell.ExecutionResult
	err    error
}

type scriptedGitExecutor struct {
	responses        map[string]scriptedResponse
	recordedCommands []execshell.CommandDetails
}

func (executor *scriptedGitExecutor) ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordedCommands = append(executor.recordedCommands, details)
	response, found := executor.responses[strings.Join(details.Arguments, " ")]
	if !found {
		return execshell.ExecutionResult{}, execshell.CommandFailedError{
			Command: execshell.ShellCommand{Name: execshell.CommandGit, Details: details},
			Result:  execshell.ExecutionResult{ExitCode: 128},
		}
	}
	return response.result, response.err
}

const (
	workTreeKey = "rev-parse --is-inside-work-tree"
	remoteKey   = "remote get-url origin"
	showKey     = "show HEAD --no-patch --format=%H%x00%s%x00%an%x00%aI"
	branchKey   = "rev-parse --abbrev-ref HEAD"
)

func successfulResponses() map[string]scriptedResponse {
	return map[string]scriptedResponse{
		workTreeKey: {result: execshell.ExecutionResult{StandardOutput: "true\n"}},
		remoteKey:   {result: execshell.ExecutionResult{StandardOutput: testOriginRemoteConstant + "\n"}},
		showKey: {result: execshell.ExecutionResult{
			StandardOutput: strings.Join([]string{testCommitHashConstant, "fix: pipe | in subject", "Ada Lovelace", "2024-03-05T14:07:09+01:00"}, "\x00") + "\n",
		}},
		branchKey: {result: execshell.ExecutionResult{StandardOutput: "feature/login\n"}},
	}
}

func TestCommandInferrerInfersSourceContext(testInstance *testing.T) {
	executor := &scriptedGitExecutor{responses: successfulResponses()}
	inferrer := gitrepo.NewCommandInferrer(executor, "/workspace/site")

	sourceContext, inferError := inferrer.Infer(context.Background())
	require.NoError(testInstance, inferError)
	require.Equal(testInstance, gitrepo.SourceContext{
		Owner:  "acme",
		Repo:   "site",
		Branch: "feature/login",
		Commit: gitrepo.CommitInfo{
			Hash:    testCommitHashConstant,
			Message: "fix: pipe | in subject",
			Author:  "Ada Lovelace",
			Date:    "2024-03-05T13:07:09.000Z",
		},
	}, sourceContext)

	for _, recordedCommand := range executor.recordedCommands {
		require.Equal(testInstance, "/workspace/site", recordedCommand.WorkingDirectory)
	}
}

func TestCommandInferrerFallbacks(testInstance *testing.T) {
	responses := successfulResponses()
	responses[showKey] = scriptedResponse{result: execshell.ExecutionResult{
		StandardOutput: strings.Join([]string{testCommitHashConstant, "initial", "", "2024-03-05 14:07:09 +0100"}, "\x00"),
	}}
	responses[branchKey] = scriptedResponse{result: execshell.ExecutionResult{StandardOutput: "HEAD\n"}}

	sourceContext, inferError := gitrepo.NewCommandInferrer(&scriptedGitExecutor{responses: responses}, "").Infer(context.Background())
	require.NoError(testInstance, inferError)
	require.Equal(testInstance, "Unknown Author", sourceContext.Commit.Author)
	require.Equal(testInstance, "2024-03-05T13:07:09.000Z", sourceContext.Commit.Date)
	require.Empty(testInstance, sourceContext.Branch)
}

func TestCommandInferrerFailures(testInstance *testing.T) {
	testCases := []struct {
		name            string
		mutate          func(responses map[string]scriptedResponse)
		expectedKind    failure.Kind
		expectedMessage string
	}{
		{
			name:            "not_a_repository",
			mutate:          func(responses map[string]scriptedResponse) { delete(responses, workTreeKey) },
			expectedKind:    failure.KindNoRepository,
			expectedMessage: "No git repository detected.",
		},
		{
			name: "inside_git_directory",
			mutate: func(responses map[string]scriptedResponse) {
				responses[workTreeKey] = scriptedResponse{result: execshell.ExecutionResult{StandardOutput: "false\n"}}
			},
			expectedKind:    failure.KindNoRepository,
			expectedMessage: "No git repository detected.",
		},
		{
			name:            "missing_origin",
			mutate:          func(responses map[string]scriptedResponse) { delete(responses, remoteKey) },
			expectedKind:    failure.KindNoRemote,
			expectedMessage: "Could not determine git remote URL. Please ensure you have an origin remote configured.",
		},
		{
			name: "non_github_origin",
			mutate: func(responses map[string]scriptedResponse) {
				responses[remoteKey] = scriptedResponse{result: execshell.ExecutionResult{StandardOutput: "https://bitbucket.org/acme/site.git"}}
			},
			expectedKind:    failure.KindUnparsableRemote,
			expectedMessage: "Could not parse GitHub URL: https://bitbucket.org/acme/site.git. Expected format: https://github.com/owner/repo or git@github.com:owner/repo",
		},
		{
			name:            "no_commit",
			mutate:          func(responses map[string]scriptedResponse) { delete(responses, showKey) },
			expectedKind:    failure.KindNoCommit,
			expectedMessage: "No commit found for HEAD",
		},
		{
			name: "empty_commit_output",
			mutate: func(responses map[string]scriptedResponse) {
				responses[showKey] = scriptedResponse{result: execshell.ExecutionResult{StandardOutput: "\n"}}
			},
			expectedKind:    failure.KindNoCommit,
			expectedMessage: "No commit found for HEAD",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			responses := successfulResponses()
			testCase.mutate(responses)

			_, inferError := gitrepo.NewCommandInferrer(&scriptedGitExecutor{responses: responses}, "").Infer(context.Background())
			require.Error(testInstance, inferError)
			require.True(testInstance, failure.IsKind(inferError, testCase.expectedKind))
			require.Equal(testInstance, testCase.expectedMessage, inferError.Error())
		})
	}
}
