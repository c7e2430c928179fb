package execshell_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xcelera-dev/cli/internal/execshell"
)

const (
	testExecutionSuccessCaseNameConstant         = "success"
	testExecutionFailureCaseNameConstant         = "failure_exit_code"
	testExecutionRunnerErrorCaseNameConstant     = "runner_error"
	testLoggerInitializationCaseNameConstant     = "logger_validation"
	testRunnerInitializationCaseNameConstant     = "runner_validation"
	testSuccessfulInitializationCaseNameConstant = "successful_initialization"
	testWorkingDirectoryConstant                 = "/workspace/site"
	testStandardErrorOutputConstant              = "fatal: not a git repository"
)

type recordingCommandRunner struct {
	executionResult  execshell.ExecutionResult
	executionError   error
	recordedCommands []execshell.ShellCommand
}

func (runner *recordingCommandRunner) Run(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	runner.recordedCommands = append(runner.recordedCommands, command)
	return runner.executionResult, runner.executionError
}

func TestShellExecutorInitializationValidation(testInstance *testing.T) {
	testCases := []struct {
		name          string
		logger        *zap.Logger
		runner        execshell.CommandRunner
		expectError   error
		expectSuccess bool
	}{
		{
			name:        testLoggerInitializationCaseNameConstant,
			runner:      &recordingCommandRunner{},
			expectError: execshell.ErrLoggerNotConfigured,
		},
		{
			name:        testRunnerInitializationCaseNameConstant,
			logger:      zap.NewNop(),
			expectError: execshell.ErrCommandRunnerNotConfigured,
		},
		{
			name:          testSuccessfulInitializationCaseNameConstant,
			logger:        zap.NewNop(),
			runner:        &recordingCommandRunner{},
			expectSuccess: true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor, creationError := execshell.NewShellExecutor(testCase.logger, testCase.runner)
			if testCase.expectSuccess {
				require.NoError(testInstance, creationError)
				require.NotNil(testInstance, executor)
				return
			}
			require.ErrorIs(testInstance, creationError, testCase.expectError)
		})
	}
}

func TestShellExecutorExecuteGitBehavior(testInstance *testing.T) {
	testCases := []struct {
		name               string
		runnerResult       execshell.ExecutionResult
		runnerError        error
		expectErrorType    any
		expectedMessages   []string
		expectedErrorShape string
	}{
		{
			name:         testExecutionSuccessCaseNameConstant,
			runnerResult: execshell.ExecutionResult{StandardOutput: "true\n"},
			expectedMessages: []string{
				"Checking for a git working tree in /workspace/site",
				"Found a git working tree in /workspace/site",
			},
		},
		{
			name:            testExecutionFailureCaseNameConstant,
			runnerResult:    execshell.ExecutionResult{StandardError: testStandardErrorOutputConstant, ExitCode: 128},
			expectErrorType: execshell.CommandFailedError{},
			expectedMessages: []string{
				"Checking for a git working tree in /workspace/site",
				"No git working tree in /workspace/site (exit code 128: fatal: not a git repository)",
			},
			expectedErrorShape: "git rev-parse --is-inside-work-tree exited with code 128: fatal: not a git repository",
		},
		{
			name:            testExecutionRunnerErrorCaseNameConstant,
			runnerError:     errors.New("executable file not found in $PATH"),
			expectErrorType: execshell.CommandExecutionError{},
			expectedMessages: []string{
				"Checking for a git working tree in /workspace/site",
				"Could not inspect /workspace/site for a git working tree: executable file not found in $PATH",
			},
			expectedErrorShape: "git rev-parse --is-inside-work-tree could not be executed: executable file not found in $PATH",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			observerCore, observerLogs := observer.New(zap.DebugLevel)
			recordingRunner := &recordingCommandRunner{
				executionResult: testCase.runnerResult,
				executionError:  testCase.runnerError,
			}

			shellExecutor, creationError := execshell.NewShellExecutor(zap.New(observerCore), recordingRunner)
			require.NoError(testInstance, creationError)

			executionResult, executionError := shellExecutor.ExecuteGit(context.Background(), execshell.CommandDetails{
				Arguments:        []string{"rev-parse", "--is-inside-work-tree"},
				WorkingDirectory: testWorkingDirectoryConstant,
			})

			if testCase.expectErrorType != nil {
				require.Error(testInstance, executionError)
				require.IsType(testInstance, testCase.expectErrorType, executionError)
				require.Equal(testInstance, testCase.expectedErrorShape, executionError.Error())
				require.Empty(testInstance, executionResult.StandardOutput)
			} else {
				require.NoError(testInstance, executionError)
				require.Equal(testInstance, testCase.runnerResult.StandardOutput, executionResult.StandardOutput)
			}

			require.Len(testInstance, recordingRunner.recordedCommands, 1)
			require.Equal(testInstance, execshell.CommandGit, recordingRunner.recordedCommands[0].Name)

			recordedMessages := make([]string, 0, observerLogs.Len())
			for _, entry := range observerLogs.All() {
				recordedMessages = append(recordedMessages, entry.Message)
			}
			require.Equal(testInstance, testCase.expectedMessages, recordedMessages)
		})
	}
}

func TestCommandExecutionErrorUnwrapsCause(testInstance *testing.T) {
	causeError := context.Canceled
	shellExecutor, creationError := execshell.NewShellExecutor(zap.NewNop(), &recordingCommandRunner{executionError: causeError})
	require.NoError(testInstance, creationError)

	_, executionError := shellExecutor.ExecuteGit(context.Background(), execshell.CommandDetails{Arguments: []string{"show", "HEAD"}})
	require.ErrorIs(testInstance, executionError, context.Canceled)
}
