package failure_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xcelera-dev/cli/internal/failure"
)

const (
	testNoRepositoryMessageConstant = "No git repository detected."
	testCauseMessageConstant        = "exit status 128"
)

func TestFailureKindsSurviveWrapping(testInstance *testing.T) {
	testCases := []struct {
		name         string
		build        func() error
		expectedKind failure.Kind
		expectedText string
	}{
		{
			name:         "plain_failure",
			build:        func() error { return failure.New(failure.KindNoRepository, testNoRepositoryMessageConstant) },
			expectedKind: failure.KindNoRepository,
			expectedText: testNoRepositoryMessageConstant,
		},
		{
			name: "wrapped_with_cause",
			build: func() error {
				return failure.Wrap(failure.KindNoRemote, errors.New(testCauseMessageConstant), "no remote")
			},
			expectedKind: failure.KindNoRemote,
			expectedText: "no remote",
		},
		{
			name: "outer_fmt_wrapping",
			build: func() error {
				return fmt.Errorf("context: %w", failure.Newf(failure.KindInvalidCookieFormat, "bad %s", "cookie"))
			},
			expectedKind: failure.KindInvalidCookieFormat,
			expectedText: "context: bad cookie",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			builtError := testCase.build()
			resolvedKind, found := failure.KindOf(builtError)
			require.True(testInstance, found)
			require.Equal(testInstance, testCase.expectedKind, resolvedKind)
			require.True(testInstance, failure.IsKind(builtError, testCase.expectedKind))
			require.Equal(testInstance, testCase.expectedText, builtError.Error())
		})
	}
}

func TestWrapPreservesCause(testInstance *testing.T) {
	causeError := errors.New(testCauseMessageConstant)
	wrappedError := failure.Wrap(failure.KindNoCommit, causeError, "No commit found for HEAD")
	require.ErrorIs(testInstance, wrappedError, causeError)
}

func TestKindOfIgnoresForeignErrors(testInstance *testing.T) {
	_, found := failure.KindOf(errors.New("plain"))
	require.False(testInstance, found)
	require.False(testInstance, failure.IsKind(nil, failure.KindInternal))
}

func TestDetailedIncludesStackTrace(testInstance *testing.T) {
	builtError := failure.New(failure.KindUnexpectedServer, "Operation failed: 500 Internal Server Error - boom")
	detailed := failure.Detailed(builtError)
	require.Contains(testInstance, detailed, "Operation failed: 500 Internal Server Error - boom")
	require.Contains(testInstance, detailed, "failure_test.TestDetailedIncludesStackTrace")
	require.Empty(testInstance, failure.Detailed(nil))
}

func TestExitCodeOf(testInstance *testing.T) {
	testCases := []struct {
		name         string
		err          error
		expectedCode int
	}{
		{name: "nil_error", err: nil, expectedCode: 0},
		{name: "plain_error", err: errors.New("boom"), expectedCode: 1},
		{name: "exit_error", err: failure.ExitError{Code: 3}, expectedCode: 3},
		{name: "wrapped_exit_error", err: fmt.Errorf("run: %w", failure.ExitError{Code: 1}), expectedCode: 1},
		{name: "zero_exit_error_normalized", err: failure.ExitError{Code: 0}, expectedCode: 1},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedCode, failure.ExitCodeOf(testCase.err))
		})
	}
}
