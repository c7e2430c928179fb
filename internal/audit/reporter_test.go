package audit_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xcelera-dev/cli/internal/audit"
	"github.com/xcelera-dev/cli/internal/auditapi"
	"github.com/xcelera-dev/cli/internal/buildcontext"
	"github.com/xcelera-dev/cli/internal/failure"
	"github.com/xcelera-dev/cli/internal/gitrepo"
)

type unsupportedIntegration struct {
	auditapi.GitHubIntegrationFailed
}

func (unsupportedIntegration) Status() auditapi.IntegrationStatus {
	return "paused"
}

func TestInterpretGitHubIntegration(testInstance *testing.T) {
	testCases := []struct {
		name        string
		integration auditapi.GitHubIntegration
		verbosity   audit.Verbosity
		expected    audit.Lines
	}{
		{
			name:        "success_normal",
			integration: auditapi.GitHubIntegrationSucceeded{InstallationID: "12", CheckRunID: "34"},
			verbosity:   audit.VerbosityNormal,
			expected:    audit.Lines{Output: []string{"", "✅ GitHub integration detected!"}},
		},
		{
			name:        "success_verbose",
			integration: auditapi.GitHubIntegrationSucceeded{InstallationID: "12", CheckRunID: "34"},
			verbosity:   audit.VerbosityVerbose,
			expected: audit.Lines{Output: []string{
				"",
				"✅ GitHub integration detected!",
				" ↳ installation ID: 12",
				" ↳ check run ID: 34",
			}},
		},
		{
			name:        "skipped_normal",
			integration: auditapi.GitHubIntegrationSkipped{Reason: auditapi.SkipReasonNoGitContext},
			verbosity:   audit.VerbosityNormal,
			expected:    audit.Lines{},
		},
		{
			name:        "skipped_no_git_context_verbose",
			integration: auditapi.GitHubIntegrationSkipped{Reason: auditapi.SkipReasonNoGitContext},
			verbosity:   audit.VerbosityVerbose,
			expected:    audit.Lines{Output: []string{"", "↳ GitHub integration skipped: no git context detected; skipping GitHub integration."}},
		},
		{
			name:        "skipped_no_installation_verbose",
			integration: auditapi.GitHubIntegrationSkipped{Reason: auditapi.SkipReasonNoInstallation},
			verbosity:   audit.VerbosityVerbose,
			expected:    audit.Lines{Output: []string{"", "↳ GitHub integration skipped: GitHub app not installed; skipping GitHub integration."}},
		},
		{
			name:        "misconfigured_normal",
			integration: auditapi.GitHubIntegrationMisconfigured{Reason: auditapi.MisconfigurationReasonNoRepoAccess, InstallationID: "77"},
			verbosity:   audit.VerbosityNormal,
			expected: audit.Lines{
				Output: []string{""},
				Errors: []string{
					"⚠️ GitHub integration is misconfigured.",
					"The xcelera.dev GitHub app is installed, but it does not have access to this repository.",
					"Please update the GitHub app installation and grant access to this repository.",
				},
			},
		},
		{
			name:        "misconfigured_verbose",
			integration: auditapi.GitHubIntegrationMisconfigured{Reason: auditapi.MisconfigurationReasonNoRepoAccess, InstallationID: "77"},
			verbosity:   audit.VerbosityVerbose,
			expected: audit.Lines{
				Output: []string{""},
				Errors: []string{
					"⚠️ GitHub integration is misconfigured.",
					"The xcelera.dev GitHub app is installed, but it does not have access to this repository.",
					"Please update the GitHub app installation and grant access to this repository.",
					" ↳ installation ID: 77",
				},
			},
		},
		{
			name:        "error",
			integration: auditapi.GitHubIntegrationFailed{},
			verbosity:   audit.VerbosityNormal,
			expected: audit.Lines{
				Output: []string{""},
				Errors: []string{
					"⚠️ Something went wrong with the GitHub integration.",
					"Your audit was scheduled successfully, but we could not create or update the GitHub check run.",
				},
			},
		},
		{
			name:        "unrecognized",
			integration: auditapi.GitHubIntegrationUnrecognized{ReportedStatus: "queued", Problem: `Unknown GitHub integration status: "queued"`},
			verbosity:   audit.VerbosityNormal,
			expected: audit.Lines{
				Output: []string{""},
				Errors: []string{
					"⚠️ The GitHub integration reported an outcome this version of xcelera does not recognize.",
					` ↳ Unknown GitHub integration status: "queued"`,
				},
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			lines, interpretError := audit.InterpretGitHubIntegration(testCase.integration, testCase.verbosity)
			require.NoError(testInstance, interpretError)
			require.Equal(testInstance, testCase.expected, lines)
		})
	}
}

func TestInterpretGitHubIntegrationRejectsUnknownVariant(testInstance *testing.T) {
	_, interpretError := audit.InterpretGitHubIntegration(unsupportedIntegration{}, audit.VerbosityNormal)
	require.Error(testInstance, interpretError)
	require.True(testInstance, failure.IsKind(interpretError, failure.KindUnexpectedServer))
	require.Contains(testInstance, interpretError.Error(), "unsupportedIntegration")
}

func TestFormatBuildContext(testInstance *testing.T) {
	sourceContext := &gitrepo.SourceContext{
		Owner:  "acme",
		Repo:   "site",
		Branch: "main",
		Commit: gitrepo.CommitInfo{Hash: "0123456789abcdef0123456789abcdef01234567"},
	}

	testCases := []struct {
		name     string
		result   buildcontext.Result
		expected []string
	}{
		{
			name:   "with_git",
			result: buildcontext.Result{Context: buildcontext.BuildContext{Service: "github", Git: sourceContext}},
			expected: []string{
				"🔍 Inferred build context:",
				"   • service: github",
				"   • repository: acme/site",
				"   • branch: main",
				"   • commit: 0123456789abcdef0123456789abcdef01234567",
				"",
			},
		},
		{
			name: "without_git",
			result: buildcontext.Result{
				Context:     buildcontext.BuildContext{Service: "unknown"},
				SourceError: failure.New(failure.KindNoRepository, "No git repository detected."),
			},
			expected: []string{
				"🔍 Inferred build context:",
				"   • service: unknown",
				"   • git: unavailable (No git repository detected.)",
				"",
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expected, audit.FormatBuildContext(testCase.result))
		})
	}
}

func TestFormatServiceFailure(testInstance *testing.T) {
	lines := audit.FormatServiceFailure(&auditapi.AuditError{Message: "Invalid token", Details: json.RawMessage(`"Token expired"`)})
	require.Equal(testInstance, []string{"❌ Unable to schedule audit :(", " ↳ Invalid token", " ↳ Token expired"}, lines)

	lines = audit.FormatServiceFailure(&auditapi.AuditError{Message: "Quota exceeded"})
	require.Equal(testInstance, []string{"❌ Unable to schedule audit :(", " ↳ Quota exceeded"}, lines)
}

func TestFormatFailureIncludesStackWhenVerbose(testInstance *testing.T) {
	failureError := failure.New(failure.KindUnexpectedServer, "Operation failed: 502 Bad Gateway - upstream")

	require.Equal(testInstance, []string{"❌ Operation failed: 502 Bad Gateway - upstream"}, audit.FormatFailure(failureError, audit.VerbosityNormal))

	verboseLines := audit.FormatFailure(failureError, audit.VerbosityVerbose)
	require.Len(testInstance, verboseLines, 3)
	require.Equal(testInstance, "", verboseLines[1])
	require.Contains(testInstance, verboseLines[2], "TestFormatFailureIncludesStackWhenVerbose")
}
