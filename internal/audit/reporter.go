package audit

import (
	"fmt"

	"github.com/xcelera-dev/cli/internal/auditapi"
	"github.com/xcelera-dev/cli/internal/buildcontext"
	"github.com/xcelera-dev/cli/internal/failure"
)

const (
	buildContextHeaderConstant         = "🔍 Inferred build context:"
	serviceLineTemplateConstant        = "   • service: %s"
	repositoryLineTemplateConstant     = "   • repository: %s/%s"
	branchLineTemplateConstant         = "   • branch: %s"
	commitLineTemplateConstant         = "   • commit: %s"
	gitUnavailableTemplateConstant     = "   • git: unavailable (%s)"
	credentialsDetectedConstant        = "🔐 Authentication credentials detected"
	scheduleFailedBannerConstant       = "❌ Unable to schedule audit :("
	detailLineTemplateConstant         = " ↳ %s"
	scheduledBannerConstant            = "✅ Audit scheduled successfully!"
	auditIDLineTemplateConstant        = "Audit ID: %s"
	auditStatusLineTemplateConstant    = "Status: %s"
	noIntegrationsConstant             = "No integrations detected"
	failureLineTemplateConstant        = "❌ %s"
	gitHubDetectedConstant             = "✅ GitHub integration detected!"
	installationIDLineTemplateConstant = " ↳ installation ID: %s"
	checkRunIDLineTemplateConstant     = " ↳ check run ID: %s"
	gitHubSkippedTemplateConstant      = "↳ GitHub integration skipped: %s"
	skippedNoGitContextConstant        = "no git context detected; skipping GitHub integration."
	skippedNotInstalledConstant        = "GitHub app not installed; skipping GitHub integration."
	misconfiguredBannerConstant        = "⚠️ GitHub integration is misconfigured."
	noRepoAccessExplanationConstant    = "The xcelera.dev GitHub app is installed, but it does not have access to this repository."
	noRepoAccessRemediationConstant    = "Please update the GitHub app installation and grant access to this repository."
	integrationFailedBannerConstant    = "⚠️ Something went wrong with the GitHub integration."
	integrationFailedDetailConstant    = "Your audit was scheduled successfully, but we could not create or update the GitHub check run."
	unrecognizedIntegrationConstant    = "⚠️ The GitHub integration reported an outcome this version of xcelera does not recognize."
	unsupportedIntegrationTemplate     = "Unsupported GitHub integration outcome: %T"
)

// FormatBuildContext renders the build context summary. A missing source context is reported with its reason.
func FormatBuildContext(result buildcontext.Result) []string {
	lines := []string{buildContextHeaderConstant}
	if len(result.Context.Service) > 0 {
		lines = append(lines, fmt.Sprintf(serviceLineTemplateConstant, result.Context.Service))
	}
	switch {
	case result.Context.Git != nil:
		sourceContext := result.Context.Git
		lines = append(lines, fmt.Sprintf(repositoryLineTemplateConstant, sourceContext.Owner, sourceContext.Repo))
		if len(sourceContext.Branch) > 0 {
			lines = append(lines, fmt.Sprintf(branchLineTemplateConstant, sourceContext.Branch))
		}
		lines = append(lines, fmt.Sprintf(commitLineTemplateConstant, sourceContext.Commit.Hash))
	case result.SourceError != nil:
		lines = append(lines, fmt.Sprintf(gitUnavailableTemplateConstant, result.SourceError.Error()))
	}
	return append(lines, "")
}

// FormatServiceFailure renders a failure envelope returned by the service.
func FormatServiceFailure(auditError *auditapi.AuditError) []string {
	lines := []string{scheduleFailedBannerConstant}
	if auditError == nil {
		return lines
	}
	lines = append(lines, fmt.Sprintf(detailLineTemplateConstant, auditError.Message))
	if details := auditError.DetailsText(); len(details) > 0 {
		lines = append(lines, fmt.Sprintf(detailLineTemplateConstant, details))
	}
	return lines
}

// FormatScheduledAudit renders the success banner and, when verbose, the audit metadata.
func FormatScheduledAudit(data auditapi.AuditData, verbosity Verbosity) []string {
	lines := []string{scheduledBannerConstant}
	if !verbosity.IsVerbose() {
		return lines
	}
	lines = append(lines,
		"",
		fmt.Sprintf(auditIDLineTemplateConstant, data.AuditID),
		fmt.Sprintf(auditStatusLineTemplateConstant, data.Status),
	)
	if data.Integrations.IsEmpty() {
		lines = append(lines, noIntegrationsConstant)
	}
	return lines
}

// FormatFailure renders an error that escaped the pipeline, with its stack trace when verbose.
func FormatFailure(err error, verbosity Verbosity) []string {
	lines := []string{fmt.Sprintf(failureLineTemplateConstant, err.Error())}
	if verbosity.IsVerbose() {
		lines = append(lines, "", failure.Detailed(err))
	}
	return lines
}

// InterpretGitHubIntegration turns a GitHub integration outcome into advisory lines.
// Integration outcomes never fail the run; an unrecognized variant is an error.
func InterpretGitHubIntegration(integration auditapi.GitHubIntegration, verbosity Verbosity) (Lines, error) {
	var lines Lines
	switch outcome := integration.(type) {
	case auditapi.GitHubIntegrationSucceeded:
		lines.appendOutput(gitHubDetectedConstant)
		if verbosity.IsVerbose() {
			lines.appendOutput(
				fmt.Sprintf(installationIDLineTemplateConstant, outcome.InstallationID),
				fmt.Sprintf(checkRunIDLineTemplateConstant, outcome.CheckRunID),
			)
		}
	case auditapi.GitHubIntegrationSkipped:
		if verbosity.IsVerbose() {
			reason := skippedNotInstalledConstant
			if outcome.Reason == auditapi.SkipReasonNoGitContext {
				reason = skippedNoGitContextConstant
			}
			lines.appendOutput(fmt.Sprintf(gitHubSkippedTemplateConstant, reason))
		}
	case auditapi.GitHubIntegrationMisconfigured:
		lines.appendErrors(misconfiguredBannerConstant)
		if outcome.Reason == auditapi.MisconfigurationReasonNoRepoAccess {
			lines.appendErrors(noRepoAccessExplanationConstant, noRepoAccessRemediationConstant)
		}
		if verbosity.IsVerbose() {
			lines.appendErrors(fmt.Sprintf(installationIDLineTemplateConstant, outcome.InstallationID))
		}
	case auditapi.GitHubIntegrationFailed:
		lines.appendErrors(integrationFailedBannerConstant, integrationFailedDetailConstant)
	case auditapi.GitHubIntegrationUnrecognized:
		lines.appendErrors(unrecognizedIntegrationConstant, fmt.Sprintf(detailLineTemplateConstant, outcome.Problem))
	default:
		return Lines{}, failure.Newf(failure.KindUnexpectedServer, unsupportedIntegrationTemplate, integration)
	}

	if lines.IsEmpty() {
		return lines, nil
	}
	return Lines{Output: append([]string{""}, lines.Output...), Errors: lines.Errors}, nil
}
