// Package audit schedules page audits and reports their outcome.
//
// Runner wires the pipeline from configuration: the build context comes from
// buildcontext, credentials from credentials, and the request goes through auditapi.
// Service.Run is the single boundary that turns every failure into a CommandResult,
// and InterpretGitHubIntegration renders the advisory lines for each integration outcome.
// CommandBuilder exposes the pipeline as the audit Cobra command.
package audit
