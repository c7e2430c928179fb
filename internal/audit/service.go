package audit

import (
	"context"

	"go.uber.org/zap"

	"github.com/xcelera-dev/cli/internal/failure"
)

const (
	recoveredPanicTemplateConstant = "unexpected failure: %v"
	auditScheduledLogMessage       = "audit scheduled"
	auditRejectedLogMessage        = "audit rejected by service"
	auditFailedLogMessage          = "audit run failed"
	auditIDLogFieldConstant        = "audit_id"
	auditStatusLogFieldConstant    = "status"
	messageLogFieldConstant        = "message"
)

// Service runs the audit pipeline: build context, credentials, request, and interpretation.
type Service struct {
	builder   BuildContextBuilder
	assembler CredentialAssembler
	requester AuditRequester
	logger    *zap.Logger
}

// NewService constructs a Service. A nil logger discards diagnostics.
func NewService(builder BuildContextBuilder, assembler CredentialAssembler, requester AuditRequester, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		builder:   builder,
		assembler: assembler,
		requester: requester,
		logger:    logger,
	}
}

// Run executes one audit and never returns an error: every failure, panics included, becomes
// a CommandResult with exit code 1 and the lines emitted so far.
func (service *Service) Run(executionContext context.Context, request Request) (result CommandResult) {
	var lines Lines
	defer func() {
		if recovered := recover(); recovered != nil {
			recoveredError := failure.Newf(failure.KindInternal, recoveredPanicTemplateConstant, recovered)
			result = service.failed(lines, recoveredError, request.Verbosity)
		}
	}()

	result, runError := service.run(executionContext, request, &lines)
	if runError != nil {
		return service.failed(lines, runError, request.Verbosity)
	}
	return result
}

func (service *Service) run(executionContext context.Context, request Request, lines *Lines) (CommandResult, error) {
	buildResult := service.builder.Build(executionContext)
	lines.appendOutput(FormatBuildContext(buildResult)...)

	assembly, assembleError := service.assembler.Assemble(request.Credentials)
	if assembleError != nil {
		return CommandResult{}, assembleError
	}
	lines.appendErrors(assembly.Warnings...)
	if assembly.Auth != nil {
		lines.appendOutput(credentialsDetectedConstant, "")
	}

	response, requestError := service.requester.RequestAudit(executionContext, request.Ref, request.Token, buildResult.Context, assembly.Auth)
	if requestError != nil {
		return CommandResult{}, requestError
	}

	if !response.Success || response.Data == nil {
		if response.Error != nil {
			service.logger.Debug(auditRejectedLogMessage, zap.String(messageLogFieldConstant, response.Error.Message))
		}
		lines.appendErrors(FormatServiceFailure(response.Error)...)
		return newCommandResult(ExitCodeFailure, *lines, ""), nil
	}

	data := *response.Data
	service.logger.Debug(auditScheduledLogMessage, zap.String(auditIDLogFieldConstant, data.AuditID), zap.String(auditStatusLogFieldConstant, data.Status))
	lines.appendOutput(FormatScheduledAudit(data, request.Verbosity)...)

	if data.Integrations.GitHub != nil {
		integrationLines, interpretError := InterpretGitHubIntegration(data.Integrations.GitHub, request.Verbosity)
		if interpretError != nil {
			return CommandResult{}, interpretError
		}
		lines.merge(integrationLines)
	}

	return newCommandResult(ExitCodeSuccess, *lines, data.AuditID), nil
}

func (service *Service) failed(lines Lines, runError error, verbosity Verbosity) CommandResult {
	service.logger.Debug(auditFailedLogMessage, zap.Error(runError))
	lines.appendErrors(FormatFailure(runError, verbosity)...)
	return newCommandResult(ExitCodeFailure, lines, "")
}
