package audit

import (
	"context"

	"github.com/xcelera-dev/cli/internal/auditapi"
	"github.com/xcelera-dev/cli/internal/buildcontext"
	"github.com/xcelera-dev/cli/internal/credentials"
)

// BuildContextBuilder produces the build context attached to the audit request.
type BuildContextBuilder interface {
	Build(executionContext context.Context) buildcontext.Result
}

// CredentialAssembler merges the credential sources of one run.
type CredentialAssembler interface {
	Assemble(options credentials.Options) (credentials.Assembly, error)
}

// AuditRequester submits the audit request to the service.
type AuditRequester interface {
	RequestAudit(executionContext context.Context, ref string, token string, buildContext buildcontext.BuildContext, auth *credentials.AuthCredentials) (auditapi.AuditResponse, error)
}
