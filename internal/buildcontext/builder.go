package buildcontext

import (
	"context"
	"os"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/xcelera-dev/cli/internal/gitrepo"
)

const (
	detectedServiceLogMessage   = "detected CI service"
	sourceUnavailableLogMessage = "source context unavailable"
	serviceLogFieldConstant     = "service"
)

// BuildContext is the build and source-control metadata attached to an audit request.
type BuildContext struct {
	Service     string                 `json:"service"`
	PRNumber    string                 `json:"prNumber,omitempty"`
	BuildNumber string                 `json:"buildNumber,omitempty"`
	BuildURL    string                 `json:"buildUrl,omitempty"`
	Git         *gitrepo.SourceContext `json:"git,omitempty"`
}

// Result carries the build context and, when source inference failed, the reason git is absent.
type Result struct {
	Context     BuildContext
	SourceError error
}

// Builder layers CI metadata over the inferred source context.
type Builder struct {
	environment Environment
	inferrer    gitrepo.Inferrer
	providers   []Provider
	logger      *zap.Logger
}

// NewBuilder constructs a Builder. A nil lookup reads the process environment and a nil logger discards logs.
func NewBuilder(lookup EnvironmentLookup, inferrer gitrepo.Inferrer, logger *zap.Logger) *Builder {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		environment: NewEnvironment(lookup),
		inferrer:    inferrer,
		providers:   DefaultProviders(),
		logger:      logger,
	}
}

// DetectCI returns the metadata of the first matching provider, or false outside CI.
func (builder *Builder) DetectCI() (CIEnvironment, bool) {
	provider, found := lo.Find(builder.providers, func(candidate Provider) bool {
		return candidate.Detect(builder.environment)
	})
	if !found {
		return CIEnvironment{Service: ServiceUnknown}, false
	}
	ciEnvironment := provider.Read(builder.environment)
	ciEnvironment.Service = provider.Service
	return ciEnvironment, true
}

// Build never fails: a source inference error omits Git and is reported through Result.SourceError.
func (builder *Builder) Build(executionContext context.Context) Result {
	ciEnvironment, detected := builder.DetectCI()
	if detected {
		builder.logger.Debug(detectedServiceLogMessage, zap.String(serviceLogFieldConstant, ciEnvironment.Service))
	}

	result := Result{Context: BuildContext{
		Service:     ciEnvironment.Service,
		PRNumber:    ciEnvironment.PRNumber,
		BuildNumber: ciEnvironment.BuildNumber,
		BuildURL:    ciEnvironment.BuildURL,
	}}

	if builder.inferrer == nil {
		return result
	}

	sourceContext, inferError := builder.inferrer.Infer(executionContext)
	if inferError != nil {
		builder.logger.Debug(sourceUnavailableLogMessage, zap.Error(inferError))
		result.SourceError = inferError
		return result
	}

	if resolvedBranch := ciEnvironment.ResolvedBranch(); len(resolvedBranch) > 0 {
		sourceContext.Branch = resolvedBranch
	}
	result.Context.Git = &sourceContext
	return result
}
