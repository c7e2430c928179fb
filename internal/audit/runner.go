package audit

import (
	"context"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/xcelera-dev/cli/internal/apitoken"
	"github.com/xcelera-dev/cli/internal/auditapi"
	"github.com/xcelera-dev/cli/internal/buildcontext"
	"github.com/xcelera-dev/cli/internal/credentials"
	"github.com/xcelera-dev/cli/internal/failure"
	"github.com/xcelera-dev/cli/internal/gitrepo"
	pathutils "github.com/xcelera-dev/cli/internal/utils/path"
)

const (
	debugEnvironmentVariableConstant = "DEBUG"
	refRequiredMessageConstant       = "URL is required. Use --url <url> to specify the URL to audit."
)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies the audit command configuration.
type ConfigurationProvider func() CommandConfiguration

// APIConfigurationProvider supplies the audit service endpoint configuration.
type APIConfigurationProvider func() APIConfiguration

// Invocation carries the inputs collected by a front end.
type Invocation struct {
	Ref           string
	Token         string
	TokenSource   string
	SourceBackend string
	Verbose       bool
	Credentials   credentials.Options
}

// Runner wires the audit pipeline from configuration and runs it for one invocation.
// Zero-valued collaborators fall back to the process environment, the working directory,
// the system clock, and a default HTTP client.
type Runner struct {
	LoggerProvider           LoggerProvider
	ConfigurationProvider    ConfigurationProvider
	APIConfigurationProvider APIConfigurationProvider
	EnvironmentLookup        buildcontext.EnvironmentLookup
	WorkingDirectory         string
	HTTPClient               auditapi.HTTPClient
	Inferrer                 gitrepo.Inferrer
	Clock                    credentials.Clock
	HomeExpander             *pathutils.HomeExpander
}

// Run validates the invocation, builds the pipeline, and executes it. It never returns an error.
func (runner *Runner) Run(executionContext context.Context, invocation Invocation) CommandResult {
	configuration := runner.resolveConfiguration()
	verbosity := runner.resolveVerbosity(invocation, configuration)

	service, request, prepareError := runner.prepare(executionContext, invocation, configuration, verbosity)
	if prepareError != nil {
		return newCommandResult(ExitCodeFailure, Lines{Errors: FormatFailure(prepareError, verbosity)}, "")
	}
	return service.Run(executionContext, request)
}

func (runner *Runner) prepare(executionContext context.Context, invocation Invocation, configuration CommandConfiguration, verbosity Verbosity) (*Service, Request, error) {
	ref := strings.TrimSpace(invocation.Ref)
	if len(ref) == 0 {
		return nil, Request{}, failure.New(failure.KindInvalidInput, refRequiredMessageConstant)
	}

	environmentLookup := runner.resolveEnvironmentLookup()
	homeExpander := runner.resolveHomeExpander()

	tokenSource := configuration.TokenSource
	if trimmedSource := strings.TrimSpace(invocation.TokenSource); len(trimmedSource) > 0 {
		tokenSource = trimmedSource
	}
	token, tokenError := apitoken.NewResolver(apitoken.EnvironmentLookup(environmentLookup), nil, homeExpander).Resolve(executionContext, invocation.Token, tokenSource)
	if tokenError != nil {
		return nil, Request{}, tokenError
	}

	baseURL, baseURLError := runner.resolveAPIConfiguration().ResolveBaseURL()
	if baseURLError != nil {
		return nil, Request{}, failure.Wrap(failure.KindInvalidInput, baseURLError, baseURLError.Error())
	}

	logger := runner.resolveLogger()
	inferrer, inferrerError := runner.resolveInferrer(invocation, configuration, logger)
	if inferrerError != nil {
		return nil, Request{}, failure.Wrap(failure.KindInvalidInput, inferrerError, inferrerError.Error())
	}

	service := NewService(
		buildcontext.NewBuilder(environmentLookup, inferrer, logger),
		credentials.NewAssembler(runner.Clock, homeExpander),
		auditapi.NewClient(baseURL, auditapi.WithLogger(logger), auditapi.WithHTTPClient(runner.HTTPClient)),
		logger,
	)
	request := Request{
		Ref:         ref,
		Token:       token,
		Credentials: invocation.Credentials,
		Verbosity:   verbosity,
	}
	return service, request, nil
}

func (runner *Runner) resolveVerbosity(invocation Invocation, configuration CommandConfiguration) Verbosity {
	if invocation.Verbose || configuration.Verbose {
		return VerbosityVerbose
	}
	debugValue, _ := runner.resolveEnvironmentLookup()(debugEnvironmentVariableConstant)
	return VerbosityFromFlag(len(debugValue) > 0)
}

func (runner *Runner) resolveInferrer(invocation Invocation, configuration CommandConfiguration, logger *zap.Logger) (gitrepo.Inferrer, error) {
	if runner.Inferrer != nil {
		return runner.Inferrer, nil
	}
	backendName := configuration.SourceBackend
	if trimmedBackend := strings.TrimSpace(invocation.SourceBackend); len(trimmedBackend) > 0 {
		backendName = trimmedBackend
	}
	backend, backendError := gitrepo.ParseBackend(backendName)
	if backendError != nil {
		return nil, backendError
	}
	return gitrepo.NewInferrer(backend, logger, runner.WorkingDirectory)
}

func (runner *Runner) resolveConfiguration() CommandConfiguration {
	if runner.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return runner.ConfigurationProvider().sanitize()
}

func (runner *Runner) resolveAPIConfiguration() APIConfiguration {
	if runner.APIConfigurationProvider == nil {
		return DefaultAPIConfiguration()
	}
	return runner.APIConfigurationProvider()
}

func (runner *Runner) resolveLogger() *zap.Logger {
	if runner.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := runner.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (runner *Runner) resolveEnvironmentLookup() buildcontext.EnvironmentLookup {
	if runner.EnvironmentLookup == nil {
		return os.LookupEnv
	}
	return runner.EnvironmentLookup
}

func (runner *Runner) resolveHomeExpander() *pathutils.HomeExpander {
	if runner.HomeExpander == nil {
		return pathutils.NewHomeExpander()
	}
	return runner.HomeExpander
}
