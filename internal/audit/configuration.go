package audit

import (
	"strings"

	"github.com/xcelera-dev/cli/internal/apitoken"
	"github.com/xcelera-dev/cli/internal/auditapi"
	"github.com/xcelera-dev/cli/internal/gitrepo"
)

const (
	verboseConfigurationKeyConstant       = "verbose"
	sourceBackendConfigurationKeyConstant = "source_backend"
	tokenSourceConfigurationKeyConstant   = "token_source"
	configurationKeySeparatorConstant     = "."
)

// CommandConfiguration captures persistent settings for the audit command.
type CommandConfiguration struct {
	Verbose       bool   `mapstructure:"verbose"`
	SourceBackend string `mapstructure:"source_backend"`
	TokenSource   string `mapstructure:"token_source"`
}

// APIConfiguration selects the audit service endpoint.
type APIConfiguration struct {
	Environment string `mapstructure:"environment"`
	BaseURL     string `mapstructure:"base_url"`
}

// DefaultCommandConfiguration returns baseline configuration values for the audit command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Verbose:       false,
		SourceBackend: string(gitrepo.BackendGitCommand),
		TokenSource:   apitoken.DefaultSourceSpecification,
	}
}

// DefaultAPIConfiguration targets the production service.
func DefaultAPIConfiguration() APIConfiguration {
	return APIConfiguration{Environment: string(auditapi.EnvironmentProduction)}
}

// DefaultConfigurationValues exposes the command defaults as viper keys under prefix.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		prefix + configurationKeySeparatorConstant + verboseConfigurationKeyConstant:       defaults.Verbose,
		prefix + configurationKeySeparatorConstant + sourceBackendConfigurationKeyConstant: defaults.SourceBackend,
		prefix + configurationKeySeparatorConstant + tokenSourceConfigurationKeyConstant:   defaults.TokenSource,
	}
}

// sanitize trims whitespace and applies defaults to unset configuration values.
func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	defaults := DefaultCommandConfiguration()
	sanitized := configuration
	sanitized.SourceBackend = strings.TrimSpace(configuration.SourceBackend)
	if len(sanitized.SourceBackend) == 0 {
		sanitized.SourceBackend = defaults.SourceBackend
	}
	sanitized.TokenSource = strings.TrimSpace(configuration.TokenSource)
	if len(sanitized.TokenSource) == 0 {
		sanitized.TokenSource = defaults.TokenSource
	}
	return sanitized
}

// ResolveBaseURL resolves the endpoint, validating the environment name.
func (configuration APIConfiguration) ResolveBaseURL() (string, error) {
	environment, environmentError := auditapi.ParseEnvironment(configuration.Environment)
	if environmentError != nil {
		return "", environmentError
	}
	return auditapi.ResolveBaseURL(configuration.BaseURL, environment), nil
}
