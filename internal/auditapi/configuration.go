package auditapi

import (
	"fmt"
	"strings"
)

const (
	productionBaseURLConstant              = "https://xcelera.dev"
	developmentBaseURLConstant             = "http://localhost:3000"
	unsupportedEnvironmentTemplateConstant = "unsupported API environment: %s"
)

// Environment selects the audit service deployment.
type Environment string

// Supported deployments.
const (
	EnvironmentProduction  Environment = "production"
	EnvironmentDevelopment Environment = "development"
)

// UnsupportedEnvironmentError reports an unknown deployment name.
type UnsupportedEnvironmentError struct {
	Environment string
}

// Error describes the unsupported environment.
func (unsupportedError UnsupportedEnvironmentError) Error() string {
	return fmt.Sprintf(unsupportedEnvironmentTemplateConstant, unsupportedError.Environment)
}

// ParseEnvironment resolves a deployment name. An empty name selects production.
func ParseEnvironment(name string) (Environment, error) {
	switch Environment(strings.ToLower(strings.TrimSpace(name))) {
	case "", EnvironmentProduction:
		return EnvironmentProduction, nil
	case EnvironmentDevelopment:
		return EnvironmentDevelopment, nil
	default:
		return "", UnsupportedEnvironmentError{Environment: name}
	}
}

// ResolveBaseURL returns the configured override when present, otherwise the endpoint of environment.
func ResolveBaseURL(override string, environment Environment) string {
	if trimmedOverride := strings.TrimSpace(override); len(trimmedOverride) > 0 {
		return strings.TrimRight(trimmedOverride, "/")
	}
	if environment == EnvironmentDevelopment {
		return developmentBaseURLConstant
	}
	return productionBaseURLConstant
}
