package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/xcelera-dev/cli/internal/failure"
	"github.com/xcelera-dev/cli/internal/gitrepo"
	"github.com/xcelera-dev/cli/internal/utils"
)

const (
	testConfigurationTemplateConstant = "api:\n  base_url: %s\naudit:\n  verbose: %t\n"
	testScheduledBodyConstant         = `{"success":true,"data":{"auditId":"audit-42","status":"scheduled","integrations":{}}}`
)

type stubInferrer struct{}

func (stubInferrer) Infer(executionContext context.Context) (gitrepo.SourceContext, error) {
	return gitrepo.SourceContext{Owner: "acme", Repo: "site", Branch: "main", Commit: gitrepo.CommitInfo{Hash: "abc123"}}, nil
}

type applicationHarness struct {
	application *Application
	output      *bytes.Buffer
	errors      *bytes.Buffer
	logs        *bytes.Buffer
}

func newApplicationHarness(environment map[string]string) applicationHarness {
	harness := applicationHarness{
		application: NewApplication(),
		output:      &bytes.Buffer{},
		errors:      &bytes.Buffer{},
		logs:        &bytes.Buffer{},
	}
	harness.application.loggerFactory = utils.NewLoggerFactoryWithOutput(harness.logs)
	harness.application.auditRunner.Inferrer = stubInferrer{}
	harness.application.auditRunner.EnvironmentLookup = func(key string) (string, bool) {
		value, found := environment[key]
		return value, found
	}
	harness.application.rootCommand.SetOut(harness.output)
	harness.application.rootCommand.SetErr(harness.errors)
	return harness
}

func startScheduledAuditServer(testInstance *testing.T) *httptest.Server {
	testInstance.Helper()
	router := chi.NewRouter()
	router.Post("/api/v1/audit", func(responseWriter http.ResponseWriter, request *http.Request) {
		responseWriter.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(responseWriter, testScheduledBodyConstant)
	})
	server := httptest.NewServer(router)
	testInstance.Cleanup(server.Close)
	return server
}

func writeTestConfiguration(testInstance *testing.T, baseURL string, verbose bool) string {
	testInstance.Helper()
	configurationPath := filepath.Join(testInstance.TempDir(), "config.yaml")
	content := fmt.Sprintf(testConfigurationTemplateConstant, baseURL, verbose)
	require.NoError(testInstance, os.WriteFile(configurationPath, []byte(content), 0o600))
	return configurationPath
}

func TestApplicationRequiresKnownCommand(testInstance *testing.T) {
	testCases := []struct {
		name            string
		arguments       []string
		expectedMessage string
	}{
		{name: "missing_command", arguments: []string{}, expectedMessage: "A command is required. Supported commands: audit, action, help.\n"},
		{name: "unknown_command", arguments: []string{"deploy"}, expectedMessage: "Invalid command \"deploy\". Supported commands: audit, action, help.\n"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			harness := newApplicationHarness(nil)

			executionError := harness.application.ExecuteWithArguments(testCase.arguments)

			require.Error(testInstance, executionError)
			require.Equal(testInstance, 1, failure.ExitCodeOf(executionError))
			require.Equal(testInstance, testCase.expectedMessage, harness.errors.String())
			require.Contains(testInstance, harness.output.String(), "Usage:")
			require.Contains(testInstance, harness.output.String(), "audit")
		})
	}
}

func TestApplicationAuditUsesConfiguration(testInstance *testing.T) {
	server := startScheduledAuditServer(testInstance)
	configurationPath := writeTestConfiguration(testInstance, server.URL, true)
	harness := newApplicationHarness(map[string]string{"XCELERA_TOKEN": "env-token"})

	executionError := harness.application.ExecuteWithArguments([]string{
		"--config", configurationPath,
		"--log-level", "debug",
		"audit", "--url", "https://example.com",
	})

	require.NoError(testInstance, executionError)
	require.Contains(testInstance, harness.output.String(), "✅ Audit scheduled successfully!\n")
	require.Contains(testInstance, harness.output.String(), "Audit ID: audit-42\n")
	require.Empty(testInstance, harness.errors.String())
	require.Contains(testInstance, harness.logs.String(), "configuration initialized")
	require.Contains(testInstance, harness.logs.String(), "sending audit request")
	require.Equal(testInstance, configurationPath, harness.application.configurationMetadata.ConfigFileUsed)
}

func TestApplicationVerboseToggleAcceptsValue(testInstance *testing.T) {
	server := startScheduledAuditServer(testInstance)
	configurationPath := writeTestConfiguration(testInstance, server.URL, false)
	harness := newApplicationHarness(map[string]string{"XCELERA_TOKEN": "env-token"})

	executionError := harness.application.ExecuteWithArguments([]string{
		"--config", configurationPath,
		"audit", "--verbose", "yes", "--url", "https://example.com",
	})

	require.NoError(testInstance, executionError)
	require.Contains(testInstance, harness.output.String(), "Status: scheduled\n")
	require.Contains(testInstance, harness.output.String(), "No integrations detected\n")
}

func TestApplicationRejectsUnsupportedEnvironment(testInstance *testing.T) {
	testInstance.Setenv("XCELERA_API_ENVIRONMENT", "staging")
	harness := newApplicationHarness(map[string]string{"XCELERA_TOKEN": "env-token"})

	executionError := harness.application.ExecuteWithArguments([]string{"audit", "--url", "https://example.com"})

	require.Error(testInstance, executionError)
	require.Equal(testInstance, 1, failure.ExitCodeOf(executionError))
	require.Equal(testInstance, "❌ unsupported API environment: staging\n", harness.errors.String())
}

func TestApplicationRejectsUnsupportedLogLevel(testInstance *testing.T) {
	harness := newApplicationHarness(nil)

	executionError := harness.application.ExecuteWithArguments([]string{"--log-level", "loud", "audit", "--url", "https://example.com"})

	require.EqualError(testInstance, executionError, "unable to create logger: unsupported log level: loud")
	require.Equal(testInstance, 1, failure.ExitCodeOf(executionError))
}

func TestApplicationPrintsVersion(testInstance *testing.T) {
	harness := newApplicationHarness(nil)

	require.NoError(testInstance, harness.application.ExecuteWithArguments([]string{"--version"}))
	require.Equal(testInstance, "xcelera version dev\n", harness.output.String())
}

func TestEmbeddedDefaultConfigurationDecodes(testInstance *testing.T) {
	harness := newApplicationHarness(nil)
	require.NoError(testInstance, harness.application.initializeConfiguration(harness.application.rootCommand))

	configuration := harness.application.configuration
	require.Equal(testInstance, "error", configuration.Common.LogLevel)
	require.Equal(testInstance, "console", configuration.Common.LogFormat)
	require.Equal(testInstance, "production", configuration.API.Environment)
	require.Equal(testInstance, "git", configuration.Audit.SourceBackend)
	require.Equal(testInstance, "env:XCELERA_TOKEN", configuration.Audit.TokenSource)
	require.False(testInstance, configuration.Audit.Verbose)
}
