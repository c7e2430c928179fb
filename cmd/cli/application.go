package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xcelera-dev/cli/internal/action"
	"github.com/xcelera-dev/cli/internal/audit"
	"github.com/xcelera-dev/cli/internal/failure"
	"github.com/xcelera-dev/cli/internal/utils"
	"github.com/xcelera-dev/cli/internal/utils/flags"
)

const (
	applicationNameConstant                 = "xcelera"
	applicationShortDescriptionConstant     = "Schedule xcelera.dev page audits from a terminal or CI"
	applicationLongDescriptionConstant      = "xcelera schedules page audits on xcelera.dev, attaching the git and CI context of the current build and optional page credentials."
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured log level (debug, info, warn, error)."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Override the configured log format."
	commonConfigurationKeyConstant          = "common"
	commonLogLevelConfigKeyConstant         = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant        = commonConfigurationKeyConstant + ".log_format"
	apiConfigurationKeyConstant             = "api"
	apiEnvironmentConfigKeyConstant         = apiConfigurationKeyConstant + ".environment"
	apiBaseURLConfigKeyConstant             = apiConfigurationKeyConstant + ".base_url"
	auditConfigurationKeyConstant           = "audit"
	environmentPrefixConstant               = "XCELERA"
	configurationNameConstant               = "config"
	configurationTypeConstant               = "yaml"
	workingDirectorySearchPathConstant      = "."
	userConfigurationSearchPathConstant     = "~/.xcelera"
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	apiEnvironmentFieldConstant             = "api_environment"
	configurationLoadErrorMessage           = "unable to load configuration"
	loggerCreationErrorMessage              = "unable to create logger"
	loggerSyncErrorMessage                  = "unable to flush logger"
	commandRequiredMessageConstant          = "A command is required. Supported commands: audit, action, help."
	invalidCommandTemplateConstant          = "Invalid command %q. Supported commands: audit, action, help."
	errorLineTemplateConstant               = "%s\n"
)

// Version is stamped at build time with -ldflags "-X github.com/xcelera-dev/cli/cmd/cli.Version=...".
var Version = "dev"

// ApplicationConfiguration describes the persisted configuration for the CLI.
type ApplicationConfiguration struct {
	Common ApplicationCommonConfiguration `mapstructure:"common"`
	API    audit.APIConfiguration         `mapstructure:"api"`
	Audit  audit.CommandConfiguration     `mapstructure:"audit"`
}

// ApplicationCommonConfiguration stores logging configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// Application wires the cobra root command, configuration loader, and diagnostic logger.
type Application struct {
	rootCommand           *cobra.Command
	configurationLoader   *utils.ConfigurationLoader
	loggerFactory         *utils.LoggerFactory
	logger                *zap.Logger
	configuration         ApplicationConfiguration
	configurationMetadata utils.LoadedConfiguration
	configurationFilePath string
	logLevelFlagValue     string
	logFormatFlagValue    string
	auditRunner           *audit.Runner
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		[]string{workingDirectorySearchPathConstant, userConfigurationSearchPathConstant},
	)
	configurationLoader.SetEmbeddedConfiguration(EmbeddedDefaultConfiguration())

	application := &Application{
		configurationLoader: configurationLoader,
		loggerFactory:       utils.NewLoggerFactory(),
		logger:              zap.NewNop(),
	}

	application.auditRunner = &audit.Runner{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		ConfigurationProvider: func() audit.CommandConfiguration {
			return application.configuration.Audit
		},
		APIConfigurationProvider: func() audit.APIConfiguration {
			return application.configuration.API
		},
	}
	if workingDirectory, workingDirectoryError := os.Getwd(); workingDirectoryError == nil {
		application.auditRunner.WorkingDirectory = workingDirectory
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		Version:       Version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runRootCommand(command, arguments)
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(
		&application.logFormatFlagValue,
		logFormatFlagNameConstant,
		"",
		flags.FormatChoiceUsage(string(utils.LogFormatConsole), []string{string(utils.LogFormatStructured), string(utils.LogFormatConsole)}, logFormatFlagUsageConstant),
	)

	auditBuilder := audit.CommandBuilder{Runner: application.auditRunner}
	auditCommand, auditBuildError := auditBuilder.Build()
	if auditBuildError == nil {
		cobraCommand.AddCommand(auditCommand)
	}

	actionBuilder := action.CommandBuilder{Runner: application.auditRunner}
	actionCommand, actionBuildError := actionBuilder.Build()
	if actionBuildError == nil {
		cobraCommand.AddCommand(actionCommand)
	}

	application.rootCommand = cobraCommand
	return application
}

// Execute runs the command hierarchy against the process arguments.
func (application *Application) Execute() error {
	return application.ExecuteWithArguments(os.Args[1:])
}

// ExecuteWithArguments runs the command hierarchy against arguments and flushes the logger.
func (application *Application) ExecuteWithArguments(arguments []string) error {
	normalizedArguments := flags.NormalizeToggleArguments(arguments)
	if normalizedArguments == nil {
		normalizedArguments = []string{}
	}
	application.rootCommand.SetArgs(normalizedArguments)

	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil && executionError == nil {
		return errors.Wrap(syncError, loggerSyncErrorMessage)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:  string(utils.LogLevelError),
		commonLogFormatConfigKeyConstant: string(utils.LogFormatConsole),
		apiEnvironmentConfigKeyConstant:  audit.DefaultAPIConfiguration().Environment,
		apiBaseURLConfigKeyConstant:      "",
	}
	for configurationKey, configurationValue := range audit.DefaultConfigurationValues(auditConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return errors.Wrap(loadError, configurationLoadErrorMessage)
	}
	application.configurationMetadata = loadedConfiguration

	if command.Flags().Changed(logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}
	if command.Flags().Changed(logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	logger, loggerCreationError := application.loggerFactory.CreateLogger(
		utils.LogLevel(strings.ToLower(strings.TrimSpace(application.configuration.Common.LogLevel))),
		utils.LogFormat(strings.ToLower(strings.TrimSpace(application.configuration.Common.LogFormat))),
	)
	if loggerCreationError != nil {
		return errors.Wrap(loggerCreationError, loggerCreationErrorMessage)
	}
	application.logger = logger

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
		zap.String(apiEnvironmentFieldConstant, application.configuration.API.Environment),
	)
	return nil
}

// runRootCommand handles invocations without a known subcommand: usage goes to stdout, the
// complaint to stderr, and the exit code is 1.
func (application *Application) runRootCommand(command *cobra.Command, arguments []string) error {
	message := commandRequiredMessageConstant
	if len(arguments) > 0 {
		message = fmt.Sprintf(invalidCommandTemplateConstant, arguments[0])
	}
	if _, writeError := fmt.Fprintf(command.ErrOrStderr(), errorLineTemplateConstant, message); writeError != nil {
		return writeError
	}
	command.SetOut(command.OutOrStdout())
	if usageError := command.Usage(); usageError != nil {
		return usageError
	}
	return failure.ExitError{Code: audit.ExitCodeFailure}
}

func (application *Application) flushLogger() error {
	if application.logger == nil {
		return nil
	}
	syncError := application.logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP), errors.Is(syncError, syscall.EINVAL), errors.Is(syncError, syscall.ENOTTY):
		return nil
	default:
		return syncError
	}
}
