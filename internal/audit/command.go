package audit

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/xcelera-dev/cli/internal/credentials"
	"github.com/xcelera-dev/cli/internal/failure"
	"github.com/xcelera-dev/cli/internal/gitrepo"
	"github.com/xcelera-dev/cli/internal/utils/flags"
)

const (
	commandNameConstant          = "audit"
	commandShortDescription      = "Schedule a page audit"
	commandLongDescription       = "audit infers the build context of the current repository, attaches optional authentication credentials, and schedules a page audit on xcelera.dev."
	commandExampleConstant       = "  xcelera audit --url https://example.com --token $XCELERA_TOKEN\n  xcelera audit --url https://example.com/account --cookie-file cookies.txt --header \"X-Tenant: acme\""
	flagURLName                  = "url"
	flagURLDescription           = "The URL to audit."
	flagRefName                  = "ref"
	flagRefDescription           = "Alias for --url."
	flagTokenName                = "token"
	flagTokenDescription         = "The xcelera API token. Can also be set with the XCELERA_TOKEN environment variable."
	flagTokenSourceName          = "token-source"
	flagTokenSourceDescription   = "Where to read the token when --token is absent (env:NAME or file:PATH)."
	flagCookieName               = "cookie"
	flagCookieDescription        = "Cookie sent with the audited page request as name=value (repeatable)."
	flagHeaderName               = "header"
	flagHeaderDescription        = "Header sent with the audited page request as \"Name: Value\" (repeatable)."
	flagCookieFileName           = "cookie-file"
	flagCookieFileDescription    = "Path to a Netscape cookie file."
	flagAuthName                 = "auth"
	flagAuthDescription          = "Inline auth JSON with cookies and headers."
	flagVerboseName              = "verbose"
	flagVerboseDescription       = "Print audit identifiers and diagnostic details."
	flagSourceBackendName        = "source-backend"
	flagSourceBackendDescription = "How to read the local git repository."
	outputLineTemplateConstant   = "%s\n"
)

// CommandBuilder assembles the audit cobra command.
type CommandBuilder struct {
	Runner *Runner
}

// Build constructs the cobra command that schedules an audit.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:     commandNameConstant,
		Short:   commandShortDescription,
		Long:    commandLongDescription,
		Example: commandExampleConstant,
		Args:    cobra.NoArgs,
		RunE:    builder.run,
	}

	command.Flags().String(flagURLName, "", flagURLDescription)
	command.Flags().String(flagRefName, "", flagRefDescription)
	command.Flags().String(flagTokenName, "", flagTokenDescription)
	command.Flags().String(flagTokenSourceName, "", flagTokenSourceDescription)
	command.Flags().StringArray(flagCookieName, nil, flagCookieDescription)
	command.Flags().StringArray(flagHeaderName, nil, flagHeaderDescription)
	command.Flags().String(flagCookieFileName, "", flagCookieFileDescription)
	command.Flags().String(flagAuthName, "", flagAuthDescription)
	flags.AddToggleFlag(command.Flags(), nil, flagVerboseName, "", false, flagVerboseDescription)
	command.Flags().String(
		flagSourceBackendName,
		"",
		flags.FormatChoiceUsage(string(gitrepo.BackendGitCommand), []string{string(gitrepo.BackendGitCommand), string(gitrepo.BackendLibrary)}, flagSourceBackendDescription),
	)
	command.MarkFlagsMutuallyExclusive(flagURLName, flagRefName)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	invocation := builder.parseInvocation(command)

	runner := builder.Runner
	if runner == nil {
		runner = &Runner{}
	}
	result := runner.Run(command.Context(), invocation)
	if writeError := WriteResult(command.OutOrStdout(), command.ErrOrStderr(), result); writeError != nil {
		return writeError
	}
	if !result.Succeeded() {
		return failure.ExitError{Code: result.ExitCode}
	}
	return nil
}

func (builder *CommandBuilder) parseInvocation(command *cobra.Command) Invocation {
	urlValue, _ := command.Flags().GetString(flagURLName)
	refValue, _ := command.Flags().GetString(flagRefName)
	tokenValue, _ := command.Flags().GetString(flagTokenName)
	tokenSourceValue, _ := command.Flags().GetString(flagTokenSourceName)
	cookieValues, _ := command.Flags().GetStringArray(flagCookieName)
	headerValues, _ := command.Flags().GetStringArray(flagHeaderName)
	cookieFileValue, _ := command.Flags().GetString(flagCookieFileName)
	authValue, _ := command.Flags().GetString(flagAuthName)
	verboseValue, _ := command.Flags().GetBool(flagVerboseName)
	sourceBackendValue, _ := command.Flags().GetString(flagSourceBackendName)

	ref := urlValue
	if len(ref) == 0 {
		ref = refValue
	}

	return Invocation{
		Ref:           ref,
		Token:         tokenValue,
		TokenSource:   tokenSourceValue,
		SourceBackend: sourceBackendValue,
		Verbose:       verboseValue,
		Credentials: credentials.Options{
			AuthDocument: authValue,
			CookieFile:   cookieFileValue,
			Cookies:      cookieValues,
			Headers:      headerValues,
		},
	}
}

// WriteResult prints output lines to outputWriter and error lines to errorWriter.
func WriteResult(outputWriter io.Writer, errorWriter io.Writer, result CommandResult) error {
	for _, line := range result.Output {
		if _, writeError := fmt.Fprintf(outputWriter, outputLineTemplateConstant, line); writeError != nil {
			return writeError
		}
	}
	for _, line := range result.Errors {
		if _, writeError := fmt.Fprintf(errorWriter, outputLineTemplateConstant, line); writeError != nil {
			return writeError
		}
	}
	return nil
}
