package action

import (
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xcelera-dev/cli/internal/audit"
	"github.com/xcelera-dev/cli/internal/failure"
)

const (
	commandNameConstant           = "action"
	commandShortDescription       = "Schedule a page audit from a GitHub Actions step"
	commandLongDescription        = "action reads its inputs from INPUT_* environment variables, schedules a page audit, and records the status and audit ID as step outputs."
	outputFileEnvironmentVariable = "GITHUB_OUTPUT"
	statusOutputKeyConstant       = "status"
	auditIDOutputKeyConstant      = "auditId"
	statusSuccessConstant         = "success"
	statusFailedConstant          = "failed"
	auditFailedMessageConstant    = "Audit command failed"
	invalidInputsTemplate         = "Unable to read action inputs: %s"
)

// EnvironmentProvider lists the process environment as KEY=VALUE entries.
type EnvironmentProvider func() []string

// CommandBuilder assembles the action cobra command.
type CommandBuilder struct {
	Runner              *audit.Runner
	EnvironmentProvider EnvironmentProvider
	OutputWriter        OutputWriter
}

// Build constructs the action command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandNameConstant,
		Short: commandShortDescription,
		Long:  commandLongDescription,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}
	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	environ := builder.resolveEnvironment()
	outputWriter := builder.resolveOutputWriter(environ)

	var result audit.CommandResult
	inputs, inputsError := ReadInputs(environ)
	if inputsError != nil {
		result = audit.CommandResult{
			ExitCode: audit.ExitCodeFailure,
			Errors:   audit.FormatFailure(failure.Wrapf(failure.KindInvalidInput, inputsError, invalidInputsTemplate, inputsError.Error()), audit.VerbosityNormal),
		}
	} else {
		runner := builder.Runner
		if runner == nil {
			runner = &audit.Runner{}
		}
		result = runner.Run(command.Context(), inputs.Invocation())
	}

	if reportError := Report(command.OutOrStdout(), outputWriter, result); reportError != nil {
		return reportError
	}
	if !result.Succeeded() {
		return failure.ExitError{Code: result.ExitCode}
	}
	return nil
}

// Report writes result as workflow log lines and step outputs. Error lines of a failed run become
// ::error:: commands; those of a successful run are advisories and become ::warning:: commands.
func Report(logWriter io.Writer, outputWriter OutputWriter, result audit.CommandResult) error {
	for _, line := range result.Output {
		if writeError := WriteInfo(logWriter, line); writeError != nil {
			return writeError
		}
	}

	emitDiagnostic := WriteWarning
	if !result.Succeeded() {
		emitDiagnostic = WriteError
	}
	for _, line := range result.Errors {
		writeLine := emitDiagnostic
		if len(strings.TrimSpace(line)) == 0 {
			writeLine = WriteInfo
		}
		if writeError := writeLine(logWriter, line); writeError != nil {
			return writeError
		}
	}

	if !result.Succeeded() {
		if writeError := WriteError(logWriter, auditFailedMessageConstant); writeError != nil {
			return writeError
		}
		return outputWriter.WriteOutput(statusOutputKeyConstant, statusFailedConstant)
	}

	if writeError := outputWriter.WriteOutput(statusOutputKeyConstant, statusSuccessConstant); writeError != nil {
		return writeError
	}
	if len(result.AuditID) == 0 {
		return nil
	}
	return outputWriter.WriteOutput(auditIDOutputKeyConstant, result.AuditID)
}

func (builder *CommandBuilder) resolveEnvironment() []string {
	if builder.EnvironmentProvider == nil {
		return os.Environ()
	}
	return builder.EnvironmentProvider()
}

func (builder *CommandBuilder) resolveOutputWriter(environ []string) OutputWriter {
	if builder.OutputWriter != nil {
		return builder.OutputWriter
	}
	for _, entry := range environ {
		name, value, found := strings.Cut(entry, environmentSeparatorConstant)
		if found && name == outputFileEnvironmentVariable {
			return NewOutputWriter(value)
		}
	}
	return NoopOutputWriter{}
}
