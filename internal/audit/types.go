package audit

import (
	"github.com/xcelera-dev/cli/internal/credentials"
)

// Exit codes returned by an audit run.
const (
	ExitCodeSuccess = 0
	ExitCodeFailure = 1
)

// Verbosity controls whether diagnostic lines are emitted.
type Verbosity int

// Supported verbosity levels.
const (
	VerbosityNormal Verbosity = iota
	VerbosityVerbose
)

// IsVerbose reports whether diagnostic lines should be emitted.
func (verbosity Verbosity) IsVerbose() bool {
	return verbosity >= VerbosityVerbose
}

// VerbosityFromFlag maps a boolean toggle to a Verbosity.
func VerbosityFromFlag(verbose bool) Verbosity {
	if verbose {
		return VerbosityVerbose
	}
	return VerbosityNormal
}

// Request captures the inputs of one audit run.
type Request struct {
	Ref         string
	Token       string
	Credentials credentials.Options
	Verbosity   Verbosity
}

// Lines holds ordered user-facing lines split by stream.
type Lines struct {
	Output []string
	Errors []string
}

func (lines *Lines) appendOutput(values ...string) {
	lines.Output = append(lines.Output, values...)
}

func (lines *Lines) appendErrors(values ...string) {
	lines.Errors = append(lines.Errors, values...)
}

func (lines *Lines) merge(other Lines) {
	lines.appendOutput(other.Output...)
	lines.appendErrors(other.Errors...)
}

// IsEmpty reports whether no line was produced.
func (lines Lines) IsEmpty() bool {
	return len(lines.Output) == 0 && len(lines.Errors) == 0
}

// CommandResult is the outcome of one audit run. Lines keep their emission order.
type CommandResult struct {
	ExitCode int
	Output   []string
	Errors   []string
	AuditID  string
}

// Succeeded reports whether the run exited cleanly.
func (result CommandResult) Succeeded() bool {
	return result.ExitCode == ExitCodeSuccess
}

func newCommandResult(exitCode int, lines Lines, auditID string) CommandResult {
	return CommandResult{
		ExitCode: exitCode,
		Output:   lines.Output,
		Errors:   lines.Errors,
		AuditID:  auditID,
	}
}
