// Package execshell runs external git commands on behalf of the source-context
// inferrer.
//
// ShellExecutor wraps a CommandRunner with zap lifecycle logging and typed
// failures; OSCommandRunner is the os/exec backed default runner.
package execshell
