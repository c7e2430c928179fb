// Package failure defines the closed set of failure kinds raised by the audit
// pipeline together with helpers that attach stack traces and map errors to
// process exit codes.
package failure
