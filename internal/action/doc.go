// Package action adapts the audit pipeline to GitHub Actions: inputs arrive as INPUT_* environment
// variables, diagnostics are emitted as workflow commands, and outputs are appended to $GITHUB_OUTPUT.
package action
