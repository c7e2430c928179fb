package failure

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

const (
	exitErrorTemplateConstant = "exit status %d"
	defaultExitCodeConstant   = 1
)

// ExitError signals that the command already reported its outcome and only the exit code remains.
type ExitError struct {
	Code int
}

// Error describes the exit status.
func (exitError ExitError) Error() string {
	return fmt.Sprintf(exitErrorTemplateConstant, exitError.Code)
}

// ExitCodeOf extracts the process exit code from err, defaulting to 1.
func ExitCodeOf(err error) int {
	if err == nil {
		return 0
	}
	var exitError ExitError
	if errors.As(err, &exitError) && exitError.Code > 0 {
		return exitError.Code
	}
	return defaultExitCodeConstant
}
