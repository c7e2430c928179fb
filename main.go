package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/xcelera-dev/cli/cmd/cli"
	"github.com/xcelera-dev/cli/internal/failure"
)

const exitErrorTemplateConstant = "%v\n"

func main() {
	executionError := cli.Execute()
	if executionError == nil {
		return
	}
	var exitError failure.ExitError
	if !errors.As(executionError, &exitError) {
		fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, executionError)
	}
	os.Exit(failure.ExitCodeOf(executionError))
}
