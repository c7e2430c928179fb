package action

import (
	"fmt"
	"io"
	"strings"
)

const (
	errorCommandConstant            = "error"
	warningCommandConstant          = "warning"
	workflowCommandTemplate         = "::%s::%s\n"
	plainLineTemplateConstant       = "%s\n"
	percentEscapeConstant           = "%25"
	carriageReturnEscapeConstant    = "%0D"
	lineFeedEscapeConstant          = "%0A"
	percentCharacterConstant        = "%"
	carriageReturnCharacterConstant = "\r"
	lineFeedCharacterConstant       = "\n"
)

var messageEscaper = strings.NewReplacer(
	percentCharacterConstant, percentEscapeConstant,
	carriageReturnCharacterConstant, carriageReturnEscapeConstant,
	lineFeedCharacterConstant, lineFeedEscapeConstant,
)

// EscapeMessage encodes a workflow command message so it stays on one line.
func EscapeMessage(message string) string {
	return messageEscaper.Replace(message)
}

// WriteError emits an ::error:: workflow command.
func WriteError(writer io.Writer, message string) error {
	return writeCommand(writer, errorCommandConstant, message)
}

// WriteWarning emits a ::warning:: workflow command.
func WriteWarning(writer io.Writer, message string) error {
	return writeCommand(writer, warningCommandConstant, message)
}

// WriteInfo emits a plain log line.
func WriteInfo(writer io.Writer, message string) error {
	_, writeError := fmt.Fprintf(writer, plainLineTemplateConstant, message)
	return writeError
}

func writeCommand(writer io.Writer, command string, message string) error {
	_, writeError := fmt.Fprintf(writer, workflowCommandTemplate, command, EscapeMessage(message))
	return writeError
}
