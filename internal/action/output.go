package action

import (
	"fmt"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
)

const (
	singleLineOutputTemplateConstant = "%s=%s\n"
	multiLineOutputTemplateConstant  = "%s<<%s\n%s\n%s\n"
	outputDelimiterConstant          = "XCELERA_EOF"
	outputDelimiterSuffixConstant    = "_"
	outputFilePermissionsConstant    = 0o644
	openOutputFileErrorMessage       = "unable to open output file"
	writeOutputErrorMessage          = "unable to write output %s"
)

// OutputWriter records step outputs.
type OutputWriter interface {
	WriteOutput(key string, value string) error
}

// NoopOutputWriter discards outputs when no output file is configured.
type NoopOutputWriter struct{}

// WriteOutput implements OutputWriter.
func (NoopOutputWriter) WriteOutput(string, string) error {
	return nil
}

// FileOutputWriter appends outputs to a file such as $GITHUB_OUTPUT.
type FileOutputWriter struct {
	outputPath string
}

// NewFileOutputWriter creates a FileOutputWriter for outputPath.
func NewFileOutputWriter(outputPath string) *FileOutputWriter {
	return &FileOutputWriter{outputPath: outputPath}
}

// WriteOutput appends key=value, or a heredoc block when value spans lines.
func (writer *FileOutputWriter) WriteOutput(key string, value string) error {
	outputFile, openError := os.OpenFile(writer.outputPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, outputFilePermissionsConstant)
	if openError != nil {
		return errors.Wrap(openError, openOutputFileErrorMessage)
	}
	defer outputFile.Close()

	var writeError error
	if strings.Contains(value, inputLineSeparatorConstant) {
		delimiter := outputDelimiterConstant
		for strings.Contains(value, delimiter) {
			delimiter += outputDelimiterSuffixConstant
		}
		_, writeError = fmt.Fprintf(outputFile, multiLineOutputTemplateConstant, key, delimiter, value, delimiter)
	} else {
		_, writeError = fmt.Fprintf(outputFile, singleLineOutputTemplateConstant, key, value)
	}
	if writeError != nil {
		return errors.Wrapf(writeError, writeOutputErrorMessage, key)
	}
	return nil
}

// NewOutputWriter selects a FileOutputWriter when outputPath is set.
func NewOutputWriter(outputPath string) OutputWriter {
	if len(strings.TrimSpace(outputPath)) == 0 {
		return NoopOutputWriter{}
	}
	return NewFileOutputWriter(outputPath)
}
