package credentials

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/xcelera-dev/cli/internal/cookies"
	"github.com/xcelera-dev/cli/internal/failure"
)

const (
	authSchemaResourceConstant     = "auth.schema.json"
	invalidAuthTemplateConstant    = "Invalid auth JSON: %s"
	validationIssueTemplate        = "%s: %s"
	validationIssueSeparator       = "; "
	rootInstanceLocationConstant   = "/"
	schemaCompilationFailedMessage = "compile auth schema"
)

//go:embed auth.schema.json
var authSchemaDocument []byte

var compileAuthSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if resourceError := compiler.AddResource(authSchemaResourceConstant, bytes.NewReader(authSchemaDocument)); resourceError != nil {
		return nil, errors.Wrap(resourceError, schemaCompilationFailedMessage)
	}
	compiledSchema, compileError := compiler.Compile(authSchemaResourceConstant)
	if compileError != nil {
		return nil, errors.Wrap(compileError, schemaCompilationFailedMessage)
	}
	return compiledSchema, nil
})

type authBlob struct {
	Cookies []cookies.Cookie  `json:"cookies"`
	Headers map[string]string `json:"headers"`
}

// parseAuthBlob decodes an inline authentication document after validating it against the auth schema.
func parseAuthBlob(document string) (authBlob, error) {
	var untypedDocument any
	if decodeError := json.Unmarshal([]byte(document), &untypedDocument); decodeError != nil {
		return authBlob{}, failure.Wrapf(failure.KindInvalidAuth, decodeError, invalidAuthTemplateConstant, decodeError.Error())
	}

	compiledSchema, compileError := compileAuthSchema()
	if compileError != nil {
		return authBlob{}, compileError
	}
	if validationError := compiledSchema.Validate(untypedDocument); validationError != nil {
		return authBlob{}, failure.Wrapf(failure.KindInvalidAuth, validationError, invalidAuthTemplateConstant, describeValidationError(validationError))
	}

	var blob authBlob
	if decodeError := json.Unmarshal([]byte(document), &blob); decodeError != nil {
		return authBlob{}, failure.Wrapf(failure.KindInvalidAuth, decodeError, invalidAuthTemplateConstant, decodeError.Error())
	}
	return blob, nil
}

func describeValidationError(validationError error) string {
	var schemaValidationError *jsonschema.ValidationError
	if !errors.As(validationError, &schemaValidationError) {
		return validationError.Error()
	}
	issues := make([]string, 0)
	collectValidationIssues(schemaValidationError, &issues)
	if len(issues) == 0 {
		return validationError.Error()
	}
	return strings.Join(issues, validationIssueSeparator)
}

func collectValidationIssues(validationError *jsonschema.ValidationError, issues *[]string) {
	if len(validationError.Causes) == 0 {
		instanceLocation := validationError.InstanceLocation
		if len(instanceLocation) == 0 {
			instanceLocation = rootInstanceLocationConstant
		}
		*issues = append(*issues, fmt.Sprintf(validationIssueTemplate, instanceLocation, validationError.Message))
		return
	}
	for _, cause := range validationError.Causes {
		collectValidationIssues(cause, issues)
	}
}
