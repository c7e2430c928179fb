package apitoken

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/xcelera-dev/cli/internal/failure"
	pathutils "github.com/xcelera-dev/cli/internal/utils/path"
)

const (
	sourceSeparatorConstant                    = ":"
	environmentSourceTypeValueConstant         = "env"
	fileSourceTypeValueConstant                = "file"
	sourceMissingErrorMessageConstant          = "token source must be provided"
	environmentNameMissingErrorMessageConstant = "environment variable name must be provided"
	filePathMissingErrorMessageConstant        = "token file path must be provided"
	environmentTokenMissingTemplateConstant    = "environment variable %s is not set"
	fileReadErrorTemplateConstant              = "unable to read token file %s: %s"
	fileTokenEmptyErrorTemplateConstant        = "token file %s is empty"
	unsupportedSourceTemplateConstant          = "unsupported token source type %q"
	tokenRequiredMessageConstant               = "A token is required. Use --token or set XCELERA_TOKEN environment variable."
	tokenUnavailableTemplateConstant           = "A token is required. Use --token or provide one through %s: %s"
)

// DefaultEnvironmentVariable holds the API token when no flag is given.
const DefaultEnvironmentVariable = "XCELERA_TOKEN"

// DefaultSourceSpecification is the token source used when none is configured.
const DefaultSourceSpecification = environmentSourceTypeValueConstant + sourceSeparatorConstant + DefaultEnvironmentVariable

// SourceType enumerates the supported token retrieval mechanisms.
type SourceType string

// Token source types.
const (
	SourceTypeEnvironment SourceType = SourceType(environmentSourceTypeValueConstant)
	SourceTypeFile        SourceType = SourceType(fileSourceTypeValueConstant)
)

// Source specifies where to read the API token.
type Source struct {
	Type      SourceType
	Reference string
}

// String renders the source in its textual env:NAME or file:PATH form.
func (source Source) String() string {
	return string(source.Type) + sourceSeparatorConstant + source.Reference
}

// EnvironmentLookup obtains an environment variable value.
type EnvironmentLookup func(key string) (string, bool)

// FileReader reads the contents of a file path.
type FileReader func(path string) ([]byte, error)

// ParseSource interprets textual token source declarations. A bare value names an environment variable.
func ParseSource(sourceValue string) (Source, error) {
	trimmedValue := strings.TrimSpace(sourceValue)
	if len(trimmedValue) == 0 {
		return Source{}, failure.New(failure.KindInvalidInput, sourceMissingErrorMessageConstant)
	}

	sourceType, reference, hasSeparator := strings.Cut(trimmedValue, sourceSeparatorConstant)
	if !hasSeparator {
		return Source{Type: SourceTypeEnvironment, Reference: trimmedValue}, nil
	}

	sourceType = strings.ToLower(strings.TrimSpace(sourceType))
	reference = strings.TrimSpace(reference)

	switch sourceType {
	case environmentSourceTypeValueConstant:
		if len(reference) == 0 {
			return Source{}, failure.New(failure.KindInvalidInput, environmentNameMissingErrorMessageConstant)
		}
		return Source{Type: SourceTypeEnvironment, Reference: reference}, nil
	case fileSourceTypeValueConstant:
		if len(reference) == 0 {
			return Source{}, failure.New(failure.KindInvalidInput, filePathMissingErrorMessageConstant)
		}
		return Source{Type: SourceTypeFile, Reference: reference}, nil
	default:
		return Source{}, failure.Newf(failure.KindInvalidInput, unsupportedSourceTemplateConstant, sourceType)
	}
}

// Resolver reads API tokens from configured sources.
type Resolver struct {
	environmentLookup EnvironmentLookup
	fileReader        FileReader
	homeExpander      *pathutils.HomeExpander
}

// NewResolver creates a resolver. Nil collaborators fall back to the process environment and file system.
func NewResolver(environmentLookup EnvironmentLookup, fileReader FileReader, homeExpander *pathutils.HomeExpander) *Resolver {
	if environmentLookup == nil {
		environmentLookup = os.LookupEnv
	}
	if fileReader == nil {
		fileReader = os.ReadFile
	}
	if homeExpander == nil {
		homeExpander = pathutils.NewHomeExpander()
	}
	return &Resolver{
		environmentLookup: environmentLookup,
		fileReader:        fileReader,
		homeExpander:      homeExpander,
	}
}

// ReadSource returns the trimmed token held by source.
func (resolver *Resolver) ReadSource(_ context.Context, source Source) (string, error) {
	switch source.Type {
	case SourceTypeEnvironment:
		value, found := resolver.environmentLookup(source.Reference)
		trimmedValue := strings.TrimSpace(value)
		if !found || len(trimmedValue) == 0 {
			return "", failure.Newf(failure.KindInvalidInput, environmentTokenMissingTemplateConstant, source.Reference)
		}
		return trimmedValue, nil
	case SourceTypeFile:
		filePath := resolver.homeExpander.Expand(source.Reference)
		contents, readError := resolver.fileReader(filePath)
		if readError != nil {
			return "", failure.Wrapf(failure.KindInvalidInput, readError, fileReadErrorTemplateConstant, filePath, readError.Error())
		}
		trimmedValue := strings.TrimSpace(string(contents))
		if len(trimmedValue) == 0 {
			return "", failure.Newf(failure.KindInvalidInput, fileTokenEmptyErrorTemplateConstant, filePath)
		}
		return trimmedValue, nil
	default:
		return "", failure.Newf(failure.KindInvalidInput, unsupportedSourceTemplateConstant, string(source.Type))
	}
}

// Resolve prefers an explicit token and otherwise reads sourceSpecification. A missing token is an
// input-validation failure naming both ways to supply one.
func (resolver *Resolver) Resolve(resolutionContext context.Context, explicitToken string, sourceSpecification string) (string, error) {
	if trimmedToken := strings.TrimSpace(explicitToken); len(trimmedToken) > 0 {
		return trimmedToken, nil
	}
	if len(strings.TrimSpace(sourceSpecification)) == 0 {
		sourceSpecification = DefaultSourceSpecification
	}

	source, parseError := ParseSource(sourceSpecification)
	if parseError != nil {
		return "", parseError
	}

	token, readError := resolver.ReadSource(resolutionContext, source)
	if readError == nil {
		return token, nil
	}
	if source.Type == SourceTypeEnvironment && source.Reference == DefaultEnvironmentVariable {
		return "", failure.Wrap(failure.KindInvalidInput, readError, tokenRequiredMessageConstant)
	}
	return "", failure.Wrap(failure.KindInvalidInput, readError, fmt.Sprintf(tokenUnavailableTemplateConstant, source.String(), readError.Error()))
}
