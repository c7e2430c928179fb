package failure

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Kind enumerates the closed set of failure categories raised by the audit pipeline.
type Kind string

// Failure kinds, grouped by the pipeline step that raises them.
const (
	KindInvalidInput        Kind = "invalid_input"
	KindInvalidCookieFormat Kind = "invalid_cookie_format"
	KindInvalidHeaderFormat Kind = "invalid_header_format"
	KindInvalidAuth         Kind = "invalid_auth"
	KindCookieFileFormat    Kind = "cookie_file_format"
	KindCookieFileRead      Kind = "cookie_file_read"

	KindNoRepository     Kind = "no_repository"
	KindNoRemote         Kind = "no_remote"
	KindUnparsableRemote Kind = "unparsable_remote"
	KindNoCommit         Kind = "no_commit"

	KindUnexpectedServer Kind = "unexpected_server"
	KindInternal         Kind = "internal"
)

// Error carries a failure kind, the user-facing message, and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

// Error returns the user-facing message.
func (failureError *Error) Error() string {
	return failureError.Message
}

// Unwrap exposes the underlying cause.
func (failureError *Error) Unwrap() error {
	return failureError.Cause
}

// New creates a failure of the given kind and records the caller's stack.
func New(kind Kind, message string) error {
	return errors.WithStackDepth(&Error{Kind: kind, Message: message}, 1)
}

// Newf is the formatted variant of New.
func Newf(kind Kind, format string, arguments ...any) error {
	return errors.WithStackDepth(&Error{Kind: kind, Message: fmt.Sprintf(format, arguments...)}, 1)
}

// Wrap creates a failure of the given kind around cause and records the caller's stack.
func Wrap(kind Kind, cause error, message string) error {
	return errors.WithStackDepth(&Error{Kind: kind, Message: message, Cause: cause}, 1)
}

// Wrapf is the formatted variant of Wrap.
func Wrapf(kind Kind, cause error, format string, arguments ...any) error {
	return errors.WithStackDepth(&Error{Kind: kind, Message: fmt.Sprintf(format, arguments...), Cause: cause}, 1)
}

// KindOf reports the kind of the first failure found in the error chain.
func KindOf(err error) (Kind, bool) {
	var failureError *Error
	if !errors.As(err, &failureError) {
		return "", false
	}
	return failureError.Kind, true
}

// IsKind reports whether err carries a failure of the given kind.
func IsKind(err error, kind Kind) bool {
	resolvedKind, found := KindOf(err)
	return found && resolvedKind == kind
}

// Detailed renders err with its full chain and recorded stack traces.
func Detailed(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("%+v", err)
}
