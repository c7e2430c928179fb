package auditapi

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"io"
	"net"
	"net/url"
	"syscall"

	"github.com/cockroachdb/errors"
)

const networkErrorMessageConstant = "Network error"

// IsNetworkError reports whether err is a transport-level failure: DNS resolution, refused or
// reset connections, TLS handshakes, truncated responses, and timeouts. Cancellation is not a
// network failure.
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	cause := unwrapURLError(err)

	var dnsError *net.DNSError
	var operationError *net.OpError
	var recordHeaderError tls.RecordHeaderError
	var verificationError *tls.CertificateVerificationError
	var unknownAuthorityError x509.UnknownAuthorityError
	var hostnameError x509.HostnameError
	var invalidCertificateError x509.CertificateInvalidError
	switch {
	case errors.As(cause, &dnsError),
		errors.As(cause, &operationError),
		errors.As(cause, &recordHeaderError),
		errors.As(cause, &verificationError),
		errors.As(cause, &unknownAuthorityError),
		errors.As(cause, &hostnameError),
		errors.As(cause, &invalidCertificateError):
		return true
	case errors.Is(cause, io.EOF),
		errors.Is(cause, io.ErrUnexpectedEOF),
		errors.Is(cause, syscall.ECONNREFUSED),
		errors.Is(cause, syscall.ECONNRESET),
		errors.Is(cause, syscall.EPIPE):
		return true
	}

	var timeoutError net.Error
	return errors.As(cause, &timeoutError) && timeoutError.Timeout()
}

// unwrapURLError strips the *url.Error the HTTP client adds, since *url.Error itself
// satisfies net.Error for every failure.
func unwrapURLError(err error) error {
	var urlError *url.Error
	if errors.As(err, &urlError) && urlError.Err != nil {
		return urlError.Err
	}
	return err
}

// networkErrorResponse folds a transport failure into the service's failure envelope.
func networkErrorResponse(err error) AuditResponse {
	return AuditResponse{
		Success: false,
		Error: &AuditError{
			Message: networkErrorMessageConstant,
			Details: newStringDetails(unwrapURLError(err).Error()),
		},
	}
}
