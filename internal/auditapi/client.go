package auditapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xcelera-dev/cli/internal/buildcontext"
	"github.com/xcelera-dev/cli/internal/credentials"
	"github.com/xcelera-dev/cli/internal/failure"
)

const (
	auditPathConstant                  = "/api/v1/audit"
	authorizationHeaderConstant        = "Authorization"
	contentTypeHeaderConstant          = "Content-Type"
	userAgentHeaderConstant            = "User-Agent"
	requestIDHeaderConstant            = "X-Request-Id"
	bearerPrefixConstant               = "Bearer "
	jsonContentTypeConstant            = "application/json"
	userAgentConstant                  = "xcelera-cli"
	unexpectedServerTemplateConstant   = "Operation failed: %d %s - %s"
	undecodableResponseTemplate        = "Unable to decode audit response (%d %s): %s"
	requestEncodingMessageConstant     = "unable to encode audit request"
	requestConstructionMessageConstant = "unable to build audit request"
	requestFailedMessageConstant       = "audit request failed"
	responseReadMessageConstant        = "unable to read audit response"
	sendingRequestLogMessage           = "sending audit request"
	receivedResponseLogMessage         = "received audit response"
	networkFailureLogMessage           = "audit request hit a network error"
	endpointLogFieldConstant           = "endpoint"
	requestIDLogFieldConstant          = "request_id"
	statusCodeLogFieldConstant         = "status_code"
	contentTypeLogFieldConstant        = "content_type"
)

// HTTPClient performs HTTP requests. *http.Client satisfies it.
type HTTPClient interface {
	Do(request *http.Request) (*http.Response, error)
}

// AuditRequest is the body posted to the audit endpoint.
type AuditRequest struct {
	Ref     string                       `json:"ref"`
	Context buildcontext.BuildContext    `json:"context"`
	Auth    *credentials.AuthCredentials `json:"auth,omitempty"`
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the transport used to reach the service.
func WithHTTPClient(httpClient HTTPClient) ClientOption {
	return func(client *Client) {
		if httpClient != nil {
			client.httpClient = httpClient
		}
	}
}

// WithLogger attaches a diagnostic logger.
func WithLogger(logger *zap.Logger) ClientOption {
	return func(client *Client) {
		if logger != nil {
			client.logger = logger
		}
	}
}

// WithRequestIDGenerator replaces the generator of X-Request-Id values.
func WithRequestIDGenerator(generator func() string) ClientOption {
	return func(client *Client) {
		if generator != nil {
			client.requestIDGenerator = generator
		}
	}
}

// Client schedules audits against the xcelera service.
type Client struct {
	baseURL            string
	httpClient         HTTPClient
	logger             *zap.Logger
	requestIDGenerator func() string
}

// NewClient constructs a Client for baseURL. No request timeout is imposed by default.
func NewClient(baseURL string, options ...ClientOption) *Client {
	client := &Client{
		baseURL:            strings.TrimRight(baseURL, "/"),
		httpClient:         &http.Client{},
		logger:             zap.NewNop(),
		requestIDGenerator: uuid.NewString,
	}
	for _, option := range options {
		option(client)
	}
	return client
}

// RequestAudit posts one audit request.
//
// Failures the service reports in its JSON envelope and transport failures are returned as an
// AuditResponse with Success false. Only a non-2xx response without a JSON body, an undecodable
// response, and cancellation surface as errors.
func (client *Client) RequestAudit(executionContext context.Context, ref string, token string, buildContext buildcontext.BuildContext, auth *credentials.AuthCredentials) (AuditResponse, error) {
	requestBody, encodeError := json.Marshal(AuditRequest{Ref: ref, Context: buildContext, Auth: auth})
	if encodeError != nil {
		return AuditResponse{}, failure.Wrap(failure.KindInternal, encodeError, requestEncodingMessageConstant)
	}

	endpoint := client.baseURL + auditPathConstant
	request, requestError := http.NewRequestWithContext(executionContext, http.MethodPost, endpoint, bytes.NewReader(requestBody))
	if requestError != nil {
		return AuditResponse{}, failure.Wrap(failure.KindInternal, requestError, requestConstructionMessageConstant)
	}

	requestID := client.requestIDGenerator()
	request.Header.Set(contentTypeHeaderConstant, jsonContentTypeConstant)
	request.Header.Set(authorizationHeaderConstant, bearerPrefixConstant+token)
	request.Header.Set(userAgentHeaderConstant, userAgentConstant)
	request.Header.Set(requestIDHeaderConstant, requestID)

	client.logger.Debug(sendingRequestLogMessage, zap.String(endpointLogFieldConstant, endpoint), zap.String(requestIDLogFieldConstant, requestID))

	response, doError := client.httpClient.Do(request)
	if doError != nil {
		return client.transportFailure(doError, requestID, requestFailedMessageConstant)
	}
	defer response.Body.Close()

	responseBody, readError := io.ReadAll(response.Body)
	if readError != nil {
		return client.transportFailure(readError, requestID, responseReadMessageConstant)
	}

	contentType := response.Header.Get(contentTypeHeaderConstant)
	client.logger.Debug(receivedResponseLogMessage,
		zap.String(requestIDLogFieldConstant, requestID),
		zap.Int(statusCodeLogFieldConstant, response.StatusCode),
		zap.String(contentTypeLogFieldConstant, contentType),
	)

	statusText := reasonPhrase(response)
	if isSuccessfulStatus(response.StatusCode) {
		return decodeSuccess(response.StatusCode, statusText, responseBody)
	}
	if strings.Contains(strings.ToLower(contentType), jsonContentTypeConstant) {
		return decodeFailure(response.StatusCode, statusText, responseBody)
	}
	return AuditResponse{}, failure.Newf(failure.KindUnexpectedServer, unexpectedServerTemplateConstant, response.StatusCode, statusText, string(responseBody))
}

// reasonPhrase returns the status text the server sent, or the standard one when it sent none.
func reasonPhrase(response *http.Response) string {
	phrase := strings.TrimSpace(strings.TrimPrefix(response.Status, strconv.Itoa(response.StatusCode)))
	if len(phrase) == 0 {
		return http.StatusText(response.StatusCode)
	}
	return phrase
}

func (client *Client) transportFailure(transportError error, requestID string, message string) (AuditResponse, error) {
	if IsNetworkError(transportError) {
		client.logger.Debug(networkFailureLogMessage, zap.String(requestIDLogFieldConstant, requestID), zap.Error(transportError))
		return networkErrorResponse(transportError), nil
	}
	return AuditResponse{}, errors.Wrap(transportError, message)
}

func isSuccessfulStatus(statusCode int) bool {
	return statusCode >= http.StatusOK && statusCode < http.StatusMultipleChoices
}

func decodeSuccess(statusCode int, statusText string, responseBody []byte) (AuditResponse, error) {
	var envelope struct {
		Data AuditData `json:"data"`
	}
	if decodeError := json.Unmarshal(responseBody, &envelope); decodeError != nil {
		return AuditResponse{}, undecodableResponse(statusCode, statusText, decodeError)
	}
	return AuditResponse{Success: true, Data: &envelope.Data}, nil
}

// decodeFailure passes the service's envelope through. A non-2xx status is never a success,
// and an envelope without an error block gets one naming the status.
func decodeFailure(statusCode int, statusText string, responseBody []byte) (AuditResponse, error) {
	var envelope AuditResponse
	if decodeError := json.Unmarshal(responseBody, &envelope); decodeError != nil {
		return AuditResponse{}, undecodableResponse(statusCode, statusText, decodeError)
	}
	envelope.Success = false
	envelope.Data = nil
	if envelope.Error == nil {
		envelope.Error = &AuditError{Message: statusText}
	}
	return envelope, nil
}

func undecodableResponse(statusCode int, statusText string, decodeError error) error {
	if failure.IsKind(decodeError, failure.KindUnexpectedServer) {
		return decodeError
	}
	return failure.Wrapf(failure.KindUnexpectedServer, decodeError, undecodableResponseTemplate, statusCode, statusText, decodeError.Error())
}
