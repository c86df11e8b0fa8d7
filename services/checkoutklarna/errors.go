package checkoutklarna

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/MarcGrol/klarnacheckout/lib/mylog"
)

const ErrorDomain = "kco"

// GatewayError is returned for every failed call to Klarna. Messages is empty when Klarna did not
// explain the failure or when the request never reached Klarna.
type GatewayError struct {
	StatusCode    int
	CorrelationID string
	Messages      *multierror.Error
	Err           error
}

type errorResponse struct {
	ErrorCode     string   `json:"error_code"`
	ErrorMessages []string `json:"error_messages"`
	CorrelationID string   `json:"correlation_id"`
}

func newTransportError(err error) *GatewayError {
	return &GatewayError{Err: err}
}

// ExtractErrorMessages converts the body of a non-2xx Klarna response into a GatewayError
func ExtractErrorMessages(c context.Context, logger mylog.Logger, traceLabel string, statusCode int, body []byte) *GatewayError {
	gatewayErr := &GatewayError{StatusCode: statusCode}

	resp := errorResponse{}
	err := json.Unmarshal(body, &resp)
	if err != nil || len(resp.ErrorMessages) == 0 {
		return gatewayErr
	}

	logger.Log(c, traceLabel, mylog.SeverityWarn, "Klarna responded with status %d: %s", statusCode, string(body))

	gatewayErr.CorrelationID = resp.CorrelationID
	for _, msg := range resp.ErrorMessages {
		gatewayErr.Messages = multierror.Append(gatewayErr.Messages, errors.New(msg))
	}
	gatewayErr.Messages.ErrorFormat = joinMessages

	return gatewayErr
}

func joinMessages(errs []error) string {
	msgs := make([]string, 0, len(errs))
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

func (e *GatewayError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s: %s", ErrorDomain, e.Err)
	case e.MessageCount() > 0:
		return fmt.Sprintf("%s: status %d: %s", ErrorDomain, e.StatusCode, e.Messages.Error())
	default:
		return fmt.Sprintf("%s: status %d", ErrorDomain, e.StatusCode)
	}
}

func (e *GatewayError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	if e.Messages != nil {
		return e.Messages.ErrorOrNil()
	}
	return nil
}

func (e *GatewayError) MessageCount() int {
	if e.Messages == nil {
		return 0
	}
	return e.Messages.Len()
}

func (e *GatewayError) MessageList() []string {
	msgs := []string{}
	if e.Messages != nil {
		for _, err := range e.Messages.Errors {
			msgs = append(msgs, err.Error())
		}
	}
	return msgs
}

// Message is the text shown to the shopper
func (e *GatewayError) Message() string {
	if e.MessageCount() > 0 {
		return e.Messages.Errors[0].Error()
	}
	return e.Error()
}

// GetHTTPErrorCode lets myerrors.GetHTTPStatus map gateway failures onto 502
func (e *GatewayError) GetHTTPErrorCode() int {
	return http.StatusBadGateway
}
