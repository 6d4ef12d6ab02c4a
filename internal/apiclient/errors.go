package apiclient

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrUnauthorized matches any rejection carrying code 401, envelope or HTTP.
var ErrUnauthorized = errors.New("unauthorized")

// ServerError is a request the server answered but rejected.
type ServerError struct {
	HTTPStatus int
	Code       int
	Message    string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server rejected request: code=%d message=%s", e.Code, e.Message)
}

func (e *ServerError) Is(target error) bool {
	return target == ErrUnauthorized && (e.Code == 401 || e.HTTPStatus == 401)
}

// TransportError means no response was received.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "network connection failed: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

// ValidationError is raised locally, before any request is sent.
type ValidationError struct {
	Op     string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Op + ": " + e.Reason
}

func Invalid(op, reason string) error {
	return &ValidationError{Op: op, Reason: reason}
}

// UserMessage is the transient notification text for err.
func UserMessage(err error) string {
	var se *ServerError
	if errors.As(err, &se) {
		if se.Message != "" {
			return se.Message
		}
		return "request failed"
	}
	var te *TransportError
	if errors.As(err, &te) {
		return "network connection failed, please check the network"
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	return "request failed"
}

func httpStatusMessage(status int, serverMsg string) string {
	switch status {
	case 400:
		return "bad request parameters"
	case 401:
		return "unauthorized, please log in again"
	case 403:
		return "access denied"
	case 404:
		return "requested resource does not exist"
	case 500:
		return "internal server error"
	case 502:
		return "bad gateway"
	case 503:
		return "service unavailable"
	case 504:
		return "gateway timeout"
	}
	if serverMsg != "" {
		return serverMsg
	}
	return fmt.Sprintf("request failed (%d)", status)
}
