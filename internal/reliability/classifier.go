// Package reliability holds the error taxonomy shared by remote AI collaborators.
package reliability

import (
	"errors"
	"fmt"
)

var (
	// ErrTimeout reports that a remote operation did not finish within its deadline.
	ErrTimeout = errors.New("remote operation timed out")
	// ErrEmptyResult reports a successful remote call that produced nothing usable.
	ErrEmptyResult = errors.New("remote operation returned empty result")
	// ErrMalformedResponse reports model output that could not be parsed.
	ErrMalformedResponse = errors.New("malformed model response")
	// ErrConfigurationMissing reports that credentials or endpoints are not configured.
	ErrConfigurationMissing = errors.New("remote service not configured")
)

// RemoteError is a failure reported by an upstream service, either as an HTTP
// status or as a realtime channel close/error code.
type RemoteError struct {
	Service string
	Code    int
	Message string
}

func (e *RemoteError) Error() string {
	if e.Service == "" {
		return fmt.Sprintf("remote error %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s error %d: %s", e.Service, e.Code, e.Message)
}

// Retryable reports whether the remote error is worth retrying at a higher layer.
func (e *RemoteError) Retryable() bool {
	return IsRetryableHTTPStatus(e.Code)
}

// IsRetryableHTTPStatus classifies retryable HTTP status codes.
func IsRetryableHTTPStatus(code int) bool {
	switch code {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

// Code returns a short machine-readable label for err, used as a metric label
// and as the error code in HTTP responses.
func Code(err error) string {
	var remote *RemoteError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrEmptyResult):
		return "empty_result"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed_response"
	case errors.Is(err, ErrConfigurationMissing):
		return "not_configured"
	case errors.As(err, &remote):
		return "remote_error"
	default:
		return "internal"
	}
}
