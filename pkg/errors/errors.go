package errors

import (
	"errors"
	"fmt"
)

// ErrorCategory represents the category of a panel client failure
type ErrorCategory string

const (
	CategoryNone       ErrorCategory = "none"
	CategoryValidation ErrorCategory = "validation"
	CategoryProtocol   ErrorCategory = "protocol"
	CategoryRemote     ErrorCategory = "remote"
	CategoryTransport  ErrorCategory = "transport"
	CategoryUnknown    ErrorCategory = "unknown"
)

// ValidationError represents a missing or invalid request option.
// It is always returned before any request reaches the panel.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// Category implements categorized
func (e *ValidationError) Category() ErrorCategory { return CategoryValidation }

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// ProtocolError means the panel answered with a body that does not have the
// shape expected for the endpoint (missing root element, not JSON, ...).
type ProtocolError struct {
	Op          string
	Reason      string
	RawResponse string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s: unexpected panel response (%s): %q", e.Op, e.Reason, e.RawResponse)
}

// Category implements categorized
func (e *ProtocolError) Category() ErrorCategory { return CategoryProtocol }

// NewProtocolError creates a new protocol error
func NewProtocolError(op, reason, rawResponse string) *ProtocolError {
	return &ProtocolError{
		Op:          op,
		Reason:      reason,
		RawResponse: rawResponse,
	}
}

// RemoteError means the panel explicitly reported a non-success status.
// Fields holds every parsed field of the result element.
type RemoteError struct {
	Op            string
	Status        int
	StatusMessage string
	Fields        map[string]interface{}
	RawResponse   string
}

func (e *RemoteError) Error() string {
	if e.StatusMessage != "" {
		return fmt.Sprintf("%s: panel returned status %d: %s", e.Op, e.Status, e.StatusMessage)
	}
	return fmt.Sprintf("%s: panel returned status %d", e.Op, e.Status)
}

// Category implements categorized
func (e *RemoteError) Category() ErrorCategory { return CategoryRemote }

// NewRemoteError creates a new remote error
func NewRemoteError(op string, status int, statusMessage string, fields map[string]interface{}, rawResponse string) *RemoteError {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	return &RemoteError{
		Op:            op,
		Status:        status,
		StatusMessage: statusMessage,
		Fields:        fields,
		RawResponse:   rawResponse,
	}
}

// TransportError wraps a failure of the HTTP round trip itself: either the
// transport returned an error (Err set) or the panel answered with a
// non-2xx HTTP status (StatusCode and RawResponse set).
type TransportError struct {
	Op          string
	StatusCode  int
	RawResponse string
	Err         error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: request failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: panel returned HTTP %d", e.Op, e.StatusCode)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Category implements categorized
func (e *TransportError) Category() ErrorCategory { return CategoryTransport }

type categorized interface {
	Category() ErrorCategory
}

// CategoryOf classifies err, looking through wrapped errors.
func CategoryOf(err error) ErrorCategory {
	if err == nil {
		return CategoryNone
	}
	var c categorized
	if errors.As(err, &c) {
		return c.Category()
	}
	return CategoryUnknown
}

// RawResponse returns the untouched panel body carried by err, if any.
func RawResponse(err error) (string, bool) {
	var protoErr *ProtocolError
	if errors.As(err, &protoErr) {
		return protoErr.RawResponse, true
	}
	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) {
		return remoteErr.RawResponse, true
	}
	var transportErr *TransportError
	if errors.As(err, &transportErr) && transportErr.Err == nil {
		return transportErr.RawResponse, true
	}
	return "", false
}
