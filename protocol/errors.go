// Package protocol provides error types for the OData $batch wire formats
package protocol

import "fmt"

// ErrorCode identifies the failure class of a BatchError.
type ErrorCode string

const (
	// ErrorCodeTransport wraps a failure of the transport collaborator.
	ErrorCodeTransport ErrorCode = "TRANSPORT_FAILED"

	// ErrorCodeSerialize indicates a batch could not be encoded.
	ErrorCodeSerialize ErrorCode = "SERIALIZE_FAILED"

	// ErrorCodeParse indicates a response envelope could not be decoded.
	ErrorCodeParse ErrorCode = "PARSE_FAILED"

	// ErrorCodeHTTPStatus indicates the $batch call itself returned a
	// non-success status before any sub-response could be read.
	ErrorCodeHTTPStatus ErrorCode = "BATCH_HTTP_STATUS"
)

// BatchError is the protocol-level error surfaced by batch execution
// and parsing. It always carries the original cause when one exists;
// callers never see a raw transport error from a batch call.
type BatchError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Cause   error
}

// Error implements the error interface.
func (e *BatchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %s)", e.Code, e.Message, e.Cause.Error())
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is and errors.As.
func (e *BatchError) Unwrap() error {
	return e.Cause
}

// NewBatchError creates a BatchError with the given code and cause.
func NewBatchError(code ErrorCode, message string, cause error) *BatchError {
	return &BatchError{Code: code, Message: message, Cause: cause}
}

// TransportFailed wraps a transport-layer failure as a protocol error.
func TransportFailed(cause error) *BatchError {
	return NewBatchError(ErrorCodeTransport, "batch transport call failed", cause)
}

// ParseFailed wraps an envelope decoding failure as a protocol error.
func ParseFailed(message string, cause error) *BatchError {
	return NewBatchError(ErrorCodeParse, message, cause)
}
