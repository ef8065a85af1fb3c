// Package mapper decodes batch sub-response bodies into caller-typed
// values. Decode mismatches are expected when interpreting server data
// against a caller-chosen shape, so they are returned as error values,
// never panics.
package mapper

import (
	"encoding/json"
	"fmt"

	"github.com/joepjoosten/odata-effect-sub000/batch"
)

// DecodeError indicates a sub-response body did not match the expected
// shape.
type DecodeError struct {
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("decode failed: %s (caused by: %s)", e.Message, e.Cause.Error())
	}
	return fmt.Sprintf("decode failed: %s", e.Message)
}

// Unwrap returns the underlying cause.
func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// DecodeBody decodes the response body into T. The body must have been
// parsed from JSON by a batch codec; a nil body or a shape mismatch
// yields a DecodeError.
func DecodeBody[T any](resp *batch.Response) (T, error) {
	var zero T
	if resp == nil {
		return zero, &DecodeError{Message: "response is nil"}
	}
	return decodeValue[T](resp.Body)
}

// DecodeBodyV2 decodes the response body of a protocol version 2
// service into T, unwrapping the "d" envelope those services put
// around every payload. A body without the envelope is decoded as is.
func DecodeBodyV2[T any](resp *batch.Response) (T, error) {
	var zero T
	if resp == nil {
		return zero, &DecodeError{Message: "response is nil"}
	}

	body := resp.Body
	if wrapped, ok := body.(map[string]interface{}); ok {
		if inner, ok := wrapped["d"]; ok {
			body = inner
		}
	}
	return decodeValue[T](body)
}

// DecodeBodyWith decodes the response body using a caller-supplied
// decoder.
func DecodeBodyWith[T any](resp *batch.Response, decode func(interface{}) (T, error)) (T, error) {
	var zero T
	if resp == nil {
		return zero, &DecodeError{Message: "response is nil"}
	}
	value, err := decode(resp.Body)
	if err != nil {
		return zero, &DecodeError{Message: "decoder rejected body", Cause: err}
	}
	return value, nil
}

// decodeValue re-marshals the stored JSON value into the target type.
func decodeValue[T any](body interface{}) (T, error) {
	var target T
	if body == nil {
		return target, &DecodeError{Message: "response has no body"}
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return target, &DecodeError{Message: "body is not JSON-encodable", Cause: err}
	}

	if err := json.Unmarshal(raw, &target); err != nil {
		return target, &DecodeError{
			Message: fmt.Sprintf("body does not match %T", target),
			Cause:   err,
		}
	}
	return target, nil
}
