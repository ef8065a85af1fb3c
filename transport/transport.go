// Package transport defines the transport layer abstraction used to
// carry a serialized batch to the $batch endpoint. The core never
// performs HTTP itself; it hands a fully-formed request to a Transport
// and decodes whatever comes back.
package transport

import (
	"context"
	"strings"
)

// Request is one HTTP request as seen by the transport collaborator.
// URL is absolute; Body is the serialized envelope (empty for GET).
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    string
}

// Response is the raw result of a transport call. Headers are as
// received from the server; Body is the undecoded response text.
type Response struct {
	Status     int
	StatusText string
	Headers    map[string]string
	Body       string
}

// Header returns the named response header, matching case-insensitively.
func (r *Response) Header(name string) string {
	if v, ok := r.Headers[name]; ok {
		return v
	}
	lower := strings.ToLower(name)
	for k, v := range r.Headers {
		if strings.ToLower(k) == lower {
			return v
		}
	}
	return ""
}

// Transport executes one HTTP request. Cancellation and timeouts are
// the transport's responsibility, driven by the supplied context; the
// batch core carries no timeout logic of its own.
type Transport interface {
	// Execute performs the request and returns the raw response.
	Execute(ctx context.Context, req Request) (*Response, error)

	// Close releases any resources held by the transport.
	Close() error
}

// Metrics contains basic counters a transport may expose.
type Metrics struct {
	// TotalRequests is the total number of requests executed.
	TotalRequests int64

	// TotalErrors is the total number of failed requests.
	TotalErrors int64

	// BytesSent is the total request body bytes sent.
	BytesSent int64

	// BytesReceived is the total response body bytes received.
	BytesReceived int64
}
