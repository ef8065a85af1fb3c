// Package httpclient provides the net/http backed Transport used to
// reach real services. It is a thin adapter: request shaping, batch
// encoding, and response decoding all happen above it.
package httpclient

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/joepjoosten/odata-effect-sub000/transport"
)

// Options configures the HTTP transport.
type Options struct {
	// Timeout applies to each request when the caller's context has no
	// earlier deadline. Default: 30s.
	Timeout time.Duration

	// Client overrides the underlying http.Client. If nil, a client
	// with default settings is used.
	Client *http.Client
}

// Transport is an HTTP-backed implementation of transport.Transport.
type Transport struct {
	client  *http.Client
	timeout time.Duration

	totalRequests atomic.Int64
	totalErrors   atomic.Int64
	bytesSent     atomic.Int64
	bytesReceived atomic.Int64
}

// New creates an HTTP transport with the given options. A nil opts
// uses defaults.
func New(opts *Options) *Transport {
	t := &Transport{
		client:  http.DefaultClient,
		timeout: 30 * time.Second,
	}
	if opts != nil {
		if opts.Client != nil {
			t.client = opts.Client
		}
		if opts.Timeout > 0 {
			t.timeout = opts.Timeout
		}
	}
	return t
}

// Execute performs the request, bounded by the caller's context or the
// configured timeout, whichever expires first.
func (t *Transport) Execute(ctx context.Context, req transport.Request) (*transport.Response, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline && t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	var body io.Reader
	if req.Body != "" {
		body = strings.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		t.totalErrors.Add(1)
		return nil, err
	}
	for name, value := range req.Headers {
		httpReq.Header.Set(name, value)
	}

	t.totalRequests.Add(1)
	t.bytesSent.Add(int64(len(req.Body)))

	httpResp, err := t.client.Do(httpReq)
	if err != nil {
		t.totalErrors.Add(1)
		return nil, err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		t.totalErrors.Add(1)
		return nil, err
	}
	t.bytesReceived.Add(int64(len(respBody)))

	headers := make(map[string]string, len(httpResp.Header))
	for name := range httpResp.Header {
		headers[name] = httpResp.Header.Get(name)
	}

	// httpResp.Status is "200 OK"; keep only the reason phrase.
	statusText := httpResp.Status
	if i := strings.IndexByte(statusText, ' '); i >= 0 {
		statusText = statusText[i+1:]
	}

	return &transport.Response{
		Status:     httpResp.StatusCode,
		StatusText: statusText,
		Headers:    headers,
		Body:       string(respBody),
	}, nil
}

// Close releases idle connections held by the underlying client.
func (t *Transport) Close() error {
	t.client.CloseIdleConnections()
	return nil
}

// GetMetrics returns a snapshot of the transport counters.
func (t *Transport) GetMetrics() transport.Metrics {
	return transport.Metrics{
		TotalRequests: t.totalRequests.Load(),
		TotalErrors:   t.totalErrors.Load(),
		BytesSent:     t.bytesSent.Load(),
		BytesReceived: t.bytesReceived.Load(),
	}
}
