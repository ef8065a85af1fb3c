// Package mock provides a scripted transport.Transport for testing
// batch execution without a server.
package mock

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/joepjoosten/odata-effect-sub000/transport"
)

// Transport implements transport.Transport with scripted responses.
// Responses and errors are consumed in FIFO order; when the script is
// exhausted the last configured response is repeated.
type Transport struct {
	mu        sync.Mutex
	responses []*transport.Response
	errs      []error
	delay     time.Duration
	closed    bool

	executeCalls atomic.Int32
	closeCalls   atomic.Int32
	history      []transport.Request
}

// New creates an empty mock transport. Configure it with the With*
// methods before use.
func New() *Transport {
	return &Transport{}
}

// WithResponse queues a scripted response.
func (m *Transport) WithResponse(resp *transport.Response) *Transport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
	return m
}

// WithError queues an error returned instead of a response.
func (m *Transport) WithError(err error) *Transport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs = append(m.errs, err)
	return m
}

// WithDelay adds a delay before each Execute returns, for exercising
// context cancellation.
func (m *Transport) WithDelay(delay time.Duration) *Transport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = delay
	return m
}

// Execute returns the next scripted error or response, recording the
// request for later inspection.
func (m *Transport) Execute(ctx context.Context, req transport.Request) (*transport.Response, error) {
	m.executeCalls.Add(1)

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, fmt.Errorf("transport is closed")
	}
	m.history = append(m.history, req)
	var scriptedErr error
	if len(m.errs) > 0 {
		scriptedErr = m.errs[0]
		m.errs = m.errs[1:]
	}
	var resp *transport.Response
	if scriptedErr == nil {
		if len(m.responses) == 0 {
			m.mu.Unlock()
			return nil, fmt.Errorf("mock transport has no scripted response")
		}
		resp = m.responses[0]
		if len(m.responses) > 1 {
			m.responses = m.responses[1:]
		}
	}
	delay := m.delay
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if scriptedErr != nil {
		return nil, scriptedErr
	}
	return resp, nil
}

// Close marks the transport closed; subsequent Execute calls fail.
func (m *Transport) Close() error {
	m.closeCalls.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// ExecuteCalls returns how many times Execute was invoked.
func (m *Transport) ExecuteCalls() int {
	return int(m.executeCalls.Load())
}

// History returns the requests seen so far, in order.
func (m *Transport) History() []transport.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]transport.Request, len(m.history))
	copy(out, m.history)
	return out
}

// LastRequest returns the most recent request, or nil if none.
func (m *Transport) LastRequest() *transport.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.history) == 0 {
		return nil
	}
	req := m.history[len(m.history)-1]
	return &req
}
