package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joepjoosten/odata-effect-sub000/transport"
)

func TestExecute(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "multipart/mixed; boundary=b1", r.Header.Get("Content-Type"))
		assert.Equal(t, "payload", string(body))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	tr := New(nil)
	resp, err := tr.Execute(context.Background(), transport.Request{
		Method:  http.MethodPost,
		URL:     server.URL,
		Headers: map[string]string{"Content-Type": "multipart/mixed; boundary=b1"},
		Body:    "payload",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, resp.Status)
	assert.Equal(t, "Accepted", resp.StatusText)
	assert.Equal(t, "application/json", resp.Header("Content-Type"))
	assert.Equal(t, `{"ok":true}`, resp.Body)

	metrics := tr.GetMetrics()
	assert.Equal(t, int64(1), metrics.TotalRequests)
	assert.Equal(t, int64(len("payload")), metrics.BytesSent)
	assert.Equal(t, int64(len(`{"ok":true}`)), metrics.BytesReceived)
}

func TestExecuteContextCancellation(t *testing.T) {
	block := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer server.Close()
	defer close(block)

	tr := New(&Options{Timeout: time.Minute})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := tr.Execute(ctx, transport.Request{Method: http.MethodGet, URL: server.URL})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	metrics := tr.GetMetrics()
	assert.Equal(t, int64(1), metrics.TotalErrors)
}

func TestExecuteRejectsBadURL(t *testing.T) {
	tr := New(nil)
	_, err := tr.Execute(context.Background(), transport.Request{
		Method: "GET",
		URL:    "://not-a-url",
	})
	require.Error(t, err)
}
