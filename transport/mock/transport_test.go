package mock

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joepjoosten/odata-effect-sub000/transport"
)

func TestScriptedResponsesInOrder(t *testing.T) {
	mt := New().
		WithResponse(&transport.Response{Status: 200, Body: "first"}).
		WithResponse(&transport.Response{Status: 202, Body: "second"})

	resp, err := mt.Execute(context.Background(), transport.Request{Method: "POST", URL: "http://x"})
	require.NoError(t, err)
	assert.Equal(t, "first", resp.Body)

	resp, err = mt.Execute(context.Background(), transport.Request{Method: "POST", URL: "http://x"})
	require.NoError(t, err)
	assert.Equal(t, "second", resp.Body)

	// The last response repeats once the script runs out.
	resp, err = mt.Execute(context.Background(), transport.Request{Method: "POST", URL: "http://x"})
	require.NoError(t, err)
	assert.Equal(t, "second", resp.Body)

	assert.Equal(t, 3, mt.ExecuteCalls())
	assert.Len(t, mt.History(), 3)
}

func TestScriptedErrorConsumedFirst(t *testing.T) {
	mt := New().
		WithError(fmt.Errorf("boom")).
		WithResponse(&transport.Response{Status: 200})

	_, err := mt.Execute(context.Background(), transport.Request{})
	require.EqualError(t, err, "boom")

	resp, err := mt.Execute(context.Background(), transport.Request{})
	require.NoError(t, err)
	assert.Equal(t, 200, resp.Status)
}

func TestExecuteWithoutScriptFails(t *testing.T) {
	_, err := New().Execute(context.Background(), transport.Request{})
	require.Error(t, err)
}

func TestExecuteAfterCloseFails(t *testing.T) {
	mt := New().WithResponse(&transport.Response{Status: 200})
	require.NoError(t, mt.Close())

	_, err := mt.Execute(context.Background(), transport.Request{})
	require.Error(t, err)
}

func TestDelayHonorsCancellation(t *testing.T) {
	mt := New().
		WithResponse(&transport.Response{Status: 200}).
		WithDelay(time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := mt.Execute(ctx, transport.Request{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLastRequest(t *testing.T) {
	mt := New().WithResponse(&transport.Response{Status: 200})
	assert.Nil(t, mt.LastRequest())

	_, err := mt.Execute(context.Background(), transport.Request{Method: "POST", URL: "http://x/$batch"})
	require.NoError(t, err)

	req := mt.LastRequest()
	require.NotNil(t, req)
	assert.Equal(t, "http://x/$batch", req.URL)
}
