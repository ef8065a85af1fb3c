// Package client provides the execution entry points that send a built
// batch through a transport collaborator and decode the composite
// response back into per-request results.
package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cespare/xxhash"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/joepjoosten/odata-effect-sub000/batch"
	"github.com/joepjoosten/odata-effect-sub000/protocol"
	"github.com/joepjoosten/odata-effect-sub000/transport"
)

// BatchClient executes batches against one service's $batch endpoint.
// It is safe for concurrent use as long as the underlying transport is.
type BatchClient struct {
	transport transport.Transport
	config    ConnectionConfig
	opts      Options
	logger    zerolog.Logger
}

// NewBatchClient creates a batch client over the given transport and
// connection configuration. If opts is nil, default options are used.
func NewBatchClient(t transport.Transport, config ConnectionConfig, opts *Options) *BatchClient {
	if opts == nil {
		defaultOpts := DefaultOptions()
		opts = &defaultOpts
	}

	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	return &BatchClient{
		transport: t,
		config:    config,
		opts:      *opts,
		logger:    logger,
	}
}

// ExecuteBatchV2 sends the operations as a protocol version 2
// multipart/mixed envelope and parses the multipart response. Every
// transport failure is wrapped as a *protocol.BatchError; individual
// sub-request failures are returned as data, never as errors.
func (c *BatchClient) ExecuteBatchV2(ctx context.Context, ops []batch.Operation) ([]batch.OperationResponse, error) {
	return c.executeMultipart(ctx, ops)
}

// ExecuteBatchV4Multipart sends the operations to a protocol version 4
// service using the multipart wire format, which v4 services accept
// alongside the JSON format.
func (c *BatchClient) ExecuteBatchV4Multipart(ctx context.Context, ops []batch.Operation) ([]batch.OperationResponse, error) {
	return c.executeMultipart(ctx, ops)
}

// ExecuteBatchV4JSON sends the operations as a flat JSON batch and
// parses the JSON response, regrouping atomicity groups into changeset
// responses.
func (c *BatchClient) ExecuteBatchV4JSON(ctx context.Context, ops []batch.Operation) ([]batch.OperationResponse, error) {
	body, err := protocol.SerializeBatchV4JSON(ops)
	if err != nil {
		return nil, err
	}

	resp, err := c.post(ctx, string(body), map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
	})
	if err != nil {
		return nil, err
	}

	return protocol.ParseBatchResponseV4JSON([]byte(resp.Body))
}

func (c *BatchClient) executeMultipart(ctx context.Context, ops []batch.Operation) ([]batch.OperationResponse, error) {
	envelope, err := protocol.SerializeBatchMultipart(ops, c.config.ServicePath)
	if err != nil {
		return nil, err
	}

	resp, err := c.post(ctx, envelope.Body, map[string]string{
		"Content-Type": envelope.ContentType(),
		"Accept":       "multipart/mixed",
	})
	if err != nil {
		return nil, err
	}

	// Servers are not required to echo the request boundary; the
	// response's own Content-Type is authoritative.
	boundary, err := protocol.ExtractBoundary(resp.Header("Content-Type"))
	if err != nil {
		return nil, err
	}

	return protocol.ParseBatchResponseMultipart(resp.Body, boundary)
}

func (c *BatchClient) post(ctx context.Context, body string, headers map[string]string) (*transport.Response, error) {
	url := c.config.BatchURL()
	traceID := uuid.New().String()

	if c.opts.DebugMode {
		c.logger.Debug().
			Str("trace_id", traceID).
			Str("url", url).
			Int("body_bytes", len(body)).
			Str("body_hash", fmt.Sprintf("%016x", xxhash.Sum64String(body))).
			Msg("sending batch request")
	}

	resp, err := c.transport.Execute(ctx, transport.Request{
		Method:  http.MethodPost,
		URL:     url,
		Headers: headers,
		Body:    body,
	})
	if err != nil {
		c.logger.Error().
			Str("trace_id", traceID).
			Err(err).
			Msg("batch transport call failed")
		return nil, protocol.TransportFailed(err)
	}

	if resp.Status < 200 || resp.Status >= 300 {
		c.logger.Error().
			Str("trace_id", traceID).
			Int("status", resp.Status).
			Msg("batch call rejected")
		return nil, protocol.NewBatchError(protocol.ErrorCodeHTTPStatus,
			fmt.Sprintf("batch call returned status %d", resp.Status), nil)
	}

	if c.opts.DebugMode {
		c.logger.Debug().
			Str("trace_id", traceID).
			Int("status", resp.Status).
			Int("body_bytes", len(resp.Body)).
			Msg("batch response received")
	}

	return resp, nil
}
