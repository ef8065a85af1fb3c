package client

import (
	"strings"

	"github.com/rs/zerolog"
)

// ConnectionConfig identifies the service a batch is sent to.
type ConnectionConfig struct {
	// BaseURL is the scheme and host, e.g. "https://services.example.com".
	BaseURL string

	// ServicePath is the service root path, e.g. "/V2/Northwind/Northwind.svc/".
	// A missing leading or trailing slash is tolerated.
	ServicePath string
}

// BatchURL returns the absolute URL of the service's $batch endpoint.
func (c ConnectionConfig) BatchURL() string {
	base := strings.TrimSuffix(c.BaseURL, "/")
	path := c.ServicePath
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}
	return base + path + "$batch"
}

// Options configures the batch client behavior.
type Options struct {
	// Logger receives structured diagnostics.
	// If nil, logging is disabled.
	Logger *zerolog.Logger

	// DebugMode enables per-call envelope diagnostics (sizes and
	// fingerprints; payloads are never logged).
	// Default: false
	DebugMode bool
}

// DefaultOptions returns Options with default values.
func DefaultOptions() Options {
	return Options{
		DebugMode: false,
	}
}
