// Package testutil provides helpers for constructing synthetic batch
// response envelopes in tests, both the multipart/mixed and the flat
// JSON shapes.
package testutil

import (
	"encoding/json"
	"fmt"
	"strings"
)

const crlf = "\r\n"

// ResponsePart describes one sub-response to embed in a synthetic
// multipart envelope.
type ResponsePart struct {
	Status     int
	StatusText string
	ContentID  string
	Body       string
}

// MultipartResponse builds a multipart/mixed batch response envelope
// with the given boundary. Entries may be ResponsePart values or
// ChangesetPart values; they are emitted in order and closed with the
// required terminator.
func MultipartResponse(boundary string, entries ...interface{}) string {
	var buf strings.Builder
	for _, entry := range entries {
		buf.WriteString("--" + boundary + crlf)
		switch e := entry.(type) {
		case ResponsePart:
			writeResponsePart(&buf, e)
		case ChangesetPart:
			writeChangesetPart(&buf, e)
		default:
			panic(fmt.Sprintf("testutil: unsupported entry type %T", entry))
		}
	}
	buf.WriteString("--" + boundary + "--")
	return buf.String()
}

// ChangesetPart describes a nested changeset response with its own
// boundary and member parts.
type ChangesetPart struct {
	Boundary string
	Parts    []ResponsePart
}

func writeChangesetPart(buf *strings.Builder, cs ChangesetPart) {
	buf.WriteString("Content-Type: multipart/mixed; boundary=" + cs.Boundary + crlf)
	buf.WriteString(crlf)
	for _, part := range cs.Parts {
		buf.WriteString("--" + cs.Boundary + crlf)
		writeResponsePart(buf, part)
	}
	buf.WriteString("--" + cs.Boundary + "--" + crlf)
}

func writeResponsePart(buf *strings.Builder, part ResponsePart) {
	buf.WriteString("Content-Type: application/http" + crlf)
	buf.WriteString("Content-Transfer-Encoding: binary" + crlf)
	if part.ContentID != "" {
		buf.WriteString("Content-ID: " + part.ContentID + crlf)
	}
	buf.WriteString(crlf)

	statusText := part.StatusText
	if statusText == "" {
		statusText = "OK"
	}
	buf.WriteString(fmt.Sprintf("HTTP/1.1 %d %s%s", part.Status, statusText, crlf))
	if part.Body != "" {
		buf.WriteString("Content-Type: application/json" + crlf)
	}
	buf.WriteString(crlf)
	if part.Body != "" {
		buf.WriteString(part.Body + crlf)
	}
}

// JSONResponseItem is one entry of a synthetic flat JSON batch response.
type JSONResponseItem struct {
	ID             string            `json:"id"`
	Status         int               `json:"status"`
	Headers        map[string]string `json:"headers,omitempty"`
	Body           interface{}       `json:"body,omitempty"`
	AtomicityGroup string            `json:"atomicityGroup,omitempty"`
}

// JSONResponse builds a flat JSON batch response envelope.
func JSONResponse(items ...JSONResponseItem) []byte {
	encoded, err := json.Marshal(map[string]interface{}{"responses": items})
	if err != nil {
		panic(fmt.Sprintf("testutil: cannot encode response: %v", err))
	}
	return encoded
}
