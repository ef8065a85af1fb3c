// Package protocol implements the OData $batch wire formats: the
// multipart/mixed MIME envelope used by protocol version 2 (and
// optionally by version 4) and the flat JSON batch format introduced
// in version 4.
package protocol

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joepjoosten/odata-effect-sub000/batch"
)

const crlf = "\r\n"

// MultipartBody is a serialized batch envelope together with the
// boundary token separating its parts. The boundary must be echoed in
// the request's Content-Type header.
type MultipartBody struct {
	Body     string
	Boundary string
}

// ContentType returns the Content-Type header value for the envelope.
func (m *MultipartBody) ContentType() string {
	return fmt.Sprintf("multipart/mixed; boundary=%s", m.Boundary)
}

// SerializeBatchMultipart encodes the ordered operations into a
// multipart/mixed envelope. Each changeset becomes a nested
// multipart/mixed part with its own boundary, which is how the wire
// format expresses atomicity; standalone requests become plain parts.
// servicePath is prepended to every request URL so the embedded request
// lines are absolute relative to the service, not the host.
func SerializeBatchMultipart(ops []batch.Operation, servicePath string) (*MultipartBody, error) {
	boundary := newBoundary("batch")

	var buf strings.Builder
	for _, op := range ops {
		buf.WriteString("--" + boundary + crlf)
		switch o := op.(type) {
		case *batch.Request:
			if err := writeRequestPart(&buf, o, servicePath, false); err != nil {
				return nil, err
			}
		case *batch.Changeset:
			if err := writeChangesetPart(&buf, o, servicePath); err != nil {
				return nil, err
			}
		default:
			return nil, NewBatchError(ErrorCodeSerialize,
				fmt.Sprintf("unsupported operation type %T", op), nil)
		}
	}
	buf.WriteString("--" + boundary + "--")

	return &MultipartBody{Body: buf.String(), Boundary: boundary}, nil
}

func writeChangesetPart(buf *strings.Builder, cs *batch.Changeset, servicePath string) error {
	nested := newBoundary("changeset")

	buf.WriteString("Content-Type: multipart/mixed; boundary=" + nested + crlf)
	buf.WriteString(crlf)
	for _, req := range cs.Requests {
		buf.WriteString("--" + nested + crlf)
		if err := writeRequestPart(buf, req, servicePath, true); err != nil {
			return err
		}
	}
	buf.WriteString("--" + nested + "--" + crlf)
	return nil
}

func writeRequestPart(buf *strings.Builder, req *batch.Request, servicePath string, inChangeset bool) error {
	buf.WriteString("Content-Type: application/http" + crlf)
	buf.WriteString("Content-Transfer-Encoding: binary" + crlf)
	if inChangeset {
		// Content-ID lets the server echo the correlation id back.
		buf.WriteString("Content-ID: " + req.ID + crlf)
	}
	buf.WriteString(crlf)

	buf.WriteString(fmt.Sprintf("%s %s%s HTTP/1.1%s", req.Method, servicePath, req.URL, crlf))
	buf.WriteString("Accept: application/json" + crlf)
	if req.Body != nil {
		buf.WriteString("Content-Type: application/json" + crlf)
	}
	for _, name := range sortedHeaderNames(req.Headers) {
		buf.WriteString(name + ": " + req.Headers[name] + crlf)
	}
	buf.WriteString(crlf)

	if req.Body != nil {
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return NewBatchError(ErrorCodeSerialize,
				fmt.Sprintf("cannot encode body of request %s", req.ID), err)
		}
		buf.Write(encoded)
		buf.WriteString(crlf)
	}
	return nil
}

// sortedHeaderNames yields caller header names in a stable order so
// serialized envelopes are reproducible.
func sortedHeaderNames(headers map[string]string) []string {
	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseBatchResponseMultipart decodes a multipart/mixed batch response
// into ordered operation responses. The boundary must be the token the
// server actually used, taken from the response's own Content-Type
// header. Parts advertising a nested multipart/mixed content type are
// decoded as changeset responses; all other parts as standalone
// responses. Both CRLF and bare LF line endings are accepted.
func ParseBatchResponseMultipart(text, boundary string) ([]batch.OperationResponse, error) {
	parts := splitParts(splitLines(text), boundary)
	if len(parts) == 0 {
		return nil, ParseFailed(fmt.Sprintf("no parts found for boundary %q", boundary), nil)
	}

	responses := make([]batch.OperationResponse, 0, len(parts))
	for i, part := range parts {
		op, err := parsePart(part, i)
		if err != nil {
			return nil, err
		}
		responses = append(responses, op)
	}
	return responses, nil
}

// splitLines breaks the envelope into lines, tolerating CRLF and LF.
func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// splitParts groups the lines between boundary markers. The opening
// marker is "--boundary" on a line of its own; "--boundary--" closes
// the envelope. Content before the first marker and after the
// terminator is discarded.
func splitParts(lines []string, boundary string) [][]string {
	open := "--" + boundary
	terminator := open + "--"

	var parts [][]string
	var current []string
	inPart := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == terminator {
			if inPart && len(current) > 0 {
				parts = append(parts, current)
			}
			return parts
		}
		if trimmed == open {
			if inPart && len(current) > 0 {
				parts = append(parts, current)
			}
			current = nil
			inPart = true
			continue
		}
		if inPart {
			current = append(current, line)
		}
	}
	// Truncated envelope without its terminator: keep the in-flight
	// part rather than dropping the last response silently.
	if inPart && len(current) > 0 {
		parts = append(parts, current)
	}
	return parts
}

func parsePart(lines []string, index int) (batch.OperationResponse, error) {
	frameHeaders, rest := readHeaderBlock(lines)

	contentType := frameHeaders["content-type"]
	if strings.Contains(strings.ToLower(contentType), "multipart/mixed") {
		nested, err := ExtractBoundary(contentType)
		if err != nil {
			return nil, err
		}
		return parseChangesetPart(rest, nested, index)
	}
	return parseResponsePart(frameHeaders, rest)
}

func parseChangesetPart(lines []string, boundary string, index int) (batch.OperationResponse, error) {
	memberParts := splitParts(lines, boundary)
	members := make([]*batch.Response, 0, len(memberParts))
	success := true
	for _, part := range memberParts {
		frameHeaders, rest := readHeaderBlock(part)
		resp, err := parseResponsePart(frameHeaders, rest)
		if err != nil {
			return nil, err
		}
		if !resp.Success() {
			success = false
		}
		members = append(members, resp)
	}

	// The multipart format carries no changeset identifier, so the
	// decoded group is addressed by its position in the envelope.
	return &batch.ChangesetResponse{
		ID:        fmt.Sprintf("changeset_%d", index),
		Success:   success,
		Responses: members,
	}, nil
}

func parseResponsePart(frameHeaders map[string]string, lines []string) (*batch.Response, error) {
	// Skip to the embedded HTTP status line.
	pos := 0
	for pos < len(lines) && !strings.HasPrefix(lines[pos], "HTTP/1.") {
		pos++
	}
	if pos == len(lines) {
		return nil, ParseFailed("response part has no HTTP status line", nil)
	}

	status, text, err := parseStatusLine(lines[pos])
	if err != nil {
		return nil, err
	}

	headers, rest := readHeaderBlock(lines[pos+1:])
	body := parseBody(rest)

	id, ok := headers["content-id"]
	if !ok {
		id, ok = frameHeaders["content-id"]
	}
	if !ok || id == "" {
		// Servers are allowed to drop Content-ID entirely; without it
		// correlation degrades to response order.
		id = fmt.Sprintf("response_%d", time.Now().UnixNano())
	}

	return &batch.Response{
		ID:         id,
		Status:     status,
		StatusText: text,
		Headers:    headers,
		Body:       body,
	}, nil
}

// parseStatusLine decodes "HTTP/1.1 <code> <reason>". The reason phrase
// may be empty or contain spaces.
func parseStatusLine(line string) (int, string, error) {
	fields := strings.SplitN(strings.TrimSpace(line), " ", 3)
	if len(fields) < 2 {
		return 0, "", ParseFailed(fmt.Sprintf("malformed status line %q", line), nil)
	}
	status, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, "", ParseFailed(fmt.Sprintf("malformed status code in %q", line), err)
	}
	text := ""
	if len(fields) == 3 {
		text = strings.TrimSpace(fields[2])
	}
	if text == "" {
		text = StatusText(status)
	}
	return status, text, nil
}

// readHeaderBlock consumes "Name: value" lines up to the first blank
// line and returns the remaining lines. Header names are lowercased.
// A leading blank line is the boundary of an empty header block, so
// everything after it is content, not headers.
func readHeaderBlock(lines []string) (map[string]string, []string) {
	headers := make(map[string]string)
	pos := 0
	for pos < len(lines) {
		line := lines[pos]
		if strings.TrimSpace(line) == "" {
			pos++
			break
		}
		name, value, found := strings.Cut(line, ":")
		if !found {
			break
		}
		headers[strings.ToLower(strings.TrimSpace(name))] = strings.TrimSpace(value)
		pos++
	}
	return headers, lines[pos:]
}

// parseBody decodes the remaining part content. An empty remainder
// yields a nil body (204 No Content); invalid JSON falls back to the
// raw text.
func parseBody(lines []string) interface{} {
	content := strings.TrimSpace(strings.Join(lines, "\n"))
	if content == "" {
		return nil
	}
	var decoded interface{}
	if err := json.Unmarshal([]byte(content), &decoded); err != nil {
		return content
	}
	return decoded
}
