package protocol

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// newBoundary generates a MIME boundary token with the given prefix.
// Two calls never produce equal strings.
func newBoundary(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, uuid.New().String())
}

// ExtractBoundary pulls the boundary token out of a multipart
// Content-Type header value. Servers are not required to echo the
// boundary sent in the request, so response parsing must use the
// response's own token. The token may be bare or double-quoted.
func ExtractBoundary(contentType string) (string, error) {
	for _, part := range strings.Split(contentType, ";") {
		part = strings.TrimSpace(part)
		if !strings.HasPrefix(strings.ToLower(part), "boundary=") {
			continue
		}
		token := part[len("boundary="):]
		token = strings.Trim(token, `"`)
		if token == "" {
			break
		}
		return token, nil
	}
	return "", ParseFailed(fmt.Sprintf("no boundary in content type %q", contentType), nil)
}
