package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResponseHeader(t *testing.T) {
	resp := &Response{
		Headers: map[string]string{
			"Content-Type": "multipart/mixed; boundary=b1",
			"x-request-id": "abc",
		},
	}

	tests := []struct {
		name   string
		lookup string
		want   string
	}{
		{name: "exact match", lookup: "Content-Type", want: "multipart/mixed; boundary=b1"},
		{name: "case insensitive match", lookup: "content-type", want: "multipart/mixed; boundary=b1"},
		{name: "mixed case lookup", lookup: "X-Request-Id", want: "abc"},
		{name: "missing header", lookup: "ETag", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resp.Header(tt.lookup))
		})
	}
}
