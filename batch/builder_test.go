package batch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderSinglePost(t *testing.T) {
	ops := NewBuilder().
		Post("Products", map[string]interface{}{"name": "Test"}).
		Operations()

	require.Len(t, ops, 1)
	cs, ok := ops[0].(*Changeset)
	require.True(t, ok, "expected a changeset, got %T", ops[0])
	require.Len(t, cs.Requests, 1)
	assert.Equal(t, MethodPost, cs.Requests[0].Method)
	assert.Equal(t, "Products", cs.Requests[0].URL)
}

func TestBuilderGrouping(t *testing.T) {
	tests := []struct {
		name  string
		build func(b *Builder)
		want  []string // "request" or "changeset(N)"
	}{
		{
			name: "consecutive mutations fold into one changeset",
			build: func(b *Builder) {
				b.Post("Products", nil).Patch("Products(1)", nil).Delete("Products(2)")
			},
			want: []string{"changeset(3)"},
		},
		{
			name: "get interrupts the run",
			build: func(b *Builder) {
				b.Post("Products", nil).Get("Categories").Post("Products", nil)
			},
			want: []string{"changeset(1)", "request", "changeset(1)"},
		},
		{
			name: "leading get stays standalone",
			build: func(b *Builder) {
				b.Get("Products").Post("Products", nil).Put("Products(1)", nil)
			},
			want: []string{"request", "changeset(2)"},
		},
		{
			name: "merge and delete group like other mutations",
			build: func(b *Builder) {
				b.Merge("Products(1)", nil).Delete("Products(2)").Get("Products")
			},
			want: []string{"changeset(2)", "request"},
		},
		{
			name: "explicit changeset seals the group",
			build: func(b *Builder) {
				b.BeginChangeset().
					Post("Products", nil).
					Post("Categories", nil).
					End().
					Post("Suppliers", nil)
			},
			want: []string{"changeset(2)", "changeset(1)"},
		},
		{
			name: "injected request closes the open group",
			build: func(b *Builder) {
				b.Post("Products", nil).
					AddRequest(&Request{ID: "custom", Method: MethodGet, URL: "Regions"}).
					Post("Products", nil)
			},
			want: []string{"changeset(1)", "request", "changeset(1)"},
		},
		{
			name: "injected changeset is sealed",
			build: func(b *Builder) {
				b.AddChangeset(&Changeset{ID: "pre", Requests: []*Request{
					{ID: "pre_0", Method: MethodPost, URL: "Products"},
				}}).Post("Categories", nil)
			},
			want: []string{"changeset(1)", "changeset(1)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder()
			tt.build(b)
			ops := b.Operations()
			require.Len(t, ops, len(tt.want))
			for i, shape := range tt.want {
				switch op := ops[i].(type) {
				case *Request:
					assert.Equal(t, "request", shape, "operation %d", i)
				case *Changeset:
					assert.Equal(t, shapeOf(op), shape, "operation %d", i)
				}
			}
		})
	}
}

func shapeOf(cs *Changeset) string {
	switch len(cs.Requests) {
	case 1:
		return "changeset(1)"
	case 2:
		return "changeset(2)"
	case 3:
		return "changeset(3)"
	default:
		return "changeset(n)"
	}
}

func TestBuilderIDsAreUnique(t *testing.T) {
	b := NewBuilder()
	b.Get("A").Post("B", nil).Post("C", nil).Get("D").Delete("E")

	seen := make(map[string]bool)
	for _, op := range b.Operations() {
		switch o := op.(type) {
		case *Request:
			assert.False(t, seen[o.ID], "duplicate id %s", o.ID)
			seen[o.ID] = true
		case *Changeset:
			assert.False(t, seen[o.ID], "duplicate id %s", o.ID)
			seen[o.ID] = true
			for _, req := range o.Requests {
				assert.False(t, seen[req.ID], "duplicate id %s", req.ID)
				seen[req.ID] = true
			}
		}
	}
}

func TestBuilderChangesetScopedIDs(t *testing.T) {
	b := NewBuilder()
	cs := b.BeginChangeset()
	cs.Post("Products", nil).Post("Categories", nil)
	cs.End()

	ops := b.Operations()
	require.Len(t, ops, 1)
	group := ops[0].(*Changeset)
	require.Len(t, group.Requests, 2)
	assert.Equal(t, group.ID+"_request_0", group.Requests[0].ID)
	assert.Equal(t, group.ID+"_request_1", group.Requests[1].ID)
}

func TestBuilderOperationsIdempotent(t *testing.T) {
	b := NewBuilder()
	b.Post("Products", nil).Get("Categories")

	first := b.Operations()
	second := b.Operations()
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Same(t, first[i], second[i])
	}
}

func TestBuilderEmptyExplicitChangesetDropped(t *testing.T) {
	b := NewBuilder()
	b.BeginChangeset().End()
	assert.Empty(t, b.Operations())
}

func TestBuilderEndTwiceIsNoop(t *testing.T) {
	b := NewBuilder()
	cs := b.BeginChangeset()
	cs.Post("Products", nil)
	cs.End()
	cs.End()
	assert.Len(t, b.Operations(), 1)
}

func TestBuilderMergesHeaders(t *testing.T) {
	b := NewBuilder()
	b.Get("Products",
		map[string]string{"If-None-Match": "abc"},
		map[string]string{"Prefer": "odata.maxpagesize=10"},
	)

	req := b.Operations()[0].(*Request)
	assert.Equal(t, "abc", req.Headers["If-None-Match"])
	assert.Equal(t, "odata.maxpagesize=10", req.Headers["Prefer"])
}
