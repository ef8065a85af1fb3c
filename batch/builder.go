package batch

import "fmt"

// groupState tracks whether the tail of the operation sequence is a
// changeset that subsequent mutating calls may extend. Keeping this as
// an explicit cursor makes the grouping rule a visible state machine
// instead of an inspection of the accumulated slice.
type groupState int

const (
	noOpenGroup groupState = iota
	openGroup
)

// Builder accumulates batch operations in order. Mutating calls made
// back to back are folded into one implicit changeset; a GET, an
// injected operation, or an explicit changeset boundary closes the open
// group. A Builder is a single-owner object and is not safe for
// concurrent use.
type Builder struct {
	operations []Operation
	state      groupState
	reqSeq     int
	csSeq      int
}

// NewBuilder creates an empty batch builder.
func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) nextRequestID() string {
	id := fmt.Sprintf("request_%d", b.reqSeq)
	b.reqSeq++
	return id
}

func (b *Builder) nextChangesetID() string {
	id := fmt.Sprintf("changeset_%d", b.csSeq)
	b.csSeq++
	return id
}

// Get appends a standalone read request and closes any open changeset.
func (b *Builder) Get(url string, headers ...map[string]string) *Builder {
	b.operations = append(b.operations, &Request{
		ID:      b.nextRequestID(),
		Method:  MethodGet,
		URL:     url,
		Headers: mergeHeaders(headers),
	})
	b.state = noOpenGroup
	return b
}

// Post appends a POST request, extending the open changeset or opening
// a new one.
func (b *Builder) Post(url string, body interface{}, headers ...map[string]string) *Builder {
	return b.mutate(MethodPost, url, body, headers)
}

// Put appends a PUT request under the changeset grouping rule.
func (b *Builder) Put(url string, body interface{}, headers ...map[string]string) *Builder {
	return b.mutate(MethodPut, url, body, headers)
}

// Patch appends a PATCH request under the changeset grouping rule.
func (b *Builder) Patch(url string, body interface{}, headers ...map[string]string) *Builder {
	return b.mutate(MethodPatch, url, body, headers)
}

// Merge appends a MERGE request (the protocol v2 spelling of PATCH)
// under the changeset grouping rule.
func (b *Builder) Merge(url string, body interface{}, headers ...map[string]string) *Builder {
	return b.mutate(MethodMerge, url, body, headers)
}

// Delete appends a DELETE request under the changeset grouping rule.
func (b *Builder) Delete(url string, headers ...map[string]string) *Builder {
	return b.mutate(MethodDelete, url, nil, headers)
}

func (b *Builder) mutate(method Method, url string, body interface{}, headers []map[string]string) *Builder {
	req := &Request{
		ID:      b.nextRequestID(),
		Method:  method,
		URL:     url,
		Headers: mergeHeaders(headers),
		Body:    body,
	}

	if b.state == openGroup {
		cs := b.operations[len(b.operations)-1].(*Changeset)
		cs.Requests = append(cs.Requests, req)
		return b
	}

	b.operations = append(b.operations, &Changeset{
		ID:       b.nextChangesetID(),
		Requests: []*Request{req},
	})
	b.state = openGroup
	return b
}

// AddRequest injects a pre-built request verbatim as a standalone
// top-level entry, closing any open changeset.
func (b *Builder) AddRequest(req *Request) *Builder {
	b.operations = append(b.operations, req)
	b.state = noOpenGroup
	return b
}

// AddChangeset injects a pre-built changeset verbatim. The injected
// changeset is sealed: subsequent mutating calls open a fresh group.
func (b *Builder) AddChangeset(cs *Changeset) *Builder {
	b.operations = append(b.operations, cs)
	b.state = noOpenGroup
	return b
}

// BeginChangeset opens a child builder that collects requests into one
// explicit changeset. The explicit boundary seals any open implicit
// group. Call End on the child to flush it into the parent.
func (b *Builder) BeginChangeset() *ChangesetBuilder {
	b.state = noOpenGroup
	return &ChangesetBuilder{
		parent: b,
		id:     b.nextChangesetID(),
	}
}

// Operations returns the accumulated sequence in order. The result is
// stable across calls; no re-grouping occurs, and the returned
// operations are treated as immutable from here on.
func (b *Builder) Operations() []Operation {
	return b.operations
}

// ChangesetBuilder collects mutating requests for one explicit
// changeset. Its request ids are scoped to the changeset id.
type ChangesetBuilder struct {
	parent   *Builder
	id       string
	requests []*Request
	reqSeq   int
	ended    bool
}

func (c *ChangesetBuilder) nextRequestID() string {
	id := fmt.Sprintf("%s_request_%d", c.id, c.reqSeq)
	c.reqSeq++
	return id
}

// Post appends a POST request to the changeset.
func (c *ChangesetBuilder) Post(url string, body interface{}, headers ...map[string]string) *ChangesetBuilder {
	return c.add(MethodPost, url, body, headers)
}

// Put appends a PUT request to the changeset.
func (c *ChangesetBuilder) Put(url string, body interface{}, headers ...map[string]string) *ChangesetBuilder {
	return c.add(MethodPut, url, body, headers)
}

// Patch appends a PATCH request to the changeset.
func (c *ChangesetBuilder) Patch(url string, body interface{}, headers ...map[string]string) *ChangesetBuilder {
	return c.add(MethodPatch, url, body, headers)
}

// Merge appends a MERGE request to the changeset.
func (c *ChangesetBuilder) Merge(url string, body interface{}, headers ...map[string]string) *ChangesetBuilder {
	return c.add(MethodMerge, url, body, headers)
}

// Delete appends a DELETE request to the changeset.
func (c *ChangesetBuilder) Delete(url string, headers ...map[string]string) *ChangesetBuilder {
	return c.add(MethodDelete, url, nil, headers)
}

func (c *ChangesetBuilder) add(method Method, url string, body interface{}, headers []map[string]string) *ChangesetBuilder {
	c.requests = append(c.requests, &Request{
		ID:      c.nextRequestID(),
		Method:  method,
		URL:     url,
		Headers: mergeHeaders(headers),
		Body:    body,
	})
	return c
}

// End flushes the collected requests into the parent as one changeset
// and returns the parent builder. Calling End twice is a no-op on the
// second call. An empty changeset is dropped rather than emitted.
func (c *ChangesetBuilder) End() *Builder {
	if c.ended {
		return c.parent
	}
	c.ended = true

	if len(c.requests) > 0 {
		c.parent.operations = append(c.parent.operations, &Changeset{
			ID:       c.id,
			Requests: c.requests,
		})
	}
	c.parent.state = noOpenGroup
	return c.parent
}

func mergeHeaders(headers []map[string]string) map[string]string {
	if len(headers) == 0 {
		return nil
	}
	merged := make(map[string]string)
	for _, h := range headers {
		for k, v := range h {
			merged[k] = v
		}
	}
	if len(merged) == 0 {
		return nil
	}
	return merged
}
