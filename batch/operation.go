// Package batch provides the in-memory model for OData $batch requests:
// the operation types sent in one batch, the builder that accumulates and
// groups them, and the decoded response types with their correlation helpers.
package batch

// Method is an HTTP method usable in a batch sub-request.
type Method string

const (
	MethodGet    Method = "GET"
	MethodPost   Method = "POST"
	MethodPut    Method = "PUT"
	MethodPatch  Method = "PATCH"
	MethodMerge  Method = "MERGE"
	MethodDelete Method = "DELETE"
)

// IsMutating reports whether the method modifies server state and is
// therefore eligible for changeset membership.
func (m Method) IsMutating() bool {
	switch m {
	case MethodPost, MethodPut, MethodPatch, MethodMerge, MethodDelete:
		return true
	default:
		return false
	}
}

// Operation is one top-level entry of a batch: either a standalone
// *Request or a *Changeset of mutating requests applied atomically.
// The two implementations are the only ones; switch over them exhaustively.
type Operation interface {
	// OperationID returns the identifier assigned by the builder,
	// unique within one batch.
	OperationID() string

	isOperation()
}

// Request is a single HTTP-shaped sub-request. URL is relative to the
// service root; Body is any JSON-encodable value or nil.
type Request struct {
	ID      string
	Method  Method
	URL     string
	Headers map[string]string
	Body    interface{}
}

// OperationID returns the request's batch-unique identifier.
func (r *Request) OperationID() string { return r.ID }

func (r *Request) isOperation() {}

// Changeset is an ordered group of mutating requests the server applies
// as one atomic unit. A changeset never contains a GET.
type Changeset struct {
	ID       string
	Requests []*Request
}

// OperationID returns the changeset's batch-unique identifier.
func (c *Changeset) OperationID() string { return c.ID }

func (c *Changeset) isOperation() {}
