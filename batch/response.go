package batch

// OperationResponse is the decoded result for one top-level batch entry,
// mirroring the request union: *Response for a standalone request,
// *ChangesetResponse for a changeset.
type OperationResponse interface {
	// ResponseID returns the correlation identifier for this entry.
	ResponseID() string

	isOperationResponse()
}

// Response is the decoded result of one sub-request. Body holds the
// decoded JSON value, the raw response text when the body was not valid
// JSON, or nil when the response carried no body (204 No Content).
type Response struct {
	ID         string
	Status     int
	StatusText string
	Headers    map[string]string
	Body       interface{}
}

// ResponseID returns the identifier correlating this response to its
// originating request, or a generated fallback when the server omitted it.
func (r *Response) ResponseID() string { return r.ID }

func (r *Response) isOperationResponse() {}

// Success reports whether the response status is in the 2xx range.
func (r *Response) Success() bool { return r.Status >= 200 && r.Status < 300 }

// ChangesetResponse is the decoded result of one changeset. Success is
// true only if every member response succeeded; the server guarantees
// the members were applied all-or-nothing.
type ChangesetResponse struct {
	ID        string
	Success   bool
	Responses []*Response
}

// ResponseID returns the identifier correlating this result to its
// originating changeset or atomicity group.
func (c *ChangesetResponse) ResponseID() string { return c.ID }

func (c *ChangesetResponse) isOperationResponse() {}

// FindResponseByID searches the decoded results for the given id, looking
// at top-level entries first and then inside changeset members. Returns
// nil when no entry matches.
func FindResponseByID(responses []OperationResponse, id string) *Response {
	for _, op := range responses {
		switch r := op.(type) {
		case *Response:
			if r.ID == id {
				return r
			}
		case *ChangesetResponse:
			for _, member := range r.Responses {
				if member.ID == id {
					return member
				}
			}
		}
	}
	return nil
}

// IsBatchSuccessful reports whether every standalone response is 2xx and
// every changeset succeeded. Individual failures are data, not errors;
// use FailedResponses to enumerate them.
func IsBatchSuccessful(responses []OperationResponse) bool {
	for _, op := range responses {
		switch r := op.(type) {
		case *Response:
			if !r.Success() {
				return false
			}
		case *ChangesetResponse:
			if !r.Success {
				return false
			}
		}
	}
	return true
}

// FailedResponses returns the non-2xx leaf responses in order, including
// members nested inside changesets. Changeset wrappers are never returned.
func FailedResponses(responses []OperationResponse) []*Response {
	var failed []*Response
	for _, op := range responses {
		switch r := op.(type) {
		case *Response:
			if !r.Success() {
				failed = append(failed, r)
			}
		case *ChangesetResponse:
			for _, member := range r.Responses {
				if !member.Success() {
					failed = append(failed, member)
				}
			}
		}
	}
	return failed
}
