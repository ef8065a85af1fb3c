package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/joepjoosten/odata-effect-sub000/batch"
)

// jsonBatchRequest is the flat request envelope of the JSON batch
// format. dependsOn is part of the wire shape but unused here; it is
// reserved for cross-request referencing.
type jsonBatchRequest struct {
	Requests []jsonRequestItem `json:"requests"`
}

type jsonRequestItem struct {
	ID             string            `json:"id"`
	Method         string            `json:"method"`
	URL            string            `json:"url"`
	Headers        map[string]string `json:"headers,omitempty"`
	Body           interface{}       `json:"body,omitempty"`
	AtomicityGroup string            `json:"atomicityGroup,omitempty"`
	DependsOn      []string          `json:"dependsOn,omitempty"`
}

type jsonBatchResponse struct {
	Responses []jsonResponseItem `json:"responses"`
}

type jsonResponseItem struct {
	ID             string            `json:"id"`
	Status         int               `json:"status"`
	Headers        map[string]string `json:"headers,omitempty"`
	Body           interface{}       `json:"body,omitempty"`
	AtomicityGroup string            `json:"atomicityGroup,omitempty"`
}

// SerializeBatchV4JSON encodes the ordered operations into the flat
// JSON batch format. Members of one changeset share the changeset's id
// as their atomicityGroup; standalone requests carry no group.
func SerializeBatchV4JSON(ops []batch.Operation) ([]byte, error) {
	items := []jsonRequestItem{}
	for _, op := range ops {
		switch o := op.(type) {
		case *batch.Request:
			items = append(items, jsonRequestItem{
				ID:      o.ID,
				Method:  string(o.Method),
				URL:     o.URL,
				Headers: o.Headers,
				Body:    o.Body,
			})
		case *batch.Changeset:
			for _, req := range o.Requests {
				items = append(items, jsonRequestItem{
					ID:             req.ID,
					Method:         string(req.Method),
					URL:            req.URL,
					Headers:        req.Headers,
					Body:           req.Body,
					AtomicityGroup: o.ID,
				})
			}
		default:
			return nil, NewBatchError(ErrorCodeSerialize,
				fmt.Sprintf("unsupported operation type %T", op), nil)
		}
	}

	encoded, err := json.Marshal(jsonBatchRequest{Requests: items})
	if err != nil {
		return nil, NewBatchError(ErrorCodeSerialize, "cannot encode batch request", err)
	}
	return encoded, nil
}

// ParseBatchResponseV4JSON decodes a flat JSON batch response, folding
// items that share an atomicityGroup back into one changeset response.
// A group appears at the position of its first member; items without a
// group become standalone responses. Group success is the conjunction
// of all member statuses falling in the 2xx range.
func ParseBatchResponseV4JSON(data []byte) ([]batch.OperationResponse, error) {
	var envelope jsonBatchResponse
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, ParseFailed("cannot decode batch response", err)
	}

	var responses []batch.OperationResponse
	groups := make(map[string]*batch.ChangesetResponse)
	for _, item := range envelope.Responses {
		resp := &batch.Response{
			ID:         item.ID,
			Status:     item.Status,
			StatusText: StatusText(item.Status),
			Headers:    item.Headers,
			Body:       item.Body,
		}

		if item.AtomicityGroup == "" {
			responses = append(responses, resp)
			continue
		}

		group, ok := groups[item.AtomicityGroup]
		if !ok {
			group = &batch.ChangesetResponse{
				ID:      item.AtomicityGroup,
				Success: true,
			}
			groups[item.AtomicityGroup] = group
			responses = append(responses, group)
		}
		group.Responses = append(group.Responses, resp)
		if !resp.Success() {
			group.Success = false
		}
	}
	return responses, nil
}
