package entities

import "encoding/json"

// Reply is the JSON envelope returned by message-based bindings.
// Exactly one of Result and Error is set.
type Reply struct {
	Result json.RawMessage `json:"result,omitempty"`
	Error  *ErrorDetail    `json:"error,omitempty"`
}

// NewReply marshals v into a successful Reply.
func NewReply(v any) (Reply, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Reply{}, err
	}
	return Reply{Result: data}, nil
}

// NewErrorReply wraps an ErrorDetail into a Reply.
func NewErrorReply(detail *ErrorDetail) Reply {
	return Reply{Error: detail}
}
