package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// envelope is the paginated-style wrapper some endpoints return
type envelope struct {
	Results json.RawMessage `json:"results"`
}

// NormaliseList accepts either a bare JSON array or an object carrying a
// "results" array and returns the elements in order. Any other shape yields an
// empty slice, never an error; only elements that do not decode into T fail.
func NormaliseList[T any](payload json.RawMessage) ([]T, error) {
	items := listItems(payload)
	if items == nil {
		return []T{}, nil
	}

	out := make([]T, 0)
	if err := json.Unmarshal(items, &out); err != nil {
		return nil, fmt.Errorf("failed to decode list items: %w", err)
	}
	return out, nil
}

// listItems returns the raw JSON array inside payload, or nil if there is none
func listItems(payload json.RawMessage) json.RawMessage {
	switch firstByte(payload) {
	case '[':
		return payload
	case '{':
		var env envelope
		if err := json.Unmarshal(payload, &env); err != nil {
			return nil
		}
		if firstByte(env.Results) == '[' {
			return env.Results
		}
	}
	return nil
}

func firstByte(b []byte) byte {
	b = bytes.TrimLeft(b, " \t\r\n")
	if len(b) == 0 {
		return 0
	}
	return b[0]
}
