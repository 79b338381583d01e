package api

import (
	"encoding/json"
	"fmt"

	"batchgate/internal/batch"
)

// BatchRequest is the inbound envelope of one batch call.
type BatchRequest struct {
	Batch []batch.Item `json:"batch"`

	// IncludeHeaders is boolean-ish: true and "true" both mean true. A nil
	// pointer means the field was absent, which defaults to true.
	IncludeHeaders *FlexBool `json:"include_headers"`
}

// IncludeHeadersValue returns the effective include_headers flag.
func (r *BatchRequest) IncludeHeadersValue() bool {
	if r.IncludeHeaders == nil {
		return true
	}
	return bool(*r.IncludeHeaders)
}

// FlexBool accepts JSON booleans and their string forms. Only the string
// "true" counts as true; any other string is false.
type FlexBool bool

// UnmarshalJSON implements json.Unmarshaler.
func (b *FlexBool) UnmarshalJSON(data []byte) error {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("failed to parse include_headers: %w", err)
	}

	switch value := v.(type) {
	case bool:
		*b = FlexBool(value)
	case string:
		*b = FlexBool(value == "true")
	default:
		return fmt.Errorf("include_headers must be a boolean or string, got %T", v)
	}
	return nil
}
