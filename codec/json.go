package codec

import (
	"encoding/json"
)

// JSON is the standard-library JSON codec.
//
// JSON is the most portable option; centroid payloads encoded with it can be
// inspected with ordinary tooling. For large codebooks prefer Msgpack, which
// encodes float32 slices far more compactly.
type JSON struct{}

// Marshal encodes the value to JSON.
func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal decodes the JSON data into v.
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Name returns the unique name of the codec ("json").
func (JSON) Name() string { return "json" }
