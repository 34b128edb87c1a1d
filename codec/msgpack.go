package codec

import (
	"github.com/vmihailenco/msgpack/v5"
)

// Msgpack is a MessagePack codec backed by github.com/vmihailenco/msgpack.
//
// Persisted codebook files store the codec name in their header; when opening
// an existing file the codec is selected by name.
type Msgpack struct{}

// Marshal encodes the value to MessagePack.
func (Msgpack) Marshal(v any) ([]byte, error) { return msgpack.Marshal(v) }

// Unmarshal decodes the MessagePack data into v.
func (Msgpack) Unmarshal(data []byte, v any) error { return msgpack.Unmarshal(data, v) }

// Name returns the unique name of the codec ("msgpack").
func (Msgpack) Name() string { return "msgpack" }

// Default is the default codec used for newly written codebook files.
//
// Existing files are self-describing (they store the codec name in their
// header), so changing the default never breaks loading.
var Default Codec = Msgpack{}
