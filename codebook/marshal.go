package codebook

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/hupe1980/semtok/codec"
	"github.com/hupe1980/semtok/internal/compress"
)

const (
	// binaryMagic identifies serialized codebooks (ASCII: "STCB").
	binaryMagic = 0x53544342

	formatVersion = 1
)

var (
	// ErrInvalidMagic indicates that the data is not a serialized codebook.
	ErrInvalidMagic = errors.New("codebook: invalid magic number")

	// ErrUnsupportedVersion indicates a format version this build cannot read.
	ErrUnsupportedVersion = errors.New("codebook: unsupported format version")
)

// state is the serialized form of a codebook.
type state struct {
	Dim       int       `json:"dim" msgpack:"dim"`
	Clusters  int       `json:"clusters" msgpack:"clusters"`
	Centroids []float32 `json:"centroids" msgpack:"centroids"`
}

// Marshal serializes the codebook into a self-describing blob. The header
// records the codec name and compression type, so Unmarshal needs no
// out-of-band configuration.
//
// Layout:
//
//	Magic      (4 bytes LE) - 0x53544342 ("STCB")
//	Version    (1 byte)
//	CodecLen   (1 byte)
//	CodecName  (CodecLen bytes)
//	Compress   (1 byte)
//	Payload    (rest) - compressed codec encoding of the state
func Marshal(cb *Codebook, cdc codec.Codec, compression compress.Type) ([]byte, error) {
	if cdc == nil {
		cdc = codec.Default
	}
	if !compression.Valid() {
		return nil, fmt.Errorf("codebook: invalid compression type %d", compression)
	}

	payload, err := cdc.Marshal(state{
		Dim:       cb.dim,
		Clusters:  cb.k,
		Centroids: cb.centroids,
	})
	if err != nil {
		return nil, fmt.Errorf("codebook: encode state: %w", err)
	}

	payload, err = compress.Compress(compression, payload)
	if err != nil {
		return nil, fmt.Errorf("codebook: compress state: %w", err)
	}

	name := cdc.Name()
	if len(name) > 255 {
		return nil, fmt.Errorf("codebook: codec name %q too long", name)
	}

	buf := make([]byte, 0, 7+len(name)+len(payload))
	buf = binary.LittleEndian.AppendUint32(buf, binaryMagic)
	buf = append(buf, formatVersion, byte(len(name)))
	buf = append(buf, name...)
	buf = append(buf, byte(compression))
	buf = append(buf, payload...)

	return buf, nil
}

// Unmarshal reads a codebook from a blob produced by Marshal.
func Unmarshal(data []byte) (*Codebook, error) {
	if len(data) < 7 {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidMagic, len(data))
	}

	if magic := binary.LittleEndian.Uint32(data[0:4]); magic != binaryMagic {
		return nil, fmt.Errorf("%w: got 0x%08x", ErrInvalidMagic, magic)
	}

	if version := data[4]; version != formatVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}

	nameLen := int(data[5])
	if len(data) < 7+nameLen {
		return nil, fmt.Errorf("%w: truncated header", ErrInvalidMagic)
	}

	codecName := string(data[6 : 6+nameLen])
	cdc, ok := codec.ByName(codecName)
	if !ok {
		return nil, fmt.Errorf("codebook: unknown codec %q", codecName)
	}

	compression := compress.Type(data[6+nameLen])
	if !compression.Valid() {
		return nil, fmt.Errorf("codebook: invalid compression type %d", compression)
	}

	payload, err := compress.Decompress(compression, data[7+nameLen:])
	if err != nil {
		return nil, fmt.Errorf("codebook: decompress state: %w", err)
	}

	var s state
	if err := cdc.Unmarshal(payload, &s); err != nil {
		return nil, fmt.Errorf("codebook: decode state: %w", err)
	}

	if s.Dim <= 0 || len(s.Centroids) != s.Dim*s.Clusters {
		return nil, fmt.Errorf("codebook: corrupt state: %d centroid values for %dx%d", len(s.Centroids), s.Clusters, s.Dim)
	}

	return New(s.Centroids, s.Dim)
}
