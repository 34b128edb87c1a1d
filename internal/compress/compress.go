// Package compress provides block compression for persisted codebook
// payloads. This is an internal package; the compression type is recorded in
// the codebook file header so payloads are self-describing.
package compress

import (
	"encoding/binary"
	"errors"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Type identifies the compression algorithm used for a payload.
type Type uint8

const (
	// None stores the payload uncompressed.
	None Type = 0
	// LZ4 uses LZ4 block compression (fast, moderate ratio).
	LZ4 Type = 1
	// ZSTD uses ZSTD block compression (better ratio, good for cold artifacts).
	ZSTD Type = 2
)

func (t Type) String() string {
	switch t {
	case None:
		return "none"
	case LZ4:
		return "lz4"
	case ZSTD:
		return "zstd"
	default:
		return "unknown"
	}
}

// Valid reports whether t is a known compression type.
func (t Type) Valid() bool {
	return t <= ZSTD
}

// ZSTD encoder/decoder pools for efficiency.
var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func putZstdEncoder(enc *zstd.Encoder) {
	zstdEncoderPool.Put(enc)
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

func putZstdDecoder(dec *zstd.Decoder) {
	zstdDecoderPool.Put(dec)
}

// payloadHeader: [UncompressedSize uint32][CompressedSize uint32][Data...]
// CompressedSize == 0 means the payload is stored uncompressed.
const headerSize = 8

// Compress compresses data with the given type and prepends a size header.
// Incompressible payloads are stored uncompressed regardless of type.
func Compress(t Type, data []byte) ([]byte, error) {
	var compressed []byte

	switch t {
	case None:
	case LZ4:
		bound := lz4.CompressBlockBound(len(data))
		buf := make([]byte, bound)
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, err
		}
		compressed = buf[:n] // n == 0 means incompressible
	case ZSTD:
		enc := getZstdEncoder()
		compressed = enc.EncodeAll(data, nil)
		putZstdEncoder(enc)
	default:
		return nil, errors.New("compress: unknown compression type")
	}

	// Fall back to raw storage when compression does not pay off.
	if len(compressed) == 0 || len(compressed) >= len(data) {
		result := make([]byte, headerSize+len(data))
		binary.LittleEndian.PutUint32(result[0:], uint32(len(data)))
		binary.LittleEndian.PutUint32(result[4:], 0)
		copy(result[headerSize:], data)
		return result, nil
	}

	result := make([]byte, headerSize+len(compressed))
	binary.LittleEndian.PutUint32(result[0:], uint32(len(data)))
	binary.LittleEndian.PutUint32(result[4:], uint32(len(compressed)))
	copy(result[headerSize:], compressed)
	return result, nil
}

// Decompress reverses Compress. The type must match the one used to compress;
// it is normally taken from the enclosing file header.
func Decompress(t Type, data []byte) ([]byte, error) {
	if len(data) < headerSize {
		return nil, errors.New("compress: payload too small for header")
	}

	uncompressedSize := binary.LittleEndian.Uint32(data[0:])
	compressedSize := binary.LittleEndian.Uint32(data[4:])

	// Sizes come from untrusted input; compare in int64 so oversized values
	// cannot wrap the bounds check.
	if compressedSize == 0 {
		if int64(len(data)) < int64(headerSize)+int64(uncompressedSize) {
			return nil, errors.New("compress: truncated payload")
		}
		return data[headerSize : headerSize+int(uncompressedSize)], nil
	}

	if int64(len(data)) < int64(headerSize)+int64(compressedSize) {
		return nil, errors.New("compress: truncated compressed payload")
	}

	payload := data[headerSize : headerSize+int(compressedSize)]

	switch t {
	case LZ4:
		result := make([]byte, uncompressedSize)
		n, err := lz4.UncompressBlock(payload, result)
		if err != nil {
			return nil, err
		}
		if uint32(n) != uncompressedSize {
			return nil, errors.New("compress: decompressed size mismatch")
		}
		return result, nil

	case ZSTD:
		dec := getZstdDecoder()
		defer putZstdDecoder(dec)

		decoded, err := dec.DecodeAll(payload, make([]byte, 0, uncompressedSize))
		if err != nil {
			return nil, err
		}
		if uint32(len(decoded)) != uncompressedSize {
			return nil, errors.New("compress: decompressed size mismatch")
		}
		return decoded, nil

	default:
		return nil, errors.New("compress: unknown compression type")
	}
}
