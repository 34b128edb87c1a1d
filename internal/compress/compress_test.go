package compress

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressRoundTrip(t *testing.T) {
	// Repetitive data so both algorithms actually compress.
	data := bytes.Repeat([]byte("centroid"), 512)

	for _, typ := range []Type{None, LZ4, ZSTD} {
		t.Run(typ.String(), func(t *testing.T) {
			compressed, err := Compress(typ, data)
			require.NoError(t, err)

			if typ != None {
				assert.Less(t, len(compressed), len(data))
			}

			out, err := Decompress(typ, compressed)
			require.NoError(t, err)
			assert.Equal(t, data, out)
		})
	}
}

func TestCompressIncompressible(t *testing.T) {
	// High-entropy-ish short payload; stored raw with header regardless.
	data := []byte{0x01, 0xfe, 0x42, 0x99, 0x7a}

	compressed, err := Compress(LZ4, data)
	require.NoError(t, err)

	out, err := Decompress(LZ4, compressed)
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

func TestDecompressTruncated(t *testing.T) {
	_, err := Decompress(ZSTD, []byte{1, 2, 3})
	assert.Error(t, err)
}

func TestDecompressOversizedHeader(t *testing.T) {
	// Declared sizes near the uint32 maximum must fail the bounds check
	// rather than wrap around and slice past the payload.
	tests := []struct {
		name             string
		uncompressedSize uint32
		compressedSize   uint32
	}{
		{name: "raw payload", uncompressedSize: 0xFFFFFFFC, compressedSize: 0},
		{name: "compressed payload", uncompressedSize: 16, compressedSize: 0xFFFFFFFC},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := make([]byte, headerSize+4)
			binary.LittleEndian.PutUint32(data[0:], tt.uncompressedSize)
			binary.LittleEndian.PutUint32(data[4:], tt.compressedSize)

			_, err := Decompress(ZSTD, data)
			assert.Error(t, err)
		})
	}
}

func TestCompressUnknownType(t *testing.T) {
	_, err := Compress(Type(42), []byte("x"))
	assert.Error(t, err)
	assert.False(t, Type(42).Valid())
}
