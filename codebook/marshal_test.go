package codebook

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/semtok/codec"
	"github.com/hupe1980/semtok/internal/compress"
)

func TestMarshalRoundTrip(t *testing.T) {
	cb, err := New([]float32{0, 0, 1.5, -2.25, 3, 4}, 2)
	require.NoError(t, err)

	tests := []struct {
		name        string
		codec       codec.Codec
		compression compress.Type
	}{
		{name: "msgpack zstd", codec: codec.Msgpack{}, compression: compress.ZSTD},
		{name: "msgpack lz4", codec: codec.Msgpack{}, compression: compress.LZ4},
		{name: "json none", codec: codec.JSON{}, compression: compress.None},
		{name: "default codec", codec: nil, compression: compress.ZSTD},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Marshal(cb, tt.codec, tt.compression)
			require.NoError(t, err)

			got, err := Unmarshal(data)
			require.NoError(t, err)
			assert.Equal(t, cb.Clusters(), got.Clusters())
			assert.Equal(t, cb.Dim(), got.Dim())
			assert.Equal(t, cb.centroids, got.centroids)
		})
	}
}

func TestUnmarshalErrors(t *testing.T) {
	cb, err := New([]float32{0, 0, 1, 1}, 2)
	require.NoError(t, err)

	valid, err := Marshal(cb, nil, compress.ZSTD)
	require.NoError(t, err)

	t.Run("truncated", func(t *testing.T) {
		_, err := Unmarshal(valid[:4])
		require.ErrorIs(t, err, ErrInvalidMagic)
	})

	t.Run("bad magic", func(t *testing.T) {
		bad := append([]byte(nil), valid...)
		bad[0] ^= 0xff

		_, err := Unmarshal(bad)
		require.ErrorIs(t, err, ErrInvalidMagic)
	})

	t.Run("unsupported version", func(t *testing.T) {
		bad := append([]byte(nil), valid...)
		bad[4] = 99

		_, err := Unmarshal(bad)
		require.ErrorIs(t, err, ErrUnsupportedVersion)
	})

	t.Run("oversized payload header", func(t *testing.T) {
		// A corrupt blob declaring a near-maximum uncompressed size must be
		// rejected, not sliced out of range.
		bad := append([]byte(nil), valid...)
		payloadOff := 6 + int(bad[5]) + 1
		binary.LittleEndian.PutUint32(bad[payloadOff:], 0xFFFFFFFC)
		binary.LittleEndian.PutUint32(bad[payloadOff+4:], 0)

		_, err := Unmarshal(bad)
		require.Error(t, err)
	})

	t.Run("unknown codec", func(t *testing.T) {
		bad := append([]byte(nil), valid...)
		copy(bad[6:], "xxxxxxx")

		_, err := Unmarshal(bad)
		require.Error(t, err)
	})
}
