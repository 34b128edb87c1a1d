package blobstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeUnderTest lets local and memory stores share one conformance suite.
func storeUnderTest(t *testing.T, name string) Store {
	t.Helper()

	switch name {
	case "local":
		s, err := NewLocalStore(t.TempDir())
		require.NoError(t, err)
		return s
	case "memory":
		return NewMemoryStore()
	default:
		t.Fatalf("unknown store %q", name)
		return nil
	}
}

func TestStoreConformance(t *testing.T) {
	ctx := context.Background()

	for _, name := range []string{"local", "memory"} {
		t.Run(name, func(t *testing.T) {
			store := storeUnderTest(t, name)

			_, err := store.Open(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, store.Put(ctx, "kmeans.bin", []byte("payload-a")))
			require.NoError(t, store.Put(ctx, "kmeans.bak", []byte("payload-b")))

			data, err := ReadAll(ctx, store, "kmeans.bin")
			require.NoError(t, err)
			assert.Equal(t, []byte("payload-a"), data)

			// Put replaces atomically.
			require.NoError(t, store.Put(ctx, "kmeans.bin", []byte("payload-c")))
			data, err = ReadAll(ctx, store, "kmeans.bin")
			require.NoError(t, err)
			assert.Equal(t, []byte("payload-c"), data)

			names, err := store.List(ctx, "kmeans")
			require.NoError(t, err)
			assert.Equal(t, []string{"kmeans.bak", "kmeans.bin"}, names)

			require.NoError(t, store.Delete(ctx, "kmeans.bak"))
			require.NoError(t, store.Delete(ctx, "kmeans.bak")) // idempotent

			names, err = store.List(ctx, "")
			require.NoError(t, err)
			assert.Equal(t, []string{"kmeans.bin"}, names)
		})
	}
}

func TestLocalStoreBlobReadAt(t *testing.T) {
	ctx := context.Background()

	s, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Put(ctx, "blob", []byte("0123456789")))

	blob, err := s.Open(ctx, "blob")
	require.NoError(t, err)
	defer blob.Close()

	assert.Equal(t, int64(10), blob.Size())

	buf := make([]byte, 4)
	n, err := blob.ReadAt(buf, 3)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, []byte("3456"), buf)
}
