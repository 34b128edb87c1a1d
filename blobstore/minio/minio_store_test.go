package minio

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/semtok/blobstore"
)

// newObjectServer serves a single object under any key ending in /tokens.bin,
// answering StatObject and ranged GetObject requests.
func newObjectServer(object []byte) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/tokens.bin") {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		w.Header().Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)

		switch r.Method {
		case http.MethodHead:
			w.Header().Set("Content-Length", strconv.Itoa(len(object)))
		case http.MethodGet:
			var start, end int
			if _, err := fmt.Sscanf(r.Header.Get("Range"), "bytes=%d-%d", &start, &end); err != nil || end >= len(object) {
				w.WriteHeader(http.StatusRequestedRangeNotSatisfiable)
				return
			}
			w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, end, len(object)))
			w.WriteHeader(http.StatusPartialContent)
			_, _ = w.Write(object[start : end+1])
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
}

func newTestStore(t *testing.T, srv *httptest.Server) *Store {
	t.Helper()

	client, err := minio.New(strings.TrimPrefix(srv.URL, "http://"), &minio.Options{
		Creds:  credentials.NewStaticV4("test", "test", ""),
		Secure: false,
		// Pin the region so the client skips the GetBucketLocation probe,
		// which the single-object test server does not implement.
		Region: "us-east-1",
	})
	require.NoError(t, err)

	return NewStore(client, "artifacts", "codebooks")
}

func TestOpenReadAt(t *testing.T) {
	object := []byte("quantized frame token payload")
	srv := newObjectServer(object)
	defer srv.Close()

	store := newTestStore(t, srv)

	blob, err := store.Open(context.Background(), "tokens.bin")
	require.NoError(t, err)
	defer blob.Close()

	assert.Equal(t, int64(len(object)), blob.Size())

	p := make([]byte, 8)
	n, err := blob.ReadAt(p, 10)
	require.NoError(t, err)
	assert.Equal(t, 8, n)
	assert.Equal(t, object[10:18], p)
}

func TestOpenNotFound(t *testing.T) {
	srv := newObjectServer([]byte("payload"))
	defer srv.Close()

	store := newTestStore(t, srv)

	_, err := store.Open(context.Background(), "missing.bin")
	require.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestReadAtCanceledOpenContext(t *testing.T) {
	object := []byte("quantized frame token payload")
	srv := newObjectServer(object)
	defer srv.Close()

	store := newTestStore(t, srv)

	ctx, cancel := context.WithCancel(context.Background())
	blob, err := store.Open(ctx, "tokens.bin")
	require.NoError(t, err)
	defer blob.Close()

	// Reads issued after the Open context is canceled must fail instead of
	// fetching with a detached context.
	cancel()

	_, err = blob.ReadAt(make([]byte, 4), 0)
	require.Error(t, err)
}
