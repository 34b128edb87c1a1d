package encoder

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoteEncode(t *testing.T) {
	var got encodeRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/encode", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		// Two layers, one batch element, two frames of dim 2.
		resp := encodeResponse{
			HiddenStates: [][][][]float32{
				{{{0, 0}, {0, 0}}},
				{{{1, 2}, {3, 4}}},
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	enc := NewRemote(srv.URL, "spt-base", 2, 16000)

	samples := [][]float32{{0.1, 0.2, 0.3}}
	out, err := enc.Encode(context.Background(), samples, FullAttentionMask(samples))
	require.NoError(t, err)

	assert.Equal(t, "spt-base", got.Model)
	assert.Equal(t, 16000, got.SampleRate)
	assert.True(t, got.OutputHiddenStates)
	assert.Equal(t, [][]int64{{1, 1, 1}}, got.AttentionMask)

	assert.Equal(t, 2, out.NumLayers())

	layer, err := out.Layer(1)
	require.NoError(t, err)
	assert.Equal(t, [][][]float32{{{1, 2}, {3, 4}}}, layer)
}

func TestRemoteEncodeHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	enc := NewRemote(srv.URL, "missing-model", 2, 16000)

	_, err := enc.Encode(context.Background(), [][]float32{{0}}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestRemoteEncodeEndpointError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(encodeResponse{Error: "waveform too long"})
	}))
	defer srv.Close()

	enc := NewRemote(srv.URL, "spt-base", 2, 16000)

	_, err := enc.Encode(context.Background(), [][]float32{{0}}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "waveform too long")
}

func TestRemoteRateLimitCanceled(t *testing.T) {
	enc := NewRemote("http://127.0.0.1:0", "spt-base", 2, 16000, func(o *RemoteOptions) {
		o.RequestsPerSecond = 0.001 // ~17 minutes between requests
	})

	// Burn the burst token, then a canceled context must fail fast.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := enc.Encode(ctx, [][]float32{{0}}, nil)
	assert.Error(t, err)
}

func TestOutputLayerOutOfRange(t *testing.T) {
	out := &Output{HiddenStates: make([][][][]float32, 3)}

	_, err := out.Layer(7)
	var e *ErrInvalidLayer
	require.ErrorAs(t, err, &e)
	assert.Equal(t, 7, e.Layer)
	assert.Equal(t, 3, e.NumLayers)
}

func TestFullAttentionMask(t *testing.T) {
	mask := FullAttentionMask([][]float32{{1, 2}, {3}})
	assert.Equal(t, [][]int64{{1, 1}, {1}}, mask)
}
