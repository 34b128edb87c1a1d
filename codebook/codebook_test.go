package codebook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		cb, err := New([]float32{0, 0, 1, 1}, 2)
		require.NoError(t, err)
		assert.Equal(t, 2, cb.Clusters())
		assert.Equal(t, 2, cb.Dim())
		assert.Equal(t, []float32{1, 1}, cb.Centroid(1))
	})

	t.Run("invalid dimension", func(t *testing.T) {
		_, err := New([]float32{0, 0}, 0)
		require.Error(t, err)
	})

	t.Run("ragged centroids", func(t *testing.T) {
		_, err := New([]float32{0, 0, 1}, 2)
		require.Error(t, err)
	})
}

func TestAssign(t *testing.T) {
	cb, err := New([]float32{0, 0, 10, 10}, 2)
	require.NoError(t, err)

	t.Run("nearest centroid wins", func(t *testing.T) {
		id, dist, err := cb.Assign([]float32{1, 1})
		require.NoError(t, err)
		assert.Equal(t, 0, id)
		assert.InDelta(t, 2.0, dist, 1e-6)

		id, _, err = cb.Assign([]float32{9, 9})
		require.NoError(t, err)
		assert.Equal(t, 1, id)
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		_, _, err := cb.Assign([]float32{1, 2, 3})

		var dimErr *ErrDimensionMismatch
		require.ErrorAs(t, err, &dimErr)
		assert.Equal(t, 2, dimErr.Expected)
		assert.Equal(t, 3, dimErr.Actual)
	})
}

func TestAssignFrames(t *testing.T) {
	cb, err := New([]float32{0, 0, 10, 10}, 2)
	require.NoError(t, err)

	ids, err := cb.AssignFrames([][]float32{
		{0.5, 0.5},
		{9, 11},
		{-1, -1},
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 1, 0}, ids)

	_, err = cb.AssignFrames([][]float32{{1}})
	require.Error(t, err)
}

func TestInertia(t *testing.T) {
	cb, err := New([]float32{0, 0, 10, 10}, 2)
	require.NoError(t, err)

	t.Run("zero on centroids", func(t *testing.T) {
		inertia, err := cb.Inertia([][]float32{{0, 0}, {10, 10}})
		require.NoError(t, err)
		assert.Zero(t, inertia)
	})

	t.Run("mean squared distance", func(t *testing.T) {
		inertia, err := cb.Inertia([][]float32{{1, 0}, {10, 12}})
		require.NoError(t, err)
		assert.InDelta(t, 2.5, inertia, 1e-6)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := cb.Inertia(nil)
		require.Error(t, err)
	})
}
