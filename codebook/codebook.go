// Package codebook implements the discrete side of the tokenizer pipeline: a
// fixed set of centroid vectors in embedding space, nearest-centroid
// assignment of embedding frames to integer token ids, and the offline
// mini-batch k-means routine that fits the centroids in the first place.
package codebook

import (
	"errors"
	"fmt"
	"math"

	"github.com/hupe1980/semtok/internal/math32"
)

// ErrDimensionMismatch indicates an embedding/codebook dimensionality mismatch.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("codebook: dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// Codebook is a fitted set of k centroids of a fixed dimension.
// It is immutable after construction; Assign is safe for concurrent use.
type Codebook struct {
	centroids []float32 // flattened, k*dim
	dim       int
	k         int
}

// New creates a codebook from flattened centroids (k*dim values).
func New(centroids []float32, dim int) (*Codebook, error) {
	if dim <= 0 {
		return nil, errors.New("codebook: dimension must be positive")
	}
	if len(centroids) == 0 || len(centroids)%dim != 0 {
		return nil, fmt.Errorf("codebook: %d centroid values do not divide into dimension %d", len(centroids), dim)
	}

	return &Codebook{
		centroids: centroids,
		dim:       dim,
		k:         len(centroids) / dim,
	}, nil
}

// Clusters returns the number of centroids (the token vocabulary size).
func (c *Codebook) Clusters() int { return c.k }

// Dim returns the centroid dimensionality.
func (c *Codebook) Dim() int { return c.dim }

// Centroid returns centroid i as a read-only slice view.
func (c *Codebook) Centroid(i int) []float32 {
	return c.centroids[i*c.dim : (i+1)*c.dim]
}

// Assign returns the index of the nearest centroid to vec by squared L2
// distance, and that distance.
func (c *Codebook) Assign(vec []float32) (int, float32, error) {
	if len(vec) != c.dim {
		return 0, 0, &ErrDimensionMismatch{Expected: c.dim, Actual: len(vec)}
	}

	best := 0
	minDist := float32(math.MaxFloat32)

	for j := 0; j < c.k; j++ {
		d := math32.SquaredL2(vec, c.Centroid(j))
		if d < minDist {
			minDist = d
			best = j
		}
	}

	return best, minDist, nil
}

// AssignFrames assigns every frame vector to its nearest centroid and
// returns one token id per frame.
func (c *Codebook) AssignFrames(frames [][]float32) ([]int64, error) {
	ids := make([]int64, len(frames))
	for i, frame := range frames {
		id, _, err := c.Assign(frame)
		if err != nil {
			return nil, err
		}
		ids[i] = int64(id)
	}
	return ids, nil
}

// Inertia returns the mean per-sample inertia of vectors under this codebook
// (the average squared distance of each vector to its nearest centroid).
// Lower is better; it is the fit-quality diagnostic reported after training.
func (c *Codebook) Inertia(vectors [][]float32) (float64, error) {
	if len(vectors) == 0 {
		return 0, errors.New("codebook: no vectors")
	}

	var total float64
	for _, vec := range vectors {
		_, d, err := c.Assign(vec)
		if err != nil {
			return 0, err
		}
		total += float64(d)
	}

	return total / float64(len(vectors)), nil
}
