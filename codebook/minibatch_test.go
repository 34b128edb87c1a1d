package codebook

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blobCorpus generates points around well-separated cluster centers.
func blobCorpus(t *testing.T, centers [][]float32, perCenter int, seed int64) [][]float32 {
	t.Helper()

	rng := rand.New(rand.NewSource(seed))
	corpus := make([][]float32, 0, len(centers)*perCenter)

	for _, center := range centers {
		for i := 0; i < perCenter; i++ {
			vec := make([]float32, len(center))
			for d, c := range center {
				vec[d] = c + float32(rng.NormFloat64())*0.1
			}
			corpus = append(corpus, vec)
		}
	}

	return corpus
}

func testTrainer(k int) *Trainer {
	return NewTrainer(func(o *TrainerOptions) {
		o.Clusters = k
		o.BatchSize = 32
		o.MaxIter = 50
		o.NInit = 4
		o.MaxNoImprovement = 20
	})
}

func TestFit(t *testing.T) {
	ctx := context.Background()

	centers := [][]float32{{0, 0, 0}, {10, 10, 10}, {-10, 5, 0}}
	corpus := blobCorpus(t, centers, 100, 1)

	result, err := testTrainer(3).Fit(ctx, corpus, 42)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Codebook.Clusters())
	assert.Equal(t, 3, result.Codebook.Dim())
	assert.Positive(t, result.Steps)

	// Tight blobs with spread-out centers should reach a near-zero inertia.
	assert.Less(t, result.Inertia, 1.0)

	// Every true center should have a fitted centroid nearby.
	for _, center := range centers {
		_, dist, err := result.Codebook.Assign(center)
		require.NoError(t, err)
		assert.Less(t, dist, float32(1.0))
	}
}

func TestFitDeterministic(t *testing.T) {
	ctx := context.Background()
	corpus := blobCorpus(t, [][]float32{{0, 0}, {5, 5}, {-5, 5}, {5, -5}}, 50, 7)

	first, err := testTrainer(4).Fit(ctx, corpus, 123)
	require.NoError(t, err)

	second, err := testTrainer(4).Fit(ctx, corpus, 123)
	require.NoError(t, err)

	assert.Equal(t, first.Codebook.centroids, second.Codebook.centroids)
	assert.Equal(t, first.Inertia, second.Inertia)
	assert.Equal(t, first.Steps, second.Steps)

	// A different seed should explore a different path.
	third, err := testTrainer(4).Fit(ctx, corpus, 124)
	require.NoError(t, err)
	assert.NotEqual(t, first.Codebook.centroids, third.Codebook.centroids)
}

func TestFitInitStrategies(t *testing.T) {
	ctx := context.Background()
	corpus := blobCorpus(t, [][]float32{{0, 0}, {10, 0}}, 50, 3)

	for _, init := range []InitStrategy{InitKMeansPlusPlus, InitRandom} {
		t.Run(string(init), func(t *testing.T) {
			trainer := NewTrainer(func(o *TrainerOptions) {
				o.Clusters = 2
				o.Init = init
				o.BatchSize = 16
				o.MaxIter = 50
				o.NInit = 4
				o.MaxNoImprovement = 20
			})

			result, err := trainer.Fit(ctx, corpus, 9)
			require.NoError(t, err)
			assert.Less(t, result.Inertia, 1.0)
		})
	}

	t.Run("unknown", func(t *testing.T) {
		trainer := NewTrainer(func(o *TrainerOptions) {
			o.Clusters = 2
			o.Init = InitStrategy("bogus")
		})

		_, err := trainer.Fit(ctx, blobCorpus(t, [][]float32{{0, 0}}, 4, 1), 1)
		require.Error(t, err)
	})
}

func TestFitToleranceStopsEarly(t *testing.T) {
	ctx := context.Background()
	corpus := blobCorpus(t, [][]float32{{0, 0}, {10, 10}}, 100, 5)

	trainer := NewTrainer(func(o *TrainerOptions) {
		o.Clusters = 2
		o.BatchSize = 64
		o.MaxIter = 1000
		o.NInit = 2
		o.Tol = 0.01
		o.MaxNoImprovement = 0
	})

	result, err := trainer.Fit(ctx, corpus, 11)
	require.NoError(t, err)
	assert.True(t, result.Converged)
	assert.Less(t, result.Steps, 1000*4)
}

func TestFitValidation(t *testing.T) {
	ctx := context.Background()

	t.Run("empty corpus", func(t *testing.T) {
		_, err := testTrainer(2).Fit(ctx, nil, 1)
		require.Error(t, err)
	})

	t.Run("too few vectors", func(t *testing.T) {
		_, err := testTrainer(8).Fit(ctx, [][]float32{{1, 2}, {3, 4}}, 1)
		require.Error(t, err)
	})

	t.Run("ragged corpus", func(t *testing.T) {
		_, err := testTrainer(2).Fit(ctx, [][]float32{{1, 2}, {3}}, 1)
		require.Error(t, err)
	})

	t.Run("canceled context", func(t *testing.T) {
		canceled, cancel := context.WithCancel(ctx)
		cancel()

		corpus := blobCorpus(t, [][]float32{{0, 0}, {5, 5}}, 20, 2)
		_, err := testTrainer(2).Fit(canceled, corpus, 1)
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestFitReassignsStarvedCentroids(t *testing.T) {
	ctx := context.Background()
	corpus := blobCorpus(t, [][]float32{{0, 0}, {10, 10}, {20, 0}}, 60, 6)

	trainer := NewTrainer(func(o *TrainerOptions) {
		o.Clusters = 3
		o.BatchSize = 32
		o.MaxIter = 50
		o.NInit = 4
		o.MaxNoImprovement = 20
		o.ReassignmentRatio = 0.01
	})

	result, err := trainer.Fit(ctx, corpus, 21)
	require.NoError(t, err)
	assert.Less(t, result.Inertia, 1.0)
}
