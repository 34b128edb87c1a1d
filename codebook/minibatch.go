package codebook

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/hupe1980/semtok/internal/math32"
)

// InitStrategy selects how the trainer seeds its initial centroids.
type InitStrategy string

const (
	// InitKMeansPlusPlus spreads the seeds proportionally to squared distance
	// from already chosen seeds.
	InitKMeansPlusPlus InitStrategy = "k-means++"

	// InitRandom picks seeds uniformly from the corpus.
	InitRandom InitStrategy = "random"
)

// TrainerOptions configures the mini-batch k-means fit.
type TrainerOptions struct {
	// Clusters is the number of centroids, i.e. the token vocabulary size.
	Clusters int

	// Init selects the seeding strategy.
	Init InitStrategy

	// MaxIter caps the number of passes over the corpus.
	MaxIter int

	// BatchSize is the number of samples drawn per update step.
	BatchSize int

	// Tol stops training early when the variance-normalized centroid shift of
	// a step drops below it. Zero disables the shift criterion.
	Tol float64

	// MaxNoImprovement stops training early after this many consecutive
	// steps without improvement of the smoothed batch inertia. Zero or
	// negative disables the criterion.
	MaxNoImprovement int

	// NInit is the number of candidate seedings evaluated; the one with the
	// lowest inertia on the init sample is kept.
	NInit int

	// ReassignmentRatio controls reseeding of starved centroids. Centroids
	// whose assignment count falls below the ratio times the largest count
	// are moved onto random corpus points. Zero disables reassignment.
	ReassignmentRatio float64
}

// DefaultTrainerOptions returns the trainer defaults.
func DefaultTrainerOptions() TrainerOptions {
	return TrainerOptions{
		Clusters:          1024,
		Init:              InitKMeansPlusPlus,
		MaxIter:           100,
		BatchSize:         10000,
		Tol:               0,
		MaxNoImprovement:  100,
		NInit:             20,
		ReassignmentRatio: 0,
	}
}

// FitResult is the outcome of a single Fit run.
type FitResult struct {
	// Codebook holds the fitted centroids.
	Codebook *Codebook

	// Inertia is the mean per-sample inertia over the full corpus.
	Inertia float64

	// Steps is the number of mini-batch update steps executed.
	Steps int

	// Converged reports whether an early-stopping criterion fired before
	// the step budget ran out.
	Converged bool
}

// Trainer fits a codebook to an embedding corpus with mini-batch k-means.
type Trainer struct {
	opts TrainerOptions
}

// NewTrainer creates a trainer with the given option overrides.
func NewTrainer(optFns ...func(o *TrainerOptions)) *Trainer {
	opts := DefaultTrainerOptions()

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Trainer{opts: opts}
}

// Fit runs mini-batch k-means over the corpus. The same corpus and seed
// always produce the same centroids. The context is checked between update
// steps, so long fits can be canceled.
func (t *Trainer) Fit(ctx context.Context, corpus [][]float32, seed int64) (*FitResult, error) {
	opts := t.opts

	if opts.Clusters <= 0 {
		return nil, errors.New("codebook: clusters must be positive")
	}
	if opts.BatchSize <= 0 {
		return nil, errors.New("codebook: batch size must be positive")
	}
	if opts.MaxIter <= 0 {
		return nil, errors.New("codebook: max iterations must be positive")
	}
	if opts.NInit <= 0 {
		return nil, errors.New("codebook: n-init must be positive")
	}

	n := len(corpus)
	if n == 0 {
		return nil, errors.New("codebook: empty corpus")
	}

	dim := len(corpus[0])
	if dim == 0 {
		return nil, errors.New("codebook: zero-dimensional corpus")
	}
	for i, vec := range corpus {
		if len(vec) != dim {
			return nil, fmt.Errorf("codebook: corpus vector %d has dimension %d, want %d", i, len(vec), dim)
		}
	}
	if n < opts.Clusters {
		return nil, fmt.Errorf("codebook: corpus of %d vectors cannot seed %d clusters", n, opts.Clusters)
	}

	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // deterministic training, not crypto

	centroids, err := bestSeeding(corpus, dim, rng, opts)
	if err != nil {
		return nil, err
	}

	k := opts.Clusters
	counts := make([]float64, k)
	prev := make([]float32, k*dim)
	batch := make([]int, min(opts.BatchSize, n))

	// Smoothed batch inertia, tracked the same way scikit-learn does:
	// an exponentially weighted average with a batch-size dependent alpha.
	var (
		ewaInertia     float64
		ewaInitialized bool
		bestEWA        = math.Inf(1)
		noImprovement  int
	)
	alpha := float64(len(batch)) * 2.0 / (float64(n) + 1.0)
	if alpha > 1 {
		alpha = 1
	}

	tolScale := corpusVariance(corpus, dim) * opts.Tol

	stepsPerIter := (n + len(batch) - 1) / len(batch)
	maxSteps := opts.MaxIter * stepsPerIter

	steps := 0
	converged := false

	for steps < maxSteps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		for i := range batch {
			batch[i] = rng.Intn(n)
		}

		copy(prev, centroids)
		batchInertia := stepUpdate(corpus, batch, centroids, counts, dim)
		steps++

		if opts.ReassignmentRatio > 0 {
			reassignStarved(corpus, centroids, counts, dim, opts.ReassignmentRatio, rng)
		}

		if !ewaInitialized {
			ewaInertia = batchInertia
			ewaInitialized = true
		} else {
			ewaInertia = ewaInertia*(1-alpha) + batchInertia*alpha
		}

		if ewaInertia < bestEWA {
			bestEWA = ewaInertia
			noImprovement = 0
		} else {
			noImprovement++
		}

		if opts.MaxNoImprovement > 0 && noImprovement >= opts.MaxNoImprovement {
			converged = true
			break
		}

		if opts.Tol > 0 {
			var shift float64
			for j := 0; j < k; j++ {
				shift += float64(math32.SquaredL2(centroids[j*dim:(j+1)*dim], prev[j*dim:(j+1)*dim]))
			}
			if shift <= tolScale {
				converged = true
				break
			}
		}
	}

	cb, err := New(centroids, dim)
	if err != nil {
		return nil, err
	}

	inertia, err := cb.Inertia(corpus)
	if err != nil {
		return nil, err
	}

	return &FitResult{
		Codebook:  cb,
		Inertia:   inertia,
		Steps:     steps,
		Converged: converged,
	}, nil
}

// bestSeeding evaluates NInit candidate seedings on an init sample and
// returns the one with the lowest inertia on that sample.
func bestSeeding(corpus [][]float32, dim int, rng *rand.Rand, opts TrainerOptions) ([]float32, error) {
	n := len(corpus)

	// Evaluate candidates on a subsample, scikit-learn style (3x batch size).
	sampleSize := min(3*opts.BatchSize, n)
	sample := make([]int, sampleSize)
	for i := range sample {
		sample[i] = rng.Intn(n)
	}

	var (
		best        []float32
		bestInertia = math.Inf(1)
	)

	for trial := 0; trial < opts.NInit; trial++ {
		var centroids []float32

		switch opts.Init {
		case InitKMeansPlusPlus:
			centroids = seedPlusPlus(corpus, dim, opts.Clusters, rng)
		case InitRandom:
			centroids = seedRandom(corpus, dim, opts.Clusters, rng)
		default:
			return nil, fmt.Errorf("codebook: unknown init strategy %q", opts.Init)
		}

		var inertia float64
		for _, idx := range sample {
			inertia += float64(nearestDistSq(corpus[idx], centroids, dim))
		}

		if inertia < bestInertia {
			bestInertia = inertia
			best = centroids
		}
	}

	return best, nil
}

// seedPlusPlus picks k seeds with the k-means++ scheme: the first uniformly,
// each following one proportionally to its squared distance from the nearest
// already-chosen seed.
func seedPlusPlus(corpus [][]float32, dim, k int, rng *rand.Rand) []float32 {
	centroids := make([]float32, k*dim)

	first := rng.Intn(len(corpus))
	copy(centroids[0:dim], corpus[first])

	// minDistSq tracks each vector's squared distance to its nearest chosen seed.
	minDistSq := make([]float32, len(corpus))
	var sum float32
	for i, vec := range corpus {
		d := math32.SquaredL2(vec, centroids[0:dim])
		minDistSq[i] = d
		sum += d
	}

	for c := 1; c < k; c++ {
		if sum == 0 {
			idx := rng.Intn(len(corpus))
			copy(centroids[c*dim:(c+1)*dim], corpus[idx])
			continue
		}

		target := rng.Float32() * sum
		var cumsum float32
		chosen := 0
		for i, d := range minDistSq {
			cumsum += d
			if cumsum >= target {
				chosen = i
				break
			}
		}
		copy(centroids[c*dim:(c+1)*dim], corpus[chosen])

		sum = 0
		cStart := c * dim
		for i, vec := range corpus {
			d := math32.SquaredL2(vec, centroids[cStart:cStart+dim])
			if d < minDistSq[i] {
				minDistSq[i] = d
			}
			sum += minDistSq[i]
		}
	}

	return centroids
}

// seedRandom picks k distinct corpus points uniformly.
func seedRandom(corpus [][]float32, dim, k int, rng *rand.Rand) []float32 {
	centroids := make([]float32, k*dim)

	perm := rng.Perm(len(corpus))
	for i := 0; i < k; i++ {
		copy(centroids[i*dim:(i+1)*dim], corpus[perm[i]])
	}

	return centroids
}

// stepUpdate performs one mini-batch update: assigns every batch sample to
// its nearest centroid, then moves each hit centroid toward its samples with
// a per-centroid learning rate of 1/count. Returns the mean batch inertia.
func stepUpdate(corpus [][]float32, batch []int, centroids []float32, counts []float64, dim int) float64 {
	var inertia float64

	for _, idx := range batch {
		vec := corpus[idx]

		cluster, d := nearestCentroid(vec, centroids, dim)
		inertia += float64(d)

		counts[cluster]++
		eta := float32(1.0 / counts[cluster])

		center := centroids[cluster*dim : (cluster+1)*dim]
		for j, v := range vec {
			center[j] += eta * (v - center[j])
		}
	}

	return inertia / float64(len(batch))
}

// reassignStarved moves centroids whose running counts dropped below the
// ratio of the largest count onto random corpus points and resets their
// counts, so they can start accumulating assignments again.
func reassignStarved(corpus [][]float32, centroids []float32, counts []float64, dim int, ratio float64, rng *rand.Rand) {
	var maxCount float64
	for _, c := range counts {
		if c > maxCount {
			maxCount = c
		}
	}
	if maxCount == 0 {
		return
	}

	threshold := ratio * maxCount
	for j := range counts {
		if counts[j] < threshold {
			idx := rng.Intn(len(corpus))
			copy(centroids[j*dim:(j+1)*dim], corpus[idx])
			counts[j] = 0
		}
	}
}

func nearestCentroid(vec []float32, centroids []float32, dim int) (int, float32) {
	k := len(centroids) / dim

	best := 0
	minDist := float32(math.MaxFloat32)

	for j := 0; j < k; j++ {
		d := math32.SquaredL2(vec, centroids[j*dim:(j+1)*dim])
		if d < minDist {
			minDist = d
			best = j
		}
	}

	return best, minDist
}

func nearestDistSq(vec []float32, centroids []float32, dim int) float32 {
	_, d := nearestCentroid(vec, centroids, dim)
	return d
}

// corpusVariance returns the total per-dimension sample variance of the
// corpus, used to scale the relative tolerance into an absolute one.
func corpusVariance(corpus [][]float32, dim int) float64 {
	if len(corpus) < 2 {
		return 0
	}

	var total float64
	col := make([]float32, len(corpus))

	for d := 0; d < dim; d++ {
		for i, vec := range corpus {
			col[i] = vec[d]
		}
		total += float64(math32.SampleVariance(col))
	}

	return total
}
