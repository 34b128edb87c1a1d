package codebook

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hupe1980/semtok/blobstore"
	"github.com/hupe1980/semtok/codec"
	"github.com/hupe1980/semtok/internal/compress"
)

// LearnOptions configures Learn.
type LearnOptions struct {
	// Trainer holds the fit hyperparameters.
	Trainer TrainerOptions

	// Codec serializes the fitted codebook. Defaults to codec.Default.
	Codec codec.Codec

	// Compression compresses the serialized codebook. Defaults to zstd.
	Compression compress.Type

	// Logger receives the fit diagnostics. Defaults to a discard logger.
	Logger *slog.Logger
}

// Learn fits a codebook to the corpus with the given seed, stores it under
// name, and returns the fit result. Fitting with the same corpus and seed
// is deterministic, so repeated Learn calls write identical artifacts.
func Learn(ctx context.Context, corpus [][]float32, seed int64, store blobstore.Store, name string, optFns ...func(o *LearnOptions)) (*FitResult, error) {
	opts := LearnOptions{
		Trainer:     DefaultTrainerOptions(),
		Codec:       codec.Default,
		Compression: compress.ZSTD,
		Logger:      slog.New(slog.DiscardHandler),
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	result, err := NewTrainer(func(o *TrainerOptions) {
		*o = opts.Trainer
	}).Fit(ctx, corpus, seed)
	if err != nil {
		return nil, err
	}

	opts.Logger.InfoContext(ctx, "codebook fitted",
		slog.Int("clusters", result.Codebook.Clusters()),
		slog.Int("dim", result.Codebook.Dim()),
		slog.Float64("inertia", result.Inertia),
		slog.Int("steps", result.Steps),
		slog.Bool("converged", result.Converged),
	)

	data, err := Marshal(result.Codebook, opts.Codec, opts.Compression)
	if err != nil {
		return nil, err
	}

	if err := store.Put(ctx, name, data); err != nil {
		return nil, fmt.Errorf("codebook: store %q: %w", name, err)
	}

	return result, nil
}

// Load reads a stored codebook blob by name.
func Load(ctx context.Context, store blobstore.Store, name string) (*Codebook, error) {
	data, err := blobstore.ReadAll(ctx, store, name)
	if err != nil {
		return nil, fmt.Errorf("codebook: load %q: %w", name, err)
	}

	return Unmarshal(data)
}
