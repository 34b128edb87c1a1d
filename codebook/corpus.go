package codebook

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// corpusMagic identifies serialized embedding corpora (ASCII: "STCO").
const corpusMagic = 0x5354434F

// WriteCorpus writes embedding vectors in the flat binary corpus format:
//
//	Magic  (4 bytes LE) - 0x5354434F ("STCO")
//	Count  (4 bytes LE)
//	Dim    (4 bytes LE)
//	Data   (Count*Dim float32 LE)
//
// The format is append-friendly per file and cheap to read back for training.
func WriteCorpus(w io.Writer, vectors [][]float32) error {
	if len(vectors) == 0 {
		return fmt.Errorf("codebook: empty corpus")
	}

	dim := len(vectors[0])

	header := make([]byte, 12)
	binary.LittleEndian.PutUint32(header[0:4], corpusMagic)
	binary.LittleEndian.PutUint32(header[4:8], uint32(len(vectors)))
	binary.LittleEndian.PutUint32(header[8:12], uint32(dim))

	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("codebook: write corpus header: %w", err)
	}

	buf := make([]byte, dim*4)
	for i, vec := range vectors {
		if len(vec) != dim {
			return fmt.Errorf("codebook: corpus vector %d has dimension %d, want %d", i, len(vec), dim)
		}
		for j, v := range vec {
			binary.LittleEndian.PutUint32(buf[j*4:], math.Float32bits(v))
		}
		if _, err := w.Write(buf); err != nil {
			return fmt.Errorf("codebook: write corpus vector %d: %w", i, err)
		}
	}

	return nil
}

// ReadCorpus reads a corpus written by WriteCorpus.
func ReadCorpus(r io.Reader) ([][]float32, error) {
	header := make([]byte, 12)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("codebook: read corpus header: %w", err)
	}

	if magic := binary.LittleEndian.Uint32(header[0:4]); magic != corpusMagic {
		return nil, fmt.Errorf("%w: got 0x%08x", ErrInvalidMagic, magic)
	}

	count := int(binary.LittleEndian.Uint32(header[4:8]))
	dim := int(binary.LittleEndian.Uint32(header[8:12]))
	if count == 0 || dim == 0 {
		return nil, fmt.Errorf("codebook: corrupt corpus header: count=%d dim=%d", count, dim)
	}

	buf := make([]byte, dim*4)
	vectors := make([][]float32, count)

	for i := range vectors {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("codebook: read corpus vector %d: %w", i, err)
		}
		vec := make([]float32, dim)
		for j := range vec {
			vec[j] = math.Float32frombits(binary.LittleEndian.Uint32(buf[j*4:]))
		}
		vectors[i] = vec
	}

	return vectors, nil
}

// Embedder turns one input item into embedding frames. The root package's
// tokenizer satisfies this through its embedding stage; tests can plug in
// anything else.
type Embedder[T any] func(ctx context.Context, item T) ([][]float32, error)

// CollectCorpus runs the embedder over all items with bounded parallelism
// and concatenates the resulting frames into one training corpus. Frame
// order follows item order regardless of completion order.
func CollectCorpus[T any](ctx context.Context, items []T, embed Embedder[T], workers int) ([][]float32, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([][][]float32, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, item := range items {
		g.Go(func() error {
			frames, err := embed(gctx, item)
			if err != nil {
				return fmt.Errorf("codebook: embed item %d: %w", i, err)
			}

			results[i] = frames

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var total int
	for _, frames := range results {
		total += len(frames)
	}

	corpus := make([][]float32, 0, total)
	for _, frames := range results {
		corpus = append(corpus, frames...)
	}

	return corpus, nil
}
