package semtok

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/semtok/blobstore"
	"github.com/hupe1980/semtok/codebook"
	"github.com/hupe1980/semtok/encoder"
	"github.com/hupe1980/semtok/waveform"
)

const (
	// DefaultLayer is the encoder hidden layer tokens are derived from.
	DefaultLayer = 7

	// DefaultFrameMultiple is the sample count multiple waveforms are
	// curtailed to, matching the frame stride of 16kHz HuBERT-style encoders.
	DefaultFrameMultiple = 320
)

// Tokenizer turns audio waveforms into discrete semantic tokens. It combines
// a pretrained speech encoder with a pre-fitted codebook; without a codebook
// it still extracts embeddings but cannot tokenize.
//
// A Tokenizer is immutable after construction and safe for concurrent use as
// long as its encoder is.
type Tokenizer struct {
	enc           encoder.Encoder
	cb            *codebook.Codebook
	layer         int
	targetRate    int
	frameMultiple int
	metrics       MetricsCollector
	logger        *Logger
}

// New creates a tokenizer without a codebook. Tokenize returns
// ErrCodebookRequired until one is attached; Embed works regardless.
func New(enc encoder.Encoder, optFns ...Option) (*Tokenizer, error) {
	if enc == nil {
		return nil, ErrNilEncoder
	}

	o := applyOptions(optFns)

	if o.layer < 0 {
		return nil, fmt.Errorf("semtok: layer must not be negative, got %d", o.layer)
	}

	targetRate := o.targetRate
	if targetRate == 0 {
		targetRate = enc.SampleRate()
	}
	if targetRate <= 0 {
		return nil, fmt.Errorf("semtok: invalid target sample rate %d", targetRate)
	}

	return &Tokenizer{
		enc:           enc,
		layer:         o.layer,
		targetRate:    targetRate,
		frameMultiple: o.frameMultiple,
		metrics:       o.metricsCollector,
		logger:        o.logger.WithModel(enc.ModelName()).WithLayer(o.layer),
	}, nil
}

// NewWithCodebook creates a tokenizer with an already loaded codebook.
func NewWithCodebook(enc encoder.Encoder, cb *codebook.Codebook, optFns ...Option) (*Tokenizer, error) {
	t, err := New(enc, optFns...)
	if err != nil {
		return nil, err
	}

	if cb != nil && cb.Dim() != enc.Dim() {
		return nil, &codebook.ErrDimensionMismatch{Expected: enc.Dim(), Actual: cb.Dim()}
	}

	t.cb = cb

	return t, nil
}

// Load creates a tokenizer and loads its codebook from the store. A missing
// codebook blob is not fatal: the tokenizer comes up with quantization
// disabled, so embeddings can still be extracted (and a codebook fitted).
// Any other load failure is returned.
func Load(ctx context.Context, enc encoder.Encoder, store blobstore.Store, name string, optFns ...Option) (*Tokenizer, error) {
	t, err := New(enc, optFns...)
	if err != nil {
		return nil, err
	}

	cb, err := codebook.Load(ctx, store, name)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			t.logger.WarnContext(ctx, "codebook not found, quantization disabled", "name", name)
			return t, nil
		}

		t.logger.LogCodebookLoad(ctx, name, 0, err)

		return nil, err
	}

	if cb.Dim() != enc.Dim() {
		return nil, &codebook.ErrDimensionMismatch{Expected: enc.Dim(), Actual: cb.Dim()}
	}

	t.cb = cb
	t.logger.LogCodebookLoad(ctx, name, cb.Clusters(), nil)

	return t, nil
}

// Codebook returns the attached codebook, or nil when quantization is disabled.
func (t *Tokenizer) Codebook() *codebook.Codebook { return t.cb }

// HasCodebook reports whether the tokenizer can quantize.
func (t *Tokenizer) HasCodebook() bool { return t.cb != nil }

// Layer returns the encoder hidden layer tokens are derived from.
func (t *Tokenizer) Layer() int { return t.layer }

// TargetSampleRate returns the sample rate waveforms are resampled to.
func (t *Tokenizer) TargetSampleRate() int { return t.targetRate }

// Embed preprocesses the batch and returns the selected hidden layer's
// embedding frames, one [frame][dim] sequence per waveform.
func (t *Tokenizer) Embed(ctx context.Context, batch waveform.Batch) ([][][]float32, error) {
	start := time.Now()

	frames, err := t.embed(ctx, batch)

	total := 0
	for _, seq := range frames {
		total += len(seq)
	}

	t.metrics.RecordEmbed(total, time.Since(start), err)
	t.logger.LogEmbed(ctx, len(batch.Samples), total, err)

	return frames, err
}

func (t *Tokenizer) embed(ctx context.Context, batch waveform.Batch) ([][][]float32, error) {
	processed, err := waveform.Preprocess(batch, t.targetRate, t.frameMultiple)
	if err != nil {
		return nil, err
	}

	// The encoder sees a full attention mask. Waveforms of unequal length
	// should be encoded in separate batches; see Tokenize.
	out, err := t.enc.Encode(ctx, processed.Samples, encoder.FullAttentionMask(processed.Samples))
	if err != nil {
		return nil, fmt.Errorf("semtok: encode: %w", err)
	}

	return out.Layer(t.layer)
}

// Tokenize preprocesses the batch, embeds it and assigns every embedding
// frame to its nearest codebook centroid. It returns one token id sequence
// per waveform.
func (t *Tokenizer) Tokenize(ctx context.Context, batch waveform.Batch) (*TokenBatch, error) {
	start := time.Now()

	tokens, err := t.tokenize(ctx, batch)

	total := 0
	if tokens != nil {
		for _, ids := range tokens.ids {
			total += len(ids)
		}
	}

	t.metrics.RecordTokenize(total, time.Since(start), err)
	t.logger.LogTokenize(ctx, len(batch.Samples), total, err)

	return tokens, err
}

func (t *Tokenizer) tokenize(ctx context.Context, batch waveform.Batch) (*TokenBatch, error) {
	if t.cb == nil {
		return nil, ErrCodebookRequired
	}

	frames, err := t.Embed(ctx, batch)
	if err != nil {
		return nil, err
	}

	ids := make([][]int64, len(frames))
	for i, seq := range frames {
		ids[i], err = t.cb.AssignFrames(seq)
		if err != nil {
			return nil, err
		}
	}

	return &TokenBatch{ids: ids}, nil
}

// NewBatch builds a waveform batch from raw samples at the given rate.
// It is a convenience alias for waveform.NewBatch.
func NewBatch(sampleRate int, samples ...[]float32) waveform.Batch {
	return waveform.NewBatch(sampleRate, samples...)
}

// TokenBatch holds the token id sequences of one tokenized batch, one
// sequence per input waveform.
type TokenBatch struct {
	ids [][]int64
}

// Len returns the number of sequences in the batch.
func (b *TokenBatch) Len() int { return len(b.ids) }

// IDs returns the token id sequences as [waveform][frame].
func (b *TokenBatch) IDs() [][]int64 { return b.ids }

// WithChannelAxis returns the token ids as [waveform][frame][channel] with a
// single-entry channel axis, for consumers that expect one codebook level per
// frame position.
func (b *TokenBatch) WithChannelAxis() [][][]int64 {
	out := make([][][]int64, len(b.ids))
	for i, seq := range b.ids {
		out[i] = make([][]int64, len(seq))
		for j, id := range seq {
			out[i][j] = []int64{id}
		}
	}
	return out
}
