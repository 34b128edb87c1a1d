// Package waveform provides the audio preprocessing stage of the tokenizer
// pipeline: resampling to the encoder's expected rate, truncation to a frame
// boundary, and per-waveform normalization.
package waveform

import (
	"errors"
	"math"

	"github.com/hupe1980/semtok/internal/math32"
)

var (
	// ErrSampleRateUnknown is returned when a batch carries no sample rate.
	ErrSampleRateUnknown = errors.New("waveform: sample rate unknown")
	// ErrEmptyBatch is returned when a batch has no waveforms.
	ErrEmptyBatch = errors.New("waveform: empty batch")
)

// Batch is an ordered set of mono waveforms sharing one sample rate.
// Waveforms may have different lengths.
type Batch struct {
	Samples    [][]float32
	SampleRate int
}

// NewBatch creates a batch from raw waveforms.
func NewBatch(sampleRate int, samples ...[]float32) Batch {
	return Batch{Samples: samples, SampleRate: sampleRate}
}

// Validate checks structural preconditions of the batch.
func (b Batch) Validate() error {
	if len(b.Samples) == 0 {
		return ErrEmptyBatch
	}
	if b.SampleRate <= 0 {
		return ErrSampleRateUnknown
	}
	return nil
}

// CurtailToMultiple truncates samples so its length is the largest multiple
// of m that is <= len(samples). It never pads. m <= 1 is a no-op.
func CurtailToMultiple(samples []float32, m int) []float32 {
	if m <= 1 {
		return samples
	}
	return samples[:len(samples)/m*m]
}

// Normalize returns a copy of samples with zero mean and unit sample
// standard deviation (n-1 denominator).
//
// Waveforms with zero standard deviation (constant input, or fewer than two
// samples) are only mean-centered; no division happens, so the output is
// finite for every input.
func Normalize(samples []float32) []float32 {
	out := make([]float32, len(samples))
	if len(samples) == 0 {
		return out
	}

	mean := math32.Mean(samples)
	for i, v := range samples {
		out[i] = v - mean
	}

	variance := math32.SampleVariance(samples)
	if variance > 0 {
		math32.ScaleInPlace(out, 1/float32(math.Sqrt(float64(variance))))
	}

	return out
}

// Preprocess applies the full preprocessing chain to a batch: resample to
// targetRate, curtail each waveform to a multiple of frameMultiple, and
// normalize per waveform. The input batch is not modified.
func Preprocess(batch Batch, targetRate, frameMultiple int) (Batch, error) {
	if err := batch.Validate(); err != nil {
		return Batch{}, err
	}

	out := Batch{
		Samples:    make([][]float32, len(batch.Samples)),
		SampleRate: targetRate,
	}

	for i, samples := range batch.Samples {
		if batch.SampleRate != targetRate {
			resampled, err := Resample(samples, batch.SampleRate, targetRate)
			if err != nil {
				return Batch{}, err
			}
			samples = resampled
		}

		samples = CurtailToMultiple(samples, frameMultiple)
		out.Samples[i] = Normalize(samples)
	}

	return out, nil
}
