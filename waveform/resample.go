package waveform

import (
	"fmt"

	resampling "github.com/tphakala/go-audio-resampling"
)

// Resample converts a mono waveform from srcRate to dstRate using a pure Go
// polyphase resampler. Returns the input unchanged when the rates match.
//
// The resampler's filter may hold back a handful of trailing samples; the
// frame-boundary curtailing applied downstream absorbs the difference.
func Resample(samples []float32, srcRate, dstRate int) ([]float32, error) {
	if srcRate <= 0 {
		return nil, ErrSampleRateUnknown
	}
	if srcRate == dstRate {
		return samples, nil
	}

	r, err := resampling.New(&resampling.Config{
		InputRate:  float64(srcRate),
		OutputRate: float64(dstRate),
		Channels:   1,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	})
	if err != nil {
		return nil, fmt.Errorf("waveform: create resampler: %w", err)
	}

	input := make([]float64, len(samples))
	for i, v := range samples {
		input[i] = float64(v)
	}

	output, err := r.Process(input)
	if err != nil {
		return nil, fmt.Errorf("waveform: resample: %w", err)
	}

	out := make([]float32, len(output))
	for i, v := range output {
		out[i] = float32(v)
	}

	return out, nil
}
