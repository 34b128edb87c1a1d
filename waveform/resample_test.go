package waveform

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResampleSameRate(t *testing.T) {
	samples := []float32{0.1, 0.2, 0.3}
	out, err := Resample(samples, 16000, 16000)
	require.NoError(t, err)
	assert.Equal(t, samples, out)
}

func TestResampleHalvesRate(t *testing.T) {
	// One second of a 440Hz tone at 32kHz.
	in := make([]float32, 32000)
	for i := range in {
		in[i] = float32(math.Sin(2 * math.Pi * 440 * float64(i) / 32000))
	}

	out, err := Resample(in, 32000, 16000)
	require.NoError(t, err)

	// The polyphase filter may retain a short tail; allow a small slack.
	assert.InDelta(t, 16000, len(out), 1024)

	for _, v := range out {
		require.False(t, math.IsNaN(float64(v)))
		require.LessOrEqual(t, math.Abs(float64(v)), 1.5)
	}
}

func TestResampleUnknownRate(t *testing.T) {
	_, err := Resample([]float32{1}, 0, 16000)
	assert.ErrorIs(t, err, ErrSampleRateUnknown)
}
