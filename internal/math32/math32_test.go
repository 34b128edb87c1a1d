package math32

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSquaredL2(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float32
	}{
		{"Positive values", []float32{1, 2, 3}, []float32{4, 5, 6}, 27.0},
		{"Identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 0.0},
		{"Mixed values", []float32{1, -2, 3}, []float32{-4, 5, -6}, 155.0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := SquaredL2(tc.a, tc.b)
			assert.Equal(t, tc.expected, result)
		})
	}
}

func TestScaleInPlace(t *testing.T) {
	a := []float32{1, -2, 4}
	ScaleInPlace(a, 0.5)
	assert.Equal(t, []float32{0.5, -1, 2}, a)
}

func TestMean(t *testing.T) {
	assert.Equal(t, float32(2), Mean([]float32{1, 2, 3}))
	assert.Equal(t, float32(0), Mean(nil))
}

func TestSampleVariance(t *testing.T) {
	// Sample variance of {1,2,3} with n-1 denominator is 1.
	assert.InDelta(t, 1.0, SampleVariance([]float32{1, 2, 3}), 1e-6)
	assert.Equal(t, float32(0), SampleVariance([]float32{5}))
	assert.Equal(t, float32(0), SampleVariance([]float32{7, 7, 7, 7}))
}
