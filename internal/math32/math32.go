// Package math32 provides float32 vector operations shared by the waveform
// and codebook packages. This is an internal package - external users should
// use the codebook package.
package math32

// SquaredL2 calculates the squared L2 (Euclidean) distance.
// Assumes vectors are the same length (caller's responsibility).
func SquaredL2(a, b []float32) float32 {
	var distance float32
	for i := range a {
		distance += (a[i] - b[i]) * (a[i] - b[i])
	}

	return distance
}

// ScaleInPlace multiplies all elements of a by scalar.
func ScaleInPlace(a []float32, scalar float32) {
	for i := range a {
		a[i] *= scalar
	}
}

// Mean returns the arithmetic mean of a. Returns 0 for an empty slice.
func Mean(a []float32) float32 {
	if len(a) == 0 {
		return 0
	}

	var sum float64
	for _, v := range a {
		sum += float64(v)
	}

	return float32(sum / float64(len(a)))
}

// SampleVariance returns the unbiased sample variance of a (n-1 denominator).
// Returns 0 when a has fewer than two elements.
func SampleVariance(a []float32) float32 {
	if len(a) < 2 {
		return 0
	}

	mean := float64(Mean(a))

	var sum float64
	for _, v := range a {
		d := float64(v) - mean
		sum += d * d
	}

	return float32(sum / float64(len(a)-1))
}
