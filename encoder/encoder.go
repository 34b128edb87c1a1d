// Package encoder defines the capability boundary to the pretrained audio
// encoder. The encoder itself is an external system; this package only
// describes what the pipeline needs from it (a forward pass exposing all
// hidden layers) and ships an HTTP client binding in remote.go.
package encoder

import (
	"context"
	"fmt"
)

// Output holds the hidden-layer activations of one forward pass.
//
// HiddenStates is indexed [layer][batch][frame], each frame being a vector of
// the encoder's hidden size. Layer 0 is the input embedding layer, matching
// the layer numbering of the pretrained checkpoints this package targets.
type Output struct {
	HiddenStates [][][][]float32
}

// NumLayers returns the number of hidden layers in the output.
func (o *Output) NumLayers() int {
	return len(o.HiddenStates)
}

// Layer returns the activations of a single hidden layer.
func (o *Output) Layer(i int) ([][][]float32, error) {
	if i < 0 || i >= len(o.HiddenStates) {
		return nil, &ErrInvalidLayer{Layer: i, NumLayers: len(o.HiddenStates)}
	}
	return o.HiddenStates[i], nil
}

// ErrInvalidLayer indicates a layer index outside the encoder's output.
type ErrInvalidLayer struct {
	Layer     int
	NumLayers int
}

func (e *ErrInvalidLayer) Error() string {
	return fmt.Sprintf("encoder: layer %d out of range (encoder has %d layers)", e.Layer, e.NumLayers)
}

// Encoder is a black-box forward pass over a batch of preprocessed waveforms.
//
// Encode runs inference only; implementations never track gradients or
// mutate model state. mask carries one attention value (0 or 1) per input
// sample position. The pipeline currently always passes a fully-attended
// mask; see the note on Tokenizer.Embed.
type Encoder interface {
	Encode(ctx context.Context, samples [][]float32, mask [][]int64) (*Output, error)

	// Dim returns the encoder's hidden size.
	Dim() int

	// SampleRate returns the waveform sample rate the encoder expects.
	SampleRate() int

	// ModelName identifies the pretrained checkpoint.
	ModelName() string
}

// FullAttentionMask builds an all-ones mask matching the sample batch.
func FullAttentionMask(samples [][]float32) [][]int64 {
	mask := make([][]int64, len(samples))
	for i, s := range samples {
		row := make([]int64, len(s))
		for j := range row {
			row[j] = 1
		}
		mask[i] = row
	}
	return mask
}
