package waveform

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/wav"
)

// DecodeWAV reads a RIFF/WAV stream and returns a single-waveform batch of
// float32 samples in [-1, 1]. Multi-channel input is downmixed to mono by
// averaging channels.
func DecodeWAV(r io.ReadSeeker) (Batch, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return Batch{}, errors.New("waveform: not a valid wav file")
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return Batch{}, fmt.Errorf("waveform: decode wav: %w", err)
	}

	channels := buf.Format.NumChannels
	if channels <= 0 {
		return Batch{}, errors.New("waveform: wav has no channels")
	}

	scale := float32(int(1) << (dec.BitDepth - 1))
	frames := len(buf.Data) / channels
	samples := make([]float32, frames)

	for i := 0; i < frames; i++ {
		var sum float32
		for c := 0; c < channels; c++ {
			sum += float32(buf.Data[i*channels+c]) / scale
		}
		samples[i] = sum / float32(channels)
	}

	return NewBatch(buf.Format.SampleRate, samples), nil
}
