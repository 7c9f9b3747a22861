// Package audio holds the sample buffer type consumed by the analysis
// engine plus the small amount of signal plumbing the CLI needs to feed
// it: WAV decoding, channel downmix, and RMS energy helpers.
//
// The engine itself never reads files — it operates on a fully decoded
// [Buffer] handed in by the caller.
package audio

import "math"

// Buffer is a mono, normalized float signal with a known sample rate.
// Samples are in [-1, 1]. A Buffer is immutable by convention: every
// consumer in this repository treats it as read-only.
type Buffer struct {
	// Samples is the decoded mono signal.
	Samples []float64

	// SampleRate in Hz (e.g., 16000, 44100).
	SampleRate int
}

// Duration returns the buffer length in seconds.
func (b Buffer) Duration() float64 {
	if b.SampleRate <= 0 {
		return 0
	}
	return float64(len(b.Samples)) / float64(b.SampleRate)
}

// Empty reports whether the buffer holds no samples.
func (b Buffer) Empty() bool {
	return len(b.Samples) == 0
}

// RMS returns the root-mean-square energy of samples. Returns 0 for an
// empty slice.
func RMS(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// StereoToMono downmixes interleaved stereo samples by averaging each
// L/R pair. A trailing unpaired sample is dropped.
func StereoToMono(interleaved []float64) []float64 {
	n := len(interleaved) / 2
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = (interleaved[2*i] + interleaved[2*i+1]) / 2
	}
	return out
}
