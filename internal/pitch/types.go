// Package pitch implements fundamental-frequency estimation for short,
// single-voice chant recordings using the YIN cumulative mean normalized
// difference method, with a median post-filter to suppress octave-jump
// outliers.
//
// Extraction is deterministic: an identical sample buffer with identical
// options always yields an identical [Contour].
package pitch

import "math"

// Frame is one pitch observation at a fixed hop interval.
// An unvoiced frame carries Frequency 0 and Confidence 0.
// Frames are immutable once produced.
type Frame struct {
	// Time is the frame center position in seconds from buffer start.
	Time float64

	// Frequency is the estimated fundamental in Hz, 0 when unvoiced.
	Frequency float64

	// Confidence is 1 minus the normalized difference at the chosen lag,
	// in [0, 1]. 0 when unvoiced.
	Confidence float64
}

// Voiced reports whether the frame carries a usable pitch estimate.
func (f Frame) Voiced() bool {
	return f.Frequency > 0 && f.Confidence > 0
}

// Contour is the ordered pitch track of one recording.
type Contour struct {
	Frames     []Frame
	SampleRate int

	// Duration is the total length of the analyzed buffer in seconds.
	Duration float64
}

// Empty reports whether the contour holds no frames.
func (c Contour) Empty() bool {
	return len(c.Frames) == 0
}

// VoicedRatio returns the fraction of frames that are voiced.
// Returns 0 for an empty contour.
func (c Contour) VoicedRatio() float64 {
	if len(c.Frames) == 0 {
		return 0
	}
	voiced := 0
	for _, f := range c.Frames {
		if f.Voiced() {
			voiced++
		}
	}
	return float64(voiced) / float64(len(c.Frames))
}

// MedianFrequency returns the median frequency over frames whose
// confidence is at least minConfidence, or 0 when no frame qualifies.
func (c Contour) MedianFrequency(minConfidence float64) float64 {
	var freqs []float64
	for _, f := range c.Frames {
		if f.Voiced() && f.Confidence >= minConfidence {
			freqs = append(freqs, f.Frequency)
		}
	}
	return median(freqs)
}

// Semitones converts a frequency in Hz to semitones relative to ref.
// Returns 0 when either value is non-positive.
func Semitones(freq, ref float64) float64 {
	if freq <= 0 || ref <= 0 {
		return 0
	}
	return 12 * math.Log2(freq/ref)
}

// median returns the median of vals, 0 for an empty slice. vals is not
// modified.
func median(vals []float64) float64 {
	n := len(vals)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, vals)
	insertionSort(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// insertionSort keeps median allocation-light for the small slices this
// package sorts (window-sized, typically 5 elements).
func insertionSort(a []float64) {
	for i := 1; i < len(a); i++ {
		for j := i; j > 0 && a[j] < a[j-1]; j-- {
			a[j], a[j-1] = a[j-1], a[j]
		}
	}
}
