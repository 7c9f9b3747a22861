// Package align maps audio time to syllable positions. It has two
// independent jobs: segmenting one recording into per-syllable time
// spans, and warping two whole pitch contours onto each other.
//
// Segmentation is best-effort by design. Onset detection on real
// recordings is fragile, so whenever the detected onset count disagrees
// with the expected syllable count beyond a small tolerance the package
// falls back to uniform time-proportional division. The fallback is a
// quality signal, not an error: callers get valid spans either way.
package align

import (
	"log/slog"

	"github.com/vedavani/vedavani/pkg/audio"
)

const (
	// envelopeHopSeconds is the RMS envelope resolution.
	envelopeHopSeconds = 0.010

	// envelopeSmoothWindow is the moving-average width over envelope
	// points (~50 ms at the 10 ms hop).
	envelopeSmoothWindow = 5

	// onsetThresholdRatio scales the envelope peak to an onset
	// amplitude threshold.
	onsetThresholdRatio = 0.3

	// minOnsetGapSeconds is the minimum distance between onsets; chant
	// syllables shorter than this are not worth segmenting.
	minOnsetGapSeconds = 0.08

	// onsetCountTolerance is how far the detected onset count may
	// deviate from the expected syllable count before segmentation
	// falls back to uniform division.
	onsetCountTolerance = 1
)

// Span is a half-open time range [Start, End) in seconds assigned to one
// syllable.
type Span struct {
	Start float64
	End   float64
}

// Duration returns the span length in seconds.
func (s Span) Duration() float64 { return s.End - s.Start }

// Segmentation is the result of splitting a recording into n syllable
// spans.
type Segmentation struct {
	Spans []Span

	// Uniform is true when onset detection was distrusted and the spans
	// come from uniform time division.
	Uniform bool
}

// Segment divides buf into n syllable time spans.
//
// Primary path: peaks in the smoothed RMS envelope become syllable
// onsets. If the onset count deviates from n by more than a small
// tolerance, or the signal is too short or silent to trust, Segment
// falls back to uniform division of the total duration. n must be
// positive; Segment returns an empty Segmentation otherwise.
func Segment(buf audio.Buffer, n int) Segmentation {
	if n <= 0 {
		return Segmentation{}
	}
	duration := buf.Duration()
	if duration <= 0 {
		return Segmentation{Spans: make([]Span, n), Uniform: true}
	}

	onsets := detectOnsets(buf)
	diff := len(onsets) - n
	if diff < -onsetCountTolerance || diff > onsetCountTolerance {
		slog.Debug("onset count disagrees with syllable count, using uniform segmentation",
			"onsets", len(onsets),
			"syllables", n,
		)
		return uniformSegmentation(duration, n)
	}

	// Onset times become span starts. The recording usually opens above
	// the energy threshold, so the first syllable's onset goes
	// undetected; it is always t=0 and is prepended unless an onset
	// already sits there. With a tolerated off-by-one the list is then
	// trimmed or padded to exactly n entries.
	starts := make([]float64, 0, n+1)
	if len(onsets) == 0 || onsets[0] > minOnsetGapSeconds {
		starts = append(starts, 0)
	}
	starts = append(starts, onsets...)
	if len(starts) > n {
		starts = starts[:n]
	}
	for len(starts) < n {
		// Pad by splitting the remaining tail evenly.
		last := starts[len(starts)-1]
		starts = append(starts, last+(duration-last)/2)
	}
	starts[0] = 0 // the first syllable always starts the recording

	spans := make([]Span, n)
	for i := range spans {
		spans[i].Start = starts[i]
		if i+1 < n {
			spans[i].End = starts[i+1]
		} else {
			spans[i].End = duration
		}
		if spans[i].End < spans[i].Start {
			// Non-monotonic onsets mean detection cannot be trusted.
			slog.Debug("non-monotonic onsets, using uniform segmentation")
			return uniformSegmentation(duration, n)
		}
	}
	return Segmentation{Spans: spans}
}

// uniformSegmentation divides duration into n equal spans.
func uniformSegmentation(duration float64, n int) Segmentation {
	spans := make([]Span, n)
	step := duration / float64(n)
	for i := range spans {
		spans[i] = Span{Start: float64(i) * step, End: float64(i+1) * step}
	}
	return Segmentation{Spans: spans, Uniform: true}
}

// detectOnsets returns onset times found via peak-picking on the
// smoothed RMS envelope. An onset is an envelope point above the
// amplitude threshold whose preceding point sits below it and that is at
// least minOnsetGapSeconds after the previous onset.
func detectOnsets(buf audio.Buffer) []float64 {
	env := rmsEnvelope(buf)
	if len(env) == 0 {
		return nil
	}
	smooth(env, envelopeSmoothWindow)

	peak := 0.0
	for _, v := range env {
		if v > peak {
			peak = v
		}
	}
	if peak == 0 {
		return nil
	}
	threshold := peak * onsetThresholdRatio

	var onsets []float64
	lastOnset := -minOnsetGapSeconds
	for i := 1; i < len(env); i++ {
		t := float64(i) * envelopeHopSeconds
		rising := env[i] >= threshold && env[i-1] < threshold
		if rising && t-lastOnset >= minOnsetGapSeconds {
			onsets = append(onsets, t)
			lastOnset = t
		}
	}
	return onsets
}

// rmsEnvelope computes the per-hop RMS energy of buf.
func rmsEnvelope(buf audio.Buffer) []float64 {
	if buf.SampleRate <= 0 {
		return nil
	}
	hop := int(envelopeHopSeconds * float64(buf.SampleRate))
	if hop < 1 || len(buf.Samples) < hop {
		return nil
	}
	env := make([]float64, 0, len(buf.Samples)/hop)
	for start := 0; start+hop <= len(buf.Samples); start += hop {
		env = append(env, audio.RMS(buf.Samples[start:start+hop]))
	}
	return env
}

// smooth applies a centered moving average in place.
func smooth(vals []float64, window int) {
	if window < 2 || len(vals) == 0 {
		return
	}
	half := window / 2
	orig := make([]float64, len(vals))
	copy(orig, vals)
	for i := range vals {
		lo := i - half
		if lo < 0 {
			lo = 0
		}
		hi := i + half
		if hi >= len(orig) {
			hi = len(orig) - 1
		}
		var sum float64
		for j := lo; j <= hi; j++ {
			sum += orig[j]
		}
		vals[i] = sum / float64(hi-lo+1)
	}
}
