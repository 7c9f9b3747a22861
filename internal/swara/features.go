package swara

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/vedavani/vedavani/internal/align"
	"github.com/vedavani/vedavani/internal/pitch"
	"github.com/vedavani/vedavani/pkg/audio"
)

// referenceA440 anchors the absolute semitone scale used by all
// features and baselines. Only differences of semitone values matter
// downstream, so the anchor itself is arbitrary but must be consistent.
const referenceA440 = 440.0

// edgeFrameCount is how many voiced frames at each end of a syllable
// are medianed into its start and end pitch. Medianing instead of
// taking the single edge frame keeps onset transients out of the
// estimate.
const edgeFrameCount = 3

// ContourMedianSemitone returns the contour's median voiced frequency
// on the package's absolute semitone scale, or 0 when the contour has
// no voiced frames. Used as the last-resort baseline fallback.
func ContourMedianSemitone(c pitch.Contour) float64 {
	return pitch.Semitones(c.MedianFrequency(0), referenceA440)
}

// ExtractFeatures measures every syllable span of one recording.
// Per-syllable measurement is independent given the contour, so spans
// are processed in parallel. The cross-syllable fields (JumpFromPrev,
// DurationRatio, DeltaStart, DeltaEnd) are zero until
// [AttachRelative] runs.
func ExtractFeatures(ctx context.Context, buf audio.Buffer, contour pitch.Contour, spans []align.Span) []Features {
	feats := make([]Features, len(spans))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range spans {
		g.Go(func() error {
			feats[i] = measureSpan(buf, contour, i, spans[i])
			return nil
		})
	}
	_ = g.Wait() // measureSpan never fails

	return feats
}

// AttachRelative fills in the baseline-relative and cross-syllable
// fields of feats in place. canonical supplies the expected accents
// used to find the neutral reference duration; baselines must be the
// per-syllable values from [RollingBaselines]. feats, canonical, and
// baselines must have equal length.
func AttachRelative(feats []Features, canonical []CanonicalSyllable, baselines []Baseline) {
	neutralDur := medianNeutralDuration(feats, canonical)

	for i := range feats {
		f := &feats[i]

		if baselines[i].Valid() && f.Voiced() {
			f.DeltaStart = f.StartST - baselines[i].Semitone
			f.DeltaEnd = f.EndST - baselines[i].Semitone
		}

		if i > 0 && f.Voiced() && feats[i-1].Voiced() {
			f.JumpFromPrev = f.StartST - feats[i-1].EndST
		}

		f.DurationRatio = 1
		if neutralDur > 0 && f.VoicedDuration > 0 {
			f.DurationRatio = f.VoicedDuration / neutralDur
		}
	}
}

// measureSpan computes the absolute acoustic features of one span.
func measureSpan(buf audio.Buffer, contour pitch.Contour, index int, span align.Span) Features {
	f := Features{Index: index, Span: span}

	frames := framesInSpan(contour, span)
	if len(frames) == 0 {
		return f
	}

	var voiced []pitch.Frame
	var confSum float64
	for _, fr := range frames {
		if fr.Voiced() {
			voiced = append(voiced, fr)
			confSum += fr.Confidence
		}
	}
	f.VoicedRatio = float64(len(voiced)) / float64(len(frames))
	if len(voiced) == 0 {
		return f
	}
	f.Confidence = confSum / float64(len(voiced))

	hop := frameHop(contour)
	f.VoicedDuration = float64(len(voiced)) * hop

	f.StartHz = medianFrequency(voiced[:minInt(edgeFrameCount, len(voiced))])
	f.EndHz = medianFrequency(voiced[maxInt(0, len(voiced)-edgeFrameCount):])
	f.StartST = pitch.Semitones(f.StartHz, referenceA440)
	f.EndST = pitch.Semitones(f.EndHz, referenceA440)
	f.Slope = pitchSlope(voiced)

	if buf.SampleRate > 0 {
		lo := int(span.Start * float64(buf.SampleRate))
		hi := int(span.End * float64(buf.SampleRate))
		if lo < 0 {
			lo = 0
		}
		if hi > len(buf.Samples) {
			hi = len(buf.Samples)
		}
		if lo < hi {
			f.Energy = audio.RMS(buf.Samples[lo:hi])
		}
	}

	return f
}

// framesInSpan returns the contour frames whose center time falls
// inside [span.Start, span.End).
func framesInSpan(contour pitch.Contour, span align.Span) []pitch.Frame {
	var out []pitch.Frame
	for _, fr := range contour.Frames {
		if fr.Time >= span.Start && fr.Time < span.End {
			out = append(out, fr)
		}
	}
	return out
}

// frameHop estimates the contour's hop interval in seconds, defaulting
// to 10 ms for degenerate contours.
func frameHop(contour pitch.Contour) float64 {
	if len(contour.Frames) >= 2 {
		if d := contour.Frames[1].Time - contour.Frames[0].Time; d > 0 {
			return d
		}
	}
	return 0.010
}

// pitchSlope fits a least-squares line through (time, semitone) pairs
// of voiced frames and returns the slope in semitones per second.
func pitchSlope(voiced []pitch.Frame) float64 {
	if len(voiced) < 2 {
		return 0
	}
	var sumT, sumS, sumTT, sumTS float64
	for _, fr := range voiced {
		st := pitch.Semitones(fr.Frequency, referenceA440)
		sumT += fr.Time
		sumS += st
		sumTT += fr.Time * fr.Time
		sumTS += fr.Time * st
	}
	n := float64(len(voiced))
	denom := n*sumTT - sumT*sumT
	if denom == 0 {
		return 0
	}
	return (n*sumTS - sumT*sumS) / denom
}

// medianNeutralDuration returns the median voiced duration over
// canonically-neutral, voiced syllables, or 0 when none exist.
func medianNeutralDuration(feats []Features, canonical []CanonicalSyllable) float64 {
	var durs []float64
	for i := range feats {
		if i < len(canonical) && canonical[i].Accent == Neutral && feats[i].Voiced() {
			durs = append(durs, feats[i].VoicedDuration)
		}
	}
	return medianFloat(durs)
}

func medianFrequency(frames []pitch.Frame) float64 {
	freqs := make([]float64, len(frames))
	for i, fr := range frames {
		freqs[i] = fr.Frequency
	}
	return medianFloat(freqs)
}

func medianFloat(vals []float64) float64 {
	n := len(vals)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, vals)
	for i := 1; i < n; i++ {
		for j := i; j > 0 && sorted[j] < sorted[j-1]; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
