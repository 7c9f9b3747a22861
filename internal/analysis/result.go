// Package analysis orchestrates the full grading pipeline for one
// recorded recitation: pitch extraction, syllable segmentation,
// baseline calibration, accent classification with tolerance snapping
// and smoothing, phonetic pronunciation scoring, and aggregation into a
// single report.
//
// Every analysis invocation is self-contained: it receives its own
// audio buffer and canonical script and returns a fully-owned result.
// Nothing is shared or retained between invocations.
package analysis

import (
	"github.com/vedavani/vedavani/internal/phonetic"
	"github.com/vedavani/vedavani/internal/swara"
)

// SyllableResult is the complete per-syllable accent diagnostic.
type SyllableResult struct {
	Index    int
	Text     string
	Expected swara.Accent

	swara.Classification

	// Features and Baseline are kept for diagnostics and teaching UI;
	// they explain every classification decision.
	Features swara.Features
	Baseline swara.Baseline
}

// AccentResult aggregates the accent half of an analysis.
type AccentResult struct {
	Syllables []SyllableResult

	// Quality is the mean classification confidence over voiced
	// syllables, in [0, 1]. Zero for a silent recording.
	Quality float64

	// AccuracyPercent is the share of gradable syllables judged
	// acceptable, 0–100. Meaningless when GradableCount is 0.
	AccuracyPercent int

	// GradableCount is how many syllables counted toward
	// AccuracyPercent.
	GradableCount int

	// AverageBaseline is the mean rolling baseline in semitones.
	AverageBaseline float64

	// DriftSemitones is the spread of the rolling baseline across the
	// recording, a measure of how far the chanter's neutral pitch
	// wandered.
	DriftSemitones float64

	// UniformSegmentation is true when onset detection was distrusted
	// and syllable spans came from uniform time division.
	UniformSegmentation bool
}

// Gradable reports whether the accent analysis produced at least one
// gradable syllable, i.e. whether AccuracyPercent means anything.
func (r AccentResult) Gradable() bool { return r.GradableCount > 0 }

// PronunciationResult aggregates the pronunciation half of an
// analysis.
type PronunciationResult struct {
	Syllables []phonetic.SyllableMatch

	// OverallPercent is the whole-transcript phonetic similarity,
	// 0–100. Exactly 0 when FailureReason is set.
	OverallPercent int

	// FailureReason is non-empty when no transcript was available;
	// the score is then 0 by definition, not by measurement.
	FailureReason string
}

// Failed reports whether the pronunciation score is a failure
// placeholder rather than a measurement.
func (r PronunciationResult) Failed() bool { return r.FailureReason != "" }

// MelodyResult compares the user's whole pitch contour against a
// reference recording via dynamic time warping.
type MelodyResult struct {
	// SimilarityPercent maps the mean semitone deviation along the
	// warp path to 0–100.
	SimilarityPercent int

	// MeanDeviation is the raw mean absolute semitone difference along
	// the path.
	MeanDeviation float64

	// PathLength is the number of aligned frame pairs.
	PathLength int

	// VoicedPairs is how many path pairs were voiced on both sides and
	// so contributed to MeanDeviation.
	VoicedPairs int

	// FailureReason is non-empty when the contours shared no voiced
	// pairs to compare; the score is then 0 by definition, not by
	// measurement.
	FailureReason string
}

// Failed reports whether the melody score is a failure placeholder
// rather than a measurement.
func (r MelodyResult) Failed() bool { return r.FailureReason != "" }

// Report is the full outcome of analyzing one recording.
type Report struct {
	Accent        *AccentResult
	Pronunciation *PronunciationResult
	Melody        *MelodyResult

	// Overall is the combined score, 0–100. Only meaningful when
	// OverallReason is empty.
	Overall int

	// OverallReason is non-empty when no overall score could be
	// computed; it names the missing input instead of guessing a
	// default.
	OverallReason string
}
