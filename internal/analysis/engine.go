package analysis

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/vedavani/vedavani/internal/align"
	"github.com/vedavani/vedavani/internal/observe"
	"github.com/vedavani/vedavani/internal/phonetic"
	"github.com/vedavani/vedavani/internal/pitch"
	"github.com/vedavani/vedavani/internal/swara"
	"github.com/vedavani/vedavani/pkg/audio"
)

// melodyFullScaleDeviation is the mean semitone deviation at which
// melodic similarity bottoms out at 0.
const melodyFullScaleDeviation = 6.0

// Option is a functional option for configuring an [Analyzer].
type Option func(*Analyzer)

// WithThresholds overrides the calibrated default accent thresholds.
func WithThresholds(th swara.Thresholds) Option {
	return func(a *Analyzer) { a.thresholds = th }
}

// WithPitchOptions passes extraction options through to the pitch
// extractor on every analysis.
func WithPitchOptions(opts ...pitch.Option) Option {
	return func(a *Analyzer) { a.pitchOpts = opts }
}

// WithMetrics sets the metrics instance. Defaults to
// [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(a *Analyzer) { a.metrics = m }
}

// Analyzer grades recorded recitations. It holds configuration only —
// no per-recording state — so one Analyzer is safe for concurrent use
// across recordings.
type Analyzer struct {
	thresholds swara.Thresholds
	pitchOpts  []pitch.Option
	metrics    *observe.Metrics
}

// New returns an Analyzer with calibrated defaults.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		thresholds: swara.DefaultThresholds(),
	}
	for _, o := range opts {
		o(a)
	}
	if a.metrics == nil {
		a.metrics = observe.DefaultMetrics()
	}
	return a
}

// AnalyzeAccents runs the accent pipeline on one recording against its
// canonical script.
//
// A silent or empty buffer is not an error: every syllable comes back
// unvoiced, ungradable, and zero-confidence, and the caller sees a
// low-quality result rather than a failure.
func (a *Analyzer) AnalyzeAccents(ctx context.Context, buf audio.Buffer, script []swara.CanonicalSyllable) AccentResult {
	ctx, span := observe.StartSpan(ctx, "analysis.accents")
	defer span.End()
	a.metrics.ActiveAnalyses.Add(ctx, 1)
	defer a.metrics.ActiveAnalyses.Add(ctx, -1)
	start := time.Now()
	defer func() {
		a.metrics.AnalysisDuration.Record(ctx, time.Since(start).Seconds())
	}()

	th := a.thresholds

	contour := pitch.Extract(buf, a.pitchOpts...)
	if contour.VoicedRatio() == 0 {
		slog.Warn("no voiced signal in recording",
			"duration", buf.Duration(),
			"syllables", len(script),
		)
	}

	seg := align.Segment(buf, len(script))
	if seg.Uniform {
		a.metrics.AlignmentFallbacks.Add(ctx, 1)
		slog.Debug("segmentation fell back to uniform division", "syllables", len(script))
	}

	feats := swara.ExtractFeatures(ctx, buf, contour, seg.Spans)

	baselines := swara.RollingBaselines(feats, script, th.BaselineWindow, swara.ContourMedianSemitone(contour))
	for _, b := range baselines {
		if b.Valid() && b.Source != swara.BaselineWindow {
			a.metrics.RecordBaselineFallback(ctx, b.Source.String())
		}
	}
	swara.AttachRelative(feats, script, baselines)

	// Raw cascade, then neighbor smoothing, then canonical snapping.
	rawAccents := make([]swara.Accent, len(feats))
	confidences := make([]float64, len(feats))
	canonical := make([]swara.Accent, len(script))
	for i := range feats {
		rawAccents[i], confidences[i] = swara.Classify(feats[i], th)
		canonical[i] = script[i].Accent
	}
	smoothed := swara.Smooth(rawAccents, canonical, confidences, th)

	result := AccentResult{
		Syllables:           make([]SyllableResult, len(feats)),
		UniformSegmentation: seg.Uniform,
	}

	var confSum float64
	voiced, acceptable := 0, 0
	for i := range feats {
		corrected := swara.Snap(canonical[i], smoothed[i], feats[i], th)
		cls := swara.Classification{
			Raw:        rawAccents[i],
			Corrected:  corrected,
			Confidence: confidences[i],
			Acceptable: swara.Acceptable(canonical[i], corrected, feats[i], th),
			Gradable:   swara.Gradable(feats[i], confidences[i], th),
		}
		result.Syllables[i] = SyllableResult{
			Index:          i,
			Text:           script[i].Text,
			Expected:       canonical[i],
			Classification: cls,
			Features:       feats[i],
			Baseline:       baselines[i],
		}

		if feats[i].Voiced() {
			confSum += confidences[i]
			voiced++
		}
		switch {
		case !cls.Gradable:
			a.metrics.RecordSyllableOutcome(ctx, "ungradable")
		case cls.Acceptable:
			a.metrics.RecordSyllableOutcome(ctx, "acceptable")
			result.GradableCount++
			acceptable++
		default:
			a.metrics.RecordSyllableOutcome(ctx, "unacceptable")
			result.GradableCount++
		}
	}

	if voiced > 0 {
		result.Quality = confSum / float64(voiced)
	}
	if result.GradableCount > 0 {
		result.AccuracyPercent = int(math.Round(100 * float64(acceptable) / float64(result.GradableCount)))
	}
	result.AverageBaseline, result.DriftSemitones = swara.AverageBaseline(baselines)

	return result
}

// ScorePronunciation grades a transcript against the script's syllable
// texts. The transcript comes from an external speech-to-text
// collaborator; an empty transcript means that collaborator failed and
// yields the explicit zero-score failure result of
// [PronunciationUnavailable].
func (a *Analyzer) ScorePronunciation(script []swara.CanonicalSyllable, transcript string) PronunciationResult {
	if transcript == "" {
		return PronunciationUnavailable("transcription failed: empty transcript")
	}

	expected := make([]string, len(script))
	full := ""
	for i, s := range script {
		expected[i] = s.Text
		full += s.Text
	}

	return PronunciationResult{
		Syllables:      phonetic.MatchSyllables(transcript, expected),
		OverallPercent: phonetic.Similarity(transcript, full),
	}
}

// PronunciationUnavailable builds the explicit zero-score result for a
// failed transcription. reason must be non-empty; it is surfaced to the
// caller instead of a guessed score.
func PronunciationUnavailable(reason string) PronunciationResult {
	if reason == "" {
		reason = "transcription failed"
	}
	return PronunciationResult{FailureReason: reason}
}

// CompareMelody DTW-aligns the user's pitch contour against a reference
// performance and maps the mean semitone deviation along the warp path
// to a similarity percentage. Both contours are compared in their own
// register, so an accurate melody chanted an octave apart from the
// reference still scores high.
//
// When no warp pair has voice on both sides — a silent recording, or a
// silent reference — there is no melody to compare and the result is
// the explicit zero-score failure, not a perfect match.
func (a *Analyzer) CompareMelody(ctx context.Context, ref, user audio.Buffer) MelodyResult {
	_, span := observe.StartSpan(ctx, "analysis.melody")
	defer span.End()

	refContour := pitch.Extract(ref, a.pitchOpts...)
	userContour := pitch.Extract(user, a.pitchOpts...)

	path, _ := align.Warp(refContour, userContour)
	dev, voicedPairs := align.PathDeviation(refContour, userContour, path)
	if voicedPairs == 0 {
		return MelodyResult{
			PathLength:    len(path),
			FailureReason: "no voiced signal to compare against the reference",
		}
	}

	similarity := 1 - dev/melodyFullScaleDeviation
	if similarity < 0 {
		similarity = 0
	}
	return MelodyResult{
		SimilarityPercent: int(math.Round(100 * similarity)),
		MeanDeviation:     dev,
		PathLength:        len(path),
		VoicedPairs:       voicedPairs,
	}
}
