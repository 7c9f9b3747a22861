package swara

// Thresholds holds every empirically tuned constant of the accent
// cascade and grading rules. The defaults were calibrated against real
// chant recordings; keep them bit-for-bit unless re-tuning against a
// labeled dataset. All values surface as config defaults so deployments
// can adjust without rebuilding.
type Thresholds struct {
	// LowDelta is the baseline-relative starting pitch (semitones, and
	// negative) at or below which a syllable classifies as Low.
	LowDelta float64

	// RisingJump is the minimum upward cross-syllable jump (semitones)
	// for the jump path of the Rising rule.
	RisingJump float64

	// RisingEndDelta is the minimum baseline-relative ending pitch
	// (semitones) accompanying a jump for the Rising rule.
	RisingEndDelta float64

	// RisingGlide is the minimum internal upward glide (semitones) for
	// the glide path of the Rising rule.
	RisingGlide float64

	// RisingSlope is the minimum raw pitch slope (semitones/second)
	// accompanying a glide for the Rising rule.
	RisingSlope float64

	// ProlongedDelta is the minimum baseline-relative starting pitch
	// (semitones) for ProlongedRise.
	ProlongedDelta float64

	// ProlongedDurationRatio is the minimum voiced duration relative to
	// the recording's neutral syllables for ProlongedRise.
	ProlongedDurationRatio float64

	// ProlongedSustain is the minimum baseline-relative ending pitch
	// (semitones) confirming a ProlongedRise stayed above baseline.
	ProlongedSustain float64

	// MinGradableDuration is the minimum voiced duration in seconds for
	// a syllable to count toward accuracy statistics.
	MinGradableDuration float64

	// MinGradableConfidence is the minimum raw classification
	// confidence for a syllable to count toward accuracy statistics.
	MinGradableConfidence float64

	// SmootherKeepConfidence is the confidence at or above which the
	// sequence smoother never overrides a raw classification.
	SmootherKeepConfidence float64

	// BaselineWindow is how many preceding neutral syllables feed the
	// rolling baseline median.
	BaselineWindow int
}

// DefaultThresholds returns the calibrated defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		LowDelta:               -1.5,
		RisingJump:             1.5,
		RisingEndDelta:         1.0,
		RisingGlide:            1.2,
		RisingSlope:            4.0,
		ProlongedDelta:         1.2,
		ProlongedDurationRatio: 1.4,
		ProlongedSustain:       1.0,
		MinGradableDuration:    0.180,
		MinGradableConfidence:  0.70,
		SmootherKeepConfidence: 0.85,
		BaselineWindow:         5,
	}
}

// Classify runs the accent rule cascade on one syllable's features.
// The cascade order is part of the contract — earlier rules win:
//
//  1. ProlongedRise: unusually high AND unusually long AND sustained
//     above baseline.
//  2. Rising: sharp upward jump with a high ending pitch, OR a clear
//     internal upward glide with a steep slope.
//  3. Low: starting pitch meaningfully below baseline. A syllable that
//     starts low stays Low even if it recovers upward afterward.
//  4. Neutral: the default.
//
// Confidence scales with how far the triggering feature clears its
// threshold, capped at 1. An unvoiced syllable is Neutral with
// confidence 0.
func Classify(f Features, th Thresholds) (Accent, float64) {
	if !f.Voiced() {
		return Neutral, 0
	}

	if f.DeltaStart >= th.ProlongedDelta &&
		f.DurationRatio >= th.ProlongedDurationRatio &&
		f.DeltaEnd >= th.ProlongedSustain {
		height := clamp01(f.DeltaStart / (2 * th.ProlongedDelta))
		length := clamp01(f.DurationRatio / (2 * th.ProlongedDurationRatio))
		return ProlongedRise, (height + length) / 2
	}

	jumpFired := f.JumpFromPrev >= th.RisingJump && f.DeltaEnd >= th.RisingEndDelta
	glideFired := f.Glide() >= th.RisingGlide && f.Slope >= th.RisingSlope
	if jumpFired || glideFired {
		var conf float64
		if jumpFired {
			conf = clamp01(f.JumpFromPrev / (2 * th.RisingJump))
		}
		if glideFired {
			if c := clamp01(f.Glide() / (2 * th.RisingGlide)); c > conf {
				conf = c
			}
		}
		return Rising, conf
	}

	if f.DeltaStart <= th.LowDelta {
		return Low, clamp01(f.DeltaStart / (2 * th.LowDelta))
	}

	// Neutral confidence decays as the start pitch strays from
	// baseline toward one of the marked accents.
	conf := clamp01(1 - abs(f.DeltaStart)/(2*abs(th.LowDelta)))
	return Neutral, conf
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
