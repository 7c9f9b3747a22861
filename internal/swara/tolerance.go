package swara

// Tolerance constants for canonical snapping. These encode how far a
// rendition may drift from the strict rule thresholds and still be
// accepted the way a human teacher would accept it.
const (
	// toleranceJump is the minimum measurable upward cross-syllable
	// jump that lets a canonically-rising syllable pass despite a
	// neutral raw classification.
	toleranceJump = 0.5

	// toleranceLowSlack widens the Low band for canonically-neutral
	// syllables: a start pitch within this many semitones below the
	// Low threshold is still forgiven as neutral.
	toleranceLowSlack = 0.5

	// toleranceDurationRatio is the relative duration above which a
	// rendition counts as "held long", used when Rising and
	// ProlongedRise blur into each other.
	toleranceDurationRatio = 1.2
)

// Snap adjusts a raw classification toward the canonical expectation
// when the deviation is within musically acceptable bounds. It returns
// raw unchanged when no tolerance rule applies.
//
// The rules are feature-conditioned, not blanket: a canonically-neutral
// syllable that raw-classified as ProlongedRise snaps back only when
// its duration really is long (a sustained neutral tone sounds like a
// prolonged rise); a canonically-rising syllable that raw-classified as
// Neutral snaps up only when a measurable upward jump exists.
func Snap(canonical, raw Accent, f Features, th Thresholds) Accent {
	if canonical == raw {
		return raw
	}

	switch canonical {
	case Neutral:
		switch raw {
		case ProlongedRise:
			if f.DurationRatio >= th.ProlongedDurationRatio {
				return Neutral
			}
		case Low:
			if f.DeltaStart >= th.LowDelta-toleranceLowSlack {
				return Neutral
			}
		}

	case Rising:
		switch raw {
		case Neutral:
			if f.JumpFromPrev >= toleranceJump {
				return Rising
			}
		case ProlongedRise:
			// An overshot rise: same gesture, held too long.
			if f.Glide() > 0 || f.JumpFromPrev > 0 {
				return Rising
			}
		}

	case ProlongedRise:
		if raw == Rising && f.DurationRatio >= toleranceDurationRatio {
			return ProlongedRise
		}

	case Low:
		if raw == Neutral && f.DeltaStart <= th.LowDelta/2 {
			return Low
		}
	}

	return raw
}

// Acceptable reports whether corrected is an acceptable rendition of
// canonical, re-validating against the same feature thresholds the
// snapping rules use. It is deliberately not `corrected == canonical`:
// some renditions are accepted without being snapped to identity, such
// as a canonically-rising syllable realized as a genuine but overlong
// rise.
func Acceptable(canonical, corrected Accent, f Features, th Thresholds) bool {
	if canonical == corrected {
		return true
	}

	switch canonical {
	case Neutral:
		if corrected == ProlongedRise {
			return f.DurationRatio >= th.ProlongedDurationRatio
		}
	case Rising:
		switch corrected {
		case ProlongedRise:
			return f.DeltaEnd >= th.RisingEndDelta
		case Neutral:
			return f.JumpFromPrev >= toleranceJump
		}
	case ProlongedRise:
		if corrected == Rising {
			return f.DurationRatio >= toleranceDurationRatio
		}
	case Low:
		if corrected == Neutral {
			return f.DeltaStart <= th.LowDelta/2
		}
	}
	return false
}

// Gradable reports whether a syllable's signal quality suffices for its
// classification to count toward accuracy statistics. It is monotonic:
// raising confidence or duration can only move a syllable from
// ungradable to gradable.
func Gradable(f Features, rawConfidence float64, th Thresholds) bool {
	return f.VoicedDuration > th.MinGradableDuration &&
		rawConfidence > th.MinGradableConfidence
}
