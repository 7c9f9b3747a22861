package swara

// mismatchCost weighs how implausible it is for raw to have been an
// attempt at canonical. Identical classes cost nothing; the two upward
// accents are acoustic neighbors; low against either rise is an
// opposite-direction error.
func mismatchCost(raw, canonical Accent) float64 {
	if raw == canonical {
		return 0
	}
	if (raw == Rising && canonical == ProlongedRise) ||
		(raw == ProlongedRise && canonical == Rising) {
		return 0.5
	}
	if (raw == Low && (canonical == Rising || canonical == ProlongedRise)) ||
		(canonical == Low && (raw == Rising || raw == ProlongedRise)) {
		return 2.0
	}
	return 1.0
}

// Smooth corrects low-confidence local misclassifications using
// neighbor context. For each syllable below the keep-confidence
// threshold whose mismatch cost against the canonical expectation
// exceeds 0.5, the classification is overridden to the canonical value
// when at least one immediate neighbor's raw classification equals this
// syllable's canonical expectation.
//
// This is intentionally a 1-neighbor heuristic rather than a global
// optimization. Only length-matched sequences are smoothed: when
// len(raw) differs from len(canonical), raw is returned unchanged
// rather than truncated or padded, which would silently corrupt
// indices.
func Smooth(raw []Accent, canonical []Accent, confidence []float64, th Thresholds) []Accent {
	if len(raw) != len(canonical) || len(raw) != len(confidence) {
		return raw
	}

	out := make([]Accent, len(raw))
	copy(out, raw)

	for i := range raw {
		if confidence[i] >= th.SmootherKeepConfidence {
			continue
		}
		if mismatchCost(raw[i], canonical[i]) <= 0.5 {
			continue
		}
		if neighborAgrees(raw, canonical, i) {
			out[i] = canonical[i]
		}
	}
	return out
}

// neighborAgrees reports whether an immediate neighbor of i was itself
// classified as what syllable i canonically should be. Agreement from
// either side is evidence the chanter was on track and syllable i is a
// local glitch.
func neighborAgrees(raw, canonical []Accent, i int) bool {
	if i > 0 && raw[i-1] == canonical[i] {
		return true
	}
	if i+1 < len(raw) && raw[i+1] == canonical[i] {
		return true
	}
	return false
}
