package analysis

import "math"

// Weighting of the combined score. Pronunciation dominates because a
// correctly pronounced syllable with a slipped accent is closer to the
// tradition than the reverse.
const (
	pronunciationWeight = 0.6
	accentWeight        = 0.4
)

// Combine fills in Report.Overall from the report's component scores.
//
// Both components available: the weighted mean. Accent analysis
// unavailable (no gradable syllables, or not run at all): the
// pronunciation score stands alone. Pronunciation unavailable: the
// accent score stands alone, and the pronunciation failure reason
// remains visible on the report. Neither available: no score — the
// reason names the missing inputs rather than guessing a default.
func Combine(r *Report) {
	accentOK := r.Accent != nil && r.Accent.Gradable()
	pronOK := r.Pronunciation != nil && !r.Pronunciation.Failed()

	switch {
	case accentOK && pronOK:
		r.Overall = int(math.Round(
			pronunciationWeight*float64(r.Pronunciation.OverallPercent) +
				accentWeight*float64(r.Accent.AccuracyPercent)))
	case pronOK:
		r.Overall = r.Pronunciation.OverallPercent
	case accentOK:
		r.Overall = r.Accent.AccuracyPercent
	default:
		r.OverallReason = combineFailureReason(r)
	}
}

func combineFailureReason(r *Report) string {
	switch {
	case r.Pronunciation != nil && r.Pronunciation.Failed():
		if r.Accent == nil {
			return r.Pronunciation.FailureReason + "; accent analysis not run"
		}
		return r.Pronunciation.FailureReason + "; no gradable syllables"
	case r.Accent == nil && r.Pronunciation == nil:
		return "no inputs analyzed"
	case r.Pronunciation == nil:
		return "no transcript provided; no gradable syllables"
	default:
		return "no gradable syllables"
	}
}
