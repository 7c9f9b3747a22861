package swara

// BaselineSource records which rung of the fallback chain produced a
// baseline value. Deeper fallbacks mean a less trustworthy baseline;
// callers log them as quality signals.
type BaselineSource int

const (
	// BaselineNone means no voiced material existed anywhere; the
	// baseline value is meaningless and relative features stay zero.
	BaselineNone BaselineSource = iota

	// BaselineWindow is the normal case: median of at least two recent
	// neutral syllables.
	BaselineWindow

	// BaselineSparse means only one recent neutral syllable was
	// available.
	BaselineSparse

	// BaselineGlobal means no recent neutral syllable existed and the
	// value is the median over the recording's opening neutral
	// syllables.
	BaselineGlobal

	// BaselineFirst is the last resort before giving up: the first
	// voiced syllable's pitch, or the contour-wide median when passed.
	BaselineFirst
)

// String returns a short label for logging.
func (s BaselineSource) String() string {
	switch s {
	case BaselineWindow:
		return "window"
	case BaselineSparse:
		return "sparse"
	case BaselineGlobal:
		return "global"
	case BaselineFirst:
		return "first"
	default:
		return "none"
	}
}

// Baseline is the neutral-accent reference pitch valid at one syllable
// position, in absolute semitones. It is deliberately not global: a
// chanter's pitch drifts over a long recitation, so each syllable gets
// the baseline of its own recent context.
type Baseline struct {
	Semitone float64
	Source   BaselineSource
}

// Valid reports whether the baseline carries a usable value.
func (b Baseline) Valid() bool { return b.Source != BaselineNone }

// baselineVoicedRatio is the minimum voiced ratio for a syllable to
// contribute to the baseline.
const baselineVoicedRatio = 0.5

// globalFallbackSyllables caps how far into the recording the global
// fallback looks for neutral material.
const globalFallbackSyllables = 10

// RollingBaselines derives a per-syllable baseline from the recording
// itself. The baseline at syllable i is the median starting semitone
// pitch of the last window canonically-neutral syllables before i whose
// voiced ratio exceeds 0.5.
//
// Fallback chain, in order: fewer than two such syllables uses whatever
// is available; none at all uses the median over neutral syllables in
// the first ten positions (regardless of where i is); failing that, the
// first voiced syllable's pitch; failing that, contourMedianST (the
// median semitone pitch over all confident frames), which callers pass
// as the recording-wide estimate. Only when even that is absent does
// the baseline come back invalid.
func RollingBaselines(feats []Features, canonical []CanonicalSyllable, window int, contourMedianST float64) []Baseline {
	if window <= 0 {
		window = 5
	}

	globalST, globalOK := globalNeutralMedian(feats, canonical)
	firstST, firstOK := firstVoicedPitch(feats)

	baselines := make([]Baseline, len(feats))
	recent := make([]float64, 0, window)

	for i := range feats {
		recent = recent[:0]
		for j := i - 1; j >= 0 && len(recent) < window; j-- {
			if j < len(canonical) && isBaselineCandidate(feats[j], canonical[j]) {
				recent = append(recent, feats[j].StartST)
			}
		}

		switch {
		case len(recent) >= 2:
			baselines[i] = Baseline{Semitone: medianFloat(recent), Source: BaselineWindow}
		case len(recent) == 1:
			baselines[i] = Baseline{Semitone: recent[0], Source: BaselineSparse}
		case globalOK:
			baselines[i] = Baseline{Semitone: globalST, Source: BaselineGlobal}
		case firstOK:
			baselines[i] = Baseline{Semitone: firstST, Source: BaselineFirst}
		case contourMedianST != 0:
			baselines[i] = Baseline{Semitone: contourMedianST, Source: BaselineFirst}
		default:
			baselines[i] = Baseline{Source: BaselineNone}
		}
	}
	return baselines
}

// AverageBaseline returns the mean over valid baselines and the drift
// magnitude (max minus min valid value) in semitones. Both are 0 when
// no baseline is valid.
func AverageBaseline(baselines []Baseline) (avg, drift float64) {
	var sum float64
	count := 0
	min, max := 0.0, 0.0
	for _, b := range baselines {
		if !b.Valid() {
			continue
		}
		if count == 0 {
			min, max = b.Semitone, b.Semitone
		}
		if b.Semitone < min {
			min = b.Semitone
		}
		if b.Semitone > max {
			max = b.Semitone
		}
		sum += b.Semitone
		count++
	}
	if count == 0 {
		return 0, 0
	}
	return sum / float64(count), max - min
}

func isBaselineCandidate(f Features, c CanonicalSyllable) bool {
	return c.Accent == Neutral && f.Voiced() && f.VoicedRatio > baselineVoicedRatio
}

func globalNeutralMedian(feats []Features, canonical []CanonicalSyllable) (float64, bool) {
	var pitches []float64
	limit := minInt(globalFallbackSyllables, minInt(len(feats), len(canonical)))
	for i := 0; i < limit; i++ {
		if isBaselineCandidate(feats[i], canonical[i]) {
			pitches = append(pitches, feats[i].StartST)
		}
	}
	if len(pitches) == 0 {
		return 0, false
	}
	return medianFloat(pitches), true
}

func firstVoicedPitch(feats []Features) (float64, bool) {
	for _, f := range feats {
		if f.Voiced() {
			return f.StartST, true
		}
	}
	return 0, false
}
