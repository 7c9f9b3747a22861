// Package swara classifies the pitch accent a chanter actually produced
// on each syllable and grades it against the canonical accent of the
// text. The pipeline is: per-syllable acoustic features, a rolling
// neutral-pitch baseline, a deterministic rule cascade, canonical
// tolerance snapping, and a local smoothing pass.
//
// Everything in this package is a pure function over explicit inputs.
// Baselines in particular are values computed per call, never state
// retained between recordings.
package swara

import (
	"fmt"

	"github.com/vedavani/vedavani/internal/align"
)

// Accent is one of the four pitch-accent classes of Vedic recitation.
// The zero value is Neutral.
type Accent int

const (
	// Neutral is the unmarked recitation tone (udātta level).
	Neutral Accent = iota

	// Low is a syllable that starts meaningfully below the neutral
	// baseline (anudātta).
	Low

	// Rising is an upward movement, either a jump from the previous
	// syllable or an internal glide (svarita).
	Rising

	// ProlongedRise is a sustained high tone held unusually long
	// (dīrgha svarita).
	ProlongedRise
)

var accentNames = map[Accent]string{
	Neutral:       "neutral",
	Low:           "low",
	Rising:        "rising",
	ProlongedRise: "prolonged-rise",
}

// String returns the lowercase accent name used in config files and
// reports.
func (a Accent) String() string {
	if s, ok := accentNames[a]; ok {
		return s
	}
	return fmt.Sprintf("accent(%d)", int(a))
}

// ParseAccent converts an accent name from a canonical script file.
func ParseAccent(s string) (Accent, error) {
	for a, name := range accentNames {
		if s == name {
			return a, nil
		}
	}
	return Neutral, fmt.Errorf("swara: unknown accent %q (valid: neutral, low, rising, prolonged-rise)", s)
}

// MarshalYAML encodes the accent as its name.
func (a Accent) MarshalYAML() (any, error) { return a.String(), nil }

// UnmarshalYAML decodes an accent name.
func (a *Accent) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := ParseAccent(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// CanonicalSyllable is one syllable of the reference script: the text as
// written plus the accent the tradition prescribes. Start and End are
// optional timing hints in seconds; zero values mean "unknown".
type CanonicalSyllable struct {
	Index  int     `yaml:"-"`
	Text   string  `yaml:"text"`
	Accent Accent  `yaml:"accent"`
	Start  float64 `yaml:"start,omitempty"`
	End    float64 `yaml:"end,omitempty"`
}

// Features holds the acoustic measurements of one recorded syllable.
// Absolute values come straight from the contour; the relative fields
// (DeltaStart, DeltaEnd, JumpFromPrev) are filled in once the rolling
// baseline is known. A Features value is never mutated after that.
type Features struct {
	Index int
	Span  align.Span

	// StartHz and EndHz are the pitch at the beginning and end of the
	// voiced portion, 0 when the syllable has no voiced frames.
	StartHz float64
	EndHz   float64

	// StartST and EndST are the same pitches on the absolute semitone
	// scale (relative to A440).
	StartST float64
	EndST   float64

	// Slope is the linear pitch trend over voiced frames in
	// semitones per second.
	Slope float64

	// VoicedDuration is seconds of voiced signal inside the span.
	VoicedDuration float64

	// VoicedRatio is the voiced fraction of the span's frames.
	VoicedRatio float64

	// Energy is the RMS energy of the span's samples.
	Energy float64

	// Confidence is the mean pitch confidence over voiced frames.
	Confidence float64

	// DeltaStart and DeltaEnd are StartST and EndST minus the rolling
	// baseline for this syllable, in semitones.
	DeltaStart float64
	DeltaEnd   float64

	// JumpFromPrev is StartST minus the previous syllable's EndST, in
	// semitones; 0 for the first syllable or when either side is
	// unvoiced.
	JumpFromPrev float64

	// DurationRatio is VoicedDuration relative to the median voiced
	// duration of the recording's canonically-neutral syllables; 1 when
	// no reference duration is available.
	DurationRatio float64
}

// Glide is the internal pitch movement of the syllable in semitones
// (end minus start). Positive values rise.
func (f Features) Glide() float64 { return f.EndST - f.StartST }

// Voiced reports whether the syllable carries enough voiced signal to
// measure at all.
func (f Features) Voiced() bool { return f.VoicedDuration > 0 && f.StartHz > 0 }

// Classification is the graded outcome for one syllable.
type Classification struct {
	// Raw is the accent the rule cascade assigned before any
	// smoothing or snapping.
	Raw Accent

	// Corrected is the accent after canonical tolerance snapping.
	Corrected Accent

	// Confidence is the cascade's confidence in Raw, in [0, 1].
	Confidence float64

	// Acceptable reports whether a human grader would accept the
	// rendition for its canonical accent.
	Acceptable bool

	// Gradable reports whether the syllable's signal quality suffices
	// to count toward accuracy statistics. Ungradable syllables are
	// excluded from denominators, never penalized.
	Gradable bool
}
