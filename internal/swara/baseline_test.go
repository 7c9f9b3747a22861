package swara_test

import (
	"math"
	"testing"

	"github.com/vedavani/vedavani/internal/swara"
)

// neutralScript builds n canonically-neutral syllables.
func neutralScript(n int) []swara.CanonicalSyllable {
	script := make([]swara.CanonicalSyllable, n)
	for i := range script {
		script[i] = swara.CanonicalSyllable{Index: i, Text: "x", Accent: swara.Neutral}
	}
	return script
}

// voicedAt builds a voiced syllable starting at the given absolute
// semitone pitch.
func voicedAt(st float64) swara.Features {
	f := voiced(0, 0)
	f.StartST = st
	f.EndST = st
	return f
}

func TestRollingBaselinesWindow(t *testing.T) {
	t.Parallel()

	feats := []swara.Features{
		voicedAt(-10), voicedAt(-10.2), voicedAt(-9.8), voicedAt(-10.1), voicedAt(-10),
	}
	baselines := swara.RollingBaselines(feats, neutralScript(5), 5, 0)

	// The last syllable sees four preceding neutrals: a full window.
	last := baselines[4]
	if last.Source != swara.BaselineWindow {
		t.Fatalf("source = %v, want window", last.Source)
	}
	if math.Abs(last.Semitone-(-10.05)) > 1e-9 {
		t.Errorf("baseline = %v, want median -10.05", last.Semitone)
	}
}

func TestRollingBaselinesOutlierRobust(t *testing.T) {
	t.Parallel()

	// One wild syllable among steady neutrals must not drag the median.
	feats := []swara.Features{
		voicedAt(-10), voicedAt(-10), voicedAt(5), voicedAt(-10), voicedAt(-10), voicedAt(-10),
	}
	baselines := swara.RollingBaselines(feats, neutralScript(6), 5, 0)

	last := baselines[5]
	if math.Abs(last.Semitone-(-10)) > 1e-9 {
		t.Errorf("baseline = %v, want the -10 median despite the outlier", last.Semitone)
	}
}

func TestRollingBaselinesFallbackChain(t *testing.T) {
	t.Parallel()

	t.Run("single neutral gives sparse", func(t *testing.T) {
		t.Parallel()
		feats := []swara.Features{voicedAt(-10), voicedAt(-9)}
		baselines := swara.RollingBaselines(feats, neutralScript(2), 5, 0)
		if baselines[1].Source != swara.BaselineSparse {
			t.Errorf("source = %v, want sparse", baselines[1].Source)
		}
		if baselines[1].Semitone != -10 {
			t.Errorf("baseline = %v, want -10", baselines[1].Semitone)
		}
	})

	t.Run("no preceding neutral falls back to global", func(t *testing.T) {
		t.Parallel()
		// First syllable has nothing before it; the global median over
		// the opening neutrals still applies.
		feats := []swara.Features{voicedAt(-10), voicedAt(-9)}
		baselines := swara.RollingBaselines(feats, neutralScript(2), 5, 0)
		if baselines[0].Source != swara.BaselineGlobal {
			t.Errorf("source = %v, want global", baselines[0].Source)
		}
	})

	t.Run("no neutral anywhere uses first voiced", func(t *testing.T) {
		t.Parallel()
		script := []swara.CanonicalSyllable{
			{Accent: swara.Low}, {Accent: swara.Rising},
		}
		feats := []swara.Features{voicedAt(-12), voicedAt(-8)}
		baselines := swara.RollingBaselines(feats, script, 5, 0)
		for i, b := range baselines {
			if b.Source != swara.BaselineFirst {
				t.Errorf("baseline %d source = %v, want first", i, b.Source)
			}
			if b.Semitone != -12 {
				t.Errorf("baseline %d = %v, want the first voiced pitch", i, b.Semitone)
			}
		}
	})

	t.Run("nothing voiced uses contour median", func(t *testing.T) {
		t.Parallel()
		feats := []swara.Features{{}, {}}
		baselines := swara.RollingBaselines(feats, neutralScript(2), 5, -11)
		for i, b := range baselines {
			if b.Source != swara.BaselineFirst || b.Semitone != -11 {
				t.Errorf("baseline %d = %+v, want contour median -11", i, b)
			}
		}
	})

	t.Run("nothing at all is invalid", func(t *testing.T) {
		t.Parallel()
		feats := []swara.Features{{}, {}}
		baselines := swara.RollingBaselines(feats, neutralScript(2), 5, 0)
		for i, b := range baselines {
			if b.Valid() {
				t.Errorf("baseline %d = %+v, want invalid", i, b)
			}
		}
	})
}

func TestAverageBaseline(t *testing.T) {
	t.Parallel()

	baselines := []swara.Baseline{
		{Semitone: -10, Source: swara.BaselineWindow},
		{Semitone: -9, Source: swara.BaselineWindow},
		{Source: swara.BaselineNone},
		{Semitone: -11, Source: swara.BaselineGlobal},
	}
	avg, drift := swara.AverageBaseline(baselines)
	if math.Abs(avg-(-10)) > 1e-9 {
		t.Errorf("avg = %v, want -10", avg)
	}
	if math.Abs(drift-2) > 1e-9 {
		t.Errorf("drift = %v, want 2", drift)
	}

	if avg, drift := swara.AverageBaseline(nil); avg != 0 || drift != 0 {
		t.Errorf("empty input: avg %v drift %v, want zeros", avg, drift)
	}
}
