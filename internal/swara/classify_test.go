package swara_test

import (
	"testing"

	"github.com/vedavani/vedavani/internal/swara"
)

// voiced builds a voiced syllable with the given baseline-relative
// pitch movement. Absolute pitches are filled in so Voiced() holds.
func voiced(deltaStart, deltaEnd float64) swara.Features {
	return swara.Features{
		StartHz:        200,
		EndHz:          200,
		StartST:        deltaStart,
		EndST:          deltaEnd,
		DeltaStart:     deltaStart,
		DeltaEnd:       deltaEnd,
		VoicedDuration: 0.25,
		VoicedRatio:    0.9,
		Confidence:     0.9,
		DurationRatio:  1,
	}
}

func TestClassifyCascade(t *testing.T) {
	t.Parallel()

	th := swara.DefaultThresholds()

	tests := []struct {
		name string
		f    swara.Features
		want swara.Accent
	}{
		{"unvoiced is neutral", swara.Features{}, swara.Neutral},
		{"on baseline is neutral", voiced(0, 0), swara.Neutral},
		{"below low threshold", voiced(-3, -3), swara.Low},
		{"exactly at low threshold", voiced(th.LowDelta, th.LowDelta), swara.Low},
		{"slightly below baseline stays neutral", voiced(-1, -1), swara.Neutral},
		{
			"upward jump with high end",
			func() swara.Features {
				f := voiced(2, 2)
				f.JumpFromPrev = 3
				return f
			}(),
			swara.Rising,
		},
		{
			"internal glide with steep slope",
			func() swara.Features {
				f := voiced(0, 2)
				f.Slope = 8
				return f
			}(),
			swara.Rising,
		},
		{
			"high long sustained is prolonged rise",
			func() swara.Features {
				f := voiced(2, 2)
				f.DurationRatio = 2
				return f
			}(),
			swara.ProlongedRise,
		},
		{
			"high but short is not prolonged",
			func() swara.Features {
				f := voiced(2, 2)
				f.DurationRatio = 1
				f.JumpFromPrev = 3
				return f
			}(),
			swara.Rising,
		},
		{
			"low start stays low even when recovering",
			voiced(-2, 1),
			swara.Low,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, conf := swara.Classify(tt.f, th)
			if got != tt.want {
				t.Errorf("Classify() = %v (conf %.2f), want %v", got, conf, tt.want)
			}
			if conf < 0 || conf > 1 {
				t.Errorf("confidence %v outside [0, 1]", conf)
			}
		})
	}
}

func TestClassifyConfidenceScalesWithMargin(t *testing.T) {
	t.Parallel()

	th := swara.DefaultThresholds()

	_, barely := swara.Classify(voiced(th.LowDelta, th.LowDelta), th)
	_, clearly := swara.Classify(voiced(2*th.LowDelta, 2*th.LowDelta), th)
	if clearly <= barely {
		t.Errorf("confidence did not grow with margin: barely %.2f, clearly %.2f", barely, clearly)
	}
	if clearly != 1 {
		t.Errorf("double-threshold low confidence = %.2f, want 1", clearly)
	}

	_, unvoicedConf := swara.Classify(swara.Features{}, th)
	if unvoicedConf != 0 {
		t.Errorf("unvoiced confidence = %v, want 0", unvoicedConf)
	}
}

func TestGradable(t *testing.T) {
	t.Parallel()

	th := swara.DefaultThresholds()
	f := voiced(0, 0)

	if !swara.Gradable(f, 0.9, th) {
		t.Error("clear syllable reported ungradable")
	}

	short := f
	short.VoicedDuration = 0.1
	if swara.Gradable(short, 0.9, th) {
		t.Error("short syllable reported gradable")
	}

	if swara.Gradable(f, 0.5, th) {
		t.Error("low-confidence syllable reported gradable")
	}

	// Thresholds are strict inequalities.
	edge := f
	edge.VoicedDuration = th.MinGradableDuration
	if swara.Gradable(edge, 0.9, th) {
		t.Error("exact-duration syllable reported gradable")
	}
	if swara.Gradable(f, th.MinGradableConfidence, th) {
		t.Error("exact-confidence syllable reported gradable")
	}
}

func TestParseAccentRoundTrip(t *testing.T) {
	t.Parallel()

	for _, a := range []swara.Accent{swara.Neutral, swara.Low, swara.Rising, swara.ProlongedRise} {
		parsed, err := swara.ParseAccent(a.String())
		if err != nil {
			t.Errorf("ParseAccent(%q): %v", a.String(), err)
		}
		if parsed != a {
			t.Errorf("ParseAccent(%q) = %v, want %v", a.String(), parsed, a)
		}
	}

	if _, err := swara.ParseAccent("sforzando"); err == nil {
		t.Error("ParseAccent accepted an unknown name")
	}
}
