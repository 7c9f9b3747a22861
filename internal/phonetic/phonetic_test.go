package phonetic_test

import (
	"testing"

	"github.com/vedavani/vedavani/internal/phonetic"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"whitespace and punctuation stripped", "रा म, ।after", "राम"},
		{"danda cuts the tail", "रामः। extra text", "रामः"},
		{"vedic accent marks stripped", "अ॒ग्निम॑", "अग्निम"},
		{"iast folded to ascii", "Rāmaḥ", "ramah"},
		{"final virama dropped", "तत्", "तत"},
		{"devanagari geminate simplified", "अन्न", "अन"},
		{"romanized geminate simplified", "anna", "ana"},
		{"case folded", "AGNI", "agni"},
		{"zero width characters stripped", "अ​ग‌नि‍", "अगनि"},
		{"byte order mark stripped", "\ufeffagni", "agni"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := phonetic.Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSubstitutionCostSymmetric(t *testing.T) {
	t.Parallel()

	runes := []rune{'क', 'ख', 'ग', 'त', 'ट', 'द', 'ड', 'न', 'ण', 'श', 'ष', 'स', 'ः', 'ह', 'ा', '्', 'अ', 'म'}
	for _, a := range runes {
		for _, b := range runes {
			ab := phonetic.SubstitutionCost(a, b)
			ba := phonetic.SubstitutionCost(b, a)
			if ab != ba {
				t.Errorf("SubstitutionCost(%c, %c) = %v but reversed = %v", a, b, ab, ba)
			}
			if a == b && ab != 0 {
				t.Errorf("SubstitutionCost(%c, %c) = %v, want 0", a, b, ab)
			}
			if ab < 0 || ab > 1 {
				t.Errorf("SubstitutionCost(%c, %c) = %v outside [0, 1]", a, b, ab)
			}
		}
	}
}

func TestSubstitutionCostTiers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b rune
		want float64
	}{
		{"sandhi visarga vs aa-sign", 'ः', 'ा', 0.1},
		{"sandhi visarga vs ha", 'ः', 'ह', 0.1},
		{"dental vs retroflex", 'त', 'ट', 0.25},
		{"voicing within varga", 'क', 'ग', 0.4},
		{"aspiration within varga", 'त', 'थ', 0.4},
		{"sibilant confusion", 'श', 'स', 0.5},
		{"unrelated consonants", 'क', 'म', 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := phonetic.SubstitutionCost(tt.a, tt.b); got != tt.want {
				t.Errorf("SubstitutionCost(%c, %c) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSimilarity(t *testing.T) {
	t.Parallel()

	t.Run("identical is 100", func(t *testing.T) {
		t.Parallel()
		for _, s := range []string{"रामः", "अग्निमीळे", "agni", "tat savitur"} {
			if got := phonetic.Similarity(s, s); got != 100 {
				t.Errorf("Similarity(%q, %q) = %d, want 100", s, s, got)
			}
		}
	})

	t.Run("both empty is 100", func(t *testing.T) {
		t.Parallel()
		if got := phonetic.Similarity("", ""); got != 100 {
			t.Errorf("Similarity(\"\", \"\") = %d, want 100", got)
		}
	})

	t.Run("one empty is 0", func(t *testing.T) {
		t.Parallel()
		if got := phonetic.Similarity("", "रामः"); got != 0 {
			t.Errorf("Similarity(\"\", रामः) = %d, want 0", got)
		}
		if got := phonetic.Similarity("रामः", ""); got != 0 {
			t.Errorf("Similarity(रामः, \"\") = %d, want 0", got)
		}
	})

	t.Run("sandhi variant stays high", func(t *testing.T) {
		t.Parallel()
		got := phonetic.Similarity("रामा", "रामः")
		if got < 90 {
			t.Errorf("Similarity(रामा, रामः) = %d, want >= 90", got)
		}
	})

	t.Run("unrelated text scores low", func(t *testing.T) {
		t.Parallel()
		got := phonetic.Similarity("कखगघ", "रामः")
		if got >= 60 {
			t.Errorf("Similarity(कखगघ, रामः) = %d, want < 60", got)
		}
	})

	t.Run("romanized falls back to jaro-winkler", func(t *testing.T) {
		t.Parallel()
		got := phonetic.Similarity("ramaha", "ramah")
		if got < 90 {
			t.Errorf("Similarity(ramaha, ramah) = %d, want >= 90", got)
		}
	})
}

func TestDistance(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"both empty", "", "", 0},
		{"insertions from empty", "", "राम", 3},
		{"deletions to empty", "राम", "", 3},
		{"single sandhi substitution", "रामा", "रामः", 0.1},
		{"single voicing substitution", "कम", "गम", 0.4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := phonetic.Distance(tt.a, tt.b); got != tt.want {
				t.Errorf("Distance(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestMatchSyllables(t *testing.T) {
	t.Parallel()

	t.Run("perfect transcript matches every syllable", func(t *testing.T) {
		t.Parallel()
		expected := []string{"रा", "मः"}
		matches := phonetic.MatchSyllables("रामः", expected)
		if len(matches) != len(expected) {
			t.Fatalf("got %d matches, want %d", len(matches), len(expected))
		}
		for i, m := range matches {
			if !m.Matched {
				t.Errorf("syllable %d (%q vs %q) not matched, score %d", i, m.ObservedText, m.ExpectedText, m.Score)
			}
		}
	})

	t.Run("empty transcript leaves syllables unmatched", func(t *testing.T) {
		t.Parallel()
		matches := phonetic.MatchSyllables("", []string{"रा", "मः"})
		for i, m := range matches {
			if m.Matched {
				t.Errorf("syllable %d matched against empty transcript", i)
			}
			if m.Score != 0 {
				t.Errorf("syllable %d score = %d, want 0", i, m.Score)
			}
		}
	})

	t.Run("no expected syllables", func(t *testing.T) {
		t.Parallel()
		if got := phonetic.MatchSyllables("रामः", nil); len(got) != 0 {
			t.Errorf("got %d matches, want 0", len(got))
		}
	})
}
