package phonetic

import (
	"math"

	"github.com/antzucaro/matchr"
)

// matchedScoreThreshold is the per-syllable score at or above which a
// syllable counts as matched in [MatchSyllables].
const matchedScoreThreshold = 60

// Similarity scores how closely observed matches expected, from 0
// (nothing in common) to 100 (phonetically identical). Both strings
// are normalized first; see [Normalize].
//
// When either string contains Devanagari the score comes from the
// weighted edit distance ([Distance]). Otherwise both strings are
// romanized transcripts and Jaro-Winkler similarity is used, since the
// Devanagari confusion table cannot price Latin sound pairs.
//
// Similarity(x, x) == 100 for any x that survives normalization.
func Similarity(observed, expected string) int {
	obs := Normalize(observed)
	exp := Normalize(expected)

	if obs == "" && exp == "" {
		return 100
	}
	if obs == "" || exp == "" {
		return 0
	}

	if ContainsDevanagari(obs) || ContainsDevanagari(exp) {
		dist := Distance(obs, exp)
		maxLen := float64(maxInt(runeLen(obs), runeLen(exp)))
		return int(math.Round(100 * (maxLen - dist) / maxLen))
	}

	return int(math.Round(100 * matchr.JaroWinkler(obs, exp, false)))
}

// Distance computes the weighted Levenshtein distance between two
// already-normalized strings using [SubstitutionCost] for
// substitutions and cost 1 for insertions and deletions. The full
// dynamic-programming matrix is computed so scores are deterministic
// and exact, never approximated.
func Distance(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	la, lb := len(ra), len(rb)
	if la == 0 {
		return float64(lb)
	}
	if lb == 0 {
		return float64(la)
	}

	prev := make([]float64, lb+1)
	cur := make([]float64, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = float64(j)
	}

	for i := 1; i <= la; i++ {
		cur[0] = float64(i)
		for j := 1; j <= lb; j++ {
			sub := prev[j-1] + SubstitutionCost(ra[i-1], rb[j-1])
			del := prev[j] + 1
			ins := cur[j-1] + 1
			cur[j] = math.Min(sub, math.Min(del, ins))
		}
		prev, cur = cur, prev
	}
	return prev[lb]
}

// SyllableMatch grades one expected syllable against the slice of the
// observed transcript attributed to it.
type SyllableMatch struct {
	// ExpectedText is the canonical syllable as written.
	ExpectedText string

	// ObservedText is the normalized transcript slice attributed to
	// this syllable. May be empty when the transcript ran short.
	ObservedText string

	// Score is the phonetic similarity of the two, 0–100.
	Score int

	// Matched reports whether Score clears the match threshold.
	Matched bool
}

// MatchSyllables attributes slices of the observed transcript to the
// expected syllables proportionally by length and grades each pair.
// Proportional slicing is deliberate: recognizers do not emit syllable
// boundaries, and a length-proportional cut is deterministic and
// robust to small insertions, which the per-slice similarity absorbs.
func MatchSyllables(observed string, expected []string) []SyllableMatch {
	obs := []rune(Normalize(observed))

	normExpected := make([][]rune, len(expected))
	totalExpected := 0
	for i, e := range expected {
		normExpected[i] = []rune(Normalize(e))
		totalExpected += len(normExpected[i])
	}

	matches := make([]SyllableMatch, len(expected))
	pos := 0
	consumed := 0
	for i := range expected {
		matches[i].ExpectedText = expected[i]

		var slice []rune
		if totalExpected > 0 && len(obs) > 0 {
			consumed += len(normExpected[i])
			end := int(math.Round(float64(consumed) / float64(totalExpected) * float64(len(obs))))
			if end > len(obs) {
				end = len(obs)
			}
			if end > pos {
				slice = obs[pos:end]
				pos = end
			}
		}
		matches[i].ObservedText = string(slice)
		matches[i].Score = Similarity(matches[i].ObservedText, expected[i])
		matches[i].Matched = matches[i].Score >= matchedScoreThreshold
	}
	return matches
}

func runeLen(s string) int { return len([]rune(s)) }

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
