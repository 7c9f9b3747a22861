// Package phonetic scores how closely a transcribed recitation matches
// the expected syllable text. The distance is a weighted Levenshtein
// over Devanagari runes whose substitution costs encode the script's
// known confusable sound pairs: sandhi variants are near-free,
// dental/retroflex slips are cheap, voicing and aspiration slips cost
// more, and unrelated sounds cost full price.
//
// Transcripts sometimes come back romanized (IAST or plain ASCII) from
// cloud recognizers; when neither string contains Devanagari the
// package falls back to Jaro-Winkler similarity on folded text instead
// of pretending the Devanagari cost table applies.
package phonetic

import (
	"strings"
	"unicode"
)

// devanagariLo and devanagariHi bound the Devanagari block.
const (
	devanagariLo = 0x0900
	devanagariHi = 0x097F

	danda       = '।' // । verse-end marker
	doubleDanda = '॥' // ॥
	virama      = '्'
	visarga     = 'ः'
)

// strippedMarks are marks with no phonemic weight for grading: the
// Vedic accent marks (the chanter's pitch is graded acoustically, not
// orthographically), candrabindu-family tone marks, and zero-width
// formatting characters.
var strippedMarks = map[rune]bool{
	'॑':      true, // udatta mark
	'॒':      true, // anudatta mark
	'॓':      true, // grave accent
	'॔':      true, // acute accent
	'\u200B': true, // zero width space
	'\u200C': true, // zero width non-joiner
	'\u200D': true, // zero width joiner
	'\uFEFF': true, // BOM
}

// iastFold maps precomposed IAST transliteration runes to their plain
// ASCII base letters. Combining diacritics in the U+0300 range are
// stripped separately.
var iastFold = map[rune]rune{
	'ā': 'a', 'ī': 'i', 'ū': 'u',
	'ṛ': 'r', 'ṝ': 'r', 'ḷ': 'l', 'ḹ': 'l',
	'ṃ': 'm', 'ḥ': 'h', 'ṅ': 'n', 'ñ': 'n', 'ṇ': 'n',
	'ṭ': 't', 'ḍ': 'd', 'ś': 's', 'ṣ': 's',
	'ē': 'e', 'ō': 'o',
}

// Normalize prepares a string for distance computation: everything
// after a verse-end danda is discarded, case is folded, punctuation and
// whitespace are stripped, non-phonemic marks are removed, word-final
// viramas are dropped, and geminate consonants are simplified.
func Normalize(s string) string {
	if i := strings.IndexAny(s, string(danda)+string(doubleDanda)); i >= 0 {
		s = s[:i]
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case strippedMarks[r]:
		case unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r):
		case r >= 0x0300 && r <= 0x036F: // combining Latin diacritics
		default:
			if folded, ok := iastFold[r]; ok {
				r = folded
			}
			b.WriteRune(r)
		}
	}

	runes := []rune(b.String())
	runes = dropFinalVirama(runes)
	runes = simplifyGeminates(runes)
	return string(runes)
}

// ContainsDevanagari reports whether s holds at least one rune from the
// Devanagari block.
func ContainsDevanagari(s string) bool {
	for _, r := range s {
		if r >= devanagariLo && r <= devanagariHi {
			return true
		}
	}
	return false
}

// dropFinalVirama removes a trailing virama: a bare word-final
// consonant and the same consonant with its inherent vowel are the same
// recitation target.
func dropFinalVirama(runes []rune) []rune {
	if n := len(runes); n > 0 && runes[n-1] == virama {
		return runes[:n-1]
	}
	return runes
}

// simplifyGeminates collapses doubled consonants. In Devanagari a
// geminate is written consonant + virama + same consonant; in romanized
// text it is a doubled letter. Both collapse to the single consonant.
func simplifyGeminates(runes []rune) []rune {
	out := runes[:0]
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		// Devanagari geminate: C ् C → C.
		if i+2 < len(runes) && runes[i+1] == virama && runes[i+2] == r && isDevanagariConsonant(r) {
			out = append(out, r)
			i += 2
			continue
		}
		// Romanized geminate: doubled ASCII consonant.
		if i+1 < len(runes) && runes[i+1] == r && isASCIIConsonant(r) {
			out = append(out, r)
			i++
			continue
		}
		out = append(out, r)
	}
	return out
}

func isDevanagariConsonant(r rune) bool {
	return (r >= 0x0915 && r <= 0x0939) || (r >= 0x0958 && r <= 0x095F)
}

func isASCIIConsonant(r rune) bool {
	if r < 'a' || r > 'z' {
		return false
	}
	switch r {
	case 'a', 'e', 'i', 'o', 'u':
		return false
	}
	return true
}
