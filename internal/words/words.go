// Package words implements the word-overlap correlator used for fuzzy
// field comparison: two strings are scored by how much their word
// multisets overlap, not by edit distance.
package words

import (
	"strings"
	"unicode"
)

// Tokens splits s into lowercase word tokens on any rune that is not a
// letter or digit and returns the token counts.
func Tokens(s string) map[string]int {
	counts := make(map[string]int)
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range fields {
		counts[w]++
	}
	return counts
}

// Correlate returns the overlap ratio of the two strings' word
// multisets: the sum of per-word minimum counts over the sum of
// per-word maximum counts. Identical strings score 1.0, disjoint
// strings 0.0. Two empty strings are treated as equal (1.0); an empty
// string against a non-empty one scores 0.0. Symmetric in its
// arguments.
func Correlate(a, b string) float64 {
	ca := Tokens(a)
	cb := Tokens(b)

	if len(ca) == 0 && len(cb) == 0 {
		return 1.0
	}
	if len(ca) == 0 || len(cb) == 0 {
		return 0.0
	}

	var intersection, union int
	for w, na := range ca {
		if nb, ok := cb[w]; ok {
			intersection += min(na, nb)
			union += max(na, nb)
		} else {
			union += na
		}
	}
	for w, nb := range cb {
		if _, ok := ca[w]; !ok {
			union += nb
		}
	}

	return float64(intersection) / float64(union)
}
