package plaintext

import (
	"strings"
	"unicode"

	xrunes "golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lowercases s and strips diacritic marks, so "Bobä" and "Boba"
// compare equal. Markup should already be gone (see ToText). A fresh
// transformer chain is built per call; the chain carries state and must
// not be shared across goroutines.
func Fold(s string) string {
	chain := transform.Chain(norm.NFD, xrunes.Remove(xrunes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(chain, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}
