// Package plaintext converts LaTeX-flavored field values to plain
// Unicode text so entries written with markup compare fairly against
// entries written without it. It also provides the diacritic folding
// used for author comparison.
package plaintext

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// combiningAccents maps LaTeX accent commands to Unicode combining
// marks. Symbol-named commands (\" \' etc.) and letter-named commands
// (\v \c etc.) share the table; letter-named ones require a braced or
// space-separated argument.
var combiningAccents = map[string]rune{
	`"`: 0x0308, // diaeresis
	`'`: 0x0301, // acute
	"`": 0x0300, // grave
	`^`: 0x0302, // circumflex
	`~`: 0x0303, // tilde
	`=`: 0x0304, // macron
	`.`: 0x0307, // dot above
	"u": 0x0306, // breve
	"v": 0x030C, // caron
	"H": 0x030B, // double acute
	"c": 0x0327, // cedilla
	"k": 0x0328, // ogonek
	"r": 0x030A, // ring above
	"b": 0x0331, // macron below
	"d": 0x0323, // dot below
}

// specialCommands maps argument-less LaTeX commands to their glyphs.
var specialCommands = map[string]string{
	"ss": "ß",
	"o":  "ø",
	"O":  "Ø",
	"l":  "ł",
	"L":  "Ł",
	"ae": "æ",
	"AE": "Æ",
	"oe": "œ",
	"OE": "Œ",
	"aa": "å",
	"AA": "Å",
	"i":  "ı",
	"j":  "j",
}

// escapedLiterals are LaTeX escapes that stand for the character itself.
const escapedLiterals = `&%$#_{}`

// NormalizeLineEndings rewrites CRLF and bare CR to LF.
func NormalizeLineEndings(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// ToText strips LaTeX markup from a field value: accent commands become
// their Unicode characters, known glyph commands are substituted,
// unknown commands are dropped with their argument text kept, brace
// groups and math delimiters are unwrapped, and line endings are
// normalized to LF. The result is NFC-composed.
func ToText(s string) string {
	s = NormalizeLineEndings(s)

	var b strings.Builder
	b.Grow(len(s))
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch r {
		case '\\':
			i = appendCommand(&b, runes, i)
		case '{', '}', '$':
			// unwrap groups and inline math
		case '~':
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}
	return norm.NFC.String(b.String())
}

// appendCommand handles the command starting at runes[i] == '\\' and
// returns the index of the last consumed rune.
func appendCommand(b *strings.Builder, runes []rune, i int) int {
	if i+1 >= len(runes) {
		return i
	}
	next := runes[i+1]

	// Escaped literal: \& \% \$ \# \_ \{ \}
	if strings.ContainsRune(escapedLiterals, next) {
		b.WriteRune(next)
		return i + 1
	}

	// Forced break or explicit space.
	if next == '\\' || next == ' ' {
		b.WriteRune(' ')
		return i + 1
	}

	// Symbol-named accent: \"a or \"{a}
	if accent, ok := combiningAccents[string(next)]; ok && !unicode.IsLetter(next) {
		base, end := accentArgument(runes, i+2)
		writeAccented(b, base, accent)
		return end
	}

	// Letter-named command: collect the name.
	j := i + 1
	for j < len(runes) && unicode.IsLetter(runes[j]) {
		j++
	}
	name := string(runes[i+1 : j])
	if name == "" {
		return i
	}

	if accent, ok := combiningAccents[name]; ok && len(name) == 1 {
		base, end := accentArgument(runes, j)
		writeAccented(b, base, accent)
		return end
	}

	if glyph, ok := specialCommands[name]; ok {
		b.WriteString(glyph)
		// Eat the command-terminating space: \o rrebrod is "ørrebrod".
		if j < len(runes) && runes[j] == ' ' {
			return j
		}
		return j - 1
	}

	// Unknown command (\emph, \textbf, ...): drop the name, keep any
	// argument text for the brace pass to unwrap.
	return j - 1
}

// accentArgument reads the argument of an accent command starting at
// index i: either a braced group or the next rune. It returns the
// argument text and the index of its last rune.
func accentArgument(runes []rune, i int) (string, int) {
	for i < len(runes) && runes[i] == ' ' {
		i++
	}
	if i >= len(runes) {
		return "", len(runes) - 1
	}
	if runes[i] != '{' {
		return string(runes[i]), i
	}
	depth := 1
	j := i + 1
	var arg strings.Builder
	for j < len(runes) && depth > 0 {
		switch runes[j] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return arg.String(), j
			}
		default:
			arg.WriteRune(runes[j])
		}
		j++
	}
	return arg.String(), j - 1
}

// writeAccented writes base with the combining mark applied to its
// first rune. Dotless \i and \j inside the argument revert to i and j
// so composition produces the expected precomposed character.
func writeAccented(b *strings.Builder, base string, accent rune) {
	base = strings.TrimSpace(base)
	switch base {
	case "", "{}":
		return
	case `\i`, "ı":
		base = "i"
	case `\j`:
		base = "j"
	}
	runes := []rune(base)
	b.WriteRune(runes[0])
	b.WriteRune(accent)
	for _, r := range runes[1:] {
		b.WriteRune(r)
	}
}
