package bibtex

import (
	"fmt"
	"os"
	"strings"

	"github.com/matsen/doppel/internal/bib"
)

// Parse reads every entry in the given BibTeX source. Text between
// entries is ignored, as are @comment, @preamble, and @string groups.
func Parse(src string) ([]*bib.Entry, error) {
	p := &parser{src: src, line: 1}
	var entries []*bib.Entry
	for p.seekEntry() {
		name := p.readName()
		if name == "" {
			continue
		}
		switch strings.ToLower(name) {
		case "comment", "preamble", "string":
			if err := p.skipGroup(); err != nil {
				return nil, err
			}
		default:
			e, err := p.readEntry(name)
			if err != nil {
				return nil, err
			}
			if e != nil {
				entries = append(entries, e)
			}
		}
	}
	return entries, nil
}

// ParseFile reads every entry in a .bib file.
func ParseFile(path string) ([]*bib.Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	entries, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return entries, nil
}

// parser scans BibTeX source byte by byte. Structure characters are
// ASCII, so multi-byte runes in values pass through untouched.
type parser struct {
	src  string
	pos  int
	line int
}

func (p *parser) errf(format string, args ...any) error {
	return fmt.Errorf("line %d: %s", p.line, fmt.Sprintf(format, args...))
}

func (p *parser) peek() (byte, bool) {
	if p.pos >= len(p.src) {
		return 0, false
	}
	return p.src[p.pos], true
}

func (p *parser) next() (byte, bool) {
	c, ok := p.peek()
	if !ok {
		return 0, false
	}
	p.pos++
	if c == '\n' {
		p.line++
	}
	return c, true
}

func (p *parser) skipSpace() {
	for {
		c, ok := p.peek()
		if !ok || (c != ' ' && c != '\t' && c != '\r' && c != '\n') {
			return
		}
		p.next()
	}
}

// seekEntry advances past free text to the next '@' and consumes it.
func (p *parser) seekEntry() bool {
	for {
		c, ok := p.next()
		if !ok {
			return false
		}
		if c == '@' {
			return true
		}
	}
}

// readName reads the letters following '@'.
func (p *parser) readName() string {
	start := p.pos
	for {
		c, ok := p.peek()
		if !ok || !isAlpha(c) {
			return p.src[start:p.pos]
		}
		p.next()
	}
}

// skipGroup consumes the balanced group after @comment, @preamble, or
// @string. A directive with no following group is treated as free text.
func (p *parser) skipGroup() error {
	p.skipSpace()
	open, ok := p.peek()
	if !ok || (open != '{' && open != '(') {
		return nil
	}
	closer := byte('}')
	if open == '(' {
		closer = ')'
	}
	p.next()
	depth := 1
	for depth > 0 {
		c, ok := p.next()
		if !ok {
			return p.errf("unterminated @ group")
		}
		switch c {
		case open:
			depth++
		case closer:
			depth--
		}
	}
	return nil
}

// readEntry parses one @type{key, field = value, ...} block. An @word
// with no group after it is stray text between entries, not an entry;
// it returns (nil, nil) and the scan moves on.
func (p *parser) readEntry(typeName string) (*bib.Entry, error) {
	p.skipSpace()
	open, ok := p.peek()
	if !ok || (open != '{' && open != '(') {
		return nil, nil
	}
	p.next()
	closer := byte('}')
	if open == '(' {
		closer = ')'
	}
	e := bib.NewEntry(bib.ParseEntryType(typeName))

	key, done, err := p.readKey(closer)
	if err != nil {
		return nil, err
	}
	e.SetKey(key)
	if done {
		return e, nil
	}

	for {
		p.skipSpace()
		c, ok := p.peek()
		if !ok {
			return nil, p.errf("unterminated @%s entry", typeName)
		}
		if c == closer {
			p.next()
			return e, nil
		}
		if c == ',' {
			p.next()
			continue
		}
		name := p.readFieldName()
		if name == "" {
			return nil, p.errf("expected field name in @%s", typeName)
		}
		p.skipSpace()
		if c, ok := p.next(); !ok || c != '=' {
			return nil, p.errf("expected '=' after field %q", name)
		}
		value, err := p.readValue(closer)
		if err != nil {
			return nil, err
		}
		e.SetField(bib.NormalizeField(name), value)
	}
}

// readKey reads the citation key segment and reports done when the
// entry closed with no fields. A '=' before any ',' means the entry is
// keyless; the scan rewinds so the segment parses as a field.
func (p *parser) readKey(closer byte) (key string, done bool, err error) {
	markPos, markLine := p.pos, p.line
	start := p.pos
	for {
		c, ok := p.peek()
		if !ok {
			return "", false, p.errf("unterminated entry")
		}
		switch c {
		case ',':
			key = strings.TrimSpace(p.src[start:p.pos])
			p.next()
			return key, false, nil
		case closer:
			key = strings.TrimSpace(p.src[start:p.pos])
			p.next()
			return key, true, nil
		case '=':
			p.pos, p.line = markPos, markLine
			return "", false, nil
		}
		p.next()
	}
}

func (p *parser) readFieldName() string {
	start := p.pos
	for {
		c, ok := p.peek()
		if !ok || !isFieldNameChar(c) {
			return p.src[start:p.pos]
		}
		p.next()
	}
}

// readValue parses a field value: a braced or quoted string or a bare
// token, possibly several joined with '#'.
func (p *parser) readValue(closer byte) (string, error) {
	var b strings.Builder
	for {
		p.skipSpace()
		c, ok := p.peek()
		if !ok {
			return "", p.errf("unexpected end of input in field value")
		}
		var part string
		var err error
		switch c {
		case '{':
			part, err = p.readBraced()
		case '"':
			part, err = p.readQuoted()
		default:
			part = p.readBare(closer)
		}
		if err != nil {
			return "", err
		}
		b.WriteString(part)
		p.skipSpace()
		if c, ok := p.peek(); ok && c == '#' {
			p.next()
			continue
		}
		return collapseSpace(b.String()), nil
	}
}

// readBraced consumes a {...} value, keeping inner braces.
func (p *parser) readBraced() (string, error) {
	p.next()
	start := p.pos
	depth := 1
	for {
		c, ok := p.next()
		if !ok {
			return "", p.errf("unterminated braced value")
		}
		switch c {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return p.src[start : p.pos-1], nil
			}
		}
	}
}

// readQuoted consumes a "..." value. A quote inside braces does not
// terminate it.
func (p *parser) readQuoted() (string, error) {
	p.next()
	start := p.pos
	depth := 0
	for {
		c, ok := p.next()
		if !ok {
			return "", p.errf("unterminated quoted value")
		}
		switch c {
		case '{':
			depth++
		case '}':
			depth--
		case '"':
			if depth == 0 {
				return p.src[start : p.pos-1], nil
			}
		}
	}
}

// readBare consumes an undelimited token such as a number or a month
// macro name.
func (p *parser) readBare(closer byte) string {
	start := p.pos
	for {
		c, ok := p.peek()
		if !ok || c == ',' || c == closer || c == '#' || c == ' ' || c == '\t' || c == '\r' || c == '\n' {
			return p.src[start:p.pos]
		}
		p.next()
	}
}

// collapseSpace folds whitespace runs, including line breaks inside
// wrapped values, into single spaces.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func isAlpha(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isFieldNameChar(c byte) bool {
	return isAlpha(c) || c >= '0' && c <= '9' ||
		c == '-' || c == '_' || c == '.' || c == ':' || c == '+' || c == '/'
}
