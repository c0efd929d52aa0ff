package dedup

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/matsen/doppel/internal/bib"
	"github.com/matsen/doppel/internal/plaintext"
	"github.com/matsen/doppel/internal/words"
)

// requiredStageWeight scales the required-field stage against the
// optional fields when a doubt-band decision blends the two.
const requiredStageWeight = 3.0

// fieldWeights biases agreement toward the fields that most strongly
// identify a work. Fields not listed weigh 1.
var fieldWeights = map[bib.Field]float64{
	bib.FieldAuthor:       2.5,
	bib.FieldEditor:       2.5,
	bib.FieldTitle:        3.0,
	bib.FieldJournal:      2.0,
	bib.FieldJournalTitle: 2.0,
}

func weightOf(f bib.Field) float64 {
	if w, ok := fieldWeights[f]; ok {
		return w
	}
	return 1
}

// strongIdentifiers short-circuit a comparison when both entries carry
// the same value. isbn is not one of them: a container isbn is shared
// by every chapter and article inside it.
var strongIdentifiers = []bib.Field{bib.FieldDOI, bib.FieldPMID, bib.FieldEprint}

// verbatimFields hold identifiers or paths and are matched exactly,
// with no markup stripping or word correlation. A doi that differs by
// one underscore is a different doi.
var verbatimFields = map[bib.Field]bool{
	bib.FieldDOI:    true,
	bib.FieldISBN:   true,
	bib.FieldISSN:   true,
	bib.FieldPMID:   true,
	bib.FieldEprint: true,
	bib.FieldURL:    true,
	bib.FieldFile:   true,
	bib.FieldPDF:    true,
}

// numericFields match on the first integer they carry, so "21" equals
// "vol. 21". Differing values stay Unknown rather than Distinct.
var numericFields = map[bib.Field]bool{
	bib.FieldVolume: true,
	bib.FieldNumber: true,
	bib.FieldIssue:  true,
}

// personFields compare as normalized author lists.
var personFields = map[bib.Field]bool{
	bib.FieldAuthor:     true,
	bib.FieldEditor:     true,
	bib.FieldBookAuthor: true,
	bib.FieldTranslator: true,
}

type fieldValue struct {
	text string
	set  bool
}

type side struct {
	rec  bib.Record
	memo map[bib.Field]fieldValue
}

// comparison holds the state of one Compare call: the configuration,
// the dialect, and a per-side memo of resolved, normalized field values.
type comparison struct {
	cfg  Config
	mode bib.Mode
	a, b side
}

func (cmp *comparison) run() Result {
	res := Result{Fields: make(map[bib.Field]Verdict)}

	if cmp.sharedIdentifier() {
		res.Duplicate = true
		res.Score = 1
		res.Reason = ReasonIdentifier
		return res
	}
	if !TypesComparable(cmp.a.rec.Type(), cmp.b.rec.Type()) {
		res.Reason = ReasonType
		return res
	}
	if cmp.fieldVerdict(bib.FieldEdition) == Distinct {
		res.Fields[bib.FieldEdition] = Distinct
		res.Reason = ReasonEdition
		return res
	}
	for _, f := range []bib.Field{bib.FieldChapter, bib.FieldPages} {
		if cmp.fieldVerdict(f) == Distinct {
			res.Fields[f] = Distinct
			res.Reason = ReasonChapterPages
			return res
		}
	}

	required, optional := cmp.stageFields()
	req, reqWeight := cmp.scoreFields(required, res.Fields)
	res.Score = req
	res.Reason = ReasonRequired
	if math.Abs(req-cmp.cfg.Threshold) > cmp.cfg.DoubtMargin {
		res.Duplicate = req >= cmp.cfg.Threshold
		return res
	}

	opt, optWeight := cmp.scoreFields(optional, res.Fields)
	if optWeight > 0 {
		res.Score = (req*reqWeight*requiredStageWeight + opt*optWeight) /
			(reqWeight*requiredStageWeight + optWeight)
		res.Reason = ReasonBlended
	}
	res.Duplicate = res.Score >= cmp.cfg.Threshold
	return res
}

// sharedIdentifier reads the strong identifiers raw, bypassing the
// resolver: a chapter must not borrow its book's doi through
// inheritance and then collide with the book's other chapters.
func (cmp *comparison) sharedIdentifier() bool {
	for _, f := range strongIdentifiers {
		va, okA := rawValue(cmp.a.rec, f)
		vb, okB := rawValue(cmp.b.rec, f)
		if okA && okB && va == vb {
			return true
		}
	}
	return false
}

func rawValue(r bib.Record, f bib.Field) (string, bool) {
	v, ok := r.Field(f)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// stageFields selects the field sets to score. The declared required
// fields of the (shared) entry type lead; when the type is unknown, or
// declares no required fields, or neither entry carries any of them,
// the fields actually present on either entry stand in, keeping the
// comparison symmetric.
func (cmp *comparison) stageFields() (required, optional []bib.Field) {
	spec, ok := bib.Definition(cmp.a.rec.Type(), cmp.mode)
	if !ok || len(spec.Required) == 0 || !cmp.anyPresent(spec.Required) {
		return cmp.presentUnion(), nil
	}
	return spec.Required, spec.Optional
}

func (cmp *comparison) anyPresent(fields []bib.Field) bool {
	for _, f := range fields {
		if _, ok := cmp.value(&cmp.a, f); ok {
			return true
		}
		if _, ok := cmp.value(&cmp.b, f); ok {
			return true
		}
	}
	return false
}

func (cmp *comparison) presentUnion() []bib.Field {
	seen := make(map[bib.Field]bool)
	var union []bib.Field
	for _, r := range []bib.Record{cmp.a.rec, cmp.b.rec} {
		for _, f := range r.FieldNames() {
			if !seen[f] {
				seen[f] = true
				union = append(union, f)
			}
		}
	}
	sort.Slice(union, func(i, j int) bool { return union[i] < union[j] })
	return union
}

// scoreFields compares each field and accumulates the weighted
// agreement ratio. Fields absent on both sides drop out entirely; with
// nothing left to compare the ratio is a neutral 0.5 with zero weight,
// which never clears the threshold.
func (cmp *comparison) scoreFields(fields []bib.Field, verdicts map[bib.Field]Verdict) (ratio, weight float64) {
	var equal, total float64
	for _, f := range fields {
		v := cmp.fieldVerdict(f)
		if v == NotApplicable {
			continue
		}
		verdicts[f] = v
		w := weightOf(f)
		total += w
		if v == Equal {
			equal += w
		}
	}
	if total == 0 {
		return 0.5, 0
	}
	return equal / total, total
}

// fieldVerdict compares one field across both entries using the
// comparator for its field group.
func (cmp *comparison) fieldVerdict(f bib.Field) Verdict {
	va, okA := cmp.value(&cmp.a, f)
	vb, okB := cmp.value(&cmp.b, f)
	if !okA && !okB {
		return NotApplicable
	}
	if !okA || !okB {
		return Unknown
	}
	switch {
	case personFields[f]:
		return compareAuthors(va, vb)
	case f == bib.FieldPages:
		return comparePages(va, vb)
	case f == bib.FieldChapter:
		return compareChapters(va, vb)
	case f == bib.FieldJournal || f == bib.FieldJournalTitle:
		return cmp.compareJournals(va, vb)
	case f == bib.FieldEdition:
		return compareEditions(va, vb)
	case numericFields[f]:
		return compareNumeric(va, vb)
	case verbatimFields[f]:
		return compareVerbatim(va, vb)
	}
	return cmp.compareFuzzy(va, vb)
}

// value reads a field through the resolver and normalizes it for
// comparison: line endings unified, markup stripped except on verbatim
// fields, surrounding space trimmed. A value that is blank after
// normalization counts as absent. Results are memoized per side.
func (cmp *comparison) value(s *side, f bib.Field) (string, bool) {
	if v, ok := s.memo[f]; ok {
		return v.text, v.set
	}
	text, set := cmp.read(s.rec, f)
	if set {
		text = plaintext.NormalizeLineEndings(text)
		if !verbatimFields[f] {
			text = plaintext.ToText(text)
		}
		text = strings.TrimSpace(text)
		set = text != ""
	}
	if !set {
		text = ""
	}
	s.memo[f] = fieldValue{text: text, set: set}
	return text, set
}

func (cmp *comparison) read(r bib.Record, f bib.Field) (string, bool) {
	if cmp.cfg.Resolver != nil {
		return cmp.cfg.Resolver.Lookup(r, f, cmp.mode)
	}
	return r.Field(f)
}

func compareVerbatim(a, b string) Verdict {
	if a == b {
		return Equal
	}
	return Distinct
}

// compareAuthors tests normalized author lists for equality. Name
// grammar is not parsed: "Bob, Billy" and "Billy Bob" stay distinct.
func compareAuthors(a, b string) Verdict {
	if normalizeAuthors(a) == normalizeAuthors(b) {
		return Equal
	}
	return Distinct
}

// normalizeAuthors folds case and diacritics and evens out separator
// spacing so "Bloch,Joshua" and "Bloch, Joshua" agree.
func normalizeAuthors(s string) string {
	s = plaintext.Fold(s)
	s = strings.ReplaceAll(s, ",", ", ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.ReplaceAll(s, " ,", ",")
}

var pageDelimiter = regexp.MustCompile(`[- ]+`)

// comparePages harmonizes the page-range delimiters "-", "--", " - "
// and " -- " before testing equality.
func comparePages(a, b string) Verdict {
	if pageDelimiter.ReplaceAllString(a, "-") == pageDelimiter.ReplaceAllString(b, "-") {
		return Equal
	}
	return Distinct
}

var chapterLabel = regexp.MustCompile(`(?i)^chapter\b[ .:]*`)

// compareChapters drops a leading "chapter" label so "Chapter 7"
// matches a bare "7".
func compareChapters(a, b string) Verdict {
	if strings.EqualFold(chapterLabel.ReplaceAllString(a, ""), chapterLabel.ReplaceAllString(b, "")) {
		return Equal
	}
	return Distinct
}

// compareJournals removes abbreviation periods so "J. Comp. Biol." and
// "J Comp Biol" agree, then correlates by words.
func (cmp *comparison) compareJournals(a, b string) Verdict {
	return cmp.compareFuzzy(strings.ReplaceAll(a, ".", ""), strings.ReplaceAll(b, ".", ""))
}

func compareEditions(a, b string) Verdict {
	if strings.EqualFold(a, b) {
		return Equal
	}
	return Distinct
}

func compareNumeric(a, b string) Verdict {
	na, okA := firstInt(a)
	nb, okB := firstInt(b)
	if okA && okB {
		if na == nb {
			return Equal
		}
		return Unknown
	}
	if strings.EqualFold(a, b) {
		return Equal
	}
	return Unknown
}

func (cmp *comparison) compareFuzzy(a, b string) Verdict {
	if words.Correlate(a, b) > cmp.cfg.SimilarityFloor {
		return Equal
	}
	return Distinct
}

// firstInt extracts the first run of digits in s.
func firstInt(s string) (int, bool) {
	start := -1
	for i, r := range s {
		if r >= '0' && r <= '9' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			n, err := strconv.Atoi(s[start:i])
			return n, err == nil
		}
	}
	if start >= 0 {
		n, err := strconv.Atoi(s[start:])
		return n, err == nil
	}
	return 0, false
}
