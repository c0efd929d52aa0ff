// Package dedup decides whether two bibliographic entries describe the
// same work.
//
// A comparison runs in stages. A shared strong identifier (doi, pmid,
// eprint) settles the pair as duplicates outright. A mismatch in entry
// type, edition, or chapter/page range settles it as distinct. What
// remains is scored: the required fields of the entry type agree or
// disagree under per-field comparators, weighted by how strongly each
// field identifies a work, and the optional fields are consulted only
// when the required-field ratio lands inside a narrow doubt band around
// the duplicate threshold.
package dedup

import (
	"fmt"
	"strings"

	"github.com/matsen/doppel/internal/bib"
	"github.com/matsen/doppel/internal/plaintext"
	"github.com/matsen/doppel/internal/resolve"
	"github.com/matsen/doppel/internal/words"
)

// Verdict classifies the agreement of one field across two entries.
type Verdict int

const (
	// NotApplicable means the field is set on neither entry. Its
	// weight drops out of the agreement ratio.
	NotApplicable Verdict = iota
	// Unknown means the field is set on only one entry, or is a
	// numeric field whose values differ without blocking the match.
	// Its weight counts against agreement but does not veto.
	Unknown
	// Distinct means both values are set and disagree.
	Distinct
	// Equal means both values are set and agree.
	Equal
)

func (v Verdict) String() string {
	switch v {
	case NotApplicable:
		return "not-applicable"
	case Unknown:
		return "unknown"
	case Distinct:
		return "distinct"
	case Equal:
		return "equal"
	}
	return fmt.Sprintf("verdict(%d)", int(v))
}

// MarshalText renders the verdict name, so JSON reports carry "equal"
// rather than an enum ordinal.
func (v Verdict) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// Reason names the rule that settled a comparison.
type Reason string

const (
	ReasonIdentifier   Reason = "identifier"    // shared doi, pmid or eprint
	ReasonType         Reason = "type"          // entry types differ
	ReasonEdition      Reason = "edition"       // editions differ
	ReasonChapterPages Reason = "chapter-pages" // chapter or page range differs
	ReasonRequired     Reason = "required"      // required-field ratio was conclusive
	ReasonBlended      Reason = "blended"       // doubt band, optional fields consulted
)

// FieldResolver resolves a field read against an entry, consulting
// dialect aliases and cross-referenced parents when the entry itself
// does not carry the field.
type FieldResolver interface {
	Lookup(r bib.Record, f bib.Field, mode bib.Mode) (string, bool)
}

// Config carries the comparison tunables. The zero value is not
// calibrated; start from DefaultConfig.
type Config struct {
	// Threshold is the weighted agreement ratio at or above which a
	// pair counts as duplicates.
	Threshold float64
	// DoubtMargin widens Threshold into a band inside which the
	// optional fields are consulted before deciding.
	DoubtMargin float64
	// SimilarityFloor is the word correlation a fuzzy text field must
	// exceed to count as equal.
	SimilarityFloor float64
	// Resolver answers field reads. Nil selects the standard alias and
	// cross-reference resolver.
	Resolver FieldResolver
}

// DefaultConfig returns the calibrated defaults.
func DefaultConfig() Config {
	return Config{
		Threshold:       0.75,
		DoubtMargin:     0.05,
		SimilarityFloor: 0.75,
		Resolver:        resolve.Resolver{},
	}
}

// Checker compares entries under one fixed configuration. It keeps no
// per-comparison state, so a single Checker is safe for concurrent use.
type Checker struct {
	cfg Config
}

// New returns a Checker for cfg. Unset tunables take their defaults,
// so a partially filled Config is usable.
func New(cfg Config) *Checker {
	def := DefaultConfig()
	if cfg.Threshold == 0 {
		cfg.Threshold = def.Threshold
	}
	if cfg.DoubtMargin == 0 {
		cfg.DoubtMargin = def.DoubtMargin
	}
	if cfg.SimilarityFloor == 0 {
		cfg.SimilarityFloor = def.SimilarityFloor
	}
	if cfg.Resolver == nil {
		cfg.Resolver = def.Resolver
	}
	return &Checker{cfg: cfg}
}

// Result reports one comparison.
type Result struct {
	// Duplicate is the verdict at the configured threshold.
	Duplicate bool `json:"duplicate"`
	// Score is the weighted agreement ratio of the stage that decided.
	Score float64 `json:"score"`
	// Strict is the exact-match share from CompareStrictly.
	Strict float64 `json:"strict"`
	// Reason names the rule that settled the verdict.
	Reason Reason `json:"reason"`
	// Fields holds the per-field verdicts of the scored stages.
	Fields map[bib.Field]Verdict `json:"fields,omitempty"`
}

// Compare scores a against b under mode and explains the verdict.
// Passing a nil record is a caller bug and panics.
func (c *Checker) Compare(a, b bib.Record, mode bib.Mode) Result {
	if a == nil || b == nil {
		panic("dedup: Compare called with nil record")
	}
	cmp := &comparison{
		cfg:  c.cfg,
		mode: mode,
		a:    side{rec: a, memo: make(map[bib.Field]fieldValue)},
		b:    side{rec: b, memo: make(map[bib.Field]fieldValue)},
	}
	res := cmp.run()
	res.Strict = CompareStrictly(a, b)
	return res
}

// IsDuplicate reports whether a and b describe the same work under mode.
func (c *Checker) IsDuplicate(a, b bib.Record, mode bib.Mode) bool {
	return c.Compare(a, b, mode).Duplicate
}

// IsDuplicate reports whether a and b describe the same work under
// mode, using the default configuration.
func IsDuplicate(a, b bib.Record, mode bib.Mode) bool {
	return New(DefaultConfig()).IsDuplicate(a, b, mode)
}

// TypesComparable reports whether two entry types may describe the same
// work. Types compare by canonical name; unknown names are valid and
// match only themselves.
func TypesComparable(a, b bib.EntryType) bool {
	return bib.ParseEntryType(string(a)) == bib.ParseEntryType(string(b))
}

// CorrelateWords reports the word-overlap ratio between a and b, the
// same correlation the fuzzy field comparators use.
func CorrelateWords(a, b string) float64 {
	return words.Correlate(a, b)
}

// CompareStrictly reports the share of fields, over the fields set on
// either entry, whose values match exactly after line-ending
// normalization and trimming. A full match returns the sentinel 1.01 so
// exact copies rank above every correlation-based score; two entries
// with no fields at all also count as a full match. Passing a nil
// record panics.
func CompareStrictly(a, b bib.Record) float64 {
	if a == nil || b == nil {
		panic("dedup: CompareStrictly called with nil record")
	}
	union := make(map[bib.Field]struct{})
	for _, f := range a.FieldNames() {
		union[f] = struct{}{}
	}
	for _, f := range b.FieldNames() {
		union[f] = struct{}{}
	}
	matches := 0
	for f := range union {
		va, okA := strictValue(a, f)
		vb, okB := strictValue(b, f)
		if okA == okB && va == vb {
			matches++
		}
	}
	if matches == len(union) {
		return 1.01
	}
	return float64(matches) / float64(len(union))
}

func strictValue(r bib.Record, f bib.Field) (string, bool) {
	v, ok := r.Field(f)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(plaintext.NormalizeLineEndings(v))
	return v, v != ""
}
