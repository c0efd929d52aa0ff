// Package merge folds two entries judged to be duplicates into one.
//
// The first entry wins wherever the two disagree, except for fields
// whose values are worth keeping from both sides: free-text annotation
// fields concatenate, and list-valued fields union. Inputs are never
// modified.
package merge

import (
	"strings"

	"github.com/matsen/doppel/internal/bib"
)

// DefaultKeywordDelimiter separates keywords when the policy does not
// configure one.
const DefaultKeywordDelimiter = ","

// fileDelimiter separates linked-file values. Unlike the keyword
// delimiter it is fixed by the field's conventional format.
const fileDelimiter = ";"

// Action describes how a merged field's value was produced.
type Action string

const (
	// ActionKept retains the first entry's value.
	ActionKept Action = "kept"
	// ActionFilled takes a value the first entry lacked from the second.
	ActionFilled Action = "filled"
	// ActionConcatenated joins both free-text values with a newline.
	ActionConcatenated Action = "concatenated"
	// ActionUnioned merges both delimiter-separated lists as a set.
	ActionUnioned Action = "unioned"
)

// Policy configures per-field merge behavior.
type Policy struct {
	// KeywordDelimiter separates items of the keywords field.
	// Empty means DefaultKeywordDelimiter.
	KeywordDelimiter string
}

// freeTextFields concatenate with a newline when both entries carry
// different values, so neither side's annotations are lost.
var freeTextFields = map[bib.Field]bool{
	bib.FieldComment:    true,
	bib.FieldNote:       true,
	bib.FieldAnnote:     true,
	bib.FieldAnnotation: true,
}

// Entries merges b into a copy of a, returning the merged entry and a
// per-field account of how each value was produced. The merged entry
// keeps a's key and type; a's key is filled from b when a has none.
// Neither input is modified. Panics if either entry is nil.
func Entries(a, b *bib.Entry, p Policy) (*bib.Entry, map[bib.Field]Action) {
	if a == nil || b == nil {
		panic("merge: Entries called with nil entry")
	}
	keywordDelim := p.KeywordDelimiter
	if keywordDelim == "" {
		keywordDelim = DefaultKeywordDelimiter
	}

	merged := a.Clone()
	if merged.Key() == "" {
		merged.SetKey(b.Key())
	}

	actions := make(map[bib.Field]Action)
	for _, f := range a.FieldNames() {
		actions[f] = ActionKept
	}
	for _, f := range b.FieldNames() {
		bv, _ := b.Field(f)
		av, ok := a.Field(f)
		if !ok {
			merged.SetField(f, bv)
			actions[f] = ActionFilled
			continue
		}
		if av == bv {
			continue
		}
		switch {
		case freeTextFields[f]:
			merged.SetField(f, av+"\n"+bv)
			actions[f] = ActionConcatenated
		case f == bib.FieldKeywords:
			merged.SetField(f, unionList(av, bv, keywordDelim, keywordDelim+" "))
			actions[f] = ActionUnioned
		case f == bib.FieldFile:
			merged.SetField(f, unionList(av, bv, fileDelimiter, fileDelimiter))
			actions[f] = ActionUnioned
		}
	}
	return merged, actions
}

// unionList merges two delim-separated lists as an ordered set: a's
// items first, then b's items not already present. Items compare
// trimmed, the first spelling wins, and the result joins with sep.
func unionList(a, b, delim, sep string) string {
	seen := make(map[string]bool)
	var items []string
	add := func(list string) {
		for _, item := range strings.Split(list, delim) {
			item = strings.TrimSpace(item)
			if item == "" || seen[item] {
				continue
			}
			seen[item] = true
			items = append(items, item)
		}
	}
	add(a)
	add(b)
	return strings.Join(items, sep)
}
