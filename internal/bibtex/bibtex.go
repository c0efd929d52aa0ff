// Package bibtex reads and writes BibTeX database files.
package bibtex

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/matsen/doppel/internal/bib"
)

// fieldRank puts the conventional header fields ahead of the
// alphabetical remainder when writing an entry.
var fieldRank = map[bib.Field]int{
	bib.FieldAuthor:       1,
	bib.FieldEditor:       2,
	bib.FieldTitle:        3,
	bib.FieldJournal:      4,
	bib.FieldJournalTitle: 5,
	bib.FieldBooktitle:    6,
	bib.FieldPublisher:    7,
	bib.FieldYear:         8,
	bib.FieldDate:         9,
	bib.FieldVolume:       10,
	bib.FieldNumber:       11,
	bib.FieldPages:        12,
}

// Format serializes one entry as a BibTeX source block. Values are
// written as stored; they are BibTeX source text already, so nothing
// is escaped.
func Format(e *bib.Entry) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("@%s{%s,\n", e.Type(), e.Key()))
	for _, f := range orderedFields(e) {
		v, _ := e.Field(f)
		b.WriteString(fmt.Sprintf("  %s = {%s},\n", f, v))
	}
	b.WriteString("}\n")
	return b.String()
}

// FormatAll serializes entries separated by blank lines.
func FormatAll(entries []*bib.Entry) string {
	var blocks []string
	for _, e := range entries {
		blocks = append(blocks, Format(e))
	}
	return strings.Join(blocks, "\n")
}

// Write writes entries to w in BibTeX form.
func Write(w io.Writer, entries []*bib.Entry) error {
	_, err := io.WriteString(w, FormatAll(entries))
	return err
}

func orderedFields(e *bib.Entry) []bib.Field {
	fields := e.FieldNames()
	sort.SliceStable(fields, func(i, j int) bool {
		ri, iok := fieldRank[fields[i]]
		rj, jok := fieldRank[fields[j]]
		switch {
		case iok && jok:
			return ri < rj
		case iok:
			return true
		case jok:
			return false
		default:
			return fields[i] < fields[j]
		}
	})
	return fields
}
