package resolve

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matsen/doppel/internal/bib"
)

// aliasPairs lists the old-format/new-format field pairs. Both
// directions are consulted, so an entry written with either name
// answers for the other.
var aliasPairs = [][2]bib.Field{
	{bib.FieldAddress, bib.FieldLocation},
	{bib.FieldAnnote, bib.FieldAnnotation},
	{bib.FieldArchivePrefix, bib.FieldEprintType},
	{bib.FieldJournal, bib.FieldJournalTitle},
	{bib.FieldKey, bib.FieldSortKey},
	{bib.FieldPDF, bib.FieldFile},
	{bib.FieldPrimaryClass, bib.FieldEprintClass},
	{bib.FieldSchool, bib.FieldInstitution},
}

var fieldAliases = func() map[bib.Field]bib.Field {
	m := make(map[bib.Field]bib.Field, 2*len(aliasPairs))
	for _, p := range aliasPairs {
		m[p[0]] = p[1]
		m[p[1]] = p[0]
	}
	return m
}()

// monthNumbers maps month names and standard three-letter BibTeX
// abbreviations to their number.
var monthNumbers = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
	"january": 1, "february": 2, "march": 3, "april": 4,
	"june": 6, "july": 7, "august": 8, "september": 9,
	"october": 10, "november": 11, "december": 12,
}

// datePart derives year, month, or day from a date field, or assembles
// a date from year and month, for entries that carry one form but are
// asked for the other.
func datePart(r bib.Record, f bib.Field) (string, bool) {
	switch f {
	case bib.FieldYear, bib.FieldMonth, bib.FieldDay:
		date, ok := r.Field(bib.FieldDate)
		if !ok {
			return "", false
		}
		return splitDate(date, f)
	case bib.FieldDate:
		return assembleDate(r)
	}
	return "", false
}

// splitDate extracts one part of an ISO-style date value. Date ranges
// ("2004/2006") yield the range start. Values that do not parse report
// no value rather than an error.
func splitDate(date string, part bib.Field) (string, bool) {
	date = strings.TrimSpace(date)
	if i := strings.IndexByte(date, '/'); i >= 0 {
		date = date[:i]
	}
	pieces := strings.Split(date, "-")

	idx := 0
	switch part {
	case bib.FieldMonth:
		idx = 1
	case bib.FieldDay:
		idx = 2
	}
	if idx >= len(pieces) {
		return "", false
	}
	n, err := strconv.Atoi(strings.TrimSpace(pieces[idx]))
	if err != nil {
		return "", false
	}
	if part == bib.FieldYear {
		return strconv.Itoa(n), true
	}
	if part == bib.FieldMonth && (n < 1 || n > 12) {
		return "", false
	}
	return strconv.Itoa(n), true
}

// assembleDate builds an ISO-style date from year and month fields.
func assembleDate(r bib.Record) (string, bool) {
	year, ok := r.Field(bib.FieldYear)
	if !ok {
		return "", false
	}
	year = strings.TrimSpace(year)
	if _, err := strconv.Atoi(year); err != nil {
		return "", false
	}

	month, ok := r.Field(bib.FieldMonth)
	if !ok {
		return year, true
	}
	m, ok := parseMonth(month)
	if !ok {
		return year, true
	}
	return fmt.Sprintf("%s-%02d", year, m), true
}

// parseMonth accepts a month number or name.
func parseMonth(s string) (int, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(s); err == nil {
		if n >= 1 && n <= 12 {
			return n, true
		}
		return 0, false
	}
	n, ok := monthNumbers[s]
	return n, ok
}
