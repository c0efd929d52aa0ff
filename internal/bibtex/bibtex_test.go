package bibtex

import (
	"strings"
	"testing"

	"github.com/matsen/doppel/internal/bib"
)

func TestFormat_BasicArticle(t *testing.T) {
	e := bib.NewEntry(bib.TypeArticle).
		WithKey("chen2020").
		WithField(bib.FieldAuthor, "Chen, Sarah and Patel, Priya").
		WithField(bib.FieldTitle, "Habitat Modeling in the Arctic").
		WithField(bib.FieldJournal, "Ecology").
		WithField(bib.FieldYear, "2020").
		WithField(bib.FieldDOI, "10.1000/demo.2020")

	got := Format(e)

	if !strings.HasPrefix(got, "@article{chen2020,") {
		t.Errorf("Format() should start with @article{chen2020, got:\n%s", got)
	}
	if !strings.Contains(got, "author = {Chen, Sarah and Patel, Priya}") {
		t.Errorf("Format() should contain the author field, got:\n%s", got)
	}
	if !strings.Contains(got, "doi = {10.1000/demo.2020}") {
		t.Errorf("Format() should contain the doi field, got:\n%s", got)
	}
	if !strings.HasSuffix(strings.TrimSpace(got), "}") {
		t.Errorf("Format() should end with }, got:\n%s", got)
	}
}

func TestFormat_FieldOrder(t *testing.T) {
	e := bib.NewEntry(bib.TypeArticle).
		WithKey("k").
		WithField(bib.FieldDOI, "10.1/x").
		WithField(bib.FieldYear, "2020").
		WithField(bib.FieldAuthor, "Chen, Sarah").
		WithField(bib.FieldAbstract, "Text.").
		WithField(bib.FieldTitle, "T")

	got := Format(e)

	order := []string{"author =", "title =", "year =", "abstract =", "doi ="}
	last := -1
	for _, marker := range order {
		idx := strings.Index(got, marker)
		if idx < 0 {
			t.Fatalf("Format() missing %q, got:\n%s", marker, got)
		}
		if idx < last {
			t.Errorf("Format() places %q out of order, got:\n%s", marker, got)
		}
		last = idx
	}
}

func TestFormat_PreservesMarkup(t *testing.T) {
	e := bib.NewEntry(bib.TypeArticle).
		WithKey("k").
		WithField(bib.FieldTitle, `Analysis of {DNA} at 37\,$^\circ$C & beyond`)

	got := Format(e)

	if !strings.Contains(got, `title = {Analysis of {DNA} at 37\,$^\circ$C & beyond}`) {
		t.Errorf("Format() should write values untouched, got:\n%s", got)
	}
}

func TestFormatAll(t *testing.T) {
	a := bib.NewEntry(bib.TypeArticle).WithKey("a").WithField(bib.FieldTitle, "One")
	b := bib.NewEntry(bib.TypeBook).WithKey("b").WithField(bib.FieldTitle, "Two")

	got := FormatAll([]*bib.Entry{a, b})

	if !strings.Contains(got, "@article{a,") || !strings.Contains(got, "@book{b,") {
		t.Errorf("FormatAll() should contain both entries, got:\n%s", got)
	}
	if !strings.Contains(got, "}\n\n@book") {
		t.Errorf("FormatAll() should separate entries with a blank line, got:\n%s", got)
	}
}

func TestWrite(t *testing.T) {
	var sb strings.Builder
	e := bib.NewEntry(bib.TypeMisc).WithKey("m").WithField(bib.FieldNote, "kept")

	if err := Write(&sb, []*bib.Entry{e}); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if !strings.Contains(sb.String(), "@misc{m,") {
		t.Errorf("Write() output missing entry, got:\n%s", sb.String())
	}
}
