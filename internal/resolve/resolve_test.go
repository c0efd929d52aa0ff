package resolve

import (
	"testing"

	"github.com/matsen/doppel/internal/bib"
)

func TestLookupDirectField(t *testing.T) {
	e := bib.NewEntry(bib.TypeArticle).WithField(bib.FieldTitle, "A title")
	var r Resolver

	for _, mode := range []bib.Mode{bib.ModeBibTeX, bib.ModeBibLaTeX} {
		v, ok := r.Lookup(e, bib.FieldTitle, mode)
		if !ok || v != "A title" {
			t.Errorf("mode %v: Lookup(title) = %q, %v; want %q, true", mode, v, ok, "A title")
		}
	}
}

func TestLookupAliases(t *testing.T) {
	tests := []struct {
		name      string
		stored    bib.Field
		requested bib.Field
	}{
		{"journal answers journaltitle", bib.FieldJournal, bib.FieldJournalTitle},
		{"journaltitle answers journal", bib.FieldJournalTitle, bib.FieldJournal},
		{"address answers location", bib.FieldAddress, bib.FieldLocation},
		{"school answers institution", bib.FieldSchool, bib.FieldInstitution},
		{"archiveprefix answers eprinttype", bib.FieldArchivePrefix, bib.FieldEprintType},
		{"pdf answers file", bib.FieldPDF, bib.FieldFile},
	}

	var r Resolver
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := bib.NewEntry(bib.TypeArticle).WithField(tt.stored, "value")

			v, ok := r.Lookup(e, tt.requested, bib.ModeBibLaTeX)
			if !ok || v != "value" {
				t.Errorf("biblatex Lookup(%s) = %q, %v; want %q, true", tt.requested, v, ok, "value")
			}

			// BibTeX mode does not consult aliases.
			if _, ok := r.Lookup(e, tt.requested, bib.ModeBibTeX); ok {
				t.Errorf("bibtex Lookup(%s) resolved through alias, want no value", tt.requested)
			}
		})
	}
}

func TestLookupDateParts(t *testing.T) {
	var r Resolver

	tests := []struct {
		name      string
		date      string
		requested bib.Field
		want      string
		wantOK    bool
	}{
		{"year from full date", "2001-07-15", bib.FieldYear, "2001", true},
		{"month from full date", "2001-07-15", bib.FieldMonth, "7", true},
		{"day from full date", "2001-07-15", bib.FieldDay, "15", true},
		{"year from bare year", "2001", bib.FieldYear, "2001", true},
		{"month absent from bare year", "2001", bib.FieldMonth, "", false},
		{"range start", "2004/2006", bib.FieldYear, "2004", true},
		{"unparseable", "circa 1900", bib.FieldYear, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := bib.NewEntry(bib.TypeBook).WithField(bib.FieldDate, tt.date)
			v, ok := r.Lookup(e, tt.requested, bib.ModeBibLaTeX)
			if ok != tt.wantOK || v != tt.want {
				t.Errorf("Lookup(%s) with date %q = %q, %v; want %q, %v",
					tt.requested, tt.date, v, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestLookupDateFromYearAndMonth(t *testing.T) {
	var r Resolver

	e := bib.NewEntry(bib.TypeBook).
		WithField(bib.FieldYear, "1997").
		WithField(bib.FieldMonth, "jul")
	if v, ok := r.Lookup(e, bib.FieldDate, bib.ModeBibLaTeX); !ok || v != "1997-07" {
		t.Errorf("Lookup(date) = %q, %v; want %q, true", v, ok, "1997-07")
	}

	yearOnly := bib.NewEntry(bib.TypeBook).WithField(bib.FieldYear, "1997")
	if v, ok := r.Lookup(yearOnly, bib.FieldDate, bib.ModeBibLaTeX); !ok || v != "1997" {
		t.Errorf("Lookup(date) = %q, %v; want %q, true", v, ok, "1997")
	}
}

func TestLookupInheritance(t *testing.T) {
	book := bib.NewEntry(bib.TypeBook).
		WithKey("container").
		WithField(bib.FieldTitle, "The Container Volume").
		WithField(bib.FieldAuthor, "Ada Author").
		WithField(bib.FieldPublisher, "Pub House").
		WithField(bib.FieldSortKey, "container-sort")

	chapter := bib.NewEntry(bib.TypeInBook).
		WithField(bib.FieldCrossref, "container").
		WithField(bib.FieldTitle, "Chapter Three")
	chapter.SetParent(book)

	var r Resolver

	tests := []struct {
		name      string
		requested bib.Field
		want      string
		wantOK    bool
	}{
		{"own field wins", bib.FieldTitle, "Chapter Three", true},
		{"booktitle from parent title", bib.FieldBooktitle, "The Container Volume", true},
		{"author flows through", bib.FieldAuthor, "Ada Author", true},
		{"bookauthor from parent author", bib.FieldBookAuthor, "Ada Author", true},
		{"same-name fallback", bib.FieldPublisher, "Pub House", true},
		{"sortkey never inherited", bib.FieldSortKey, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := r.Lookup(chapter, tt.requested, bib.ModeBibLaTeX)
			if ok != tt.wantOK || v != tt.want {
				t.Errorf("Lookup(%s) = %q, %v; want %q, %v", tt.requested, v, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestLookupInheritanceBlocksContainerTitle(t *testing.T) {
	book := bib.NewEntry(bib.TypeBook).WithField(bib.FieldTitle, "The Container Volume")
	chapter := bib.NewEntry(bib.TypeInBook)
	chapter.SetParent(book)

	var r Resolver
	if v, ok := r.Lookup(chapter, bib.FieldTitle, bib.ModeBibLaTeX); ok {
		t.Errorf("title inherited from container: %q, want no value", v)
	}
}

func TestLookupPeriodicalChain(t *testing.T) {
	periodical := bib.NewEntry(bib.TypePeriodical).WithField(bib.FieldTitle, "Annals of Things")
	article := bib.NewEntry(bib.TypeArticle)
	article.SetParent(periodical)

	var r Resolver
	v, ok := r.Lookup(article, bib.FieldJournalTitle, bib.ModeBibLaTeX)
	if !ok || v != "Annals of Things" {
		t.Errorf("Lookup(journaltitle) = %q, %v; want %q, true", v, ok, "Annals of Things")
	}
}

func TestLookupBibTeXParentSameNameOnly(t *testing.T) {
	book := bib.NewEntry(bib.TypeBook).
		WithField(bib.FieldTitle, "The Container Volume").
		WithField(bib.FieldYear, "1999")
	chapter := bib.NewEntry(bib.TypeInBook)
	chapter.SetParent(book)

	var r Resolver
	if v, ok := r.Lookup(chapter, bib.FieldYear, bib.ModeBibTeX); !ok || v != "1999" {
		t.Errorf("Lookup(year) = %q, %v; want %q, true", v, ok, "1999")
	}
	// BibTeX inheritance has no booktitle renaming.
	if _, ok := r.Lookup(chapter, bib.FieldBooktitle, bib.ModeBibTeX); ok {
		t.Error("bibtex Lookup(booktitle) resolved through renaming, want no value")
	}
}

func TestLookupCyclicParentsTerminate(t *testing.T) {
	a := bib.NewEntry(bib.TypeBook)
	b := bib.NewEntry(bib.TypeBook)
	a.SetParent(b)
	b.SetParent(a)

	var r Resolver
	if v, ok := r.Lookup(a, bib.FieldTitle, bib.ModeBibLaTeX); ok {
		t.Errorf("Lookup on cyclic parents = %q, want no value", v)
	}
}
