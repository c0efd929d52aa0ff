// Package bib defines the bibliographic entry model shared by the
// duplicate-detection engine, the library store, and the importers:
// entry types, field names, the per-type field tables for the BibTeX
// and BibLaTeX dialects, and the Entry record itself.
package bib

import "strings"

// Mode selects the database dialect an entry set is interpreted under.
// It decides which per-type field tables apply and whether field reads
// consult the BibLaTeX alias and inheritance rules.
type Mode int

const (
	ModeBibTeX Mode = iota
	ModeBibLaTeX
)

// String returns the lowercase dialect name.
func (m Mode) String() string {
	if m == ModeBibLaTeX {
		return "biblatex"
	}
	return "bibtex"
}

// ParseMode parses a dialect name. Unrecognized values default to BibTeX.
func ParseMode(s string) Mode {
	if strings.EqualFold(strings.TrimSpace(s), "biblatex") {
		return ModeBibLaTeX
	}
	return ModeBibTeX
}

// Field names a bibliographic field. Fields are compared by name, not
// identity; any lowercase name is a valid Field, the constants below
// just cover the vocabulary the engine and mergers know about.
type Field string

const (
	FieldAuthor     Field = "author"
	FieldEditor     Field = "editor"
	FieldBookAuthor Field = "bookauthor"
	FieldTranslator Field = "translator"

	FieldTitle          Field = "title"
	FieldSubtitle       Field = "subtitle"
	FieldTitleAddon     Field = "titleaddon"
	FieldShortTitle     Field = "shorttitle"
	FieldBooktitle      Field = "booktitle"
	FieldBookSubtitle   Field = "booksubtitle"
	FieldBookTitleAddon Field = "booktitleaddon"
	FieldMainTitle      Field = "maintitle"
	FieldMainSubtitle   Field = "mainsubtitle"
	FieldMainTitleAddon Field = "maintitleaddon"

	FieldJournal         Field = "journal"
	FieldJournalTitle    Field = "journaltitle"
	FieldJournalSubtitle Field = "journalsubtitle"

	FieldYear  Field = "year"
	FieldMonth Field = "month"
	FieldDay   Field = "day"
	FieldDate  Field = "date"

	FieldVolume    Field = "volume"
	FieldNumber    Field = "number"
	FieldIssue     Field = "issue"
	FieldVersion   Field = "version"
	FieldPages     Field = "pages"
	FieldChapter   Field = "chapter"
	FieldEdition   Field = "edition"
	FieldSeries    Field = "series"
	FieldPublisher Field = "publisher"
	FieldAddress   Field = "address"
	FieldLocation  Field = "location"

	FieldHowPublished Field = "howpublished"
	FieldInstitution  Field = "institution"
	FieldSchool       Field = "school"
	FieldOrganization Field = "organization"
	FieldType         Field = "type"
	FieldNote         Field = "note"
	FieldComment      Field = "comment"
	FieldAnnote       Field = "annote"
	FieldAnnotation   Field = "annotation"
	FieldAbstract     Field = "abstract"
	FieldKeywords     Field = "keywords"

	FieldDOI           Field = "doi"
	FieldISBN          Field = "isbn"
	FieldISSN          Field = "issn"
	FieldPMID          Field = "pmid"
	FieldEprint        Field = "eprint"
	FieldEprintType    Field = "eprinttype"
	FieldEprintClass   Field = "eprintclass"
	FieldArchivePrefix Field = "archiveprefix"
	FieldPrimaryClass  Field = "primaryclass"
	FieldURL           Field = "url"
	FieldFile          Field = "file"
	FieldPDF           Field = "pdf"

	FieldKey      Field = "key"
	FieldSortKey  Field = "sortkey"
	FieldCrossref Field = "crossref"
	FieldXref     Field = "xref"
	FieldIDs      Field = "ids"
	FieldEntrySet Field = "entryset"
	FieldRelated  Field = "related"
)

// NormalizeField canonicalizes a field name for comparison by name.
func NormalizeField(name string) Field {
	return Field(strings.ToLower(strings.TrimSpace(name)))
}

// EntryType names a bibliographic entry type. Unknown names are valid
// types; they compare by name only.
type EntryType string

const (
	TypeArticle        EntryType = "article"
	TypeBook           EntryType = "book"
	TypeMvBook         EntryType = "mvbook"
	TypeInBook         EntryType = "inbook"
	TypeBookInBook     EntryType = "bookinbook"
	TypeSuppBook       EntryType = "suppbook"
	TypeBooklet        EntryType = "booklet"
	TypeCollection     EntryType = "collection"
	TypeMvCollection   EntryType = "mvcollection"
	TypeInCollection   EntryType = "incollection"
	TypeSuppCollection EntryType = "suppcollection"
	TypeConference     EntryType = "conference"
	TypeProceedings    EntryType = "proceedings"
	TypeMvProceedings  EntryType = "mvproceedings"
	TypeInProceedings  EntryType = "inproceedings"
	TypeManual         EntryType = "manual"
	TypeMastersThesis  EntryType = "mastersthesis"
	TypePhDThesis      EntryType = "phdthesis"
	TypeThesis         EntryType = "thesis"
	TypeTechReport     EntryType = "techreport"
	TypeReport         EntryType = "report"
	TypeUnpublished    EntryType = "unpublished"
	TypeMisc           EntryType = "misc"
	TypeOnline         EntryType = "online"
	TypePeriodical     EntryType = "periodical"
	TypeSuppPeriodical EntryType = "suppperiodical"
	TypeReference      EntryType = "reference"
	TypeMvReference    EntryType = "mvreference"
	TypeInReference    EntryType = "inreference"
)

// DefaultType is assumed for entries that do not declare a type.
const DefaultType = TypeMisc

// ParseEntryType canonicalizes a type name. Empty input yields DefaultType.
func ParseEntryType(name string) EntryType {
	t := EntryType(strings.ToLower(strings.TrimSpace(name)))
	if t == "" {
		return DefaultType
	}
	return t
}

// Record is the read-only view of an entry consumed by the comparison
// engine and the field resolver. Implementations must not require
// mutation to answer reads; absent fields report ok=false rather than
// an empty value.
type Record interface {
	// Type returns the declared entry type.
	Type() EntryType
	// Field returns the raw value of a field and whether it is set.
	Field(f Field) (string, bool)
	// FieldNames returns the names of all set fields.
	FieldNames() []Field
	// Parent returns the cross-referenced entry, if one is attached.
	Parent() (Record, bool)
}
