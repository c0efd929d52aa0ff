package bib

// TypeSpec lists which fields an entry type requires and which it
// optionally carries. Where the underlying dialect allows alternatives
// (author or editor, chapter or pages), the primary alternative is
// listed. The comparison engine scores required fields first and
// consults optional fields only when the required fields are
// inconclusive.
type TypeSpec struct {
	Required []Field
	Optional []Field
}

// Definition returns the field table for a type under the given dialect.
// Unknown types report ok=false; callers fall back to comparing the
// fields actually present.
func Definition(t EntryType, m Mode) (TypeSpec, bool) {
	var table map[EntryType]TypeSpec
	if m == ModeBibLaTeX {
		table = biblatexTypes
	} else {
		table = bibtexTypes
	}
	spec, ok := table[ParseEntryType(string(t))]
	return spec, ok
}

var bibtexTypes = map[EntryType]TypeSpec{
	TypeArticle: {
		Required: []Field{FieldAuthor, FieldTitle, FieldJournal, FieldYear},
		Optional: []Field{FieldVolume, FieldNumber, FieldPages, FieldMonth, FieldNote},
	},
	TypeBook: {
		Required: []Field{FieldAuthor, FieldTitle, FieldPublisher, FieldYear},
		Optional: []Field{FieldVolume, FieldNumber, FieldSeries, FieldAddress, FieldEdition, FieldMonth, FieldNote},
	},
	TypeBooklet: {
		Required: []Field{FieldTitle},
		Optional: []Field{FieldAuthor, FieldHowPublished, FieldAddress, FieldMonth, FieldYear, FieldNote},
	},
	TypeConference: {
		Required: []Field{FieldAuthor, FieldTitle, FieldBooktitle, FieldYear},
		Optional: []Field{FieldEditor, FieldVolume, FieldNumber, FieldSeries, FieldPages, FieldAddress, FieldMonth, FieldOrganization, FieldPublisher, FieldNote},
	},
	TypeInBook: {
		Required: []Field{FieldChapter, FieldAuthor, FieldTitle, FieldPublisher, FieldYear},
		Optional: []Field{FieldVolume, FieldNumber, FieldSeries, FieldType, FieldAddress, FieldEdition, FieldMonth, FieldPages, FieldNote},
	},
	TypeInCollection: {
		Required: []Field{FieldAuthor, FieldTitle, FieldBooktitle, FieldPublisher, FieldYear},
		Optional: []Field{FieldEditor, FieldVolume, FieldNumber, FieldSeries, FieldType, FieldChapter, FieldPages, FieldAddress, FieldEdition, FieldMonth, FieldNote},
	},
	TypeInProceedings: {
		Required: []Field{FieldAuthor, FieldTitle, FieldBooktitle, FieldYear},
		Optional: []Field{FieldEditor, FieldVolume, FieldNumber, FieldSeries, FieldPages, FieldAddress, FieldMonth, FieldOrganization, FieldPublisher, FieldNote},
	},
	TypeManual: {
		Required: []Field{FieldTitle},
		Optional: []Field{FieldAuthor, FieldOrganization, FieldAddress, FieldEdition, FieldMonth, FieldYear, FieldNote},
	},
	TypeMastersThesis: {
		Required: []Field{FieldAuthor, FieldTitle, FieldSchool, FieldYear},
		Optional: []Field{FieldType, FieldAddress, FieldMonth, FieldNote},
	},
	TypeMisc: {
		Required: nil,
		Optional: []Field{FieldAuthor, FieldTitle, FieldHowPublished, FieldMonth, FieldYear, FieldNote},
	},
	TypePhDThesis: {
		Required: []Field{FieldAuthor, FieldTitle, FieldSchool, FieldYear},
		Optional: []Field{FieldType, FieldAddress, FieldMonth, FieldNote},
	},
	TypeProceedings: {
		Required: []Field{FieldTitle, FieldYear},
		Optional: []Field{FieldEditor, FieldVolume, FieldNumber, FieldSeries, FieldAddress, FieldPublisher, FieldNote, FieldMonth, FieldOrganization},
	},
	TypeTechReport: {
		Required: []Field{FieldAuthor, FieldTitle, FieldInstitution, FieldYear},
		Optional: []Field{FieldType, FieldNumber, FieldAddress, FieldMonth, FieldNote},
	},
	TypeUnpublished: {
		Required: []Field{FieldAuthor, FieldTitle, FieldNote},
		Optional: []Field{FieldMonth, FieldYear},
	},
}

var biblatexTypes = map[EntryType]TypeSpec{
	TypeArticle: {
		Required: []Field{FieldAuthor, FieldTitle, FieldJournalTitle, FieldDate},
		Optional: []Field{FieldSubtitle, FieldTitleAddon, FieldEditor, FieldSeries, FieldVolume, FieldNumber, FieldIssue, FieldMonth, FieldPages, FieldNote, FieldISSN, FieldDOI, FieldEprint, FieldEprintType, FieldEprintClass, FieldURL},
	},
	TypeBook: {
		Required: []Field{FieldAuthor, FieldTitle, FieldDate},
		Optional: []Field{FieldEditor, FieldSubtitle, FieldTitleAddon, FieldMainTitle, FieldMainSubtitle, FieldVolume, FieldEdition, FieldSeries, FieldNumber, FieldPublisher, FieldLocation, FieldISBN, FieldChapter, FieldPages, FieldNote, FieldDOI, FieldURL},
	},
	TypeMvBook: {
		Required: []Field{FieldAuthor, FieldTitle, FieldDate},
		Optional: []Field{FieldEditor, FieldSubtitle, FieldTitleAddon, FieldEdition, FieldVolume, FieldSeries, FieldNumber, FieldPublisher, FieldLocation, FieldISBN, FieldNote, FieldDOI, FieldURL},
	},
	TypeInBook: {
		Required: []Field{FieldAuthor, FieldTitle, FieldBooktitle, FieldDate},
		Optional: []Field{FieldBookAuthor, FieldEditor, FieldSubtitle, FieldBookSubtitle, FieldBookTitleAddon, FieldMainTitle, FieldChapter, FieldPages, FieldVolume, FieldEdition, FieldSeries, FieldPublisher, FieldLocation, FieldISBN, FieldNote, FieldDOI, FieldURL},
	},
	TypeBookInBook: {
		Required: []Field{FieldAuthor, FieldTitle, FieldBooktitle, FieldDate},
		Optional: []Field{FieldBookAuthor, FieldEditor, FieldSubtitle, FieldChapter, FieldPages, FieldVolume, FieldEdition, FieldSeries, FieldPublisher, FieldLocation, FieldISBN, FieldNote, FieldDOI, FieldURL},
	},
	TypeSuppBook: {
		Required: []Field{FieldAuthor, FieldTitle, FieldBooktitle, FieldDate},
		Optional: []Field{FieldBookAuthor, FieldEditor, FieldSubtitle, FieldChapter, FieldPages, FieldVolume, FieldEdition, FieldSeries, FieldPublisher, FieldLocation, FieldISBN, FieldNote, FieldDOI, FieldURL},
	},
	TypeBooklet: {
		Required: []Field{FieldAuthor, FieldTitle, FieldDate},
		Optional: []Field{FieldSubtitle, FieldTitleAddon, FieldHowPublished, FieldLocation, FieldNote, FieldDOI, FieldURL},
	},
	TypeCollection: {
		Required: []Field{FieldEditor, FieldTitle, FieldDate},
		Optional: []Field{FieldSubtitle, FieldTitleAddon, FieldMainTitle, FieldVolume, FieldEdition, FieldSeries, FieldNumber, FieldPublisher, FieldLocation, FieldISBN, FieldNote, FieldDOI, FieldURL},
	},
	TypeMvCollection: {
		Required: []Field{FieldEditor, FieldTitle, FieldDate},
		Optional: []Field{FieldSubtitle, FieldTitleAddon, FieldEdition, FieldVolume, FieldSeries, FieldNumber, FieldPublisher, FieldLocation, FieldISBN, FieldNote, FieldDOI, FieldURL},
	},
	TypeInCollection: {
		Required: []Field{FieldAuthor, FieldTitle, FieldBooktitle, FieldDate},
		Optional: []Field{FieldEditor, FieldSubtitle, FieldBookSubtitle, FieldMainTitle, FieldChapter, FieldPages, FieldVolume, FieldEdition, FieldSeries, FieldPublisher, FieldLocation, FieldISBN, FieldNote, FieldDOI, FieldURL},
	},
	TypeSuppCollection: {
		Required: []Field{FieldAuthor, FieldTitle, FieldBooktitle, FieldDate},
		Optional: []Field{FieldEditor, FieldSubtitle, FieldChapter, FieldPages, FieldVolume, FieldEdition, FieldSeries, FieldPublisher, FieldLocation, FieldISBN, FieldNote, FieldDOI, FieldURL},
	},
	TypeConference: {
		Required: []Field{FieldAuthor, FieldTitle, FieldBooktitle, FieldDate},
		Optional: []Field{FieldEditor, FieldSubtitle, FieldVolume, FieldSeries, FieldPages, FieldPublisher, FieldLocation, FieldOrganization, FieldNote, FieldDOI, FieldURL},
	},
	TypeProceedings: {
		Required: []Field{FieldTitle, FieldDate},
		Optional: []Field{FieldEditor, FieldSubtitle, FieldMainTitle, FieldVolume, FieldSeries, FieldNumber, FieldPublisher, FieldLocation, FieldOrganization, FieldISBN, FieldNote, FieldDOI, FieldURL},
	},
	TypeMvProceedings: {
		Required: []Field{FieldTitle, FieldDate},
		Optional: []Field{FieldEditor, FieldSubtitle, FieldVolume, FieldSeries, FieldNumber, FieldPublisher, FieldLocation, FieldOrganization, FieldISBN, FieldNote, FieldDOI, FieldURL},
	},
	TypeInProceedings: {
		Required: []Field{FieldAuthor, FieldTitle, FieldBooktitle, FieldDate},
		Optional: []Field{FieldEditor, FieldSubtitle, FieldVolume, FieldSeries, FieldPages, FieldPublisher, FieldLocation, FieldOrganization, FieldISBN, FieldNote, FieldDOI, FieldURL},
	},
	TypeManual: {
		Required: []Field{FieldTitle, FieldDate},
		Optional: []Field{FieldAuthor, FieldEditor, FieldSubtitle, FieldEdition, FieldPublisher, FieldOrganization, FieldLocation, FieldISBN, FieldNote, FieldDOI, FieldURL},
	},
	TypeMastersThesis: {
		Required: []Field{FieldAuthor, FieldTitle, FieldInstitution, FieldDate},
		Optional: []Field{FieldSubtitle, FieldType, FieldLocation, FieldChapter, FieldPages, FieldNote, FieldDOI, FieldURL},
	},
	TypePhDThesis: {
		Required: []Field{FieldAuthor, FieldTitle, FieldInstitution, FieldDate},
		Optional: []Field{FieldSubtitle, FieldType, FieldLocation, FieldChapter, FieldPages, FieldNote, FieldDOI, FieldURL},
	},
	TypeThesis: {
		Required: []Field{FieldAuthor, FieldTitle, FieldType, FieldInstitution, FieldDate},
		Optional: []Field{FieldSubtitle, FieldLocation, FieldChapter, FieldPages, FieldNote, FieldDOI, FieldURL},
	},
	TypeTechReport: {
		Required: []Field{FieldAuthor, FieldTitle, FieldInstitution, FieldDate},
		Optional: []Field{FieldSubtitle, FieldType, FieldNumber, FieldLocation, FieldNote, FieldDOI, FieldURL},
	},
	TypeReport: {
		Required: []Field{FieldAuthor, FieldTitle, FieldType, FieldInstitution, FieldDate},
		Optional: []Field{FieldSubtitle, FieldNumber, FieldVersion, FieldLocation, FieldNote, FieldDOI, FieldURL},
	},
	TypeUnpublished: {
		Required: []Field{FieldAuthor, FieldTitle, FieldDate},
		Optional: []Field{FieldSubtitle, FieldHowPublished, FieldLocation, FieldNote, FieldMonth, FieldYear, FieldURL},
	},
	TypeMisc: {
		Required: nil,
		Optional: []Field{FieldAuthor, FieldEditor, FieldTitle, FieldSubtitle, FieldHowPublished, FieldType, FieldOrganization, FieldLocation, FieldDate, FieldMonth, FieldYear, FieldNote, FieldDOI, FieldURL},
	},
	TypeOnline: {
		Required: []Field{FieldAuthor, FieldTitle, FieldDate, FieldURL},
		Optional: []Field{FieldSubtitle, FieldOrganization, FieldMonth, FieldYear, FieldNote},
	},
	TypePeriodical: {
		Required: []Field{FieldEditor, FieldTitle, FieldDate},
		Optional: []Field{FieldSubtitle, FieldSeries, FieldVolume, FieldNumber, FieldISSN, FieldNote, FieldDOI, FieldURL},
	},
	TypeSuppPeriodical: {
		Required: []Field{FieldAuthor, FieldTitle, FieldJournalTitle, FieldDate},
		Optional: []Field{FieldSubtitle, FieldSeries, FieldVolume, FieldNumber, FieldMonth, FieldPages, FieldNote, FieldISSN, FieldDOI, FieldURL},
	},
	TypeReference: {
		Required: []Field{FieldEditor, FieldTitle, FieldDate},
		Optional: []Field{FieldSubtitle, FieldMainTitle, FieldVolume, FieldEdition, FieldSeries, FieldNumber, FieldPublisher, FieldLocation, FieldISBN, FieldNote, FieldDOI, FieldURL},
	},
	TypeMvReference: {
		Required: []Field{FieldEditor, FieldTitle, FieldDate},
		Optional: []Field{FieldSubtitle, FieldEdition, FieldVolume, FieldSeries, FieldNumber, FieldPublisher, FieldLocation, FieldISBN, FieldNote, FieldDOI, FieldURL},
	},
	TypeInReference: {
		Required: []Field{FieldAuthor, FieldTitle, FieldBooktitle, FieldDate},
		Optional: []Field{FieldEditor, FieldSubtitle, FieldChapter, FieldPages, FieldVolume, FieldEdition, FieldSeries, FieldPublisher, FieldLocation, FieldISBN, FieldNote, FieldDOI, FieldURL},
	},
}
