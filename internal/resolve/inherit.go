package resolve

import "github.com/matsen/doppel/internal/bib"

// forbiddenInherit lists fields that never cross an entry boundary.
var forbiddenInherit = map[bib.Field]bool{
	bib.FieldIDs:      true,
	bib.FieldCrossref: true,
	bib.FieldXref:     true,
	bib.FieldEntrySet: true,
	bib.FieldRelated:  true,
	bib.FieldSortKey:  true,
}

// titleFamily is blocked wherever a rule renames title-like fields:
// a chapter must not pick up its container's title as its own.
var titleFamily = []bib.Field{
	bib.FieldTitle,
	bib.FieldSubtitle,
	bib.FieldTitleAddon,
	bib.FieldShortTitle,
}

// inheritRule describes how fields flow from one family of source
// (parent) types to a family of target (child) types. Mapped entries
// rename the child's field to the parent field it reads; blocked
// entries suppress inheritance entirely. Fields matched by no rule
// inherit under their own name.
type inheritRule struct {
	sources []bib.EntryType
	targets []bib.EntryType
	mapped  map[bib.Field]bib.Field
	blocked []bib.Field
}

var inheritRules = []inheritRule{
	// A chapter's authorship comes from the book's author.
	{
		sources: []bib.EntryType{bib.TypeMvBook, bib.TypeBook},
		targets: []bib.EntryType{bib.TypeInBook, bib.TypeBookInBook, bib.TypeSuppBook},
		mapped: map[bib.Field]bib.Field{
			bib.FieldAuthor:     bib.FieldAuthor,
			bib.FieldBookAuthor: bib.FieldAuthor,
		},
	},
	// Multi-volume containers donate their title as the child's maintitle.
	{
		sources: []bib.EntryType{bib.TypeMvBook},
		targets: []bib.EntryType{bib.TypeBook, bib.TypeInBook, bib.TypeBookInBook, bib.TypeSuppBook},
		mapped: map[bib.Field]bib.Field{
			bib.FieldMainTitle:      bib.FieldTitle,
			bib.FieldMainSubtitle:   bib.FieldSubtitle,
			bib.FieldMainTitleAddon: bib.FieldTitleAddon,
		},
		blocked: titleFamily,
	},
	{
		sources: []bib.EntryType{bib.TypeMvCollection, bib.TypeMvReference},
		targets: []bib.EntryType{bib.TypeCollection, bib.TypeInCollection, bib.TypeSuppCollection, bib.TypeReference, bib.TypeInReference},
		mapped: map[bib.Field]bib.Field{
			bib.FieldMainTitle:      bib.FieldTitle,
			bib.FieldMainSubtitle:   bib.FieldSubtitle,
			bib.FieldMainTitleAddon: bib.FieldTitleAddon,
		},
		blocked: titleFamily,
	},
	{
		sources: []bib.EntryType{bib.TypeMvProceedings},
		targets: []bib.EntryType{bib.TypeProceedings, bib.TypeInProceedings},
		mapped: map[bib.Field]bib.Field{
			bib.FieldMainTitle:      bib.FieldTitle,
			bib.FieldMainSubtitle:   bib.FieldSubtitle,
			bib.FieldMainTitleAddon: bib.FieldTitleAddon,
		},
		blocked: titleFamily,
	},
	// Single-volume containers donate their title as the child's booktitle.
	{
		sources: []bib.EntryType{bib.TypeBook},
		targets: []bib.EntryType{bib.TypeInBook, bib.TypeBookInBook, bib.TypeSuppBook},
		mapped: map[bib.Field]bib.Field{
			bib.FieldBooktitle:      bib.FieldTitle,
			bib.FieldBookSubtitle:   bib.FieldSubtitle,
			bib.FieldBookTitleAddon: bib.FieldTitleAddon,
		},
		blocked: titleFamily,
	},
	{
		sources: []bib.EntryType{bib.TypeCollection, bib.TypeReference},
		targets: []bib.EntryType{bib.TypeInCollection, bib.TypeSuppCollection, bib.TypeInReference},
		mapped: map[bib.Field]bib.Field{
			bib.FieldBooktitle:      bib.FieldTitle,
			bib.FieldBookSubtitle:   bib.FieldSubtitle,
			bib.FieldBookTitleAddon: bib.FieldTitleAddon,
		},
		blocked: titleFamily,
	},
	{
		sources: []bib.EntryType{bib.TypeProceedings},
		targets: []bib.EntryType{bib.TypeInProceedings},
		mapped: map[bib.Field]bib.Field{
			bib.FieldBooktitle:      bib.FieldTitle,
			bib.FieldBookSubtitle:   bib.FieldSubtitle,
			bib.FieldBookTitleAddon: bib.FieldTitleAddon,
		},
		blocked: titleFamily,
	},
	// Periodicals donate their title as the article's journaltitle.
	{
		sources: []bib.EntryType{bib.TypePeriodical},
		targets: []bib.EntryType{bib.TypeArticle, bib.TypeSuppPeriodical},
		mapped: map[bib.Field]bib.Field{
			bib.FieldJournalTitle:    bib.FieldTitle,
			bib.FieldJournalSubtitle: bib.FieldSubtitle,
		},
		blocked: titleFamily,
	},
}

type inheritKey struct {
	target bib.EntryType
	source bib.EntryType
	field  bib.Field
}

var (
	inheritMapped  = map[inheritKey]bib.Field{}
	inheritBlocked = map[inheritKey]bool{}
)

func init() {
	for _, rule := range inheritRules {
		for _, src := range rule.sources {
			for _, tgt := range rule.targets {
				for child, parent := range rule.mapped {
					inheritMapped[inheritKey{tgt, src, child}] = parent
				}
				for _, f := range rule.blocked {
					inheritBlocked[inheritKey{tgt, src, f}] = true
				}
			}
		}
	}
}

// inheritedField returns the parent field a child of type target reads
// when asked for f and its cross-reference has type source, or ok=false
// when the field must not be inherited.
func inheritedField(target, source bib.EntryType, f bib.Field) (bib.Field, bool) {
	if forbiddenInherit[f] {
		return "", false
	}
	k := inheritKey{bib.ParseEntryType(string(target)), bib.ParseEntryType(string(source)), f}
	if inheritBlocked[k] {
		return "", false
	}
	if mapped, ok := inheritMapped[k]; ok {
		return mapped, true
	}
	return f, true
}
