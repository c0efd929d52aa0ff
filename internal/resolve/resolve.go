// Package resolve answers field lookups the way the entry's dialect
// expects: directly for BibTeX, and through the alias table, date
// parts, and cross-reference inheritance rules for BibLaTeX. The
// comparison engine consumes it as its field resolver.
package resolve

import (
	"github.com/matsen/doppel/internal/bib"
)

// maxHops bounds cross-reference chains so cyclic parent attachments
// cannot recurse forever.
const maxHops = 3

// Resolver resolves field reads against a record. It is stateless and
// safe for concurrent use.
type Resolver struct{}

// Lookup returns the value of field f on record r under the given
// dialect, and whether any value was found. BibTeX mode reads the field
// itself and falls back to the same-named field on a cross-referenced
// parent. BibLaTeX mode additionally consults the old/new alias table,
// derives year/month/day from a date field (and date from its parts),
// and applies the type-pair inheritance rules when following the
// parent.
func (Resolver) Lookup(r bib.Record, f bib.Field, mode bib.Mode) (string, bool) {
	return lookup(r, bib.NormalizeField(string(f)), mode, maxHops)
}

func lookup(r bib.Record, f bib.Field, mode bib.Mode, hops int) (string, bool) {
	if r == nil || hops <= 0 {
		return "", false
	}

	if v, ok := r.Field(f); ok {
		return v, true
	}

	if mode == bib.ModeBibLaTeX {
		if alias, ok := fieldAliases[f]; ok {
			if v, ok := r.Field(alias); ok {
				return v, true
			}
		}
		if v, ok := datePart(r, f); ok {
			return v, true
		}
	}

	parent, ok := r.Parent()
	if !ok {
		return "", false
	}

	if mode == bib.ModeBibTeX {
		// BibTeX cross-references inherit same-named fields only.
		if forbiddenInherit[f] {
			return "", false
		}
		return lookup(parent, f, mode, hops-1)
	}

	parentField, ok := inheritedField(r.Type(), parent.Type(), f)
	if !ok {
		return "", false
	}
	return lookup(parent, parentField, mode, hops-1)
}
