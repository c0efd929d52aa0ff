package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/doppel/internal/bib"
	"github.com/matsen/doppel/internal/dedup"
	"github.com/matsen/doppel/internal/library"
	"github.com/matsen/doppel/internal/merge"
)

var (
	importDryRun bool
	importMerge  bool
)

func init() {
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Classify entries without writing")
	importCmd.Flags().BoolVar(&importMerge, "merge", false, "Fold duplicates into the existing entries instead of skipping them")
	rootCmd.AddCommand(importCmd)
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import entries, classifying duplicates",
	Long: `Import entries from a BibTeX or JSONL file.

Every candidate is classified against the library before anything is
written: new entries are appended, duplicates are skipped (or folded
into their existing entry with --merge), and entries whose citation
key is already taken by a different work are rejected. The exit code
is 4 when an import left candidates behind.

Examples:
  doppel import refs.bib --dry-run
  doppel import refs.bib
  doppel import refs.bib --merge`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

// ImportResult reports an import run.
type ImportResult struct {
	DryRun   bool           `json:"dry_run,omitempty"`
	Imported int            `json:"imported"`
	Merged   int            `json:"merged"`
	Skipped  int            `json:"skipped"`
	Details  []ImportDetail `json:"details"`
}

// ImportDetail describes what happened to one candidate entry.
type ImportDetail struct {
	Key    string `json:"key,omitempty"`
	Title  string `json:"title,omitempty"`
	Action string `json:"action"`           // import, merge, skip
	Reason string `json:"reason,omitempty"` // engine rule, key-conflict, duplicate-in-batch
	Of     string `json:"of,omitempty"`     // matched library entry or batch candidate
}

// importPlan is the decided fate of one candidate.
type importPlan struct {
	entry   *bib.Entry
	action  string
	reason  string
	of      string
	ofEntry *bib.Entry
}

func runImport(cmd *cobra.Command, args []string) error {
	root := mustFindRepository()
	cfg := mustLoadConfig(root)
	lib := mustOpenLibrary(root, cfg)
	mode := cfg.EngineMode()
	checker := newChecker(cfg)

	incoming, err := readEntryFile(args[0])
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	if len(incoming) == 0 {
		exitWithError(ExitError, "no entries in %s", args[0])
	}

	existing, err := lib.Entries()
	if err != nil {
		exitStoreError(err)
	}
	byKey := make(map[string]*bib.Entry, len(existing))
	for _, e := range existing {
		if k := e.Key(); k != "" {
			byKey[k] = e
		}
	}

	plans := make([]importPlan, 0, len(incoming))
	var accepted []*bib.Entry
	acceptedKeys := make(map[string]bool)

	for _, cand := range incoming {
		plan := importPlan{entry: cand}

		of, ofEntry, reason, err := matchAgainstLibrary(lib, checker, mode, existing, byKey, cand)
		if err != nil {
			exitStoreError(err)
		}
		if reason != "" {
			plan.reason, plan.of, plan.ofEntry = reason, of, ofEntry
			if importMerge && ofEntry != nil {
				plan.action = "merge"
			} else {
				plan.action = "skip"
			}
		} else if batchOf := matchesBatch(checker, mode, accepted, cand); batchOf != "" {
			plan.action = "skip"
			plan.reason = "duplicate-in-batch"
			plan.of = batchOf
		} else if k := cand.Key(); k != "" && (byKey[k] != nil || acceptedKeys[k]) {
			plan.action = "skip"
			plan.reason = "key-conflict"
			plan.of = k
		} else {
			plan.action = "import"
			accepted = append(accepted, cand)
			if k := cand.Key(); k != "" {
				acceptedKeys[k] = true
			}
		}
		plans = append(plans, plan)
	}

	imported, merged, skipped := 0, 0, 0
	details := make([]ImportDetail, 0, len(plans))
	var toAppend []*bib.Entry
	for _, p := range plans {
		title, _ := p.entry.Field(bib.FieldTitle)
		details = append(details, ImportDetail{
			Key:    p.entry.Key(),
			Title:  truncateString(title, ImportTitleMaxLen),
			Action: p.action,
			Reason: p.reason,
			Of:     p.of,
		})
		switch p.action {
		case "import":
			toAppend = append(toAppend, p.entry)
			imported++
		case "merge":
			merged++
		case "skip":
			skipped++
		}
	}

	if !importDryRun {
		policy := merge.Policy{KeywordDelimiter: cfg.KeywordDelimiter}
		// Several candidates can fold into the same entry; each merge
		// builds on the previous one, not on the original.
		folded := make(map[string]*bib.Entry)
		for _, p := range plans {
			if p.action != "merge" {
				continue
			}
			base := p.ofEntry
			if prev, ok := folded[p.of]; ok {
				base = prev
			}
			next, _ := merge.Entries(base, p.entry, policy)
			if err := lib.Replace(p.of, next); err != nil {
				exitStoreError(err)
			}
			folded[p.of] = next
		}
		if len(toAppend) > 0 {
			if err := lib.Append(toAppend...); err != nil {
				exitStoreError(err)
			}
		}
	}

	result := ImportResult{
		DryRun:   importDryRun,
		Imported: imported,
		Merged:   merged,
		Skipped:  skipped,
		Details:  details,
	}
	if humanOutput {
		printImportHuman(result)
	} else {
		outputJSON(result)
	}

	if !importDryRun && skipped > 0 {
		os.Exit(ExitDuplicate)
	}
	return nil
}

// matchAgainstLibrary finds the library entry a candidate duplicates.
// The identifier index settles doi/pmid/eprint hits without scoring the
// whole library; everything else goes through the full comparison. An
// empty reason means no match.
func matchAgainstLibrary(lib *library.Library, checker *dedup.Checker, mode bib.Mode,
	existing []*bib.Entry, byKey map[string]*bib.Entry, cand *bib.Entry) (of string, ofEntry *bib.Entry, reason string, err error) {

	for _, f := range library.IdentFields() {
		v, ok := cand.Field(f)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		keys, err := lib.LookupIdentifier(f, v)
		if err != nil {
			return "", nil, "", err
		}
		if len(keys) > 0 {
			return keys[0], byKey[keys[0]], string(dedup.ReasonIdentifier), nil
		}
	}

	for _, ex := range existing {
		if res := checker.Compare(cand, ex, mode); res.Duplicate {
			return ex.Key(), ex, string(res.Reason), nil
		}
	}
	return "", nil, "", nil
}

// matchesBatch reports the label of an already accepted candidate the
// entry duplicates, or "".
func matchesBatch(checker *dedup.Checker, mode bib.Mode, accepted []*bib.Entry, cand *bib.Entry) string {
	for _, acc := range accepted {
		if checker.Compare(cand, acc, mode).Duplicate {
			return entryLabel(acc)
		}
	}
	return ""
}

func printImportHuman(r ImportResult) {
	if r.DryRun {
		fmt.Println("Dry run, nothing written.")
	}
	fmt.Printf("  Imported: %d new entries\n", r.Imported)
	fmt.Printf("  Merged:   %d into existing entries\n", r.Merged)
	fmt.Printf("  Skipped:  %d (duplicates or key conflicts)\n", r.Skipped)

	var rows [][]string
	for _, d := range r.Details {
		if d.Action == "import" {
			continue
		}
		label := d.Key
		if label == "" {
			label = d.Title
		}
		rows = append(rows, []string{label, d.Action, d.Reason, d.Of})
	}
	if len(rows) > 0 {
		fmt.Println()
		fmt.Println(renderTable([]string{"Entry", "Action", "Reason", "Of"}, rows, nil))
	}
}
