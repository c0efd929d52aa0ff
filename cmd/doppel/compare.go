package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/matsen/doppel/internal/bib"
	"github.com/matsen/doppel/internal/dedup"
)

var compareFile string

func init() {
	compareCmd.Flags().StringVar(&compareFile, "file", "", "Resolve the keys in this BibTeX or JSONL file instead of the library")
	rootCmd.AddCommand(compareCmd)
}

var compareCmd = &cobra.Command{
	Use:   "compare <key-a> <key-b>",
	Short: "Compare two entries field by field",
	Long: `Compare two entries field by field.

Both keys name library entries, or entries of the file given with
--file. The report carries the verdict, the agreement score, the rule
that settled it, and every field's individual verdict.

Examples:
  doppel compare smith2020 smith2020a
  doppel compare --file refs.bib smith2020 jones2019`,
	Args: cobra.ExactArgs(2),
	RunE: runCompare,
}

// CompareResult reports one comparison with the entries it covered.
type CompareResult struct {
	A EntrySummary `json:"a"`
	B EntrySummary `json:"b"`
	dedup.Result
}

func runCompare(cmd *cobra.Command, args []string) error {
	root := mustFindRepository()
	cfg := mustLoadConfig(root)

	var a, b *bib.Entry
	if compareFile != "" {
		entries, err := readEntryFile(compareFile)
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		a = findByKey(entries, compareFile, args[0])
		b = findByKey(entries, compareFile, args[1])
	} else {
		lib := mustOpenLibrary(root, cfg)
		a = mustGetEntry(lib, args[0])
		b = mustGetEntry(lib, args[1])
	}

	res := newChecker(cfg).Compare(a, b, cfg.EngineMode())
	out := CompareResult{A: summarize(a), B: summarize(b), Result: res}

	if humanOutput {
		printCompareHuman(out)
	} else {
		outputJSON(out)
	}
	return nil
}

// findByKey picks the entry with the given citation key out of a file's
// entries, exiting when it is absent.
func findByKey(entries []*bib.Entry, path, key string) *bib.Entry {
	for _, e := range entries {
		if e.Key() == key {
			return e
		}
	}
	exitWithError(ExitNotFound, "entry %q not found in %s", key, path)
	return nil
}

func printCompareHuman(r CompareResult) {
	verdict := "distinct"
	if r.Duplicate {
		verdict = "duplicate"
	}
	fmt.Printf("%s vs %s: %s\n", r.A.label(), r.B.label(), verdict)
	fmt.Printf("  score:  %s (%s)\n", formatScore(r.Score), r.Reason)
	fmt.Printf("  strict: %s\n", formatScore(r.Strict))

	if len(r.Fields) == 0 {
		return
	}
	fields := make([]string, 0, len(r.Fields))
	for f := range r.Fields {
		fields = append(fields, string(f))
	}
	sort.Strings(fields)
	fmt.Println()
	for _, f := range fields {
		fmt.Printf("  %-18s %s\n", f, r.Fields[bib.Field(f)])
	}
}
