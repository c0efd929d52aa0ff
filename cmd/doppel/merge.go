package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matsen/doppel/internal/bib"
	"github.com/matsen/doppel/internal/bibtex"
	"github.com/matsen/doppel/internal/merge"
)

var mergeDryRun bool

func init() {
	mergeCmd.Flags().BoolVar(&mergeDryRun, "dry-run", false, "Show the merged entry without writing")
	rootCmd.AddCommand(mergeCmd)
}

var mergeCmd = &cobra.Command{
	Use:   "merge <keep> <drop>",
	Short: "Fold one entry into another",
	Long: `Fold one library entry into another.

The kept entry wins wherever the two disagree; annotation fields
concatenate, and keyword and file lists union. The dropped entry is
removed from the library.

Examples:
  doppel merge smith2020 smith2020a
  doppel merge smith2020 smith2020a --dry-run`,
	Args: cobra.ExactArgs(2),
	RunE: runMerge,
}

// MergeResult reports a merge.
type MergeResult struct {
	Status  string                     `json:"status"` // merged or preview
	Kept    string                     `json:"kept"`
	Dropped string                     `json:"dropped"`
	Actions map[bib.Field]merge.Action `json:"actions"`
	Entry   *bib.Entry                 `json:"entry"`
}

func runMerge(cmd *cobra.Command, args []string) error {
	root := mustFindRepository()
	cfg := mustLoadConfig(root)
	lib := mustOpenLibrary(root, cfg)

	keep, drop := args[0], args[1]
	if keep == drop {
		exitWithError(ExitError, "cannot merge %q into itself", keep)
	}
	a := mustGetEntry(lib, keep)
	b := mustGetEntry(lib, drop)

	merged, actions := merge.Entries(a, b, merge.Policy{KeywordDelimiter: cfg.KeywordDelimiter})

	status := "preview"
	if !mergeDryRun {
		if err := lib.Replace(keep, merged); err != nil {
			exitStoreError(err)
		}
		if err := lib.Remove(drop); err != nil {
			exitStoreError(err)
		}
		status = "merged"
	}

	if humanOutput {
		if mergeDryRun {
			fmt.Printf("Would merge %s into %s:\n\n", drop, keep)
		} else {
			fmt.Printf("Merged %s into %s:\n\n", drop, keep)
		}
		fmt.Println(bibtex.Format(merged))
	} else {
		outputJSON(MergeResult{
			Status:  status,
			Kept:    keep,
			Dropped: drop,
			Actions: actions,
			Entry:   merged,
		})
	}
	return nil
}
