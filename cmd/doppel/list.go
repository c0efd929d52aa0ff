package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/matsen/doppel/internal/bib"
	"github.com/matsen/doppel/internal/bibtex"
	"github.com/matsen/doppel/internal/library"
)

var (
	listLimit  int
	listBibtex bool
)

func init() {
	listCmd.Flags().IntVar(&listLimit, "limit", 0, "Show at most this many entries (0 = all)")
	listCmd.Flags().BoolVar(&listBibtex, "bibtex", false, "Write entries as BibTeX instead of JSON")
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List library entries",
	Long: `List library entries.

Examples:
  doppel list
  doppel list --limit 20 --human
  doppel list --bibtex > library.bib`,
	RunE: runList,
}

// ListResult reports the library contents.
type ListResult struct {
	Total   int          `json:"total"`
	Entries []*bib.Entry `json:"entries"`
}

func runList(cmd *cobra.Command, args []string) error {
	root := mustFindRepository()
	cfg := mustLoadConfig(root)
	lib := mustOpenLibrary(root, cfg)

	entries, err := lib.Entries()
	if err != nil {
		exitStoreError(err)
	}
	total := len(entries)
	if listLimit > 0 && listLimit < len(entries) {
		entries = entries[:listLimit]
	}

	if listBibtex {
		if err := bibtex.Write(os.Stdout, entries); err != nil {
			exitWithError(ExitError, "writing bibtex: %v", err)
		}
		return nil
	}

	if humanOutput {
		printListHuman(lib, entries, total)
		return nil
	}
	if entries == nil {
		entries = []*bib.Entry{}
	}
	return outputJSON(ListResult{Total: total, Entries: entries})
}

func printListHuman(lib *library.Library, entries []*bib.Entry, total int) {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		title, _ := e.Field(bib.FieldTitle)
		year, _ := e.Field(bib.FieldYear)
		rows = append(rows, []string{
			e.Key(), string(e.Type()), year, truncateString(title, ListTitleMaxLen),
		})
	}
	if len(rows) > 0 {
		fmt.Println(renderTable([]string{"Key", "Type", "Year", "Title"}, rows, nil))
	}

	line := fmt.Sprintf("%d entries", total)
	if len(entries) < total {
		line = fmt.Sprintf("%d of %d entries", len(entries), total)
	}
	if stats, err := lib.Stats(); err == nil && !stats.LastSync.IsZero() {
		state := "stale"
		if stats.Fresh {
			state = "fresh"
		}
		line += fmt.Sprintf(" (cache %s, synced %s)", state, stats.LastSync.Format(time.RFC3339))
	}
	fmt.Println(line)
}
