// Package main provides the doppel CLI entry point.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/doppel/internal/bib"
	"github.com/matsen/doppel/internal/bibtex"
	"github.com/matsen/doppel/internal/config"
	"github.com/matsen/doppel/internal/dedup"
	"github.com/matsen/doppel/internal/library"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		// This ensures Cobra errors (like missing required flags) are visible
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "doppel",
	Short: "Duplicate detection for bibliographic libraries",
	Long: `doppel finds duplicate bibliographic entries.

Core features:
  - Pairwise duplicate scan over the entry library
  - Field-by-field comparison of BibTeX and BibLaTeX records
  - Import with duplicate classification and optional merging
  - DOI probe for PDFs against the library
  - Cross-library check over SSH

Entries are stored in git-versionable JSONL with an ephemeral SQLite
cache for keyed lookups. All commands output JSON by default.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.Version = Version
}

// mustFindRepository finds and validates the repository, exits on error.
// Returns the repository root path.
func mustFindRepository() string {
	cwd, err := os.Getwd()
	if err != nil {
		exitWithError(ExitError, "getting current directory: %v", err)
	}

	root, err := config.FindRepository(cwd)
	if err != nil {
		exitWithError(ExitNotRepository, "%v\n\nRun 'doppel init' to create one.", err)
	}
	return root
}

// mustLoadConfig loads the repository configuration, exits on error.
func mustLoadConfig(root string) *config.Config {
	cfg, err := config.Load(root)
	if err != nil {
		exitWithError(ExitError, "loading config: %v", err)
	}
	return cfg
}

// mustOpenLibrary opens the repository's entry store, exits when the
// store has not been initialized.
func mustOpenLibrary(root string, cfg *config.Config) *library.Library {
	lib := library.Open(config.StorePath(root, cfg))
	if !lib.Exists() {
		exitWithError(ExitNotRepository, "library not initialized in %s (run 'doppel init')", root)
	}
	return lib
}

// mustGetEntry loads one entry by citation key, exits when it is
// missing.
func mustGetEntry(lib *library.Library, key string) *bib.Entry {
	e, ok, err := lib.Get(key)
	if err != nil {
		exitStoreError(err)
	}
	if !ok {
		exitWithError(ExitNotFound, "entry %q not found", key)
	}
	return e
}

// newChecker builds the comparison engine from the repository tunables.
func newChecker(cfg *config.Config) *dedup.Checker {
	return dedup.New(dedup.Config{
		Threshold:       cfg.Threshold,
		DoubtMargin:     cfg.DoubtMargin,
		SimilarityFloor: cfg.SimilarityFloor,
	})
}

// readEntryFile loads entries from a BibTeX (.bib) or JSONL file.
func readEntryFile(path string) ([]*bib.Entry, error) {
	if strings.EqualFold(filepath.Ext(path), ".bib") {
		return bibtex.ParseFile(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	entries, err := library.DecodeEntries(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return entries, nil
}
