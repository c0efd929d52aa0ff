package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/doppel/internal/bib"
	"github.com/matsen/doppel/internal/config"
	"github.com/matsen/doppel/internal/pdfmeta"
)

var pdfOpen bool

func init() {
	pdfCmd.Flags().BoolVar(&pdfOpen, "open", false, "Open the PDF with the configured reader instead of probing it")
	rootCmd.AddCommand(pdfCmd)
}

var pdfCmd = &cobra.Command{
	Use:   "pdf <file.pdf>",
	Short: "Probe a PDF for a DOI and match it against the library",
	Long: `Probe a PDF for a DOI and match it against the library.

The first pages are searched for a DOI; library entries carrying it
are reported by citation key. When no DOI is found the first plausible
title line is reported as a hint and the exit code is 3. With --open
the file is handed to the reader configured as pdf_reader in the
global config.

Examples:
  doppel pdf paper.pdf
  doppel pdf paper.pdf --open`,
	Args: cobra.ExactArgs(1),
	RunE: runPDF,
}

// PDFResult reports a PDF probe.
type PDFResult struct {
	Path       string   `json:"path"`
	Status     string   `json:"status"` // present, absent, no-doi
	DOI        string   `json:"doi,omitempty"`
	TitleGuess string   `json:"title_guess,omitempty"`
	Matches    []string `json:"matches,omitempty"`
}

func runPDF(cmd *cobra.Command, args []string) error {
	path := args[0]

	if pdfOpen {
		if err := pdfmeta.Open(path, config.GetPDFReader()); err != nil {
			exitWithError(ExitError, "%v", err)
		}
		if humanOutput {
			fmt.Printf("Opened %s\n", path)
		} else {
			outputJSON(StatusResponse{Status: "opened", Path: path})
		}
		return nil
	}

	root := mustFindRepository()
	cfg := mustLoadConfig(root)
	lib := mustOpenLibrary(root, cfg)

	doi, err := pdfmeta.ExtractDOI(path)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	result := PDFResult{Path: path, DOI: doi}
	if doi == "" {
		result.Status = "no-doi"
		if title, err := pdfmeta.GuessTitle(path); err == nil {
			result.TitleGuess = title
		}
		if humanOutput {
			fmt.Printf("No DOI found in %s\n", path)
			if result.TitleGuess != "" {
				fmt.Printf("  Looks like: %s\n", result.TitleGuess)
			}
		} else {
			outputJSON(result)
		}
		os.Exit(ExitNotFound)
	}

	keys, err := lib.LookupIdentifier(bib.FieldDOI, doi)
	if err != nil {
		exitStoreError(err)
	}
	result.Matches = keys
	result.Status = "absent"
	if len(keys) > 0 {
		result.Status = "present"
	}

	if humanOutput {
		fmt.Printf("DOI: %s\n", doi)
		if len(keys) > 0 {
			fmt.Printf("Already in library: %s\n", strings.Join(keys, ", "))
		} else {
			fmt.Println("Not in library.")
		}
	} else {
		outputJSON(result)
	}
	return nil
}
