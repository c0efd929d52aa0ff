package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matsen/doppel/internal/dedup"
)

func init() {
	rootCmd.AddCommand(correlateCmd)
}

var correlateCmd = &cobra.Command{
	Use:   "correlate <text-a> <text-b>",
	Short: "Word-overlap correlation between two strings",
	Long: `Word-overlap correlation between two strings.

The score is the word-token correlation the duplicate checker uses for
titles and journal names: shared words over all words, in [0, 1].
Case and punctuation do not matter. Works outside a repository.

Examples:
  doppel correlate "The Selfish Gene" "Selfish Gene, The"`,
	Args: cobra.ExactArgs(2),
	RunE: runCorrelate,
}

// CorrelateResult reports one correlation.
type CorrelateResult struct {
	Correlation float64 `json:"correlation"`
}

func runCorrelate(cmd *cobra.Command, args []string) error {
	score := dedup.CorrelateWords(args[0], args[1])
	if humanOutput {
		fmt.Printf("%.4f\n", score)
	} else {
		outputJSON(CorrelateResult{Correlation: score})
	}
	return nil
}
