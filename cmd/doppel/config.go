package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matsen/doppel/internal/config"
)

var configGlobal bool

func init() {
	configCmd.Flags().BoolVar(&configGlobal, "global", false, "Operate on ~/.config/doppel/config.yml instead of the repository")
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Get or set configuration values",
	Long: `Get or set configuration values.

Usage:
  doppel config                       # Show all repository config
  doppel config threshold             # Get one value
  doppel config threshold 0.8         # Set a value
  doppel config --global editor vim   # Set a global preference

Repository keys:
  mode               Entry dialect (bibtex, biblatex)
  threshold          Agreement ratio at which a pair counts as duplicates
  doubt_margin       Band around the threshold where optional fields decide
  similarity_floor   Word correlation a fuzzy field needs to count as equal
  keyword_delimiter  Separator of the keywords field
  store_dir          Entry store location, absolute or relative to the root

Global keys:
  editor        Editor command
  pdf_reader    PDF reader (system, skim, preview, zathura, evince, okular)
  default_mode  Dialect for repositories that do not set one`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	if configGlobal {
		return runConfigGlobal(args)
	}

	root := mustFindRepository()
	cfg := mustLoadConfig(root)

	// No args: show all config
	if len(args) == 0 {
		if humanOutput {
			for _, key := range config.Keys() {
				value, _ := cfg.Get(key)
				fmt.Printf("%-18s %s\n", key, value)
			}
		} else {
			outputJSON(cfg)
		}
		return nil
	}

	key := args[0]

	// One arg: get specific value
	if len(args) == 1 {
		value, err := cfg.Get(key)
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		if humanOutput {
			fmt.Println(value)
		} else {
			outputJSON(map[string]string{key: value})
		}
		return nil
	}

	// Two args: set value
	value := args[1]
	if err := cfg.Set(key, value); err != nil {
		exitWithError(ExitError, "%v", err)
	}
	if err := cfg.Save(root); err != nil {
		exitWithError(ExitError, "saving config: %v", err)
	}

	if humanOutput {
		fmt.Printf("Updated %s to %s\n", key, value)
	} else {
		outputJSON(UpdateResponse{Status: "updated", Key: key, Value: value})
	}
	return nil
}

// runConfigGlobal is runConfig against ~/.config/doppel/config.yml.
// Global preferences work outside any repository.
func runConfigGlobal(args []string) error {
	g, err := config.LoadGlobalConfig()
	if err != nil {
		exitWithError(ExitError, "loading global config: %v", err)
	}

	if len(args) == 0 {
		if humanOutput {
			for _, key := range config.GlobalKeys() {
				value, _ := g.Get(key)
				fmt.Printf("%-13s %s\n", key, value)
			}
		} else {
			outputJSON(g)
		}
		return nil
	}

	key := args[0]
	if len(args) == 1 {
		value, err := g.Get(key)
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		if humanOutput {
			fmt.Println(value)
		} else {
			outputJSON(map[string]string{key: value})
		}
		return nil
	}

	value := args[1]
	if err := g.Set(key, value); err != nil {
		exitWithError(ExitError, "%v", err)
	}
	if err := config.SaveGlobalConfig(g); err != nil {
		exitWithError(ExitError, "saving global config: %v", err)
	}

	if humanOutput {
		fmt.Printf("Updated %s to %s\n", key, value)
	} else {
		outputJSON(UpdateResponse{Status: "updated", Key: key, Value: value})
	}
	return nil
}
