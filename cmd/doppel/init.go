package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/doppel/internal/config"
	"github.com/matsen/doppel/internal/library"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new doppel repository",
	Long: `Initialize a new doppel repository in the current directory.

Creates:
  .doppel/
  ├── library.jsonl   # Empty entry store
  ├── config.json     # Default config
  └── cache/          # Derived SQLite index (gitignored)`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	root, err := os.Getwd()
	if err != nil {
		exitWithError(ExitError, "getting current directory: %v", err)
	}

	if config.IsRepository(root) {
		exitWithError(ExitError, "directory already contains a doppel repository")
	}

	cfg := &config.Config{}
	lib := library.Open(config.StorePath(root, cfg))
	if err := lib.Init(); err != nil {
		exitWithError(ExitError, "%v", err)
	}
	if err := cfg.Save(root); err != nil {
		exitWithError(ExitError, "creating %s: %v", config.ConfigFile, err)
	}

	if humanOutput {
		fmt.Printf("Initialized doppel repository in %s\n", root)
	} else {
		outputJSON(StatusResponse{
			Status: "initialized",
			Path:   root,
		})
	}

	return nil
}
