package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/matsen/doppel/internal/bib"
	"github.com/matsen/doppel/internal/dedup"
	"github.com/matsen/doppel/internal/library"
	"github.com/matsen/doppel/internal/remote"
)

var (
	checkRemote  string
	checkProxy   string
	checkWorkers int
)

func init() {
	checkCmd.Flags().StringVar(&checkRemote, "remote", "", "Check against a remote library ([user@]host:path/library.jsonl)")
	checkCmd.Flags().StringVar(&checkProxy, "proxy", "", "SSH jump host for --remote (default $DOPPEL_PROXY)")
	checkCmd.Flags().IntVar(&checkWorkers, "workers", 0, "Comparison goroutines (default GOMAXPROCS)")
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Scan for duplicate entries",
	Long: `Scan for duplicate entries.

Without arguments the library is scanned against itself. With a file
argument (BibTeX or JSONL) the file's entries are scanned instead.
With --remote, the entries are checked against a collaborator's
library fetched over SSH; authentication comes from the SSH agent.

Examples:
  doppel check                         # library against itself
  doppel check refs.bib                # duplicates inside refs.bib
  doppel check --remote anna@lab:work/.doppel/library.jsonl`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

// CheckResult reports a duplicate scan.
type CheckResult struct {
	Mode          string        `json:"mode"`
	Entries       int           `json:"entries"`
	Remote        string        `json:"remote,omitempty"`
	RemoteEntries int           `json:"remote_entries,omitempty"`
	Pairs         []PairReport  `json:"pairs"`
	Groups        []GroupReport `json:"groups,omitempty"`
}

// PairReport is one duplicate pair.
type PairReport struct {
	A     EntrySummary `json:"a"`
	B     EntrySummary `json:"b"`
	Score float64      `json:"score"`
}

// GroupReport is one set of transitively connected duplicates.
type GroupReport struct {
	ID      string   `json:"id"`
	Entries []string `json:"entries"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	root := mustFindRepository()
	cfg := mustLoadConfig(root)
	mode := cfg.EngineMode()
	checker := newChecker(cfg)

	var entries []*bib.Entry
	var err error
	if len(args) == 1 {
		entries, err = readEntryFile(args[0])
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
	} else {
		lib := mustOpenLibrary(root, cfg)
		entries, err = lib.Entries()
		if err != nil {
			exitStoreError(err)
		}
	}

	opts := dedup.ScanOptions{Workers: checkWorkers}
	if humanOutput {
		progress := &rate.Sometimes{Interval: 2 * time.Second}
		progress.Do(func() {}) // swallow the immediate first run so short scans stay quiet
		opts.Progress = func(done, total int) {
			progress.Do(func() {
				fmt.Fprintf(os.Stderr, "compared %d of %d pairs\n", done, total)
			})
		}
	}

	result := CheckResult{Mode: mode.String(), Entries: len(entries)}
	var pairs []dedup.Pair
	if checkRemote != "" {
		// The repository .env can carry DOPPEL_PROXY.
		_ = godotenv.Load(filepath.Join(root, ".env"))
		proxy := checkProxy
		if proxy == "" {
			proxy = os.Getenv("DOPPEL_PROXY")
		}
		against, err := fetchRemoteEntries(checkRemote, proxy)
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		result.Remote = checkRemote
		result.RemoteEntries = len(against)
		pairs, err = checker.ScanAgainst(context.Background(), entries, against, mode, opts)
		if err != nil {
			exitWithError(ExitError, "scanning: %v", err)
		}
	} else {
		pairs, err = checker.ScanPairs(context.Background(), entries, mode, opts)
		if err != nil {
			exitWithError(ExitError, "scanning: %v", err)
		}
	}

	result.Pairs = make([]PairReport, 0, len(pairs))
	for _, p := range pairs {
		result.Pairs = append(result.Pairs, PairReport{A: summarize(p.A), B: summarize(p.B), Score: p.Score})
	}
	for _, g := range dedup.GroupPairs(pairs) {
		labels := make([]string, 0, len(g.Entries))
		for _, e := range g.Entries {
			labels = append(labels, entryLabel(e))
		}
		result.Groups = append(result.Groups, GroupReport{ID: g.ID, Entries: labels})
	}

	if humanOutput {
		printCheckHuman(result)
	} else {
		outputJSON(result)
	}
	return nil
}

// fetchRemoteEntries pulls a JSONL library over SSH and decodes it.
func fetchRemoteEntries(target, proxy string) ([]*bib.Entry, error) {
	t, err := remote.ParseTarget(target)
	if err != nil {
		return nil, err
	}
	client, err := remote.NewSSHClient(remote.Options{ProxyJump: proxy})
	if err != nil {
		return nil, err
	}
	defer client.Close()

	data, err := client.FetchFile(t)
	if err != nil {
		return nil, err
	}
	entries, err := library.DecodeEntries(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", t, err)
	}
	return entries, nil
}

func printCheckHuman(result CheckResult) {
	if len(result.Pairs) == 0 {
		fmt.Println("No duplicates found.")
		return
	}
	rows := make([][]string, 0, len(result.Pairs))
	for _, p := range result.Pairs {
		rows = append(rows, []string{p.A.label(), p.B.label(), formatScore(p.Score)})
	}
	fmt.Println(renderTable(
		[]string{"Entry", "Duplicate Of", "Score"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight},
	))
	fmt.Printf("%d duplicate pairs in %d groups\n", len(result.Pairs), len(result.Groups))
}
