package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/matsen/doppel/internal/bib"
	"github.com/matsen/doppel/internal/library"
)

// Title truncation lengths by context
const (
	ListTitleMaxLen   = 50 // list table rows
	LabelTitleMaxLen  = 40 // key substitutes for keyless entries
	ImportTitleMaxLen = 60 // import detail rows
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// exitStoreError reports a store failure, distinguishing an unusable
// cache from other errors by exit code.
func exitStoreError(err error) {
	if errors.Is(err, library.ErrStale) {
		exitWithError(ExitStale, "%v", err)
	}
	exitWithError(ExitError, "%v", err)
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse is a generic response for commands that return status.
type StatusResponse struct {
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
}

// UpdateResponse is the response for config set commands.
type UpdateResponse struct {
	Status string `json:"status"`
	Key    string `json:"key"`
	Value  string `json:"value"`
}

// EntrySummary identifies an entry in reports.
type EntrySummary struct {
	Key   string `json:"key,omitempty"`
	Type  string `json:"type"`
	Title string `json:"title,omitempty"`
}

// summarize reduces an entry to the fields reports carry.
func summarize(e *bib.Entry) EntrySummary {
	title, _ := e.Field(bib.FieldTitle)
	return EntrySummary{Key: e.Key(), Type: string(e.Type()), Title: title}
}

// label names an entry in tables and group listings: the citation key
// when present, otherwise a truncated title.
func (s EntrySummary) label() string {
	if s.Key != "" {
		return s.Key
	}
	if s.Title != "" {
		return truncateString(s.Title, LabelTitleMaxLen)
	}
	return "(no key)"
}

// entryLabel is label() straight from an entry.
func entryLabel(e *bib.Entry) string {
	return summarize(e).label()
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// formatScore renders an agreement ratio for table cells.
func formatScore(v float64) string {
	return fmt.Sprintf("%.3f", v)
}
