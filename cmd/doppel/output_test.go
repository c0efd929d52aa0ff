package main

import (
	"testing"

	"github.com/matsen/doppel/internal/bib"
)

func TestTruncateString(t *testing.T) {
	tests := []struct {
		s      string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"this is a longer string", 10, "this is..."},
		{"", 5, ""},
	}
	for _, tt := range tests {
		if got := truncateString(tt.s, tt.maxLen); got != tt.want {
			t.Errorf("truncateString(%q, %d) = %q, want %q", tt.s, tt.maxLen, got, tt.want)
		}
	}
}

func TestSummarize(t *testing.T) {
	e := testEntry("smith2020", "Ada Smith", "On Things")
	s := summarize(e)
	if s.Key != "smith2020" || s.Type != "article" || s.Title != "On Things" {
		t.Errorf("summarize() = %+v", s)
	}
}

func TestEntrySummaryLabel(t *testing.T) {
	tests := []struct {
		name string
		s    EntrySummary
		want string
	}{
		{"key wins", EntrySummary{Key: "smith2020", Title: "On Things"}, "smith2020"},
		{"title fallback", EntrySummary{Title: "On Things"}, "On Things"},
		{"nothing", EntrySummary{Type: "misc"}, "(no key)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.s.label(); got != tt.want {
				t.Errorf("label() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEntryLabelTruncatesTitle(t *testing.T) {
	e := bib.NewEntry(bib.TypeMisc).
		WithField(bib.FieldTitle, "A title so long that no table column could possibly hold the whole thing")
	got := entryLabel(e)
	if len(got) != LabelTitleMaxLen {
		t.Errorf("entryLabel() length = %d, want %d", len(got), LabelTitleMaxLen)
	}
}

func TestFormatScore(t *testing.T) {
	if got := formatScore(0.75); got != "0.750" {
		t.Errorf("formatScore(0.75) = %q, want 0.750", got)
	}
	if got := formatScore(1.01); got != "1.010" {
		t.Errorf("formatScore(1.01) = %q, want 1.010", got)
	}
}
