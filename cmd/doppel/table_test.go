package main

import (
	"strings"
	"testing"
)

func TestRenderTable(t *testing.T) {
	out := renderTable(
		[]string{"Key", "Score"},
		[][]string{{"smith2020", "0.917"}, {"jones2019"}},
		[]columnAlignment{alignLeft, alignRight},
	)
	// StyleRounded renders header cells in upper case.
	for _, want := range []string{"KEY", "SCORE", "smith2020", "0.917", "jones2019"} {
		if !strings.Contains(out, want) {
			t.Errorf("renderTable() output missing %q:\n%s", want, out)
		}
	}
	// The short row is padded, not dropped.
	if lines := strings.Split(out, "\n"); len(lines) < 5 {
		t.Errorf("renderTable() rendered %d lines, want at least 5", len(lines))
	}
}

func TestRenderTableEmpty(t *testing.T) {
	if out := renderTable(nil, nil, nil); out != "" {
		t.Errorf("renderTable(nil) = %q, want empty", out)
	}
}
