// Package pdfmeta pulls bibliographic hints out of PDF files.
package pdfmeta

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// doiPattern matches DOIs as printed in article headers: 10.NNNN/suffix.
var doiPattern = regexp.MustCompile(`10\.\d{4,9}/[^\s<>"{}|\\^~\[\]` + "`" + `]+`)

// doiPages is how many pages ExtractDOI scans. Journals print the DOI
// on the first page; three allows for cover sheets.
const doiPages = 3

// ExtractDOI returns the first DOI printed in the opening pages of a
// PDF. A PDF without a DOI returns "" and no error.
func ExtractDOI(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	last := doiPages
	if r.NumPage() < last {
		last = r.NumPage()
	}

	for i := 1; i <= last; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		if doi := findDOI(text); doi != "" {
			return doi, nil
		}
	}

	return "", nil
}

// GuessTitle returns the first substantial line of the first page.
// Purely a heuristic for labeling PDFs that carry no DOI.
func GuessTitle(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	if r.NumPage() < 1 {
		return "", nil
	}
	page := r.Page(1)
	if page.V.IsNull() {
		return "", nil
	}

	text, err := page.GetPlainText(nil)
	if err != nil {
		return "", nil
	}
	return titleFromText(text), nil
}

// findDOI returns the first plausible DOI in free text.
func findDOI(text string) string {
	for _, match := range doiPattern.FindAllString(text, -1) {
		// Trailing punctuation belongs to the sentence, not the DOI
		match = strings.TrimRight(match, ".,;:)")
		if validDOI(match) {
			return match
		}
	}
	return ""
}

// validDOI rejects matches too short or truncated to identify anything.
func validDOI(doi string) bool {
	if len(doi) < 10 {
		return false
	}
	if !strings.HasPrefix(doi, "10.") {
		return false
	}
	slash := strings.Index(doi, "/")
	return slash != -1 && slash < len(doi)-1
}

// titleFromText picks the first line long enough to be a title and not
// obviously a running header.
func titleFromText(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) > 20 && !headerLine(line) {
			return line
		}
	}
	return ""
}

// headerLine checks if a line is likely a journal header or footer.
func headerLine(line string) bool {
	if doiPattern.MatchString(line) {
		return true
	}
	lower := strings.ToLower(line)
	if strings.Contains(lower, "journal") {
		return true
	}
	if strings.Contains(lower, "volume") && strings.Contains(lower, "issue") {
		return true
	}
	if strings.Contains(lower, "copyright") {
		return true
	}
	if strings.Contains(lower, "article") && strings.Contains(lower, "published") {
		return true
	}
	return false
}
