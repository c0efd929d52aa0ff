package library

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/matsen/doppel/internal/bib"
)

// maxLineBytes is the maximum buffer size for reading JSONL lines.
const maxLineBytes = 1024 * 1024

// readEntries reads every entry in a JSONL file. A missing file reads
// as an empty library.
func readEntries(path string) ([]*bib.Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	entries, err := DecodeEntries(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return entries, nil
}

// DecodeEntries reads entries from JSONL text, one per line. Blank
// lines are skipped. Fetched remote libraries decode through here too.
func DecodeEntries(r io.Reader) ([]*bib.Entry, error) {
	var entries []*bib.Entry
	scanner := bufio.NewScanner(r)
	buf := make([]byte, maxLineBytes)
	scanner.Buffer(buf, maxLineBytes)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		e := new(bib.Entry)
		if err := json.Unmarshal(line, e); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// appendEntries appends entries to a JSONL file, one per line.
func appendEntries(path string, entries []*bib.Entry) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s for append: %w", path, err)
	}
	defer f.Close()

	for _, e := range entries {
		data, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("encoding entry %q: %w", e.Key(), err)
		}
		if _, err := f.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("writing entry %q: %w", e.Key(), err)
		}
	}
	return nil
}

// writeEntries rewrites a JSONL file atomically via temp file + rename.
func writeEntries(path string, entries []*bib.Entry) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*.jsonl")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	for i, e := range entries {
		data, err := json.Marshal(e)
		if err != nil {
			tmp.Close()
			return fmt.Errorf("encoding entry %d: %w", i, err)
		}
		if _, err := tmp.Write(append(data, '\n')); err != nil {
			tmp.Close()
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}

	success = true
	return nil
}

// fileHash computes the SHA-256 of a file's contents. A missing file
// hashes as empty content, matching a freshly initialized library.
func fileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			h := sha256.Sum256(nil)
			return hex.EncodeToString(h[:]), nil
		}
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// wireParents attaches each entry's cross-referenced parent by citation
// key. Dangling crossref keys are left unattached; comparisons simply
// see no parent.
func wireParents(entries []*bib.Entry) {
	byKey := make(map[string]*bib.Entry, len(entries))
	for _, e := range entries {
		if k := e.Key(); k != "" {
			byKey[k] = e
		}
	}
	for _, e := range entries {
		ref, ok := e.Field(bib.FieldCrossref)
		if !ok {
			continue
		}
		if parent, ok := byKey[ref]; ok && parent != e {
			e.SetParent(parent)
		}
	}
}
