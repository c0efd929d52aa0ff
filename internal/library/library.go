// Package library stores a repository's bibliographic entries. The
// JSONL file is the source of truth, one entry per line, suited to
// version control; a derived SQLite cache serves keyed access and the
// trimmed-identifier index. The cache records the SHA-256 of the JSONL
// it was built from, so any reader can detect staleness and rebuild.
package library

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/matsen/doppel/internal/bib"
)

const (
	jsonlName = "library.jsonl"
	dbName    = "library.db"
	lockName  = "library.lock"
	cacheDir  = "cache"
)

// Library is a handle on one repository's entry store. Writers hold a
// file lock for the whole read-modify-write, so concurrent imports
// cannot interleave.
type Library struct {
	dir   string
	jsonl string
	db    string
	lock  *flock.Flock
}

// Open returns a handle on the library under the given .doppel
// directory. It does not touch the filesystem; Init creates the store.
func Open(dir string) *Library {
	return &Library{
		dir:   dir,
		jsonl: filepath.Join(dir, jsonlName),
		db:    filepath.Join(dir, cacheDir, dbName),
		lock:  flock.New(filepath.Join(dir, lockName)),
	}
}

// JSONLPath returns the path of the source-of-truth JSONL file.
func (l *Library) JSONLPath() string { return l.jsonl }

// DBPath returns the path of the derived SQLite cache.
func (l *Library) DBPath() string { return l.db }

// Exists reports whether the library has been initialized.
func (l *Library) Exists() bool {
	_, err := os.Stat(l.jsonl)
	return err == nil
}

// Init creates the store: an empty JSONL file (existing entries are
// kept), a .gitignore covering the derived cache, and the cache
// database itself.
func (l *Library) Init() error {
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return fmt.Errorf("creating store directory: %w", err)
	}
	f, err := os.OpenFile(l.jsonl, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("creating %s: %w", jsonlName, err)
	}
	f.Close()

	ignore := filepath.Join(l.dir, ".gitignore")
	if _, err := os.Stat(ignore); os.IsNotExist(err) {
		if err := os.WriteFile(ignore, []byte(cacheDir+"/\n"+lockName+"\n"), 0o644); err != nil {
			return fmt.Errorf("creating .gitignore: %w", err)
		}
	}

	return l.withLock(func() error {
		_, err := l.sync()
		return err
	})
}

// Entries reads every entry from the JSONL source, with crossref
// parents attached.
func (l *Library) Entries() ([]*bib.Entry, error) {
	entries, err := readEntries(l.jsonl)
	if err != nil {
		return nil, err
	}
	wireParents(entries)
	return entries, nil
}

// Count returns the number of stored entries.
func (l *Library) Count() (int, error) {
	entries, err := readEntries(l.jsonl)
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}

// Append adds entries to the library and refreshes the cache. A
// non-empty key that is already taken is rejected before anything is
// written.
func (l *Library) Append(entries ...*bib.Entry) error {
	return l.withLock(func() error {
		existing, err := readEntries(l.jsonl)
		if err != nil {
			return err
		}
		taken := make(map[string]bool, len(existing))
		for _, e := range existing {
			if k := e.Key(); k != "" {
				taken[k] = true
			}
		}
		for _, e := range entries {
			k := e.Key()
			if k == "" {
				continue
			}
			if taken[k] {
				return fmt.Errorf("key %q already exists", k)
			}
			taken[k] = true
		}
		if err := appendEntries(l.jsonl, entries); err != nil {
			return err
		}
		_, err = l.sync()
		return err
	})
}

// Replace substitutes the entry stored under key, rewriting the JSONL
// atomically and refreshing the cache.
func (l *Library) Replace(key string, e *bib.Entry) error {
	if key == "" {
		return fmt.Errorf("replace needs a non-empty key")
	}
	return l.withLock(func() error {
		entries, err := readEntries(l.jsonl)
		if err != nil {
			return err
		}
		found := false
		for i, cur := range entries {
			if cur.Key() == key {
				entries[i] = e
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("entry %q not found", key)
		}
		if err := writeEntries(l.jsonl, entries); err != nil {
			return err
		}
		_, err = l.sync()
		return err
	})
}

// Remove deletes the entry stored under key, rewriting the JSONL
// atomically and refreshing the cache.
func (l *Library) Remove(key string) error {
	if key == "" {
		return fmt.Errorf("remove needs a non-empty key")
	}
	return l.withLock(func() error {
		entries, err := readEntries(l.jsonl)
		if err != nil {
			return err
		}
		idx := -1
		for i, cur := range entries {
			if cur.Key() == key {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("entry %q not found", key)
		}
		entries = append(entries[:idx], entries[idx+1:]...)
		if err := writeEntries(l.jsonl, entries); err != nil {
			return err
		}
		_, err = l.sync()
		return err
	})
}

// Get returns the entry stored under the given key. The cache answers
// the lookup; it is refreshed first if the JSONL moved underneath it.
func (l *Library) Get(key string) (*bib.Entry, bool, error) {
	if err := l.EnsureFresh(); err != nil {
		return nil, false, err
	}
	db, err := l.openCache()
	if err != nil {
		return nil, false, err
	}
	defer db.Close()
	return getEntry(db, key)
}

// LookupIdentifier returns the keys of entries whose field carries the
// given identifier value, compared trimmed.
func (l *Library) LookupIdentifier(f bib.Field, value string) ([]string, error) {
	if err := l.EnsureFresh(); err != nil {
		return nil, err
	}
	db, err := l.openCache()
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return lookupIdent(db, f, value)
}

// NeedsSync reports whether the cache hash differs from the JSONL.
func (l *Library) NeedsSync() (bool, error) {
	current, err := fileHash(l.jsonl)
	if err != nil {
		return true, err
	}
	db, err := l.openCache()
	if err != nil {
		return true, err
	}
	defer db.Close()
	stored, err := storedHash(db)
	if err != nil {
		return true, err
	}
	return current != stored, nil
}

// Sync rebuilds the cache from the JSONL source and returns the number
// of entries indexed.
func (l *Library) Sync() (int, error) {
	var n int
	err := l.withLock(func() error {
		var err error
		n, err = l.sync()
		return err
	})
	return n, err
}

// EnsureFresh rebuilds the cache when it is stale. Failures wrap
// ErrStale so callers can tell an unusable cache from other store
// errors.
func (l *Library) EnsureFresh() error {
	stale, err := l.NeedsSync()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStale, err)
	}
	if !stale {
		return nil
	}
	if _, err := l.Sync(); err != nil {
		return fmt.Errorf("%w: %v", ErrStale, err)
	}
	return nil
}

// Stats describes the store for status output.
type Stats struct {
	Entries  int       `json:"entries"`
	Fresh    bool      `json:"fresh"`
	LastSync time.Time `json:"last_sync,omitempty"`
}

// Stats reports the entry count and cache state.
func (l *Library) Stats() (*Stats, error) {
	count, err := l.Count()
	if err != nil {
		return nil, err
	}
	stats := &Stats{Entries: count}

	stale, err := l.NeedsSync()
	if err == nil {
		stats.Fresh = !stale
	}
	db, err := l.openCache()
	if err == nil {
		defer db.Close()
		if t, err := lastSyncTime(db); err == nil {
			stats.LastSync = t
		}
	}
	return stats, nil
}

// sync rebuilds the cache. Callers hold the lock.
func (l *Library) sync() (int, error) {
	entries, err := readEntries(l.jsonl)
	if err != nil {
		return 0, err
	}
	hash, err := fileHash(l.jsonl)
	if err != nil {
		return 0, err
	}
	db, err := l.openCache()
	if err != nil {
		return 0, err
	}
	defer db.Close()
	if err := rebuild(db, entries, hash); err != nil {
		return 0, err
	}
	return len(entries), nil
}

// openCache opens the SQLite cache, materializing the cache directory
// and schema as needed. The cache is derived data; creating it on
// first touch is always safe.
func (l *Library) openCache() (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(l.db), 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	db, err := openDB(l.db)
	if err != nil {
		return nil, err
	}
	if err := createSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func (l *Library) withLock(fn func() error) error {
	if err := l.lock.Lock(); err != nil {
		return fmt.Errorf("locking library: %w", err)
	}
	defer l.lock.Unlock()
	return fn()
}
