package library

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/matsen/doppel/internal/bib"
)

// ErrStale reports that the SQLite cache does not match the JSONL
// source and could not be brought up to date.
var ErrStale = errors.New("library cache is stale")

// identFields are indexed for the import-time identifier lookup. The
// isbn is not among them: a container's isbn is shared by every chapter
// it holds and identifies nothing.
var identFields = []bib.Field{bib.FieldDOI, bib.FieldPMID, bib.FieldEprint}

// IdentFields returns the fields covered by the identifier index.
func IdentFields() []bib.Field {
	out := make([]bib.Field, len(identFields))
	copy(out, identFields)
	return out
}

func openDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite doesn't support concurrent writes
	db.SetMaxOpenConns(1)

	return db, nil
}

var schemaDDL = []string{
	`CREATE TABLE IF NOT EXISTS entries (
  key TEXT NOT NULL,
  type TEXT NOT NULL,
  fields TEXT NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_entries_key ON entries(key)`,
	`CREATE TABLE IF NOT EXISTS idents (
  field TEXT NOT NULL,
  value TEXT NOT NULL,
  key TEXT NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_idents_field_value ON idents(field, value)`,
	`CREATE TABLE IF NOT EXISTS _meta (
  key TEXT PRIMARY KEY,
  value TEXT
)`,
}

func createSchema(db *sql.DB) error {
	for _, ddl := range schemaDDL {
		if _, err := db.Exec(ddl); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	return nil
}

// rebuild replaces the cache contents with the given entries and
// records the JSONL hash they came from.
func rebuild(db *sql.DB, entries []*bib.Entry, hash string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning rebuild: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM entries"); err != nil {
		return fmt.Errorf("clearing entries: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM idents"); err != nil {
		return fmt.Errorf("clearing idents: %w", err)
	}

	for i, e := range entries {
		fields := make(map[string]string, e.Len())
		for _, f := range e.FieldNames() {
			v, _ := e.Field(f)
			fields[string(f)] = v
		}
		data, err := json.Marshal(fields)
		if err != nil {
			return fmt.Errorf("encoding entry %d: %w", i+1, err)
		}
		if _, err := tx.Exec(
			"INSERT INTO entries (key, type, fields) VALUES (?, ?, ?)",
			e.Key(), string(e.Type()), string(data),
		); err != nil {
			return fmt.Errorf("inserting entry %d: %w", i+1, err)
		}
		for _, f := range identFields {
			v, ok := e.Field(f)
			if !ok {
				continue
			}
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			if _, err := tx.Exec(
				"INSERT INTO idents (field, value, key) VALUES (?, ?, ?)",
				string(f), v, e.Key(),
			); err != nil {
				return fmt.Errorf("indexing %s of entry %d: %w", f, i+1, err)
			}
		}
	}

	if _, err := tx.Exec(
		"INSERT OR REPLACE INTO _meta (key, value) VALUES ('jsonl_hash', ?)", hash,
	); err != nil {
		return fmt.Errorf("recording hash: %w", err)
	}
	if _, err := tx.Exec(
		"INSERT OR REPLACE INTO _meta (key, value) VALUES ('last_sync', ?)",
		time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("recording sync time: %w", err)
	}

	return tx.Commit()
}

// storedHash retrieves the JSONL hash recorded at the last rebuild.
func storedHash(db *sql.DB) (string, error) {
	var hash sql.NullString
	err := db.QueryRow("SELECT value FROM _meta WHERE key = 'jsonl_hash'").Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return hash.String, nil
}

// lastSyncTime retrieves the time of the last rebuild.
func lastSyncTime(db *sql.DB) (time.Time, error) {
	var s sql.NullString
	err := db.QueryRow("SELECT value FROM _meta WHERE key = 'last_sync'").Scan(&s)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !s.Valid) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, s.String)
}

// getEntry returns the cached entry stored under the given key.
func getEntry(db *sql.DB, key string) (*bib.Entry, bool, error) {
	var typ, fieldsJSON string
	err := db.QueryRow(
		"SELECT type, fields FROM entries WHERE key = ? LIMIT 1", key,
	).Scan(&typ, &fieldsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var fields map[string]string
	if err := json.Unmarshal([]byte(fieldsJSON), &fields); err != nil {
		return nil, false, fmt.Errorf("decoding entry %q: %w", key, err)
	}
	e := bib.NewEntry(bib.ParseEntryType(typ)).WithKey(key)
	for f, v := range fields {
		e.SetField(bib.Field(f), v)
	}
	return e, true, nil
}

// lookupIdent returns the keys of entries carrying the identifier
// value, compared trimmed.
func lookupIdent(db *sql.DB, field bib.Field, value string) ([]string, error) {
	rows, err := db.Query(
		"SELECT key FROM idents WHERE field = ? AND value = ?",
		string(field), strings.TrimSpace(value),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}
