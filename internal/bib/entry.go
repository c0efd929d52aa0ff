package bib

import (
	"encoding/json"
	"sort"
	"strings"
)

// Entry is a bibliographic record: a citation key, a declared type, and
// a set of named text fields. Field names and the type are stored in
// canonical lowercase form. Setting a field to the empty string removes
// it, so an absent field and an empty one are indistinguishable, which
// is what the comparison engine requires.
type Entry struct {
	key    string
	typ    EntryType
	fields map[Field]string
	parent *Entry
}

// NewEntry creates an entry of the given type. An empty type name
// becomes DefaultType.
func NewEntry(typ EntryType) *Entry {
	return &Entry{
		typ:    ParseEntryType(string(typ)),
		fields: make(map[Field]string),
	}
}

// Key returns the citation key, which may be empty.
func (e *Entry) Key() string {
	return e.key
}

// SetKey sets the citation key.
func (e *Entry) SetKey(key string) {
	e.key = strings.TrimSpace(key)
}

// Type returns the declared entry type.
func (e *Entry) Type() EntryType {
	if e.typ == "" {
		return DefaultType
	}
	return e.typ
}

// SetType changes the declared entry type.
func (e *Entry) SetType(typ EntryType) {
	e.typ = ParseEntryType(string(typ))
}

// Field returns the raw value of a field and whether it is set.
func (e *Entry) Field(f Field) (string, bool) {
	v, ok := e.fields[NormalizeField(string(f))]
	return v, ok
}

// SetField sets a field value. An empty value removes the field.
func (e *Entry) SetField(f Field, value string) {
	name := NormalizeField(string(f))
	if name == "" {
		return
	}
	if value == "" {
		delete(e.fields, name)
		return
	}
	e.fields[name] = value
}

// WithKey sets the citation key and returns the entry for chaining.
func (e *Entry) WithKey(key string) *Entry {
	e.SetKey(key)
	return e
}

// WithField sets a field and returns the entry for chaining.
func (e *Entry) WithField(f Field, value string) *Entry {
	e.SetField(f, value)
	return e
}

// FieldNames returns the names of all set fields in sorted order.
func (e *Entry) FieldNames() []Field {
	names := make([]Field, 0, len(e.fields))
	for f := range e.fields {
		names = append(names, f)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// Len returns the number of set fields.
func (e *Entry) Len() int {
	return len(e.fields)
}

// Parent returns the cross-referenced entry, if attached.
func (e *Entry) Parent() (Record, bool) {
	if e.parent == nil {
		return nil, false
	}
	return e.parent, true
}

// SetParent attaches the entry this one cross-references. The library
// wires parents after load by resolving crossref keys; comparisons only
// read through the attachment.
func (e *Entry) SetParent(parent *Entry) {
	e.parent = parent
}

// Clone returns a deep copy of the entry. The parent attachment is
// carried over as a pointer, not copied.
func (e *Entry) Clone() *Entry {
	c := NewEntry(e.typ)
	c.key = e.key
	c.parent = e.parent
	for f, v := range e.fields {
		c.fields[f] = v
	}
	return c
}

// entryJSON is the JSONL wire form of an entry.
type entryJSON struct {
	Key    string            `json:"key,omitempty"`
	Type   string            `json:"type"`
	Fields map[string]string `json:"fields"`
}

// MarshalJSON encodes the entry as {key, type, fields}.
func (e *Entry) MarshalJSON() ([]byte, error) {
	out := entryJSON{
		Key:    e.key,
		Type:   string(e.Type()),
		Fields: make(map[string]string, len(e.fields)),
	}
	for f, v := range e.fields {
		out.Fields[string(f)] = v
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes an entry, applying the same canonicalization as
// SetField, so empty values and blank names do not survive a round trip.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var in entryJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	e.key = strings.TrimSpace(in.Key)
	e.typ = ParseEntryType(in.Type)
	e.fields = make(map[Field]string, len(in.Fields))
	for name, value := range in.Fields {
		e.SetField(Field(name), value)
	}
	return nil
}
