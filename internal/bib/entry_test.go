package bib

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestSetFieldEmptyValueRemoves(t *testing.T) {
	e := NewEntry(TypeArticle)
	e.SetField(FieldTitle, "A title")

	if _, ok := e.Field(FieldTitle); !ok {
		t.Fatal("expected title to be set")
	}

	e.SetField(FieldTitle, "")
	if v, ok := e.Field(FieldTitle); ok {
		t.Errorf("expected title removed after setting empty, got %q", v)
	}
	if e.Len() != 0 {
		t.Errorf("Len() = %d, want 0", e.Len())
	}
}

func TestFieldNameCanonicalization(t *testing.T) {
	e := NewEntry(TypeArticle)
	e.SetField("Author", "Billy Bob")

	v, ok := e.Field(FieldAuthor)
	if !ok || v != "Billy Bob" {
		t.Errorf("Field(author) = %q, %v; want %q, true", v, ok, "Billy Bob")
	}

	// Mixed-case lookups resolve to the same field.
	if v, _ := e.Field("AUTHOR"); v != "Billy Bob" {
		t.Errorf("Field(AUTHOR) = %q, want %q", v, "Billy Bob")
	}
}

func TestParseEntryType(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  EntryType
	}{
		{"lowercase", "article", TypeArticle},
		{"mixed case", "InBook", TypeInBook},
		{"surrounding space", "  book ", TypeBook},
		{"empty defaults to misc", "", TypeMisc},
		{"unknown preserved", "dataset", EntryType("dataset")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseEntryType(tt.input); got != tt.want {
				t.Errorf("ParseEntryType(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestEntryTypeDefaultsToMisc(t *testing.T) {
	e := NewEntry("")
	if e.Type() != TypeMisc {
		t.Errorf("Type() = %q, want %q", e.Type(), TypeMisc)
	}
}

func TestFieldNamesSorted(t *testing.T) {
	e := NewEntry(TypeArticle).
		WithField(FieldYear, "2005").
		WithField(FieldAuthor, "Billy Bob").
		WithField(FieldTitle, "A title")

	want := []Field{FieldAuthor, FieldTitle, FieldYear}
	if got := e.FieldNames(); !reflect.DeepEqual(got, want) {
		t.Errorf("FieldNames() = %v, want %v", got, want)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	orig := NewEntry(TypeBook).WithKey("knuth1997").WithField(FieldTitle, "TAOCP")
	copy := orig.Clone()
	copy.SetField(FieldTitle, "Something else")
	copy.SetKey("other")

	if v, _ := orig.Field(FieldTitle); v != "TAOCP" {
		t.Errorf("original title mutated to %q", v)
	}
	if orig.Key() != "knuth1997" {
		t.Errorf("original key mutated to %q", orig.Key())
	}
}

func TestEntryJSONRoundTrip(t *testing.T) {
	e := NewEntry(TypeArticle).
		WithKey("bob2005").
		WithField(FieldAuthor, "Billy Bob").
		WithField(FieldTitle, "A title").
		WithField(FieldYear, "2005")

	data, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var back Entry
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if back.Key() != "bob2005" {
		t.Errorf("key = %q, want %q", back.Key(), "bob2005")
	}
	if back.Type() != TypeArticle {
		t.Errorf("type = %q, want %q", back.Type(), TypeArticle)
	}
	for _, f := range []Field{FieldAuthor, FieldTitle, FieldYear} {
		wantV, _ := e.Field(f)
		gotV, ok := back.Field(f)
		if !ok || gotV != wantV {
			t.Errorf("field %s = %q, %v; want %q, true", f, gotV, ok, wantV)
		}
	}
}

func TestEntryJSONDropsEmptyValues(t *testing.T) {
	var e Entry
	raw := `{"type":"misc","fields":{"title":"kept","note":""}}`
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := e.Field(FieldNote); ok {
		t.Error("empty note survived decoding")
	}
	if v, _ := e.Field(FieldTitle); v != "kept" {
		t.Errorf("title = %q, want %q", v, "kept")
	}
}

func TestParentAttachment(t *testing.T) {
	child := NewEntry(TypeInBook).WithField(FieldCrossref, "container")
	parent := NewEntry(TypeBook).WithKey("container").WithField(FieldTitle, "The container")

	if _, ok := child.Parent(); ok {
		t.Fatal("unattached entry reported a parent")
	}

	child.SetParent(parent)
	got, ok := child.Parent()
	if !ok {
		t.Fatal("expected parent after SetParent")
	}
	if v, _ := got.Field(FieldTitle); v != "The container" {
		t.Errorf("parent title = %q, want %q", v, "The container")
	}
}
