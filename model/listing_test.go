package model

import (
	"encoding/json"
	"testing"
)

func TestID_UnmarshalNumberAndString(t *testing.T) {
	var got struct {
		A ID `json:"a"`
		B ID `json:"b"`
		C ID `json:"c"`
	}
	if err := json.Unmarshal([]byte(`{"a":12,"b":"x-7","c":null}`), &got); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.A != "12" || got.B != "x-7" || got.C != "" {
		t.Fatalf("unexpected ids: %+v", got)
	}
}

func TestID_UnmarshalRejectsObject(t *testing.T) {
	var id ID
	if err := json.Unmarshal([]byte(`{"id":1}`), &id); err == nil {
		t.Fatalf("expected error for object id, got %q", id)
	}
}

func TestID_MarshalKeepsNumbersNumeric(t *testing.T) {
	cases := map[ID]string{
		"12":  `12`,
		"-3":  `-3`,
		"007": `"007"`,
		"abc": `"abc"`,
		"":    `""`,
	}
	for id, want := range cases {
		b, err := json.Marshal(id)
		if err != nil {
			t.Fatalf("marshal %q: %v", id, err)
		}
		if string(b) != want {
			t.Errorf("marshal %q: want %s got %s", id, want, b)
		}
	}
}

func TestListing_ViewedCopiesSlices(t *testing.T) {
	l := Listing{
		ID:            "5",
		Title:         "album A",
		Photos:        []string{"a.jpg", "b.jpg"},
		OwnMembers:    []Tag{{ID: 1, Name: "Karina"}},
		TargetMembers: []Tag{{ID: 2, Name: "Winter"}},
		Bartered:      true,
	}
	v := l.Viewed()
	if v.ID != "5" || v.Title != "album A" || !v.IsResolved {
		t.Fatalf("unexpected snapshot: %+v", v)
	}
	v.Images[0] = "changed"
	v.OwnTags[0].Name = "changed"
	if l.Photos[0] != "a.jpg" || l.OwnMembers[0].Name != "Karina" {
		t.Fatalf("snapshot shares memory with listing")
	}
}

func TestTagNames(t *testing.T) {
	if got := TagNames([]Tag{{Name: "a"}, {Name: "b"}}); got != "a, b" {
		t.Fatalf("want %q got %q", "a, b", got)
	}
	if got := TagNames(nil); got != "" {
		t.Fatalf("want empty got %q", got)
	}
}

func TestID_NumberAndStringFormsAreOneID(t *testing.T) {
	var a, b ID
	if err := json.Unmarshal([]byte(`1`), &a); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal([]byte(`"1"`), &b); err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Fatalf("expected 1 and \"1\" to be the same id, got %q and %q", a, b)
	}
}

func TestID_NonCanonicalNumberWrittenAsString(t *testing.T) {
	var id ID
	if err := json.Unmarshal([]byte(`1.0`), &id); err != nil {
		t.Fatal(err)
	}
	if id != "1.0" {
		t.Fatalf("id = %q", id)
	}
	b, err := json.Marshal(id)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `"1.0"` {
		t.Fatalf("marshal = %s, want \"1.0\"", b)
	}
}
