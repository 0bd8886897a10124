package form_test

import (
	"slices"
	"testing"

	"github.com/iaconlabs/multiform/form"
)

func TestFileMapOrdering(t *testing.T) {
	m := form.NewFileMap()
	m.Add("b", form.NewMemory("b", "b1.txt", "text/plain", []byte("b1")))
	m.Add("a", form.NewMemory("a", "a1.txt", "text/plain", []byte("a1")))
	m.Add("b", form.NewMemory("b", "b2.txt", "text/plain", []byte("b2")))

	if got := slices.Collect(m.Names()); !slices.Equal(got, []string{"b", "a"}) {
		t.Errorf("names must keep insertion order, got %v", got)
	}

	files := m.Get("b")
	if len(files) != 2 || files[0].Filename() != "b1.txt" || files[1].Filename() != "b2.txt" {
		t.Errorf("values must keep insertion order per key, got %v", files)
	}

	if m.Len() != 2 {
		t.Errorf("expected 2 distinct names, got %d", m.Len())
	}
}

func TestFileMapFirstAndSingleValueMap(t *testing.T) {
	m := form.NewFileMap()
	first := form.NewMemory("x", "first.bin", "application/octet-stream", []byte{0})
	m.Add("x", first)
	m.Add("x", form.NewMemory("x", "second.bin", "application/octet-stream", []byte{1}))

	if m.First("x") != form.File(first) {
		t.Error("First must return the earliest file for a key")
	}
	if m.First("zz") != nil {
		t.Error("First must return nil for unknown keys")
	}

	single := m.SingleValueMap()
	if len(single) != 1 || single["x"].Filename() != "first.bin" {
		t.Errorf("unexpected single-value map: %v", single)
	}
}

func TestFileMapGetIsDetached(t *testing.T) {
	m := form.NewFileMap()
	m.Add("k", form.NewMemory("k", "k.txt", "text/plain", []byte("k")))

	got := m.Get("k")
	got[0] = form.NewMemory("k", "evil.txt", "text/plain", nil)

	if m.First("k").Filename() != "k.txt" {
		t.Error("mutating a returned slice must not affect the map")
	}

	if absent := m.Get("nope"); absent == nil || len(absent) != 0 {
		t.Errorf("Get for unknown key must be empty non-nil, got %v", absent)
	}
}

func TestFileMapCloneIndependence(t *testing.T) {
	m := form.NewFileMap()
	m.Add("k", form.NewMemory("k", "k.txt", "text/plain", []byte("k")))

	c := m.Clone()
	m.Add("k", form.NewMemory("k", "k2.txt", "text/plain", []byte("k2")))
	m.Add("extra", form.NewMemory("extra", "e.txt", "text/plain", []byte("e")))

	if len(c.Get("k")) != 1 {
		t.Error("clone must not see later additions to existing keys")
	}
	if c.First("extra") != nil {
		t.Error("clone must not see later new keys")
	}
	if got := slices.Collect(c.Names()); !slices.Equal(got, []string{"k"}) {
		t.Errorf("clone names drifted: %v", got)
	}
}
