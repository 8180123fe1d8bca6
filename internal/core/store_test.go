package core

import (
	"testing"

	"dcaengine/internal/domain"
)

func TestOrderStoreInsertGet(t *testing.T) {
	s := NewOrderStore()
	s.Insert(&domain.Order{ID: "a", Owner: "alice"})

	o, ok := s.Get("a")
	if !ok || o.Owner != "alice" {
		t.Fatalf("Get(a) = %v, %v", o, ok)
	}
	if s.Count() != 1 {
		t.Fatalf("Count = %d, want 1", s.Count())
	}
	if !s.Contains("a") {
		t.Fatal("Contains(a) = false")
	}
}

func TestOrderStoreDuplicateInsertIgnored(t *testing.T) {
	s := NewOrderStore()
	s.Insert(&domain.Order{ID: "a", Owner: "alice"})
	s.Insert(&domain.Order{ID: "a", Owner: "mallory"})

	if s.Count() != 1 {
		t.Fatalf("Count = %d, want 1", s.Count())
	}
	if len(s.IDs()) != 1 {
		t.Fatalf("index has %d entries, want 1", len(s.IDs()))
	}
	o, _ := s.Get("a")
	if o.Owner != "alice" {
		t.Fatalf("duplicate insert overwrote order: owner %s", o.Owner)
	}
}

func TestOrderStoreRemove(t *testing.T) {
	s := NewOrderStore()
	for _, id := range []string{"a", "b", "c"} {
		s.Insert(&domain.Order{ID: id})
	}

	if !s.Remove("a") {
		t.Fatal("Remove(a) = false")
	}
	if s.Contains("a") {
		t.Fatal("removed id still present")
	}
	if _, ok := s.Get("a"); ok {
		t.Fatal("Get on removed id succeeded")
	}
	if s.Remove("a") {
		t.Fatal("second Remove(a) = true")
	}
	if s.Count() != 2 {
		t.Fatalf("Count = %d, want 2", s.Count())
	}
}

// The map and the positional index must stay a bijection through any
// sequence of inserts and swap-removes.
func TestOrderStoreBijection(t *testing.T) {
	s := NewOrderStore()
	ids := []string{"a", "b", "c", "d", "e"}
	for _, id := range ids {
		s.Insert(&domain.Order{ID: id})
	}
	for _, id := range []string{"c", "a", "e"} {
		s.Remove(id)
	}

	index := s.IDs()
	if len(index) != s.Count() {
		t.Fatalf("index len %d != map count %d", len(index), s.Count())
	}
	seen := make(map[string]bool)
	for _, id := range index {
		if seen[id] {
			t.Fatalf("id %s appears twice in index", id)
		}
		seen[id] = true
		if !s.Contains(id) {
			t.Fatalf("index id %s missing from map", id)
		}
	}
	for _, id := range []string{"b", "d"} {
		if !seen[id] {
			t.Fatalf("active id %s missing from index", id)
		}
	}
}

func TestOrderStoreIDsReturnsCopy(t *testing.T) {
	s := NewOrderStore()
	s.Insert(&domain.Order{ID: "a"})
	s.Insert(&domain.Order{ID: "b"})

	index := s.IDs()
	index[0] = "mutated"
	if !s.Contains("a") || !s.Contains("b") {
		t.Fatal("mutating the returned index affected the store")
	}
}
