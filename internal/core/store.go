package core

import "dcaengine/internal/domain"

// OrderStore is the registry of active orders: a map keyed by id plus a
// positional index of active ids. Insert is O(1); Remove swap-removes the id
// in O(1), so the index order is unspecified and callers must not depend on
// it. The store is not locked internally; the engine serializes access.
type OrderStore struct {
	orders map[string]*domain.Order
	ids    []string
	pos    map[string]int
}

func NewOrderStore() *OrderStore {
	return &OrderStore{
		orders: make(map[string]*domain.Order),
		pos:    make(map[string]int),
	}
}

// Insert adds the order under its id. Inserting an id that is already
// present is a programming error and is ignored to keep the map and index
// consistent.
func (s *OrderStore) Insert(o *domain.Order) {
	if _, ok := s.orders[o.ID]; ok {
		return
	}
	s.orders[o.ID] = o
	s.pos[o.ID] = len(s.ids)
	s.ids = append(s.ids, o.ID)
}

func (s *OrderStore) Get(id string) (*domain.Order, bool) {
	o, ok := s.orders[id]
	return o, ok
}

// Remove deletes the order from both the map and the index, keeping the
// bijection between them. Returns false if the id is not active.
func (s *OrderStore) Remove(id string) bool {
	i, ok := s.pos[id]
	if !ok {
		return false
	}
	last := len(s.ids) - 1
	moved := s.ids[last]
	s.ids[i] = moved
	s.pos[moved] = i
	s.ids = s.ids[:last]
	delete(s.pos, id)
	delete(s.orders, id)
	return true
}

func (s *OrderStore) Contains(id string) bool {
	_, ok := s.orders[id]
	return ok
}

func (s *OrderStore) Count() int {
	return len(s.orders)
}

// IDs returns a copy of the active id index.
func (s *OrderStore) IDs() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}
