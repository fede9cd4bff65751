package ecs

// Removable is implemented by every store so the Registry can drop an
// entity's data from all of them on destroy.
type Removable interface {
	Remove(id EntityID)
	Compact()
}

// Store is an insertion-ordered generic store. Remove leaves a tombstone in
// the entity's slot so index-based passes over a fixed slot range stay
// stable; Compact drops tombstones and keeps the relative order of the rest.
type Store[T any] struct {
	ids   []EntityID
	items []*T
	index map[EntityID]int
	dead  int
}

func NewStore[T any]() *Store[T] {
	return &Store[T]{
		ids:   make([]EntityID, 0, 64),
		items: make([]*T, 0, 64),
		index: make(map[EntityID]int, 64),
	}
}

// Add appends c after every existing slot. Re-adding a live ID replaces its value in place.
func (s *Store[T]) Add(id EntityID, c *T) {
	if i, ok := s.index[id]; ok {
		s.items[i] = c
		return
	}
	s.index[id] = len(s.items)
	s.ids = append(s.ids, id)
	s.items = append(s.items, c)
}

func (s *Store[T]) Get(id EntityID) (*T, bool) {
	i, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return s.items[i], true
}

func (s *Store[T]) Has(id EntityID) bool {
	_, ok := s.index[id]
	return ok
}

// Remove tombstones the entity's slot.
func (s *Store[T]) Remove(id EntityID) {
	i, ok := s.index[id]
	if !ok {
		return
	}
	delete(s.index, id)
	s.items[i] = nil
	s.dead++
}

// Slots returns the slot count including tombstones.
func (s *Store[T]) Slots() int { return len(s.items) }

// At returns the value in slot i, or nil for a tombstone.
func (s *Store[T]) At(i int) (EntityID, *T) {
	return s.ids[i], s.items[i]
}

// IndexOf returns the current slot of id.
func (s *Store[T]) IndexOf(id EntityID) (int, bool) {
	i, ok := s.index[id]
	return i, ok
}

// Len returns the number of live entries.
func (s *Store[T]) Len() int { return len(s.items) - s.dead }

func (s *Store[T]) Each(fn func(EntityID, *T)) {
	for i, c := range s.items {
		if c != nil {
			fn(s.ids[i], c)
		}
	}
}

func (s *Store[T]) Compact() {
	if s.dead == 0 {
		return
	}
	n := 0
	for i, c := range s.items {
		if c == nil {
			continue
		}
		s.items[n] = c
		s.ids[n] = s.ids[i]
		s.index[s.ids[n]] = n
		n++
	}
	clear(s.items[n:])
	s.items = s.items[:n]
	s.ids = s.ids[:n]
	s.dead = 0
}

func (s *Store[T]) Clear() {
	clear(s.items)
	s.items = s.items[:0]
	s.ids = s.ids[:0]
	clear(s.index)
	s.dead = 0
}
