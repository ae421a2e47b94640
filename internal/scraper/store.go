package scraper

import "sync"

// Handle is a generation-checked reference to an entity in a Store. The
// zero Handle never resolves.
type Handle struct {
	index uint32
	gen   uint32
}

func (h Handle) IsZero() bool { return h.gen == 0 }

type slot struct {
	entity Entity
	gen    uint32
}

// Store owns entities on behalf of callers and hands out Handles. A Handle
// whose entity was removed resolves to nothing, so late sub-request results
// are dropped instead of touching a dead entity.
type Store struct {
	mu    sync.Mutex
	slots []slot
	free  []uint32
}

func NewStore() *Store {
	return &Store{}
}

// Add places e in the store and returns its handle.
func (s *Store) Add(e Entity) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n := len(s.free); n > 0 {
		idx := s.free[n-1]
		s.free = s.free[:n-1]
		sl := &s.slots[idx]
		sl.entity = e
		return Handle{index: idx, gen: sl.gen}
	}

	s.slots = append(s.slots, slot{entity: e, gen: 1})
	return Handle{index: uint32(len(s.slots) - 1), gen: 1}
}

// Remove invalidates h. It reports whether h was valid.
func (s *Store) Remove(h Handle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sl := s.lookup(h)
	if sl == nil {
		return false
	}
	sl.entity = nil
	sl.gen++
	if sl.gen == 0 {
		sl.gen = 1
	}
	s.free = append(s.free, h.index)
	return true
}

// Valid reports whether h still refers to a live entity.
func (s *Store) Valid(h Handle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookup(h) != nil
}

// Update runs fn with exclusive access to the entity behind h. It reports
// false without calling fn when h is stale.
func (s *Store) Update(h Handle, fn func(Entity)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sl := s.lookup(h)
	if sl == nil {
		return false
	}
	fn(sl.entity)
	return true
}

// View is Update for read-only access.
func (s *Store) View(h Handle, fn func(Entity)) bool {
	return s.Update(h, fn)
}

// Len returns the number of live entities.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.slots) - len(s.free)
}

func (s *Store) lookup(h Handle) *slot {
	if h.gen == 0 || int(h.index) >= len(s.slots) {
		return nil
	}
	sl := &s.slots[h.index]
	if sl.gen != h.gen || sl.entity == nil {
		return nil
	}
	return sl
}
