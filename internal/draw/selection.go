package draw

import "sync"

// Selection tracks which ids are enabled for a spin. It is session state and
// is never persisted.
type Selection struct {
	mu      sync.Mutex
	enabled map[string]bool
	order   []string
}

// NewSelection returns an empty selection.
func NewSelection() *Selection {
	return &Selection{enabled: map[string]bool{}}
}

// Sync aligns the selection with ids: known ids keep their flag, new ids
// start enabled, ids no longer present are dropped.
func (s *Selection) Sync(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string]bool, len(ids))
	for _, id := range ids {
		on, known := s.enabled[id]
		next[id] = on || !known
	}
	s.enabled = next
	s.order = append([]string(nil), ids...)
}

// Toggle flips one id. Unknown ids are ignored.
func (s *Selection) Toggle(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	on, ok := s.enabled[id]
	if !ok {
		return false
	}
	s.enabled[id] = !on
	return true
}

// Set forces one id on or off. Unknown ids are ignored.
func (s *Selection) Set(id string, on bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.enabled[id]; !ok {
		return false
	}
	s.enabled[id] = on
	return true
}

// SetAll enables or disables every id.
func (s *Selection) SetAll(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.enabled {
		s.enabled[id] = on
	}
}

// AllSelected reports whether every known id is enabled. An empty selection
// counts as not all selected.
func (s *Selection) AllSelected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.enabled) == 0 {
		return false
	}
	for _, on := range s.enabled {
		if !on {
			return false
		}
	}
	return true
}

// Selected returns the enabled ids in the order given to the last Sync.
func (s *Selection) Selected() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.order))
	for _, id := range s.order {
		if s.enabled[id] {
			out = append(out, id)
		}
	}
	return out
}

// Flags returns a copy of the enable flags.
func (s *Selection) Flags() map[string]bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]bool, len(s.enabled))
	for id, on := range s.enabled {
		out[id] = on
	}
	return out
}
