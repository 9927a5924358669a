package bulk

import (
	"slices"
	"sync"

	"snippit/internal/domain"
)

// Selection is the set of bookmark ids picked for a bulk operation.
// It is safe for concurrent use.
type Selection struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

// NewSelection returns an empty selection.
func NewSelection() *Selection {
	return &Selection{ids: make(map[string]struct{})}
}

// Toggle adds id when absent and removes it otherwise.
func (s *Selection) Toggle(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return
	}
	s.ids[id] = struct{}{}
}

// Has reports whether id is selected.
func (s *Selection) Has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of selected ids.
func (s *Selection) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}

// IDs returns the selected ids in sorted order.
func (s *Selection) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// SelectAll selects exactly the given bookmarks, or clears the selection
// when every one of them is already selected.
func (s *Selection) SelectAll(visible []domain.Bookmark) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := len(visible) > 0 && len(s.ids) == len(visible)
	for _, b := range visible {
		if _, ok := s.ids[b.ID]; !ok {
			all = false
			break
		}
	}
	clear(s.ids)
	if all {
		return
	}
	for _, b := range visible {
		s.ids[b.ID] = struct{}{}
	}
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.ids)
}

// take returns the selected ids and empties the selection.
func (s *Selection) take() []string {
	ids := s.IDs()
	s.Clear()
	return ids
}
