package services

// SelectionSet tracks which order ids a view has selected, preserving the
// order ids were added in. It is scoped to a single view and is not safe for
// concurrent use.
type SelectionSet struct {
	ids    []string
	member map[string]struct{}
}

// NewSelectionSet returns an empty selection.
func NewSelectionSet() *SelectionSet {
	return &SelectionSet{member: make(map[string]struct{})}
}

// Toggle adds the id when absent and removes it when present.
func (s *SelectionSet) Toggle(id string) {
	if _, ok := s.member[id]; ok {
		s.remove(id)
		return
	}
	s.add(id)
}

// Select adds the id when absent.
func (s *SelectionSet) Select(id string) {
	if _, ok := s.member[id]; !ok {
		s.add(id)
	}
}

// SelectAll replaces the selection with exactly the visible ids, in order.
// Previously selected ids that are no longer visible are dropped.
func (s *SelectionSet) SelectAll(visibleIDs []string) {
	s.Clear()
	for _, id := range visibleIDs {
		s.Select(id)
	}
}

// Clear empties the selection.
func (s *SelectionSet) Clear() {
	s.ids = s.ids[:0]
	s.member = make(map[string]struct{})
}

// Retain keeps only the listed ids, preserving their current insertion order.
func (s *SelectionSet) Retain(keep []string) {
	wanted := make(map[string]struct{}, len(keep))
	for _, id := range keep {
		wanted[id] = struct{}{}
	}

	retained := s.ids[:0]
	for _, id := range s.ids {
		if _, ok := wanted[id]; ok {
			retained = append(retained, id)
		} else {
			delete(s.member, id)
		}
	}
	s.ids = retained
}

// IsAllSelected reports whether the selection is exactly the visible set.
// An empty visible set is never fully selected. Duplicate visible ids count
// once, so the comparison is between the two sets.
func (s *SelectionSet) IsAllSelected(visibleIDs []string) bool {
	if len(visibleIDs) == 0 {
		return false
	}
	visible := make(map[string]struct{}, len(visibleIDs))
	for _, id := range visibleIDs {
		if _, ok := s.member[id]; !ok {
			return false
		}
		visible[id] = struct{}{}
	}
	return len(visible) == len(s.ids)
}

// Selected reports whether the id is currently selected.
func (s *SelectionSet) Selected(id string) bool {
	_, ok := s.member[id]
	return ok
}

// Len returns the number of selected ids.
func (s *SelectionSet) Len() int {
	return len(s.ids)
}

// IDs returns a snapshot of the selected ids in insertion order. Mutating the
// selection afterwards does not affect the returned slice.
func (s *SelectionSet) IDs() []string {
	snapshot := make([]string, len(s.ids))
	copy(snapshot, s.ids)
	return snapshot
}

func (s *SelectionSet) add(id string) {
	s.ids = append(s.ids, id)
	s.member[id] = struct{}{}
}

func (s *SelectionSet) remove(id string) {
	delete(s.member, id)
	for i, existing := range s.ids {
		if existing == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			return
		}
	}
}
