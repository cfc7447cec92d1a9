package types

import "github.com/google/uuid"

// UUIDSet is an ordered, deduplicated list of ids persisted as JSONB.
// It backs the per-review helpful-vote ledger.
type UUIDSet []uuid.UUID

// Contains reports whether id is present.
func (s UUIDSet) Contains(id uuid.UUID) bool {
	for _, candidate := range s {
		if candidate == id {
			return true
		}
	}
	return false
}

// Add appends id if absent, reporting whether the set changed.
func (s *UUIDSet) Add(id uuid.UUID) bool {
	if s.Contains(id) {
		return false
	}
	*s = append(*s, id)
	return true
}

// Remove deletes id if present, reporting whether the set changed.
func (s *UUIDSet) Remove(id uuid.UUID) bool {
	for i, candidate := range *s {
		if candidate == id {
			*s = append((*s)[:i], (*s)[i+1:]...)
			return true
		}
	}
	return false
}
