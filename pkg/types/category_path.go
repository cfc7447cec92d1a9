package types

import "github.com/google/uuid"

// CategoryRef is the denormalized summary of one ancestor category.
type CategoryRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

// CategoryPath is the materialized path from root to immediate parent,
// persisted as JSONB on each category row.
type CategoryPath []CategoryRef

// Contains reports whether the path passes through the given category.
func (p CategoryPath) Contains(id uuid.UUID) bool {
	for _, ref := range p {
		if ref.ID == id {
			return true
		}
	}
	return false
}

// Append returns a new path extended with the given ref.
func (p CategoryPath) Append(ref CategoryRef) CategoryPath {
	next := make(CategoryPath, 0, len(p)+1)
	next = append(next, p...)
	next = append(next, ref)
	return next
}
