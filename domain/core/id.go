package core

import (
	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	RunID      ID
	SegmentKey ID
)

func (id RunID) String() string      { return ID(id).String() }
func (id SegmentKey) String() string { return ID(id).String() }

// AllSegments is the segment key for the unfiltered population.
const AllSegments SegmentKey = "All Segments"

// IsAll reports whether the key selects the whole population.
func (id SegmentKey) IsAll() bool {
	return id == "" || id == AllSegments
}
