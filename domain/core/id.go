package core

import (
	"github.com/google/uuid"
)

// ID identifies a single analysis request or derived artifact.
type ID string

// NewID creates a time-ordered identifier, falling back to a random one if
// v7 generation fails.
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation.
func (id ID) String() string {
	return string(id)
}

// IsEmpty reports whether the ID is unset.
func (id ID) IsEmpty() bool {
	return id == ""
}
