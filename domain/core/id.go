package core

import (
	"github.com/google/uuid"
)

// ResultID identifies one fit inside a caller-owned accumulated-results
// list, so a single column can later be replaced or removed.
type ResultID string

// NewResultID returns a time-ordered identifier, falling back to a random
// one when the clock-based draw fails.
func NewResultID() ResultID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ResultID(id.String())
}

// String returns the string representation.
func (id ResultID) String() string {
	return string(id)
}

// IsEmpty reports whether the identifier is unset.
func (id ResultID) IsEmpty() bool {
	return id == ""
}
