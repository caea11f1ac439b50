package utils

import (
	"github.com/google/uuid"
)

var newUUIDv7 = uuid.NewV7

// NewTimeOrderedID returns a UUIDv7 so ids sort by creation time, falling
// back to a random v4
func NewTimeOrderedID() uuid.UUID {
	id, err := newUUIDv7()
	if err != nil {
		return uuid.New()
	}
	return id
}
