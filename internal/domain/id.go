package domain

import (
	"strconv"

	"github.com/google/uuid"
)

// NewID generates a UUIDv7 string for application-owned entities such as
// audit entries.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// ParseEntityID parses a path or query identifier into an entity id.
func ParseEntityID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrValidation("invalid id %q", s)
	}
	return id, nil
}
