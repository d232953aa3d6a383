package uid

import "github.com/google/uuid"

// New generates a new unique identifier.
func New() string {
	return uuid.New().String()
}

// IsValid checks if a string is a valid UUID.
func IsValid(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Short returns the first eight characters of an id for compact display.
func Short(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
