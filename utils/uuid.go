package utils

import (
	"github.com/google/uuid"
)

// GenerateID returns a new unique identifier string
func GenerateID() string {
	return uuid.New().String()
}

// IsValidID reports whether s is a well-formed identifier produced by GenerateID
func IsValidID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
