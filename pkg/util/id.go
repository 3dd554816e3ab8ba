// Package util provides small shared helpers.
package util

import "github.com/google/uuid"

// GenerateID returns a new opaque unique identifier.
// IDs are never reused, even across records of different kinds.
func GenerateID() string {
	return uuid.NewString()
}
