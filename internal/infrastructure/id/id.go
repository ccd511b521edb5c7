package id

import "github.com/google/uuid"

type Generator interface {
	NewID() string
}

type UUIDGenerator struct{}

func NewUUIDGenerator() UUIDGenerator { return UUIDGenerator{} }

// NewID returns a random (v4) UUID string.
func (UUIDGenerator) NewID() string { return uuid.NewString() }
