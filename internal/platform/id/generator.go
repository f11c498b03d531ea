package id

import "github.com/google/uuid"

// Generator creates opaque IDs for stream subscribers and requests.
type Generator interface {
	NewID() string
}

// UUIDGenerator issues time-ordered v7 UUIDs, falling back to v4.
type UUIDGenerator struct{}

func NewUUIDGenerator() UUIDGenerator {
	return UUIDGenerator{}
}

func (UUIDGenerator) NewID() string {
	if v7, err := uuid.NewV7(); err == nil {
		return v7.String()
	}
	return uuid.NewString()
}

// Func adapts a function to Generator.
type Func func() string

func (f Func) NewID() string {
	return f()
}
