package id

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// Generator creates opaque IDs, e.g. for tagging pipeline runs.
type Generator interface {
	NewID() (string, error)
}

type RandomGenerator struct {
	bytes int
}

func NewRandomGenerator() *RandomGenerator {
	return &RandomGenerator{bytes: 8}
}

// NewID returns 16 lowercase hex characters.
func (g *RandomGenerator) NewID() (string, error) {
	size := g.bytes
	if size <= 0 {
		size = 8
	}
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}

	return hex.EncodeToString(buf), nil
}

// Static returns the same ID every time. Tests use it for deterministic runs.
type Static string

func (s Static) NewID() (string, error) {
	return string(s), nil
}
