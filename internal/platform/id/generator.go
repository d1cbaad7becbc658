package id

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Generator creates report run identifiers.
type Generator interface {
	NewID() (string, error)
}

// RunIDGenerator yields ids like "run-20240309T120000Z-1a2b3c4d": sortable by start time,
// unique through the random suffix.
type RunIDGenerator struct {
	prefix string
	now    func() time.Time
}

func NewRunIDGenerator(prefix string) *RunIDGenerator {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "run"
	}
	return &RunIDGenerator{prefix: prefix, now: time.Now}
}

func (g *RunIDGenerator) NewID() (string, error) {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}

	stamp := g.now().UTC().Format("20060102T150405Z")
	return g.prefix + "-" + stamp + "-" + hex.EncodeToString(buf), nil
}
