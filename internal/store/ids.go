package store

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// IDLength is the length of a transaction identifier.
const IDLength = 8

// IDGenerator supplies short transaction identifiers.
type IDGenerator interface {
	NewID() string
}

// Clock supplies the creation time of new transactions.
type Clock interface {
	Now() time.Time
}

// UUIDGenerator derives identifiers from the first 8 hex characters of a random UUID, upper-cased.
type UUIDGenerator struct{}

// NewID returns a fresh 8-character identifier such as "3F2A9C1D".
func (UUIDGenerator) NewID() string {
	return strings.ToUpper(uuid.NewString()[:IDLength])
}

// SystemClock reads the local wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time {
	return time.Now()
}

// FixedClock always returns T. Useful for tests and imports.
type FixedClock struct {
	T time.Time
}

// Now returns c.T.
func (c FixedClock) Now() time.Time {
	return c.T
}

// SequenceGenerator replays IDs in order, then falls back to UUIDs.
type SequenceGenerator struct {
	IDs  []string
	next int
}

// NewID returns the next queued identifier.
func (g *SequenceGenerator) NewID() string {
	if g.next < len(g.IDs) {
		id := g.IDs[g.next]
		g.next++
		return id
	}
	return UUIDGenerator{}.NewID()
}
