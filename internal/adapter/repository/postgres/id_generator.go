package postgres

import (
	"github.com/oklog/ulid/v2"
)

// ULIDGenerator hands out ids for accounts, journal entries, refunds,
// inflows and outbox rows. ULIDs from one process sort by creation time,
// which keeps refund and import references readable in listings.
type ULIDGenerator struct{}

// NewULIDGenerator creates a new ULIDGenerator.
func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{}
}

// Generate returns a new monotonic ULID.
func (g *ULIDGenerator) Generate() string {
	return ulid.Make().String()
}
