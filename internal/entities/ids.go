// Package entities holds the Tribe, Country, City, and Leader data model,
// plus the succession and identity rules shared by tribes and countries.
// See design doc Section 3.
package entities

// ID is a stable, never-reused, never-colliding entity identifier.
type ID uint64

// IDGenerator hands out monotonically increasing ids starting at 1. Spec
// §9's open question flags the source's Date.now()-derived ids as
// non-deterministic; the fix does not need to route through the PRNG at
// all, since a plain sequential counter is already fully determined by
// placement order, which is itself already a function of the seed. A
// fresh Simulation's first tribe placement gets id 1, its second id 2, and
// so on, matching spec §8 scenario 1's literal "tribe_1..tribe_16".
type IDGenerator struct {
	next ID
}

// NewIDGenerator creates a generator starting at 1.
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{next: 1}
}

// NewIDGeneratorFrom creates a generator whose first Next() call returns
// start. Used when resuming from a save: the restored generator must not
// hand out an id already used by a loaded entity or leader.
func NewIDGeneratorFrom(start ID) *IDGenerator {
	return &IDGenerator{next: start}
}

// Next returns the next id in sequence.
func (g *IDGenerator) Next() ID {
	id := g.next
	g.next++
	return id
}
