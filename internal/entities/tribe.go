package entities

import (
	"fmt"

	"github.com/atlasforge/chronicle/internal/world"
)

// Tribe is an unsettled or newly-settled population group. See design doc
// Section 3 and Section 4.4.
type Tribe struct {
	ID      ID
	Culture string
	Color   string

	X, Y int // tile coords of center

	Population int
	Age        int
	TechLevel  int

	Settled           bool
	SettlementYears   int
	MigrationCooldown int

	territories TerritorySet

	Leader Leader
}

// NewTribe creates a founding tribe centered on (x, y), with a single
// territory tile there.
func NewTribe(id ID, culture, color string, x, y int, leader Leader) *Tribe {
	t := &Tribe{
		ID:         id,
		Culture:    culture,
		Color:      color,
		X:          x,
		Y:          y,
		Population: 30,
		Leader:     leader,
		territories: NewTerritorySet(),
	}
	t.territories.Add(world.TileCoord{X: x, Y: y})
	return t
}

// DisplayID renders the tribe's id in the "tribe_N" form spec §8 scenario
// 1 expects — the human-facing counterpart to the numeric ID used for
// internal uniqueness and ownership-index lookups.
func (t *Tribe) DisplayID() string { return fmt.Sprintf("tribe_%d", t.ID) }

func (t *Tribe) OwnerID() ID           { return t.ID }
func (t *Tribe) OwnerKind() OwnerKind  { return OwnerTribe }
func (t *Tribe) Territories() []world.TileCoord { return t.territories.Slice() }

// TerritoryCount returns how many tiles the tribe holds.
func (t *Tribe) TerritoryCount() int { return t.territories.Len() }

// HasTerritory reports whether the tribe owns tc.
func (t *Tribe) HasTerritory(tc world.TileCoord) bool { return t.territories.Has(tc) }

// AddTerritory claims tc. Unsettled tribes are capped at
// unsettledTerritoryCap tiles; the cap is the caller's responsibility to
// check before calling (kept here as a defensive floor).
func (t *Tribe) AddTerritory(tc world.TileCoord) bool {
	if !t.Settled && t.territories.Len() >= unsettledTerritoryCap {
		return false
	}
	return t.territories.Add(tc)
}

// RemoveTerritory drops tc.
func (t *Tribe) RemoveTerritory(tc world.TileCoord) bool {
	return t.territories.Remove(tc)
}

// SetTerritory replaces the entire territory set with the single tile tc,
// used by migration (spec §4.4.1: "territories become the single chosen
// tile").
func (t *Tribe) SetTerritory(tc world.TileCoord) {
	t.territories = NewTerritorySet()
	t.territories.Add(tc)
	t.X, t.Y = tc.X, tc.Y
}

// AbsorbTerritories merges other's territory set into t's.
func (t *Tribe) AbsorbTerritories(other *Tribe) {
	t.territories.Merge(&other.territories)
}

// CanConvertToCountry reports the territorial precondition of spec §4.4's
// per-tick conversion path: more than 5 territories.
func (t *Tribe) CanConvertToCountry() bool {
	return t.territories.Len() > 5
}
