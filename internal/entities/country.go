package entities

import (
	"fmt"

	"github.com/atlasforge/chronicle/internal/world"
)

// Country is a civilization formed from a settled Tribe. See design doc
// Section 3 and Section 4.5.
type Country struct {
	ID    ID
	Name  string
	Color string

	CapitalX, CapitalY int

	Population int
	Age        int
	TechLevel  int
	Government string
	Unrest     float64
	AtWar      bool

	Allies   []ID
	Enemies  []ID
	Cities   []City

	territories TerritorySet

	Leader Leader
}

// FromTribe forms a Country from a settled tribe, per spec §4.5: it copies
// population, territories, color, tech level, and leader, and adds
// civilization-specific fields.
func FromTribe(id ID, t *Tribe) *Country {
	c := &Country{
		ID:         id,
		Name:       t.Culture + " Civilization",
		Color:      t.Color,
		CapitalX:   t.X,
		CapitalY:   t.Y,
		Population: t.Population,
		Age:        t.Age,
		TechLevel:  t.TechLevel,
		Government: "tribal_confederation",
		Leader:     t.Leader,
		territories: NewTerritorySet(),
	}
	for _, tc := range t.Territories() {
		c.territories.Add(tc)
	}
	return c
}

// DisplayID renders the country's id in the "country_N" form, the
// human-facing counterpart to Tribe.DisplayID.
func (c *Country) DisplayID() string { return fmt.Sprintf("country_%d", c.ID) }

func (c *Country) OwnerID() ID           { return c.ID }
func (c *Country) OwnerKind() OwnerKind  { return OwnerCountry }
func (c *Country) Territories() []world.TileCoord { return c.territories.Slice() }

// TerritoryCount returns how many tiles the country holds.
func (c *Country) TerritoryCount() int { return c.territories.Len() }

// HasTerritory reports whether the country owns tc.
func (c *Country) HasTerritory(tc world.TileCoord) bool { return c.territories.Has(tc) }

// AddTerritory claims tc.
func (c *Country) AddTerritory(tc world.TileCoord) bool { return c.territories.Add(tc) }

// RemoveTerritory drops tc.
func (c *Country) RemoveTerritory(tc world.TileCoord) bool { return c.territories.Remove(tc) }

// Capital returns the country's capital city, which is always Cities[0], or
// nil if no city has been founded yet. A freshly-formed country starts with
// none: its first city (marked IsCapital) is founded later by the
// buildCity AI action.
func (c *Country) Capital() *City {
	if len(c.Cities) == 0 {
		return nil
	}
	return &c.Cities[0]
}

// IsAlly reports whether id is in the ally list.
func (c *Country) IsAlly(id ID) bool {
	for _, a := range c.Allies {
		if a == id {
			return true
		}
	}
	return false
}

// IsEnemy reports whether id is in the enemy list.
func (c *Country) IsEnemy(id ID) bool {
	for _, e := range c.Enemies {
		if e == id {
			return true
		}
	}
	return false
}

// AddAlly appends id if not already present.
func (c *Country) AddAlly(id ID) {
	if !c.IsAlly(id) {
		c.Allies = append(c.Allies, id)
	}
}
