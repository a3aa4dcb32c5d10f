package engine

import (
	"math"

	"github.com/atlasforge/chronicle/internal/entities"
	"github.com/atlasforge/chronicle/internal/entropy"
	"github.com/atlasforge/chronicle/internal/world"
)

// TickCountries runs one yearly tick over every country, in reverse index
// order so in-place removals on collapse are safe, per spec §4.8/§5.
func (s *Simulation) TickCountries() {
	for i := len(s.Countries) - 1; i >= 0; i-- {
		c := s.Countries[i]
		s.tickCountry(c)
		if c.Population < 50 || c.TerritoryCount() == 0 {
			s.removeCountryAt(i)
		}
	}
}

func (s *Simulation) removeCountryAt(i int) {
	c := s.Countries[i]
	last := len(s.Countries) - 1
	s.Countries[i] = s.Countries[last]
	s.Countries = s.Countries[:last]
	s.Events.Emit(Event{
		Year:     s.Year,
		Message:  c.Name + " collapsed",
		Location: &Location{X: c.CapitalX, Y: c.CapitalY},
		Category: CategoryCollapse,
	})
}

func (s *Simulation) tickCountry(c *entities.Country) {
	c.Age++
	c.Leader.Age++
	c.Leader.YearsInPower++

	s.recomputeCountryPopulation(c)
	s.accrueUnrest(c)
	s.maybeAdvanceCountryTech(c)
	s.maybeSucceedCountryLeader(c)

	if c.Age%15 == 0 {
		s.tickExpandCountry(c)
	}
	s.maybeDeclareWar(c)
	s.RunCountryAI(c)
}

// accrueUnrest is the country's only source of rising unrest: fighting a war
// strains a population's patience with its government. Spec §4.7's
// improveStability action is the sole counterweight, so a country left on
// autopilot during a long war drifts toward the unrest > 70 threshold that
// spec §3 uses to spawn a revolutionary heir on the leader's death, and
// toward the unrest > 50 threshold that raises w_stability in §4.7.
func (s *Simulation) accrueUnrest(c *entities.Country) {
	if !c.AtWar {
		return
	}
	c.Unrest = math.Min(100, c.Unrest+unrestPerWarYear)
}

const unrestPerWarYear = 1.5

// recomputeCountryPopulation implements spec §4.5's per-tile population
// formula, summed over every territory.
func (s *Simulation) recomputeCountryPopulation(c *entities.Country) {
	total := 0
	for _, tc := range c.Territories() {
		t := s.World.TileAt(tc.X, tc.Y)
		total += int(t.PopulationCapacity * 1000 * 0.03 * t.FoodPotential * (1 + 0.1*float64(c.TechLevel)))
	}
	c.Population = total
}

func (s *Simulation) maybeAdvanceCountryTech(c *entities.Country) {
	if c.Age%50 != 0 {
		return
	}
	if s.RNG.Bool(0.4) {
		c.TechLevel++
		s.Events.Emit(Event{
			Year:     s.Year,
			Message:  c.Name + " advanced its technology",
			Category: CategoryTechAdvancement,
		})
	}
}

// maybeSucceedCountryLeader implements the leader-death and succession
// rule of spec §3/§4.5: at leader age > 65, a 5% yearly chance of death,
// with a revolutionary heir if unrest exceeded 70 at the moment of death.
func (s *Simulation) maybeSucceedCountryLeader(c *entities.Country) {
	if c.Leader.Age <= 65 || !s.RNG.Bool(0.05) {
		return
	}
	unrestAtDeath := c.Unrest
	heirName := c.Leader.Name + "'s Successor"
	c.Leader = c.Leader.Succeed(s.IDs.Next(), heirName, unrestAtDeath, s.RNG)
	s.Events.Emit(Event{
		Year:     s.Year,
		Message:  c.Name + "'s leader died; " + heirName + " takes power",
		Location: &Location{X: c.CapitalX, Y: c.CapitalY},
		Category: CategoryLeaderDied,
	})
}

// tickExpandCountry implements spec §4.5's per-tick expansion: like tribe
// expansion but without the ambition gate, and with an independent 0.3
// probability per candidate tile rather than a single overall attempt.
func (s *Simulation) tickExpandCountry(c *entities.Country) {
	candidates := s.borderCandidates(c)
	if len(candidates) == 0 {
		return
	}
	entropy.Shuffle(s.RNG, candidates)
	for _, tc := range candidates {
		if s.RNG.Bool(0.3) {
			c.AddTerritory(tc)
		}
	}
}

// aiExpandOne implements the AI "expand" action of spec §4.7: add exactly
// one adjacent unclaimed habitable tile, if one exists.
func (s *Simulation) aiExpandOne(c *entities.Country) {
	candidates := s.borderCandidates(c)
	if len(candidates) == 0 {
		return
	}
	tc := entropy.Choice(s.RNG, candidates)
	c.AddTerritory(tc)
}

// borderCandidates returns every unclaimed, land, non-ice/alpine tile
// 8-adjacent (wrapping X, clamping Y) to c's current territory — the
// shared expansion-candidate scan used by tribes, countries, and the AI.
func (s *Simulation) borderCandidates(owner entities.Owner) []world.TileCoord {
	mine := make(map[world.TileCoord]bool, len(owner.Territories()))
	for _, tc := range owner.Territories() {
		mine[tc] = true
	}

	seen := make(map[world.TileCoord]bool)
	var out []world.TileCoord
	for _, tc := range owner.Territories() {
		for _, n := range world.TileNeighbors8(tc.X, tc.Y) {
			if mine[n] || seen[n] {
				continue
			}
			seen[n] = true
			t := s.World.TileAt(n.X, n.Y)
			if !t.IsLand || t.Biome.Uninhabitable() {
				continue
			}
			if s.tileOwned(n) {
				continue
			}
			out = append(out, n)
		}
	}
	return out
}

// maybeDeclareWar implements spec §4.5's per-tick warfare trigger, distinct
// from the AI's own w_war weighted roll (§4.7): a country past age 30, not
// already at war, may spontaneously declare on a bordering country. The
// under-expansion half of the gate reads "territories.len < 0.5*target.len"
// against the country actually picked as the war target, not the
// neighborhood average — see DESIGN.md's Open Question on this wording.
func (s *Simulation) maybeDeclareWar(c *entities.Country) {
	if c.Age <= 30 || c.AtWar || !s.RNG.Bool(0.03) {
		return
	}
	neighbors := s.neighboringCountries(c)
	if len(neighbors) == 0 {
		return
	}
	target := chooseCountry(s, neighbors)
	if target.AtWar {
		return
	}
	underExpanded := float64(c.TerritoryCount()) < 0.5*float64(target.TerritoryCount())
	if c.Leader.Traits.Aggression <= 0.6 && !underExpanded {
		return
	}
	s.Wars.DeclareWar(c, target)
	s.Events.Emit(Event{
		Year:     s.Year,
		Message:  c.Name + " declared war on " + target.Name,
		Category: CategoryWarDeclared,
	})
}
