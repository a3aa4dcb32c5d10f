package engine

import (
	"math"

	"github.com/atlasforge/chronicle/internal/entities"
	"github.com/atlasforge/chronicle/internal/world"
)

// CountryAI holds the AI-wide scalar state shared by every country's
// decision policy. Consolidated here rather than as a package-level
// global, per design doc Section 9.
type CountryAI struct {
	GlobalTension float64
}

// NewCountryAI creates AI state with no accumulated tension.
func NewCountryAI() *CountryAI {
	return &CountryAI{}
}

// DecayTension reduces GlobalTension by the fixed per-tick amount, per spec
// §4.7.
func (ai *CountryAI) DecayTension() {
	ai.GlobalTension = math.Max(0, ai.GlobalTension-0.01)
}

type aiAction string

const (
	actionExpand           aiAction = "expand"
	actionBuildCity        aiAction = "buildCity"
	actionSeekAlliance     aiAction = "seekAlliance"
	actionDeclareWar       aiAction = "declareWar"
	actionImproveStability aiAction = "improveStability"
)

// RunCountryAI evaluates the weighted action policy for c every 5 years,
// per spec §4.7, and applies whichever action the roll selects.
func (s *Simulation) RunCountryAI(c *entities.Country) {
	if c.Age%5 != 0 {
		return
	}

	neighbors := s.neighboringCountries(c)
	weights := map[aiAction]float64{
		actionExpand:           s.weightExpand(c),
		actionBuildCity:        weightBuildCity(c),
		actionSeekAlliance:     weightSeekAlliance(c, neighbors),
		actionDeclareWar:       s.weightDeclareWar(c, neighbors),
		actionImproveStability: weightImproveStability(c),
	}

	action := pickWeighted(s.RNG.Next(), weights)
	s.applyAction(c, action, neighbors)
}

func (s *Simulation) weightExpand(c *entities.Country) float64 {
	base := 0.1
	if s.hasAdjacentUnclaimedHabitable(c) {
		base = 0.5
	}
	if c.TerritoryCount() > 50 {
		base = 0
	}
	return base * (1 + c.Leader.Traits.Ambition)
}

func weightBuildCity(c *entities.Country) float64 {
	if len(c.Cities) < c.TerritoryCount()/10 {
		return 0.2
	}
	return 0
}

func weightSeekAlliance(c *entities.Country, neighbors []*entities.Country) float64 {
	if len(c.Allies) > 3 {
		return 0
	}
	base := 0.05
	for _, n := range neighbors {
		if !c.IsAlly(n.ID) && !n.AtWar && !c.AtWar {
			base = 0.15
			break
		}
	}
	return base * (1 + c.Leader.Traits.Diplomacy)
}

func (s *Simulation) weightDeclareWar(c *entities.Country, neighbors []*entities.Country) float64 {
	if c.AtWar || c.Population < 500 || len(neighbors) == 0 {
		return 0
	}
	weaker := 0
	for _, n := range neighbors {
		if n.Population < c.Population {
			weaker++
		}
	}
	base := 0.1 + 0.3*s.AI.GlobalTension + 0.2*float64(weaker)
	return base * (1 + c.Leader.Traits.Aggression) * (1 - c.Leader.Traits.Caution)
}

func weightImproveStability(c *entities.Country) float64 {
	if c.Unrest > 50 {
		return 0.4
	}
	return 0.05
}

// pickWeighted selects a key by cumulative weight given a draw in [0,1).
// If total weight is 0, returns "" (no action taken this tick).
func pickWeighted(draw float64, weights map[aiAction]float64) aiAction {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return ""
	}
	target := draw * total
	cum := 0.0
	// Iterate in a fixed order so the same draw always resolves to the
	// same action, regardless of Go's randomized map iteration order.
	order := []aiAction{actionExpand, actionBuildCity, actionSeekAlliance, actionDeclareWar, actionImproveStability}
	for _, a := range order {
		cum += weights[a]
		if target < cum {
			return a
		}
	}
	return order[len(order)-1]
}

func (s *Simulation) applyAction(c *entities.Country, action aiAction, neighbors []*entities.Country) {
	switch action {
	case actionExpand:
		s.aiExpandOne(c)
	case actionBuildCity:
		s.buildCity(c)
	case actionSeekAlliance:
		if len(neighbors) > 0 {
			target := chooseCountry(s, neighbors)
			c.AddAlly(target.ID)
			target.AddAlly(c.ID)
			s.Events.Emit(Event{
				Year:     s.Year,
				Message:  c.Name + " and " + target.Name + " formed an alliance",
				Category: CategoryAllianceFormed,
			})
		}
	case actionDeclareWar:
		if len(neighbors) > 0 {
			target := chooseCountry(s, neighbors)
			s.Wars.DeclareWar(c, target)
			s.AI.GlobalTension = math.Min(1, s.AI.GlobalTension+0.1)
			s.Events.Emit(Event{
				Year:     s.Year,
				Message:  c.Name + " declared war on " + target.Name,
				Category: CategoryWarDeclared,
			})
		}
	case actionImproveStability:
		c.Unrest = math.Max(0, c.Unrest-10)
	}
}

func (s *Simulation) buildCity(c *entities.Country) {
	territories := c.Territories()
	if len(territories) == 0 {
		return
	}
	var pick *world.TileCoord
	for i := range territories {
		t := s.World.TileAt(territories[i].X, territories[i].Y)
		if t.RiverPresence != world.RiverNone || t.Fertility > 0.5 {
			pick = &territories[i]
			break
		}
	}
	if pick == nil {
		pick = &territories[0]
	}
	isCapital := len(c.Cities) == 0
	name := c.Name + " Outpost"
	if isCapital {
		name = c.Name + " Capital"
	}
	city := entities.City{
		ID:        s.IDs.Next(),
		Name:      name,
		X:         pick.X,
		Y:         pick.Y,
		IsCapital: isCapital,
	}
	c.Cities = append(c.Cities, city)
	s.Events.Emit(Event{
		Year:     s.Year,
		Message:  city.Name + " founded",
		Location: &Location{X: pick.X, Y: pick.Y},
		Category: CategoryCityFounded,
	})
}

func (s *Simulation) hasAdjacentUnclaimedHabitable(c *entities.Country) bool {
	return len(s.borderCandidates(c)) > 0
}

// neighboringCountries returns every other country with at least one tile
// 8-adjacent to c's territory.
func (s *Simulation) neighboringCountries(c *entities.Country) []*entities.Country {
	mine := make(map[world.TileCoord]bool, c.TerritoryCount())
	for _, tc := range c.Territories() {
		mine[tc] = true
	}

	var out []*entities.Country
	seen := make(map[entities.ID]bool)
	for _, tc := range c.Territories() {
		for _, n := range world.TileNeighbors8(tc.X, tc.Y) {
			for _, other := range s.Countries {
				if other.ID == c.ID || seen[other.ID] {
					continue
				}
				if other.HasTerritory(n) {
					out = append(out, other)
					seen[other.ID] = true
				}
			}
		}
	}
	return out
}

func chooseCountry(s *Simulation, cs []*entities.Country) *entities.Country {
	return cs[s.RNG.Int(0, len(cs)-1)]
}
