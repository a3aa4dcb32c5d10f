package engine

import (
	"sort"

	"github.com/atlasforge/chronicle/internal/entities"
	"github.com/atlasforge/chronicle/internal/entropy"
	"github.com/atlasforge/chronicle/internal/world"
)

// TickTribes runs one yearly tick over every tribe, in reverse index
// order so deaths and civilization conversions can remove in place while
// splits append safely at the tail, per spec §4.8/§5.
func (s *Simulation) TickTribes() {
	for i := len(s.Tribes) - 1; i >= 0; i-- {
		t := s.Tribes[i]
		converted := s.tickTribe(t)
		switch {
		case converted:
			s.removeTribeAt(i)
		case t.Population < 10:
			s.Events.Emit(Event{
				Year:     s.Year,
				Message:  t.Culture + " tribe went extinct",
				Location: &Location{X: t.X, Y: t.Y},
				Category: CategoryExtinction,
			})
			s.removeTribeAt(i)
		}
	}
	s.splitOverpopulatedTribes()
	s.resolveTribeConflicts()
}

func (s *Simulation) removeTribeAt(i int) {
	last := len(s.Tribes) - 1
	s.Tribes[i] = s.Tribes[last]
	s.Tribes = s.Tribes[:last]
}

func (s *Simulation) currentTile(x, y int) *world.Tile {
	return s.World.TileAt(x, y)
}

// tickTribe advances one tribe by a year and returns true if it converted
// to a Country this tick (the caller then removes it from s.Tribes).
func (s *Simulation) tickTribe(t *entities.Tribe) bool {
	t.Age++
	tile := s.currentTile(t.X, t.Y)

	t.Population += int(float64(t.Population) * 0.02 * tile.FoodPotential)
	if s.RNG.Bool(0.01) {
		t.Population -= t.Population / 10
		s.Events.Emit(Event{
			Year:     s.Year,
			Message:  t.Culture + " tribe struck by disease or famine",
			Location: &Location{X: t.X, Y: t.Y},
			Category: CategoryDisaster,
		})
	}
	if t.Population < 10 {
		return false
	}

	if !t.Settled {
		if s.tickUnsettledTribe(t, tile) {
			return true
		}
	} else {
		if s.tickSettledTribe(t) {
			return true
		}
	}
	return false
}

// tickUnsettledTribe implements the unsettled half of spec §4.4. Returns
// true if the tribe converted to a Country this tick.
func (s *Simulation) tickUnsettledTribe(t *entities.Tribe, tile *world.Tile) bool {
	if t.MigrationCooldown > 0 {
		t.MigrationCooldown--
		t.SettlementYears++

		threshold := 20 + 20*t.Leader.Traits.Caution
		if float64(t.SettlementYears) > threshold && tile.Habitability > 0.4 && t.Population > 100 {
			t.Settled = true
			if t.TechLevel < 1 {
				t.TechLevel = 1
			}
			s.Events.Emit(Event{
				Year:     s.Year,
				Message:  t.Culture + " tribe settled",
				Location: &Location{X: t.X, Y: t.Y},
				Category: CategorySettlement,
			})
			if t.Leader.Traits.Ambition > 0.7 && s.RNG.Bool(0.4) {
				s.convertTribeToCountry(t)
				return true
			}
		}
		return false
	}

	s.migrateTribe(t)
	return false
}

// tickSettledTribe implements the settled half of spec §4.4. Returns true
// if the tribe converted to a Country this tick.
func (s *Simulation) tickSettledTribe(t *entities.Tribe) bool {
	if t.Age%5 == 0 && t.Population > 150 {
		s.expandTribe(t)
	}

	if t.CanConvertToCountry() && t.Population > 400 && t.Age > 50 {
		if s.RNG.Bool(0.03 * t.Leader.Traits.Ambition) {
			s.convertTribeToCountry(t)
			return true
		}
	}
	return false
}

// expandTribe implements spec §4.4's settled expansion attempt: an overall
// probability gates a single random-order adjacent unclaimed land tile
// pick.
func (s *Simulation) expandTribe(t *entities.Tribe) {
	tile := s.currentTile(t.X, t.Y)
	resourceScore := (tile.FoodPotential + tile.Wood + tile.Fertility) / 3
	popScore := float64(t.Population) / 500
	if popScore > 1 {
		popScore = 1
	}
	attemptP := 0.5*resourceScore + 0.3*popScore + 0.2*t.Leader.Traits.Ambition
	if !s.RNG.Bool(attemptP) {
		return
	}

	candidates := s.borderCandidates(t)
	if len(candidates) == 0 {
		return
	}
	entropy.Shuffle(s.RNG, candidates)
	t.AddTerritory(candidates[0])
}

// convertTribeToCountry replaces t with a freshly-formed Country holding
// the same population, territories, color, tech level, and leader — spec
// §4.5's formation rule.
func (s *Simulation) convertTribeToCountry(t *entities.Tribe) {
	c := entities.FromTribe(s.IDs.Next(), t)
	s.Countries = append(s.Countries, c)
	s.Stats.TotalCivilizations++
	s.Events.Emit(Event{
		Year:     s.Year,
		Message:  c.Name + " formed",
		Location: &Location{X: c.CapitalX, Y: c.CapitalY},
		Category: CategoryCivilizationFormed,
	})
}

const migrationScanRadius = 2

// migrateTribe implements spec §4.4.1: score every candidate tile within
// a radius-2 scan, then pick according to the rationality-weighted rule.
func (s *Simulation) migrateTribe(t *entities.Tribe) {
	type candidate struct {
		tc    world.TileCoord
		score float64
	}

	var candidates []candidate
	for dy := -migrationScanRadius; dy <= migrationScanRadius; dy++ {
		for dx := -migrationScanRadius; dx <= migrationScanRadius; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			x, y := world.WrapX(t.X+dx), world.ClampY(t.Y+dy)
			tc := world.TileCoord{X: x, Y: y}
			tile := s.currentTile(x, y)
			if !tile.IsLand {
				continue
			}
			if s.tileOwned(tc) {
				continue
			}
			candidates = append(candidates, candidate{tc: tc, score: migrationScore(tile)})
		}
	}
	if len(candidates) == 0 {
		return
	}

	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })

	var chosen world.TileCoord
	rationalityLow := 0.0
	if t.Leader.Traits.Rationality < 0.3 {
		rationalityLow = 1.0
	}
	if s.RNG.Bool(0.02 * rationalityLow) {
		worstStart := len(candidates) - 3
		if worstStart < 0 {
			worstStart = 0
		}
		worst := candidates[worstStart:]
		chosen = worst[s.RNG.Int(0, len(worst)-1)].tc
	} else {
		topN := int((1-t.Leader.Traits.Rationality)*5) + 1
		if topN < 1 {
			topN = 1
		}
		if topN > len(candidates) {
			topN = len(candidates)
		}
		top := candidates[:topN]
		chosen = top[s.RNG.Int(0, len(top)-1)].tc
	}

	t.SetTerritory(chosen)
	t.MigrationCooldown = s.RNG.Int(15, 35)
	t.SettlementYears = 0
}

// migrationScore implements spec §4.4.1's tile scoring formula.
func migrationScore(t *world.Tile) float64 {
	score := 100*t.Habitability +
		riverScoreBonus(t.RiverPresence) +
		coastBonus(t.DistanceToCoast)

	switch t.Biome {
	case world.BiomeDesert:
		score -= 40
	case world.BiomeIce, world.BiomeTundra:
		score -= 60
	}
	if t.Roughness > 0.5 {
		score -= 30
	}
	return score
}

func riverScoreBonus(r world.RiverPresence) float64 {
	switch r {
	case world.RiverMajor:
		return 50
	case world.RiverMinor:
		return 25
	default:
		return 0
	}
}

func coastBonus(distanceToCoast float64) float64 {
	if distanceToCoast < 2 {
		return 30
	}
	return 0
}

const maxTotalTribesHardCap = maxTotalTribes

// splitOverpopulatedTribes implements spec §4.4's splitting rule, applied
// after the main per-tribe loop so a split tribe's clone never re-enters
// the same tick's aging pass.
func (s *Simulation) splitOverpopulatedTribes() {
	if len(s.Tribes) >= maxTotalTribesHardCap {
		return
	}
	originalCount := len(s.Tribes)
	for i := 0; i < originalCount; i++ {
		if len(s.Tribes) >= maxTotalTribesHardCap {
			return
		}
		t := s.Tribes[i]
		if t.Population <= 500 || !s.RNG.Bool(0.05) {
			continue
		}
		half := t.Population / 2
		t.Population -= half

		clone := entities.NewTribe(s.IDs.Next(), t.Culture, t.Color, t.X, t.Y, entities.NewLeader(s.IDs.Next(), t.Culture+" the Splinter", s.RNG))
		clone.Population = half
		clone.TechLevel = t.TechLevel
		clone.MigrationCooldown = 0
		s.Tribes = append(s.Tribes, clone)

		s.Events.Emit(Event{
			Year:     s.Year,
			Message:  t.Culture + " tribe split",
			Location: &Location{X: t.X, Y: t.Y},
			Category: CategoryTribeSplit,
		})
	}
}

// resolveTribeConflicts implements spec §4.4's absorption rule: a settled
// tribe within Manhattan distance 2 of another settled tribe, with
// population over 1.3x theirs, may absorb it.
func (s *Simulation) resolveTribeConflicts() {
	for i := len(s.Tribes) - 1; i >= 0; i-- {
		attacker := s.Tribes[i]
		if !attacker.Settled || !s.RNG.Bool(0.02) {
			continue
		}
		for j := len(s.Tribes) - 1; j >= 0; j-- {
			if j == i {
				continue
			}
			victim := s.Tribes[j]
			if !victim.Settled {
				continue
			}
			if manhattan(attacker.X, attacker.Y, victim.X, victim.Y) > 2 {
				continue
			}
			if float64(attacker.Population) <= 1.3*float64(victim.Population) {
				continue
			}
			attacker.Population += victim.Population / 2
			attacker.AbsorbTerritories(victim)
			s.removeTribeAt(j)
			if j < i {
				i--
			}
			break
		}
	}
}

func manhattan(x1, y1, x2, y2 int) int {
	dx := x1 - x2
	if dx < 0 {
		dx = -dx
	}
	dy := y1 - y2
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}
