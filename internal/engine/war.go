package engine

import (
	"math"

	"github.com/atlasforge/chronicle/internal/entities"
	"github.com/atlasforge/chronicle/internal/entropy"
	"github.com/atlasforge/chronicle/internal/world"
)

// War owns references (by id, per design doc Section 9's "cyclic
// references... model with stable integer ids" rule) to attacker and
// defender and the accumulators that drive its exhaustion-based
// termination. See design doc Section 4.6.
type War struct {
	AttackerID entities.ID
	DefenderID entities.ID

	AttackerExhaustion float64
	DefenderExhaustion float64

	AttackerCasualties int
	DefenderCasualties int

	Age int
}

// WarManager holds every currently active war. Countries and wars
// reference each other only by id, looked up through the Simulation's own
// country slice — no direct pointers between wars and countries.
type WarManager struct {
	Active []*War
}

// NewWarManager creates an empty manager.
func NewWarManager() *WarManager {
	return &WarManager{}
}

// DeclareWar starts a new war and marks both sides at war. Spec §4.6/§4.5.
func (wm *WarManager) DeclareWar(attacker, defender *entities.Country) *War {
	attacker.AtWar = true
	defender.AtWar = true
	w := &War{AttackerID: attacker.ID, DefenderID: defender.ID}
	wm.Active = append(wm.Active, w)
	return w
}

// warStrength computes a side's battle strength per spec §4.6.
func warStrength(c *entities.Country, isDefender bool) float64 {
	s := float64(c.Population) * (1 + 0.1*float64(c.TechLevel)) * (1 - c.Unrest/100)
	if isDefender {
		s *= 1.2 * (1 + 0.2*c.Leader.Traits.Caution)
	} else {
		s *= 1 + 0.2*c.Leader.Traits.Aggression
	}
	if s < 1 {
		s = 1
	}
	return s
}

// AdvanceWars runs one yearly tick of every active war: strength rolls,
// casualties, a possible annexation, exhaustion accrual, and termination
// checks, per spec §4.6.
func (s *Simulation) AdvanceWars() {
	for i := len(wm(s).Active) - 1; i >= 0; i-- {
		w := wm(s).Active[i]
		attacker := s.findCountry(w.AttackerID)
		defender := s.findCountry(w.DefenderID)
		if attacker == nil || defender == nil {
			s.removeWarAt(i)
			continue
		}

		w.Age++
		s.resolveBattle(w, attacker, defender)
		if end, winner, loser := checkWarTermination(w, attacker, defender); end {
			s.endWar(w, winner, loser)
			s.removeWarAt(i)
		}
	}
}

func wm(s *Simulation) *WarManager { return s.Wars }

func (s *Simulation) findCountry(id entities.ID) *entities.Country {
	for _, c := range s.Countries {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func (s *Simulation) removeWarAt(i int) {
	last := len(s.Wars.Active) - 1
	s.Wars.Active[i] = s.Wars.Active[last]
	s.Wars.Active = s.Wars.Active[:last]
}

// resolveBattle rolls one year of combat, applies casualties, attempts an
// annexation on an attacker win, and accrues exhaustion.
func (s *Simulation) resolveBattle(w *War, attacker, defender *entities.Country) {
	sa := warStrength(attacker, false)
	sd := warStrength(defender, true)
	adv := sa / (sa + sd)

	r := s.RNG.Next()
	attackerWin := r < 0.6*adv
	defenderWin := r > 0.7

	attackerLoss := int(float64(attacker.Population) * s.RNG.Range(0.001, 0.005))
	defenderLoss := int(float64(defender.Population) * s.RNG.Range(0.001, 0.005))
	attacker.Population -= attackerLoss
	defender.Population -= defenderLoss
	w.AttackerCasualties += attackerLoss
	w.DefenderCasualties += defenderLoss
	s.Stats.TotalDeaths += attackerLoss + defenderLoss

	if attackerWin {
		s.attemptAnnexation(attacker, defender, 1)
	}
	_ = defenderWin // defender-win rolls contribute no additional effect beyond casualties this tick

	w.AttackerExhaustion += 0.05
	w.DefenderExhaustion += 0.03
}

// attemptAnnexation looks for defender tiles 8-adjacent (wrapping X) to an
// attacker tile and, with probability 0.3, transfers up to maxTiles of
// them one at a time.
func (s *Simulation) attemptAnnexation(attacker, defender *entities.Country, maxTiles int) {
	if !s.RNG.Bool(0.3) {
		return
	}
	candidates := s.borderingTiles(attacker, defender)
	if len(candidates) == 0 {
		return
	}
	n := maxTiles
	if n > len(candidates) {
		n = len(candidates)
	}
	entropy.Shuffle(s.RNG, candidates)
	for _, tc := range candidates[:n] {
		s.transferTile(defender, attacker, tc)
		s.Events.Emit(Event{
			Year:     s.Year,
			Message:  attacker.Name + " conquered a territory from " + defender.Name,
			Location: &Location{X: tc.X, Y: tc.Y},
			Category: CategoryTerritoryConquered,
		})
	}
}

// borderingTiles returns defender tiles that are 8-adjacent to an attacker
// tile.
func (s *Simulation) borderingTiles(attacker, defender *entities.Country) []world.TileCoord {
	attackerSet := make(map[world.TileCoord]bool, attacker.TerritoryCount())
	for _, tc := range attacker.Territories() {
		attackerSet[tc] = true
	}

	var out []world.TileCoord
	for _, tc := range defender.Territories() {
		for _, n := range world.TileNeighbors8(tc.X, tc.Y) {
			if attackerSet[n] {
				out = append(out, tc)
				break
			}
		}
	}
	return out
}

func (s *Simulation) transferTile(from, to *entities.Country, tc world.TileCoord) {
	from.RemoveTerritory(tc)
	to.AddTerritory(tc)
}

// checkWarTermination applies spec §4.6's ordered termination checks.
func checkWarTermination(w *War, attacker, defender *entities.Country) (end bool, winner, loser *entities.Country) {
	switch {
	case defender.Population < 100 || defender.TerritoryCount() < 2:
		return true, attacker, defender
	case attacker.Population < 200:
		return true, defender, attacker
	case w.AttackerExhaustion > 1.0 || w.DefenderExhaustion > 1.0:
		if w.AttackerExhaustion < w.DefenderExhaustion {
			return true, attacker, defender
		}
		return true, defender, attacker
	default:
		return false, nil, nil
	}
}

func (s *Simulation) endWar(w *War, winner, loser *entities.Country) {
	attacker := s.findCountry(w.AttackerID)
	defender := s.findCountry(w.DefenderID)
	if winner.ID == w.AttackerID && loser.ID == w.DefenderID {
		n := int(math.Floor(0.3 * float64(defender.TerritoryCount())))
		if n > 3 {
			n = 3
		}
		if n > 0 {
			candidates := append([]world.TileCoord(nil), defender.Territories()...)
			entropy.Shuffle(s.RNG, candidates)
			if n > len(candidates) {
				n = len(candidates)
			}
			for _, tc := range candidates[:n] {
				s.transferTile(defender, attacker, tc)
			}
		}
	}
	if attacker != nil {
		attacker.AtWar = false
	}
	if defender != nil {
		defender.AtWar = false
	}
	s.Stats.TotalWars++
	s.Events.Emit(Event{
		Year:     s.Year,
		Message:  winner.Name + " defeated " + loser.Name,
		Category: CategoryWarEnded,
	})
}
