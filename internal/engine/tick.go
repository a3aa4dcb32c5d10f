package engine

import (
	"github.com/atlasforge/chronicle/internal/simerr"
)

// techCheckIntervalYears and the tech-score formula implement spec §4.8
// step 5.
const techCheckIntervalYears = 100
const maxTechLevel = 10

// Tick advances the simulation by exactly one year, in the mandatory order
// of spec §4.8/§5: tribes, countries, wars, AI global state, then (every
// 100 years) the tech-score check. The whole tick is atomic — it never
// exposes partial state to a caller, and it never touches the wall clock.
//
// A LogicViolation panic raised anywhere inside the tick is recovered
// here, converted to a returned error, and halts the simulation: no
// further ticks are accepted once Halted is set, per spec §7's fail-fast
// policy for invariant violations.
func (s *Simulation) Tick() (err error) {
	if s.Halted {
		return s.HaltError
	}

	defer func() {
		if r := recover(); r != nil {
			lv, ok := r.(*simerr.LogicViolation)
			if !ok {
				panic(r)
			}
			s.Halted = true
			s.HaltError = lv
			err = lv
		}
	}()

	s.Year++

	s.TickTribes()
	s.TickCountries()
	s.AdvanceWars()
	s.AI.DecayTension()

	if s.Year%techCheckIntervalYears == 0 {
		s.runTechCheck()
	}

	s.logDecadeSummary()
	return nil
}

// runTechCheck implements spec §4.8 step 5: every 100 years, a global
// tech-score comparison may bump the shared tech level, which is then
// pushed to every surviving country.
func (s *Simulation) runTechCheck() {
	totalPop := 0
	for _, t := range s.Tribes {
		totalPop += t.Population
	}
	for _, c := range s.Countries {
		totalPop += c.Population
	}

	score := float64(totalPop)/10000 + 10*float64(len(s.Countries)) + 5*float64(s.Stats.TotalWars)
	if score > float64(s.TechLevel)*1000 && s.TechLevel < maxTechLevel && s.RNG.Bool(0.1) {
		s.TechLevel++
		for _, c := range s.Countries {
			c.TechLevel = s.TechLevel
		}
		s.Events.Emit(Event{
			Year:     s.Year,
			Message:  "global technology level advanced",
			Category: CategoryTechAdvancement,
		})
	}
}
