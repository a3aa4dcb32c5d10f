package engine

import (
	"testing"

	"github.com/atlasforge/chronicle/internal/entities"
	"github.com/atlasforge/chronicle/internal/entropy"
	"github.com/atlasforge/chronicle/internal/world"
)

func makeCountry(id entities.ID, x, y, population int, traits entities.Traits) *entities.Country {
	t := entities.NewTribe(entities.ID(id), "Test", "#000", x, y, entities.Leader{Traits: traits})
	t.Population = population
	c := entities.FromTribe(entities.ID(id)+1000, t)
	c.Population = population
	c.Leader = entities.Leader{Traits: traits}
	return c
}

// TestWarTerminationForcesAWinner mirrors spec §8 scenario 4: a heavily
// aggressive, populous attacker against a weak defender ends the war with
// the attacker victorious well within the bounded number of ticks.
func TestWarTerminationForcesAWinner(t *testing.T) {
	sim := &Simulation{
		RNG:    entropy.New(1),
		IDs:    entities.NewIDGenerator(),
		Wars:   NewWarManager(),
		AI:     NewCountryAI(),
		Events: NewEventLog(),
	}

	a := makeCountry(1, 0, 0, 10000, entities.Traits{Aggression: 1.0, Caution: 0.0})
	b := makeCountry(2, 1, 0, 100, entities.Traits{})
	sim.Countries = []*entities.Country{a, b}

	sim.Wars.DeclareWar(a, b)

	for i := 0; i < 100; i++ {
		sim.Year++
		sim.AdvanceWars()
		if len(sim.Wars.Active) == 0 {
			break
		}
	}

	if len(sim.Wars.Active) != 0 {
		t.Fatal("war did not terminate within 100 ticks")
	}

	foundWarEnded := false
	for _, e := range sim.Events.Surface() {
		if e.Category == CategoryWarEnded {
			foundWarEnded = true
		}
	}
	if !foundWarEnded {
		t.Fatal("expected a warEnded event")
	}
}

// TestWarTerminationBoundedByExhaustion checks spec §8's bound: with
// exhaustion accruing at >= 0.03/tick, a pure stalemate cannot run past 34
// ticks.
func TestWarTerminationBoundedByExhaustion(t *testing.T) {
	sim := &Simulation{
		RNG:    entropy.New(2),
		IDs:    entities.NewIDGenerator(),
		Wars:   NewWarManager(),
		AI:     NewCountryAI(),
		Events: NewEventLog(),
	}

	a := makeCountry(1, 0, 0, 5000, entities.Traits{})
	b := makeCountry(2, 1, 0, 5000, entities.Traits{})
	a.AddTerritory(world.TileCoord{X: 10, Y: 10})
	b.AddTerritory(world.TileCoord{X: 20, Y: 20})
	sim.Countries = []*entities.Country{a, b}
	sim.Wars.DeclareWar(a, b)

	const bound = 34
	for i := 0; i < bound; i++ {
		sim.Year++
		sim.AdvanceWars()
		if len(sim.Wars.Active) == 0 {
			return
		}
	}
	t.Fatalf("war outlived the %d-tick exhaustion bound", bound)
}

// TestAttemptAnnexationTransfersOneTile exercises spec §4.6's conquest
// path directly, checking the conservation property of spec §8: attacker
// gains exactly what defender loses.
func TestAttemptAnnexationTransfersOneTile(t *testing.T) {
	sim := &Simulation{
		RNG:    entropy.New(5),
		IDs:    entities.NewIDGenerator(),
		Wars:   NewWarManager(),
		AI:     NewCountryAI(),
		Events: NewEventLog(),
	}
	a := makeCountry(1, 0, 0, 1000, entities.Traits{})
	b := makeCountry(2, 1, 0, 1000, entities.Traits{})
	b.AddTerritory(world.TileCoord{X: 2, Y: 0})
	sim.Countries = []*entities.Country{a, b}

	beforeA, beforeB := a.TerritoryCount(), b.TerritoryCount()
	for i := 0; i < 50 && a.TerritoryCount() == beforeA; i++ {
		sim.attemptAnnexation(a, b, 1)
	}
	if a.TerritoryCount() != beforeA+1 || b.TerritoryCount() != beforeB-1 {
		t.Fatalf("annexation did not conserve tiles: a %d->%d, b %d->%d",
			beforeA, a.TerritoryCount(), beforeB, b.TerritoryCount())
	}
}
