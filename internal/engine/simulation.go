// Package engine drives the yearly tick loop over tribes, countries, wars,
// and AI decisions, and owns every piece of mutable simulation state. See
// design doc Section 4.8 and Section 5.
package engine

import (
	"log/slog"

	"github.com/atlasforge/chronicle/internal/entities"
	"github.com/atlasforge/chronicle/internal/entropy"
	"github.com/atlasforge/chronicle/internal/simerr"
	"github.com/atlasforge/chronicle/internal/world"
)

// Speed selects the tick cadence an interactive driver should use. The
// core never sleeps itself — ShouldTick tells the driver whether enough
// wall-clock time has passed to run another tick at the current speed.
type Speed int

const (
	SpeedPaused Speed = iota
	Speed1
	Speed2
	Speed3
	Speed4
)

// TickIntervalsMs are the spec-fixed tick intervals in milliseconds, index
// by Speed.
var TickIntervalsMs = [...]int64{SpeedPaused: 0, Speed1: 2000, Speed2: 600, Speed3: 200, Speed4: 50}

// minInitialTribes and maxInitialTribes bound Simulation.Initialize's
// tribe count, and placementAttemptBudget bounds rejection-sampling
// attempts per tribe — spec §4.8/§8 scenario 1.
const (
	minInitialTribes       = 10
	maxInitialTribes       = 16
	placementAttemptBudget = 100
	maxTotalTribes         = 600 // spec §4.4 splitting hard cap
)

// Stats accumulates run-wide counters surfaced by GetState.
type Stats struct {
	TotalDeaths        int
	TotalWars          int
	TotalCivilizations int
}

// Simulation owns every mutable piece of state: the immutable World, the
// live entity collections, the PRNG, the war manager, the AI, and the
// event log. No process-wide singletons — an interactive host holds one
// Simulation and reads it through GetState.
type Simulation struct {
	Seed uint32
	Year int

	World *world.World
	RNG   *entropy.Stream
	IDs   *entities.IDGenerator

	Tribes    []*entities.Tribe
	Countries []*entities.Country

	Wars *WarManager
	AI   *CountryAI

	Events *EventLog
	Stats  Stats

	TechLevel int
	Speed     Speed

	// Halted is set once a LogicViolation panic is recovered by Tick; no
	// further ticks are accepted after that, per spec §7's fail-fast
	// policy for invariant violations.
	Halted    bool
	HaltError error

	lastTickAtMs int64
	cultureNames []string
}

// NewSimulation constructs a Simulation over an already-generated world,
// ready for Initialize.
func NewSimulation(seed uint32, w *world.World) *Simulation {
	rng := entropy.Sub(seed, tickRNGPhase)
	return &Simulation{
		Seed:         seed,
		World:        w,
		RNG:          rng,
		IDs:          entities.NewIDGenerator(),
		Wars:         NewWarManager(),
		AI:           NewCountryAI(),
		Events:       NewEventLog(),
		cultureNames: defaultCultureNames,
	}
}

// tickRNGPhase is the sub-stream index the running simulation draws from
// for everything after WorldGen. WorldGen owns phases 0-8 (see
// internal/world/elevation.go); the simulation gets its own so tick
// behavior never contends with, or depends on, world-generation draws.
const tickRNGPhase = 100

// Initialize places between minInitialTribes and maxInitialTribes tribes
// on habitable land, per spec §4.8. Returns simerr.ErrWorldUninhabitable if
// the world cannot support the minimum count within the rejection-sampling
// budget.
func (s *Simulation) Initialize() error {
	n := s.RNG.Int(minInitialTribes, maxInitialTribes)

	firstNew := len(s.Tribes)
	placed := 0
	for i := 0; i < n; i++ {
		tc, ok := s.placeTribe(i + 1)
		if !ok {
			continue
		}
		_ = tc
		placed++
	}

	if placed < minInitialTribes {
		return simerr.ErrWorldUninhabitable
	}

	// Leader ids are handed out only after every tribe placed by this call
	// already has one, so a fresh run's tribe ids stay the contiguous
	// 1..N sequence spec §8 scenario 1 names ("tribe_1..tribe_16") instead
	// of interleaving with the leaders' ids.
	for _, t := range s.Tribes[firstNew:] {
		t.Leader.ID = s.IDs.Next()
	}
	return nil
}

// placeTribe attempts to place one founding tribe via rejection sampling
// against habitable, unclaimed land tiles, up to placementAttemptBudget
// tries. seq is the tribe's 1-based position in the batch and does not
// affect placement or naming. The
// tribe's leader is placed with a zero id; Initialize assigns real leader
// ids in a second pass once every tribe in the batch is placed.
func (s *Simulation) placeTribe(seq int) (world.TileCoord, bool) {
	for attempt := 0; attempt < placementAttemptBudget; attempt++ {
		tc, ok := s.World.RandomHabitableTile(s.RNG)
		if !ok {
			return world.TileCoord{}, false
		}
		if s.tileOwned(tc) {
			continue
		}

		culture := entropy.Choice(s.RNG, s.cultureNames)
		id := s.IDs.Next()
		leader := entities.NewLeader(0, culture+" the First", s.RNG)
		tribe := entities.NewTribe(id, culture, randomColor(s.RNG), tc.X, tc.Y, leader)
		s.Tribes = append(s.Tribes, tribe)

		s.Events.Emit(Event{
			Year:     s.Year,
			Message:  culture + " tribe formed",
			Location: &Location{X: tc.X, Y: tc.Y},
			Category: CategoryTribeFormed,
		})
		return tc, true
	}
	return world.TileCoord{}, false
}

// tileOwned reports whether any tribe or country already claims tc — the
// ownership-disjointness invariant of spec §3, checked immediately before
// every write per spec §5's "check-then-set is atomic by construction"
// guarantee (the whole tick is single-threaded).
func (s *Simulation) tileOwned(tc world.TileCoord) bool {
	for _, t := range s.Tribes {
		if t.HasTerritory(tc) {
			return true
		}
	}
	for _, c := range s.Countries {
		if c.HasTerritory(tc) {
			return true
		}
	}
	return false
}

// SetSpeed changes the tick cadence a driver should use.
func (s *Simulation) SetSpeed(sp Speed) {
	s.Speed = sp
}

// ShouldTick reports whether at least one tick interval has elapsed since
// the last tick at the current speed, given the driver's own clock reading
// nowMs — the core never reads the wall clock itself. A true result
// consumes the interval (resets the internal clock to nowMs), so callers
// must actually run a tick before calling ShouldTick again.
func (s *Simulation) ShouldTick(nowMs int64) bool {
	if s.Speed == SpeedPaused {
		return false
	}
	interval := TickIntervalsMs[s.Speed]
	if nowMs-s.lastTickAtMs < interval {
		return false
	}
	s.lastTickAtMs = nowMs
	return true
}

// State is the read-only snapshot GetState returns.
type State struct {
	Year            int
	Tribes          int
	Countries       int
	TechLevel       int
	ActiveWars      int
	TotalPopulation int
}

// GetState summarizes the current simulation for an external observer.
func (s *Simulation) GetState() State {
	total := 0
	for _, t := range s.Tribes {
		total += t.Population
	}
	for _, c := range s.Countries {
		total += c.Population
	}
	return State{
		Year:            s.Year,
		Tribes:          len(s.Tribes),
		Countries:       len(s.Countries),
		TechLevel:       s.TechLevel,
		ActiveWars:      len(s.Wars.Active),
		TotalPopulation: total,
	}
}

var defaultCultureNames = []string{
	"Kelun", "Sarvane", "Odhrim", "Tessuk", "Varnith",
	"Ilmara", "Corvex", "Njalla", "Ashkuri", "Draveth",
	"Miruen", "Bastok", "Quelvane", "Torhaal", "Enzari",
	"Ysolde", "Karrun", "Vethmar", "Solgash", "Ambrune",
}

func randomColor(s *entropy.Stream) string {
	const hex = "0123456789abcdef"
	b := make([]byte, 6)
	for i := range b {
		b[i] = hex[s.Int(0, 15)]
	}
	return "#" + string(b)
}

// logDecadeSummary logs a per-decade summary at Info level, matching the
// teacher's daily/weekly summary cadence in TickDay/TickWeek — frequent
// enough to be useful, sparse enough not to flood.
func (s *Simulation) logDecadeSummary() {
	if s.Year%10 != 0 {
		return
	}
	slog.Info("decade summary",
		"year", s.Year,
		"tribes", len(s.Tribes),
		"countries", len(s.Countries),
		"wars", len(s.Wars.Active),
		"techLevel", s.TechLevel,
	)
}
