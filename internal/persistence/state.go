// Package persistence provides the pure JSON save format of spec §6, plus
// a SQLite-backed archive for latent events and snapshot history. The two
// halves are independent: state.go here never touches SQLite, and
// archive.go never touches the JSON schema.
package persistence

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/atlasforge/chronicle/internal/engine"
	"github.com/atlasforge/chronicle/internal/entities"
	"github.com/atlasforge/chronicle/internal/simerr"
	"github.com/atlasforge/chronicle/internal/world"
)

//go:embed schema/state.schema.json
var stateSchemaJSON string

var stateSchema *jsonschema.Schema

func init() {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("chronicle-state.schema.json", strings.NewReader(stateSchemaJSON)); err != nil {
		panic(fmt.Sprintf("persistence: embedded schema is invalid: %v", err))
	}
	s, err := compiler.Compile("chronicle-state.schema.json")
	if err != nil {
		panic(fmt.Sprintf("persistence: embedded schema failed to compile: %v", err))
	}
	stateSchema = s
}

// pointDoc, traitsDoc, leaderDoc, cityDoc, tribeDoc, countryDoc, statsDoc,
// and stateDoc mirror schema/state.schema.json exactly.

type pointDoc struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type traitsDoc struct {
	Aggression  float64 `json:"aggression"`
	Caution     float64 `json:"caution"`
	Diplomacy   float64 `json:"diplomacy"`
	Ambition    float64 `json:"ambition"`
	Freedom     float64 `json:"freedom"`
	Rationality float64 `json:"rationality"`
}

type leaderDoc struct {
	ID           uint64    `json:"id"`
	Name         string    `json:"name"`
	Age          int       `json:"age"`
	YearsInPower int       `json:"yearsInPower"`
	Traits       traitsDoc `json:"traits"`
}

type cityDoc struct {
	ID         uint64 `json:"id"`
	Name       string `json:"name"`
	X          int    `json:"x"`
	Y          int    `json:"y"`
	Population int    `json:"population"`
	IsCapital  bool   `json:"isCapital"`
}

type tribeDoc struct {
	ID          uint64     `json:"id"`
	Culture     string     `json:"culture"`
	Color       string     `json:"color"`
	Population  int        `json:"population"`
	Age         int        `json:"age"`
	Territories []pointDoc `json:"territories"`
	X           int        `json:"x"`
	Y           int        `json:"y"`
}

type countryDoc struct {
	ID          uint64     `json:"id"`
	Culture     string     `json:"culture"`
	Color       string     `json:"color"`
	Population  int        `json:"population"`
	Age         int        `json:"age"`
	Territories []pointDoc `json:"territories"`
	X           int        `json:"x"`
	Y           int        `json:"y"`

	CapitalX   int       `json:"capitalX"`
	CapitalY   int       `json:"capitalY"`
	Cities     []cityDoc `json:"cities"`
	Leader     leaderDoc `json:"leader"`
	Government string    `json:"government"`
	TechLevel  int       `json:"techLevel"`
	Unrest     float64   `json:"unrest"`
	AtWar      bool      `json:"atWar"`
	Allies     []uint64  `json:"allies"`
	Enemies    []uint64  `json:"enemies"`
}

type statsDoc struct {
	TotalDeaths        int `json:"totalDeaths"`
	TotalWars          int `json:"totalWars"`
	TotalCivilizations int `json:"totalCivilizations"`
}

type stateDoc struct {
	Version   int          `json:"version"`
	Seed      uint32       `json:"seed"`
	Year      int          `json:"year"`
	TechLevel int          `json:"techLevel"`
	Tribes    []tribeDoc   `json:"tribes"`
	Countries []countryDoc `json:"countries"`
	Stats     statsDoc     `json:"stats"`
	Timestamp int64        `json:"timestamp"`
}

// Serialize produces the exact §6 JSON object for sim. The dense world
// fields are never included — a load regenerates them from seed.
func Serialize(sim *engine.Simulation) ([]byte, error) {
	doc := stateDoc{
		Version:   1,
		Seed:      sim.Seed,
		Year:      sim.Year,
		TechLevel: sim.TechLevel,
		Stats: statsDoc{
			TotalDeaths:        sim.Stats.TotalDeaths,
			TotalWars:          sim.Stats.TotalWars,
			TotalCivilizations: sim.Stats.TotalCivilizations,
		},
		Timestamp: nowMs(),
		Tribes:    []tribeDoc{},
		Countries: []countryDoc{},
	}
	for _, t := range sim.Tribes {
		doc.Tribes = append(doc.Tribes, tribeToDoc(t))
	}
	for _, c := range sim.Countries {
		doc.Countries = append(doc.Countries, countryToDoc(c))
	}
	return json.Marshal(doc)
}

func tribeToDoc(t *entities.Tribe) tribeDoc {
	td := tribeDoc{
		ID:         uint64(t.ID),
		Culture:    t.Culture,
		Color:      t.Color,
		Population: t.Population,
		Age:        t.Age,
		X:          t.X,
		Y:          t.Y,

		Territories: []pointDoc{},
	}
	for _, tc := range t.Territories() {
		td.Territories = append(td.Territories, pointDoc{X: tc.X, Y: tc.Y})
	}
	return td
}

func countryToDoc(c *entities.Country) countryDoc {
	cd := countryDoc{
		ID:         uint64(c.ID),
		Culture:    c.Name,
		Color:      c.Color,
		Population: c.Population,
		Age:        c.Age,
		X:          c.CapitalX,
		Y:          c.CapitalY,
		CapitalX:   c.CapitalX,
		CapitalY:   c.CapitalY,
		Government: c.Government,
		TechLevel:  c.TechLevel,
		Unrest:     c.Unrest,
		AtWar:      c.AtWar,
		Leader: leaderDoc{
			ID:           uint64(c.Leader.ID),
			Name:         c.Leader.Name,
			Age:          c.Leader.Age,
			YearsInPower: c.Leader.YearsInPower,
			Traits: traitsDoc{
				Aggression:  c.Leader.Traits.Aggression,
				Caution:     c.Leader.Traits.Caution,
				Diplomacy:   c.Leader.Traits.Diplomacy,
				Ambition:    c.Leader.Traits.Ambition,
				Freedom:     c.Leader.Traits.Freedom,
				Rationality: c.Leader.Traits.Rationality,
			},
		},
		Territories: []pointDoc{},
		Cities:      []cityDoc{},
		Allies:      []uint64{},
		Enemies:     []uint64{},
	}
	for _, tc := range c.Territories() {
		cd.Territories = append(cd.Territories, pointDoc{X: tc.X, Y: tc.Y})
	}
	for _, city := range c.Cities {
		cd.Cities = append(cd.Cities, cityDoc{
			ID: uint64(city.ID), Name: city.Name, X: city.X, Y: city.Y,
			Population: city.Population, IsCapital: city.IsCapital,
		})
	}
	for _, id := range c.Allies {
		cd.Allies = append(cd.Allies, uint64(id))
	}
	for _, id := range c.Enemies {
		cd.Enemies = append(cd.Enemies, uint64(id))
	}
	return cd
}

// Deserialize validates data against the embedded schema, decodes it, runs
// the spec §3 invariant checks, and — only if every check passes —
// regenerates the world from the embedded seed and returns a fresh
// Simulation. Any failure returns simerr.ErrSaveCorrupt (wrapped with a
// reason) and no Simulation; nothing about a caller's currently-running
// simulation is touched, since this never receives one to mutate.
func Deserialize(data []byte) (*engine.Simulation, error) {
	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return nil, simerr.WrapSaveCorrupt("not valid JSON: " + err.Error())
	}
	if err := stateSchema.Validate(generic); err != nil {
		return nil, simerr.WrapSaveCorrupt("schema validation failed: " + err.Error())
	}

	var doc stateDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, simerr.WrapSaveCorrupt("decode failed after schema passed: " + err.Error())
	}
	if err := checkInvariants(doc); err != nil {
		return nil, simerr.WrapSaveCorrupt(err.Error())
	}

	w, err := world.Generate(world.GenConfig{Seed: doc.Seed})
	if err != nil {
		return nil, fmt.Errorf("persistence: regenerate world from seed %d: %w", doc.Seed, err)
	}

	sim := engine.NewSimulation(doc.Seed, w)
	sim.Year = doc.Year
	sim.TechLevel = doc.TechLevel
	sim.Stats = engine.Stats{
		TotalDeaths:        doc.Stats.TotalDeaths,
		TotalWars:          doc.Stats.TotalWars,
		TotalCivilizations: doc.Stats.TotalCivilizations,
	}
	maxID := entities.ID(0)
	for _, td := range doc.Tribes {
		t := docToTribe(td)
		sim.Tribes = append(sim.Tribes, t)
		if t.ID > maxID {
			maxID = t.ID
		}
	}
	for _, cd := range doc.Countries {
		c := docToCountry(cd)
		sim.Countries = append(sim.Countries, c)
		if c.ID > maxID {
			maxID = c.ID
		}
		if c.Leader.ID > maxID {
			maxID = c.Leader.ID
		}
		for _, city := range c.Cities {
			if city.ID > maxID {
				maxID = city.ID
			}
		}
	}
	sim.IDs = entities.NewIDGeneratorFrom(maxID + 1)

	return sim, nil
}

func docToTribe(td tribeDoc) *entities.Tribe {
	t := entities.NewTribe(entities.ID(td.ID), td.Culture, td.Color, td.X, td.Y, entities.Leader{})
	t.Population = td.Population
	t.Age = td.Age
	// NewTribe seeds a single territory at (x,y); clear it before restoring
	// the saved set so a save with a relocated tribe round-trips exactly.
	for _, tc := range t.Territories() {
		t.RemoveTerritory(tc)
	}
	// The save format tracks territories, not the Settled flag directly
	// (spec §6 leaves it derived): a live tribe can only exceed the
	// unsettled cap after settling, so more than that many saved tiles
	// means it must have been settled.
	if len(td.Territories) > entities.UnsettledTerritoryCap {
		t.Settled = true
	}
	for _, p := range td.Territories {
		t.AddTerritory(world.TileCoord{X: p.X, Y: p.Y})
	}
	return t
}

func docToCountry(cd countryDoc) *entities.Country {
	base := entities.NewTribe(entities.ID(cd.ID), cd.Culture, cd.Color, cd.CapitalX, cd.CapitalY, entities.Leader{})
	base.Population = cd.Population
	base.Age = cd.Age
	c := entities.FromTribe(entities.ID(cd.ID), base)
	for _, tc := range c.Territories() {
		c.RemoveTerritory(tc)
	}
	for _, p := range cd.Territories {
		c.AddTerritory(world.TileCoord{X: p.X, Y: p.Y})
	}
	c.Name = cd.Culture
	c.Government = cd.Government
	c.TechLevel = cd.TechLevel
	c.Unrest = cd.Unrest
	c.AtWar = cd.AtWar
	c.Leader = entities.Leader{
		ID:           entities.ID(cd.Leader.ID),
		Name:         cd.Leader.Name,
		Age:          cd.Leader.Age,
		YearsInPower: cd.Leader.YearsInPower,
		Traits: entities.Traits{
			Aggression:  cd.Leader.Traits.Aggression,
			Caution:     cd.Leader.Traits.Caution,
			Diplomacy:   cd.Leader.Traits.Diplomacy,
			Ambition:    cd.Leader.Traits.Ambition,
			Freedom:     cd.Leader.Traits.Freedom,
			Rationality: cd.Leader.Traits.Rationality,
		},
	}
	for _, cid := range cd.Allies {
		c.Allies = append(c.Allies, entities.ID(cid))
	}
	for _, cid := range cd.Enemies {
		c.Enemies = append(c.Enemies, entities.ID(cid))
	}
	for _, city := range cd.Cities {
		c.Cities = append(c.Cities, entities.City{
			ID: entities.ID(city.ID), Name: city.Name, X: city.X, Y: city.Y,
			Population: city.Population, IsCapital: city.IsCapital,
		})
	}
	return c
}

// checkInvariants runs the spec §3 checks Deserialize applies before ever
// constructing live entities: ownership disjointness across the whole
// save, and every allies/enemies id resolving to a country present in the
// same file.
func checkInvariants(doc stateDoc) error {
	seen := make(map[pointDoc]bool)
	for _, t := range doc.Tribes {
		for _, p := range t.Territories {
			if seen[p] {
				return fmt.Errorf("tile (%d,%d) is claimed by more than one entity", p.X, p.Y)
			}
			seen[p] = true
		}
	}
	countryIDs := make(map[uint64]bool, len(doc.Countries))
	for _, c := range doc.Countries {
		countryIDs[c.ID] = true
	}
	for _, c := range doc.Countries {
		for _, p := range c.Territories {
			if seen[p] {
				return fmt.Errorf("tile (%d,%d) is claimed by more than one entity", p.X, p.Y)
			}
			seen[p] = true
		}
		for _, aid := range c.Allies {
			if !countryIDs[aid] {
				return fmt.Errorf("country %d references unknown ally id %d", c.ID, aid)
			}
		}
		for _, eid := range c.Enemies {
			if !countryIDs[eid] {
				return fmt.Errorf("country %d references unknown enemy id %d", c.ID, eid)
			}
		}
	}
	return nil
}

func nowMs() int64 {
	return time.Now().UnixMilli()
}
