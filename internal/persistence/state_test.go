package persistence

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/atlasforge/chronicle/internal/engine"
	"github.com/atlasforge/chronicle/internal/simerr"
	"github.com/atlasforge/chronicle/internal/world"
)

func newTestSimulation(t *testing.T, seed uint32, ticks int) *engine.Simulation {
	t.Helper()
	w, err := world.Generate(world.GenConfig{Seed: seed})
	if err != nil {
		t.Fatalf("world.Generate: %v", err)
	}
	sim := engine.NewSimulation(seed, w)
	if err := sim.Initialize(); err != nil {
		t.Fatalf("sim.Initialize: %v", err)
	}
	for i := 0; i < ticks; i++ {
		if err := sim.Tick(); err != nil {
			t.Fatalf("sim.Tick: %v", err)
		}
	}
	return sim
}

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	sim := newTestSimulation(t, 42, 80)

	raw, err := Serialize(sim)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	loaded, err := Deserialize(raw)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}

	if loaded.Seed != sim.Seed {
		t.Errorf("seed = %d, want %d", loaded.Seed, sim.Seed)
	}
	if loaded.Year != sim.Year {
		t.Errorf("year = %d, want %d", loaded.Year, sim.Year)
	}
	if loaded.TechLevel != sim.TechLevel {
		t.Errorf("techLevel = %d, want %d", loaded.TechLevel, sim.TechLevel)
	}
	if len(loaded.Tribes) != len(sim.Tribes) {
		t.Fatalf("tribe count = %d, want %d", len(loaded.Tribes), len(sim.Tribes))
	}
	if len(loaded.Countries) != len(sim.Countries) {
		t.Fatalf("country count = %d, want %d", len(loaded.Countries), len(sim.Countries))
	}

	for i, tr := range sim.Tribes {
		got := loaded.Tribes[i]
		if got.ID != tr.ID || got.Culture != tr.Culture || got.Population != tr.Population {
			t.Errorf("tribe %d round-tripped incorrectly: got %+v, want id=%d culture=%s pop=%d",
				i, got, tr.ID, tr.Culture, tr.Population)
		}
		if len(got.Territories()) != len(tr.Territories()) {
			t.Errorf("tribe %d territory count = %d, want %d", i, len(got.Territories()), len(tr.Territories()))
		}
	}

	for i, c := range sim.Countries {
		got := loaded.Countries[i]
		if got.ID != c.ID || got.Population != c.Population || got.Leader.ID != c.Leader.ID {
			t.Errorf("country %d round-tripped incorrectly: got %+v, want id=%d pop=%d leaderID=%d",
				i, got, c.ID, c.Population, c.Leader.ID)
		}
		if len(got.Allies) != len(c.Allies) || len(got.Enemies) != len(c.Enemies) {
			t.Errorf("country %d allies/enemies count mismatch", i)
		}
	}
}

func TestDeserializeAllocatesIDsAboveLoadedMax(t *testing.T) {
	sim := newTestSimulation(t, 7, 200)
	raw, err := Serialize(sim)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	loaded, err := Deserialize(raw)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}

	next := loaded.IDs.Next()
	for _, tr := range loaded.Tribes {
		if next == tr.ID {
			t.Fatalf("newly allocated id %d collides with loaded tribe id", next)
		}
	}
	for _, c := range loaded.Countries {
		if next == c.ID {
			t.Fatalf("newly allocated id %d collides with loaded country id", next)
		}
		if next == c.Leader.ID {
			t.Fatalf("newly allocated id %d collides with loaded leader id", next)
		}
	}
}

func TestDeserializeRejectsInvalidJSON(t *testing.T) {
	_, err := Deserialize([]byte("not json"))
	if err == nil {
		t.Fatal("expected an error for invalid JSON")
	}
	if !errors.Is(err, simerr.ErrSaveCorrupt) {
		t.Fatalf("expected ErrSaveCorrupt, got %v", err)
	}
}

func TestDeserializeRejectsSchemaViolation(t *testing.T) {
	// Missing every required top-level field.
	_, err := Deserialize([]byte(`{}`))
	if err == nil {
		t.Fatal("expected a schema validation error for an empty object")
	}
	if !errors.Is(err, simerr.ErrSaveCorrupt) {
		t.Fatalf("expected ErrSaveCorrupt, got %v", err)
	}
}

func TestDeserializeRejectsDuplicateTerritory(t *testing.T) {
	sim := newTestSimulation(t, 1, 1)
	raw, err := Serialize(sim)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	tribes, _ := doc["tribes"].([]any)
	if len(tribes) < 2 {
		t.Skip("need at least two tribes to construct an overlap")
	}
	first := tribes[0].(map[string]any)
	second := tribes[1].(map[string]any)
	first["territories"] = second["territories"]

	corrupted, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	_, err = Deserialize(corrupted)
	if err == nil {
		t.Fatal("expected an error for overlapping territories")
	}
	if !errors.Is(err, simerr.ErrSaveCorrupt) {
		t.Fatalf("expected ErrSaveCorrupt, got %v", err)
	}
	if !strings.Contains(err.Error(), "claimed by more than one entity") {
		t.Fatalf("error %q does not mention the overlap", err.Error())
	}
}

func TestDeserializeRejectsUnknownAllyID(t *testing.T) {
	sim := newTestSimulation(t, 5, 300)
	raw, err := Serialize(sim)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	countries, _ := doc["countries"].([]any)
	if len(countries) == 0 {
		t.Skip("no countries formed in this run")
	}
	first := countries[0].(map[string]any)
	first["allies"] = []any{float64(999999)}

	corrupted, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	_, err = Deserialize(corrupted)
	if err == nil {
		t.Fatal("expected an error for an unknown ally id")
	}
	if !strings.Contains(err.Error(), "unknown ally id") {
		t.Fatalf("error %q does not mention the unknown ally", err.Error())
	}
}
