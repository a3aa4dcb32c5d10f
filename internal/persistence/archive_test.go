package persistence

import (
	"path/filepath"
	"testing"

	"github.com/atlasforge/chronicle/internal/engine"
)

func openTestArchive(t *testing.T) *Archive {
	t.Helper()
	path := filepath.Join(t.TempDir(), "archive.db")
	a, err := OpenArchive(path)
	if err != nil {
		t.Fatalf("OpenArchive: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func TestArchiveAppendAndRecentEvents(t *testing.T) {
	a := openTestArchive(t)

	events := []engine.Event{
		{Year: 10, Message: "first tribe founded", Category: engine.CategoryTribeFormed, Location: &engine.Location{X: 3, Y: 4}},
		{Year: 12, Message: "war declared", Category: engine.CategoryWarDeclared},
	}
	if err := a.AppendEvents(events); err != nil {
		t.Fatalf("AppendEvents: %v", err)
	}

	got, err := a.RecentEvents(10)
	if err != nil {
		t.Fatalf("RecentEvents: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("RecentEvents returned %d events, want 2", len(got))
	}
	// Newest first.
	if got[0].Message != "war declared" || got[1].Message != "first tribe founded" {
		t.Fatalf("unexpected event order: %+v", got)
	}
	if got[1].Location == nil || got[1].Location.X != 3 || got[1].Location.Y != 4 {
		t.Fatalf("location did not round-trip: %+v", got[1].Location)
	}
	if got[0].Location != nil {
		t.Fatalf("event without a location should decode with a nil Location, got %+v", got[0].Location)
	}
}

func TestArchiveAppendEventsIsAppendOnly(t *testing.T) {
	a := openTestArchive(t)

	if err := a.AppendEvents([]engine.Event{{Year: 1, Message: "a", Category: engine.CategoryTribeFormed}}); err != nil {
		t.Fatalf("AppendEvents: %v", err)
	}
	if err := a.AppendEvents([]engine.Event{{Year: 2, Message: "b", Category: engine.CategoryTribeFormed}}); err != nil {
		t.Fatalf("AppendEvents: %v", err)
	}

	got, err := a.RecentEvents(10)
	if err != nil {
		t.Fatalf("RecentEvents: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected both appended batches to survive, got %d events", len(got))
	}
}

func TestArchiveSnapshotRoundTrip(t *testing.T) {
	a := openTestArchive(t)
	sim := newTestSimulation(t, 42, 60)

	if err := a.SaveSnapshot(sim, 1000); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	raw, err := a.LoadSnapshot(sim.Year)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}

	loaded, err := Deserialize(raw)
	if err != nil {
		t.Fatalf("Deserialize snapshot: %v", err)
	}
	if loaded.Year != sim.Year || loaded.Seed != sim.Seed {
		t.Fatalf("loaded snapshot (seed=%d year=%d) does not match original (seed=%d year=%d)",
			loaded.Seed, loaded.Year, sim.Seed, sim.Year)
	}
}

func TestArchiveLoadSnapshotPicksNearestAtOrBeforeYear(t *testing.T) {
	a := openTestArchive(t)
	sim := newTestSimulation(t, 42, 60)

	if err := a.SaveSnapshot(sim, 1000); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	earlyYear := sim.Year

	for i := 0; i < 40; i++ {
		if err := sim.Tick(); err != nil {
			t.Fatalf("Tick: %v", err)
		}
	}
	if err := a.SaveSnapshot(sim, 2000); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	raw, err := a.LoadSnapshot(earlyYear)
	if err != nil {
		t.Fatalf("LoadSnapshot(%d): %v", earlyYear, err)
	}
	loaded, err := Deserialize(raw)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if loaded.Year != earlyYear {
		t.Fatalf("LoadSnapshot(%d) returned snapshot from year %d, want the earlier snapshot", earlyYear, loaded.Year)
	}
}
