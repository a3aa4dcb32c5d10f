package world

import "testing"

func TestGenerateDeterministic(t *testing.T) {
	a, err := Generate(GenConfig{Seed: 42})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	b, err := Generate(GenConfig{Seed: 42})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if len(a.Tiles) != len(b.Tiles) {
		t.Fatalf("tile count mismatch: %d vs %d", len(a.Tiles), len(b.Tiles))
	}
	for i := range a.Tiles {
		if a.Tiles[i] != b.Tiles[i] {
			t.Fatalf("tile %d differs between two generations of the same seed", i)
		}
	}
}

func TestGenerateDifferentSeedsDiverge(t *testing.T) {
	a, err := Generate(GenConfig{Seed: 1})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	b, err := Generate(GenConfig{Seed: 2})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	same := true
	for i := range a.Tiles {
		if a.Tiles[i] != b.Tiles[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatalf("different seeds produced an identical tile grid")
	}
}

func TestGenerateProducesFullGrid(t *testing.T) {
	w, err := Generate(GenConfig{Seed: 7})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(w.Elevation) != MapW*MapH {
		t.Fatalf("elevation field has %d entries, want %d", len(w.Elevation), MapW*MapH)
	}
	if len(w.Tiles) != TileW*TileH {
		t.Fatalf("tile grid has %d entries, want %d", len(w.Tiles), TileW*TileH)
	}
}

func TestGenerateHasHabitableLand(t *testing.T) {
	w, err := Generate(GenConfig{Seed: 42})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if w.HabitableTileCount() == 0 {
		t.Fatalf("seed 42 produced a world with no habitable tiles")
	}

	landCount, oceanCount := 0, 0
	for _, tile := range w.Tiles {
		if tile.IsLand {
			landCount++
		} else {
			oceanCount++
		}
	}
	if landCount == 0 || oceanCount == 0 {
		t.Fatalf("expected a mix of land and ocean tiles, got %d land, %d ocean", landCount, oceanCount)
	}
}

func TestTileAtWrapsAndClamps(t *testing.T) {
	w, err := Generate(GenConfig{Seed: 3})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	east := w.TileAt(TileW, 0)
	origin := w.TileAt(0, 0)
	if east.X != origin.X || east.Y != origin.Y {
		t.Fatalf("TileAt did not wrap x: got (%d,%d), want (%d,%d)", east.X, east.Y, origin.X, origin.Y)
	}

	south := w.TileAt(0, TileH+50)
	if south.Y != TileH-1 {
		t.Fatalf("TileAt did not clamp y: got %d, want %d", south.Y, TileH-1)
	}
}

func TestOceanTilesHaveNoHabitabilityAndAreNotLand(t *testing.T) {
	w, err := Generate(GenConfig{Seed: 42})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for _, tile := range w.Tiles {
		if !tile.IsLand && tile.Habitability != 0 {
			t.Fatalf("ocean tile (%d,%d) has nonzero habitability %v", tile.X, tile.Y, tile.Habitability)
		}
		if tile.Biome == BiomeOcean && tile.IsLand {
			t.Fatalf("ocean-biome tile (%d,%d) marked as land", tile.X, tile.Y)
		}
	}
}
