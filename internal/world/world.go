package world

import (
	"fmt"
	"iter"
)

// World is the complete, immutable-after-generation output of WorldGen: the
// dense pixel fields plus the aggregated coarse Tile grid. See design doc
// Section 3 and Section 6 (External Interfaces).
type World struct {
	Seed uint32

	Elevation   []float32 // len MapW*MapH
	Temperature []float32
	Moisture    []float32
	RiverMark   []uint8

	Rivers []River
	Tiles  []Tile // len TileW*TileH
}

// GenConfig controls world generation. All fields have spec-fixed defaults;
// the config only exists so the CLI/tests can retarget the seed.
type GenConfig struct {
	Seed uint32
}

// Progress is one (fraction, label) checkpoint emitted between WorldGen
// pipeline steps, for an interactive host to show a progress indicator. See
// design doc Section 9: this is a pull-based lazy sequence, not a
// cooperative-scheduling callback — the driver consumes it at its own pace.
type Progress struct {
	Fraction float64
	Label    string
}

// Generate runs the full eight-step WorldGen pipeline synchronously and
// returns the finished World.
func Generate(cfg GenConfig) (*World, error) {
	w, steps := GenerateStaged(cfg)
	for _, err := range steps {
		if err != nil {
			return nil, err
		}
	}
	return w, nil
}

// GenerateStaged allocates a World and returns it alongside a pull-based
// sequence of progress checkpoints, one per pipeline step. Callers that
// want a progress bar range over the sequence and inspect w only after it
// is fully drained: every field is written in a fixed step order, and
// reading w mid-sequence would observe a half-built world, which spec §5
// forbids exposing to any observer. Generate above drains the sequence
// itself so ordinary callers never have to think about this.
func GenerateStaged(cfg GenConfig) (*World, iter.Seq2[Progress, error]) {
	w := &World{
		Seed:        cfg.Seed,
		Elevation:   make([]float32, MapW*MapH),
		Temperature: make([]float32, MapW*MapH),
		Moisture:    make([]float32, MapW*MapH),
		RiverMark:   make([]uint8, MapW*MapH),
	}

	steps := []struct {
		label string
		run   func(*World, uint32)
	}{
		{"base elevation", genBaseElevation},
		{"sea-level normalization", genSeaLevel},
		{"mountains", genMountains},
		{"temperature", genTemperature},
		{"moisture", genMoisture},
		{"rivers", genRivers},
		{"tile index", genTileIndex},
		{"distance to coast", genDistanceToCoast},
	}

	seq := func(yield func(Progress, error) bool) {
		for i, step := range steps {
			step.run(w, cfg.Seed)
			frac := float64(i+1) / float64(len(steps))
			label := step.label
			if i == len(steps)-1 {
				if err := validateWorld(w); err != nil {
					yield(Progress{Fraction: frac, Label: "invalid"}, err)
					return
				}
			}
			if !yield(Progress{Fraction: frac, Label: label}, nil) {
				return
			}
		}
	}

	return w, seq
}

// validateWorld runs the cheap structural sanity checks that must hold for
// any generated world regardless of seed.
func validateWorld(w *World) error {
	if len(w.Elevation) != MapW*MapH {
		return fmt.Errorf("worldgen: elevation field has %d entries, want %d", len(w.Elevation), MapW*MapH)
	}
	if len(w.Tiles) != TileW*TileH {
		return fmt.Errorf("worldgen: tile grid has %d entries, want %d", len(w.Tiles), TileW*TileH)
	}
	return nil
}

// TileAt returns the tile at wrapped/clamped tile coordinates.
func (w *World) TileAt(x, y int) *Tile {
	return &w.Tiles[TileIndexAt(WrapTileX(x), ClampTileY(y))]
}
