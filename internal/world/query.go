package world

import "github.com/atlasforge/chronicle/internal/entropy"

// minHabitability is the floor a tile must clear to be offered as an
// initial tribe placement candidate.
const minHabitability = 0.25

// RandomHabitableTile picks a uniformly random land tile with habitability
// at or above minHabitability, by collecting every qualifying tile in the
// grid and choosing one of them with a single draw. Returns false if no tile in the world clears the floor, which the
// caller surfaces as an uninhabitable-world failure.
func (w *World) RandomHabitableTile(s *entropy.Stream) (TileCoord, bool) {
	var candidates []TileCoord
	for i, t := range w.Tiles {
		if t.IsLand && t.Habitability >= minHabitability {
			candidates = append(candidates, TileCoord{X: i % TileW, Y: i / TileW})
		}
	}
	if len(candidates) == 0 {
		return TileCoord{}, false
	}
	return entropy.Choice(s, candidates), true
}

// HabitableTileCount returns how many land tiles clear minHabitability,
// the same candidate set RandomHabitableTile chooses from.
func (w *World) HabitableTileCount() int {
	n := 0
	for _, t := range w.Tiles {
		if t.IsLand && t.Habitability >= minHabitability {
			n++
		}
	}
	return n
}
