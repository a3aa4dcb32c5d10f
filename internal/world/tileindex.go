package world

import "math"

const (
	riverPresenceMajor = 0.5
	riverPresenceMinor = 0.2

	coastSearchRadius = 20
)

// genTileIndex implements spec §4.3 step 7: aggregate the dense pixel
// fields into the coarse Tile grid, one tile per 8x8 pixel block, and
// derive each tile's biome, climate zone, and resource/habitability
// scores from the aggregate.
func genTileIndex(w *World, seed uint32) {
	w.Tiles = make([]Tile, TileW*TileH)

	riverStrength := buildRiverStrengthIndex(w)

	for ty := 0; ty < TileH; ty++ {
		for tx := 0; tx < TileW; tx++ {
			px0, py0 := tx*pixelsPerTileX, ty*pixelsPerTileY

			var sumElev, sumTemp, sumRain float64
			minElev, maxElev := 1e9, -1e9
			maxRiver := 0.0
			n := 0

			for dy := 0; dy < pixelsPerTileY; dy++ {
				for dx := 0; dx < pixelsPerTileX; dx++ {
					x, y := px0+dx, py0+dy
					idx := PixelIndex(x, y)

					elev := float64(w.Elevation[idx])
					sumElev += elev
					sumTemp += float64(w.Temperature[idx])
					sumRain += float64(w.Moisture[idx])
					if elev < minElev {
						minElev = elev
					}
					if elev > maxElev {
						maxElev = elev
					}
					if s, ok := riverStrength[idx]; ok && s > maxRiver {
						maxRiver = s
					}
					n++
				}
			}

			t := &w.Tiles[TileIndexAt(tx, ty)]
			t.X, t.Y = tx, ty
			t.Elevation = sumElev / float64(n)
			t.Temperature = sumTemp / float64(n)
			t.Rainfall = sumRain / float64(n)
			t.Roughness = clamp01(maxElev - minElev)
			t.IsLand = t.Elevation > 0

			t.Biome = deriveBiome(t.Elevation, t.Temperature, t.Rainfall)
			t.ClimateZone = classifyClimate(t.Temperature)

			switch {
			case maxRiver >= riverPresenceMajor:
				t.RiverPresence = RiverMajor
			case maxRiver >= riverPresenceMinor:
				t.RiverPresence = RiverMinor
			default:
				t.RiverPresence = RiverNone
			}

			deriveResources(t)
		}
	}
}

// buildRiverStrengthIndex maps each pixel index touched by a river to that
// river's strength, keeping the strongest river when two overlap.
func buildRiverStrengthIndex(w *World) map[int]float64 {
	out := make(map[int]float64)
	for _, r := range w.Rivers {
		for _, p := range r.Points {
			idx := PixelIndex(p.X, p.Y)
			if cur, ok := out[idx]; !ok || r.Strength > cur {
				out[idx] = r.Strength
			}
		}
	}
	return out
}

// genDistanceToCoast implements spec §4.3 step 8: for every land tile, find
// the Euclidean distance (in tile units) to the nearest ocean tile inside
// the first Chebyshev ring that holds one, searching outward ring by ring
// up to a fixed cap.
func genDistanceToCoast(w *World, seed uint32) {
	for ty := 0; ty < TileH; ty++ {
		for tx := 0; tx < TileW; tx++ {
			t := &w.Tiles[TileIndexAt(tx, ty)]
			if !t.IsLand {
				t.DistanceToCoast = 0
				continue
			}
			t.DistanceToCoast = distanceToCoast(w, tx, ty)
		}
	}
}

// distanceToCoast finds the smallest Chebyshev ring containing an ocean
// tile, then rescans the whole block out to that ring for the nearest
// ocean tile by Euclidean distance. Tiles beyond that ring are not
// searched, so for rings of 3 or more the result can exceed the global
// nearest distance (a hit at ring corner (3,3) gives ~4.24 even when
// (4,0) in ring 4 is ocean, at distance 4).
func distanceToCoast(w *World, tx, ty int) float64 {
	r := 1
	for ; r <= coastSearchRadius; r++ {
		if ringHasOcean(w, tx, ty, r) {
			break
		}
	}
	if r > coastSearchRadius {
		return float64(coastSearchRadius)
	}

	best := math.Inf(1)
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			if !checkOceanAt(w, tx+dx, ty+dy) {
				continue
			}
			if d := math.Hypot(float64(dx), float64(dy)); d < best {
				best = d
			}
		}
	}
	return best
}

// ringHasOcean scans the square ring of Chebyshev radius r around (tx, ty)
// for an ocean tile.
func ringHasOcean(w *World, tx, ty, r int) bool {
	for dx := -r; dx <= r; dx++ {
		if checkOceanAt(w, tx+dx, ty-r) || checkOceanAt(w, tx+dx, ty+r) {
			return true
		}
	}
	for dy := -r + 1; dy <= r-1; dy++ {
		if checkOceanAt(w, tx-r, ty+dy) || checkOceanAt(w, tx+r, ty+dy) {
			return true
		}
	}
	return false
}

func checkOceanAt(w *World, x, y int) bool {
	yy := ClampTileY(y)
	if yy != y {
		return false // vertical edge of the map, not a real neighbor
	}
	xx := WrapTileX(x)
	return !w.Tiles[TileIndexAt(xx, yy)].IsLand
}
