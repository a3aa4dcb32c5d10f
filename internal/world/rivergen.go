package world

import "github.com/atlasforge/chronicle/internal/entropy"

const (
	riverMinSourceElev = 0.3
	riverMaxSourceElev = 0.9
	riverMinMoisture   = 0.4
	riverMaxSteps      = 200
	riverMinKeptLen    = 10
)

// genRivers implements spec §4.3 step 6: trace N rivers from randomly
// chosen highland-and-wet sources downhill to the coast, a local minimum,
// another river, or a step cap.
func genRivers(w *World, seed uint32) {
	countStream := entropy.Sub(seed, phaseRiverCount)
	n := countStream.Int(80, 150)

	var candidates []Point
	for y := 0; y < MapH; y++ {
		for x := 0; x < MapW; x++ {
			idx := PixelIndex(x, y)
			elev := float64(w.Elevation[idx])
			moist := float64(w.Moisture[idx])
			if elev > riverMinSourceElev && elev < riverMaxSourceElev && moist > riverMinMoisture {
				candidates = append(candidates, Point{X: x, Y: y})
			}
		}
	}
	if len(candidates) == 0 {
		return
	}

	shuffleStream := entropy.Sub(seed, phaseRiverShuffle)
	entropy.Shuffle(shuffleStream, candidates)
	if n > len(candidates) {
		n = len(candidates)
	}
	sources := candidates[:n]

	owner := make([]int, MapW*MapH)
	for i := range owner {
		owner[i] = -1
	}

	for riverIdx, src := range sources {
		path := traceRiver(w, owner, src, riverIdx)
		if len(path) <= riverMinKeptLen {
			continue
		}
		for _, p := range path {
			pidx := PixelIndex(p.X, p.Y)
			if owner[pidx] == -1 {
				owner[pidx] = riverIdx
			}
			w.RiverMark[pidx] = 1
		}
		strength := float64(len(path)) / 100
		if strength > 1 {
			strength = 1
		}
		w.Rivers = append(w.Rivers, River{Points: path, Strength: strength})
	}
}

// traceRiver follows strictly-decreasing elevation from src until it
// reaches ocean, a local minimum, another river's claimed pixel, or the
// step cap. Ties among neighbors are broken in the fixed N, S, E, W order.
func traceRiver(w *World, owner []int, src Point, riverIdx int) []Point {
	path := []Point{src}
	visited := map[Point]bool{src: true}
	current := src

	for step := 0; step < riverMaxSteps; step++ {
		idx := PixelIndex(current.X, current.Y)
		if w.Elevation[idx] <= 0 {
			break // reached ocean; final point already appended
		}

		currentElev := float64(w.Elevation[idx])
		var next Point
		found := false
		bestElev := currentElev

		for _, d := range CardinalDirs {
			nx, ny := PixelNeighbor(current.X, current.Y, d)
			np := Point{X: nx, Y: ny}
			if visited[np] {
				continue
			}
			nElev := float64(w.Elevation[PixelIndex(nx, ny)])
			if nElev < bestElev {
				bestElev = nElev
				next = np
				found = true
			}
		}
		if !found {
			break // local minimum
		}

		nOwner := owner[PixelIndex(next.X, next.Y)]
		if nOwner != -1 && nOwner != riverIdx {
			break // merges into an existing, different river; don't overwrite
		}

		path = append(path, next)
		visited[next] = true
		current = next
	}

	return path
}
