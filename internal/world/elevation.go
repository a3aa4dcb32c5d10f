package world

import (
	"math"
	"sort"

	"github.com/atlasforge/chronicle/internal/entropy"
	"github.com/atlasforge/chronicle/internal/noise"
)

// Noise phase indices. Each WorldGen field gets its own sub-stream derived
// from the master seed (spec §5) so phases never share PRNG state.
const (
	phaseContinental = iota
	phaseTerrain
	phaseDetail
	phaseMountainRidge
	phaseContinentalMask
	phaseTempJitter
	phaseMoisture
	phaseRiverCount
	phaseRiverShuffle
)

func phaseNoise(seed uint32, phase int) *noise.Generator {
	return noise.NewFromStream(entropy.Sub(seed, phase))
}

// uv maps a pixel coordinate to normalized [0,1) coordinates, with the
// vertical axis pre-scaled by 0.5 to correct for the map's 2:1 aspect
// ratio before noise sampling (so features stay roughly square on the
// ground rather than stretched).
func uv(x, y int) (float64, float64) {
	u := float64(x) / float64(MapW)
	v := float64(y) / float64(MapH) * 0.5
	return u, v
}

// latitudeOf returns latitude in [-1, 1] for a pixel row: -1 at the top
// edge, 0 at the equator, +1 at the bottom edge.
func latitudeOf(y int) float64 {
	return (float64(y)/float64(MapH-1))*2 - 1
}

// genBaseElevation implements spec §4.3 step 1.
func genBaseElevation(w *World, seed uint32) {
	continentalN := phaseNoise(seed, phaseContinental)
	terrainN := phaseNoise(seed, phaseTerrain)
	detailN := phaseNoise(seed, phaseDetail)

	for y := 0; y < MapH; y++ {
		lat := latitudeOf(y)
		latWeight := 1 - math.Pow(math.Abs(lat), 1.5)*0.3
		var polarBonus float64
		if math.Abs(lat) < 0.35 {
			polarBonus = 0.08 * (1 - math.Abs(lat)/0.35)
		}

		for x := 0; x < MapW; x++ {
			u, v := uv(x, y)

			continental := continentalN.FBM(u*2.2, v*2.2, 5, 0.55, 2.1, 0.5)
			terrain := terrainN.FBM(u*7, v*7, 5, 0.6, 2.0, 0)
			detail := detailN.FBM(u*20, v*20, 4, 0.5, 2.0, 0)

			elev := (0.60*continental + 0.28*terrain + 0.12*detail) * latWeight
			elev += polarBonus

			w.Elevation[PixelIndex(x, y)] = float32(elev)
		}
	}
}

// genSeaLevel implements spec §4.3 step 2: normalize so the 60th percentile
// elevation becomes sea level, then amplify.
func genSeaLevel(w *World, seed uint32) {
	sorted := make([]float32, len(w.Elevation))
	copy(sorted, w.Elevation)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	idx := int(0.60 * float64(len(sorted)-1))
	seaLevel := sorted[idx]

	for i, e := range w.Elevation {
		w.Elevation[i] = float32((float64(e) - float64(seaLevel)) * 2.8)
	}
}

// genMountains implements spec §4.3 step 3: ridged noise raises elevation
// above 0.08 into sharp peaks, gated by a low-frequency continental mask.
func genMountains(w *World, seed uint32) {
	ridgeN := phaseNoise(seed, phaseMountainRidge)
	maskN := phaseNoise(seed, phaseContinentalMask)

	for y := 0; y < MapH; y++ {
		for x := 0; x < MapW; x++ {
			idx := PixelIndex(x, y)
			elev := float64(w.Elevation[idx])
			if elev <= 0.08 {
				continue
			}

			u, v := uv(x, y)
			mountain := 1 - math.Abs(ridgeN.FBM(u*5, v*5, 4, 0.5, 2.2, 0))
			if mountain <= 0.35 {
				continue
			}

			mask := clamp01((maskN.FBM(u*0.6, v*0.6, 2, 0.6, 2.0, 0) + 1) * 0.5)
			add := math.Pow((mountain-0.35)/0.65, 1.6) * 0.18 * mask
			w.Elevation[idx] = float32(elev + add)
		}
	}
}
