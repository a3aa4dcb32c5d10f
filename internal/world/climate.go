package world

import "math"

// genTemperature implements spec §4.3 step 4.
func genTemperature(w *World, seed uint32) {
	jitterN := phaseNoise(seed, phaseTempJitter)

	for y := 0; y < MapH; y++ {
		lat := latitudeOf(y)
		base := 1 - 1.3*math.Abs(lat)

		for x := 0; x < MapW; x++ {
			idx := PixelIndex(x, y)
			elev := float64(w.Elevation[idx])

			temp := base
			if elev > 0 {
				temp -= 0.45 * elev
			} else {
				temp += 0.12
			}

			u, v := uv(x, y)
			temp += 0.08 * jitterN.Eval2(u*8, v*8)

			if temp < -1 {
				temp = -1
			} else if temp > 1 {
				temp = 1
			}
			w.Temperature[idx] = float32(temp)
		}
	}
}

// genMoisture implements spec §4.3 step 5.
func genMoisture(w *World, seed uint32) {
	moistureN := phaseNoise(seed, phaseMoisture)

	for y := 0; y < MapH; y++ {
		lat := latitudeOf(y)
		latFactor := 1.2 - 0.6*math.Abs(lat)

		for x := 0; x < MapW; x++ {
			idx := PixelIndex(x, y)
			elev := float64(w.Elevation[idx])

			u, v := uv(x, y)
			precip := (moistureN.FBM(u*5, v*5, 4, 0.5, 2.0, 0) + 1) / 2 * latFactor

			switch {
			case elev <= 0:
				precip = 0.6
			default:
				if elev > 0 && elev < 0.15 {
					precip += 0.25
				}
				if elev > 0.5 {
					precip *= 0.5
				}
			}

			if precip < 0 {
				precip = 0
			} else if precip > 1.2 {
				precip = 1.2
			}
			w.Moisture[idx] = float32(precip)
		}
	}
}
