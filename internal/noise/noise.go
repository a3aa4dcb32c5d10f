// Package noise implements the 2D gradient noise and fractal-Brownian-motion
// pipeline WorldGen builds elevation, climate, and mountains from. See
// design doc Section 4.2.
package noise

import (
	"math"

	"github.com/atlasforge/chronicle/internal/entropy"
)

// tableSize is the classic Perlin permutation table size.
const tableSize = 256

// Generator owns one permutation table and produces gradient noise from it.
// A World generation pass builds several independent Generators (one per
// noise field) from sub-streams of the master seed so fields don't share
// state and traversal order stays deterministic.
type Generator struct {
	perm [tableSize * 2]int
}

// New builds a permutation table by Fisher-Yates shuffling [0, 255] with
// the given deterministic stream, then doubles it so lookups never need to
// wrap by hand.
func New(seed uint32) *Generator {
	return NewFromStream(entropy.New(seed))
}

// NewFromStream builds a Generator from an already-derived stream, letting
// callers control exactly how the seed was mixed (see entropy.Sub).
func NewFromStream(s *entropy.Stream) *Generator {
	base := make([]int, tableSize)
	for i := range base {
		base[i] = i
	}
	entropy.Shuffle(s, base)

	g := &Generator{}
	for i := 0; i < tableSize*2; i++ {
		g.perm[i] = base[i%tableSize]
	}
	return g
}

func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(t, a, b float64) float64 {
	return a + t*(b-a)
}

// grad picks one of four gradient directions from the low bits of hash and
// dots it with (x, y). This is the classic 2D simplification of Perlin's
// 3D gradient table.
func grad(hash int, x, y float64) float64 {
	switch hash & 3 {
	case 0:
		return x + y
	case 1:
		return -x + y
	case 2:
		return x - y
	default:
		return -x - y
	}
}

// Eval2 returns gradient noise at (x, y), in approximately [-1, 1].
func (g *Generator) Eval2(x, y float64) float64 {
	xi := int(math.Floor(x)) & 255
	yi := int(math.Floor(y)) & 255
	xf := x - math.Floor(x)
	yf := y - math.Floor(y)

	u := fade(xf)
	v := fade(yf)

	aa := g.perm[g.perm[xi]+yi]
	ab := g.perm[g.perm[xi]+yi+1]
	ba := g.perm[g.perm[xi+1]+yi]
	bb := g.perm[g.perm[xi+1]+yi+1]

	x1 := lerp(u, grad(aa, xf, yf), grad(ba, xf-1, yf))
	x2 := lerp(u, grad(ab, xf, yf-1), grad(bb, xf-1, yf-1))
	return lerp(v, x1, x2)
}

// FBM sums octaves of Eval2 at increasing frequency and decreasing
// amplitude, normalized by the total amplitude so the result stays in
// roughly [-1, 1] regardless of octave count. When warp > 0, (x, y) is
// first displaced by a low-frequency sample of the same generator, giving
// the "domain warp" look WorldGen uses for less grid-aligned coastlines.
func (g *Generator) FBM(x, y float64, octaves int, persistence, lacunarity, warp float64) float64 {
	if warp > 0 {
		wx := g.Eval2(x*0.15+11.3, y*0.15+11.3) * warp
		wy := g.Eval2(x*0.15-5.7, y*0.15-5.7) * warp
		x += wx
		y += wy
	}

	var total, amplitude, frequency, maxAmplitude float64
	amplitude = 1
	frequency = 1
	for i := 0; i < octaves; i++ {
		total += g.Eval2(x*frequency, y*frequency) * amplitude
		maxAmplitude += amplitude
		amplitude *= persistence
		frequency *= lacunarity
	}
	if maxAmplitude == 0 {
		return 0
	}
	return total / maxAmplitude
}
