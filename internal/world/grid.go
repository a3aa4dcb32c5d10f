// Package world provides the dense pixel grid, coarse tile grid, and the
// deterministic generation pipeline: elevation, temperature, moisture,
// rivers, and the aggregated Tile index. See design doc Sections 3 and 4.3.
package world

// Fixed design constants. One coarse tile covers an 8x8 block of pixels.
const (
	MapW  = 2048
	MapH  = 1024
	TileW = 256
	TileH = 128

	pixelsPerTileX = MapW / TileW
	pixelsPerTileY = MapH / TileH
)

// WrapX wraps a pixel x-coordinate around the horizontal torus.
func WrapX(x int) int {
	x %= MapW
	if x < 0 {
		x += MapW
	}
	return x
}

// ClampY clamps a pixel y-coordinate to the vertical extent (no wrap).
func ClampY(y int) int {
	if y < 0 {
		return 0
	}
	if y >= MapH {
		return MapH - 1
	}
	return y
}

// PixelIndex converts wrapped/clamped pixel coordinates to a dense-array
// index. Callers are expected to have already wrapped/clamped x and y.
func PixelIndex(x, y int) int {
	return y*MapW + x
}

// WrapTileX wraps a tile x-coordinate around the horizontal torus.
func WrapTileX(x int) int {
	x %= TileW
	if x < 0 {
		x += TileW
	}
	return x
}

// ClampTileY clamps a tile y-coordinate to the vertical extent.
func ClampTileY(y int) int {
	if y < 0 {
		return 0
	}
	if y >= TileH {
		return TileH - 1
	}
	return y
}

// TileIndexAt converts wrapped/clamped tile coordinates to a dense-array
// index into World.Tiles.
func TileIndexAt(x, y int) int {
	return y*TileW + x
}

// Direction is a unit step on the grid.
type Direction struct {
	DX, DY int
}

// CardinalDirs lists the four axis-aligned neighbor steps in the fixed
// N, S, E, W order spec §4.3 step 6 requires for river tie-breaking. North
// is "up" (decreasing y).
var CardinalDirs = [4]Direction{
	{DX: 0, DY: -1}, // N
	{DX: 0, DY: 1},  // S
	{DX: 1, DY: 0},  // E
	{DX: -1, DY: 0}, // W
}

// TileNeighbor returns the wrapped/clamped tile coordinate one step from
// (x, y) in the given direction.
func TileNeighbor(x, y int, d Direction) (int, int) {
	return WrapTileX(x + d.DX), ClampTileY(y + d.DY)
}

// PixelNeighbor returns the wrapped/clamped pixel coordinate one step from
// (x, y) in the given direction.
func PixelNeighbor(x, y int, d Direction) (int, int) {
	return WrapX(x + d.DX), ClampY(y + d.DY)
}

// TileNeighbors8 returns all eight (Moore) neighbor tile coordinates of
// (x, y), wrapped on X and clamped on Y. Used by conquest border checks
// and expansion candidate scans.
func TileNeighbors8(x, y int) [8]TileCoord {
	var out [8]TileCoord
	i := 0
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			nx, ny := WrapTileX(x+dx), ClampTileY(y+dy)
			out[i] = TileCoord{X: nx, Y: ny}
			i++
		}
	}
	return out
}

// TileCoord is a coordinate in the coarse tile grid.
type TileCoord struct {
	X, Y int
}
