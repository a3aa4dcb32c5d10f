package world

// Point is a pixel coordinate on a river's traced path.
type Point struct {
	X, Y int
}

// River is an ordered path of pixel points traced downhill from a
// highland source to the coast (or to a local minimum, or into another
// river). See design doc Section 3 and Section 4.3 step 6.
type River struct {
	Points   []Point
	Strength float64 // min(1, len/100)
}
