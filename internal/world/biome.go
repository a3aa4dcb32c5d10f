package world

// Biome is the closed set of coarse-tile terrain classifications. See
// design doc Section 3.
type Biome uint8

const (
	BiomeOcean Biome = iota
	BiomeIce
	BiomeTundra
	BiomeAlpine
	BiomeDesert
	BiomeSavanna
	BiomeGrassland
	BiomeJungle
	BiomeForest
)

// String returns a human-readable biome name.
func (b Biome) String() string {
	switch b {
	case BiomeOcean:
		return "ocean"
	case BiomeIce:
		return "ice"
	case BiomeTundra:
		return "tundra"
	case BiomeAlpine:
		return "alpine"
	case BiomeDesert:
		return "desert"
	case BiomeSavanna:
		return "savanna"
	case BiomeGrassland:
		return "grassland"
	case BiomeJungle:
		return "jungle"
	case BiomeForest:
		return "forest"
	default:
		return "unknown"
	}
}

// Uninhabitable reports whether an entity may never own a tile of this
// biome, per the land-only invariant (ocean, ice, alpine).
func (b Biome) Uninhabitable() bool {
	return b == BiomeOcean || b == BiomeIce || b == BiomeAlpine
}

// ClimateZone coarsely buckets a tile's temperature band.
type ClimateZone uint8

const (
	ClimatePolar ClimateZone = iota
	ClimateTemperate
	ClimateTropical
)

func (c ClimateZone) String() string {
	switch c {
	case ClimatePolar:
		return "polar"
	case ClimateTropical:
		return "tropical"
	default:
		return "temperate"
	}
}

// classifyClimate buckets a temperature value into a ClimateZone. The exact
// cutoffs are an implementation decision (spec leaves ClimateZone
// unspecified beyond its three-value domain) — see DESIGN.md.
func classifyClimate(temp float64) ClimateZone {
	switch {
	case temp < -0.4:
		return ClimatePolar
	case temp > 0.4:
		return ClimateTropical
	default:
		return ClimateTemperate
	}
}

// RiverPresence buckets the strongest river touching a tile.
type RiverPresence uint8

const (
	RiverNone RiverPresence = iota
	RiverMinor
	RiverMajor
)

func (r RiverPresence) String() string {
	switch r {
	case RiverMajor:
		return "major"
	case RiverMinor:
		return "minor"
	default:
		return "none"
	}
}

// deriveBiome implements the ordered decision ladder of spec §4.3 step 7.
// Order matters: each rule only applies once every earlier rule has failed.
func deriveBiome(elevation, temperature, rainfall float64) Biome {
	switch {
	case elevation <= 0:
		return BiomeOcean
	case temperature < -0.5:
		return BiomeIce
	case temperature < -0.2:
		return BiomeTundra
	case elevation > 0.7:
		return BiomeAlpine
	case rainfall < 0.2:
		return BiomeDesert
	case rainfall < 0.4:
		if temperature > 0.3 {
			return BiomeSavanna
		}
		return BiomeGrassland
	case rainfall < 0.7:
		if temperature > 0.4 {
			return BiomeJungle
		}
		return BiomeForest
	default:
		if temperature > 0.5 {
			return BiomeJungle
		}
		return BiomeForest
	}
}
