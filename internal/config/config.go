// Package config loads run parameters — seed, tick budget, speed,
// persistence path, HTTP listen address — from an optional YAML file, with
// CLI flags overriding whatever fields the file sets. Grounded on
// hellsoul86-voxelcraft.ai's internal/sim/tuning package: a flat struct
// with yaml tags, loaded with gopkg.in/yaml.v3, wrapped errors on failure.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds every setting the CLI driver needs. It never influences
// WorldGen's own constants (MAP_W, octave counts, and the rest are fixed
// design constants, not tunables) — only which run to drive and how.
type Config struct {
	Seed        uint32 `yaml:"seed"`
	Ticks       int    `yaml:"ticks"`
	Speed       int    `yaml:"speed"`
	SavePath    string `yaml:"save_path"`
	DBPath      string `yaml:"db_path"`
	HTTPAddr    string `yaml:"http_addr"`
	AdminToken  string `yaml:"admin_token"`
}

// Default returns the zero-config defaults.
func Default() Config {
	return Config{
		Seed:     1,
		Ticks:    0,
		Speed:    1,
		SavePath: "chronicle.save.json",
		DBPath:   "chronicle.db",
		HTTPAddr: ":8080",
	}
}

// Load reads a YAML config file at path, starting from Default() so any
// field the file omits keeps its default.
func Load(path string) (Config, error) {
	c := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return c, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return c, nil
}
