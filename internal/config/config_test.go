package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsUsable(t *testing.T) {
	c := Default()
	if c.Seed == 0 {
		t.Error("Default().Seed should be nonzero")
	}
	if c.SavePath == "" || c.DBPath == "" || c.HTTPAddr == "" {
		t.Error("Default() should set every path/address field")
	}
}

func TestLoadOverridesOnlySpecifiedFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "seed: 99\nspeed: 3\n")

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Seed != 99 {
		t.Errorf("Seed = %d, want 99", c.Seed)
	}
	if c.Speed != 3 {
		t.Errorf("Speed = %d, want 3", c.Speed)
	}
	// Fields the file didn't mention should keep their Default() values.
	def := Default()
	if c.SavePath != def.SavePath {
		t.Errorf("SavePath = %q, want default %q", c.SavePath, def.SavePath)
	}
	if c.DBPath != def.DBPath {
		t.Errorf("DBPath = %q, want default %q", c.DBPath, def.DBPath)
	}
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}

func TestLoadMalformedYAMLErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	writeFile(t, path, "seed: [this is not a scalar")

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected an error for malformed YAML")
	}
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
