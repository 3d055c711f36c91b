package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsUsable(t *testing.T) {
	cfg := Default()

	if cfg.World.MinX >= cfg.World.MaxX || cfg.World.MinZ >= cfg.World.MaxZ {
		t.Error("default world bounds are degenerate")
	}
	if cfg.Generation.DetailScale <= 0 {
		t.Error("default detail scale must be positive")
	}
	if cfg.Generation.ThreshCleanup >= cfg.Generation.ThreshOuter {
		t.Error("cleanup threshold should sit below the outer threshold")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "terrascape.yaml")

	cfg := Default()
	cfg.World.LayersFile = "maps/island.psd"
	cfg.Generation.TreeModulo = 7
	cfg.Collision.SolidStartHits = true
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("loadFromFile failed: %v", err)
	}
	if loaded.World.LayersFile != "maps/island.psd" {
		t.Errorf("layers file = %q", loaded.World.LayersFile)
	}
	if loaded.Generation.TreeModulo != 7 {
		t.Errorf("tree modulo = %d", loaded.Generation.TreeModulo)
	}
	if !loaded.Collision.SolidStartHits {
		t.Error("solid_start_hits not round-tripped")
	}
}

func TestLoadFromFilePartialKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "partial.yaml")
	if err := os.WriteFile(path, []byte("generation:\n  grass_modulo: 5\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, path); err != nil {
		t.Fatalf("loadFromFile failed: %v", err)
	}
	if cfg.Generation.GrassModulo != 5 {
		t.Errorf("grass modulo = %d, want 5", cfg.Generation.GrassModulo)
	}
	if cfg.Generation.TreeModulo != Default().Generation.TreeModulo {
		t.Error("unset keys should keep their defaults")
	}
}
