package rvmcfg

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigValidates(t *testing.T) {
	if errs := DefaultConfig().Validate(); len(errs) != 0 {
		t.Fatalf("DefaultConfig().Validate() = %v, want none", errs)
	}
}

func TestValidateCollectsAllViolations(t *testing.T) {
	cfg := Config{
		Scale:              -1,
		Tolerance:          -1,
		MinSamples:         1,
		MaxSamples:         0,
		ConnectionEpsilon:  -1,
		NormalDotThreshold: 2,
	}
	errs := cfg.Validate()
	if len(errs) < 6 {
		t.Fatalf("Validate() = %v, want at least 6 violations reported at once", errs)
	}
}

func TestLoadMergesOntoDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")
	if err := os.WriteFile(path, []byte("tolerance: 0.05\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Tolerance != 0.05 {
		t.Fatalf("Tolerance = %v, want 0.05 (overridden)", cfg.Tolerance)
	}
	if cfg.MinSamples != DefaultConfig().MinSamples {
		t.Fatalf("MinSamples = %v, want default %v (not overridden)", cfg.MinSamples, DefaultConfig().MinSamples)
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("tolerance: -1\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("Load with invalid tolerance succeeded, want error")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("Load of a missing file succeeded, want error")
	}
}
