// Package rvmcfg holds the YAML-backed configuration for the tessellation
// and connectivity pipeline: struct tags for both YAML and JSON, a Load
// helper, and a Validate method that reports every violated range at once
// rather than failing on the first.
package rvmcfg

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds every tunable the core pipeline consults.
type Config struct {
	// Scale is the scene's linear unit scale entering the sagitta formula;
	// 1.0 for metres, matching the parser's CNTB millimetre -> metre
	// conversion.
	Scale float64 `yaml:"scale" json:"scale"`

	// Tolerance is the maximum sagitta error (in scene units) the
	// tessellator may introduce on any curved surface.
	Tolerance float64 `yaml:"tolerance" json:"tolerance"`

	// MinSamples/MaxSamples bound the adaptive segment count.
	MinSamples int `yaml:"minSamples" json:"minSamples"`
	MaxSamples int `yaml:"maxSamples" json:"maxSamples"`

	// CullLeafThreshold/CullGeometryThreshold scale Tolerance to produce
	// the group-level and geometry-level culling thresholds.
	CullLeafThreshold     float64 `yaml:"cullLeafThreshold" json:"cullLeafThreshold"`
	CullGeometryThreshold float64 `yaml:"cullGeometryThreshold" json:"cullGeometryThreshold"`

	// ConnectionEpsilon is the anchor-coincidence distance bound (metres).
	ConnectionEpsilon float64 `yaml:"connectionEpsilon" json:"connectionEpsilon"`

	// NormalDotThreshold is the antiparallel-normal acceptance bound,
	// -0.9 by default; stored here so it can be relaxed for noisy inputs.
	NormalDotThreshold float64 `yaml:"normalDotThreshold" json:"normalDotThreshold"`

	// CapRadiusTolerance is the relative matching-radius bound for cap
	// elision, 5% by default.
	CapRadiusTolerance float64 `yaml:"capRadiusTolerance" json:"capRadiusTolerance"`

	// CapVertexTolerance is the quadrilateral-vertex bound for cap
	// elision in scene units, 1 mm by default.
	CapVertexTolerance float64 `yaml:"capVertexTolerance" json:"capVertexTolerance"`
}

// DefaultConfig returns the reference tolerances the tests assume.
func DefaultConfig() Config {
	return Config{
		Scale:                 1.0,
		Tolerance:             0.01,
		MinSamples:            4,
		MaxSamples:            256,
		CullLeafThreshold:     0.5,
		CullGeometryThreshold: 0.1,
		ConnectionEpsilon:     1e-3,
		NormalDotThreshold:    -0.9,
		CapRadiusTolerance:    0.05,
		CapVertexTolerance:    0.001,
	}
}

// Load reads and parses a YAML config file, applying DefaultConfig for any
// field the file omits is not supported by yaml.v3 merging directly, so
// Load instead starts from DefaultConfig and decodes on top of it.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("rvmcfg: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("rvmcfg: parsing %s: %w", path, err)
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return Config{}, fmt.Errorf("rvmcfg: invalid config: %s", strings.Join(errs, "; "))
	}
	return cfg, nil
}

// Validate reports every violated constraint instead of stopping at the
// first.
func (c Config) Validate() []string {
	var errs []string
	if c.Scale <= 0 {
		errs = append(errs, "scale must be positive")
	}
	if c.Tolerance <= 0 {
		errs = append(errs, "tolerance must be positive")
	}
	if c.MinSamples < 3 {
		errs = append(errs, "minSamples must be at least 3")
	}
	if c.MaxSamples < c.MinSamples {
		errs = append(errs, "maxSamples must be >= minSamples")
	}
	if c.CullLeafThreshold < 0 {
		errs = append(errs, "cullLeafThreshold must be non-negative")
	}
	if c.CullGeometryThreshold < 0 {
		errs = append(errs, "cullGeometryThreshold must be non-negative")
	}
	if c.ConnectionEpsilon <= 0 {
		errs = append(errs, "connectionEpsilon must be positive")
	}
	if c.NormalDotThreshold >= 0 || c.NormalDotThreshold < -1 {
		errs = append(errs, "normalDotThreshold must be in [-1, 0)")
	}
	return errs
}
