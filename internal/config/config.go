package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/OCharnyshevich/worldgen/pkg/noise"
	"github.com/OCharnyshevich/worldgen/pkg/sampling"
)

// Tree generators.
const (
	GeneratorColonization = "colonization"
	GeneratorLSystem      = "lsystem"
)

// Config holds everything needed to generate one world.
type Config struct {
	Seed    int64         `yaml:"seed" json:"seed"`
	Terrain TerrainConfig `yaml:"terrain" json:"terrain"`
	Forest  ForestConfig  `yaml:"forest" json:"forest"`
	Grass   GrassConfig   `yaml:"grass" json:"grass"`
	Output  OutputConfig  `yaml:"output" json:"output"`
}

type TerrainConfig struct {
	Name           string  `yaml:"name" json:"name"`
	Width          float64 `yaml:"width" json:"width"`
	Height         float64 `yaml:"height" json:"height"`
	WidthSegments  int     `yaml:"widthSegments" json:"widthSegments"`
	HeightSegments int     `yaml:"heightSegments" json:"heightSegments"`
	UVScale        float64 `yaml:"uvScale" json:"uvScale"`
	// Octaves lists explicit noise layers. When empty, Fractal is used.
	Octaves []noise.Octave `yaml:"octaves,omitempty" json:"octaves,omitempty"`
	Fractal FractalConfig  `yaml:"fractal" json:"fractal"`
}

type FractalConfig struct {
	Octaves     int     `yaml:"octaves" json:"octaves"`
	Frequency   float64 `yaml:"frequency" json:"frequency"`
	Amplitude   float64 `yaml:"amplitude" json:"amplitude"`
	Persistence float64 `yaml:"persistence" json:"persistence"`
	Lacunarity  float64 `yaml:"lacunarity" json:"lacunarity"`
}

type ForestConfig struct {
	Count           int              `yaml:"count" json:"count"`
	Generator       string           `yaml:"generator" json:"generator"` // "colonization" or "lsystem"
	KillDistance    float64          `yaml:"killDistance" json:"killDistance"`
	InfluenceRadius float64          `yaml:"influenceRadius" json:"influenceRadius"`
	StepLength      float64          `yaml:"stepLength" json:"stepLength"`
	Attraction      AttractionConfig `yaml:"attraction" json:"attraction"`
	MaxSteps        int              `yaml:"maxSteps" json:"maxSteps"`
	SimplifyAngle   float64          `yaml:"simplifyAngle" json:"simplifyAngle"` // radians, 0 = default
	LeafRadius      float64          `yaml:"leafRadius" json:"leafRadius"`
	LSystem         LSystemConfig    `yaml:"lsystem" json:"lsystem"`
}

// AttractionConfig describes the crown point cloud, relative to the tree base.
type AttractionConfig struct {
	Shape  sampling.Shape `yaml:"shape" json:"shape"`
	Count  int            `yaml:"count" json:"count"`
	Size   float64        `yaml:"size" json:"size"` // cube side or sphere radius
	Offset [3]float64     `yaml:"offset" json:"offset"`
}

type LSystemConfig struct {
	Axiom       string            `yaml:"axiom" json:"axiom"`
	Rules       map[string]string `yaml:"rules" json:"rules"`
	Iterations  int               `yaml:"iterations" json:"iterations"`
	Angle       float64           `yaml:"angle" json:"angle"` // radians
	Step        float64           `yaml:"step" json:"step"`
	LengthScale float64           `yaml:"lengthScale" json:"lengthScale"`
}

type GrassConfig struct {
	Count  int     `yaml:"count" json:"count"`
	Points int     `yaml:"points" json:"points"`
	Bottom float64 `yaml:"bottom" json:"bottom"`
	Top    float64 `yaml:"top" json:"top"`
	Height float64 `yaml:"height" json:"height"`
}

type OutputConfig struct {
	Dir string `yaml:"dir" json:"dir"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Seed: 42,
		Terrain: TerrainConfig{
			Name:           "terrain",
			Width:          256,
			Height:         256,
			WidthSegments:  128,
			HeightSegments: 128,
			UVScale:        16,
			Fractal: FractalConfig{
				Octaves:     4,
				Frequency:   0.02,
				Amplitude:   12,
				Persistence: 0.5,
				Lacunarity:  2,
			},
		},
		Forest: ForestConfig{
			Count:           16,
			Generator:       GeneratorColonization,
			KillDistance:    0.5,
			InfluenceRadius: 10,
			StepLength:      0.3,
			Attraction: AttractionConfig{
				Shape:  sampling.ShapeCube,
				Count:  1000,
				Size:   5,
				Offset: [3]float64{0, 5, 0},
			},
			MaxSteps:   200,
			LeafRadius: 0.05,
			LSystem: LSystemConfig{
				Axiom:       "X",
				Iterations:  4,
				Angle:       math.Pi / 9,
				Step:        0.25,
				LengthScale: 0.8,
			},
		},
		Grass: GrassConfig{
			Count:  2000,
			Points: 5,
			Bottom: 0.05,
			Top:    0.01,
			Height: 0.6,
		},
		Output: OutputConfig{Dir: "out"},
	}
}

// Load reads a YAML (or JSON) file over the defaults. Unknown keys are
// rejected. An empty path returns defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Marshal encodes cfg as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// Octaves returns the terrain noise layers: the explicit list when set,
// otherwise the fractal progression seeded from the world seed.
func (c *Config) Octaves() []noise.Octave {
	if len(c.Terrain.Octaves) > 0 {
		return c.Terrain.Octaves
	}
	f := c.Terrain.Fractal
	return noise.Fractal(c.Seed, f.Frequency, f.Amplitude, f.Octaves, f.Persistence, f.Lacunarity)
}

// DefaultLSystemRules are used when no rules are configured. They are kept
// out of Default so that a config file replaces them instead of merging
// into them.
var DefaultLSystemRules = map[string]string{"X": "F[+X][-X]&FX", "F": "FF"}

// RuneRules converts the configured L-system rules to rune keys.
func (l LSystemConfig) RuneRules() map[rune]string {
	rules := l.Rules
	if len(rules) == 0 {
		rules = DefaultLSystemRules
	}
	out := make(map[rune]string, len(rules))
	for k, v := range rules {
		for _, r := range k {
			out[r] = v
			break
		}
	}
	return out
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

// Validate reports the first invalid field by its path.
func (c *Config) Validate() error {
	t := c.Terrain
	if t.Name == "" {
		return errors.New("terrain.name must be set")
	}
	if !positive(t.Width) || !positive(t.Height) {
		return errors.New("terrain dimensions must be positive")
	}
	if t.WidthSegments < 1 {
		return errors.New("terrain.widthSegments must be positive")
	}
	if t.HeightSegments < 1 {
		return errors.New("terrain.heightSegments must be positive")
	}
	if t.UVScale < 0 {
		return errors.New("terrain.uvScale cannot be negative")
	}
	for i, o := range t.Octaves {
		switch o.Kind {
		case "", noise.KindGradient, noise.KindSimplex, noise.KindPerlin:
		default:
			return fmt.Errorf("terrain.octaves[%d].kind %q is not supported", i, o.Kind)
		}
	}
	if len(t.Octaves) == 0 && t.Fractal.Octaves < 1 {
		return errors.New("terrain.fractal.octaves must be positive when no octaves are listed")
	}

	f := c.Forest
	if f.Count < 0 {
		return errors.New("forest.count cannot be negative")
	}
	switch f.Generator {
	case GeneratorColonization:
		if !positive(f.KillDistance) {
			return errors.New("forest.killDistance must be positive")
		}
		if !positive(f.InfluenceRadius) {
			return errors.New("forest.influenceRadius must be positive")
		}
		if !positive(f.StepLength) {
			return errors.New("forest.stepLength must be positive")
		}
		switch f.Attraction.Shape {
		case sampling.ShapeCube, sampling.ShapeSphere, sampling.ShapeSphereSurface:
		default:
			return fmt.Errorf("forest.attraction.shape %q is not supported", f.Attraction.Shape)
		}
		if f.Attraction.Count < 1 {
			return errors.New("forest.attraction.count must be positive")
		}
		if !positive(f.Attraction.Size) {
			return errors.New("forest.attraction.size must be positive")
		}
		if f.MaxSteps < 1 {
			return errors.New("forest.maxSteps must be positive")
		}
	case GeneratorLSystem:
		if f.LSystem.Axiom == "" {
			return errors.New("forest.lsystem.axiom must be set")
		}
		for k := range f.LSystem.Rules {
			if len([]rune(k)) != 1 {
				return fmt.Errorf("forest.lsystem.rules key %q must be a single symbol", k)
			}
		}
		if f.LSystem.Iterations < 0 {
			return errors.New("forest.lsystem.iterations cannot be negative")
		}
		if !positive(f.LSystem.Step) {
			return errors.New("forest.lsystem.step must be positive")
		}
	default:
		return fmt.Errorf("forest.generator %q must be %q or %q", f.Generator, GeneratorColonization, GeneratorLSystem)
	}
	if f.SimplifyAngle < 0 {
		return errors.New("forest.simplifyAngle cannot be negative")
	}
	if !positive(f.LeafRadius) {
		return errors.New("forest.leafRadius must be positive")
	}

	g := c.Grass
	if g.Count < 0 {
		return errors.New("grass.count cannot be negative")
	}
	if g.Count > 0 {
		if g.Points < 2 {
			return errors.New("grass.points must be at least 2")
		}
		if !positive(g.Height) {
			return errors.New("grass.height must be positive")
		}
		if g.Bottom < 0 || g.Top < 0 {
			return errors.New("grass widths cannot be negative")
		}
	}

	if c.Output.Dir == "" {
		return errors.New("output.dir must be set")
	}
	return nil
}

// Merge applies file-loaded config values into cfg, but only for fields
// that were NOT explicitly set via CLI flags. explicitFlags contains the
// flag names that were explicitly provided on the command line.
func Merge(cfg *Config, fromFile *Config, explicitFlags map[string]bool) {
	flagged := *cfg
	*cfg = *fromFile

	if explicitFlags["seed"] {
		cfg.Seed = flagged.Seed
	}
	if explicitFlags["segments"] {
		cfg.Terrain.WidthSegments = flagged.Terrain.WidthSegments
		cfg.Terrain.HeightSegments = flagged.Terrain.HeightSegments
	}
	if explicitFlags["trees"] {
		cfg.Forest.Count = flagged.Forest.Count
	}
	if explicitFlags["generator"] {
		cfg.Forest.Generator = flagged.Forest.Generator
	}
	if explicitFlags["grass"] {
		cfg.Grass.Count = flagged.Grass.Count
	}
	if explicitFlags["out"] {
		cfg.Output.Dir = flagged.Output.Dir
	}
}
