package noise

import (
	"errors"
	"fmt"
	"math"

	perlin "github.com/aquilax/go-perlin"
	"github.com/ojrac/opensimplex-go"
)

// ErrUnknownKind is returned when an octave names an unsupported layer kind.
var ErrUnknownKind = errors.New("unknown noise kind")

// Kind selects the noise algorithm backing one octave.
type Kind string

const (
	KindGradient Kind = "gradient"
	KindSimplex  Kind = "simplex"
	KindPerlin   Kind = "perlin"
)

// Octave describes one layer of mixed noise.
type Octave struct {
	Kind      Kind    `yaml:"kind,omitempty" json:"kind,omitempty"`
	Frequency float64 `yaml:"frequency" json:"frequency"`
	Amplitude float64 `yaml:"amplitude" json:"amplitude"`
	XShift    float64 `yaml:"xShift,omitempty" json:"xShift,omitempty"`
	YShift    float64 `yaml:"yShift,omitempty" json:"yShift,omitempty"`
	Seed      int64   `yaml:"seed" json:"seed"`
}

type shiftedLayer struct {
	Sampler
	dx, dy float64
}

// Mixed sums several independently seeded, shifted layers.
type Mixed struct {
	layers []shiftedLayer
}

// NewMixed builds the layers described by octaves.
func NewMixed(octaves []Octave) (*Mixed, error) {
	m := &Mixed{layers: make([]shiftedLayer, 0, len(octaves))}
	for i, o := range octaves {
		layer, err := newLayer(o)
		if err != nil {
			return nil, fmt.Errorf("octave %d: %w", i, err)
		}
		m.layers = append(m.layers, shiftedLayer{Sampler: layer, dx: o.XShift, dy: o.YShift})
	}
	return m, nil
}

// Sample implements Sampler.
func (m *Mixed) Sample(x, y float64) float64 {
	var total float64
	for _, l := range m.layers {
		total += l.Sample(x+l.dx, y+l.dy)
	}
	return total
}

// Len reports the number of layers.
func (m *Mixed) Len() int { return len(m.layers) }

func newLayer(o Octave) (Sampler, error) {
	switch o.Kind {
	case "", KindGradient:
		return NewField(o.Seed, o.Frequency, o.Amplitude), nil
	case KindSimplex:
		return &simplexLayer{
			noise:     opensimplex.New(o.Seed),
			frequency: o.Frequency,
			amplitude: o.Amplitude,
		}, nil
	case KindPerlin:
		// alpha=2, beta=2, n=3 matches the usual terrain setup of the library.
		return &perlinLayer{
			noise:     perlin.NewPerlin(2, 2, 3, o.Seed),
			frequency: o.Frequency,
			amplitude: o.Amplitude,
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, o.Kind)
	}
}

type simplexLayer struct {
	noise     opensimplex.Noise
	frequency float64
	amplitude float64
}

func (l *simplexLayer) Sample(x, y float64) float64 {
	return l.amplitude * l.noise.Eval2(x*l.frequency, y*l.frequency)
}

type perlinLayer struct {
	noise     *perlin.Perlin
	frequency float64
	amplitude float64
}

func (l *perlinLayer) Sample(x, y float64) float64 {
	return l.amplitude * l.noise.Noise2D(x*l.frequency, y*l.frequency)
}

// Fractal returns gradient octaves in the classic persistence/lacunarity
// progression. Octave i is seeded with seed+i so layers stay decorrelated.
func Fractal(seed int64, frequency, amplitude float64, octaves int, persistence, lacunarity float64) []Octave {
	octaves = max(octaves, 0)
	out := make([]Octave, 0, octaves)
	for i := 0; i < octaves; i++ {
		out = append(out, Octave{
			Kind:      KindGradient,
			Frequency: frequency * math.Pow(lacunarity, float64(i)),
			Amplitude: amplitude * math.Pow(persistence, float64(i)),
			Seed:      seed + int64(i),
		})
	}
	return out
}
