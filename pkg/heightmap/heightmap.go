// Package heightmap turns a noise field into a regular-grid ground mesh.
package heightmap

import (
	"errors"
	"fmt"
	"math"

	"github.com/dgravesa/go-parallel/parallel"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/OCharnyshevich/worldgen/pkg/mesh"
	"github.com/OCharnyshevich/worldgen/pkg/noise"
)

// ErrInvalidParams is wrapped by every parameter validation failure.
var ErrInvalidParams = errors.New("invalid heightmap params")

// Params describes the world extents and grid resolution of a heightfield.
type Params struct {
	Width          float64
	Height         float64
	WidthSegments  int
	HeightSegments int
	// UVScale divides world x/z into texture coordinates. Zero means 1.
	UVScale float64
}

// Validate reports the first invalid field.
func (p Params) Validate() error {
	switch {
	case p.WidthSegments < 1:
		return fmt.Errorf("%w: widthSegments must be >= 1, got %d", ErrInvalidParams, p.WidthSegments)
	case p.HeightSegments < 1:
		return fmt.Errorf("%w: heightSegments must be >= 1, got %d", ErrInvalidParams, p.HeightSegments)
	case !(p.Width > 0) || math.IsInf(p.Width, 0):
		return fmt.Errorf("%w: width must be positive, got %v", ErrInvalidParams, p.Width)
	case !(p.Height > 0) || math.IsInf(p.Height, 0):
		return fmt.Errorf("%w: height must be positive, got %v", ErrInvalidParams, p.Height)
	case p.UVScale < 0 || math.IsNaN(p.UVScale) || math.IsInf(p.UVScale, 0):
		return fmt.Errorf("%w: uvScale cannot be negative, got %v", ErrInvalidParams, p.UVScale)
	}
	return nil
}

// VertexCount returns (WidthSegments+1)*(HeightSegments+1).
func (p Params) VertexCount() int {
	return (p.WidthSegments + 1) * (p.HeightSegments + 1)
}

// Build samples field over the grid and returns positions, UVs, indices and
// smooth normals. Two triangles per cell are wound so the surface faces +Y.
func Build(name string, p Params, field noise.Sampler) (*mesh.Mesh, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	uvScale := p.UVScale
	if uvScale == 0 {
		uvScale = 1
	}

	cols := p.WidthSegments + 1
	rows := p.HeightSegments + 1
	positions := make([]mgl64.Vec3, rows*cols)
	uvs := make([]mgl64.Vec2, rows*cols)

	// Rows write disjoint slots, so the parallel fill matches a serial one.
	parallel.For(rows, func(row, _ int) {
		z := float64(row)*p.Height/float64(p.HeightSegments) - p.Height/2
		for col := 0; col < cols; col++ {
			x := float64(col)*p.Width/float64(p.WidthSegments) - p.Width/2
			i := row*cols + col
			positions[i] = mgl64.Vec3{x, field.Sample(x, z), z}
			uvs[i] = mgl64.Vec2{x / uvScale, z / uvScale}
		}
	})

	indices := make([]uint32, 0, 6*p.WidthSegments*p.HeightSegments)
	for row := 0; row < p.HeightSegments; row++ {
		for col := 0; col < p.WidthSegments; col++ {
			a := uint32(row*cols + col)
			b := uint32(row*cols + col + 1)
			c := uint32((row+1)*cols + col)
			d := uint32((row+1)*cols + col + 1)
			indices = append(indices, a, c, b, b, c, d)
		}
	}

	return &mesh.Mesh{
		Name:      name,
		Positions: positions,
		UVs:       uvs,
		Indices:   indices,
		Normals:   mesh.ComputeNormals(positions, indices),
	}, nil
}

// Grid is a sampled height grid with the same layout as a built mesh.
type Grid struct {
	params  Params
	heights []float64
}

// Heights samples only the heights of the grid Build would produce.
func Heights(p Params, field noise.Sampler) (*Grid, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	cols := p.WidthSegments + 1
	rows := p.HeightSegments + 1
	g := &Grid{params: p, heights: make([]float64, rows*cols)}
	parallel.For(rows, func(row, _ int) {
		z := float64(row)*p.Height/float64(p.HeightSegments) - p.Height/2
		for col := 0; col < cols; col++ {
			x := float64(col)*p.Width/float64(p.WidthSegments) - p.Width/2
			g.heights[row*cols+col] = field.Sample(x, z)
		}
	})
	return g, nil
}

// FromMesh wraps the positions of a mesh built with p.
func FromMesh(p Params, m *mesh.Mesh) (*Grid, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if len(m.Positions) != p.VertexCount() {
		return nil, fmt.Errorf("%w: mesh has %d vertices, params expect %d", ErrInvalidParams, len(m.Positions), p.VertexCount())
	}
	g := &Grid{params: p, heights: make([]float64, len(m.Positions))}
	for i, pos := range m.Positions {
		g.heights[i] = pos.Y()
	}
	return g, nil
}

// HeightAt bilinearly interpolates the grid at world (x, z). Points outside
// the grid are clamped to its border. A NaN coordinate yields NaN.
func (g *Grid) HeightAt(x, z float64) float64 {
	if math.IsNaN(x) || math.IsNaN(z) {
		return math.NaN()
	}
	p := g.params
	cols := p.WidthSegments + 1

	fx := (x + p.Width/2) / p.Width * float64(p.WidthSegments)
	fz := (z + p.Height/2) / p.Height * float64(p.HeightSegments)
	fx = clamp(fx, 0, float64(p.WidthSegments))
	fz = clamp(fz, 0, float64(p.HeightSegments))

	c0 := int(math.Floor(fx))
	r0 := int(math.Floor(fz))
	c1 := min(c0+1, p.WidthSegments)
	r1 := min(r0+1, p.HeightSegments)
	tx := fx - float64(c0)
	tz := fz - float64(r0)

	h00 := g.heights[r0*cols+c0]
	h10 := g.heights[r0*cols+c1]
	h01 := g.heights[r1*cols+c0]
	h11 := g.heights[r1*cols+c1]
	top := h00 + (h10-h00)*tx
	bottom := h01 + (h11-h01)*tx
	return top + (bottom-top)*tz
}

// Bounds returns the world-space x/z extents of the grid.
func (g *Grid) Bounds() (minX, minZ, maxX, maxZ float64) {
	return -g.params.Width / 2, -g.params.Height / 2, g.params.Width / 2, g.params.Height / 2
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
