// Package sampling draws seeded point clouds used as attraction points for
// tree growth.
package sampling

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrUnknownShape is returned by Sample for an unsupported shape name.
var ErrUnknownShape = errors.New("unknown sampling shape")

// Shape names a sampling volume.
type Shape string

const (
	ShapeCube          Shape = "cube"
	ShapeSphere        Shape = "sphere"
	ShapeSphereSurface Shape = "sphere-surface"
)

// Sampler draws points from a seeded stream. It is not safe for concurrent
// use; give each goroutine its own Sampler.
type Sampler struct {
	rng *rand.Rand
}

// New creates a Sampler. Equal seeds produce equal point sequences.
func New(seed int64) *Sampler {
	return &Sampler{rng: rand.New(rand.NewSource(seed))}
}

func (s *Sampler) between(lo, hi float64) float64 {
	return lo + s.rng.Float64()*(hi-lo)
}

// UniformCube returns n points uniformly distributed in the axis-aligned
// cube of the given side length around center.
func (s *Sampler) UniformCube(n int, side float64, center mgl64.Vec3) []mgl64.Vec3 {
	half := side / 2
	points := make([]mgl64.Vec3, 0, max(n, 0))
	for i := 0; i < n; i++ {
		points = append(points, mgl64.Vec3{
			s.between(center.X()-half, center.X()+half),
			s.between(center.Y()-half, center.Y()+half),
			s.between(center.Z()-half, center.Z()+half),
		})
	}
	return points
}

// UniformSphere returns n points on the sphere of the given radius around
// center, drawn with uniform yaw in [-π, π] and uniform pitch in
// [-π/2, π/2]. This parameterization crowds points toward the poles; use
// UniformSphereSurface when an area-uniform distribution is required.
func (s *Sampler) UniformSphere(n int, radius float64, center mgl64.Vec3) []mgl64.Vec3 {
	points := make([]mgl64.Vec3, 0, max(n, 0))
	for i := 0; i < n; i++ {
		yaw := s.between(-math.Pi, math.Pi)
		pitch := s.between(-math.Pi/2, math.Pi/2)
		offset := mgl64.Vec3{
			radius * math.Cos(pitch) * math.Sin(yaw),
			radius * math.Sin(pitch),
			radius * math.Cos(pitch) * math.Cos(yaw),
		}
		points = append(points, center.Add(offset))
	}
	return points
}

// UniformSphereSurface returns n points distributed uniformly by area on
// the sphere of the given radius around center.
func (s *Sampler) UniformSphereSurface(n int, radius float64, center mgl64.Vec3) []mgl64.Vec3 {
	points := make([]mgl64.Vec3, 0, max(n, 0))
	for len(points) < n {
		v := mgl64.Vec3{s.rng.NormFloat64(), s.rng.NormFloat64(), s.rng.NormFloat64()}
		l := v.Len()
		if l < 1e-12 {
			continue
		}
		points = append(points, center.Add(v.Mul(radius/l)))
	}
	return points
}

// Sample dispatches on shape. size is the cube side or the sphere radius.
func (s *Sampler) Sample(shape Shape, n int, size float64, center mgl64.Vec3) ([]mgl64.Vec3, error) {
	switch shape {
	case ShapeCube:
		return s.UniformCube(n, size, center), nil
	case ShapeSphere:
		return s.UniformSphere(n, size, center), nil
	case ShapeSphereSurface:
		return s.UniformSphereSurface(n, size, center), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownShape, shape)
	}
}
