// Package vegetation scatters plant placements over terrain and builds the
// grass blade mesh shared by every grass instance.
package vegetation

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/OCharnyshevich/worldgen/pkg/mesh"
)

// ErrInvalidBlade is returned by GrassBlade for unusable parameters.
var ErrInvalidBlade = errors.New("vegetation: invalid grass blade")

// Scale range applied to every placement.
const (
	MinScale = 0.8
	MaxScale = 1.2
)

// Area is an axis-aligned rectangle on the XZ plane.
type Area struct {
	MinX, MinZ float64
	MaxX, MaxZ float64
}

// Placement is one plant instance.
type Placement struct {
	ID       uuid.UUID  `json:"id"`
	Position mgl64.Vec3 `json:"position"`
	Yaw      float64    `json:"yaw"`
	Scale    float64    `json:"scale"`
}

// Scatter places count instances uniformly in area. heightAt supplies the Y
// coordinate and may be nil for flat ground. IDs are name-based UUIDs of
// (kind, seed, index), so reruns with the same inputs keep their IDs.
func Scatter(kind string, seed int64, count int, area Area, heightAt func(x, z float64) float64) []Placement {
	rng := rand.New(rand.NewSource(seed))
	out := make([]Placement, max(count, 0))
	for i := range out {
		x := area.MinX + rng.Float64()*(area.MaxX-area.MinX)
		z := area.MinZ + rng.Float64()*(area.MaxZ-area.MinZ)
		var y float64
		if heightAt != nil {
			y = heightAt(x, z)
		}
		out[i] = Placement{
			ID:       uuid.NewSHA1(uuid.NameSpaceOID, fmt.Appendf(nil, "%s/%d/%d", kind, seed, i)),
			Position: mgl64.Vec3{x, y, z},
			Yaw:      (rng.Float64()*2 - 1) * math.Pi,
			Scale:    MinScale + rng.Float64()*(MaxScale-MinScale),
		}
	}
	return out
}

// GrassBlade builds a two-sided ribbon with points rows of vertices. bottom
// and top are half-widths; the edge offset tapers linearly between them.
// Row t in [0, 1] sits at y = t*height and leans toward +Z by sqrt(t) world
// units, independent of height. The front faces +Z; the back has its own
// vertices so the normals do not cancel.
func GrassBlade(points int, bottom, top, height float64) (*mesh.Mesh, error) {
	switch {
	case points < 2:
		return nil, fmt.Errorf("%w: points %d, need at least 2", ErrInvalidBlade, points)
	case !(height > 0), math.IsInf(height, 0):
		return nil, fmt.Errorf("%w: height %v must be positive", ErrInvalidBlade, height)
	case !(bottom >= 0) || !(top >= 0):
		return nil, fmt.Errorf("%w: widths %v/%v must not be negative", ErrInvalidBlade, bottom, top)
	}

	side := 2 * points
	positions := make([]mgl64.Vec3, 0, 2*side)
	uvs := make([]mgl64.Vec2, 0, 2*side)
	for k := 0; k < 2; k++ {
		for p := 0; p < points; p++ {
			t := float64(p) / float64(points-1)
			half := bottom + (top-bottom)*t
			y := t * height
			z := math.Sqrt(t)
			positions = append(positions, mgl64.Vec3{-half, y, z}, mgl64.Vec3{half, y, z})
			uvs = append(uvs, mgl64.Vec2{0, t}, mgl64.Vec2{1, t})
		}
	}

	indices := make([]uint32, 0, (points-1)*12)
	for p := 0; p < points-1; p++ {
		l := uint32(2 * p)
		r, l2, r2 := l+1, l+2, l+3
		indices = append(indices, l, r, l2, r, r2, l2)
		b := uint32(side)
		indices = append(indices, b+l, b+l2, b+r, b+r, b+l2, b+r2)
	}

	return &mesh.Mesh{
		Name:      "grass_blade",
		Positions: positions,
		UVs:       uvs,
		Indices:   indices,
		Normals:   mesh.ComputeNormals(positions, indices),
	}, nil
}
