package heightmap

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/OCharnyshevich/worldgen/pkg/noise"
)

type flat float64

func (f flat) Sample(x, y float64) float64 { return float64(f) }

type slope struct{}

func (slope) Sample(x, y float64) float64 { return 0.5*x + 0.25*y }

func TestBuildCountsAndIndexBounds(t *testing.T) {
	field := noise.NewField(42, 0.03, 15)
	sizes := [][2]int{{1, 1}, {1, 5}, {4, 3}, {16, 16}, {33, 7}}

	for _, s := range sizes {
		w, h := s[0], s[1]
		m, err := Build("ground", Params{Width: 100, Height: 60, WidthSegments: w, HeightSegments: h}, field)
		if err != nil {
			t.Fatalf("Build(%d, %d): %v", w, h, err)
		}
		wantVerts := (w + 1) * (h + 1)
		if got := len(m.Positions); got != wantVerts {
			t.Errorf("Build(%d, %d) positions = %d, want %d", w, h, got, wantVerts)
		}
		if got := len(m.UVs); got != wantVerts {
			t.Errorf("Build(%d, %d) uvs = %d, want %d", w, h, got, wantVerts)
		}
		if got := len(m.Normals); got != wantVerts {
			t.Errorf("Build(%d, %d) normals = %d, want %d", w, h, got, wantVerts)
		}
		if got := len(m.Indices); got != 6*w*h {
			t.Errorf("Build(%d, %d) indices = %d, want %d", w, h, got, 6*w*h)
		}
		for i, idx := range m.Indices {
			if int(idx) >= wantVerts {
				t.Fatalf("Build(%d, %d) index %d = %d out of range", w, h, i, idx)
			}
		}
		for i, n := range m.Normals {
			if l := n.Len(); math.Abs(l-1) > 1e-9 {
				t.Fatalf("Build(%d, %d) normal %d length = %f, want 1", w, h, i, l)
			}
		}
		if err := m.Validate(); err != nil {
			t.Fatalf("Validate: %v", err)
		}
	}
}

func TestBuildGridLayout(t *testing.T) {
	m, err := Build("ground", Params{Width: 4, Height: 2, WidthSegments: 2, HeightSegments: 1, UVScale: 2}, flat(3))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	want := []mgl64.Vec3{
		{-2, 3, -1}, {0, 3, -1}, {2, 3, -1},
		{-2, 3, 1}, {0, 3, 1}, {2, 3, 1},
	}
	for i, p := range want {
		if m.Positions[i] != p {
			t.Errorf("position %d = %v, want %v", i, m.Positions[i], p)
		}
		wantUV := mgl64.Vec2{p.X() / 2, p.Z() / 2}
		if m.UVs[i] != wantUV {
			t.Errorf("uv %d = %v, want %v", i, m.UVs[i], wantUV)
		}
	}
	if m.Name != "ground" {
		t.Errorf("Name = %q, want ground", m.Name)
	}
}

func TestBuildFacesUp(t *testing.T) {
	m, err := Build("flat", Params{Width: 10, Height: 10, WidthSegments: 5, HeightSegments: 5}, flat(0))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for i := 0; i < len(m.Indices); i += 3 {
		a, b, c := m.Positions[m.Indices[i]], m.Positions[m.Indices[i+1]], m.Positions[m.Indices[i+2]]
		if n := b.Sub(a).Cross(c.Sub(a)); n.Y() <= 0 {
			t.Fatalf("triangle %d normal %v does not face +Y", i/3, n)
		}
	}
	for i, n := range m.Normals {
		if !n.ApproxEqual(mgl64.Vec3{0, 1, 0}) {
			t.Fatalf("normal %d = %v, want +Y", i, n)
		}
	}
}

func TestBuildSlopedNormals(t *testing.T) {
	m, err := Build("slope", Params{Width: 8, Height: 8, WidthSegments: 4, HeightSegments: 4}, slope{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	// Plane y = 0.5x + 0.25z has normal (-0.5, 1, -0.25) normalized.
	want := mgl64.Vec3{-0.5, 1, -0.25}.Normalize()
	for i, n := range m.Normals {
		if !n.ApproxEqualThreshold(want, 1e-9) {
			t.Fatalf("normal %d = %v, want %v", i, n, want)
		}
	}
}

func TestBuildDeterministic(t *testing.T) {
	octaves := noise.Fractal(7, 0.02, 10, 4, 0.5, 2)
	field, err := noise.NewMixed(octaves)
	if err != nil {
		t.Fatalf("NewMixed: %v", err)
	}
	p := Params{Width: 50, Height: 50, WidthSegments: 40, HeightSegments: 40}
	a, err := Build("a", p, field)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	b, err := Build("b", p, field)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for i := range a.Positions {
		if a.Positions[i] != b.Positions[i] {
			t.Fatalf("position %d differs: %v vs %v", i, a.Positions[i], b.Positions[i])
		}
		if a.Normals[i] != b.Normals[i] {
			t.Fatalf("normal %d differs: %v vs %v", i, a.Normals[i], b.Normals[i])
		}
	}
}

func TestBuildRejectsInvalidParams(t *testing.T) {
	tests := []struct {
		name string
		p    Params
	}{
		{name: "zero width segments", p: Params{Width: 1, Height: 1, WidthSegments: 0, HeightSegments: 1}},
		{name: "zero height segments", p: Params{Width: 1, Height: 1, WidthSegments: 1, HeightSegments: 0}},
		{name: "negative segments", p: Params{Width: 1, Height: 1, WidthSegments: -3, HeightSegments: 1}},
		{name: "zero width", p: Params{Width: 0, Height: 1, WidthSegments: 1, HeightSegments: 1}},
		{name: "nan height", p: Params{Width: 1, Height: math.NaN(), WidthSegments: 1, HeightSegments: 1}},
		{name: "negative uv scale", p: Params{Width: 1, Height: 1, WidthSegments: 1, HeightSegments: 1, UVScale: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build("bad", tt.p, flat(0))
			if !errors.Is(err, ErrInvalidParams) {
				t.Fatalf("Build error = %v, want ErrInvalidParams", err)
			}
		})
	}
}

func TestGridHeightAtMatchesVertices(t *testing.T) {
	p := Params{Width: 20, Height: 10, WidthSegments: 10, HeightSegments: 5}
	field := noise.NewField(3, 0.1, 5)
	m, err := Build("g", p, field)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	grid, err := Heights(p, field)
	if err != nil {
		t.Fatalf("Heights: %v", err)
	}
	fromMesh, err := FromMesh(p, m)
	if err != nil {
		t.Fatalf("FromMesh: %v", err)
	}
	for _, pos := range m.Positions {
		if got := grid.HeightAt(pos.X(), pos.Z()); math.Abs(got-pos.Y()) > 1e-9 {
			t.Fatalf("HeightAt(%f, %f) = %f, want %f", pos.X(), pos.Z(), got, pos.Y())
		}
		if got := fromMesh.HeightAt(pos.X(), pos.Z()); math.Abs(got-pos.Y()) > 1e-9 {
			t.Fatalf("FromMesh HeightAt(%f, %f) = %f, want %f", pos.X(), pos.Z(), got, pos.Y())
		}
	}
}

func TestGridHeightAtInterpolatesAndClamps(t *testing.T) {
	p := Params{Width: 8, Height: 8, WidthSegments: 4, HeightSegments: 4}
	grid, err := Heights(p, slope{})
	if err != nil {
		t.Fatalf("Heights: %v", err)
	}
	if got, want := grid.HeightAt(1.3, -2.7), (slope{}).Sample(1.3, -2.7); math.Abs(got-want) > 1e-9 {
		t.Errorf("HeightAt inside = %f, want %f", got, want)
	}
	if got, want := grid.HeightAt(100, 0), (slope{}).Sample(4, 0); math.Abs(got-want) > 1e-9 {
		t.Errorf("HeightAt clamped = %f, want %f", got, want)
	}
	if got := grid.HeightAt(math.NaN(), 1); !math.IsNaN(got) {
		t.Errorf("HeightAt(NaN, 1) = %f, want NaN", got)
	}
	if got := grid.HeightAt(0, math.NaN()); !math.IsNaN(got) {
		t.Errorf("HeightAt(0, NaN) = %f, want NaN", got)
	}
	minX, minZ, maxX, maxZ := grid.Bounds()
	if minX != -4 || minZ != -4 || maxX != 4 || maxZ != 4 {
		t.Errorf("Bounds = (%f, %f, %f, %f), want (-4, -4, 4, 4)", minX, minZ, maxX, maxZ)
	}
}
