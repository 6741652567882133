package sampling

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestUniformCubeDeterministic(t *testing.T) {
	center := mgl64.Vec3{1, 2, 3}
	a := New(42).UniformCube(500, 4, center)
	b := New(42).UniformCube(500, 4, center)
	if len(a) != 500 || len(b) != 500 {
		t.Fatalf("len = %d/%d, want 500", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("point %d differs: %v vs %v", i, a[i], b[i])
		}
	}

	c := New(43).UniformCube(500, 4, center)
	same := true
	for i := range a {
		if a[i] != c[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("different seeds produced identical clouds")
	}
}

func TestUniformCubeBounds(t *testing.T) {
	center := mgl64.Vec3{0, 5, 0}
	points := New(1).UniformCube(1000, 5, center)
	if len(points) != 1000 {
		t.Fatalf("len = %d, want 1000", len(points))
	}
	for i, p := range points {
		for axis := 0; axis < 3; axis++ {
			lo, hi := center[axis]-2.5, center[axis]+2.5
			if p[axis] < lo || p[axis] > hi {
				t.Fatalf("point %d axis %d = %f, outside [%f, %f]", i, axis, p[axis], lo, hi)
			}
		}
	}
}

func TestUniformSphereOnSurface(t *testing.T) {
	center := mgl64.Vec3{0, 5, 0}
	for _, points := range [][]mgl64.Vec3{
		New(9).UniformSphere(800, 2.5, center),
		New(9).UniformSphereSurface(800, 2.5, center),
	} {
		if len(points) != 800 {
			t.Fatalf("len = %d, want 800", len(points))
		}
		for i, p := range points {
			if d := p.Sub(center).Len(); math.Abs(d-2.5) > 1e-9 {
				t.Fatalf("point %d distance = %f, want 2.5", i, d)
			}
		}
	}
}

func TestUniformSphereCrowdsPoles(t *testing.T) {
	// A cap above |y| > 0.9r covers 10% of the sphere's area. Uniform pitch
	// puts roughly 1 - 2*asin(0.9)/π ≈ 28.7% of the points there instead.
	const n = 20000
	polar := func(points []mgl64.Vec3) float64 {
		count := 0
		for _, p := range points {
			if math.Abs(p.Y()) > 0.9 {
				count++
			}
		}
		return float64(count) / n
	}

	if got := polar(New(5).UniformSphere(n, 1, mgl64.Vec3{})); got < 0.25 || got > 0.32 {
		t.Errorf("UniformSphere polar fraction = %f, want about 0.287", got)
	}
	if got := polar(New(5).UniformSphereSurface(n, 1, mgl64.Vec3{})); got < 0.08 || got > 0.12 {
		t.Errorf("UniformSphereSurface polar fraction = %f, want about 0.1", got)
	}
}

func TestSampleDispatch(t *testing.T) {
	for _, shape := range []Shape{ShapeCube, ShapeSphere, ShapeSphereSurface} {
		points, err := New(3).Sample(shape, 10, 1, mgl64.Vec3{})
		if err != nil {
			t.Fatalf("Sample(%q): %v", shape, err)
		}
		if len(points) != 10 {
			t.Fatalf("Sample(%q) len = %d, want 10", shape, len(points))
		}
	}
	if _, err := New(3).Sample("torus", 10, 1, mgl64.Vec3{}); !errors.Is(err, ErrUnknownShape) {
		t.Fatalf("Sample(torus) error = %v, want ErrUnknownShape", err)
	}
}

func TestZeroCount(t *testing.T) {
	if got := New(1).UniformCube(0, 1, mgl64.Vec3{}); len(got) != 0 {
		t.Fatalf("len = %d, want 0", len(got))
	}
}
