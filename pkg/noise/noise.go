package noise

import "math"

// Gradient noise on the unit lattice. Corner gradients come from a
// GradientSource and the four corner contributions are blended with plain
// bilinear weights, so a sample taken exactly on a lattice point is zero.

// permutation is Ken Perlin's reference table. Hashed lattice coordinates
// index into it to pick a gradient angle.
var permutation = [256]int{
	151, 160, 137, 91, 90, 15, 131, 13, 201, 95, 96, 53, 194, 233, 7, 225,
	140, 36, 103, 30, 69, 142, 8, 99, 37, 240, 21, 10, 23, 190, 6, 148,
	247, 120, 234, 75, 0, 26, 197, 62, 94, 252, 219, 203, 117, 35, 11, 32,
	57, 177, 33, 88, 237, 149, 56, 87, 174, 20, 125, 136, 171, 168, 68, 175,
	74, 165, 71, 134, 139, 48, 27, 166, 77, 146, 158, 231, 83, 111, 229, 122,
	60, 211, 133, 230, 220, 105, 92, 41, 55, 46, 245, 40, 244, 102, 143, 54,
	65, 25, 63, 161, 1, 216, 80, 73, 209, 76, 132, 187, 208, 89, 18, 169,
	200, 196, 135, 130, 116, 188, 159, 86, 164, 100, 109, 198, 173, 186, 3, 64,
	52, 217, 226, 250, 124, 123, 5, 202, 38, 147, 118, 126, 255, 82, 85, 212,
	207, 206, 59, 227, 47, 16, 58, 17, 182, 189, 28, 42, 223, 183, 170, 213,
	119, 248, 152, 2, 44, 154, 163, 70, 221, 153, 101, 155, 167, 43, 172, 9,
	129, 22, 39, 253, 19, 98, 108, 110, 79, 113, 224, 232, 178, 185, 112, 104,
	218, 246, 97, 228, 251, 34, 242, 193, 238, 210, 144, 12, 191, 179, 162, 241,
	81, 51, 145, 235, 249, 14, 239, 107, 49, 192, 214, 31, 181, 199, 106, 157,
	184, 84, 204, 176, 115, 121, 50, 45, 127, 4, 150, 254, 138, 236, 205, 93,
	222, 114, 67, 29, 24, 72, 243, 141, 128, 195, 78, 66, 215, 61, 156, 180,
}

// Sampler is anything that yields a scalar height for a 2D coordinate.
type Sampler interface {
	Sample(x, y float64) float64
}

// GradientSource picks the gradient vector for a lattice corner.
// Implementations must be pure: the same corner and seed always yield the
// same vector.
type GradientSource interface {
	Gradient(xi, yi int, seed int64) (gx, gy float64)
}

// HashGradient derives unit gradients from a seeded integer hash of the
// lattice corner.
type HashGradient struct{}

// Gradient implements GradientSource.
func (HashGradient) Gradient(xi, yi int, seed int64) (float64, float64) {
	idx := hashCorner(xi, yi, seed) & 0xFF
	theta := float64(permutation[idx]) / 256.0 * 2 * math.Pi
	return math.Cos(theta), math.Sin(theta)
}

// Field is a single layer of gradient noise.
type Field struct {
	Seed      int64
	Frequency float64
	Amplitude float64
	Gradients GradientSource
}

// NewField creates a Field using hashed gradients.
func NewField(seed int64, frequency, amplitude float64) *Field {
	return &Field{
		Seed:      seed,
		Frequency: frequency,
		Amplitude: amplitude,
		Gradients: HashGradient{},
	}
}

// Sample returns the noise value at (x, y).
func (f *Field) Sample(x, y float64) float64 {
	grads := f.Gradients
	if grads == nil {
		grads = HashGradient{}
	}

	x *= f.Frequency
	y *= f.Frequency

	x0 := fastFloor(x)
	y0 := fastFloor(y)
	x1 := x0 + 1
	y1 := y0 + 1

	dx := x - float64(x0)
	dy := y - float64(y0)

	g00 := dotGradient(grads, x0, y0, x, y, f.Seed)
	g10 := dotGradient(grads, x1, y0, x, y, f.Seed)
	g01 := dotGradient(grads, x0, y1, x, y, f.Seed)
	g11 := dotGradient(grads, x1, y1, x, y, f.Seed)

	return f.Amplitude * lerp(lerp(g00, g10, dx), lerp(g01, g11, dx), dy)
}

func dotGradient(grads GradientSource, xi, yi int, x, y float64, seed int64) float64 {
	gx, gy := grads.Gradient(xi, yi, seed)
	return (x-float64(xi))*gx + (y-float64(yi))*gy
}

func lerp(a, b, t float64) float64 {
	return (1-t)*a + t*b
}

// hashCorner mixes lattice coordinates and both halves of the seed.
func hashCorner(x, y int, seed int64) uint32 {
	h := uint32(x)*374761393 + uint32(y)*668265263 + uint32(seed)*2147483647 + uint32(seed>>32)*2246822519
	h = (h ^ (h >> 13)) * 1274126177
	return h ^ (h >> 16)
}

func fastFloor(x float64) int {
	xi := int(x)
	if x < float64(xi) {
		return xi - 1
	}
	return xi
}
