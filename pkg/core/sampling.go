package core

import (
	"math"
	"math/rand"
)

// Sampler provides random sampling for rendering algorithms.
// Can be swapped out for deterministic testing or different sampling patterns.
type Sampler interface {
	Get1D() float64
	Get2D() Vec2
}

// RandomSampler wraps a standard Go random generator. Each render worker
// owns its own seeded instance, so no synchronization is needed.
type RandomSampler struct {
	random *rand.Rand
}

// NewRandomSampler creates a sampler from a Go random generator
func NewRandomSampler(random *rand.Rand) *RandomSampler {
	return &RandomSampler{random: random}
}

// NewSeededSampler creates a sampler with a deterministic seed
func NewSeededSampler(seed int64) *RandomSampler {
	return &RandomSampler{random: rand.New(rand.NewSource(seed))}
}

// Get1D returns a random float64 in [0, 1)
func (r *RandomSampler) Get1D() float64 {
	return r.random.Float64()
}

// Get2D returns two random float64 values in [0, 1)
func (r *RandomSampler) Get2D() Vec2 {
	return NewVec2(r.random.Float64(), r.random.Float64())
}

// SampleCosineHemisphere generates a cosine-weighted random direction in the
// hemisphere around normal
func SampleCosineHemisphere(normal Vec3, sample Vec2) Vec3 {
	local := SampleCosineHemisphereLocal(sample)
	return NewFrame(normal).ToWorld(local)
}

// SampleCosineHemisphereLocal generates a cosine-weighted direction in the
// local shading frame (+Z up)
func SampleCosineHemisphereLocal(sample Vec2) Vec3 {
	angle := 2.0 * math.Pi * sample.X
	radius := math.Sqrt(sample.Y)
	x := radius * math.Cos(angle)
	y := radius * math.Sin(angle)
	z := math.Sqrt(math.Max(0, 1.0-sample.Y))
	return NewVec3(x, y, z)
}

// CosineHemispherePDF returns the solid-angle density of cosine-weighted
// hemisphere sampling for a direction with the given cosine to the normal
func CosineHemispherePDF(cosTheta float64) float64 {
	if cosTheta <= 0 {
		return 0
	}
	return cosTheta / math.Pi
}

// SampleOnUnitSphere generates a uniform random direction on the unit sphere
func SampleOnUnitSphere(sample Vec2) Vec3 {
	z := 1.0 - 2.0*sample.X
	r := math.Sqrt(math.Max(0, 1.0-z*z))
	phi := 2.0 * math.Pi * sample.Y
	return NewVec3(r*math.Cos(phi), r*math.Sin(phi), z)
}

// SampleUniformTriangle maps a 2D sample to barycentric coordinates
// uniformly distributed over a triangle
func SampleUniformTriangle(sample Vec2) (u, v float64) {
	su := math.Sqrt(sample.X)
	return 1.0 - su, sample.Y * su
}

// PowerHeuristic computes the MIS weight for strategy f against strategy g
// using the power heuristic with beta=2
func PowerHeuristic(nf int, fPdf float64, ng int, gPdf float64) float64 {
	f := float64(nf) * fPdf
	g := float64(ng) * gPdf
	denom := f*f + g*g
	if denom == 0 {
		return 0
	}
	return (f * f) / denom
}
