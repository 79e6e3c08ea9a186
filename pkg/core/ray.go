package core

import "math"

// Ray represents a ray with an origin, a normalized direction and a valid
// parametric interval [TMin, TMax]. Rays are transient per-query values and
// are never shared across goroutines.
type Ray struct {
	Origin    Vec3
	Direction Vec3
	TMin      float64
	TMax      float64
}

// Default parametric interval for camera and continuation rays.
const (
	DefaultTMin = 1e-4
	Infinity    = math.MaxFloat64
)

// NewRay creates a ray with the default parametric interval
func NewRay(origin, direction Vec3) Ray {
	return Ray{Origin: origin, Direction: direction, TMin: DefaultTMin, TMax: Infinity}
}

// NewBoundedRay creates a ray with an explicit parametric interval
func NewBoundedRay(origin, direction Vec3, tMin, tMax float64) Ray {
	return Ray{Origin: origin, Direction: direction, TMin: tMin, TMax: tMax}
}

// At returns the point at parameter t along the ray
func (r Ray) At(t float64) Vec3 {
	return r.Origin.Add(r.Direction.Multiply(t))
}

// OffsetOrigin returns a copy of point nudged along normal so that a
// secondary ray started there does not immediately re-hit the surface it
// left. The offset scales with the distance the previous ray travelled,
// which keeps the nudge proportional to the float error accumulated at the
// hit point. Grazing rays on large distant geometry can still slip through
// in single precision; the scale factor only suppresses the common cases.
func OffsetOrigin(point, normal, direction Vec3, hitDistance float64) Vec3 {
	epsilon := RayEpsilon * (1.0 + hitDistance)
	if direction.Dot(normal) < 0 {
		return point.Subtract(normal.Multiply(epsilon))
	}
	return point.Add(normal.Multiply(epsilon))
}

// RayEpsilon is the base offset applied when re-originating secondary rays.
const RayEpsilon = 1e-6
