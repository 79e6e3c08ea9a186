package core

import "math"

// Frame is an orthonormal basis around a surface normal. BSDF evaluation
// happens in the local frame where the normal is +Z.
type Frame struct {
	Tangent   Vec3
	Bitangent Vec3
	Normal    Vec3
}

// NewFrame builds an orthonormal basis around the given unit normal
func NewFrame(normal Vec3) Frame {
	var up Vec3
	if math.Abs(normal.X) > 0.1 {
		up = NewVec3(0, 1, 0)
	} else {
		up = NewVec3(1, 0, 0)
	}
	tangent := up.Cross(normal).Normalize()
	bitangent := normal.Cross(tangent)
	return Frame{Tangent: tangent, Bitangent: bitangent, Normal: normal}
}

// ToLocal transforms a world-space direction into the frame
func (f Frame) ToLocal(v Vec3) Vec3 {
	return NewVec3(v.Dot(f.Tangent), v.Dot(f.Bitangent), v.Dot(f.Normal))
}

// ToWorld transforms a frame-local direction back to world space
func (f Frame) ToWorld(v Vec3) Vec3 {
	return f.Tangent.Multiply(v.X).
		Add(f.Bitangent.Multiply(v.Y)).
		Add(f.Normal.Multiply(v.Z))
}

// Trigonometry of directions in the local shading frame (+Z is the normal).

// CosTheta returns the cosine of the angle to the frame normal
func CosTheta(v Vec3) float64 { return v.Z }

// Cos2Theta returns the squared cosine of the angle to the frame normal
func Cos2Theta(v Vec3) float64 { return v.Z * v.Z }

// Sin2Theta returns the squared sine of the angle to the frame normal
func Sin2Theta(v Vec3) float64 { return math.Max(0, 1.0-Cos2Theta(v)) }

// Tan2Theta returns the squared tangent of the angle to the frame normal
func Tan2Theta(v Vec3) float64 {
	cos2 := Cos2Theta(v)
	if cos2 == 0 {
		return math.Inf(1)
	}
	return Sin2Theta(v) / cos2
}

// SameHemisphere reports whether two local directions share the upper or
// lower hemisphere of the frame
func SameHemisphere(a, b Vec3) bool {
	return a.Z*b.Z > 0
}

// Reflect mirrors v about the frame normal (local +Z)
func Reflect(v Vec3) Vec3 {
	return NewVec3(-v.X, -v.Y, v.Z)
}

// ReflectAbout mirrors v about an arbitrary unit vector n
func ReflectAbout(v, n Vec3) Vec3 {
	return n.Multiply(2 * v.Dot(n)).Subtract(v)
}

// Refract bends a local direction through the surface according to Snell's
// law for the given relative index of refraction (interior over exterior).
// Returns false on total internal reflection.
func Refract(v Vec3, eta float64) (Vec3, bool) {
	etaRatio := eta
	if CosTheta(v) > 0 {
		// Entering the material
		etaRatio = 1.0 / eta
	}
	sin2Out := etaRatio * etaRatio * Sin2Theta(v)
	if sin2Out >= 1.0 {
		return Vec3{}, false
	}
	cosOut := math.Sqrt(1.0 - sin2Out)
	if CosTheta(v) > 0 {
		cosOut = -cosOut
	}
	return NewVec3(-etaRatio*v.X, -etaRatio*v.Y, cosOut), true
}
