package lights

import (
	"math"

	"github.com/ItsHoff/rusty/pkg/core"
	"github.com/ItsHoff/rusty/pkg/geometry"
)

// TriangleLight is an emissive triangle sampled by area
type TriangleLight struct {
	Triangle *geometry.Triangle
	// Index of the triangle in the scene so hits can be matched back to
	// the light that owns them
	PrimID int
}

// NewTriangleLight wraps an emissive scene triangle
func NewTriangleLight(triangle *geometry.Triangle, primID int) *TriangleLight {
	return &TriangleLight{Triangle: triangle, PrimID: primID}
}

func (tl *TriangleLight) Type() LightType {
	return LightTypeArea
}

// Sample picks a uniform point on the triangle and converts its area density
// to solid angle at the shading point
func (tl *TriangleLight) Sample(point core.Vec3, sample core.Vec2) LightSample {
	lightPoint, lightNormal := tl.Triangle.SamplePoint(sample)

	toLight := lightPoint.Subtract(point)
	distance := toLight.Length()
	if distance < core.RayEpsilon {
		return LightSample{PDF: 0}
	}
	direction := toLight.Multiply(1.0 / distance)

	// pdf_solid_angle = pdf_area * distance^2 / |cos(theta_light)|
	cosTheta := lightNormal.AbsDot(direction)
	if cosTheta < 1e-8 {
		return LightSample{PDF: 0}
	}
	solidAnglePDF := tl.Triangle.PDFArea() * distance * distance / cosTheta

	// Emission only leaves the front face
	emission := tl.Triangle.Le(direction.Negate())

	return LightSample{
		Point:     lightPoint,
		Normal:    lightNormal,
		Direction: direction,
		Distance:  distance,
		Emission:  emission,
		PDF:       solidAnglePDF,
	}
}

// PDF returns the solid angle density of hitting the triangle from the
// shading point along the given direction
func (tl *TriangleLight) PDF(point core.Vec3, direction core.Vec3) float64 {
	ray := core.NewRay(point, direction)
	var isect geometry.Intersection
	if !tl.Triangle.Hit(ray, ray.TMin, ray.TMax, &isect) {
		return 0.0
	}

	cosTheta := tl.Triangle.GeometricNormal().AbsDot(direction)
	if cosTheta < 1e-8 {
		return 0.0
	}
	return tl.Triangle.PDFArea() * isect.T * isect.T / cosTheta
}

// SampleEmission picks a uniform point on the surface and a cosine-weighted
// direction from its front hemisphere
func (tl *TriangleLight) SampleEmission(samplePoint core.Vec2, sampleDirection core.Vec2) EmissionSample {
	point, normal := tl.Triangle.SamplePoint(samplePoint)
	direction := core.SampleCosineHemisphere(normal, sampleDirection)
	cosTheta := direction.Dot(normal)

	return EmissionSample{
		Point:        point,
		Normal:       normal,
		Direction:    direction,
		Emission:     tl.Triangle.Le(direction),
		AreaPDF:      tl.Triangle.PDFArea(),
		DirectionPDF: core.CosineHemispherePDF(cosTheta),
	}
}

// EmissionPDF returns the densities of emitting from the given surface point
// in the given direction
func (tl *TriangleLight) EmissionPDF(point core.Vec3, direction core.Vec3) (float64, float64) {
	cosTheta := tl.Triangle.GeometricNormal().Dot(direction)
	if cosTheta <= 0 {
		return tl.Triangle.PDFArea(), 0.0
	}
	return tl.Triangle.PDFArea(), core.CosineHemispherePDF(cosTheta)
}

// Power integrates the emission over area and the front hemisphere
func (tl *TriangleLight) Power() float64 {
	emission := tl.Triangle.Material.Emission
	return emission.Luminance() * tl.Triangle.Area() * math.Pi
}
