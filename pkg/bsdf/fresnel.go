package bsdf

import (
	"math"

	"github.com/ItsHoff/rusty/pkg/core"
)

// FresnelDielectric computes the Fresnel reflectance of an unpolarized ray
// hitting a dielectric boundary. cosTheta is the signed cosine between the
// outgoing direction and the surface normal; eta is the interior index of
// refraction relative to the exterior.
func FresnelDielectric(cosTheta, eta float64) float64 {
	etaI, etaT := 1.0, eta
	if cosTheta < 0 {
		// Exiting the material
		etaI, etaT = etaT, etaI
		cosTheta = -cosTheta
	}
	cosTheta = math.Min(cosTheta, 1.0)

	sin2I := math.Max(0, 1.0-cosTheta*cosTheta)
	sin2T := sqr(etaI/etaT) * sin2I
	if sin2T >= 1.0 {
		// Total internal reflection
		return 1.0
	}
	cosT := math.Sqrt(1.0 - sin2T)

	parallel := (etaT*cosTheta - etaI*cosT) / (etaT*cosTheta + etaI*cosT)
	perpendicular := (etaI*cosTheta - etaT*cosT) / (etaI*cosTheta + etaT*cosT)
	return (sqr(parallel) + sqr(perpendicular)) / 2.0
}

// Schlick approximates Fresnel reflectance from a normal-incidence
// specular color.
func Schlick(cosTheta float64, specular core.Vec3) core.Vec3 {
	c := 1.0 - math.Abs(cosTheta)
	white := core.NewVec3(1, 1, 1)
	return specular.Add(white.Subtract(specular).Multiply(c * c * c * c * c))
}
