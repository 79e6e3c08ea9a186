// Package bsdf implements the surface scattering model. A BSDF is a tagged
// union of the supported variants dispatched by a switch at each query
// site, keeping the hottest loop free of interface calls. All directions
// are unit vectors in the local shading frame where +Z is the shading
// normal; wo points toward the previous path vertex and wi toward the next.
package bsdf

import (
	"math"

	"github.com/ItsHoff/rusty/pkg/core"
)

// Kind selects the scattering variant of a BSDF
type Kind uint8

const (
	// Lambertian is perfectly diffuse reflection
	Lambertian Kind = iota
	// SpecularReflect is an ideal mirror
	SpecularReflect
	// SpecularTransmit is ideal Fresnel-modulated reflection and refraction
	SpecularTransmit
	// GlossyReflect is microfacet (GGX) reflection
	GlossyReflect
	// GlossyTransmit is microfacet (GGX) Fresnel-modulated transmission
	GlossyTransmit
)

// BSDF describes how a surface point redirects incident light
type BSDF struct {
	Kind   Kind
	Albedo core.Vec3 // reflectance, or transmittance filter for transmissive kinds
	Eta    float64   // index of refraction relative to the exterior
	GGX    GGX       // microfacet distribution for glossy kinds
}

// Sample is the result of importance-sampling a BSDF
type Sample struct {
	Wi       core.Vec3 // Sampled incident direction (local frame)
	Value    core.Vec3 // BSDF value for (wo, wi)
	PDF      float64   // Solid-angle density, or the discrete branch probability
	Specular bool      // Dirac event: skip the ordinary value*cos/pdf handling of MIS
}

// NewLambertian creates a diffuse BRDF
func NewLambertian(albedo core.Vec3) BSDF {
	return BSDF{Kind: Lambertian, Albedo: albedo}
}

// NewSpecularReflect creates an ideal mirror BRDF
func NewSpecularReflect(albedo core.Vec3) BSDF {
	return BSDF{Kind: SpecularReflect, Albedo: albedo}
}

// NewSpecularTransmit creates an ideal Fresnel-modulated glass BSDF
func NewSpecularTransmit(filter core.Vec3, eta float64) BSDF {
	return BSDF{Kind: SpecularTransmit, Albedo: filter, Eta: eta}
}

// NewGlossyReflect creates a GGX microfacet BRDF from a Phong-style shininess
func NewGlossyReflect(albedo core.Vec3, shininess float64) BSDF {
	return BSDF{Kind: GlossyReflect, Albedo: albedo, GGX: NewGGXFromShininess(shininess)}
}

// NewGlossyTransmit creates a GGX microfacet transmission BSDF
func NewGlossyTransmit(filter core.Vec3, shininess, eta float64) BSDF {
	return BSDF{Kind: GlossyTransmit, Albedo: filter, Eta: eta, GGX: NewGGXFromShininess(shininess)}
}

// IsSpecular reports whether sampling the BSDF is a Dirac event
func (b BSDF) IsSpecular() bool {
	return b.Kind == SpecularReflect || b.Kind == SpecularTransmit
}

// Evaluate returns the BSDF value for a given direction pair. Discrete
// variants evaluate to zero everywhere: their contribution can only be
// obtained through Sample.
func (b BSDF) Evaluate(wo, wi core.Vec3) core.Vec3 {
	switch b.Kind {
	case Lambertian:
		if !core.SameHemisphere(wo, wi) {
			return core.Vec3{}
		}
		return b.Albedo.Multiply(1.0 / math.Pi)
	case GlossyReflect:
		return b.evaluateGlossyReflect(wo, wi)
	case GlossyTransmit:
		if core.SameHemisphere(wo, wi) {
			return b.evaluateGlossyReflectFresnel(wo, wi)
		}
		return b.evaluateGlossyTransmit(wo, wi)
	default:
		// Dirac variants
		return core.Vec3{}
	}
}

// Sample draws an incident direction distributed (ideally) proportionally
// to the BSDF's contribution. Returns false when the sample carries no
// energy and the path should terminate.
func (b BSDF) Sample(wo core.Vec3, sampler core.Sampler) (Sample, bool) {
	switch b.Kind {
	case Lambertian:
		return b.sampleLambertian(wo, sampler)
	case SpecularReflect:
		return b.sampleSpecularReflect(wo)
	case SpecularTransmit:
		return b.sampleSpecularTransmit(wo, sampler)
	case GlossyReflect:
		return b.sampleGlossyReflect(wo, sampler)
	case GlossyTransmit:
		return b.sampleGlossyTransmit(wo, sampler)
	default:
		return Sample{}, false
	}
}

// PDF returns the solid-angle density Sample would have for producing wi
// from wo. Discrete variants return zero: their sampling density is a
// Dirac mass that ordinary MIS must not mix with.
func (b BSDF) PDF(wo, wi core.Vec3) float64 {
	switch b.Kind {
	case Lambertian:
		if !core.SameHemisphere(wo, wi) {
			return 0
		}
		return core.CosineHemispherePDF(math.Abs(core.CosTheta(wi)))
	case GlossyReflect:
		return b.pdfGlossyReflect(wo, wi)
	case GlossyTransmit:
		return b.pdfGlossyTransmit(wo, wi)
	default:
		return 0
	}
}

func (b BSDF) sampleLambertian(wo core.Vec3, sampler core.Sampler) (Sample, bool) {
	local := core.SampleCosineHemisphereLocal(sampler.Get2D())
	if core.CosTheta(wo) < 0 {
		// Stay in the hemisphere the ray arrived from
		local.Z = -local.Z
	}
	pdf := core.CosineHemispherePDF(math.Abs(core.CosTheta(local)))
	if pdf == 0 {
		return Sample{}, false
	}
	return Sample{
		Wi:    local,
		Value: b.Albedo.Multiply(1.0 / math.Pi),
		PDF:   pdf,
	}, true
}

func (b BSDF) sampleSpecularReflect(wo core.Vec3) (Sample, bool) {
	wi := core.Reflect(wo)
	cosTheta := math.Abs(core.CosTheta(wi))
	if cosTheta == 0 {
		return Sample{}, false
	}
	// Dirac event: pdf is conceptually a unit mass, the 1/|cos| cancels
	// the cosine the integrator applies
	return Sample{
		Wi:       wi,
		Value:    b.Albedo.Multiply(1.0 / cosTheta),
		PDF:      1.0,
		Specular: true,
	}, true
}

func (b BSDF) sampleSpecularTransmit(wo core.Vec3, sampler core.Sampler) (Sample, bool) {
	fr := FresnelDielectric(core.CosTheta(wo), b.Eta)
	if sampler.Get1D() < fr {
		wi := core.Reflect(wo)
		cosTheta := math.Abs(core.CosTheta(wi))
		if cosTheta == 0 {
			return Sample{}, false
		}
		return Sample{
			Wi:       wi,
			Value:    core.NewVec3(fr, fr, fr).Multiply(1.0 / cosTheta),
			PDF:      fr,
			Specular: true,
		}, true
	}
	wi, ok := core.Refract(wo, b.Eta)
	if !ok {
		// Total internal reflection is already covered by fr == 1
		return Sample{}, false
	}
	cosTheta := math.Abs(core.CosTheta(wi))
	if cosTheta == 0 {
		return Sample{}, false
	}
	ft := 1.0 - fr
	return Sample{
		Wi:       wi,
		Value:    b.Albedo.Multiply(ft / cosTheta),
		PDF:      ft,
		Specular: true,
	}, true
}
