package bsdf

import (
	"math"

	"github.com/ItsHoff/rusty/pkg/core"
)

// GGX is the Trowbridge-Reitz microfacet distribution with a single
// roughness parameter alpha.
type GGX struct {
	Alpha float64
}

// NewGGXFromShininess converts a Phong-style specular exponent to GGX alpha.
// Conversion from http://graphicrants.blogspot.com/2013/08/specular-brdf-reference.html
func NewGGXFromShininess(shininess float64) GGX {
	return GGX{Alpha: math.Sqrt(2.0 / (shininess + 2.0))}
}

// D returns the differential area of microfacets oriented along half
func (g GGX) D(half core.Vec3) float64 {
	cos2 := core.Cos2Theta(half)
	a2 := g.Alpha * g.Alpha
	denom := math.Pi * sqr(cos2*(a2-1.0)+1.0)
	if denom == 0 {
		return 0
	}
	return a2 / denom
}

// Lambda is the Smith shadowing auxiliary function
func (g GGX) Lambda(dir core.Vec3) float64 {
	tan2 := core.Tan2Theta(dir)
	if math.IsInf(tan2, 1) {
		return 0
	}
	a2 := g.Alpha * g.Alpha
	return (math.Sqrt(1.0+a2*tan2) - 1.0) / 2.0
}

// G returns the Smith geometric attenuation for a direction pair
func (g GGX) G(wo, wi core.Vec3) float64 {
	return 1.0 / (1.0 + g.Lambda(wo) + g.Lambda(wi))
}

// SampleHalf draws a half vector proportional to D * cos
func (g GGX) SampleHalf(sample core.Vec2) core.Vec3 {
	phi := 2.0 * math.Pi * sample.X
	a2 := g.Alpha * g.Alpha
	cos2 := (1.0 - sample.Y) / (sample.Y*(a2-1.0) + 1.0)
	sinTheta := math.Sqrt(math.Max(0, 1.0-cos2))
	return core.NewVec3(
		sinTheta*math.Cos(phi),
		sinTheta*math.Sin(phi),
		math.Sqrt(cos2),
	)
}

// PDFHalf returns the density SampleHalf uses for a given half vector
func (g GGX) PDFHalf(half core.Vec3) float64 {
	return g.D(half) * math.Abs(core.CosTheta(half))
}

func sqr(x float64) float64 { return x * x }

// Glossy reflection. Evaluation follows the standard Torrance-Sparrow form
// D * G / (4 cosO cosI); sampling draws a half vector from the GGX
// distribution and mirrors wo about it.

func (b BSDF) evaluateGlossyReflect(wo, wi core.Vec3) core.Vec3 {
	if !core.SameHemisphere(wo, wi) {
		return core.Vec3{}
	}
	cosO := math.Abs(core.CosTheta(wo))
	cosI := math.Abs(core.CosTheta(wi))
	if cosO == 0 || cosI == 0 {
		return core.Vec3{}
	}
	half := wo.Add(wi).Normalize()
	if half.LengthSquared() == 0 {
		return core.Vec3{}
	}
	d := b.GGX.D(half)
	g := b.GGX.G(wo, wi)
	return b.Albedo.Multiply(d * g / (4.0 * cosO * cosI))
}

// evaluateGlossyReflectFresnel is the reflective lobe of glossy
// transmission, scaled by the Fresnel reflectance of the half vector.
func (b BSDF) evaluateGlossyReflectFresnel(wo, wi core.Vec3) core.Vec3 {
	value := b.evaluateGlossyReflect(wo, wi)
	if value.IsBlack() {
		return value
	}
	half := wo.Add(wi).Normalize()
	fr := FresnelDielectric(wo.Dot(half)*signum(core.CosTheta(half)), b.Eta)
	return value.Multiply(fr)
}

func (b BSDF) pdfGlossyReflect(wo, wi core.Vec3) float64 {
	if !core.SameHemisphere(wo, wi) {
		return 0
	}
	half := wo.Add(wi).Normalize()
	if half.LengthSquared() == 0 {
		return 0
	}
	woDotHalf := math.Abs(wo.Dot(half))
	if woDotHalf == 0 {
		return 0
	}
	return b.GGX.PDFHalf(half) / (4.0 * woDotHalf)
}

func (b BSDF) sampleGlossyReflect(wo core.Vec3, sampler core.Sampler) (Sample, bool) {
	half := b.GGX.SampleHalf(sampler.Get2D())
	if core.CosTheta(wo) < 0 {
		half = half.Negate()
	}
	wi := core.ReflectAbout(wo, half)
	if !core.SameHemisphere(wo, wi) {
		// Sampled direction went below the surface
		return Sample{}, false
	}
	pdf := b.pdfGlossyReflect(wo, wi)
	if pdf <= 0 {
		return Sample{}, false
	}
	return Sample{
		Wi:    wi,
		Value: b.evaluateGlossyReflect(wo, wi),
		PDF:   pdf,
	}, true
}

// Glossy transmission. The transmissive lobe uses the generalized half
// vector h = -(wo + eta*wi) and the microfacet transmission term; the
// reflective lobe reuses glossy reflection. Fresnel reflectance of the
// sampled half vector chooses between the lobes.

func (b BSDF) etaRatio(wo core.Vec3) float64 {
	// Relative index of refraction along wo: exterior to interior when wo
	// is on the outside of the surface
	if core.CosTheta(wo) > 0 {
		return 1.0 / b.Eta
	}
	return b.Eta
}

func (b BSDF) transmitHalf(wo, wi core.Vec3) (core.Vec3, bool) {
	eta := 1.0 / b.etaRatio(wo)
	half := wo.Add(wi.Multiply(eta))
	if half.LengthSquared() == 0 {
		return core.Vec3{}, false
	}
	half = half.Normalize()
	if core.CosTheta(half) < 0 {
		half = half.Negate()
	}
	return half, true
}

func (b BSDF) evaluateGlossyTransmit(wo, wi core.Vec3) core.Vec3 {
	cosO := core.CosTheta(wo)
	cosI := core.CosTheta(wi)
	if cosO == 0 || cosI == 0 {
		return core.Vec3{}
	}
	half, ok := b.transmitHalf(wo, wi)
	if !ok {
		return core.Vec3{}
	}
	woDotHalf := wo.Dot(half)
	wiDotHalf := wi.Dot(half)
	if woDotHalf*wiDotHalf > 0 {
		// Directions must straddle the microfacet
		return core.Vec3{}
	}
	fr := FresnelDielectric(woDotHalf, b.Eta)
	eta := 1.0 / b.etaRatio(wo)
	denom := sqr(woDotHalf+eta*wiDotHalf) * math.Abs(cosO*cosI)
	if denom == 0 {
		return core.Vec3{}
	}
	d := b.GGX.D(half)
	g := b.GGX.G(wo, wi)
	factor := d * g * (1.0 - fr) * math.Abs(woDotHalf*wiDotHalf) / denom
	return b.Albedo.Multiply(factor)
}

func (b BSDF) pdfGlossyTransmit(wo, wi core.Vec3) float64 {
	if core.SameHemisphere(wo, wi) {
		half := wo.Add(wi).Normalize()
		if half.LengthSquared() == 0 {
			return 0
		}
		woDotHalf := math.Abs(wo.Dot(half))
		if woDotHalf == 0 {
			return 0
		}
		fr := FresnelDielectric(wo.Dot(half)*signum(core.CosTheta(half)), b.Eta)
		return fr * b.GGX.PDFHalf(half) / (4.0 * woDotHalf)
	}
	half, ok := b.transmitHalf(wo, wi)
	if !ok {
		return 0
	}
	woDotHalf := wo.Dot(half)
	wiDotHalf := wi.Dot(half)
	if woDotHalf*wiDotHalf > 0 {
		return 0
	}
	fr := FresnelDielectric(woDotHalf, b.Eta)
	eta := 1.0 / b.etaRatio(wo)
	denom := sqr(woDotHalf + eta*wiDotHalf)
	if denom == 0 {
		return 0
	}
	// Change of variables from half vector to wi
	dwhDwi := sqr(eta) * math.Abs(wiDotHalf) / denom
	return (1.0 - fr) * b.GGX.PDFHalf(half) * dwhDwi
}

func (b BSDF) sampleGlossyTransmit(wo core.Vec3, sampler core.Sampler) (Sample, bool) {
	half := b.GGX.SampleHalf(sampler.Get2D())
	if core.CosTheta(wo) < 0 {
		half = half.Negate()
	}
	woDotHalf := wo.Dot(half)
	if woDotHalf <= 0 {
		return Sample{}, false
	}
	fr := FresnelDielectric(woDotHalf*signum(core.CosTheta(half)), b.Eta)
	if sampler.Get1D() < fr {
		wi := core.ReflectAbout(wo, half)
		if !core.SameHemisphere(wo, wi) {
			return Sample{}, false
		}
		pdf := b.pdfGlossyTransmit(wo, wi)
		if pdf <= 0 {
			return Sample{}, false
		}
		return Sample{Wi: wi, Value: b.evaluateGlossyReflectFresnel(wo, wi), PDF: pdf}, true
	}
	// Refract wo about the sampled microfacet normal
	frame := core.NewFrame(half)
	wi, ok := core.Refract(frame.ToLocal(wo), b.Eta)
	if !ok {
		return Sample{}, false
	}
	wi = frame.ToWorld(wi)
	if core.SameHemisphere(wo, wi) {
		return Sample{}, false
	}
	pdf := b.pdfGlossyTransmit(wo, wi)
	if pdf <= 0 {
		return Sample{}, false
	}
	value := b.evaluateGlossyTransmit(wo, wi)
	if value.IsBlack() {
		return Sample{}, false
	}
	return Sample{Wi: wi, Value: value, PDF: pdf}, true
}

func signum(x float64) float64 {
	if x < 0 {
		return -1
	}
	return 1
}
