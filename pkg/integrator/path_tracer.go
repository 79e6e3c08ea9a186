package integrator

import (
	"math"

	"github.com/ItsHoff/rusty/pkg/bsdf"
	"github.com/ItsHoff/rusty/pkg/core"
	"github.com/ItsHoff/rusty/pkg/geometry"
	"github.com/ItsHoff/rusty/pkg/lights"
	"github.com/ItsHoff/rusty/pkg/scene"
)

// Russian roulette survival probability bounds. The lower bound keeps the
// compensation factor at most 2x, the upper bound guarantees termination.
const (
	rrMinSurvival = 0.5
	rrMaxSurvival = 0.95
)

// PathTracer is a unidirectional path tracer. Direct lighting is sampled at
// every diffuse vertex and combined with BSDF sampling using the power
// heuristic.
type PathTracer struct {
	config scene.SamplingConfig
}

// NewPathTracer creates a path tracer with the given sampling configuration
func NewPathTracer(config scene.SamplingConfig) *PathTracer {
	return &PathTracer{config: config}
}

// RayColor estimates the radiance arriving along the camera ray
func (pt *PathTracer) RayColor(ray core.Ray, s *scene.Scene, sampler core.Sampler) (core.Vec3, []SplatRay) {
	var radiance core.Vec3
	beta := core.NewVec3(1, 1, 1)

	// Emission found by BSDF sampling is weighted against light sampling,
	// except after specular bounces where light sampling was impossible
	specularBounce := true
	var prevPoint core.Vec3
	prevBsdfPdf := 0.0

	for bounce := 0; bounce < pt.config.MaxDepth; bounce++ {
		isect, found := s.Intersect(ray)
		if !found {
			// Nothing samples the environment directly so no weighting
			env := s.EnvironmentRadiance(ray)
			radiance = radiance.Add(beta.MultiplyVec(env))
			break
		}

		wo := ray.Direction.Negate()
		if le := isect.Material.Le(wo, isect.Normal); !le.IsBlack() {
			weight := 1.0
			if !specularBounce {
				lightPdf := lights.CalculateLightPDF(s.Lights, s.LightSampler, prevPoint, ray.Direction)
				weight = core.PowerHeuristic(1, prevBsdfPdf, 1, lightPdf)
			}
			radiance = radiance.Add(beta.MultiplyVec(le).Multiply(weight))
		}

		b := isect.Material.BSDFAt(isect.UV)
		frame := core.NewFrame(isect.Normal)
		woLocal := frame.ToLocal(wo)

		if !b.IsSpecular() {
			direct := pt.sampleDirectLight(s, &isect, b, frame, woLocal, sampler)
			radiance = radiance.Add(beta.MultiplyVec(direct))
		}

		bsdfSample, ok := b.Sample(woLocal, sampler)
		if !ok || bsdfSample.PDF <= 0 {
			break
		}
		cosTheta := math.Abs(core.CosTheta(bsdfSample.Wi))
		beta = beta.MultiplyVec(bsdfSample.Value).Multiply(cosTheta / bsdfSample.PDF)
		if beta.IsBlack() || !beta.IsFinite() {
			break
		}

		specularBounce = bsdfSample.Specular
		prevBsdfPdf = bsdfSample.PDF
		prevPoint = isect.Point
		ray = isect.SecondaryRay(frame.ToWorld(bsdfSample.Wi))

		if bounce >= pt.config.RussianRouletteMinBounces {
			survival := clampSurvival(beta.Luminance())
			if sampler.Get1D() > survival {
				break
			}
			beta = beta.Multiply(1.0 / survival)
		}
	}
	return radiance, nil
}

// sampleDirectLight estimates the direct illumination at the hit point by
// sampling one light. The contribution carries the power heuristic weight
// against BSDF sampling.
func (pt *PathTracer) sampleDirectLight(s *scene.Scene, isect *geometry.Intersection,
	b bsdf.BSDF, frame core.Frame, woLocal core.Vec3, sampler core.Sampler) core.Vec3 {

	lightSample, _, _, ok := lights.SampleLight(s.Lights, s.LightSampler, isect.Point, sampler)
	if !ok {
		return core.Vec3{}
	}

	wiLocal := frame.ToLocal(lightSample.Direction)
	f := b.Evaluate(woLocal, wiLocal)
	if f.IsBlack() {
		return core.Vec3{}
	}

	shadowRay := isect.ShadowRay(lightSample.Point)
	if s.IsOccluded(shadowRay) {
		return core.Vec3{}
	}

	weight := 1.0
	if !lightSample.Delta {
		// A delta light can never be found by BSDF sampling
		bsdfPdf := b.PDF(woLocal, wiLocal)
		weight = core.PowerHeuristic(1, lightSample.PDF, 1, bsdfPdf)
	}

	cosTheta := math.Abs(core.CosTheta(wiLocal))
	return f.MultiplyVec(lightSample.Emission).Multiply(cosTheta * weight / lightSample.PDF)
}

func clampSurvival(luminance float64) float64 {
	return math.Min(rrMaxSurvival, math.Max(rrMinSurvival, luminance))
}
