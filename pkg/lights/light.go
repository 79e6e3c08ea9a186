package lights

import (
	"github.com/ItsHoff/rusty/pkg/core"
)

type LightType string

const (
	LightTypeArea  LightType = "area"
	LightTypePoint LightType = "point"
)

// Light is a source that can be sampled for direct lighting and emission
type Light interface {
	Type() LightType

	// Sample picks a point on the light toward a specific shading point.
	// The returned direction points FROM the shading point TO the light
	// and the PDF is measured in solid angle at the shading point.
	Sample(point core.Vec3, sample core.Vec2) LightSample

	// PDF returns the solid angle density of sampling the given direction
	// from the shading point. Zero for delta lights.
	PDF(point core.Vec3, direction core.Vec3) float64

	// SampleEmission starts a light path: a point on the light and an
	// outgoing direction, with separate area and direction densities.
	SampleEmission(samplePoint core.Vec2, sampleDirection core.Vec2) EmissionSample

	// EmissionPDF returns the area and direction densities of emitting
	// from the given point in the given direction
	EmissionPDF(point core.Vec3, direction core.Vec3) (areaPDF, directionPDF float64)

	// Power estimates the total emitted power, used to weight light selection
	Power() float64
}

// LightSample is one sampled point on a light
type LightSample struct {
	Point     core.Vec3 // Point on the light source
	Normal    core.Vec3 // Normal at the sample point
	Direction core.Vec3 // Direction from shading point to light
	Distance  float64   // Distance to the sample point
	Emission  core.Vec3 // Radiance toward the shading point
	PDF       float64   // Solid angle density at the shading point
	Delta     bool      // True for point lights with no sampleable area
}

// EmissionSample is one sampled emission ray for light path generation
type EmissionSample struct {
	Point        core.Vec3 // Point on the light surface
	Normal       core.Vec3 // Outward surface normal at the point
	Direction    core.Vec3 // Emission direction from the surface
	Emission     core.Vec3 // Radiance leaving in that direction
	AreaPDF      float64   // Density of the position, per unit area
	DirectionPDF float64   // Density of the direction, per solid angle
	Delta        bool      // True when the position cannot be sampled by area
}

// LightSampler selects one light out of many
type LightSampler interface {
	// SampleLight picks a light and returns it with its selection
	// probability and index
	SampleLight(u float64) (Light, float64, int)

	// LightProbability returns the selection probability of the light at
	// the given index
	LightProbability(lightIndex int) float64

	// LightCount returns the number of selectable lights
	LightCount() int
}

// SampleLight selects a light with the sampler and samples it toward the
// shading point. The sample PDF includes the selection probability.
func SampleLight(lights []Light, lightSampler LightSampler, point core.Vec3, sampler core.Sampler) (LightSample, Light, int, bool) {
	if len(lights) == 0 {
		return LightSample{}, nil, -1, false
	}
	selectedLight, selectionPdf, lightIndex := lightSampler.SampleLight(sampler.Get1D())
	if selectedLight == nil || selectionPdf == 0 {
		return LightSample{}, nil, -1, false
	}

	sample := selectedLight.Sample(point, sampler.Get2D())
	sample.PDF *= selectionPdf
	if sample.PDF <= 0 || sample.Emission.IsBlack() {
		return LightSample{}, nil, -1, false
	}
	return sample, selectedLight, lightIndex, true
}

// SampleLightEmission selects a light and samples an emission ray from it.
// The selection probability folds into the area PDF only.
func SampleLightEmission(lights []Light, lightSampler LightSampler, sampler core.Sampler) (EmissionSample, Light, int, bool) {
	if len(lights) == 0 {
		return EmissionSample{}, nil, -1, false
	}
	selectedLight, selectionPdf, lightIndex := lightSampler.SampleLight(sampler.Get1D())
	if selectedLight == nil || selectionPdf == 0 {
		return EmissionSample{}, nil, -1, false
	}

	sample := selectedLight.SampleEmission(sampler.Get2D(), sampler.Get2D())
	sample.AreaPDF *= selectionPdf
	return sample, selectedLight, lightIndex, true
}

// CalculateLightPDF sums the solid angle densities of all lights for the
// given direction, each weighted by its selection probability. This is the
// density the light sampling strategy assigns to a direction found by BSDF
// sampling, needed for MIS.
func CalculateLightPDF(lights []Light, lightSampler LightSampler, point, direction core.Vec3) float64 {
	totalPDF := 0.0
	for i, light := range lights {
		lightPDF := light.PDF(point, direction)
		if lightPDF > 0 {
			totalPDF += lightPDF * lightSampler.LightProbability(i)
		}
	}
	return totalPDF
}
