package lights

import (
	"math"

	"github.com/ItsHoff/rusty/pkg/core"
)

// PointLight emits its intensity uniformly in all directions from a single
// point. It has no area, so direct samples are delta distributions.
type PointLight struct {
	Position  core.Vec3
	Intensity core.Vec3 // Radiant intensity, power per solid angle
}

// NewPointLight creates a point light with the given radiant intensity
func NewPointLight(position, intensity core.Vec3) *PointLight {
	return &PointLight{Position: position, Intensity: intensity}
}

func (pl *PointLight) Type() LightType {
	return LightTypePoint
}

// Sample returns the single possible sample toward the light. The delta
// position has probability one and the emission carries the inverse square
// falloff.
func (pl *PointLight) Sample(point core.Vec3, sample core.Vec2) LightSample {
	toLight := pl.Position.Subtract(point)
	distance := toLight.Length()
	if distance < core.RayEpsilon {
		return LightSample{PDF: 0, Delta: true}
	}
	direction := toLight.Multiply(1.0 / distance)

	return LightSample{
		Point:     pl.Position,
		Normal:    direction.Negate(),
		Direction: direction,
		Distance:  distance,
		Emission:  pl.Intensity.Multiply(1.0 / (distance * distance)),
		PDF:       1.0,
		Delta:     true,
	}
}

// PDF is zero: a delta light can never be hit by a sampled direction
func (pl *PointLight) PDF(point core.Vec3, direction core.Vec3) float64 {
	return 0.0
}

// SampleEmission picks a uniform direction on the full sphere
func (pl *PointLight) SampleEmission(samplePoint core.Vec2, sampleDirection core.Vec2) EmissionSample {
	direction := core.SampleOnUnitSphere(sampleDirection)
	return EmissionSample{
		Point:        pl.Position,
		Normal:       direction,
		Direction:    direction,
		Emission:     pl.Intensity,
		AreaPDF:      1.0,
		DirectionPDF: 1.0 / (4.0 * math.Pi),
		Delta:        true,
	}
}

// EmissionPDF returns the uniform sphere density. The positional density is
// one because the origin is fixed.
func (pl *PointLight) EmissionPDF(point core.Vec3, direction core.Vec3) (float64, float64) {
	return 1.0, 1.0 / (4.0 * math.Pi)
}

// Power integrates the intensity over the full sphere
func (pl *PointLight) Power() float64 {
	return pl.Intensity.Luminance() * 4.0 * math.Pi
}
