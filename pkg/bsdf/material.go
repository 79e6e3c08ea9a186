package bsdf

import "github.com/ItsHoff/rusty/pkg/core"

// Material binds a scattering variant to its surface parameters. Materials
// are immutable after scene load and shared by reference between triangles.
type Material struct {
	Name       string
	Scattering Kind
	Albedo     core.Vec3 // reflectance or transmittance filter
	Eta        float64   // index of refraction for transmissive kinds
	Shininess  float64   // Phong-style exponent for glossy kinds
	Emission   core.Vec3 // emitted radiance, zero for non-emitters
}

// BSDFAt returns the local scattering functions at a surface point. The UV
// coordinate is accepted for parity with textured variants even though the
// current materials are solid colors.
func (m *Material) BSDFAt(uv core.Vec2) BSDF {
	switch m.Scattering {
	case SpecularReflect:
		return NewSpecularReflect(m.Albedo)
	case SpecularTransmit:
		return NewSpecularTransmit(m.Albedo, m.Eta)
	case GlossyReflect:
		return NewGlossyReflect(m.Albedo, m.Shininess)
	case GlossyTransmit:
		return NewGlossyTransmit(m.Albedo, m.Shininess, m.Eta)
	default:
		return NewLambertian(m.Albedo)
	}
}

// IsEmissive reports whether the material emits light
func (m *Material) IsEmissive() bool {
	return !m.Emission.IsBlack()
}

// Le returns the emitted radiance toward direction wo from a surface with
// the given shading normal. Emission is front-face only.
func (m *Material) Le(wo, normal core.Vec3) core.Vec3 {
	if wo.Dot(normal) <= 0 {
		return core.Vec3{}
	}
	return m.Emission
}
