package scene

import (
	"github.com/ItsHoff/rusty/pkg/bsdf"
	"github.com/ItsHoff/rusty/pkg/camera"
	"github.com/ItsHoff/rusty/pkg/core"
	"github.com/ItsHoff/rusty/pkg/geometry"
)

// Built-in scene names accepted by the CLI
const (
	SceneCornell         = "cornell"
	SceneCornellSpecular = "cornell-specular"
	SceneCornellGlossy   = "cornell-glossy"
)

// SceneNames lists the built-in scenes in display order
func SceneNames() []string {
	return []string{SceneCornell, SceneCornellSpecular, SceneCornellGlossy}
}

// NewScene constructs a built-in scene by name
func NewScene(name string, config SamplingConfig) (*Scene, bool) {
	switch name {
	case SceneCornell:
		return NewCornellScene(config), true
	case SceneCornellSpecular:
		return NewCornellSpecularScene(config), true
	case SceneCornellGlossy:
		return NewCornellGlossyScene(config), true
	default:
		return nil, false
	}
}

// NewCornellScene builds the classic Cornell box with two diffuse blocks
func NewCornellScene(config SamplingConfig) *Scene {
	s := newCornellShell(config)
	addBlocks(s, blockMaterials{
		tall:  &bsdf.Material{Name: "tall_block", Scattering: bsdf.Lambertian, Albedo: core.NewVec3(0.73, 0.73, 0.73)},
		short: &bsdf.Material{Name: "short_block", Scattering: bsdf.Lambertian, Albedo: core.NewVec3(0.73, 0.73, 0.73)},
	})
	s.Build()
	return s
}

// NewCornellSpecularScene replaces the blocks with a mirror and a glass block
func NewCornellSpecularScene(config SamplingConfig) *Scene {
	s := newCornellShell(config)
	addBlocks(s, blockMaterials{
		tall:  &bsdf.Material{Name: "mirror_block", Scattering: bsdf.SpecularReflect, Albedo: core.NewVec3(0.95, 0.95, 0.95)},
		short: &bsdf.Material{Name: "glass_block", Scattering: bsdf.SpecularTransmit, Albedo: core.NewVec3(1, 1, 1), Eta: 1.5},
	})
	s.Build()
	return s
}

// NewCornellGlossyScene uses rough metal and rough glass blocks
func NewCornellGlossyScene(config SamplingConfig) *Scene {
	s := newCornellShell(config)
	addBlocks(s, blockMaterials{
		tall:  &bsdf.Material{Name: "rough_metal", Scattering: bsdf.GlossyReflect, Albedo: core.NewVec3(0.9, 0.7, 0.3), Shininess: 200},
		short: &bsdf.Material{Name: "rough_glass", Scattering: bsdf.GlossyTransmit, Albedo: core.NewVec3(1, 1, 1), Eta: 1.5, Shininess: 500},
	})
	s.Build()
	return s
}

type blockMaterials struct {
	tall  *bsdf.Material
	short *bsdf.Material
}

// newCornellShell builds the box walls, the ceiling light and the camera.
// Dimensions follow the classic Cornell data scaled to a unit-ish box with
// the floor on y=0 and the open side toward +z.
func newCornellShell(config SamplingConfig) *Scene {
	white := &bsdf.Material{Name: "white", Scattering: bsdf.Lambertian, Albedo: core.NewVec3(0.73, 0.73, 0.73)}
	red := &bsdf.Material{Name: "red", Scattering: bsdf.Lambertian, Albedo: core.NewVec3(0.65, 0.05, 0.05)}
	green := &bsdf.Material{Name: "green", Scattering: bsdf.Lambertian, Albedo: core.NewVec3(0.12, 0.45, 0.15)}
	light := &bsdf.Material{
		Name:       "light",
		Scattering: bsdf.Lambertian,
		Albedo:     core.NewVec3(0.78, 0.78, 0.78),
		Emission:   core.NewVec3(17, 12, 4),
	}

	s := &Scene{
		SamplingConfig: config,
		Camera: camera.New(
			core.NewVec3(0.5, 0.5, 2.1),
			core.NewVec3(0.5, 0.5, 0.0),
			core.NewVec3(0, 1, 0),
			38.0, config.Width, config.Height,
		),
	}

	// Floor, ceiling and back wall
	addQuad(s, core.NewVec3(0, 0, 1), core.NewVec3(1, 0, 1), core.NewVec3(1, 0, 0), core.NewVec3(0, 0, 0), white)
	addQuad(s, core.NewVec3(0, 1, 0), core.NewVec3(1, 1, 0), core.NewVec3(1, 1, 1), core.NewVec3(0, 1, 1), white)
	addQuad(s, core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), core.NewVec3(1, 1, 0), core.NewVec3(0, 1, 0), white)
	// Left wall red, right wall green
	addQuad(s, core.NewVec3(0, 0, 1), core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0), core.NewVec3(0, 1, 1), red)
	addQuad(s, core.NewVec3(1, 0, 0), core.NewVec3(1, 0, 1), core.NewVec3(1, 1, 1), core.NewVec3(1, 1, 0), green)
	// Ceiling light, slightly below the ceiling so it faces down
	addQuad(s,
		core.NewVec3(0.35, 0.999, 0.35),
		core.NewVec3(0.65, 0.999, 0.35),
		core.NewVec3(0.65, 0.999, 0.65),
		core.NewVec3(0.35, 0.999, 0.65),
		light)

	return s
}

// addBlocks places the tall and short blocks of the classic layout
func addBlocks(s *Scene, materials blockMaterials) {
	addBox(s,
		core.NewVec3(0.10, 0, 0.15), core.NewVec3(0.40, 0.60, 0.45),
		materials.tall)
	addBox(s,
		core.NewVec3(0.55, 0, 0.50), core.NewVec3(0.85, 0.30, 0.80),
		materials.short)
}

// addQuad appends a quad as two triangles. Vertices are counter clockwise
// when seen from the front face.
func addQuad(s *Scene, a, b, c, d core.Vec3, material *bsdf.Material) {
	s.Triangles = append(s.Triangles,
		geometry.NewTriangle(a, b, c, material),
		geometry.NewTriangle(a, c, d, material),
	)
}

// addBox appends an axis-aligned box with outward faces
func addBox(s *Scene, min, max core.Vec3, material *bsdf.Material) {
	corners := [8]core.Vec3{
		core.NewVec3(min.X, min.Y, min.Z), // 0
		core.NewVec3(max.X, min.Y, min.Z), // 1
		core.NewVec3(max.X, max.Y, min.Z), // 2
		core.NewVec3(min.X, max.Y, min.Z), // 3
		core.NewVec3(min.X, min.Y, max.Z), // 4
		core.NewVec3(max.X, min.Y, max.Z), // 5
		core.NewVec3(max.X, max.Y, max.Z), // 6
		core.NewVec3(min.X, max.Y, max.Z), // 7
	}
	// Each face counter clockwise from outside
	addQuad(s, corners[4], corners[5], corners[6], corners[7], material) // +z
	addQuad(s, corners[1], corners[0], corners[3], corners[2], material) // -z
	addQuad(s, corners[5], corners[1], corners[2], corners[6], material) // +x
	addQuad(s, corners[0], corners[4], corners[7], corners[3], material) // -x
	addQuad(s, corners[7], corners[6], corners[2], corners[3], material) // +y
	addQuad(s, corners[0], corners[1], corners[5], corners[4], material) // -y
}
