// Package scene assembles triangles, materials, lights and the acceleration
// structure into a renderable scene.
package scene

import (
	"sync/atomic"

	"github.com/ItsHoff/rusty/pkg/camera"
	"github.com/ItsHoff/rusty/pkg/core"
	"github.com/ItsHoff/rusty/pkg/geometry"
	"github.com/ItsHoff/rusty/pkg/lights"
)

// SamplingConfig contains rendering configuration
type SamplingConfig struct {
	Width                     int                // Image width
	Height                    int                // Image height
	SamplesPerPixel           int                // Target rays per pixel
	MaxDepth                  int                // Maximum path length
	RussianRouletteMinBounces int                // Bounces before Russian roulette can trigger
	SplitMode                 geometry.SplitMode // BVH partitioning policy
}

// DefaultSamplingConfig returns sensible defaults for the built-in scenes
func DefaultSamplingConfig() SamplingConfig {
	return SamplingConfig{
		Width:                     512,
		Height:                    512,
		SamplesPerPixel:           64,
		MaxDepth:                  10,
		RussianRouletteMinBounces: 3,
	}
}

// Scene contains all the elements needed for rendering
type Scene struct {
	Camera         *camera.Camera
	Triangles      []*geometry.Triangle
	Lights         []lights.Light
	LightSampler   lights.LightSampler
	Background     core.Vec3 // Radiance for rays that leave the scene
	SamplingConfig SamplingConfig

	bvh         *geometry.BVH
	lightByPrim map[int]int
	rayCount    atomic.Uint64
}

// Build finalizes the scene: collects emissive triangles as area lights,
// constructs the light sampler and the acceleration structure. Must be
// called before rendering.
func (s *Scene) Build() {
	s.lightByPrim = make(map[int]int)
	for i, tri := range s.Triangles {
		if tri.Material != nil && tri.Material.IsEmissive() && !tri.IsDegenerate() {
			s.lightByPrim[i] = len(s.Lights)
			s.Lights = append(s.Lights, lights.NewTriangleLight(tri, i))
		}
	}
	if s.LightSampler == nil {
		s.LightSampler = lights.NewPowerLightSampler(s.Lights)
	}
	s.bvh = geometry.NewBVHWithMode(s.Triangles, s.SamplingConfig.SplitMode)
}

// BVH returns the acceleration structure built by Build
func (s *Scene) BVH() *geometry.BVH {
	return s.bvh
}

// LightForPrim maps a hit primitive back to the area light that owns it
func (s *Scene) LightForPrim(primID int) (lights.Light, int, bool) {
	index, ok := s.lightByPrim[primID]
	if !ok {
		return nil, -1, false
	}
	return s.Lights[index], index, true
}

// Intersect finds the closest surface hit along the ray
func (s *Scene) Intersect(ray core.Ray) (geometry.Intersection, bool) {
	s.rayCount.Add(1)
	return s.bvh.Hit(ray)
}

// IsOccluded reports whether anything blocks the ray within its interval
func (s *Scene) IsOccluded(ray core.Ray) bool {
	s.rayCount.Add(1)
	return s.bvh.IsOccluded(ray)
}

// RayCount returns the number of rays traced so far. Shadow rays count too.
func (s *Scene) RayCount() uint64 {
	return s.rayCount.Load()
}

// Bounds returns the bounding box of all scene geometry
func (s *Scene) Bounds() core.AABB {
	return s.bvh.Bounds()
}

// WorldRadius returns the radius of the scene's bounding sphere, clamped to
// keep infinite light densities stable in tiny scenes
func (s *Scene) WorldRadius() float64 {
	bounds := s.bvh.Bounds()
	if !bounds.IsValid() {
		return 1000.0
	}
	radius := bounds.Max.Subtract(bounds.Center()).Length()
	if radius < 1.0 {
		radius = 1.0
	}
	return radius
}

// EnvironmentRadiance returns the radiance carried by a ray that leaves the
// scene without hitting anything
func (s *Scene) EnvironmentRadiance(ray core.Ray) core.Vec3 {
	return s.Background
}
