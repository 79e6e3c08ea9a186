// Package integrator implements the light transport algorithms: a
// unidirectional path tracer with next event estimation and a bidirectional
// path tracer.
package integrator

import (
	"github.com/ItsHoff/rusty/pkg/core"
	"github.com/ItsHoff/rusty/pkg/scene"
)

// SplatRay is a color contribution that lands on a pixel other than the one
// being sampled. The renderer maps the ray back to a pixel through the
// camera.
type SplatRay struct {
	Ray   core.Ray
	Color core.Vec3
}

// Integrator estimates the radiance arriving along a camera ray
type Integrator interface {
	// RayColor returns the pixel contribution and any splat contributions
	// produced while sampling
	RayColor(ray core.Ray, s *scene.Scene, sampler core.Sampler) (core.Vec3, []SplatRay)
}

// New creates an integrator by name. Recognized names are "pt" and "bdpt".
func New(name string, config scene.SamplingConfig) (Integrator, bool) {
	switch name {
	case "pt":
		return NewPathTracer(config), true
	case "bdpt":
		return NewBDPT(config), true
	default:
		return nil, false
	}
}
