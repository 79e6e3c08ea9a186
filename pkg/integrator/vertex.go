package integrator

import (
	"math"

	"github.com/ItsHoff/rusty/pkg/bsdf"
	"github.com/ItsHoff/rusty/pkg/camera"
	"github.com/ItsHoff/rusty/pkg/core"
	"github.com/ItsHoff/rusty/pkg/lights"
)

// Vertex is a single vertex of a light transport subpath. Endpoints carry a
// camera or light reference, interior vertices carry the surface BSDF.
type Vertex struct {
	Point  core.Vec3
	Normal core.Vec3

	// Surface shading state, valid when OnSurface is true
	Frame     core.Frame
	BSDF      bsdf.BSDF
	OnSurface bool

	Light      lights.Light
	LightIndex int
	Camera     *camera.Camera

	// World space direction toward the previous vertex on the subpath
	IncomingDirection core.Vec3

	// Area densities of generating this vertex from either end of the path
	AreaPdfForward float64
	AreaPdfReverse float64

	IsLight         bool
	IsCamera        bool
	IsSpecular      bool
	IsDeltaLight    bool
	IsInfiniteLight bool

	Beta         core.Vec3 // Throughput from the subpath start to this vertex
	EmittedLight core.Vec3 // Radiance emitted toward the previous vertex
}

// Path is a camera or light subpath
type Path struct {
	Vertices []Vertex
}

// Len returns the number of vertices on the subpath
func (p *Path) Len() int {
	return len(p.Vertices)
}

// Connectible reports whether the vertex can take part in a deterministic
// connection. Specular vertices and delta lights cannot.
func (v *Vertex) Connectible() bool {
	if v.IsSpecular || v.IsDeltaLight {
		return false
	}
	return v.OnSurface || v.IsLight || v.IsCamera
}

// EvaluateBSDF evaluates the surface BSDF between the stored incoming
// direction and the given world space outgoing direction
func (v *Vertex) EvaluateBSDF(direction core.Vec3) core.Vec3 {
	if !v.OnSurface {
		return core.Vec3{}
	}
	wo := v.Frame.ToLocal(v.IncomingDirection)
	wi := v.Frame.ToLocal(direction)
	return v.BSDF.Evaluate(wo, wi)
}

// BSDFPdf returns the density of sampling the direction toward next given
// the direction toward prev, both in world space
func (v *Vertex) BSDFPdf(toPrev, toNext core.Vec3) float64 {
	if !v.OnSurface {
		return 0
	}
	wo := v.Frame.ToLocal(toPrev)
	wi := v.Frame.ToLocal(toNext)
	return v.BSDF.PDF(wo, wi)
}

// convertPDFDensity converts a solid angle density at this vertex into an
// area density at the next vertex. Densities toward infinite lights stay in
// solid angle.
func (v *Vertex) convertPDFDensity(next *Vertex, pdfDir float64) float64 {
	if next.IsInfiniteLight {
		return pdfDir
	}

	direction := next.Point.Subtract(v.Point)
	distanceSquared := direction.LengthSquared()
	if distanceSquared == 0 {
		return 0.0
	}
	invDist2 := 1.0 / distanceSquared

	pdf := pdfDir
	if next.OnSurface {
		cosTheta := direction.Multiply(math.Sqrt(invDist2)).Dot(next.Normal)
		pdf *= math.Abs(cosTheta)
	}
	return pdf * invDist2
}
