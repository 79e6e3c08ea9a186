package integrator

import (
	"math"

	"github.com/ItsHoff/rusty/pkg/core"
	"github.com/ItsHoff/rusty/pkg/scene"
)

// calculateMISWeight computes the power heuristic weight of strategy (s, t)
// against every other strategy that could have produced the same path. The
// weight is 1 / (1 + sum of squared density ratios of the alternatives),
// built from the forward and reverse area densities stored on the vertices.
func (bdpt *BDPT) calculateMISWeight(cameraPath, lightPath *Path, sampledVertex *Vertex, s, t int, sc *scene.Scene) float64 {
	if s+t == 2 {
		return 1.0
	}

	// Paths ending on the environment can only be found by camera rays
	if s == 0 && t > 1 && cameraPath.Vertices[t-1].IsInfiniteLight {
		return 1.0
	}

	// Delta densities are stored as zero, treat them as one in the ratios
	remap0 := func(f float64) float64 {
		if f != 0 {
			return f
		}
		return 1.0
	}

	// Connection endpoints and their predecessors
	var qs, pt, qsMinus, ptMinus *Vertex
	if s > 0 {
		qs = &lightPath.Vertices[s-1]
	}
	if t > 0 {
		pt = &cameraPath.Vertices[t-1]
	}
	if s > 1 {
		qsMinus = &lightPath.Vertices[s-2]
	}
	if t > 1 {
		ptMinus = &cameraPath.Vertices[t-2]
	}

	// The strategy temporarily rewrites reverse densities around the
	// connection, restore the originals on the way out
	var origPtPdfRev, origPtMinusPdfRev, origQsPdfRev, origQsMinusPdfRev float64
	var origPtSpecular, origQsSpecular bool
	var origQs, origPt Vertex
	defer func() {
		if pt != nil {
			if t == 1 && sampledVertex != nil {
				*pt = origPt
			} else {
				pt.AreaPdfReverse = origPtPdfRev
				pt.IsSpecular = origPtSpecular
			}
		}
		if ptMinus != nil {
			ptMinus.AreaPdfReverse = origPtMinusPdfRev
		}
		if qs != nil {
			if s == 1 && sampledVertex != nil {
				*qs = origQs
			} else {
				qs.AreaPdfReverse = origQsPdfRev
				qs.IsSpecular = origQsSpecular
			}
		}
		if qsMinus != nil {
			qsMinus.AreaPdfReverse = origQsMinusPdfRev
		}
	}()

	// s=1 and t=1 sample their endpoint instead of reusing the subpath
	if s == 1 && qs != nil && sampledVertex != nil {
		origQs = *qs
		*qs = *sampledVertex
	} else if t == 1 && pt != nil && sampledVertex != nil {
		origPt = *pt
		*pt = *sampledVertex
	}

	if pt != nil {
		origPtSpecular = pt.IsSpecular
		origPtPdfRev = pt.AreaPdfReverse
		pt.IsSpecular = false
	}
	if qs != nil {
		origQsSpecular = qs.IsSpecular
		origQsPdfRev = qs.AreaPdfReverse
		qs.IsSpecular = false
	}

	// Reverse density of pt: the density of reaching it from the light side
	if pt != nil {
		if s > 0 {
			pt.AreaPdfReverse = bdpt.calculateVertexPdf(qs, qsMinus, pt, sc)
		} else {
			pt.AreaPdfReverse = bdpt.calculateLightOriginPdf(pt, ptMinus, sc)
		}
	}

	// Reverse density of pt's predecessor
	if ptMinus != nil {
		origPtMinusPdfRev = ptMinus.AreaPdfReverse
		if s > 0 {
			ptMinus.AreaPdfReverse = bdpt.calculateVertexPdf(pt, qs, ptMinus, sc)
		} else {
			ptMinus.AreaPdfReverse = bdpt.calculateLightPdf(pt, ptMinus, sc)
		}
	}

	// Reverse densities on the light subpath side
	if qs != nil {
		qs.AreaPdfReverse = bdpt.calculateVertexPdf(pt, ptMinus, qs, sc)
	}
	if qsMinus != nil {
		origQsMinusPdfRev = qsMinus.AreaPdfReverse
		qsMinus.AreaPdfReverse = bdpt.calculateVertexPdf(qs, pt, qsMinus, sc)
	}

	sumRi := 0.0

	// Hypothetical strategies that move the connection along the camera
	// subpath. Connections through specular vertices are impossible and
	// contribute nothing.
	ri := 1.0
	for i := t - 1; i > 0; i-- {
		vertex := &cameraPath.Vertices[i]
		ri *= remap0(vertex.AreaPdfReverse) / remap0(vertex.AreaPdfForward)
		if !vertex.IsSpecular && !cameraPath.Vertices[i-1].IsSpecular {
			sumRi += ri * ri
		}
	}

	// And along the light subpath
	ri = 1.0
	for i := s - 1; i >= 0; i-- {
		vertex := &lightPath.Vertices[i]
		ri *= remap0(vertex.AreaPdfReverse) / remap0(vertex.AreaPdfForward)

		var deltaOrigin bool
		if i > 0 {
			deltaOrigin = lightPath.Vertices[i-1].IsSpecular
		} else {
			deltaOrigin = vertex.IsDeltaLight
		}
		if !vertex.IsSpecular && !deltaOrigin {
			sumRi += ri * ri
		}
	}

	return 1.0 / (1.0 + sumRi)
}

// calculateVertexPdf returns the area density at next of sampling the
// direction from curr toward next, given the previous vertex on the path
func (bdpt *BDPT) calculateVertexPdf(curr, prev, next *Vertex, sc *scene.Scene) float64 {
	if curr == nil || next == nil {
		return 0
	}
	// A light vertex with no predecessor acts as a path origin and emits
	// instead of scattering. Sampled light endpoints carry no surface
	// state and land here as well.
	if curr.IsLight && (!curr.OnSurface || prev == nil) {
		return bdpt.calculateLightPdf(curr, next, sc)
	}

	wn := next.Point.Subtract(curr.Point)
	if wn.LengthSquared() == 0 {
		return 0
	}
	wn = wn.Normalize()

	var pdf float64
	switch {
	case curr.IsCamera:
		if curr.Camera == nil {
			return 0
		}
		_, pdf = curr.Camera.CalculateRayPDFs(core.NewRay(curr.Point, wn))
		if pdf == 0 {
			return 0
		}
	case curr.OnSurface:
		if prev == nil {
			return 0
		}
		wp := prev.Point.Subtract(curr.Point)
		if wp.LengthSquared() == 0 {
			return 0
		}
		pdf = curr.BSDFPdf(wp.Normalize(), wn)
	default:
		return 0
	}

	return curr.convertPDFDensity(next, pdf)
}

// calculateLightPdf returns the area density at to of a light at curr
// emitting toward it
func (bdpt *BDPT) calculateLightPdf(curr, to *Vertex, sc *scene.Scene) float64 {
	w := to.Point.Subtract(curr.Point)
	distSquared := w.LengthSquared()
	if distSquared == 0 {
		return 0
	}
	invDist2 := 1.0 / distSquared
	w = w.Multiply(math.Sqrt(invDist2))

	var pdf float64
	if curr.IsInfiniteLight {
		// Planar density over the scene cross section
		radius := sc.WorldRadius()
		pdf = 1.0 / (math.Pi * radius * radius)
	} else if curr.Light != nil {
		_, pdfDir := curr.Light.EmissionPDF(curr.Point, w)
		pdf = pdfDir * invDist2
	} else {
		return 0
	}

	if to.OnSurface {
		pdf *= math.Abs(to.Normal.Dot(w))
	}
	return pdf
}

// calculateLightOriginPdf returns the area density of starting a light
// subpath at the given vertex, emitting toward to
func (bdpt *BDPT) calculateLightOriginPdf(lightVertex, to *Vertex, sc *scene.Scene) float64 {
	w := to.Point.Subtract(lightVertex.Point)
	if w.LengthSquared() == 0 {
		return 0
	}
	w = w.Normalize()

	if lightVertex.IsInfiniteLight {
		// Uniform direction density, no light selection for the environment
		return 1.0 / (4.0 * math.Pi)
	}
	if !lightVertex.IsLight || lightVertex.Light == nil {
		return 0
	}

	areaPdf, _ := lightVertex.Light.EmissionPDF(lightVertex.Point, w)
	selectionPdf := sc.LightSampler.LightProbability(lightVertex.LightIndex)
	return areaPdf * selectionPdf
}
