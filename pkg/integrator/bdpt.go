package integrator

import (
	"math"

	"github.com/ItsHoff/rusty/pkg/core"
	"github.com/ItsHoff/rusty/pkg/lights"
	"github.com/ItsHoff/rusty/pkg/scene"
)

// BDPT is a bidirectional path tracer. It traces one subpath from the camera
// and one from a light, forms every (s, t) connection between them and
// combines the strategies with the power heuristic.
type BDPT struct {
	config scene.SamplingConfig
}

// Subpath survival probability once Russian roulette starts. The subpath
// densities feed the MIS weights, so the probability has to stay fixed
// instead of tracking throughput like the unidirectional tracer does.
const bdptSurvival = 2.0 / 3.0

// NewBDPT creates a bidirectional path tracer with the given configuration
func NewBDPT(config scene.SamplingConfig) *BDPT {
	return &BDPT{config: config}
}

// bdptStrategy is one path construction strategy with its MIS weight.
// s counts light subpath vertices, t camera subpath vertices.
type bdptStrategy struct {
	s, t         int
	contribution core.Vec3
	misWeight    float64
	splats       []SplatRay
}

// RayColor estimates the radiance arriving along the camera ray. Light
// tracing strategies that land on other pixels return as splat rays.
func (bdpt *BDPT) RayColor(ray core.Ray, s *scene.Scene, sampler core.Sampler) (core.Vec3, []SplatRay) {
	cameraPath := bdpt.generateCameraSubpath(ray, s, sampler, bdpt.config.MaxDepth)
	lightPath := bdpt.generateLightSubpath(s, sampler, bdpt.config.MaxDepth)

	strategies := bdpt.generateStrategies(&cameraPath, &lightPath, s, sampler)

	var color core.Vec3
	var allSplats []SplatRay
	for _, strategy := range strategies {
		if strategy.t == 1 {
			for _, splat := range strategy.splats {
				allSplats = append(allSplats, SplatRay{
					Ray:   splat.Ray,
					Color: splat.Color.Multiply(strategy.misWeight),
				})
			}
			continue
		}
		color = color.Add(strategy.contribution.Multiply(strategy.misWeight))
	}
	return color, allSplats
}

// generateCameraSubpath starts a subpath at the camera and extends it
// through the scene, recording forward and reverse densities per vertex
func (bdpt *BDPT) generateCameraSubpath(ray core.Ray, s *scene.Scene, sampler core.Sampler, maxDepth int) Path {
	path := Path{Vertices: make([]Vertex, 0, maxDepth+1)}

	_, directionPDF := s.Camera.CalculateRayPDFs(ray)

	path.Vertices = append(path.Vertices, Vertex{
		Point:    ray.Origin,
		Normal:   s.Camera.Forward(),
		Camera:   s.Camera,
		IsCamera: true,
		Beta:     core.NewVec3(1, 1, 1),
	})

	bdpt.extendPath(&path, ray, core.NewVec3(1, 1, 1), directionPDF, s, sampler, maxDepth, true)
	return path
}

// generateLightSubpath starts a subpath with an emission sample from a
// light selected by power
func (bdpt *BDPT) generateLightSubpath(s *scene.Scene, sampler core.Sampler, maxDepth int) Path {
	path := Path{Vertices: make([]Vertex, 0, maxDepth+1)}

	emission, light, lightIndex, ok := lights.SampleLightEmission(s.Lights, s.LightSampler, sampler)
	if !ok || emission.DirectionPDF <= 0 || emission.AreaPDF <= 0 {
		return path
	}

	path.Vertices = append(path.Vertices, Vertex{
		Point:          emission.Point,
		Normal:         emission.Normal,
		OnSurface:      !emission.Delta,
		Light:          light,
		LightIndex:     lightIndex,
		IsLight:        true,
		IsDeltaLight:   emission.Delta,
		AreaPdfForward: emission.AreaPDF,
		Beta:           emission.Emission,
		EmittedLight:   emission.Emission,
	})

	// beta = Le * |cos| / (pdfArea * pdfDir), selection already in pdfArea
	cosTheta := math.Abs(emission.Direction.Dot(emission.Normal))
	throughput := emission.Emission.Multiply(cosTheta / (emission.AreaPDF * emission.DirectionPDF))

	ray := core.NewRay(emission.Point, emission.Direction)
	bdpt.extendPath(&path, ray, throughput, emission.DirectionPDF, s, sampler, maxDepth-1, false)
	return path
}

// extendPath traces the ray through the scene appending a vertex per bounce.
// pdfDir is the solid angle density of the incoming ray direction.
func (bdpt *BDPT) extendPath(path *Path, ray core.Ray, beta core.Vec3, pdfDir float64,
	s *scene.Scene, sampler core.Sampler, maxBounces int, isCameraPath bool) {

	for bounce := 0; bounce < maxBounces; bounce++ {
		prev := &path.Vertices[len(path.Vertices)-1]

		isect, found := s.Intersect(ray)
		if !found {
			if !isCameraPath {
				break
			}
			env := s.EnvironmentRadiance(ray)
			path.Vertices = append(path.Vertices, Vertex{
				Point:             ray.Origin.Add(ray.Direction.Multiply(2 * s.WorldRadius())),
				Normal:            ray.Direction.Negate(),
				IncomingDirection: ray.Direction.Negate(),
				AreaPdfForward:    pdfDir, // Solid angle density for infinite lights
				IsLight:           !env.IsBlack(),
				IsInfiniteLight:   true,
				Beta:              beta,
				EmittedLight:      env,
			})
			break
		}

		wo := ray.Direction.Negate()
		vertex := Vertex{
			Point:             isect.Point,
			Normal:            isect.Normal,
			Frame:             core.NewFrame(isect.Normal),
			BSDF:              isect.Material.BSDFAt(isect.UV),
			OnSurface:         true,
			IncomingDirection: wo,
			Beta:              beta,
			EmittedLight:      isect.Material.Le(wo, isect.Normal),
		}
		if light, lightIndex, isLight := s.LightForPrim(isect.PrimID); isLight {
			vertex.Light = light
			vertex.LightIndex = lightIndex
			vertex.IsLight = true
		}
		vertex.AreaPdfForward = prev.convertPDFDensity(&vertex, pdfDir)

		if bounce >= bdpt.config.RussianRouletteMinBounces {
			if sampler.Get1D() > bdptSurvival {
				path.Vertices = append(path.Vertices, vertex)
				break
			}
			beta = beta.Multiply(1.0 / bdptSurvival)
		}

		woLocal := vertex.Frame.ToLocal(wo)
		bsdfSample, didScatter := vertex.BSDF.Sample(woLocal, sampler)
		if !didScatter || bsdfSample.PDF <= 0 {
			path.Vertices = append(path.Vertices, vertex)
			break
		}

		vertex.IsSpecular = bsdfSample.Specular
		pdfDir = bsdfSample.PDF

		cosTheta := math.Abs(core.CosTheta(bsdfSample.Wi))
		beta = beta.MultiplyVec(bsdfSample.Value).Multiply(cosTheta / bsdfSample.PDF)

		// Delta interactions have no meaningful densities for MIS
		pdfRev := 0.0
		if bsdfSample.Specular {
			pdfDir = 0.0
		} else {
			pdfRev = vertex.BSDF.PDF(bsdfSample.Wi, woLocal)
		}
		prev.AreaPdfReverse = vertex.convertPDFDensity(prev, pdfRev)

		path.Vertices = append(path.Vertices, vertex)
		if beta.IsBlack() || !beta.IsFinite() {
			break
		}
		ray = isect.SecondaryRay(vertex.Frame.ToWorld(bsdfSample.Wi))
	}
}

// generateStrategies evaluates every viable (s, t) pairing of the subpaths
func (bdpt *BDPT) generateStrategies(cameraPath, lightPath *Path, s *scene.Scene, sampler core.Sampler) []bdptStrategy {
	strategies := make([]bdptStrategy, 0)

	for ns := 0; ns <= lightPath.Len(); ns++ {
		for nt := 1; nt <= cameraPath.Len(); nt++ {
			if ns+nt < 2 || ns+nt-1 > bdpt.config.MaxDepth {
				continue
			}

			var contribution core.Vec3
			var splats []SplatRay
			var sampledVertex *Vertex

			switch {
			case ns == 0:
				contribution = bdpt.evaluatePathTracingStrategy(cameraPath, nt)
			case nt == 1:
				splats, sampledVertex = bdpt.evaluateLightTracingStrategy(lightPath, ns, s)
			case ns == 1:
				contribution, sampledVertex = bdpt.evaluateDirectLightingStrategy(cameraPath, nt, s, sampler)
			default:
				contribution = bdpt.evaluateConnectionStrategy(cameraPath, lightPath, ns, nt, s)
			}

			if contribution.IsBlack() && len(splats) == 0 {
				continue
			}
			misWeight := bdpt.calculateMISWeight(cameraPath, lightPath, sampledVertex, ns, nt, s)
			strategies = append(strategies, bdptStrategy{
				s:            ns,
				t:            nt,
				contribution: contribution,
				misWeight:    misWeight,
				splats:       splats,
			})
		}
	}
	return strategies
}

// evaluatePathTracingStrategy handles s=0: the camera subpath alone carrying
// the emission of its last vertex
func (bdpt *BDPT) evaluatePathTracingStrategy(cameraPath *Path, t int) core.Vec3 {
	// Emission of interior prefixes belongs to the shorter (s=0, t=k)
	// strategy, so only the full path contributes here
	if t < cameraPath.Len() {
		return core.Vec3{}
	}
	last := &cameraPath.Vertices[t-1]
	return last.EmittedLight.MultiplyVec(last.Beta)
}

// evaluateDirectLightingStrategy handles s=1: sample a light toward the last
// camera vertex. The sampled vertex replaces the light subpath origin during
// MIS weighting.
func (bdpt *BDPT) evaluateDirectLightingStrategy(cameraPath *Path, t int, s *scene.Scene, sampler core.Sampler) (core.Vec3, *Vertex) {
	cameraVertex := &cameraPath.Vertices[t-1]
	if !cameraVertex.Connectible() || !cameraVertex.OnSurface {
		return core.Vec3{}, nil
	}

	lightSample, light, lightIndex, ok := lights.SampleLight(s.Lights, s.LightSampler, cameraVertex.Point, sampler)
	if !ok {
		return core.Vec3{}, nil
	}

	f := cameraVertex.EvaluateBSDF(lightSample.Direction)
	if f.IsBlack() {
		return core.Vec3{}, nil
	}

	shadowRay := core.NewBoundedRay(
		core.OffsetOrigin(cameraVertex.Point, cameraVertex.Normal, lightSample.Direction, 0),
		lightSample.Direction, core.DefaultTMin, lightSample.Distance*(1.0-1e-4))
	if s.IsOccluded(shadowRay) {
		return core.Vec3{}, nil
	}

	cosTheta := math.Abs(lightSample.Direction.Dot(cameraVertex.Normal))
	lightBeta := lightSample.Emission.Multiply(1.0 / lightSample.PDF)
	contribution := f.MultiplyVec(cameraVertex.Beta).MultiplyVec(lightBeta).Multiply(cosTheta)

	// The MIS recurrence works in area densities, so the sampled vertex
	// stores the density of starting a light subpath here, not the solid
	// angle density the sample was drawn with.
	areaPdf, _ := light.EmissionPDF(lightSample.Point, lightSample.Direction.Negate())
	originPdf := areaPdf * s.LightSampler.LightProbability(lightIndex)

	sampledVertex := &Vertex{
		Point:  lightSample.Point,
		Normal: lightSample.Normal,
		// Area light samples lie on a surface, so density conversions
		// toward them pick up the cosine at the light
		OnSurface:      !lightSample.Delta,
		Light:          light,
		LightIndex:     lightIndex,
		IsLight:        true,
		IsDeltaLight:   lightSample.Delta,
		AreaPdfForward: originPdf,
		Beta:           lightBeta,
		EmittedLight:   lightSample.Emission,
	}
	return contribution, sampledVertex
}

// evaluateLightTracingStrategy handles t=1: connect a light subpath vertex
// straight to the camera aperture. The contribution lands on whatever pixel
// the connection projects to, so it returns as a splat ray.
func (bdpt *BDPT) evaluateLightTracingStrategy(lightPath *Path, ns int, s *scene.Scene) ([]SplatRay, *Vertex) {
	lightVertex := &lightPath.Vertices[ns-1]
	if !lightVertex.Connectible() || !lightVertex.OnSurface {
		return nil, nil
	}

	toCamera := s.Camera.Position.Subtract(lightVertex.Point)
	distance := toCamera.Length()
	if distance < core.RayEpsilon {
		return nil, nil
	}
	wi := toCamera.Multiply(1.0 / distance)

	// Ray leaving the aperture toward the light vertex
	splatRay := core.NewRay(s.Camera.Position, wi.Negate())
	importance := s.Camera.Importance(splatRay)
	if importance.IsBlack() {
		return nil, nil
	}

	f := lightVertex.EvaluateBSDF(wi)
	if f.IsBlack() {
		return nil, nil
	}

	shadowRay := core.NewBoundedRay(
		core.OffsetOrigin(lightVertex.Point, lightVertex.Normal, wi, 0),
		wi, core.DefaultTMin, distance*(1.0-1e-4))
	if s.IsOccluded(shadowRay) {
		return nil, nil
	}

	// beta_cam = We * cos(aperture) / dist^2 for the delta aperture
	cosCamera := splatRay.Direction.Dot(s.Camera.Forward())
	cosLight := math.Abs(wi.Dot(lightVertex.Normal))
	color := lightVertex.Beta.MultiplyVec(f).MultiplyVec(importance).
		Multiply(cosLight * cosCamera / (distance * distance))
	if color.IsBlack() || !color.IsFinite() {
		return nil, nil
	}

	sampledVertex := &Vertex{
		Point:          s.Camera.Position,
		Normal:         s.Camera.Forward(),
		Camera:         s.Camera,
		IsCamera:       true,
		AreaPdfForward: 1.0,
		Beta:           importance.Multiply(cosCamera / (distance * distance)),
	}
	return []SplatRay{{Ray: splatRay, Color: color}}, sampledVertex
}

// evaluateConnectionStrategy connects interior vertices of both subpaths:
// L = beta_light * f_light * G * f_camera * beta_camera
func (bdpt *BDPT) evaluateConnectionStrategy(cameraPath, lightPath *Path, ns, nt int, s *scene.Scene) core.Vec3 {
	lightVertex := &lightPath.Vertices[ns-1]
	cameraVertex := &cameraPath.Vertices[nt-1]
	if !lightVertex.Connectible() || !cameraVertex.Connectible() || !cameraVertex.OnSurface {
		return core.Vec3{}
	}

	direction := lightVertex.Point.Subtract(cameraVertex.Point)
	distance := direction.Length()
	if distance < core.RayEpsilon {
		return core.Vec3{}
	}
	direction = direction.Multiply(1.0 / distance)

	cameraF := cameraVertex.EvaluateBSDF(direction)
	if cameraF.IsBlack() {
		return core.Vec3{}
	}

	// ns >= 2 here, so the light side vertex is an interior surface vertex
	lightF := lightVertex.EvaluateBSDF(direction.Negate())
	if lightF.IsBlack() {
		return core.Vec3{}
	}

	shadowRay := core.NewBoundedRay(
		core.OffsetOrigin(cameraVertex.Point, cameraVertex.Normal, direction, 0),
		direction, core.DefaultTMin, distance*(1.0-1e-4))
	if s.IsOccluded(shadowRay) {
		return core.Vec3{}
	}

	cosCamera := math.Abs(direction.Dot(cameraVertex.Normal))
	cosLight := math.Abs(direction.Negate().Dot(lightVertex.Normal))
	geometric := cosCamera * cosLight / (distance * distance)

	return lightVertex.Beta.MultiplyVec(lightF).MultiplyVec(cameraF).
		MultiplyVec(cameraVertex.Beta).Multiply(geometric)
}
