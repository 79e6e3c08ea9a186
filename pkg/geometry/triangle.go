package geometry

import (
	"math"

	"github.com/ItsHoff/rusty/pkg/bsdf"
	"github.com/ItsHoff/rusty/pkg/core"
)

// Triangle is the only primitive of the renderer: three vertex positions
// with per-vertex shading normals and UV coordinates, plus the surface
// material. Triangles are immutable after scene load.
type Triangle struct {
	V0, V1, V2    core.Vec3
	N0, N1, N2    core.Vec3
	UV0, UV1, UV2 core.Vec2
	Material      *bsdf.Material

	geomNormal core.Vec3
	area       float64
	bbox       core.AABB
}

// NewTriangle creates a triangle with shading normals equal to the
// geometric normal
func NewTriangle(v0, v1, v2 core.Vec3, material *bsdf.Material) *Triangle {
	normal := v1.Subtract(v0).Cross(v2.Subtract(v0)).Normalize()
	return NewTriangleWithNormals(v0, v1, v2, normal, normal, normal, material)
}

// NewTriangleWithNormals creates a triangle with per-vertex shading normals
func NewTriangleWithNormals(v0, v1, v2, n0, n1, n2 core.Vec3, material *bsdf.Material) *Triangle {
	t := &Triangle{
		V0: v0, V1: v1, V2: v2,
		N0: n0.Normalize(), N1: n1.Normalize(), N2: n2.Normalize(),
		Material: material,
	}
	cross := v1.Subtract(v0).Cross(v2.Subtract(v0))
	t.geomNormal = cross.Normalize()
	t.area = cross.Length() / 2.0
	t.bbox = core.NewAABBFromPoints(v0, v1, v2)
	return t
}

// Intersection describes a ray-triangle hit. SecondaryRay re-originates
// continuation and shadow rays off the surface using the record's offset
// epsilon.
type Intersection struct {
	PrimID   int     // Index of the hit triangle in the scene order
	T        float64 // Parametric distance along the ray
	U, V     float64 // Barycentric coordinates of the hit
	Point    core.Vec3
	Normal   core.Vec3 // Interpolated shading normal
	GeomN    core.Vec3 // Geometric normal of the triangle plane
	UV       core.Vec2 // Interpolated texture coordinates
	Material *bsdf.Material
}

// SecondaryRay spawns a ray from the hit point in the given direction,
// offset along the shading normal to avoid self-intersection
func (isect *Intersection) SecondaryRay(direction core.Vec3) core.Ray {
	origin := core.OffsetOrigin(isect.Point, isect.Normal, direction, isect.T)
	return core.NewRay(origin, direction)
}

// ShadowRay spawns an occlusion ray from the hit point toward a target
// point, with the parametric interval stopping just short of the target
func (isect *Intersection) ShadowRay(target core.Vec3) core.Ray {
	delta := target.Subtract(isect.Point)
	distance := delta.Length()
	direction := delta.Multiply(1.0 / distance)
	origin := core.OffsetOrigin(isect.Point, isect.Normal, direction, isect.T)
	limit := distance * (1.0 - shadowRayMargin)
	return core.NewBoundedRay(origin, direction, core.DefaultTMin, limit)
}

// Shadow rays stop short of the light surface by this relative margin so
// the light itself does not occlude the sample.
const shadowRayMargin = 1e-4

// Le returns the radiance the triangle emits toward wo
func (t *Triangle) Le(wo core.Vec3) core.Vec3 {
	return t.Material.Le(wo, t.geomNormal)
}

// Hit intersects the ray with the triangle using the Möller-Trumbore
// algorithm. Returns false if the hit lies outside [tMin, tMax].
func (t *Triangle) Hit(ray core.Ray, tMin, tMax float64, isect *Intersection) bool {
	const epsilon = 1e-12

	edge1 := t.V1.Subtract(t.V0)
	edge2 := t.V2.Subtract(t.V0)

	h := ray.Direction.Cross(edge2)
	det := edge1.Dot(h)
	if det > -epsilon && det < epsilon {
		// Ray is parallel to the triangle plane
		return false
	}

	invDet := 1.0 / det
	s := ray.Origin.Subtract(t.V0)
	u := invDet * s.Dot(h)
	if u < 0.0 || u > 1.0 {
		return false
	}

	q := s.Cross(edge1)
	v := invDet * ray.Direction.Dot(q)
	if v < 0.0 || u+v > 1.0 {
		return false
	}

	tHit := invDet * edge2.Dot(q)
	if tHit < tMin || tHit > tMax {
		return false
	}

	isect.T = tHit
	isect.U = u
	isect.V = v
	isect.Point = ray.At(tHit)
	isect.Normal = t.InterpolateNormal(u, v)
	isect.GeomN = t.geomNormal
	isect.UV = t.InterpolateUV(u, v)
	isect.Material = t.Material
	return true
}

// InterpolateNormal returns the shading normal at barycentric (u, v)
func (t *Triangle) InterpolateNormal(u, v float64) core.Vec3 {
	w := 1.0 - u - v
	n := t.N0.Multiply(w).Add(t.N1.Multiply(u)).Add(t.N2.Multiply(v))
	length := n.Length()
	if length == 0 {
		return t.geomNormal
	}
	return n.Multiply(1.0 / length)
}

// InterpolateUV returns the texture coordinates at barycentric (u, v)
func (t *Triangle) InterpolateUV(u, v float64) core.Vec2 {
	w := 1.0 - u - v
	return t.UV0.Multiply(w).Add(t.UV1.Multiply(u)).Add(t.UV2.Multiply(v))
}

// SamplePoint draws a uniformly distributed point on the triangle and
// returns it with the shading normal at that point
func (t *Triangle) SamplePoint(sample core.Vec2) (core.Vec3, core.Vec3) {
	u, v := core.SampleUniformTriangle(sample)
	w := 1.0 - u - v
	point := t.V0.Multiply(w).Add(t.V1.Multiply(u)).Add(t.V2.Multiply(v))
	return point, t.InterpolateNormal(u, v)
}

// Area returns the surface area of the triangle
func (t *Triangle) Area() float64 {
	return t.area
}

// PDFArea returns the density of SamplePoint per unit area
func (t *Triangle) PDFArea() float64 {
	if t.area == 0 {
		return 0
	}
	return 1.0 / t.area
}

// GeometricNormal returns the normal of the triangle plane
func (t *Triangle) GeometricNormal() core.Vec3 {
	return t.geomNormal
}

// BoundingBox returns the axis-aligned bounding box of the triangle
func (t *Triangle) BoundingBox() core.AABB {
	return t.bbox
}

// Center returns the centroid of the triangle's bounding box
func (t *Triangle) Center() core.Vec3 {
	return t.bbox.Center()
}

// IsDegenerate reports whether the triangle has (near) zero area or
// non-finite coordinates. Degenerate triangles are rejected at scene load.
func (t *Triangle) IsDegenerate() bool {
	if !t.V0.IsFinite() || !t.V1.IsFinite() || !t.V2.IsFinite() {
		return true
	}
	return t.area < 1e-12 || math.IsNaN(t.area)
}
