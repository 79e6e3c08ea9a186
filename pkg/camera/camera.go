// Package camera implements the pinhole camera model used for both primary
// ray generation and light tracing connections.
package camera

import (
	"math"

	"github.com/ItsHoff/rusty/pkg/core"
)

// Camera is a pinhole perspective camera. The image plane sits at unit
// distance along the forward axis; its half extents follow from the vertical
// field of view and the aspect ratio.
type Camera struct {
	Position core.Vec3
	Width    int
	Height   int

	forward    core.Vec3
	right      core.Vec3
	up         core.Vec3
	halfWidth  float64 // Image plane half extent along right
	halfHeight float64 // Image plane half extent along up
}

// New creates a camera at position looking at target. verticalFOV is the
// full vertical field of view in degrees.
func New(position, target, worldUp core.Vec3, verticalFOV float64, width, height int) *Camera {
	forward := target.Subtract(position).Normalize()
	right := forward.Cross(worldUp).Normalize()
	up := right.Cross(forward)

	halfHeight := math.Tan(verticalFOV * math.Pi / 360.0)
	aspect := float64(width) / float64(height)

	return &Camera{
		Position:   position,
		Width:      width,
		Height:     height,
		forward:    forward,
		right:      right,
		up:         up,
		halfWidth:  aspect * halfHeight,
		halfHeight: halfHeight,
	}
}

// GetRay generates a ray through pixel (x, y) jittered by sample
func (c *Camera) GetRay(x, y int, sample core.Vec2) core.Ray {
	// Pixel (0, 0) is the top left corner of the image
	ndcX := 2.0*(float64(x)+sample.X)/float64(c.Width) - 1.0
	ndcY := 1.0 - 2.0*(float64(y)+sample.Y)/float64(c.Height)

	direction := c.forward.
		Add(c.right.Multiply(ndcX * c.halfWidth)).
		Add(c.up.Multiply(ndcY * c.halfHeight)).
		Normalize()
	return core.NewRay(c.Position, direction)
}

// Forward returns the viewing direction
func (c *Camera) Forward() core.Vec3 {
	return c.forward
}

// planeArea returns the area of the image plane at unit distance
func (c *Camera) planeArea() float64 {
	return 4.0 * c.halfWidth * c.halfHeight
}

// CalculateRayPDFs returns the positional and directional densities of
// generating the given ray. The pinhole position is a delta distribution so
// the area density is one; the direction density follows from mapping a
// uniform image plane sample to solid angle.
func (c *Camera) CalculateRayPDFs(ray core.Ray) (areaPDF, directionPDF float64) {
	cosTheta := ray.Direction.Normalize().Dot(c.forward)
	if cosTheta <= 0 {
		return 0, 0
	}
	// pdf_dir = d^2 / (A * cos) with d = 1/cos the distance to the plane
	directionPDF = 1.0 / (c.planeArea() * cosTheta * cosTheta * cosTheta)
	return 1.0, directionPDF
}

// Importance evaluates the camera response for a ray leaving the aperture.
// Zero for directions outside the viewing frustum.
func (c *Camera) Importance(ray core.Ray) core.Vec3 {
	if _, _, ok := c.MapRayToPixel(ray); !ok {
		return core.Vec3{}
	}
	cosTheta := ray.Direction.Normalize().Dot(c.forward)
	if cosTheta <= 0 {
		return core.Vec3{}
	}
	w := 1.0 / (c.planeArea() * cosTheta * cosTheta * cosTheta * cosTheta)
	return core.NewVec3(w, w, w)
}

// MapRayToPixel projects a ray from the aperture back onto the image plane.
// Light tracing uses this to find the pixel a connection contributes to.
func (c *Camera) MapRayToPixel(ray core.Ray) (x, y int, ok bool) {
	direction := ray.Direction.Normalize()
	cosTheta := direction.Dot(c.forward)
	if cosTheta <= 0 {
		return 0, 0, false
	}

	// Scale the direction to reach the image plane at unit forward distance
	onPlane := direction.Multiply(1.0 / cosTheta)
	ndcX := onPlane.Dot(c.right) / c.halfWidth
	ndcY := onPlane.Dot(c.up) / c.halfHeight

	x = int((ndcX + 1.0) / 2.0 * float64(c.Width))
	y = int((1.0 - ndcY) / 2.0 * float64(c.Height))
	if x < 0 || x >= c.Width || y < 0 || y >= c.Height {
		return 0, 0, false
	}
	return x, y, true
}
