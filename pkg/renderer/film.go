package renderer

import (
	"image"
	"image/color"
	"math"

	"github.com/ItsHoff/rusty/pkg/core"
)

// Film is the progressive image accumulator. Pixels accumulate camera
// samples and splat contributions across passes; a snapshot can be taken at
// any point between passes.
type Film struct {
	Width  int
	Height int
	pixels [][]PixelStats
}

// NewFilm creates an empty film of the given size
func NewFilm(width, height int) *Film {
	pixels := make([][]PixelStats, height)
	for y := range pixels {
		pixels[y] = make([]PixelStats, width)
	}
	return &Film{Width: width, Height: height, pixels: pixels}
}

// Pixel returns the stats accumulator of the given pixel
func (f *Film) Pixel(x, y int) *PixelStats {
	return &f.pixels[y][x]
}

// AddSplat adds a light tracing contribution. Out of bounds splats are
// dropped.
func (f *Film) AddSplat(x, y int, color core.Vec3) {
	if x < 0 || x >= f.Width || y < 0 || y >= f.Height {
		return
	}
	f.pixels[y][x].AddSplat(color)
}

// SampleCount returns the total number of camera samples on the film
func (f *Film) SampleCount() int {
	total := 0
	for y := range f.pixels {
		for x := range f.pixels[y] {
			total += f.pixels[y][x].SampleCount
		}
	}
	return total
}

// ToImage develops the film into an 8-bit image with gamma correction
func (f *Film) ToImage(gamma float64) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			img.SetRGBA(x, y, vec3ToColor(f.pixels[y][x].Color(), gamma))
		}
	}
	return img
}

// vec3ToColor converts linear radiance to an 8-bit display color
func vec3ToColor(v core.Vec3, gamma float64) color.RGBA {
	corrected := v.GammaCorrect(gamma).Clamp(0, 1)
	return color.RGBA{
		R: uint8(math.Round(corrected.X * 255)),
		G: uint8(math.Round(corrected.Y * 255)),
		B: uint8(math.Round(corrected.Z * 255)),
		A: 255,
	}
}
