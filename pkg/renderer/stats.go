package renderer

import "github.com/ItsHoff/rusty/pkg/core"

// RenderStats summarises one rendering pass
type RenderStats struct {
	TotalPixels    int     // Number of pixels rendered
	TotalSamples   int     // Number of camera samples taken
	TotalSplats    int     // Number of splat contributions recorded
	AverageSamples float64 // Average samples per pixel
	MaxSamples     int     // Target samples per pixel for the pass
}

// PixelStats accumulates the samples of a single pixel. Camera samples and
// splat contributions are tracked separately because splats are normalized
// by the number of light paths, not added per sample.
type PixelStats struct {
	ColorAccum       core.Vec3 // Sum of camera sample colors
	SplatAccum       core.Vec3 // Sum of splat contributions
	LuminanceAccum   float64   // Luminance sum for variance tracking
	LuminanceSqAccum float64   // Squared luminance sum
	SampleCount      int       // Number of camera samples taken
}

// AddSample adds a camera sample to the pixel
func (ps *PixelStats) AddSample(color core.Vec3) {
	ps.ColorAccum = ps.ColorAccum.Add(color)
	luminance := color.Luminance()
	ps.LuminanceAccum += luminance
	ps.LuminanceSqAccum += luminance * luminance
	ps.SampleCount++
}

// AddSplat adds a light tracing contribution to the pixel
func (ps *PixelStats) AddSplat(color core.Vec3) {
	ps.SplatAccum = ps.SplatAccum.Add(color)
}

// Color returns the current pixel estimate. One light subpath is traced per
// camera sample, so both accumulators normalize by the sample count.
func (ps *PixelStats) Color() core.Vec3 {
	if ps.SampleCount == 0 {
		return core.Vec3{}
	}
	inv := 1.0 / float64(ps.SampleCount)
	return ps.ColorAccum.Add(ps.SplatAccum).Multiply(inv)
}

// Variance returns the sample variance of the pixel luminance
func (ps *PixelStats) Variance() float64 {
	if ps.SampleCount < 2 {
		return 0
	}
	n := float64(ps.SampleCount)
	mean := ps.LuminanceAccum / n
	meanSq := ps.LuminanceSqAccum / n
	variance := meanSq - mean*mean
	if variance < 0 {
		return 0
	}
	return variance
}
