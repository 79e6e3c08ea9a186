package renderer

import (
	"image"

	"github.com/ItsHoff/rusty/pkg/core"
	"github.com/ItsHoff/rusty/pkg/integrator"
	"github.com/ItsHoff/rusty/pkg/scene"
)

// Tile is a rectangular region of the film rendered as one unit of work.
// Each tile owns a deterministic sampler stream so renders are repeatable
// regardless of worker scheduling.
type Tile struct {
	ID      int
	Bounds  image.Rectangle
	Sampler core.Sampler
}

// NewTileGrid partitions the film into tiles of at most tileSize pixels per
// side. Each tile's sampler stream derives from the base seed and the
// tile ID.
func NewTileGrid(width, height, tileSize int, seed int64) []*Tile {
	var tiles []*Tile
	tileID := 0

	tilesX := (width + tileSize - 1) / tileSize
	tilesY := (height + tileSize - 1) / tileSize
	for tileY := 0; tileY < tilesY; tileY++ {
		for tileX := 0; tileX < tilesX; tileX++ {
			x0 := tileX * tileSize
			y0 := tileY * tileSize
			x1 := min(x0+tileSize, width)
			y1 := min(y0+tileSize, height)

			tiles = append(tiles, &Tile{
				ID:      tileID,
				Bounds:  image.Rect(x0, y0, x1, y1),
				Sampler: core.NewSeededSampler(seed + int64(tileID)),
			})
			tileID++
		}
	}
	return tiles
}

// TileRenderer renders individual tiles with an integrator
type TileRenderer struct {
	scene      *scene.Scene
	integrator integrator.Integrator
}

// NewTileRenderer creates a tile renderer for the given scene
func NewTileRenderer(sc *scene.Scene, integ integrator.Integrator) *TileRenderer {
	return &TileRenderer{scene: sc, integrator: integ}
}

// RenderTileBounds samples every pixel in bounds up to targetSamples total
// samples. Camera sample colors accumulate straight into the film; splat
// contributions go through the shared queue because they can land anywhere
// on the image.
func (tr *TileRenderer) RenderTileBounds(bounds image.Rectangle, film *Film, splats *SplatQueue, sampler core.Sampler, targetSamples int) RenderStats {
	stats := RenderStats{
		TotalPixels: bounds.Dx() * bounds.Dy(),
		MaxSamples:  targetSamples,
	}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			pixel := film.Pixel(x, y)
			for pixel.SampleCount < targetSamples {
				ray := tr.scene.Camera.GetRay(x, y, sampler.Get2D())
				color, splatRays := tr.integrator.RayColor(ray, tr.scene, sampler)
				pixel.AddSample(color)
				stats.TotalSamples++

				for _, splat := range splatRays {
					if sx, sy, ok := tr.scene.Camera.MapRayToPixel(splat.Ray); ok {
						splats.AddSplat(sx, sy, splat.Color)
						stats.TotalSplats++
					}
				}
			}
		}
	}

	if stats.TotalPixels > 0 {
		stats.AverageSamples = float64(stats.TotalSamples) / float64(stats.TotalPixels)
	}
	return stats
}
