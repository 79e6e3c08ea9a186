package renderer

import (
	"image"
	"testing"

	"github.com/ItsHoff/rusty/pkg/core"
	"github.com/ItsHoff/rusty/pkg/integrator"
	"github.com/ItsHoff/rusty/pkg/scene"
)

// constantIntegrator returns a fixed color, optionally with one splat ray
// through the camera per sample
type constantIntegrator struct {
	color     core.Vec3
	withSplat bool
}

func (ci *constantIntegrator) RayColor(ray core.Ray, s *scene.Scene, sampler core.Sampler) (core.Vec3, []integrator.SplatRay) {
	var splats []integrator.SplatRay
	if ci.withSplat {
		splats = append(splats, integrator.SplatRay{
			Ray:   s.Camera.GetRay(0, 0, core.NewVec2(0.5, 0.5)),
			Color: core.NewVec3(1, 0, 0),
		})
	}
	return ci.color, splats
}

func tinyConfig() scene.SamplingConfig {
	return scene.SamplingConfig{
		Width:                     16,
		Height:                    16,
		SamplesPerPixel:           4,
		MaxDepth:                  4,
		RussianRouletteMinBounces: 2,
	}
}

func TestNewTileGrid_CoversEveryPixelOnce(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		tileSize      int
	}{
		{"Even division", 128, 64, 32},
		{"Ragged edges", 100, 70, 32},
		{"Tiles larger than the film", 10, 10, 64},
		{"One pixel tiles", 5, 3, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tiles := NewTileGrid(tt.width, tt.height, tt.tileSize, 1)

			covered := make([][]int, tt.height)
			for y := range covered {
				covered[y] = make([]int, tt.width)
			}
			for _, tile := range tiles {
				if tile.Sampler == nil {
					t.Fatalf("tile %d has no sampler", tile.ID)
				}
				for y := tile.Bounds.Min.Y; y < tile.Bounds.Max.Y; y++ {
					for x := tile.Bounds.Min.X; x < tile.Bounds.Max.X; x++ {
						covered[y][x]++
					}
				}
			}
			for y := range covered {
				for x := range covered[y] {
					if covered[y][x] != 1 {
						t.Fatalf("pixel (%d, %d) covered %d times", x, y, covered[y][x])
					}
				}
			}
		})
	}
}

func TestNewTileGrid_UniqueIDs(t *testing.T) {
	tiles := NewTileGrid(100, 100, 32, 1)
	seen := make(map[int]bool)
	for _, tile := range tiles {
		if seen[tile.ID] {
			t.Fatalf("duplicate tile id %d", tile.ID)
		}
		seen[tile.ID] = true
	}
}

func TestTileRenderer_ReachesTargetSamples(t *testing.T) {
	s, _ := scene.NewScene(scene.SceneCornell, tinyConfig())
	tr := NewTileRenderer(s, &constantIntegrator{color: core.NewVec3(0.25, 0.5, 0.75)})

	film := NewFilm(16, 16)
	splats := NewSplatQueue()
	bounds := image.Rect(4, 4, 12, 10)
	sampler := core.NewSeededSampler(1)

	stats := tr.RenderTileBounds(bounds, film, splats, sampler, 4)

	if stats.TotalPixels != 8*6 {
		t.Errorf("expected %d pixels, got %d", 8*6, stats.TotalPixels)
	}
	if stats.TotalSamples != 8*6*4 {
		t.Errorf("expected %d samples, got %d", 8*6*4, stats.TotalSamples)
	}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			pixel := film.Pixel(x, y)
			if pixel.SampleCount != 4 {
				t.Fatalf("pixel (%d, %d) has %d samples", x, y, pixel.SampleCount)
			}
			if pixel.Color().Subtract(core.NewVec3(0.25, 0.5, 0.75)).Length() > 1e-12 {
				t.Fatalf("pixel (%d, %d) has wrong color %v", x, y, pixel.Color())
			}
		}
	}

	// Pixels outside the bounds stay untouched
	if film.Pixel(0, 0).SampleCount != 0 {
		t.Error("pixel outside the tile should have no samples")
	}
}

func TestTileRenderer_TopUpExistingSamples(t *testing.T) {
	s, _ := scene.NewScene(scene.SceneCornell, tinyConfig())
	tr := NewTileRenderer(s, &constantIntegrator{color: core.NewVec3(1, 1, 1)})

	film := NewFilm(16, 16)
	splats := NewSplatQueue()
	bounds := image.Rect(0, 0, 4, 4)
	sampler := core.NewSeededSampler(2)

	tr.RenderTileBounds(bounds, film, splats, sampler, 2)
	stats := tr.RenderTileBounds(bounds, film, splats, sampler, 5)

	// The second pass only adds the difference
	if stats.TotalSamples != 4*4*3 {
		t.Errorf("expected %d top-up samples, got %d", 4*4*3, stats.TotalSamples)
	}
	if film.Pixel(2, 2).SampleCount != 5 {
		t.Errorf("expected 5 samples after top-up, got %d", film.Pixel(2, 2).SampleCount)
	}
}

func TestTileRenderer_RoutesSplats(t *testing.T) {
	s, _ := scene.NewScene(scene.SceneCornell, tinyConfig())
	tr := NewTileRenderer(s, &constantIntegrator{color: core.NewVec3(0.5, 0.5, 0.5), withSplat: true})

	film := NewFilm(16, 16)
	splats := NewSplatQueue()
	sampler := core.NewSeededSampler(3)

	stats := tr.RenderTileBounds(image.Rect(8, 8, 12, 12), film, splats, sampler, 1)

	// Every sample emitted one splat through the camera at pixel (0, 0)
	if stats.TotalSplats != 16 {
		t.Errorf("expected 16 splats, got %d", stats.TotalSplats)
	}
	if splats.Count() != 16 {
		t.Errorf("expected 16 queued splats, got %d", splats.Count())
	}

	splats.DrainTo(film)
	if film.Pixel(0, 0).SplatAccum.X != 16 {
		t.Errorf("expected splat energy 16 at (0,0), got %v", film.Pixel(0, 0).SplatAccum.X)
	}
}
