package renderer

import (
	"context"
	"testing"

	"github.com/ItsHoff/rusty/pkg/core"
	"github.com/ItsHoff/rusty/pkg/scene"
)

func TestSamplesForPass_Schedule(t *testing.T) {
	config := tinyConfig()
	config.SamplesPerPixel = 9
	s, _ := scene.NewScene(scene.SceneCornell, config)

	pr := NewProgressiveRenderer(s, &constantIntegrator{color: core.NewVec3(1, 1, 1)}, ProgressiveConfig{
		TileSize:       8,
		InitialSamples: 1,
		MaxPasses:      3,
		NumWorkers:     1,
	})

	// Pass 1 is the preview, the rest split the remaining budget, the final
	// pass always reaches the target
	if got := pr.samplesForPass(1); got != 1 {
		t.Errorf("pass 1: expected 1 sample, got %d", got)
	}
	if got := pr.samplesForPass(2); got != 5 {
		t.Errorf("pass 2: expected 5 samples, got %d", got)
	}
	if got := pr.samplesForPass(3); got != 9 {
		t.Errorf("pass 3: expected 9 samples, got %d", got)
	}
}

func TestSamplesForPass_SinglePass(t *testing.T) {
	config := tinyConfig()
	s, _ := scene.NewScene(scene.SceneCornell, config)
	pr := NewProgressiveRenderer(s, &constantIntegrator{}, ProgressiveConfig{
		TileSize:       8,
		InitialSamples: 1,
		MaxPasses:      1,
		NumWorkers:     1,
	})

	if got := pr.samplesForPass(1); got != config.SamplesPerPixel {
		t.Errorf("a single pass should reach the target, got %d", got)
	}
}

func TestSamplesForPass_PreviewCappedByTarget(t *testing.T) {
	config := tinyConfig()
	config.SamplesPerPixel = 2
	s, _ := scene.NewScene(scene.SceneCornell, config)
	pr := NewProgressiveRenderer(s, &constantIntegrator{}, ProgressiveConfig{
		TileSize:       8,
		InitialSamples: 16,
		MaxPasses:      4,
		NumWorkers:     1,
	})

	if got := pr.samplesForPass(1); got != 2 {
		t.Errorf("preview should not exceed the target, got %d", got)
	}
}

func TestProgressiveRenderer_Render(t *testing.T) {
	config := tinyConfig()
	s, _ := scene.NewScene(scene.SceneCornell, config)
	color := core.NewVec3(0.25, 0.25, 0.25)

	pr := NewProgressiveRenderer(s, &constantIntegrator{color: color}, ProgressiveConfig{
		TileSize:       8,
		InitialSamples: 1,
		MaxPasses:      2,
		NumWorkers:     2,
	})

	img, err := pr.Render(context.Background())
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if img == nil {
		t.Fatal("render returned no image")
	}
	if img.Bounds().Dx() != config.Width || img.Bounds().Dy() != config.Height {
		t.Errorf("unexpected image size: %v", img.Bounds())
	}

	// Every pixel reached the target sample count
	film := pr.Film()
	for y := 0; y < config.Height; y++ {
		for x := 0; x < config.Width; x++ {
			if got := film.Pixel(x, y).SampleCount; got != config.SamplesPerPixel {
				t.Fatalf("pixel (%d, %d) has %d of %d samples", x, y, got, config.SamplesPerPixel)
			}
		}
	}
	if film.SampleCount() != config.Width*config.Height*config.SamplesPerPixel {
		t.Errorf("unexpected total sample count %d", film.SampleCount())
	}
}

func TestProgressiveRenderer_PassResults(t *testing.T) {
	config := tinyConfig()
	s, _ := scene.NewScene(scene.SceneCornell, config)

	pr := NewProgressiveRenderer(s, &constantIntegrator{color: core.NewVec3(1, 1, 1)}, ProgressiveConfig{
		TileSize:       8,
		InitialSamples: 1,
		MaxPasses:      3,
		NumWorkers:     1,
	})

	passChan, errChan := pr.RenderProgressive(context.Background())

	passes := 0
	for result := range passChan {
		passes++
		if result.PassNumber != passes {
			t.Errorf("expected pass %d, got %d", passes, result.PassNumber)
		}
		if result.Image == nil {
			t.Errorf("pass %d has no snapshot", result.PassNumber)
		}
		if result.IsLast != (passes == 3) {
			t.Errorf("pass %d has wrong IsLast", result.PassNumber)
		}
	}
	if passes != 3 {
		t.Errorf("expected 3 passes, got %d", passes)
	}
	if err := <-errChan; err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestProgressiveRenderer_Cancellation(t *testing.T) {
	config := tinyConfig()
	s, _ := scene.NewScene(scene.SceneCornell, config)

	pr := NewProgressiveRenderer(s, &constantIntegrator{color: core.NewVec3(1, 1, 1)}, ProgressiveConfig{
		TileSize:       8,
		InitialSamples: 1,
		MaxPasses:      100,
		NumWorkers:     1,
	})

	ctx, cancel := context.WithCancel(context.Background())
	passChan, errChan := pr.RenderProgressive(ctx)

	// Cancel after the first snapshot arrives
	<-passChan
	cancel()
	for range passChan {
	}
	if err := <-errChan; err == nil {
		t.Error("cancelled render should report the context error")
	}
}

func TestWorkerPool_RendersAllTasks(t *testing.T) {
	config := tinyConfig()
	s, _ := scene.NewScene(scene.SceneCornell, config)
	tr := NewTileRenderer(s, &constantIntegrator{color: core.NewVec3(1, 1, 1)})

	tiles := NewTileGrid(config.Width, config.Height, 8, 1)
	pool := NewWorkerPool(tr, len(tiles), 4)
	pool.Start()

	film := NewFilm(config.Width, config.Height)
	splats := NewSplatQueue()
	for i, tile := range tiles {
		pool.SubmitTask(TileTask{
			Tile: tile, PassNumber: 1, TargetSamples: 2,
			TaskID: i, Film: film, Splats: splats,
		})
	}

	seen := make(map[int]bool)
	for range tiles {
		result, ok := pool.GetResult()
		if !ok {
			t.Fatal("pool closed before all results arrived")
		}
		if seen[result.TaskID] {
			t.Fatalf("task %d finished twice", result.TaskID)
		}
		seen[result.TaskID] = true
	}
	pool.Stop()

	if film.SampleCount() != config.Width*config.Height*2 {
		t.Errorf("expected %d samples, got %d", config.Width*config.Height*2, film.SampleCount())
	}
}
