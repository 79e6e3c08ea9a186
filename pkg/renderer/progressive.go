// Package renderer drives the rendering process: it partitions the film
// into tiles, schedules progressive passes over a worker pool and
// accumulates samples into the film.
package renderer

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/ItsHoff/rusty/log"
	"github.com/ItsHoff/rusty/pkg/integrator"
	"github.com/ItsHoff/rusty/pkg/scene"
)

var logger = log.New("renderer")

// ProgressiveConfig controls the pass schedule
type ProgressiveConfig struct {
	TileSize       int   // Tile side length in pixels
	InitialSamples int   // Samples per pixel in the first preview pass
	MaxPasses      int   // Number of passes; the last pass reaches the target
	NumWorkers     int   // Parallel workers, 0 uses the CPU count
	Seed           int64 // Base seed for the per-tile sampler streams
}

// DefaultProgressiveConfig returns the default pass schedule
func DefaultProgressiveConfig() ProgressiveConfig {
	return ProgressiveConfig{
		TileSize:       64,
		InitialSamples: 1,
		MaxPasses:      8,
		NumWorkers:     0,
		Seed:           1,
	}
}

// PassResult is the outcome of one completed pass
type PassResult struct {
	PassNumber int
	Image      *image.RGBA
	Stats      RenderStats
	IsLast     bool
}

// ProgressiveRenderer renders a scene over multiple passes, each pass
// raising every pixel to the same sample count so intermediate snapshots
// stay unbiased
type ProgressiveRenderer struct {
	scene      *scene.Scene
	config     ProgressiveConfig
	film       *Film
	splats     *SplatQueue
	tiles      []*Tile
	workerPool *WorkerPool
}

// NewProgressiveRenderer sets up the film, tiles and worker pool for the
// given scene and integrator
func NewProgressiveRenderer(sc *scene.Scene, integ integrator.Integrator, config ProgressiveConfig) *ProgressiveRenderer {
	width := sc.SamplingConfig.Width
	height := sc.SamplingConfig.Height
	tiles := NewTileGrid(width, height, config.TileSize, config.Seed)

	return &ProgressiveRenderer{
		scene:      sc,
		config:     config,
		film:       NewFilm(width, height),
		splats:     NewSplatQueue(),
		tiles:      tiles,
		workerPool: NewWorkerPool(NewTileRenderer(sc, integ), len(tiles), config.NumWorkers),
	}
}

// Film returns the accumulator shared by all passes
func (pr *ProgressiveRenderer) Film() *Film {
	return pr.film
}

// samplesForPass returns the cumulative target sample count after the given
// pass. The first pass is a quick preview, the rest split the remaining
// budget evenly.
func (pr *ProgressiveRenderer) samplesForPass(passNumber int) int {
	maxSamples := pr.scene.SamplingConfig.SamplesPerPixel
	if pr.config.MaxPasses <= 1 || passNumber >= pr.config.MaxPasses {
		return maxSamples
	}
	if passNumber == 1 {
		return min(pr.config.InitialSamples, maxSamples)
	}

	remaining := maxSamples - pr.config.InitialSamples
	perPass := remaining / (pr.config.MaxPasses - 1)
	return pr.config.InitialSamples + (passNumber-1)*perPass
}

// RenderPass runs a single pass over all tiles and returns a snapshot
func (pr *ProgressiveRenderer) RenderPass(passNumber int) (*image.RGBA, RenderStats, error) {
	targetSamples := pr.samplesForPass(passNumber)
	logger.Infof("pass %d: target %d samples per pixel on %d workers",
		passNumber, targetSamples, pr.workerPool.NumWorkers())

	for i, tile := range pr.tiles {
		pr.workerPool.SubmitTask(TileTask{
			Tile:          tile,
			PassNumber:    passNumber,
			TargetSamples: targetSamples,
			TaskID:        i,
			Film:          pr.film,
			Splats:        pr.splats,
		})
	}

	total := RenderStats{MaxSamples: targetSamples}
	for range pr.tiles {
		result, ok := pr.workerPool.GetResult()
		if !ok {
			return nil, RenderStats{}, fmt.Errorf("worker pool closed unexpectedly")
		}
		total.TotalPixels += result.Stats.TotalPixels
		total.TotalSamples += result.Stats.TotalSamples
		total.TotalSplats += result.Stats.TotalSplats
	}
	if total.TotalPixels > 0 {
		total.AverageSamples = float64(total.TotalSamples) / float64(total.TotalPixels)
	}

	// All workers are idle between passes, safe to flush splats
	pr.splats.DrainTo(pr.film)

	return pr.film.ToImage(2.2), total, nil
}

// RenderProgressive runs all passes, delivering each snapshot on the
// returned channel. Cancelling the context stops between passes.
func (pr *ProgressiveRenderer) RenderProgressive(ctx context.Context) (<-chan PassResult, <-chan error) {
	passChan := make(chan PassResult, 1)
	errChan := make(chan error, 1)

	go func() {
		defer close(passChan)
		defer close(errChan)
		defer pr.workerPool.Stop()

		logger.Infof("starting progressive render: %d passes, %d tiles",
			pr.config.MaxPasses, len(pr.tiles))
		pr.workerPool.Start()

		for pass := 1; pass <= pr.config.MaxPasses; pass++ {
			select {
			case <-ctx.Done():
				logger.Warningf("render cancelled before pass %d", pass)
				errChan <- ctx.Err()
				return
			default:
			}

			start := time.Now()
			img, stats, err := pr.RenderPass(pass)
			if err != nil {
				errChan <- err
				return
			}
			logger.Infof("pass %d done in %v (%.1f samples/pixel)",
				pass, time.Since(start).Round(time.Millisecond), stats.AverageSamples)

			result := PassResult{
				PassNumber: pass,
				Image:      img,
				Stats:      stats,
				IsLast:     pass == pr.config.MaxPasses,
			}
			select {
			case passChan <- result:
			case <-ctx.Done():
				errChan <- ctx.Err()
				return
			}
		}
	}()

	return passChan, errChan
}

// Render runs every pass to completion and returns the final image
func (pr *ProgressiveRenderer) Render(ctx context.Context) (*image.RGBA, error) {
	passChan, errChan := pr.RenderProgressive(ctx)

	var final *image.RGBA
	for result := range passChan {
		final = result.Image
	}
	if err := <-errChan; err != nil {
		return nil, err
	}
	return final, nil
}
