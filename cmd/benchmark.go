package cmd

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/ItsHoff/rusty/pkg/integrator"
	"github.com/ItsHoff/rusty/pkg/renderer"
	"github.com/ItsHoff/rusty/pkg/scene"
)

// BenchmarkFlags returns the flags of the benchmark command
func BenchmarkFlags() []cli.Flag {
	return []cli.Flag{
		cli.IntFlag{
			Name:  "width",
			Value: 256,
			Usage: "frame width",
		},
		cli.IntFlag{
			Name:  "height",
			Value: 256,
			Usage: "frame height",
		},
		cli.IntFlag{
			Name:  "spp",
			Value: 8,
			Usage: "samples per pixel",
		},
		cli.IntFlag{
			Name:  "workers",
			Value: 0,
			Usage: "number of render workers (0 = CPU count)",
		},
	}
}

type benchmarkResult struct {
	scene      string
	integrator string
	triangles  int
	renderTime time.Duration
	samplesSec float64
}

// RunBenchmark renders every built-in scene with every integrator
// and reports the timings.
func RunBenchmark(ctx *cli.Context) error {
	setupLogging(ctx)

	config := scene.SamplingConfig{
		Width:                     ctx.Int("width"),
		Height:                    ctx.Int("height"),
		SamplesPerPixel:           ctx.Int("spp"),
		MaxDepth:                  10,
		RussianRouletteMinBounces: 3,
	}
	progressiveConfig := renderer.ProgressiveConfig{
		TileSize:       64,
		InitialSamples: config.SamplesPerPixel,
		MaxPasses:      1,
		NumWorkers:     ctx.Int("workers"),
		Seed:           1,
	}

	var results []benchmarkResult
	for _, sceneName := range scene.SceneNames() {
		for _, integratorName := range []string{"pt", "bdpt"} {
			sc, ok := scene.NewScene(sceneName, config)
			if !ok {
				return fmt.Errorf("unknown scene %q", sceneName)
			}
			integ, _ := integrator.New(integratorName, config)

			logger.Noticef("benchmarking %s with %s", sceneName, integratorName)
			start := time.Now()
			r := renderer.NewProgressiveRenderer(sc, integ, progressiveConfig)
			if _, err := r.Render(context.Background()); err != nil {
				return err
			}
			elapsed := time.Since(start)

			samples := r.Film().SampleCount()
			results = append(results, benchmarkResult{
				scene:      sceneName,
				integrator: integratorName,
				triangles:  len(sc.Triangles),
				renderTime: elapsed,
				samplesSec: float64(samples) / elapsed.Seconds(),
			})
		}
	}

	displayBenchmarkResults(results)
	return nil
}

func displayBenchmarkResults(results []benchmarkResult) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Scene", "Integrator", "Triangles", "Render time", "Samples/s"})
	for _, r := range results {
		table.Append([]string{
			r.scene,
			r.integrator,
			fmt.Sprintf("%d", r.triangles),
			r.renderTime.Round(time.Millisecond).String(),
			fmt.Sprintf("%.0f", r.samplesSec),
		})
	}
	table.Render()
	logger.Noticef("benchmark results\n%s", buf.String())
}
