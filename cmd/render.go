package cmd

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/ItsHoff/rusty/pkg/geometry"
	"github.com/ItsHoff/rusty/pkg/integrator"
	"github.com/ItsHoff/rusty/pkg/renderer"
	"github.com/ItsHoff/rusty/pkg/scene"
)

// RenderFlags returns the flags of the render command
func RenderFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "scene, s",
			Value: scene.SceneCornell,
			Usage: "built-in scene to render",
		},
		cli.StringFlag{
			Name:  "integrator, i",
			Value: "pt",
			Usage: "light transport algorithm (pt or bdpt)",
		},
		cli.IntFlag{
			Name:  "width",
			Value: 512,
			Usage: "frame width",
		},
		cli.IntFlag{
			Name:  "height",
			Value: 512,
			Usage: "frame height",
		},
		cli.IntFlag{
			Name:  "spp",
			Value: 64,
			Usage: "samples per pixel",
		},
		cli.IntFlag{
			Name:  "max-depth",
			Value: 10,
			Usage: "maximum path length",
		},
		cli.IntFlag{
			Name:  "rr-bounces",
			Value: 3,
			Usage: "bounces before russian roulette may terminate a path",
		},
		cli.IntFlag{
			Name:  "passes",
			Value: 8,
			Usage: "number of progressive passes",
		},
		cli.IntFlag{
			Name:  "tile-size",
			Value: 64,
			Usage: "tile side length in pixels",
		},
		cli.IntFlag{
			Name:  "workers",
			Value: 0,
			Usage: "number of render workers (0 = CPU count)",
		},
		cli.Int64Flag{
			Name:  "seed",
			Value: 1,
			Usage: "base seed for the sampler streams",
		},
		cli.StringFlag{
			Name:  "bvh-split",
			Value: "sah",
			Usage: "bvh partitioning policy (sah or median)",
		},
		cli.StringFlag{
			Name:  "out, o",
			Value: "frame.png",
			Usage: "image filename for the rendered frame",
		},
	}
}

func parseSplitMode(name string) (geometry.SplitMode, error) {
	switch name {
	case "sah":
		return geometry.SplitSAH, nil
	case "median":
		return geometry.SplitMedian, nil
	}
	return geometry.SplitSAH, fmt.Errorf("unknown bvh split mode %q", name)
}

// RenderScene renders a built-in scene to a png file
func RenderScene(ctx *cli.Context) error {
	setupLogging(ctx)

	splitMode, err := parseSplitMode(ctx.String("bvh-split"))
	if err != nil {
		return err
	}

	config := scene.SamplingConfig{
		Width:                     ctx.Int("width"),
		Height:                    ctx.Int("height"),
		SamplesPerPixel:           ctx.Int("spp"),
		MaxDepth:                  ctx.Int("max-depth"),
		RussianRouletteMinBounces: ctx.Int("rr-bounces"),
		SplitMode:                 splitMode,
	}

	sceneName := ctx.String("scene")
	sc, ok := scene.NewScene(sceneName, config)
	if !ok {
		return fmt.Errorf("unknown scene %q", sceneName)
	}

	integratorName := ctx.String("integrator")
	integ, ok := integrator.New(integratorName, config)
	if !ok {
		return fmt.Errorf("unknown integrator %q", integratorName)
	}

	progressiveConfig := renderer.ProgressiveConfig{
		TileSize:       ctx.Int("tile-size"),
		InitialSamples: 1,
		MaxPasses:      ctx.Int("passes"),
		NumWorkers:     ctx.Int("workers"),
		Seed:           ctx.Int64("seed"),
	}

	logger.Noticef("rendering %s with %s at %dx%d, %d spp",
		sceneName, integratorName, config.Width, config.Height, config.SamplesPerPixel)

	start := time.Now()
	r := renderer.NewProgressiveRenderer(sc, integ, progressiveConfig)
	img, err := r.Render(context.Background())
	if err != nil {
		return err
	}
	renderTime := time.Since(start)

	out := ctx.String("out")
	if err := writePNG(out, img); err != nil {
		return err
	}
	logger.Noticef("wrote %s", out)

	displayRenderStats(sceneName, integratorName, sc, r, renderTime)
	return nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

func displayRenderStats(sceneName, integratorName string, sc *scene.Scene, r *renderer.ProgressiveRenderer, renderTime time.Duration) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Scene", "Integrator", "Triangles", "Lights", "Samples", "Rays", "Render time"})
	table.Append([]string{
		sceneName,
		integratorName,
		fmt.Sprintf("%d", len(sc.Triangles)),
		fmt.Sprintf("%d", len(sc.Lights)),
		fmt.Sprintf("%d", r.Film().SampleCount()),
		fmt.Sprintf("%d", sc.RayCount()),
		renderTime.Round(time.Millisecond).String(),
	})
	table.Render()
	logger.Noticef("render statistics\n%s", buf.String())
}
