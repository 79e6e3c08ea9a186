package main

import (
	"os"

	"github.com/ItsHoff/rusty/cmd"
	"github.com/ItsHoff/rusty/log"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "rusty"
	app.Usage = "render scenes with a physically based path tracer"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "render",
			Usage: "render a built-in scene",
			Description: `
Render one of the built-in scenes with either the unidirectional path
tracer or the bidirectional path tracer and write the result to a png.`,
			Flags:  cmd.RenderFlags(),
			Action: cmd.RenderScene,
		},
		{
			Name:   "benchmark",
			Usage:  "time the integrators on the built-in scenes",
			Flags:  cmd.BenchmarkFlags(),
			Action: cmd.RunBenchmark,
		},
		{
			Name:   "list-scenes",
			Usage:  "list the built-in scenes",
			Action: cmd.ListScenes,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.New("rusty").Errorf("%s", err)
		os.Exit(1)
	}
}
