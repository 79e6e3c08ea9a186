package cmd

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/ItsHoff/rusty/pkg/scene"
)

// ListScenes prints the names of the built-in scenes
func ListScenes(ctx *cli.Context) error {
	for _, name := range scene.SceneNames() {
		fmt.Println(name)
	}
	return nil
}
