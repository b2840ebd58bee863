package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	sceneName := flag.String("scene", "scenes/sandbox", "scene spec in prefabs/ (basename, .yaml optional)")
	physicsName := flag.String("physics", "physics", "physics spec in prefabs/")
	watch := flag.Bool("watch", true, "reload specs and scripts when they change on disk")
	zoom := flag.Float64("zoom", 1, "camera zoom")
	flag.Parse()

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(baseWidth, baseHeight)
	ebiten.SetWindowTitle("collide2d sandbox")

	game, err := NewGame(*sceneName, *physicsName, *zoom, *watch)
	if err != nil {
		log.Fatal(err)
	}
	defer game.Close()

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
