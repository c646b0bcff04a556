package main

import (
	"context"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/lao-tseu-is-alive/go-flock-terrain/pkg/simulation"
	"github.com/lao-tseu-is-alive/go-flock-terrain/pkg/terrain"
	"github.com/lao-tseu-is-alive/go-flock-terrain/pkg/viewer"
	"github.com/tochemey/goakt/v3/actor"
	golog "github.com/tochemey/goakt/v3/log"
)

func main() {
	ctx := context.Background()

	cfg := simulation.DefaultConfig()
	if len(os.Args) > 1 {
		var err error
		if cfg, err = simulation.LoadConfig(os.Args[1]); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}

	field, err := terrain.New(cfg.Terrain)
	if err != nil {
		log.Fatalf("Failed to build terrain: %v", err)
	}

	system, err := actor.NewActorSystem("FlockWorld",
		actor.WithLogger(golog.DefaultLogger),
		actor.WithActorInitMaxRetries(3))
	if err != nil {
		log.Fatalf("Failed to create actor system: %v", err)
	}
	if err := system.Start(ctx); err != nil {
		log.Fatalf("Failed to start actor system: %v", err)
	}
	defer system.Stop(ctx)

	game, err := viewer.NewGame(ctx, system, simulation.NewFlock(&cfg.Simulation, field), field)
	if err != nil {
		log.Fatal(err)
	}

	ebiten.SetWindowSize(viewer.ScreenWidth, viewer.ScreenHeight)
	ebiten.SetWindowTitle("Flock over procedural terrain")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
