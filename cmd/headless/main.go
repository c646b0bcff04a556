// Command headless runs the flock without a window and logs how it behaves.
//
//	headless [config_file] [steps]
package main

import (
	"context"
	"log"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/lao-tseu-is-alive/go-flock-terrain/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-flock-terrain/pkg/simulation"
	"github.com/lao-tseu-is-alive/go-flock-terrain/pkg/terrain"
	"github.com/tochemey/goakt/v3/actor"
	golog "github.com/tochemey/goakt/v3/log"
)

const (
	defaultSteps = 1000
	stepTimeout  = 5 * time.Second
)

func main() {
	ctx := context.Background()
	logger := golog.DefaultLogger

	cfg := simulation.DefaultConfig()
	if len(os.Args) > 1 && os.Args[1] != "" {
		var err error
		if cfg, err = simulation.LoadConfig(os.Args[1]); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}
	steps := defaultSteps
	if len(os.Args) > 2 {
		n, err := strconv.Atoi(os.Args[2])
		if err != nil || n < 0 {
			log.Fatalf("steps must be a non negative integer, got %q", os.Args[2])
		}
		steps = n
	}

	field, err := terrain.New(cfg.Terrain)
	if err != nil {
		log.Fatalf("Failed to build terrain: %v", err)
	}

	system, err := actor.NewActorSystem("FlockHeadless", actor.WithLogger(logger))
	if err != nil {
		log.Fatalf("Failed to create actor system: %v", err)
	}
	if err := system.Start(ctx); err != nil {
		log.Fatalf("Failed to start actor system: %v", err)
	}
	defer system.Stop(ctx)

	// one tick in flight at a time, so the single slot never overflows
	snapshots := make(chan *simulation.Snapshot, 1)
	world, err := system.Spawn(ctx, "world", simulation.NewWorldActor(simulation.NewFlock(&cfg.Simulation, field), snapshots))
	if err != nil {
		log.Fatalf("Failed to spawn world: %v", err)
	}

	every := max(steps/10, 1)
	start := time.Now()
	var last *simulation.Snapshot
	rejected := 0
	for frame := uint64(1); frame <= uint64(steps); frame++ {
		if err := actor.Tell(ctx, world, simulation.NewTick(frame)); err != nil {
			log.Fatalf("Failed to tick world: %v", err)
		}
		select {
		case last = <-snapshots:
		case <-time.After(stepTimeout):
			log.Fatalf("World did not answer frame %d within %s", frame, stepTimeout)
		}
		rejected += last.Rejected
		if frame%uint64(every) == 0 {
			logStats(logger, last, field)
		}
	}

	elapsed := time.Since(start)
	logger.Infof("Ran %d steps in %s (%.0f steps/s), %d rejected boid updates",
		steps, elapsed.Round(time.Millisecond), float64(steps)/elapsed.Seconds(), rejected)
}

// logStats reports where the flock is and how close it flies to the ground.
func logStats(logger golog.Logger, snap *simulation.Snapshot, field *terrain.HeightField) {
	if len(snap.Boids) == 0 {
		logger.Infof("frame %d: empty flock", snap.Frame)
		return
	}
	var center geometry.Vector3D
	for _, b := range snap.Boids {
		center = center.Add(b.Position)
	}
	center = center.Mul(1 / float64(len(snap.Boids)))

	spread := 0.0
	clearance := math.Inf(1)
	for _, b := range snap.Boids {
		spread += b.Position.DistanceTo(center)
		if h := field.HeightAt(b.Position.X, b.Position.Z); !math.IsInf(h, -1) {
			clearance = math.Min(clearance, b.Position.Y-h)
		}
	}
	spread /= float64(len(snap.Boids))

	logger.Infof("frame %d: center %s | spread %.3f | mean speed %.3f | min clearance %.3f | faults %d",
		snap.Frame, center, spread, snap.MeanSpeed, clearance, snap.Faults)
}
