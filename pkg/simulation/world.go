package simulation

import (
	"time"

	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/goaktpb"
	golog "github.com/tochemey/goakt/v3/log"
	"go.uber.org/multierr"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// WorldActor owns the flock. Ticks and parameter updates share its mailbox,
// so parameters can never change in the middle of a step.
type WorldActor struct {
	flock *Flock
	// Communication with UI
	snapshotCh chan<- *Snapshot
	frame      uint64

	// --- Benchmark Stats ---
	stepCount   int
	faultCount  int
	lastLogTime time.Time
}

var _ actor.Actor = (*WorldActor)(nil)

// NewWorldActor creates the world logic unit around an existing flock.
// snapshotCh may be nil when nobody watches the simulation.
func NewWorldActor(flock *Flock, snapshotCh chan<- *Snapshot) *WorldActor {
	return &WorldActor{
		flock:       flock,
		snapshotCh:  snapshotCh,
		lastLogTime: time.Now(),
	}
}

func (w *WorldActor) PreStart(ctx *actor.Context) error {
	ctx.ActorSystem().Logger().Infof("World holds %d boids", w.flock.Len())
	return nil
}

func (w *WorldActor) Receive(ctx *actor.ReceiveContext) {
	switch msg := ctx.Message().(type) {

	case *goaktpb.PostStart:
		ctx.Logger().Info("World Started.")

	// The Main Simulation Step (Driven by Game Loop)
	case *wrapperspb.UInt64Value:
		rejected := w.advance(ctx.Logger(), msg.GetValue())
		w.logBenchmarks(ctx.Logger())
		w.pushSnapshot(rejected)

	// Handle dynamic slider updates from UI
	case *structpb.Struct:
		if err := ParamsFromProto(msg, w.flock.Params()); err != nil {
			ctx.Logger().Errorf("ignoring params update: %v", err)
		}

	default:
		ctx.Unhandled()
	}
}

func (w *WorldActor) PostStop(ctx *actor.Context) error {
	ctx.ActorSystem().Logger().Infof("World is shutdown after %d frames", w.frame)
	return nil
}

// advance runs one step with the configured delta time and returns how many
// boids rejected their update.
func (w *WorldActor) advance(logger golog.Logger, frame uint64) int {
	w.frame = frame
	w.stepCount++
	err := w.flock.Step(w.flock.Params().DeltaTime)
	if err == nil {
		return 0
	}
	errs := multierr.Errors(err)
	w.faultCount += len(errs)
	for _, e := range errs {
		logger.Warnf("frame %d: %v", frame, e)
	}
	return len(errs)
}

func (w *WorldActor) logBenchmarks(logger golog.Logger) {
	if time.Since(w.lastLogTime) >= time.Second {
		logger.Infof("📊 STEP RATE: %d/sec | Boids: %d | Faults: %d | Frame: %d",
			w.stepCount, w.flock.Len(), w.faultCount, w.frame)
		w.stepCount = 0
		w.faultCount = 0
		w.lastLogTime = time.Now()
	}
}

func (w *WorldActor) pushSnapshot(rejected int) {
	if w.snapshotCh == nil {
		return
	}
	snap := TakeSnapshot(w.flock, w.frame)
	snap.Rejected = rejected
	select {
	case w.snapshotCh <- snap:
	default:
		// UI busy, skip frame
	}
}
