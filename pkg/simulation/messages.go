package simulation

import (
	"encoding/json"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/lao-tseu-is-alive/go-flock-terrain/pkg/geometry"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Messages understood by WorldActor:
//   - *wrapperspb.UInt64Value: a tick, the value is the frame number of the render loop
//   - *structpb.Struct: a partial or complete Params update, keyed by json names

// NewTick builds the message asking the world for one step.
func NewTick(frame uint64) *wrapperspb.UInt64Value {
	return wrapperspb.UInt64(frame)
}

// ParamsToProto converts params into the update message sent to the world.
// Spawn-only fields are left out.
func ParamsToProto(p Params) (*structpb.Struct, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal params: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("failed to convert params: %w", err)
	}
	// only read when the flock is spawned, and an int64 seed does not survive a float64 Value
	for _, k := range spawnOnlyKeys {
		delete(m, k)
	}
	return structpb.NewStruct(m)
}

var spawnOnlyKeys = []string{"seed", "boidNumber", "spawnExtent"}

// ParamsFromProto overlays the fields present in msg onto into.
// Fields missing from msg keep their current value. On error into is unchanged.
func ParamsFromProto(msg *structpb.Struct, into *Params) error {
	b, err := protojson.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal params update: %w", err)
	}
	next := *into
	if err := json.Unmarshal(b, &next); err != nil {
		return fmt.Errorf("failed to apply params update: %w", err)
	}
	*into = next
	return nil
}

// BoidState is what the renderer needs to draw one boid.
type BoidState struct {
	Position    geometry.Vector3D
	Velocity    geometry.Vector3D
	Scale       geometry.Vector3D
	Orientation mgl64.Quat
	Model       mgl64.Mat4
}

// Snapshot is the state of the flock after one step, pushed to the UI.
type Snapshot struct {
	Frame     uint64
	Boids     []BoidState
	Faults    int // boids without a usable heading
	Rejected  int // boids whose last Integrate returned an error
	MeanSpeed float64
	Params    Params
}

// TakeSnapshot copies the current flock state.
// A boid whose orientation cannot be derived is drawn unrotated and counted in Faults.
func TakeSnapshot(f *Flock, frame uint64) *Snapshot {
	snap := &Snapshot{
		Frame:  frame,
		Boids:  make([]BoidState, 0, f.Len()),
		Params: *f.Params(),
	}
	total := 0.0
	for _, b := range f.Boids() {
		q, err := b.Orientation()
		if err != nil {
			snap.Faults++
		}
		snap.Boids = append(snap.Boids, BoidState{
			Position:    b.Position,
			Velocity:    b.Velocity,
			Scale:       b.Scale,
			Orientation: q,
			Model:       modelMatrix(b.Position, q, b.Scale),
		})
		total += b.Speed()
	}
	if f.Len() > 0 {
		snap.MeanSpeed = total / float64(f.Len())
	}
	return snap
}
