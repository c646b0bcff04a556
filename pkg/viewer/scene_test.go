package viewer

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/lao-tseu-is-alive/go-flock-terrain/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-flock-terrain/pkg/simulation"
	"github.com/lao-tseu-is-alive/go-flock-terrain/pkg/terrain"
)

func smallField(t *testing.T) *terrain.HeightField {
	t.Helper()
	cfg := terrain.DefaultConfig()
	cfg.Resolution = 4
	hf, err := terrain.Build(cfg)
	if err != nil {
		t.Fatalf("terrain.Build returned error: %v", err)
	}
	return hf
}

func TestTerrainBatches(t *testing.T) {
	hf := smallField(t)
	pr := NewCamera().Projector(800, 600)

	batches := TerrainBatches(hf, hf.TriangleShades(), pr)
	if len(batches) != 1 {
		t.Fatalf("got %d batches; want 1", len(batches))
	}
	b := batches[0]
	if want := 3 * hf.TriangleCount(); len(b.Vertices) != want || len(b.Indices) != want {
		t.Fatalf("got %d vertices and %d indices; want %d", len(b.Vertices), len(b.Indices), want)
	}
	for i, idx := range b.Indices {
		if int(idx) >= len(b.Vertices) {
			t.Fatalf("index %d = %d out of range", i, idx)
		}
	}
	for _, v := range b.Vertices {
		if v.ColorR < 0 || v.ColorR > 1 || v.ColorA != 1 {
			t.Fatalf("bad vertex colour %+v", v)
		}
	}
}

func TestBatch_Splits(t *testing.T) {
	var b Batch
	for !b.full(3) {
		b.addTriangle([3]ebiten.Vertex{})
	}
	if len(b.Vertices) > maxBatchVertices {
		t.Errorf("batch holds %d vertices; limit %d", len(b.Vertices), maxBatchVertices)
	}
}

func TestGridSegments(t *testing.T) {
	hf := smallField(t)
	pr := NewCamera().Projector(800, 600)
	// 5 lines of 4 segments in each direction
	if got := len(GridSegments(hf, 1, pr)); got != 40 {
		t.Errorf("stride 1: %d segments; want 40", got)
	}
	// rows and columns 0, 2 and 4
	if got := len(GridSegments(hf, 2, pr)); got != 24 {
		t.Errorf("stride 2: %d segments; want 24", got)
	}
	if got := len(GridSegments(hf, 0, pr)); got != 40 {
		t.Errorf("stride 0 should behave as 1, got %d segments", got)
	}
}

func TestBoxSegments(t *testing.T) {
	pr := NewCamera().Projector(800, 600)
	if got := len(BoxSegments(-8, 8, pr)); got != 12 {
		t.Errorf("got %d box edges; want 12", got)
	}
}

func TestBoidBatch(t *testing.T) {
	pr := NewCamera().Projector(800, 600)
	if b := BoidBatch(nil, pr); len(b.Vertices) != 0 {
		t.Errorf("nil snapshot produced %d vertices", len(b.Vertices))
	}

	p := simulation.DefaultParams()
	f := simulation.NewFlockOf(&p, nil, []*simulation.Boid{
		simulation.NewBoid(geometry.Vector3D{}, geometry.Vector3D{X: 1}, geometry.Splat(0.5)),
		simulation.NewBoid(geometry.Vector3D{Y: 2}, geometry.Vector3D{Z: 2}, geometry.Splat(0.5)),
	})
	b := BoidBatch(simulation.TakeSnapshot(f, 1), pr)
	if want := 2 * len(boidModel) * 3; len(b.Vertices) != want {
		t.Fatalf("got %d vertices; want %d", len(b.Vertices), want)
	}

	// the dart tip sits ahead of the boid along its velocity
	tipX, tipY, _, _ := pr.Project(mgl64.Vec3{0.5, 0, 0})
	if v := b.Vertices[0]; absf(v.DstX-float32(tipX)) > 1e-3 || absf(v.DstY-float32(tipY)) > 1e-3 {
		t.Errorf("tip drawn at (%v, %v); want (%v, %v)", v.DstX, v.DstY, tipX, tipY)
	}
}

func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
