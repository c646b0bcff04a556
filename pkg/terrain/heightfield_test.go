package terrain

import (
	"errors"
	"math"
	"testing"

	"github.com/lao-tseu-is-alive/go-flock-terrain/pkg/geometry"
)

const tol = 1e-9

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.PlaneSize = 10
	cfg.Resolution = 10
	cfg.Seed = 42
	cfg.Offset = geometry.Vector3D{}
	return cfg
}

func mustBuild(t *testing.T, cfg Config) *HeightField {
	t.Helper()
	h, err := Build(cfg)
	if err != nil {
		t.Fatalf("Build(%+v) returned error: %v", cfg, err)
	}
	return h
}

func TestBuild_Counts(t *testing.T) {
	tests := []struct {
		resolution int
	}{
		{1}, {2}, {10}, {33},
	}
	for _, tt := range tests {
		cfg := testConfig()
		cfg.Resolution = tt.resolution
		h := mustBuild(t, cfg)

		side := tt.resolution + 1
		if got := len(h.Vertices()); got != side*side {
			t.Errorf("res %d: %d vertices; want %d", tt.resolution, got, side*side)
		}
		if got := h.TriangleCount(); got != 2*tt.resolution*tt.resolution {
			t.Errorf("res %d: %d triangles; want %d", tt.resolution, got, 2*tt.resolution*tt.resolution)
		}
		for _, idx := range h.Indices() {
			if int(idx) >= side*side {
				t.Fatalf("res %d: index %d out of range", tt.resolution, idx)
			}
		}
	}
}

func TestBuild_InvalidInput(t *testing.T) {
	cfg := testConfig()
	cfg.Resolution = 0
	if _, err := Build(cfg); !errors.Is(err, ErrResolution) {
		t.Errorf("Build with resolution 0: err = %v; want ErrResolution", err)
	}

	cfg = testConfig()
	cfg.PlaneSize = 0
	if _, err := Build(cfg); !errors.Is(err, ErrPlaneSize) {
		t.Errorf("Build with plane size 0: err = %v; want ErrPlaneSize", err)
	}
}

func TestBuild_GridIsCentered(t *testing.T) {
	h := mustBuild(t, testConfig())
	verts := h.Vertices()
	first, last := verts[0], verts[len(verts)-1]
	if first.X != -5 || first.Z != -5 {
		t.Errorf("first vertex at (%v, %v); want (-5, -5)", first.X, first.Z)
	}
	if math.Abs(last.X-5) > tol || math.Abs(last.Z-5) > tol {
		t.Errorf("last vertex at (%v, %v); want (5, 5)", last.X, last.Z)
	}
}

func TestBuild_HeightsWithinScale(t *testing.T) {
	cfg := testConfig()
	h := mustBuild(t, cfg)
	for i, v := range h.Vertices() {
		// the noise is only approximately bounded by [-1, 1]
		if v.Y < -0.1*cfg.HeightScale || v.Y > 1.1*cfg.HeightScale {
			t.Fatalf("vertex %d height %v outside [0, %v]", i, v.Y, cfg.HeightScale)
		}
	}
}

func TestBuild_SameSeedSameTerrain(t *testing.T) {
	a := mustBuild(t, testConfig())
	b := mustBuild(t, testConfig())
	for i := range a.Vertices() {
		if a.Vertices()[i] != b.Vertices()[i] {
			t.Fatalf("vertex %d differs between builds with the same seed", i)
		}
	}
}

func TestHeightField_SamplesMatchVertices(t *testing.T) {
	h := mustBuild(t, testConfig())
	h.Translate(geometry.Vector3D{X: 1, Y: -3, Z: 2})

	side := h.Resolution() + 1
	for row := 0; row < side; row++ {
		for col := 0; col < side; col++ {
			if got, want := h.Sample(row, col), h.Vertices()[row*side+col].Y; got != want {
				t.Fatalf("heights[%d][%d] = %v; vertex y = %v", row, col, got, want)
			}
		}
	}
}

func TestHeightAt_GridRoundTrip(t *testing.T) {
	h := mustBuild(t, testConfig())
	side := h.Resolution() + 1
	for row := 0; row < side; row++ {
		for col := 0; col < side; col++ {
			v := h.Vertices()[row*side+col]
			got := h.HeightAt(v.X, v.Z)
			if math.IsNaN(got) || math.Abs(got-h.Sample(row, col)) > tol {
				t.Errorf("HeightAt(%v, %v) = %v; want sample[%d][%d] = %v", v.X, v.Z, got, row, col, h.Sample(row, col))
			}
		}
	}
}

func TestHeightAt_Bilinear(t *testing.T) {
	h := mustBuild(t, testConfig())
	// centre of cell (row 2, col 3): average of the four corners
	x := -5 + 3.5
	z := -5 + 2.5
	want := (h.Sample(2, 3) + h.Sample(2, 4) + h.Sample(3, 3) + h.Sample(3, 4)) / 4
	if got := h.HeightAt(x, z); math.Abs(got-want) > tol {
		t.Errorf("HeightAt(%v, %v) = %v; want %v", x, z, got, want)
	}

	// midpoint of an edge interpolates only the two edge samples
	want = (h.Sample(4, 6) + h.Sample(4, 7)) / 2
	if got := h.HeightAt(-5+6.5, -5+4); math.Abs(got-want) > tol {
		t.Errorf("edge midpoint = %v; want %v", got, want)
	}
}

func TestHeightAt_OutOfBounds(t *testing.T) {
	h := mustBuild(t, testConfig())
	tests := []struct {
		name string
		x, z float64
	}{
		{"west", -5.01, 0},
		{"east", 5.01, 0},
		{"north", 0, -5.01},
		{"south", 0, 5.01},
		{"far", 100, -100},
		{"nan", math.NaN(), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := h.HeightAt(tt.x, tt.z); !math.IsInf(got, -1) {
				t.Errorf("HeightAt(%v, %v) = %v; want -Inf", tt.x, tt.z, got)
			}
		})
	}

	for _, corner := range [][2]float64{{-5, -5}, {5, 5}, {-5, 5}, {5, -5}} {
		if got := h.HeightAt(corner[0], corner[1]); math.IsInf(got, 0) {
			t.Errorf("HeightAt(%v) = %v; corners are inside the grid", corner, got)
		}
	}
}

func TestTranslate_Vertical(t *testing.T) {
	h := mustBuild(t, testConfig())
	side := h.Resolution() + 1
	before := make([]float64, 0, side*side)
	for _, v := range h.Vertices() {
		before = append(before, h.HeightAt(v.X, v.Z))
	}

	h.Translate(geometry.Vector3D{Y: -7.5})

	for i, v := range h.Vertices() {
		if got, want := h.HeightAt(v.X, v.Z), before[i]-7.5; math.Abs(got-want) > tol {
			t.Fatalf("after translate HeightAt at vertex %d = %v; want %v", i, got, want)
		}
	}
}

func TestTranslate_HorizontalFollowsMesh(t *testing.T) {
	h := mustBuild(t, testConfig())
	want := h.HeightAt(1.5, -2.5)

	h.Translate(geometry.Vector3D{X: 2, Z: -1})

	if got := h.HeightAt(3.5, -3.5); math.Abs(got-want) > tol {
		t.Errorf("HeightAt after horizontal move = %v; want %v", got, want)
	}
	if got := h.HeightAt(-4.5, 0); !math.IsInf(got, -1) {
		t.Errorf("HeightAt(-4.5, 0) = %v; the west edge moved to x=-3", got)
	}
}

func TestTranslate_UVsAndNormals(t *testing.T) {
	h := mustBuild(t, testConfig())
	u0, v0 := h.UV(5)
	n0 := h.Normal(5)

	h.Translate(geometry.Vector3D{X: 2.5, Y: 4, Z: -5})

	u1, v1 := h.UV(5)
	if math.Abs(u1-u0-0.25) > tol || math.Abs(v1-v0+0.5) > tol {
		t.Errorf("uv moved from (%v,%v) to (%v,%v); want shift (0.25, -0.5)", u0, v0, u1, v1)
	}
	if h.Normal(5) != n0 {
		t.Errorf("normal changed after translate: %v -> %v", n0, h.Normal(5))
	}
}

func TestNew_AppliesOffset(t *testing.T) {
	cfg := testConfig()
	plain := mustBuild(t, cfg)

	cfg.Offset = geometry.Vector3D{Y: -12}
	moved, err := New(cfg)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if got, want := moved.HeightAt(0, 0), plain.HeightAt(0, 0)-12; math.Abs(got-want) > tol {
		t.Errorf("HeightAt(0,0) = %v; want %v", got, want)
	}
}

func TestBuild_DetailLayer(t *testing.T) {
	cfg := testConfig()
	base := mustBuild(t, cfg)

	cfg.DetailAmplitude = 0.5
	detailed := mustBuild(t, cfg)

	differ := false
	for i := range base.Vertices() {
		if base.Vertices()[i].Y != detailed.Vertices()[i].Y {
			differ = true
			break
		}
	}
	if !differ {
		t.Error("detail amplitude 0.5 left every height unchanged")
	}
}

func BenchmarkHeightAt(b *testing.B) {
	cfg := DefaultConfig()
	h, err := Build(cfg)
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		h.HeightAt(float64(i%200)*0.1-10, float64(i%170)*0.1-8)
	}
}
