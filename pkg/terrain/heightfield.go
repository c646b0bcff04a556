// Package terrain builds a procedural ground mesh from gradient noise and
// answers height queries on it.
package terrain

import (
	"errors"
	"fmt"
	"math"

	"github.com/lao-tseu-is-alive/go-flock-terrain/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-flock-terrain/pkg/noise"
)

var (
	ErrResolution = errors.New("terrain resolution must be at least 1")
	ErrPlaneSize  = errors.New("terrain plane size must be positive")
)

// HeightField is a regular grid mesh on the XZ plane whose heights come from noise.
//
// heights[row][col] always equals vertices[row*(resolution+1)+col].Y.
// The index buffer never changes after Build; Translate only moves vertices.
type HeightField struct {
	planeSize  float64
	resolution int

	heights  [][]float64
	vertices []geometry.Vector3D
	indices  []uint32

	uvs        [][2]float64
	normals    []geometry.Vector3D
	tangents   []geometry.Vector3D
	bitangents []geometry.Vector3D

	// origin is the accumulated horizontal translation, used to map world
	// coordinates back onto the grid.
	originX, originZ float64

	field  *noise.Field
	detail *noise.Fractal
}

// New builds the height field and applies cfg.Offset.
func New(cfg Config) (*HeightField, error) {
	h, err := Build(cfg)
	if err != nil {
		return nil, err
	}
	if !cfg.Offset.IsZero() {
		h.Translate(cfg.Offset)
	}
	return h, nil
}

// Build generates (resolution+1)^2 vertices centered on the origin and
// 2*resolution^2 triangles.
func Build(cfg Config) (*HeightField, error) {
	if cfg.Resolution < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrResolution, cfg.Resolution)
	}
	if !(cfg.PlaneSize > 0) {
		return nil, fmt.Errorf("%w: got %v", ErrPlaneSize, cfg.PlaneSize)
	}
	uvScale := cfg.UVScale
	if uvScale == 0 {
		uvScale = 1
	}

	res := cfg.Resolution
	side := res + 1
	h := &HeightField{
		planeSize:  cfg.PlaneSize,
		resolution: res,
		heights:    make([][]float64, side),
		vertices:   make([]geometry.Vector3D, 0, side*side),
		indices:    make([]uint32, 0, 6*res*res),
		uvs:        make([][2]float64, 0, side*side),
		field:      noise.New(cfg.Seed),
	}
	if cfg.DetailAmplitude != 0 {
		h.detail = noise.NewFractal(cfg.DetailAlpha, cfg.DetailBeta, cfg.DetailOctaves, cfg.Seed)
	}

	half := cfg.PlaneSize / 2
	for row := 0; row <= res; row++ {
		h.heights[row] = make([]float64, side)
		for col := 0; col <= res; col++ {
			x := float64(col)/float64(res)*cfg.PlaneSize - half
			z := float64(row)/float64(res)*cfg.PlaneSize - half

			n := h.field.Sample(x*cfg.Frequency, 1.0, z*cfg.Frequency)
			y := (n + 1) / 2 * cfg.HeightScale
			if h.detail != nil {
				y += cfg.DetailAmplitude * h.detail.Sample2D(x*cfg.Frequency, z*cfg.Frequency)
			}

			h.vertices = append(h.vertices, geometry.Vector3D{X: x, Y: y, Z: z})
			h.heights[row][col] = y
			h.uvs = append(h.uvs, [2]float64{
				float64(col) / float64(res) * uvScale,
				float64(row) / float64(res) * uvScale,
			})
		}
	}

	/*
		0---1
		|  /|
		| / |
		|/  |
		2---3
	*/
	for row := 0; row < res; row++ {
		for col := 0; col < res; col++ {
			topLeft := uint32(row*side + col)
			topRight := topLeft + 1
			bottomLeft := uint32((row+1)*side + col)
			bottomRight := bottomLeft + 1

			h.indices = append(h.indices,
				topLeft, bottomLeft, topRight,
				topRight, bottomLeft, bottomRight,
			)
		}
	}

	h.computeTangentFrames()
	return h, nil
}

// PlaneSize returns the world space edge length.
func (h *HeightField) PlaneSize() float64 { return h.planeSize }

// Resolution returns the number of grid subdivisions per edge.
func (h *HeightField) Resolution() int { return h.resolution }

// Sample returns the stored height at grid position (row, col).
func (h *HeightField) Sample(row, col int) float64 { return h.heights[row][col] }

// Vertices returns the vertex positions in world space. The slice is shared, do not modify it.
func (h *HeightField) Vertices() []geometry.Vector3D { return h.vertices }

// Indices returns the triangle list, three indices per triangle.
func (h *HeightField) Indices() []uint32 { return h.indices }

// TriangleCount returns the number of triangles in the mesh.
func (h *HeightField) TriangleCount() int { return len(h.indices) / 3 }

// UV returns the texture coordinate of vertex i.
func (h *HeightField) UV(i int) (u, v float64) { return h.uvs[i][0], h.uvs[i][1] }

// Normal returns the unit normal of vertex i.
func (h *HeightField) Normal(i int) geometry.Vector3D { return h.normals[i] }

// Tangent returns the unit tangent of vertex i.
func (h *HeightField) Tangent(i int) geometry.Vector3D { return h.tangents[i] }

// Bitangent returns the unit bitangent of vertex i.
func (h *HeightField) Bitangent(i int) geometry.Vector3D { return h.bitangents[i] }

// HeightAt returns the bilinearly interpolated ground height under (x, z).
// Outside the grid it returns negative infinity, which callers must treat as "no ground here".
func (h *HeightField) HeightAt(x, z float64) float64 {
	res := float64(h.resolution)
	gridX := (x - h.originX + h.planeSize/2) / h.planeSize * res
	gridZ := (z - h.originZ + h.planeSize/2) / h.planeSize * res

	// written so that NaN also fails the test
	if !(gridX >= 0 && gridX <= res && gridZ >= 0 && gridZ <= res) {
		return math.Inf(-1)
	}

	x0 := int(math.Floor(gridX))
	z0 := int(math.Floor(gridZ))
	// the far edge belongs to the last cell with full weight
	if x0 == h.resolution {
		x0--
	}
	if z0 == h.resolution {
		z0--
	}
	x1, z1 := x0+1, z0+1

	h00 := h.heights[z0][x0]
	h10 := h.heights[z0][x1]
	h01 := h.heights[z1][x0]
	h11 := h.heights[z1][x1]

	dx := gridX - float64(x0)
	dz := gridZ - float64(z0)

	return (1-dx)*(1-dz)*h00 +
		dx*(1-dz)*h10 +
		(1-dx)*dz*h01 +
		dx*dz*h11
}

// Translate rigidly moves the whole field by offset.
// Height samples follow vertical moves, texture coordinates follow horizontal ones.
// Normals and tangents are left untouched.
func (h *HeightField) Translate(offset geometry.Vector3D) {
	for i := range h.vertices {
		h.vertices[i] = h.vertices[i].Add(offset)
	}

	if offset.Y != 0 {
		for _, row := range h.heights {
			for col := range row {
				row[col] += offset.Y
			}
		}
	}

	if offset.X != 0 || offset.Z != 0 {
		du := offset.X / h.planeSize
		dv := offset.Z / h.planeSize
		for i := range h.uvs {
			h.uvs[i][0] += du
			h.uvs[i][1] += dv
		}
		h.originX += offset.X
		h.originZ += offset.Z
	}
}
