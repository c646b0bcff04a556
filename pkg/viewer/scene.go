package viewer

import (
	"cmp"
	"image/color"
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/lao-tseu-is-alive/go-flock-terrain/pkg/simulation"
	"github.com/lao-tseu-is-alive/go-flock-terrain/pkg/terrain"
)

// maxBatchVertices keeps every batch addressable with uint16 indices.
const maxBatchVertices = math.MaxUint16 - 2

// lightDir is the direction toward the sun, normalised.
var lightDir = mgl64.Vec3{0.4, 1, 0.3}.Normalize()

// Batch is one DrawTriangles call.
type Batch struct {
	Vertices []ebiten.Vertex
	Indices  []uint16
}

func (b *Batch) full(n int) bool {
	return len(b.Vertices)+n > maxBatchVertices
}

func (b *Batch) addTriangle(v [3]ebiten.Vertex) {
	base := uint16(len(b.Vertices))
	b.Vertices = append(b.Vertices, v[:]...)
	b.Indices = append(b.Indices, base, base+1, base+2)
}

func vertex(x, y float64, c [4]float32) ebiten.Vertex {
	return ebiten.Vertex{
		DstX: float32(x), DstY: float32(y),
		SrcX: 1, SrcY: 1,
		ColorR: c[0], ColorG: c[1], ColorB: c[2], ColorA: c[3],
	}
}

type screenPoint struct {
	x, y, depth float64
	ok          bool
}

type depthTriangle struct {
	t     int
	depth float64
}

// TerrainBatches projects the height field and returns its triangles sorted
// far to near, so that drawing them in order hides the back of the hills.
// shades holds one value in [0, 1] per triangle (see HeightField.TriangleShades).
func TerrainBatches(hf *terrain.HeightField, shades []float64, pr Projector) []Batch {
	verts := hf.Vertices()
	pts := make([]screenPoint, len(verts))
	for i, v := range verts {
		x, y, d, ok := pr.Project(v.Vec3())
		pts[i] = screenPoint{x, y, d, ok}
	}

	idx := hf.Indices()
	tris := make([]depthTriangle, 0, hf.TriangleCount())
	for t := 0; t < hf.TriangleCount(); t++ {
		a, b, c := pts[idx[3*t]], pts[idx[3*t+1]], pts[idx[3*t+2]]
		if !a.ok || !b.ok || !c.ok {
			continue
		}
		tris = append(tris, depthTriangle{t: t, depth: a.depth + b.depth + c.depth})
	}
	slices.SortFunc(tris, func(p, q depthTriangle) int { return cmp.Compare(q.depth, p.depth) })

	batches := []Batch{{}}
	for _, tri := range tris {
		cur := &batches[len(batches)-1]
		if cur.full(3) {
			batches = append(batches, Batch{})
			cur = &batches[len(batches)-1]
		}
		i0, i1, i2 := idx[3*tri.t], idx[3*tri.t+1], idx[3*tri.t+2]
		n := hf.Normal(int(i0)).Add(hf.Normal(int(i1))).Add(hf.Normal(int(i2))).Normalize()
		c := terrainColor(shades[tri.t], n.Vec3())
		cur.addTriangle([3]ebiten.Vertex{
			vertex(pts[i0].x, pts[i0].y, c),
			vertex(pts[i1].x, pts[i1].y, c),
			vertex(pts[i2].x, pts[i2].y, c),
		})
	}
	return batches
}

// terrainColor is the height grey ramp, lit by a single directional light.
func terrainColor(shade float64, normal mgl64.Vec3) [4]float32 {
	lit := 0.35 + 0.65*math.Max(0, normal.Dot(lightDir))
	g := float32((0.2 + 0.7*shade) * lit)
	return [4]float32{g, g * 1.05, g * 0.9, 1}
}

// boidModel is a paper dart pointing along simulation.Forward.
var boidModel = [][3]mgl64.Vec3{
	{{0, -1, 0}, {-0.5, 0.6, 0}, {0.5, 0.6, 0}},
	{{0, -1, 0}, {0, 0.6, -0.35}, {0, 0.6, 0.35}},
}

// BoidBatch draws every boid of the snapshot with its model matrix, coloured
// from slow (blue) to fast (orange).
func BoidBatch(snap *simulation.Snapshot, pr Projector) Batch {
	var batch Batch
	if snap == nil {
		return batch
	}
	span := snap.Params.MaxSpeed - snap.Params.MinSpeed
	for _, b := range snap.Boids {
		t := 0.0
		if span > 0 {
			t = mgl64.Clamp((b.Velocity.Len()-snap.Params.MinSpeed)/span, 0, 1)
		}
		c := [4]float32{float32(0.2 + 0.8*t), float32(0.5 + 0.1*t), float32(1 - 0.8*t), 1}
		for _, face := range boidModel {
			var tri [3]ebiten.Vertex
			visible := true
			for k, p := range face {
				x, y, _, ok := pr.Project(mgl64.TransformCoordinate(p, b.Model))
				if !ok {
					visible = false
					break
				}
				tri[k] = vertex(x, y, c)
			}
			if visible && !batch.full(3) {
				batch.addTriangle(tri)
			}
		}
	}
	return batch
}

// Segment is a projected line.
type Segment struct {
	X0, Y0, X1, Y1 float32
}

// BoxSegments returns the twelve edges of the cube [lo, hi]^3 that are in front of the camera.
func BoxSegments(lo, hi float64, pr Projector) []Segment {
	corner := func(i int) mgl64.Vec3 {
		pick := func(bit int) float64 {
			if i&bit != 0 {
				return hi
			}
			return lo
		}
		return mgl64.Vec3{pick(1), pick(2), pick(4)}
	}
	var out []Segment
	for i := 0; i < 8; i++ {
		for _, bit := range []int{1, 2, 4} {
			if i&bit != 0 {
				continue
			}
			if s, ok := segment(corner(i), corner(i|bit), pr); ok {
				out = append(out, s)
			}
		}
	}
	return out
}

// GridSegments returns the wireframe of the height field, one line every stride rows and columns.
func GridSegments(hf *terrain.HeightField, stride int, pr Projector) []Segment {
	stride = max(stride, 1)
	n := hf.Resolution() + 1
	verts := hf.Vertices()
	at := func(row, col int) mgl64.Vec3 { return verts[row*n+col].Vec3() }

	var out []Segment
	for row := 0; row < n; row += stride {
		for col := 0; col+1 < n; col++ {
			if s, ok := segment(at(row, col), at(row, col+1), pr); ok {
				out = append(out, s)
			}
		}
	}
	for col := 0; col < n; col += stride {
		for row := 0; row+1 < n; row++ {
			if s, ok := segment(at(row, col), at(row+1, col), pr); ok {
				out = append(out, s)
			}
		}
	}
	return out
}

func segment(a, b mgl64.Vec3, pr Projector) (Segment, bool) {
	x0, y0, _, ok0 := pr.Project(a)
	x1, y1, _, ok1 := pr.Project(b)
	if !ok0 || !ok1 {
		return Segment{}, false
	}
	return Segment{float32(x0), float32(y0), float32(x1), float32(y1)}, true
}

var (
	boxColor  = color.RGBA{R: 230, G: 230, B: 120, A: 200}
	gridColor = color.RGBA{R: 140, G: 200, B: 140, A: 160}
)
