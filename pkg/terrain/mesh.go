package terrain

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/lao-tseu-is-alive/go-flock-terrain/pkg/geometry"
)

// Vertex is the interleaved layout uploaded to the GPU for normal mapping.
type Vertex struct {
	Position  mgl32.Vec3
	UV        mgl32.Vec2
	Normal    mgl32.Vec3
	Tangent   mgl32.Vec3
	Bitangent mgl32.Vec3
}

// VertexStride is the number of float32 in one interleaved Vertex.
const VertexStride = 3 + 2 + 3 + 3 + 3

// computeTangentFrames accumulates one unit normal, tangent and bitangent per
// triangle on each of its vertices, then normalizes the sums.
func (h *HeightField) computeTangentFrames() {
	n := len(h.vertices)
	h.normals = make([]geometry.Vector3D, n)
	h.tangents = make([]geometry.Vector3D, n)
	h.bitangents = make([]geometry.Vector3D, n)

	for t := 0; t+2 < len(h.indices); t += 3 {
		i0, i1, i2 := h.indices[t], h.indices[t+1], h.indices[t+2]
		p0, p1, p2 := h.vertices[i0], h.vertices[i1], h.vertices[i2]
		uv0, uv1, uv2 := h.uvs[i0], h.uvs[i1], h.uvs[i2]

		e1 := p1.Sub(p0)
		e2 := p2.Sub(p0)
		normal := e1.Cross(e2).Normalize()

		du1, dv1 := uv1[0]-uv0[0], uv1[1]-uv0[1]
		du2, dv2 := uv2[0]-uv0[0], uv2[1]-uv0[1]
		var tangent, bitangent geometry.Vector3D
		if det := du1*dv2 - du2*dv1; det != 0 {
			r := 1 / det
			tangent = e1.Mul(dv2).Sub(e2.Mul(dv1)).Mul(r).Normalize()
			bitangent = e2.Mul(du1).Sub(e1.Mul(du2)).Mul(r).Normalize()
		}

		for _, i := range [3]uint32{i0, i1, i2} {
			h.normals[i] = h.normals[i].Add(normal)
			h.tangents[i] = h.tangents[i].Add(tangent)
			h.bitangents[i] = h.bitangents[i].Add(bitangent)
		}
	}

	for i := 0; i < n; i++ {
		h.normals[i] = h.normals[i].Normalize()
		h.tangents[i] = h.tangents[i].Normalize()
		h.bitangents[i] = h.bitangents[i].Normalize()
	}
}

// HeightRange returns the lowest and highest vertex heights.
func (h *HeightField) HeightRange() (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range h.vertices {
		lo = math.Min(lo, v.Y)
		hi = math.Max(hi, v.Y)
	}
	return lo, hi
}

// TriangleShade maps the average height of triangle t to [0, 1] between the
// lowest and highest vertex of the mesh. A flat mesh shades to 0.
func (h *HeightField) TriangleShade(t int) float64 {
	lo, hi := h.HeightRange()
	return h.shade(t, lo, hi)
}

// TriangleShades computes TriangleShade for every triangle in one pass.
func (h *HeightField) TriangleShades() []float64 {
	lo, hi := h.HeightRange()
	out := make([]float64, h.TriangleCount())
	for t := range out {
		out[t] = h.shade(t, lo, hi)
	}
	return out
}

func (h *HeightField) shade(t int, lo, hi float64) float64 {
	if hi <= lo {
		return 0
	}
	a := h.vertices[h.indices[3*t]]
	b := h.vertices[h.indices[3*t+1]]
	c := h.vertices[h.indices[3*t+2]]
	avg := (a.Y + b.Y + c.Y) / 3
	s := (avg - lo) / (hi - lo)
	return math.Max(0, math.Min(1, s))
}

// GPUVertices packs the mesh attributes in single precision.
func (h *HeightField) GPUVertices() []Vertex {
	out := make([]Vertex, len(h.vertices))
	for i, p := range h.vertices {
		out[i] = Vertex{
			Position:  p.Vec3f(),
			UV:        mgl32.Vec2{float32(h.uvs[i][0]), float32(h.uvs[i][1])},
			Normal:    h.normals[i].Vec3f(),
			Tangent:   h.tangents[i].Vec3f(),
			Bitangent: h.bitangents[i].Vec3f(),
		}
	}
	return out
}

// Interleaved flattens GPUVertices into a float32 buffer with VertexStride floats per vertex.
func (h *HeightField) Interleaved() []float32 {
	verts := h.GPUVertices()
	buf := make([]float32, 0, len(verts)*VertexStride)
	for _, v := range verts {
		buf = append(buf, v.Position[:]...)
		buf = append(buf, v.UV[:]...)
		buf = append(buf, v.Normal[:]...)
		buf = append(buf, v.Tangent[:]...)
		buf = append(buf, v.Bitangent[:]...)
	}
	return buf
}
