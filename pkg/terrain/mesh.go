package terrain

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Triangulate builds a terrain mesh from a heightfield. Each grid vertex
// becomes one mesh vertex; each grid cell becomes two triangles.
func Triangulate(hf *HeightField, cellSize float32) *Mesh {
	width, depth := hf.Width, hf.Depth

	vertices := make([]Vertex, width*depth)
	indices := make([]uint32, 0, (width-1)*(depth-1)*6)

	bounds := Bounds{
		Min: mgl32.Vec3{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32},
		Max: mgl32.Vec3{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32},
	}

	for z := range depth {
		for x := range width {
			i := x + z*width
			pos := mgl32.Vec3{float32(x) * cellSize, hf.At(x, z), float32(z) * cellSize}
			vertices[i] = Vertex{
				Position: pos,
				TexCoord: mgl32.Vec2{float32(x) / float32(width), float32(z) / float32(depth)},
			}
			updateBounds(&bounds, pos)

			if x < width-1 && z < depth-1 {
				current := uint32(i)
				w := uint32(width)
				// Winding is fixed: consumers rely on it for face orientation.
				indices = append(indices,
					current, current+w, current+1,
					current+1, current+w, current+w+1,
				)
			}
		}
	}

	RecalculateNormals(vertices, indices)

	return &Mesh{
		Vertices: vertices,
		Indices:  indices,
		Bounds:   bounds,
	}
}

// RecalculateNormals replaces every vertex normal with the area-weighted
// average of the faces that share it. Vertices touched by no face, or whose
// faces cancel out, point straight up.
func RecalculateNormals(vertices []Vertex, indices []uint32) {
	sums := make([]mgl32.Vec3, len(vertices))

	for t := 0; t+2 < len(indices); t += 3 {
		a, b, c := indices[t], indices[t+1], indices[t+2]
		edge1 := vertices[b].Position.Sub(vertices[a].Position)
		edge2 := vertices[c].Position.Sub(vertices[a].Position)
		// Unnormalized cross product weights by twice the triangle area.
		face := edge1.Cross(edge2)

		sums[a] = sums[a].Add(face)
		sums[b] = sums[b].Add(face)
		sums[c] = sums[c].Add(face)
	}

	for i := range vertices {
		vertices[i].Normal = normalizeOrUp(sums[i])
	}
}

func normalizeOrUp(v mgl32.Vec3) mgl32.Vec3 {
	if v.Len() < 1e-6 {
		return mgl32.Vec3{0, 1, 0}
	}
	return v.Normalize()
}

func updateBounds(b *Bounds, p mgl32.Vec3) {
	for axis := 0; axis < 3; axis++ {
		if p[axis] < b.Min[axis] {
			b.Min[axis] = p[axis]
		}
		if p[axis] > b.Max[axis] {
			b.Max[axis] = p[axis]
		}
	}
}
