// Package collider builds collision shapes from chunks of blocks.
package collider

import (
	"github.com/df-mc/voxelworld/block/cube"
	"github.com/df-mc/voxelworld/world/chunk"
	"github.com/go-gl/mathgl/mgl32"
)

// Shape is a collision shape in the local space of a chunk. It is either a
// Cuboid or a TriMesh.
type Shape interface {
	// Bounds returns the lower and upper corner of the box enclosing the shape.
	Bounds() (mgl32.Vec3, mgl32.Vec3)
}

// Cuboid is an axis aligned box.
type Cuboid struct {
	Centre, HalfExtents mgl32.Vec3
}

// Bounds ...
func (c Cuboid) Bounds() (mgl32.Vec3, mgl32.Vec3) {
	return c.Centre.Sub(c.HalfExtents), c.Centre.Add(c.HalfExtents)
}

// TriMesh is a triangle mesh described by a vertex list and a triangle index
// list. Triangles are wound counter-clockwise seen from outside of the solid.
type TriMesh struct {
	Vertices []mgl32.Vec3
	Indices  [][3]uint32
}

// Bounds ...
func (m *TriMesh) Bounds() (mgl32.Vec3, mgl32.Vec3) {
	if len(m.Vertices) == 0 {
		return mgl32.Vec3{}, mgl32.Vec3{}
	}
	lo, hi := m.Vertices[0], m.Vertices[0]
	for _, v := range m.Vertices[1:] {
		for i := 0; i < 3; i++ {
			lo[i], hi[i] = min(lo[i], v[i]), max(hi[i], v[i])
		}
	}
	return lo, hi
}

// Triangles returns the amount of triangles in the mesh.
func (m *TriMesh) Triangles() int {
	return len(m.Indices)
}

// Build builds the collision shape of a chunk. It returns nil if the chunk has
// no solid blocks and a single Cuboid spanning the chunk if every block is
// solid. Otherwise the exposed faces of solid blocks are merged into as few
// rectangles as a greedy sweep finds and returned as a TriMesh. Faces on the
// boundary of the chunk always count as exposed.
func Build(c *chunk.Chunk) Shape {
	solid := 0
	for i := 0; i < chunk.Volume; i++ {
		if c.At(i).Solid() {
			solid++
		}
	}
	switch solid {
	case 0:
		return nil
	case chunk.Volume:
		half := float32(chunk.Size) / 2
		return Cuboid{Centre: mgl32.Vec3{half, half, half}, HalfExtents: mgl32.Vec3{half, half, half}}
	}

	mask := exposure(c)
	m := &TriMesh{}
	for _, d := range cube.Directions() {
		sweep(m, &mask, d)
	}
	return m
}

// exposure returns, per block, a bitmask of the faces of solid blocks that
// border a non-solid block or the chunk boundary. Bit d is set if the face
// pointing in direction d is exposed.
func exposure(c *chunk.Chunk) [chunk.Volume]uint8 {
	var mask [chunk.Volume]uint8
	for y := 0; y < chunk.Size; y++ {
		for z := 0; z < chunk.Size; z++ {
			for x := 0; x < chunk.Size; x++ {
				if !c.Block(x, y, z).Solid() {
					continue
				}
				var bits uint8
				for _, d := range cube.Directions() {
					o := d.Offset()
					nx, ny, nz := x+o[0], y+o[1], z+o[2]
					if !chunk.InBounds(nx, ny, nz) || !c.Block(nx, ny, nz).Solid() {
						bits |= 1 << d
					}
				}
				mask[chunk.Index(x, y, z)] = bits
			}
		}
	}
	return mask
}

// index returns the block index of a position in a sweep over faces pointing
// in d: s is the layer along d, i and j the offsets along the first and second
// perpendicular directions of d.
func index(d cube.Direction, s, i, j int) int {
	var p cube.Pos
	u, v := d.Perpendicular()
	p[d.Axis()], p[u.Axis()], p[v.Axis()] = s, i, j
	return chunk.Index(p[0], p[1], p[2])
}

// sweep merges the exposed faces pointing in d into rectangles. A strip is
// grown along the first perpendicular direction while faces are exposed, then
// the strip is grown along the second one only for as long as the whole next
// strip is exposed. The bits of a rectangle are cleared once it is committed.
func sweep(m *TriMesh, mask *[chunk.Volume]uint8, d cube.Direction) {
	bit := uint8(1) << d
	set := func(s, i, j int) bool {
		return mask[index(d, s, i, j)]&bit != 0
	}
	for s := 0; s < chunk.Size; s++ {
		for j := 0; j < chunk.Size; j++ {
			for i := 0; i < chunk.Size; i++ {
				if !set(s, i, j) {
					continue
				}
				w := 1
				for i+w < chunk.Size && set(s, i+w, j) {
					w++
				}
				h := 1
			grow:
				for j+h < chunk.Size {
					for k := 0; k < w; k++ {
						if !set(s, i+k, j+h) {
							break grow
						}
					}
					h++
				}
				for dj := 0; dj < h; dj++ {
					for k := 0; k < w; k++ {
						mask[index(d, s, i+k, j+dj)] &^= bit
					}
				}
				m.addQuad(d, s, i, j, w, h)
			}
		}
	}
}

// addQuad adds the rectangle of w by h faces pointing in d that starts at the
// block (s, i, j) of the sweep as two triangles.
func (m *TriMesh) addQuad(d cube.Direction, s, i, j, w, h int) {
	u, v := d.Perpendicular()
	var origin mgl32.Vec3
	origin[d.Axis()], origin[u.Axis()], origin[v.Axis()] = float32(s), float32(i), float32(j)
	if d.Positive() {
		origin[d.Axis()]++
	}
	du, dv := u.Normal().Mul(float32(w)), v.Normal().Mul(float32(h))

	base := uint32(len(m.Vertices))
	m.Vertices = append(m.Vertices, origin, origin.Add(du), origin.Add(du).Add(dv), origin.Add(dv))
	if u.Normal().Cross(v.Normal()).Dot(d.Normal()) > 0 {
		m.Indices = append(m.Indices, [3]uint32{base, base + 1, base + 2}, [3]uint32{base + 2, base + 3, base})
	} else {
		m.Indices = append(m.Indices, [3]uint32{base, base + 3, base + 2}, [3]uint32{base + 2, base + 1, base})
	}
}
