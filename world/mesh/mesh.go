// Package mesh builds render geometry from chunks of blocks.
package mesh

import (
	"github.com/df-mc/voxelworld/block/cube"
	"github.com/go-gl/mathgl/mgl32"
)

// Mesh is an indexed triangle list with per-vertex attributes. Every face owns
// its four vertices; vertices are never shared between faces.
type Mesh struct {
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	// UVs holds texture coordinates. Meshes built face by face hold atlas
	// coordinates directly. Greedy meshes hold coordinates in tile units, to be
	// wrapped into the atlas rectangle in Tiles by the shader.
	UVs []mgl32.Vec2
	// Tiles holds the atlas rectangle (min u, min v, max u, max v) of the
	// texture of each vertex.
	Tiles   []mgl32.Vec4
	Colors  []mgl32.Vec4
	Indices []uint32
}

// Empty reports whether the mesh has no triangles.
func (m *Mesh) Empty() bool {
	return m == nil || len(m.Indices) == 0
}

// Quads returns the amount of quads in the mesh.
func (m *Mesh) Quads() int {
	if m == nil {
		return 0
	}
	return len(m.Indices) / 6
}

// quad is a single rectangle to be added to a mesh.
type quad struct {
	// corners are ordered counter-clockwise when seen from the front.
	corners [4]mgl32.Vec3
	normal  mgl32.Vec3
	// uvs are the texture coordinates of the corners.
	uvs   [4]mgl32.Vec2
	tile  mgl32.Vec4
	color mgl32.Vec4
}

func (m *Mesh) add(q quad) {
	base := uint32(len(m.Positions))
	for i := 0; i < 4; i++ {
		m.Positions = append(m.Positions, q.corners[i])
		m.Normals = append(m.Normals, q.normal)
		m.UVs = append(m.UVs, q.uvs[i])
		m.Tiles = append(m.Tiles, q.tile)
		m.Colors = append(m.Colors, q.color)
	}
	m.Indices = append(m.Indices, base, base+1, base+2, base+2, base+3, base)
}

// faceCorners returns the corners of the face pointing in d of the box that
// starts at origin and spans w blocks along the first perpendicular direction
// of d, h blocks along the second and depth blocks along d itself. The corners
// are wound counter-clockwise seen from outside. The texture offsets of the
// corners in tile units are returned alongside, with v pointing down the face.
func faceCorners(d cube.Direction, origin mgl32.Vec3, w, h, depth float32) (corners [4]mgl32.Vec3, uvs [4]mgl32.Vec2) {
	u, v := d.Perpendicular()
	n := d.Normal()
	uv, vv := u.Normal().Mul(w), v.Normal().Mul(h)
	if d.Positive() {
		origin = origin.Add(n.Mul(depth))
	}
	corners = [4]mgl32.Vec3{origin, origin.Add(uv), origin.Add(uv).Add(vv), origin.Add(vv)}
	uvs = [4]mgl32.Vec2{{0, h}, {w, h}, {w, 0}, {0, 0}}
	if u.Normal().Cross(v.Normal()).Dot(n) < 0 {
		corners[1], corners[3] = corners[3], corners[1]
		uvs[1], uvs[3] = uvs[3], uvs[1]
	}
	return corners, uvs
}
