package mesh

import (
	"github.com/df-mc/voxelworld/block"
	"github.com/df-mc/voxelworld/block/cube"
	"github.com/df-mc/voxelworld/world/chunk"
	"github.com/go-gl/mathgl/mgl32"
)

// Options holds settings for building the opaque mesh of a chunk.
type Options struct {
	// Greedy merges coplanar faces of the same block kind into larger quads.
	// UVs of greedy meshes are in tile units and must be wrapped into the
	// atlas rectangle by the shader.
	Greedy bool
}

// Build builds the opaque mesh of the centre chunk of the area passed. Liquids
// are skipped; they are built by BuildLiquid. A face of a block is only added
// if the block next to it is transparent, so faces between two opaque blocks
// are culled and faces between opaque blocks and liquid are kept. The mesh
// returned is never nil but may be empty.
func Build(a chunk.Area, atlas Atlas, opts Options) *Mesh {
	m := &Mesh{}
	if a.Centre == nil || a.Centre.Empty() {
		return m
	}
	if opts.Greedy {
		buildGreedy(m, a, atlas)
	} else {
		buildFaces(m, a, atlas)
	}
	buildCrosses(m, a, atlas)
	return m
}

// buildFaces adds one quad per visible face of every cube shaped block.
func buildFaces(m *Mesh, a chunk.Area, atlas Atlas) {
	for y := 0; y < chunk.Size; y++ {
		for z := 0; z < chunk.Size; z++ {
			for x := 0; x < chunk.Size; x++ {
				b := a.Centre.Block(x, y, z)
				if b.Shape() != block.ShapeCube {
					continue
				}
				origin := mgl32.Vec3{float32(x), float32(y), float32(z)}
				for _, d := range cube.Directions() {
					if !a.Side(x, y, z, d).Transparent() {
						continue
					}
					corners, uvs := faceCorners(d, origin, 1, 1, 1)
					t := tile(atlas, b, d)
					m.add(quad{
						corners: corners,
						normal:  d.Normal(),
						uvs:     atlasUVs(uvs, t),
						tile:    t,
						color:   b.Tint(d),
					})
				}
			}
		}
	}
}

// crossPlanes holds the two diagonal planes of a cross shaped block as pairs of
// opposite bottom corners.
var crossPlanes = [2][2]mgl32.Vec3{
	{{0, 0, 0}, {1, 0, 1}},
	{{1, 0, 0}, {0, 0, 1}},
}

// buildCrosses adds two double sided diagonal quads for every cross shaped
// block, such as plants. These are never culled.
func buildCrosses(m *Mesh, a chunk.Area, atlas Atlas) {
	for i := 0; i < chunk.Volume; i++ {
		b := a.Centre.At(i)
		if b.Shape() != block.ShapeCross {
			continue
		}
		x, z, y := i%chunk.Size, (i/chunk.Size)%chunk.Size, i/chunk.LayerSize
		origin := mgl32.Vec3{float32(x), float32(y), float32(z)}
		t := tile(atlas, b, cube.Forward)
		uvs := atlasUVs([4]mgl32.Vec2{{0, 1}, {1, 1}, {1, 0}, {0, 0}}, t)
		for _, p := range crossPlanes {
			p0, p1 := origin.Add(p[0]), origin.Add(p[1])
			up := mgl32.Vec3{0, 1, 0}
			front := [4]mgl32.Vec3{p0, p1, p1.Add(up), p0.Add(up)}
			normal := p1.Sub(p0).Cross(up).Normalize()
			m.add(quad{corners: front, normal: normal, uvs: uvs, tile: t, color: b.Tint(cube.Forward)})

			back := [4]mgl32.Vec3{p1, p0, p0.Add(up), p1.Add(up)}
			m.add(quad{corners: back, normal: normal.Mul(-1), uvs: uvs, tile: t, color: b.Tint(cube.Forward)})
		}
	}
}
