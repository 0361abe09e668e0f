package mesh

import (
	"github.com/df-mc/voxelworld/block"
	"github.com/df-mc/voxelworld/block/cube"
	"github.com/df-mc/voxelworld/world/chunk"
	"github.com/go-gl/mathgl/mgl32"
)

// SurfaceHeight is the height of the top of a liquid block that has neither
// liquid nor a solid block above it.
const SurfaceHeight = 14.0 / 16.0

// BuildLiquid builds the translucent liquid mesh of the centre chunk of the
// area passed. It returns nil if the chunk has no visible liquid faces.
//
// Liquid blocks with air or a plant above them form the surface: their top is lowered to
// SurfaceHeight and drawn. Sides and bottoms are drawn towards any
// non-solid, non-liquid neighbour and never towards solid blocks. Where a full
// height liquid block borders a surface block, a skirt closes the gap between
// the lowered surface and the full block.
func BuildLiquid(a chunk.Area, atlas Atlas) *Mesh {
	if a.Centre == nil || a.Centre.Empty() {
		return nil
	}
	m := &Mesh{}
	for y := 0; y < chunk.Size; y++ {
		for z := 0; z < chunk.Size; z++ {
			for x := 0; x < chunk.Size; x++ {
				b := a.Centre.Block(x, y, z)
				if !b.Liquid() {
					continue
				}
				buildLiquidBlock(m, a, atlas, b, x, y, z)
			}
		}
	}
	if m.Empty() {
		return nil
	}
	return m
}

// surface reports whether the liquid block at the local position passed forms
// the surface of its body of liquid.
func surface(a chunk.Area, x, y, z int) bool {
	n := a.Side(x, y, z, cube.Up)
	return !n.Liquid() && !n.Solid()
}

func buildLiquidBlock(m *Mesh, a chunk.Area, atlas Atlas, b block.Type, x, y, z int) {
	origin := mgl32.Vec3{float32(x), float32(y), float32(z)}
	height := float32(1)
	if surface(a, x, y, z) {
		height = SurfaceHeight
	}
	emit := func(d cube.Direction, origin mgl32.Vec3, h, depth float32) {
		corners, uvs := faceCorners(d, origin, 1, h, depth)
		t := tile(atlas, b, d)
		m.add(quad{corners: corners, normal: d.Normal(), uvs: atlasUVs(uvs, t), tile: t, color: b.Tint(d)})
	}

	for _, d := range cube.Directions() {
		n := a.Side(x, y, z, d)
		if n.Solid() {
			continue
		}
		switch d {
		case cube.Up:
			if !n.Liquid() {
				emit(d, origin, 1, height)
			}
		case cube.Down:
			if !n.Liquid() {
				emit(d, origin, 1, 1)
			}
		default:
			if !n.Liquid() {
				emit(d, origin, height, 1)
				continue
			}
			o := d.Offset()
			if height == 1 && surface(a, x+o[0], y+o[1], z+o[2]) {
				// Skirt between the neighbour's lowered surface and the top of
				// this block.
				emit(d, origin.Add(mgl32.Vec3{0, SurfaceHeight, 0}), 1-SurfaceHeight, 1)
			}
		}
	}
}
