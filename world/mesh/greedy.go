package mesh

import (
	"github.com/df-mc/voxelworld/block"
	"github.com/df-mc/voxelworld/block/cube"
	"github.com/df-mc/voxelworld/world/chunk"
	"github.com/go-gl/mathgl/mgl32"
)

// local returns the local position of a block in a slice sweep. s is the
// layer along the axis of d, i and j the offsets along the first and second
// perpendicular directions of d.
func local(d cube.Direction, s, i, j int) (x, y, z int) {
	var p cube.Pos
	u, v := d.Perpendicular()
	p[d.Axis()], p[u.Axis()], p[v.Axis()] = s, i, j
	return p[0], p[1], p[2]
}

// buildGreedy sweeps every layer of the chunk once per direction and merges
// visible faces of the same block kind into rectangles.
func buildGreedy(m *Mesh, a chunk.Area, atlas Atlas) {
	var mask [chunk.LayerSize]block.Type
	for _, d := range cube.Directions() {
		for s := 0; s < chunk.Size; s++ {
			empty := true
			for j := 0; j < chunk.Size; j++ {
				for i := 0; i < chunk.Size; i++ {
					x, y, z := local(d, s, i, j)
					b := a.Centre.Block(x, y, z)
					if b.Shape() != block.ShapeCube || !a.Side(x, y, z, d).Transparent() {
						mask[i+j*chunk.Size] = block.Air
						continue
					}
					mask[i+j*chunk.Size] = b
					empty = false
				}
			}
			if !empty {
				mergeLayer(m, &mask, d, s, atlas)
			}
		}
	}
}

// mergeLayer turns the visible faces in mask into as few rectangles as the
// greedy sweep finds. Consumed faces are cleared from the mask.
func mergeLayer(m *Mesh, mask *[chunk.LayerSize]block.Type, d cube.Direction, s int, atlas Atlas) {
	for j := 0; j < chunk.Size; j++ {
		for i := 0; i < chunk.Size; {
			b := mask[i+j*chunk.Size]
			if b == block.Air {
				i++
				continue
			}
			w := 1
			for i+w < chunk.Size && mask[i+w+j*chunk.Size] == b {
				w++
			}
			h := 1
		grow:
			for j+h < chunk.Size {
				for k := 0; k < w; k++ {
					if mask[i+k+(j+h)*chunk.Size] != b {
						break grow
					}
				}
				h++
			}
			for dj := 0; dj < h; dj++ {
				for k := 0; k < w; k++ {
					mask[i+k+(j+dj)*chunk.Size] = block.Air
				}
			}

			x, y, z := local(d, s, i, j)
			corners, uvs := faceCorners(d, mgl32.Vec3{float32(x), float32(y), float32(z)}, float32(w), float32(h), 1)
			m.add(quad{
				corners: corners,
				normal:  d.Normal(),
				uvs:     uvs,
				tile:    tile(atlas, b, d),
				color:   b.Tint(d),
			})
			i += w
		}
	}
}
