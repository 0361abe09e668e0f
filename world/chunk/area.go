package chunk

import (
	"github.com/df-mc/voxelworld/block"
	"github.com/df-mc/voxelworld/block/cube"
)

// Area is a chunk together with its six face-adjacent neighbours. Neighbours
// are indexed by cube.Direction; a nil neighbour reads as air.
type Area struct {
	Centre     *Chunk
	Neighbours [6]*Chunk
}

// Block returns the block at the local position (x, y, z) relative to the
// centre chunk. Positions one step outside of the centre along a single axis
// are read from the matching neighbour with the index wrapped to its opposite
// edge. Anything further away reads as air.
func (a Area) Block(x, y, z int) block.Type {
	if InBounds(x, y, z) {
		if a.Centre == nil {
			return block.Air
		}
		return a.Centre.blocks[Index(x, y, z)]
	}
	var d cube.Direction
	switch {
	case x < 0:
		d, x = cube.Left, x+Size
	case x >= Size:
		d, x = cube.Right, x-Size
	case y < 0:
		d, y = cube.Down, y+Size
	case y >= Size:
		d, y = cube.Up, y-Size
	case z < 0:
		d, z = cube.Back, z+Size
	default:
		d, z = cube.Forward, z-Size
	}
	n := a.Neighbours[d]
	if n == nil {
		return block.Air
	}
	return n.Block(x, y, z)
}

// Side returns the block next to the local position (x, y, z) in direction d.
func (a Area) Side(x, y, z int, d cube.Direction) block.Type {
	o := d.Offset()
	return a.Block(x+o[0], y+o[1], z+o[2])
}
