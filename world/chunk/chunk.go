// Package chunk implements dense fixed-size storage of blocks.
package chunk

import (
	"github.com/cespare/xxhash/v2"
	"github.com/df-mc/voxelworld/block"
	"github.com/df-mc/voxelworld/block/cube"
)

const (
	// Size is the edge length of a chunk in blocks.
	Size = cube.ChunkSize
	// LayerSize is the amount of blocks in one horizontal layer of a chunk.
	LayerSize = Size * Size
	// Volume is the amount of blocks in a chunk.
	Volume = LayerSize * Size
)

// Index returns the offset of the local position (x, y, z) in the block array
// of a chunk. The array is y-major: x + z*Size + y*LayerSize.
func Index(x, y, z int) int {
	return x + z*Size + y*LayerSize
}

// InBounds reports whether (x, y, z) is a valid local position.
func InBounds(x, y, z int) bool {
	return uint(x) < Size && uint(y) < Size && uint(z) < Size
}

// Chunk is a cube of Size^3 blocks at a fixed chunk position. Chunk is not
// safe for concurrent use; the world guards access to the chunks it stores.
type Chunk struct {
	pos    cube.ChunkPos
	blocks [Volume]block.Type

	// handle is an opaque reference owned by a presentation layer, such as the
	// renderer entity displaying the chunk.
	handle any
}

// New returns a chunk at pos filled with air.
func New(pos cube.ChunkPos) *Chunk {
	return &Chunk{pos: pos}
}

// Pos returns the position of the chunk.
func (c *Chunk) Pos() cube.ChunkPos {
	return c.pos
}

// Block returns the block at the local position passed. Positions outside of
// the chunk return block.Air.
func (c *Chunk) Block(x, y, z int) block.Type {
	if !InBounds(x, y, z) {
		return block.Air
	}
	return c.blocks[Index(x, y, z)]
}

// At returns the block at the array index i, or block.Air if i is out of range.
func (c *Chunk) At(i int) block.Type {
	if uint(i) >= Volume {
		return block.Air
	}
	return c.blocks[i]
}

// SetBlock sets the block at the local position passed. It returns false and
// leaves the chunk unchanged if the position lies outside the chunk.
func (c *Chunk) SetBlock(x, y, z int, b block.Type) bool {
	if !InBounds(x, y, z) {
		return false
	}
	c.blocks[Index(x, y, z)] = b
	return true
}

// Fill sets every block in the chunk to b.
func (c *Chunk) Fill(b block.Type) {
	for i := range c.blocks {
		c.blocks[i] = b
	}
}

// Uniform returns the block kind filling the whole chunk, if any.
func (c *Chunk) Uniform() (block.Type, bool) {
	first := c.blocks[0]
	for _, b := range c.blocks[1:] {
		if b != first {
			return block.Air, false
		}
	}
	return first, true
}

// Empty reports whether every block in the chunk is air.
func (c *Chunk) Empty() bool {
	b, ok := c.Uniform()
	return ok && b == block.Air
}

// HighestBlock returns the local y of the highest non-air block in the column
// (x, z), or -1 if the column is empty.
func (c *Chunk) HighestBlock(x, z int) int {
	if !InBounds(x, 0, z) {
		return -1
	}
	for y := Size - 1; y >= 0; y-- {
		if c.blocks[Index(x, y, z)] != block.Air {
			return y
		}
	}
	return -1
}

// Clone returns a deep copy of the chunk. The presentation handle is not
// copied.
func (c *Chunk) Clone() *Chunk {
	return &Chunk{pos: c.pos, blocks: c.blocks}
}

// Equal reports whether c and o hold the same blocks at the same position.
func (c *Chunk) Equal(o *Chunk) bool {
	return c.pos == o.pos && c.blocks == o.blocks
}

// Checksum returns a hash of the blocks in the chunk.
func (c *Chunk) Checksum() uint64 {
	var buf [Volume]byte
	for i, b := range c.blocks {
		buf[i] = byte(b)
	}
	return xxhash.Sum64(buf[:])
}

// Handle returns the presentation handle attached to the chunk.
func (c *Chunk) Handle() any {
	return c.handle
}

// SetHandle attaches a presentation handle to the chunk.
func (c *Chunk) SetHandle(h any) {
	c.handle = h
}
