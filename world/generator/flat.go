package generator

import (
	"github.com/df-mc/voxelworld/block"
	"github.com/df-mc/voxelworld/block/cube"
	"github.com/df-mc/voxelworld/world/chunk"
)

// Flat is a generator that produces the same horizontal layers in every
// column. Everything above the layers is air.
type Flat struct {
	// Layers holds the layers from the top down. The last layer lies at y 0.
	Layers []block.Type
}

// NewFlat creates a Flat generator with the layers passed, ordered from the
// top down.
func NewFlat(layers ...block.Type) Flat {
	return Flat{Layers: layers}
}

// GenerateChunk generates the chunk at pos.
func (f Flat) GenerateChunk(pos cube.ChunkPos) (*chunk.Chunk, error) {
	c := chunk.New(pos)
	oy := pos.Origin()[1]
	for y := 0; y < chunk.Size; y++ {
		i := len(f.Layers) - 1 - (oy + y)
		if i < 0 || i >= len(f.Layers) {
			continue
		}
		b := f.Layers[i]
		for z := 0; z < chunk.Size; z++ {
			for x := 0; x < chunk.Size; x++ {
				c.SetBlock(x, y, z, b)
			}
		}
	}
	return c, nil
}
