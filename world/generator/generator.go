// Package generator implements procedural generation of chunks.
package generator

import (
	"github.com/df-mc/voxelworld/block/cube"
	"github.com/df-mc/voxelworld/world/chunk"
)

// Generator produces the initial contents of chunks. Implementations must be
// deterministic and safe for concurrent use: the world calls GenerateChunk
// from several workers at once and may generate the same position again after
// it was evicted.
type Generator interface {
	GenerateChunk(pos cube.ChunkPos) (*chunk.Chunk, error)
}

// Func is a function that implements Generator.
type Func func(pos cube.ChunkPos) (*chunk.Chunk, error)

// GenerateChunk calls f(pos).
func (f Func) GenerateChunk(pos cube.ChunkPos) (*chunk.Chunk, error) {
	return f(pos)
}
