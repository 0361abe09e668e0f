package world

import (
	"errors"
	"fmt"

	"github.com/df-mc/voxelworld/block/cube"
)

// ErrChunkNotResolved is returned when a chunk that was claimed for meshing is
// no longer present in the world, usually because it was evicted while the
// meshing task was queued.
var ErrChunkNotResolved = errors.New("chunk not resolved")

// MeshingError is the error of a meshing task that could not complete. It is
// a skippable condition: the chunk simply becomes eligible to be requested
// again.
type MeshingError struct {
	Pos cube.ChunkPos
	Err error
}

// Error ...
func (e *MeshingError) Error() string {
	return fmt.Sprintf("mesh chunk %v: %v", e.Pos, e.Err)
}

// Unwrap ...
func (e *MeshingError) Unwrap() error {
	return e.Err
}

// GenerationError is the error of a generation task that failed, either by
// the generator returning an error or by it panicking. The chunk is left out
// of the world and may be requested again.
type GenerationError struct {
	Pos cube.ChunkPos
	Err error
}

// Error ...
func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate chunk %v: %v", e.Pos, e.Err)
}

// Unwrap ...
func (e *GenerationError) Unwrap() error {
	return e.Err
}
