package world

import (
	"github.com/df-mc/voxelworld/block/cube"
	"github.com/df-mc/voxelworld/block/cube/trace"
	"github.com/go-gl/mathgl/mgl64"
)

// Raycast follows the ray from origin in direction dir for at most maxDist
// blocks and returns the first solid block it enters, along with the face
// through which it was entered. The block holding origin itself is never
// returned. ok is false if no solid block was hit.
func (w *World) Raycast(origin, dir mgl64.Vec3, maxDist float64) (pos cube.Pos, face cube.Direction, ok bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	trace.TraverseBlocks(origin, dir, maxDist, func(p cube.Pos, f cube.Direction, entered bool) bool {
		if entered && w.block(p).Solid() {
			pos, face, ok = p, f, true
			return false
		}
		return true
	})
	return pos, face, ok
}
