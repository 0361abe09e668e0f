// Package trace implements voxel traversal of rays through the block lattice.
package trace

import (
	"math"

	"github.com/df-mc/voxelworld/block/cube"
	"github.com/go-gl/mathgl/mgl64"
)

// Func is called for every block a ray passes through, in the order the ray
// reaches them. face is the face of pos through which the ray entered the
// block; entered is false for the block holding the origin of the ray, which
// has no entry face. Returning false stops the traversal.
type Func func(pos cube.Pos, face cube.Direction, entered bool) bool

// TraverseBlocks walks every block intersected by the ray starting at origin
// and pointing in dir, up to a distance of maxDist. It reports whether f
// stopped the traversal before the ray ran out. A zero direction visits only
// the origin block.
func TraverseBlocks(origin, dir mgl64.Vec3, maxDist float64, f Func) bool {
	pos := cube.PosFromVec3(origin)
	if !f(pos, cube.Up, false) {
		return true
	}
	if dir.Len() == 0 {
		return false
	}
	dir = dir.Normalize()

	var step [3]int
	var tMax, tDelta [3]float64
	for i := 0; i < 3; i++ {
		o := origin[i]
		switch {
		case dir[i] > 0:
			step[i] = 1
			tDelta[i] = 1 / dir[i]
			tMax[i] = (math.Floor(o) + 1 - o) / dir[i]
		case dir[i] < 0:
			step[i] = -1
			tDelta[i] = -1 / dir[i]
			tMax[i] = (o - math.Floor(o)) / -dir[i]
		default:
			tDelta[i], tMax[i] = math.Inf(1), math.Inf(1)
		}
	}

	for {
		axis := 0
		if tMax[1] < tMax[axis] {
			axis = 1
		}
		if tMax[2] < tMax[axis] {
			axis = 2
		}
		if tMax[axis] > maxDist {
			return false
		}
		pos[axis] += step[axis]
		tMax[axis] += tDelta[axis]
		if !f(pos, entryFace(cube.Axis(axis), step[axis]), true) {
			return true
		}
	}
}

// entryFace returns the face of a block entered by moving one step along the
// axis passed.
func entryFace(a cube.Axis, step int) cube.Direction {
	switch a {
	case cube.X:
		if step > 0 {
			return cube.Left
		}
		return cube.Right
	case cube.Y:
		if step > 0 {
			return cube.Down
		}
		return cube.Up
	default:
		if step > 0 {
			return cube.Back
		}
		return cube.Forward
	}
}
