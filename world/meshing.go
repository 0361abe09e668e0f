package world

import (
	"context"
	"fmt"
	"time"

	"github.com/df-mc/voxelworld/block/cube"
	"github.com/df-mc/voxelworld/world/chunk"
	"github.com/df-mc/voxelworld/world/collider"
	"github.com/df-mc/voxelworld/world/mesh"
	"github.com/google/uuid"
)

// MeshResult is the geometry of a meshed chunk, or the error of a meshing task
// that failed. Positions are in the local space of the chunk.
type MeshResult struct {
	Pos cube.ChunkPos
	// Opaque holds the geometry of all non-liquid blocks. It is never nil for
	// successful results but may be empty.
	Opaque *mesh.Mesh
	// Liquid holds the translucent liquid geometry, or nil if the chunk has no
	// visible liquid.
	Liquid *mesh.Mesh
	// Collider is the collision shape of the chunk: nil if the chunk has no
	// solid blocks, a collider.Cuboid if every block is solid and a
	// *collider.TriMesh otherwise.
	Collider collider.Shape
	// Checksum is the checksum of the blocks the geometry was built from.
	Checksum uint64
	// Err is a *MeshingError if the task failed. All geometry is nil then.
	Err error
}

// DispatchMeshing starts meshing tasks on the meshing pool for positions
// claimed with TakeMeshEligible. Positions that were evicted since are skipped.
// DispatchMeshing does not wait for the tasks.
func (w *World) DispatchMeshing(positions []cube.ChunkPos) {
	for _, pos := range positions {
		w.stateMu.Lock()
		e, ok := w.entries[pos]
		if !ok || e.state != stateMeshing || e.cancel != nil {
			w.stateMu.Unlock()
			continue
		}
		ctx, cancel := context.WithCancel(w.ctx)
		e.cancel, e.dirty = cancel, false
		id := e.task
		w.stateMu.Unlock()

		w.meshPool.Submit(func() {
			defer cancel()
			w.runMeshTask(ctx, pos, id)
		})
	}
}

// runMeshTask builds the geometry of the chunk at pos from a snapshot of the
// chunk and its neighbours. The context is checked between stages so that an
// evicted chunk stops consuming work early.
func (w *World) runMeshTask(ctx context.Context, pos cube.ChunkPos, id uuid.UUID) {
	defer func() {
		if r := recover(); r != nil {
			w.deliver(ctx, MeshResult{Pos: pos, Err: &MeshingError{Pos: pos, Err: fmt.Errorf("panic: %v", r)}}, id)
		}
	}()
	if ctx.Err() != nil || !w.rlock(ctx) {
		w.discard(pos, id)
		return
	}
	area, ok := w.snapshot(pos)
	w.mu.RUnlock()
	if !ok {
		w.deliver(ctx, MeshResult{Pos: pos, Err: &MeshingError{Pos: pos, Err: ErrChunkNotResolved}}, id)
		return
	}
	res := MeshResult{Pos: pos, Checksum: area.Centre.Checksum()}
	res.Opaque = mesh.Build(area, w.conf.Atlas, w.conf.Mesh)
	if ctx.Err() != nil {
		w.discard(pos, id)
		return
	}
	res.Liquid = mesh.BuildLiquid(area, w.conf.Atlas)
	if ctx.Err() != nil {
		w.discard(pos, id)
		return
	}
	res.Collider = collider.Build(area.Centre)
	w.deliver(ctx, res, id)
}

// rlock takes w.mu for reading without waiting on writers. While the store is
// held exclusively, the attempt is repeated every RetryInterval until it
// succeeds or ctx is cancelled, in which case rlock returns false.
func (w *World) rlock(ctx context.Context) bool {
	if w.mu.TryRLock() {
		return true
	}
	t := time.NewTicker(w.conf.RetryInterval)
	defer t.Stop()
	for {
		w.conf.Metrics.IncDeferredReads()
		select {
		case <-t.C:
			if w.mu.TryRLock() {
				return true
			}
		case <-ctx.Done():
			return false
		}
	}
}

// snapshot copies the chunk at pos and its neighbours. Neighbours outside of
// the build limits are left nil and read as air. w.mu must be held.
func (w *World) snapshot(pos cube.ChunkPos) (chunk.Area, bool) {
	c, ok := w.chunks[pos]
	if !ok {
		return chunk.Area{}, false
	}
	a := chunk.Area{Centre: c.Clone()}
	for d, n := range pos.Neighbours() {
		if nc, ok := w.chunks[n]; ok {
			a.Neighbours[d] = nc.Clone()
		}
	}
	return a, true
}

// deliver publishes the result of the meshing task id. Successful results are
// dropped if the chunk was evicted or claimed by another task since the task
// started. Errors are published unless the task was cancelled while waiting
// for the store.
func (w *World) deliver(ctx context.Context, res MeshResult, id uuid.UUID) {
	if !w.rlock(ctx) {
		w.discard(res.Pos, id)
		return
	}
	defer w.mu.RUnlock()
	w.stateMu.Lock()
	defer w.stateMu.Unlock()

	e, ok := w.entries[res.Pos]
	_, present := w.chunks[res.Pos]
	current := ok && present && e.task == id && e.state == stateMeshing

	if res.Err != nil {
		w.conf.Metrics.IncMeshErrors()
		w.log.Debug("mesh chunk: "+res.Err.Error(), "X", res.Pos[0], "Y", res.Pos[1], "Z", res.Pos[2])
		if current {
			// Retried on the next recompute of the chunk, not right away.
			e.state, e.task, e.cancel = stateGenerated, uuid.Nil, nil
			e.dirty = true
		}
		w.publish(res)
		return
	}
	if !current {
		w.conf.Metrics.IncDiscarded()
		w.log.Debug("mesh chunk: discarded stale result", "X", res.Pos[0], "Y", res.Pos[1], "Z", res.Pos[2])
		return
	}
	e.state, e.task, e.cancel = stateMeshed, uuid.Nil, nil
	w.conf.Metrics.IncBuilds(res.Pos)
	w.publish(res)
	// The chunk may have been edited while it was being meshed.
	w.recompute(res.Pos)
}

// discard drops the work of a cancelled meshing task.
func (w *World) discard(pos cube.ChunkPos, id uuid.UUID) {
	w.stateMu.Lock()
	defer w.stateMu.Unlock()
	if e, ok := w.entries[pos]; ok && e.task == id && e.state == stateMeshing {
		// Cancelled by Close rather than by eviction.
		e.state, e.task, e.cancel = stateGenerated, uuid.Nil, nil
		e.dirty = true
	}
	w.conf.Metrics.IncDiscarded()
}

func (w *World) publish(res MeshResult) {
	w.doneMu.Lock()
	w.completed = append(w.completed, res)
	w.doneMu.Unlock()
}

// PollCompleted returns the results of all meshing tasks that finished since
// the last call, in completion order. It never blocks on meshing work and
// returns nil if nothing finished.
func (w *World) PollCompleted() []MeshResult {
	w.doneMu.Lock()
	defer w.doneMu.Unlock()
	res := w.completed
	w.completed = nil
	return res
}

// Tick claims all mesh-eligible chunks, dispatches meshing tasks for them and
// returns the results completed so far. It is meant to be called once per
// frame by a foreground scheduler and never waits for background work.
func (w *World) Tick() []MeshResult {
	w.DispatchMeshing(w.TakeMeshEligible())
	return w.PollCompleted()
}
