package world

import (
	"context"
	"slices"

	"github.com/df-mc/voxelworld/block/cube"
	"github.com/google/uuid"
)

// state is the lifecycle state of a chunk position.
type state uint8

const (
	// stateQueued positions wait for a generator worker.
	stateQueued state = iota + 1
	// stateGenerated chunks are present in the store but not mesh-eligible.
	stateGenerated
	// stateEligible chunks and all their neighbours are present and the chunk
	// waits to be claimed by TakeMeshEligible.
	stateEligible
	// stateMeshing chunks were claimed and have a meshing task.
	stateMeshing
	// stateMeshed chunks had their geometry delivered.
	stateMeshed
)

// String ...
func (s state) String() string {
	switch s {
	case stateQueued:
		return "queued"
	case stateGenerated:
		return "generated"
	case stateEligible:
		return "eligible"
	case stateMeshing:
		return "meshing"
	case stateMeshed:
		return "meshed"
	}
	return "unknown"
}

// entry tracks a chunk position known to the world. Positions without an
// entry are unknown or evicted.
type entry struct {
	state state
	// wanted is set for positions passed to Request. Positions generated only
	// as neighbour data are never meshed.
	wanted bool
	// dirty is set when the geometry of the chunk is missing or out of date.
	dirty bool
	// task identifies the meshing task that currently owns the chunk. Results
	// of any other task are stale.
	task   uuid.UUID
	cancel context.CancelFunc
}

// generated reports whether the chunk of the entry is present in the store.
func (e *entry) generated() bool {
	return e.state >= stateGenerated
}

// Request marks the chunk at pos as wanted. If pos is unknown, it is queued for
// generation along with every neighbour that is neither known nor outside of
// the build limits. Once the chunk and its neighbours are generated, the chunk
// becomes mesh-eligible. Request returns false if pos lies outside of the build
// limits. Requesting a position that is already wanted only makes it
// eligible again if its geometry is out of date, such as after a failed
// meshing task.
func (w *World) Request(pos cube.ChunkPos) bool {
	if !w.limits.Contains(pos) {
		return false
	}
	var queue []cube.ChunkPos

	w.mu.RLock()
	w.stateMu.Lock()
	e, ok := w.entries[pos]
	if !ok {
		e = &entry{state: stateQueued}
		w.entries[pos] = e
		queue = append(queue, pos)
	}
	if !e.wanted {
		e.wanted, e.dirty = true, true
	}
	// Picks up chunks whose last meshing task failed.
	w.recompute(pos)
	for _, n := range pos.Neighbours() {
		if _, ok := w.entries[n]; ok || !w.limits.Contains(n) {
			continue
		}
		w.entries[n] = &entry{state: stateQueued}
		queue = append(queue, n)
	}
	w.stateMu.Unlock()
	w.mu.RUnlock()

	for _, p := range queue {
		w.enqueueGeneration(p)
	}
	return true
}

// resolved reports whether the chunk at pos is present or vacuously resolved
// by lying outside of the build limits. w.mu must be held.
func (w *World) resolved(pos cube.ChunkPos) bool {
	if !w.limits.Contains(pos) {
		return true
	}
	_, ok := w.chunks[pos]
	return ok
}

// recompute updates the mesh-eligibility of the chunk at pos from a snapshot
// of itself and its neighbours. w.mu and w.stateMu must be held.
func (w *World) recompute(pos cube.ChunkPos) {
	e, ok := w.entries[pos]
	if !ok {
		return
	}
	switch e.state {
	case stateGenerated, stateMeshed, stateEligible:
	case stateMeshing:
		// Claimed by TakeMeshEligible but not yet dispatched.
		if e.cancel != nil {
			return
		}
	default:
		return
	}
	ready := e.wanted && e.dirty && w.resolved(pos)
	for _, n := range pos.Neighbours() {
		ready = ready && w.resolved(n)
	}
	switch {
	case ready:
		e.state = stateEligible
		w.eligible[pos] = struct{}{}
	case e.state == stateEligible || e.state == stateMeshing:
		e.state = stateGenerated
		delete(w.eligible, pos)
	}
}

// recomputeAround recomputes the eligibility of pos and its neighbours.
func (w *World) recomputeAround(pos cube.ChunkPos) {
	w.recompute(pos)
	for _, n := range pos.Neighbours() {
		w.recompute(n)
	}
}

// markDirty flags the geometry of the chunk at pos as out of date. w.mu and
// w.stateMu must be held.
func (w *World) markDirty(pos cube.ChunkPos) {
	e, ok := w.entries[pos]
	if !ok || !e.generated() {
		return
	}
	e.dirty = true
	w.recompute(pos)
}

// TakeMeshEligible claims every mesh-eligible chunk and returns their
// positions in Morton order. Each eligible chunk is returned exactly once; the
// positions must be passed to DispatchMeshing to be meshed. Until then a
// claimed chunk stays dirty, so an edit or a new Request makes it eligible
// again and a claim that is never dispatched does not strand it. It returns
// immediately with no positions if none are eligible.
func (w *World) TakeMeshEligible() []cube.ChunkPos {
	w.stateMu.Lock()
	defer w.stateMu.Unlock()
	if len(w.eligible) == 0 {
		return nil
	}
	positions := make([]cube.ChunkPos, 0, len(w.eligible))
	for pos := range w.eligible {
		positions = append(positions, pos)
		e := w.entries[pos]
		e.state, e.task = stateMeshing, uuid.New()
	}
	clear(w.eligible)
	slices.SortFunc(positions, func(a, b cube.ChunkPos) int {
		am, bm := a.Morton(), b.Morton()
		switch {
		case am < bm:
			return -1
		case am > bm:
			return 1
		}
		return 0
	})
	return positions
}

// Evict removes the chunk at pos from the world and cancels its meshing task,
// if any. Results of the task are discarded on delivery. The neighbours of pos
// lose their mesh-eligibility until pos is generated again.
func (w *World) Evict(pos cube.ChunkPos) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stateMu.Lock()
	defer w.stateMu.Unlock()
	w.evict(pos)
}

// evict removes pos. w.mu and w.stateMu must be held.
func (w *World) evict(pos cube.ChunkPos) {
	if _, ok := w.chunks[pos]; ok {
		delete(w.chunks, pos)
		w.invalidateChunkHeights(pos)
	}
	if e, ok := w.entries[pos]; ok {
		if e.cancel != nil {
			e.cancel()
		}
		delete(w.entries, pos)
		delete(w.eligible, pos)
	}
	for _, n := range pos.Neighbours() {
		w.recompute(n)
	}
}

// EvictOutside evicts every chunk whose flat distance to centre is larger
// than dist, and returns the amount of chunks evicted.
func (w *World) EvictOutside(centre cube.ChunkPos, dist int32) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stateMu.Lock()
	defer w.stateMu.Unlock()

	var far []cube.ChunkPos
	for pos := range w.entries {
		if pos.FlatDistance(centre) > dist {
			far = append(far, pos)
		}
	}
	for _, pos := range far {
		w.evict(pos)
	}
	return len(far)
}

// Regenerate evicts the chunk at pos and requests it again, discarding any
// changes made to it. It returns false if pos lies outside of the build
// limits.
func (w *World) Regenerate(pos cube.ChunkPos) bool {
	if !w.limits.Contains(pos) {
		return false
	}
	w.Evict(pos)
	return w.Request(pos)
}
