// Package world implements a concurrent store of chunks together with the
// pipeline that generates them and turns them into render and collision
// geometry.
package world

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"

	"github.com/alitto/pond/v2"
	"github.com/brentp/intintmap"
	"github.com/df-mc/voxelworld/block"
	"github.com/df-mc/voxelworld/block/cube"
	"github.com/df-mc/voxelworld/world/chunk"
)

// World holds the chunks of a voxel world and schedules their generation and
// meshing. All methods of World are safe for concurrent use and none of them
// wait for generation or meshing to finish.
//
// A chunk position moves through the states of entry: requested positions are
// queued for generation, generated chunks become mesh-eligible once they and
// all their neighbours are present, and eligible chunks are claimed, meshed
// and delivered through PollCompleted.
type World struct {
	conf   Config
	log    *slog.Logger
	limits cube.ChunkRange

	// mu guards chunks. Generation installs, SetBlock and eviction hold it
	// exclusively, readers and meshing snapshots hold it shared.
	mu     sync.RWMutex
	chunks map[cube.ChunkPos]*chunk.Chunk

	// stateMu guards entries and eligible. It is always acquired after mu
	// when both are held.
	stateMu  sync.Mutex
	entries  map[cube.ChunkPos]*entry
	eligible map[cube.ChunkPos]struct{}

	// heightMu guards heights, a cache of the highest non-air block per world
	// column keyed by columnKey. It is acquired after mu.
	heightMu sync.Mutex
	heights  *intintmap.Map

	doneMu    sync.Mutex
	completed []MeshResult

	generatorQueue chan cube.ChunkPos
	// lastQueueSaturationLog holds the UnixNano timestamp of the last
	// generator queue saturation warning.
	lastQueueSaturationLog atomic.Uint64

	meshPool pond.Pool

	ctx    context.Context
	cancel context.CancelFunc

	closing chan struct{}
	running sync.WaitGroup
	once    sync.Once
}

// Range returns the build limits of the world.
func (w *World) Range() cube.ChunkRange {
	return w.limits
}

// Metrics returns the metrics registry of the world.
func (w *World) Metrics() *Metrics {
	return w.conf.Metrics
}

// Block returns the block at the world position passed. Positions in chunks
// that are not present read as block.Air.
func (w *World) Block(pos cube.Pos) block.Type {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.block(pos)
}

func (w *World) block(pos cube.Pos) block.Type {
	cp := pos.Chunk()
	c, ok := w.chunks[cp]
	if !ok {
		return block.Air
	}
	l := pos.Local(cp)
	return c.Block(l[0], l[1], l[2])
}

// Solid reports whether the block at pos is solid.
func (w *World) Solid(pos cube.Pos) bool {
	return w.Block(pos).Solid()
}

// SetBlock sets the block at the world position passed. It returns false and
// changes nothing if the chunk holding pos is not present. The chunk is marked
// for meshing again, and so are the neighbouring chunks sharing a face with
// pos if pos lies on the boundary of its chunk.
func (w *World) SetBlock(pos cube.Pos, b block.Type) bool {
	if !b.Valid() {
		return false
	}
	cp := pos.Chunk()
	l := pos.Local(cp)

	w.mu.Lock()
	defer w.mu.Unlock()
	c, ok := w.chunks[cp]
	if !ok {
		return false
	}
	c.SetBlock(l[0], l[1], l[2], b)
	w.invalidateHeight(pos[0], pos[2])

	w.stateMu.Lock()
	defer w.stateMu.Unlock()
	w.markDirty(cp)
	for _, d := range cube.Directions() {
		o := d.Offset()
		n := l.Add(o)
		if !n.InChunk() {
			w.markDirty(cp.Side(d))
		}
	}
	return true
}

// Chunk returns a copy of the chunk at pos, if present.
func (w *World) Chunk(pos cube.ChunkPos) (*chunk.Chunk, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	c, ok := w.chunks[pos]
	if !ok {
		return nil, false
	}
	return c.Clone(), true
}

// Loaded returns the positions of all chunks present in the world.
func (w *World) Loaded() []cube.ChunkPos {
	w.mu.RLock()
	defer w.mu.RUnlock()
	positions := make([]cube.ChunkPos, 0, len(w.chunks))
	for pos := range w.chunks {
		positions = append(positions, pos)
	}
	return positions
}

// LoadedChunkCount returns the amount of chunks present in the world.
func (w *World) LoadedChunkCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.chunks)
}

// SetHandle attaches a presentation handle, such as the renderer entity that
// displays the chunk, to the chunk at pos. It returns false if the chunk is
// not present.
func (w *World) SetHandle(pos cube.ChunkPos, h any) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	c, ok := w.chunks[pos]
	if ok {
		c.SetHandle(h)
	}
	return ok
}

// Handle returns the presentation handle of the chunk at pos.
func (w *World) Handle(pos cube.ChunkPos) (any, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	c, ok := w.chunks[pos]
	if !ok {
		return nil, false
	}
	return c.Handle(), true
}

// noHeight is cached for columns without any non-air block.
const noHeight = math.MinInt64

// MaxHeight returns the world y of the highest non-air block in the column
// (x, z). The second return value is false if no chunk present in the column
// holds a non-air block.
func (w *World) MaxHeight(x, z int) (int, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	key, cacheable := columnKey(x, z)
	if !cacheable {
		return w.maxHeight(x, z)
	}
	w.heightMu.Lock()
	cached, ok := w.heights.Get(key)
	w.heightMu.Unlock()
	if ok {
		return int(cached), cached != noHeight
	}

	y, found := w.maxHeight(x, z)
	v := int64(noHeight)
	if found {
		v = int64(y)
	}
	w.heightMu.Lock()
	w.heights.Put(key, v)
	w.heightMu.Unlock()
	return y, found
}

// maxHeight scans the column (x, z) from the top of the build limits down.
// w.mu must be held.
func (w *World) maxHeight(x, z int) (int, bool) {
	for cy := w.limits.Max() - 1; cy >= w.limits.Min(); cy-- {
		cp := cube.Pos{x, int(cy) * chunk.Size, z}.Chunk()
		c, ok := w.chunks[cp]
		if !ok {
			continue
		}
		l := cube.Pos{x, 0, z}.Local(cp)
		if y := c.HighestBlock(l[0], l[2]); y >= 0 {
			return int(cy)*chunk.Size + y, true
		}
	}
	return 0, false
}

// invalidateHeight drops the cached height of a column. w.mu must be held
// exclusively.
func (w *World) invalidateHeight(x, z int) {
	key, ok := columnKey(x, z)
	if !ok {
		return
	}
	w.heightMu.Lock()
	w.heights.Del(key)
	w.heightMu.Unlock()
}

// invalidateChunkHeights drops the cached heights of every column of a chunk.
// w.mu must be held exclusively.
func (w *World) invalidateChunkHeights(pos cube.ChunkPos) {
	o := pos.Origin()
	w.heightMu.Lock()
	for x := 0; x < chunk.Size; x++ {
		for z := 0; z < chunk.Size; z++ {
			if key, ok := columnKey(o[0]+x, o[2]+z); ok {
				w.heights.Del(key)
			}
		}
	}
	w.heightMu.Unlock()
}

// columnKey packs the column (x, z) into a height cache key. Columns outside
// of the int32 range have no key and are never cached.
func columnKey(x, z int) (int64, bool) {
	if x != int(int32(x)) || z != int(int32(z)) {
		return 0, false
	}
	return int64(int32(x))<<32 | int64(uint32(int32(z))), true
}

// Close stops the generator workers and the meshing pool. Chunks waiting for
// generation are dropped and in-flight meshing tasks are cancelled.
func (w *World) Close() error {
	w.once.Do(func() {
		close(w.closing)
		w.cancel()
		w.running.Wait()
		w.meshPool.StopAndWait()
	})
	return nil
}
