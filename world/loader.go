package world

import (
	"slices"
	"sync"

	"github.com/df-mc/voxelworld/block/cube"
	"github.com/go-gl/mathgl/mgl64"
)

// Loader requests the chunks around a moving point, nearest first, and evicts
// chunks that end up too far away. Distances are flat distances, so every
// chunk of a column within the build limits is loaded and unloaded together.
type Loader struct {
	w            *World
	viewDistance int32
	unload       int32

	mu     sync.Mutex
	moved  bool
	centre cube.ChunkPos
	// queue holds the columns, as chunk positions with y 0, that still have to
	// be requested, nearest last.
	queue []cube.ChunkPos
}

// NewLoader creates a Loader for the world passed. If viewDistance is 0, the
// view distance of the world's Config is used.
func NewLoader(w *World, viewDistance int) *Loader {
	if viewDistance <= 0 {
		viewDistance = w.conf.ViewDistance
	}
	return &Loader{
		w:            w,
		viewDistance: int32(viewDistance),
		unload:       int32(max(viewDistance+1, w.conf.UnloadDistance)),
	}
}

// Centre returns the column the Loader is centred on.
func (l *Loader) Centre() cube.ChunkPos {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.centre
}

// Move moves the Loader to the position passed. Chunks beyond the unload
// distance of the new centre are evicted from the world and the columns within
// the view distance are queued to be requested by Load.
func (l *Loader) Move(pos mgl64.Vec3) {
	c := cube.PosFromVec3(pos).Chunk()
	c[1] = 0

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.moved && c == l.centre {
		return
	}
	l.moved, l.centre = true, c
	l.w.EvictOutside(c, l.unload)
	l.populateQueue()
}

// populateQueue fills the queue with every column within the view distance of
// the centre, ordered so that the nearest column is requested first.
func (l *Loader) populateQueue() {
	l.queue = l.queue[:0]
	r := l.viewDistance
	for x := -r; x <= r; x++ {
		for z := -r; z <= r; z++ {
			p := cube.ChunkPos{l.centre[0] + x, 0, l.centre[2] + z}
			if p.FlatDistance(l.centre) <= r {
				l.queue = append(l.queue, p)
			}
		}
	}
	slices.SortFunc(l.queue, func(a, b cube.ChunkPos) int {
		da, db := a.FlatDistance(l.centre), b.FlatDistance(l.centre)
		if da != db {
			return int(db - da)
		}
		am, bm := a.Morton(), b.Morton()
		switch {
		case am > bm:
			return -1
		case am < bm:
			return 1
		}
		return 0
	})
}

// Load requests the chunks of up to n queued columns and returns the amount of
// columns requested.
func (l *Loader) Load(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	limits := l.w.Range()
	count := 0
	for ; count < n && len(l.queue) > 0; count++ {
		col := l.queue[len(l.queue)-1]
		l.queue = l.queue[:len(l.queue)-1]
		for y := limits.Min(); y < limits.Max(); y++ {
			l.w.Request(cube.ChunkPos{col[0], y, col[2]})
		}
	}
	return count
}

// Pending returns the amount of columns still to be requested.
func (l *Loader) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}
