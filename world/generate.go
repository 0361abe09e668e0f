package world

import (
	"errors"
	"fmt"
	"time"

	"github.com/df-mc/voxelworld/block/cube"
	"github.com/df-mc/voxelworld/world/chunk"
)

// generated is a chunk produced by a generator worker, waiting to be installed
// in the store.
type generated struct {
	pos cube.ChunkPos
	c   *chunk.Chunk
}

// enqueueGeneration schedules generation of the chunk at pos. It never blocks
// the caller: if the queue is full, the position is handed to a goroutine
// that waits for space while the saturation is reported.
func (w *World) enqueueGeneration(pos cube.ChunkPos) {
	select {
	case <-w.closing:
	case w.generatorQueue <- pos:
	default:
		go w.enqueueGenerationBlocking(pos)
		w.handleGeneratorBackpressure()
	}
}

// enqueueGenerationBlocking waits for space in the generator queue, giving up
// when the world is closing.
func (w *World) enqueueGenerationBlocking(pos cube.ChunkPos) {
	select {
	case <-w.closing:
	case w.generatorQueue <- pos:
	}
}

// generatorWorker generates chunks from the generator queue until the world is
// closed. A worker takes up to GenerationBatch positions at once and installs
// the chunks it generated in a single critical section.
func (w *World) generatorWorker() {
	defer w.running.Done()

	batch := make([]cube.ChunkPos, 0, w.conf.GenerationBatch)
	for {
		select {
		case pos := <-w.generatorQueue:
			batch = append(batch[:0], pos)
		fill:
			for len(batch) < w.conf.GenerationBatch {
				select {
				case pos := <-w.generatorQueue:
					batch = append(batch, pos)
				default:
					break fill
				}
			}
			results := make([]generated, 0, len(batch))
			for _, pos := range batch {
				if !w.queued(pos) {
					continue
				}
				if c, err := w.runGenerationTask(pos); err == nil {
					results = append(results, generated{pos: pos, c: c})
				}
			}
			if !w.installAll(results) {
				w.drainGenerationQueue()
				return
			}
		case <-w.closing:
			w.drainGenerationQueue()
			return
		}
	}
}

// queued reports whether pos is still waiting for generation. Positions that
// were evicted after being queued are skipped.
func (w *World) queued(pos cube.ChunkPos) bool {
	w.stateMu.Lock()
	defer w.stateMu.Unlock()
	e, ok := w.entries[pos]
	return ok && e.state == stateQueued
}

// runGenerationTask generates the chunk at pos. Panics of the generator are
// recovered and turned into a GenerationError. A failed position is forgotten
// so that it may be requested again.
func (w *World) runGenerationTask(pos cube.ChunkPos) (c *chunk.Chunk, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &GenerationError{Pos: pos, Err: fmt.Errorf("panic: %v", r)}
		}
		if err == nil && c == nil {
			err = &GenerationError{Pos: pos, Err: errors.New("generator returned no chunk")}
		}
		if err != nil {
			w.forgetQueued(pos)
			w.conf.Metrics.IncGenerationErrors()
			w.log.Error("generate chunk: "+err.Error(), "X", pos[0], "Y", pos[1], "Z", pos[2])
		}
	}()
	c, err = w.conf.Generator.GenerateChunk(pos)
	if err != nil {
		var genErr *GenerationError
		if !errors.As(err, &genErr) {
			err = &GenerationError{Pos: pos, Err: err}
		}
		return nil, err
	}
	if c != nil && c.Pos() != pos {
		return nil, &GenerationError{Pos: pos, Err: fmt.Errorf("generator returned chunk at %v", c.Pos())}
	}
	return c, nil
}

// forgetQueued removes the entry of pos if it is still waiting for generation.
func (w *World) forgetQueued(pos cube.ChunkPos) {
	w.stateMu.Lock()
	defer w.stateMu.Unlock()
	if e, ok := w.entries[pos]; ok && e.state == stateQueued {
		delete(w.entries, pos)
	}
}

// installAll installs the chunks passed, retrying every RetryInterval while the
// store is busy. It returns false if the world closed before the chunks could
// be installed.
func (w *World) installAll(results []generated) bool {
	if len(results) == 0 {
		return true
	}
	if w.tryInstall(results) {
		return true
	}
	t := time.NewTicker(w.conf.RetryInterval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			if w.tryInstall(results) {
				return true
			}
		case <-w.closing:
			return false
		}
	}
}

// tryInstall attempts to take the store lock without blocking and install the
// chunks passed. Chunks whose position was evicted or already generated in the
// meantime are dropped, so a position is never installed twice. The
// eligibility of every installed chunk and its neighbours is recomputed in the
// same critical section.
func (w *World) tryInstall(results []generated) bool {
	if !w.mu.TryLock() {
		w.conf.Metrics.IncDeferredInstalls()
		return false
	}
	defer w.mu.Unlock()
	w.stateMu.Lock()
	defer w.stateMu.Unlock()

	for _, r := range results {
		e, ok := w.entries[r.pos]
		if !ok || e.state != stateQueued {
			continue
		}
		w.chunks[r.pos] = r.c
		e.state = stateGenerated
		w.invalidateChunkHeights(r.pos)
		w.conf.Metrics.IncGenerated()
	}
	for _, r := range results {
		w.recomputeAround(r.pos)
	}
	return true
}

// drainGenerationQueue empties the generator queue when the world closes.
func (w *World) drainGenerationQueue() {
	for {
		select {
		case <-w.generatorQueue:
		default:
			return
		}
	}
}

// handleGeneratorBackpressure counts generator queue saturation and emits a
// warning at most once per minute.
func (w *World) handleGeneratorBackpressure() {
	w.conf.Metrics.IncQueueSaturation()
	now := uint64(time.Now().UnixNano())
	last := w.lastQueueSaturationLog.Load()
	if last != 0 && time.Duration(now-last) < time.Minute {
		return
	}
	if !w.lastQueueSaturationLog.CompareAndSwap(last, now) {
		return
	}
	w.log.Warn("world generator queue saturated: chunk generation backlog detected.",
		"queue_size", cap(w.generatorQueue),
		"workers", w.conf.GeneratorWorkers,
		"saturated", w.conf.Metrics.Snapshot().QueueSaturation,
	)
}
