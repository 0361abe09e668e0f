package world

import (
	"sync"

	"github.com/df-mc/voxelworld/block/cube"
)

// Metrics tracks counters of the chunk pipeline for observability. A nil
// *Metrics discards every update.
type Metrics struct {
	mu sync.Mutex

	generated        uint64
	generationErrors uint64
	deferredInstalls uint64
	deferredReads    uint64
	queueSaturation  uint64
	meshesBuilt      uint64
	meshErrors       uint64
	discarded        uint64
	builds           map[cube.ChunkPos]uint64
}

// MetricsSnapshot is a copy of the counters of Metrics at one point in time.
type MetricsSnapshot struct {
	// Generated is the amount of chunks generated and installed.
	Generated uint64
	// GenerationErrors is the amount of generation tasks that failed.
	GenerationErrors uint64
	// DeferredInstalls counts how often installing generated chunks was put
	// off because the store was busy.
	DeferredInstalls uint64
	// DeferredReads counts how often a meshing task retried reading the store
	// because it was held exclusively.
	DeferredReads uint64
	// QueueSaturation counts how often the generator queue was full.
	QueueSaturation uint64
	// MeshesBuilt is the amount of mesh results delivered.
	MeshesBuilt uint64
	// MeshErrors is the amount of meshing tasks that failed.
	MeshErrors uint64
	// Discarded is the amount of mesh results dropped because the chunk was
	// evicted or claimed again while the task ran.
	Discarded uint64
}

// NewMetrics creates an empty metrics registry.
func NewMetrics() *Metrics {
	return &Metrics{builds: make(map[cube.ChunkPos]uint64)}
}

func (m *Metrics) inc(f func(m *Metrics)) {
	if m == nil {
		return
	}
	m.mu.Lock()
	f(m)
	m.mu.Unlock()
}

// IncGenerated increments the generated chunk counter.
func (m *Metrics) IncGenerated() { m.inc(func(m *Metrics) { m.generated++ }) }

// IncGenerationErrors increments the failed generation counter.
func (m *Metrics) IncGenerationErrors() { m.inc(func(m *Metrics) { m.generationErrors++ }) }

// IncDeferredInstalls increments the deferred install counter.
func (m *Metrics) IncDeferredInstalls() { m.inc(func(m *Metrics) { m.deferredInstalls++ }) }

// IncDeferredReads increments the deferred store read counter.
func (m *Metrics) IncDeferredReads() { m.inc(func(m *Metrics) { m.deferredReads++ }) }

// IncQueueSaturation increments the generator queue saturation counter.
func (m *Metrics) IncQueueSaturation() { m.inc(func(m *Metrics) { m.queueSaturation++ }) }

// IncMeshErrors increments the failed meshing counter.
func (m *Metrics) IncMeshErrors() { m.inc(func(m *Metrics) { m.meshErrors++ }) }

// IncDiscarded increments the discarded mesh result counter.
func (m *Metrics) IncDiscarded() { m.inc(func(m *Metrics) { m.discarded++ }) }

// IncBuilds increments the mesh build counter of a chunk.
func (m *Metrics) IncBuilds(pos cube.ChunkPos) {
	m.inc(func(m *Metrics) {
		m.meshesBuilt++
		m.builds[pos]++
	})
}

// Builds returns how often a mesh of the chunk at pos was delivered.
func (m *Metrics) Builds(pos cube.ChunkPos) uint64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.builds[pos]
}

// Snapshot returns a copy of the counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return MetricsSnapshot{
		Generated:        m.generated,
		GenerationErrors: m.generationErrors,
		DeferredInstalls: m.deferredInstalls,
		DeferredReads:    m.deferredReads,
		QueueSaturation:  m.queueSaturation,
		MeshesBuilt:      m.meshesBuilt,
		MeshErrors:       m.meshErrors,
		Discarded:        m.discarded,
	}
}
