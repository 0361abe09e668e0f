package world

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/brentp/intintmap"
	"github.com/df-mc/voxelworld/block/cube"
	"github.com/df-mc/voxelworld/world/chunk"
	"github.com/df-mc/voxelworld/world/generator"
	"github.com/df-mc/voxelworld/world/mesh"
)

// Config holds options for creating a World.
type Config struct {
	// Log is the Logger to use for logging information. If nil, Log is set to
	// slog.Default().
	Log *slog.Logger
	// Seed is the world seed. It is used to create the default Generator and
	// has no effect if Generator is set.
	Seed uint64
	// Generator generates the contents of chunks. If nil, a generator.Terrain
	// seeded with Seed, scattering ores and dead bushes, is used.
	Generator generator.Generator
	// BuildLimits is the half-open range of chunk y coordinates that may hold
	// chunks. Chunks outside of it are never generated and read as air. If the
	// range is empty, BuildLimits is set to [0, 5).
	BuildLimits cube.ChunkRange
	// ViewDistance is the flat distance, in chunks, within which a Loader
	// requests chunks. If 0, it is set to 8.
	ViewDistance int
	// UnloadDistance is the flat distance, in chunks, beyond which a Loader
	// evicts chunks. It is raised to at least ViewDistance+1.
	UnloadDistance int
	// GeneratorWorkers is the amount of goroutines generating chunks. If 0,
	// it is set to half of the CPU count, with a minimum of one.
	GeneratorWorkers int
	// GeneratorQueueSize is the capacity of the queue of chunks waiting to be
	// generated. If 0, it is set to 256 per generator worker.
	GeneratorQueueSize int
	// GenerationBatch is the maximum amount of chunks a generator worker
	// generates before installing them in the store in one critical section.
	// If 0, it is set to 8.
	GenerationBatch int
	// MeshWorkers is the maximum amount of chunks meshed at the same time. If
	// 0, it is set to the CPU count.
	MeshWorkers int
	// Atlas maps block textures to atlas slots for the render meshes. If nil,
	// mesh.NewGridAtlas() is used.
	Atlas mesh.Atlas
	// Mesh holds options for building opaque render meshes.
	Mesh mesh.Options
	// RetryInterval is the time a generator worker waits before retrying to
	// install chunks after the store was busy. If 0, it is set to 5ms.
	RetryInterval time.Duration
	// Metrics receives counters of the chunk pipeline. If nil, a new Metrics
	// is created.
	Metrics *Metrics
}

func (conf Config) withDefaults() Config {
	if conf.Log == nil {
		conf.Log = slog.Default()
	}
	if conf.Generator == nil {
		conf.Generator = generator.NewTerrain(conf.Seed, generator.DefaultOres(), generator.DeadBushes{Amount: 1})
	}
	if conf.BuildLimits.Max() <= conf.BuildLimits.Min() {
		conf.BuildLimits = cube.ChunkRange{0, 5}
	}
	if conf.ViewDistance <= 0 {
		conf.ViewDistance = 8
	}
	if conf.UnloadDistance <= conf.ViewDistance {
		conf.UnloadDistance = conf.ViewDistance + 1
	}
	if conf.GeneratorWorkers <= 0 {
		conf.GeneratorWorkers = max(1, runtime.NumCPU()/2)
	}
	if conf.GeneratorQueueSize <= 0 {
		conf.GeneratorQueueSize = 256 * conf.GeneratorWorkers
	}
	if conf.GenerationBatch <= 0 {
		conf.GenerationBatch = 8
	}
	if conf.MeshWorkers <= 0 {
		conf.MeshWorkers = runtime.NumCPU()
	}
	if conf.Atlas == nil {
		conf.Atlas = mesh.NewGridAtlas()
	}
	if conf.RetryInterval <= 0 {
		conf.RetryInterval = 5 * time.Millisecond
	}
	if conf.Metrics == nil {
		conf.Metrics = NewMetrics()
	}
	return conf
}

// New creates a World using fields of conf and starts its generator workers.
// The World must be closed with Close once it is no longer used.
func (conf Config) New() *World {
	conf = conf.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	w := &World{
		conf:           conf,
		log:            conf.Log,
		limits:         conf.BuildLimits,
		chunks:         make(map[cube.ChunkPos]*chunk.Chunk),
		entries:        make(map[cube.ChunkPos]*entry),
		eligible:       make(map[cube.ChunkPos]struct{}),
		heights:        intintmap.New(1024, 0.6),
		generatorQueue: make(chan cube.ChunkPos, conf.GeneratorQueueSize),
		meshPool:       pond.NewPool(conf.MeshWorkers),
		ctx:            ctx,
		cancel:         cancel,
		closing:        make(chan struct{}),
	}
	w.running.Add(conf.GeneratorWorkers)
	for i := 0; i < conf.GeneratorWorkers; i++ {
		go w.generatorWorker()
	}
	return w
}
