// Command voxelinspect generates and meshes the chunks around a point of a
// world configured in a TOML file and reports statistics of the geometry.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/df-mc/voxelworld/world"
	"github.com/df-mc/voxelworld/world/collider"
	"github.com/go-gl/mathgl/mgl64"
)

type stats struct {
	chunks, errors           int
	opaqueQuads, liquidQuads int
	cuboids, trimeshes       int
	triangles, emptyShapes   int
}

func (s *stats) add(res world.MeshResult) {
	if res.Err != nil {
		s.errors++
		return
	}
	s.chunks++
	s.opaqueQuads += res.Opaque.Quads()
	s.liquidQuads += res.Liquid.Quads()
	switch c := res.Collider.(type) {
	case nil:
		s.emptyShapes++
	case collider.Cuboid:
		s.cuboids++
	case *collider.TriMesh:
		s.trimeshes++
		s.triangles += c.Triangles()
	}
}

func main() {
	path := flag.String("config", "world.toml", "path of the world configuration file")
	x := flag.Float64("x", 0, "x coordinate to load chunks around")
	z := flag.Float64("z", 0, "z coordinate to load chunks around")
	timeout := flag.Duration("timeout", time.Minute, "maximum time to wait for meshing")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	uc, err := world.LoadUserConfig(*path)
	if err != nil {
		log.Error("load config", "error", err)
		os.Exit(1)
	}
	conf, err := uc.Config(log)
	if err != nil {
		log.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, *timeout)
	defer cancelTimeout()

	w := conf.New()
	defer w.Close()

	loader := world.NewLoader(w, uc.Loading.ViewDistance)
	loader.Move(mgl64.Vec3{*x, 0, *z})
	columns := loader.Pending()
	want := columns * w.Range().Height()

	start := time.Now()
	var s stats
	t := time.NewTicker(time.Second / 60)
	defer t.Stop()
	for s.chunks+s.errors < want {
		select {
		case <-ctx.Done():
			log.Warn("stopped before all chunks were meshed", "meshed", s.chunks, "want", want, "reason", context.Cause(ctx))
			report(log, s, w, time.Since(start))
			return
		case <-t.C:
			loader.Load(4)
			for _, res := range w.Tick() {
				s.add(res)
			}
		}
	}
	report(log, s, w, time.Since(start))
}

func report(log *slog.Logger, s stats, w *world.World, took time.Duration) {
	m := w.Metrics().Snapshot()
	log.Info("meshing finished",
		"took", took.Round(time.Millisecond),
		"chunks", s.chunks,
		"errors", s.errors,
		"opaque_quads", s.opaqueQuads,
		"liquid_quads", s.liquidQuads,
		"cuboid_colliders", s.cuboids,
		"trimesh_colliders", s.trimeshes,
		"triangles", s.triangles,
		"empty_colliders", s.emptyShapes,
	)
	log.Info("pipeline",
		"generated", m.Generated,
		"generation_errors", m.GenerationErrors,
		"deferred_installs", m.DeferredInstalls,
		"deferred_reads", m.DeferredReads,
		"queue_saturation", m.QueueSaturation,
		"discarded", m.Discarded,
	)
}
