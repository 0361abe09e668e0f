package world

import (
	"errors"
	"io"
	"log/slog"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/df-mc/voxelworld/block"
	"github.com/df-mc/voxelworld/block/cube"
	"github.com/df-mc/voxelworld/world/chunk"
	"github.com/df-mc/voxelworld/world/generator"
	"github.com/df-mc/voxelworld/world/mesh"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

var flat = generator.NewFlat(block.Grass, block.Dirt, block.Dirt, block.Bedrock)

func newTestWorld(t *testing.T, conf Config) *World {
	t.Helper()
	if conf.Log == nil {
		conf.Log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if conf.BuildLimits == (cube.ChunkRange{}) {
		conf.BuildLimits = cube.ChunkRange{0, 1}
	}
	if conf.Generator == nil {
		conf.Generator = flat
	}
	w := conf.New()
	t.Cleanup(func() {
		if err := w.Close(); err != nil {
			t.Fatalf("failed closing world: %v", err)
		}
	})
	return w
}

// waitFor polls cond until it returns true or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %v", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// meshAll ticks the world until results for every position passed were
// delivered and returns every result received.
func meshAll(t *testing.T, w *World, positions ...cube.ChunkPos) []MeshResult {
	t.Helper()
	var results []MeshResult
	waitFor(t, "meshing", func() bool {
		results = append(results, w.Tick()...)
		for _, pos := range positions {
			if !slices.ContainsFunc(results, func(r MeshResult) bool { return r.Pos == pos }) {
				return false
			}
		}
		return true
	})
	return results
}

func TestRequestOutsideBuildLimits(t *testing.T) {
	w := newTestWorld(t, Config{})
	if w.Request(cube.ChunkPos{0, 1, 0}) || w.Request(cube.ChunkPos{0, -1, 0}) {
		t.Fatalf("requests outside of the build limits must be rejected")
	}
	if !w.Request(cube.ChunkPos{0, 0, 0}) {
		t.Fatalf("request inside of the build limits was rejected")
	}
}

func TestMeshEligibilityGating(t *testing.T) {
	slow := cube.ChunkPos{1, 0, 0}
	release := make(chan struct{})
	var once sync.Once
	unblock := func() { once.Do(func() { close(release) }) }

	w := newTestWorld(t, Config{
		GeneratorWorkers: 2,
		GenerationBatch:  1,
		Generator: generator.Func(func(pos cube.ChunkPos) (*chunk.Chunk, error) {
			if pos == slow {
				<-release
			}
			return flat.GenerateChunk(pos)
		}),
	})
	// Registered after the world so that it runs before Close.
	t.Cleanup(unblock)
	centre := cube.ChunkPos{}
	w.Request(centre)

	// The centre and three of its neighbours can be generated, the fourth is
	// held back.
	waitFor(t, "generation of unblocked chunks", func() bool { return w.LoadedChunkCount() == 4 })
	time.Sleep(50 * time.Millisecond)
	if eligible := w.TakeMeshEligible(); len(eligible) != 0 {
		t.Fatalf("chunk with a missing neighbour became eligible: %v", eligible)
	}

	unblock()
	var eligible []cube.ChunkPos
	waitFor(t, "eligibility", func() bool {
		eligible = append(eligible, w.TakeMeshEligible()...)
		return len(eligible) > 0
	})
	if len(eligible) != 1 || eligible[0] != centre {
		t.Fatalf("expected only %v to be eligible, got %v", centre, eligible)
	}
	if again := w.TakeMeshEligible(); len(again) != 0 {
		t.Fatalf("eligible chunks must be claimed exactly once, got %v again", again)
	}
}

func TestEndToEnd(t *testing.T) {
	w := newTestWorld(t, Config{Generator: generator.NewTerrain(1)})
	pos := cube.ChunkPos{}
	w.Request(pos)
	results := meshAll(t, w, pos)

	// Keep ticking for a while to make sure the chunk is not delivered twice.
	deadline := time.Now().Add(100 * time.Millisecond)
	for time.Now().Before(deadline) {
		results = append(results, w.Tick()...)
		time.Sleep(5 * time.Millisecond)
	}
	if len(results) != 1 {
		t.Fatalf("expected exactly one result, got %v", len(results))
	}
	res := results[0]
	if res.Err != nil {
		t.Fatalf("meshing failed: %v", res.Err)
	}
	if res.Opaque.Empty() {
		t.Fatalf("expected a non-empty opaque mesh")
	}
	c, ok := w.Chunk(pos)
	if !ok || c.Checksum() != res.Checksum {
		t.Fatalf("result must be built from the stored chunk")
	}
	if n := w.Metrics().Builds(pos); n != 1 {
		t.Fatalf("expected 1 build of %v, got %v", pos, n)
	}
}

func TestBlockEditRemeshesNeighbour(t *testing.T) {
	w := newTestWorld(t, Config{})
	centre, left := cube.ChunkPos{0, 0, 0}, cube.ChunkPos{-1, 0, 0}
	w.Request(centre)
	w.Request(left)
	meshAll(t, w, centre, left)

	if !w.SetBlock(cube.Pos{0, 5, 7}, block.Stone) {
		t.Fatalf("setting a block in a loaded chunk failed")
	}
	eligible := w.TakeMeshEligible()
	if len(eligible) != 2 || !slices.Contains(eligible, centre) || !slices.Contains(eligible, left) {
		t.Fatalf("expected %v and %v to be eligible again, got %v", centre, left, eligible)
	}
	w.DispatchMeshing(eligible)
	meshAll(t, w, centre, left)

	if !w.SetBlock(cube.Pos{5, 5, 7}, block.Stone) {
		t.Fatalf("setting a block in a loaded chunk failed")
	}
	if eligible := w.TakeMeshEligible(); len(eligible) != 1 || eligible[0] != centre {
		t.Fatalf("an edit inside a chunk must only remesh that chunk, got %v", eligible)
	}
}

func TestAbsentChunks(t *testing.T) {
	w := newTestWorld(t, Config{})
	pos := cube.Pos{1000, 3, -1000}
	if b := w.Block(pos); b != block.Air {
		t.Fatalf("blocks in absent chunks must read as air, got %v", b)
	}
	if w.SetBlock(pos, block.Stone) {
		t.Fatalf("setting a block in an absent chunk must fail")
	}
	if _, ok := w.MaxHeight(1000, -1000); ok {
		t.Fatalf("absent columns must not have a height")
	}
	if _, ok := w.Chunk(pos.Chunk()); ok {
		t.Fatalf("absent chunk returned")
	}
}

func TestMaxHeightAndSolid(t *testing.T) {
	w := newTestWorld(t, Config{})
	w.Request(cube.ChunkPos{})
	waitFor(t, "generation", func() bool {
		_, ok := w.Chunk(cube.ChunkPos{})
		return ok
	})
	if y, ok := w.MaxHeight(3, 3); !ok || y != 3 {
		t.Fatalf("expected height 3, got %v, %v", y, ok)
	}
	if !w.Solid(cube.Pos{3, 0, 3}) || w.Solid(cube.Pos{3, 4, 3}) {
		t.Fatalf("unexpected solidity")
	}
	w.SetBlock(cube.Pos{3, 10, 3}, block.Stone)
	if y, ok := w.MaxHeight(3, 3); !ok || y != 10 {
		t.Fatalf("expected height 10 after placing a block, got %v, %v", y, ok)
	}
	w.SetBlock(cube.Pos{3, 10, 3}, block.Air)
	if y, _ := w.MaxHeight(3, 3); y != 3 {
		t.Fatalf("expected height 3 after removing the block, got %v", y)
	}
}

// blockingAtlas blocks the first texture lookup until released.
type blockingAtlas struct {
	mesh.Atlas
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (a *blockingAtlas) Slots(t block.Type) []int {
	a.once.Do(func() {
		close(a.entered)
		<-a.release
	})
	return a.Atlas.Slots(t)
}

func TestEvictDiscardsInFlightMeshing(t *testing.T) {
	atlas := &blockingAtlas{Atlas: mesh.NewGridAtlas(), entered: make(chan struct{}), release: make(chan struct{})}
	var once sync.Once
	release := func() { once.Do(func() { close(atlas.release) }) }

	w := newTestWorld(t, Config{Atlas: atlas})
	t.Cleanup(release)
	pos := cube.ChunkPos{}
	w.Request(pos)
	var eligible []cube.ChunkPos
	waitFor(t, "eligibility", func() bool {
		eligible = w.TakeMeshEligible()
		return len(eligible) > 0
	})
	w.DispatchMeshing(eligible)
	<-atlas.entered

	w.Evict(pos)
	release()
	waitFor(t, "discarded result", func() bool { return w.Metrics().Snapshot().Discarded == 1 })
	for _, r := range w.PollCompleted() {
		if r.Pos == pos && r.Err == nil {
			t.Fatalf("result of an evicted chunk was delivered")
		}
	}
	if _, ok := w.Chunk(pos); ok {
		t.Fatalf("evicted chunk still present")
	}
}

func TestRegenerateRevertsEdits(t *testing.T) {
	w := newTestWorld(t, Config{})
	pos := cube.ChunkPos{}
	w.Request(pos)
	waitFor(t, "generation", func() bool { return w.Block(cube.Pos{1, 3, 1}) == block.Grass })
	w.SetBlock(cube.Pos{1, 3, 1}, block.Sand)
	if !w.Regenerate(pos) {
		t.Fatalf("regenerate failed")
	}
	waitFor(t, "regeneration", func() bool { return w.Block(cube.Pos{1, 3, 1}) == block.Grass })
}

func TestGenerationPanicRecovered(t *testing.T) {
	bad := cube.ChunkPos{3, 0, 3}
	var calls sync.Map
	w := newTestWorld(t, Config{Generator: generator.Func(func(pos cube.ChunkPos) (*chunk.Chunk, error) {
		if pos == bad {
			if _, loaded := calls.LoadOrStore(pos, true); !loaded {
				panic("noise exploded")
			}
		}
		return flat.GenerateChunk(pos)
	})})
	w.Request(bad)
	waitFor(t, "generation error", func() bool { return w.Metrics().Snapshot().GenerationErrors == 1 })
	if _, ok := w.Chunk(bad); ok {
		t.Fatalf("failed chunk must not be installed")
	}
	w.Request(bad)
	waitFor(t, "regeneration after failure", func() bool {
		_, ok := w.Chunk(bad)
		return ok
	})
}

func TestGenerationErrorWrapped(t *testing.T) {
	errNoise := errors.New("bad noise parameters")
	w := newTestWorld(t, Config{Generator: generator.Func(func(pos cube.ChunkPos) (*chunk.Chunk, error) {
		return nil, errNoise
	})})
	w.Request(cube.ChunkPos{})
	waitFor(t, "generation errors", func() bool { return w.Metrics().Snapshot().GenerationErrors >= 1 })
	if w.LoadedChunkCount() != 0 {
		t.Fatalf("no chunks should be installed")
	}
	err := error(&GenerationError{Pos: cube.ChunkPos{}, Err: errNoise})
	if !errors.Is(err, errNoise) {
		t.Fatalf("generation errors must unwrap to their cause")
	}
	err = &MeshingError{Pos: cube.ChunkPos{}, Err: ErrChunkNotResolved}
	if !errors.Is(err, ErrChunkNotResolved) {
		t.Fatalf("meshing errors must unwrap to their cause")
	}
}

func TestRaycast(t *testing.T) {
	w := newTestWorld(t, Config{})
	w.Request(cube.ChunkPos{})
	waitFor(t, "generation", func() bool { return w.Solid(cube.Pos{0, 0, 0}) })

	pos, face, ok := w.Raycast(mgl64.Vec3{2.5, 10.5, 2.5}, mgl64.Vec3{0, -1, 0}, 20)
	if !ok || pos != (cube.Pos{2, 3, 2}) || face != cube.Up {
		t.Fatalf("expected hit on top of (2,3,2), got %v %v %v", pos, face, ok)
	}
	if _, _, ok := w.Raycast(mgl64.Vec3{2.5, 10.5, 2.5}, mgl64.Vec3{0, 1, 0}, 20); ok {
		t.Fatalf("ray pointing into the sky must not hit anything")
	}
}

func TestHandles(t *testing.T) {
	w := newTestWorld(t, Config{})
	pos := cube.ChunkPos{}
	if w.SetHandle(pos, 1) {
		t.Fatalf("handles cannot be set on absent chunks")
	}
	w.Request(pos)
	waitFor(t, "generation", func() bool { return w.LoadedChunkCount() > 0 && w.SetHandle(pos, "entity") })
	if h, ok := w.Handle(pos); !ok || h != "entity" {
		t.Fatalf("unexpected handle %v", h)
	}
}

func TestGreedyWorld(t *testing.T) {
	w := newTestWorld(t, Config{Mesh: mesh.Options{Greedy: true}})
	pos := cube.ChunkPos{}
	w.Request(pos)
	res := meshAll(t, w, pos)[0]
	if res.Err != nil {
		t.Fatalf("meshing failed: %v", res.Err)
	}
	// All horizontal neighbours are present, so only the top and bottom
	// layers are visible and each merges into a single quad.
	tops := 0
	for i := 0; i < len(res.Opaque.Normals); i += 4 {
		if res.Opaque.Normals[i] == (mgl32.Vec3{0, 1, 0}) {
			tops++
		}
	}
	if tops != 1 || res.Opaque.Quads() != 2 {
		t.Fatalf("expected a top and a bottom quad, got %v quads with %v on top", res.Opaque.Quads(), tops)
	}
}

// panickingAtlas panics on its first texture lookup.
type panickingAtlas struct {
	mesh.Atlas
	once sync.Once
}

func (a *panickingAtlas) Slots(t block.Type) []int {
	a.once.Do(func() { panic("atlas exploded") })
	return a.Atlas.Slots(t)
}

func TestRequestRetriesFailedMeshing(t *testing.T) {
	w := newTestWorld(t, Config{Atlas: &panickingAtlas{Atlas: mesh.NewGridAtlas()}})
	pos := cube.ChunkPos{}
	w.Request(pos)
	res := meshAll(t, w, pos)
	var meshErr *MeshingError
	if len(res) != 1 || !errors.As(res[0].Err, &meshErr) || meshErr.Pos != pos {
		t.Fatalf("expected a meshing error for %v, got %+v", pos, res)
	}

	w.Request(pos)
	res = meshAll(t, w, pos)
	if res[0].Err != nil || res[0].Opaque.Empty() {
		t.Fatalf("requesting the chunk again must mesh it, got %+v", res[0])
	}
	if n := w.Metrics().Builds(pos); n != 1 {
		t.Fatalf("expected 1 build of %v, got %v", pos, n)
	}
}

func TestUndispatchedClaimStaysReclaimable(t *testing.T) {
	w := newTestWorld(t, Config{})
	pos := cube.ChunkPos{}
	w.Request(pos)
	waitFor(t, "eligibility", func() bool { return len(w.TakeMeshEligible()) > 0 })

	// The claim is dropped without dispatching it.
	w.SetBlock(cube.Pos{5, 5, 5}, block.Stone)
	if eligible := w.TakeMeshEligible(); len(eligible) != 1 || eligible[0] != pos {
		t.Fatalf("an edit must make an undispatched claim eligible again, got %v", eligible)
	}
	w.Request(pos)
	eligible := w.TakeMeshEligible()
	if len(eligible) != 1 || eligible[0] != pos {
		t.Fatalf("a request must make an undispatched claim eligible again, got %v", eligible)
	}
	w.DispatchMeshing(eligible)
	meshAll(t, w, pos)
}

func TestMeshingDefersWhileStoreIsLocked(t *testing.T) {
	w := newTestWorld(t, Config{})
	pos := cube.ChunkPos{}
	w.Request(pos)
	var eligible []cube.ChunkPos
	waitFor(t, "eligibility", func() bool {
		eligible = w.TakeMeshEligible()
		return len(eligible) > 0
	})

	w.mu.Lock()
	w.DispatchMeshing(eligible)
	waitFor(t, "deferred read", func() bool { return w.Metrics().Snapshot().DeferredReads > 0 })
	if res := w.PollCompleted(); len(res) != 0 {
		w.mu.Unlock()
		t.Fatalf("no result may be delivered while the store is locked, got %v", len(res))
	}
	w.mu.Unlock()

	res := meshAll(t, w, pos)
	if res[0].Err != nil {
		t.Fatalf("meshing failed: %v", res[0].Err)
	}
}

func TestColumnKey(t *testing.T) {
	a, ok := columnKey(-1, 7)
	if !ok {
		t.Fatalf("small columns must have a key")
	}
	if b, _ := columnKey(7, -1); a == b {
		t.Fatalf("swapped coordinates share a key")
	}
	far := int(int64(1) << 33)
	if _, ok := columnKey(far, 7); ok {
		t.Fatalf("columns outside of the int32 range must not be cached")
	}
	w := newTestWorld(t, Config{})
	if _, ok := w.MaxHeight(far, 7); ok {
		t.Fatalf("far away columns have no height")
	}
	w.heightMu.Lock()
	cached := w.heights.Size()
	w.heightMu.Unlock()
	if cached != 0 {
		t.Fatalf("far away columns must not enter the height cache")
	}
}
