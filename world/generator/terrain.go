package generator

import (
	"encoding/binary"
	"math/rand/v2"

	"github.com/cespare/xxhash/v2"
	"github.com/df-mc/voxelworld/block"
	"github.com/df-mc/voxelworld/block/cube"
	"github.com/df-mc/voxelworld/world/chunk"
)

const (
	// GroundHeight is the range of terrain heights produced by Generate. The
	// surface of a column lies in [0, GroundHeight].
	GroundHeight = 64
	// SeaLevel is the first world y above the water surface. Air between the
	// terrain and SeaLevel is filled with water.
	SeaLevel = 28
	// SoilDepth is the amount of dirt blocks under the cap of a column.
	SoilDepth = 3

	// shoreRange is the maximum distance between terrain height and sea level
	// for a column to be turned into a beach.
	shoreRange = 2
	// shoreChance is the chance of a shore column being covered in sand.
	shoreChance = 0.7
	// variantChance scales the chance of stone being replaced by a random
	// variant. The chance of a stone block at depth d is variantChance/d.
	variantChance = 0.3
)

// Terrain generates hilly terrain with water, beaches and scattered ores from
// a world seed. Terrain is safe for concurrent use.
type Terrain struct {
	seed       uint64
	field      Field
	decorators []Decorator
}

// NewTerrain creates a Terrain generator for the seed passed. Decorators are
// run in order on every chunk after the base terrain is generated.
func NewTerrain(seed uint64, decorators ...Decorator) *Terrain {
	return &Terrain{
		seed:       seed,
		field:      FractalConfig{}.NewFractal(seed),
		decorators: decorators,
	}
}

// GenerateChunk generates the chunk at pos.
func (t *Terrain) GenerateChunk(pos cube.ChunkPos) (*chunk.Chunk, error) {
	r := ChunkRand(t.seed, pos)
	c := Generate(pos, t.field, r)
	for _, d := range t.decorators {
		d.Decorate(c, r)
	}
	return c, nil
}

// Height returns the terrain height of the world column (x, z).
func (t *Terrain) Height(x, z int) int {
	return Height(t.field, x, z)
}

// ChunkRand returns the deterministic random source used to generate the
// chunk at pos in a world with the seed passed.
func ChunkRand(seed uint64, pos cube.ChunkPos) *rand.Rand {
	var b [12]byte
	binary.LittleEndian.PutUint32(b[0:], uint32(pos[0]))
	binary.LittleEndian.PutUint32(b[4:], uint32(pos[1]))
	binary.LittleEndian.PutUint32(b[8:], uint32(pos[2]))
	return rand.New(rand.NewPCG(seed, xxhash.Sum64(b[:])))
}

// Height samples the terrain height of the world column (x, z) from field.
func Height(field Field, x, z int) int {
	n := field.Eval(float64(x), float64(z))
	return int((n/2 + 0.5) * GroundHeight)
}

// Generate produces the base terrain of the chunk at pos. The result depends
// only on its arguments: the same field, position and random state always
// produce the same chunk.
func Generate(pos cube.ChunkPos, field Field, r *rand.Rand) *chunk.Chunk {
	c := chunk.New(pos)
	origin := pos.Origin()
	for z := 0; z < chunk.Size; z++ {
		for x := 0; x < chunk.Size; x++ {
			h := Height(field, origin[0]+x, origin[2]+z)
			shore := abs(h-SeaLevel) <= shoreRange && r.Float64() < shoreChance
			for y := 0; y < chunk.Size; y++ {
				c.SetBlock(x, y, z, classify(origin[1]+y, h, shore, r))
			}
		}
	}
	return c
}

// classify returns the block at world height y of a column with terrain
// height h. The checks run in priority order: bedrock, the cap at h, the
// space above h, the soil band and finally stone.
func classify(y, h int, shore bool, r *rand.Rand) block.Type {
	switch {
	case y == 0:
		return block.Bedrock
	case y == h:
		if shore {
			return block.Sand
		}
		if h >= SeaLevel {
			return block.Grass
		}
		return block.Dirt
	case y > h:
		if y < SeaLevel {
			return block.Water
		}
		return block.Air
	case h-y <= SoilDepth:
		if shore {
			return block.Sand
		}
		return block.Dirt
	}
	if depth := h - y; r.Float64() < variantChance/float64(depth) {
		if v := block.RandomVariant(r); v.Solid() && v != block.Bedrock {
			return v
		}
	}
	return block.Stone
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
