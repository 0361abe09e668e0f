package generator

import (
	"math/rand/v2"
	"testing"

	"github.com/df-mc/voxelworld/block"
	"github.com/df-mc/voxelworld/block/cube"
	"github.com/df-mc/voxelworld/world/chunk"
)

func TestTerrainDeterministic(t *testing.T) {
	positions := []cube.ChunkPos{{0, 0, 0}, {-3, 1, 7}, {12, 2, -9}}
	a := NewTerrain(42, DefaultOres(), DeadBushes{Amount: 2})
	b := NewTerrain(42, DefaultOres(), DeadBushes{Amount: 2})
	for _, pos := range positions {
		c1, err := a.GenerateChunk(pos)
		if err != nil {
			t.Fatalf("generate %v: %v", pos, err)
		}
		c2, err := b.GenerateChunk(pos)
		if err != nil {
			t.Fatalf("generate %v: %v", pos, err)
		}
		c3, _ := a.GenerateChunk(pos)
		if !c1.Equal(c2) || !c1.Equal(c3) {
			t.Fatalf("chunk %v differs between generations with the same seed", pos)
		}
	}
}

func TestGeneratePure(t *testing.T) {
	field := FractalConfig{}.NewFractal(7)
	pos := cube.ChunkPos{2, 1, -4}
	c1 := Generate(pos, field, ChunkRand(7, pos))
	c2 := Generate(pos, field, ChunkRand(7, pos))
	if c1.Checksum() != c2.Checksum() {
		t.Fatalf("Generate must be a pure function of its inputs")
	}
}

func TestSeedsDiffer(t *testing.T) {
	pos := cube.ChunkPos{0, 1, 0}
	c1, _ := NewTerrain(1).GenerateChunk(pos)
	c2, _ := NewTerrain(2).GenerateChunk(pos)
	if c1.Equal(c2) {
		t.Fatalf("different seeds produced identical chunks")
	}
}

func TestBedrockFloor(t *testing.T) {
	g := NewTerrain(1234, DefaultOres(), DeadBushes{Amount: 4})
	for x := int32(-4); x <= 4; x++ {
		for z := int32(-4); z <= 4; z++ {
			c, _ := g.GenerateChunk(cube.ChunkPos{x, 0, z})
			for lx := 0; lx < chunk.Size; lx++ {
				for lz := 0; lz < chunk.Size; lz++ {
					if b := c.Block(lx, 0, lz); b != block.Bedrock {
						t.Fatalf("block at (%v,0,%v) of chunk (%v,0,%v) is %v, expected bedrock", lx, lz, x, z, b)
					}
				}
			}
		}
	}
}

func TestColumnLayers(t *testing.T) {
	g := NewTerrain(99)
	pos := cube.ChunkPos{3, 0, 3}
	var column []block.Type
	for y := int32(0); y < GroundHeight/chunk.Size+1; y++ {
		c, _ := g.GenerateChunk(cube.ChunkPos{pos[0], y, pos[2]})
		for ly := 0; ly < chunk.Size; ly++ {
			column = append(column, c.Block(5, ly, 5))
		}
	}
	origin := pos.Origin()
	h := g.Height(origin[0]+5, origin[2]+5)
	if h < 0 || h > GroundHeight {
		t.Fatalf("terrain height %v out of range", h)
	}
	for y, b := range column {
		switch {
		case y == 0:
		case y > h && y < SeaLevel:
			if b != block.Water {
				t.Fatalf("expected water at %v above terrain %v, got %v", y, h, b)
			}
		case y > h:
			if b != block.Air {
				t.Fatalf("expected air at %v above terrain %v, got %v", y, h, b)
			}
		case y == h:
			if b != block.Grass && b != block.Dirt && b != block.Sand {
				t.Fatalf("expected a surface cap at %v, got %v", y, b)
			}
		default:
			if !b.Solid() {
				t.Fatalf("expected solid ground at %v below terrain %v, got %v", y, h, b)
			}
		}
	}
}

func TestFractalRange(t *testing.T) {
	f := FractalConfig{Octaves: 6}.NewFractal(3)
	for x := -200; x < 200; x += 7 {
		for z := -200; z < 200; z += 11 {
			if v := f.Eval(float64(x), float64(z)); v < -1 || v > 1 {
				t.Fatalf("noise value %v at (%v, %v) out of range", v, x, z)
			}
		}
	}
}

func TestFlat(t *testing.T) {
	g := NewFlat(block.Grass, block.Dirt, block.Dirt, block.Bedrock)
	c, _ := g.GenerateChunk(cube.ChunkPos{5, 0, -5})
	want := []block.Type{block.Bedrock, block.Dirt, block.Dirt, block.Grass, block.Air}
	for y, b := range want {
		if got := c.Block(7, y, 7); got != b {
			t.Fatalf("expected %v at y %v, got %v", b, y, got)
		}
	}
	above, _ := g.GenerateChunk(cube.ChunkPos{0, 1, 0})
	if !above.Empty() {
		t.Fatalf("chunks above the layers must be empty")
	}
	below, _ := g.GenerateChunk(cube.ChunkPos{0, -1, 0})
	if !below.Empty() {
		t.Fatalf("chunks below the layers must be empty")
	}
}

func TestDeadBushesOnSand(t *testing.T) {
	c := chunk.New(cube.ChunkPos{})
	for x := 0; x < chunk.Size; x++ {
		for z := 0; z < chunk.Size; z++ {
			c.SetBlock(x, 3, z, block.Sand)
		}
	}
	DeadBushes{Amount: 20}.Decorate(c, rand.New(rand.NewPCG(1, 1)))
	placed := 0
	for i := 0; i < chunk.Volume; i++ {
		if c.At(i) == block.DeadBush {
			placed++
		}
	}
	if placed == 0 {
		t.Fatalf("expected dead bushes to be placed on sand")
	}
	for x := 0; x < chunk.Size; x++ {
		for z := 0; z < chunk.Size; z++ {
			for y := 0; y < chunk.Size; y++ {
				if c.Block(x, y, z) == block.DeadBush && y != 4 {
					t.Fatalf("dead bush at %v is not on top of the sand", y)
				}
			}
		}
	}
}

func TestOreOnlyReplacesStone(t *testing.T) {
	c := chunk.New(cube.ChunkPos{0, 0, 0})
	c.Fill(block.Stone)
	for x := 0; x < chunk.Size; x++ {
		for z := 0; z < chunk.Size; z++ {
			c.SetBlock(x, 0, z, block.Bedrock)
		}
	}
	DefaultOres().Decorate(c, rand.New(rand.NewPCG(5, 5)))
	for x := 0; x < chunk.Size; x++ {
		for z := 0; z < chunk.Size; z++ {
			if c.Block(x, 0, z) != block.Bedrock {
				t.Fatalf("ore overwrote bedrock at (%v,0,%v)", x, z)
			}
		}
	}
}
