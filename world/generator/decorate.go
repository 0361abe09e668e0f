package generator

import (
	"math"
	"math/rand/v2"

	"github.com/df-mc/voxelworld/block"
	"github.com/df-mc/voxelworld/world/chunk"
	"github.com/go-gl/mathgl/mgl64"
)

// Decorator adds features to a freshly generated chunk. Decorators only ever
// modify the chunk passed, so features never spill into neighbours that may
// already be generated.
type Decorator interface {
	Decorate(c *chunk.Chunk, r *rand.Rand)
}

// DeadBushes scatters dead bushes on top of dry sand.
type DeadBushes struct {
	Amount int
}

// Decorate ...
func (d DeadBushes) Decorate(c *chunk.Chunk, r *rand.Rand) {
	amount := r.IntN(2) + d.Amount
	for i := 0; i < amount; i++ {
		x, z := r.IntN(chunk.Size), r.IntN(chunk.Size)
		if y, ok := d.highestWorkableBlock(c, x, z); ok {
			c.SetBlock(x, y, z, block.DeadBush)
		}
	}
}

// highestWorkableBlock finds the highest air block in the column (x, z) that
// sits directly on sand.
func (DeadBushes) highestWorkableBlock(c *chunk.Chunk, x, z int) (int, bool) {
	for y := chunk.Size - 1; y > 0; y-- {
		if c.Block(x, y, z) == block.Air && c.Block(x, y-1, z) == block.Sand {
			return y, true
		}
	}
	return 0, false
}

// Ore places clusters of ore in stone.
type Ore struct {
	Types []OreType
}

// DefaultOres returns the ore distribution used by the default world.
func DefaultOres() Ore {
	return Ore{Types: []OreType{
		{Material: block.CoalOre, Replaces: block.Stone, ClusterCount: 3, ClusterSize: 10, MinHeight: 1, MaxHeight: GroundHeight},
		{Material: block.IronOre, Replaces: block.Stone, ClusterCount: 2, ClusterSize: 6, MinHeight: 1, MaxHeight: GroundHeight / 2},
		{Material: block.GoldOre, Replaces: block.Stone, ClusterCount: 1, ClusterSize: 5, MinHeight: 1, MaxHeight: GroundHeight / 4},
		{Material: block.Gravel, Replaces: block.Stone, ClusterCount: 1, ClusterSize: 12, MinHeight: 1, MaxHeight: GroundHeight},
	}}
}

// Decorate ...
func (o Ore) Decorate(c *chunk.Chunk, r *rand.Rand) {
	oy := c.Pos().Origin()[1]
	for _, ore := range o.Types {
		lo, hi := max(ore.MinHeight, oy), min(ore.MaxHeight, oy+chunk.Size-1)
		if lo > hi {
			continue
		}
		for i := 0; i < ore.ClusterCount; i++ {
			x, y, z := r.IntN(chunk.Size), lo+r.IntN(hi-lo+1)-oy, r.IntN(chunk.Size)
			if c.Block(x, y, z) == ore.Replaces {
				ore.Place(c, mgl64.Vec3{float64(x), float64(y), float64(z)}, r)
			}
		}
	}
}

// OreType describes a single kind of ore cluster.
type OreType struct {
	Material, Replaces        block.Type
	ClusterCount, ClusterSize int
	// MinHeight and MaxHeight bound the world y at which clusters start.
	MinHeight, MaxHeight int
}

// Place grows a cluster around the local position passed. The cluster is an
// elongated blob of spheres along a random horizontal line through pos.
// Blocks of the cluster outside of the chunk are dropped.
func (o OreType) Place(c *chunk.Chunk, pos mgl64.Vec3, r *rand.Rand) {
	size := float64(o.ClusterSize)
	angle := r.Float64() * math.Pi
	offset := mgl64.Vec2{math.Cos(angle), math.Sin(angle)}.Mul(size / 8)
	start := pos.Add(mgl64.Vec3{offset[0], float64(r.IntN(3)) - 1, offset[1]})
	end := pos.Sub(mgl64.Vec3{offset[0], float64(r.IntN(3)) - 1, offset[1]})

	for i := 0.0; i <= size; i++ {
		seed := start.Add(end.Sub(start).Mul(i / size))
		radius := ((math.Sin(i*(math.Pi/size))+1)*r.Float64()*size/16 + 1) / 2

		for x := int(math.Floor(seed[0] - radius)); x <= int(math.Floor(seed[0]+radius)); x++ {
			dx := (float64(x) + 0.5 - seed[0]) / radius
			for y := int(math.Floor(seed[1] - radius)); y <= int(math.Floor(seed[1]+radius)); y++ {
				dy := (float64(y) + 0.5 - seed[1]) / radius
				for z := int(math.Floor(seed[2] - radius)); z <= int(math.Floor(seed[2]+radius)); z++ {
					dz := (float64(z) + 0.5 - seed[2]) / radius
					if dx*dx+dy*dy+dz*dz < 1 && c.Block(x, y, z) == o.Replaces {
						c.SetBlock(x, y, z, o.Material)
					}
				}
			}
		}
	}
}
