package mesh

import (
	"math"
	"slices"

	"github.com/df-mc/voxelworld/block"
	"github.com/df-mc/voxelworld/block/cube"
	"github.com/go-gl/mathgl/mgl32"
)

// Atlas maps block textures to slots of a texture atlas. Building the atlas
// image itself is left to the renderer.
type Atlas interface {
	// Slots returns the atlas slot of every texture of the block kind passed,
	// in the order of block.Type.Textures.
	Slots(t block.Type) []int
	// Rect returns the texture coordinates of the lower and upper corner of
	// the slot passed.
	Rect(slot int) (mgl32.Vec2, mgl32.Vec2)
}

// GridAtlas is an Atlas that lays out every distinct block texture in a square
// grid of equally sized tiles, in the order the block kinds are declared.
type GridAtlas struct {
	size  int
	paths []string
	slots map[block.Type][]int
}

// tileInset shrinks the rectangle of a tile to stop neighbouring tiles from
// bleeding into it when sampled with filtering.
const tileInset = 0.02

// NewGridAtlas creates a GridAtlas holding the textures of every block kind.
func NewGridAtlas() *GridAtlas {
	a := &GridAtlas{slots: make(map[block.Type][]int)}
	for _, t := range block.Types() {
		for _, path := range t.Textures() {
			i := slices.Index(a.paths, path)
			if i < 0 {
				i = len(a.paths)
				a.paths = append(a.paths, path)
			}
			a.slots[t] = append(a.slots[t], i)
		}
	}
	a.size = max(1, int(math.Ceil(math.Sqrt(float64(len(a.paths))))))
	return a
}

// Size returns the amount of tiles along each edge of the atlas.
func (a *GridAtlas) Size() int {
	return a.size
}

// Paths returns the texture paths in slot order.
func (a *GridAtlas) Paths() []string {
	return slices.Clone(a.paths)
}

// Slots ...
func (a *GridAtlas) Slots(t block.Type) []int {
	return a.slots[t]
}

// Rect ...
func (a *GridAtlas) Rect(slot int) (mgl32.Vec2, mgl32.Vec2) {
	x, y := float32(slot%a.size), float32(slot/a.size)
	off := 1 / float32(a.size)
	return mgl32.Vec2{(x + tileInset) * off, (y + tileInset) * off},
		mgl32.Vec2{(x + 1 - tileInset) * off, (y + 1 - tileInset) * off}
}

// tile returns the atlas rectangle used by the face of t pointing in d.
func tile(atlas Atlas, t block.Type, d cube.Direction) mgl32.Vec4 {
	i := t.TextureIndex(d)
	slots := atlas.Slots(t)
	if i < 0 || i >= len(slots) {
		return mgl32.Vec4{}
	}
	lo, hi := atlas.Rect(slots[i])
	return mgl32.Vec4{lo[0], lo[1], hi[0], hi[1]}
}

// atlasUVs converts texture offsets of a single tile into atlas coordinates.
func atlasUVs(uvs [4]mgl32.Vec2, t mgl32.Vec4) [4]mgl32.Vec2 {
	for i, uv := range uvs {
		uvs[i] = mgl32.Vec2{t[0] + (t[2]-t[0])*uv[0], t[1] + (t[3]-t[1])*uv[1]}
	}
	return uvs
}
