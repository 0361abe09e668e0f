package cube

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/exp/constraints"
)

// ChunkSize is the edge length of a chunk in blocks. It is mirrored by
// chunk.Size and must never change at runtime.
const ChunkSize = 16

// Pos holds the position of a block in world space. The position is
// represented as an array with an x, y and z value, where the y value is the
// vertical axis.
type Pos [3]int

// String converts the Pos to a string in the format (1,2,3) and returns it.
func (p Pos) String() string {
	return fmt.Sprintf("(%v,%v,%v)", p[0], p[1], p[2])
}

// X returns the X coordinate of the block position.
func (p Pos) X() int { return p[0] }

// Y returns the Y coordinate of the block position.
func (p Pos) Y() int { return p[1] }

// Z returns the Z coordinate of the block position.
func (p Pos) Z() int { return p[2] }

// Add adds two block positions together and returns a new one with the
// combined values.
func (p Pos) Add(pos Pos) Pos {
	return Pos{p[0] + pos[0], p[1] + pos[1], p[2] + pos[2]}
}

// Sub subtracts pos from p and returns a new one with the subtracted values.
func (p Pos) Sub(pos Pos) Pos {
	return Pos{p[0] - pos[0], p[1] - pos[1], p[2] - pos[2]}
}

// Side returns the position directly next to p on the side passed.
func (p Pos) Side(d Direction) Pos {
	return p.Add(d.Offset())
}

// Vec3 returns the lower corner of the block as an mgl64.Vec3.
func (p Pos) Vec3() mgl64.Vec3 {
	return mgl64.Vec3{float64(p[0]), float64(p[1]), float64(p[2])}
}

// Vec3Centre returns the centre of the block as an mgl64.Vec3.
func (p Pos) Vec3Centre() mgl64.Vec3 {
	return mgl64.Vec3{float64(p[0]) + 0.5, float64(p[1]) + 0.5, float64(p[2]) + 0.5}
}

// Chunk returns the position of the chunk that the block position is in.
// Conversion uses floor division, so block -1 belongs to chunk -1.
func (p Pos) Chunk() ChunkPos {
	return ChunkPos{
		int32(floorDiv(p[0], ChunkSize)),
		int32(floorDiv(p[1], ChunkSize)),
		int32(floorDiv(p[2], ChunkSize)),
	}
}

// Local returns p relative to the lower corner of the chunk passed. For the
// chunk returned by p.Chunk() every component is in [0, ChunkSize).
func (p Pos) Local(c ChunkPos) Pos {
	return p.Sub(c.Origin())
}

// InChunk reports whether p, interpreted as a local position, lies inside a
// chunk.
func (p Pos) InChunk() bool {
	return p[0] >= 0 && p[0] < ChunkSize &&
		p[1] >= 0 && p[1] < ChunkSize &&
		p[2] >= 0 && p[2] < ChunkSize
}

// PosFromVec3 returns the block position of the block that vec is in.
func PosFromVec3(vec mgl64.Vec3) Pos {
	return Pos{floorInt(vec[0]), floorInt(vec[1]), floorInt(vec[2])}
}

// ChunkPos holds the position of a chunk. Each component counts chunks, not
// blocks.
type ChunkPos [3]int32

// String implements fmt.Stringer and returns (x, y, z).
func (p ChunkPos) String() string {
	return fmt.Sprintf("(%v, %v, %v)", p[0], p[1], p[2])
}

// X returns the X coordinate of the chunk position.
func (p ChunkPos) X() int32 { return p[0] }

// Y returns the Y coordinate of the chunk position.
func (p ChunkPos) Y() int32 { return p[1] }

// Z returns the Z coordinate of the chunk position.
func (p ChunkPos) Z() int32 { return p[2] }

// Origin returns the world position of the lowest block in the chunk.
func (p ChunkPos) Origin() Pos {
	return Pos{int(p[0]) * ChunkSize, int(p[1]) * ChunkSize, int(p[2]) * ChunkSize}
}

// Global converts a local position within the chunk to a world position. It
// is the inverse of Pos.Local.
func (p ChunkPos) Global(local Pos) Pos {
	return p.Origin().Add(local)
}

// Side returns the chunk position directly next to p on the side passed.
func (p ChunkPos) Side(d Direction) ChunkPos {
	off := d.Offset()
	return ChunkPos{p[0] + int32(off[0]), p[1] + int32(off[1]), p[2] + int32(off[2])}
}

// Neighbours returns the six face-adjacent chunk positions, indexed by
// Direction.
func (p ChunkPos) Neighbours() [6]ChunkPos {
	var n [6]ChunkPos
	for _, d := range Directions() {
		n[d] = p.Side(d)
	}
	return n
}

// SquaredDistance returns the squared euclidean distance between two chunk
// positions, measured in chunks.
func (p ChunkPos) SquaredDistance(o ChunkPos) int64 {
	dx, dy, dz := int64(p[0]-o[0]), int64(p[1]-o[1]), int64(p[2]-o[2])
	return dx*dx + dy*dy + dz*dz
}

// FlatDistance returns the Manhattan distance between p and o on the
// horizontal plane. The vertical axis is ignored, so every chunk in a column
// has the same distance.
func (p ChunkPos) FlatDistance(o ChunkPos) int32 {
	return abs(p[0]-o[0]) + abs(p[2]-o[2])
}

// Morton returns the deterministic order value for the chunk. Chunks close to
// each other have close Morton values.
func (p ChunkPos) Morton() uint64 {
	return splitBy2(toUnsigned(p[0])) | splitBy2(toUnsigned(p[1]))<<1 | splitBy2(toUnsigned(p[2]))<<2
}

// ChunkRange is a half-open range [Min, Max) of chunk y coordinates that may
// hold chunks. Chunks outside of it are never generated and read as empty.
type ChunkRange [2]int32

// Min returns the lowest chunk y in the range.
func (r ChunkRange) Min() int32 { return r[0] }

// Max returns the first chunk y above the range.
func (r ChunkRange) Max() int32 { return r[1] }

// Height returns the amount of chunks in a column of the range.
func (r ChunkRange) Height() int {
	return int(r[1] - r[0])
}

// Contains reports whether the chunk position is within the vertical range.
func (r ChunkRange) Contains(p ChunkPos) bool {
	return p[1] >= r[0] && p[1] < r[1]
}

// Blocks returns the lowest block y and the highest block y of the range.
func (r ChunkRange) Blocks() (lo, hi int) {
	return int(r[0]) * ChunkSize, int(r[1])*ChunkSize - 1
}

func floorDiv[T constraints.Signed](a, b T) T {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func abs[T constraints.Signed](v T) T {
	if v < 0 {
		return -v
	}
	return v
}

func floorInt(v float64) int {
	i := int(v)
	if v < float64(i) {
		i--
	}
	return i
}

// toUnsigned biases v into 21 unsigned bits. Chunk coordinates beyond ±2^20
// wrap around, which only affects ordering.
func toUnsigned(v int32) uint32 {
	return uint32(v+1<<20) & 0x1fffff
}

// splitBy2 spreads the lower 21 bits of x so that two zero bits sit between
// every pair of bits.
func splitBy2(x uint32) uint64 {
	x64 := uint64(x)
	x64 = (x64 | x64<<32) & 0x1f00000000ffff
	x64 = (x64 | x64<<16) & 0x1f0000ff0000ff
	x64 = (x64 | x64<<8) & 0x100f00f00f00f00f
	x64 = (x64 | x64<<4) & 0x10c30c30c30c30c3
	x64 = (x64 | x64<<2) & 0x1249249249249249
	return x64
}
