package cube

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestChunkRoundTrip(t *testing.T) {
	for x := -160; x <= 160; x++ {
		for y := -160; y <= 160; y += 7 {
			for z := -160; z <= 160; z += 3 {
				pos := Pos{x, y, z}
				c := pos.Chunk()
				local := pos.Local(c)
				if !local.InChunk() {
					t.Fatalf("local position %v of %v in chunk %v is out of range", local, pos, c)
				}
				if got := c.Global(local); got != pos {
					t.Fatalf("round trip of %v produced %v", pos, got)
				}
				manual := Pos{int(c[0])*ChunkSize + local[0], int(c[1])*ChunkSize + local[1], int(c[2])*ChunkSize + local[2]}
				if manual != pos {
					t.Fatalf("chunk*size+local of %v produced %v", pos, manual)
				}
			}
		}
	}
}

func TestChunkFloorDivision(t *testing.T) {
	tests := []struct {
		pos  Pos
		want ChunkPos
	}{
		{Pos{0, 0, 0}, ChunkPos{0, 0, 0}},
		{Pos{-1, -1, -1}, ChunkPos{-1, -1, -1}},
		{Pos{15, 16, -16}, ChunkPos{0, 1, -1}},
		{Pos{-17, 31, 32}, ChunkPos{-2, 1, 2}},
	}
	for _, tt := range tests {
		if got := tt.pos.Chunk(); got != tt.want {
			t.Errorf("%v.Chunk() = %v, want %v", tt.pos, got, tt.want)
		}
	}
}

func TestNeighbourSymmetry(t *testing.T) {
	for _, c := range []ChunkPos{{0, 0, 0}, {-3, 2, 9}, {100, -5, -100}} {
		n := c.Neighbours()
		for _, d := range Directions() {
			if n[d] != c.Side(d) {
				t.Fatalf("neighbour %v of %v is %v, expected %v", d, c, n[d], c.Side(d))
			}
			if back := c.Side(d).Side(d.Opposite()); back != c {
				t.Fatalf("moving %v and back from %v ended at %v", d, c, back)
			}
			if c.Side(d).SquaredDistance(c) != 1 {
				t.Fatalf("neighbour %v of %v is not adjacent", d, c)
			}
		}
	}
}

func TestDistances(t *testing.T) {
	a, b := ChunkPos{1, 7, -2}, ChunkPos{-2, -4, 3}
	if got := a.FlatDistance(b); got != 8 {
		t.Fatalf("expected flat distance 8, got %v", got)
	}
	if got := a.SquaredDistance(b); got != 9+121+25 {
		t.Fatalf("expected squared distance 155, got %v", got)
	}
	if a.FlatDistance(ChunkPos{1, 100, -2}) != 0 {
		t.Fatalf("flat distance must ignore the vertical axis")
	}
}

func TestDirectionPerpendicular(t *testing.T) {
	for _, d := range Directions() {
		u, v := d.Perpendicular()
		if u.Axis() == d.Axis() || v.Axis() == d.Axis() || u.Axis() == v.Axis() {
			t.Fatalf("perpendicular axes of %v are %v and %v", d, u, v)
		}
		if d.Opposite().Opposite() != d || d.Opposite() == d {
			t.Fatalf("opposite of %v is broken", d)
		}
		if d.Normal().Len() != 1 {
			t.Fatalf("normal of %v is not a unit vector", d)
		}
	}
}

func TestMortonOrdersNeighboursClosely(t *testing.T) {
	if (ChunkPos{0, 0, 0}).Morton() == (ChunkPos{1, 0, 0}).Morton() {
		t.Fatalf("distinct chunks must have distinct morton values")
	}
	if (ChunkPos{-1, 0, 0}).Morton() >= (ChunkPos{0, 0, 0}).Morton() {
		t.Fatalf("expected negative chunks to sort before the origin")
	}
}

func TestPosFromVec3(t *testing.T) {
	if got := PosFromVec3(mgl64.Vec3{-0.5, 1.2, 15.99}); got != (Pos{-1, 1, 15}) {
		t.Fatalf("unexpected block position %v", got)
	}
}
