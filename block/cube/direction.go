package cube

import "github.com/go-gl/mathgl/mgl32"

// Direction represents one of the six faces of a block or chunk.
type Direction int

const (
	// Up is the positive y direction.
	Up Direction = iota
	// Down is the negative y direction.
	Down
	// Left is the negative x direction.
	Left
	// Right is the positive x direction.
	Right
	// Forward is the positive z direction.
	Forward
	// Back is the negative z direction.
	Back
)

// Axis represents one of the three axes of the lattice.
type Axis int

const (
	X Axis = iota
	Y
	Z
)

// Directions returns all six directions in their declaration order.
func Directions() []Direction {
	return []Direction{Up, Down, Left, Right, Forward, Back}
}

var offsets = [...]Pos{
	Up:      {0, 1, 0},
	Down:    {0, -1, 0},
	Left:    {-1, 0, 0},
	Right:   {1, 0, 0},
	Forward: {0, 0, 1},
	Back:    {0, 0, -1},
}

// Offset returns the unit position offset pointing in the direction.
func (d Direction) Offset() Pos {
	return offsets[d]
}

// Opposite returns the direction pointing the other way.
func (d Direction) Opposite() Direction {
	return d ^ 1
}

// Axis returns the axis the direction lies on.
func (d Direction) Axis() Axis {
	switch d {
	case Up, Down:
		return Y
	case Left, Right:
		return X
	default:
		return Z
	}
}

// Positive reports whether the direction points towards increasing
// coordinates.
func (d Direction) Positive() bool {
	return d == Up || d == Right || d == Forward
}

// Perpendicular returns the two positive directions spanning the plane of a
// face pointing in d. The first is the axis a greedy sweep extends strips
// along, the second the axis strips are stacked on.
func (d Direction) Perpendicular() (u, v Direction) {
	switch d.Axis() {
	case Y:
		return Right, Forward
	case X:
		return Forward, Up
	default:
		return Right, Up
	}
}

// Normal returns the outward unit normal of a face pointing in d.
func (d Direction) Normal() mgl32.Vec3 {
	o := offsets[d]
	return mgl32.Vec3{float32(o[0]), float32(o[1]), float32(o[2])}
}

// Vertical reports whether d is Up or Down.
func (d Direction) Vertical() bool {
	return d.Axis() == Y
}

// String returns the name of the direction.
func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	case Forward:
		return "forward"
	case Back:
		return "back"
	}
	panic("invalid direction")
}

// Component returns the component of a position along the axis.
func (a Axis) Component(p Pos) int {
	return p[a]
}
