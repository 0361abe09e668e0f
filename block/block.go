// Package block defines the closed set of block kinds that make up a voxel
// world, together with the material properties the mesh and collider builders
// read from them.
package block

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/df-mc/voxelworld/block/cube"
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Type is a kind of block. The zero value is Air.
type Type uint8

const (
	Air Type = iota
	Bedrock
	Gravel
	Dirt
	Stone
	Sand
	GoldOre
	IronOre
	CoalOre
	DeadBush
	Grass
	Water

	typeCount
)

// Shape is the way a block is drawn by the render mesh builder.
type Shape uint8

const (
	// ShapeNone is never drawn.
	ShapeNone Shape = iota
	// ShapeCube is a full unit cube with six faces.
	ShapeCube
	// ShapeCross is two diagonal quads crossing in the centre of the block,
	// used for plants.
	ShapeCross
	// ShapeLiquid is a cube whose top face is lowered when exposed to air. It
	// is drawn by the liquid pass only.
	ShapeLiquid
)

const texturePath = "PureBDcraft/textures/block/"

// properties holds the material data of a single block kind.
type properties struct {
	name        string
	transparent bool
	solid       bool
	shape       Shape
	textures    []string
}

var table = [typeCount]properties{
	Air:      {name: "air", transparent: true, shape: ShapeNone},
	Bedrock:  {name: "bedrock", solid: true, shape: ShapeCube, textures: []string{"bedrock.png"}},
	Gravel:   {name: "gravel", solid: true, shape: ShapeCube, textures: []string{"gravel.png"}},
	Dirt:     {name: "dirt", solid: true, shape: ShapeCube, textures: []string{"dirt.png"}},
	Stone:    {name: "stone", solid: true, shape: ShapeCube, textures: []string{"stone.png"}},
	Sand:     {name: "sand", solid: true, shape: ShapeCube, textures: []string{"sand.png"}},
	GoldOre:  {name: "gold_ore", solid: true, shape: ShapeCube, textures: []string{"gold_ore.png"}},
	IronOre:  {name: "iron_ore", solid: true, shape: ShapeCube, textures: []string{"iron_ore.png"}},
	CoalOre:  {name: "coal_ore", solid: true, shape: ShapeCube, textures: []string{"coal_ore.png"}},
	DeadBush: {name: "dead_bush", transparent: true, shape: ShapeCross, textures: []string{"dead_bush.png"}},
	Grass:    {name: "grass", solid: true, shape: ShapeCube, textures: []string{"grass_block_top.png", "grass_block_side.png", "dirt.png"}},
	Water:    {name: "water", transparent: true, shape: ShapeLiquid, textures: []string{"water_still.png"}},
}

// Types returns every block kind, Air included, in declaration order.
func Types() []Type {
	t := make([]Type, typeCount)
	for i := range t {
		t[i] = Type(i)
	}
	return t
}

// Valid reports whether t is one of the declared block kinds.
func (t Type) Valid() bool {
	return t < typeCount
}

// Transparent reports whether faces of neighbouring blocks facing t should be
// drawn. Air, plants and liquids are transparent.
func (t Type) Transparent() bool {
	return !t.Valid() || table[t].transparent
}

// Solid reports whether t takes part in collision and surface tests.
func (t Type) Solid() bool {
	return t.Valid() && table[t].solid
}

// Liquid reports whether t is drawn by the liquid pass.
func (t Type) Liquid() bool {
	return t.Shape() == ShapeLiquid
}

// Shape returns the render shape of t.
func (t Type) Shape() Shape {
	if !t.Valid() {
		return ShapeNone
	}
	return table[t].shape
}

// Textures returns the texture paths of t. Blocks have between zero and three
// distinct textures: a single texture used for every face, or a top, side and
// bottom texture in that order.
func (t Type) Textures() []string {
	if !t.Valid() {
		return nil
	}
	paths := make([]string, len(table[t].textures))
	for i, tex := range table[t].textures {
		paths[i] = texturePath + tex
	}
	return paths
}

// TextureIndex returns the index into Textures used by the face pointing in d,
// or -1 if t has no textures.
func (t Type) TextureIndex(d cube.Direction) int {
	if !t.Valid() {
		return -1
	}
	switch len(table[t].textures) {
	case 0:
		return -1
	case 3:
		switch d {
		case cube.Up:
			return 0
		case cube.Down:
			return 2
		}
		return 1
	}
	return 0
}

// Tint returns the vertex colour of the face of t pointing in d. Grass tops are
// tinted green and water is tinted blue and made translucent.
func (t Type) Tint(d cube.Direction) mgl32.Vec4 {
	switch {
	case t == Grass && d == cube.Up:
		return mgl32.Vec4{0.49, 0.74, 0.32, 1}
	case t == Water:
		return mgl32.Vec4{0.25, 0.45, 0.9, 0.7}
	}
	return mgl32.Vec4{1, 1, 1, 1}
}

// String returns the identifier of t, such as gold_ore.
func (t Type) String() string {
	if !t.Valid() {
		return fmt.Sprintf("Type(%d)", uint8(t))
	}
	return table[t].name
}

// Name returns a human-readable name of t, such as Gold Ore.
func (t Type) Name() string {
	return cases.Title(language.English).String(strings.ReplaceAll(t.String(), "_", " "))
}

// Parse looks up a block kind by its identifier or display name.
func Parse(name string) (Type, bool) {
	id := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
	for i, p := range table {
		if p.name == id {
			return Type(i), true
		}
	}
	return Air, false
}

var variants = [...]Type{Bedrock, Gravel, Sand, Dirt, Stone, GoldOre, IronOre, CoalOre, DeadBush}

// RandomVariant returns a uniformly random block kind from the set used for
// underground substitution. Air, Grass and Water are never returned.
func RandomVariant(r *rand.Rand) Type {
	return variants[r.IntN(len(variants))]
}
