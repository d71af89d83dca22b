package tilemap

import (
	_ "embed"

	"github.com/Carmen-Shannon/oxy-tiles/engine/device"
	"github.com/Carmen-Shannon/oxy-tiles/engine/renderer/buffer"
	"github.com/Carmen-Shannon/oxy-tiles/engine/renderer/program"
	"github.com/Carmen-Shannon/oxy-tiles/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-tiles/engine/renderer/uniform"
)

var (
	//go:embed shaders/tile.vert
	tileVertexSource string

	//go:embed shaders/tile.frag
	tileFragmentSource string
)

// TileUniforms is the environment of the tile program. The three storage buffers hold
// one element per live tile, in the same slot order.
type TileUniforms struct {
	// TileAmounts is the grid size in cells.
	TileAmounts *uniform.Uniform[[2]int32]
	// Atlas is the texture unit of the sprite atlas.
	Atlas *uniform.Uniform[int32]
	// AtlasTiles is the atlas size in sprite cells.
	AtlasTiles *uniform.Uniform[[2]float32]

	// Positions holds the grid cell of each tile.
	Positions *buffer.ShaderStorageBuffer[[2]uint32]
	// Colors holds the RGBA tint of each tile.
	Colors *buffer.ShaderStorageBuffer[[4]float32]
	// Sprites holds the atlas cell of each tile.
	Sprites *buffer.ShaderStorageBuffer[[2]float32]
}

// Release deletes the storage buffers.
func (u *TileUniforms) Release() error {
	for _, release := range []func() error{u.Positions.Release, u.Colors.Release, u.Sprites.Release} {
		if err := release(); err != nil {
			return err
		}
	}
	return nil
}

// TileShaders returns the vertex and fragment stages of the tile program.
func TileShaders() (shader.Shader, shader.Shader) {
	return shader.NewShader("tile.vert", shader.StageVertex, tileVertexSource),
		shader.NewShader("tile.frag", shader.StageFragment, tileFragmentSource)
}

// NewTileProgram compiles and links the tile shaders and resolves TileUniforms.
//
// Parameters:
//   - dev: the device that owns the program
//   - opts: program builder options, for example a logger
//
// Returns:
//   - *program.Program[TileUniforms]: the linked program
//   - error: a compile, link or lookup error
func NewTileProgram(dev device.Device, opts ...program.ProgramBuilderOption) (*program.Program[TileUniforms], error) {
	vert, frag := TileShaders()
	b, err := program.NewProgramBuilder(dev, vert, frag, opts...)
	if err != nil {
		return nil, err
	}
	return program.Build(b, resolveTileUniforms)
}

func resolveTileUniforms(b *program.UniformBlockBuilder) (TileUniforms, error) {
	var (
		u   TileUniforms
		err error
	)
	if u.TileAmounts, err = program.LookupUniform[[2]int32](b, "tile_amounts"); err != nil {
		return u, err
	}
	if u.Atlas, err = program.LookupUniform[int32](b, "atlas"); err != nil {
		return u, err
	}
	if u.AtlasTiles, err = program.LookupUniform[[2]float32](b, "atlas_tiles"); err != nil {
		return u, err
	}
	if u.Positions, err = program.ShaderStorage[[2]uint32](b, "positions"); err != nil {
		return u, err
	}
	if u.Colors, err = program.ShaderStorage[[4]float32](b, "colors"); err != nil {
		return u, err
	}
	if u.Sprites, err = program.ShaderStorage[[2]float32](b, "sprites"); err != nil {
		return u, err
	}
	return u, nil
}
