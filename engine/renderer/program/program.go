// Package program links shader stages into a program and resolves its uniforms and
// blocks into a typed environment.
//
// A program moves through three states. A ProgramBuilder collects the stages, Build
// compiles, attaches, links and validates them, and the resolve function passed to Build
// receives a UniformBlockBuilder bound to the linked program. Everything resolve looks up
// ends up in the environment of the returned Program, which is how callers reach uniforms
// and storage buffers afterwards.
package program

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-tiles/engine/device"
	"github.com/Carmen-Shannon/oxy-tiles/engine/renderer/buffer"
	"github.com/Carmen-Shannon/oxy-tiles/engine/renderer/uniform"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// NameError reports a uniform or block name that the linked program does not have as an
// active resource.
type NameError struct {
	// Kind is "uniform", "shader storage block" or "uniform block".
	Kind string

	// Name is the name that was looked up.
	Name string
}

func (e *NameError) Error() string {
	return fmt.Sprintf("program has no active %s named %q", e.Kind, e.Name)
}

// UniformBlockBuilder resolves names against a linked program. Shader storage blocks and
// uniform blocks each get binding points from their own counter, starting at 0 and
// advancing once per successful resolution.
type UniformBlockBuilder struct {
	dev     device.Device
	program uint32

	nextStorage uint32
	nextBlock   uint32

	resolved map[string]bool
	created  []func() error
}

// Program returns the device name of the linked program.
func (b *UniformBlockBuilder) Program() uint32 {
	return b.program
}

// LookupUniform resolves a default-block uniform into a typed handle.
//
// Parameters:
//   - b: the builder of the linked program
//   - name: the uniform name as written in the GLSL source
//
// Returns:
//   - *uniform.Uniform[T]: the handle
//   - error: a *NameError if the program has no such active uniform, or a device error
func LookupUniform[T uniform.Value](b *UniformBlockBuilder, name string) (*uniform.Uniform[T], error) {
	loc, err := b.dev.UniformLocation(b.program, name)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to look up uniform %q", name)
	}
	if loc == -1 {
		return nil, &NameError{Kind: "uniform", Name: name}
	}
	return uniform.New[T](b.dev, b.program, loc), nil
}

// ShaderStorage resolves a shader storage block, binds it to the next free storage
// binding point and returns an empty buffer that occupies that point.
//
// Parameters:
//   - b: the builder of the linked program
//   - name: the block name as written in the GLSL source
//
// Returns:
//   - *buffer.ShaderStorageBuffer[T]: the buffer bound to the block's binding point
//   - error: a *NameError if the program has no such block, or a device error
func ShaderStorage[T any](b *UniformBlockBuilder, name string) (*buffer.ShaderStorageBuffer[T], error) {
	return resolveBlock[T, buffer.ShaderStorage](b, name, device.ShaderStorageBlock, "shader storage block", &b.nextStorage, b.dev.ShaderStorageBlockBinding)
}

// UniformBlock resolves a named uniform block, binds it to the next free uniform buffer
// binding point and returns an empty buffer that occupies that point.
//
// Parameters:
//   - b: the builder of the linked program
//   - name: the block name as written in the GLSL source
//
// Returns:
//   - *buffer.UniformBuffer[T]: the buffer bound to the block's binding point
//   - error: a *NameError if the program has no such block, or a device error
func UniformBlock[T any](b *UniformBlockBuilder, name string) (*buffer.UniformBuffer[T], error) {
	return resolveBlock[T, buffer.Uniform](b, name, device.UniformBlock, "uniform block", &b.nextBlock, b.dev.UniformBlockBinding)
}

func resolveBlock[T any, B buffer.IndexedTarget](
	b *UniformBlockBuilder,
	name string,
	iface device.Enum,
	kind string,
	next *uint32,
	bindBlock func(program, blockIndex, binding uint32) error,
) (*buffer.IndexedBuffer[T, B], error) {
	index, err := b.dev.ProgramResourceIndex(b.program, iface, name)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to look up %s %q", kind, name)
	}
	if index == device.InvalidIndex {
		return nil, &NameError{Kind: kind, Name: name}
	}

	point := *next
	if err := bindBlock(b.program, index, point); err != nil {
		return nil, eris.Wrapf(err, "failed to bind %s %q to point %d", kind, name, point)
	}
	buf, err := buffer.NewIndexed[T, B](b.dev, point)
	if err != nil {
		return nil, err
	}
	if err := buf.Bind(); err != nil {
		_ = buf.Release()
		return nil, eris.Wrapf(err, "failed to bind buffer of %s %q", kind, name)
	}
	*next++
	b.resolved[name] = true
	b.created = append(b.created, buf.Release)
	return buf, nil
}

// releaseAll deletes the buffers created by a resolve call that failed.
func (b *UniformBlockBuilder) releaseAll(logger zerolog.Logger) {
	for _, release := range b.created {
		if err := release(); err != nil {
			logger.Error().Err(err).Uint32("program", b.program).Msg("failed to release block buffer")
		}
	}
	b.created = nil
}

// Program is a linked, validated program together with the environment its resolve
// function produced.
type Program[E any] struct {
	dev      device.Device
	id       uint32
	env      E
	released bool
}

// Env returns the environment of the program. Uniform handles and block buffers in it
// stay valid until the program is released.
func (p *Program[E]) Env() *E {
	return &p.env
}

// ID returns the device name of the program.
func (p *Program[E]) ID() uint32 {
	return p.id
}

// Bind makes the program current for draws.
func (p *Program[E]) Bind() error {
	if p.released {
		panic(fmt.Sprintf("program: bind of released program %d", p.id))
	}
	return p.dev.UseProgram(p.id)
}

// Release deletes the program. Buffers in the environment are owned by the caller and
// are not released. Calling Release again has no effect.
func (p *Program[E]) Release() error {
	if p.released {
		return nil
	}
	p.released = true
	if err := p.dev.DeleteProgram(p.id); err != nil {
		return eris.Wrapf(err, "failed to delete program %d", p.id)
	}
	return nil
}
