// Package device is the call layer between the renderer and the graphics driver. Every
// operation the renderer needs is a method on Device; implementations issue the driver call
// and immediately drain the driver error state through Check, so an error is always reported
// by the call that caused it and never by a later one.
//
// Binding state on the device is global. Callers bind a buffer before uploading to it, bind a
// vertex array before the vertex buffer whose attributes it describes, and bind a program
// before drawing with it. A Device must only be used from the thread that owns its context.
package device

import "unsafe"

// UniformShape describes the layout of a uniform value for ProgramUniform.
type UniformShape struct {
	// Type is the scalar component type (Float, Double, Int or UnsignedInt).
	Type Enum

	// Components is the vector width (1-4) for non-matrix uniforms, or the column and
	// row count (2-4) for square matrices.
	Components int32

	// Matrix is true for square matrix uniforms.
	Matrix bool
}

// Device is a single graphics context. All methods must be called from the thread the
// context is current on.
type Device interface {
	// GenBuffer allocates a new buffer object name.
	//
	// Returns:
	//   - uint32: the buffer name
	//   - error: a device error if the allocation failed
	GenBuffer() (uint32, error)

	// DeleteBuffer releases a buffer object.
	//
	// Parameters:
	//   - id: the buffer name
	DeleteBuffer(id uint32) error

	// BindBuffer binds a buffer to a global binding target.
	//
	// Parameters:
	//   - target: the binding target (ArrayBuffer, ShaderStorageBuffer, ...)
	//   - id: the buffer name, or 0 to unbind
	BindBuffer(target Enum, id uint32) error

	// BindBufferBase binds a buffer to a numbered binding point of an indexed target. The
	// buffer is also bound to the global target.
	//
	// Parameters:
	//   - target: an indexed binding target
	//   - index: the binding point
	//   - id: the buffer name
	BindBufferBase(target Enum, index, id uint32) error

	// BufferData replaces the whole data store of the buffer bound to target.
	//
	// Parameters:
	//   - target: the binding target the buffer is bound to
	//   - size: the new store size in bytes
	//   - data: the source bytes, or nil to leave the store uninitialized
	//   - usage: the usage hint
	BufferData(target Enum, size int, data unsafe.Pointer, usage Enum) error

	// BufferMapped reports whether the buffer bound to target is currently mapped.
	BufferMapped(target Enum) (bool, error)

	// BufferMapPointer returns the mapping pointer of the buffer bound to target, or nil if
	// the buffer is not mapped.
	BufferMapPointer(target Enum) (unsafe.Pointer, error)

	// MapBufferRange maps a byte range of the buffer bound to target into client memory.
	//
	// Parameters:
	//   - target: the binding target the buffer is bound to
	//   - offset: the first byte of the range
	//   - length: the number of bytes to map
	//   - access: a combination of MapReadBit and MapWriteBit
	//
	// Returns:
	//   - unsafe.Pointer: the client address of the first mapped byte
	//   - error: a device error if the range could not be mapped
	MapBufferRange(target Enum, offset, length int, access Enum) (unsafe.Pointer, error)

	// UnmapBuffer releases the mapping of the buffer bound to target.
	//
	// Returns:
	//   - bool: false if the data store contents became undefined while mapped
	//   - error: a device error if the buffer was not mapped
	UnmapBuffer(target Enum) (bool, error)

	// GenVertexArray allocates a new vertex array object name.
	GenVertexArray() (uint32, error)

	// DeleteVertexArray releases a vertex array object.
	DeleteVertexArray(id uint32) error

	// BindVertexArray makes a vertex array current.
	BindVertexArray(id uint32) error

	// EnableVertexAttribArray enables an attribute slot of the current vertex array.
	EnableVertexAttribArray(index uint32) error

	// VertexAttribPointer describes a float-interpreted attribute sourced from the buffer
	// bound to ArrayBuffer.
	//
	// Parameters:
	//   - index: the attribute slot
	//   - size: the component count (1-4)
	//   - xtype: the component type in the buffer
	//   - normalized: whether fixed-point values are normalized
	//   - stride: the byte distance between consecutive records
	//   - offset: the byte offset of the attribute inside a record
	VertexAttribPointer(index uint32, size int32, xtype Enum, normalized bool, stride int32, offset uintptr) error

	// VertexAttribIPointer describes an integer attribute sourced from the buffer bound to
	// ArrayBuffer. Values reach the shader unconverted.
	VertexAttribIPointer(index uint32, size int32, xtype Enum, stride int32, offset uintptr) error

	// CreateShader creates an empty shader object for the given stage.
	CreateShader(stage Enum) (uint32, error)

	// ShaderSource replaces the source of a shader object.
	ShaderSource(id uint32, source string) error

	// CompileShader compiles a shader object.
	CompileShader(id uint32) error

	// ShaderParameter reads an integer parameter of a shader object.
	ShaderParameter(id uint32, pname Enum) (int32, error)

	// ShaderInfoLog returns the compile log of a shader object.
	ShaderInfoLog(id uint32) (string, error)

	// DeleteShader flags a shader object for deletion.
	DeleteShader(id uint32) error

	// CreateProgram creates an empty program object. A zero name means the device refused.
	CreateProgram() (uint32, error)

	// AttachShader attaches a compiled shader to a program.
	AttachShader(program, shader uint32) error

	// LinkProgram links the attached shaders of a program.
	LinkProgram(program uint32) error

	// ValidateProgram checks whether a program can execute in the current state.
	ValidateProgram(program uint32) error

	// ProgramParameter reads an integer parameter of a program object.
	ProgramParameter(program uint32, pname Enum) (int32, error)

	// ProgramInfoLog returns the link and validation log of a program.
	ProgramInfoLog(program uint32) (string, error)

	// UseProgram makes a program current for drawing.
	UseProgram(program uint32) error

	// DeleteProgram releases a program object.
	DeleteProgram(program uint32) error

	// UniformLocation looks up an active uniform of a linked program.
	//
	// Returns:
	//   - int32: the location, or -1 if the program has no active uniform with that name
	UniformLocation(program uint32, name string) (int32, error)

	// ProgramResourceIndex looks up a named resource of a program interface.
	//
	// Parameters:
	//   - program: the linked program
	//   - iface: UniformBlock or ShaderStorageBlock
	//   - name: the block name
	//
	// Returns:
	//   - uint32: the resource index, or InvalidIndex if the name is not active
	ProgramResourceIndex(program uint32, iface Enum, name string) (uint32, error)

	// ShaderStorageBlockBinding assigns a binding point to a storage block of a program.
	ShaderStorageBlockBinding(program, blockIndex, binding uint32) error

	// UniformBlockBinding assigns a binding point to a uniform block of a program.
	UniformBlockBinding(program, blockIndex, binding uint32) error

	// ProgramUniform uploads count values of the given shape to a uniform location of a
	// program without requiring the program to be current.
	//
	// Parameters:
	//   - program: the program the location belongs to
	//   - location: the uniform location
	//   - shape: the component type, width and matrix flag of a single value
	//   - count: the number of values (array uniforms use count > 1)
	//   - data: the first component of the first value
	ProgramUniform(program uint32, location int32, shape UniformShape, count int32, data unsafe.Pointer) error

	// GenTexture allocates a new texture object name.
	GenTexture() (uint32, error)

	// DeleteTexture releases a texture object.
	DeleteTexture(id uint32) error

	// ActiveTexture selects the texture unit subsequent texture binds apply to.
	ActiveTexture(unit Enum) error

	// BindTexture binds a texture to a target of the active texture unit.
	BindTexture(target Enum, id uint32) error

	// TexParameter sets an integer parameter of the texture bound to target.
	TexParameter(target Enum, pname Enum, param int32) error

	// TexImage2D uploads a two-dimensional image to the texture bound to target.
	TexImage2D(target Enum, level int32, internalFormat Enum, width, height int32, format, xtype Enum, pixels unsafe.Pointer) error

	// Viewport sets the viewport rectangle.
	Viewport(x, y, width, height int32) error

	// ClearColor sets the color used by Clear.
	ClearColor(r, g, b, a float32) error

	// Clear clears the buffers selected by mask.
	Clear(mask Enum) error

	// DrawArraysInstanced draws count vertices starting at first, instances times.
	DrawArraysInstanced(mode Enum, first, count, instances int32) error
}
