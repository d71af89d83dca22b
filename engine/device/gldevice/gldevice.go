// Package gldevice implements device.Device on top of the OpenGL 4.3 core profile through
// go-gl. Init must be called once the window context is current on the calling thread.
package gldevice

import (
	"strings"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-tiles/engine/device"
	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/rotisserie/eris"
)

// glDevice is the go-gl implementation of device.Device.
type glDevice struct{}

var _ device.Device = &glDevice{}

// Init loads the OpenGL function pointers for the current context and returns a Device.
//
// go-gl reference: https://pkg.go.dev/github.com/go-gl/gl/v4.3-core/gl#Init
//
// Returns:
//   - device.Device: the device bound to the current context
//   - error: error if the function pointers could not be loaded
func Init() (device.Device, error) {
	if err := gl.Init(); err != nil {
		return nil, eris.Wrap(err, "failed to initialize OpenGL bindings")
	}
	return &glDevice{}, nil
}

// Version returns the version string reported by the driver.
func Version() string {
	return gl.GoStr(gl.GetString(gl.VERSION))
}

// check drains the device error state right after a call.
func check() error {
	return device.Check(device.Enum(gl.GetError()))
}

func (d *glDevice) GenBuffer() (uint32, error) {
	var id uint32
	gl.GenBuffers(1, &id)
	return id, check()
}

func (d *glDevice) DeleteBuffer(id uint32) error {
	gl.DeleteBuffers(1, &id)
	return check()
}

func (d *glDevice) BindBuffer(target device.Enum, id uint32) error {
	gl.BindBuffer(uint32(target), id)
	return check()
}

func (d *glDevice) BindBufferBase(target device.Enum, index, id uint32) error {
	gl.BindBufferBase(uint32(target), index, id)
	return check()
}

func (d *glDevice) BufferData(target device.Enum, size int, data unsafe.Pointer, usage device.Enum) error {
	gl.BufferData(uint32(target), size, data, uint32(usage))
	return check()
}

func (d *glDevice) BufferMapped(target device.Enum) (bool, error) {
	var mapped int32
	gl.GetBufferParameteriv(uint32(target), gl.BUFFER_MAPPED, &mapped)
	return mapped != gl.FALSE, check()
}

func (d *glDevice) BufferMapPointer(target device.Enum) (unsafe.Pointer, error) {
	var ptr unsafe.Pointer
	gl.GetBufferPointerv(uint32(target), gl.BUFFER_MAP_POINTER, &ptr)
	return ptr, check()
}

func (d *glDevice) MapBufferRange(target device.Enum, offset, length int, access device.Enum) (unsafe.Pointer, error) {
	ptr := gl.MapBufferRange(uint32(target), offset, length, uint32(access))
	return ptr, check()
}

func (d *glDevice) UnmapBuffer(target device.Enum) (bool, error) {
	ok := gl.UnmapBuffer(uint32(target))
	return ok, check()
}

func (d *glDevice) GenVertexArray() (uint32, error) {
	var id uint32
	gl.GenVertexArrays(1, &id)
	return id, check()
}

func (d *glDevice) DeleteVertexArray(id uint32) error {
	gl.DeleteVertexArrays(1, &id)
	return check()
}

func (d *glDevice) BindVertexArray(id uint32) error {
	gl.BindVertexArray(id)
	return check()
}

func (d *glDevice) EnableVertexAttribArray(index uint32) error {
	gl.EnableVertexAttribArray(index)
	return check()
}

func (d *glDevice) VertexAttribPointer(index uint32, size int32, xtype device.Enum, normalized bool, stride int32, offset uintptr) error {
	gl.VertexAttribPointerWithOffset(index, size, uint32(xtype), normalized, stride, offset)
	return check()
}

func (d *glDevice) VertexAttribIPointer(index uint32, size int32, xtype device.Enum, stride int32, offset uintptr) error {
	gl.VertexAttribIPointerWithOffset(index, size, uint32(xtype), stride, offset)
	return check()
}

func (d *glDevice) CreateShader(stage device.Enum) (uint32, error) {
	id := gl.CreateShader(uint32(stage))
	return id, check()
}

func (d *glDevice) ShaderSource(id uint32, source string) error {
	csrc, free := gl.Strs(source + "\x00")
	defer free()
	gl.ShaderSource(id, 1, csrc, nil)
	return check()
}

func (d *glDevice) CompileShader(id uint32) error {
	gl.CompileShader(id)
	return check()
}

func (d *glDevice) ShaderParameter(id uint32, pname device.Enum) (int32, error) {
	var v int32
	gl.GetShaderiv(id, uint32(pname), &v)
	return v, check()
}

func (d *glDevice) ShaderInfoLog(id uint32) (string, error) {
	var length int32
	gl.GetShaderiv(id, gl.INFO_LOG_LENGTH, &length)
	if err := check(); err != nil || length == 0 {
		return "", err
	}
	log := strings.Repeat("\x00", int(length+1))
	gl.GetShaderInfoLog(id, length, nil, gl.Str(log))
	return strings.TrimRight(log, "\x00"), check()
}

func (d *glDevice) DeleteShader(id uint32) error {
	gl.DeleteShader(id)
	return check()
}

func (d *glDevice) CreateProgram() (uint32, error) {
	id := gl.CreateProgram()
	return id, check()
}

func (d *glDevice) AttachShader(program, shader uint32) error {
	gl.AttachShader(program, shader)
	return check()
}

func (d *glDevice) LinkProgram(program uint32) error {
	gl.LinkProgram(program)
	return check()
}

func (d *glDevice) ValidateProgram(program uint32) error {
	gl.ValidateProgram(program)
	return check()
}

func (d *glDevice) ProgramParameter(program uint32, pname device.Enum) (int32, error) {
	var v int32
	gl.GetProgramiv(program, uint32(pname), &v)
	return v, check()
}

func (d *glDevice) ProgramInfoLog(program uint32) (string, error) {
	var length int32
	gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &length)
	if err := check(); err != nil || length == 0 {
		return "", err
	}
	log := strings.Repeat("\x00", int(length+1))
	gl.GetProgramInfoLog(program, length, nil, gl.Str(log))
	return strings.TrimRight(log, "\x00"), check()
}

func (d *glDevice) UseProgram(program uint32) error {
	gl.UseProgram(program)
	return check()
}

func (d *glDevice) DeleteProgram(program uint32) error {
	gl.DeleteProgram(program)
	return check()
}

func (d *glDevice) UniformLocation(program uint32, name string) (int32, error) {
	loc := gl.GetUniformLocation(program, gl.Str(name+"\x00"))
	return loc, check()
}

func (d *glDevice) ProgramResourceIndex(program uint32, iface device.Enum, name string) (uint32, error) {
	idx := gl.GetProgramResourceIndex(program, uint32(iface), gl.Str(name+"\x00"))
	return idx, check()
}

func (d *glDevice) ShaderStorageBlockBinding(program, blockIndex, binding uint32) error {
	gl.ShaderStorageBlockBinding(program, blockIndex, binding)
	return check()
}

func (d *glDevice) UniformBlockBinding(program, blockIndex, binding uint32) error {
	gl.UniformBlockBinding(program, blockIndex, binding)
	return check()
}

func (d *glDevice) ProgramUniform(program uint32, location int32, shape device.UniformShape, count int32, data unsafe.Pointer) error {
	if err := programUniform(program, location, shape, count, data); err != nil {
		return err
	}
	return check()
}

func (d *glDevice) GenTexture() (uint32, error) {
	var id uint32
	gl.GenTextures(1, &id)
	return id, check()
}

func (d *glDevice) DeleteTexture(id uint32) error {
	gl.DeleteTextures(1, &id)
	return check()
}

func (d *glDevice) ActiveTexture(unit device.Enum) error {
	gl.ActiveTexture(uint32(unit))
	return check()
}

func (d *glDevice) BindTexture(target device.Enum, id uint32) error {
	gl.BindTexture(uint32(target), id)
	return check()
}

func (d *glDevice) TexParameter(target device.Enum, pname device.Enum, param int32) error {
	gl.TexParameteri(uint32(target), uint32(pname), param)
	return check()
}

func (d *glDevice) TexImage2D(target device.Enum, level int32, internalFormat device.Enum, width, height int32, format, xtype device.Enum, pixels unsafe.Pointer) error {
	gl.TexImage2D(uint32(target), level, int32(internalFormat), width, height, 0, uint32(format), uint32(xtype), pixels)
	return check()
}

func (d *glDevice) Viewport(x, y, width, height int32) error {
	gl.Viewport(x, y, width, height)
	return check()
}

func (d *glDevice) ClearColor(r, g, b, a float32) error {
	gl.ClearColor(r, g, b, a)
	return check()
}

func (d *glDevice) Clear(mask device.Enum) error {
	gl.Clear(uint32(mask))
	return check()
}

func (d *glDevice) DrawArraysInstanced(mode device.Enum, first, count, instances int32) error {
	gl.DrawArraysInstanced(uint32(mode), first, count, instances)
	return check()
}
