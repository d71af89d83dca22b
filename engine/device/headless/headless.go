// Package headless implements device.Device in memory. It keeps OpenGL object lifetimes,
// binding state, buffer stores, mappings, shader and program status, uniform values and
// draw calls, and reports the same error codes a core profile driver reports for misuse.
// It is used by the renderer tests and by tools that run without a window.
//
// Active uniforms and blocks are discovered from the GLSL source of the attached shaders
// at link time. A source line starting with #error fails compilation with the rest of the
// line as the info log.
package headless

import (
	"slices"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-tiles/common"
	"github.com/Carmen-Shannon/oxy-tiles/engine/device"
)

// Buffer is the state of a buffer object.
type Buffer struct {
	ID     uint32
	Usage  device.Enum
	Size   int
	Mapped bool

	// Uploads counts BufferData calls that targeted this buffer.
	Uploads int

	store       []uint64
	mapPtr      unsafe.Pointer
	invalidated bool
}

// Bytes returns the current contents of the data store.
func (b *Buffer) Bytes() []byte {
	if b.Size == 0 {
		return nil
	}
	return common.SliceToBytes(b.store)[:b.Size]
}

// Attrib is a described vertex attribute slot.
type Attrib struct {
	Index      uint32
	Size       int32
	Type       device.Enum
	Normalized bool
	Integer    bool
	Stride     int32
	Offset     uintptr
	Buffer     uint32
	Enabled    bool
}

// VertexArray is the state of a vertex array object.
type VertexArray struct {
	ID      uint32
	Attribs map[uint32]*Attrib
}

// Texture is the state of a texture object.
type Texture struct {
	ID             uint32
	Width, Height  int32
	InternalFormat device.Enum
	Params         map[device.Enum]int32
	Pixels         []byte
}

// Draw is a recorded DrawArraysInstanced call together with the binding state it used.
type Draw struct {
	Mode        device.Enum
	First       int32
	Count       int32
	Instances   int32
	Program     uint32
	VertexArray uint32
	ArrayBuffer uint32
	Texture     uint32
}

type indexedKey struct {
	target device.Enum
	index  uint32
}

// Device is an in-memory device.Device. The zero value is not usable; call New.
type Device struct {
	nextName uint32
	injected device.Enum

	buffers      map[uint32]*Buffer
	bound        map[device.Enum]uint32
	boundIndexed map[indexedKey]uint32

	vertexArrays map[uint32]*VertexArray
	boundArray   uint32

	shaders  map[uint32]*shaderObject
	programs map[uint32]*Program
	current  uint32

	failLink     string
	failValidate string

	textures      map[uint32]*Texture
	activeUnit    device.Enum
	boundTextures map[device.Enum]uint32

	clearColor [4]float32
	viewport   [4]int32
	clears     int
	draws      []Draw
	calls      []string
}

var _ device.Device = &Device{}

// New creates an empty headless device.
func New() *Device {
	return &Device{
		nextName:      1,
		buffers:       make(map[uint32]*Buffer),
		bound:         make(map[device.Enum]uint32),
		boundIndexed:  make(map[indexedKey]uint32),
		vertexArrays:  make(map[uint32]*VertexArray),
		shaders:       make(map[uint32]*shaderObject),
		programs:      make(map[uint32]*Program),
		textures:      make(map[uint32]*Texture),
		activeUnit:    device.Texture0,
		boundTextures: make(map[device.Enum]uint32),
	}
}

// InjectError makes the next device call fail with code and have no other effect.
func (d *Device) InjectError(code device.Enum) {
	d.injected = code
}

// FailNextLink makes the next LinkProgram fail with the given info log.
func (d *Device) FailNextLink(log string) {
	d.failLink = log
}

// FailNextValidate makes the next ValidateProgram fail with the given info log.
func (d *Device) FailNextValidate(log string) {
	d.failValidate = log
}

// Invalidate marks the data store of a mapped buffer as corrupted, as a driver does when
// the store is lost while mapped. The next UnmapBuffer of that buffer reports false.
func (d *Device) Invalidate(id uint32) {
	if b, ok := d.buffers[id]; ok {
		b.invalidated = true
	}
}

// Buffer returns the state of a live buffer, or nil.
func (d *Device) Buffer(id uint32) *Buffer {
	return d.buffers[id]
}

// LiveBuffers returns the number of buffer objects that have not been deleted.
func (d *Device) LiveBuffers() int {
	return len(d.buffers)
}

// Bound returns the buffer bound to a global target.
func (d *Device) Bound(target device.Enum) uint32 {
	return d.bound[target]
}

// BoundBase returns the buffer bound to a numbered binding point of an indexed target.
func (d *Device) BoundBase(target device.Enum, index uint32) uint32 {
	return d.boundIndexed[indexedKey{target: target, index: index}]
}

// VertexArray returns the state of a live vertex array, or nil.
func (d *Device) VertexArray(id uint32) *VertexArray {
	return d.vertexArrays[id]
}

// BoundVertexArray returns the current vertex array.
func (d *Device) BoundVertexArray() uint32 {
	return d.boundArray
}

// Texture returns the state of a live texture, or nil.
func (d *Device) Texture(id uint32) *Texture {
	return d.textures[id]
}

// BoundTexture returns the texture bound to a texture unit, where unit is Texture0+n.
func (d *Device) BoundTexture(unit device.Enum) uint32 {
	return d.boundTextures[unit]
}

// ActiveUnit returns the texture unit selected by ActiveTexture.
func (d *Device) ActiveUnit() device.Enum {
	return d.activeUnit
}

// CurrentProgram returns the program made current by UseProgram.
func (d *Device) CurrentProgram() uint32 {
	return d.current
}

// Draws returns the recorded draw calls.
func (d *Device) Draws() []Draw {
	return slices.Clone(d.draws)
}

// Clears returns the number of Clear calls.
func (d *Device) Clears() int {
	return d.clears
}

// ViewportRect returns the last viewport rectangle.
func (d *Device) ViewportRect() [4]int32 {
	return d.viewport
}

// Calls returns the names of the successful device calls in issue order.
func (d *Device) Calls() []string {
	return slices.Clone(d.calls)
}

// ResetCalls clears the call log.
func (d *Device) ResetCalls() {
	d.calls = d.calls[:0]
}

// Contents returns a copy of a buffer's data store reinterpreted as elements of type T.
func Contents[T any](d *Device, id uint32) []T {
	b := d.buffers[id]
	if b == nil {
		return nil
	}
	return slices.Clone(common.BytesToSlice[T](b.Bytes()))
}

// begin consumes an injected error. A non-nil result means the call must have no effect.
func (d *Device) begin() error {
	if d.injected == device.NoError {
		return nil
	}
	code := d.injected
	d.injected = device.NoError
	return device.Check(code)
}

// ok records a successful call.
func (d *Device) ok(name string) error {
	d.calls = append(d.calls, name)
	return nil
}

// raise reports a misuse error code through the device error mapping.
func (d *Device) raise(code device.Enum) error {
	return device.Check(code)
}

func (d *Device) name() uint32 {
	n := d.nextName
	d.nextName++
	return n
}
