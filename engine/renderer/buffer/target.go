package buffer

import "github.com/Carmen-Shannon/oxy-tiles/engine/device"

// Target is a buffer binding target kind. The set of targets is closed: only the marker
// types declared in this package implement it, so a Buffer can never be bound to a target
// the device does not define.
type Target interface {
	target() device.Enum
}

// IndexedTarget is a Target that also has numbered binding points.
type IndexedTarget interface {
	Target
	indexed()
}

type (
	// Array is the vertex attribute target (GL_ARRAY_BUFFER).
	Array struct{}

	// Element is the vertex index target (GL_ELEMENT_ARRAY_BUFFER).
	Element struct{}

	// Uniform is the uniform block target (GL_UNIFORM_BUFFER).
	Uniform struct{}

	// PixelPack is the pixel read-back target (GL_PIXEL_PACK_BUFFER).
	PixelPack struct{}

	// PixelUnpack is the pixel upload target (GL_PIXEL_UNPACK_BUFFER).
	PixelUnpack struct{}

	// Query is the query result target (GL_QUERY_BUFFER).
	Query struct{}

	// ShaderStorage is the shader storage block target (GL_SHADER_STORAGE_BUFFER).
	ShaderStorage struct{}

	// Texture is the texel buffer target (GL_TEXTURE_BUFFER).
	Texture struct{}

	// TransformFeedback is the transform feedback target (GL_TRANSFORM_FEEDBACK_BUFFER).
	TransformFeedback struct{}

	// AtomicCounter is the atomic counter target (GL_ATOMIC_COUNTER_BUFFER).
	AtomicCounter struct{}
)

func (Array) target() device.Enum             { return device.ArrayBuffer }
func (Element) target() device.Enum           { return device.ElementArrayBuffer }
func (Uniform) target() device.Enum           { return device.UniformBuffer }
func (PixelPack) target() device.Enum         { return device.PixelPackBuffer }
func (PixelUnpack) target() device.Enum       { return device.PixelUnpackBuffer }
func (Query) target() device.Enum             { return device.QueryBuffer }
func (ShaderStorage) target() device.Enum     { return device.ShaderStorageBuffer }
func (Texture) target() device.Enum           { return device.TextureBuffer }
func (TransformFeedback) target() device.Enum { return device.TransformFeedbackBuffer }
func (AtomicCounter) target() device.Enum     { return device.AtomicCounterBuffer }

func (Uniform) indexed()           {}
func (ShaderStorage) indexed()     {}
func (TransformFeedback) indexed() {}
func (AtomicCounter) indexed()     {}

// TargetOf returns the device binding target of a target kind.
func TargetOf[B Target]() device.Enum {
	var b B
	return b.target()
}
