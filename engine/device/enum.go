package device

import "fmt"

// Enum is an OpenGL enumeration value. The constants below carry the numeric values
// defined by the OpenGL 4.3 core profile so that backends can pass them straight through.
//
// Reference: https://registry.khronos.org/OpenGL/api/GL/glcorearb.h
type Enum uint32

// Error codes reported by glGetError.
const (
	NoError                     Enum = 0
	InvalidEnum                 Enum = 0x0500
	InvalidValue                Enum = 0x0501
	InvalidOperation            Enum = 0x0502
	StackOverflow               Enum = 0x0503
	StackUnderflow              Enum = 0x0504
	OutOfMemory                 Enum = 0x0505
	InvalidFramebufferOperation Enum = 0x0506
)

// Buffer binding targets.
const (
	ArrayBuffer             Enum = 0x8892
	ElementArrayBuffer      Enum = 0x8893
	PixelPackBuffer         Enum = 0x88EB
	PixelUnpackBuffer       Enum = 0x88EC
	UniformBuffer           Enum = 0x8A11
	TextureBuffer           Enum = 0x8C2A
	TransformFeedbackBuffer Enum = 0x8C8E
	ShaderStorageBuffer     Enum = 0x90D2
	QueryBuffer             Enum = 0x9192
	AtomicCounterBuffer     Enum = 0x92C0
)

// Buffer usage hints.
const (
	StreamDraw  Enum = 0x88E0
	StreamRead  Enum = 0x88E1
	StreamCopy  Enum = 0x88E2
	StaticDraw  Enum = 0x88E4
	StaticRead  Enum = 0x88E5
	StaticCopy  Enum = 0x88E6
	DynamicDraw Enum = 0x88E8
	DynamicRead Enum = 0x88E9
	DynamicCopy Enum = 0x88EA
)

// Buffer mapping.
const (
	MapReadBit  Enum = 0x0001
	MapWriteBit Enum = 0x0002

	BufferMapped     Enum = 0x88BC
	BufferMapPointer Enum = 0x88BD
)

// Scalar component types.
const (
	Byte          Enum = 0x1400
	UnsignedByte  Enum = 0x1401
	Short         Enum = 0x1402
	UnsignedShort Enum = 0x1403
	Int           Enum = 0x1404
	UnsignedInt   Enum = 0x1405
	Float         Enum = 0x1406
	Double        Enum = 0x140A
)

// Shader stages.
const (
	FragmentShader       Enum = 0x8B30
	VertexShader         Enum = 0x8B31
	GeometryShader       Enum = 0x8DD9
	TessEvaluationShader Enum = 0x8E87
	TessControlShader    Enum = 0x8E88
	ComputeShader        Enum = 0x91B9
)

// Shader and program object queries.
const (
	CompileStatus  Enum = 0x8B81
	LinkStatus     Enum = 0x8B82
	ValidateStatus Enum = 0x8B83
	InfoLogLength  Enum = 0x8B84
)

// Program interfaces used for resource lookup.
const (
	UniformBlock       Enum = 0x92E2
	ShaderStorageBlock Enum = 0x92E6

	// InvalidIndex is returned by resource index queries for names that are not active.
	InvalidIndex uint32 = 0xFFFFFFFF
)

// Textures.
const (
	Texture2D        Enum = 0x0DE1
	Texture0         Enum = 0x84C0
	TextureMagFilter Enum = 0x2800
	TextureMinFilter Enum = 0x2801
	TextureWrapS     Enum = 0x2802
	TextureWrapT     Enum = 0x2803
	Nearest          Enum = 0x2600
	Linear           Enum = 0x2601
	ClampToEdge      Enum = 0x812F
	RGBA             Enum = 0x1908
	RGBA8            Enum = 0x8058
)

// Drawing.
const (
	Triangles      Enum = 0x0004
	ColorBufferBit Enum = 0x4000
	DepthBufferBit Enum = 0x0100
)

var enumNames = map[Enum]string{
	NoError:                     "NO_ERROR",
	InvalidEnum:                 "INVALID_ENUM",
	InvalidValue:                "INVALID_VALUE",
	InvalidOperation:            "INVALID_OPERATION",
	StackOverflow:               "STACK_OVERFLOW",
	StackUnderflow:              "STACK_UNDERFLOW",
	OutOfMemory:                 "OUT_OF_MEMORY",
	InvalidFramebufferOperation: "INVALID_FRAMEBUFFER_OPERATION",
	ArrayBuffer:                 "ARRAY_BUFFER",
	ElementArrayBuffer:          "ELEMENT_ARRAY_BUFFER",
	PixelPackBuffer:             "PIXEL_PACK_BUFFER",
	PixelUnpackBuffer:           "PIXEL_UNPACK_BUFFER",
	UniformBuffer:               "UNIFORM_BUFFER",
	TextureBuffer:               "TEXTURE_BUFFER",
	TransformFeedbackBuffer:     "TRANSFORM_FEEDBACK_BUFFER",
	ShaderStorageBuffer:         "SHADER_STORAGE_BUFFER",
	QueryBuffer:                 "QUERY_BUFFER",
	AtomicCounterBuffer:         "ATOMIC_COUNTER_BUFFER",
	VertexShader:                "VERTEX_SHADER",
	FragmentShader:              "FRAGMENT_SHADER",
	GeometryShader:              "GEOMETRY_SHADER",
	TessControlShader:           "TESS_CONTROL_SHADER",
	TessEvaluationShader:        "TESS_EVALUATION_SHADER",
	ComputeShader:               "COMPUTE_SHADER",
}

// String returns the OpenGL name of the enum when it is one of the named targets, shader
// stages or error codes, and its hexadecimal value otherwise.
func (e Enum) String() string {
	if name, ok := enumNames[e]; ok {
		return name
	}
	return fmt.Sprintf("0x%04X", uint32(e))
}
