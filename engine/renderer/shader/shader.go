package shader

import (
	"fmt"
	"os"

	"github.com/Carmen-Shannon/oxy-tiles/engine/device"
	"github.com/rotisserie/eris"
)

// Stage identifies the pipeline stage a shader runs in.
type Stage int

const (
	// StageVertex processes each vertex of a draw.
	StageVertex Stage = iota

	// StageFragment shades each fragment produced by rasterization.
	StageFragment

	// StageGeometry runs once per primitive between the vertex and fragment stages.
	StageGeometry

	// StageTessControl sets tessellation levels per patch.
	StageTessControl

	// StageTessEvaluation positions the vertices generated by the tessellator.
	StageTessEvaluation

	// StageCompute runs outside the draw pipeline.
	StageCompute
)

var stageEnums = [...]device.Enum{
	StageVertex:         device.VertexShader,
	StageFragment:       device.FragmentShader,
	StageGeometry:       device.GeometryShader,
	StageTessControl:    device.TessControlShader,
	StageTessEvaluation: device.TessEvaluationShader,
	StageCompute:        device.ComputeShader,
}

var stageNames = [...]string{
	StageVertex:         "vertex",
	StageFragment:       "fragment",
	StageGeometry:       "geometry",
	StageTessControl:    "tess_control",
	StageTessEvaluation: "tess_evaluation",
	StageCompute:        "compute",
}

// Enum returns the device shader type of the stage.
func (s Stage) Enum() device.Enum {
	return stageEnums[s]
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return fmt.Sprintf("Stage(%d)", int(s))
	}
	return stageNames[s]
}

// ErrShaderCreation is returned when the device hands out no shader object.
var ErrShaderCreation = eris.New("device did not create a shader object")

// CompileError carries the info log of a shader that failed to compile.
type CompileError struct {
	Key   string
	Stage Stage
	Log   string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("shader %s (%s) failed to compile: %s", e.Key, e.Stage, e.Log)
}

// shader is the implementation of the Shader interface.
type shader struct {
	key    string
	source string
	stage  Stage

	pp PreProcessor
}

// Shader is a pre-processed GLSL source for one pipeline stage. It holds no device
// object; Compile turns it into one.
type Shader interface {
	// Key retrieves the unique identifier for this shader, used in logs and errors.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Source retrieves the pre-processed GLSL source code.
	//
	// Returns:
	//   - string: the GLSL source with every annotation expanded
	Source() string

	// Stage returns the pipeline stage of the shader.
	//
	// Returns:
	//   - Stage: the stage the shader was created for
	Stage() Stage

	// Declarations returns the storage block annotations parsed from the shader source.
	// The program builder uses them to report blocks that were declared but never resolved.
	//
	// Returns:
	//   - []Annotation: the storage annotations in source order
	Declarations() []Annotation
}

var _ Shader = &shader{}

// NewShader creates a Shader from GLSL source. The source is pre-processed immediately;
// an empty source or a malformed annotation is a programming error and panics.
//
// Parameters:
//   - key: a unique identifier for the shader, used in logs and errors
//   - stage: the pipeline stage of the shader
//   - source: the GLSL source, possibly containing @oxy: annotations
//
// Returns:
//   - Shader: the pre-processed shader
func NewShader(key string, stage Stage, source string) Shader {
	if source == "" {
		panic(fmt.Sprintf("shader: %s must have a non-empty source", key))
	}
	s := &shader{
		key:   key,
		stage: stage,
		pp:    NewPreProcessor(),
	}
	var err error
	s.source, err = s.pp.Process(source)
	if err != nil {
		panic(fmt.Sprintf("shader: failed to pre-process shader source %q: %v", key, err))
	}
	return s
}

// NewShaderFromPath is like NewShader but reads the source from a file.
//
// Parameters:
//   - key: a unique identifier for the shader
//   - stage: the pipeline stage of the shader
//   - path: the file path to read GLSL source from
//
// Returns:
//   - Shader: the pre-processed shader
func NewShaderFromPath(key string, stage Stage, path string) Shader {
	data, err := os.ReadFile(path)
	if err != nil {
		panic(fmt.Sprintf("shader: failed to read source file %q: %v", path, err))
	}
	return NewShader(key, stage, string(data))
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) Stage() Stage {
	return s.stage
}

func (s *shader) Declarations() []Annotation {
	return s.pp.Declarations()
}

// Compiled is a successfully compiled device shader object.
type Compiled struct {
	dev   device.Device
	id    uint32
	key   string
	stage Stage
}

// Compile creates a device shader object for s, uploads its source and compiles it.
//
// Parameters:
//   - dev: the device to compile on
//   - s: the shader to compile
//
// Returns:
//   - *Compiled: the compiled shader object
//   - error: ErrShaderCreation, a *CompileError with the info log, or a device error
func Compile(dev device.Device, s Shader) (*Compiled, error) {
	id, err := dev.CreateShader(s.Stage().Enum())
	if err != nil {
		return nil, eris.Wrapf(err, "failed to create %s shader %s", s.Stage(), s.Key())
	}
	if id == 0 {
		return nil, eris.Wrapf(ErrShaderCreation, "%s shader %s", s.Stage(), s.Key())
	}
	c := &Compiled{dev: dev, id: id, key: s.Key(), stage: s.Stage()}
	if err := dev.ShaderSource(id, s.Source()); err != nil {
		_ = c.Release()
		return nil, eris.Wrapf(err, "failed to upload source of shader %s", s.Key())
	}
	if err := dev.CompileShader(id); err != nil {
		_ = c.Release()
		return nil, eris.Wrapf(err, "failed to compile shader %s", s.Key())
	}
	status, err := dev.ShaderParameter(id, device.CompileStatus)
	if err != nil {
		_ = c.Release()
		return nil, eris.Wrapf(err, "failed to query compile status of shader %s", s.Key())
	}
	if status == 0 {
		log, err := dev.ShaderInfoLog(id)
		_ = c.Release()
		if err != nil {
			return nil, eris.Wrapf(err, "failed to read info log of shader %s", s.Key())
		}
		return nil, &CompileError{Key: s.Key(), Stage: s.Stage(), Log: log}
	}
	return c, nil
}

// ID returns the device name of the shader object.
func (c *Compiled) ID() uint32 {
	return c.id
}

// Key returns the key of the shader the object was compiled from.
func (c *Compiled) Key() string {
	return c.key
}

// Stage returns the pipeline stage of the shader object.
func (c *Compiled) Stage() Stage {
	return c.stage
}

// Release deletes the shader object. Attached shaders stay alive until their program is deleted.
func (c *Compiled) Release() error {
	if c.id == 0 {
		return nil
	}
	id := c.id
	c.id = 0
	return c.dev.DeleteShader(id)
}
