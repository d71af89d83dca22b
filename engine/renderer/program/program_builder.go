package program

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-tiles/engine/device"
	"github.com/Carmen-Shannon/oxy-tiles/engine/renderer/shader"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// ErrProgramCreation is returned when the device hands out no program object.
var ErrProgramCreation = eris.New("device did not create a program object")

// LinkError carries the info log of a program that failed to link or validate.
type LinkError struct {
	// Validate is true if linking succeeded and validation failed.
	Validate bool

	// Log is the program info log.
	Log string
}

func (e *LinkError) Error() string {
	step := "link"
	if e.Validate {
		step = "validate"
	}
	return fmt.Sprintf("program failed to %s: %s", step, e.Log)
}

// ProgramBuilderOption is a functional option used to configure a ProgramBuilder during construction.
type ProgramBuilderOption func(*ProgramBuilder)

// WithGeometryShader adds a geometry stage between the vertex (or tessellation) and
// fragment stages.
//
// Parameters:
//   - s: the geometry shader, which must be of StageGeometry
//
// Returns:
//   - ProgramBuilderOption: a function that sets the geometry shader for this program
func WithGeometryShader(s shader.Shader) ProgramBuilderOption {
	return func(b *ProgramBuilder) {
		mustStage(s, shader.StageGeometry)
		b.geometry = s
	}
}

// WithTessellation adds the tessellation control and evaluation stages. The two stages
// only make sense together.
//
// Parameters:
//   - control: the tessellation control shader, which must be of StageTessControl
//   - evaluation: the tessellation evaluation shader, which must be of StageTessEvaluation
//
// Returns:
//   - ProgramBuilderOption: a function that sets the tessellation shaders for this program
func WithTessellation(control, evaluation shader.Shader) ProgramBuilderOption {
	return func(b *ProgramBuilder) {
		mustStage(control, shader.StageTessControl)
		mustStage(evaluation, shader.StageTessEvaluation)
		b.tessControl, b.tessEvaluation = control, evaluation
	}
}

// WithLogger sets the logger used to report build progress and unresolved storage blocks.
//
// Parameters:
//   - logger: the logger to use
//
// Returns:
//   - ProgramBuilderOption: a function that sets the logger for this program
func WithLogger(logger zerolog.Logger) ProgramBuilderOption {
	return func(b *ProgramBuilder) {
		b.logger = logger
	}
}

func mustStage(s shader.Shader, want shader.Stage) {
	if s.Stage() != want {
		panic(fmt.Sprintf("program: shader %s is a %s shader, expected %s", s.Key(), s.Stage(), want))
	}
}

// ProgramBuilder collects the shaders of a program. It owns a device program object that
// has not been linked yet; Build consumes it.
type ProgramBuilder struct {
	dev    device.Device
	id     uint32
	logger zerolog.Logger

	vertex, fragment            shader.Shader
	tessControl, tessEvaluation shader.Shader
	geometry                    shader.Shader

	built bool
}

// NewProgramBuilder creates a device program object for a pipeline made of at least a
// vertex and a fragment shader.
//
// Parameters:
//   - dev: the device that owns the program
//   - vertex: the vertex shader, which must be of StageVertex
//   - fragment: the fragment shader, which must be of StageFragment
//   - opts: optional stages and settings
//
// Returns:
//   - *ProgramBuilder: the builder in its collecting state
//   - error: ErrProgramCreation or the device error if no program object was created
func NewProgramBuilder(dev device.Device, vertex, fragment shader.Shader, opts ...ProgramBuilderOption) (*ProgramBuilder, error) {
	mustStage(vertex, shader.StageVertex)
	mustStage(fragment, shader.StageFragment)
	b := &ProgramBuilder{
		dev:      dev,
		logger:   zerolog.Nop(),
		vertex:   vertex,
		fragment: fragment,
	}
	for _, opt := range opts {
		opt(b)
	}

	id, err := dev.CreateProgram()
	if err != nil {
		return nil, eris.Wrap(err, "failed to create program")
	}
	if id == 0 {
		return nil, ErrProgramCreation
	}
	b.id = id
	return b, nil
}

// stages returns the shaders in attach order.
func (b *ProgramBuilder) stages() []shader.Shader {
	out := []shader.Shader{b.vertex}
	if b.tessControl != nil {
		out = append(out, b.tessControl, b.tessEvaluation)
	}
	if b.geometry != nil {
		out = append(out, b.geometry)
	}
	return append(out, b.fragment)
}

// Build compiles and attaches every stage, links and validates the program, then calls
// resolve with a UniformBlockBuilder bound to the linked program. The environment
// resolve returns is the only way to reach the program's uniforms afterwards.
//
// On any failure the device program object is deleted. Build panics if called twice.
//
// Parameters:
//   - b: the builder to consume
//   - resolve: looks up every uniform and block the environment needs
//
// Returns:
//   - *Program[E]: the linked program with its environment
//   - error: a *shader.CompileError, *LinkError, *NameError, device error or the
//     error returned by resolve
func Build[E any](b *ProgramBuilder, resolve func(*UniformBlockBuilder) (E, error)) (*Program[E], error) {
	if b.built {
		panic(fmt.Sprintf("program: builder of program %d used twice", b.id))
	}
	b.built = true

	env, err := build(b, resolve)
	if err != nil {
		if delErr := b.dev.DeleteProgram(b.id); delErr != nil {
			b.logger.Error().Err(delErr).Uint32("program", b.id).Msg("failed to delete program after build failure")
		}
		return nil, err
	}
	return &Program[E]{dev: b.dev, id: b.id, env: env}, nil
}

func build[E any](b *ProgramBuilder, resolve func(*UniformBlockBuilder) (E, error)) (E, error) {
	var zero E
	declared := make(map[string]string)
	for _, s := range b.stages() {
		c, err := shader.Compile(b.dev, s)
		if err != nil {
			return zero, err
		}
		err = b.dev.AttachShader(b.id, c.ID())
		// The program keeps attached shader objects alive.
		if relErr := c.Release(); relErr != nil && err == nil {
			err = relErr
		}
		if err != nil {
			return zero, eris.Wrapf(err, "failed to attach shader %s to program %d", s.Key(), b.id)
		}
		for _, d := range s.Declarations() {
			declared[d.Binding()] = s.Key()
		}
	}

	if err := b.link(); err != nil {
		return zero, err
	}
	b.logger.Debug().Uint32("program", b.id).Int("stages", len(b.stages())).Msg("program linked")

	ub := &UniformBlockBuilder{dev: b.dev, program: b.id, resolved: make(map[string]bool)}
	env, err := resolve(ub)
	if err != nil {
		ub.releaseAll(b.logger)
		return zero, err
	}
	for name, key := range declared {
		if !ub.resolved[name] {
			b.logger.Warn().Str("block", name).Str("shader", key).Uint32("program", b.id).Msg("storage block declared but not resolved")
		}
	}
	return env, nil
}

func (b *ProgramBuilder) link() error {
	if err := b.dev.LinkProgram(b.id); err != nil {
		return eris.Wrapf(err, "failed to link program %d", b.id)
	}
	if err := b.status(device.LinkStatus, false); err != nil {
		return err
	}
	if err := b.dev.ValidateProgram(b.id); err != nil {
		return eris.Wrapf(err, "failed to validate program %d", b.id)
	}
	return b.status(device.ValidateStatus, true)
}

func (b *ProgramBuilder) status(pname device.Enum, validate bool) error {
	ok, err := b.dev.ProgramParameter(b.id, pname)
	if err != nil {
		return eris.Wrapf(err, "failed to query %s of program %d", pname, b.id)
	}
	if ok != 0 {
		return nil
	}
	log, err := b.dev.ProgramInfoLog(b.id)
	if err != nil {
		return eris.Wrapf(err, "failed to read info log of program %d", b.id)
	}
	return &LinkError{Validate: validate, Log: log}
}
