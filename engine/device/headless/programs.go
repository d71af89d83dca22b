package headless

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-tiles/common"
	"github.com/Carmen-Shannon/oxy-tiles/engine/device"
)

var (
	uniformPattern      = regexp.MustCompile(`(?m)^\s*(?:layout\s*\([^)]*\)\s*)?uniform\s+(?:(?:highp|mediump|lowp)\s+)?(\w+)\s+(\w+)\s*(?:\[\s*(\d+)\s*\])?\s*;`)
	uniformBlockPattern = regexp.MustCompile(`(?m)^\s*(?:layout\s*\([^)]*\)\s*)?uniform\s+(\w+)\s*\{`)
	storageBlockPattern = regexp.MustCompile(`(?m)^\s*(?:layout\s*\([^)]*\)\s*)?(?:(?:readonly|writeonly|restrict|coherent|volatile)\s+)*buffer\s+(\w+)\s*\{`)
)

var stages = map[device.Enum]bool{
	device.VertexShader:         true,
	device.FragmentShader:       true,
	device.GeometryShader:       true,
	device.TessControlShader:    true,
	device.TessEvaluationShader: true,
	device.ComputeShader:        true,
}

// glslShapes maps GLSL uniform type names to the upload shape the driver accepts for them.
var glslShapes = map[string]device.UniformShape{
	"float": {Type: device.Float, Components: 1},
	"vec2":  {Type: device.Float, Components: 2},
	"vec3":  {Type: device.Float, Components: 3},
	"vec4":  {Type: device.Float, Components: 4},

	"double": {Type: device.Double, Components: 1},
	"dvec2":  {Type: device.Double, Components: 2},
	"dvec3":  {Type: device.Double, Components: 3},
	"dvec4":  {Type: device.Double, Components: 4},

	"int":   {Type: device.Int, Components: 1},
	"ivec2": {Type: device.Int, Components: 2},
	"ivec3": {Type: device.Int, Components: 3},
	"ivec4": {Type: device.Int, Components: 4},

	"uint":  {Type: device.UnsignedInt, Components: 1},
	"uvec2": {Type: device.UnsignedInt, Components: 2},
	"uvec3": {Type: device.UnsignedInt, Components: 3},
	"uvec4": {Type: device.UnsignedInt, Components: 4},

	"mat2": {Type: device.Float, Components: 2, Matrix: true},
	"mat3": {Type: device.Float, Components: 3, Matrix: true},
	"mat4": {Type: device.Float, Components: 4, Matrix: true},

	"dmat2": {Type: device.Double, Components: 2, Matrix: true},
	"dmat3": {Type: device.Double, Components: 3, Matrix: true},
	"dmat4": {Type: device.Double, Components: 4, Matrix: true},
}

type shaderObject struct {
	id       uint32
	stage    device.Enum
	source   string
	compiled bool
	log      string
}

// Uniform is an active default-block uniform of a linked program and the last value
// uploaded to it.
type Uniform struct {
	Name     string
	Location int32
	GLSLType string
	Size     int32

	// Shape, Count and Value describe the last ProgramUniform call for this location.
	Shape device.UniformShape
	Count int32
	Value []byte
}

// Program is the state of a program object.
type Program struct {
	ID        uint32
	Linked    bool
	Validated bool
	Log       string

	Uniforms      map[string]*Uniform
	UniformBlocks []string
	StorageBlocks []string

	// StorageBindings and UniformBlockBindings hold the binding point assigned to each block.
	StorageBindings      map[string]uint32
	UniformBlockBindings map[string]uint32

	attached []*shaderObject
	byLoc    map[int32]*Uniform
}

// Program returns the state of a live program, or nil.
func (d *Device) Program(id uint32) *Program {
	return d.programs[id]
}

// UniformData returns the last value uploaded to a named uniform reinterpreted as
// elements of type T, or nil if the uniform was never set.
func UniformData[T any](p *Program, name string) []T {
	u := p.Uniforms[name]
	if u == nil {
		return nil
	}
	return slices.Clone(common.BytesToSlice[T](u.Value))
}

func (d *Device) CreateShader(stage device.Enum) (uint32, error) {
	if err := d.begin(); err != nil {
		return 0, err
	}
	if !stages[stage] {
		return 0, d.raise(device.InvalidEnum)
	}
	id := d.name()
	d.shaders[id] = &shaderObject{id: id, stage: stage}
	return id, d.ok("CreateShader")
}

func (d *Device) shader(id uint32) (*shaderObject, error) {
	s := d.shaders[id]
	if s == nil {
		return nil, d.raise(device.InvalidValue)
	}
	return s, nil
}

func (d *Device) ShaderSource(id uint32, source string) error {
	if err := d.begin(); err != nil {
		return err
	}
	s, err := d.shader(id)
	if err != nil {
		return err
	}
	s.source = source
	return d.ok("ShaderSource")
}

func (d *Device) CompileShader(id uint32) error {
	if err := d.begin(); err != nil {
		return err
	}
	s, err := d.shader(id)
	if err != nil {
		return err
	}
	s.compiled, s.log = true, ""
	for i, line := range strings.Split(s.source, "\n") {
		if msg, ok := strings.CutPrefix(strings.TrimSpace(line), "#error"); ok {
			s.compiled = false
			s.log = fmt.Sprintf("ERROR: 0:%d: '#error' : %s", i+1, strings.TrimSpace(msg))
			break
		}
	}
	return d.ok("CompileShader")
}

func (d *Device) ShaderParameter(id uint32, pname device.Enum) (int32, error) {
	if err := d.begin(); err != nil {
		return 0, err
	}
	s, err := d.shader(id)
	if err != nil {
		return 0, err
	}
	switch pname {
	case device.CompileStatus:
		return boolParam(s.compiled), d.ok("ShaderParameter")
	case device.InfoLogLength:
		return logLength(s.log), d.ok("ShaderParameter")
	default:
		return 0, d.raise(device.InvalidEnum)
	}
}

func (d *Device) ShaderInfoLog(id uint32) (string, error) {
	if err := d.begin(); err != nil {
		return "", err
	}
	s, err := d.shader(id)
	if err != nil {
		return "", err
	}
	return s.log, d.ok("ShaderInfoLog")
}

func (d *Device) DeleteShader(id uint32) error {
	if err := d.begin(); err != nil {
		return err
	}
	delete(d.shaders, id)
	return d.ok("DeleteShader")
}

func (d *Device) CreateProgram() (uint32, error) {
	if err := d.begin(); err != nil {
		return 0, err
	}
	id := d.name()
	d.programs[id] = &Program{
		ID:                   id,
		Uniforms:             make(map[string]*Uniform),
		StorageBindings:      make(map[string]uint32),
		UniformBlockBindings: make(map[string]uint32),
		byLoc:                make(map[int32]*Uniform),
	}
	return id, d.ok("CreateProgram")
}

func (d *Device) program(id uint32) (*Program, error) {
	p := d.programs[id]
	if p == nil {
		return nil, d.raise(device.InvalidValue)
	}
	return p, nil
}

func (d *Device) AttachShader(program, shader uint32) error {
	if err := d.begin(); err != nil {
		return err
	}
	p, err := d.program(program)
	if err != nil {
		return err
	}
	s, err := d.shader(shader)
	if err != nil {
		return err
	}
	if slices.Contains(p.attached, s) {
		return d.raise(device.InvalidOperation)
	}
	p.attached = append(p.attached, s)
	return d.ok("AttachShader")
}

func (d *Device) LinkProgram(program uint32) error {
	if err := d.begin(); err != nil {
		return err
	}
	p, err := d.program(program)
	if err != nil {
		return err
	}
	p.Linked, p.Validated, p.Log = false, false, ""
	clear(p.Uniforms)
	clear(p.byLoc)
	p.UniformBlocks, p.StorageBlocks = nil, nil

	if d.failLink != "" {
		p.Log, d.failLink = d.failLink, ""
		return d.ok("LinkProgram")
	}
	present := make(map[device.Enum]bool)
	for _, s := range p.attached {
		if !s.compiled {
			p.Log = fmt.Sprintf("error: %s object %d is not successfully compiled", s.stage, s.id)
			return d.ok("LinkProgram")
		}
		present[s.stage] = true
	}
	if !present[device.ComputeShader] && (!present[device.VertexShader] || !present[device.FragmentShader]) {
		p.Log = "error: program requires a vertex and a fragment shader"
		return d.ok("LinkProgram")
	}

	names := make(map[string]*Uniform)
	blocks := make(map[string]bool)
	storage := make(map[string]bool)
	for _, s := range p.attached {
		for _, m := range uniformPattern.FindAllStringSubmatch(s.source, -1) {
			size := int32(1)
			if m[3] != "" {
				n, _ := strconv.Atoi(m[3])
				size = int32(n)
			}
			names[m[2]] = &Uniform{Name: m[2], GLSLType: m[1], Size: size}
		}
		for _, m := range uniformBlockPattern.FindAllStringSubmatch(s.source, -1) {
			blocks[m[1]] = true
		}
		for _, m := range storageBlockPattern.FindAllStringSubmatch(s.source, -1) {
			storage[m[1]] = true
		}
	}
	sorted := make([]string, 0, len(names))
	for name := range names {
		sorted = append(sorted, name)
	}
	slices.Sort(sorted)
	for i, name := range sorted {
		u := names[name]
		u.Location = int32(i)
		p.Uniforms[name] = u
		p.byLoc[u.Location] = u
	}
	for name := range blocks {
		p.UniformBlocks = append(p.UniformBlocks, name)
	}
	slices.Sort(p.UniformBlocks)
	for name := range storage {
		p.StorageBlocks = append(p.StorageBlocks, name)
	}
	slices.Sort(p.StorageBlocks)

	p.Linked = true
	return d.ok("LinkProgram")
}

func (d *Device) ValidateProgram(program uint32) error {
	if err := d.begin(); err != nil {
		return err
	}
	p, err := d.program(program)
	if err != nil {
		return err
	}
	switch {
	case d.failValidate != "":
		p.Validated, p.Log, d.failValidate = false, d.failValidate, ""
	case !p.Linked:
		p.Validated, p.Log = false, "error: program is not linked"
	default:
		p.Validated = true
	}
	return d.ok("ValidateProgram")
}

func (d *Device) ProgramParameter(program uint32, pname device.Enum) (int32, error) {
	if err := d.begin(); err != nil {
		return 0, err
	}
	p, err := d.program(program)
	if err != nil {
		return 0, err
	}
	switch pname {
	case device.LinkStatus:
		return boolParam(p.Linked), d.ok("ProgramParameter")
	case device.ValidateStatus:
		return boolParam(p.Validated), d.ok("ProgramParameter")
	case device.InfoLogLength:
		return logLength(p.Log), d.ok("ProgramParameter")
	default:
		return 0, d.raise(device.InvalidEnum)
	}
}

func (d *Device) ProgramInfoLog(program uint32) (string, error) {
	if err := d.begin(); err != nil {
		return "", err
	}
	p, err := d.program(program)
	if err != nil {
		return "", err
	}
	return p.Log, d.ok("ProgramInfoLog")
}

func (d *Device) UseProgram(program uint32) error {
	if err := d.begin(); err != nil {
		return err
	}
	if program != 0 {
		p := d.programs[program]
		if p == nil || !p.Linked {
			return d.raise(device.InvalidOperation)
		}
	}
	d.current = program
	return d.ok("UseProgram")
}

func (d *Device) DeleteProgram(program uint32) error {
	if err := d.begin(); err != nil {
		return err
	}
	delete(d.programs, program)
	if d.current == program {
		d.current = 0
	}
	return d.ok("DeleteProgram")
}

func (d *Device) linked(program uint32) (*Program, error) {
	p, err := d.program(program)
	if err != nil {
		return nil, err
	}
	if !p.Linked {
		return nil, d.raise(device.InvalidOperation)
	}
	return p, nil
}

func (d *Device) UniformLocation(program uint32, name string) (int32, error) {
	if err := d.begin(); err != nil {
		return -1, err
	}
	p, err := d.linked(program)
	if err != nil {
		return -1, err
	}
	if u, ok := p.Uniforms[name]; ok {
		return u.Location, d.ok("UniformLocation")
	}
	return -1, d.ok("UniformLocation")
}

func (d *Device) ProgramResourceIndex(program uint32, iface device.Enum, name string) (uint32, error) {
	if err := d.begin(); err != nil {
		return device.InvalidIndex, err
	}
	p, err := d.linked(program)
	if err != nil {
		return device.InvalidIndex, err
	}
	var names []string
	switch iface {
	case device.UniformBlock:
		names = p.UniformBlocks
	case device.ShaderStorageBlock:
		names = p.StorageBlocks
	default:
		return device.InvalidIndex, d.raise(device.InvalidEnum)
	}
	if i := slices.Index(names, name); i >= 0 {
		return uint32(i), d.ok("ProgramResourceIndex")
	}
	return device.InvalidIndex, d.ok("ProgramResourceIndex")
}

func (d *Device) ShaderStorageBlockBinding(program, blockIndex, binding uint32) error {
	if err := d.begin(); err != nil {
		return err
	}
	p, err := d.linked(program)
	if err != nil {
		return err
	}
	if int(blockIndex) >= len(p.StorageBlocks) {
		return d.raise(device.InvalidValue)
	}
	p.StorageBindings[p.StorageBlocks[blockIndex]] = binding
	return d.ok("ShaderStorageBlockBinding")
}

func (d *Device) UniformBlockBinding(program, blockIndex, binding uint32) error {
	if err := d.begin(); err != nil {
		return err
	}
	p, err := d.linked(program)
	if err != nil {
		return err
	}
	if int(blockIndex) >= len(p.UniformBlocks) {
		return d.raise(device.InvalidValue)
	}
	p.UniformBlockBindings[p.UniformBlocks[blockIndex]] = binding
	return d.ok("UniformBlockBinding")
}

func (d *Device) ProgramUniform(program uint32, location int32, shape device.UniformShape, count int32, data unsafe.Pointer) error {
	if err := d.begin(); err != nil {
		return err
	}
	p, err := d.linked(program)
	if err != nil {
		return err
	}
	if count < 0 {
		return d.raise(device.InvalidValue)
	}
	if location == -1 {
		return d.ok("ProgramUniform")
	}
	u := p.byLoc[location]
	if u == nil {
		return d.raise(device.InvalidOperation)
	}
	if want, ok := glslShapes[u.GLSLType]; ok && want != shape {
		return d.raise(device.InvalidOperation)
	}
	if strings.HasPrefix(u.GLSLType, "sampler") && (shape.Type != device.Int || shape.Components != 1 || shape.Matrix) {
		return d.raise(device.InvalidOperation)
	}
	if count > u.Size {
		return d.raise(device.InvalidOperation)
	}
	n := int(count) * shapeBytes(shape)
	u.Shape, u.Count = shape, count
	u.Value = make([]byte, n)
	if n > 0 {
		copy(u.Value, unsafe.Slice((*byte)(data), n))
	}
	return d.ok("ProgramUniform")
}

func shapeBytes(shape device.UniformShape) int {
	scalar := 4
	if shape.Type == device.Double {
		scalar = 8
	}
	n := int(shape.Components)
	if shape.Matrix {
		n *= n
	}
	return n * scalar
}

func boolParam(v bool) int32 {
	if v {
		return 1
	}
	return 0
}

func logLength(log string) int32 {
	if log == "" {
		return 0
	}
	return int32(len(log) + 1)
}
