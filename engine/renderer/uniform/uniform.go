// Package uniform provides typed handles to default-block uniforms of a linked program.
//
// The Go type of a handle selects the device upload: scalars, vectors of one to four
// components, square matrices and slices of any of these for array uniforms. The upload
// shape is derived once when the handle is created, so setting a value performs no
// lookups.
package uniform

import (
	"fmt"
	"reflect"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-tiles/engine/device"
	"github.com/rotisserie/eris"
)

// Matrices are stored column-major, matching GLSL.
type (
	Mat2  [4]float32
	Mat3  [9]float32
	Mat4  [16]float32
	Mat2d [4]float64
	Mat3d [9]float64
	Mat4d [16]float64
)

// Element is a single uniform value: a scalar, a vector or a matrix.
type Element interface {
	float32 | [1]float32 | [2]float32 | [3]float32 | [4]float32 |
		float64 | [1]float64 | [2]float64 | [3]float64 | [4]float64 |
		int32 | [1]int32 | [2]int32 | [3]int32 | [4]int32 |
		uint32 | [1]uint32 | [2]uint32 | [3]uint32 | [4]uint32 |
		Mat2 | Mat3 | Mat4 | Mat2d | Mat3d | Mat4d
}

// Array is a slice of elements, uploaded to an array uniform.
type Array interface {
	[]float32 | [][1]float32 | [][2]float32 | [][3]float32 | [][4]float32 |
		[]float64 | [][1]float64 | [][2]float64 | [][3]float64 | [][4]float64 |
		[]int32 | [][1]int32 | [][2]int32 | [][3]int32 | [][4]int32 |
		[]uint32 | [][1]uint32 | [][2]uint32 | [][3]uint32 | [][4]uint32 |
		[]Mat2 | []Mat3 | []Mat4 | []Mat2d | []Mat3d | []Mat4d
}

// Value is any type a Uniform can hold.
type Value interface {
	Element | Array
}

var scalarTypes = map[reflect.Kind]device.Enum{
	reflect.Float32: device.Float,
	reflect.Float64: device.Double,
	reflect.Int32:   device.Int,
	reflect.Uint32:  device.UnsignedInt,
}

var matrixShapes = map[reflect.Type]device.UniformShape{
	reflect.TypeFor[Mat2]():  {Type: device.Float, Components: 2, Matrix: true},
	reflect.TypeFor[Mat3]():  {Type: device.Float, Components: 3, Matrix: true},
	reflect.TypeFor[Mat4]():  {Type: device.Float, Components: 4, Matrix: true},
	reflect.TypeFor[Mat2d](): {Type: device.Double, Components: 2, Matrix: true},
	reflect.TypeFor[Mat3d](): {Type: device.Double, Components: 3, Matrix: true},
	reflect.TypeFor[Mat4d](): {Type: device.Double, Components: 4, Matrix: true},
}

// ShapeOf returns the upload shape of one element of T and whether T is an array.
func ShapeOf[T Value]() (device.UniformShape, bool) {
	t := reflect.TypeFor[T]()
	array := t.Kind() == reflect.Slice
	if array {
		t = t.Elem()
	}
	if shape, ok := matrixShapes[t]; ok {
		return shape, array
	}
	if typ, ok := scalarTypes[t.Kind()]; ok {
		return device.UniformShape{Type: typ, Components: 1}, array
	}
	if t.Kind() == reflect.Array {
		if typ, ok := scalarTypes[t.Elem().Kind()]; ok {
			return device.UniformShape{Type: typ, Components: int32(t.Len())}, array
		}
	}
	panic(fmt.Sprintf("uniform: no upload shape for %s", t))
}

// Uniform is a handle to one uniform location of one linked program. It is only valid
// for the program that produced it.
type Uniform[T Value] struct {
	dev      device.Device
	program  uint32
	location int32
	shape    device.UniformShape
	array    bool
}

// New creates a handle for a uniform location of program. Locations come from the
// program builder, which reports missing names before a handle exists.
func New[T Value](dev device.Device, program uint32, location int32) *Uniform[T] {
	shape, array := ShapeOf[T]()
	return &Uniform[T]{
		dev:      dev,
		program:  program,
		location: location,
		shape:    shape,
		array:    array,
	}
}

// Location returns the uniform location inside the program.
func (u *Uniform[T]) Location() int32 {
	return u.location
}

// Program returns the device name of the program the uniform belongs to.
func (u *Uniform[T]) Program() uint32 {
	return u.program
}

// TrySet uploads value to the uniform. The program does not need to be bound.
//
// Parameters:
//   - value: the new value; a slice sets the first len(value) array elements
//
// Returns:
//   - error: the device error if the upload was rejected
func (u *Uniform[T]) TrySet(value T) error {
	var (
		ptr   unsafe.Pointer
		count int32 = 1
	)
	if u.array {
		rv := reflect.ValueOf(value)
		count = int32(rv.Len())
		if count > 0 {
			ptr = rv.UnsafePointer()
		}
	} else {
		ptr = unsafe.Pointer(&value)
	}
	if err := u.dev.ProgramUniform(u.program, u.location, u.shape, count, ptr); err != nil {
		return eris.Wrapf(err, "failed to set uniform %d of program %d", u.location, u.program)
	}
	return nil
}

// Set uploads value to the uniform and panics if the device rejects it. Handles are
// resolved against the program at startup, so a rejected upload means the program or
// the handle was misused.
func (u *Uniform[T]) Set(value T) {
	if err := u.TrySet(value); err != nil {
		panic(err)
	}
}
