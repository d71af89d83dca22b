// Package layout derives vertex attribute layouts from Go vertex record types.
//
// A record is decomposed into leaf fields. Every numeric scalar and every array of one to
// four numeric scalars is a leaf with a built-in description; structs are walked field by
// field using their real memory offsets; the empty struct contributes nothing. Custom
// vector types can be described with Register.
package layout

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/Carmen-Shannon/oxy-tiles/engine/device"
	"github.com/rotisserie/eris"
)

// Leaf describes how one leaf field feeds the vertex stage.
type Leaf struct {
	// Type is the component type of the field in the buffer.
	Type device.Enum

	// Components is the number of components per attribute slot (1-4).
	Components int32

	// Integer selects the integer attribute path, which passes values to the shader
	// without conversion to floating point.
	Integer bool

	// Slots is the number of consecutive attribute slots the field occupies. Zero is
	// treated as one. A field spanning several slots is split into equal columns.
	Slots uint32
}

func (l Leaf) slots() uint32 {
	if l.Slots == 0 {
		return 1
	}
	return l.Slots
}

// Attribute is one attribute slot of a layout.
type Attribute struct {
	// Slot is the attribute index relative to the first slot of the record.
	Slot uint32

	// Offset is the byte offset of the attribute inside the record.
	Offset uintptr

	Components int32
	Type       device.Enum
	Integer    bool
}

// Layout is the attribute description of a vertex record type.
type Layout struct {
	// Stride is the byte distance between consecutive records.
	Stride uintptr

	// Attributes lists the slots in field declaration order.
	Attributes []Attribute
}

// NumAttrs returns the number of attribute slots the record occupies.
func (l Layout) NumAttrs() uint32 {
	return uint32(len(l.Attributes))
}

// Define enables and describes every slot of the layout on the bound vertex array, sourcing
// from the buffer bound to the array target. Slots are numbered from baseSlot.
//
// Parameters:
//   - dev: the device with the vertex array and vertex buffer bound
//   - baseSlot: the first attribute slot to use
//
// Returns:
//   - uint32: the number of slots consumed
//   - error: the device error of the first failing call
func (l Layout) Define(dev device.Device, baseSlot uint32) (uint32, error) {
	stride := int32(l.Stride)
	for _, a := range l.Attributes {
		slot := baseSlot + a.Slot
		if err := dev.EnableVertexAttribArray(slot); err != nil {
			return 0, eris.Wrapf(err, "failed to enable attribute %d", slot)
		}
		var err error
		if a.Integer {
			err = dev.VertexAttribIPointer(slot, a.Components, a.Type, stride, a.Offset)
		} else {
			err = dev.VertexAttribPointer(slot, a.Components, a.Type, false, stride, a.Offset)
		}
		if err != nil {
			return 0, eris.Wrapf(err, "failed to describe attribute %d", slot)
		}
	}
	return l.NumAttrs(), nil
}

type scalar struct {
	typ     device.Enum
	integer bool
}

// scalars maps numeric kinds to their device component type.
var scalars = map[reflect.Kind]scalar{
	reflect.Float32: {typ: device.Float},
	reflect.Float64: {typ: device.Double},
	reflect.Int8:    {typ: device.Byte, integer: true},
	reflect.Uint8:   {typ: device.UnsignedByte, integer: true},
	reflect.Int16:   {typ: device.Short, integer: true},
	reflect.Uint16:  {typ: device.UnsignedShort, integer: true},
	reflect.Int32:   {typ: device.Int, integer: true},
	reflect.Uint32:  {typ: device.UnsignedInt, integer: true},
}

var (
	registryMu sync.RWMutex
	registry   = make(map[reflect.Type]Leaf)
	cache      sync.Map
)

// Register describes a custom leaf type, overriding the built-in description. Layouts
// already derived for records containing T are not recomputed, so Register belongs in
// package initialization.
func Register[T any](leaf Leaf) {
	t := reflect.TypeFor[T]()
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[t] = leaf
}

// Of returns the layout of vertex record type T. Results are cached per type.
//
// Returns:
//   - Layout: the layout of T
//   - error: error if T contains a field with no attribute description
func Of[T any]() (Layout, error) {
	return Describe(reflect.TypeFor[T]())
}

// MustOf is like Of but panics if T cannot be described.
func MustOf[T any]() Layout {
	l, err := Of[T]()
	if err != nil {
		panic(err)
	}
	return l
}

// NumAttrs returns the number of attribute slots a T record occupies.
func NumAttrs[T any]() uint32 {
	return MustOf[T]().NumAttrs()
}

// Describe returns the layout of a vertex record type.
func Describe(t reflect.Type) (Layout, error) {
	if l, ok := cache.Load(t); ok {
		return l.(Layout), nil
	}
	l := Layout{Stride: t.Size()}
	if err := walk(t, 0, &l.Attributes); err != nil {
		return Layout{}, eris.Wrapf(err, "no vertex layout for %s", t)
	}
	cache.Store(t, l)
	return l, nil
}

func walk(t reflect.Type, base uintptr, out *[]Attribute) error {
	if leaf, ok := leafOf(t); ok {
		slots := leaf.slots()
		column := t.Size() / uintptr(slots)
		for i := uint32(0); i < slots; i++ {
			*out = append(*out, Attribute{
				Slot:       uint32(len(*out)),
				Offset:     base + uintptr(i)*column,
				Components: leaf.Components,
				Type:       leaf.Type,
				Integer:    leaf.Integer,
			})
		}
		return nil
	}
	if t.Kind() != reflect.Struct {
		return fmt.Errorf("unsupported attribute type %s", t)
	}
	for i := range t.NumField() {
		f := t.Field(i)
		if f.Name == "_" {
			continue
		}
		if err := walk(f.Type, base+f.Offset, out); err != nil {
			return fmt.Errorf("field %s: %w", f.Name, err)
		}
	}
	return nil
}

// leafOf returns the description of a leaf type: a registered type, a numeric scalar, or
// an array of one to four numeric scalars.
func leafOf(t reflect.Type) (Leaf, bool) {
	registryMu.RLock()
	leaf, ok := registry[t]
	registryMu.RUnlock()
	if ok {
		return leaf, true
	}
	if s, ok := scalars[t.Kind()]; ok {
		return Leaf{Type: s.typ, Components: 1, Integer: s.integer}, true
	}
	if t.Kind() == reflect.Array && t.Len() >= 1 && t.Len() <= 4 {
		if s, ok := scalars[t.Elem().Kind()]; ok {
			return Leaf{Type: s.typ, Components: int32(t.Len()), Integer: s.integer}, true
		}
	}
	return Leaf{}, false
}
