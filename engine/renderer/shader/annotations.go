// annotations.go defines the annotation types, argument constants, and parser for the
// Oxy GLSL shader pre-processor. Annotations are single-line GLSL comments prefixed
// with @oxy: that drive snippet injection and shader storage block declaration. The
// parsed results are stored as Annotation values and consumed by the PreProcessor and
// the program builder to wire storage buffers without repeating block layouts by hand.
package shader

import (
	"fmt"
	"slices"
	"strings"
)

// annotationPrefix is the marker that identifies an Oxy annotation within a GLSL comment line.
// Every annotation must appear on a line beginning with "//" followed by this prefix.
const annotationPrefix = "@oxy:"

// AnnotationType identifies the kind of annotation parsed from a GLSL comment line.
type AnnotationType string

const (
	// annotationTypeInclude injects the GLSL source of a registered snippet at the
	// annotation site. This annotation does not produce a declaration.
	//
	// Syntax: //@oxy:include <snippet>
	//
	// Example: //@oxy:include version
	annotationTypeInclude AnnotationType = "include"

	// AnnotationTypeStorage generates a std430 shader storage block holding a runtime
	// sized array and appends an Annotation to the PreProcessor's declarations list. The
	// block is named after the binding so the program builder can resolve it by name.
	//
	// Syntax: //@oxy:storage <binding_name> <element_type> [access]
	//
	// Example: //@oxy:storage colors vec4 storage_read
	//
	// Output: layout(std430) readonly buffer colors { vec4 colors_data[]; };
	AnnotationTypeStorage AnnotationType = "storage"
)

// Annotation represents a single parsed @oxy: annotation from a GLSL shader source line.
type Annotation struct {
	// Type identifies which annotation was parsed (include or storage).
	Type AnnotationType

	// Args holds the annotation's arguments. The contents depend on Type:
	//   - include: [0] = snippet key (e.g. "tile_cell")
	//   - storage: [0] = binding name, [1] = element type, [2] = access
	Args []AnnotationArg

	// Line is the 1-based line number in the original GLSL source where this annotation
	// was found. Used for error reporting.
	Line int
}

// Binding returns the block name of a storage annotation.
func (a Annotation) Binding() string {
	if a.Type != AnnotationTypeStorage {
		return ""
	}
	return string(a.Args[0])
}

// AnnotationArg is a typed string constant used as an argument in annotations.
type AnnotationArg string

// Snippet arguments. Each maps to an embedded GLSL asset.
const (
	// AnnotationArgVersion identifies the #version directive every engine shader starts with.
	// Source: engine/renderer/shader/assets/version.glsl
	AnnotationArgVersion AnnotationArg = "version"

	// AnnotationArgTileCell identifies the TileCell struct and the tile_to_clip and
	// tile_uv helpers.
	// Source: engine/renderer/shader/assets/tile_cell.glsl
	AnnotationArgTileCell AnnotationArg = "tile_cell"
)

// Access arguments for storage annotations.
const (
	annotationArgStorageRead      AnnotationArg = "storage_read"
	annotationArgStorageWrite     AnnotationArg = "storage_write"
	annotationArgStorageReadWrite AnnotationArg = "storage_read_write"
)

// validSnippets lists all AnnotationArg values accepted by @oxy:include. Each entry must
// have a corresponding registryEntry in the PreProcessor's snippet registry.
var validSnippets = []AnnotationArg{
	AnnotationArgVersion,
	AnnotationArgTileCell,
}

var validAccess = []AnnotationArg{
	annotationArgStorageRead,
	annotationArgStorageWrite,
	annotationArgStorageReadWrite,
}

// builtinTypes lists the GLSL element types a storage annotation may name directly.
// Registered struct types are accepted through their snippet key.
var builtinTypes = []string{
	"float", "vec2", "vec3", "vec4",
	"double", "dvec2", "dvec3", "dvec4",
	"int", "ivec2", "ivec3", "ivec4",
	"uint", "uvec2", "uvec3", "uvec4",
	"mat2", "mat3", "mat4",
}

// parseAnnotation attempts to parse a single line of GLSL source as an @oxy: annotation.
// Returns nil with no error for lines that do not contain the annotation prefix.
//
// Parameters:
//   - line: the raw GLSL source line to parse
//   - lineNum: the 1-based line number for error reporting
//
// Returns:
//   - *Annotation: the parsed annotation, or nil if the line is not an annotation
//   - error: a descriptive error if the annotation is malformed
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	trimmed := strings.TrimSpace(line)
	comment, ok := strings.CutPrefix(trimmed, "//")
	if !ok {
		return nil, nil
	}
	after, ok := strings.CutPrefix(strings.TrimSpace(comment), annotationPrefix)
	if !ok {
		return nil, nil
	}

	args := strings.Fields(after)
	if len(args) == 0 {
		return nil, fmt.Errorf("line %d: empty @oxy annotation", lineNum)
	}

	switch args[0] {
	case string(annotationTypeInclude):
		if len(args) != 2 {
			return nil, fmt.Errorf("line %d: @oxy include annotation requires exactly one argument", lineNum)
		}
		if !slices.Contains(validSnippets, AnnotationArg(args[1])) {
			return nil, fmt.Errorf("line %d: unknown snippet %q in @oxy include annotation", lineNum, args[1])
		}
		return &Annotation{
			Type: annotationTypeInclude,
			Args: []AnnotationArg{AnnotationArg(args[1])},
			Line: lineNum,
		}, nil
	case string(AnnotationTypeStorage):
		if len(args) < 3 || len(args) > 4 {
			return nil, fmt.Errorf("line %d: @oxy storage annotation requires a binding name, an element type and an optional access", lineNum)
		}
		if !isIdentifier(args[1]) {
			return nil, fmt.Errorf("line %d: invalid binding name %q in @oxy storage annotation", lineNum, args[1])
		}
		if !slices.Contains(builtinTypes, args[2]) && !slices.Contains(validSnippets, AnnotationArg(args[2])) {
			return nil, fmt.Errorf("line %d: unknown element type %q in @oxy storage annotation", lineNum, args[2])
		}
		access := annotationArgStorageReadWrite
		if len(args) == 4 {
			access = AnnotationArg(args[3])
			if !slices.Contains(validAccess, access) {
				return nil, fmt.Errorf("line %d: unknown access %q in @oxy storage annotation", lineNum, args[3])
			}
		}
		return &Annotation{
			Type: AnnotationTypeStorage,
			Args: []AnnotationArg{AnnotationArg(args[1]), AnnotationArg(args[2]), access},
			Line: lineNum,
		}, nil
	default:
		return nil, fmt.Errorf("line %d: unknown @oxy annotation type %q", lineNum, args[0])
	}
}

func isIdentifier(s string) bool {
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return s != ""
}
