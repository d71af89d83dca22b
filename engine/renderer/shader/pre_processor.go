// pre_processor.go implements the Oxy GLSL shader pre-processor. It scans shader
// source code for @oxy: annotations, replaces them with injected snippet source or
// generated storage block declarations, and collects a declarations list that the
// program builder uses to check that every declared storage block gets resolved.
package shader

import (
	_ "embed"
	"fmt"
	"strings"
)

var (
	//go:embed assets/version.glsl
	versionSource string

	//go:embed assets/tile_cell.glsl
	tileCellSource string
)

// registryEntry pairs a GLSL snippet (embedded from a .glsl asset file) with the struct
// type name it declares, if any.
type registryEntry struct {
	// Source is the raw GLSL text injected by @oxy:include.
	Source string

	// Type is the GLSL struct name emitted when the snippet key is used as the element
	// type of a storage annotation. Empty for snippets that declare no struct.
	Type string
}

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	// snippetRegistry maps snippet keys to their embedded GLSL source and struct type name.
	snippetRegistry map[AnnotationArg]registryEntry

	// accessQualifiers maps access arguments to GLSL buffer memory qualifiers.
	accessQualifiers map[AnnotationArg]string

	// declarations accumulates storage annotations during a Process call.
	declarations []Annotation
}

// PreProcessor processes raw GLSL shader source code containing @oxy: annotations,
// replacing them with injected snippets or generated declarations while collecting a
// declarations list for the program builder.
type PreProcessor interface {
	// Process takes raw GLSL shader source code and replaces @oxy: annotations with
	// their GLSL output. @oxy:include annotations are replaced with the embedded snippet
	// text. @oxy:storage annotations are replaced with a std430 buffer block declaration.
	//
	// The declarations list is reset at the start of each call and can be retrieved
	// via Declarations() after Process returns.
	//
	// Parameters:
	//   - source: the raw GLSL shader source code containing annotations to be processed
	//
	// Returns:
	//   - string: the processed GLSL shader source code with annotations replaced
	//   - error: an error if any annotation is malformed or references an unknown snippet
	Process(source string) (string, error)

	// Declarations returns the storage annotations collected during the most recent call
	// to Process, in source order.
	//
	// Returns:
	//   - []Annotation: the declarations collected during the last Process call
	Declarations() []Annotation
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a new PreProcessor with all embedded snippets registered.
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor instance
func NewPreProcessor() PreProcessor {
	return &preProcessor{
		snippetRegistry: map[AnnotationArg]registryEntry{
			AnnotationArgVersion:  {Source: strings.TrimSpace(versionSource)},
			AnnotationArgTileCell: {Source: tileCellSource, Type: "TileCell"},
		},
		accessQualifiers: map[AnnotationArg]string{
			annotationArgStorageRead:      "readonly ",
			annotationArgStorageWrite:     "writeonly ",
			annotationArgStorageReadWrite: "",
		},
	}
}

func (p *preProcessor) Process(source string) (string, error) {
	p.declarations = p.declarations[:0]

	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))
	seen := make(map[string]int)

	for i, line := range lines {
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return "", err
		}
		if a == nil {
			out = append(out, line)
			continue
		}

		switch a.Type {
		case annotationTypeInclude:
			entry, ok := p.snippetRegistry[a.Args[0]]
			if !ok {
				return "", fmt.Errorf("line %d: unknown @oxy:include argument %q", i+1, a.Args[0])
			}
			out = append(out, strings.TrimRight(entry.Source, "\n"))
		case AnnotationTypeStorage:
			name := a.Binding()
			if prev, ok := seen[name]; ok {
				return "", fmt.Errorf("line %d: storage block %q already declared on line %d", i+1, name, prev)
			}
			seen[name] = i + 1

			elemType := string(a.Args[1])
			if entry, ok := p.snippetRegistry[a.Args[1]]; ok {
				if entry.Type == "" {
					return "", fmt.Errorf("line %d: snippet %q declares no struct type", i+1, a.Args[1])
				}
				elemType = entry.Type
			}
			out = append(out, fmt.Sprintf("layout(std430) %sbuffer %s { %s %s_data[]; };", p.accessQualifiers[a.Args[2]], name, elemType, name))
			p.declarations = append(p.declarations, *a)
		default:
			return "", fmt.Errorf("line %d: unknown annotation type %q", i+1, a.Type)
		}
	}
	return strings.Join(out, "\n"), nil
}

func (p *preProcessor) Declarations() []Annotation {
	return p.declarations
}
