package shader

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-tiles/engine/device"
	"github.com/Carmen-Shannon/oxy-tiles/engine/device/headless"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessExpandsIncludes(t *testing.T) {
	pp := NewPreProcessor()
	out, err := pp.Process("//@oxy:include version\n//@oxy:include tile_cell\nvoid main() {}")
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	assert.Equal(t, "#version 430 core", lines[0])
	assert.Contains(t, out, "struct TileCell {")
	assert.Contains(t, out, "vec4 tile_to_clip(TileCell tile, vec2 corner, ivec2 amounts)")
	assert.True(t, strings.HasSuffix(out, "void main() {}"))
	assert.Empty(t, pp.Declarations())
}

func TestProcessGeneratesStorageBlocks(t *testing.T) {
	pp := NewPreProcessor()
	src := strings.Join([]string{
		"//@oxy:include version",
		"//@oxy:include tile_cell",
		"//@oxy:storage positions uvec2 storage_read",
		"//@oxy:storage colors vec4",
		"//@oxy:storage cells tile_cell storage_write",
	}, "\n")
	out, err := pp.Process(src)
	require.NoError(t, err)

	assert.Contains(t, out, "layout(std430) readonly buffer positions { uvec2 positions_data[]; };")
	assert.Contains(t, out, "layout(std430) buffer colors { vec4 colors_data[]; };")
	assert.Contains(t, out, "layout(std430) writeonly buffer cells { TileCell cells_data[]; };")

	decls := pp.Declarations()
	require.Len(t, decls, 3)
	assert.Equal(t, "positions", decls[0].Binding())
	assert.Equal(t, 3, decls[0].Line)
	assert.Equal(t, "colors", decls[1].Binding())
	assert.Equal(t, annotationArgStorageReadWrite, decls[1].Args[2])
}

func TestProcessRejectsMalformedAnnotations(t *testing.T) {
	cases := map[string]string{
		"empty":            "//@oxy:",
		"unknown type":     "//@oxy:uniform foo",
		"unknown snippet":  "//@oxy:include camera",
		"include arity":    "//@oxy:include version tile_cell",
		"quad snippet":     "//@oxy:include quad",
		"storage arity":    "//@oxy:storage colors",
		"bad name":         "//@oxy:storage 1colors vec4",
		"bad element":      "//@oxy:storage colors vec5",
		"bad access":       "//@oxy:storage colors vec4 storage_uniform",
		"duplicate block":  "//@oxy:storage colors vec4\n//@oxy:storage colors vec4",
		"struct-less type": "//@oxy:storage corners version",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewPreProcessor().Process(src)
			assert.Error(t, err)
		})
	}
}

func TestPlainCommentsAreKept(t *testing.T) {
	src := "// storage of colors\nint x; // @oxy:include version"
	out, err := NewPreProcessor().Process(src)
	require.NoError(t, err)
	assert.Equal(t, src, out)
}

func TestNewShaderPanicsOnEmptySource(t *testing.T) {
	assert.Panics(t, func() { NewShader("empty", StageVertex, "") })
	assert.Panics(t, func() { NewShader("bad", StageVertex, "//@oxy:include nothing") })
}

func TestNewShaderFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tile.frag")
	require.NoError(t, os.WriteFile(path, []byte("//@oxy:include version\nvoid main() {}\n"), 0o644))

	s := NewShaderFromPath("tile", StageFragment, path)
	assert.Equal(t, "tile", s.Key())
	assert.Equal(t, StageFragment, s.Stage())
	assert.True(t, strings.HasPrefix(s.Source(), "#version 430 core\n"))

	assert.Panics(t, func() { NewShaderFromPath("missing", StageFragment, filepath.Join(t.TempDir(), "none")) })
}

func TestStageEnums(t *testing.T) {
	assert.Equal(t, device.VertexShader, StageVertex.Enum())
	assert.Equal(t, device.TessEvaluationShader, StageTessEvaluation.Enum())
	assert.Equal(t, device.ComputeShader, StageCompute.Enum())
	assert.Equal(t, "tess_control", StageTessControl.String())
	assert.Equal(t, "Stage(9)", Stage(9).String())
}

func TestCompile(t *testing.T) {
	dev := headless.New()
	s := NewShader("tile", StageVertex, "//@oxy:include version\nvoid main() {}")

	c, err := Compile(dev, s)
	require.NoError(t, err)
	assert.NotZero(t, c.ID())
	assert.Equal(t, "tile", c.Key())
	assert.Equal(t, StageVertex, c.Stage())
	require.NoError(t, c.Release())
	require.NoError(t, c.Release())
}

func TestCompileReturnsInfoLog(t *testing.T) {
	dev := headless.New()
	s := NewShader("broken", StageFragment, "//@oxy:include version\n#error atlas sampler missing\n")

	_, err := Compile(dev, s)
	var compileErr *CompileError
	require.True(t, errors.As(err, &compileErr))
	assert.Equal(t, "broken", compileErr.Key)
	assert.Equal(t, StageFragment, compileErr.Stage)
	assert.Equal(t, "ERROR: 0:2: '#error' : atlas sampler missing", compileErr.Log)
	assert.Contains(t, err.Error(), "broken (fragment)")
}

func TestCompileSurfacesDeviceErrors(t *testing.T) {
	dev := headless.New()
	dev.InjectError(device.InvalidValue)
	_, err := Compile(dev, NewShader("tile", StageVertex, "void main() {}"))
	require.Error(t, err)
	assert.True(t, device.IsCode(err, device.InvalidValue))
}
