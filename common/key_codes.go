package common

// Key codes delivered to a window's key callbacks. Printable keys use their ASCII
// value, as GLFW does.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	// KeyC clears the grid in the tile demo.
	KeyC = 'C'
	// KeyG regenerates the grid in the tile demo.
	KeyG = 'G'
)
