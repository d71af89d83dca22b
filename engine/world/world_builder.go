package world

import (
	"github.com/Carmen-Shannon/oxy-tiles/engine/grid"
	"github.com/rs/zerolog"
)

// WorldBuilderOption is a functional option used to configure a World during construction.
type WorldBuilderOption func(*World)

// WithOrientation sets the storage order of the world grid. Row major is the default.
//
// Parameters:
//   - orientation: the storage order
//
// Returns:
//   - WorldBuilderOption: a function that sets the grid orientation of the world
func WithOrientation(orientation grid.Orientation) WorldBuilderOption {
	return func(w *World) {
		w.orientation = orientation
	}
}

// WithLogger sets the logger used for grid changes.
//
// Parameters:
//   - logger: the logger to use
//
// Returns:
//   - WorldBuilderOption: a function that sets the logger of the world
func WithLogger(logger zerolog.Logger) WorldBuilderOption {
	return func(w *World) {
		w.logger = logger
	}
}
