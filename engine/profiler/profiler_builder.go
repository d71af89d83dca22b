package profiler

import (
	"time"

	"github.com/rs/zerolog"
)

// ProfilerBuilderOption is a functional option for configuring a Profiler.
type ProfilerBuilderOption func(*Profiler)

// WithLogger sets the logger the statistics are written to.
//
// Parameters:
//   - logger: the logger to use
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithLogger(logger zerolog.Logger) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.logger = logger
	}
}

// WithInterval sets how often statistics are logged.
//
// Parameters:
//   - interval: the minimum time between two log events
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithInterval(interval time.Duration) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.updateInterval = interval
	}
}

// WithFields adds caller fields, for example renderer counters, to every statistics
// event.
//
// Parameters:
//   - fields: called with the event right before it is written
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithFields(fields func(*zerolog.Event)) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.fields = fields
	}
}

func withClock(now func() time.Time) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.now = now
	}
}
