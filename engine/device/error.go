package device

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Error is a failure reported by the device error state after a call.
type Error struct {
	// Code is the error code the device reported.
	Code Enum
}

func (e *Error) Error() string {
	return fmt.Sprintf("device error %s", e.Code)
}

// abort terminates the process when the device reports it ran out of memory. The device
// leaves its state undefined after that code so no further call may be issued.
var abort = func(code Enum) {
	log.Fatal().Stringer("code", code).Msg("device reported out of memory, aborting")
}

// Check converts an error code read from the device right after a call into a result.
// NoError yields nil, OutOfMemory terminates the process and any other code is returned
// as an *Error.
//
// Parameters:
//   - code: the code read from the device error state
//
// Returns:
//   - error: nil on success, otherwise an *Error carrying the code
func Check(code Enum) error {
	switch code {
	case NoError:
		return nil
	case OutOfMemory:
		abort(code)
		return &Error{Code: code}
	default:
		return &Error{Code: code}
	}
}

// IsCode reports whether err is, or wraps, a device *Error carrying the given code.
func IsCode(err error, code Enum) bool {
	var de *Error
	return errors.As(err, &de) && de.Code == code
}
