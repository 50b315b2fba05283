package robot

import (
	"errors"
	"fmt"
)

// Sentinel errors for simulator calls.
var (
	// ErrUnreachable is returned when the simulator cannot be contacted.
	ErrUnreachable = errors.New("robot: simulator unreachable")

	// ErrRejected is returned when the simulator refuses a request.
	ErrRejected = errors.New("robot: simulator rejected request")
)

// RejectedError carries the simulator's reason for refusing a request.
type RejectedError struct {
	// StatusCode is the HTTP status code, 0 when the call succeeded at the
	// transport level but reported failure in its body.
	StatusCode int

	// Message is the status message returned by the simulator.
	Message string
}

// Error implements the error interface.
func (e *RejectedError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("robot: simulator rejected request (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("robot: simulator rejected request: %s", e.Message)
}

// Unwrap lets errors.Is match ErrRejected.
func (e *RejectedError) Unwrap() error {
	return ErrRejected
}
