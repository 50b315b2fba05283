package planning

import "errors"

var (
	// ErrEmptyViewSpace is returned by New when there is no view to start
	// from. The process must not continue without a view space.
	ErrEmptyViewSpace = errors.New("planning: view space is empty")

	// ErrInvalidView is returned by MoveTo for a target index outside the
	// view space.
	ErrInvalidView = errors.New("planning: target view not in view space")

	// ErrMoveFailed wraps a set-pose failure from the simulator.
	ErrMoveFailed = errors.New("planning: move command failed")

	// ErrRetrievalFailed wraps a failure from the data retrieval service.
	ErrRetrievalFailed = errors.New("planning: data retrieval failed")
)
