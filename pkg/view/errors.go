package view

import "errors"

var (
	// ErrIndexOutOfRange is returned when a view index is outside the space.
	ErrIndexOutOfRange = errors.New("view: index out of range")

	// ErrEmptyViewSpace is returned when a view space source has no views.
	ErrEmptyViewSpace = errors.New("view: view space is empty")

	// ErrUnsupportedFormat is returned for view space files with an unknown extension.
	ErrUnsupportedFormat = errors.New("view: unsupported view space file format")
)
