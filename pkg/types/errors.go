package types

import "errors"

var (
	// ErrDegenerateSegment is returned when both segment endpoints coincide
	ErrDegenerateSegment = errors.New("degenerate segment")

	// ErrInvalidInput is returned for NaN or infinite coordinates
	ErrInvalidInput = errors.New("invalid input")

	// ErrOutOfRange is returned when a zoom fraction falls outside [0,1]
	ErrOutOfRange = errors.New("zoom out of range")

	// ErrInvalidROI is returned for unordered ROI corners or an empty resolution
	ErrInvalidROI = errors.New("invalid roi")
)
