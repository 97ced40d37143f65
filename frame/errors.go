package frame

import "errors"

var (
	// ErrInvalidDimensions indicates a zero or negative width or height.
	ErrInvalidDimensions = errors.New("invalid frame dimensions")

	// ErrInvalidBuffer indicates a buffer whose data length does not match
	// its dimensions.
	ErrInvalidBuffer = errors.New("invalid frame buffer")

	// ErrNilBuffer indicates a nil buffer was passed to an effect.
	ErrNilBuffer = errors.New("input frame cannot be nil")
)
