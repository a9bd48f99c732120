package tile

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned for non-positive or oversized extents
	// and band counts.
	ErrInvalidArgument    = errors.New("invalid argument")
	// ErrOutOfRange is returned when a pixel coordinate or band index lies
	// outside the current bounds of a tile.
	ErrOutOfRange         = errors.New("out of range")
	// ErrUnsupportedBands is returned when a tile cannot be rendered as an image.
	ErrUnsupportedBands   = errors.New("unsupported band count")
	// ErrUnrecognizedFormat is returned by Decode for data that is neither
	// PNG nor JPEG.
	ErrUnrecognizedFormat = errors.New("unrecognized image format")
)

// RangeError represents an out-of-range pixel access
type RangeError struct {
	X, Y, Band           int
	Width, Height, Bands int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("pixel (%d,%d) band %d out of range for %dx%d tile with %d bands",
		e.X, e.Y, e.Band, e.Width, e.Height, e.Bands)
}

// Unwrap lets errors.Is match ErrOutOfRange.
func (e *RangeError) Unwrap() error {
	return ErrOutOfRange
}

func invalidArgument(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
