package limits

import (
	"errors"
	"fmt"
)

const (
	// MaxFrameDimension is the largest accepted frame width or height in pixels.
	MaxFrameDimension = 16384

	// BytesPerPixel is the size of one packed BGR pixel.
	BytesPerPixel = 3

	// MaxFrameBytes is the size of the largest accepted frame.
	MaxFrameBytes = MaxFrameDimension * MaxFrameDimension * BytesPerPixel
)

var (
	// ErrInvalidDimensions indicates a width or height outside 1..MaxFrameDimension.
	ErrInvalidDimensions = errors.New("invalid frame dimensions")

	// ErrFrameBudgetExceeded indicates materialized frames would exceed the memory budget.
	ErrFrameBudgetExceeded = errors.New("frame memory budget exceeded")
)

// ValidateDimensions checks a frame size against MaxFrameDimension.
// Returns an error with context including the offending size.
func ValidateDimensions(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	if width > MaxFrameDimension || height > MaxFrameDimension {
		return fmt.Errorf("%w: %dx%d exceeds limit %d", ErrInvalidDimensions, width, height, MaxFrameDimension)
	}
	return nil
}

// FrameBytes returns the in-memory size of one frame.
func FrameBytes(width, height int) uint64 {
	return uint64(width) * uint64(height) * BytesPerPixel
}

// EstimateMaterialization returns the bytes needed to hold count frames.
func EstimateMaterialization(width, height int, count int64) uint64 {
	if count <= 0 {
		return 0
	}
	return FrameBytes(width, height) * uint64(count)
}

// Budget tracks bytes reserved against a ceiling. A zero ceiling means
// unlimited. It is not safe for concurrent use.
type Budget struct {
	limit    uint64
	reserved uint64
}

// NewBudget creates a budget with the given ceiling in bytes.
func NewBudget(limit uint64) *Budget {
	return &Budget{limit: limit}
}

// Reserve accounts for n more bytes, failing without reserving them if the
// ceiling would be crossed.
func (b *Budget) Reserve(n int) error {
	if n < 0 {
		return fmt.Errorf("negative reservation: %d", n)
	}
	next := b.reserved + uint64(n)
	if b.limit > 0 && next > b.limit {
		return fmt.Errorf("%w: %d bytes needed, limit %d", ErrFrameBudgetExceeded, next, b.limit)
	}
	b.reserved = next
	return nil
}

// Reserved returns the bytes reserved so far.
func (b *Budget) Reserved() uint64 {
	return b.reserved
}

// Limit returns the ceiling, 0 meaning unlimited.
func (b *Budget) Limit() uint64 {
	return b.limit
}
