package frame

import "fmt"

// Channels is the number of bytes per pixel (B, G, R).
const Channels = 3

// Buffer is a 2D grid of BGR pixels stored row-major.
type Buffer struct {
	Width  int
	Height int
	Data   []byte // len == Width*Height*Channels
}

// NewBuffer allocates a zeroed (black) buffer of the given size.
func NewBuffer(width, height int) (*Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	return &Buffer{
		Width:  width,
		Height: height,
		Data:   make([]byte, width*height*Channels),
	}, nil
}

// FromBytes wraps data as a buffer after checking its length.
// The slice is not copied.
func FromBytes(width, height int, data []byte) (*Buffer, error) {
	b := &Buffer{Width: width, Height: height, Data: data}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// Size returns the number of bytes a buffer of the given dimensions holds.
func Size(width, height int) int {
	return width * height * Channels
}

// Validate checks that the dimensions are positive and the data length
// matches them.
func (b *Buffer) Validate() error {
	if b == nil {
		return ErrNilBuffer
	}
	if b.Width <= 0 || b.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, b.Width, b.Height)
	}
	if want := Size(b.Width, b.Height); len(b.Data) != want {
		return fmt.Errorf("%w: %dx%d frame has %d bytes, expected %d",
			ErrInvalidBuffer, b.Width, b.Height, len(b.Data), want)
	}
	return nil
}

// Clone returns a deep copy of the buffer.
func (b *Buffer) Clone() *Buffer {
	return &Buffer{
		Width:  b.Width,
		Height: b.Height,
		Data:   append([]byte(nil), b.Data...),
	}
}

// At returns the blue, green and red components of the pixel at (x, y).
func (b *Buffer) At(x, y int) (blue, green, red byte) {
	i := b.offset(x, y)
	return b.Data[i], b.Data[i+1], b.Data[i+2]
}

// Set stores the pixel at (x, y).
func (b *Buffer) Set(x, y int, blue, green, red byte) {
	i := b.offset(x, y)
	b.Data[i] = blue
	b.Data[i+1] = green
	b.Data[i+2] = red
}

// Fill sets every pixel to the same colour.
func (b *Buffer) Fill(blue, green, red byte) {
	for i := 0; i < len(b.Data); i += Channels {
		b.Data[i] = blue
		b.Data[i+1] = green
		b.Data[i+2] = red
	}
}

func (b *Buffer) offset(x, y int) int {
	return (y*b.Width + x) * Channels
}
