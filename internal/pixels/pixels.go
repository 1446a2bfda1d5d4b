// Package pixels implements the framing between a 2D grayscale buffer and the
// flat byte stream exchanged with the accelerator.
//
// The wire layout is row-major with no header, footer or checksum: row 0
// left-to-right, then row 1, and so on. A frame is exactly Width*Height bytes.
package pixels

import (
	"fmt"

	"github.com/banshee-data/pixelstream/internal/fault"
)

// Buffer is a row-major grid of 8-bit luminance samples.
// len(Pix) == Width*Height always holds for buffers built by this package.
type Buffer struct {
	Width  int
	Height int
	Pix    []byte
}

// New allocates a zeroed buffer.
func New(width, height int) (*Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid dimensions %dx%d: must be positive", width, height)
	}
	return &Buffer{Width: width, Height: height, Pix: make([]byte, width*height)}, nil
}

// FrameSize is the number of bytes in one frame of the given dimensions.
func FrameSize(width, height int) int {
	return width * height
}

// Row returns row y as a slice aliasing the buffer.
func (b *Buffer) Row(y int) []byte {
	return b.Pix[y*b.Width : (y+1)*b.Width]
}

// Encode flattens b into its wire stream. The stream is a copy; the caller
// owns it independently of b.
func Encode(b *Buffer) []byte {
	stream := make([]byte, 0, FrameSize(b.Width, b.Height))
	for y := 0; y < b.Height; y++ {
		stream = append(stream, b.Row(y)...)
	}
	return stream
}

// Decode reshapes a received stream into a width x height buffer. A stream
// whose length differs from the frame size is rejected with an
// IncompleteTransfer fault and never reshaped.
func Decode(stream []byte, width, height int) (*Buffer, error) {
	expected := FrameSize(width, height)
	if len(stream) != expected {
		return nil, fault.Incomplete("decode", expected, len(stream))
	}

	b, err := New(width, height)
	if err != nil {
		return nil, fault.New(fault.Unexpected, "decode", err)
	}
	for y := 0; y < height; y++ {
		copy(b.Row(y), stream[y*width:(y+1)*width])
	}
	return b, nil
}
