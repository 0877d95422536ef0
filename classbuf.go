package datmant

import (
	"bytes"
	"image"
)

// ClassBuffer is a single-channel raster holding one class code per pixel.
// Code 0 is the background sentinel: it marks unlabeled pixels and never
// appears in a color table.
type ClassBuffer struct {
	width  int
	height int
	data   []uint8
}

// NewClassBuffer creates a new class buffer with the given dimensions.
// All pixels are initialized to the background code 0.
func NewClassBuffer(width, height int) *ClassBuffer {
	return &ClassBuffer{
		width:  width,
		height: height,
		data:   make([]uint8, width*height),
	}
}

// Bounds returns the buffer dimensions as an image.Rectangle.
func (b *ClassBuffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.width, b.height)
}

// Width returns the buffer width.
func (b *ClassBuffer) Width() int { return b.width }

// Height returns the buffer height.
func (b *ClassBuffer) Height() int { return b.height }

// At returns the class code at (x, y).
// Returns 0 for coordinates outside the buffer.
func (b *ClassBuffer) At(x, y int) uint8 {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return 0
	}
	return b.data[y*b.width+x]
}

// Set sets the class code at (x, y).
// Coordinates outside the buffer are ignored.
func (b *ClassBuffer) Set(x, y int, code uint8) {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return
	}
	b.data[y*b.width+x] = code
}

// FillSpan sets the half-open pixel run [x1, x2) on row y to a class code.
// The run is clipped to the buffer; rows outside are ignored.
func (b *ClassBuffer) FillSpan(x1, x2, y int, code uint8) {
	if y < 0 || y >= b.height {
		return
	}
	if x1 < 0 {
		x1 = 0
	}
	if x2 > b.width {
		x2 = b.width
	}
	if x1 >= x2 {
		return
	}
	row := b.data[y*b.width+x1 : y*b.width+x2]
	for i := range row {
		row[i] = code
	}
}

// Fill sets every pixel to a class code.
func (b *ClassBuffer) Fill(code uint8) {
	for i := range b.data {
		b.data[i] = code
	}
}

// Clear resets every pixel to the background code 0.
func (b *ClassBuffer) Clear() {
	b.Fill(0)
}

// Clone creates a deep copy of the buffer.
func (b *ClassBuffer) Clone() *ClassBuffer {
	clone := NewClassBuffer(b.width, b.height)
	copy(clone.data, b.data)
	return clone
}

// EqualBytes reports whether two buffers have identical dimensions and codes.
func (b *ClassBuffer) EqualBytes(o *ClassBuffer) bool {
	if o == nil || b.width != o.width || b.height != o.height {
		return false
	}
	return bytes.Equal(b.data, o.data)
}

// Data returns the underlying code slice.
func (b *ClassBuffer) Data() []uint8 {
	return b.data
}
