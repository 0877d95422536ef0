package datmant

import (
	"bytes"
	"image"
	"image/color"
)

// Pixmap represents a rectangular pixel buffer.
// Pixels are stored non-premultiplied, 4 bytes per pixel in RGBA order.
type Pixmap struct {
	width  int
	height int
	data   []uint8
}

// NewPixmap creates a new pixmap with the given dimensions.
// All pixels are initialized transparent.
func NewPixmap(width, height int) *Pixmap {
	return &Pixmap{
		width:  width,
		height: height,
		data:   make([]uint8, width*height*4),
	}
}

// Width returns the width of the pixmap.
func (p *Pixmap) Width() int {
	return p.width
}

// Height returns the height of the pixmap.
func (p *Pixmap) Height() int {
	return p.height
}

// Data returns the raw pixel data (RGBA order).
func (p *Pixmap) Data() []uint8 {
	return p.data
}

// SetPixel sets the color of a single pixel.
// Coordinates outside the pixmap are silently ignored.
func (p *Pixmap) SetPixel(x, y int, c RGBA8) {
	if x < 0 || x >= p.width || y < 0 || y >= p.height {
		return
	}
	i := (y*p.width + x) * 4
	p.data[i+0] = c.R
	p.data[i+1] = c.G
	p.data[i+2] = c.B
	p.data[i+3] = c.A
}

// GetPixel returns the color of a single pixel.
// Returns Transparent for coordinates outside the pixmap.
func (p *Pixmap) GetPixel(x, y int) RGBA8 {
	if x < 0 || x >= p.width || y < 0 || y >= p.height {
		return Transparent
	}
	i := (y*p.width + x) * 4
	return RGBA8{R: p.data[i+0], G: p.data[i+1], B: p.data[i+2], A: p.data[i+3]}
}

// AlphaAt returns the alpha channel of a single pixel.
// Returns 0 for coordinates outside the pixmap.
func (p *Pixmap) AlphaAt(x, y int) uint8 {
	if x < 0 || x >= p.width || y < 0 || y >= p.height {
		return 0
	}
	return p.data[(y*p.width+x)*4+3]
}

// Clear fills the entire pixmap with a color.
func (p *Pixmap) Clear(c RGBA8) {
	for i := 0; i < len(p.data); i += 4 {
		p.data[i+0] = c.R
		p.data[i+1] = c.G
		p.data[i+2] = c.B
		p.data[i+3] = c.A
	}
}

// FillSpan fills the half-open pixel run [x1, x2) on row y with a color.
// The run is clipped to the pixmap; rows outside are ignored.
func (p *Pixmap) FillSpan(x1, x2, y int, c RGBA8) {
	if y < 0 || y >= p.height {
		return
	}
	if x1 < 0 {
		x1 = 0
	}
	if x2 > p.width {
		x2 = p.width
	}
	if x1 >= x2 {
		return
	}
	i := (y*p.width + x1) * 4
	for x := x1; x < x2; x++ {
		p.data[i+0] = c.R
		p.data[i+1] = c.G
		p.data[i+2] = c.B
		p.data[i+3] = c.A
		i += 4
	}
}

// FillDisc fills a disc of the given diameter centered at center.
// A pixel is covered when its center lies within diameter/2 of center.
func (p *Pixmap) FillDisc(center Point, diameter int, c RGBA8) {
	for _, s := range discSpans(center, diameter, p.width, p.height) {
		p.FillSpan(s.x1, s.x2, s.y, c)
	}
}

// FillCapsule fills a round-capped stroke of the given diameter from a to b.
func (p *Pixmap) FillCapsule(a, b Point, diameter int, c RGBA8) {
	for _, s := range capsuleSpans(a, b, diameter, p.width, p.height) {
		p.FillSpan(s.x1, s.x2, s.y, c)
	}
}

// Clone creates a deep copy of the pixmap.
func (p *Pixmap) Clone() *Pixmap {
	clone := NewPixmap(p.width, p.height)
	copy(clone.data, p.data)
	return clone
}

// EqualBytes reports whether two pixmaps have identical dimensions and
// pixel data.
func (p *Pixmap) EqualBytes(o *Pixmap) bool {
	if o == nil || p.width != o.width || p.height != o.height {
		return false
	}
	return bytes.Equal(p.data, o.data)
}

// ToImage converts the pixmap to an image.NRGBA.
func (p *Pixmap) ToImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, p.width, p.height))
	copy(img.Pix, p.data)
	return img
}

// FromImage creates a pixmap from an image.
func FromImage(img image.Image) *Pixmap {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	pm := NewPixmap(width, height)

	// Fast path for NRGBA images, the common decode result for masks.
	if nrgba, ok := img.(*image.NRGBA); ok {
		if nrgba.Stride == width*4 {
			copy(pm.data, nrgba.Pix)
			return pm
		}
		for y := range height {
			src := y * nrgba.Stride
			copy(pm.data[y*width*4:(y+1)*width*4], nrgba.Pix[src:src+width*4])
		}
		return pm
	}

	for y := range height {
		for x := range width {
			pm.SetPixel(x, y, FromColor(img.At(bounds.Min.X+x, bounds.Min.Y+y)))
		}
	}

	return pm
}

// At implements the image.Image interface.
func (p *Pixmap) At(x, y int) color.Color {
	return p.GetPixel(x, y).Color()
}

// Bounds implements the image.Image interface.
func (p *Pixmap) Bounds() image.Rectangle {
	return image.Rect(0, 0, p.width, p.height)
}

// ColorModel implements the image.Image interface.
func (p *Pixmap) ColorModel() color.Model {
	return color.NRGBAModel
}
