package datmant

import "math"

// Brush diameter bounds in pixels.
const (
	MinBrushDiameter     = 1
	MaxBrushDiameter     = 500
	DefaultBrushDiameter = 50
)

// CompositeMode selects how the brush writes into the mask layer.
type CompositeMode uint8

const (
	// ModePaint writes the brush color and its class code. Painting is a
	// plain overwrite: repainting a pixel with the same color is a no-op on
	// the pixel value.
	ModePaint CompositeMode = iota

	// ModeErase clears covered pixels to transparent and their class codes
	// to the background code 0.
	ModeErase
)

// String returns the mode name for logs and CLI output.
func (m CompositeMode) String() string {
	if m == ModeErase {
		return "erase"
	}
	return "paint"
}

// BrushState is the current brush configuration: footprint diameter in
// pixels, paint color, and composite mode.
type BrushState struct {
	Diameter int
	Color    RGBA8
	Mode     CompositeMode
}

// Brush returns the current brush state.
func (c *Canvas) Brush() BrushState {
	return c.brush
}

// SetBrushDiameter sets the brush diameter, clamped to
// [MinBrushDiameter, MaxBrushDiameter].
func (c *Canvas) SetBrushDiameter(d int) {
	c.brush.Diameter = clampDiameter(d)
}

// StepBrushDiameter adjusts the brush diameter by delta, clamping the
// result. Out-of-range steps saturate at the bounds.
func (c *Canvas) StepBrushDiameter(delta int) {
	c.brush.Diameter = clampDiameter(c.brush.Diameter + delta)
}

// SetBrushColor sets the brush paint color. The color is written verbatim,
// alpha included; a pixel counts as painted only while its alpha is nonzero,
// so paint colors should carry a nonzero alpha.
func (c *Canvas) SetBrushColor(col RGBA8) {
	c.brush.Color = col
	c.updateBrushCode()
}

// SetBrushMode sets the composite mode.
func (c *Canvas) SetBrushMode(m CompositeMode) {
	c.brush.Mode = m
}

// StampAt composites a single brush disc centered at p.
// Stamps that do not cover any canvas pixel are absorbed without touching
// the undo history. No-op unless the canvas is ready.
func (c *Canvas) StampAt(p Point) {
	if !c.ready {
		return
	}
	c.applyBrushSpans(discSpans(p, c.brush.Diameter, c.width, c.height))
}

// StrokeTo composites a round-capped stroke from a to b: the area swept by
// the brush disc along the segment. Callers feed consecutive pointer
// positions; repeated strokes over the same pixels are idempotent in paint
// mode. No-op unless the canvas is ready.
func (c *Canvas) StrokeTo(a, b Point) {
	if !c.ready {
		return
	}
	c.applyBrushSpans(capsuleSpans(a, b, c.brush.Diameter, c.width, c.height))
}

func clampDiameter(d int) int {
	if d < MinBrushDiameter {
		return MinBrushDiameter
	}
	if d > MaxBrushDiameter {
		return MaxBrushDiameter
	}
	return d
}

// updateBrushCode caches the class code the brush paints in direct mode.
// Zero-alpha colors cannot occupy a pixel, so they carry no class.
func (c *Canvas) updateBrushCode() {
	if c.table == nil || c.brush.Color.A == 0 {
		c.brushCode = 0
		return
	}
	c.brushCode = c.table.ClassOf(c.brush.Color)
}

// span is a half-open pixel run [x1, x2) on row y, already clipped to the
// canvas.
type span struct {
	x1, x2, y int
}

// discSpans rasterizes a hard-edged disc into clipped spans.
// A pixel is covered when its center lies within diameter/2 of the center
// point.
func discSpans(center Point, diameter, w, h int) []span {
	if diameter < 1 || w <= 0 || h <= 0 {
		return nil
	}
	r := float64(diameter) / 2

	minY := int(math.Ceil(center.Y - r))
	maxY := int(math.Floor(center.Y + r))
	if minY < 0 {
		minY = 0
	}
	if maxY >= h {
		maxY = h - 1
	}

	var spans []span
	for y := minY; y <= maxY; y++ {
		dy := float64(y) - center.Y
		rem := r*r - dy*dy
		if rem < 0 {
			continue
		}
		half := math.Sqrt(rem)
		x1 := int(math.Ceil(center.X - half))
		x2 := int(math.Floor(center.X+half)) + 1
		if x1 < 0 {
			x1 = 0
		}
		if x2 > w {
			x2 = w
		}
		if x1 < x2 {
			spans = append(spans, span{x1: x1, x2: x2, y: y})
		}
	}
	return spans
}

// capsuleSpans rasterizes a hard-edged round-capped segment into clipped
// spans. A pixel is covered when its center lies within diameter/2 of the
// segment ab.
func capsuleSpans(a, b Point, diameter, w, h int) []span {
	if diameter < 1 || w <= 0 || h <= 0 {
		return nil
	}
	r := float64(diameter) / 2
	r2 := r * r

	minY := int(math.Ceil(math.Min(a.Y, b.Y) - r))
	maxY := int(math.Floor(math.Max(a.Y, b.Y) + r))
	minX := int(math.Ceil(math.Min(a.X, b.X) - r))
	maxX := int(math.Floor(math.Max(a.X, b.X) + r))
	if minY < 0 {
		minY = 0
	}
	if maxY >= h {
		maxY = h - 1
	}
	if minX < 0 {
		minX = 0
	}
	if maxX >= w {
		maxX = w - 1
	}

	var spans []span
	for y := minY; y <= maxY; y++ {
		run := -1
		for x := minX; x <= maxX; x++ {
			inside := segmentDistanceSquared(Pt(float64(x), float64(y)), a, b) <= r2
			if inside && run < 0 {
				run = x
			} else if !inside && run >= 0 {
				spans = append(spans, span{x1: run, x2: x, y: y})
				run = -1
			}
		}
		if run >= 0 {
			spans = append(spans, span{x1: run, x2: maxX + 1, y: y})
		}
	}
	return spans
}
