package datmant

import "fmt"

// Helper is a read-only overlay layer shown above the image layer, such as
// a previously exported mask or a rasterized defect registry. Visibility is
// per layer and toggled through the canvas.
type Helper struct {
	Name    string
	Layer   *Pixmap
	Visible bool
}

// Canvas is the annotation canvas: a read-only image layer, optional helper
// layers, one mutable RGBA mask layer and, in direct mode, a class buffer
// kept pixel-consistent with the mask. All editing goes through the brush,
// region and undo operations; the canvas is not safe for concurrent use.
//
// A canvas starts uninitialized. Initialize or InitializeFromClasses make it
// ready; Reset returns it to the uninitialized state. Editing operations on
// a canvas that is not ready are silent no-ops, exports return ErrNotReady.
type Canvas struct {
	width  int
	height int

	image   *Pixmap
	helpers []Helper
	mask    *Pixmap
	classes *ClassBuffer // direct mode only
	direct  bool

	table *ColorTable

	brush     BrushState
	brushCode uint8 // class painted by the brush color, 0 when unmatched

	hist  history
	views viewStack

	ready bool
}

// NewCanvas creates an uninitialized canvas.
// The brush starts at DefaultBrushDiameter in paint mode, on the first
// class color when a table is installed and opaque white otherwise.
func NewCanvas(opts ...Option) *Canvas {
	options := defaultCanvasOptions()
	for _, opt := range opts {
		opt(&options)
	}

	brushColor := White
	if options.table != nil && options.table.Len() > 0 {
		brushColor = options.table.Entries()[0].Color
	}

	c := &Canvas{
		table: options.table,
		brush: BrushState{Diameter: DefaultBrushDiameter, Color: brushColor},
		hist:  history{depth: options.undoDepth},
	}
	c.updateBrushCode()
	return c
}

// Initialize builds the canvas from an image layer and an optional
// color-coded mask. A nil mask starts the session empty. With direct set,
// the canvas also derives a class buffer from the mask through the color
// table; occupied mask pixels matching no class keep the background code 0.
//
// The mask is copied; the image and helper layers are adopted as read-only.
// Undo history and zoom stack are cleared. Fails without touching the
// canvas when the image is missing, dimensions disagree, or direct mode is
// requested without a color table.
func (c *Canvas) Initialize(image, mask *Pixmap, helpers []Helper, direct bool) error {
	if image == nil || image.Width() <= 0 || image.Height() <= 0 {
		return ErrNoImage
	}
	w, h := image.Width(), image.Height()

	if mask != nil && (mask.Width() != w || mask.Height() != h) {
		return fmt.Errorf("%w: mask %dx%d, image %dx%d",
			ErrDimensionMismatch, mask.Width(), mask.Height(), w, h)
	}
	if err := checkHelpers(helpers, w, h); err != nil {
		return err
	}
	if direct && c.table == nil {
		return ErrNoColorTable
	}

	if mask != nil {
		c.mask = mask.Clone()
	} else {
		c.mask = NewPixmap(w, h)
	}

	c.classes = nil
	if direct {
		c.classes = c.deriveClasses(c.mask)
	}

	c.width, c.height = w, h
	c.image = image
	c.helpers = append([]Helper(nil), helpers...)
	c.direct = direct
	c.hist.clear()
	c.views.reset(RectOf(0, 0, float64(w), float64(h)))
	c.ready = true
	c.updateBrushCode()

	Logger().Info("canvas initialized",
		"width", w, "height", h, "direct", direct, "helpers", len(helpers))
	return nil
}

// InitializeFromClasses builds the canvas from an image layer and a
// class-coded mask, deriving the color mask through the color table.
// Direct mode is implied. A nil class buffer starts the session empty.
//
// Fails without touching the canvas when no color table is installed, when
// dimensions disagree, or when the buffer references a nonzero class code
// absent from the table.
func (c *Canvas) InitializeFromClasses(image *Pixmap, classes *ClassBuffer, helpers []Helper) error {
	if c.table == nil {
		return ErrNoColorTable
	}
	if image == nil || image.Width() <= 0 || image.Height() <= 0 {
		return ErrNoImage
	}
	w, h := image.Width(), image.Height()

	if classes != nil && (classes.Width() != w || classes.Height() != h) {
		return fmt.Errorf("%w: classes %dx%d, image %dx%d",
			ErrDimensionMismatch, classes.Width(), classes.Height(), w, h)
	}
	if err := checkHelpers(helpers, w, h); err != nil {
		return err
	}

	mask := NewPixmap(w, h)
	buf := NewClassBuffer(w, h)
	if classes != nil {
		// Resolve every code before the first write so a bad buffer cannot
		// leave the canvas half-built.
		var colors [256]RGBA8
		for _, code := range classes.Data() {
			if code == 0 || colors[code].A != 0 {
				continue
			}
			col, err := c.table.ColorOf(code)
			if err != nil {
				return err
			}
			colors[code] = col
		}

		buf = classes.Clone()
		src := buf.Data()
		for i, code := range src {
			if code == 0 {
				continue
			}
			x, y := i%w, i/w
			mask.SetPixel(x, y, colors[code])
		}
	}

	c.width, c.height = w, h
	c.image = image
	c.helpers = append([]Helper(nil), helpers...)
	c.mask = mask
	c.classes = buf
	c.direct = true
	c.hist.clear()
	c.views.reset(RectOf(0, 0, float64(w), float64(h)))
	c.ready = true
	c.updateBrushCode()

	Logger().Info("canvas initialized from classes",
		"width", w, "height", h, "helpers", len(helpers))
	return nil
}

// Reset tears the canvas down to the uninitialized state, dropping all
// layers, the undo history and the zoom stack. The color table and brush
// configuration survive for the next session.
func (c *Canvas) Reset() {
	c.width, c.height = 0, 0
	c.image = nil
	c.helpers = nil
	c.mask = nil
	c.classes = nil
	c.direct = false
	c.hist.clear()
	c.views.reset(Rect{})
	c.ready = false

	Logger().Info("canvas reset")
}

// Ready reports whether the canvas has been initialized.
func (c *Canvas) Ready() bool { return c.ready }

// DirectMode reports whether the canvas maintains a class buffer.
func (c *Canvas) DirectMode() bool { return c.ready && c.direct }

// Width returns the canvas width in pixels, 0 when not ready.
func (c *Canvas) Width() int { return c.width }

// Height returns the canvas height in pixels, 0 when not ready.
func (c *Canvas) Height() int { return c.height }

// Image returns the read-only image layer, nil when not ready.
func (c *Canvas) Image() *Pixmap { return c.image }

// Mask returns the live mask layer, nil when not ready.
// Callers must treat it as read-only; edits go through the brush and region
// operations so undo and class consistency hold.
func (c *Canvas) Mask() *Pixmap { return c.mask }

// Table returns the installed color table, nil when none was configured.
func (c *Canvas) Table() *ColorTable { return c.table }

// Helpers returns a copy of the helper layer list.
func (c *Canvas) Helpers() []Helper {
	return append([]Helper(nil), c.helpers...)
}

// HelperVisible reports the visibility of helper layer i.
// Returns false for indexes out of range.
func (c *Canvas) HelperVisible(i int) bool {
	if i < 0 || i >= len(c.helpers) {
		return false
	}
	return c.helpers[i].Visible
}

// OccupiedAt reports whether the mask pixel (x, y) is painted.
// Returns false outside the canvas or when not ready.
func (c *Canvas) OccupiedAt(x, y int) bool {
	if !c.ready {
		return false
	}
	return c.mask.AlphaAt(x, y) > 0
}

// ClassAt returns the class code at (x, y): the class buffer value in
// direct mode, the codec match of the mask pixel otherwise. Returns 0
// outside the canvas, on unpainted pixels, and when not ready.
func (c *Canvas) ClassAt(x, y int) uint8 {
	if !c.ready {
		return 0
	}
	if c.classes != nil {
		return c.classes.At(x, y)
	}
	if c.table == nil || c.mask.AlphaAt(x, y) == 0 {
		return 0
	}
	return c.table.ClassOf(c.mask.GetPixel(x, y))
}

// ExportColorMask returns a deep copy of the mask layer.
func (c *Canvas) ExportColorMask() (*Pixmap, error) {
	if !c.ready {
		return nil, ErrNotReady
	}
	return c.mask.Clone(), nil
}

// ExportClassMask returns the class-coded mask: a copy of the class buffer
// in direct mode, otherwise a full codec pass over the mask layer in which
// unpainted and unmatched pixels export as the background code 0.
// Requires a color table outside direct mode.
func (c *Canvas) ExportClassMask() (*ClassBuffer, error) {
	if !c.ready {
		return nil, ErrNotReady
	}
	if c.classes != nil {
		return c.classes.Clone(), nil
	}
	if c.table == nil {
		return nil, ErrNoColorTable
	}
	return c.deriveClasses(c.mask), nil
}

// deriveClasses runs the codec over a color mask, mapping unoccupied and
// unmatched pixels to the background code 0.
func (c *Canvas) deriveClasses(mask *Pixmap) *ClassBuffer {
	w, h := mask.Width(), mask.Height()
	buf := NewClassBuffer(w, h)
	unmatched := 0
	for y := range h {
		for x := range w {
			px := mask.GetPixel(x, y)
			if px.A == 0 {
				continue
			}
			code := c.table.ClassOf(px)
			if code == 0 {
				unmatched++
				continue
			}
			buf.Set(x, y, code)
		}
	}
	if unmatched > 0 {
		Logger().Warn("mask pixels matched no class", "pixels", unmatched)
	}
	return buf
}

// checkHelpers validates helper layer dimensions against the image layer.
func checkHelpers(helpers []Helper, w, h int) error {
	for _, hl := range helpers {
		if hl.Layer == nil || hl.Layer.Width() != w || hl.Layer.Height() != h {
			return fmt.Errorf("%w: helper %q", ErrDimensionMismatch, hl.Name)
		}
	}
	return nil
}

// paintSpans writes a color and class code across spans in both buffers.
func (c *Canvas) paintSpans(spans []span, col RGBA8, code uint8) {
	for _, s := range spans {
		c.mask.FillSpan(s.x1, s.x2, s.y, col)
		if c.classes != nil {
			c.classes.FillSpan(s.x1, s.x2, s.y, code)
		}
	}
}

// applyBrushSpans snapshots once and composites spans with the brush.
// Empty span lists are absorbed without a snapshot.
func (c *Canvas) applyBrushSpans(spans []span) {
	if len(spans) == 0 {
		return
	}
	c.snapshot()
	col, code := c.brush.Color, c.brushCode
	if c.brush.Mode == ModeErase {
		col, code = Transparent, 0
	}
	c.paintSpans(spans, col, code)
}
