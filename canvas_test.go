package datmant

import (
	"errors"
	"testing"
)

// TestCanvasLifecycle walks the uninitialized, ready, reset state machine.
func TestCanvasLifecycle(t *testing.T) {
	c := NewCanvas(WithColorTable(testTable(t)))

	if c.Ready() || c.DirectMode() {
		t.Error("fresh canvas reports ready")
	}
	if c.Width() != 0 || c.Height() != 0 {
		t.Errorf("fresh canvas size = %dx%d", c.Width(), c.Height())
	}
	if _, err := c.ExportColorMask(); !errors.Is(err, ErrNotReady) {
		t.Errorf("ExportColorMask() error = %v, want ErrNotReady", err)
	}
	if _, err := c.ExportClassMask(); !errors.Is(err, ErrNotReady) {
		t.Errorf("ExportClassMask() error = %v, want ErrNotReady", err)
	}
	if c.OccupiedAt(0, 0) || c.ClassAt(0, 0) != 0 {
		t.Error("fresh canvas reports painted pixels")
	}

	c.SetBrushDiameter(30)
	if err := c.Initialize(NewPixmap(64, 48), nil, nil, true); err != nil {
		t.Fatalf("Initialize() = %v", err)
	}
	if !c.Ready() || !c.DirectMode() {
		t.Error("initialized canvas not ready")
	}
	if c.Width() != 64 || c.Height() != 48 {
		t.Errorf("size = %dx%d, want 64x48", c.Width(), c.Height())
	}
	if c.Image() == nil || c.Mask() == nil {
		t.Error("layers missing after Initialize")
	}

	c.Reset()
	if c.Ready() {
		t.Error("reset canvas still ready")
	}
	if c.Mask() != nil || c.Image() != nil {
		t.Error("layers survive Reset")
	}
	if c.Table() == nil {
		t.Error("color table dropped by Reset")
	}
	if got := c.Brush().Diameter; got != 30 {
		t.Errorf("brush diameter after Reset = %d, want 30", got)
	}
}

// TestInitializeValidation verifies every Initialize rejection leaves the
// canvas untouched.
func TestInitializeValidation(t *testing.T) {
	tests := []struct {
		name    string
		image   *Pixmap
		mask    *Pixmap
		helpers []Helper
		direct  bool
		table   bool
		wantErr error
	}{
		{"nil image", nil, nil, nil, false, true, ErrNoImage},
		{"empty image", NewPixmap(0, 0), nil, nil, false, true, ErrNoImage},
		{"mask size mismatch", NewPixmap(10, 10), NewPixmap(10, 11), nil, false, true, ErrDimensionMismatch},
		{"helper size mismatch", NewPixmap(10, 10), nil,
			[]Helper{{Name: "prior", Layer: NewPixmap(9, 10)}}, false, true, ErrDimensionMismatch},
		{"helper nil layer", NewPixmap(10, 10), nil,
			[]Helper{{Name: "prior"}}, false, true, ErrDimensionMismatch},
		{"direct without table", NewPixmap(10, 10), nil, nil, true, false, ErrNoColorTable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts []Option
			if tt.table {
				opts = append(opts, WithColorTable(testTable(t)))
			}
			c := NewCanvas(opts...)
			if err := c.Initialize(tt.image, tt.mask, tt.helpers, tt.direct); !errors.Is(err, tt.wantErr) {
				t.Errorf("Initialize() error = %v, want %v", err, tt.wantErr)
			}
			if c.Ready() {
				t.Error("canvas ready after failed Initialize")
			}
		})
	}
}

// TestInitializeKeepsSessionOnFailure verifies a failed Initialize does not
// disturb the running session.
func TestInitializeKeepsSessionOnFailure(t *testing.T) {
	c := newDirectCanvas(t)
	c.StampAt(Pt(50, 50))

	if err := c.Initialize(nil, nil, nil, true); !errors.Is(err, ErrNoImage) {
		t.Fatalf("Initialize() error = %v, want ErrNoImage", err)
	}
	if !c.Ready() || c.Width() != 100 {
		t.Error("failed Initialize disturbed the session")
	}
	if !c.OccupiedAt(50, 50) {
		t.Error("mask lost on failed Initialize")
	}
}

// TestInitializeWithMask verifies a preexisting color mask is adopted by
// copy and classified through the table.
func TestInitializeWithMask(t *testing.T) {
	mask := NewPixmap(100, 100)
	mask.FillDisc(Pt(30, 30), 20, RGBA8{R: 255, A: 99})

	c := NewCanvas(WithColorTable(testTable(t)))
	if err := c.Initialize(NewPixmap(100, 100), mask, nil, true); err != nil {
		t.Fatalf("Initialize() = %v", err)
	}

	if got := c.ClassAt(30, 30); got != 1 {
		t.Errorf("ClassAt(30, 30) = %d, want 1", got)
	}
	if got := c.ClassAt(70, 70); got != 0 {
		t.Errorf("ClassAt(70, 70) = %d, want 0", got)
	}

	// The mask was copied, later edits to the source must not leak in.
	mask.Clear(RGBA8{B: 255, A: 99})
	if got := c.ClassAt(30, 30); got != 1 {
		t.Errorf("source mask aliased: ClassAt = %d, want 1", got)
	}
}

// TestInitializeUnmatchedMaskPixels verifies occupied pixels matching no
// class stay occupied with the background code.
func TestInitializeUnmatchedMaskPixels(t *testing.T) {
	mask := NewPixmap(50, 50)
	mask.FillDisc(Pt(25, 25), 10, RGBA8{G: 200, A: 99})

	c := NewCanvas(WithColorTable(testTable(t)))
	if err := c.Initialize(NewPixmap(50, 50), mask, nil, true); err != nil {
		t.Fatalf("Initialize() = %v", err)
	}

	if !c.OccupiedAt(25, 25) {
		t.Error("unmatched pixel lost its occupancy")
	}
	if got := c.ClassAt(25, 25); got != 0 {
		t.Errorf("ClassAt = %d, want background", got)
	}
}

// TestInitializeFromClasses verifies the class-coded entry point derives
// the color mask through the table.
func TestInitializeFromClasses(t *testing.T) {
	classes := NewClassBuffer(60, 40)
	classes.FillSpan(10, 20, 5, 1)
	classes.FillSpan(30, 40, 5, 2)

	c := NewCanvas(WithColorTable(testTable(t)))
	if err := c.InitializeFromClasses(NewPixmap(60, 40), classes, nil); err != nil {
		t.Fatalf("InitializeFromClasses() = %v", err)
	}

	if !c.DirectMode() {
		t.Error("DirectMode() = false")
	}
	if got := c.Mask().GetPixel(15, 5); got != (RGBA8{R: 255, A: 99}) {
		t.Errorf("surface pixel = %+v", got)
	}
	if got := c.Mask().GetPixel(35, 5); got != (RGBA8{B: 255, A: 99}) {
		t.Errorf("defect pixel = %+v", got)
	}
	if c.OccupiedAt(25, 5) {
		t.Error("background pixel occupied")
	}
	if got := c.ClassAt(15, 5); got != 1 {
		t.Errorf("ClassAt(15, 5) = %d, want 1", got)
	}

	// The buffer was copied.
	classes.Fill(2)
	if got := c.ClassAt(15, 5); got != 1 {
		t.Errorf("source buffer aliased: ClassAt = %d, want 1", got)
	}
}

// TestInitializeFromClassesValidation verifies rejected inputs leave the
// canvas untouched, including buffers naming unknown classes.
func TestInitializeFromClassesValidation(t *testing.T) {
	unknown := NewClassBuffer(10, 10)
	unknown.Set(3, 3, 7)

	t.Run("unknown class code", func(t *testing.T) {
		c := NewCanvas(WithColorTable(testTable(t)))
		if err := c.InitializeFromClasses(NewPixmap(10, 10), unknown, nil); !errors.Is(err, ErrUnknownClass) {
			t.Errorf("error = %v, want ErrUnknownClass", err)
		}
		if c.Ready() {
			t.Error("canvas ready after rejected buffer")
		}
	})

	t.Run("no table", func(t *testing.T) {
		c := NewCanvas()
		if err := c.InitializeFromClasses(NewPixmap(10, 10), nil, nil); !errors.Is(err, ErrNoColorTable) {
			t.Errorf("error = %v, want ErrNoColorTable", err)
		}
	})

	t.Run("size mismatch", func(t *testing.T) {
		c := NewCanvas(WithColorTable(testTable(t)))
		if err := c.InitializeFromClasses(NewPixmap(10, 10), NewClassBuffer(10, 11), nil); !errors.Is(err, ErrDimensionMismatch) {
			t.Errorf("error = %v, want ErrDimensionMismatch", err)
		}
	})

	t.Run("nil image", func(t *testing.T) {
		c := NewCanvas(WithColorTable(testTable(t)))
		if err := c.InitializeFromClasses(nil, nil, nil); !errors.Is(err, ErrNoImage) {
			t.Errorf("error = %v, want ErrNoImage", err)
		}
	})

	t.Run("session survives rejection", func(t *testing.T) {
		c := newDirectCanvas(t)
		c.StampAt(Pt(50, 50))
		if err := c.InitializeFromClasses(NewPixmap(10, 10), unknown, nil); !errors.Is(err, ErrUnknownClass) {
			t.Fatalf("error = %v, want ErrUnknownClass", err)
		}
		if !c.OccupiedAt(50, 50) || c.Width() != 100 {
			t.Error("rejected buffer disturbed the session")
		}
	})
}

// TestClassMaskRoundTrip verifies a class export reloaded through
// InitializeFromClasses reproduces the color mask byte for byte.
func TestClassMaskRoundTrip(t *testing.T) {
	a := newDirectCanvas(t)
	a.SetBrushDiameter(10)
	a.StampAt(Pt(25, 25))
	a.SetBrushColor(RGBA8{B: 255, A: 99})
	a.StampAt(Pt(75, 75))

	classes, err := a.ExportClassMask()
	if err != nil {
		t.Fatalf("ExportClassMask() = %v", err)
	}

	b := NewCanvas(WithColorTable(testTable(t)))
	if err := b.InitializeFromClasses(NewPixmap(100, 100), classes, nil); err != nil {
		t.Fatalf("InitializeFromClasses() = %v", err)
	}

	maskA, err := a.ExportColorMask()
	if err != nil {
		t.Fatalf("ExportColorMask() = %v", err)
	}
	maskB, err := b.ExportColorMask()
	if err != nil {
		t.Fatalf("ExportColorMask() = %v", err)
	}
	if !maskA.EqualBytes(maskB) {
		t.Error("masks differ after class round trip")
	}
}

// TestDirectAnnotation covers the basic direct-mode session: stamp a class,
// read it back through ClassAt and the class export.
func TestDirectAnnotation(t *testing.T) {
	c := newDirectCanvas(t)
	c.SetBrushDiameter(20)
	c.StampAt(Pt(50, 50))

	if got := c.ClassAt(50, 50); got != 1 {
		t.Errorf("ClassAt(50, 50) = %d, want 1", got)
	}
	if got := c.ClassAt(65, 50); got != 0 {
		t.Errorf("ClassAt(65, 50) = %d, want 0", got)
	}

	classes, err := c.ExportClassMask()
	if err != nil {
		t.Fatalf("ExportClassMask() = %v", err)
	}
	if got := classes.At(50, 50); got != 1 {
		t.Errorf("exported class at (50, 50) = %d, want 1", got)
	}
	if got := classes.At(65, 50); got != 0 {
		t.Errorf("exported class at (65, 50) = %d, want 0", got)
	}
}

// TestClassAtColorMode verifies the codec fallback when no class buffer is
// maintained.
func TestClassAtColorMode(t *testing.T) {
	t.Run("with table", func(t *testing.T) {
		c := NewCanvas(WithColorTable(testTable(t)))
		if err := c.Initialize(NewPixmap(50, 50), nil, nil, false); err != nil {
			t.Fatalf("Initialize() = %v", err)
		}
		if c.DirectMode() {
			t.Error("DirectMode() = true for color-mode canvas")
		}
		c.SetBrushDiameter(10)
		c.StampAt(Pt(25, 25))
		if got := c.ClassAt(25, 25); got != 1 {
			t.Errorf("ClassAt = %d, want 1", got)
		}
	})

	t.Run("without table", func(t *testing.T) {
		c := newColorCanvas(t)
		c.SetBrushDiameter(10)
		c.StampAt(Pt(25, 25))
		if !c.OccupiedAt(25, 25) {
			t.Error("pixel not painted")
		}
		if got := c.ClassAt(25, 25); got != 0 {
			t.Errorf("ClassAt = %d, want 0", got)
		}
	})
}

// TestExportClassMaskColorMode verifies the export-time codec pass,
// including drifted colors, and the missing-table error.
func TestExportClassMaskColorMode(t *testing.T) {
	c := NewCanvas(WithColorTable(testTable(t)))
	if err := c.Initialize(NewPixmap(50, 50), nil, nil, false); err != nil {
		t.Fatalf("Initialize() = %v", err)
	}
	c.SetBrushColor(RGBA8{R: 253, G: 1, B: 1, A: 99})
	c.SetBrushDiameter(10)
	c.StampAt(Pt(25, 25))

	classes, err := c.ExportClassMask()
	if err != nil {
		t.Fatalf("ExportClassMask() = %v", err)
	}
	if got := classes.At(25, 25); got != 1 {
		t.Errorf("drifted pixel exported as %d, want 1", got)
	}

	bare := newColorCanvas(t)
	if _, err := bare.ExportClassMask(); !errors.Is(err, ErrNoColorTable) {
		t.Errorf("ExportClassMask() without table error = %v, want ErrNoColorTable", err)
	}
}

// TestExportColorMaskCopies verifies exports never alias the live mask.
func TestExportColorMaskCopies(t *testing.T) {
	c := newDirectCanvas(t)
	c.SetBrushDiameter(10)
	c.StampAt(Pt(25, 25))

	out, err := c.ExportColorMask()
	if err != nil {
		t.Fatalf("ExportColorMask() = %v", err)
	}
	out.Clear(Transparent)

	if !c.OccupiedAt(25, 25) {
		t.Error("export aliases the live mask")
	}
}

// TestToggleEraseMode verifies the mode flip and its return value.
func TestToggleEraseMode(t *testing.T) {
	c := NewCanvas()
	if got := c.ToggleEraseMode(); got != ModeErase {
		t.Errorf("first toggle = %v, want erase", got)
	}
	if got := c.ToggleEraseMode(); got != ModePaint {
		t.Errorf("second toggle = %v, want paint", got)
	}
}

// TestToggleHelperVisibility verifies helper toggling and its gating.
func TestToggleHelperVisibility(t *testing.T) {
	helpers := []Helper{
		{Name: "previous mask", Layer: NewPixmap(50, 50), Visible: true},
		{Name: "registry", Layer: NewPixmap(50, 50)},
	}
	c := NewCanvas()
	if err := c.Initialize(NewPixmap(50, 50), nil, helpers, false); err != nil {
		t.Fatalf("Initialize() = %v", err)
	}

	if got := c.ToggleHelperVisibility(0); got {
		t.Error("toggle 0 = true, want false")
	}
	if c.HelperVisible(0) {
		t.Error("HelperVisible(0) = true")
	}
	if got := c.ToggleHelperVisibility(1); !got {
		t.Error("toggle 1 = false, want true")
	}

	if c.ToggleHelperVisibility(2) || c.ToggleHelperVisibility(-1) {
		t.Error("out-of-range toggle = true")
	}

	// Helper lists are adopted by copy on Initialize.
	if helpers[0].Visible != true {
		t.Error("caller slice mutated")
	}
}

// TestHelpersCopy verifies the Helpers accessor returns a detached copy.
func TestHelpersCopy(t *testing.T) {
	c := NewCanvas()
	helpers := []Helper{{Name: "prior", Layer: NewPixmap(20, 20), Visible: true}}
	if err := c.Initialize(NewPixmap(20, 20), nil, helpers, false); err != nil {
		t.Fatalf("Initialize() = %v", err)
	}

	got := c.Helpers()
	if len(got) != 1 || got[0].Name != "prior" {
		t.Fatalf("Helpers() = %+v", got)
	}
	got[0].Visible = false
	if !c.HelperVisible(0) {
		t.Error("accessor copy aliases canvas state")
	}
}
