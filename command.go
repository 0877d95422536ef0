package datmant

// The UI-facing command surface sits on Canvas: FillRegion,
// EraseCurrentColorRegion, EraseAnyColorRegion and Recolor (region.go),
// Undo (undo.go), ZoomIn and ZoomOut (view.go), and the toggles below.
// Pointer motion reaches the engine through StampAt and StrokeTo.

// ToggleEraseMode flips the brush between paint and erase, returning the
// resulting mode. Usable at any time; the mode is brush configuration, not
// canvas state.
func (c *Canvas) ToggleEraseMode() CompositeMode {
	if c.brush.Mode == ModePaint {
		c.brush.Mode = ModeErase
	} else {
		c.brush.Mode = ModePaint
	}
	return c.brush.Mode
}

// ToggleHelperVisibility flips the visibility of helper layer i, returning
// the resulting visibility. Indexes out of range are absorbed, returning
// false.
func (c *Canvas) ToggleHelperVisibility(i int) bool {
	if !c.ready || i < 0 || i >= len(c.helpers) {
		return false
	}
	c.helpers[i].Visible = !c.helpers[i].Visible
	return c.helpers[i].Visible
}
