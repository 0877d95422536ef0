package datmant

// viewStack tracks nested zoom regions. An empty stack means the full-image
// view; pushed rectangles always nest inside the view below them.
type viewStack struct {
	full  Rect
	stack []Rect
}

func (v *viewStack) reset(full Rect) {
	v.full = full
	v.stack = nil
}

func (v *viewStack) current() Rect {
	if len(v.stack) == 0 {
		return v.full
	}
	return v.stack[len(v.stack)-1]
}

func (v *viewStack) push(r Rect) bool {
	if r.Empty() || !v.current().ContainsRect(r) {
		return false
	}
	v.stack = append(v.stack, r)
	return true
}

func (v *viewStack) pop() bool {
	if len(v.stack) == 0 {
		return false
	}
	v.stack = v.stack[:len(v.stack)-1]
	return true
}

func (v *viewStack) clear() {
	v.stack = nil
}

func (v *viewStack) depth() int { return len(v.stack) }

// ZoomIn pushes a zoom region onto the view stack. The rectangle must have
// positive area and lie entirely within the current view; degenerate or
// escaping rectangles are absorbed, returning false.
func (c *Canvas) ZoomIn(r Rect) bool {
	if !c.ready {
		return false
	}
	if !c.views.push(r) {
		Logger().Debug("zoom rejected", "x", r.X, "y", r.Y, "w", r.W, "h", r.H)
		return false
	}
	return true
}

// ZoomOut pops the innermost zoom region, returning to the view beneath it.
// Returns false when already at the full-image view.
func (c *Canvas) ZoomOut() bool {
	if !c.ready {
		return false
	}
	return c.views.pop()
}

// View returns the currently visible region in canvas coordinates.
func (c *Canvas) View() Rect {
	if !c.ready {
		return Rect{}
	}
	return c.views.current()
}

// ResetView drops all zoom regions, returning to the full-image view.
func (c *Canvas) ResetView() {
	if c.ready {
		c.views.clear()
	}
}

// ZoomDepth returns the number of nested zoom regions.
func (c *Canvas) ZoomDepth() int {
	return c.views.depth()
}
