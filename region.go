package datmant

// FillRegion paints the maximal 4-connected unoccupied region containing
// seed with the brush color, regardless of the brush composite mode.
// The seed is truncated to its pixel. Out-of-canvas seeds, seeds on an
// occupied pixel and zero-alpha brush colors are absorbed as no-ops without
// touching the undo history; in particular, filling the same seed twice is
// idempotent.
func (c *Canvas) FillRegion(seed Point) {
	if !c.ready || c.brush.Color.A == 0 {
		return
	}
	sx, sy := seed.pixel()
	spans := floodSpans(c.width, c.height, sx, sy, func(x, y int) bool {
		return c.mask.AlphaAt(x, y) == 0
	})
	if len(spans) == 0 {
		Logger().Debug("fill region absorbed", "x", sx, "y", sy)
		return
	}
	c.snapshot()
	c.paintSpans(spans, c.brush.Color, c.brushCode)
	Logger().Debug("fill region", "x", sx, "y", sy, "pixels", spanArea(spans))
}

// EraseCurrentColorRegion clears the maximal 4-connected occupied region
// containing seed whose pixels match the brush color within the codec
// tolerance. Seeds on empty pixels or on a different class are absorbed as
// no-ops.
func (c *Canvas) EraseCurrentColorRegion(seed Point) {
	if !c.ready {
		return
	}
	ref := c.brush.Color
	tol := c.matchTolerance()
	sx, sy := seed.pixel()
	spans := floodSpans(c.width, c.height, sx, sy, func(x, y int) bool {
		return c.mask.AlphaAt(x, y) > 0 && c.mask.GetPixel(x, y).MatchesRGB(ref, tol)
	})
	if len(spans) == 0 {
		Logger().Debug("erase region absorbed", "x", sx, "y", sy)
		return
	}
	c.snapshot()
	c.paintSpans(spans, Transparent, 0)
	Logger().Debug("erase region", "x", sx, "y", sy, "pixels", spanArea(spans))
}

// EraseAnyColorRegion clears the maximal 4-connected occupied region
// containing seed, regardless of pixel color. Seeds on empty pixels are
// absorbed as no-ops.
func (c *Canvas) EraseAnyColorRegion(seed Point) {
	if !c.ready {
		return
	}
	sx, sy := seed.pixel()
	spans := c.occupiedRegion(sx, sy)
	if len(spans) == 0 {
		Logger().Debug("erase region absorbed", "x", sx, "y", sy)
		return
	}
	c.snapshot()
	c.paintSpans(spans, Transparent, 0)
	Logger().Debug("erase region", "x", sx, "y", sy, "pixels", spanArea(spans))
}

// Recolor repaints the maximal 4-connected occupied region containing seed
// with the brush color, preserving the region shape. The region may span
// several classes; every pixel of it takes the brush color and class.
// Seeds on empty pixels and zero-alpha brush colors are absorbed as no-ops.
func (c *Canvas) Recolor(seed Point) {
	if !c.ready || c.brush.Color.A == 0 {
		return
	}
	sx, sy := seed.pixel()
	spans := c.occupiedRegion(sx, sy)
	if len(spans) == 0 {
		Logger().Debug("recolor absorbed", "x", sx, "y", sy)
		return
	}
	c.snapshot()
	c.paintSpans(spans, c.brush.Color, c.brushCode)
	Logger().Debug("recolor", "x", sx, "y", sy, "pixels", spanArea(spans))
}

// occupiedRegion returns the 4-connected occupied region containing the
// pixel (sx, sy).
func (c *Canvas) occupiedRegion(sx, sy int) []span {
	return floodSpans(c.width, c.height, sx, sy, func(x, y int) bool {
		return c.mask.AlphaAt(x, y) > 0
	})
}

// matchTolerance is the per-channel color tolerance for region matching.
func (c *Canvas) matchTolerance() uint8 {
	if c.table != nil {
		return c.table.Tolerance()
	}
	return DefaultTolerance
}

// floodSpans computes the maximal 4-connected region of pixels satisfying
// pred, reachable from (sx, sy), as clipped spans in discovery order.
// Returns nil when the seed is out of range or fails pred.
//
// The fill is span-based: each popped seed expands into a full horizontal
// run, the run is recorded, and the rows above and below are scanned for
// the starts of adjacent runs. A visited bitmap keeps the result correct
// for predicates the mutation does not invalidate, such as recoloring an
// occupied region with pixels that stay occupied.
func floodSpans(w, h, sx, sy int, pred func(x, y int) bool) []span {
	if sx < 0 || sx >= w || sy < 0 || sy >= h || !pred(sx, sy) {
		return nil
	}

	visited := make([]bool, w*h)
	type pt struct{ x, y int }
	stack := []pt{{sx, sy}}
	var spans []span

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[p.y*w+p.x] || !pred(p.x, p.y) {
			continue
		}

		x1 := p.x
		for x1 > 0 && !visited[p.y*w+x1-1] && pred(x1-1, p.y) {
			x1--
		}
		x2 := p.x + 1
		for x2 < w && !visited[p.y*w+x2] && pred(x2, p.y) {
			x2++
		}

		row := visited[p.y*w+x1 : p.y*w+x2]
		for i := range row {
			row[i] = true
		}
		spans = append(spans, span{x1: x1, x2: x2, y: p.y})

		for _, ny := range [2]int{p.y - 1, p.y + 1} {
			if ny < 0 || ny >= h {
				continue
			}
			inRun := false
			for x := x1; x < x2; x++ {
				ok := !visited[ny*w+x] && pred(x, ny)
				if ok && !inRun {
					stack = append(stack, pt{x: x, y: ny})
				}
				inRun = ok
			}
		}
	}

	return spans
}

// spanArea returns the total pixel count covered by spans.
func spanArea(spans []span) int {
	n := 0
	for _, s := range spans {
		n += s.x2 - s.x1
	}
	return n
}
