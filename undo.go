package datmant

// Undo depth bounds.
const (
	DefaultUndoDepth = 16
	MaxUndoDepth     = 128
)

// undoFrame is one restorable state: deep copies of the mask bytes and, in
// direct mode, of the class codes. Frames never alias live buffers.
type undoFrame struct {
	mask    []uint8
	classes []uint8 // nil outside direct mode
}

// history is a bounded stack of undo frames. Pushing onto a full stack
// evicts the oldest frame, so the newest depth states stay restorable.
type history struct {
	frames []undoFrame
	depth  int
}

func (h *history) push(f undoFrame) {
	if len(h.frames) >= h.depth {
		copy(h.frames, h.frames[1:])
		h.frames[len(h.frames)-1] = f
		return
	}
	h.frames = append(h.frames, f)
}

func (h *history) pop() (undoFrame, bool) {
	if len(h.frames) == 0 {
		return undoFrame{}, false
	}
	f := h.frames[len(h.frames)-1]
	h.frames[len(h.frames)-1] = undoFrame{}
	h.frames = h.frames[:len(h.frames)-1]
	return f, true
}

// clear drops all frames and releases their buffers.
func (h *history) clear() {
	h.frames = nil
}

func (h *history) len() int { return len(h.frames) }

// snapshot pushes the current mask and class state onto the history.
// Mutating operations call it exactly once, before their first write, so
// every frame restores a complete pre-operation state.
func (c *Canvas) snapshot() {
	f := undoFrame{mask: make([]uint8, len(c.mask.Data()))}
	copy(f.mask, c.mask.Data())
	if c.classes != nil {
		f.classes = make([]uint8, len(c.classes.Data()))
		copy(f.classes, c.classes.Data())
	}
	c.hist.push(f)
	Logger().Debug("snapshot", "frames", c.hist.len())
}

// Undo restores the most recent snapshot, reporting whether a state was
// restored. An empty history is not an error: false means there is nothing
// left to undo. There is no redo.
func (c *Canvas) Undo() bool {
	if !c.ready {
		return false
	}
	f, ok := c.hist.pop()
	if !ok {
		Logger().Debug("undo on empty history")
		return false
	}
	copy(c.mask.Data(), f.mask)
	if c.classes != nil && f.classes != nil {
		copy(c.classes.Data(), f.classes)
	}
	Logger().Debug("undo", "frames", c.hist.len())
	return true
}

// UndoCount returns the number of states currently restorable by Undo.
func (c *Canvas) UndoCount() int {
	return c.hist.len()
}

func clampUndoDepth(d int) int {
	if d < 1 {
		return 1
	}
	if d > MaxUndoDepth {
		return MaxUndoDepth
	}
	return d
}
