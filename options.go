package datmant

// Option configures a Canvas during creation.
//
// Example:
//
//	// Color-mode canvas with default history depth
//	c := datmant.NewCanvas()
//
//	// Classful canvas with a deeper history
//	c := datmant.NewCanvas(
//		datmant.WithColorTable(table),
//		datmant.WithUndoDepth(32),
//	)
type Option func(*canvasOptions)

// canvasOptions holds optional configuration for Canvas creation.
type canvasOptions struct {
	table     *ColorTable
	undoDepth int
}

// defaultCanvasOptions returns the default canvas options.
func defaultCanvasOptions() canvasOptions {
	return canvasOptions{
		undoDepth: DefaultUndoDepth,
	}
}

// WithColorTable installs the color table used to translate between mask
// colors and class codes. A table is required for direct mode and for class
// exports; color-only editing works without one.
func WithColorTable(t *ColorTable) Option {
	return func(o *canvasOptions) {
		o.table = t
	}
}

// WithUndoDepth sets how many snapshots the undo history keeps before
// evicting the oldest, clamped to [1, MaxUndoDepth].
// The default is DefaultUndoDepth.
func WithUndoDepth(n int) Option {
	return func(o *canvasOptions) {
		o.undoDepth = clampUndoDepth(n)
	}
}
