package datmant

import "errors"

// Configuration and lifecycle errors. Interaction-level oddities
// (out-of-canvas seeds, degenerate zoom rectangles, empty regions) are not
// errors: the corresponding operations absorb them as no-ops.
var (
	// ErrNoColorTable is returned when an operation needs a color table and
	// none was configured.
	ErrNoColorTable = errors.New("datmant: no color table configured")

	// ErrInvalidTable is returned when a color table fails validation.
	// Errors wrapping it carry the offending entry.
	ErrInvalidTable = errors.New("datmant: invalid color table")

	// ErrUnknownClass is returned when a class code has no entry in the
	// color table.
	ErrUnknownClass = errors.New("datmant: unknown class code")

	// ErrNotReady is returned by exports on an uninitialized canvas.
	ErrNotReady = errors.New("datmant: canvas not initialized")

	// ErrNoImage is returned when Initialize is called without an image layer.
	ErrNoImage = errors.New("datmant: nil image layer")

	// ErrDimensionMismatch is returned when a mask, class buffer or helper
	// layer does not match the image layer dimensions.
	ErrDimensionMismatch = errors.New("datmant: layer dimensions mismatch")
)
