// Package datmant provides the annotation canvas engine used to label
// surface defects on photographic imagery by painting raster masks.
//
// # Overview
//
// The engine owns an in-memory raster model and the editing algorithms that
// operate on it: brush compositing (disc stamps and round-capped strokes),
// flood-fill based region add, remove and recolor, a bidirectional
// color/class-code codec, and a bounded undo history. Window wiring, menus
// and input handling are deliberately out of scope; a GUI drives the engine
// through the command methods on [Canvas].
//
// # Quick Start
//
//	table, _ := datmant.NewColorTable([]datmant.ClassEntry{
//		{Label: "surface", Color: datmant.RGBA8{R: 255, A: 99}, Code: 1},
//		{Label: "defect", Color: datmant.RGBA8{B: 255, A: 99}, Code: 2},
//	}, 2)
//
//	c := datmant.NewCanvas(datmant.WithColorTable(table))
//	if err := c.Initialize(img, nil, nil, true); err != nil {
//		// ...
//	}
//
//	c.SetBrushColor(datmant.RGBA8{R: 255, A: 99})
//	c.StampAt(datmant.Pt(50, 50))
//	c.FillRegion(datmant.Pt(10, 10))
//
//	classes, _ := c.ExportClassMask()
//
// # Layers
//
// A ready canvas holds a read-only image layer, optional read-only helper
// layers with per-layer visibility, and one mutable mask layer. The mask is
// RGBA; a pixel is occupied exactly when its alpha is nonzero. In direct
// mode the canvas additionally maintains a class buffer, one class code per
// pixel, kept consistent with the mask on every edit.
//
// # Coordinate System
//
// Coordinates are continuous with the origin at the top-left, x increasing
// right and y increasing down. The point (x, y) with integer x and y lies at
// the center of pixel (x, y). Operations taking a seed truncate it to the
// containing pixel.
//
// # Concurrency
//
// A Canvas is not safe for concurrent use. All operations run synchronously
// on the caller's goroutine, matching the single event loop of the
// annotation UI.
package datmant

// Version is the current version of the engine.
const Version = "1.2.0"
