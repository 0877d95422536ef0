package datmant

import "math"

// Point represents a 2D point or vector in canvas coordinates.
// Integer coordinates address pixel centers.
type Point struct {
	X, Y float64
}

// Pt is a convenience function to create a Point.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns the sum of two points (vector addition).
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns the difference of two points (vector subtraction).
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Mul returns the point scaled by a scalar.
func (p Point) Mul(s float64) Point {
	return Point{X: p.X * s, Y: p.Y * s}
}

// Dot returns the dot product of two vectors.
func (p Point) Dot(q Point) float64 {
	return p.X*q.X + p.Y*q.Y
}

// Length returns the length of the vector.
func (p Point) Length() float64 {
	return math.Sqrt(p.X*p.X + p.Y*p.Y)
}

// LengthSquared returns the squared length of the vector.
func (p Point) LengthSquared() float64 {
	return p.X*p.X + p.Y*p.Y
}

// Distance returns the distance between two points.
func (p Point) Distance(q Point) float64 {
	return p.Sub(q).Length()
}

// pixel truncates the point to the containing pixel coordinates.
func (p Point) pixel() (int, int) {
	return int(p.X), int(p.Y)
}

// segmentDistanceSquared returns the squared distance from p to the line
// segment ab. A degenerate segment collapses to point distance.
func segmentDistanceSquared(p, a, b Point) float64 {
	ab := b.Sub(a)
	denom := ab.LengthSquared()
	if denom == 0 {
		return p.Sub(a).LengthSquared()
	}
	t := p.Sub(a).Dot(ab) / denom
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	closest := Point{X: a.X + ab.X*t, Y: a.Y + ab.Y*t}
	return p.Sub(closest).LengthSquared()
}

// Rect is an axis-aligned rectangle in canvas coordinates, used for zoom
// regions.
type Rect struct {
	X, Y, W, H float64
}

// RectOf creates a Rect from origin and size.
func RectOf(x, y, w, h float64) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// ContainsRect reports whether o lies entirely within r.
func (r Rect) ContainsRect(o Rect) bool {
	return o.X >= r.X && o.Y >= r.Y &&
		o.X+o.W <= r.X+r.W && o.Y+o.H <= r.Y+r.H
}
