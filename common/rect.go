package common

import (
	"image"

	"github.com/jakecoffman/cp"
)

// Rect is an axis-aligned box in world units. Y grows downwards.
type Rect struct {
	X, Y float64
	W, H float64
}

// R builds a Rect.
func R(x, y, w, h float64) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// RectFromImage converts an integer rectangle.
func RectFromImage(r image.Rectangle) Rect {
	return Rect{X: float64(r.Min.X), Y: float64(r.Min.Y), W: float64(r.Dx()), H: float64(r.Dy())}
}

func (r Rect) Left() float64   { return r.X }
func (r Rect) Right() float64  { return r.X + r.W }
func (r Rect) Top() float64    { return r.Y }
func (r Rect) Bottom() float64 { return r.Y + r.H }

func (r Rect) TopLeft() cp.Vector     { return cp.Vector{X: r.Left(), Y: r.Top()} }
func (r Rect) TopRight() cp.Vector    { return cp.Vector{X: r.Right(), Y: r.Top()} }
func (r Rect) BottomLeft() cp.Vector  { return cp.Vector{X: r.Left(), Y: r.Bottom()} }
func (r Rect) BottomRight() cp.Vector { return cp.Vector{X: r.Right(), Y: r.Bottom()} }

// Size returns the extent as a vector.
func (r Rect) Size() cp.Vector {
	return cp.Vector{X: r.W, Y: r.H}
}

// Empty reports whether the rect has no area.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Translate moves the rect by v.
func (r Rect) Translate(v cp.Vector) Rect {
	r.X += v.X
	r.Y += v.Y
	return r
}

// Overlaps reports whether the interiors of r and o intersect. Boxes that only
// share an edge do not overlap.
func (r Rect) Overlaps(o Rect) bool {
	return r.Left() < o.Right() &&
		r.Right() > o.Left() &&
		r.Top() < o.Bottom() &&
		r.Bottom() > o.Top()
}

// BB converts to a chipmunk bounding box. Chipmunk has no notion of up or
// down, so Top maps to B and Bottom to T.
func (r Rect) BB() cp.BB {
	return cp.BB{L: r.Left(), B: r.Top(), R: r.Right(), T: r.Bottom()}
}

// Touches reports whether r and o intersect, edges included. Used for culling
// where a shared edge should still draw.
func (r Rect) Touches(o Rect) bool {
	return r.BB().Intersects(o.BB())
}
