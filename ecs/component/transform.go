package component

import "github.com/jakecoffman/cp"

// Transform is a flat world-space pose. There is no parent/child hierarchy.
type Transform struct {
	Position cp.Vector
	Scale    cp.Vector
	// Rotation in degrees, clockwise.
	Rotation float64
	FlipH    bool
	FlipV    bool
}

// NewTransform returns a transform at pos with unit scale.
func NewTransform(pos cp.Vector) Transform {
	return Transform{Position: pos, Scale: cp.Vector{X: 1, Y: 1}}
}
