package common

import (
	"math"

	"github.com/jakecoffman/cp"
)

// Vec is shorthand for building a cp.Vector.
func Vec(x, y float64) cp.Vector {
	return cp.Vector{X: x, Y: y}
}

// ClampAbs limits |v| to limit while keeping the sign of v. A limit <= 0
// disables clamping.
func ClampAbs(v, limit float64) float64 {
	if limit <= 0 {
		return v
	}
	if v > limit {
		return limit
	}
	if v < -limit {
		return -limit
	}
	return v
}

// FloorDiv returns floor(v/size) as an int64 clamped to [-limit, limit].
// NaN maps to zero.
func FloorDiv(v, size float64, limit int64) int64 {
	if size <= 0 || math.IsNaN(v) {
		return 0
	}
	f := math.Floor(v / size)
	if f >= float64(limit) {
		return limit
	}
	if f <= -float64(limit) {
		return -limit
	}
	return int64(f)
}
