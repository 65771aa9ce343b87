package component

import (
	"github.com/milk9111/slotengine/common"
	"github.com/milk9111/slotengine/ecs"
)

// Collider is a local axis-aligned box attached to a transform.
type Collider struct {
	Transform ecs.Handle
	AABB      common.Rect
	Mask      uint64
}

// MasksMatch reports whether two collider masks may collide: either both are
// zero or they share at least one bit. Two nonzero masks without a common bit
// never collide.
func MasksMatch(a, b uint64) bool {
	if a != 0 && b != 0 {
		return a&b != 0
	}
	return true
}
