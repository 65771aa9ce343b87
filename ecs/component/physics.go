package component

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/slotengine/ecs"
)

// PhysicsObject is integrated every tick. Objects only take part in collision
// handling when Collision is set and Collider is live.
type PhysicsObject struct {
	Transform ecs.Handle
	Collider  ecs.Handle
	Collision bool
	// Colliding is the overlap state after the last step.
	Colliding    bool
	Velocity     cp.Vector
	Acceleration cp.Vector
	Gravity      cp.Vector
	// MaxSpeed limits |Velocity| per axis. Zero or negative disables the axis.
	MaxSpeed cp.Vector
}
