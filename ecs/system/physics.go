package system

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/slotengine/common"
	"github.com/milk9111/slotengine/ecs"
	"github.com/milk9111/slotengine/ecs/component"
)

// PhysicsSystem integrates velocities with explicit Euler steps and pushes
// objects out of colliders they newly ran into.
type PhysicsSystem struct {
	transforms *TransformSystem
	collisions *CollisionSystem
	objects    *ecs.Arena[component.PhysicsObject]
}

func NewPhysicsSystem(transforms *TransformSystem, collisions *CollisionSystem) *PhysicsSystem {
	return &PhysicsSystem{
		transforms: transforms,
		collisions: collisions,
		objects:    ecs.NewArena[component.PhysicsObject](32),
	}
}

// Create adds a physics object. Pass ecs.Invalid as collider for objects that
// should move through everything.
func (ps *PhysicsSystem) Create(transform, collider ecs.Handle) ecs.Handle {
	return ps.objects.Insert(component.PhysicsObject{
		Transform: transform,
		Collider:  collider,
		Collision: collider.Valid(),
	})
}

func (ps *PhysicsSystem) Get(h ecs.Handle) (*component.PhysicsObject, bool) {
	return ps.objects.Get(h)
}

func (ps *PhysicsSystem) Remove(h ecs.Handle) bool {
	return ps.objects.Remove(h)
}

func (ps *PhysicsSystem) Len() int {
	return ps.objects.Len()
}

func (ps *PhysicsSystem) Each(fn func(ecs.Handle, *component.PhysicsObject)) {
	ps.objects.Each(fn)
}

func (ps *PhysicsSystem) Update(dt float64) {
	ps.objects.Each(func(_ ecs.Handle, obj *component.PhysicsObject) {
		ps.step(obj, dt)
	})
}

func (ps *PhysicsSystem) step(obj *component.PhysicsObject, dt float64) {
	t, ok := ps.transforms.Lookup(obj.Transform)
	if !ok {
		return
	}

	last := t.Position
	collides := false
	if obj.Collision {
		_, collides = ps.collisions.Get(obj.Collider)
	}
	wasColliding := collides && ps.collisions.CheckCollision(obj.Collider)

	t.Position = last.Add(obj.Velocity.Mult(dt))
	obj.Velocity = obj.Velocity.Add(obj.Gravity.Add(obj.Acceleration).Mult(dt))

	if collides {
		if !wasColliding && ps.collisions.CheckCollision(obj.Collider) {
			ps.resolve(t, obj, last, dt)
		}
		obj.Colliding = ps.collisions.CheckCollision(obj.Collider)
	}

	obj.Velocity.X = common.ClampAbs(obj.Velocity.X, obj.MaxSpeed.X)
	obj.Velocity.Y = common.ClampAbs(obj.Velocity.Y, obj.MaxSpeed.Y)
}

// resolve walks t back towards last in unit steps until the collider is
// clear, then tries to keep the remaining motion along x, then along y.
func (ps *PhysicsSystem) resolve(t *component.Transform, obj *component.PhysicsObject, last cp.Vector, dt float64) {
	naive := t.Position
	moved := naive.Sub(last)
	dist := moved.Length()
	dir := moved.Normalize()

	recovered := naive
	steps := int(math.Ceil(dist))
	for i := 1; i <= steps; i++ {
		back := math.Min(float64(i), dist)
		recovered = naive.Sub(dir.Mult(back))
		t.Position = recovered
		if !ps.collisions.CheckCollision(obj.Collider) {
			break
		}
	}

	rest := naive.Sub(recovered)
	t.Position = recovered.Add(cp.Vector{X: rest.X})
	switch {
	case !ps.collisions.CheckCollision(obj.Collider):
		obj.Velocity.Y = 0
	default:
		t.Position = recovered.Add(cp.Vector{Y: rest.Y})
		if !ps.collisions.CheckCollision(obj.Collider) {
			obj.Velocity.X = 0
			break
		}
		t.Position = recovered
		obj.Velocity = cp.Vector{}
	}

	obj.Velocity = obj.Velocity.Add(obj.Acceleration.Mult(dt))
}

// Close drops every physics object.
func (ps *PhysicsSystem) Close() {
	ps.objects.Clear()
}
