package engine

import (
	"image"
	"log"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/slotengine/common"
	"github.com/milk9111/slotengine/ecs"
	"github.com/milk9111/slotengine/ecs/component"
	"github.com/milk9111/slotengine/prefabs"
	"github.com/milk9111/slotengine/script"
)

var _ script.Engine = (*World)(nil)

// own ties a record to a script entity. Records created without an entity
// live until the world closes.
func (w *World) own(entity int64, release func()) {
	if entity == 0 {
		return
	}
	if !w.Entities.Own(ecs.HandleFromInt(entity), release) {
		log.Printf("engine: entity %s is not alive, record is unowned", ecs.HandleFromInt(entity))
	}
}

func (w *World) CreateEntity(typ, name string) int64 {
	return w.Entities.Create(typ, name).Int()
}

func (w *World) DestroyEntity(entity int64) bool {
	return w.Entities.Destroy(ecs.HandleFromInt(entity))
}

func (w *World) FindEntity(name string) int64 {
	h, _ := w.Entities.Find(name)
	return h.Int()
}

func (w *World) CreateTransform(entity int64, x, y float64) int64 {
	h := w.Transforms.Create(component.NewTransform(common.Vec(x, y)))
	w.own(entity, func() { w.Transforms.Remove(h) })
	return h.Int()
}

func (w *World) Position(transform int64) (float64, float64, bool) {
	t, ok := w.Transforms.Lookup(ecs.HandleFromInt(transform))
	if !ok {
		return 0, 0, false
	}
	return t.Position.X, t.Position.Y, true
}

func (w *World) SetPosition(transform int64, x, y float64) bool {
	t, ok := w.Transforms.Lookup(ecs.HandleFromInt(transform))
	if !ok {
		return false
	}
	t.Position = common.Vec(x, y)
	return true
}

func (w *World) SetFlip(transform int64, flipH, flipV bool) bool {
	t, ok := w.Transforms.Lookup(ecs.HandleFromInt(transform))
	if !ok {
		return false
	}
	t.FlipH, t.FlipV = flipH, flipV
	return true
}

func (w *World) CreateSprite(entity, transform int64, file string, layer int) (int64, error) {
	z := uint8(min(max(layer, 0), component.LayerCount-1))
	h, err := w.Sprites.CreateSprite(ecs.HandleFromInt(transform), file, z)
	if err != nil {
		return 0, err
	}
	w.own(entity, func() { w.Sprites.RemoveSprite(h) })
	return h.Int(), nil
}

// CreateAnimation animates sprite with the clips of an animation spec file.
func (w *World) CreateAnimation(entity, sprite int64, file string) (int64, error) {
	spec, err := prefabs.LoadAnimation(w.prefabs, file)
	if err != nil {
		return 0, err
	}
	h := w.createAnimation(ecs.HandleFromInt(sprite), spec)
	w.own(entity, func() { w.Animations.Remove(h) })
	return h.Int(), nil
}

func (w *World) createAnimation(sprite ecs.Handle, spec prefabs.AnimationSpec) ecs.Handle {
	h := w.Animations.Create(sprite, spec.AnimatedSprite())
	if spec.Play != "" {
		w.Animations.Get(h).Play(spec.Play)
	}
	return h
}

// PlayAnimation starts the clip called name. A clip that is already playing
// keeps going.
func (w *World) PlayAnimation(animation int64, name string) bool {
	a, ok := w.Animations.Lookup(ecs.HandleFromInt(animation))
	if !ok {
		return false
	}
	i := a.Index(name)
	if i < 0 {
		return false
	}
	if a.Current == i && a.Animations[i].Playing {
		return true
	}
	a.Play(name)
	return true
}

func (w *World) CreateCamera(entity, transform int64, centered bool) int64 {
	h := w.Cameras.Create(ecs.HandleFromInt(transform), centered, true, image.Rectangle{})
	w.own(entity, func() { w.Cameras.Remove(h) })
	return h.Int()
}

func (w *World) CreateCollider(entity, transform int64, x, y, width, height float64, mask uint64) int64 {
	h := w.Collisions.Create(ecs.HandleFromInt(transform), common.R(x, y, width, height), mask)
	w.own(entity, func() { w.Collisions.Remove(h) })
	return h.Int()
}

func (w *World) Colliding(collider int64) bool {
	return w.Collisions.CheckCollision(ecs.HandleFromInt(collider))
}

func (w *World) Query(x, y, width, height float64, mask uint64) []int64 {
	hits := w.Collisions.Query(common.R(x, y, width, height), mask)
	out := make([]int64, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.Int())
	}
	return out
}

func (w *World) CreatePhysics(entity, transform, collider int64) int64 {
	h := w.Physics.Create(ecs.HandleFromInt(transform), ecs.HandleFromInt(collider))
	w.own(entity, func() { w.Physics.Remove(h) })
	return h.Int()
}

func (w *World) physics(h int64) (*component.PhysicsObject, bool) {
	return w.Physics.Get(ecs.HandleFromInt(h))
}

func (w *World) Velocity(physics int64) (float64, float64, bool) {
	obj, ok := w.physics(physics)
	if !ok {
		return 0, 0, false
	}
	return obj.Velocity.X, obj.Velocity.Y, true
}

func (w *World) SetVelocity(physics int64, x, y float64) bool {
	return w.setVector(physics, x, y, func(obj *component.PhysicsObject) *cp.Vector { return &obj.Velocity })
}

func (w *World) SetAcceleration(physics int64, x, y float64) bool {
	return w.setVector(physics, x, y, func(obj *component.PhysicsObject) *cp.Vector { return &obj.Acceleration })
}

func (w *World) SetGravity(physics int64, x, y float64) bool {
	return w.setVector(physics, x, y, func(obj *component.PhysicsObject) *cp.Vector { return &obj.Gravity })
}

func (w *World) SetMaxSpeed(physics int64, x, y float64) bool {
	return w.setVector(physics, x, y, func(obj *component.PhysicsObject) *cp.Vector { return &obj.MaxSpeed })
}

func (w *World) setVector(physics int64, x, y float64, field func(*component.PhysicsObject) *cp.Vector) bool {
	obj, ok := w.physics(physics)
	if !ok {
		return false
	}
	*field(obj) = common.Vec(x, y)
	return true
}

// BindInput calls handler with (event name, param) whenever event fires.
func (w *World) BindInput(entity int64, event, handler string) int64 {
	h := w.Inputs.Create(event, func(name string, param int64) error {
		_, err := w.host.Call(handler, name, param)
		return err
	})
	w.own(entity, func() { w.Inputs.Remove(h) })
	return h.Int()
}

// BindTick calls handler with dt every update.
func (w *World) BindTick(entity int64, handler string) int64 {
	h := w.Ticks.Create(func(dt float64) error {
		_, err := w.host.Call(handler, dt)
		return err
	})
	w.own(entity, func() { w.Ticks.Remove(h) })
	return h.Int()
}

func (w *World) SpawnPrefab(name string, x, y float64) (int64, error) {
	s, err := w.Spawn(name, common.Vec(x, y))
	if err != nil {
		return 0, err
	}
	return s.Entity.Int(), nil
}

func (w *World) Log(msg string) {
	log.Printf("script: %s", msg)
}
