package engine

import (
	"errors"
	"fmt"
	"image"
	"log"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/slotengine/ecs"
	"github.com/milk9111/slotengine/ecs/system"
	"github.com/milk9111/slotengine/prefabs"
	"github.com/milk9111/slotengine/script"
)

// Spawned lists the records created for one prefab instance. Components the
// prefab does not have are ecs.Invalid.
type Spawned struct {
	Entity    ecs.Handle
	Transform ecs.Handle
	Sprite    ecs.Handle
	Collider  ecs.Handle
	Physics   ecs.Handle
	Animation ecs.Handle
	Camera    ecs.Handle
}

func (s Spawned) scriptValue() map[string]any {
	return map[string]any{
		"entity":    s.Entity.Int(),
		"transform": s.Transform.Int(),
		"sprite":    s.Sprite.Int(),
		"collider":  s.Collider.Int(),
		"physics":   s.Physics.Int(),
		"animation": s.Animation.Int(),
		"camera":    s.Camera.Int(),
	}
}

// Prefab returns the spec called name, reading it on first use.
func (w *World) Prefab(name string) (*prefabs.PrefabSpec, error) {
	if spec, ok := w.specs[name]; ok {
		return spec, nil
	}
	spec, err := prefabs.LoadPrefab(w.prefabs, name)
	if err != nil {
		return nil, err
	}
	w.specs[name] = spec
	return spec, nil
}

// InvalidatePrefabs forgets every cached spec so the next spawn rereads it.
func (w *World) InvalidatePrefabs() {
	clear(w.specs)
}

// Spawn creates an instance of the prefab called name at at.
func (w *World) Spawn(name string, at cp.Vector) (Spawned, error) {
	spec, err := w.Prefab(name)
	if err != nil {
		return Spawned{}, fmt.Errorf("engine: spawn %s: %w", name, err)
	}
	return w.SpawnSpec(spec, at), nil
}

// SpawnSpec creates an entity owning every component of spec. Components
// that fail to build are logged and left out.
func (w *World) SpawnSpec(spec *prefabs.PrefabSpec, at cp.Vector) Spawned {
	var s Spawned
	s.Entity = w.Entities.Create(spec.Type, spec.Name)
	entity := s.Entity.Int()

	s.Transform = w.Transforms.Create(spec.Transform.Transform(at))
	transform := s.Transform
	w.own(entity, func() { w.Transforms.Remove(transform) })

	if spec.Sprite != nil {
		w.spawnSprite(&s, spec)
	}

	if c := spec.Collider; c != nil {
		collider := w.Collisions.Create(s.Transform, c.Rect(), c.Mask)
		s.Collider = collider
		w.own(entity, func() { w.Collisions.Remove(collider) })
	}

	if p := spec.Physics; p != nil {
		physics := w.Physics.Create(s.Transform, s.Collider)
		if obj, ok := w.Physics.Get(physics); ok {
			obj.Velocity = p.Velocity.Vector()
			obj.Acceleration = p.Acceleration.Vector()
			obj.Gravity = p.Gravity.Vector()
			obj.MaxSpeed = p.MaxSpeed.Vector()
			if p.Ghost {
				obj.Collision = false
			}
		}
		s.Physics = physics
		w.own(entity, func() { w.Physics.Remove(physics) })
	}

	if c := spec.Camera; c != nil {
		var viewport image.Rectangle
		if c.Viewport != nil {
			viewport = c.Viewport.Image()
		}
		camera := w.Cameras.Create(s.Transform, c.Centered, c.FillTarget, viewport)
		s.Camera = camera
		w.own(entity, func() { w.Cameras.Remove(camera) })
	}

	if spec.Script != nil {
		w.bindScript(s, spec)
	}
	return s
}

func (w *World) spawnSprite(s *Spawned, spec *prefabs.PrefabSpec) {
	sp := spec.Sprite
	sprite, err := w.Sprites.CreateSprite(s.Transform, sp.Image, sp.LayerIndex())
	if err != nil {
		log.Printf("engine: prefab %s sprite %s: %v", spec.Name, sp.Image, err)
		return
	}
	if v, ok := w.Sprites.Sprite(sprite); ok {
		v.Offset = cp.Vector{X: sp.OffsetX, Y: sp.OffsetY}
		if sp.Source != nil {
			v.Source = sp.Source.Image()
		}
	}
	s.Sprite = sprite
	w.own(s.Entity.Int(), func() { w.Sprites.RemoveSprite(sprite) })

	a := spec.Animation
	if a == nil {
		return
	}
	anim := *a
	if a.File != "" {
		loaded, err := prefabs.LoadAnimation(w.prefabs, a.File)
		if err != nil {
			log.Printf("engine: prefab %s animation %s: %v", spec.Name, a.File, err)
			return
		}
		anim.Clips = loaded.Clips
		if anim.Default == "" {
			anim.Default = loaded.Default
		}
		if anim.Play == "" {
			anim.Play = loaded.Play
		}
	}
	animation := w.createAnimation(sprite, anim)
	s.Animation = animation
	w.own(s.Entity.Int(), func() { w.Animations.Remove(animation) })
}

func (w *World) bindScript(s Spawned, spec *prefabs.PrefabSpec) {
	sc := spec.Script
	entity := s.Entity.Int()
	if sc.Tick != "" {
		w.BindTick(entity, sc.Tick)
	}
	for event, handler := range sc.Inputs {
		w.BindInput(entity, event, handler)
	}
	if sc.Spawn == "" {
		return
	}
	err := system.Guard(func() error {
		_, err := w.host.Call(sc.Spawn, entity, s.scriptValue())
		return err
	})
	if err != nil && !errors.Is(err, script.ErrNotLoaded) {
		log.Printf("engine: prefab %s spawn handler %s: %v", spec.Name, sc.Spawn, err)
	}
}
