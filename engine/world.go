// Package engine owns every runtime system and runs them in a fixed order.
package engine

import (
	"io/fs"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/slotengine/assets"
	"github.com/milk9111/slotengine/ecs"
	"github.com/milk9111/slotengine/ecs/component"
	"github.com/milk9111/slotengine/ecs/render"
	"github.com/milk9111/slotengine/ecs/system"
	"github.com/milk9111/slotengine/levels"
	"github.com/milk9111/slotengine/prefabs"
	"github.com/milk9111/slotengine/script"
)

type Options struct {
	// CellSize of the collision grid. Zero uses system.DefaultCellSize.
	CellSize float64
	// Loader decodes textures. Nil reads the asset directory and keeps
	// images on the CPU.
	Loader render.Loader
	// Prefabs is where prefab and animation specs come from.
	Prefabs *prefabs.Source
	// Levels is where maps are read from. Nil uses the embedded maps.
	Levels fs.FS
	Host   script.Host
}

type closer struct {
	name  string
	close func()
}

// World is the engine context. Systems are created leaves first and closed
// in exactly the reverse order.
type World struct {
	Transforms *system.TransformSystem
	Collisions *system.CollisionSystem
	Cameras    *system.CameraSystem
	Textures   *render.TextureCache
	Sprites    *system.SpriteSystem
	Animations *system.AnimationSystem
	Tilemaps   *system.TilemapSystem
	Physics    *system.PhysicsSystem
	Ticks      *system.TickSystem
	Entities   *system.EntitySystem
	Inputs     *system.InputSystem

	host      script.Host
	prefabs   prefabs.Source
	levels    fs.FS
	specs     map[string]*prefabs.PrefabSpec
	scheduler *Scheduler
	closers   []closer
	closed    bool

	// onClose observes teardown.
	onClose func(name string)
}

func NewWorld(opts Options) *World {
	w := &World{
		host:    opts.Host,
		prefabs: prefabs.Default,
		levels:  opts.Levels,
		specs:   make(map[string]*prefabs.PrefabSpec),
	}
	if w.host == nil {
		w.host = script.NopHost{}
	}
	if opts.Prefabs != nil {
		w.prefabs = *opts.Prefabs
	}
	if w.levels == nil {
		w.levels = levels.LevelsFS
	}
	loader := opts.Loader
	if loader == nil {
		loader = render.NewLoader(assets.Overlay{Dir: assets.Dir}, nil)
	}

	w.Transforms = system.NewTransformSystem()
	w.track("transform", w.Transforms.Close)
	w.Collisions = system.NewCollisionSystem(w.Transforms, opts.CellSize)
	w.track("collision", w.Collisions.Close)
	w.Cameras = system.NewCameraSystem(w.Transforms)
	w.track("camera", w.Cameras.Close)
	w.Textures = render.NewTextureCache(loader)
	w.track("textures", w.Textures.Close)
	w.Sprites = system.NewSpriteSystem(w.Transforms, w.Cameras, w.Textures)
	w.track("sprite", w.Sprites.Close)
	w.Animations = system.NewAnimationSystem(w.Sprites)
	w.track("animation", w.Animations.Close)
	w.Tilemaps = system.NewTilemapSystem(w.Sprites, w.Collisions)
	w.Tilemaps.SetHost(w.host)
	w.track("tilemap", w.Tilemaps.Close)
	w.Physics = system.NewPhysicsSystem(w.Transforms, w.Collisions)
	w.track("physics", w.Physics.Close)
	w.Ticks = system.NewTickSystem()
	w.track("tick", w.Ticks.Close)
	w.Entities = system.NewEntitySystem()
	w.track("entity", w.Entities.Close)
	w.Inputs = system.NewInputSystem()
	w.track("input", w.Inputs.Close)

	w.scheduler = NewScheduler()
	w.scheduler.Add("input", w.Inputs)
	w.scheduler.Add("collision", w.Collisions)
	w.scheduler.Add("entity", w.Entities)
	w.scheduler.Add("tick", w.Ticks)
	w.scheduler.Add("physics", w.Physics)
	w.scheduler.Add("animation", w.Animations)
	w.scheduler.Add("tilemap", w.Tilemaps)

	return w
}

func (w *World) track(name string, fn func()) {
	w.closers = append(w.closers, closer{name: name, close: fn})
}

// Host returns the script host callbacks are routed to.
func (w *World) Host() script.Host {
	return w.host
}

// SetHost routes script callbacks and map objects to h. nil installs the
// no-op host.
func (w *World) SetHost(h script.Host) {
	if h == nil {
		h = script.NopHost{}
	}
	w.host = h
	w.Tilemaps.SetHost(h)
}

// Stages returns the update stages in run order.
func (w *World) Stages() []string {
	return w.scheduler.Stages()
}

// Update runs one frame of every system. dt is in seconds.
func (w *World) Update(dt float64) {
	if w == nil || w.closed {
		return
	}
	w.scheduler.Update(dt)
}

// Draw renders every camera into p.
func (w *World) Draw(p render.Presenter) {
	if w == nil || w.closed {
		return
	}
	w.Sprites.Draw(p)
}

// LoadMap builds m at the world origin. The map owns its transform, which
// is removed together with the map.
func (w *World) LoadMap(m *levels.Map) ecs.Handle {
	transform := w.Transforms.Create(component.NewTransform(cp.Vector{}))
	h := w.Tilemaps.Create(transform, m)
	if tm, ok := w.Tilemaps.Get(h); ok {
		tm.Release = func() { w.Transforms.Remove(transform) }
	}
	return h
}

// LoadMapFile reads name from the world's level files and builds it.
func (w *World) LoadMapFile(name string) (ecs.Handle, error) {
	m, err := levels.Load(w.levels, name)
	if err != nil {
		return ecs.Invalid, err
	}
	return w.LoadMap(m), nil
}

// Close tears every system down in reverse creation order. Calling it again
// does nothing.
func (w *World) Close() {
	if w == nil || w.closed {
		return
	}
	w.closed = true
	for i := len(w.closers) - 1; i >= 0; i-- {
		c := w.closers[i]
		c.close()
		if w.onClose != nil {
			w.onClose(c.name)
		}
	}
}
