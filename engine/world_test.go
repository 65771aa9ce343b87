package engine

import (
	"slices"
	"testing"
	"testing/fstest"

	"github.com/milk9111/slotengine/common"
	"github.com/milk9111/slotengine/ecs"
	"github.com/milk9111/slotengine/ecs/component"
	"github.com/milk9111/slotengine/levels"
	"github.com/milk9111/slotengine/prefabs"
	"github.com/milk9111/slotengine/script"
)

type hostCall struct {
	name string
	args []any
}

type recordingHost struct {
	calls   []hostCall
	objects []levels.Object
	evals   []string
	panicOn string
}

func (h *recordingHost) Call(name string, args ...any) (any, error) {
	h.calls = append(h.calls, hostCall{name: name, args: args})
	if name == h.panicOn {
		panic("handler blew up")
	}
	return nil, nil
}

func (h *recordingHost) Instantiate(obj levels.Object) error {
	h.objects = append(h.objects, obj)
	return nil
}

func (h *recordingHost) Eval(src string) error {
	h.evals = append(h.evals, src)
	return nil
}

func (h *recordingHost) names() []string {
	out := make([]string, 0, len(h.calls))
	for _, c := range h.calls {
		out = append(out, c.name)
	}
	return out
}

var testPrefabs = fstest.MapFS{
	"box.yaml": {Data: []byte(`
type: Box
transform: {x: 1, y: 2}
sprite:
  image: crate.png
  layer: 3
  offset_x: -2
collider: {width: 16, height: 16, mask: 1}
physics:
  velocity: {x: 5}
  max_speed: {x: 10, y: 10}
animation:
  file: box_anim.yaml
  play: spin
camera: {centered: true}
script:
  spawn: box_spawned
  tick: box_tick
  inputs:
    jump: box_jump
`)},
	"box_anim.yaml": {Data: []byte(`
clips:
  - name: spin
    frames:
      - {duration: 1, x: 0, y: 0, width: 8, height: 8}
      - {duration: 1, x: 8, y: 0, width: 8, height: 8}
`)},
	"ghost.yaml":     {Data: []byte("physics: {ghost: true}\ncollider: {width: 4, height: 4}\n")},
	"broken.yaml":    {Data: []byte("sprite: {image: missing.png}\n")},
	"follower.yaml":  {Data: []byte("transform: {x: 3}\n")},
	"not_yaml.yaml":  {Data: []byte("sprite: [")},
	"no_script.yaml": {Data: []byte("name: plain\n")},
}

var testLevels = fstest.MapFS{
	"room.json": {Data: []byte(`{
		"tilesets": [{"name": "tiles", "image": "tiles.png", "tile_w": 16, "tile_h": 16, "columns": 4,
			"colliders": {"0": [{"x": 0, "y": 0, "w": 16, "h": 16}]}}],
		"layers": [{"name": "ground", "properties": {"mask": "1"},
			"chunks": [[{"x": 0, "y": 4, "width": 2, "height": 1, "tiles": [1, 1]}]]}],
		"object_layers": [{"name": "props", "objects": [{"name": "b", "type": "Box", "x": 4, "y": 4}]}],
		"properties": {"eval": "setup()"}
	}`)},
	"bad.json": {Data: []byte(`{"tilesets": [{"name": "t"}]}`)},
}

func newTestWorld(t *testing.T) (*World, *recordingHost) {
	t.Helper()
	host := &recordingHost{}
	w := NewWorld(Options{
		Prefabs: &prefabs.Source{FS: testPrefabs},
		Levels:  testLevels,
		Host:    host,
	})
	t.Cleanup(w.Close)
	return w, host
}

func TestWorldStages(t *testing.T) {
	w, _ := newTestWorld(t)
	want := []string{"input", "collision", "entity", "tick", "physics", "animation", "tilemap"}
	if got := w.Stages(); !slices.Equal(got, want) {
		t.Fatalf("stages = %v, want %v", got, want)
	}
}

func TestWorldCloseOrder(t *testing.T) {
	w, _ := newTestWorld(t)
	var closed []string
	w.onClose = func(name string) { closed = append(closed, name) }

	w.Close()
	w.Close()

	want := []string{"input", "entity", "tick", "physics", "tilemap", "animation", "sprite", "textures", "camera", "collision", "transform"}
	if !slices.Equal(closed, want) {
		t.Fatalf("teardown = %v, want %v", closed, want)
	}

	w.Update(1)
	w.Draw(nil)
}

func TestSpawnCreatesOwnedComponents(t *testing.T) {
	w, host := newTestWorld(t)

	s, err := w.Spawn("box", common.Vec(10, 20))
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	for name, h := range map[string]ecs.Handle{
		"entity": s.Entity, "transform": s.Transform, "sprite": s.Sprite, "collider": s.Collider,
		"physics": s.Physics, "animation": s.Animation, "camera": s.Camera,
	} {
		if !h.Valid() {
			t.Fatalf("%s was not created", name)
		}
	}

	e, _ := w.Entities.Get(s.Entity)
	if e.Type != "Box" || e.Name != "box" {
		t.Fatalf("entity = %+v", e)
	}
	if pos := w.Transforms.Get(s.Transform).Position; pos != common.Vec(11, 22) {
		t.Fatalf("position = %v, want (11, 22)", pos)
	}
	sprite, _ := w.Sprites.Sprite(s.Sprite)
	if sprite.Offset != common.Vec(-2, 0) {
		t.Fatalf("sprite offset = %v", sprite.Offset)
	}
	if a := w.Animations.Get(s.Animation); !a.Animations[0].Playing {
		t.Fatalf("play clip should start")
	}
	if obj, _ := w.Physics.Get(s.Physics); obj.Velocity != common.Vec(5, 0) || !obj.Collision {
		t.Fatalf("physics = %+v", obj)
	}

	if len(host.calls) != 1 || host.calls[0].name != "box_spawned" {
		t.Fatalf("spawn handler calls = %v", host.names())
	}
	parts := host.calls[0].args[1].(map[string]any)
	if host.calls[0].args[0] != s.Entity.Int() || parts["physics"] != s.Physics.Int() {
		t.Fatalf("spawn handler args = %v", host.calls[0].args)
	}

	w.Inputs.Push(component.InputEvent{Name: "jump"})
	w.Update(0.5)
	if want := []string{"box_spawned", "box_jump", "box_tick"}; !slices.Equal(host.names(), want) {
		t.Fatalf("calls = %v, want %v", host.names(), want)
	}
	if host.calls[2].args[0] != 0.5 {
		t.Fatalf("tick handler should get dt, got %v", host.calls[2].args)
	}

	if !w.DestroyEntity(s.Entity.Int()) {
		t.Fatalf("destroy failed")
	}
	w.Update(0.5)

	if w.Transforms.Len() != 0 || w.Collisions.Len() != 0 || w.Physics.Len() != 0 ||
		w.Sprites.SpriteCount() != 0 || w.Animations.Len() != 0 || w.Cameras.Len() != 0 ||
		w.Ticks.Len() != 0 || w.Inputs.Len() != 0 || w.Textures.Len() != 0 || w.Entities.Len() != 0 {
		t.Fatalf("destroying the entity should release every record")
	}
}

func TestSpawnEdgeCases(t *testing.T) {
	w, _ := newTestWorld(t)

	ghost, err := w.Spawn("ghost", common.Vec(0, 0))
	if err != nil {
		t.Fatalf("ghost: %v", err)
	}
	if obj, _ := w.Physics.Get(ghost.Physics); obj.Collision {
		t.Fatalf("ghost physics should skip collision handling")
	}

	broken, err := w.Spawn("broken", common.Vec(0, 0))
	if err != nil {
		t.Fatalf("a missing texture should not fail the spawn: %v", err)
	}
	if broken.Sprite.Valid() || !broken.Transform.Valid() {
		t.Fatalf("sprite should be skipped, got %+v", broken)
	}

	if _, err := w.Spawn("not_yaml", common.Vec(0, 0)); err == nil {
		t.Fatalf("expected a parse error")
	}
	if _, err := w.SpawnPrefab("nope", 0, 0); err == nil {
		t.Fatalf("expected an error for a missing prefab")
	}

	first, _ := w.Prefab("ghost")
	second, _ := w.Prefab("ghost")
	if first != second {
		t.Fatalf("specs should be cached")
	}
	w.InvalidatePrefabs()
	if third, _ := w.Prefab("ghost"); third == first {
		t.Fatalf("invalidate should drop the cache")
	}
}

func TestSpawnHandlerPanic(t *testing.T) {
	w, host := newTestWorld(t)
	host.panicOn = "box_spawned"

	s, err := w.Spawn("box", common.Vec(0, 0))
	if err != nil {
		t.Fatalf("a panicking spawn handler should not fail the spawn: %v", err)
	}
	if _, ok := w.Entities.Get(s.Entity); !ok || w.Ticks.Len() != 1 {
		t.Fatalf("entity and its bindings should survive the handler panic")
	}

	w.Update(0.5)
	if got := host.names(); !slices.Equal(got, []string{"box_spawned", "box_tick"}) {
		t.Fatalf("calls = %v", got)
	}
}

func TestLoadMapOwnsTransform(t *testing.T) {
	w, _ := newTestWorld(t)

	for j := 0; j < 3; j++ {
		h, err := w.LoadMapFile("room.json")
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if w.Transforms.Len() != 1 {
			t.Fatalf("expected the map transform, have %d transforms", w.Transforms.Len())
		}
		if !w.Tilemaps.Remove(h) {
			t.Fatalf("remove failed")
		}
		if w.Transforms.Len() != 0 || w.Collisions.Len() != 0 {
			t.Fatalf("map removal left %d transforms, %d colliders", w.Transforms.Len(), w.Collisions.Len())
		}
	}
}

func TestScriptBridge(t *testing.T) {
	w, _ := newTestWorld(t)

	entity := w.CreateEntity("Thing", "thing")
	if w.FindEntity("thing") != entity || w.FindEntity("other") != 0 {
		t.Fatalf("FindEntity failed")
	}
	tr := w.CreateTransform(entity, 3, 4)
	if x, y, ok := w.Position(tr); !ok || x != 3 || y != 4 {
		t.Fatalf("Position = %v %v %v", x, y, ok)
	}
	if !w.SetPosition(tr, 5, 6) || !w.SetFlip(tr, true, false) {
		t.Fatalf("setters failed")
	}
	if tf := w.Transforms.Get(ecs.HandleFromInt(tr)); tf.Position != common.Vec(5, 6) || !tf.FlipH {
		t.Fatalf("transform = %+v", tf)
	}

	sprite, err := w.CreateSprite(entity, tr, "hero.png", 999)
	if err != nil {
		t.Fatalf("sprite: %v", err)
	}
	if w.Sprites.Buckets(255) != 1 {
		t.Fatalf("layer should clamp to 255")
	}
	if _, err := w.CreateSprite(entity, tr, "missing.png", 0); err == nil {
		t.Fatalf("expected a texture error")
	}

	anim, err := w.CreateAnimation(entity, sprite, "box_anim.yaml")
	if err != nil {
		t.Fatalf("animation: %v", err)
	}
	if !w.PlayAnimation(anim, "spin") || w.PlayAnimation(anim, "nope") || w.PlayAnimation(0, "spin") {
		t.Fatalf("PlayAnimation results are wrong")
	}
	w.Update(1)
	if !w.PlayAnimation(anim, "spin") {
		t.Fatalf("replaying should succeed")
	}
	if a := w.Animations.Get(ecs.HandleFromInt(anim)); a.Animations[0].CurrentFrame != 1 {
		t.Fatalf("playing clip should not restart")
	}

	col := w.CreateCollider(entity, tr, 0, 0, 4, 4, 1)
	other := w.CreateCollider(0, w.CreateTransform(0, 6, 6), 0, 0, 4, 4, 1)
	w.Update(0)
	if !w.Colliding(col) {
		t.Fatalf("colliders should overlap")
	}
	hits := w.Query(0, 0, 20, 20, 1)
	slices.Sort(hits)
	want := []int64{col, other}
	slices.Sort(want)
	if !slices.Equal(hits, want) {
		t.Fatalf("Query = %v, want %v", hits, want)
	}

	phys := w.CreatePhysics(entity, tr, col)
	if !w.SetVelocity(phys, 1, 2) || !w.SetAcceleration(phys, 3, 4) || !w.SetGravity(phys, 5, 6) || !w.SetMaxSpeed(phys, 7, 8) {
		t.Fatalf("physics setters failed")
	}
	obj, _ := w.Physics.Get(ecs.HandleFromInt(phys))
	if obj.Acceleration != common.Vec(3, 4) || obj.Gravity != common.Vec(5, 6) || obj.MaxSpeed != common.Vec(7, 8) {
		t.Fatalf("physics = %+v", obj)
	}
	if x, y, ok := w.Velocity(phys); !ok || x != 1 || y != 2 {
		t.Fatalf("Velocity = %v %v %v", x, y, ok)
	}
	if _, _, ok := w.Velocity(0); ok || w.SetVelocity(0, 1, 1) {
		t.Fatalf("invalid physics handle should fail")
	}

	if cam := w.CreateCamera(entity, tr, true); cam == 0 {
		t.Fatalf("camera not created")
	}
	w.BindTick(entity, "tick")
	w.BindInput(entity, "fire", "on_fire")
	w.Log("hello")

	w.DestroyEntity(entity)
	w.Update(0)
	if w.Transforms.Len() != 1 || w.Collisions.Len() != 1 {
		t.Fatalf("only the unowned transform and collider should remain")
	}
	if w.Ticks.Len() != 0 || w.Inputs.Len() != 0 || w.Cameras.Len() != 0 || w.Textures.Len() != 0 {
		t.Fatalf("owned records should be released")
	}
	if _, _, ok := w.Position(tr); ok {
		t.Fatalf("owned transform should be gone")
	}
}

func TestBoot(t *testing.T) {
	w, host := newTestWorld(t)

	spec := &prefabs.EngineSpec{
		Map: "room.json",
		Spawn: []prefabs.SpawnSpec{
			{Prefab: "nope"},
			{Prefab: "follower", X: 10, Y: 0},
			{Prefab: "follower", X: 50, Y: 0},
		},
		Camera: prefabs.CameraSpec{Centered: true, Follow: "follower", Viewport: &prefabs.RectSpec{Width: 64, Height: 32}},
	}
	scene, err := w.Boot(spec)
	if err != nil {
		t.Fatalf("boot: %v", err)
	}
	if !scene.Map.Valid() || len(scene.Spawned) != 2 {
		t.Fatalf("scene = %+v", scene)
	}
	cam, _ := w.Cameras.Get(scene.Camera)
	if cam.Transform != scene.Spawned[0].Transform || !cam.Centered {
		t.Fatalf("camera should follow the first follower: %+v", cam)
	}
	if cam.Viewport.Dx() != 64 || cam.Viewport.Dy() != 32 {
		t.Fatalf("viewport = %v", cam.Viewport)
	}

	tm, _ := w.Tilemaps.Get(scene.Map)
	if len(tm.Batches) != 1 || len(tm.Colliders) != 2 {
		t.Fatalf("tilemap = %+v", tm)
	}
	if len(host.objects) != 1 || host.objects[0].Type != "Box" {
		t.Fatalf("objects = %+v", host.objects)
	}
	if !slices.Equal(host.evals, []string{"setup()"}) {
		t.Fatalf("evals = %v", host.evals)
	}

	if _, err := w.Boot(&prefabs.EngineSpec{Map: "bad.json"}); err == nil {
		t.Fatalf("an invalid map should fail boot")
	}
	if s, err := w.Boot(&prefabs.EngineSpec{}); err != nil || s.Map.Valid() || !s.Camera.Valid() {
		t.Fatalf("boot without a map = %+v, %v", s, err)
	}
}

func TestDemoRuns(t *testing.T) {
	spec, err := prefabs.LoadEngineSpec("engine.yaml")
	if err != nil {
		t.Fatalf("engine.yaml: %v", err)
	}
	w := NewWorld(Options{CellSize: spec.CellSize})
	defer w.Close()

	host := script.NewTengoHost(w)
	w.SetHost(host)
	src, err := prefabs.LoadScript(spec.Script)
	if err != nil {
		t.Fatalf("script: %v", err)
	}
	if err := host.Load(spec.Script, src); err != nil {
		t.Fatalf("load: %v", err)
	}

	scene, err := w.Boot(spec)
	if err != nil {
		t.Fatalf("boot: %v", err)
	}
	if len(scene.Spawned) != 1 {
		t.Fatalf("expected the hero, got %d spawns", len(scene.Spawned))
	}
	hero := scene.Spawned[0]
	if w.Entities.Len() != 3 {
		t.Fatalf("expected the hero and two crates, got %d entities", w.Entities.Len())
	}

	w.Inputs.Bind(component.InputAlias{Name: "right", Event: "keydown", Param: 1})
	w.Inputs.Push(component.InputEvent{Name: "keydown", Param: 1})
	w.Update(1.0 / 60)

	obj, _ := w.Physics.Get(hero.Physics)
	if obj.Velocity.X != 140 {
		t.Fatalf("hero should run right, velocity = %v", obj.Velocity)
	}
	if pos := w.Transforms.Get(hero.Transform).Position; pos.X <= 96 {
		t.Fatalf("hero should have moved, position = %v", pos)
	}
	if w.Transforms.Get(hero.Transform).FlipH {
		t.Fatalf("hero should face right")
	}
}
