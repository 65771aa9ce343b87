package engine

import (
	"fmt"
	"image"
	"log"

	"github.com/milk9111/slotengine/common"
	"github.com/milk9111/slotengine/ecs"
	"github.com/milk9111/slotengine/ecs/component"
	"github.com/milk9111/slotengine/prefabs"
)

// Scene is what Boot created.
type Scene struct {
	Map     ecs.Handle
	Spawned []Spawned
	Camera  ecs.Handle
}

// Boot builds the map, the start spawns and the main camera of spec. The
// script host should be loaded first so map objects can be instantiated.
func (w *World) Boot(spec *prefabs.EngineSpec) (Scene, error) {
	var scene Scene
	if spec.Map != "" {
		m, err := w.LoadMapFile(spec.Map)
		if err != nil {
			return scene, fmt.Errorf("engine: boot: %w", err)
		}
		scene.Map = m
	}

	follow := ecs.Invalid
	for _, sp := range spec.Spawn {
		s, err := w.Spawn(sp.Prefab, common.Vec(sp.X, sp.Y))
		if err != nil {
			log.Printf("engine: boot: %v", err)
			continue
		}
		scene.Spawned = append(scene.Spawned, s)
		if spec.Camera.Follow != "" && sp.Prefab == spec.Camera.Follow && !follow.Valid() {
			follow = s.Transform
		}
	}

	if !follow.Valid() {
		follow = w.Transforms.Create(component.NewTransform(common.Vec(0, 0)))
	}
	var viewport image.Rectangle
	if spec.Camera.Viewport != nil {
		viewport = spec.Camera.Viewport.Image()
	}
	scene.Camera = w.Cameras.Create(follow, spec.Camera.Centered, spec.Camera.FillTarget, viewport)
	return scene, nil
}
